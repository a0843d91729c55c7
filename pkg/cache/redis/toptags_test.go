package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sulbao/community/pkg/board"
	"github.com/sulbao/community/pkg/repo/memory"
)

type countingRepository struct {
	*memory.Repository
	topTagCalls int
}

func (c *countingRepository) TopTags(ctx context.Context, limit int) ([]string, error) {
	c.topTagCalls++
	return c.Repository.TopTags(ctx, limit)
}

func setup(t *testing.T) (*Repository, *countingRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	inner := &countingRepository{Repository: memory.New()}
	return New(inner, client, WithTTL(time.Minute)), inner, mr
}

func post(tags ...string) *board.Post {
	now := time.Now()
	return &board.Post{ID: uuid.New(), CategoryID: 1, Title: "t", Tags: tags, CreatedAt: now, UpdatedAt: now}
}

func TestTopTags_ServedFromCache(t *testing.T) {
	repo, inner, mr := setup(t)
	ctx := context.Background()
	require.NoError(t, inner.Repository.CreatePost(ctx, post("#a", "#b")))

	first, err := repo.TopTags(ctx, 15)
	require.NoError(t, err)
	second, err := repo.TopTags(ctx, 15)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, inner.topTagCalls)
	assert.True(t, mr.Exists(DefaultKey))
	assert.Equal(t, time.Minute, mr.TTL(DefaultKey))

	mr.FastForward(2 * time.Minute)
	_, err = repo.TopTags(ctx, 15)
	require.NoError(t, err)
	assert.Equal(t, 2, inner.topTagCalls)
}

func TestTopTags_InvalidatedByWrites(t *testing.T) {
	repo, inner, mr := setup(t)
	ctx := context.Background()

	p := post("#a")
	require.NoError(t, repo.CreatePost(ctx, p))

	tags, err := repo.TopTags(ctx, 15)
	require.NoError(t, err)
	assert.Equal(t, []string{"#a"}, tags)

	p.Tags = []string{"#z"}
	require.NoError(t, repo.UpdatePost(ctx, p))
	assert.False(t, mr.Exists(DefaultKey))

	tags, err = repo.TopTags(ctx, 15)
	require.NoError(t, err)
	assert.Equal(t, []string{"#z"}, tags)

	require.NoError(t, repo.DeletePost(ctx, p.ID))
	tags, err = repo.TopTags(ctx, 15)
	require.NoError(t, err)
	assert.Empty(t, tags)
	assert.Equal(t, 3, inner.topTagCalls)
}

func TestTopTags_FallsBackWhenRedisIsDown(t *testing.T) {
	repo, inner, mr := setup(t)
	ctx := context.Background()
	require.NoError(t, inner.Repository.CreatePost(ctx, post("#a")))

	mr.Close()

	tags, err := repo.TopTags(ctx, 15)
	require.NoError(t, err)
	assert.Equal(t, []string{"#a"}, tags)
}

func TestTopTags_MalformedEntry(t *testing.T) {
	repo, inner, mr := setup(t)
	ctx := context.Background()
	require.NoError(t, inner.Repository.CreatePost(ctx, post("#a")))
	mr.HSet(DefaultKey, "15", "not json")

	tags, err := repo.TopTags(ctx, 15)
	require.NoError(t, err)
	assert.Equal(t, []string{"#a"}, tags)
	assert.Equal(t, 1, inner.topTagCalls)
}

func TestNewClient(t *testing.T) {
	_, err := NewClient(context.Background(), "")
	assert.ErrorIs(t, err, ErrEmptyURL)

	mr := miniredis.RunT(t)
	client, err := NewClient(context.Background(), "redis://"+mr.Addr()+"/0")
	require.NoError(t, err)
	client.Close()
}
