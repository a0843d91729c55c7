package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sulbao/community/pkg/board"
	"github.com/sulbao/community/pkg/member"
)

func seedMember(t *testing.T, repo *Repository, loginID string) *member.Member {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Microsecond)
	m := &member.Member{
		ID:          uuid.New(),
		LoginID:     loginID,
		Role:        member.RoleMember,
		Enabled:     true,
		ProStatus:   member.StatusNone,
		SellStatus:  member.StatusNone,
		ProfileName: loginID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	require.NoError(t, repo.CreateMember(context.Background(), m))
	return m
}

func seedPost(t *testing.T, repo *Repository, author uuid.UUID, category int64, created time.Time, tags ...string) *board.Post {
	t.Helper()
	p := &board.Post{
		ID:         uuid.New(),
		AuthorID:   author,
		CategoryID: category,
		Title:      "Rice wine " + created.Format("15:04:05"),
		Body:       "a|b",
		Images:     []*board.PostImage{{FileName: "a.png"}, nil},
		Tags:       tags,
		CreatedAt:  created,
		UpdatedAt:  created,
	}
	require.NoError(t, repo.CreatePost(context.Background(), p))
	return p
}

func TestPostgresRepository_Posts(t *testing.T) {
	RunTest(t, func(t *testing.T, db *TestDB) {
		repo := NewWithPool(db.Pool)
		ctx := context.Background()
		author := seedMember(t, repo, "brewer")
		base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

		first := seedPost(t, repo, author.ID, 1, base, "#rice")
		second := seedPost(t, repo, author.ID, 1, base.Add(time.Minute), "#rice", "#100%_pure")
		seedPost(t, repo, author.ID, 2, base)

		got, err := repo.GetPost(ctx, first.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"a.png", ""}, board.ImageNames(got.Images))
		assert.Equal(t, []string{"#rice"}, got.Tags)

		page, err := repo.ListPosts(ctx, board.ListPostsParams{CategoryID: 1, Limit: 10})
		require.NoError(t, err)
		require.Len(t, page, 2)
		assert.Equal(t, second.ID, page[0].ID)

		n, err := repo.CountPosts(ctx, board.CountPostsParams{CategoryID: 1, Tag: "#100%_pure"})
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		n, err = repo.CountPosts(ctx, board.CountPostsParams{CategoryID: 1})
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)

		tags, err := repo.TopTags(ctx, 15)
		require.NoError(t, err)
		assert.Equal(t, []string{"#rice", "#100%_pure"}, tags)

		found, err := repo.SearchPosts(ctx, 1, "RICE")
		require.NoError(t, err)
		assert.Len(t, found, 2)

		found, err = repo.SearchPosts(ctx, 1, "%")
		require.NoError(t, err)
		assert.Empty(t, found)

		require.NoError(t, repo.IncrementHits(ctx, first.ID))
		require.NoError(t, repo.IncrementHits(ctx, first.ID))
		got, err = repo.GetPost(ctx, first.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(2), got.Hits)

		require.NoError(t, repo.DeletePost(ctx, first.ID))
		require.NoError(t, repo.DeletePost(ctx, first.ID))
		_, err = repo.GetPost(ctx, first.ID)
		assert.ErrorIs(t, err, board.ErrPostNotFound)
		assert.ErrorIs(t, repo.IncrementHits(ctx, first.ID), board.ErrPostNotFound)
	})
}

func TestPostgresRepository_ForeignKeys(t *testing.T) {
	RunTest(t, func(t *testing.T, db *TestDB) {
		repo := NewWithPool(db.Pool)
		author := seedMember(t, repo, "brewer")

		err := repo.CreatePost(context.Background(), &board.Post{
			ID: uuid.New(), AuthorID: author.ID, CategoryID: 999, Title: "t",
			CreatedAt: time.Now(), UpdatedAt: time.Now(),
		})
		assert.ErrorIs(t, err, board.ErrCategoryNotFound)
	})
}

func TestPostgresRepository_Members(t *testing.T) {
	RunTest(t, func(t *testing.T, db *TestDB) {
		repo := NewWithPool(db.Pool)
		ctx := context.Background()
		alice := seedMember(t, repo, "alice")

		dup := *alice
		dup.ID = uuid.New()
		assert.ErrorIs(t, repo.CreateMember(ctx, &dup), member.ErrDuplicateLoginID)

		got, err := repo.GetMemberByLoginID(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, alice.ID, got.ID)

		_, err = repo.GetMember(ctx, uuid.New())
		assert.ErrorIs(t, err, member.ErrMemberNotFound)

		got.ProStatus = member.StatusPending
		ghost := &member.Member{ID: uuid.New(), LoginID: "ghost"}
		err = repo.UpdateMembers(ctx, []*member.Member{got, ghost})
		assert.ErrorIs(t, err, member.ErrMemberNotFound)

		pros, err := repo.ListMembers(ctx, member.ListFilter{ProApplicants: true})
		require.NoError(t, err)
		assert.Empty(t, pros, "failed batch must roll back")

		require.NoError(t, repo.UpdateMembers(ctx, []*member.Member{got}))
		pros, err = repo.ListMembers(ctx, member.ListFilter{ProApplicants: true})
		require.NoError(t, err)
		assert.Len(t, pros, 1)

		user, err := repo.GetUser(ctx, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, "alice", user.ProfileName)
	})
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `100\%\_pure\\`, escapeLike(`100%_pure\`))
}
