package board_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sulbao/community/pkg/board"
	"github.com/sulbao/community/pkg/member"
	"github.com/sulbao/community/pkg/repo/memory"
	memorystorage "github.com/sulbao/community/pkg/storage/memory"
)

const (
	feedCategory int64 = 1
	postCategory int64 = 2
)

type fixture struct {
	svc    board.Service
	repo   *memory.Repository
	blobs  *memorystorage.Backend
	author uuid.UUID
}

func steppingClock() func() time.Time {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	var n int64
	return func() time.Time {
		return base.Add(time.Duration(atomic.AddInt64(&n, 1)) * time.Second)
	}
}

func newFixture(t *testing.T, opts ...board.Option) *fixture {
	t.Helper()

	repo := memory.New()
	repo.PutCategory(board.Category{ID: feedCategory, Name: "feed"})
	repo.PutCategory(board.Category{ID: postCategory, Name: "post"})

	author := uuid.New()
	require.NoError(t, repo.CreateMember(context.Background(), &member.Member{
		ID:          author,
		LoginID:     "brewer",
		ProfileName: "brewer",
		Role:        member.RoleMember,
		Enabled:     true,
	}))

	blobs := memorystorage.New()
	options := append([]board.Option{
		board.WithRepository(repo),
		board.WithUserDirectory(repo),
		board.WithCategoryDirectory(repo),
		board.WithFileStore(board.NewFileStore(blobs, nil)),
		board.WithUploadDir("uploads"),
		board.WithClock(steppingClock()),
	}, opts...)

	svc, err := board.New(options...)
	require.NoError(t, err)

	return &fixture{svc: svc, repo: repo, blobs: blobs, author: author}
}

func upload(name, data string) *board.Upload {
	return &board.Upload{
		FileName:    name,
		ContentType: "image/png",
		Size:        int64(len(data)),
		Reader:      strings.NewReader(data),
	}
}

func emptyUpload() *board.Upload {
	return &board.Upload{FileName: "", Size: 0, Reader: strings.NewReader("")}
}

func (f *fixture) readFile(t *testing.T, name string) string {
	t.Helper()
	file, err := f.svc.OpenFile(context.Background(), name)
	require.NoError(t, err)
	defer file.Body.Close()
	data, err := io.ReadAll(file.Body)
	require.NoError(t, err)
	return string(data)
}

func (f *fixture) createFeed(t *testing.T, tags ...string) *board.Post {
	t.Helper()
	post, err := f.svc.CreateFeed(context.Background(), board.CreateFeedRequest{
		AuthorID:      f.author,
		CategoryID:    feedCategory,
		Title:         "feed",
		Tags:          tags,
		Contents:      []string{"only segment"},
		ContentImages: []*board.Upload{nil},
	})
	require.NoError(t, err)
	return post
}

func TestNew_RequiresDependencies(t *testing.T) {
	repo := memory.New()

	_, err := board.New()
	assert.EqualError(t, err, "repository is required")

	_, err = board.New(board.WithRepository(repo))
	assert.EqualError(t, err, "user directory is required")

	_, err = board.New(board.WithRepository(repo), board.WithUserDirectory(repo))
	assert.EqualError(t, err, "category directory is required")

	_, err = board.New(
		board.WithRepository(repo),
		board.WithUserDirectory(repo),
		board.WithCategoryDirectory(repo),
		board.WithPolicy(board.Policy{Default: board.CategoryPolicy{PageSize: 0, SearchLimit: 1}}),
	)
	assert.ErrorContains(t, err, "invalid policy")
}

func TestCreatePost_RoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.CreatePost(ctx, board.CreatePostRequest{
		AuthorID:   f.author,
		CategoryID: postCategory,
		Title:      "Tasting notes",
		Body:       "sweet | sour",
		Thumbnail:  "thumb.png",
	})
	require.NoError(t, err)

	got, err := f.svc.GetPost(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Tasting notes", got.Title)
	assert.Equal(t, "sweet | sour", got.Body)
	assert.Equal(t, "thumb.png", got.Thumbnail)
	assert.Empty(t, got.Tags)
	assert.Empty(t, got.Images)
	assert.Equal(t, int64(0), got.Hits)
}

func TestNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.GetPost(ctx, uuid.New())
	assert.ErrorIs(t, err, board.ErrPostNotFound)
	assert.ErrorIs(t, err, board.ErrNotFound)

	_, err = f.svc.CreatePost(ctx, board.CreatePostRequest{AuthorID: uuid.New(), CategoryID: postCategory, Title: "t"})
	assert.ErrorIs(t, err, board.ErrUserNotFound)
	assert.ErrorIs(t, err, board.ErrNotFound)

	_, err = f.svc.CreatePost(ctx, board.CreatePostRequest{AuthorID: f.author, CategoryID: 42, Title: "t"})
	assert.ErrorIs(t, err, board.ErrCategoryNotFound)
	assert.ErrorIs(t, err, board.ErrNotFound)

	// lookups come before request validation
	_, err = f.svc.CreatePost(ctx, board.CreatePostRequest{AuthorID: uuid.New(), CategoryID: postCategory, Title: ""})
	assert.ErrorIs(t, err, board.ErrUserNotFound)

	_, err = f.svc.CreateFeed(ctx, board.CreateFeedRequest{
		AuthorID: uuid.New(), CategoryID: feedCategory, Title: "",
		Contents: []string{"one", "two"},
	})
	assert.ErrorIs(t, err, board.ErrUserNotFound)

	_, err = f.svc.CreateFeed(ctx, board.CreateFeedRequest{AuthorID: f.author, CategoryID: 42, Title: ""})
	assert.ErrorIs(t, err, board.ErrCategoryNotFound)

	_, err = f.svc.ListPosts(ctx, board.ListPostsRequest{CategoryID: 42})
	assert.ErrorIs(t, err, board.ErrCategoryNotFound)

	_, err = f.svc.ListPostsByAuthor(ctx, uuid.New())
	assert.ErrorIs(t, err, board.ErrUserNotFound)

	assert.ErrorIs(t, f.svc.IncrementHit(ctx, uuid.New()), board.ErrPostNotFound)
	assert.ErrorIs(t, f.svc.UpdatePost(ctx, board.UpdatePostRequest{ID: uuid.New(), Title: "t"}), board.ErrPostNotFound)

	err = f.svc.UpdateFeed(ctx, board.UpdateFeedRequest{ID: uuid.New(), Title: ""})
	assert.ErrorIs(t, err, board.ErrPostNotFound)
}

func TestSimplePosts_AcceptBlankTitle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.CreatePost(ctx, board.CreatePostRequest{
		AuthorID: f.author, CategoryID: postCategory, Title: "", Body: "body",
	})
	require.NoError(t, err)

	got, err := f.svc.GetPost(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "", got.Title)
	assert.Equal(t, "body", got.Body)

	require.NoError(t, f.svc.UpdatePost(ctx, board.UpdatePostRequest{ID: created.ID, Title: " ", Body: "edited"}))
	got, err = f.svc.GetPost(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, " ", got.Title)
	assert.Equal(t, "edited", got.Body)
}

func TestCreateFeed_SegmentsAndImages(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	post, err := f.svc.CreateFeed(ctx, board.CreateFeedRequest{
		AuthorID:      f.author,
		CategoryID:    feedCategory,
		Thumbnail:     upload("cover.jpg", "cover"),
		Tags:          []string{"makgeolli", "#soju", " makgeolli "},
		Title:         "Weekend pairing",
		Contents:      []string{"first", "second", "third"},
		ContentImages: []*board.Upload{upload("a.png", "A"), emptyUpload(), upload("c.png", "C")},
	})
	require.NoError(t, err)

	stored, err := f.svc.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "first|second|third", stored.Body)
	assert.Equal(t, []string{"first", "second", "third"}, stored.Segments())
	assert.Equal(t, []string{"#makgeolli", "#soju"}, stored.Tags)

	require.Len(t, stored.Images, 3)
	assert.NotNil(t, stored.Images[0])
	assert.Nil(t, stored.Images[1])
	assert.NotNil(t, stored.Images[2])
	assert.Equal(t, "A", f.readFile(t, stored.Images[0].FileName))
	assert.Equal(t, "C", f.readFile(t, stored.Images[2].FileName))

	require.NotEmpty(t, stored.Thumbnail)
	assert.True(t, strings.HasSuffix(stored.Thumbnail, ".jpg"))
	assert.Equal(t, "cover", f.readFile(t, stored.Thumbnail))
	assert.Equal(t, 3, f.blobs.Len())
}

func TestCreateFeed_EmptyThumbnailMeansNone(t *testing.T) {
	f := newFixture(t)

	post, err := f.svc.CreateFeed(context.Background(), board.CreateFeedRequest{
		AuthorID:      f.author,
		CategoryID:    feedCategory,
		Thumbnail:     emptyUpload(),
		Title:         "no cover",
		Contents:      []string{"text"},
		ContentImages: []*board.Upload{nil},
	})
	require.NoError(t, err)
	assert.Empty(t, post.Thumbnail)
	assert.Equal(t, 0, f.blobs.Len())
}

func TestCreateFeed_ValidationHappensBeforeUpload(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  board.CreateFeedRequest
	}{
		{
			name: "mismatched counts",
			req: board.CreateFeedRequest{
				AuthorID: f.author, CategoryID: feedCategory, Title: "t",
				Thumbnail:     upload("cover.png", "x"),
				Contents:      []string{"one", "two"},
				ContentImages: []*board.Upload{upload("a.png", "A")},
			},
		},
		{
			name: "blank title",
			req: board.CreateFeedRequest{
				AuthorID: f.author, CategoryID: feedCategory, Title: "  ",
				Thumbnail:     upload("cover.png", "x"),
				Contents:      []string{"one"},
				ContentImages: []*board.Upload{upload("a.png", "A")},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.CreateFeed(ctx, tt.req)
			assert.ErrorIs(t, err, board.ErrInvalidRequest)
			assert.Equal(t, 0, f.blobs.Len())
		})
	}
}

type failingRepository struct {
	board.Repository
	err error
}

func (r *failingRepository) CreatePost(ctx context.Context, post *board.Post) error {
	return r.err
}

func (r *failingRepository) UpdatePost(ctx context.Context, post *board.Post) error {
	return r.err
}

func TestCreateFeed_RemovesUploadsWhenSaveFails(t *testing.T) {
	saveErr := errors.New("disk full")
	base := newFixture(t)
	failing := &failingRepository{Repository: base.repo, err: saveErr}

	svc, err := board.New(
		board.WithRepository(failing),
		board.WithUserDirectory(base.repo),
		board.WithCategoryDirectory(base.repo),
		board.WithFileStore(board.NewFileStore(base.blobs, nil)),
	)
	require.NoError(t, err)

	_, err = svc.CreateFeed(context.Background(), board.CreateFeedRequest{
		AuthorID:      base.author,
		CategoryID:    feedCategory,
		Thumbnail:     upload("cover.png", "cover"),
		Title:         "doomed",
		Contents:      []string{"a", "b"},
		ContentImages: []*board.Upload{upload("a.png", "A"), upload("b.png", "B")},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, saveErr)

	var postErr *board.PostError
	require.True(t, errors.As(err, &postErr))
	assert.Equal(t, "create_feed", postErr.Op)
	assert.Equal(t, 0, base.blobs.Len())
}

func TestUpdateFeed_ReplacesSlotsPositionally(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	post, err := f.svc.CreateFeed(ctx, board.CreateFeedRequest{
		AuthorID:      f.author,
		CategoryID:    feedCategory,
		Thumbnail:     upload("cover.png", "cover"),
		Tags:          []string{"old"},
		Title:         "before",
		Contents:      []string{"one", "two", "three"},
		ContentImages: []*board.Upload{upload("a.png", "A"), upload("b.png", "B"), nil},
	})
	require.NoError(t, err)
	originalThumbnail := post.Thumbnail
	first := post.Images[0].FileName

	err = f.svc.UpdateFeed(ctx, board.UpdateFeedRequest{
		ID:            post.ID,
		Tags:          []string{"new"},
		Title:         "after",
		Contents:      []string{"uno", "dos", "tres"},
		ContentImages: []*board.Upload{emptyUpload(), upload("b2.png", "B2"), upload("c.png", "C")},
	})
	require.NoError(t, err)

	got, err := f.svc.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "after", got.Title)
	assert.Equal(t, "uno|dos|tres", got.Body)
	assert.Equal(t, []string{"#new"}, got.Tags)
	assert.Equal(t, originalThumbnail, got.Thumbnail, "absent thumbnail keeps the stored one")

	require.Len(t, got.Images, 3)
	assert.Nil(t, got.Images[0], "empty upload clears the slot")
	require.NotNil(t, got.Images[1])
	assert.NotEqual(t, first, got.Images[1].FileName)
	assert.Equal(t, "B2", f.readFile(t, got.Images[1].FileName))
	require.NotNil(t, got.Images[2])
	assert.Equal(t, "C", f.readFile(t, got.Images[2].FileName))
}

func TestUpdateFeed_Thumbnail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	post, err := f.svc.CreateFeed(ctx, board.CreateFeedRequest{
		AuthorID:      f.author,
		CategoryID:    feedCategory,
		Thumbnail:     upload("cover.png", "cover"),
		Title:         "t",
		Contents:      []string{"x"},
		ContentImages: []*board.Upload{nil},
	})
	require.NoError(t, err)

	update := func(thumb *board.Upload) *board.Post {
		err := f.svc.UpdateFeed(ctx, board.UpdateFeedRequest{
			ID:            post.ID,
			Thumbnail:     thumb,
			Title:         "t",
			Contents:      []string{"x"},
			ContentImages: []*board.Upload{nil},
		})
		require.NoError(t, err)
		got, err := f.svc.GetPost(ctx, post.ID)
		require.NoError(t, err)
		return got
	}

	replaced := update(upload("new.png", "new cover"))
	assert.NotEqual(t, post.Thumbnail, replaced.Thumbnail)
	assert.Equal(t, "new cover", f.readFile(t, replaced.Thumbnail))

	kept := update(nil)
	assert.Equal(t, replaced.Thumbnail, kept.Thumbnail)

	unselected := update(emptyUpload())
	assert.Equal(t, replaced.Thumbnail, unselected.Thumbnail, "empty upload keeps the stored thumbnail")
}

func TestUpdateFeed_RemovesUploadsWhenSaveFails(t *testing.T) {
	base := newFixture(t)
	post := base.createFeed(t)
	before := base.blobs.Len()

	svc, err := board.New(
		board.WithRepository(&failingRepository{Repository: base.repo, err: errors.New("conflict")}),
		board.WithUserDirectory(base.repo),
		board.WithCategoryDirectory(base.repo),
		board.WithFileStore(board.NewFileStore(base.blobs, nil)),
	)
	require.NoError(t, err)

	err = svc.UpdateFeed(context.Background(), board.UpdateFeedRequest{
		ID:            post.ID,
		Thumbnail:     upload("cover.png", "cover"),
		Title:         "t",
		Contents:      []string{"x"},
		ContentImages: []*board.Upload{upload("a.png", "A")},
	})
	require.Error(t, err)
	assert.Equal(t, before, base.blobs.Len())
}

func TestUpdatePost_KeepsTagsAndImages(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	post := f.createFeed(t, "keep")

	err := f.svc.UpdatePost(ctx, board.UpdatePostRequest{
		ID:        post.ID,
		Title:     "renamed",
		Body:      "plain body",
		Thumbnail: "other.png",
	})
	require.NoError(t, err)

	got, err := f.svc.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Title)
	assert.Equal(t, "plain body", got.Body)
	assert.Equal(t, "other.png", got.Thumbnail)
	assert.Equal(t, []string{"#keep"}, got.Tags)
	assert.Len(t, got.Images, 1)
	assert.True(t, got.UpdatedAt.After(got.CreatedAt))
}

func TestIncrementHit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	post := f.createFeed(t)

	for i := 0; i < 7; i++ {
		require.NoError(t, f.svc.IncrementHit(ctx, post.ID))
	}

	got, err := f.svc.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, post.Hits+7, got.Hits)
}

func TestDeletePost_MissingIDIsNotAnError(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	assert.NoError(t, f.svc.DeletePost(ctx, uuid.New()))

	post := f.createFeed(t)
	require.NoError(t, f.svc.DeletePost(ctx, post.ID))
	_, err := f.svc.GetPost(ctx, post.ID)
	assert.ErrorIs(t, err, board.ErrPostNotFound)
}

func TestListPosts_PageSizesPerCategory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i := 0; i < 12; i++ {
		for _, category := range []int64{feedCategory, postCategory} {
			_, err := f.svc.CreatePost(ctx, board.CreatePostRequest{
				AuthorID: f.author, CategoryID: category, Title: fmt.Sprintf("p%d", i),
			})
			require.NoError(t, err)
		}
	}

	feed, err := f.svc.ListPosts(ctx, board.ListPostsRequest{CategoryID: feedCategory, Page: 0})
	require.NoError(t, err)
	assert.Len(t, feed.Items, board.DefaultFeedPageSize)
	assert.Equal(t, int64(12), feed.Total)
	assert.Equal(t, 2, feed.TotalPages)
	assert.True(t, feed.HasNext())
	assert.Equal(t, "p11", feed.Items[0].Title, "newest first")

	posts, err := f.svc.ListPosts(ctx, board.ListPostsRequest{CategoryID: postCategory, Page: 0})
	require.NoError(t, err)
	assert.Len(t, posts.Items, board.DefaultPostPageSize)

	last, err := f.svc.ListPosts(ctx, board.ListPostsRequest{CategoryID: postCategory, Page: 1})
	require.NoError(t, err)
	assert.Len(t, last.Items, 2)
	assert.False(t, last.HasNext())

	_, err = f.svc.ListPosts(ctx, board.ListPostsRequest{CategoryID: postCategory, Page: -1})
	assert.ErrorIs(t, err, board.ErrInvalidRequest)
}

func TestListPosts_PageOutOfRange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.createFeed(t)

	_, err := f.svc.ListPosts(ctx, board.ListPostsRequest{CategoryID: feedCategory, Page: math.MaxInt/board.DefaultFeedPageSize + 1})
	assert.ErrorIs(t, err, board.ErrInvalidRequest)

	_, err = f.svc.ListPosts(ctx, board.ListPostsRequest{CategoryID: feedCategory, Page: math.MaxInt})
	assert.ErrorIs(t, err, board.ErrInvalidRequest)

	lastPage := (math.MaxInt - board.DefaultFeedPageSize) / board.DefaultFeedPageSize
	page, err := f.svc.ListPosts(ctx, board.ListPostsRequest{CategoryID: feedCategory, Page: lastPage})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, int64(1), page.Total)
}

func TestListPosts_ConfigurablePolicy(t *testing.T) {
	policy := board.NewPolicy(feedCategory, postCategory,
		board.CategoryPolicy{PageSize: 3, SearchLimit: 1},
		board.CategoryPolicy{PageSize: 5, SearchLimit: 2},
	)
	f := newFixture(t, board.WithPolicy(policy))
	ctx := context.Background()

	for i := 0; i < 6; i++ {
		f.createFeed(t)
		_, err := f.svc.CreatePost(ctx, board.CreatePostRequest{AuthorID: f.author, CategoryID: postCategory, Title: "feed"})
		require.NoError(t, err)
	}

	feed, err := f.svc.ListPosts(ctx, board.ListPostsRequest{CategoryID: feedCategory})
	require.NoError(t, err)
	assert.Len(t, feed.Items, 3)

	posts, err := f.svc.ListPosts(ctx, board.ListPostsRequest{CategoryID: postCategory})
	require.NoError(t, err)
	assert.Len(t, posts.Items, 5)

	found, err := f.svc.SearchPosts(ctx, board.SearchPostsRequest{CategoryID: feedCategory, Keyword: "feed"})
	require.NoError(t, err)
	assert.Len(t, found, 1)

	found, err = f.svc.SearchPosts(ctx, board.SearchPostsRequest{CategoryID: postCategory, Keyword: "FEED"})
	require.NoError(t, err)
	assert.Len(t, found, 2)
}

func TestSearchPosts_OtherCategoryUsesDefaultLimit(t *testing.T) {
	const eventCategory int64 = 3
	f := newFixture(t)
	f.repo.PutCategory(board.Category{ID: eventCategory, Name: "event"})
	ctx := context.Background()

	for i := 0; i < board.DefaultPostSearchLimit+3; i++ {
		_, err := f.svc.CreatePost(ctx, board.CreatePostRequest{
			AuthorID: f.author, CategoryID: eventCategory, Title: fmt.Sprintf("festival %d", i),
		})
		require.NoError(t, err)
	}

	found, err := f.svc.SearchPosts(ctx, board.SearchPostsRequest{CategoryID: eventCategory, Keyword: "festival"})
	require.NoError(t, err)
	assert.Len(t, found, board.DefaultPostSearchLimit)

	page, err := f.svc.ListPosts(ctx, board.ListPostsRequest{CategoryID: eventCategory})
	require.NoError(t, err)
	assert.Len(t, page.Items, board.DefaultPostSearchLimit+3)
	assert.Equal(t, board.DefaultPostPageSize, page.PageSize)
}

func TestListPosts_TagFilter(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.createFeed(t, "rice")
	f.createFeed(t, "rice", "wine")
	f.createFeed(t, "wine")

	all, err := f.svc.ListPosts(ctx, board.ListPostsRequest{CategoryID: feedCategory})
	require.NoError(t, err)
	unfiltered, err := f.svc.ListPosts(ctx, board.ListPostsRequest{CategoryID: feedCategory, Tag: ""})
	require.NoError(t, err)
	assert.Equal(t, all, unfiltered)
	assert.Equal(t, int64(3), all.Total)

	for _, tag := range []string{"wine", "#wine"} {
		page, err := f.svc.ListPosts(ctx, board.ListPostsRequest{CategoryID: feedCategory, Tag: tag})
		require.NoError(t, err)
		assert.Len(t, page.Items, 2)
		assert.Equal(t, int64(2), page.Total)
	}

	n, err := f.svc.CountPosts(ctx, feedCategory, "rice")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = f.svc.CountPosts(ctx, feedCategory, "")
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestTopTags_CappedAtFifteen(t *testing.T) {
	f := newFixture(t)

	for i := 0; i < 20; i++ {
		f.createFeed(t, fmt.Sprintf("tag%02d", i))
	}
	f.createFeed(t, "tag07")

	tags, err := f.svc.TopTags(context.Background())
	require.NoError(t, err)
	assert.Len(t, tags, board.MaxTopTags)
	assert.Equal(t, "#tag07", tags[0])
}

func TestListPostsByAuthor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i := 0; i < 12; i++ {
		f.createFeed(t)
	}

	posts, err := f.svc.ListPostsByAuthor(ctx, f.author)
	require.NoError(t, err)
	assert.Len(t, posts, 12, "not paginated")
}

type recordingSink struct {
	board.NoopEventSink
	created int
	err     error
}

func (s *recordingSink) PostCreated(ctx context.Context, post *board.Post) error {
	s.created++
	return s.err
}

func TestEventSink_FailuresAreNotReturned(t *testing.T) {
	sink := &recordingSink{err: errors.New("broker down")}
	f := newFixture(t, board.WithEventSink(sink))

	_, err := f.svc.CreatePost(context.Background(), board.CreatePostRequest{
		AuthorID: f.author, CategoryID: postCategory, Title: "t",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, sink.created)
}

func TestOpenFile_Missing(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.OpenFile(context.Background(), "nope.png")
	assert.ErrorIs(t, err, board.ErrNotFound)

	_, err = f.svc.OpenFile(context.Background(), "../secret")
	assert.ErrorIs(t, err, board.ErrNotFound)
}
