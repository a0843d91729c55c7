package board

import (
	"context"
	"io"

	"github.com/google/uuid"
)

// Service defines the post and feed operations of the board
type Service interface {
	// Creation
	CreatePost(ctx context.Context, req CreatePostRequest) (*Post, error)
	CreateFeed(ctx context.Context, req CreateFeedRequest) (*Post, error)

	// Retrieval
	GetPost(ctx context.Context, id uuid.UUID) (*Post, error)
	ListPosts(ctx context.Context, req ListPostsRequest) (*Page, error)
	CountPosts(ctx context.Context, categoryID int64, tag string) (int64, error)
	ListPostsByAuthor(ctx context.Context, userID uuid.UUID) ([]*Post, error)
	SearchPosts(ctx context.Context, req SearchPostsRequest) ([]*Post, error)
	TopTags(ctx context.Context) ([]string, error)

	// Mutation
	UpdatePost(ctx context.Context, req UpdatePostRequest) error
	UpdateFeed(ctx context.Context, req UpdateFeedRequest) error
	IncrementHit(ctx context.Context, id uuid.UUID) error
	DeletePost(ctx context.Context, id uuid.UUID) error

	// Files
	OpenFile(ctx context.Context, name string) (*File, error)
}

// File is a stored upload opened for reading. Callers must close Body.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.ReadCloser
}
