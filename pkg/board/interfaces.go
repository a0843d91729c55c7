package board

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for post persistence.
//
// Implementations return ErrPostNotFound for unknown ids, except DeletePost
// which treats a missing id as already deleted. List methods return posts
// newest first.
type Repository interface {
	CreatePost(ctx context.Context, post *Post) error
	GetPost(ctx context.Context, id uuid.UUID) (*Post, error)
	UpdatePost(ctx context.Context, post *Post) error
	DeletePost(ctx context.Context, id uuid.UUID) error

	// IncrementHits atomically adds one to the post's hit counter
	IncrementHits(ctx context.Context, id uuid.UUID) error

	// Query operations
	ListPosts(ctx context.Context, params ListPostsParams) ([]*Post, error)
	CountPosts(ctx context.Context, params CountPostsParams) (int64, error)
	ListPostsByAuthor(ctx context.Context, authorID uuid.UUID) ([]*Post, error)
	SearchPosts(ctx context.Context, categoryID int64, keyword string) ([]*Post, error)

	// TopTags ranks stored tags by frequency, most used first
	TopTags(ctx context.Context, limit int) ([]string, error)
}

// UserDirectory resolves authors.
type UserDirectory interface {
	GetUser(ctx context.Context, id uuid.UUID) (*User, error)
}

// CategoryDirectory resolves categories.
type CategoryDirectory interface {
	GetCategory(ctx context.Context, id int64) (*Category, error)
}

// BlobStore defines the interface for storage backends
type BlobStore interface {
	// Upload uploads content directly
	Upload(ctx context.Context, objectKey string, reader io.Reader) error

	// UploadWithParams uploads content with additional parameters
	UploadWithParams(ctx context.Context, reader io.Reader, params UploadParams) error

	// Download downloads content directly
	Download(ctx context.Context, objectKey string) (io.ReadCloser, error)

	// Delete deletes content
	Delete(ctx context.Context, objectKey string) error

	// GetObjectMeta retrieves metadata for an object
	GetObjectMeta(ctx context.Context, objectKey string) (*ObjectMeta, error)
}

// FileStore persists uploads under a directory and hands back stored names.
type FileStore interface {
	// Upload stores the file and returns its generated name
	Upload(ctx context.Context, dir string, file *Upload) (string, error)

	// Open streams a previously stored file
	Open(ctx context.Context, dir, name string) (io.ReadCloser, *ObjectMeta, error)

	// Delete removes a stored file
	Delete(ctx context.Context, dir, name string) error
}

// EventSink defines the interface for post lifecycle events
type EventSink interface {
	PostCreated(ctx context.Context, post *Post) error
	PostUpdated(ctx context.Context, post *Post) error
	PostDeleted(ctx context.Context, postID uuid.UUID) error
}

// ObjectMeta contains metadata about an object in storage
type ObjectMeta struct {
	Key         string
	Size        int64
	ContentType string
	UpdatedAt   time.Time
	ETag        string
	Metadata    map[string]string
}

// UploadParams contains parameters for uploading an object
type UploadParams struct {
	ObjectKey string
	MimeType  string
}
