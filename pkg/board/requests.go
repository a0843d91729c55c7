package board

import (
	"io"

	"github.com/google/uuid"
)

// Upload is a file received from a client.
type Upload struct {
	FileName    string
	ContentType string
	Size        int64
	Reader      io.Reader
}

// IsEmpty reports whether the upload carries no file, like an unset form field.
func (u *Upload) IsEmpty() bool {
	return u == nil || u.Reader == nil || u.Size <= 0
}

// CreatePostRequest contains parameters for creating a simple post
type CreatePostRequest struct {
	AuthorID   uuid.UUID
	CategoryID int64
	Title      string
	Body       string
	Thumbnail  string
}

// CreateFeedRequest contains parameters for creating a feed post with
// per-segment images. Contents and ContentImages are positionally paired.
type CreateFeedRequest struct {
	AuthorID      uuid.UUID
	CategoryID    int64
	Thumbnail     *Upload
	Tags          []string
	Title         string
	Contents      []string
	ContentImages []*Upload
}

// UpdatePostRequest replaces title, body and thumbnail of a post
type UpdatePostRequest struct {
	ID        uuid.UUID
	Title     string
	Body      string
	Thumbnail string
}

// UpdateFeedRequest replaces a feed post. A nil or empty Thumbnail keeps the
// stored thumbnail. Every image slot is replaced by the matching ContentImages
// entry.
type UpdateFeedRequest struct {
	ID            uuid.UUID
	Thumbnail     *Upload
	Tags          []string
	Title         string
	Contents      []string
	ContentImages []*Upload
}

// ListPostsRequest selects a page of a category. Page is zero-based; an empty
// Tag disables tag filtering.
type ListPostsRequest struct {
	CategoryID int64
	Page       int
	Tag        string
}

// SearchPostsRequest searches a category by keyword
type SearchPostsRequest struct {
	CategoryID int64
	Keyword    string
}
