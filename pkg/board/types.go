package board

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// BodySeparator joins the body segments of a feed post.
	BodySeparator = "|"

	// TagPrefix marks a stored tag.
	TagPrefix = "#"

	// MaxTopTags caps the TopTags result.
	MaxTopTags = 15
)

// Post represents a user-authored, category-scoped piece of content.
type Post struct {
	ID         uuid.UUID    `json:"id"`
	AuthorID   uuid.UUID    `json:"author_id"`
	CategoryID int64        `json:"category_id"`
	Title      string       `json:"title"`
	Body       string       `json:"body"`
	Thumbnail  string       `json:"thumbnail,omitempty"`
	Images     []*PostImage `json:"images"`
	Tags       []string     `json:"tags"`
	Hits       int64        `json:"hits"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

// Segments splits the body into its positional segments.
func (p *Post) Segments() []string {
	return strings.Split(p.Body, BodySeparator)
}

// Clone returns a deep copy of the post.
func (p *Post) Clone() *Post {
	c := *p
	if p.Images != nil {
		c.Images = make([]*PostImage, len(p.Images))
		for i, img := range p.Images {
			if img != nil {
				imgCopy := *img
				c.Images[i] = &imgCopy
			}
		}
	}
	if p.Tags != nil {
		c.Tags = append([]string(nil), p.Tags...)
	}
	return &c
}

// PostImage is an inline image stored for one body segment.
type PostImage struct {
	FileName string `json:"file_name"`
}

// ImageNames flattens images to stored names, using "" for empty slots.
func ImageNames(images []*PostImage) []string {
	names := make([]string, len(images))
	for i, img := range images {
		if img != nil {
			names[i] = img.FileName
		}
	}
	return names
}

// ImagesFromNames is the inverse of ImageNames.
func ImagesFromNames(names []string) []*PostImage {
	images := make([]*PostImage, len(names))
	for i, name := range names {
		if name != "" {
			images[i] = &PostImage{FileName: name}
		}
	}
	return images
}

// Category is a classification bucket that drives page size and search limits.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// User is the board's view of a member account.
type User struct {
	ID          uuid.UUID `json:"id"`
	LoginID     string    `json:"login_id"`
	ProfileName string    `json:"profile_name"`
}

// Page is one page of posts together with the total matching count.
type Page struct {
	Items      []*Post `json:"items"`
	Page       int     `json:"page"`
	PageSize   int     `json:"page_size"`
	Total      int64   `json:"total"`
	TotalPages int     `json:"total_pages"`
}

// HasNext reports whether another page follows this one.
func (p *Page) HasNext() bool {
	return p.Page+1 < p.TotalPages
}

// ListPostsParams selects a page of posts in a category.
// An empty Tag means no tag filtering. Tag is the stored form (with TagPrefix).
type ListPostsParams struct {
	CategoryID int64
	Tag        string
	Limit      int
	Offset     int
}

// CountPostsParams selects the posts counted by CountPosts.
type CountPostsParams struct {
	CategoryID int64
	Tag        string
}

// NormalizeTag trims a tag and gives it exactly one leading TagPrefix.
// It returns "" for blank tags.
func NormalizeTag(tag string) string {
	tag = strings.TrimSpace(tag)
	tag = strings.TrimLeft(tag, TagPrefix)
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return ""
	}
	return TagPrefix + tag
}

// NormalizeTags normalizes every tag, dropping blanks and duplicates while
// keeping the first occurrence order.
func NormalizeTags(tags []string) []string {
	result := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		n := NormalizeTag(t)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		result = append(result, n)
	}
	return result
}
