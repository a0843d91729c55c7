package board

import "fmt"

// Default category identifiers and limits.
const (
	DefaultFeedCategoryID int64 = 1
	DefaultPostCategoryID int64 = 2

	DefaultFeedPageSize    = 9
	DefaultPostPageSize    = 10
	DefaultFeedSearchLimit = 6
	DefaultPostSearchLimit = 4
)

// CategoryPolicy holds the listing limits of one category.
type CategoryPolicy struct {
	PageSize    int
	SearchLimit int
}

// Policy maps category ids to their limits. Categories without an entry use
// Default.
type Policy struct {
	Categories map[int64]CategoryPolicy
	Default    CategoryPolicy
}

// DefaultPolicy returns the feed/post policy with the post limits as fallback.
func DefaultPolicy() Policy {
	return NewPolicy(DefaultFeedCategoryID, DefaultPostCategoryID,
		CategoryPolicy{PageSize: DefaultFeedPageSize, SearchLimit: DefaultFeedSearchLimit},
		CategoryPolicy{PageSize: DefaultPostPageSize, SearchLimit: DefaultPostSearchLimit},
	)
}

// NewPolicy builds a policy for the designated feed and post categories.
// Any other category falls back to the post limits.
func NewPolicy(feedID, postID int64, feed, post CategoryPolicy) Policy {
	return Policy{
		Categories: map[int64]CategoryPolicy{
			feedID: feed,
			postID: post,
		},
		Default: post,
	}
}

// For resolves the limits of a category.
func (p Policy) For(categoryID int64) CategoryPolicy {
	if cp, ok := p.Categories[categoryID]; ok {
		return cp
	}
	return p.Default
}

// Validate checks every limit is positive.
func (p Policy) Validate() error {
	if err := p.Default.validate(); err != nil {
		return fmt.Errorf("default policy: %w", err)
	}
	for id, cp := range p.Categories {
		if err := cp.validate(); err != nil {
			return fmt.Errorf("category %d policy: %w", id, err)
		}
	}
	return nil
}

func (cp CategoryPolicy) validate() error {
	if cp.PageSize <= 0 {
		return fmt.Errorf("page size must be positive, got %d", cp.PageSize)
	}
	if cp.SearchLimit <= 0 {
		return fmt.Errorf("search limit must be positive, got %d", cp.SearchLimit)
	}
	return nil
}
