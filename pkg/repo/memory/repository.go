package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/sulbao/community/pkg/board"
	"github.com/sulbao/community/pkg/member"
)

type storedPost struct {
	post *board.Post
	seq  uint64
}

// Repository keeps posts, categories and members in memory. It implements
// board.Repository, board.UserDirectory, board.CategoryDirectory and
// member.Repository, so one instance can back both services.
type Repository struct {
	mu         sync.RWMutex
	seq        uint64
	posts      map[uuid.UUID]*storedPost
	categories map[int64]*board.Category
	members    map[uuid.UUID]*member.Member
	byLoginID  map[string]uuid.UUID
}

// New creates a new in-memory repository
func New() *Repository {
	return &Repository{
		posts:      make(map[uuid.UUID]*storedPost),
		categories: make(map[int64]*board.Category),
		members:    make(map[uuid.UUID]*member.Member),
		byLoginID:  make(map[string]uuid.UUID),
	}
}

// Category operations

// PutCategory adds or renames a category
func (r *Repository) PutCategory(category board.Category) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c := category
	r.categories[c.ID] = &c
}

func (r *Repository) GetCategory(ctx context.Context, id int64) (*board.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, exists := r.categories[id]
	if !exists {
		return nil, board.ErrCategoryNotFound
	}
	categoryCopy := *c
	return &categoryCopy, nil
}

// Post operations

func (r *Repository) CreatePost(ctx context.Context, post *board.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	r.posts[post.ID] = &storedPost{post: post.Clone(), seq: r.seq}
	return nil
}

func (r *Repository) GetPost(ctx context.Context, id uuid.UUID) (*board.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sp, exists := r.posts[id]
	if !exists {
		return nil, board.ErrPostNotFound
	}
	return sp.post.Clone(), nil
}

// UpdatePost stores every field but Hits, which only IncrementHits changes
func (r *Repository) UpdatePost(ctx context.Context, post *board.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	sp, exists := r.posts[post.ID]
	if !exists {
		return board.ErrPostNotFound
	}

	updated := post.Clone()
	updated.Hits = sp.post.Hits
	updated.CreatedAt = sp.post.CreatedAt
	sp.post = updated
	return nil
}

func (r *Repository) DeletePost(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.posts, id)
	return nil
}

func (r *Repository) IncrementHits(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	sp, exists := r.posts[id]
	if !exists {
		return board.ErrPostNotFound
	}
	sp.post.Hits++
	return nil
}

func (r *Repository) ListPosts(ctx context.Context, params board.ListPostsParams) ([]*board.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := r.filter(func(p *board.Post) bool {
		return p.CategoryID == params.CategoryID && hasTag(p, params.Tag)
	})

	if params.Offset < 0 || params.Offset >= len(matched) {
		return []*board.Post{}, nil
	}
	end := len(matched)
	if params.Limit > 0 && params.Limit < end-params.Offset {
		end = params.Offset + params.Limit
	}
	return matched[params.Offset:end], nil
}

func (r *Repository) CountPosts(ctx context.Context, params board.CountPostsParams) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var n int64
	for _, sp := range r.posts {
		if sp.post.CategoryID == params.CategoryID && hasTag(sp.post, params.Tag) {
			n++
		}
	}
	return n, nil
}

func (r *Repository) ListPostsByAuthor(ctx context.Context, authorID uuid.UUID) ([]*board.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.filter(func(p *board.Post) bool {
		return p.AuthorID == authorID
	}), nil
}

// SearchPosts matches the keyword case-insensitively against title and body
func (r *Repository) SearchPosts(ctx context.Context, categoryID int64, keyword string) ([]*board.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keyword = strings.ToLower(keyword)
	return r.filter(func(p *board.Post) bool {
		if p.CategoryID != categoryID {
			return false
		}
		return strings.Contains(strings.ToLower(p.Title), keyword) ||
			strings.Contains(strings.ToLower(p.Body), keyword)
	}), nil
}

func (r *Repository) TopTags(ctx context.Context, limit int) ([]string, error) {
	r.mu.RLock()
	counts := make(map[string]int)
	for _, sp := range r.posts {
		for _, tag := range sp.post.Tags {
			counts[tag]++
		}
	}
	r.mu.RUnlock()

	tags := make([]string, 0, len(counts))
	for tag := range counts {
		tags = append(tags, tag)
	}
	// most used first, ties alphabetically
	sort.Slice(tags, func(i, j int) bool {
		if counts[tags[i]] != counts[tags[j]] {
			return counts[tags[i]] > counts[tags[j]]
		}
		return tags[i] < tags[j]
	})

	if limit > 0 && len(tags) > limit {
		tags = tags[:limit]
	}
	return tags, nil
}

// filter returns copies of the matching posts, newest first. Callers hold r.mu.
func (r *Repository) filter(keep func(*board.Post) bool) []*board.Post {
	matched := make([]*storedPost, 0)
	for _, sp := range r.posts {
		if keep(sp.post) {
			matched = append(matched, sp)
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if !a.post.CreatedAt.Equal(b.post.CreatedAt) {
			return a.post.CreatedAt.After(b.post.CreatedAt)
		}
		return a.seq > b.seq
	})

	result := make([]*board.Post, len(matched))
	for i, sp := range matched {
		result[i] = sp.post.Clone()
	}
	return result
}

func hasTag(p *board.Post, tag string) bool {
	if tag == "" {
		return true
	}
	for _, t := range p.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
