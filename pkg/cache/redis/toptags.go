// Package redis caches board read models in Redis.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/sulbao/community/pkg/board"
)

const (
	// DefaultKey holds the cached rankings, one hash field per limit
	DefaultKey = "board:top_tags"

	// DefaultTTL bounds how stale a ranking can get
	DefaultTTL = 5 * time.Minute

	connectionTimeout = 5 * time.Second
)

// ErrEmptyURL is returned when no Redis URL is configured.
var ErrEmptyURL = errors.New("redis url is required")

// NewClient connects to a redis:// URL and verifies the connection.
func NewClient(ctx context.Context, url string) (*goredis.Client, error) {
	if url == "" {
		return nil, ErrEmptyURL
	}

	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := goredis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, connectionTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

// Repository wraps a board.Repository and serves TopTags from Redis.
// Writes that can change tags drop the cached rankings.
type Repository struct {
	board.Repository
	client goredis.Cmdable
	key    string
	ttl    time.Duration
	logger *slog.Logger
}

// Option configures the cache
type Option func(*Repository)

// WithKey overrides the Redis key
func WithKey(key string) Option {
	return func(r *Repository) {
		r.key = key
	}
}

// WithTTL overrides the expiry of cached rankings
func WithTTL(ttl time.Duration) Option {
	return func(r *Repository) {
		r.ttl = ttl
	}
}

// WithLogger sets the structured logger
func WithLogger(logger *slog.Logger) Option {
	return func(r *Repository) {
		r.logger = logger
	}
}

// New wraps repo with a top-tag cache backed by client
func New(repo board.Repository, client goredis.Cmdable, options ...Option) *Repository {
	r := &Repository{
		Repository: repo,
		client:     client,
		key:        DefaultKey,
		ttl:        DefaultTTL,
		logger:     slog.Default(),
	}
	for _, option := range options {
		option(r)
	}
	return r
}

// TopTags returns the cached ranking when present. Cache failures fall back
// to the wrapped repository.
func (r *Repository) TopTags(ctx context.Context, limit int) ([]string, error) {
	field := strconv.Itoa(limit)

	cached, err := r.client.HGet(ctx, r.key, field).Result()
	switch {
	case err == nil:
		var tags []string
		if jsonErr := json.Unmarshal([]byte(cached), &tags); jsonErr == nil {
			return tags, nil
		}
		r.logger.WarnContext(ctx, "discarding malformed top tags entry", "key", r.key, "field", field)
	case !errors.Is(err, goredis.Nil):
		r.logger.WarnContext(ctx, "top tags cache read failed", "key", r.key, "error", err)
	}

	tags, err := r.Repository.TopTags(ctx, limit)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(tags)
	if err != nil {
		return tags, nil
	}

	_, err = r.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.HSet(ctx, r.key, field, payload)
		pipe.Expire(ctx, r.key, r.ttl)
		return nil
	})
	if err != nil {
		r.logger.WarnContext(ctx, "top tags cache write failed", "key", r.key, "error", err)
	}
	return tags, nil
}

func (r *Repository) CreatePost(ctx context.Context, post *board.Post) error {
	if err := r.Repository.CreatePost(ctx, post); err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}

func (r *Repository) UpdatePost(ctx context.Context, post *board.Post) error {
	if err := r.Repository.UpdatePost(ctx, post); err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}

func (r *Repository) DeletePost(ctx context.Context, id uuid.UUID) error {
	if err := r.Repository.DeletePost(ctx, id); err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}

func (r *Repository) invalidate(ctx context.Context) {
	if err := r.client.Del(ctx, r.key).Err(); err != nil {
		r.logger.WarnContext(ctx, "top tags cache invalidation failed", "key", r.key, "error", err)
	}
}
