package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"github.com/sulbao/community/pkg/board"
	cacheredis "github.com/sulbao/community/pkg/cache/redis"
	"github.com/sulbao/community/pkg/member"
	"github.com/sulbao/community/pkg/objectkey"
	"github.com/sulbao/community/pkg/repo/memory"
	repopg "github.com/sulbao/community/pkg/repo/postgres"
	fsstorage "github.com/sulbao/community/pkg/storage/fs"
	memorystorage "github.com/sulbao/community/pkg/storage/memory"
	s3storage "github.com/sulbao/community/pkg/storage/s3"
)

// Services holds everything the HTTP layer needs
type Services struct {
	Board   board.Service
	Members member.Service

	pool  *pgxpool.Pool
	redis *goredis.Client
}

// Ready checks the external dependencies
func (s *Services) Ready(ctx context.Context) error {
	if s.pool != nil {
		if err := s.pool.Ping(ctx); err != nil {
			return fmt.Errorf("database: %w", err)
		}
	}
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
	}
	return nil
}

// Close releases the connection pools
func (s *Services) Close() {
	if s.redis != nil {
		s.redis.Close()
	}
	if s.pool != nil {
		s.pool.Close()
	}
}

// store is what both repository adapters provide
type store interface {
	board.Repository
	board.UserDirectory
	board.CategoryDirectory
	member.Repository
}

// Build creates the services described by the configuration
func (c *ServerConfig) Build(ctx context.Context, logger *slog.Logger) (*Services, error) {
	if logger == nil {
		logger = slog.Default()
	}
	services := &Services{}

	repo, err := c.buildRepository(ctx, services)
	if err != nil {
		services.Close()
		return nil, fmt.Errorf("failed to build repository: %w", err)
	}

	blobs, err := c.buildStorageBackend(ctx)
	if err != nil {
		services.Close()
		return nil, fmt.Errorf("failed to build storage backend %s: %w", c.Storage.Type, err)
	}

	var posts board.Repository = repo
	if c.RedisURL != "" {
		client, err := cacheredis.NewClient(ctx, c.RedisURL)
		if err != nil {
			services.Close()
			return nil, err
		}
		services.redis = client
		posts = cacheredis.New(repo, client,
			cacheredis.WithTTL(c.TopTagsTTL),
			cacheredis.WithLogger(logger),
		)
	}

	options := []board.Option{
		board.WithRepository(posts),
		board.WithUserDirectory(repo),
		board.WithCategoryDirectory(repo),
		board.WithFileStore(board.NewFileStore(blobs, objectkey.NewRecommendedGenerator())),
		board.WithUploadDir(c.UploadDir),
		board.WithPolicy(c.Policy()),
		board.WithLogger(logger),
	}
	if c.EnableEventLogging {
		options = append(options, board.WithEventSink(board.NewLoggingEventSink(logger)))
	}

	services.Board, err = board.New(options...)
	if err != nil {
		services.Close()
		return nil, err
	}

	services.Members, err = member.New(
		member.WithRepository(repo),
		member.WithPasswordCost(c.PasswordCost),
		member.WithLogger(logger),
	)
	if err != nil {
		services.Close()
		return nil, err
	}

	if c.AdminLoginID != "" {
		if err := member.EnsureAdmin(ctx, repo, c.AdminLoginID, c.AdminPassword); err != nil {
			services.Close()
			return nil, fmt.Errorf("failed to ensure admin account: %w", err)
		}
	}

	return services, nil
}

func (c *ServerConfig) categories() []board.Category {
	return []board.Category{
		{ID: c.FeedCategoryID, Name: "feed"},
		{ID: c.PostCategoryID, Name: "post"},
	}
}

// buildRepository creates the repository adapter and seeds the configured categories
func (c *ServerConfig) buildRepository(ctx context.Context, services *Services) (store, error) {
	switch c.DatabaseType {
	case "memory":
		repo := memory.New()
		for _, category := range c.categories() {
			repo.PutCategory(category)
		}
		return repo, nil
	case "postgres":
		if c.DatabaseURL == "" {
			return nil, errors.New("database_url is required for postgres")
		}
		cfg, err := pgxpool.ParseConfig(c.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse DATABASE_URL: %w", err)
		}
		pool, err := pgxpool.NewWithConfig(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create pgx pool: %w", err)
		}
		services.pool = pool

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := pool.Ping(pingCtx); err != nil {
			return nil, fmt.Errorf("database ping failed: %w", err)
		}
		if err := repopg.Migrate(ctx, pool); err != nil {
			return nil, err
		}

		repo := repopg.NewWithPool(pool)
		for _, category := range c.categories() {
			if err := repo.PutCategory(ctx, category); err != nil {
				return nil, err
			}
		}
		return repo, nil
	default:
		return nil, fmt.Errorf("unsupported database type: %s", c.DatabaseType)
	}
}

// buildStorageBackend creates a BlobStore based on the storage configuration
func (c *ServerConfig) buildStorageBackend(ctx context.Context) (board.BlobStore, error) {
	s := c.Storage
	switch s.Type {
	case "memory":
		return memorystorage.New(), nil
	case "fs":
		return fsstorage.New(fsstorage.Config{BaseDir: s.BaseDir})
	case "s3":
		return s3storage.New(ctx, s3storage.Config{
			Region:                 s.Region,
			Bucket:                 s.Bucket,
			AccessKeyID:            s.AccessKeyID,
			SecretAccessKey:        s.SecretAccessKey,
			Endpoint:               s.Endpoint,
			UsePathStyle:           s.UsePathStyle,
			EnableSSE:              s.EnableSSE,
			SSEAlgorithm:           s.SSEAlgorithm,
			SSEKMSKeyID:            s.SSEKMSKeyID,
			CreateBucketIfNotExist: s.CreateBucketIfNotExist,
		})
	default:
		return nil, fmt.Errorf("unsupported storage backend type: %s", s.Type)
	}
}
