package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/sulbao/community/pkg/board"
	cacheredis "github.com/sulbao/community/pkg/cache/redis"
	"golang.org/x/crypto/bcrypt"
)

// Option applies configuration to a ServerConfig instance.
type Option func(*ServerConfig) error

// Load constructs a ServerConfig by applying the supplied options on top of defaults.
func Load(opts ...Option) (*ServerConfig, error) {
	cfg := defaults()

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	// development servers sign with a per-process secret
	if cfg.JWTSecret == "" && !cfg.IsProduction() {
		secret := make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return nil, fmt.Errorf("generate jwt secret: %w", err)
		}
		cfg.JWTSecret = hex.EncodeToString(secret)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func defaults() ServerConfig {
	return ServerConfig{
		Port:         "8080",
		Environment:  "development",
		DatabaseType: "memory",
		Storage: StorageConfig{
			Type: "memory",
		},
		TopTagsTTL:         cacheredis.DefaultTTL,
		UploadDir:          board.DefaultUploadDir,
		TokenTTL:           24 * time.Hour,
		PasswordCost:       bcrypt.DefaultCost,
		FeedCategoryID:     board.DefaultFeedCategoryID,
		PostCategoryID:     board.DefaultPostCategoryID,
		FeedPageSize:       board.DefaultFeedPageSize,
		PostPageSize:       board.DefaultPostPageSize,
		FeedSearchLimit:    board.DefaultFeedSearchLimit,
		PostSearchLimit:    board.DefaultPostSearchLimit,
		EnableEventLogging: true,
	}
}

// ServerConfig represents the configuration of the community server
type ServerConfig struct {
	Port        string
	Environment string // development, production, testing

	// Database configuration
	DatabaseURL  string
	DatabaseType string // "memory", "postgres"

	Storage StorageConfig

	// Optional top-tag cache
	RedisURL   string
	TopTagsTTL time.Duration

	UploadDir string

	// Authentication
	JWTSecret     string
	TokenTTL      time.Duration
	PasswordCost  int
	AdminLoginID  string
	AdminPassword string

	// Category policy
	FeedCategoryID  int64
	PostCategoryID  int64
	FeedPageSize    int
	PostPageSize    int
	FeedSearchLimit int
	PostSearchLimit int

	EnableEventLogging bool
}

// StorageConfig selects and configures the blob store
type StorageConfig struct {
	Type    string // "memory", "fs", "s3"
	BaseDir string

	Bucket                 string
	Region                 string
	AccessKeyID            string
	SecretAccessKey        string
	Endpoint               string
	UsePathStyle           bool
	EnableSSE              bool
	SSEAlgorithm           string
	SSEKMSKeyID            string
	CreateBucketIfNotExist bool
}

// IsProduction reports whether the server runs in production mode
func (c *ServerConfig) IsProduction() bool {
	return c.Environment == "production"
}

// Policy returns the category policy described by the configuration
func (c *ServerConfig) Policy() board.Policy {
	return board.NewPolicy(c.FeedCategoryID, c.PostCategoryID,
		board.CategoryPolicy{PageSize: c.FeedPageSize, SearchLimit: c.FeedSearchLimit},
		board.CategoryPolicy{PageSize: c.PostPageSize, SearchLimit: c.PostSearchLimit},
	)
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}

	if c.DatabaseType != "memory" && c.DatabaseType != "postgres" {
		return errors.New("database_type must be 'memory' or 'postgres'")
	}

	if c.DatabaseType == "postgres" && c.DatabaseURL == "" {
		return errors.New("database_url is required when using postgres")
	}

	switch c.Storage.Type {
	case "memory":
	case "fs":
		if c.Storage.BaseDir == "" {
			return errors.New("storage base_dir is required for fs storage")
		}
	case "s3":
		if c.Storage.Bucket == "" {
			return errors.New("storage bucket is required for s3 storage")
		}
	default:
		return fmt.Errorf("unsupported storage type: %s", c.Storage.Type)
	}

	if c.JWTSecret == "" && c.IsProduction() {
		return errors.New("jwt_secret is required in production")
	}
	if c.TokenTTL <= 0 {
		return errors.New("token_ttl must be positive")
	}
	if c.PasswordCost < bcrypt.MinCost || c.PasswordCost > bcrypt.MaxCost {
		return fmt.Errorf("password_cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	if (c.AdminLoginID == "") != (c.AdminPassword == "") {
		return errors.New("admin_login_id and admin_password must be set together")
	}

	if err := c.Policy().Validate(); err != nil {
		return fmt.Errorf("invalid category policy: %w", err)
	}

	return nil
}
