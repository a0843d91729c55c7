package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sulbao/community/pkg/board"
	"github.com/sulbao/community/pkg/member"
)

//go:embed schema.sql
var schema string

// DBTX is an interface that allows us to use either a database connection or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
	Begin(context.Context) (pgx.Tx, error)
}

// Repository implements board.Repository, board.UserDirectory,
// board.CategoryDirectory and member.Repository using PostgreSQL
type Repository struct {
	db DBTX
}

// New creates a new PostgreSQL repository
func New(db DBTX) *Repository {
	return &Repository{db: db}
}

// NewWithPool creates a new PostgreSQL repository with connection pool
func NewWithPool(pool *pgxpool.Pool) *Repository {
	return &Repository{db: pool}
}

// Migrate creates the tables and seeds the default categories. It is safe to
// run on every start.
func Migrate(ctx context.Context, db DBTX) error {
	if _, err := db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Error handling helper
func (r *Repository) handlePostgresError(operation string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			if pgErr.ConstraintName == "members_login_id_key" {
				return member.ErrDuplicateLoginID
			}
			return fmt.Errorf("duplicate entry in %s: %s", operation, pgErr.ConstraintName)
		case "23503": // foreign_key_violation
			if strings.Contains(pgErr.ConstraintName, "author") {
				return board.ErrUserNotFound
			}
			if strings.Contains(pgErr.ConstraintName, "category") {
				return board.ErrCategoryNotFound
			}
			return fmt.Errorf("referenced record not found in %s", operation)
		case "23502": // not_null_violation
			return fmt.Errorf("required field %s is missing", pgErr.ColumnName)
		case "42P01": // undefined_table
			return fmt.Errorf("table does not exist - database migration required")
		default:
			return fmt.Errorf("database error in %s: %s (code: %s)", operation, pgErr.Message, pgErr.Code)
		}
	}

	return fmt.Errorf("database error in %s: %w", operation, err)
}

// Category operations

func (r *Repository) GetCategory(ctx context.Context, id int64) (*board.Category, error) {
	var c board.Category
	err := r.db.QueryRow(ctx, `SELECT id, name FROM categories WHERE id = $1`, id).Scan(&c.ID, &c.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, board.ErrCategoryNotFound
		}
		return nil, r.handlePostgresError("get category", err)
	}
	return &c, nil
}

// PutCategory inserts or renames a category
func (r *Repository) PutCategory(ctx context.Context, category board.Category) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO categories (id, name) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name`,
		category.ID, category.Name)
	if err != nil {
		return r.handlePostgresError("put category", err)
	}
	return nil
}

// Post operations

const postColumns = `id, author_id, category_id, title, body, thumbnail, images, tags, hits, created_at, updated_at`

func (r *Repository) CreatePost(ctx context.Context, post *board.Post) error {
	query := `
		INSERT INTO posts (` + postColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.db.Exec(ctx, query,
		post.ID, post.AuthorID, post.CategoryID, post.Title, post.Body, post.Thumbnail,
		board.ImageNames(post.Images), nonNil(post.Tags), post.Hits, post.CreatedAt, post.UpdatedAt)
	if err != nil {
		return r.handlePostgresError("create post", err)
	}
	return nil
}

func (r *Repository) GetPost(ctx context.Context, id uuid.UUID) (*board.Post, error) {
	row := r.db.QueryRow(ctx, `SELECT `+postColumns+` FROM posts WHERE id = $1`, id)
	post, err := scanPost(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, board.ErrPostNotFound
		}
		return nil, r.handlePostgresError("get post", err)
	}
	return post, nil
}

// UpdatePost stores every field but hits and created_at
func (r *Repository) UpdatePost(ctx context.Context, post *board.Post) error {
	query := `
		UPDATE posts SET
			title = $2, body = $3, thumbnail = $4, images = $5, tags = $6, updated_at = $7
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query,
		post.ID, post.Title, post.Body, post.Thumbnail,
		board.ImageNames(post.Images), nonNil(post.Tags), post.UpdatedAt)
	if err != nil {
		return r.handlePostgresError("update post", err)
	}
	if tag.RowsAffected() == 0 {
		return board.ErrPostNotFound
	}
	return nil
}

func (r *Repository) DeletePost(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id); err != nil {
		return r.handlePostgresError("delete post", err)
	}
	return nil
}

func (r *Repository) IncrementHits(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `UPDATE posts SET hits = hits + 1 WHERE id = $1`, id)
	if err != nil {
		return r.handlePostgresError("increment hits", err)
	}
	if tag.RowsAffected() == 0 {
		return board.ErrPostNotFound
	}
	return nil
}

func (r *Repository) ListPosts(ctx context.Context, params board.ListPostsParams) ([]*board.Post, error) {
	if params.Offset < 0 {
		return []*board.Post{}, nil
	}
	query := `
		SELECT ` + postColumns + ` FROM posts
		WHERE category_id = $1 AND ($2::text = '' OR $2::text = ANY(tags))
		ORDER BY created_at DESC, id DESC
		LIMIT $3 OFFSET $4`

	return r.queryPosts(ctx, "list posts", query, params.CategoryID, params.Tag, params.Limit, params.Offset)
}

func (r *Repository) CountPosts(ctx context.Context, params board.CountPostsParams) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM posts
		WHERE category_id = $1 AND ($2::text = '' OR $2::text = ANY(tags))`,
		params.CategoryID, params.Tag).Scan(&n)
	if err != nil {
		return 0, r.handlePostgresError("count posts", err)
	}
	return n, nil
}

func (r *Repository) ListPostsByAuthor(ctx context.Context, authorID uuid.UUID) ([]*board.Post, error) {
	query := `
		SELECT ` + postColumns + ` FROM posts
		WHERE author_id = $1
		ORDER BY created_at DESC, id DESC`

	return r.queryPosts(ctx, "list posts by author", query, authorID)
}

// SearchPosts matches the keyword case-insensitively against title and body
func (r *Repository) SearchPosts(ctx context.Context, categoryID int64, keyword string) ([]*board.Post, error) {
	query := `
		SELECT ` + postColumns + ` FROM posts
		WHERE category_id = $1 AND (title ILIKE $2 ESCAPE '\' OR body ILIKE $2 ESCAPE '\')
		ORDER BY created_at DESC, id DESC`

	return r.queryPosts(ctx, "search posts", query, categoryID, "%"+escapeLike(keyword)+"%")
}

func (r *Repository) TopTags(ctx context.Context, limit int) ([]string, error) {
	rows, err := r.db.Query(ctx, `
		SELECT tag FROM posts, unnest(tags) AS tag
		GROUP BY tag
		ORDER BY COUNT(*) DESC, tag
		LIMIT $1`, limit)
	if err != nil {
		return nil, r.handlePostgresError("top tags", err)
	}

	tags, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, r.handlePostgresError("top tags", err)
	}
	return tags, nil
}

func (r *Repository) queryPosts(ctx context.Context, operation, query string, args ...interface{}) ([]*board.Post, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, r.handlePostgresError(operation, err)
	}
	defer rows.Close()

	posts := make([]*board.Post, 0)
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, r.handlePostgresError(operation, err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, r.handlePostgresError(operation, err)
	}
	return posts, nil
}

func scanPost(row pgx.Row) (*board.Post, error) {
	var (
		post   board.Post
		images []string
	)
	err := row.Scan(
		&post.ID, &post.AuthorID, &post.CategoryID, &post.Title, &post.Body, &post.Thumbnail,
		&images, &post.Tags, &post.Hits, &post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		return nil, err
	}
	post.Images = board.ImagesFromNames(images)
	post.Tags = nonNil(post.Tags)
	return &post, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
