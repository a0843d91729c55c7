package board

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultUploadDir is the directory uploads are stored under when none is configured
const DefaultUploadDir = "uploads"

// service implements the Service interface
type service struct {
	repository Repository
	users      UserDirectory
	categories CategoryDirectory
	files      FileStore
	uploadDir  string
	policy     Policy
	eventSink  EventSink
	logger     *slog.Logger
	now        func() time.Time
}

// Option represents a functional option for configuring the service
type Option func(*service)

// WithRepository sets the post repository
func WithRepository(repo Repository) Option {
	return func(s *service) {
		s.repository = repo
	}
}

// WithUserDirectory sets the author lookup
func WithUserDirectory(users UserDirectory) Option {
	return func(s *service) {
		s.users = users
	}
}

// WithCategoryDirectory sets the category lookup
func WithCategoryDirectory(categories CategoryDirectory) Option {
	return func(s *service) {
		s.categories = categories
	}
}

// WithFileStore sets the file store used for thumbnails and inline images
func WithFileStore(files FileStore) Option {
	return func(s *service) {
		s.files = files
	}
}

// WithUploadDir sets the directory uploads are written to
func WithUploadDir(dir string) Option {
	return func(s *service) {
		s.uploadDir = dir
	}
}

// WithPolicy sets the per-category page size and search limits
func WithPolicy(policy Policy) Option {
	return func(s *service) {
		s.policy = policy
	}
}

// WithEventSink sets the event sink for the service
func WithEventSink(sink EventSink) Option {
	return func(s *service) {
		s.eventSink = sink
	}
}

// WithLogger sets the structured logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *service) {
		s.logger = logger
	}
}

// WithClock overrides the time source, mainly for tests
func WithClock(now func() time.Time) Option {
	return func(s *service) {
		s.now = now
	}
}

// New creates a new service instance with the given options
func New(options ...Option) (Service, error) {
	s := &service{
		uploadDir: DefaultUploadDir,
		policy:    DefaultPolicy(),
		eventSink: NewNoopEventSink(),
		logger:    slog.Default(),
		now:       time.Now,
	}

	for _, option := range options {
		option(s)
	}

	if s.repository == nil {
		return nil, fmt.Errorf("repository is required")
	}
	if s.users == nil {
		return nil, fmt.Errorf("user directory is required")
	}
	if s.categories == nil {
		return nil, fmt.Errorf("category directory is required")
	}
	if err := s.policy.Validate(); err != nil {
		return nil, fmt.Errorf("invalid policy: %w", err)
	}

	return s, nil
}

// Creation

func (s *service) CreatePost(ctx context.Context, req CreatePostRequest) (*Post, error) {
	if err := s.resolveAuthor(ctx, req.AuthorID); err != nil {
		return nil, err
	}
	if _, err := s.resolveCategory(ctx, req.CategoryID); err != nil {
		return nil, err
	}

	post := s.newPost(req.AuthorID, req.CategoryID)
	post.Title = req.Title
	post.Body = req.Body
	post.Thumbnail = req.Thumbnail

	if err := s.repository.CreatePost(ctx, post); err != nil {
		return nil, &PostError{PostID: post.ID, Op: "create", Err: err}
	}

	s.fireCreated(ctx, post)
	return post, nil
}

func (s *service) CreateFeed(ctx context.Context, req CreateFeedRequest) (*Post, error) {
	if s.files == nil {
		return nil, errors.New("file store is not configured")
	}
	if err := s.resolveAuthor(ctx, req.AuthorID); err != nil {
		return nil, err
	}
	if _, err := s.resolveCategory(ctx, req.CategoryID); err != nil {
		return nil, err
	}
	if err := validateFeed(req.Title, req.Contents, req.ContentImages); err != nil {
		return nil, err
	}

	post := s.newPost(req.AuthorID, req.CategoryID)
	uploads := &uploadBatch{s: s}

	if !req.Thumbnail.IsEmpty() {
		name, err := uploads.add(ctx, req.Thumbnail)
		if err != nil {
			uploads.rollback(ctx)
			return nil, err
		}
		post.Thumbnail = name
	}

	images, err := s.uploadImages(ctx, uploads, req.ContentImages)
	if err != nil {
		uploads.rollback(ctx)
		return nil, err
	}

	post.Title = req.Title
	post.Body = strings.Join(req.Contents, BodySeparator)
	post.Images = images
	post.Tags = NormalizeTags(req.Tags)

	if err := s.repository.CreatePost(ctx, post); err != nil {
		uploads.rollback(ctx)
		return nil, &PostError{PostID: post.ID, Op: "create_feed", Err: err}
	}

	s.fireCreated(ctx, post)
	return post, nil
}

// Retrieval

func (s *service) GetPost(ctx context.Context, id uuid.UUID) (*Post, error) {
	return s.repository.GetPost(ctx, id)
}

func (s *service) ListPosts(ctx context.Context, req ListPostsRequest) (*Page, error) {
	if req.Page < 0 {
		return nil, invalidf("page must not be negative, got %d", req.Page)
	}
	if _, err := s.resolveCategory(ctx, req.CategoryID); err != nil {
		return nil, err
	}

	pageSize := s.policy.For(req.CategoryID).PageSize
	if req.Page > (math.MaxInt-pageSize)/pageSize {
		return nil, invalidf("page %d is out of range", req.Page)
	}
	tag := NormalizeTag(req.Tag)

	items, err := s.repository.ListPosts(ctx, ListPostsParams{
		CategoryID: req.CategoryID,
		Tag:        tag,
		Limit:      pageSize,
		Offset:     req.Page * pageSize,
	})
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	if items == nil {
		items = []*Post{}
	}

	total, err := s.repository.CountPosts(ctx, CountPostsParams{
		CategoryID: req.CategoryID,
		Tag:        tag,
	})
	if err != nil {
		return nil, fmt.Errorf("count posts: %w", err)
	}

	return &Page{
		Items:      items,
		Page:       req.Page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: int((total + int64(pageSize) - 1) / int64(pageSize)),
	}, nil
}

func (s *service) CountPosts(ctx context.Context, categoryID int64, tag string) (int64, error) {
	if _, err := s.resolveCategory(ctx, categoryID); err != nil {
		return 0, err
	}
	return s.repository.CountPosts(ctx, CountPostsParams{
		CategoryID: categoryID,
		Tag:        NormalizeTag(tag),
	})
}

func (s *service) ListPostsByAuthor(ctx context.Context, userID uuid.UUID) ([]*Post, error) {
	if err := s.resolveAuthor(ctx, userID); err != nil {
		return nil, err
	}
	return s.repository.ListPostsByAuthor(ctx, userID)
}

func (s *service) SearchPosts(ctx context.Context, req SearchPostsRequest) ([]*Post, error) {
	if _, err := s.resolveCategory(ctx, req.CategoryID); err != nil {
		return nil, err
	}

	posts, err := s.repository.SearchPosts(ctx, req.CategoryID, strings.TrimSpace(req.Keyword))
	if err != nil {
		return nil, fmt.Errorf("search posts: %w", err)
	}

	limit := s.policy.For(req.CategoryID).SearchLimit
	if len(posts) > limit {
		posts = posts[:limit]
	}
	return posts, nil
}

func (s *service) TopTags(ctx context.Context) ([]string, error) {
	tags, err := s.repository.TopTags(ctx, MaxTopTags)
	if err != nil {
		return nil, fmt.Errorf("top tags: %w", err)
	}
	if len(tags) > MaxTopTags {
		tags = tags[:MaxTopTags]
	}
	return tags, nil
}

// Mutation

func (s *service) UpdatePost(ctx context.Context, req UpdatePostRequest) error {
	post, err := s.repository.GetPost(ctx, req.ID)
	if err != nil {
		return err
	}

	post.Title = req.Title
	post.Body = req.Body
	post.Thumbnail = req.Thumbnail
	post.UpdatedAt = s.now().UTC()

	if err := s.repository.UpdatePost(ctx, post); err != nil {
		return &PostError{PostID: post.ID, Op: "update", Err: err}
	}

	s.fireUpdated(ctx, post)
	return nil
}

func (s *service) UpdateFeed(ctx context.Context, req UpdateFeedRequest) error {
	if s.files == nil {
		return errors.New("file store is not configured")
	}

	post, err := s.repository.GetPost(ctx, req.ID)
	if err != nil {
		return err
	}
	if err := validateFeed(req.Title, req.Contents, req.ContentImages); err != nil {
		return err
	}

	uploads := &uploadBatch{s: s}

	// the stored thumbnail is only replaced by a non-empty upload
	if !req.Thumbnail.IsEmpty() {
		name, err := uploads.add(ctx, req.Thumbnail)
		if err != nil {
			uploads.rollback(ctx)
			return err
		}
		post.Thumbnail = name
	}

	images, err := s.uploadImages(ctx, uploads, req.ContentImages)
	if err != nil {
		uploads.rollback(ctx)
		return err
	}

	post.Title = req.Title
	post.Body = strings.Join(req.Contents, BodySeparator)
	post.Images = images
	post.Tags = NormalizeTags(req.Tags)
	post.UpdatedAt = s.now().UTC()

	if err := s.repository.UpdatePost(ctx, post); err != nil {
		uploads.rollback(ctx)
		return &PostError{PostID: post.ID, Op: "update_feed", Err: err}
	}

	s.fireUpdated(ctx, post)
	return nil
}

func (s *service) IncrementHit(ctx context.Context, id uuid.UUID) error {
	return s.repository.IncrementHits(ctx, id)
}

func (s *service) DeletePost(ctx context.Context, id uuid.UUID) error {
	if err := s.repository.DeletePost(ctx, id); err != nil {
		return &PostError{PostID: id, Op: "delete", Err: err}
	}

	if err := s.eventSink.PostDeleted(ctx, id); err != nil {
		s.logger.WarnContext(ctx, "post deleted event failed", "post_id", id, "error", err)
	}
	return nil
}

// Files

func (s *service) OpenFile(ctx context.Context, name string) (*File, error) {
	if s.files == nil {
		return nil, errors.New("file store is not configured")
	}
	body, meta, err := s.files.Open(ctx, s.uploadDir, name)
	if err != nil {
		return nil, err
	}
	return &File{
		Name:        name,
		ContentType: meta.ContentType,
		Size:        meta.Size,
		Body:        body,
	}, nil
}

// helpers

func (s *service) newPost(authorID uuid.UUID, categoryID int64) *Post {
	now := s.now().UTC()
	return &Post{
		ID:         uuid.New(),
		AuthorID:   authorID,
		CategoryID: categoryID,
		Images:     []*PostImage{},
		Tags:       []string{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func (s *service) resolveAuthor(ctx context.Context, id uuid.UUID) error {
	if _, err := s.users.GetUser(ctx, id); err != nil {
		return fmt.Errorf("resolve author %s: %w", id, err)
	}
	return nil
}

func (s *service) resolveCategory(ctx context.Context, id int64) (*Category, error) {
	category, err := s.categories.GetCategory(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("resolve category %d: %w", id, err)
	}
	return category, nil
}

// uploadImages stores each non-empty upload and leaves an empty slot for the rest
func (s *service) uploadImages(ctx context.Context, uploads *uploadBatch, files []*Upload) ([]*PostImage, error) {
	images := make([]*PostImage, len(files))
	for i, file := range files {
		if file.IsEmpty() {
			continue
		}
		name, err := uploads.add(ctx, file)
		if err != nil {
			return nil, fmt.Errorf("content image %d: %w", i, err)
		}
		images[i] = &PostImage{FileName: name}
	}
	return images, nil
}

func (s *service) fireCreated(ctx context.Context, post *Post) {
	if err := s.eventSink.PostCreated(ctx, post); err != nil {
		s.logger.WarnContext(ctx, "post created event failed", "post_id", post.ID, "error", err)
	}
}

func (s *service) fireUpdated(ctx context.Context, post *Post) {
	if err := s.eventSink.PostUpdated(ctx, post); err != nil {
		s.logger.WarnContext(ctx, "post updated event failed", "post_id", post.ID, "error", err)
	}
}

func validateFeed(title string, contents []string, images []*Upload) error {
	if strings.TrimSpace(title) == "" {
		return invalidf("title is required")
	}
	if len(contents) != len(images) {
		return invalidf("%d content segments but %d content images", len(contents), len(images))
	}
	return nil
}

// uploadBatch remembers the files stored during one call so they can be
// removed when the call fails afterwards.
type uploadBatch struct {
	s     *service
	names []string
}

func (b *uploadBatch) add(ctx context.Context, file *Upload) (string, error) {
	name, err := b.s.files.Upload(ctx, b.s.uploadDir, file)
	if err != nil {
		return "", err
	}
	b.names = append(b.names, name)
	return name, nil
}

func (b *uploadBatch) rollback(ctx context.Context) {
	for _, name := range b.names {
		if err := b.s.files.Delete(ctx, b.s.uploadDir, name); err != nil {
			b.s.logger.WarnContext(ctx, "failed to remove orphaned upload", "file", name, "error", err)
		}
	}
	b.names = nil
}
