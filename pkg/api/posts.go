package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/sulbao/community/pkg/board"
)

const maxUploadMemory = 32 << 20

// PostResponse is the response body for a post
type PostResponse struct {
	ID         string    `json:"id"`
	AuthorID   string    `json:"author_id"`
	CategoryID int64     `json:"category_id"`
	Title      string    `json:"title"`
	Body       string    `json:"body"`
	Contents   []string  `json:"contents"`
	Thumbnail  string    `json:"thumbnail"`
	Images     []string  `json:"images"`
	Tags       []string  `json:"tags"`
	Hits       int64     `json:"hits"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func newPostResponse(p *board.Post) PostResponse {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return PostResponse{
		ID:         p.ID.String(),
		AuthorID:   p.AuthorID.String(),
		CategoryID: p.CategoryID,
		Title:      p.Title,
		Body:       p.Body,
		Contents:   p.Segments(),
		Thumbnail:  p.Thumbnail,
		Images:     board.ImageNames(p.Images),
		Tags:       tags,
		Hits:       p.Hits,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}

func newPostResponses(posts []*board.Post) []PostResponse {
	resp := make([]PostResponse, 0, len(posts))
	for _, p := range posts {
		resp = append(resp, newPostResponse(p))
	}
	return resp
}

// PageResponse is one page of posts
type PageResponse struct {
	Items      []PostResponse `json:"items"`
	Page       int            `json:"page"`
	PageSize   int            `json:"page_size"`
	Total      int64          `json:"total"`
	TotalPages int            `json:"total_pages"`
	HasNext    bool           `json:"has_next"`
}

// PostRequest is the JSON body for creating or updating a simple post
type PostRequest struct {
	CategoryID int64  `json:"category_id"`
	Title      string `json:"title"`
	Body       string `json:"body"`
	Thumbnail  string `json:"thumbnail"`
}

// PostHandler handles HTTP requests for posts and feeds
type PostHandler struct {
	service        board.Service
	feedCategoryID int64
}

// NewPostHandler creates a post handler. Feeds submitted without a category
// go to feedCategoryID.
func NewPostHandler(service board.Service, feedCategoryID int64) *PostHandler {
	return &PostHandler{
		service:        service,
		feedCategoryID: feedCategoryID,
	}
}

// PublicRoutes returns the read-only post routes
func (h *PostHandler) PublicRoutes(r chi.Router) {
	r.Get("/posts", h.ListPosts)
	r.Get("/posts/count", h.CountPosts)
	r.Get("/posts/search", h.SearchPosts)
	r.Get("/posts/tags/top", h.TopTags)
	r.Get("/posts/{id}", h.GetPost)
	r.Get("/users/{id}/posts", h.ListPostsByAuthor)
}

// AuthorRoutes returns the routes that need an authenticated caller
func (h *PostHandler) AuthorRoutes(r chi.Router) {
	r.Post("/posts", h.CreatePost)
	r.Put("/posts/{id}", h.UpdatePost)
	r.Delete("/posts/{id}", h.DeletePost)
	r.Post("/feeds", h.CreateFeed)
	r.Put("/feeds/{id}", h.UpdateFeed)
}

// ListPosts returns one page of a category
func (h *PostHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	categoryID, err := queryInt64(r, "category")
	if err != nil {
		badRequest(w, r, "Invalid category", err)
		return
	}
	page, err := queryInt(r, "page")
	if err != nil {
		badRequest(w, r, "Invalid page", err)
		return
	}

	result, err := h.service.ListPosts(r.Context(), board.ListPostsRequest{
		CategoryID: categoryID,
		Page:       page,
		Tag:        r.URL.Query().Get("tag"),
	})
	if err != nil {
		writeError(w, r, "Failed to list posts", err)
		return
	}

	render.JSON(w, r, PageResponse{
		Items:      newPostResponses(result.Items),
		Page:       result.Page,
		PageSize:   result.PageSize,
		Total:      result.Total,
		TotalPages: result.TotalPages,
		HasNext:    result.HasNext(),
	})
}

// CountPosts counts the posts of a category, optionally restricted to a tag
func (h *PostHandler) CountPosts(w http.ResponseWriter, r *http.Request) {
	categoryID, err := queryInt64(r, "category")
	if err != nil {
		badRequest(w, r, "Invalid category", err)
		return
	}

	count, err := h.service.CountPosts(r.Context(), categoryID, r.URL.Query().Get("tag"))
	if err != nil {
		writeError(w, r, "Failed to count posts", err)
		return
	}
	render.JSON(w, r, map[string]int64{"count": count})
}

// SearchPosts finds posts of a category by keyword
func (h *PostHandler) SearchPosts(w http.ResponseWriter, r *http.Request) {
	categoryID, err := queryInt64(r, "category")
	if err != nil {
		badRequest(w, r, "Invalid category", err)
		return
	}

	posts, err := h.service.SearchPosts(r.Context(), board.SearchPostsRequest{
		CategoryID: categoryID,
		Keyword:    r.URL.Query().Get("keyword"),
	})
	if err != nil {
		writeError(w, r, "Failed to search posts", err)
		return
	}
	render.JSON(w, r, newPostResponses(posts))
}

// TopTags returns the most used tags
func (h *PostHandler) TopTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.service.TopTags(r.Context())
	if err != nil {
		writeError(w, r, "Failed to load top tags", err)
		return
	}
	if tags == nil {
		tags = []string{}
	}
	render.JSON(w, r, tags)
}

// GetPost counts a view and returns the post
func (h *PostHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.service.IncrementHit(r.Context(), id); err != nil {
		writeError(w, r, "Failed to count view", err)
		return
	}
	post, err := h.service.GetPost(r.Context(), id)
	if err != nil {
		writeError(w, r, "Failed to get post", err)
		return
	}
	render.JSON(w, r, newPostResponse(post))
}

// ListPostsByAuthor returns every post of a user
func (h *PostHandler) ListPostsByAuthor(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	posts, err := h.service.ListPostsByAuthor(r.Context(), id)
	if err != nil {
		writeError(w, r, "Failed to list posts of user", err)
		return
	}
	render.JSON(w, r, newPostResponses(posts))
}

// CreatePost creates a simple post from a JSON body
func (h *PostHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	caller, ok := principal(w, r)
	if !ok {
		return
	}

	var req PostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, r, "Invalid request body", err)
		return
	}

	post, err := h.service.CreatePost(r.Context(), board.CreatePostRequest{
		AuthorID:   caller.UserID,
		CategoryID: req.CategoryID,
		Title:      req.Title,
		Body:       req.Body,
		Thumbnail:  req.Thumbnail,
	})
	if err != nil {
		writeError(w, r, "Failed to create post", err)
		return
	}

	slog.InfoContext(r.Context(), "Post created", "post_id", post.ID.String())
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, newPostResponse(post))
}

// UpdatePost replaces title, body and thumbnail of a post
func (h *PostHandler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	id, ok := h.authorize(w, r)
	if !ok {
		return
	}

	var req PostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, r, "Invalid request body", err)
		return
	}

	err := h.service.UpdatePost(r.Context(), board.UpdatePostRequest{
		ID:        id,
		Title:     req.Title,
		Body:      req.Body,
		Thumbnail: req.Thumbnail,
	})
	if err != nil {
		writeError(w, r, "Failed to update post", err)
		return
	}
	h.respondWithPost(w, r, id)
}

// DeletePost removes a post. Deleting a missing post succeeds.
func (h *PostHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	id, ok := h.authorize(w, r)
	if !ok {
		return
	}

	if err := h.service.DeletePost(r.Context(), id); err != nil {
		writeError(w, r, "Failed to delete post", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CreateFeed creates a feed post from a multipart form
func (h *PostHandler) CreateFeed(w http.ResponseWriter, r *http.Request) {
	caller, ok := principal(w, r)
	if !ok {
		return
	}

	form, err := parseFeedForm(r)
	if err != nil {
		badRequest(w, r, "Invalid feed form", err)
		return
	}
	defer form.Close()

	categoryID := h.feedCategoryID
	if raw := r.FormValue("category"); raw != "" {
		if categoryID, err = strconv.ParseInt(raw, 10, 64); err != nil {
			badRequest(w, r, "Invalid category", err)
			return
		}
	}

	post, err := h.service.CreateFeed(r.Context(), board.CreateFeedRequest{
		AuthorID:      caller.UserID,
		CategoryID:    categoryID,
		Thumbnail:     form.thumbnail,
		Tags:          form.tags,
		Title:         form.title,
		Contents:      form.contents,
		ContentImages: form.images,
	})
	if err != nil {
		writeError(w, r, "Failed to create feed", err)
		return
	}

	slog.InfoContext(r.Context(), "Feed created", "post_id", post.ID.String(), "images", len(post.Images))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, newPostResponse(post))
}

// UpdateFeed replaces a feed post from a multipart form
func (h *PostHandler) UpdateFeed(w http.ResponseWriter, r *http.Request) {
	id, ok := h.authorize(w, r)
	if !ok {
		return
	}

	form, err := parseFeedForm(r)
	if err != nil {
		badRequest(w, r, "Invalid feed form", err)
		return
	}
	defer form.Close()

	err = h.service.UpdateFeed(r.Context(), board.UpdateFeedRequest{
		ID:            id,
		Thumbnail:     form.thumbnail,
		Tags:          form.tags,
		Title:         form.title,
		Contents:      form.contents,
		ContentImages: form.images,
	})
	if err != nil {
		writeError(w, r, "Failed to update feed", err)
		return
	}
	h.respondWithPost(w, r, id)
}

// authorize parses the post id and checks the caller may modify the post.
// A missing post is allowed through so the service decides the outcome.
func (h *PostHandler) authorize(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	caller, ok := principal(w, r)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := pathID(w, r)
	if !ok {
		return uuid.Nil, false
	}

	post, err := h.service.GetPost(r.Context(), id)
	switch {
	case errors.Is(err, board.ErrPostNotFound):
		return id, true
	case err != nil:
		writeError(w, r, "Failed to get post", err)
		return uuid.Nil, false
	case !caller.CanModify(post.AuthorID):
		writeError(w, r, "Post modification denied", fmt.Errorf("%w: post %s belongs to another author", ErrForbidden, id))
		return uuid.Nil, false
	}
	return id, true
}

func (h *PostHandler) respondWithPost(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	post, err := h.service.GetPost(r.Context(), id)
	if err != nil {
		writeError(w, r, "Failed to get post", err)
		return
	}
	slog.InfoContext(r.Context(), "Post updated", "post_id", id.String())
	render.JSON(w, r, newPostResponse(post))
}

// feedForm is a parsed feed submission. Close releases the opened files.
type feedForm struct {
	title     string
	tags      []string
	contents  []string
	thumbnail *board.Upload
	images    []*board.Upload
	files     []multipart.File
}

func (f *feedForm) Close() {
	for _, file := range f.files {
		file.Close()
	}
}

func (f *feedForm) open(fh *multipart.FileHeader) (*board.Upload, error) {
	file, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", fh.Filename, err)
	}
	f.files = append(f.files, file)
	return &board.Upload{
		FileName:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Reader:      file,
	}, nil
}

// parseFeedForm reads the fields title, tags, contents, thumbnail and
// contentImages[i]. The i-th image belongs to the i-th content segment; a
// missing image leaves its slot empty. An empty thumbnail counts as no thumbnail.
func parseFeedForm(r *http.Request) (*feedForm, error) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		return nil, err
	}
	mf := r.MultipartForm

	form := &feedForm{
		title:    r.FormValue("title"),
		contents: mf.Value["contents"],
	}
	for _, raw := range mf.Value["tags"] {
		form.tags = append(form.tags, strings.Split(raw, ",")...)
	}

	if fhs := mf.File["thumbnail"]; len(fhs) > 0 {
		upload, err := form.open(fhs[0])
		if err != nil {
			form.Close()
			return nil, err
		}
		form.thumbnail = upload
	}

	form.images = make([]*board.Upload, len(form.contents))
	for i := range form.contents {
		fhs := mf.File[fmt.Sprintf("contentImages[%d]", i)]
		if len(fhs) == 0 {
			continue
		}
		upload, err := form.open(fhs[0])
		if err != nil {
			form.Close()
			return nil, err
		}
		form.images[i] = upload
	}

	return form, nil
}

func principal(w http.ResponseWriter, r *http.Request) (Principal, bool) {
	p, err := PrincipalFromContext(r.Context())
	if err != nil {
		slog.WarnContext(r.Context(), "Invalid token claims", "error", err)
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return Principal{}, false
	}
	return p, true
}

func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw := chi.URLParam(r, "id")
	id, err := uuid.Parse(raw)
	if err != nil {
		badRequest(w, r, "Invalid ID", fmt.Errorf("invalid id %q: %w", raw, err))
		return uuid.Nil, false
	}
	return id, true
}

func queryInt64(r *http.Request, key string) (int64, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, fmt.Errorf("%s is required", key)
	}
	return strconv.ParseInt(raw, 10, 64)
}

// queryInt reads an optional integer parameter, defaulting to zero
func queryInt(r *http.Request, key string) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}
