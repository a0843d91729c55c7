package memory

import (
	"bytes"
	"context"
	"io"
	"sync"
	"time"

	"github.com/sulbao/community/pkg/board"
)

const defaultMimeType = "application/octet-stream"

type object struct {
	data      []byte
	mimeType  string
	updatedAt time.Time
}

// Backend is an in-memory implementation of the board.BlobStore interface
type Backend struct {
	mu      sync.RWMutex
	objects map[string]object
}

// New creates a new in-memory storage backend
func New() *Backend {
	return &Backend{
		objects: make(map[string]object),
	}
}

// GetObjectMeta retrieves metadata for an object in memory
func (b *Backend) GetObjectMeta(ctx context.Context, objectKey string) (*board.ObjectMeta, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	obj, exists := b.objects[objectKey]
	if !exists {
		return nil, board.ErrObjectNotFound
	}

	return &board.ObjectMeta{
		Key:         objectKey,
		Size:        int64(len(obj.data)),
		ContentType: obj.mimeType,
		UpdatedAt:   obj.updatedAt,
		Metadata:    map[string]string{"mime_type": obj.mimeType},
	}, nil
}

// Upload stores content with the default mime type
func (b *Backend) Upload(ctx context.Context, objectKey string, reader io.Reader) error {
	return b.put(objectKey, reader, defaultMimeType)
}

// UploadWithParams stores content under params.ObjectKey
func (b *Backend) UploadWithParams(ctx context.Context, reader io.Reader, params board.UploadParams) error {
	mimeType := params.MimeType
	if mimeType == "" {
		mimeType = defaultMimeType
	}
	return b.put(params.ObjectKey, reader, mimeType)
}

func (b *Backend) put(objectKey string, reader io.Reader, mimeType string) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.objects[objectKey] = object{data: data, mimeType: mimeType, updatedAt: time.Now().UTC()}
	return nil
}

// Download downloads content directly
func (b *Backend) Download(ctx context.Context, objectKey string) (io.ReadCloser, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	obj, exists := b.objects[objectKey]
	if !exists {
		return nil, board.ErrObjectNotFound
	}

	return io.NopCloser(bytes.NewReader(obj.data)), nil
}

// Delete removes an object
func (b *Backend) Delete(ctx context.Context, objectKey string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.objects[objectKey]; !exists {
		return board.ErrObjectNotFound
	}

	delete(b.objects, objectKey)
	return nil
}

// Len reports the number of stored objects.
func (b *Backend) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.objects)
}
