package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/sulbao/community/pkg/board"
)

// Backend is a filesystem implementation of the board.BlobStore interface.
// Object keys map to paths below BaseDir.
type Backend struct {
	baseDir string
}

// Config options for the filesystem backend
type Config struct {
	BaseDir string // Base directory for storing files
}

// New creates a new filesystem storage backend
func New(config Config) (*Backend, error) {
	if config.BaseDir == "" {
		return nil, errors.New("base directory is required")
	}

	baseDir, err := filepath.Abs(config.BaseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory: %w", err)
	}

	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	return &Backend{baseDir: baseDir}, nil
}

// path resolves a key, refusing anything that leaves the base directory
func (b *Backend) path(objectKey string) (string, error) {
	p := filepath.Join(b.baseDir, filepath.FromSlash(objectKey))
	if p == b.baseDir || !strings.HasPrefix(p, b.baseDir+string(filepath.Separator)) {
		return "", fmt.Errorf("object key %q escapes base directory", objectKey)
	}
	return p, nil
}

// GetObjectMeta stats the file and sniffs its content type
func (b *Backend) GetObjectMeta(ctx context.Context, objectKey string) (*board.ObjectMeta, error) {
	filePath, err := b.path(objectKey)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return nil, board.ErrObjectNotFound
	} else if err != nil {
		return nil, fmt.Errorf("failed to get file info: %w", err)
	}

	contentType := contentTypeByExt(filePath)
	if contentType == "" {
		contentType = "application/octet-stream"
		if file, err := os.Open(filePath); err == nil {
			defer file.Close()
			buffer := make([]byte, 512)
			if n, err := file.Read(buffer); err == nil {
				contentType = http.DetectContentType(buffer[:n])
			}
		}
	}

	return &board.ObjectMeta{
		Key:         objectKey,
		Size:        info.Size(),
		ContentType: contentType,
		UpdatedAt:   info.ModTime(),
		Metadata:    map[string]string{"content_type": contentType},
	}, nil
}

// Upload writes content to a temp file and renames it into place
func (b *Backend) Upload(ctx context.Context, objectKey string, reader io.Reader) error {
	filePath, err := b.path(objectKey)
	if err != nil {
		return err
	}

	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, reader); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	if err := os.Rename(tmp.Name(), filePath); err != nil {
		return fmt.Errorf("failed to move file into place: %w", err)
	}
	return nil
}

// UploadWithParams uploads content; the filesystem does not keep the MIME type
// and detects it again on read
func (b *Backend) UploadWithParams(ctx context.Context, reader io.Reader, params board.UploadParams) error {
	return b.Upload(ctx, params.ObjectKey, reader)
}

// Download opens the stored file
func (b *Backend) Download(ctx context.Context, objectKey string) (io.ReadCloser, error) {
	filePath, err := b.path(objectKey)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(filePath)
	if os.IsNotExist(err) {
		return nil, board.ErrObjectNotFound
	} else if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	return file, nil
}

// Delete removes the file and prunes empty parent directories
func (b *Backend) Delete(ctx context.Context, objectKey string) error {
	filePath, err := b.path(objectKey)
	if err != nil {
		return err
	}

	if err := os.Remove(filePath); err != nil {
		if os.IsNotExist(err) {
			return board.ErrObjectNotFound
		}
		return fmt.Errorf("failed to delete file: %w", err)
	}

	b.cleanupEmptyDirectories(filepath.Dir(filePath))
	return nil
}

// cleanupEmptyDirectories removes empty directories up to baseDir
func (b *Backend) cleanupEmptyDirectories(dir string) {
	if dir == b.baseDir || !strings.HasPrefix(dir, b.baseDir) {
		return
	}

	if entries, err := os.ReadDir(dir); err == nil && len(entries) == 0 {
		if os.Remove(dir) == nil {
			b.cleanupEmptyDirectories(filepath.Dir(dir))
		}
	}
}

func contentTypeByExt(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	case ".svg":
		return "image/svg+xml"
	}
	return ""
}
