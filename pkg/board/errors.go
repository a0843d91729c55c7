package board

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Error types
var (
	// ErrNotFound is wrapped by every lookup miss
	ErrNotFound = errors.New("not found")

	// ErrPostNotFound indicates a post was not found
	ErrPostNotFound = fmt.Errorf("post %w", ErrNotFound)

	// ErrUserNotFound indicates an author was not found
	ErrUserNotFound = fmt.Errorf("user %w", ErrNotFound)

	// ErrCategoryNotFound indicates a category was not found
	ErrCategoryNotFound = fmt.Errorf("category %w", ErrNotFound)

	// ErrObjectNotFound is returned by blob stores for unknown keys
	ErrObjectNotFound = fmt.Errorf("object %w", ErrNotFound)

	// ErrUploadFailed indicates the file store could not persist an upload
	ErrUploadFailed = errors.New("upload failed")

	// ErrEmptyUpload indicates an upload without content was passed to the file store
	ErrEmptyUpload = errors.New("empty upload")

	// ErrInvalidRequest indicates malformed input, e.g. mismatched segment and image counts
	ErrInvalidRequest = errors.New("invalid request")
)

// PostError represents an error related to post operations
type PostError struct {
	PostID uuid.UUID
	Op     string
	Err    error
}

func (e *PostError) Error() string {
	return fmt.Sprintf("post operation %s failed for post %s: %v", e.Op, e.PostID, e.Err)
}

func (e *PostError) Unwrap() error {
	return e.Err
}

// StorageError represents an error related to file store operations
type StorageError struct {
	Key string
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage operation %s failed for key %s: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func invalidf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidRequest, fmt.Sprintf(format, args...))
}
