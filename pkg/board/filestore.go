package board

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/sulbao/community/pkg/objectkey"
)

// blobFileStore implements FileStore on top of a BlobStore
type blobFileStore struct {
	store     BlobStore
	generator objectkey.Generator
}

// NewFileStore creates a FileStore writing into store. A nil generator uses
// objectkey.NewRecommendedGenerator.
func NewFileStore(store BlobStore, generator objectkey.Generator) FileStore {
	if generator == nil {
		generator = objectkey.NewRecommendedGenerator()
	}
	return &blobFileStore{
		store:     store,
		generator: generator,
	}
}

func (f *blobFileStore) Upload(ctx context.Context, dir string, file *Upload) (string, error) {
	if file.IsEmpty() {
		return "", ErrEmptyUpload
	}

	name := f.generator.GenerateName(uuid.New(), file.FileName)
	key, err := objectkey.Key(dir, name)
	if err != nil {
		return "", &StorageError{Key: name, Op: "upload", Err: fmt.Errorf("%w: %v", ErrUploadFailed, err)}
	}

	mimeType := file.ContentType
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	if err := f.store.UploadWithParams(ctx, file.Reader, UploadParams{
		ObjectKey: key,
		MimeType:  mimeType,
	}); err != nil {
		return "", &StorageError{Key: key, Op: "upload", Err: fmt.Errorf("%w: %v", ErrUploadFailed, err)}
	}

	return name, nil
}

func (f *blobFileStore) Open(ctx context.Context, dir, name string) (io.ReadCloser, *ObjectMeta, error) {
	key, err := objectkey.Key(dir, name)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrObjectNotFound, err)
	}

	meta, err := f.store.GetObjectMeta(ctx, key)
	if err != nil {
		return nil, nil, &StorageError{Key: key, Op: "open", Err: err}
	}

	reader, err := f.store.Download(ctx, key)
	if err != nil {
		return nil, nil, &StorageError{Key: key, Op: "open", Err: err}
	}

	return reader, meta, nil
}

func (f *blobFileStore) Delete(ctx context.Context, dir, name string) error {
	key, err := objectkey.Key(dir, name)
	if err != nil {
		return err
	}
	if err := f.store.Delete(ctx, key); err != nil {
		return &StorageError{Key: key, Op: "delete", Err: err}
	}
	return nil
}
