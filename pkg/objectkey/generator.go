package objectkey

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrInvalidName is returned by Key for names that would escape their directory
var ErrInvalidName = errors.New("invalid stored name")

// Generator defines the interface for stored-name generation strategies
type Generator interface {
	// GenerateName creates the stored name of an upload
	GenerateName(id uuid.UUID, originalName string) string
}

// UUIDGenerator names files "<id><ext>", keeping only the original extension.
type UUIDGenerator struct{}

func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

func (g *UUIDGenerator) GenerateName(id uuid.UUID, originalName string) string {
	return id.String() + extension(originalName)
}

// OriginalNameGenerator keeps a sanitized copy of the original name:
// "<id>_<original>". Useful when downloads should carry a readable name.
type OriginalNameGenerator struct {
	// MaxLength bounds the sanitized original part (default: 100)
	MaxLength int
}

func NewOriginalNameGenerator() *OriginalNameGenerator {
	return &OriginalNameGenerator{MaxLength: 100}
}

func (g *OriginalNameGenerator) GenerateName(id uuid.UUID, originalName string) string {
	base := sanitizeFilename(filepath.Base(originalName))
	if base == "" || base == "." || base == "_" {
		return id.String() + extension(originalName)
	}
	if g.MaxLength > 0 && len(base) > g.MaxLength {
		ext := extension(base)
		base = base[:g.MaxLength-len(ext)] + ext
	}
	return fmt.Sprintf("%s_%s", id, base)
}

// CustomFuncGenerator allows callers to provide their own naming function
type CustomFuncGenerator struct {
	GenerateFunc func(id uuid.UUID, originalName string) string
}

func NewCustomFuncGenerator(fn func(id uuid.UUID, originalName string) string) *CustomFuncGenerator {
	return &CustomFuncGenerator{GenerateFunc: fn}
}

func (g *CustomFuncGenerator) GenerateName(id uuid.UUID, originalName string) string {
	return g.GenerateFunc(id, originalName)
}

// Key joins an upload directory and a stored name into a blob key.
// Names must be a single path element.
func Key(dir, name string) (string, error) {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	dir = strings.Trim(path.Clean("/"+filepath.ToSlash(dir)), "/")
	if dir == "" {
		return name, nil
	}
	return dir + "/" + name, nil
}

// extension returns the lower-cased, sanitized extension including the dot.
func extension(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if len(ext) <= 1 || len(ext) > 10 {
		return ""
	}
	return "." + sanitizeFilename(ext[1:])
}

// Helper functions for path sanitization
func sanitizeFilename(filename string) string {
	// Replace problematic characters for filesystem compatibility
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
		" ", "_",
	)
	return replacer.Replace(filename)
}

// NewRecommendedGenerator returns the generator used by default
func NewRecommendedGenerator() Generator {
	return NewUUIDGenerator()
}
