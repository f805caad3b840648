// Package media stores uploaded receipt images on disk under a fixed
// root. Records reference images by relative path; the HTTP layer turns
// those into absolute URLs.
package media

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// imageDir is the subdirectory receipts images land in, kept stable so
// existing records keep resolving.
const imageDir = "user_images"

type Store struct {
	root string
}

// NewStore returns a disk-backed store rooted at dir, creating the image
// directory if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(filepath.Join(dir, imageDir), 0o755); err != nil {
		return nil, fmt.Errorf("creating media directory: %w", err)
	}

	return &Store{root: dir}, nil
}

// Root returns the directory the store writes under.
func (s *Store) Root() string { return s.root }

// Save writes the upload to a fresh file and returns its path relative to
// the media root. The original filename only contributes its extension;
// the stored name is random.
func (s *Store) Save(filename string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filepath.Base(filename)))

	rel := filepath.ToSlash(filepath.Join(imageDir, uuid.NewString()+ext))

	f, err := os.Create(filepath.Join(s.root, filepath.FromSlash(rel)))
	if err != nil {
		return "", fmt.Errorf("creating media file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("writing media file: %w", err)
	}

	return rel, nil
}

// SaveFile copies an existing file on disk into the store. Used by the
// terminal client, where images arrive as local paths rather than
// multipart uploads.
func (s *Store) SaveFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening source file: %w", err)
	}
	defer f.Close()

	return s.Save(filepath.Base(path), f)
}

// Remove deletes a stored file by its relative path. A missing file is
// not an error; the record wins over the disk.
func (s *Store) Remove(rel string) error {
	if rel == "" {
		return nil
	}

	err := os.Remove(filepath.Join(s.root, filepath.FromSlash(rel)))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing media file: %w", err)
	}

	return nil
}
