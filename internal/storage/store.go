// Package storage stores uploaded profile images on the local disk.
// Files are written under a configurable root with generated names so
// uploads can never collide or traverse outside the root.
package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrUnsupportedType is returned for files whose extension is not an
// accepted image type.
var ErrUnsupportedType = errors.New("unsupported file type")

// ErrBadLink is returned when a stored link would escape the root.
var ErrBadLink = errors.New("invalid storage link")

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// Store writes files under Root. The zero value is not usable; use New.
type Store struct {
	Root string
}

// New returns a Store rooted at dir, creating it if necessary.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Store{Root: dir}, nil
}

// Save streams an uploaded file to disk and returns its link (path
// relative to the root) and size. The stored name combines the upload
// timestamp with a random id, keeping the original extension.
func (s *Store) Save(r io.Reader, originalName string) (string, int64, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	if !allowedExtensions[ext] {
		return "", 0, ErrUnsupportedType
	}

	name := fmt.Sprintf("%d_%s%s", time.Now().UTC().Unix(), uuid.NewString(), ext)
	dst, err := os.Create(filepath.Join(s.Root, name))
	if err != nil {
		return "", 0, err
	}
	defer dst.Close()

	size, err := io.Copy(dst, r)
	if err != nil {
		// Remove the partial file; the caller sees only the error.
		_ = os.Remove(dst.Name())
		return "", 0, err
	}
	return name, size, nil
}

// Delete removes a stored file by link. A missing file is not an
// error: the sweep may run twice over the same rows.
func (s *Store) Delete(link string) error {
	// Reject anything that escapes the root.
	clean := filepath.Clean(link)
	if clean != filepath.Base(clean) {
		return ErrBadLink
	}
	err := os.Remove(filepath.Join(s.Root, clean))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
