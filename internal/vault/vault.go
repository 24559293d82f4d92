// Package vault stores uploaded product images on local disk.
package vault

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// ErrNotFound is returned when a requested image does not exist.
var ErrNotFound = errors.New("image not found")

// Vault owns a single directory of image files named {id}{ext}.
type Vault struct {
	dir string
}

// New returns a Vault rooted at dir. The directory is created lazily on the
// first Put.
func New(dir string) *Vault {
	return &Vault{dir: dir}
}

// Filename derives the stored filename for a product id and extension.
func Filename(id, ext string) string {
	return id + ext
}

// Put writes or overwrites the image for the given product id and extension
// and returns the stored filename. Any byte content is accepted; size limits
// are a boundary concern of the HTTP layer.
func (v *Vault) Put(id, ext string, data []byte) (string, error) {
	if err := os.MkdirAll(v.dir, 0o755); err != nil {
		return "", fmt.Errorf("create image dir: %w", err)
	}
	name := Filename(id, ext)
	if err := os.WriteFile(filepath.Join(v.dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("write image %s: %w", name, err)
	}
	return name, nil
}

// Open returns a reader over the named image. Names containing path
// separators are rejected so callers cannot escape the vault directory.
func (v *Vault) Open(name string) (io.ReadCloser, error) {
	if name == "" || name == "." || name == ".." || filepath.Base(name) != name {
		return nil, ErrNotFound
	}
	f, err := os.Open(filepath.Join(v.dir, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("open image %s: %w", name, err)
	}
	return f, nil
}

// Exists reports whether the named image is present in the vault.
func (v *Vault) Exists(name string) bool {
	if filepath.Base(name) != name || name == "" {
		return false
	}
	_, err := os.Stat(filepath.Join(v.dir, name))
	return err == nil
}
