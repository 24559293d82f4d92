// Package store implements the product catalog persisted as a single JSON
// document. The disk file is the source of truth: every operation loads it
// fresh, and every mutation rewrites it whole. One mutex serializes the
// read-modify-write units so interleaved mutations cannot lose updates.
package store

import (
	"errors"
	"fmt"
	"io/fs"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	json "github.com/goccy/go-json"

	"github.com/fairyhunter13/product-catalog-service/internal/model"
	"github.com/fairyhunter13/product-catalog-service/internal/vault"
)

// ErrNotFound is returned on update/delete of an unknown product id.
var ErrNotFound = errors.New("product not found")

// Publisher receives the full post-mutation product list after every
// successful mutation.
type Publisher interface {
	Publish(snapshot []model.Product)
}

// Store owns the catalog document and the image vault interaction.
type Store struct {
	mu        sync.Mutex
	path      string
	vault     *vault.Vault
	pub       Publisher
	urlPrefix string

	mutations atomic.Uint64
}

// New builds a Store persisting to path, writing images through v, and
// publishing snapshots to pub. urlPrefix is prepended to stored image
// filenames in every externally visible product.
func New(path string, v *vault.Vault, pub Publisher, urlPrefix string) *Store {
	return &Store{path: path, vault: v, pub: pub, urlPrefix: strings.TrimSuffix(urlPrefix, "/")}
}

// load reads the document from disk. A missing file is an empty catalog,
// never an error.
func (s *Store) load() (model.Catalog, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return model.Catalog{}, nil
		}
		return model.Catalog{}, fmt.Errorf("read catalog: %w", err)
	}
	var c model.Catalog
	if err := json.Unmarshal(b, &c); err != nil {
		return model.Catalog{}, fmt.Errorf("decode catalog: %w", err)
	}
	return c, nil
}

// save rewrites the whole document via a temp file and rename so a crash
// mid-write cannot truncate the catalog.
func (s *Store) save(c model.Catalog) error {
	b, err := json.MarshalIndent(c, "", "    ")
	if err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".catalog-*.json")
	if err != nil {
		return fmt.Errorf("create temp catalog: %w", err)
	}
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write catalog: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close catalog: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace catalog: %w", err)
	}
	return nil
}

// publicView returns the products with image paths rewritten to servable
// URLs. The stored document keeps bare filenames.
func (s *Store) publicView(c model.Catalog) []model.Product {
	out := make([]model.Product, len(c.Products))
	for i, p := range c.Products {
		p.ImagePath = s.urlPrefix + "/" + p.ImagePath
		out[i] = p
	}
	return out
}

// genID picks a numeric-string id in [1, 999999] and re-rolls until it does
// not collide with any product in the catalog. Must be called with the lock
// held.
func genID(c model.Catalog) string {
	taken := make(map[string]struct{}, len(c.Products))
	for _, p := range c.Products {
		taken[p.ID] = struct{}{}
	}
	for {
		id := strconv.Itoa(rand.IntN(999999) + 1)
		if _, ok := taken[id]; !ok {
			return id
		}
	}
}

// List returns all products in insertion order with servable image URLs.
func (s *Store) List() ([]model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.load()
	if err != nil {
		return nil, err
	}
	return s.publicView(c), nil
}

// Count returns the number of products in the catalog.
func (s *Store) Count() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.load()
	if err != nil {
		return 0, err
	}
	return len(c.Products), nil
}

// Create stores the image, appends a new product with a fresh unique id,
// persists the document, and publishes the updated list. ext is the original
// upload's extension including the dot.
func (s *Store) Create(name string, pricePerKg float64, ext string, image []byte) (model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.load()
	if err != nil {
		return model.Product{}, err
	}
	id := genID(c)
	filename, err := s.vault.Put(id, ext, image)
	if err != nil {
		return model.Product{}, err
	}
	p := model.Product{ID: id, Name: name, PricePerKg: pricePerKg, ImagePath: filename}
	c.Products = append(c.Products, p)
	if err := s.save(c); err != nil {
		return model.Product{}, err
	}
	// publish under the lock so snapshots go out in mutation order
	s.mutations.Add(1)
	s.pub.Publish(s.publicView(c))
	p.ImagePath = s.urlPrefix + "/" + p.ImagePath
	return p, nil
}

// Update replaces name and price of the product, and its image when new
// bytes are supplied. The image is rewritten under {id}{ext}; when the new
// extension differs from the old one the previous file stays behind in the
// vault (accepted orphan, same as delete).
func (s *Store) Update(id, name string, pricePerKg float64, ext string, image []byte) (model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.load()
	if err != nil {
		return model.Product{}, err
	}
	idx := -1
	for i, p := range c.Products {
		if p.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return model.Product{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	c.Products[idx].Name = name
	c.Products[idx].PricePerKg = pricePerKg
	if image != nil {
		filename, err := s.vault.Put(id, ext, image)
		if err != nil {
			return model.Product{}, err
		}
		c.Products[idx].ImagePath = filename
	}
	if err := s.save(c); err != nil {
		return model.Product{}, err
	}
	p := c.Products[idx]
	s.mutations.Add(1)
	s.pub.Publish(s.publicView(c))
	p.ImagePath = s.urlPrefix + "/" + p.ImagePath
	return p, nil
}

// Delete removes the product, persists, and publishes. The image file is
// left in the vault; orphaned images are not collected.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.load()
	if err != nil {
		return err
	}
	kept := c.Products[:0:0]
	for _, p := range c.Products {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	if len(kept) == len(c.Products) {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	c.Products = kept
	if err := s.save(c); err != nil {
		return err
	}
	s.mutations.Add(1)
	s.pub.Publish(s.publicView(c))
	return nil
}

// Mutations returns the number of successful mutations since start.
func (s *Store) Mutations() uint64 { return s.mutations.Load() }
