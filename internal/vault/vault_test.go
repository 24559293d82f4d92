package vault

import (
	"errors"
	"io"
	"path/filepath"
	"testing"
)

func TestPutAndOpen(t *testing.T) {
	v := New(filepath.Join(t.TempDir(), "images"))
	name, err := v.Put("42", ".png", []byte("png-bytes"))
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if name != "42.png" {
		t.Fatalf("expected 42.png, got %s", name)
	}
	rc, err := v.Open(name)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer rc.Close()
	b, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(b) != "png-bytes" {
		t.Fatalf("unexpected content: %q", b)
	}
}

func TestPutOverwrites(t *testing.T) {
	v := New(t.TempDir())
	if _, err := v.Put("7", ".jpg", []byte("old")); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, err := v.Put("7", ".jpg", []byte("new")); err != nil {
		t.Fatalf("put: %v", err)
	}
	rc, err := v.Open("7.jpg")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer rc.Close()
	b, _ := io.ReadAll(rc)
	if string(b) != "new" {
		t.Fatalf("expected overwrite, got %q", b)
	}
}

func TestOpenMissing(t *testing.T) {
	v := New(t.TempDir())
	if _, err := v.Open("nope.png"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestOpenRejectsTraversal(t *testing.T) {
	v := New(t.TempDir())
	for _, name := range []string{"", ".", "..", "../secret", "a/b.png"} {
		if _, err := v.Open(name); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound for %q, got %v", name, err)
		}
	}
}

func TestExists(t *testing.T) {
	v := New(t.TempDir())
	if v.Exists("1.png") {
		t.Fatalf("expected missing")
	}
	if _, err := v.Put("1", ".png", []byte("x")); err != nil {
		t.Fatalf("put: %v", err)
	}
	if !v.Exists("1.png") {
		t.Fatalf("expected present")
	}
	if v.Exists("../1.png") {
		t.Fatalf("traversal must not resolve")
	}
}
