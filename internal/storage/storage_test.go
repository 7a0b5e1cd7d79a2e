package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestStorage(t *testing.T) (*DiskStorage, string) {
	t.Helper()

	root := t.TempDir()
	storage, err := NewDiskStorage(root, "http://localhost:8080/uploads/")
	if err != nil {
		t.Fatalf("NewDiskStorage failed: %v", err)
	}
	return storage, root
}

func TestSaveAndRemoveRoundTrip(t *testing.T) {
	storage, root := newTestStorage(t)
	ctx := context.Background()

	url, err := storage.Save(ctx, "stickers/100.png", "image/png", strings.NewReader("png-bytes"))
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if url != "http://localhost:8080/uploads/stickers/100.png" {
		t.Errorf("url = %q, want the base URL joined with the object path", url)
	}

	data, err := os.ReadFile(filepath.Join(root, "stickers", "100.png"))
	if err != nil {
		t.Fatalf("object not written: %v", err)
	}
	if string(data) != "png-bytes" {
		t.Errorf("object content = %q", data)
	}

	if err := storage.Remove(ctx, "stickers/100.png"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "stickers", "100.png")); !os.IsNotExist(err) {
		t.Error("object still on disk after Remove")
	}
}

func TestRemoveMissingObjectIsANoOp(t *testing.T) {
	storage, _ := newTestStorage(t)

	if err := storage.Remove(context.Background(), "stickers/never-existed.png"); err != nil {
		t.Errorf("Remove of a missing object = %v, want nil", err)
	}
}

func TestSaveContainsTraversalInsideRoot(t *testing.T) {
	storage, root := newTestStorage(t)
	ctx := context.Background()

	for _, path := range []string{"../escape.png", "stickers/../../escape.png"} {
		if _, err := storage.Save(ctx, path, "image/png", strings.NewReader("x")); err != nil {
			t.Fatalf("Save(%q) failed: %v", path, err)
		}
	}

	// The dot segments are stripped, never followed above the root.
	if _, err := os.Stat(filepath.Join(filepath.Dir(root), "escape.png")); !os.IsNotExist(err) {
		t.Error("traversal escaped the storage root")
	}
	if _, err := os.Stat(filepath.Join(root, "escape.png")); err != nil {
		t.Errorf("normalized object missing: %v", err)
	}
}

func TestPublicURLNormalizesSlashes(t *testing.T) {
	storage, _ := newTestStorage(t)

	if got := storage.PublicURL("/stickers/1.png"); got != "http://localhost:8080/uploads/stickers/1.png" {
		t.Errorf("PublicURL = %q", got)
	}
}
