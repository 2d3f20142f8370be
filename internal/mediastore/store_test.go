package mediastore_test

import (
	"strings"
	"testing"

	"github.com/spf13/afero"

	"github.com/nicolep999/moodie/internal/mediastore"
)

// Minimal valid PNG header so content sniffing picks the right extension.
var pngData = []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a, 0, 0, 0, 0}

func newMemStore(t *testing.T) *mediastore.Store {
	t.Helper()
	store, err := mediastore.New(afero.NewMemMapFs(), "", "/media")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return store
}

func TestSaveSniffsExtension(t *testing.T) {
	store := newMemStore(t)

	relPath, err := store.Save(mediastore.CategoryPosters, "The Matrix", pngData)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if !strings.HasPrefix(relPath, "posters/the_matrix_") {
		t.Fatalf("unexpected path: %q", relPath)
	}
	if !strings.HasSuffix(relPath, ".png") {
		t.Fatalf("expected sniffed .png extension, got %q", relPath)
	}

	exists, err := store.Exists(relPath)
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if !exists {
		t.Fatalf("expected asset to exist at %q", relPath)
	}
}

func TestSaveRejectsEmptyData(t *testing.T) {
	store := newMemStore(t)
	if _, err := store.Save(mediastore.CategoryAvatars, "someone", nil); err == nil {
		t.Fatalf("expected error for empty asset")
	}
}

func TestURLMapping(t *testing.T) {
	store := newMemStore(t)
	if got := store.URL("posters/x.png"); got != "/media/posters/x.png" {
		t.Fatalf("unexpected url: %q", got)
	}
	if got := store.URL(""); got != "" {
		t.Fatalf("expected empty url for empty path, got %q", got)
	}
}

func TestMigrateCopiesAndSkips(t *testing.T) {
	src := newMemStore(t)
	dst := newMemStore(t)

	first, err := src.Save(mediastore.CategoryPosters, "First Movie", pngData)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	second, err := src.Save(mediastore.CategoryActors, "Some Actor", pngData)
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	result, err := mediastore.Migrate(src, dst)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if len(result.Copied) != 2 {
		t.Fatalf("expected 2 copied assets, got %d", len(result.Copied))
	}
	if len(result.Failed) != 0 {
		t.Fatalf("expected no failures, got %v", result.Failed)
	}

	for _, p := range []string{first, second} {
		ok, err := dst.Exists(p)
		if err != nil {
			t.Fatalf("exists: %v", err)
		}
		if !ok {
			t.Fatalf("expected %q in destination store", p)
		}
	}

	// Second run should skip everything already copied.
	again, err := mediastore.Migrate(src, dst)
	if err != nil {
		t.Fatalf("second migrate: %v", err)
	}
	if len(again.Copied) != 0 || len(again.Skipped) != 2 {
		t.Fatalf("expected idempotent migration, copied=%d skipped=%d", len(again.Copied), len(again.Skipped))
	}
}
