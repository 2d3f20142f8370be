// Package mediastore handles binary assets (posters, photos, avatars) behind
// an afero filesystem so the same code serves a local media directory, an
// alternate deployment root, or an in-memory store in tests.
package mediastore

import (
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/mozillazg/go-unidecode"
	"github.com/spf13/afero"
)

// Asset categories map to subdirectories of the store root.
const (
	CategoryPosters   = "posters"
	CategoryDirectors = "directors"
	CategoryActors    = "actors"
	CategoryAvatars   = "avatars"
)

const maxSlugLength = 30

// Store reads and writes media assets relative to a root directory.
type Store struct {
	fs      afero.Fs
	baseURL string
}

// New creates a store rooted at root on the given filesystem. baseURL is
// prepended when mapping stored paths to public URLs.
func New(filesystem afero.Fs, root, baseURL string) (*Store, error) {
	if root != "" {
		if err := filesystem.MkdirAll(root, 0755); err != nil {
			return nil, fmt.Errorf("create media root: %w", err)
		}
		filesystem = afero.NewBasePathFs(filesystem, root)
	}
	return &Store{fs: filesystem, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// NewLocal creates a store on the OS filesystem.
func NewLocal(root, baseURL string) (*Store, error) {
	return New(afero.NewOsFs(), root, baseURL)
}

// Save writes data under category with a name derived from label. The file
// extension comes from content sniffing, not from the caller. Returns the
// store-relative path that should be persisted on the entity.
func (s *Store) Save(category, label string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("refusing to store empty asset for %q", label)
	}

	ext := mimetype.Detect(data).Extension()
	if ext == "" {
		ext = ".bin"
	}

	name := fmt.Sprintf("%s_%s%s", slugify(label), uuid.NewString()[:8], ext)
	relPath := path.Join(category, name)

	if err := s.fs.MkdirAll(category, 0755); err != nil {
		return "", fmt.Errorf("create category dir: %w", err)
	}
	if err := afero.WriteFile(s.fs, relPath, data, 0644); err != nil {
		return "", fmt.Errorf("write asset: %w", err)
	}
	return relPath, nil
}

// Open returns a reader for a stored asset.
func (s *Store) Open(relPath string) (io.ReadCloser, error) {
	f, err := s.fs.Open(relPath)
	if err != nil {
		return nil, fmt.Errorf("open asset %s: %w", relPath, err)
	}
	return f, nil
}

// Remove deletes a stored asset. Missing files are not an error; the store
// is advisory and rows may reference assets that were cleaned up manually.
func (s *Store) Remove(relPath string) error {
	if relPath == "" {
		return nil
	}
	err := s.fs.Remove(relPath)
	if err != nil && !strings.Contains(err.Error(), "not exist") {
		return fmt.Errorf("remove asset %s: %w", relPath, err)
	}
	return nil
}

// Exists reports whether the asset is present.
func (s *Store) Exists(relPath string) (bool, error) {
	return afero.Exists(s.fs, relPath)
}

// URL maps a stored path to its public URL.
func (s *Store) URL(relPath string) string {
	if relPath == "" {
		return ""
	}
	return s.baseURL + "/" + relPath
}

// HTTPHandler serves the store's assets over HTTP.
func (s *Store) HTTPHandler() http.Handler {
	return http.FileServer(afero.NewHttpFs(s.fs).Dir("/"))
}

// MigrateResult reports the outcome of a storage migration.
type MigrateResult struct {
	Copied  []string
	Skipped []string
	Failed  map[string]error
}

// Migrate copies every asset from src into dst, preserving relative paths.
// Assets already present in dst are skipped so the migration can be re-run.
func Migrate(src, dst *Store) (*MigrateResult, error) {
	result := &MigrateResult{Failed: make(map[string]error)}

	err := afero.Walk(src.fs, ".", func(p string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel := strings.TrimPrefix(p, "./")

		if ok, _ := afero.Exists(dst.fs, rel); ok {
			result.Skipped = append(result.Skipped, rel)
			return nil
		}

		data, readErr := afero.ReadFile(src.fs, rel)
		if readErr != nil {
			result.Failed[rel] = readErr
			return nil
		}
		if dir := path.Dir(rel); dir != "." {
			if mkErr := dst.fs.MkdirAll(dir, 0755); mkErr != nil {
				result.Failed[rel] = mkErr
				return nil
			}
		}
		if writeErr := afero.WriteFile(dst.fs, rel, data, 0644); writeErr != nil {
			result.Failed[rel] = writeErr
			return nil
		}
		result.Copied = append(result.Copied, rel)
		return nil
	})
	if err != nil {
		return result, fmt.Errorf("walk media store: %w", err)
	}
	return result, nil
}

// slugify reduces a label to a short ASCII identifier for filenames.
func slugify(label string) string {
	ascii := unidecode.Unidecode(label)
	var b strings.Builder
	for _, r := range strings.ToLower(ascii) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			b.WriteByte('_')
		}
	}
	slug := strings.Trim(b.String(), "_")
	if slug == "" {
		slug = "asset"
	}
	if len(slug) > maxSlugLength {
		slug = slug[:maxSlugLength]
	}
	return slug
}
