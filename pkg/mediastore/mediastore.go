// Package mediastore persists uploaded binary assets (book covers, chapter
// images) under a content directory and hands back addressable relative
// URLs. Database writes and file writes are not atomic; callers keep their
// transaction open across Store calls and remove written files when the
// transaction fails.
package mediastore

import (
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/ArinaZlatko/nonfiction-server/pkg/errcodes"
	"github.com/gabriel-vasile/mimetype"
	"github.com/pkg/errors"
)

// URLPrefix is the path under which stored assets are served.
const URLPrefix = "/media"

type Store struct {
	root string
}

func New(root string) (*Store, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, errors.Wrapf(err, "failed to create media directory: %s", root)
	}
	return &Store{root: root}, nil
}

// Root returns the directory assets are written under, for serving.
func (s *Store) Root() string {
	return s.root
}

// Store writes an image to <root>/<scope>/<filename> and returns the
// relative URL it will be served under. Non-image payloads are rejected
// before anything touches the disk.
func (s *Store) Store(scope, filename string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", errors.WithStack(err)
	}

	mtype := mimetype.Detect(data)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return "", errcodes.ValidationError("Uploaded file must be an image.")
	}

	dir := filepath.Join(s.root, filepath.FromSlash(scope))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", errors.WithStack(err)
	}

	if filepath.Ext(filename) == "" {
		filename += mtype.Extension()
	}

	if err := os.WriteFile(filepath.Join(dir, filename), data, 0644); err != nil { //nolint:gosec
		return "", errors.WithStack(err)
	}

	return path.Join(URLPrefix, scope, filename), nil
}

// Remove deletes a single stored asset by the relative URL Store returned.
// Missing files are not an error; compensation paths call this after a
// failed transaction without knowing how far the attempt got.
func (s *Store) Remove(relativeURL string) error {
	rel := strings.TrimPrefix(relativeURL, URLPrefix+"/")
	err := os.Remove(filepath.Join(s.root, filepath.FromSlash(rel)))
	if err != nil && !os.IsNotExist(err) {
		return errors.WithStack(err)
	}
	return nil
}

// RemoveScope deletes every asset under a scope, e.g. the whole book
// directory on cascade delete.
func (s *Store) RemoveScope(scope string) error {
	err := os.RemoveAll(filepath.Join(s.root, filepath.FromSlash(scope)))
	return errors.WithStack(err)
}
