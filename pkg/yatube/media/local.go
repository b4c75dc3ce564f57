package media

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// LocalStore keeps uploads under a directory that the server exposes at baseURL.
type LocalStore struct {
	root    string
	baseURL string
}

// NewLocalStore creates root/posts if needed.
func NewLocalStore(root, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(filepath.Join(root, UploadDir), os.ModePerm); err != nil {
		return nil, errors.Wrapf(err, "create media dir %s", root)
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &LocalStore{root: root, baseURL: baseURL}, nil
}

// Root is the directory served at the media URL.
func (s *LocalStore) Root() string {
	return s.root
}

// Save writes r to a new file under a fresh key.
func (s *LocalStore) Save(_ context.Context, name string, r io.Reader) (string, error) {
	key := NewKey(name)
	f, err := os.Create(s.path(key))
	if err != nil {
		return "", errors.Wrap(err, "create media file")
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(f.Name())
		return "", errors.Wrap(err, "write media file")
	}
	return key, nil
}

// URL is the public address of key.
func (s *LocalStore) URL(key string) string {
	return s.baseURL + key
}

// Delete removes the file; a missing file is not an error.
func (s *LocalStore) Delete(_ context.Context, key string) error {
	err := os.Remove(s.path(key))
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "delete media %s", key)
	}
	return nil
}

func (s *LocalStore) path(key string) string {
	return filepath.Join(s.root, filepath.FromSlash(key))
}
