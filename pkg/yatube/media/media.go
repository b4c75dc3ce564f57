// Package media stores uploaded post images on local disk or in S3.
package media

import (
	"context"
	"io"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// UploadDir is the key prefix of every post image.
const UploadDir = "posts"

// ErrNotImage is returned by DetectImage for anything that is not an image.
var ErrNotImage = errors.New("upload a valid image: the file is either not an image or corrupted")

// Store saves uploads under generated keys and resolves keys to public URLs.
type Store interface {
	Save(ctx context.Context, name string, r io.Reader) (string, error)
	URL(key string) string
	Delete(ctx context.Context, key string) error
}

// NewKey returns a fresh key for an upload, keeping the original extension.
func NewKey(name string) string {
	return path.Join(UploadDir, uuid.NewString()+strings.ToLower(filepath.Ext(name)))
}

// DetectImage sniffs the content type of r and rewinds it. It fails with
// ErrNotImage unless the content is an image.
func DetectImage(r io.ReadSeeker) (string, error) {
	mtype, err := mimetype.DetectReader(r)
	if err != nil {
		return "", errors.Wrap(err, "detect upload type")
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return "", errors.Wrap(err, "rewind upload")
	}
	if !strings.HasPrefix(mtype.String(), "image/") {
		return "", ErrNotImage
	}
	return mtype.String(), nil
}
