package media

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/pkg/errors"
)

// S3Store uploads images to a public-read bucket.
type S3Store struct {
	bucket    string
	publicURL string
	uploader  *s3manager.Uploader
	svc       *s3.S3
}

// NewS3Store uses the default AWS credential chain. publicURL defaults to the
// bucket's virtual-hosted endpoint; set it to serve through a CDN.
func NewS3Store(region, bucket, publicURL string) (*S3Store, error) {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(region),
	})
	if err != nil {
		return nil, errors.Wrap(err, "create aws session")
	}
	if publicURL == "" {
		publicURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com/", bucket, region)
	}
	if !strings.HasSuffix(publicURL, "/") {
		publicURL += "/"
	}
	return &S3Store{
		bucket:    bucket,
		publicURL: publicURL,
		uploader:  s3manager.NewUploader(sess),
		svc:       s3.New(sess),
	}, nil
}

// Save uploads r as a public-read object under a fresh key.
func (s *S3Store) Save(ctx context.Context, name string, r io.Reader) (string, error) {
	key := NewKey(name)
	input := &s3manager.UploadInput{
		ACL:    aws.String("public-read"),
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   r,
	}
	if ext := path.Ext(key); ext != "" {
		input.ContentType = aws.String(contentTypeByExt(ext))
	}
	if _, err := s.uploader.UploadWithContext(ctx, input); err != nil {
		return "", errors.Wrapf(err, "upload %s to s3", key)
	}
	return key, nil
}

// URL is the public address of key.
func (s *S3Store) URL(key string) string {
	return s.publicURL + key
}

// Delete removes the object for key.
func (s *S3Store) Delete(ctx context.Context, key string) error {
	_, err := s.svc.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	return errors.Wrapf(err, "delete %s from s3", key)
}

func contentTypeByExt(ext string) string {
	switch strings.ToLower(ext) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}
