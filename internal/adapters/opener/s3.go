package opener

import (
	"context"
	"fmt"
	"io"
	"log"
	"mime"
	"path"

	"accreditations/internal/ports"

	"github.com/minio/minio-go/v7"
)

// S3Client is the subset of *minio.Client the opener needs.
type S3Client interface {
	GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (*minio.Object, error)
}

// S3Opener serves both import sources and stored documents.
type S3Opener struct{ Client S3Client }

func NewS3Opener(cli S3Client) *S3Opener { return &S3Opener{Client: cli} }

// Open fetches bucket/key. GetObject is lazy, so the object is stat'ed before
// returning to surface a missing key as an error here rather than on Read.
func (s *S3Opener) Open(ctx context.Context, bucket, key string) (io.ReadCloser, ports.Meta, error) {
	obj, err := s.Client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		log.Printf("[OPENER][S3][ERR] get %s/%s: %v", bucket, key, err)
		return nil, ports.Meta{}, fmt.Errorf("s3 get %s/%s: %w", bucket, key, err)
	}
	st, err := obj.Stat()
	if err != nil {
		_ = obj.Close()
		log.Printf("[OPENER][S3][ERR] stat %s/%s: %v", bucket, key, err)
		return nil, ports.Meta{}, fmt.Errorf("s3 stat %s/%s: %w", bucket, key, err)
	}
	log.Printf("[OPENER][S3][OK] %s/%s size=%d", bucket, key, st.Size)
	return obj, ports.Meta{
		Source:      "s3",
		ContentType: contentType(st.ContentType, key),
		Size:        st.Size,
		Bucket:      bucket,
		Key:         key,
	}, nil
}

// contentType prefers the stored type unless it is the generic default
// minio assigns to uploads without one.
func contentType(stored, key string) string {
	if stored != "" && stored != "application/octet-stream" && stored != "binary/octet-stream" {
		return stored
	}
	if ct := mime.TypeByExtension(path.Ext(key)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
