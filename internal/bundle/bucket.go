package bundle

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ObjectAPI is the subset of *minio.Client used by Bucket.
type ObjectAPI interface {
	ListObjects(ctx context.Context, bucket string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo
	StatObject(ctx context.Context, bucket, object string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
	GetObject(ctx context.Context, bucket, object string, opts minio.GetObjectOptions) (*minio.Object, error)
}

// Bucket serves a bundle from an S3-compatible bucket. Directories are the
// common prefixes of a delimited listing; objects are listed in the order the
// server returns them.
type Bucket struct {
	client ObjectAPI
	bucket string
	prefix string
}

// BucketOptions configures a connection to an object store.
type BucketOptions struct {
	Endpoint  string
	Bucket    string
	Prefix    string
	AccessKey string
	SecretKey string
	Secure    bool
}

// NewBucketClient dials the object store described by opts.
func NewBucketClient(opts BucketOptions) (*Bucket, error) {
	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.Secure,
	})
	if err != nil {
		return nil, fmt.Errorf("bundle: connect %s: %w", opts.Endpoint, err)
	}
	return NewBucket(client, opts.Bucket, opts.Prefix), nil
}

// NewBucket wraps an existing client.
func NewBucket(client ObjectAPI, bucket, prefix string) *Bucket {
	prefix = strings.TrimPrefix(prefix, "/")
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &Bucket{client: client, bucket: bucket, prefix: prefix}
}

func (b *Bucket) key(rel string) string {
	return b.prefix + rel
}

func (b *Bucket) ReadDir(ctx context.Context, rel string) ([]string, error) {
	listPrefix := b.prefix
	if rel != "" {
		listPrefix = b.key(rel) + "/"
	}

	var names []string
	for obj := range b.client.ListObjects(ctx, b.bucket, minio.ListObjectsOptions{
		Prefix:    listPrefix,
		Recursive: false,
	}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("bundle: list %q: %w", rel, obj.Err)
		}
		name := strings.TrimSuffix(strings.TrimPrefix(obj.Key, listPrefix), "/")
		if name == "" {
			continue // directory marker object
		}
		names = append(names, name)
	}
	return names, nil
}

func (b *Bucket) Open(ctx context.Context, rel string) (io.ReadCloser, error) {
	obj, err := b.client.GetObject(ctx, b.bucket, b.key(rel), minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("bundle: get %q: %w", rel, err)
	}
	// GetObject is lazy; Stat issues the request so a missing object fails
	// here rather than on the first Read.
	if _, err := obj.Stat(); err != nil {
		_ = obj.Close()
		return nil, fmt.Errorf("bundle: get %q: %w", rel, err)
	}
	return obj, nil
}

func (b *Bucket) Size(ctx context.Context, rel string) (int64, error) {
	info, err := b.client.StatObject(ctx, b.bucket, b.key(rel), minio.StatObjectOptions{})
	if err != nil {
		return 0, fmt.Errorf("bundle: stat %q: %w", rel, err)
	}
	return info.Size, nil
}
