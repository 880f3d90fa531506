// Package romsource resolves upload arguments to file contents: plain
// local paths or s3://bucket/key objects.
package romsource

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const s3Scheme = "s3://"

// Source is one file to upload.
type Source interface {
	// Name returns the file's base name, used for the remote path.
	Name() string

	// Fetch returns the file contents.
	Fetch(ctx context.Context) ([]byte, error)
}

// Resolve maps an upload argument to a source by scheme.
func Resolve(arg string) (Source, error) {
	if strings.HasPrefix(arg, s3Scheme) {
		bucket, key, err := parseS3URI(arg)
		if err != nil {
			return nil, err
		}
		return &S3Source{bucket: bucket, key: key}, nil
	}
	return &FileSource{path: arg}, nil
}

// FileSource reads a local file.
type FileSource struct {
	path string
}

// Name returns the base name of the local path.
func (f *FileSource) Name() string {
	return filepath.Base(f.path)
}

// Fetch reads the whole file.
func (f *FileSource) Fetch(_ context.Context) ([]byte, error) {
	return os.ReadFile(f.path)
}

// S3Source reads an object from S3. Region and credentials resolve
// through the standard AWS chain (environment, shared config, IMDS).
type S3Source struct {
	bucket string
	key    string

	// client overrides the default S3 client in tests.
	client s3GetObjectAPI
}

type s3GetObjectAPI interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Name returns the base name of the object key.
func (s *S3Source) Name() string {
	return path.Base(s.key)
}

// Fetch downloads the object.
func (s *S3Source) Fetch(ctx context.Context) ([]byte, error) {
	client := s.client
	if client == nil {
		c, err := newS3Client(ctx)
		if err != nil {
			return nil, err
		}
		client = c
	}

	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		return nil, fmt.Errorf("romsource: get s3://%s/%s: %w", s.bucket, s.key, err)
	}
	defer out.Body.Close()

	return io.ReadAll(out.Body)
}

// newS3Client builds an S3 client from the default AWS config, so
// requests are signed with whatever the standard credential chain finds.
func newS3Client(ctx context.Context) (*s3.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("romsource: load aws config: %w", err)
	}
	return s3.NewFromConfig(cfg), nil
}

// parseS3URI splits s3://bucket/key into its parts.
func parseS3URI(uri string) (bucket, key string, err error) {
	rest := strings.TrimPrefix(uri, s3Scheme)
	bucket, key, found := strings.Cut(rest, "/")
	if !found || bucket == "" || key == "" {
		return "", "", fmt.Errorf("romsource: malformed S3 URI %q, want s3://bucket/key", uri)
	}
	return bucket, key, nil
}
