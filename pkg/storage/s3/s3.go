// Package s3 implements storage.Storage with one S3 object per key.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/goliatone/go-persist/pkg/storage"
)

// Storage stores entries under bucket/prefix.
type Storage struct {
	client  s3iface.S3API
	bucket  string
	prefix  string
	timeout time.Duration
}

// New returns a Storage writing objects to bucket. Keys are stored under
// prefix, which may be empty.
func New(client s3iface.S3API, bucket, prefix string) *Storage {
	return &Storage{
		client:  client,
		bucket:  bucket,
		prefix:  strings.TrimSuffix(prefix, "/"),
		timeout: 30 * time.Second,
	}
}

func (s *Storage) objectKey(key string) string {
	if s.prefix == "" {
		return key
	}
	return s.prefix + "/" + key
}

func (s *Storage) context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.timeout)
}

func (s *Storage) Get(key string) ([]byte, error) {
	ctx, cancel := s.context()
	defer cancel()
	out, err := s.client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(key)),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, storage.ErrKeyNotFound
		}
		return nil, fmt.Errorf("s3: get %s: %w", s.objectKey(key), err)
	}
	defer out.Body.Close()
	value, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("s3: read %s: %w", s.objectKey(key), err)
	}
	return value, nil
}

func (s *Storage) Set(key string, value []byte) error {
	ctx, cancel := s.context()
	defer cancel()
	_, err := s.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.objectKey(key)),
		Body:        bytes.NewReader(value),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("s3: put %s: %w", s.objectKey(key), err)
	}
	return nil
}

func (s *Storage) Remove(key string) error {
	ctx, cancel := s.context()
	defer cancel()
	_, err := s.client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(key)),
	})
	if err != nil && !isNotFound(err) {
		return fmt.Errorf("s3: delete %s: %w", s.objectKey(key), err)
	}
	return nil
}

func (s *Storage) Keys(prefix string) ([]string, error) {
	ctx, cancel := s.context()
	defer cancel()
	var keys []string
	trim := ""
	if s.prefix != "" {
		trim = s.prefix + "/"
	}
	err := s.client.ListObjectsV2PagesWithContext(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(trim + prefix),
	}, func(page *s3.ListObjectsV2Output, _ bool) bool {
		for _, object := range page.Contents {
			keys = append(keys, strings.TrimPrefix(aws.StringValue(object.Key), trim))
		}
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("s3: list %s: %w", trim+prefix, err)
	}
	return keys, nil
}

func isNotFound(err error) bool {
	var aerr awserr.Error
	if errors.As(err, &aerr) {
		switch aerr.Code() {
		case s3.ErrCodeNoSuchKey, "NotFound":
			return true
		}
	}
	return false
}
