package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/minio/minio-go/v7"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrObjectNotFound is returned when an object does not exist.
var ErrObjectNotFound = errors.New("object not found")

// ErrMalformedObject is returned by GetJSON when an object does not decode.
var ErrMalformedObject = errors.New("malformed object")

// maxObjectBytes caps the size of a decoded JSON object.
const maxObjectBytes = 32 << 20

// IsNotFound reports a missing object or bucket.
func IsNotFound(err error) bool {
	if errors.Is(err, ErrObjectNotFound) {
		return true
	}
	code := minio.ToErrorResponse(err).Code
	return code == "NoSuchKey" || code == "NoSuchBucket" || code == "NotFound"
}

// EnsureBucket creates bucket when it does not exist.
func EnsureBucket(ctx context.Context, c Client, bucket, region string) error {
	exists, err := c.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", bucket, err)
	}
	if exists {
		return nil
	}
	if err := c.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: region}); err != nil {
		return fmt.Errorf("create bucket %s: %w", bucket, err)
	}
	return nil
}

// GetJSON downloads key and decodes it into out.
func GetJSON(ctx context.Context, c Client, bucket, key string, out any) error {
	obj, err := c.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		if IsNotFound(err) {
			return fmt.Errorf("%s/%s: %w", bucket, key, ErrObjectNotFound)
		}
		return fmt.Errorf("get %s/%s: %w", bucket, key, err)
	}
	defer obj.Close()

	raw, err := io.ReadAll(io.LimitReader(obj, maxObjectBytes))
	if err != nil {
		if IsNotFound(err) {
			return fmt.Errorf("%s/%s: %w", bucket, key, ErrObjectNotFound)
		}
		return fmt.Errorf("read %s/%s: %w", bucket, key, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s/%s: %w: %w", bucket, key, ErrMalformedObject, err)
	}
	return nil
}

// PutJSON encodes v and uploads it as key.
func PutJSON(ctx context.Context, c Client, bucket, key string, v any) (minio.UploadInfo, error) {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return minio.UploadInfo{}, fmt.Errorf("encode %s: %w", key, err)
	}
	info, err := c.PutObject(ctx, bucket, key, bytes.NewReader(raw), int64(len(raw)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return minio.UploadInfo{}, fmt.Errorf("put %s/%s: %w", bucket, key, err)
	}
	return info, nil
}

// ObjectExists reports whether key exists in bucket.
func ObjectExists(ctx context.Context, c Client, bucket, key string) (bool, error) {
	_, err := c.StatObject(ctx, bucket, key, minio.StatObjectOptions{})
	if err == nil {
		return true, nil
	}
	if IsNotFound(err) {
		return false, nil
	}
	return false, fmt.Errorf("stat %s/%s: %w", bucket, key, err)
}

// ListKeys returns the sorted keys under prefix, optionally filtered by
// extension.
func ListKeys(ctx context.Context, c Client, bucket, prefix, extension string) ([]string, error) {
	var keys []string
	for obj := range c.ListObjects(ctx, bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("list %s/%s: %w", bucket, prefix, obj.Err)
		}
		if extension != "" && !strings.HasSuffix(obj.Key, extension) {
			continue
		}
		keys = append(keys, obj.Key)
	}
	sort.Strings(keys)
	return keys, nil
}
