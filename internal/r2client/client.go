// Package r2client provides a client for Cloudflare R2 object storage.
// It wraps the AWS S3 SDK to store and fetch crawl archives.
package r2client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"slices"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	smithyhttp "github.com/aws/smithy-go/transport/http"

	"github.com/garyellow/ut-course-catalog-go/internal/archive"
	domerrors "github.com/garyellow/ut-course-catalog-go/internal/errors"
)

// Scheme prefixes archive locations stored in R2, e.g. "r2://archives/All.json.zst".
const Scheme = "r2://"

// ErrNotFound is returned when an object does not exist.
var ErrNotFound = errors.New("r2client: object not found")

// ErrExists is returned by conditional uploads when the key is taken.
var ErrExists = errors.New("r2client: object already exists")

// Config holds R2 client configuration.
type Config struct {
	Endpoint    string // R2 endpoint URL (e.g., https://account-id.r2.cloudflarestorage.com)
	AccessKeyID string
	SecretKey   string
	BucketName  string
	Prefix      string // Key prefix for archives, e.g. "archives"
}

// Client provides R2 object storage operations.
type Client struct {
	s3     *s3.Client
	bucket string
	prefix string
}

// New creates a new R2 client.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.Endpoint == "" || cfg.AccessKeyID == "" || cfg.SecretKey == "" || cfg.BucketName == "" {
		return nil, domerrors.InvalidConfiguration("r2client: endpoint, access key, secret key and bucket are required")
	}

	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretKey,
			"",
		)),
		config.WithRegion("auto"),
	)
	if err != nil {
		return nil, fmt.Errorf("r2client: load aws config: %w", err)
	}

	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.Endpoint)
		o.UsePathStyle = true // Required for R2
		// R2 rejects the SDK's default trailing checksums on some operations
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
		o.ResponseChecksumValidation = aws.ResponseChecksumValidationWhenRequired
	})

	return &Client{
		s3:     s3Client,
		bucket: cfg.BucketName,
		prefix: strings.Trim(cfg.Prefix, "/"),
	}, nil
}

// Key returns the object key for name under the configured prefix.
func (c *Client) Key(name string) string {
	if c.prefix == "" {
		return name
	}
	return path.Join(c.prefix, name)
}

// Upload uploads an object to R2.
// Returns the ETag of the uploaded object.
func (c *Client) Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	input := &s3.PutObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
		Body:   body,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	result, err := c.s3.PutObject(ctx, input)
	if err != nil {
		return "", fmt.Errorf("r2client: upload %q: %w", key, err)
	}
	return trimETag(result.ETag), nil
}

// PutObjectIfNotExists creates an object only if the key is free.
// Uses If-None-Match: * for conditional writes.
// Returns ErrExists if the key is already taken.
func (c *Client) PutObjectIfNotExists(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	input := &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		Body:        body,
		IfNoneMatch: aws.String("*"),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	result, err := c.s3.PutObject(ctx, input)
	if err != nil {
		if isPreconditionFailed(err) {
			return "", fmt.Errorf("%w: %q", ErrExists, key)
		}
		return "", fmt.Errorf("r2client: put if not exists %q: %w", key, err)
	}
	return trimETag(result.ETag), nil
}

// Download downloads an object from R2.
// Returns the object body and ETag. Caller must close the body.
func (c *Client) Download(ctx context.Context, key string) (io.ReadCloser, string, error) {
	result, err := c.s3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, "", fmt.Errorf("%w: %q", ErrNotFound, key)
		}
		return nil, "", fmt.Errorf("r2client: download %q: %w", key, err)
	}
	return result.Body, trimETag(result.ETag), nil
}

// HeadObject retrieves metadata for an object without downloading the body.
// Returns the ETag. Returns ErrNotFound if the object does not exist.
func (c *Client) HeadObject(ctx context.Context, key string) (string, error) {
	result, err := c.s3.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return "", fmt.Errorf("%w: %q", ErrNotFound, key)
		}
		return "", fmt.Errorf("r2client: head %q: %w", key, err)
	}
	return trimETag(result.ETag), nil
}

// DeleteObject deletes an object from R2.
func (c *Client) DeleteObject(ctx context.Context, key string) error {
	_, err := c.s3.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("r2client: delete %q: %w", key, err)
	}
	return nil
}

// UploadArchive stores a under Key(name) and returns the key.
// With overwrite unset an existing object is left alone and ErrExists returned.
func (c *Client) UploadArchive(ctx context.Context, name string, a *archive.Archive, overwrite bool) (string, error) {
	var buf bytes.Buffer
	if err := archive.Write(&buf, a); err != nil {
		return "", err
	}

	key := c.Key(archive.WithExtension(name))
	var err error
	if overwrite {
		_, err = c.Upload(ctx, key, bytes.NewReader(buf.Bytes()), archive.ContentType)
	} else {
		_, err = c.PutObjectIfNotExists(ctx, key, bytes.NewReader(buf.Bytes()), archive.ContentType)
	}
	if err != nil {
		return "", err
	}
	return key, nil
}

// ObjectInfo describes a stored archive.
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// ListArchives lists the archives under the configured prefix, newest first.
func (c *Client) ListArchives(ctx context.Context) ([]ObjectInfo, error) {
	input := &s3.ListObjectsV2Input{Bucket: aws.String(c.bucket)}
	if c.prefix != "" {
		input.Prefix = aws.String(c.prefix + "/")
	}

	var out []ObjectInfo
	pages := s3.NewListObjectsV2Paginator(c.s3, input)
	for pages.HasMorePages() {
		page, err := pages.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("r2client: list archives: %w", err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if !strings.HasSuffix(key, archive.Extension) {
				continue
			}
			out = append(out, ObjectInfo{
				Key:          key,
				Size:         aws.ToInt64(obj.Size),
				LastModified: aws.ToTime(obj.LastModified),
			})
		}
	}
	slices.SortFunc(out, func(a, b ObjectInfo) int {
		return b.LastModified.Compare(a.LastModified)
	})
	return out, nil
}

// DeleteArchive removes the archive at key. Deleting a missing key returns
// ErrNotFound rather than succeeding silently.
func (c *Client) DeleteArchive(ctx context.Context, key string) error {
	if _, err := c.HeadObject(ctx, key); err != nil {
		return err
	}
	return c.DeleteObject(ctx, key)
}

// DownloadArchive fetches and decodes the archive stored at key.
func (c *Client) DownloadArchive(ctx context.Context, key string) (*archive.Archive, error) {
	body, _, err := c.Download(ctx, key)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	a, err := archive.Read(body)
	if err != nil {
		return nil, fmt.Errorf("r2client: decode %q: %w", key, err)
	}
	return a, nil
}

// ParseLocation splits an "r2://key" location. ok is false for local paths.
func ParseLocation(location string) (key string, ok bool) {
	key, ok = strings.CutPrefix(location, Scheme)
	return strings.TrimPrefix(key, "/"), ok
}

func trimETag(etag *string) string {
	if etag == nil {
		return ""
	}
	return strings.Trim(*etag, "\"")
}

// isPreconditionFailed checks if the error is a 412 Precondition Failed response.
func isPreconditionFailed(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && apiErr.ErrorCode() == "PreconditionFailed" {
		return true
	}
	var respErr *smithyhttp.ResponseError
	if errors.As(err, &respErr) && respErr.HTTPStatusCode() == 412 {
		return true
	}
	return strings.Contains(err.Error(), "PreconditionFailed")
}

func isNotFound(err error) bool {
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var nf *types.NotFound
	if errors.As(err, &nf) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound", "404":
			return true
		}
	}
	var respErr *smithyhttp.ResponseError
	if errors.As(err, &respErr) && respErr.HTTPStatusCode() == 404 {
		return true
	}
	return false
}
