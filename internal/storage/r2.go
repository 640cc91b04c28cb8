package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/hackclub/lazythumbs/internal/util"
)

// R2Store keeps objects in an S3-compatible bucket (Cloudflare R2, S3, MinIO)
type R2Store struct {
	client *s3.Client
	bucket string
	prefix string
}

type R2Options struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	Endpoint        string
	// Prefix is prepended to every object key, e.g. "sources/".
	Prefix string
}

func NewR2Store(ctx context.Context, opts R2Options) (*R2Store, error) {
	// Create custom credentials
	creds := credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, "")

	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(creds),
		config.WithRegion("auto"), // R2 uses "auto" as region
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	endpoint := opts.Endpoint
	if endpoint == "" && opts.AccountID != "" {
		endpoint = fmt.Sprintf("https://%s.r2.cloudflarestorage.com", opts.AccountID)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
		o.UsePathStyle = true
	})

	return NewR2StoreFromClient(client, opts.Bucket, opts.Prefix), nil
}

// NewR2StoreFromClient wraps an existing S3 client.
func NewR2StoreFromClient(client *s3.Client, bucket, prefix string) *R2Store {
	return &R2Store{
		client: client,
		bucket: bucket,
		prefix: prefix,
	}
}

func (r *R2Store) key(p string) string {
	return r.prefix + strings.TrimPrefix(p, "/")
}

// Open downloads an object
func (r *R2Store) Open(ctx context.Context, p string) ([]byte, error) {
	out, err := r.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(r.key(p)),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, p)
		}
		return nil, fmt.Errorf("failed to get object from R2: %w", err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read object body: %w", err)
	}
	return data, nil
}

// CreateExclusive uploads an object only if the key is still free, using a
// conditional put (If-None-Match: *).
func (r *R2Store) CreateExclusive(ctx context.Context, p string, data []byte) error {
	input := &s3.PutObjectInput{
		Bucket:       aws.String(r.bucket),
		Key:          aws.String(r.key(p)),
		Body:         bytes.NewReader(data),
		ContentType:  aws.String(util.GetMIMEFromPath(p)),
		CacheControl: aws.String("public, max-age=31536000, immutable"),
		IfNoneMatch:  aws.String("*"),
		Metadata: map[string]string{
			"source": "lazythumbs",
		},
	}

	if _, err := r.client.PutObject(ctx, input); err != nil {
		if isConflict(err) {
			return fmt.Errorf("%w: %s", ErrAlreadyExists, p)
		}
		return fmt.Errorf("failed to upload to R2: %w", err)
	}
	return nil
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
	return httpStatus(err) == http.StatusNotFound
}

func isConflict(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "PreconditionFailed", "ConditionalRequestConflict":
			return true
		}
	}
	switch httpStatus(err) {
	case http.StatusPreconditionFailed, http.StatusConflict:
		return true
	}
	return false
}

func httpStatus(err error) int {
	var respErr *awshttp.ResponseError
	if errors.As(err, &respErr) {
		return respErr.HTTPStatusCode()
	}
	return 0
}
