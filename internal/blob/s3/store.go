// Package s3 implements blob.Store against AWS S3 or an S3-compatible
// endpoint (e.g. MinIO).
package s3

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	smithymiddleware "github.com/aws/smithy-go/middleware"
	smithyhttp "github.com/aws/smithy-go/transport/http"

	"s3drop/internal/blob"
	"s3drop/internal/checksum"
)

// Store is a single-bucket S3 client with presign support.
type Store struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
	region  string
	baseURL *url.URL // set when a custom endpoint is configured
}

// Config holds explicit construction parameters. Empty credential fields
// fall back to the default credentials chain.
type Config struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
	Endpoint        string // optional; enables custom endpoint (e.g. MinIO)
	PathStyle       bool
}

// New creates an S3 store from Config.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket required")
	}
	if cfg.Region == "" {
		return nil, fmt.Errorf("s3 region required")
	}
	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, cfg.SessionToken)))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, err
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.PathStyle {
			o.UsePathStyle = true
		}
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	var base *url.URL
	if cfg.Endpoint != "" {
		if u, err := url.Parse(cfg.Endpoint); err == nil {
			base = u
		}
	}
	return &Store{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  cfg.Bucket,
		region:  cfg.Region,
		baseURL: base,
	}, nil
}

// Put issues a single PutObject call. No retry: the step's contract is that
// the first storage error aborts the run.
func (s *Store) Put(ctx context.Context, key string, r io.Reader, opts blob.PutOptions) error {
	input := &s3.PutObjectInput{Bucket: &s.bucket, Key: &key, Body: r}
	if opts.ContentType != "" {
		input.ContentType = &opts.ContentType
	}
	if opts.ContentDisposition != "" {
		input.ContentDisposition = &opts.ContentDisposition
	}
	switch opts.ACL {
	case blob.ACLPublicRead:
		input.ACL = types.ObjectCannedACLPublicRead
	case blob.ACLPrivate, "":
		input.ACL = types.ObjectCannedACLPrivate
	default:
		return fmt.Errorf("unsupported ACL %q", opts.ACL)
	}
	if opts.Tagging != "" {
		input.Tagging = &opts.Tagging
	}
	if err := applyChecksum(input, opts.ChecksumAlgorithm, opts.ChecksumValue); err != nil {
		return err
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

// applyChecksum attaches either a precomputed base64 value under the
// algorithm-specific field, or the algorithm alone so the SDK computes it.
func applyChecksum(input *s3.PutObjectInput, algo checksum.Algorithm, value string) error {
	switch algo {
	case checksum.None:
	case checksum.CRC32:
		if value != "" {
			input.ChecksumCRC32 = &value
		} else {
			input.ChecksumAlgorithm = types.ChecksumAlgorithmCrc32
		}
	case checksum.CRC32C:
		if value != "" {
			input.ChecksumCRC32C = &value
		} else {
			input.ChecksumAlgorithm = types.ChecksumAlgorithmCrc32c
		}
	case checksum.CRC64NVME:
		if value != "" {
			input.ChecksumCRC64NVME = &value
		} else {
			input.ChecksumAlgorithm = types.ChecksumAlgorithmCrc64nvme
		}
	case checksum.SHA1:
		if value != "" {
			input.ChecksumSHA1 = &value
		} else {
			input.ChecksumAlgorithm = types.ChecksumAlgorithmSha1
		}
	case checksum.SHA256:
		if value != "" {
			input.ChecksumSHA256 = &value
		} else {
			input.ChecksumAlgorithm = types.ChecksumAlgorithmSha256
		}
	default:
		return fmt.Errorf("unsupported checksum algorithm %q", algo)
	}
	return nil
}

// PresignGetURL returns a time-limited signed GET URL. The expiry is passed
// through exactly as configured, including zero.
func (s *Store) PresignGetURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	out, err := s.presign.PresignGetObject(ctx,
		&s3.GetObjectInput{Bucket: &s.bucket, Key: &key},
		func(po *s3.PresignOptions) {
			po.Expires = expiry
			if expiry == 0 {
				// PresignOptions treats a zero Expires as unset and
				// substitutes a 15-minute default; pin the query
				// parameter before the request is signed.
				po.ClientOptions = append(po.ClientOptions, func(o *s3.Options) {
					o.APIOptions = append(o.APIOptions, func(stack *smithymiddleware.Stack) error {
						return stack.Finalize.Add(&exactExpiry{seconds: 0}, smithymiddleware.Before)
					})
				})
			}
		})
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", key, err)
	}
	return out.URL, nil
}

// exactExpiry overwrites the X-Amz-Expires query parameter ahead of signing,
// after the SDK's own presign customization has applied its default.
type exactExpiry struct{ seconds int64 }

func (m *exactExpiry) ID() string { return "ExactPresignExpiry" }

func (m *exactExpiry) HandleFinalize(ctx context.Context, in smithymiddleware.FinalizeInput, next smithymiddleware.FinalizeHandler) (smithymiddleware.FinalizeOutput, smithymiddleware.Metadata, error) {
	if req, ok := in.Request.(*smithyhttp.Request); ok {
		q := req.URL.Query()
		q.Set("X-Amz-Expires", fmt.Sprintf("%d", m.seconds))
		req.URL.RawQuery = q.Encode()
	}
	return next.HandleFinalize(ctx, in)
}

// PublicURL returns the canonical virtual-hosted-style URL for key. When a
// custom endpoint is configured the endpoint form is used instead.
func (s *Store) PublicURL(key string) string {
	if s.baseURL != nil {
		u := *s.baseURL
		u.Path = strings.TrimSuffix(u.Path, "/") + "/" + s.bucket + "/" + key
		return u.String()
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}
