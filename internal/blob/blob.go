// Package blob defines the object-storage abstraction the upload step runs
// against. The production implementation lives in blob/s3; tests substitute
// in-memory fakes.
package blob

import (
	"context"
	"io"
	"time"

	"s3drop/internal/checksum"
)

// ACL is the canned access-control setting applied to an uploaded object.
type ACL string

const (
	ACLPrivate    ACL = "private"
	ACLPublicRead ACL = "public-read"
)

// PutOptions carries the per-object upload parameters.
type PutOptions struct {
	ContentType        string
	ContentDisposition string
	ACL                ACL
	// Tagging is the pre-encoded query-string form produced by the tags
	// package. Empty means no tags.
	Tagging string
	// ChecksumAlgorithm selects the checksum field; ChecksumValue, when
	// non-empty, is the base64-encoded precomputed value for it.
	ChecksumAlgorithm checksum.Algorithm
	ChecksumValue     string
}

// Store is the minimal storage surface the step needs: one write path and
// two ways of presenting the written object.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, opts PutOptions) error
	PresignGetURL(ctx context.Context, key string, expiry time.Duration) (string, error)
	PublicURL(key string) string
}
