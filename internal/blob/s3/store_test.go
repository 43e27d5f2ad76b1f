package s3

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awsS3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"s3drop/internal/blob"
	"s3drop/internal/checksum"
)

type recordedRequest struct {
	method string
	host   string
	path   string
	query  url.Values
	header http.Header
	body   []byte
}

// mockRoundTripper records every request and answers with a canned status,
// keeping the adapter exercised without network access.
type mockRoundTripper struct {
	reqs   []recordedRequest
	status int
}

func (m *mockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	var body []byte
	if req.Body != nil {
		body, _ = io.ReadAll(req.Body)
	}
	if dec, ok := decodeChunked(body); ok {
		body = dec
	}
	m.reqs = append(m.reqs, recordedRequest{
		method: req.Method,
		host:   req.URL.Host,
		path:   req.URL.Path,
		query:  req.URL.Query(),
		header: req.Header.Clone(),
		body:   body,
	})
	status := m.status
	if status == 0 {
		status = http.StatusOK
	}
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewReader(nil)),
		Header:     http.Header{"ETag": {"\"etag\""}},
	}, nil
}

// decodeChunked unwraps a minimal single-chunk aws-chunked payload:
// <hex>\r\n<body>\r\n0\r\n...
func decodeChunked(b []byte) ([]byte, bool) {
	parts := strings.Split(string(b), "\r\n")
	if len(parts) < 3 {
		return nil, false
	}
	var size int64
	if _, err := fmt.Sscanf(parts[0], "%x", &size); err != nil {
		return nil, false
	}
	if int64(len(parts[1])) != size || parts[2] != "0" {
		return nil, false
	}
	return []byte(parts[1]), true
}

func newMockStore(t *testing.T, rt http.RoundTripper) *Store {
	t.Helper()
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion("us-east-1"),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("AKIA", "SECRET", "")),
	)
	require.NoError(t, err)
	client := awsS3.NewFromConfig(cfg, func(o *awsS3.Options) {
		o.HTTPClient = &http.Client{Transport: rt}
	})
	// bucket must be DNS-valid (3+ chars) or the endpoint resolver falls
	// back to path-style addressing
	return &Store{
		client:  client,
		presign: awsS3.NewPresignClient(client),
		bucket:  "bkt",
		region:  "us-east-1",
	}
}

func TestNewValidation(t *testing.T) {
	_, err := New(context.Background(), Config{Region: "us-east-1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bucket")

	_, err = New(context.Background(), Config{Bucket: "b"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "region")
}

func TestPutSendsDerivedHeaders(t *testing.T) {
	rt := &mockRoundTripper{}
	store := newMockStore(t, rt)

	opts := blob.PutOptions{
		ContentType:        "text/html",
		ContentDisposition: "inline",
		ACL:                blob.ACLPublicRead,
		Tagging:            "A=1&B=2",
		ChecksumAlgorithm:  checksum.SHA256,
		ChecksumValue:      "3q2+7w==",
	}
	err := store.Put(context.Background(), "artifacts/x/y.html", strings.NewReader("<html/>"), opts)
	require.NoError(t, err)

	require.Len(t, rt.reqs, 1)
	req := rt.reqs[0]
	assert.Equal(t, http.MethodPut, req.method)
	assert.Equal(t, "/artifacts/x/y.html", req.path)
	assert.Equal(t, "public-read", req.header.Get("X-Amz-Acl"))
	assert.Equal(t, "A=1&B=2", req.header.Get("X-Amz-Tagging"))
	assert.Equal(t, "3q2+7w==", req.header.Get("X-Amz-Checksum-Sha256"))
	assert.Equal(t, "text/html", req.header.Get("Content-Type"))
	assert.Equal(t, "inline", req.header.Get("Content-Disposition"))
	assert.Equal(t, []byte("<html/>"), req.body)
}

func TestPutDefaultsToPrivate(t *testing.T) {
	rt := &mockRoundTripper{}
	store := newMockStore(t, rt)

	err := store.Put(context.Background(), "artifacts/x/y.txt", strings.NewReader("x"), blob.PutOptions{})
	require.NoError(t, err)
	require.Len(t, rt.reqs, 1)
	assert.Equal(t, "private", rt.reqs[0].header.Get("X-Amz-Acl"))
	assert.Empty(t, rt.reqs[0].header.Get("X-Amz-Tagging"))
}

func TestPutChecksumAlgorithmWithoutValue(t *testing.T) {
	rt := &mockRoundTripper{}
	store := newMockStore(t, rt)

	opts := blob.PutOptions{ChecksumAlgorithm: checksum.CRC32}
	err := store.Put(context.Background(), "artifacts/x/y.txt", strings.NewReader("payload"), opts)
	require.NoError(t, err)
	require.Len(t, rt.reqs, 1)
	// the SDK computes the value itself when only the algorithm is given,
	// carrying it as an aws-chunked trailer rather than a request header
	assert.Equal(t, "CRC32", rt.reqs[0].header.Get("X-Amz-Sdk-Checksum-Algorithm"))
	assert.Empty(t, rt.reqs[0].header.Get("X-Amz-Checksum-Crc32"))
}

func TestPutServiceError(t *testing.T) {
	rt := &mockRoundTripper{status: http.StatusForbidden}
	store := newMockStore(t, rt)

	err := store.Put(context.Background(), "artifacts/x/y.txt", strings.NewReader("x"), blob.PutOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "put artifacts/x/y.txt")
}

func TestPresignGetURL(t *testing.T) {
	store := newMockStore(t, &mockRoundTripper{})

	signed, err := store.PresignGetURL(context.Background(), "artifacts/x/y.txt", 300*time.Second)
	require.NoError(t, err)

	u, err := url.Parse(signed)
	require.NoError(t, err)
	assert.Equal(t, "bkt.s3.us-east-1.amazonaws.com", u.Host)
	assert.Equal(t, "/artifacts/x/y.txt", u.Path)
	assert.Equal(t, "300", u.Query().Get("X-Amz-Expires"))
	assert.NotEmpty(t, u.Query().Get("X-Amz-Signature"))
}

func TestPresignGetURLZeroExpiry(t *testing.T) {
	store := newMockStore(t, &mockRoundTripper{})

	signed, err := store.PresignGetURL(context.Background(), "artifacts/x/y.txt", 0)
	require.NoError(t, err)

	u, err := url.Parse(signed)
	require.NoError(t, err)
	// zero must survive as-is, not be replaced by the SDK's 15-minute default
	assert.Equal(t, "0", u.Query().Get("X-Amz-Expires"))
	assert.NotEmpty(t, u.Query().Get("X-Amz-Signature"))
}

func TestPublicURL(t *testing.T) {
	store := &Store{bucket: "b", region: "r"}
	assert.Equal(t, "https://b.s3.r.amazonaws.com/artifacts/x/y.txt", store.PublicURL("artifacts/x/y.txt"))
}

func TestPublicURLCustomEndpoint(t *testing.T) {
	base, err := url.Parse("http://localhost:9000")
	require.NoError(t, err)
	store := &Store{bucket: "b", region: "r", baseURL: base}
	assert.Equal(t, "http://localhost:9000/b/artifacts/x/y.txt", store.PublicURL("artifacts/x/y.txt"))
}
