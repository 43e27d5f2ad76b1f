package uploader

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRewriteURL(t *testing.T) {
	loc := Location{Bucket: "b", Region: "r"}

	cases := []struct {
		name   string
		rawURL string
		root   string
		domain string
		want   string
	}{
		{
			name:   "public url rewritten",
			rawURL: "https://b.s3.r.amazonaws.com/artifacts/x/y.txt",
			root:   "artifacts/",
			domain: "cdn.example.com",
			want:   "https://cdn.example.com/x/y.txt",
		},
		{
			name:   "signed url keeps query",
			rawURL: "https://b.s3.r.amazonaws.com/artifacts/x/y.txt?X-Amz-Expires=300",
			root:   "artifacts/",
			domain: "cdn.example.com",
			want:   "https://cdn.example.com/x/y.txt?X-Amz-Expires=300",
		},
		{
			name:   "empty domain leaves url alone",
			rawURL: "https://b.s3.r.amazonaws.com/artifacts/x/y.txt",
			root:   "artifacts/",
			domain: "",
			want:   "https://b.s3.r.amazonaws.com/artifacts/x/y.txt",
		},
		{
			name:   "non-matching url unchanged",
			rawURL: "http://localhost:9000/b/artifacts/x/y.txt",
			root:   "artifacts/",
			domain: "cdn.example.com",
			want:   "http://localhost:9000/b/artifacts/x/y.txt",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, RewriteURL(tc.rawURL, loc, tc.root, tc.domain))
		})
	}
}
