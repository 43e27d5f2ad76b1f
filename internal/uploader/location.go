package uploader

import "strings"

// Location identifies where uploads land, independent of any presented URL.
// The object key lives inside the URLs being rewritten, so only the bucket
// and region are needed to recognize the canonical host form.
type Location struct {
	Bucket string
	Region string
}

// hostPrefix is the canonical virtual-hosted host plus bucket root — the
// portion of a URL a custom domain stands in for.
func (l Location) hostPrefix(bucketRoot string) string {
	return l.Bucket + ".s3." + l.Region + ".amazonaws.com/" + bucketRoot
}

// RewriteURL presents rawURL under a custom domain by replacing the
// canonical host+root portion with domain. URLs that do not contain the
// canonical form (custom endpoints, already-rewritten URLs) are returned
// unchanged, as is everything when domain is empty.
func RewriteURL(rawURL string, loc Location, bucketRoot, domain string) string {
	if domain == "" {
		return rawURL
	}
	return strings.Replace(rawURL, loc.hostPrefix(bucketRoot), domain+"/", 1)
}
