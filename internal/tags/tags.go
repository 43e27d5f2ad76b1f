// Package tags parses the step's tag input string and serializes it into the
// storage service's tagging query-string format.
package tags

import (
	"net/url"
	"strings"
)

// Tag is a single Key=Value pair attached to an uploaded object.
type Tag struct {
	Key   string
	Value string
}

// Parse splits a comma-separated list of Key=Value pairs. Pairs that trim to
// the empty string are discarded. The substring before the first '=' is the
// key, the remainder the value; a value-less pair yields an empty value.
// Input order is preserved.
func Parse(s string) []Tag {
	var out []Tag
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, value, _ := strings.Cut(part, "=")
		out = append(out, Tag{Key: strings.TrimSpace(key), Value: strings.TrimSpace(value)})
	}
	return out
}

// Encode serializes tags into the tagging query-string format, URL-escaped
// and in input order.
func Encode(tags []Tag) string {
	if len(tags) == 0 {
		return ""
	}
	var b strings.Builder
	for i, t := range tags {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(t.Key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(t.Value))
	}
	return b.String()
}
