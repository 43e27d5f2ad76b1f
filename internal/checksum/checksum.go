// Package checksum handles the checksum inputs the step forwards to the
// storage service: algorithm selection and value normalization.
package checksum

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
)

// Algorithm identifies a checksum algorithm supported by the storage service.
type Algorithm string

const (
	// None disables checksum handling entirely.
	None      Algorithm = ""
	CRC32     Algorithm = "CRC32"
	CRC32C    Algorithm = "CRC32C"
	CRC64NVME Algorithm = "CRC64NVME"
	SHA1      Algorithm = "SHA1"
	SHA256    Algorithm = "SHA256"
)

// ParseAlgorithm maps a raw input string onto an Algorithm. Empty input means
// no checksum. Anything outside the supported set is rejected so the run
// fails before any network call is made.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "":
		return None, nil
	case "CRC32":
		return CRC32, nil
	case "CRC32C":
		return CRC32C, nil
	case "CRC64NVME":
		return CRC64NVME, nil
	case "SHA1":
		return SHA1, nil
	case "SHA256":
		return SHA256, nil
	default:
		return None, fmt.Errorf("unsupported checksum algorithm %q", s)
	}
}

// NormalizeValue converts a hex-encoded checksum value into the base64 form
// the storage API expects. Values that are not pure hex are assumed to be
// base64 already and pass through unchanged.
func NormalizeValue(v string) string {
	if !isHex(v) {
		return v
	}
	raw, err := hex.DecodeString(v)
	if err != nil {
		return v
	}
	return base64.StdEncoding.EncodeToString(raw)
}

func isHex(s string) bool {
	if s == "" || len(s)%2 != 0 {
		return false
	}
	for _, c := range s {
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}
