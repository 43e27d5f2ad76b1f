// Package qr renders QR code images for access URLs.
package qr

import (
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

// Encoder renders a QR code image for a payload string. The production
// implementation writes PNG bytes to memory; tests substitute a fake.
type Encoder interface {
	EncodePNG(content string, width int) ([]byte, error)
}

// PNGEncoder encodes QR codes with go-qrcode at medium error correction.
type PNGEncoder struct{}

// EncodePNG returns a width x width PNG entirely in memory, so no shared
// temp file exists between invocations.
func (PNGEncoder) EncodePNG(content string, width int) ([]byte, error) {
	png, err := qrcode.Encode(content, qrcode.Medium, width)
	if err != nil {
		return nil, fmt.Errorf("encode qr code: %w", err)
	}
	return png, nil
}
