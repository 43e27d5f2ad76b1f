package qr

import (
	"bytes"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodePNGProducesImageOfRequestedWidth(t *testing.T) {
	data, err := PNGEncoder{}.EncodePNG("https://b.s3.r.amazonaws.com/artifacts/x/y.txt", 256)
	require.NoError(t, err)

	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 256, cfg.Width)
	assert.Equal(t, 256, cfg.Height)
}

func TestEncodePNGRejectsOversizedPayload(t *testing.T) {
	_, err := PNGEncoder{}.EncodePNG(strings.Repeat("a", 5000), 256)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "encode qr code")
}
