package step

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetOutputAppendsToOutputFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "output")
	t.Setenv("GITHUB_OUTPUT", out)

	require.NoError(t, SetOutput(OutputFileURL, "https://cdn.example.com/x/y.txt"))
	require.NoError(t, SetOutput(OutputResult, ResultSuccess))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "file-url=https://cdn.example.com/x/y.txt\nresult=success\n", string(data))
}

func TestSetOutputWithoutOutputFile(t *testing.T) {
	t.Setenv("GITHUB_OUTPUT", "")
	require.NoError(t, SetOutput(OutputResult, ResultFailure))
}

func TestSetOutputUnwritableFile(t *testing.T) {
	t.Setenv("GITHUB_OUTPUT", filepath.Join(t.TempDir(), "missing-dir", "output"))
	err := SetOutput(OutputResult, ResultSuccess)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open output file")
}
