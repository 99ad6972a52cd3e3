package hash

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestNew_UnknownAlgorithm(t *testing.T) {
	_, err := New("md5crypt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "md5crypt")
}

func TestHashFile_KnownDigests(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		algo    string
		content string
		want    string
	}{
		{
			algo:    "sha1",
			content: "",
			want:    "da39a3ee5e6b4b0d3255bfef95601890afd80709",
		},
		{
			algo:    "sha1",
			content: "hi",
			want:    "c22b5f9178342609428d6f51b2c5af4c0bde6a42",
		},
		{
			algo:    "sha1",
			content: "hello world",
			want:    "2aae6c35c94fcfb415dbe95f408b9ce91ee846ed",
		},
		{
			algo:    "sha256",
			content: "",
			want:    "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		},
		{
			algo:    "sha256",
			content: "hello world",
			want:    "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9",
		},
	}

	for _, tt := range tests {
		t.Run(tt.algo+"/"+tt.content, func(t *testing.T) {
			h, err := New(tt.algo)
			require.NoError(t, err)
			path := writeFile(t, tmpDir, "f", tt.content)
			got, err := h.HashFile(path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHashFile_Blake3(t *testing.T) {
	tmpDir := t.TempDir()
	h, err := New("blake3")
	require.NoError(t, err)

	path := writeFile(t, tmpDir, "f", "hello world")
	got, err := h.HashFile(path)
	require.NoError(t, err)
	// BLAKE3 produces a 32-byte digest.
	assert.Len(t, got, 64)
	assert.Regexp(t, "^[0-9a-f]+$", got)
}

func TestHashFile_MissingFile(t *testing.T) {
	h, err := New("sha256")
	require.NoError(t, err)

	_, err = h.HashFile(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
}

func TestAlgorithms(t *testing.T) {
	assert.Equal(t, []string{"blake3", "sha1", "sha256", "sha512"}, Algorithms())
}
