// Package hash computes file content digests for the indexer. The algorithm
// is configurable; digests are returned as lowercase hexadecimal strings.
package hash

import (
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"
	"sort"

	"github.com/zeebo/blake3"
)

// bufferSize is the read buffer used when streaming file contents.
const bufferSize = 256 * 1024 // 256KB

// algorithms maps algorithm names to digest constructors.
var algorithms = map[string]func() hash.Hash{
	"sha1":   sha1.New,
	"sha256": sha256.New,
	"sha512": sha512.New,
	"blake3": func() hash.Hash { return blake3.New() },
}

// Algorithms returns the supported algorithm names, sorted.
func Algorithms() []string {
	names := make([]string, 0, len(algorithms))
	for name := range algorithms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FileHasher hashes file contents with a fixed algorithm.
type FileHasher struct {
	algo string
	new  func() hash.Hash
}

// New creates a FileHasher for the named algorithm.
func New(algo string) (*FileHasher, error) {
	constructor, ok := algorithms[algo]
	if !ok {
		return nil, fmt.Errorf("unknown hash algorithm %q (supported: %v)", algo, Algorithms())
	}
	return &FileHasher{algo: algo, new: constructor}, nil
}

// Algo returns the algorithm name.
func (h *FileHasher) Algo() string {
	return h.algo
}

// HashFile streams the file through the digest and returns the lowercase
// hexadecimal digest string.
func (h *FileHasher) HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	digest := h.new()
	buf := make([]byte, bufferSize)
	if _, err := io.CopyBuffer(digest, f, buf); err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return hex.EncodeToString(digest.Sum(nil)), nil
}
