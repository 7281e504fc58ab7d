// Package hash computes content fingerprints for files under import and
// for integrity re-verification. Every algorithm is streamed through
// io.Copy into a hash.Hash, so memory use stays bounded regardless of file
// size - the same streaming discipline the store package uses for large
// result sets.
package hash

import (
	"crypto/md5"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"

	"github.com/zeebo/blake3"
	"github.com/zeebo/xxh3"
	"golang.org/x/crypto/blake2b"

	"github.com/nerdneilsfield/tagbox/internal/tberr"
)

// Algorithm selects a content fingerprinting function.
type Algorithm string

const (
	XXH3_64  Algorithm = "xxh3-64"
	XXH3_128 Algorithm = "xxh3-128"
	Blake3   Algorithm = "blake3"
	Blake2b  Algorithm = "blake2b"
	MD5      Algorithm = "md5"
	SHA256   Algorithm = "sha256"
	SHA512   Algorithm = "sha512"
)

// Algorithms lists every recognised algorithm, in a stable order, for
// config validation and CLI completion.
var Algorithms = []Algorithm{XXH3_64, XXH3_128, Blake3, Blake2b, MD5, SHA256, SHA512}

// Valid reports whether a is a recognised algorithm.
func Valid(a Algorithm) bool {
	for _, known := range Algorithms {
		if known == a {
			return true
		}
	}
	return false
}

// newHasher returns a streaming hash.Hash for the given algorithm, or an
// error wrapping tberr.ErrConfigError if the algorithm is unknown. xxh3-128
// does not implement the standard 64-bit hash.Hash interface, so it is
// handled separately by Compute/File rather than through this constructor.
func newHasher(a Algorithm) (hash.Hash, error) {
	switch a {
	case XXH3_64:
		return xxh3.New(), nil
	case Blake3:
		return blake3.New(), nil
	case Blake2b:
		return blake2b.New512(nil)
	case MD5:
		return md5.New(), nil
	case SHA256:
		return sha256.New(), nil
	case SHA512:
		return sha512.New(), nil
	default:
		return nil, fmt.Errorf("%w: unknown hash algorithm %q", tberr.ErrConfigError, a)
	}
}

// Compute streams r through the selected algorithm and returns the lowercase
// hex digest. Deterministic for identical byte streams; a zero-byte reader
// produces the algorithm's defined zero-length digest.
func Compute(r io.Reader, algo Algorithm) (string, error) {
	if algo == XXH3_128 {
		h := xxh3.New()
		if _, err := io.Copy(h, r); err != nil {
			return "", fmt.Errorf("%w: %w", tberr.ErrIOFailure, err)
		}
		sum := h.Sum128()
		b := sum.Bytes()
		return hex.EncodeToString(b[:]), nil
	}

	h, err := newHasher(algo)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(h, r); err != nil {
		return "", fmt.Errorf("%w: %w", tberr.ErrIOFailure, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// File opens path and streams its content through Compute. Read errors
// (missing file, permission denied, I/O error mid-stream) are reported as
// tberr.ErrIOFailure.
func File(path string, algo Algorithm) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: open %s: %w", tberr.ErrIOFailure, path, err)
	}
	defer f.Close()

	digest, err := Compute(f, algo)
	if err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	return digest, nil
}
