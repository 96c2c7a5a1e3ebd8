package util

import (
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"io"
	"os"
	"strings"
)

// Digest is the sha256 of a byte stream together with its length.
type Digest struct {
	SHA256 string
	Size   int64
}

// Matches compares against an expected hex digest, ignoring case. An empty
// expectation always matches.
func (d Digest) Matches(want string) bool {
	return want == "" || strings.EqualFold(d.SHA256, want)
}

// HexSum renders the current sum of h.
func HexSum(h hash.Hash) string { return hex.EncodeToString(h.Sum(nil)) }

// DigestReader consumes r.
func DigestReader(r io.Reader) (Digest, error) {
	h := sha256.New()
	n, err := io.Copy(h, r)
	if err != nil {
		return Digest{}, err
	}
	return Digest{SHA256: HexSum(h), Size: n}, nil
}

// DigestFile hashes the file at path.
func DigestFile(path string) (Digest, error) {
	f, err := os.Open(path)
	if err != nil {
		return Digest{}, err
	}
	defer func() { _ = f.Close() }()
	return DigestReader(f)
}
