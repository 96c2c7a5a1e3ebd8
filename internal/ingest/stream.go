package ingest

import (
	"crypto/sha256"
	"hash"
	"io"

	"github.com/blackwell-systems/hubctl/internal/util"
)

// Reader hashes an artifact while it is uploaded, so a local file is read
// once. The digest covers only the bytes read so far.
type Reader struct {
	src io.Reader
	sum hash.Hash
	n   int64
}

// NewReader wraps r.
func NewReader(r io.Reader) *Reader {
	h := sha256.New()
	return &Reader{src: io.TeeReader(r, h), sum: h}
}

func (r *Reader) Read(p []byte) (int, error) {
	n, err := r.src.Read(p)
	r.n += int64(n)
	return n, err
}

// Digest returns the sha256 and length of what has been read.
func (r *Reader) Digest() util.Digest {
	return util.Digest{SHA256: util.HexSum(r.sum), Size: r.n}
}

// SHA256 is Digest().SHA256, in the shape hub.Client.UploadCollection takes.
func (r *Reader) SHA256() string { return r.Digest().SHA256 }
