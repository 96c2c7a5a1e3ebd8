package cache

import (
	"errors"
	"fmt"

	"github.com/blackwell-systems/hubctl/internal/util"
)

// ErrChecksum is returned when a file does not match its expected digest.
var ErrChecksum = errors.New("checksum mismatch")

// VerifyFile checks the sha256 of the file at path against expected.
// Returns nil if they match or expected is empty (skip check).
func VerifyFile(path, expectedSHA256 string) error {
	if expectedSHA256 == "" {
		return nil
	}
	got, err := util.DigestFile(path)
	if err != nil {
		return fmt.Errorf("computing checksum: %w", err)
	}
	if !got.Matches(expectedSHA256) {
		return fmt.Errorf("%w: expected %s, got %s", ErrChecksum, expectedSHA256, got.SHA256)
	}
	return nil
}
