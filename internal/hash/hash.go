// Package hash computes content hashes for workspace files.
package hash

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/jacobfgrant/chonky/internal/errs"
)

// bufferSize is the read chunk size used when streaming a file through
// the hasher; matches spec.md's 64 KiB buffer requirement.
const bufferSize = 64 * 1024

// File streams path through SHA-1 in bufferSize chunks and returns the
// 40-character lowercase hex digest.
func File(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", errs.IO(fmt.Sprintf("opening %s for hashing", path), err)
	}
	defer f.Close()

	h := sha1.New()
	buf := make([]byte, bufferSize)
	if _, err := io.CopyBuffer(h, f, buf); err != nil {
		return "", errs.IO(fmt.Sprintf("hashing %s", path), err)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
