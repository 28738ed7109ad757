package main

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
)

const hashChunkSize = 64 * 1024

// hashFile computes the SHA256 digest of a file's contents, reading in
// fixed-size chunks so memory use stays flat for large files.
func hashFile(path string) (string, error) {
	fd, openErr := os.Open(path)
	if openErr != nil {
		return "", openErr
	}
	defer fd.Close()

	hasher := sha256.New()
	buf := make([]byte, hashChunkSize)
	if _, copyErr := io.CopyBuffer(hasher, fd, buf); copyErr != nil {
		return "", copyErr
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}
