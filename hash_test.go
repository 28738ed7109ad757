package main

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashFileMatchesDirectDigest(t *testing.T) {
	// content larger than one read chunk so the chunked path is exercised
	content := bytes.Repeat([]byte("synk"), 50*1024)
	filePath := filepath.Join(t.TempDir(), "big-file")
	assert.Nil(t, os.WriteFile(filePath, content, 0o644))

	hash, hashErr := hashFile(filePath)

	assert.Nil(t, hashErr)
	expected := sha256.Sum256(content)
	assert.Equal(t, hex.EncodeToString(expected[:]), hash)
}

func TestHashFileIsDeterministic(t *testing.T) {
	tempDir := t.TempDir()
	first := filepath.Join(tempDir, "first")
	second := filepath.Join(tempDir, "second")
	assert.Nil(t, os.WriteFile(first, []byte("identical bytes"), 0o644))
	assert.Nil(t, os.WriteFile(second, []byte("identical bytes"), 0o644))

	firstHash, firstErr := hashFile(first)
	secondHash, secondErr := hashFile(second)

	assert.Nil(t, firstErr)
	assert.Nil(t, secondErr)
	assert.Equal(t, firstHash, secondHash)
}

func TestHashFileErrorsOnMissingFile(t *testing.T) {
	_, hashErr := hashFile(filepath.Join(t.TempDir(), "does-not-exist"))
	assert.NotNil(t, hashErr)
}
