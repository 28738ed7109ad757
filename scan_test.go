package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func buildTree(t *testing.T, files map[string]string, dirs []string) string {
	t.Helper()
	root := t.TempDir()
	for _, dir := range dirs {
		assert.Nil(t, os.MkdirAll(filepath.Join(root, filepath.FromSlash(dir)), 0o755))
	}
	for path, content := range files {
		full := filepath.Join(root, filepath.FromSlash(path))
		assert.Nil(t, os.MkdirAll(filepath.Dir(full), 0o755))
		assert.Nil(t, os.WriteFile(full, []byte(content), 0o644))
	}
	return root
}

func TestScanTreeRecordsFilesAndDirectories(t *testing.T) {
	root := buildTree(t, map[string]string{
		"a.txt":   "alpha",
		"b/c.txt": "charlie",
	}, []string{"empty"})

	state, scanErr := scanTree(root, nil)

	assert.Nil(t, scanErr)
	assert.Len(t, state.Files, 2)
	assert.Contains(t, state.Files, "a.txt")
	assert.Contains(t, state.Files, "b/c.txt")
	assert.Len(t, state.Files["a.txt"], 64)
	assert.Equal(t, map[string]bool{"b": true, "empty": true}, state.Dirs)
}

func TestScanTreeExcludesMatchingPaths(t *testing.T) {
	root := buildTree(t, map[string]string{
		"keep.txt":        "keep",
		"skipme/gone.txt": "gone",
	}, nil)

	exclude, excludeErr := compileExclude([]string{"^skipme"})
	assert.Nil(t, excludeErr)
	state, scanErr := scanTree(root, exclude)

	assert.Nil(t, scanErr)
	assert.Contains(t, state.Files, "keep.txt")
	assert.NotContains(t, state.Files, "skipme/gone.txt")
	assert.NotContains(t, state.Dirs, "skipme")
}

func TestScanTreeDoesNotFollowSymlinks(t *testing.T) {
	root := buildTree(t, map[string]string{"real/file.txt": "real"}, nil)
	linkErr := os.Symlink(filepath.Join(root, "real"), filepath.Join(root, "link"))
	if linkErr != nil {
		t.Skipf("symlinks not supported here: %s", linkErr)
	}

	state, scanErr := scanTree(root, nil)

	assert.Nil(t, scanErr)
	assert.Contains(t, state.Files, "real/file.txt")
	assert.NotContains(t, state.Dirs, "link")
	assert.NotContains(t, state.Files, "link/file.txt")
}

func TestScanTreeConsecutiveScansAgree(t *testing.T) {
	root := buildTree(t, map[string]string{
		"a.txt":     "alpha",
		"b/c.txt":   "charlie",
		"b/d/e.txt": "echo",
	}, nil)

	first, firstErr := scanTree(root, nil)
	second, secondErr := scanTree(root, nil)

	assert.Nil(t, firstErr)
	assert.Nil(t, secondErr)
	assert.Equal(t, first.Files, second.Files)
	assert.Equal(t, first.Dirs, second.Dirs)
}
