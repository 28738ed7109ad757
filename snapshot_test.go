package main

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadReturnsEmptySnapshotOnFirstPush(t *testing.T) {
	store := NewFileSnapshotStore(t.TempDir(), "/folder1")

	snapshot, loadErr := store.Load()

	assert.Nil(t, loadErr)
	assert.Empty(t, snapshot.Files)
	assert.Empty(t, snapshot.Dirs)
}

func TestSaveThenLoadRoundTrips(t *testing.T) {
	store := NewFileSnapshotStore(t.TempDir(), "/folder1")
	snapshot := Snapshot{
		Files: map[string]string{"a.txt": "hash-a", "b/c.txt": "hash-c"},
		Dirs:  []string{"b"},
	}

	assert.Nil(t, store.Save(snapshot))
	loaded, loadErr := store.Load()

	assert.Nil(t, loadErr)
	assert.Equal(t, snapshot.Files, loaded.Files)
	assert.Equal(t, snapshot.Dirs, loaded.Dirs)
}

func TestCorruptSnapshotIsAnErrorNotAFirstPush(t *testing.T) {
	store := NewFileSnapshotStore(t.TempDir(), "/folder1")
	assert.Nil(t, store.Save(Snapshot{Files: map[string]string{"a.txt": "hash-a"}}))
	assert.Nil(t, os.WriteFile(store.StatePath, []byte("{not json"), 0o644))

	_, loadErr := store.Load()

	assert.NotNil(t, loadErr)
	assert.ErrorContains(t, loadErr, "corrupt")
}

func TestSaveReplacesPreviousSnapshot(t *testing.T) {
	store := NewFileSnapshotStore(t.TempDir(), "/folder1")
	assert.Nil(t, store.Save(Snapshot{Files: map[string]string{"old.txt": "hash-old"}}))
	assert.Nil(t, store.Save(Snapshot{Files: map[string]string{"new.txt": "hash-new"}}))

	loaded, loadErr := store.Load()

	assert.Nil(t, loadErr)
	assert.Len(t, loaded.Files, 1)
	assert.Contains(t, loaded.Files, "new.txt")
}

func TestDistinctRootsGetDistinctStateFiles(t *testing.T) {
	stateDir := t.TempDir()
	first := NewFileSnapshotStore(stateDir, "/folder1")
	second := NewFileSnapshotStore(stateDir, "/folder2")

	assert.NotEqual(t, first.StatePath, second.StatePath)
}
