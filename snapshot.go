package main

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// Snapshot is the committed record of the last successful push: file paths
// mapped to content hashes plus the set of directories that existed.
type Snapshot struct {
	Files map[string]string `json:"files"`
	Dirs  []string          `json:"dirs"`
}

func emptySnapshot() Snapshot {
	return Snapshot{Files: make(map[string]string), Dirs: make([]string, 0)}
}

func (s Snapshot) DirSet() map[string]bool {
	dirSet := make(map[string]bool, len(s.Dirs))
	for _, dir := range s.Dirs {
		dirSet[dir] = true
	}
	return dirSet
}

func snapshotFromState(state *TreeState) Snapshot {
	snapshot := Snapshot{
		Files: make(map[string]string, len(state.Files)),
		Dirs:  make([]string, 0, len(state.Dirs)),
	}
	for path, hash := range state.Files {
		snapshot.Files[path] = hash
	}
	for dir := range state.Dirs {
		snapshot.Dirs = append(snapshot.Dirs, dir)
	}
	sort.Strings(snapshot.Dirs)
	return snapshot
}

type SnapshotStore interface {
	Load() (Snapshot, error)
	Save(Snapshot) error
}

// FileSnapshotStore keeps one JSON state file per sync root, named by the
// hash of the resolved root path so two roots never share state.
type FileSnapshotStore struct {
	StatePath string
}

func NewFileSnapshotStore(stateDir, root string) *FileSnapshotStore {
	sum := sha256.Sum256([]byte(root))
	fileName := hex.EncodeToString(sum[:8]) + ".json"
	return &FileSnapshotStore{StatePath: filepath.Join(stateDir, fileName)}
}

// Load returns the last committed snapshot. A missing state file is not an
// error, it just means this is the first push. An unparsable state file IS
// an error and must never be silently treated as a first push, since that
// would re-upload everything and delete nothing.
func (s *FileSnapshotStore) Load() (Snapshot, error) {
	raw, readErr := os.ReadFile(s.StatePath)
	if errors.Is(readErr, fs.ErrNotExist) {
		return emptySnapshot(), nil
	}
	if readErr != nil {
		return Snapshot{}, fmt.Errorf("Error reading snapshot %s: %s", s.StatePath, readErr)
	}

	var snapshot Snapshot
	if unmarshalErr := json.Unmarshal(raw, &snapshot); unmarshalErr != nil {
		return Snapshot{}, fmt.Errorf("Snapshot %s is corrupt: %s", s.StatePath, unmarshalErr)
	}
	if snapshot.Files == nil {
		snapshot.Files = make(map[string]string)
	}
	return snapshot, nil
}

// Save writes the snapshot to a temp file in the state directory and
// renames it into place, so a failed write leaves the old snapshot intact.
func (s *FileSnapshotStore) Save(snapshot Snapshot) error {
	stateDir := filepath.Dir(s.StatePath)
	if mkdirErr := os.MkdirAll(stateDir, 0o755); mkdirErr != nil {
		return fmt.Errorf("Error creating state directory %s: %s", stateDir, mkdirErr)
	}

	raw, marshalErr := json.MarshalIndent(snapshot, "", "  ")
	if marshalErr != nil {
		return marshalErr
	}

	tmpFile, tmpErr := os.CreateTemp(stateDir, ".snapshot-*")
	if tmpErr != nil {
		return tmpErr
	}
	if _, writeErr := tmpFile.Write(raw); writeErr != nil {
		tmpFile.Close()
		os.Remove(tmpFile.Name())
		return writeErr
	}
	if closeErr := tmpFile.Close(); closeErr != nil {
		os.Remove(tmpFile.Name())
		return closeErr
	}
	if renameErr := os.Rename(tmpFile.Name(), s.StatePath); renameErr != nil {
		os.Remove(tmpFile.Name())
		return renameErr
	}

	return nil
}
