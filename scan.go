package main

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"regexp"
	"strings"
)

// TreeState is the current on-disk truth for a sync root: every regular
// file keyed by its slash-separated relative path mapped to its content
// hash, and every directory below the root (the root itself excluded).
type TreeState struct {
	Files map[string]string
	Dirs  map[string]bool
}

type scanFunc func(root string, exclude *regexp.Regexp) (*TreeState, error)

// TODO: is there some better way to allow for stubbing filesystem interactions for tests?
var concreteScanFunc scanFunc = scanTree

// scanTree walks the sync root and materializes the full TreeState in one
// pass. Symlinks are never followed or recorded: following them would make
// two consecutive scans disagree whenever the link target changes, which
// shows up as a spurious diff.
func scanTree(root string, exclude *regexp.Regexp) (*TreeState, error) {
	state := &TreeState{
		Files: make(map[string]string),
		Dirs:  make(map[string]bool),
	}

	walkErr := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)

		if exclude != nil && exclude.MatchString(rel) {
			if entry.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if entry.Type()&fs.ModeSymlink != 0 {
			return nil
		}
		if entry.IsDir() {
			state.Dirs[rel] = true
			return nil
		}
		if !entry.Type().IsRegular() {
			return nil
		}

		hash, hashErr := hashFile(path)
		if hashErr != nil {
			return hashErr
		}
		state.Files[rel] = hash
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("Error walking local directory: %s", walkErr)
	}

	return state, nil
}

func compileExclude(patterns []string) (*regexp.Regexp, error) {
	if len(patterns) == 0 {
		return nil, nil
	}
	// TODO: for now with a small number of exclusion matchers, this is OK, but we
	// should figure out a more efficient way to handle a larger amount of patterns
	return regexp.Compile(strings.Join(patterns, "|"))
}
