package main

import "sort"

// OperationSet is the push plan: four disjoint lists computed once per run
// and consumed exactly once by the executor. The executor applies the
// delete lists strictly before the create lists so a path deleted and
// re-created in the same push never collides mid-operation.
type OperationSet struct {
	DirsToCreate  []string
	DirsToDelete  []string
	FilesToUpload []string
	FilesToDelete []string
}

func (o *OperationSet) Empty() bool {
	return len(o.DirsToCreate) == 0 && len(o.DirsToDelete) == 0 &&
		len(o.FilesToUpload) == 0 && len(o.FilesToDelete) == 0
}

func (o *OperationSet) Total() int {
	return len(o.DirsToCreate) + len(o.DirsToDelete) +
		len(o.FilesToUpload) + len(o.FilesToDelete)
}

// computeDiff compares the current tree state against the last committed
// snapshot and derives the minimal operation plan. A path that changed
// from file to directory (or back) between runs is not specially detected:
// it falls out as an independent delete plus create, which is safe because
// deletes run first.
func computeDiff(current *TreeState, prev Snapshot) *OperationSet {
	ops := &OperationSet{
		DirsToCreate:  make([]string, 0),
		DirsToDelete:  make([]string, 0),
		FilesToUpload: make([]string, 0),
		FilesToDelete: make([]string, 0),
	}

	for path, hash := range current.Files {
		prevHash, existed := prev.Files[path]
		if !existed || prevHash != hash {
			ops.FilesToUpload = append(ops.FilesToUpload, path)
		}
	}
	for path := range prev.Files {
		if _, exists := current.Files[path]; !exists {
			ops.FilesToDelete = append(ops.FilesToDelete, path)
		}
	}

	prevDirs := prev.DirSet()
	for dir := range current.Dirs {
		if !prevDirs[dir] {
			ops.DirsToCreate = append(ops.DirsToCreate, dir)
		}
	}
	for dir := range prevDirs {
		if !current.Dirs[dir] {
			ops.DirsToDelete = append(ops.DirsToDelete, dir)
		}
	}

	ops.DirsToCreate = pruneCreates(ops.DirsToCreate, ops.FilesToUpload)
	ops.DirsToDelete = pruneToShallowestDeletes(ops.DirsToDelete)
	ops.FilesToDelete = pruneImpliedFileDeletes(ops.FilesToDelete, ops.DirsToDelete)

	sortByDepth(ops.DirsToCreate)
	sortByDepth(ops.DirsToDelete)
	sort.Strings(ops.FilesToUpload)
	sort.Strings(ops.FilesToDelete)

	return ops
}

// pruneCreates drops a new directory when something else already implies
// it: an upload inside it (the executor creates missing ancestors before
// uploading) or a deeper new directory nested under it (creating the
// deepest directory on a branch creates the intermediates on the way).
func pruneCreates(dirsToCreate, filesToUpload []string) []string {
	pruned := make([]string, 0, len(dirsToCreate))
	for _, dir := range dirsToCreate {
		implied := false
		for _, file := range filesToUpload {
			if isAncestor(dir, file) {
				implied = true
				break
			}
		}
		if !implied {
			for _, other := range dirsToCreate {
				if isAncestor(dir, other) {
					implied = true
					break
				}
			}
		}
		if !implied {
			pruned = append(pruned, dir)
		}
	}
	return pruned
}

// pruneToShallowestDeletes keeps only the shallowest deleted directory on
// each branch; its descendants go away with the recursive delete.
func pruneToShallowestDeletes(dirsToDelete []string) []string {
	pruned := make([]string, 0, len(dirsToDelete))
	for _, dir := range dirsToDelete {
		covered := false
		for _, other := range dirsToDelete {
			if isAncestor(other, dir) {
				covered = true
				break
			}
		}
		if !covered {
			pruned = append(pruned, dir)
		}
	}
	return pruned
}

// pruneImpliedFileDeletes drops file deletions that live under a directory
// already scheduled for deletion.
func pruneImpliedFileDeletes(filesToDelete, dirsToDelete []string) []string {
	pruned := make([]string, 0, len(filesToDelete))
	for _, file := range filesToDelete {
		covered := false
		for _, dir := range dirsToDelete {
			if isAncestor(dir, file) {
				covered = true
				break
			}
		}
		if !covered {
			pruned = append(pruned, file)
		}
	}
	return pruned
}

// sortByDepth orders directories root-to-leaf, so ancestors always come
// before descendants within a list.
func sortByDepth(dirs []string) {
	sort.Slice(dirs, func(i, j int) bool {
		depthI, depthJ := pathDepth(dirs[i]), pathDepth(dirs[j])
		if depthI != depthJ {
			return depthI < depthJ
		}
		return dirs[i] < dirs[j]
	})
}
