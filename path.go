package main

import "strings"

// Relative paths are stored slash-separated, but all hierarchy checks are
// done on segments so that "ab" is never mistaken for an ancestor of "abc".

func pathSegments(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

func pathDepth(path string) int {
	return len(pathSegments(path))
}

func isAncestor(ancestor, descendant string) bool {
	ancSegments := pathSegments(ancestor)
	descSegments := pathSegments(descendant)
	if len(ancSegments) == 0 || len(ancSegments) >= len(descSegments) {
		return false
	}
	for i, segment := range ancSegments {
		if descSegments[i] != segment {
			return false
		}
	}
	return true
}

// ancestorsOf returns every parent directory of path, root-to-leaf,
// excluding path itself.
func ancestorsOf(path string) []string {
	segments := pathSegments(path)
	ancestors := make([]string, 0, len(segments))
	for i := 1; i < len(segments); i++ {
		ancestors = append(ancestors, strings.Join(segments[:i], "/"))
	}
	return ancestors
}

func joinPath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "/" + name
}
