package venv

import "strings"

// IsSafeSegment reports whether a single path component can be joined
// under a root without escaping it.
func IsSafeSegment(segment string) bool {
	switch {
	case segment == "", segment == ".":
		return false
	case strings.Contains(segment, ".."):
		return false
	case strings.ContainsRune(segment, 0):
		return false
	case strings.HasPrefix(segment, "/"):
		return false
	}
	return true
}

// IsSafeRelPath validates every slash-separated segment of relPath.
func IsSafeRelPath(relPath string) bool {
	for _, segment := range strings.Split(relPath, "/") {
		if !IsSafeSegment(segment) {
			return false
		}
	}
	return true
}
