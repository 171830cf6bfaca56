// Package pathutil provides manipulation of slash-separated request and
// package paths.
package pathutil

import "strings"

// Normalize converts a request path to package form: leading and trailing
// slashes are stripped, consecutive slashes collapse, and the empty path
// (or "/") becomes ".". Package paths never carry a leading slash.
//
// "." and ".." segments are preserved so that callers can reject them.
func Normalize(p string) string {
	p = strings.Trim(p, "/")
	if p == "" {
		return "."
	}
	parts := strings.Split(p, "/")
	result := parts[:0]
	for _, part := range parts {
		if part != "" {
			result = append(result, part)
		}
	}
	if len(result) == 0 {
		return "."
	}
	return strings.Join(result, "/")
}

// HasTraversal reports whether any segment of p is "." or "..".
func HasTraversal(p string) bool {
	if p == "." {
		return false
	}
	for part := range strings.SplitSeq(p, "/") {
		if part == "." || part == ".." {
			return true
		}
	}
	return false
}

// Base returns the last element of a slash-separated path.
// If path is empty or ".", it returns ".".
func Base(path string) string {
	if path == "" || path == "." {
		return "."
	}
	path = strings.TrimSuffix(path, "/")
	if i := strings.LastIndex(path, "/"); i >= 0 {
		return path[i+1:]
	}
	return path
}

// DirPrefix converts a normalized path to its directory prefix form.
// For ".", returns "" (empty prefix matches all). For other paths,
// appends "/" to match children.
func DirPrefix(name string) string {
	if name == "." {
		return ""
	}
	return name + "/"
}

// Child extracts the immediate child name from a full path given a directory
// prefix. It returns the child name and whether the child is itself a
// directory (the path has further components below it).
func Child(path, prefix string) (name string, isSubDir bool) {
	relPath := strings.TrimPrefix(path, prefix)
	if idx := strings.Index(relPath, "/"); idx >= 0 {
		return relPath[:idx], true
	}
	return relPath, false
}

// Ext returns the extension of the last path element, including the leading
// dot, or "" when the element has none.
func Ext(path string) string {
	base := Base(path)
	if idx := strings.LastIndex(base, "."); idx > 0 {
		return base[idx:]
	}
	return ""
}
