package staticfs

import (
	"io"
	"io/fs"
	"slices"
	"strings"
	"time"

	"github.com/meigma/staticfs/internal/pathutil"
)

// EmbeddedFS is a [Store] over a decoded [Package]. The index and data
// blob are immutable, so a single EmbeddedFS may serve any number of
// concurrent requests; views returned by Open alias the blob and are
// valid for the life of the process when the package bytes are a
// compiled-in buffer.
type EmbeddedFS struct {
	pkg *Package
}

// NewEmbeddedFS wraps an already-decoded package.
func NewEmbeddedFS(pkg *Package) *EmbeddedFS {
	return &EmbeddedFS{pkg: pkg}
}

// OpenEmbedded decodes package bytes and wraps them in a store. Decode
// errors are fatal; there is no partially loaded package.
func OpenEmbedded(data []byte) (*EmbeddedFS, error) {
	pkg, err := OpenPackage(data)
	if err != nil {
		return nil, err
	}
	return NewEmbeddedFS(pkg), nil
}

// Package returns the underlying decoded package.
func (e *EmbeddedFS) Package() *Package {
	return e.pkg
}

// IsFile implements [Store].
func (e *EmbeddedFS) IsFile(path string) bool {
	_, ok := e.pkg.Lookup(pathutil.Normalize(path))
	return ok
}

// IsDir implements [Store]. A path is a directory iff it is a strict
// ancestor of some indexed file; the root always is one.
func (e *EmbeddedFS) IsDir(path string) bool {
	name := pathutil.Normalize(path)
	if name == "." {
		return true
	}
	for range e.pkg.RecordsWithPrefix(name + "/") {
		return true
	}
	return false
}

// LastModified implements [Store].
func (e *EmbeddedFS) LastModified(path string) (time.Time, error) {
	rec, ok := e.pkg.Lookup(pathutil.Normalize(path))
	if !ok {
		return time.Time{}, &fs.PathError{Op: "stat", Path: path, Err: ErrNotFound}
	}
	return rec.ModTime, nil
}

// Size implements [Store].
func (e *EmbeddedFS) Size(path string) (int64, error) {
	rec, ok := e.pkg.Lookup(pathutil.Normalize(path))
	if !ok {
		return 0, &fs.PathError{Op: "stat", Path: path, Err: ErrNotFound}
	}
	return rec.Size, nil
}

// Open implements [Store]. The returned view reads from the shared data
// blob; closing it is a no-op.
func (e *EmbeddedFS) Open(path string, start int64) (io.ReadCloser, error) {
	rec, ok := e.pkg.Lookup(pathutil.Normalize(path))
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: path, Err: ErrNotFound}
	}
	return e.pkg.open(rec, start), nil
}

// PathValid implements [Store]. Package paths are a closed namespace with
// no parent references, so only "." and ".." segments are rejected.
func (e *EmbeddedFS) PathValid(path string) bool {
	return !pathutil.HasTraversal(pathutil.Normalize(path))
}

// Entries implements [Store]. Children are derived from the flat index:
// an indexed path directly under the directory yields a file entry, a
// deeper one yields a synthetic directory entry named by its first
// segment. Multiple files under the same subdirectory propose the same
// entry; sorted iteration makes the duplicates adjacent so they collapse
// to one.
func (e *EmbeddedFS) Entries(path string) ([]Entry, error) {
	name := pathutil.Normalize(path)
	if name != "." && !e.IsDir(name) {
		return nil, &fs.PathError{Op: "readdir", Path: path, Err: ErrNotFound}
	}

	prefix := pathutil.DirPrefix(name)
	entries := make([]Entry, 0)
	lastName := ""
	for rec := range e.pkg.RecordsWithPrefix(prefix) {
		child, isSubDir := pathutil.Child(rec.Path, prefix)
		if child == lastName {
			continue
		}
		lastName = child

		if isSubDir {
			entries = append(entries, Entry{Name: child, IsDir: true})
			continue
		}
		entries = append(entries, Entry{
			Name:    child,
			Size:    rec.Size,
			ModTime: rec.ModTime,
		})
	}

	// Iteration order follows full paths; a directory's position is set by
	// its deeper paths, so re-sort by the child name itself.
	slices.SortFunc(entries, func(a, b Entry) int {
		return strings.Compare(a.Name, b.Name)
	})
	return entries, nil
}
