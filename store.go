package staticfs

import (
	"io"
	"time"
)

// Entry is one item in a directory listing. Listings are produced
// transiently per request and never persisted.
type Entry struct {
	Name    string
	Size    int64
	ModTime time.Time
	IsDir   bool
}

// Store is the capability set a backing store exposes to the resolver.
//
// Paths are in package form: forward slashes, no leading slash, "." for
// the root. [EmbeddedFS] serves a decoded package; [LocalFS] passes
// through to the operating system. Implementations must be safe for
// concurrent use; the built-in stores hold no mutable state.
type Store interface {
	// IsFile reports whether path names a file.
	IsFile(path string) bool

	// IsDir reports whether path names a directory. The root always
	// qualifies.
	IsDir(path string) bool

	// LastModified returns the file's modification time.
	LastModified(path string) (time.Time, error)

	// Size returns the file's length in bytes.
	Size(path string) (int64, error)

	// Open returns a view of the file's bytes beginning at start and
	// running to the file's end. Callers cap the view externally for
	// bounded ranges.
	Open(path string, start int64) (io.ReadCloser, error)

	// PathValid reports whether path stays within the store's root. It is
	// the defense against traversal; it does not imply existence.
	PathValid(path string) bool

	// Entries lists the immediate children of a directory, sorted by name
	// with files and subdirectories merged into one lexicographic order.
	Entries(path string) ([]Entry, error)
}
