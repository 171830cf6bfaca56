package staticfs

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/meigma/staticfs/internal/pathutil"
)

// LocalFS is a [Store] over a directory on the native filesystem. Every
// call passes through to the OS with no caching; each request opens its
// own file handle.
type LocalFS struct {
	root string
}

// NewLocalFS creates a store rooted at dir.
func NewLocalFS(dir string) *LocalFS {
	return &LocalFS{root: filepath.Clean(dir)}
}

// resolve maps a package path onto the native filesystem.
func (l *LocalFS) resolve(path string) string {
	name := pathutil.Normalize(path)
	if name == "." {
		return l.root
	}
	return filepath.Join(l.root, filepath.FromSlash(name))
}

// IsFile implements [Store].
func (l *LocalFS) IsFile(path string) bool {
	info, err := os.Stat(l.resolve(path))
	return err == nil && info.Mode().IsRegular()
}

// IsDir implements [Store].
func (l *LocalFS) IsDir(path string) bool {
	info, err := os.Stat(l.resolve(path))
	return err == nil && info.IsDir()
}

// LastModified implements [Store].
func (l *LocalFS) LastModified(path string) (time.Time, error) {
	info, err := os.Stat(l.resolve(path))
	if err != nil {
		return time.Time{}, l.wrapNotFound("stat", path, err)
	}
	return info.ModTime(), nil
}

// Size implements [Store].
func (l *LocalFS) Size(path string) (int64, error) {
	info, err := os.Stat(l.resolve(path))
	if err != nil {
		return 0, l.wrapNotFound("stat", path, err)
	}
	return info.Size(), nil
}

// Open implements [Store]. The file handle is positioned at start; the
// caller owns it for the rest of the request.
func (l *LocalFS) Open(path string, start int64) (io.ReadCloser, error) {
	f, err := os.Open(l.resolve(path))
	if err != nil {
		return nil, l.wrapNotFound("open", path, err)
	}
	if start > 0 {
		if _, err := f.Seek(start, io.SeekStart); err != nil {
			f.Close()
			return nil, err
		}
	}
	return f, nil
}

// PathValid implements [Store]. The resolved path must stay under the
// configured root after cleaning.
func (l *LocalFS) PathValid(path string) bool {
	target := l.resolve(path)
	return target == l.root || strings.HasPrefix(target, l.root+string(filepath.Separator))
}

// Entries implements [Store], delegating to native directory listing.
// os.ReadDir already returns entries sorted by name.
func (l *LocalFS) Entries(path string) ([]Entry, error) {
	dirents, err := os.ReadDir(l.resolve(path))
	if err != nil {
		return nil, l.wrapNotFound("readdir", path, err)
	}

	entries := make([]Entry, 0, len(dirents))
	for _, d := range dirents {
		if d.IsDir() {
			entries = append(entries, Entry{Name: d.Name(), IsDir: true})
			continue
		}
		info, err := d.Info()
		if err != nil {
			return nil, err
		}
		if !info.Mode().IsRegular() {
			continue
		}
		entries = append(entries, Entry{
			Name:    d.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	return entries, nil
}

func (l *LocalFS) wrapNotFound(op, path string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return &fs.PathError{Op: op, Path: path, Err: ErrNotFound}
	}
	return err
}
