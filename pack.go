package staticfs

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"time"
)

// PackProgress receives progress updates while a package is written.
// done counts files whose bytes have been written; total is the number of
// files in the package.
type PackProgress func(path string, done, total int)

type packConfig struct {
	progress PackProgress
	logger   *slog.Logger
}

// PackOption configures package creation.
type PackOption func(*packConfig)

// WithPackProgress sets a progress callback invoked once per file while the
// data blob is written.
func WithPackProgress(fn PackProgress) PackOption {
	return func(c *packConfig) {
		c.progress = fn
	}
}

// WithPackLogger sets a logger for package creation. By default nothing is
// logged.
func WithPackLogger(logger *slog.Logger) PackOption {
	return func(c *packConfig) {
		c.logger = logger
	}
}

func (c *packConfig) log() *slog.Logger {
	if c.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return c.logger
}

// CreatePackage builds a package from the contents of dir and writes it
// to w.
//
// The tree is walked recursively; regular files are included, empty
// directories are not preserved, and symbolic links are not followed.
// Paths are package-relative with forward slashes. Files are encoded in
// sorted path order, so the same input set always yields byte-identical
// output.
//
// The context cancels a long-running walk between files.
func CreatePackage(ctx context.Context, dir string, w io.Writer, opts ...PackOption) error {
	cfg := packConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	root, err := os.OpenRoot(dir)
	if err != nil {
		return err
	}
	defer root.Close()

	var paths []string
	err = fs.WalkDir(root.FS(), ".", func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			if !d.IsDir() {
				cfg.log().Debug("skipped non-regular file", "path", path)
			}
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return err
	}

	cfg.log().Info("creating package", "dir", dir, "file_count", len(paths))
	return writePackage(root.FS(), paths, w, &cfg)
}

// WritePackage writes a package containing the named files to w. Paths are
// interpreted relative to root and become the package paths after slash
// normalization; they are sorted before encoding.
func WritePackage(w io.Writer, root string, paths []string, opts ...PackOption) error {
	cfg := packConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	return writePackage(os.DirFS(root), paths, w, &cfg)
}

func writePackage(fsys fs.FS, paths []string, w io.Writer, cfg *packConfig) error {
	sorted := make([]string, len(paths))
	for i, p := range paths {
		sorted[i] = filepath.ToSlash(p)
	}
	slices.Sort(sorted)
	for i := 1; i < len(sorted); i++ {
		if sorted[i] == sorted[i-1] {
			return fmt.Errorf("duplicate package path %q", sorted[i])
		}
	}

	// First pass: stat everything so the metadata block can be sized and
	// written before any file content.
	sizes := make([]int64, len(sorted))
	mtimes := make([]time.Time, len(sorted))
	metaLen := 0
	for i, p := range sorted {
		info, err := fs.Stat(fsys, p)
		if err != nil {
			return err
		}
		sizes[i] = info.Size()
		mtimes[i] = info.ModTime()
		metaLen += recordFixedLen + len(p)
	}

	var buf [8]byte
	writeU64 := func(v uint64) error {
		binary.BigEndian.PutUint64(buf[:], v)
		_, err := w.Write(buf[:])
		return err
	}

	if err := writeU64(uint64(metaLen)); err != nil {
		return err
	}

	var offset uint64
	for i, p := range sorted {
		if err := writeU64(uint64(len(p))); err != nil {
			return err
		}
		if _, err := io.WriteString(w, p); err != nil {
			return err
		}
		if err := writeU64(uint64(mtimes[i].Unix())); err != nil { //nolint:gosec // i64 stored through u64 by design
			return err
		}
		if err := writeU64(uint64(sizes[i])); err != nil {
			return err
		}
		if err := writeU64(offset); err != nil {
			return err
		}
		offset += uint64(sizes[i])
	}

	for i, p := range sorted {
		if err := copyFileData(fsys, p, w, sizes[i]); err != nil {
			return err
		}
		if cfg.progress != nil {
			cfg.progress(p, i+1, len(sorted))
		}
	}
	return nil
}

// copyFileData streams one file's bytes into the data blob. The byte count
// must match the size recorded in the metadata block, otherwise every
// later offset would be wrong.
func copyFileData(fsys fs.FS, path string, w io.Writer, size int64) error {
	f, err := fsys.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	n, err := io.Copy(w, f)
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if n != size {
		return fmt.Errorf("write %s: file changed during packaging (wrote %d bytes, recorded %d)", path, n, size)
	}
	return nil
}
