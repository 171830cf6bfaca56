package staticfs

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"iter"
	"math"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/opencontainers/go-digest"
)

// Package layout: an 8-byte big-endian metadata length, followed by that
// many bytes of records, followed by the concatenated file contents in
// path-sorted order. Each record is path_len:u64, path bytes, mtime:i64
// (unix seconds), length:u64, offset:u64, all big-endian. Offsets are
// relative to the start of the data blob.
const (
	packageHeaderLen = 8
	recordFixedLen   = 32
)

// FileRecord describes one file in a package index.
type FileRecord struct {
	// Path is the package-relative path, forward slashes, no leading slash.
	Path string

	// ModTime is the file's modification time, truncated to the second, UTC.
	ModTime time.Time

	// Size is the length of the file's bytes in the data blob.
	Size int64

	// Offset is the file's position relative to the start of the data blob.
	Offset int64
}

// Package is a decoded package: an immutable index over an immutable data
// blob. It is built once by [OpenPackage] and never mutated afterwards, so
// any number of concurrent readers may share it without locking.
type Package struct {
	records []FileRecord   // sorted by Path
	byPath  map[string]int // Path -> index into records
	data    []byte         // aliases the tail of the input buffer
	raw     []byte         // the full package bytes
}

// OpenPackage decodes package bytes into an index and a data-blob view.
//
// The input buffer is aliased, not copied; it must not be modified while
// the Package is in use. Decoding fails with an [ErrFormat]-wrapped error
// on truncated input, a record that overruns the metadata region, a
// non-UTF-8 path, a duplicate path, or a record addressing bytes outside
// the data blob.
func OpenPackage(data []byte) (*Package, error) {
	if len(data) < packageHeaderLen {
		return nil, fmt.Errorf("%w: truncated header (%d bytes)", ErrFormat, len(data))
	}
	metaLen := binary.BigEndian.Uint64(data[:packageHeaderLen])
	if metaLen > uint64(len(data)-packageHeaderLen) {
		return nil, fmt.Errorf("%w: metadata length %d exceeds input", ErrFormat, metaLen)
	}
	meta := data[packageHeaderLen : packageHeaderLen+metaLen]
	blob := data[packageHeaderLen+metaLen:]

	p := &Package{
		byPath: make(map[string]int),
		data:   blob,
		raw:    data,
	}

	for off := 0; off < len(meta); {
		rec, n, err := parseRecord(meta[off:], int64(len(blob)))
		if err != nil {
			return nil, err
		}
		if _, ok := p.byPath[rec.Path]; ok {
			return nil, fmt.Errorf("%w: duplicate path %q", ErrFormat, rec.Path)
		}
		p.byPath[rec.Path] = len(p.records)
		p.records = append(p.records, rec)
		off += n
	}

	// Records are written in sorted path order, but prefix scans depend on
	// it, so restore the order if a foreign encoder got it wrong.
	if !sort.SliceIsSorted(p.records, func(i, j int) bool { return p.records[i].Path < p.records[j].Path }) {
		sort.Slice(p.records, func(i, j int) bool { return p.records[i].Path < p.records[j].Path })
		for i, rec := range p.records {
			p.byPath[rec.Path] = i
		}
	}

	return p, nil
}

// parseRecord decodes one metadata record from the front of meta.
// It returns the record and the number of bytes consumed.
func parseRecord(meta []byte, blobLen int64) (FileRecord, int, error) {
	if len(meta) < recordFixedLen {
		return FileRecord{}, 0, fmt.Errorf("%w: record overruns metadata", ErrFormat)
	}
	pathLen := binary.BigEndian.Uint64(meta)
	if pathLen > uint64(len(meta)-recordFixedLen) {
		return FileRecord{}, 0, fmt.Errorf("%w: record overruns metadata", ErrFormat)
	}
	pathBytes := meta[packageHeaderLen : packageHeaderLen+pathLen]
	if !utf8.Valid(pathBytes) {
		return FileRecord{}, 0, fmt.Errorf("%w: path is not valid UTF-8", ErrFormat)
	}

	rest := meta[packageHeaderLen+pathLen:]
	mtime := int64(binary.BigEndian.Uint64(rest)) //nolint:gosec // i64 round-trips through u64 by design
	size := binary.BigEndian.Uint64(rest[8:])
	offset := binary.BigEndian.Uint64(rest[16:])

	if size > math.MaxInt64 || offset > math.MaxInt64 {
		return FileRecord{}, 0, fmt.Errorf("%w: record size out of range", ErrFormat)
	}
	if int64(offset) > blobLen || int64(size) > blobLen-int64(offset) {
		return FileRecord{}, 0, fmt.Errorf("%w: record %q addresses bytes outside data blob", ErrFormat, pathBytes)
	}

	rec := FileRecord{
		Path:    string(pathBytes),
		ModTime: time.Unix(mtime, 0).UTC(),
		Size:    int64(size),
		Offset:  int64(offset),
	}
	return rec, recordFixedLen + int(pathLen), nil
}

// Len returns the number of files in the package.
func (p *Package) Len() int {
	return len(p.records)
}

// DataSize returns the size of the data blob in bytes.
func (p *Package) DataSize() int64 {
	return int64(len(p.data))
}

// Lookup returns the record for the given package path.
func (p *Package) Lookup(path string) (FileRecord, bool) {
	i, ok := p.byPath[path]
	if !ok {
		return FileRecord{}, false
	}
	return p.records[i], true
}

// Records returns an iterator over all records in path-sorted order.
func (p *Package) Records() iter.Seq[FileRecord] {
	return func(yield func(FileRecord) bool) {
		for _, rec := range p.records {
			if !yield(rec) {
				return
			}
		}
	}
}

// RecordsWithPrefix returns an iterator over records whose path starts with
// prefix, in path-sorted order. An empty prefix yields every record.
func (p *Package) RecordsWithPrefix(prefix string) iter.Seq[FileRecord] {
	return func(yield func(FileRecord) bool) {
		start := sort.Search(len(p.records), func(i int) bool {
			return p.records[i].Path >= prefix
		})
		for _, rec := range p.records[start:] {
			if !strings.HasPrefix(rec.Path, prefix) {
				return
			}
			if !yield(rec) {
				return
			}
		}
	}
}

// Digest returns the sha256 digest of the full package bytes.
func (p *Package) Digest() digest.Digest {
	return digest.FromBytes(p.raw)
}

// FileDigest returns the sha256 digest of one file's bytes.
func (p *Package) FileDigest(path string) (digest.Digest, bool) {
	rec, ok := p.Lookup(path)
	if !ok {
		return "", false
	}
	return digest.FromBytes(p.data[rec.Offset : rec.Offset+rec.Size]), true
}

// open returns a view over the file's bytes beginning at start and running
// to the file's end. A start at or past the end yields an empty view.
func (p *Package) open(rec FileRecord, start int64) io.ReadCloser {
	if start < 0 {
		start = 0
	}
	if start > rec.Size {
		start = rec.Size
	}
	return io.NopCloser(bytes.NewReader(p.data[rec.Offset+start : rec.Offset+rec.Size]))
}
