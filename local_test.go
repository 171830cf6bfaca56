package staticfs

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLocal(t *testing.T, files map[string]string) *LocalFS {
	t.Helper()
	return NewLocalFS(writeTestTree(t, files))
}

func TestLocalFSIsFile(t *testing.T) {
	store := newTestLocal(t, testTree)

	assert.True(t, store.IsFile("hello.txt"))
	assert.True(t, store.IsFile("/hello.txt"))
	assert.True(t, store.IsFile("inner/other.txt"))
	assert.False(t, store.IsFile("inner"))
	assert.False(t, store.IsFile("missing.txt"))
}

func TestLocalFSIsDir(t *testing.T) {
	store := newTestLocal(t, testTree)

	assert.True(t, store.IsDir("/"))
	assert.True(t, store.IsDir("."))
	assert.True(t, store.IsDir("inner"))
	assert.True(t, store.IsDir("inner/"))
	assert.True(t, store.IsDir("/inner/deeper"))
	assert.False(t, store.IsDir("hello.txt"))
	assert.False(t, store.IsDir("nope"))
}

func TestLocalFSStat(t *testing.T) {
	store := newTestLocal(t, testTree)

	size, err := store.Size("hello.txt")
	require.NoError(t, err)
	assert.Equal(t, int64(len("Hello World!")), size)

	modified, err := store.LastModified("hello.txt")
	require.NoError(t, err)
	assert.False(t, modified.IsZero())

	_, err = store.Size("missing.txt")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = store.LastModified("missing.txt")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestLocalFSOpen(t *testing.T) {
	store := newTestLocal(t, testTree)

	r, err := store.Open("hello.txt", 0)
	require.NoError(t, err)
	defer r.Close()
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "Hello World!", string(got))

	r, err = store.Open("hello.txt", 6)
	require.NoError(t, err)
	defer r.Close()
	got, err = io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "World!", string(got))

	_, err = store.Open("missing.txt", 0)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestLocalFSPathValid(t *testing.T) {
	store := newTestLocal(t, testTree)

	assert.True(t, store.PathValid("hello.txt"))
	assert.True(t, store.PathValid("/inner/other.txt"))
	assert.True(t, store.PathValid("."))
	assert.False(t, store.PathValid(".."))
	assert.False(t, store.PathValid("../outside.txt"))
	assert.False(t, store.PathValid("../../etc/passwd"))
}

func TestLocalFSEntries(t *testing.T) {
	store := newTestLocal(t, testTree)

	entries, err := store.Entries("/")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "hello.txt", entries[0].Name)
	assert.False(t, entries[0].IsDir)
	assert.Equal(t, int64(len("Hello World!")), entries[0].Size)
	assert.Equal(t, "inner", entries[1].Name)
	assert.True(t, entries[1].IsDir)

	entries, err = store.Entries("inner")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "deeper", entries[0].Name)
	assert.True(t, entries[0].IsDir)
	assert.Equal(t, "other.txt", entries[1].Name)

	_, err = store.Entries("missing")
	require.ErrorIs(t, err, ErrNotFound)
}
