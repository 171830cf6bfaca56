package staticfs

import (
	"errors"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readOutcomeBody(t *testing.T, out Outcome) string {
	t.Helper()
	require.NotNil(t, out.Body)
	defer out.Body.Close()
	got, err := io.ReadAll(out.Body)
	require.NoError(t, err)
	return string(got)
}

func TestResolveDeclined(t *testing.T) {
	r := NewResolver(newTestEmbedded(t, testTree), WithPrefix("/assets"))

	tests := []struct {
		name   string
		method string
		path   string
	}{
		{"post", http.MethodPost, "/assets/hello.txt"},
		{"put", http.MethodPut, "/assets/hello.txt"},
		{"delete", http.MethodDelete, "/assets/hello.txt"},
		{"outside prefix", http.MethodGet, "/other/hello.txt"},
		{"prefix without slash", http.MethodGet, "/assetshello.txt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := r.Resolve(tt.method, tt.path, http.Header{})
			assert.Equal(t, OutcomeDeclined, out.Kind)
		})
	}
}

func TestResolveForbiddenTraversal(t *testing.T) {
	r := NewResolver(newTestEmbedded(t, testTree))

	out := r.Resolve(http.MethodGet, "/../secret", http.Header{})
	assert.Equal(t, OutcomeForbidden, out.Kind)
	assert.Equal(t, http.StatusForbidden, out.Status)
}

func TestResolveNotFound(t *testing.T) {
	r := NewResolver(newTestEmbedded(t, testTree))

	out := r.Resolve(http.MethodGet, "/missing.txt", http.Header{})
	assert.Equal(t, OutcomeNotFound, out.Kind)
	assert.Equal(t, http.StatusNotFound, out.Status)
}

func TestResolveDirectoryWithoutListing(t *testing.T) {
	// Listings are off by default, so directories are indistinguishable
	// from missing paths.
	r := NewResolver(newTestEmbedded(t, testTree))

	out := r.Resolve(http.MethodGet, "/inner/", http.Header{})
	assert.Equal(t, OutcomeNotFound, out.Kind)
}

func TestResolveDirectoryRedirect(t *testing.T) {
	r := NewResolver(newTestEmbedded(t, testTree),
		WithPrefix("/assets"), WithDirectoryListing())

	out := r.Resolve(http.MethodGet, "/assets/inner", http.Header{})
	require.Equal(t, OutcomeRedirect, out.Kind)
	assert.Equal(t, http.StatusFound, out.Status)
	assert.Equal(t, "/assets/inner/", out.Location)
}

func TestResolveDirectoryListing(t *testing.T) {
	r := NewResolver(newTestEmbedded(t, testTree), WithDirectoryListing())

	out := r.Resolve(http.MethodGet, "/inner/", http.Header{})
	require.Equal(t, OutcomeListing, out.Kind)
	assert.Equal(t, http.StatusOK, out.Status)
	assert.Equal(t, "/inner/", out.Directory)
	require.Len(t, out.Entries, 2)
	assert.Equal(t, "deeper", out.Entries[0].Name)
	assert.Equal(t, "other.txt", out.Entries[1].Name)
}

func TestResolveFullResponse(t *testing.T) {
	store := newTestEmbedded(t, testTree)
	r := NewResolver(store)

	out := r.Resolve(http.MethodGet, "/hello.txt", http.Header{})
	require.Equal(t, OutcomeOK, out.Kind)
	assert.Equal(t, http.StatusOK, out.Status)
	assert.Equal(t, "text/plain; charset=utf-8", out.ContentType)
	assert.Equal(t, int64(12), out.ContentLength)
	assert.Empty(t, out.ContentRange)
	assert.True(t, out.AcceptRanges)
	assert.False(t, out.LastModified.IsZero())
	assert.Equal(t, "Hello World!", readOutcomeBody(t, out))
}

func TestResolveContentTypeFallback(t *testing.T) {
	store := newTestEmbedded(t, map[string]string{
		"blob.unknownext": "data",
		"noext":           "data",
	})
	r := NewResolver(store)

	out := r.Resolve(http.MethodGet, "/blob.unknownext", http.Header{})
	require.Equal(t, OutcomeOK, out.Kind)
	assert.Equal(t, "application/octet-stream", out.ContentType)
	out.Body.Close()

	out = r.Resolve(http.MethodGet, "/noext", http.Header{})
	require.Equal(t, OutcomeOK, out.Kind)
	assert.Equal(t, "application/octet-stream", out.ContentType)
	out.Body.Close()
}

func TestResolveCustomContentType(t *testing.T) {
	r := NewResolver(newTestEmbedded(t, testTree),
		WithContentTypeFunc(func(ext string) string {
			return "application/x-custom"
		}))

	out := r.Resolve(http.MethodGet, "/hello.txt", http.Header{})
	require.Equal(t, OutcomeOK, out.Kind)
	assert.Equal(t, "application/x-custom", out.ContentType)
	out.Body.Close()
}

func TestResolveIfModifiedSince(t *testing.T) {
	store := newTestEmbedded(t, testTree)
	r := NewResolver(store)

	modified, err := store.LastModified("hello.txt")
	require.NoError(t, err)
	modified = modified.UTC().Truncate(time.Second)

	tests := []struct {
		name string
		ims  string
		want OutcomeKind
	}{
		{"exact match", modified.Format(http.TimeFormat), OutcomeNotModified},
		{"one second earlier", modified.Add(-time.Second).Format(http.TimeFormat), OutcomeOK},
		{"one second later", modified.Add(time.Second).Format(http.TimeFormat), OutcomeOK},
		{"unparseable", "not a date", OutcomeOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header := http.Header{}
			header.Set("If-Modified-Since", tt.ims)
			out := r.Resolve(http.MethodGet, "/hello.txt", header)
			assert.Equal(t, tt.want, out.Kind)
			if out.Body != nil {
				out.Body.Close()
			}
		})
	}
}

func TestResolveHead(t *testing.T) {
	store := newTestEmbedded(t, testTree)
	r := NewResolver(store)

	out := r.Resolve(http.MethodHead, "/hello.txt", http.Header{})
	require.Equal(t, OutcomeOK, out.Kind)
	assert.Equal(t, int64(12), out.ContentLength)
	assert.Nil(t, out.Body)

	// HEAD ignores If-Modified-Since.
	modified, err := store.LastModified("hello.txt")
	require.NoError(t, err)
	header := http.Header{}
	header.Set("If-Modified-Since", modified.UTC().Truncate(time.Second).Format(http.TimeFormat))
	out = r.Resolve(http.MethodHead, "/hello.txt", header)
	assert.Equal(t, OutcomeOK, out.Kind)
}

func TestResolveRange(t *testing.T) {
	r := NewResolver(newTestEmbedded(t, testTree))

	tests := []struct {
		name       string
		rangeValue string
		wantKind   OutcomeKind
		wantLen    int64
		wantRange  string
		wantBody   string
	}{
		{
			name:       "bounded",
			rangeValue: "bytes=0-4",
			wantKind:   OutcomePartial,
			wantLen:    5,
			wantRange:  "bytes 0-4/12",
			wantBody:   "Hello",
		},
		{
			name:       "mid file",
			rangeValue: "bytes=6-10",
			wantKind:   OutcomePartial,
			wantLen:    5,
			wantRange:  "bytes 6-10/12",
			wantBody:   "World",
		},
		{
			name:       "open ended",
			rangeValue: "bytes=6-",
			wantKind:   OutcomePartial,
			wantLen:    6,
			wantRange:  "bytes 6-11/12",
			wantBody:   "World!",
		},
		{
			name:       "end clamped to resource",
			rangeValue: "bytes=6-100",
			wantKind:   OutcomePartial,
			wantLen:    6,
			wantRange:  "bytes 6-11/12",
			wantBody:   "World!",
		},
		{
			name:       "multipart degrades to full",
			rangeValue: "bytes=0-1,4-5",
			wantKind:   OutcomeOK,
			wantLen:    12,
			wantBody:   "Hello World!",
		},
		{
			name:       "malformed degrades to full",
			rangeValue: "bytes=oops",
			wantKind:   OutcomeOK,
			wantLen:    12,
			wantBody:   "Hello World!",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header := http.Header{}
			header.Set("Range", tt.rangeValue)
			out := r.Resolve(http.MethodGet, "/hello.txt", header)
			require.Equal(t, tt.wantKind, out.Kind)
			assert.Equal(t, tt.wantLen, out.ContentLength)
			assert.Equal(t, tt.wantRange, out.ContentRange)
			assert.Equal(t, tt.wantBody, readOutcomeBody(t, out))
		})
	}
}

// failingStore injects an I/O failure after path checks succeed.
type failingStore struct {
	Store
}

func (f *failingStore) Open(path string, start int64) (io.ReadCloser, error) {
	return nil, errors.New("disk gone")
}

func TestResolveOpenFailureIsForbidden(t *testing.T) {
	r := NewResolver(&failingStore{Store: newTestEmbedded(t, testTree)})

	out := r.Resolve(http.MethodGet, "/hello.txt", http.Header{})
	assert.Equal(t, OutcomeForbidden, out.Kind)
	assert.Equal(t, http.StatusForbidden, out.Status)
}
