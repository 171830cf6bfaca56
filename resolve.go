package staticfs

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/meigma/staticfs/internal/pathutil"
)

// OutcomeKind is the resolved disposition of one request.
type OutcomeKind int

const (
	// OutcomeDeclined means the request is not for this resolver (wrong
	// prefix or method); the caller should fall through to other handling.
	OutcomeDeclined OutcomeKind = iota

	// OutcomeForbidden covers paths escaping the root and I/O failures of
	// unspecified cause.
	OutcomeForbidden

	// OutcomeNotFound means the path names neither a file nor a listable
	// directory.
	OutcomeNotFound

	// OutcomeRedirect sends the client to Location (a directory path with
	// its trailing slash appended).
	OutcomeRedirect

	// OutcomeListing carries directory entries for rendering.
	OutcomeListing

	// OutcomeNotModified is a 304 with the body omitted.
	OutcomeNotModified

	// OutcomeOK is a full response.
	OutcomeOK

	// OutcomePartial is a byte-range response.
	OutcomePartial
)

// Outcome is the result of resolving one request: status, headers, and a
// body descriptor. It carries no transport state; an adapter translates
// it into the host's response primitives.
type Outcome struct {
	Kind   OutcomeKind
	Status int

	// Location is the redirect target for OutcomeRedirect.
	Location string

	// Directory and Entries describe an OutcomeListing.
	Directory string
	Entries   []Entry

	ContentType   string
	ContentLength int64
	ContentRange  string
	LastModified  time.Time
	AcceptRanges  bool

	// Body streams the resource for OutcomeOK and OutcomePartial. It is
	// nil for HEAD requests and every other kind. The consumer owns it.
	Body io.ReadCloser
}

// ContentTypeFunc resolves a Content-Type from a file extension (with
// leading dot, or "" when the file has none).
type ContentTypeFunc func(ext string) string

// DefaultContentType resolves via the system MIME table and falls back to
// application/octet-stream for unknown or missing extensions.
func DefaultContentType(ext string) string {
	if ext != "" {
		if ct := mime.TypeByExtension(ext); ct != "" {
			return ct
		}
	}
	return "application/octet-stream"
}

// Resolver turns a request into an [Outcome] against a bound [Store].
//
// Resolution is purely request-scoped: the only state is configuration
// fixed at construction, so one Resolver serves concurrent requests
// without locking. Per-request failures never surface as errors; they
// map to outcome kinds (I/O failures become OutcomeForbidden).
type Resolver struct {
	store       Store
	prefix      string
	listDirs    bool
	contentType ContentTypeFunc
}

// NewResolver creates a resolver over store. Options beyond prefix,
// directory listing, and content-type resolution are adapter concerns and
// are ignored here.
func NewResolver(store Store, opts ...Option) *Resolver {
	cfg := newConfig(opts)
	return &Resolver{
		store:       store,
		prefix:      cfg.prefix,
		listDirs:    cfg.listDirs,
		contentType: cfg.contentType,
	}
}

// Resolve computes the outcome for one request. rawPath is the request
// path including the configured prefix; header supplies If-Modified-Since
// and Range.
func (r *Resolver) Resolve(method, rawPath string, header http.Header) Outcome {
	// Only GET and HEAD under the configured prefix are handled; anything
	// else falls through to the caller's other routes.
	if method != http.MethodGet && method != http.MethodHead {
		return Outcome{Kind: OutcomeDeclined}
	}
	if !strings.HasPrefix(rawPath, r.prefix) {
		return Outcome{Kind: OutcomeDeclined}
	}

	name := pathutil.Normalize(strings.TrimPrefix(rawPath, r.prefix))
	if !r.store.PathValid(name) {
		return Outcome{Kind: OutcomeForbidden, Status: http.StatusForbidden}
	}

	if !r.store.IsFile(name) {
		return r.resolveNonFile(name, rawPath)
	}

	contentType := r.contentType(pathutil.Ext(name))

	modified, err := r.store.LastModified(name)
	if err != nil {
		return Outcome{Kind: OutcomeForbidden, Status: http.StatusForbidden}
	}
	modified = modified.UTC().Truncate(time.Second)

	// A GET whose If-Modified-Since equals the modification time to the
	// second short-circuits with 304. Exact equality, not "on or after".
	if method == http.MethodGet {
		if ims := header.Get("If-Modified-Since"); ims != "" {
			if t, parseErr := time.Parse(http.TimeFormat, ims); parseErr == nil && t.Equal(modified) {
				return Outcome{Kind: OutcomeNotModified, Status: http.StatusNotModified}
			}
		}
	}

	size, err := r.store.Size(name)
	if err != nil {
		return Outcome{Kind: OutcomeForbidden, Status: http.StatusForbidden}
	}

	if method == http.MethodHead {
		return Outcome{
			Kind:          OutcomeOK,
			Status:        http.StatusOK,
			ContentType:   contentType,
			ContentLength: size,
			LastModified:  modified,
			AcceptRanges:  true,
		}
	}

	// A multipart or malformed Range degrades to the full resource.
	var rng *ByteRange
	if rh := header.Get("Range"); rh != "" {
		if parsed, parseErr := ParseRange(rh); parseErr == nil {
			rng = &parsed
		}
	}

	var start int64
	if rng != nil {
		start = min(rng.Start, size)
	}

	body, err := r.store.Open(name, start)
	if err != nil {
		return Outcome{Kind: OutcomeForbidden, Status: http.StatusForbidden}
	}

	out := Outcome{
		Kind:          OutcomeOK,
		Status:        http.StatusOK,
		ContentType:   contentType,
		ContentLength: size,
		LastModified:  modified,
		AcceptRanges:  true,
		Body:          body,
	}
	if rng == nil {
		return out
	}

	contentLength := size - start
	if n, bounded := rng.Len(); bounded {
		// Cap the stream at the requested length; an end past the resource
		// is clamped.
		contentLength = min(n, size-start)
		out.Body = &cappedReadCloser{r: io.LimitReader(body, contentLength), c: body}
	}

	out.Kind = OutcomePartial
	out.Status = http.StatusPartialContent
	out.ContentLength = contentLength
	out.ContentRange = fmt.Sprintf("%s %d-%d/%d", rng.Unit, start, start+contentLength-1, size)
	return out
}

// resolveNonFile handles directory and missing paths. Listings require a
// trailing slash; a slashless directory request redirects to itself with
// the slash appended, preserving the prefix.
func (r *Resolver) resolveNonFile(name, rawPath string) Outcome {
	if r.store.IsDir(name) && r.listDirs {
		if !strings.HasSuffix(rawPath, "/") {
			return Outcome{
				Kind:     OutcomeRedirect,
				Status:   http.StatusFound,
				Location: rawPath + "/",
			}
		}
		entries, err := r.store.Entries(name)
		if err != nil {
			return Outcome{Kind: OutcomeForbidden, Status: http.StatusForbidden}
		}
		return Outcome{
			Kind:      OutcomeListing,
			Status:    http.StatusOK,
			Directory: rawPath,
			Entries:   entries,
		}
	}
	return Outcome{Kind: OutcomeNotFound, Status: http.StatusNotFound}
}

// cappedReadCloser bounds a range read at its requested length while
// closing the underlying view.
type cappedReadCloser struct {
	r io.Reader
	c io.Closer
}

func (c *cappedReadCloser) Read(p []byte) (int, error) {
	return c.r.Read(p)
}

func (c *cappedReadCloser) Close() error {
	return c.c.Close()
}
