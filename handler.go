package staticfs

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
)

// Handler adapts a [Resolver] to net/http. It writes outcome headers and
// status, renders directory listings, streams bodies, and optionally
// applies content encoding. All protocol decisions live in the resolver;
// the adapter only translates.
type Handler struct {
	resolver *Resolver
	renderer ListingRenderer
	encoding bool
	logger   *slog.Logger
}

// NewHandler creates a handler serving store.
func NewHandler(store Store, opts ...Option) *Handler {
	cfg := newConfig(opts)
	return &Handler{
		resolver: &Resolver{
			store:       store,
			prefix:      cfg.prefix,
			listDirs:    cfg.listDirs,
			contentType: cfg.contentType,
		},
		renderer: cfg.renderer,
		encoding: cfg.encoding,
		logger:   cfg.logger,
	}
}

// Resolver returns the underlying resolver.
func (h *Handler) Resolver() *Resolver {
	return h.resolver
}

func (h *Handler) log() *slog.Logger {
	if h.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return h.logger
}

// Middleware wraps next, serving matching requests and passing declined
// ones through. This mirrors attaching the server as a catch-all behind
// the host's own routes.
func (h *Handler) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		out := h.resolver.Resolve(r.Method, r.URL.Path, r.Header)
		if out.Kind == OutcomeDeclined {
			next.ServeHTTP(w, r)
			return
		}
		h.write(w, r, out)
	})
}

// ServeHTTP serves the request, answering declined requests with 404.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	out := h.resolver.Resolve(r.Method, r.URL.Path, r.Header)
	if out.Kind == OutcomeDeclined {
		http.NotFound(w, r)
		return
	}
	h.write(w, r, out)
}

func (h *Handler) write(w http.ResponseWriter, r *http.Request, out Outcome) {
	switch out.Kind {
	case OutcomeForbidden:
		http.Error(w, "403 forbidden", http.StatusForbidden)
	case OutcomeNotFound:
		http.NotFound(w, r)
	case OutcomeRedirect:
		http.Redirect(w, r, out.Location, out.Status)
	case OutcomeNotModified:
		w.WriteHeader(http.StatusNotModified)
	case OutcomeListing:
		h.writeListing(w, out)
	case OutcomeOK, OutcomePartial:
		h.writeContent(w, r, out)
	default:
		h.log().Error("unhandled outcome", "kind", int(out.Kind), "path", r.URL.Path)
		http.Error(w, "500 internal server error", http.StatusInternalServerError)
	}
}

func (h *Handler) writeListing(w http.ResponseWriter, out Outcome) {
	var buf bytes.Buffer
	if err := h.renderer.Render(&buf, out.Directory, out.Entries); err != nil {
		h.log().Error("directory listing render failed", "dir", out.Directory, "error", err)
		http.Error(w, "500 internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(out.Status)
	if _, err := buf.WriteTo(w); err != nil {
		h.log().Debug("listing write aborted", "dir", out.Directory, "error", err)
	}
}

func (h *Handler) writeContent(w http.ResponseWriter, r *http.Request, out Outcome) {
	hdr := w.Header()
	hdr.Set("Content-Type", out.ContentType)
	if out.AcceptRanges {
		hdr.Set("Accept-Ranges", "bytes")
	}
	if !out.LastModified.IsZero() {
		hdr.Set("Last-Modified", out.LastModified.Format(http.TimeFormat))
	}
	if out.ContentRange != "" {
		hdr.Set("Content-Range", out.ContentRange)
	}

	// HEAD: headers only.
	if out.Body == nil {
		hdr.Set("Content-Length", strconv.FormatInt(out.ContentLength, 10))
		w.WriteHeader(out.Status)
		return
	}
	defer out.Body.Close()

	if h.encoding {
		if enc := negotiateEncoding(r.Header.Get("Accept-Encoding")); enc != "" {
			h.writeEncoded(w, out, enc)
			return
		}
	}

	hdr.Set("Content-Length", strconv.FormatInt(out.ContentLength, 10))
	w.WriteHeader(out.Status)
	if _, err := io.Copy(w, out.Body); err != nil {
		h.log().Debug("response write aborted", "error", err)
	}
}

// writeEncoded streams the body through a compressor. No Content-Length is
// set; the transfer is chunked so the advertised length semantics of the
// uncompressed resource are never contradicted.
func (h *Handler) writeEncoded(w http.ResponseWriter, out Outcome, encoding string) {
	w.Header().Set("Content-Encoding", encoding)
	w.WriteHeader(out.Status)

	var cw io.WriteCloser
	switch encoding {
	case "gzip":
		cw = gzip.NewWriter(w)
	case "deflate":
		fw, err := flate.NewWriter(w, flate.DefaultCompression)
		if err != nil {
			h.log().Error("deflate writer", "error", err)
			return
		}
		cw = fw
	}

	if _, err := io.Copy(cw, out.Body); err != nil {
		h.log().Debug("compressed write aborted", "error", err)
	}
	if err := cw.Close(); err != nil {
		h.log().Debug("compressor close", "error", err)
	}
}

// negotiateEncoding picks gzip, then deflate, from an Accept-Encoding
// value. Quality values are not weighed.
func negotiateEncoding(acceptEncoding string) string {
	switch {
	case strings.Contains(acceptEncoding, "gzip"):
		return "gzip"
	case strings.Contains(acceptEncoding, "deflate"):
		return "deflate"
	default:
		return ""
	}
}
