package staticfs

import (
	"log/slog"
	"strings"
)

type config struct {
	prefix      string
	listDirs    bool
	contentType ContentTypeFunc
	renderer    ListingRenderer
	encoding    bool
	logger      *slog.Logger
}

// Option configures a [Resolver] or [Handler].
type Option func(*config)

func newConfig(opts []Option) *config {
	cfg := &config{
		prefix:      "/",
		contentType: DefaultContentType,
		renderer:    NewHTMLListing(),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// WithPrefix restricts handling to requests under prefix; everything else
// is declined. A prefix of "/assets" handles "/assets/..." only. The
// default "/" handles everything.
func WithPrefix(prefix string) Option {
	return func(c *config) {
		if !strings.HasPrefix(prefix, "/") {
			prefix = "/" + prefix
		}
		if !strings.HasSuffix(prefix, "/") {
			prefix += "/"
		}
		c.prefix = prefix
	}
}

// WithDirectoryListing enables directory listings. Without it, directory
// requests resolve to not found.
func WithDirectoryListing() Option {
	return func(c *config) {
		c.listDirs = true
	}
}

// WithContentTypeFunc replaces the extension-to-Content-Type lookup.
// The default consults the system MIME table and falls back to
// application/octet-stream.
func WithContentTypeFunc(fn ContentTypeFunc) Option {
	return func(c *config) {
		c.contentType = fn
	}
}

// WithListingRenderer replaces the directory listing renderer. The default
// renders a plain HTML index page.
func WithListingRenderer(r ListingRenderer) Option {
	return func(c *config) {
		c.renderer = r
	}
}

// WithContentEncoding enables transparent gzip/deflate compression of
// response bodies when the client advertises support. Compressed
// responses are streamed with chunked transfer encoding instead of a
// fixed Content-Length.
func WithContentEncoding() Option {
	return func(c *config) {
		c.encoding = true
	}
}

// WithLogger sets a logger for the HTTP adapter. By default nothing is
// logged.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}
