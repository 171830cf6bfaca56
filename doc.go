// Package staticfs serves static files over HTTP from either a live
// directory or a single pre-built package blob compiled into the binary.
//
// A package flattens a directory tree into one contiguous blob with an
// index that gives O(1) random access to any file's bytes. The same
// request-resolution engine serves both backends with full HTTP
// semantics: conditional requests, byte-range retrieval, and optional
// directory listings.
//
// # Quick start
//
// Serve a local directory under /assets:
//
//	h := staticfs.NewHandler(staticfs.NewLocalFS("./assets"),
//	    staticfs.WithPrefix("/assets"),
//	)
//	mux := http.NewServeMux()
//	mux.Handle("/", h.Middleware(apiHandler))
//
// Build a package at release time and serve it from memory:
//
//	f, _ := os.Create("assets.pack")
//	err := staticfs.CreatePackage(ctx, "./assets", f)
//
//	//go:embed assets.pack
//	var packed []byte
//
//	store, err := staticfs.OpenEmbedded(packed)
//	h := staticfs.NewHandler(store, staticfs.WithDirectoryListing())
//
// # Resolution
//
// The [Resolver] is a pure function from one request (method, path,
// headers) and a [Store] snapshot to an [Outcome]; it performs no I/O
// beyond the store calls and holds no mutable state, so concurrent
// requests need no locking. [Handler] is a thin net/http adapter over it.
package staticfs
