package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/meigma/staticfs"
)

// serveConfig holds serve settings. Environment variables provide
// defaults; flags override.
type serveConfig struct {
	Addr     string `env:"STATICFS_ADDR" envDefault:":8080"`
	Prefix   string `env:"STATICFS_PREFIX" envDefault:"/"`
	Dir      string `env:"STATICFS_DIR"`
	Pack     string `env:"STATICFS_PACK"`
	Listing  bool   `env:"STATICFS_LISTING"`
	Encoding bool   `env:"STATICFS_ENCODING"`
}

func newServeCmd() *cobra.Command {
	var cfg serveConfig
	if err := env.Parse(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a directory or package over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), &cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&cfg.Addr, "addr", cfg.Addr, "Listen address")
	flags.StringVar(&cfg.Prefix, "prefix", cfg.Prefix, "Request path prefix to serve under")
	flags.StringVar(&cfg.Dir, "dir", cfg.Dir, "Directory to serve")
	flags.StringVar(&cfg.Pack, "pack", cfg.Pack, "Package file to serve")
	flags.BoolVar(&cfg.Listing, "listing", cfg.Listing, "Enable directory listings")
	flags.BoolVar(&cfg.Encoding, "encoding", cfg.Encoding, "Enable gzip/deflate content encoding")
	return cmd
}

func runServe(ctx context.Context, cfg *serveConfig) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	store, err := buildStore(cfg)
	if err != nil {
		return err
	}

	opts := []staticfs.Option{
		staticfs.WithPrefix(cfg.Prefix),
		staticfs.WithLogger(logger),
	}
	if cfg.Listing {
		opts = append(opts, staticfs.WithDirectoryListing())
	}
	if cfg.Encoding {
		opts = append(opts, staticfs.WithContentEncoding())
	}

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           staticfs.NewHandler(store, opts...),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", "addr", cfg.Addr, "prefix", cfg.Prefix)
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func buildStore(cfg *serveConfig) (staticfs.Store, error) {
	switch {
	case cfg.Pack != "" && cfg.Dir != "":
		return nil, errors.New("--dir and --pack are mutually exclusive")
	case cfg.Pack != "":
		data, err := os.ReadFile(cfg.Pack)
		if err != nil {
			return nil, err
		}
		return staticfs.OpenEmbedded(data)
	case cfg.Dir != "":
		return staticfs.NewLocalFS(cfg.Dir), nil
	default:
		return nil, errors.New("one of --dir or --pack is required")
	}
}
