package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"searchkit/internal/config"
	"searchkit/internal/logging"
	"searchkit/internal/storage"
	"searchkit/pkg/searchkit"
)

const defaultDBPath = "searchkit.db"

// rootOptions holds the persistent flags shared by every command.
type rootOptions struct {
	ConfigPath  string
	Store       string
	DBPath      string
	LogLevel    string
	LogFormat   string
	MetricsAddr string
	ExportsDir  string
}

// app carries what PersistentPreRunE builds for the command that runs.
type app struct {
	stdout io.Writer
	stderr io.Writer

	opts    rootOptions
	cfg     config.Config
	logger  *slog.Logger
	client  *searchkit.Client
	metrics *http.Server
}

func newRootCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "searchctl",
		Short: "Run and inspect generic black-box searches",
		Long: `searchctl runs random search or hill climbing over a demo problem,
streams every emitted sample through the reporting processors and stores a
summary of each finished run.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.opts.ConfigPath, "config", "", "YAML run configuration")
	flags.StringVar(&a.opts.Store, "store", storage.DefaultStoreKind, "store backend: memory|sqlite")
	flags.StringVar(&a.opts.DBPath, "db-path", defaultDBPath, "sqlite database path")
	flags.StringVar(&a.opts.LogLevel, "log-level", "info", "log level: debug|info|warn|error")
	flags.StringVar(&a.opts.LogFormat, "log-format", "auto", "log format: auto|text|json")
	flags.StringVar(&a.opts.MetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	flags.StringVar(&a.opts.ExportsDir, "exports-dir", "exports", "base directory for exported runs")

	cmd.AddCommand(newSearchCommand(a, "random"))
	cmd.AddCommand(newSearchCommand(a, "hillclimb"))
	cmd.AddCommand(newRunsCommand(a))
	cmd.AddCommand(newShowCommand(a))
	cmd.AddCommand(newDeleteCommand(a))
	return cmd
}

// setup loads the configuration, lets explicitly set flags win over it and
// builds the logger, the client and the optional metrics endpoint.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.opts.ConfigPath)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("store") {
		cfg.Store.Kind = a.opts.Store
	}
	if flags.Changed("db-path") {
		cfg.Store.Path = a.opts.DBPath
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = a.opts.LogLevel
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = a.opts.LogFormat
	}
	if cfg.Store.Path == "" {
		cfg.Store.Path = defaultDBPath
	}
	a.cfg = cfg

	logger, err := logging.New(a.stderr, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	a.logger = logger

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	client, err := searchkit.New(searchkit.Options{
		StoreKind:  cfg.Store.Kind,
		DBPath:     cfg.Store.Path,
		ExportsDir: a.opts.ExportsDir,
		Out:        a.stdout,
		Logger:     logger,
		Registerer: reg,
	})
	if err != nil {
		return err
	}
	a.client = client

	if a.opts.MetricsAddr != "" {
		if err := a.serveMetrics(reg); err != nil {
			return err
		}
	}
	return nil
}

func (a *app) serveMetrics(reg *prometheus.Registry) error {
	listener, err := net.Listen("tcp", a.opts.MetricsAddr)
	if err != nil {
		return fmt.Errorf("metrics listener: %w", err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", handlers.CompressHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})))
	a.metrics = &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := a.metrics.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("metrics server stopped", slog.Any("error", err))
		}
	}()
	a.logger.Info("serving metrics", slog.String("addr", listener.Addr().String()))
	return nil
}

func (a *app) close() {
	if a.metrics != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = a.metrics.Shutdown(ctx)
	}
	if a.client != nil {
		_ = a.client.Close()
	}
}
