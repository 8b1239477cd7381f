// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/urfave/cli/v2"

	"github.com/poiesic/expertfind"
	"github.com/poiesic/expertfind/config"
	"github.com/poiesic/expertfind/server"
	"github.com/poiesic/expertfind/telemetry"
)

const configKey = "config"

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	indexFlag := func() cli.Flag {
		return &cli.StringFlag{
			Name:    "index",
			Aliases: []string{"i"},
			Usage:   "Path to the index directory (overrides index.path)",
		}
	}
	formatFlag := func() cli.Flag {
		return &cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Output format (json, text)",
			Value:   "json",
		}
	}

	return &cli.App{
		Name:     "expertfind",
		Usage:    "Semantic search over expert profiles",
		Metadata: map[string]any{},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to YAML config file",
				EnvVars: []string{"EXPERTFIND_CONFIG"},
			},
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "Path to a .env file (default: ./.env if present)",
			},
		},
		Before: setup,
		Commands: []*cli.Command{
			{
				Name:   "build",
				Usage:  "Load the persisted index, building it from the profile store if needed",
				Action: buildCommand,
				Flags: []cli.Flag{
					indexFlag(),
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Rebuild even if a usable index exists",
					},
				},
			},
			{
				Name:      "search",
				Usage:     "Find experts matching a natural-language query",
				ArgsUsage: "<query>",
				Action:    searchCommand,
				Flags: []cli.Flag{
					indexFlag(),
					formatFlag(),
					&cli.IntFlag{
						Name:    "k",
						Aliases: []string{"n"},
						Usage:   "Number of index entries to retrieve (default: search.top_k)",
					},
					&cli.StringFlag{
						Name:  "similarity-mode",
						Usage: "How similarity_score is computed (baseline, distance)",
					},
				},
			},
			{
				Name:   "serve",
				Usage:  "Serve search over HTTP",
				Action: serveCommand,
				Flags: []cli.Flag{
					indexFlag(),
					&cli.StringFlag{
						Name:  "addr",
						Usage: "Listen address (overrides http.addr)",
					},
				},
			},
			{
				Name:   "info",
				Usage:  "Describe the persisted index",
				Action: infoCommand,
				Flags:  []cli.Flag{indexFlag(), formatFlag()},
			},
		},
	}
}

// setup loads configuration and installs the logger. An explicit
// --log-level wins over logging.level.
func setup(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"), c.String("env-file"))
	if err != nil {
		return err
	}
	level := cfg.Logging.Level
	if c.IsSet("log-level") {
		level = c.String("log-level")
	}
	if err := setupLogger(level); err != nil {
		return err
	}
	c.App.Metadata[configKey] = cfg
	return nil
}

func setupLogger(levelStr string) error {
	var level slog.Level
	switch strings.ToLower(levelStr) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
	return nil
}

// commandConfig returns the loaded configuration with command flags applied.
func commandConfig(c *cli.Context) (config.Config, error) {
	cfg, ok := c.App.Metadata[configKey].(config.Config)
	if !ok {
		cfg = config.Default()
	}
	if c.IsSet("index") {
		cfg.Index.Path = c.String("index")
	}
	if c.IsSet("similarity-mode") {
		cfg.Search.SimilarityMode = c.String("similarity-mode")
	}
	if c.IsSet("addr") {
		cfg.HTTP.Addr = c.String("addr")
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func outputFormat(c *cli.Context) (string, error) {
	switch f := c.String("format"); f {
	case "json", "text":
		return f, nil
	default:
		return "", fmt.Errorf("unknown format %q: must be json or text", f)
	}
}

func buildCommand(c *cli.Context) error {
	cfg, err := commandConfig(c)
	if err != nil {
		return err
	}

	engine, err := expertfind.Open(c.Context, cfg,
		expertfind.WithForceRebuild(c.Bool("force")),
		expertfind.WithProgress(c.App.ErrWriter),
	)
	if err != nil {
		return fmt.Errorf("failed to prepare index: %w", err)
	}
	defer engine.Close()

	m := engine.Manifest()
	fmt.Fprintf(c.App.Writer, "Index ready at %s: %d entries, dimension %d, metric %s, model %s\n",
		cfg.Index.Path, m.Count, m.Dimension, m.Metric, m.EmbeddingModel)
	return nil
}

func searchCommand(c *cli.Context) error {
	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if query == "" {
		return errors.New("a query is required")
	}
	format, err := outputFormat(c)
	if err != nil {
		return err
	}
	cfg, err := commandConfig(c)
	if err != nil {
		return err
	}

	engine, err := expertfind.Open(c.Context, cfg, expertfind.WithProgress(c.App.ErrWriter))
	if err != nil {
		return fmt.Errorf("failed to prepare index: %w", err)
	}
	defer engine.Close()

	resp, qerr := engine.Search(c.Context, query, c.Int("k"))
	if format == "text" {
		writeReport(c.App.Writer, query, resp, qerr)
	} else {
		result := server.Success(resp)
		if qerr != nil {
			result = server.Failure(qerr.Error())
		}
		enc := json.NewEncoder(c.App.Writer)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return err
		}
	}
	if qerr != nil {
		return fmt.Errorf("query failed: %w", qerr)
	}
	return nil
}

func serveCommand(c *cli.Context) error {
	cfg, err := commandConfig(c)
	if err != nil {
		return err
	}
	logger := slog.Default()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := telemetry.NewMetrics()
	if err := metrics.Register(reg); err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine, err := expertfind.Open(ctx, cfg,
		expertfind.WithMetrics(metrics),
		expertfind.WithProgress(c.App.ErrWriter),
		expertfind.WithLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("failed to prepare index: %w", err)
	}
	defer engine.Close()

	srv := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      server.New(engine, server.WithMetrics(metrics, reg), server.WithLogger(logger)).Handler(),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting HTTP server", "addr", cfg.HTTP.Addr, "entries", engine.Len())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("received shutdown signal")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("error during shutdown", "err", err)
		return err
	}
	return nil
}

func infoCommand(c *cli.Context) error {
	format, err := outputFormat(c)
	if err != nil {
		return err
	}
	cfg, err := commandConfig(c)
	if err != nil {
		return err
	}

	m, err := expertfind.ReadManifest(c.Context, cfg.Index.Path)
	if err != nil {
		return fmt.Errorf("failed to read index: %w", err)
	}

	if format == "text" {
		w := c.App.Writer
		fmt.Fprintf(w, "Path:            %s\n", cfg.Index.Path)
		fmt.Fprintf(w, "Format version:  %d\n", m.Version)
		fmt.Fprintf(w, "Entries:         %d\n", m.Count)
		fmt.Fprintf(w, "Dimension:       %d\n", m.Dimension)
		fmt.Fprintf(w, "Metric:          %s\n", m.Metric)
		fmt.Fprintf(w, "Embedding model: %s\n", m.EmbeddingModel)
		fmt.Fprintf(w, "Chunking:        %s %d/%d\n", m.Splitter, m.ChunkSize, m.ChunkOverlap)
		fmt.Fprintf(w, "Built:           %s\n", m.BuiltAt.Format("2006-01-02 15:04:05 MST"))
		return nil
	}
	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(m)
}
