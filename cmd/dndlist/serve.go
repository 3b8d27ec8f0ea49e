package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/vango-dev/dndlist/internal/config"
	"github.com/vango-dev/dndlist/pkg/dnd"
	"github.com/vango-dev/dndlist/pkg/dom"
	"github.com/vango-dev/dndlist/pkg/dragsource"
	"github.com/vango-dev/dndlist/pkg/inspect"
	"github.com/vango-dev/dndlist/pkg/metrics"
	"github.com/vango-dev/dndlist/pkg/tracing"
)

type serveOptions struct {
	configPath string
	host       string
	port       int
	logLevel   string
	chips      int
}

func serveCmd() *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the diagnostics server",
		Long: `Start a coordinator with the diagnostics server attached.

The server exposes the current interaction and list state over HTTP,
Prometheus metrics on /metrics and a websocket stream on /ws. A set of
draggable chips is registered so websocket clients can drive drags.

Examples:
  dndlist serve
  dndlist serve --port=9000 --log-level=debug
  dndlist serve --config=./deploy/dndlist.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts.configPath)
			if err != nil {
				return err
			}
			if opts.host != "" {
				cfg.Inspect.Host = opts.host
			}
			if opts.port > 0 {
				cfg.Inspect.Port = opts.port
			}
			if opts.logLevel != "" {
				cfg.Log.Level = opts.logLevel
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg, opts.chips)
		},
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "Config file (default ./dndlist.json)")
	cmd.Flags().StringVarP(&opts.host, "host", "H", "", "Host to bind to (default from dndlist.json)")
	cmd.Flags().IntVarP(&opts.port, "port", "p", 0, "Port to run on (default from dndlist.json)")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	cmd.Flags().IntVar(&opts.chips, "chips", 3, "Number of draggable chips to register")

	return cmd
}

func runServe(ctx context.Context, cfg *config.Config, chips int) error {
	logger := newLogger(os.Stderr, cfg.Log)
	slog.SetDefault(logger)

	srv := newServer(cfg, logger, chips)
	success(os.Stdout, "Inspector on http://%s", cfg.Inspect.Addr())
	info(os.Stdout, "%d chips registered, metrics=%v, tracing=%v", chips, cfg.Metrics.IsEnabled(), cfg.Tracing.Enabled)
	return srv.Run(ctx)
}

// newServer wires the coordinator, its observers and the chip elements into
// an inspector. With metrics disabled /metrics is not served.
func newServer(cfg *config.Config, logger *slog.Logger, chips int) *inspect.Server {
	coordOpts := []dnd.Option{dnd.WithLogger(logger)}
	inspectOpts := []inspect.Option{
		inspect.WithAddr(cfg.Inspect.Addr()),
		inspect.WithAllowedOrigins(cfg.Inspect.AllowedOrigins...),
		inspect.WithLogger(logger),
		inspect.WithRequestLog(cfg.Log.SlogLevel() <= slog.LevelDebug),
	}

	if cfg.Metrics.IsEnabled() {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		coordOpts = append(coordOpts, dnd.WithObserver(metrics.New(
			metrics.WithNamespace(cfg.Metrics.Namespace),
			metrics.WithRegistry(reg),
		)))
		inspectOpts = append(inspectOpts, inspect.WithGatherer(reg))
	} else {
		inspectOpts = append(inspectOpts, inspect.WithGatherer(nil))
	}
	if cfg.Tracing.Enabled {
		coordOpts = append(coordOpts, dnd.WithObserver(tracing.New(
			tracing.WithTracerName(cfg.Tracing.TracerName),
		)))
	}

	coord := dnd.New(coordOpts...)
	doc := dom.NewDocument()
	directive := dragsource.New(coord)
	for i := 1; i <= chips; i++ {
		id := fmt.Sprintf("chip-%d", i)
		directive.Bind(doc.CreateElement("div", id), dragsource.Config{
			Source: id,
			Data:   map[string]any{"id": i, "label": fmt.Sprintf("Chip %d", i)},
		})
	}

	return inspect.New(coord, doc, inspectOpts...)
}
