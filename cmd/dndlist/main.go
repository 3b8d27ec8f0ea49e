package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/dndlist/internal/config"
	"github.com/vango-dev/dndlist/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "dndlist",
		Short: "Drag-and-drop coordination for server-driven list widgets",
		Long: `dndlist coordinates drag-and-drop interactions between list
components and bound drag sources.

  • One in-flight interaction with a deep-copied payload
  • dragstart/cancel signals for snapshot and rollback
  • Shared source/target list state
  • Diagnostics server with a live websocket stream`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		serveCmd(),
		demoCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		errors.PrintError(err)
		os.Exit(1)
	}
}

// loadConfig reads path, or dndlist.json in the working directory when path
// is empty. A missing default file yields the defaults.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	cfg, err := config.Load(".")
	if errors.HasCode(err, "D020") {
		return config.New(), nil
	}
	return cfg, err
}

// newLogger builds the process logger from the log section.
func newLogger(w io.Writer, c config.LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.SlogLevel()}
	if c.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// success prints a success message.
func success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "  %s\n", fmt.Sprintf(format, args...))
}
