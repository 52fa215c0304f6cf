package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/getmockd/mockdir/pkg/accesslog"
	"github.com/getmockd/mockdir/pkg/config"
	"github.com/getmockd/mockdir/pkg/engine"
	"github.com/getmockd/mockdir/pkg/logging"
)

const shutdownTimeout = 5 * time.Second

// runServe serves until the command context is cancelled or a shutdown
// signal arrives. baseDir anchors a relative --path.
func runServe(cmd *cobra.Command, baseDir string) error {
	cfg, err := loadConfig(cmd, baseDir)
	if err != nil {
		return &ExitError{Code: 1, Err: err}
	}

	log, closer := logging.New(cfg.Logging())
	defer func() { _ = closer.Close() }()
	log.Debug("configuration loaded", configAttrs(cfg)...)

	root, err := config.ResolveRoot(cfg.Path, cfg.BaseDir)
	if err != nil {
		return exitf(err, "cannot serve")
	}
	defer func() { _ = root.Close() }()

	srv := engine.NewServer(cfg, root,
		engine.WithLogger(log),
		engine.WithAccessLog(accessOptions(cmd.OutOrStdout(), cfg.NoColor)...),
	)
	if err := srv.Start(); err != nil {
		return exitf(err, "cannot start server")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "\nShutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		log.Warn("shutdown error", "error", err)
	}
	return nil
}

// loadConfig merges defaults, the config file, the environment and the
// command line flags, in increasing precedence.
func loadConfig(cmd *cobra.Command, baseDir string) (*config.ServerConfig, error) {
	cfg := config.Default()
	cfg.BaseDir = baseDir

	flags := cmd.Flags()
	path, err := flags.GetString(config.FlagConfig)
	if err != nil {
		return nil, err
	}
	if path == "" {
		path = config.ConfigFileFromEnv()
	}
	if path != "" {
		if err := config.LoadFile(cfg, path); err != nil {
			return nil, err
		}
	}

	if err := config.LoadEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.ApplyFlags(flags); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func accessOptions(out io.Writer, noColor bool) []accesslog.Option {
	if out == os.Stdout {
		out = color.Output
	}
	opts := []accesslog.Option{accesslog.WithOutput(out)}
	if noColor {
		color.NoColor = true
		opts = append(opts, accesslog.WithColor(false))
	}
	return opts
}

func configAttrs(cfg *config.ServerConfig) []any {
	attrs := []any{
		slog.String("path", cfg.Path),
		slog.Int("port", cfg.Port),
		slog.Bool("public", cfg.Public),
		slog.String("config_file", cfg.ConfigFile),
	}
	for key, src := range cfg.Sources {
		if src != config.SourceDefault {
			attrs = append(attrs, slog.String("source."+key, src))
		}
	}
	return attrs
}
