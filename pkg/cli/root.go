package cli

import (
	"context"
	"errors"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/getmockd/mockdir/pkg/config"
)

var (
	// Version is injected during build
	Version = "dev"
	// Commit is injected during build
	Commit = "none"
	// BuildDate is injected during build
	BuildDate = "unknown"
)

// NewRootCommand builds the mockdir command tree. Running the root command
// serves the mock data directory.
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mockdir",
		Short: "mockdir serves a directory of mock responses over HTTP",
		Long: `mockdir maps each request to a file under the mock data directory:

  GET  /users   ->  users.js, users.expr or users.json
  POST /users   ->  users_post.js, users_post.expr or users_post.json

.js and .expr files are handlers that compute the response; .json files are
returned as-is. Requests with no matching file get 404.

Configuration can be provided via flags, MOCKDIR_* environment variables, or
a YAML/TOML file passed with --config.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true, // We handle errors in Execute()
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, config.ExecutableDir())
		},
	}

	f := cmd.Flags()
	f.String(config.FlagPath, config.DefaultPath, "mock data directory, relative to the mockdir binary unless absolute")
	f.Int(config.FlagPort, config.DefaultPort, "port to listen on")
	f.Bool(config.FlagPublic, false, "listen on all interfaces instead of 127.0.0.1")
	f.String(config.FlagConfig, "", "YAML or TOML config file")
	f.String(config.FlagLogLevel, config.DefaultLogLevel, "operational log level (debug, info, warn, error)")
	f.String(config.FlagLogFormat, config.DefaultLogFormat, "operational log format (text, json)")
	f.String(config.FlagLogFile, "", "also write operational logs to this file, rotated")
	f.Bool(config.FlagNoColor, false, "disable colored output")

	cmd.AddCommand(newVersionCmd())
	return cmd
}

// Execute runs the root command and exits non-zero on failure.
// This is called by main.main().
func Execute() {
	if err := NewRootCommand().ExecuteContext(context.Background()); err != nil {
		code := 1
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			code = exitErr.Code
		}
		_, _ = color.New(color.FgRed, color.Bold).Fprintln(os.Stderr, "Error:", err)
		os.Exit(code)
	}
}
