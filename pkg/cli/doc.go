// Package cli provides the command-line interface for mockdir.
//
// Running mockdir with no subcommand serves the mock data directory:
//
//	mockdir --path=fixtures --port 9000 --public
//
// Commands:
//   - (root): serve the mock data directory until SIGINT/SIGTERM
//   - version: show build information
//
// Configuration precedence is flags > MOCKDIR_* environment > config file >
// defaults; see package config.
package cli
