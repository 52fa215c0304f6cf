// Package logging provides structured operational logging for mockdir.
//
// This package wraps log/slog. It is separate from the colored per-request
// console lines written by the accesslog package: operational logs describe
// what the server itself is doing (startup, handler failures, transport
// errors) and go to stderr and, optionally, to a rotating log file.
//
// # Usage
//
//	logger, closer := logging.New(logging.Config{
//	    Level:  logging.LevelInfo,
//	    Format: logging.FormatText,
//	    File:   "mockdir.log",
//	})
//	defer closer.Close()
//
//	logger.Info("server started", "port", 8085)
//
// # Integration
//
// Components accept a *slog.Logger through an option or setter. If no logger
// is provided they use logging.Nop().
package logging
