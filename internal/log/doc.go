// Package log provides logging functionality with automatic trimming of
// oversized attribute values, built on top of the standard slog package.
//
// This package extends slog to provide:
//   - Automatic truncation of long attribute values (URLs, titles, bodies)
//   - Configurable log levels with debug mode support
//   - Consistent log formatting across the application
//
// # Why Trimming
//
// A crawler logs URLs, page titles, and error messages pulled straight from
// remote content. Any of these can be arbitrarily long (data: URLs, query
// strings, malformed markup), and a single oversized value makes the whole
// log line unreadable. The TrimHandler caps every string attribute so log
// output stays scannable even on hostile input.
//
// # Usage
//
//	// Create a logger
//	logger := log.NewLogger(os.Stderr, true) // debug=true
//
//	// Use as a standard slog.Logger
//	logger.Debug("page fetched",
//	    "url", pageURL, // Truncated if longer than MaxAttrLen
//	    "status", 200,
//	)
//
//	// Set as default logger
//	slog.SetDefault(logger)
package log
