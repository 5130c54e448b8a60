// Package httpserver wraps net/http's Server with sane timeouts,
// signal-aware graceful shutdown, and structured logging.
package httpserver
