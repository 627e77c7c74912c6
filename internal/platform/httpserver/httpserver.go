// Package httpserver builds the process's HTTP server. Handler-level
// timeouts are applied per route group; the server only bounds the parts a
// handler cannot see.
package httpserver

import (
	"net/http"
	"time"
)

// New builds an HTTP server with this project's defaults. Slow-header
// connections are dropped early; keep-alives idle out after a minute so
// rolling restarts drain quickly.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       time.Minute,
	}
}
