// Package webhook serves the platform's interactions endpoint over HTTP.
//
// The server is a thin transport around a Dispatcher: it reads the raw body
// under a size limit, normalizes the signature headers, and writes back the
// status and JSON body the dispatcher chose. It never parses or verifies the
// body itself.
//
// # Routes
//
//   - POST {path}: interactions (default /interactions)
//   - GET /healthz: liveness and uptime
//   - GET /events?since=<id>: recent dispatch outcomes (when an events hub is attached)
//   - GET {metrics path}: Prometheus metrics (when attached)
//
// # Request Flow
//
//  1. HTTP POST arrives at the configured path
//  2. Body size checked (reject with 413 if too large)
//  3. Signature and timestamp headers normalized (absent / empty / present)
//  4. Dispatcher verifies, parses and routes
//  5. Result status and body written as JSON
//
// Request logging excludes bodies, signatures and keys. Panics are turned
// into 500 responses by chi's Recoverer middleware.
//
// # Example Usage
//
//	cfg := webhook.Config{
//		Listen:      "127.0.0.1:8787",
//		Path:        "/interactions",
//		MaxBodySize: 1048576,
//		Headers:     signature.DefaultHeaderNames(),
//	}
//
//	server := webhook.New(cfg, dispatcher, logger)
//	if err := server.Start(ctx); err != nil {
//		log.Fatal(err)
//	}
package webhook
