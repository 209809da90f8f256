package webhook

import (
	"context"
	"time"

	"github.com/mattjoyce/slashgw/internal/dispatch"
	"github.com/mattjoyce/slashgw/internal/events"
	"github.com/mattjoyce/slashgw/internal/signature"
)

//go:generate mockgen -destination=mocks/mock_dispatcher.go -package=mocks github.com/mattjoyce/slashgw/internal/webhook Dispatcher

// Dispatcher handles one authenticated-or-not interaction request.
type Dispatcher interface {
	Dispatch(ctx context.Context, req signature.RawRequest) dispatch.Result
}

// Config holds webhook server configuration.
type Config struct {
	Listen string

	// Path is the URL path the platform posts interactions to (e.g., "/interactions")
	Path string

	// MaxBodySize is the maximum allowed request body size in bytes (default: 1MB)
	MaxBodySize int64

	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// Headers names the signature and timestamp headers.
	Headers signature.HeaderNames
}

// HealthzResponse is returned by GET /healthz.
type HealthzResponse struct {
	Status         string `json:"status"`
	UptimeSeconds  int64  `json:"uptime_seconds"`
	LastDispatchID int64  `json:"last_dispatch_id"`
}

// EventsResponse is returned by GET /events.
type EventsResponse struct {
	Dispatches []events.Dispatch `json:"dispatches"`
}

// Default values
const (
	DefaultMaxBodySize = 1048576 // 1 MB
	DefaultPath        = "/interactions"
	DefaultTimeout     = 10 * time.Second
)
