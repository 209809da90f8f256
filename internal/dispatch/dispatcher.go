package dispatch

import (
	"context"
	"encoding/hex"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/mattjoyce/slashgw/internal/command"
	"github.com/mattjoyce/slashgw/internal/events"
	"github.com/mattjoyce/slashgw/internal/interaction"
	"github.com/mattjoyce/slashgw/internal/log"
	"github.com/mattjoyce/slashgw/internal/signature"
	"github.com/zeebo/blake3"
)

// Registry resolves command names to handlers.
type Registry interface {
	Lookup(name string) (command.Handler, bool)
}

// Recorder receives one observation per dispatch.
type Recorder interface {
	ObserveDispatch(outcome string, elapsed time.Duration)
}

// Publisher receives a summary of every dispatch.
type Publisher interface {
	Publish(d events.Dispatch)
}

// Dispatcher routes verified interactions to handlers.
type Dispatcher struct {
	auth      *signature.Authenticator
	registry  Registry
	logger    *slog.Logger
	recorder  Recorder
	publisher Publisher
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger overrides the component logger.
func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) { d.logger = l }
}

// WithRecorder attaches a metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(d *Dispatcher) { d.recorder = r }
}

// WithPublisher attaches an event publisher.
func WithPublisher(p Publisher) Option {
	return func(d *Dispatcher) { d.publisher = p }
}

// New creates a Dispatcher.
func New(auth *signature.Authenticator, registry Registry, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		auth:     auth,
		registry: registry,
		logger:   log.WithComponent("dispatch"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// trace collects what routing learned, for logging only.
type trace struct {
	kind    string
	command string
	err     error
}

// Dispatch runs one request through verification, parsing and routing.
// It never returns an error: every failure becomes a rejected Result.
func (d *Dispatcher) Dispatch(ctx context.Context, req signature.RawRequest) Result {
	start := time.Now()
	res, tr := d.dispatch(ctx, req)
	d.finish(req, res, tr, time.Since(start))
	return res
}

func (d *Dispatcher) dispatch(ctx context.Context, req signature.RawRequest) (Result, trace) {
	var tr trace

	verified, err := d.auth.Authenticate(req)
	switch {
	case errors.Is(err, signature.ErrMissingCredentials):
		return reject(ErrMissingCredentials), tr
	case err != nil:
		return reject(ErrInvalidSignature), tr
	}

	in, err := interaction.Parse(verified)
	if err != nil {
		tr.err = err
		return reject(ErrMalformedBody), tr
	}
	tr.kind = interaction.Kind(in)

	switch v := in.(type) {
	case interaction.Ping:
		return respond(interaction.Pong{}, OutcomePong), tr

	case interaction.ApplicationCommand:
		tr.command = v.Name
		handler, ok := d.registry.Lookup(v.Name)
		if !ok {
			return reject(ErrUnrecognizedInteraction), tr
		}

		resp, err := handler.Handle(ctx, v.Options)
		if err != nil {
			tr.err = err
			return reject(ErrUnrecognizedInteraction), tr
		}
		if resp == nil {
			tr.err = errors.New("handler returned no response")
			return reject(ErrUnrecognizedInteraction), tr
		}
		return respond(resp, OutcomeCommand), tr

	default:
		return reject(ErrUnrecognizedInteraction), tr
	}
}

func (d *Dispatcher) finish(req signature.RawRequest, res Result, tr trace, elapsed time.Duration) {
	id := uuid.NewString()
	digest := bodyDigest(req.Body)

	attrs := []any{
		"dispatch_id", id,
		"outcome", string(res.Outcome),
		"status", res.Status,
		"body_digest", digest,
		"body_bytes", len(req.Body),
		"duration_us", elapsed.Microseconds(),
	}
	if tr.kind != "" {
		attrs = append(attrs, "kind", tr.kind)
	}
	if tr.command != "" {
		attrs = append(attrs, "command", tr.command)
	}
	if res.Rejection == ErrMissingCredentials {
		attrs = append(attrs,
			"signature_header", req.Signature.State().String(),
			"timestamp_header", req.Timestamp.State().String(),
		)
	}
	if tr.err != nil {
		attrs = append(attrs, "error", tr.err)
	}

	switch res.Rejection {
	case nil:
		d.logger.Info("interaction dispatched", attrs...)
	case ErrMissingCredentials, ErrInvalidSignature:
		d.logger.Warn("interaction rejected", attrs...)
	default:
		d.logger.Info("interaction rejected", attrs...)
	}

	if d.recorder != nil {
		d.recorder.ObserveDispatch(string(res.Outcome), elapsed)
	}
	if d.publisher != nil {
		d.publisher.Publish(events.Dispatch{
			DispatchID: id,
			Outcome:    string(res.Outcome),
			Status:     res.Status,
			Kind:       tr.kind,
			Command:    tr.command,
			BodyDigest: digest,
			DurationUS: elapsed.Microseconds(),
		})
	}
}

// bodyDigest identifies a body in logs without revealing it.
func bodyDigest(body []byte) string {
	sum := blake3.Sum256(body)
	return hex.EncodeToString(sum[:8])
}
