package command

import (
	"context"
	"sort"

	"github.com/mattjoyce/slashgw/internal/interaction"
)

// Handler runs one slash command.
type Handler interface {
	Handle(ctx context.Context, opts interaction.Options) (interaction.Response, error)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, opts interaction.Options) (interaction.Response, error)

// Handle calls f.
func (f HandlerFunc) Handle(ctx context.Context, opts interaction.Options) (interaction.Response, error) {
	return f(ctx, opts)
}

// Registry maps command names to handlers. It is built once and read-only
// afterwards, so lookups are safe from any goroutine.
type Registry struct {
	handlers map[string]Handler
}

// NewRegistry copies handlers into a new Registry. Nil handlers are skipped.
func NewRegistry(handlers map[string]Handler) *Registry {
	r := &Registry{handlers: make(map[string]Handler, len(handlers))}
	for name, h := range handlers {
		if h == nil {
			continue
		}
		r.handlers[name] = h
	}
	return r
}

// Default returns the registry with the built-in commands.
func Default() *Registry {
	return NewRegistry(map[string]Handler{
		"dice": Dice(nil),
		"echo": Echo(),
	})
}

// Lookup finds a handler by exact, case-sensitive name.
func (r *Registry) Lookup(name string) (Handler, bool) {
	h, ok := r.handlers[name]
	return h, ok
}

// Names returns the registered command names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
