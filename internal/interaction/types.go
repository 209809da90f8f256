package interaction

import (
	"encoding/json"
	"strconv"
)

// Type is the platform's numeric interaction type.
type Type int

const (
	TypePing               Type = 1
	TypeApplicationCommand Type = 2
)

// Interaction is one of Ping, ApplicationCommand, or Unsupported.
type Interaction interface {
	isInteraction()
}

// Ping is the platform's liveness probe.
type Ping struct{}

// ApplicationCommand is an invoked slash command.
type ApplicationCommand struct {
	Name    string
	Options Options
}

// Unsupported is any structurally valid interaction we do not handle.
// Type is nil when the envelope carried no integer type.
type Unsupported struct {
	Type *Type
}

func (Ping) isInteraction()               {}
func (ApplicationCommand) isInteraction() {}
func (Unsupported) isInteraction()        {}

// Option is a single named command argument. Value is the raw JSON scalar.
type Option struct {
	Name  string          `json:"name"`
	Value json.RawMessage `json:"value"`
}

// String returns the option value when it is a JSON string.
func (o Option) String() (string, bool) {
	var s string
	if len(o.Value) == 0 || o.Value[0] != '"' {
		return "", false
	}
	if err := json.Unmarshal(o.Value, &s); err != nil {
		return "", false
	}
	return s, true
}

// Options preserves the order the platform sent.
type Options []Option

// Lookup returns the first option with the given name.
func (opts Options) Lookup(name string) (Option, bool) {
	for _, o := range opts {
		if o.Name == name {
			return o, true
		}
	}
	return Option{}, false
}

// Kind names an interaction for logs and metrics.
func Kind(i Interaction) string {
	switch v := i.(type) {
	case Ping:
		return "ping"
	case ApplicationCommand:
		return "command"
	case Unsupported:
		if v.Type == nil {
			return "unsupported"
		}
		return "unsupported:" + strconv.Itoa(int(*v.Type))
	default:
		return "unknown"
	}
}
