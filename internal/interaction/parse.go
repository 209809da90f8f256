package interaction

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/mattjoyce/slashgw/internal/signature"
)

// ErrMalformed means the body is not valid JSON.
var ErrMalformed = errors.New("interaction body is not valid JSON")

// envelope reads only the fields that select a variant. Every other field is
// ignored whatever its JSON type.
type envelope struct {
	Type json.RawMessage `json:"type"`
	Data json.RawMessage `json:"data"`
}

type commandData struct {
	Name    *string `json:"name"`
	Options Options `json:"options"`
}

// Parse decodes a verified body into an Interaction.
//
// Only invalid JSON is an error. Every other shape the router cannot use
// (non-object root, missing or non-integer type, a command without a name)
// becomes Unsupported.
func Parse(v signature.Verified) (Interaction, error) {
	return parseBody(v.Body())
}

func parseBody(body []byte) (Interaction, error) {
	if !json.Valid(body) {
		return nil, ErrMalformed
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return Unsupported{}, nil
	}

	typ, ok := decodeType(env.Type)
	if !ok {
		return Unsupported{}, nil
	}

	switch typ {
	case TypePing:
		return Ping{}, nil
	case TypeApplicationCommand:
		return decodeCommand(env, typ), nil
	default:
		return Unsupported{Type: &typ}, nil
	}
}

func decodeType(raw json.RawMessage) (Type, bool) {
	if len(raw) == 0 {
		return 0, false
	}
	var n int
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, false
	}
	return Type(n), true
}

func decodeCommand(env envelope, typ Type) Interaction {
	if len(env.Data) == 0 || bytes.Equal(env.Data, []byte("null")) {
		return Unsupported{Type: &typ}
	}

	var data commandData
	if err := json.Unmarshal(env.Data, &data); err != nil || data.Name == nil {
		return Unsupported{Type: &typ}
	}

	opts := data.Options
	if opts == nil {
		opts = Options{}
	}

	return ApplicationCommand{
		Name:    *data.Name,
		Options: opts,
	}
}
