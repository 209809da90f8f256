package dispatch

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/mattjoyce/slashgw/internal/interaction"
)

// Result is the status code and JSON body for one dispatch.
type Result struct {
	Status  int
	Body    any
	Outcome Outcome

	// Rejection is set when the request was refused.
	Rejection *Rejection
}

func respond(resp interaction.Response, outcome Outcome) Result {
	return Result{Status: http.StatusOK, Body: resp, Outcome: outcome}
}

func reject(r *Rejection) Result {
	return Result{Status: r.Status, Body: r.Response(), Outcome: r.Outcome, Rejection: r}
}

// Encode writes the body as JSON without HTML escaping.
func (r Result) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return enc.Encode(r.Body)
}

// MarshalBody returns the encoded body without a trailing newline.
func (r Result) MarshalBody() ([]byte, error) {
	var buf bytes.Buffer
	if err := r.Encode(&buf); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
