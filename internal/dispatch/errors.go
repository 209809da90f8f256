package dispatch

import (
	"net/http"

	"github.com/mattjoyce/slashgw/internal/interaction"
)

// Outcome labels a finished dispatch for logs, metrics and events.
type Outcome string

const (
	OutcomePong                    Outcome = "pong"
	OutcomeCommand                 Outcome = "command"
	OutcomeMissingCredentials      Outcome = "missing_credentials"
	OutcomeInvalidSignature        Outcome = "invalid_signature"
	OutcomeMalformedBody           Outcome = "malformed_body"
	OutcomeUnrecognizedInteraction Outcome = "unrecognized_interaction"
)

// Rejection is an expected, per-request failure with a fixed response.
type Rejection struct {
	Outcome Outcome
	Status  int
	Title   string
	Detail  string
}

func (r *Rejection) Error() string {
	return string(r.Outcome) + ": " + r.Detail
}

// Response returns the JSON body sent to the platform.
func (r *Rejection) Response() interaction.ErrorResponse {
	return interaction.ErrorResponse{Title: r.Title, Detail: r.Detail}
}

var (
	ErrMissingCredentials = &Rejection{
		Outcome: OutcomeMissingCredentials,
		Status:  http.StatusUnauthorized,
		Title:   "Unauthorized",
		Detail:  "Headers for signature is missing.",
	}
	ErrInvalidSignature = &Rejection{
		Outcome: OutcomeInvalidSignature,
		Status:  http.StatusUnauthorized,
		Title:   "Unauthorized",
		Detail:  "Your signature is invalid.",
	}
	ErrMalformedBody = &Rejection{
		Outcome: OutcomeMalformedBody,
		Status:  http.StatusBadRequest,
		Title:   "Broken Request Body",
		Detail:  "Your request's body is broken.",
	}
	ErrUnrecognizedInteraction = &Rejection{
		Outcome: OutcomeUnrecognizedInteraction,
		Status:  http.StatusBadRequest,
		Title:   "Unexpected Request Body",
		Detail:  "Your request's body is something different from our expectations.",
	}
)
