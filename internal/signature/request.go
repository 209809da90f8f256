package signature

import (
	"net/http"
	"sort"
	"strings"
)

// Default header names used by the platform.
const (
	DefaultSignatureHeader = "X-Signature-Ed25519"
	DefaultTimestampHeader = "X-Signature-Timestamp"
)

// HeaderState distinguishes a missing header from one sent with no value.
type HeaderState int

const (
	HeaderAbsent HeaderState = iota
	HeaderEmpty
	HeaderPresent
)

func (s HeaderState) String() string {
	switch s {
	case HeaderEmpty:
		return "empty"
	case HeaderPresent:
		return "present"
	default:
		return "absent"
	}
}

// Header is a normalized header value.
type Header struct {
	state HeaderState
	value string
}

// AbsentHeader is the zero Header.
var AbsentHeader = Header{}

// HeaderOf normalizes a raw value. Whitespace-only values count as empty.
func HeaderOf(value string) Header {
	if strings.TrimSpace(value) == "" {
		return Header{state: HeaderEmpty}
	}
	return Header{state: HeaderPresent, value: value}
}

// State returns the header's trinary state.
func (h Header) State() HeaderState {
	return h.state
}

// Value returns the header value and whether it is present and non-empty.
func (h Header) Value() (string, bool) {
	return h.value, h.state == HeaderPresent
}

// HeaderNames configures which request headers carry signature material.
type HeaderNames struct {
	Signature string
	Timestamp string
}

// DefaultHeaderNames returns the platform's header names.
func DefaultHeaderNames() HeaderNames {
	return HeaderNames{
		Signature: DefaultSignatureHeader,
		Timestamp: DefaultTimestampHeader,
	}
}

func (n HeaderNames) withDefaults() HeaderNames {
	if n.Signature == "" {
		n.Signature = DefaultSignatureHeader
	}
	if n.Timestamp == "" {
		n.Timestamp = DefaultTimestampHeader
	}
	return n
}

// RawRequest is one inbound call: the untouched body and its signature headers.
type RawRequest struct {
	Body      []byte
	Signature Header
	Timestamp Header
}

// NewRawRequest builds a RawRequest from a flat header map. Header names are
// matched case-insensitively. An exact-case key wins; otherwise, when several
// case variants are present, the lexically smallest key is used.
func NewRawRequest(body []byte, headers map[string]string, names HeaderNames) RawRequest {
	names = names.withDefaults()
	return RawRequest{
		Body:      body,
		Signature: lookupHeader(headers, names.Signature),
		Timestamp: lookupHeader(headers, names.Timestamp),
	}
}

// FromHTTPHeader builds a RawRequest from net/http headers.
func FromHTTPHeader(body []byte, h http.Header, names HeaderNames) RawRequest {
	names = names.withDefaults()
	return RawRequest{
		Body:      body,
		Signature: httpHeader(h, names.Signature),
		Timestamp: httpHeader(h, names.Timestamp),
	}
}

func lookupHeader(headers map[string]string, name string) Header {
	if v, ok := headers[name]; ok {
		return HeaderOf(v)
	}
	var matches []string
	for k := range headers {
		if strings.EqualFold(k, name) {
			matches = append(matches, k)
		}
	}
	if len(matches) == 0 {
		return AbsentHeader
	}
	sort.Strings(matches)
	return HeaderOf(headers[matches[0]])
}

func httpHeader(h http.Header, name string) Header {
	values := h.Values(name)
	if len(values) == 0 {
		return AbsentHeader
	}
	return HeaderOf(values[0])
}
