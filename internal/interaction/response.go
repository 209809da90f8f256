package interaction

import (
	"bytes"
	"encoding/json"
)

// ResponseType is the platform's numeric callback type.
type ResponseType int

const (
	ResponsePong           ResponseType = 1
	ResponseChannelMessage ResponseType = 4
)

// Response is one of Pong or ChannelMessage.
type Response interface {
	json.Marshaler
	isResponse()
}

// Pong acknowledges a Ping.
type Pong struct{}

// ChannelMessage posts Content to the channel the command came from.
type ChannelMessage struct {
	Content string
}

func (Pong) isResponse()           {}
func (ChannelMessage) isResponse() {}

type wireResponse struct {
	Type ResponseType `json:"type"`
	Data *wireData    `json:"data,omitempty"`
}

type wireData struct {
	Content string `json:"content"`
}

// MarshalJSON renders {"type":1}.
func (Pong) MarshalJSON() ([]byte, error) {
	return marshal(wireResponse{Type: ResponsePong})
}

// MarshalJSON renders {"type":4,"data":{"content":"..."}}.
func (m ChannelMessage) MarshalJSON() ([]byte, error) {
	return marshal(wireResponse{Type: ResponseChannelMessage, Data: &wireData{Content: m.Content}})
}

// ErrorResponse is the body of every rejected request.
type ErrorResponse struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

// marshal encodes without HTML escaping so content reaches the platform verbatim.
func marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
