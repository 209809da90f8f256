package interaction

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponse_WireShape(t *testing.T) {
	tests := []struct {
		name string
		resp Response
		want string
	}{
		{name: "pong", resp: Pong{}, want: `{"type":1}`},
		{name: "channel message", resp: ChannelMessage{Content: "hi"}, want: `{"type":4,"data":{"content":"hi"}}`},
		{name: "empty content kept", resp: ChannelMessage{}, want: `{"type":4,"data":{"content":""}}`},
		{name: "no html escaping", resp: ChannelMessage{Content: "<b>&</b>"}, want: `{"type":4,"data":{"content":"<b>&</b>"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.resp.MarshalJSON()
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestErrorResponse_WireShape(t *testing.T) {
	got, err := json.Marshal(ErrorResponse{Title: "Unauthorized", Detail: "Your signature is invalid."})
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"Unauthorized","detail":"Your signature is invalid."}`, string(got))
}
