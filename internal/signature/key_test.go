package signature

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTrustedKey(t *testing.T) {
	valid := strings.Repeat("ab", 32)

	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{name: "lowercase hex", input: valid},
		{name: "uppercase hex with whitespace", input: "  " + strings.ToUpper(valid) + "\n"},
		{name: "empty", input: "", wantErr: "empty"},
		{name: "whitespace only", input: "   ", wantErr: "empty"},
		{name: "not hex", input: strings.Repeat("zz", 32), wantErr: "not valid hex"},
		{name: "too short", input: "abcd", wantErr: "must be 32 bytes"},
		{name: "too long", input: valid + "00", wantErr: "must be 32 bytes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, err := ParseTrustedKey(tt.input)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.True(t, key.IsZero())
				return
			}
			require.NoError(t, err)
			assert.False(t, key.IsZero())
		})
	}
}

func TestTrustedKey_FingerprintHidesKey(t *testing.T) {
	hexKey := strings.Repeat("cd", 32)
	key, err := ParseTrustedKey(hexKey)
	require.NoError(t, err)

	fp := key.Fingerprint()
	assert.Len(t, fp, 16)
	assert.NotContains(t, hexKey, fp)
	assert.Equal(t, fp, key.Fingerprint())
	assert.Equal(t, "ed25519:"+fp, key.String())
	assert.Empty(t, TrustedKey{}.Fingerprint())
}

func TestNewTrustedKey_CopiesInput(t *testing.T) {
	raw := make([]byte, 32)
	key, err := NewTrustedKey(raw)
	require.NoError(t, err)

	before := key.Fingerprint()
	raw[0] = 0xff
	assert.Equal(t, before, key.Fingerprint())
}
