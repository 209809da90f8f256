package webhook

import (
	"strings"
	"testing"
	"time"

	"github.com/mattjoyce/slashgw/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromGlobalConfig(t *testing.T) {
	cfg := config.Defaults()
	cfg.Server.Listen = "0.0.0.0:9000"
	cfg.Server.Path = "/discord"
	cfg.Server.MaxBodySize = "64KB"
	cfg.Server.ReadTimeout = 3 * time.Second
	cfg.Interactions.SignatureHeader = "X-Sig"

	got, err := FromGlobalConfig(cfg)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9000", got.Listen)
	assert.Equal(t, "/discord", got.Path)
	assert.Equal(t, int64(64*1024), got.MaxBodySize)
	assert.Equal(t, 3*time.Second, got.ReadTimeout)
	assert.Equal(t, "X-Sig", got.Headers.Signature)
	assert.Equal(t, "X-Signature-Timestamp", got.Headers.Timestamp)
}

func TestFromGlobalConfig_Errors(t *testing.T) {
	_, err := FromGlobalConfig(nil)
	assert.Error(t, err)

	cfg := config.Defaults()
	cfg.Server.MaxBodySize = "lots"
	_, err = FromGlobalConfig(cfg)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "max_body_size"))
}
