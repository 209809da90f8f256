package main

import (
	"crypto/ed25519"
	"encoding/hex"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/mattjoyce/slashgw/internal/config"
	"github.com/mattjoyce/slashgw/internal/signature"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSeed = "SeedForTest234567890123456789012"

func captureOutputWithExitCode(t *testing.T, run func() int) (int, string, string) {
	t.Helper()

	oldStdout := os.Stdout
	oldStderr := os.Stderr

	stdoutR, stdoutW, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe stdout failed: %v", err)
	}
	stderrR, stderrW, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe stderr failed: %v", err)
	}

	os.Stdout = stdoutW
	os.Stderr = stderrW

	code := run()

	_ = stdoutW.Close()
	_ = stderrW.Close()
	os.Stdout = oldStdout
	os.Stderr = oldStderr

	stdoutBytes, _ := io.ReadAll(stdoutR)
	stderrBytes, _ := io.ReadAll(stderrR)

	_ = stdoutR.Close()
	_ = stderrR.Close()

	return code, string(stdoutBytes), string(stderrBytes)
}

func captureRun(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	return captureOutputWithExitCode(t, func() int {
		return run(args)
	})
}

func testPublicKeyHex() string {
	priv := ed25519.NewKeyFromSeed([]byte(testSeed))
	return hex.EncodeToString(priv.Public().(ed25519.PublicKey))
}

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestRunNoArgs(t *testing.T) {
	code, stdout, _ := captureRun(t)
	assert.Equal(t, 1, code)
	assert.Contains(t, stdout, "Usage:")
}

func TestRunUnknownCommand(t *testing.T) {
	code, _, stderr := captureRun(t, "frobnicate")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "Unknown command: frobnicate")
}

func TestRunUnknownActions(t *testing.T) {
	code, _, stderr := captureRun(t, "config", "show")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "Unknown config action: show")

	code, _, stderr = captureRun(t, "key", "rotate")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "Unknown key action: rotate")
}

func TestNounHelp(t *testing.T) {
	code, stdout, _ := captureRun(t, "config", "help")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "Actions: check, lock")

	code, stdout, _ = captureRun(t, "serve", "--help")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "slashgw serve")
}

func TestRunVersion(t *testing.T) {
	code, stdout, _ := captureRun(t, "version")
	require.Equal(t, 0, code)
	assert.Equal(t, "slashgw version "+version+"\n", stdout)

	code, stdout, _ = captureRun(t, "version", "--json")
	require.Equal(t, 0, code)
	var out map[string]string
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	assert.Equal(t, version, out["version"])
	assert.Equal(t, "slashgw", out["name"])
}

func TestRunCommands(t *testing.T) {
	code, stdout, _ := captureRun(t, "commands")
	require.Equal(t, 0, code)
	assert.Equal(t, "dice\necho\n", stdout)
}

func TestRunKeyGenerate_Seeded(t *testing.T) {
	code, stdout, stderr := captureRun(t, "key", "generate", "--seed", testSeed, "--json")
	require.Equal(t, 0, code, stderr)

	var pair keyPair
	require.NoError(t, json.Unmarshal([]byte(stdout), &pair))
	assert.Equal(t, testPublicKeyHex(), pair.PublicKey)
	assert.Equal(t, hex.EncodeToString([]byte(testSeed)), pair.PrivateKey)

	_, err := signature.ParseTrustedKey(pair.PublicKey)
	assert.NoError(t, err)
}

func TestRunKeyGenerate_Random(t *testing.T) {
	code, stdout, _ := captureRun(t, "key", "generate")
	require.Equal(t, 0, code)

	assert.Regexp(t, regexp.MustCompile(`public_key:  [0-9a-f]{64}\n`), stdout)
	assert.Regexp(t, regexp.MustCompile(`private_key: [0-9a-f]{64}\n`), stdout)
}

func TestRunKeyGenerate_BadSeed(t *testing.T) {
	code, _, stderr := captureRun(t, "key", "generate", "--seed", "short")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "--seed must be exactly 32 bytes")
}

func TestRunSign_VerifiesAgainstPublicKey(t *testing.T) {
	body := `{"type":1}`
	seedHex := hex.EncodeToString([]byte(testSeed))

	code, stdout, stderr := captureRun(t, "sign", "--private-key", seedHex, "--timestamp", "1700000000", "--body", body)
	require.Equal(t, 0, code, stderr)

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 2)
	require.True(t, strings.HasPrefix(lines[0], signature.DefaultSignatureHeader+": "))
	assert.Equal(t, signature.DefaultTimestampHeader+": 1700000000", lines[1])

	sig := strings.TrimPrefix(lines[0], signature.DefaultSignatureHeader+": ")
	key, err := signature.ParseTrustedKey(testPublicKeyHex())
	require.NoError(t, err)
	assert.True(t, signature.Verify(key, []byte(body), "1700000000", sig))
}

func TestRunSign_BodyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "body.json")
	body := `{"type":2,"data":{"name":"dice"}}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	priv := ed25519.NewKeyFromSeed([]byte(testSeed))
	code, stdout, _ := captureRun(t, "sign", "--private-key", hex.EncodeToString(priv), "--timestamp", "42", "--body-file", path)
	require.Equal(t, 0, code)

	want := hex.EncodeToString(ed25519.Sign(priv, []byte("42"+body)))
	assert.Contains(t, stdout, want)
}

func TestRunSign_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing key", []string{"sign", "--body", "x"}, "--private-key is required"},
		{"bad hex", []string{"sign", "--private-key", "zz"}, "not valid hex"},
		{"bad length", []string{"sign", "--private-key", "abcd"}, "must be 32 or 64 bytes"},
		{"both bodies", []string{"sign", "--private-key", hex.EncodeToString([]byte(testSeed)), "--body", "x", "--body-file", "y"}, "mutually exclusive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, stderr := captureRun(t, tt.args...)
			assert.Equal(t, 1, code)
			assert.Contains(t, stderr, tt.want)
		})
	}
}

func TestRunConfigCheck_Valid(t *testing.T) {
	t.Setenv("SLASHGW_TEST_KEY", testPublicKeyHex())
	path := writeConfig(t, t.TempDir(), `
interactions:
  public_key: ${SLASHGW_TEST_KEY}
server:
  listen: 127.0.0.1:9999
`)

	code, stdout, stderr := captureRun(t, "config", "check", "--config", path)
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "Configuration OK")
	assert.Contains(t, stdout, "127.0.0.1:9999")

	key, err := signature.ParseTrustedKey(testPublicKeyHex())
	require.NoError(t, err)
	assert.Contains(t, stdout, key.String())
	assert.NotContains(t, stdout, testPublicKeyHex())
}

func TestRunConfigCheck_JSON(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "interactions:\n  public_key: "+testPublicKeyHex()+"\n")

	code, stdout, _ := captureRun(t, "config", "check", "--config", path, "--json")
	require.Equal(t, 0, code)

	var result configCheckResult
	require.NoError(t, json.Unmarshal([]byte(stdout), &result))
	assert.True(t, result.Valid)
	assert.Len(t, result.Files, 1)
	assert.Len(t, result.KeyFingerprint, 16)
}

func TestRunConfigCheck_MissingKey(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "interactions:\n  public_key: ${SLASHGW_UNSET_FOR_TEST}\n")

	code, _, stderr := captureRun(t, "config", "check", "--config", path)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "Configuration INVALID")
	assert.Contains(t, stderr, "SLASHGW_UNSET_FOR_TEST")
}

func TestRunConfigLock_ThenTamper(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "interactions:\n  public_key: "+testPublicKeyHex()+"\n")

	code, stdout, stderr := captureRun(t, "config", "lock", "--config", path)
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "WROTE "+filepath.Join(dir, config.ChecksumsFile))
	assert.Contains(t, stdout, "Locked 1 file(s)")

	code, _, _ = captureRun(t, "config", "check", "--config", path)
	require.Equal(t, 0, code)

	require.NoError(t, os.WriteFile(path, []byte("interactions:\n  public_key: "+testPublicKeyHex()+"\nservice:\n  log_level: debug\n"), 0o600))

	code, _, stderr = captureRun(t, "config", "check", "--config", path)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "hash mismatch")
}

func TestRunServe_FailsWithoutKey(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "interactions:\n  public_key: \"\"\n")

	code, _, stderr := captureRun(t, "serve", "--config", path)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "interactions.public_key is required")
}
