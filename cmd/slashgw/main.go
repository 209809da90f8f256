package main

import (
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"syscall"
	"time"

	"github.com/mattjoyce/slashgw/internal/command"
	"github.com/mattjoyce/slashgw/internal/config"
	"github.com/mattjoyce/slashgw/internal/dispatch"
	"github.com/mattjoyce/slashgw/internal/events"
	"github.com/mattjoyce/slashgw/internal/log"
	"github.com/mattjoyce/slashgw/internal/metrics"
	"github.com/mattjoyce/slashgw/internal/signature"
	"github.com/mattjoyce/slashgw/internal/webhook"
)

const version = "0.1.0"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) < 1 {
		printUsage()
		return 1
	}

	cmd := args[0]
	rest := args[1:]

	switch cmd {
	// --- NOUNS ---
	case "config":
		return runConfigNoun(rest)
	case "key":
		return runKeyNoun(rest)

	// --- VERBS ---
	case "serve":
		if hasHelpFlag(rest) {
			printServeHelp()
			return 0
		}
		return runServe(rest)
	case "sign":
		if hasHelpFlag(rest) {
			printSignHelp()
			return 0
		}
		return runSign(rest)
	case "commands":
		return runCommands()
	case "version":
		return runVersion(rest)
	case "help", "--help", "-h":
		printUsage()
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		return 1
	}
}

func printUsage() {
	fmt.Print(`slashgw - Signed slash-command interactions endpoint

Usage:
  slashgw <command> [flags]
  slashgw <noun> <action> [flags]

Commands:
  serve             Start the interactions server in foreground
  sign              Sign a body the way the platform does (local testing)
  commands          List registered slash commands
  version           Show version information
  help              Show this help message

Config Commands:
  config check      Validate configuration and show the trusted key fingerprint
  config lock       Authorize current state (update integrity hashes)

Key Commands:
  key generate      Generate an Ed25519 key pair (local testing)

Use 'slashgw <command> --help' for command-specific flags.
`)
}

// --- NOUN DISPATCHERS ---

func runConfigNoun(args []string) int {
	if len(args) < 1 {
		printConfigNounHelp(os.Stderr)
		return 1
	}
	if isHelpToken(args[0]) {
		printConfigNounHelp(os.Stdout)
		return 0
	}

	action := args[0]
	actionArgs := args[1:]

	switch action {
	case "check":
		if hasHelpFlag(actionArgs) {
			printConfigCheckHelp()
			return 0
		}
		return runConfigCheck(actionArgs)
	case "lock":
		if hasHelpFlag(actionArgs) {
			printConfigLockHelp()
			return 0
		}
		return runConfigLock(actionArgs)
	default:
		fmt.Fprintf(os.Stderr, "Unknown config action: %s\n", action)
		return 1
	}
}

func runKeyNoun(args []string) int {
	if len(args) < 1 {
		printKeyNounHelp(os.Stderr)
		return 1
	}
	if isHelpToken(args[0]) {
		printKeyNounHelp(os.Stdout)
		return 0
	}

	action := args[0]
	actionArgs := args[1:]

	switch action {
	case "generate":
		if hasHelpFlag(actionArgs) {
			printKeyGenerateHelp()
			return 0
		}
		return runKeyGenerate(actionArgs)
	default:
		fmt.Fprintf(os.Stderr, "Unknown key action: %s\n", action)
		return 1
	}
}

func isHelpToken(token string) bool {
	return token == "help" || token == "--help" || token == "-h"
}

func hasHelpFlag(args []string) bool {
	for _, arg := range args {
		if arg == "--help" || arg == "-h" {
			return true
		}
	}
	return false
}

func printConfigNounHelp(w *os.File) {
	fmt.Fprintln(w, "Usage: slashgw config <action> [flags]")
	fmt.Fprintln(w, "Actions: check, lock")
}

func printKeyNounHelp(w *os.File) {
	fmt.Fprintln(w, "Usage: slashgw key <action> [flags]")
	fmt.Fprintln(w, "Actions: generate")
}

func printServeHelp() {
	fmt.Println("Usage: slashgw serve [--config PATH]")
	fmt.Println("Start the interactions server in the foreground.")
}

func printSignHelp() {
	fmt.Println("Usage: slashgw sign --private-key HEX [--timestamp TS] [--body STR | --body-file PATH]")
	fmt.Println("Print signature and timestamp headers for a body.")
}

func printConfigCheckHelp() {
	fmt.Println("Usage: slashgw config check [--config PATH] [--json]")
	fmt.Println("Validate configuration syntax, integrity, and the trusted public key.")
}

func printConfigLockHelp() {
	fmt.Println("Usage: slashgw config lock [--config PATH]")
	fmt.Println("Authorize current configuration state by regenerating .checksums.")
}

func printKeyGenerateHelp() {
	fmt.Println("Usage: slashgw key generate [--seed TEXT] [--json]")
	fmt.Println("Generate an Ed25519 key pair. --seed must be exactly 32 bytes.")
}

// resolveConfigPath returns the --config value or a discovered file. An
// empty result means run on defaults and environment alone.
func resolveConfigPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return config.DiscoverConfigPath()
}

// --- ACTIONS ---

func runServe(args []string) int {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	configFlag := fs.String("config", "", "Path to configuration file or directory")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to parse flags: %v\n", err)
		return 1
	}

	configPath := resolveConfigPath(*configFlag)
	if *configFlag == "" && configPath != "" {
		fmt.Fprintf(os.Stderr, "Using discovered config: %s\n", configPath)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}

	log.Setup(cfg.Service.LogLevel)
	logger := log.WithComponent("main")

	key, err := cfg.TrustedKey()
	if err != nil {
		logger.Error("invalid trusted public key", "error", err)
		return 1
	}
	logger.Info("slashgw starting", "version", version, "config", configPath, "key", key.String())

	serverConfig, err := webhook.FromGlobalConfig(cfg)
	if err != nil {
		logger.Error("failed to configure server", "error", err)
		return 1
	}

	registry := command.Default()
	hub := events.NewHub(cfg.Events.Buffer)
	dispatchOpts := []dispatch.Option{dispatch.WithPublisher(hub)}
	serverOpts := []webhook.Option{webhook.WithEvents(hub)}

	if cfg.Metrics.Enabled {
		collector := metrics.New(cfg.Metrics.Runtime)
		dispatchOpts = append(dispatchOpts, dispatch.WithRecorder(collector))
		serverOpts = append(serverOpts, webhook.WithMetrics(cfg.Metrics.Path, collector.Handler()))
		logger.Info("metrics enabled", "path", cfg.Metrics.Path)
	}

	disp := dispatch.New(
		signature.NewAuthenticator(key, cfg.Freshness()),
		registry,
		dispatchOpts...,
	)
	server := webhook.New(serverConfig, disp, log.WithComponent("webhook"), serverOpts...)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("slashgw running (press Ctrl+C to stop)", "commands", registry.Names())

	if err := server.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("server failed", "error", err)
		return 1
	}

	log.Info("slashgw stopped")
	return 0
}

type configCheckResult struct {
	Valid          bool     `json:"valid"`
	Files          []string `json:"files,omitempty"`
	KeyFingerprint string   `json:"key_fingerprint,omitempty"`
	Listen         string   `json:"listen,omitempty"`
	Path           string   `json:"path,omitempty"`
	Error          string   `json:"error,omitempty"`
}

func runConfigCheck(args []string) int {
	var configFlag string
	var jsonOut bool

	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	fs.StringVar(&configFlag, "config", "", "Path to configuration")
	fs.BoolVar(&jsonOut, "json", false, "Output in JSON")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return 1
	}

	configPath := resolveConfigPath(configFlag)
	result := checkConfig(configPath)

	if jsonOut {
		data, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(data))
	} else if result.Valid {
		fmt.Println("Configuration OK")
		for _, f := range result.Files {
			fmt.Printf("  file:   %s\n", f)
		}
		fmt.Printf("  key:    ed25519:%s\n", result.KeyFingerprint)
		fmt.Printf("  listen: %s\n", result.Listen)
		fmt.Printf("  path:   %s\n", result.Path)
	} else {
		fmt.Fprintf(os.Stderr, "Configuration INVALID: %s\n", result.Error)
	}

	if !result.Valid {
		return 1
	}
	return 0
}

func checkConfig(configPath string) configCheckResult {
	cfg, err := config.Load(configPath)
	if err != nil {
		return configCheckResult{Error: err.Error()}
	}

	var files []string
	if configPath != "" {
		files, err = config.ConfigFiles(configPath)
		if err != nil {
			return configCheckResult{Error: err.Error()}
		}
	}

	// Load already validated the key.
	key, _ := cfg.TrustedKey()
	return configCheckResult{
		Valid:          true,
		Files:          files,
		KeyFingerprint: key.Fingerprint(),
		Listen:         cfg.Server.Listen,
		Path:           cfg.Server.Path,
	}
}

func runConfigLock(args []string) int {
	fs := flag.NewFlagSet("lock", flag.ContinueOnError)
	configFlag := fs.String("config", "", "Path to configuration")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return 1
	}

	configPath := resolveConfigPath(*configFlag)
	if configPath == "" {
		fmt.Fprintln(os.Stderr, "No configuration file found. Use --config PATH.")
		return 1
	}

	report, err := config.Lock(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Lock failed: %v\n", err)
		return 1
	}

	for _, m := range report.Manifests {
		fmt.Printf("WROTE %s\n", m)
	}
	fmt.Printf("Locked %d file(s)\n", len(report.Files))
	return 0
}

type keyPair struct {
	PublicKey  string `json:"public_key"`
	PrivateKey string `json:"private_key"`
}

func runKeyGenerate(args []string) int {
	var seed string
	var jsonOut bool

	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	fs.StringVar(&seed, "seed", "", "Deterministic 32-byte seed")
	fs.BoolVar(&jsonOut, "json", false, "Output in JSON")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return 1
	}

	var priv ed25519.PrivateKey
	if seed != "" {
		if len(seed) != ed25519.SeedSize {
			fmt.Fprintf(os.Stderr, "--seed must be exactly %d bytes (got %d)\n", ed25519.SeedSize, len(seed))
			return 1
		}
		priv = ed25519.NewKeyFromSeed([]byte(seed))
	} else {
		var err error
		_, priv, err = ed25519.GenerateKey(nil)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Key generation failed: %v\n", err)
			return 1
		}
	}

	pair := keyPair{
		PublicKey:  hex.EncodeToString(priv.Public().(ed25519.PublicKey)),
		PrivateKey: hex.EncodeToString(priv.Seed()),
	}

	if jsonOut {
		data, _ := json.MarshalIndent(pair, "", "  ")
		fmt.Println(string(data))
		return 0
	}
	fmt.Printf("public_key:  %s\n", pair.PublicKey)
	fmt.Printf("private_key: %s\n", pair.PrivateKey)
	return 0
}

func runSign(args []string) int {
	var privHex, timestamp, body, bodyFile string
	var sigHeader, tsHeader string

	fs := flag.NewFlagSet("sign", flag.ContinueOnError)
	fs.StringVar(&privHex, "private-key", "", "Hex Ed25519 seed (32 bytes) or private key (64 bytes)")
	fs.StringVar(&timestamp, "timestamp", "", "Timestamp to sign (default: now, Unix seconds)")
	fs.StringVar(&body, "body", "", "Request body")
	fs.StringVar(&bodyFile, "body-file", "", "Read request body from file")
	fs.StringVar(&sigHeader, "signature-header", signature.DefaultSignatureHeader, "Signature header name")
	fs.StringVar(&tsHeader, "timestamp-header", signature.DefaultTimestampHeader, "Timestamp header name")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return 1
	}

	priv, err := parsePrivateKey(privHex)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	if body != "" && bodyFile != "" {
		fmt.Fprintln(os.Stderr, "Error: --body and --body-file are mutually exclusive")
		return 1
	}
	if bodyFile != "" {
		data, err := os.ReadFile(bodyFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		body = string(data)
	}

	if timestamp == "" {
		timestamp = strconv.FormatInt(time.Now().Unix(), 10)
	}

	sig := ed25519.Sign(priv, []byte(timestamp+body))
	fmt.Printf("%s: %s\n", sigHeader, hex.EncodeToString(sig))
	fmt.Printf("%s: %s\n", tsHeader, timestamp)
	return 0
}

func parsePrivateKey(s string) (ed25519.PrivateKey, error) {
	if s == "" {
		return nil, fmt.Errorf("--private-key is required")
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("--private-key is not valid hex: %w", err)
	}
	switch len(raw) {
	case ed25519.SeedSize:
		return ed25519.NewKeyFromSeed(raw), nil
	case ed25519.PrivateKeySize:
		return ed25519.PrivateKey(raw), nil
	default:
		return nil, fmt.Errorf("--private-key must be %d or %d bytes (got %d)", ed25519.SeedSize, ed25519.PrivateKeySize, len(raw))
	}
}

func runCommands() int {
	for _, name := range command.Default().Names() {
		fmt.Println(name)
	}
	return 0
}

func runVersion(args []string) int {
	fs := flag.NewFlagSet("version", flag.ContinueOnError)
	jsonOut := fs.Bool("json", false, "Output in JSON")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return 1
	}

	if *jsonOut {
		data, _ := json.MarshalIndent(map[string]string{
			"name":    "slashgw",
			"version": version,
			"go":      runtime.Version(),
		}, "", "  ")
		fmt.Println(string(data))
		return 0
	}
	fmt.Printf("slashgw version %s\n", version)
	return 0
}
