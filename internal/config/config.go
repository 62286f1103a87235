package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application level configuration loaded from environment and flags.
type Config struct {
	RunAddress        string
	TelegramBotToken  string
	TelegramGroupID   int64
	AuthorizedUsers   []int64
	RequiredApprovals int
	RPCURL            string
	ChainID           int64
	WalletPrivateKey  string
	SafeAddress       string
	SafeAPIKey        string
	AlchemySigningKey string
	SafePollInterval  time.Duration
	RetentionWindow   time.Duration
	PruneInterval     time.Duration
	ShutdownTimeout   time.Duration
}

const (
	defaultRunAddress        = ":3000"
	defaultChainID           = 1
	defaultRequiredApprovals = 2
	defaultSafePollInterval  = 30 * time.Second
	defaultRetentionWindow   = 24 * time.Hour
	defaultPruneInterval     = time.Hour
	defaultShutdownTimeout   = 10 * time.Second
)

// Load parses configuration from flags and environment variables.
func Load() (*Config, error) {
	return load(os.Args[1:], os.LookupEnv)
}

type envLookup func(string) (string, bool)

func load(args []string, lookup envLookup) (*Config, error) {
	cfg := &Config{
		RunAddress:        getString(lookup, "RUN_ADDRESS", defaultRunAddress),
		TelegramBotToken:  getString(lookup, "TELEGRAM_BOT_TOKEN", ""),
		TelegramGroupID:   getInt64(lookup, "TELEGRAM_GROUP_ID", 0),
		RequiredApprovals: getInt(lookup, "REQUIRED_APPROVALS", defaultRequiredApprovals),
		RPCURL:            getString(lookup, "RPC_URL", ""),
		ChainID:           getInt64(lookup, "CHAIN_ID", defaultChainID),
		WalletPrivateKey:  getString(lookup, "WALLET_PRIVATE_KEY", ""),
		SafeAddress:       getString(lookup, "SAFE_ADDRESS", ""),
		SafeAPIKey:        getString(lookup, "SAFE_API_KEY", ""),
		AlchemySigningKey: getString(lookup, "ALCHEMY_SIGNING_KEY", ""),
		SafePollInterval:  getDuration(lookup, "SAFE_POLL_INTERVAL", defaultSafePollInterval),
		RetentionWindow:   getDuration(lookup, "RETENTION_WINDOW", defaultRetentionWindow),
		PruneInterval:     getDuration(lookup, "PRUNE_INTERVAL", defaultPruneInterval),
		ShutdownTimeout:   getDuration(lookup, "SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
	}

	operators := getString(lookup, "AUTHORIZED_OPERATORS", "")

	fs := flag.NewFlagSet("custodian", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		pollIntervalStr    = cfg.SafePollInterval.String()
		retentionStr       = cfg.RetentionWindow.String()
		shutdownTimeoutStr = cfg.ShutdownTimeout.String()
	)

	fs.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "HTTP server listen address")
	fs.StringVar(&cfg.RPCURL, "rpc", cfg.RPCURL, "Ethereum JSON-RPC endpoint")
	fs.Int64Var(&cfg.ChainID, "chain-id", cfg.ChainID, "EVM chain identifier")
	fs.StringVar(&operators, "operators", operators, "Comma-separated authorized Telegram user IDs")
	fs.IntVar(&cfg.RequiredApprovals, "required-approvals", cfg.RequiredApprovals, "Approvals needed before a withdrawal executes")
	fs.StringVar(&pollIntervalStr, "safe-poll-interval", pollIntervalStr, "Interval between Safe service polls")
	fs.StringVar(&retentionStr, "retention", retentionStr, "How long finished withdrawals are kept for audit")
	fs.StringVar(&shutdownTimeoutStr, "shutdown-timeout", shutdownTimeoutStr, "Graceful shutdown timeout")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	var err error

	if cfg.SafePollInterval, err = time.ParseDuration(pollIntervalStr); err != nil {
		return nil, fmt.Errorf("invalid safe poll interval: %w", err)
	}

	if cfg.RetentionWindow, err = time.ParseDuration(retentionStr); err != nil {
		return nil, fmt.Errorf("invalid retention window: %w", err)
	}

	if cfg.ShutdownTimeout, err = time.ParseDuration(shutdownTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}

	if cfg.AuthorizedUsers, err = parseOperators(operators); err != nil {
		return nil, err
	}

	if cfg.SafePollInterval <= 0 {
		cfg.SafePollInterval = defaultSafePollInterval
	}

	if cfg.RetentionWindow <= 0 {
		cfg.RetentionWindow = defaultRetentionWindow
	}

	if cfg.PruneInterval <= 0 {
		cfg.PruneInterval = defaultPruneInterval
	}

	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	if cfg.TelegramBotToken == "" {
		return nil, fmt.Errorf("telegram bot token must be provided")
	}

	if cfg.RPCURL == "" {
		return nil, fmt.Errorf("ethereum RPC URL must be provided")
	}

	if cfg.WalletPrivateKey == "" {
		return nil, fmt.Errorf("wallet private key must be provided")
	}

	if len(cfg.AuthorizedUsers) == 0 {
		return nil, fmt.Errorf("at least one authorized operator must be configured")
	}

	if cfg.RequiredApprovals < 1 {
		return nil, fmt.Errorf("required approvals must be at least 1")
	}

	// With fewer operators than required approvals every request would
	// deadlock waiting for a quorum that can never form.
	if cfg.RequiredApprovals > len(cfg.AuthorizedUsers) {
		return nil, fmt.Errorf("required approvals (%d) exceed authorized operators (%d)",
			cfg.RequiredApprovals, len(cfg.AuthorizedUsers))
	}

	return cfg, nil
}

func parseOperators(raw string) ([]int64, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	seen := make(map[int64]struct{}, len(parts))
	ids := make([]int64, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid operator id %q: %w", part, err)
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids, nil
}

func getString(lookup envLookup, key, def string) string {
	if v, ok := lookup(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(lookup envLookup, key string, def int) int {
	if v, ok := lookup(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getInt64(lookup envLookup, key string, def int64) int64 {
	if v, ok := lookup(key); ok && v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return def
}

func getDuration(lookup envLookup, key string, def time.Duration) time.Duration {
	if v, ok := lookup(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
