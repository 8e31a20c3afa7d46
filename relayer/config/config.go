package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"time"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/spf13/viper"

	"github.com/motus-labs/motus-name-service/utils/env"
)

const (
	configSubdir   = "config"
	configFileName = "relayer_config.json"

	// EnvPrefix prefixes every environment override, e.g. MOTUS_LOG_LEVEL.
	EnvPrefix = "MOTUS"

	defaultHomeDir = ".motusrelay"
)

//go:embed default_config.json
var defaultConfigJSON []byte

func validateConfig(cfg *Config) error {
	// Validate log level
	if cfg.LogLevel < 0 || cfg.LogLevel > 5 {
		return fmt.Errorf("log level must be between 0 and 5")
	}

	// Validate log format
	if cfg.LogFormat != "json" && cfg.LogFormat != "console" {
		return fmt.Errorf("log format must be 'json' or 'console'")
	}

	if cfg.Backend == "" {
		cfg.Backend = BackendLocal
	}
	switch cfg.Backend {
	case BackendLocal:
	case BackendEVM:
		if !ethcommon.IsHexAddress(cfg.ContractAddress) {
			return fmt.Errorf("contract_address must be a hex address for the evm backend")
		}
		if cfg.ChainID <= 0 {
			return fmt.Errorf("chain_id must be positive for the evm backend")
		}
		if len(cfg.RPCURLs) == 0 {
			return fmt.Errorf("at least one rpc url is required for the evm backend")
		}
	default:
		return fmt.Errorf("backend must be 'evm' or 'local'")
	}

	if cfg.Authority != "" && !ethcommon.IsHexAddress(cfg.Authority) {
		return fmt.Errorf("authority must be a hex address")
	}

	if cfg.MinSignerBalance == "" {
		cfg.MinSignerBalance = "0"
	}
	if v, ok := new(big.Int).SetString(cfg.MinSignerBalance, 10); !ok || v.Sign() < 0 {
		return fmt.Errorf("min_signer_balance must be a non-negative integer")
	}

	if cfg.DBFile == "" {
		cfg.DBFile = "relayer.db"
	}
	if cfg.ListenPort == 0 {
		cfg.ListenPort = 8546
	}

	// Set defaults for submission
	if cfg.ConfirmTimeoutSeconds == 0 {
		cfg.ConfirmTimeoutSeconds = 60
	}
	if cfg.ReceiptPollIntervalMillis == 0 {
		cfg.ReceiptPollIntervalMillis = 1000
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryBackoffSeconds == 0 {
		cfg.RetryBackoffSeconds = 1
	}
	if cfg.ReplayCacheSize == 0 {
		cfg.ReplayCacheSize = 10000
	}
	if cfg.ReconcileIntervalSeconds == 0 {
		cfg.ReconcileIntervalSeconds = 30
	}

	// Set defaults for request cleanup
	if cfg.CleanupIntervalSeconds == 0 {
		cfg.CleanupIntervalSeconds = 3600
	}
	if cfg.RetentionPeriodSeconds == 0 {
		cfg.RetentionPeriodSeconds = 7 * 24 * 3600
	}

	return nil
}

// Validate checks cfg and fills unset fields with defaults.
func Validate(cfg *Config) error {
	return validateConfig(cfg)
}

// DefaultNodeHome returns ~/.motusrelay, or the working directory when the
// home directory cannot be resolved.
func DefaultNodeHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return defaultHomeDir
	}
	return filepath.Join(home, defaultHomeDir)
}

// Save writes the given config to <basePath>/config/relayer_config.json.
func Save(cfg *Config, basePath string) error {
	if err := validateConfig(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	configDir := filepath.Join(basePath, configSubdir)
	if err := os.MkdirAll(configDir, 0o750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	configFile := filepath.Join(configDir, configFileName)
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configFile, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Load reads <basePath>/config/relayer_config.json, applies MOTUS_* environment
// overrides and validates the result.
func Load(basePath string) (Config, error) {
	configFile := filepath.Join(basePath, configSubdir, configFileName)
	data, err := os.ReadFile(filepath.Clean(configFile))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if cfg.NodeHome == "" {
		cfg.NodeHome = basePath
	}

	applyEnvOverrides(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// applyEnvOverrides replaces fields whose MOTUS_<JSON_KEY> variable is set.
// List values are space separated.
func applyEnvOverrides(cfg *Config) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if v.IsSet("log_level") {
		cfg.LogLevel = v.GetInt("log_level")
	}
	if v.IsSet("log_format") {
		cfg.LogFormat = v.GetString("log_format")
	}
	if v.IsSet("listen_port") {
		cfg.ListenPort = v.GetInt("listen_port")
	}
	if v.IsSet("backend") {
		cfg.Backend = Backend(v.GetString("backend"))
	}
	if v.IsSet("contract_address") {
		cfg.ContractAddress = v.GetString("contract_address")
	}
	if v.IsSet("chain_id") {
		cfg.ChainID = v.GetInt64("chain_id")
	}
	if v.IsSet("rpc_urls") {
		cfg.RPCURLs = v.GetStringSlice("rpc_urls")
	}
	if v.IsSet("signer_keys") {
		cfg.SignerKeys = v.GetStringSlice("signer_keys")
	}
	if v.IsSet("keystore_password") {
		cfg.KeystorePassword = v.GetString("keystore_password")
	}
	if v.IsSet("ledger_dir") {
		cfg.LedgerDir = v.GetString("ledger_dir")
	}
	if v.IsSet("min_signer_balance") {
		cfg.MinSignerBalance = v.GetString("min_signer_balance")
	}

	// a per-chain RPC override takes precedence over the configured list
	if cfg.ChainID > 0 {
		if url, ok := env.GetRPCOverride(cfg.ChainID); ok {
			cfg.RPCURLs = append([]string{url}, cfg.RPCURLs...)
		}
	}
}

// LoadDefaultConfig loads the default configuration from embedded JSON
func LoadDefaultConfig() (*Config, error) {
	var cfg Config
	if err := json.Unmarshal(defaultConfigJSON, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal default config: %w", err)
	}
	return &cfg, nil
}

// ConfirmTimeout is how long a submission is awaited before it is reported pending.
func (c *Config) ConfirmTimeout() time.Duration {
	return time.Duration(c.ConfirmTimeoutSeconds) * time.Second
}

// ReceiptPollInterval is the delay between receipt lookups.
func (c *Config) ReceiptPollInterval() time.Duration {
	return time.Duration(c.ReceiptPollIntervalMillis) * time.Millisecond
}

// RetryBackoff is the base delay between retries of a retryable failure.
func (c *Config) RetryBackoff() time.Duration {
	return time.Duration(c.RetryBackoffSeconds) * time.Second
}

// MinBalance parses MinSignerBalance. Call after validation.
func (c *Config) MinBalance() *big.Int {
	v, ok := new(big.Int).SetString(strings.TrimSpace(c.MinSignerBalance), 10)
	if !ok {
		return new(big.Int)
	}
	return v
}

// DBDir is the directory holding the relayer's SQLite database.
func (c *Config) DBDir() string {
	return filepath.Join(c.NodeHome, "data")
}
