package config

// Backend selects where the relayer submits transactions.
type Backend string

const (
	// BackendEVM submits signed transactions to an EVM JSON-RPC endpoint.
	BackendEVM Backend = "evm"

	// BackendLocal submits to an in-process devnet ledger.
	BackendLocal Backend = "local"
)

type Config struct {
	// Log Config
	LogLevel   int    `json:"log_level"`   // e.g., 0 = debug, 1 = info, etc.
	LogFormat  string `json:"log_format"`  // "json" or "console"
	LogSampler bool   `json:"log_sampler"` // if true, samples logs (e.g., 1 in 5)

	// Node Config
	NodeHome string `json:"node_home"` // Relayer home directory (default: ~/.motusrelay)
	DBFile   string `json:"db_file"`   // SQLite file under <node_home>/data (default: relayer.db)

	// HTTP Server Config
	ListenPort int `json:"listen_port"` // Port for the relay API (default: 8546)

	// Target registry
	Backend         Backend  `json:"backend"`          // "evm" or "local"
	ContractAddress string   `json:"contract_address"` // Registry address; the local backend uses its own
	ChainID         int64    `json:"chain_id"`         // EIP-155 chain ID (evm backend)
	RPCURLs         []string `json:"rpc_urls"`         // JSON-RPC endpoints, tried round-robin
	GasLimit        uint64   `json:"gas_limit"`        // 0 estimates per call

	// Local ledger backend
	LedgerDir   string `json:"ledger_dir"`   // goleveldb directory; empty keeps the ledger in memory
	GenesisFile string `json:"genesis_file"` // applied once on an empty ledger
	Authority   string `json:"authority"`    // admin address of the devnet registry

	// Signers
	SignerKeys       []string `json:"signer_keys"`        // hex secp256k1 keys
	KeystoreDir      string   `json:"keystore_dir"`       // geth keystore files, decrypted with KeystorePassword
	KeystorePassword string   `json:"keystore_password"`  //
	MinSignerBalance string   `json:"min_signer_balance"` // in wei; signers below it are skipped

	// Submission
	ConfirmTimeoutSeconds     int `json:"confirm_timeout_seconds"`      // After this a submitted request is reported pending (default: 60)
	ReceiptPollIntervalMillis int `json:"receipt_poll_interval_millis"` // (default: 1000)
	MaxRetries                int `json:"max_retries"`                  // Retries of retryable RPC failures (default: 3)
	RetryBackoffSeconds       int `json:"retry_backoff_seconds"`        // (default: 1)
	ReplayCacheSize           int `json:"replay_cache_size"`            // LRU entries for seen relay nonces (default: 10000)
	ReconcileIntervalSeconds  int `json:"reconcile_interval_seconds"`   // How often pending requests are re-checked (default: 30)

	// Request cleanup
	CleanupIntervalSeconds int `json:"cleanup_interval_seconds"` // (default: 3600)
	RetentionPeriodSeconds int `json:"retention_period_seconds"` // How long finished requests are kept (default: 604800)
}
