package core

import (
	"encoding/json"
	"math/big"
	"time"

	"github.com/motus-labs/motus-name-service/relayer/config"
)

// SubmitRequest is a user's signed intent to have one registry call relayed.
type SubmitRequest struct {
	UserAddress     string            `json:"userAddress"`
	ContractAddress string            `json:"contractAddress"`
	FunctionName    string            `json:"functionName"`
	Args            []json.RawMessage `json:"args"`
	Signature       string            `json:"signature"`
	Nonce           uint64            `json:"nonce"`
}

// Result is where a request ended up. TxHash is set once it was submitted.
type Result struct {
	RequestID string `json:"requestId"`
	Status    string `json:"status"`
	TxHash    string `json:"txHash,omitempty"`
}

// Options tune the relay pipeline.
type Options struct {
	ConfirmTimeout    time.Duration
	PollInterval      time.Duration
	MinSignerBalance  *big.Int
	MaxRetries        int
	RetryBackoff      time.Duration
	ReplayCacheSize   int
	ReconcileInterval time.Duration
}

// OptionsFromConfig derives Options from the relayer configuration.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		ConfirmTimeout:    cfg.ConfirmTimeout(),
		PollInterval:      cfg.ReceiptPollInterval(),
		MinSignerBalance:  cfg.MinBalance(),
		MaxRetries:        cfg.MaxRetries,
		RetryBackoff:      cfg.RetryBackoff(),
		ReplayCacheSize:   cfg.ReplayCacheSize,
		ReconcileInterval: time.Duration(cfg.ReconcileIntervalSeconds) * time.Second,
	}
}

func (o Options) withDefaults() Options {
	if o.ConfirmTimeout <= 0 {
		o.ConfirmTimeout = 60 * time.Second
	}
	if o.PollInterval <= 0 {
		o.PollInterval = time.Second
	}
	if o.MinSignerBalance == nil {
		o.MinSignerBalance = new(big.Int)
	}
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	}
	if o.RetryBackoff <= 0 {
		o.RetryBackoff = time.Second
	}
	if o.ReplayCacheSize <= 0 {
		o.ReplayCacheSize = 10000
	}
	if o.ReconcileInterval <= 0 {
		o.ReconcileInterval = 30 * time.Second
	}
	return o
}
