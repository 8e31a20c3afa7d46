package main

import (
	"context"
	"fmt"
	"path/filepath"

	cosmoslog "cosmossdk.io/log"
	dbm "github.com/cosmos/cosmos-db"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"

	"github.com/motus-labs/motus-name-service/app"
	"github.com/motus-labs/motus-name-service/relayer/chains"
	"github.com/motus-labs/motus-name-service/relayer/chains/evm"
	"github.com/motus-labs/motus-name-service/relayer/chains/local"
	"github.com/motus-labs/motus-name-service/relayer/config"
)

const ledgerDBName = "ledger"

// newSubmitter connects the configured backend.
func newSubmitter(ctx context.Context, cfg config.Config, log zerolog.Logger) (chains.Submitter, error) {
	switch cfg.Backend {
	case config.BackendEVM:
		rpc, err := evm.NewRPCClient(ctx, cfg.RPCURLs, cfg.ChainID, log)
		if err != nil {
			return nil, err
		}
		return evm.NewSubmitter(rpc, ethcommon.HexToAddress(cfg.ContractAddress), cfg.ChainID, cfg.GasLimit, log), nil

	case config.BackendLocal:
		ledger, err := openLedger(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		return local.NewSubmitter(ledger, log), nil

	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}

// openLedger opens the devnet ledger and applies genesis when it is empty.
func openLedger(ctx context.Context, cfg config.Config, log zerolog.Logger) (*app.App, error) {
	opts := []app.Option{}
	if cfg.LedgerDir != "" {
		dir := cfg.LedgerDir
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(cfg.NodeHome, dir)
		}
		db, err := dbm.NewDB(ledgerDBName, dbm.GoLevelDBBackend, dir)
		if err != nil {
			return nil, fmt.Errorf("failed to open ledger database: %w", err)
		}
		opts = append(opts, app.WithDB(db))
	}

	ledgerLog := cosmoslog.NewCustomLogger(log.With().Str("component", "ledger").Logger())
	ledger, err := app.New(ledgerLog, ethcommon.HexToAddress(cfg.Authority), opts...)
	if err != nil {
		return nil, err
	}

	if ledger.Height() > 0 {
		return ledger, nil
	}

	gs := app.DefaultGenesis()
	if cfg.GenesisFile != "" {
		gs, err = app.LoadGenesis(cfg.GenesisFile)
		if err != nil {
			_ = ledger.Close()
			return nil, fmt.Errorf("failed to load genesis: %w", err)
		}
	}
	if err := ledger.InitChain(ctx, gs); err != nil {
		_ = ledger.Close()
		return nil, err
	}
	log.Info().Int64("height", ledger.Height()).Msg("initialized devnet ledger")
	return ledger, nil
}
