package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	sdkversion "github.com/cosmos/cosmos-sdk/version"
	"github.com/spf13/cobra"

	"github.com/motus-labs/motus-name-service/relayer/api"
	"github.com/motus-labs/motus-name-service/relayer/config"
	"github.com/motus-labs/motus-name-service/relayer/core"
	"github.com/motus-labs/motus-name-service/relayer/db"
	"github.com/motus-labs/motus-name-service/relayer/keys"
	"github.com/motus-labs/motus-name-service/relayer/logger"
	"github.com/motus-labs/motus-name-service/relayer/metrics"
	nstypes "github.com/motus-labs/motus-name-service/x/nameservice/types"
)

func InitRootCmd(rootCmd *cobra.Command) {
	rootCmd.AddCommand(initCmd())
	rootCmd.AddCommand(startCmd())
	rootCmd.AddCommand(intentCmd())
	rootCmd.AddCommand(versionCmd())
}

func initCmd() *cobra.Command {
	var overwrite bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default relayer config to the home directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			home, _ := cmd.Flags().GetString(flagHome)

			if _, err := config.Load(home); err == nil && !overwrite {
				return fmt.Errorf("config already exists in %s (use --overwrite)", home)
			}

			cfg, err := config.LoadDefaultConfig()
			if err != nil {
				return err
			}
			cfg.NodeHome = home
			if err := config.Save(cfg, home); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote config to %s\n", home)
			return nil
		},
	}
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "replace an existing config")
	return cmd
}

func startCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the relay API",
		RunE: func(cmd *cobra.Command, args []string) error {
			home, _ := cmd.Flags().GetString(flagHome)
			cfg, err := config.Load(home)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return run(ctx, cfg)
		},
	}
}

// run starts every relayer component and blocks until ctx is cancelled.
func run(ctx context.Context, cfg config.Config) error {
	log := logger.Init(cfg)
	log.Info().Str("backend", string(cfg.Backend)).Str("home", cfg.NodeHome).Msg("starting relayer")

	database, err := db.Open(cfg.DBDir(), cfg.DBFile)
	if err != nil {
		return err
	}
	defer database.Close()

	signerKeys, err := keys.LoadKeys(cfg.SignerKeys, cfg.KeystoreDir, cfg.KeystorePassword)
	if err != nil {
		return err
	}
	pool, err := keys.NewPool(signerKeys)
	if err != nil {
		return err
	}
	for _, addr := range pool.Addresses() {
		log.Info().Str("signer", addr.Hex()).Msg("loaded relayer signer")
	}

	submitter, err := newSubmitter(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer submitter.Close()

	registryABI, err := nstypes.ParseRegistryABI()
	if err != nil {
		return err
	}

	m := metrics.New()
	svc, err := core.NewService(core.OptionsFromConfig(&cfg), submitter, pool, database, registryABI, m, log)
	if err != nil {
		return err
	}
	svc.Start(ctx)
	defer svc.Stop()

	cleaner := db.NewRequestCleaner(database,
		time.Duration(cfg.CleanupIntervalSeconds)*time.Second,
		time.Duration(cfg.RetentionPeriodSeconds)*time.Second,
		log)
	cleaner.Start(ctx)
	defer cleaner.Stop()

	server := api.NewServer(log, cfg.ListenPort, svc, m)
	if err := server.Start(); err != nil {
		return err
	}

	<-ctx.Done()
	log.Info().Msg("shutting down relayer")
	return server.Stop(10 * time.Second)
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print motusrelayd version info",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Name:       %s\n", sdkversion.Name)
			fmt.Fprintf(out, "App Name:   %s\n", sdkversion.AppName)
			fmt.Fprintf(out, "Version:    %s\n", sdkversion.Version)
			fmt.Fprintf(out, "Commit:     %s\n", sdkversion.Commit)
			fmt.Fprintf(out, "Build Tags: %s\n", sdkversion.BuildTags)
		},
	}
}
