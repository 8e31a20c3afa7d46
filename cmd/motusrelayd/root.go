package main

import (
	"github.com/spf13/cobra"

	"github.com/motus-labs/motus-name-service/relayer/config"
)

const flagHome = "home"

func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "motusrelayd",
		Short:         "Motus name service gasless relayer",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().String(flagHome, config.DefaultNodeHome(), "relayer home directory")

	InitRootCmd(rootCmd) // add subcommands like `start` and `version`

	return rootCmd
}
