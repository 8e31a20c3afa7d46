package main

import (
	"fmt"
	"os"

	"github.com/motus-labs/motus-name-service/utils/env"
)

func main() {
	// Load environment variables from .env file if available
	_ = env.LoadEnv()

	// Construct root command
	rootCmd := NewRootCmd()

	// Execute CLI
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(rootCmd.OutOrStderr(), err)
		os.Exit(1)
	}
}
