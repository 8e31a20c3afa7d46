// Package env provides utilities for loading environment variables from .env files
package env

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/joho/godotenv"
)

// maxParentDirs bounds how far up LoadEnv searches for a .env file.
const maxParentDirs = 5

var loadOnce sync.Once

// LoadEnv loads environment variables from the nearest .env file, searching
// the current directory and up to five parents. It only loads once; a
// missing file is not an error. Variables already set are never overwritten.
func LoadEnv() error {
	var err error
	loadOnce.Do(func() {
		err = loadNearest()
	})
	return err
}

func loadNearest() error {
	dir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("could not get current directory: %w", err)
	}

	for i := 0; i <= maxParentDirs; i++ {
		envPath := filepath.Join(dir, ".env")
		if _, statErr := os.Stat(envPath); statErr == nil {
			return LoadEnvWithPath(envPath)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// We've reached the root directory
			break
		}
		dir = parent
	}
	return nil
}

// LoadEnvWithPath loads environment variables from a specific .env file path
func LoadEnvWithPath(filePath string) error {
	if err := godotenv.Load(filePath); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", filePath, err)
	}
	return nil
}

// GetRPCOverride returns the RPC URL set in MOTUS_RPC_URL_<chainID>, if any.
func GetRPCOverride(chainID int64) (string, bool) {
	url := os.Getenv(rpcOverrideKey(chainID))
	return url, url != ""
}

// SetRPCOverride sets the RPC URL override for a chain.
// This is useful for tests that need to set environment variables dynamically
func SetRPCOverride(chainID int64, rpcURL string) error {
	return os.Setenv(rpcOverrideKey(chainID), rpcURL)
}

func rpcOverrideKey(chainID int64) string {
	return fmt.Sprintf("MOTUS_RPC_URL_%d", chainID)
}
