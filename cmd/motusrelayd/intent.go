package main

import (
	"bytes"
	"crypto/ecdsa"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"strings"
	"time"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/motus-labs/motus-name-service/app"
	"github.com/motus-labs/motus-name-service/relayer/core"
	"github.com/motus-labs/motus-name-service/relayer/intent"
	"github.com/motus-labs/motus-name-service/relayer/keys"
	nstypes "github.com/motus-labs/motus-name-service/x/nameservice/types"
	sttypes "github.com/motus-labs/motus-name-service/x/settlement/types"
)

const (
	flagKey        = "key"
	flagContract   = "contract"
	flagRelayNonce = "relay-nonce"
	flagURL        = "url"
)

func intentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "intent",
		Short: "Build and sign a relay request",
	}
	cmd.PersistentFlags().String(flagKey, "", "user's hex private key")
	cmd.PersistentFlags().String(flagContract, app.RegistryAddress().Hex(), "registry address")
	cmd.PersistentFlags().Uint64(flagRelayNonce, 0, "relay nonce")
	cmd.PersistentFlags().String(flagURL, "", "relayer base URL; when set the request is submitted")
	_ = cmd.MarkPersistentFlagRequired(flagKey)

	cmd.AddCommand(intentRegisterCmd(), intentCallCmd())
	return cmd
}

func intentRegisterCmd() *cobra.Command {
	var (
		registryNonce uint64
		instanceID    uint64
		duration      uint64
		amount        string
		feeToken      string
		metadata      string
		async         bool
	)
	cmd := &cobra.Command{
		Use:   "register [name]",
		Short: "Sign a gasless registration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, contract, err := intentKeyAndContract(cmd)
			if err != nil {
				return err
			}
			if !ethcommon.IsHexAddress(feeToken) {
				return fmt.Errorf("fee token must be a hex address")
			}

			reg := intent.Registration{
				Name:       args[0],
				Duration:   duration,
				Metadata:   metadata,
				Nonce:      registryNonce,
				Async:      async,
				InstanceID: instanceID,
				Registry:   contract,
				FeeToken:   ethcommon.HexToAddress(feeToken),
			}
			if amount != "" {
				v, ok := new(big.Int).SetString(amount, 10)
				if !ok {
					return fmt.Errorf("amount must be a decimal integer")
				}
				reg.Amount = v
			}

			callArgs, err := intent.RegisterArgs(key, reg)
			if err != nil {
				return err
			}
			return emitIntent(cmd, nstypes.FnRegisterGasless, callArgs)
		},
	}
	cmd.Flags().Uint64Var(&registryNonce, "registry-nonce", 0, "service and payment nonce")
	cmd.Flags().Uint64Var(&instanceID, "instance", sttypes.DefaultParams().InstanceID, "settlement instance ID")
	cmd.Flags().Uint64Var(&duration, "duration", nstypes.Year, "registration length in seconds")
	cmd.Flags().StringVar(&amount, "amount", "", "fee to authorize (default: computed from the default schedule)")
	cmd.Flags().StringVar(&feeToken, "fee-token", nstypes.DefaultFeeToken.Hex(), "settlement token the fee is paid in")
	cmd.Flags().StringVar(&metadata, "metadata", "", "metadata JSON")
	cmd.Flags().BoolVar(&async, "async", true, "use an async payment nonce")
	return cmd
}

func intentCallCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "call [function] [args-json]",
		Short: "Sign a relay request for already-built registry arguments",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var callArgs []json.RawMessage
			if err := json.Unmarshal([]byte(args[1]), &callArgs); err != nil {
				return fmt.Errorf("args must be a JSON array: %w", err)
			}
			return emitIntent(cmd, args[0], callArgs)
		},
	}
}

func intentKeyAndContract(cmd *cobra.Command) (*ecdsa.PrivateKey, ethcommon.Address, error) {
	hexKey, _ := cmd.Flags().GetString(flagKey)
	key, err := keys.ParseHexKey(hexKey)
	if err != nil {
		return nil, ethcommon.Address{}, err
	}
	contract, _ := cmd.Flags().GetString(flagContract)
	if !ethcommon.IsHexAddress(contract) {
		return nil, ethcommon.Address{}, fmt.Errorf("contract must be a hex address")
	}
	return key, ethcommon.HexToAddress(contract), nil
}

// emitIntent signs the call, prints the request and submits it when --url is set.
func emitIntent(cmd *cobra.Command, function string, callArgs []json.RawMessage) error {
	key, contract, err := intentKeyAndContract(cmd)
	if err != nil {
		return err
	}
	relayNonce, _ := cmd.Flags().GetUint64(flagRelayNonce)

	registryABI, err := nstypes.ParseRegistryABI()
	if err != nil {
		return err
	}
	req, err := intent.Sign(key, registryABI, contract, function, callArgs, relayNonce)
	if err != nil {
		return err
	}

	body, err := json.MarshalIndent(req, "", "  ")
	if err != nil {
		return err
	}

	url, _ := cmd.Flags().GetString(flagURL)
	if url == "" {
		fmt.Fprintln(cmd.OutOrStdout(), string(body))
		return nil
	}
	return postIntent(cmd.OutOrStdout(), strings.TrimSuffix(url, "/")+"/api/submit", req)
}

func postIntent(out io.Writer, url string, req *core.SubmitRequest) error {
	body, err := json.Marshal(req)
	if err != nil {
		return err
	}

	client := &http.Client{Timeout: 2 * time.Minute}
	resp, err := client.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to reach relayer: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, strings.TrimSpace(string(respBody)))
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("relayer returned %s", resp.Status)
	}
	return nil
}
