package app

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"math/big"

	"cosmossdk.io/collections"
	sdk "github.com/cosmos/cosmos-sdk/types"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

const (
	ReceiptStatusFailed     uint64 = 0
	ReceiptStatusSuccessful uint64 = 1
)

// ErrReceiptNotFound is returned for unknown transaction hashes.
var ErrReceiptNotFound = errors.New("receipt not found")

// Event is a flattened SDK event.
type Event struct {
	Type       string            `json:"type"`
	Attributes map[string]string `json:"attributes"`
}

// Receipt records the outcome of one transaction.
type Receipt struct {
	TxHash   ethcommon.Hash    `json:"tx_hash"`
	Height   int64             `json:"height"`
	From     ethcommon.Address `json:"from"`
	Function string            `json:"function"`
	Status   uint64            `json:"status"`
	Error    string            `json:"error,omitempty"`
	Return   hexutil.Bytes     `json:"return,omitempty"`
	Events   []Event           `json:"events,omitempty"`
}

// Succeeded reports whether the transaction applied its effects.
func (r Receipt) Succeeded() bool {
	return r.Status == ReceiptStatusSuccessful
}

// txHash identifies a transaction by its content and the block it lands in.
func txHash(height int64, tx Tx) ethcommon.Hash {
	var h [8]byte
	binary.BigEndian.PutUint64(h[:], uint64(height))
	value := tx.Value
	if value == nil {
		value = new(big.Int)
	}
	return crypto.Keccak256Hash(h[:], tx.From.Bytes(), value.Bytes(), tx.Data)
}

func flattenEvents(events sdk.Events) []Event {
	out := make([]Event, 0, len(events))
	for _, ev := range events {
		attrs := make(map[string]string, len(ev.Attributes))
		for _, attr := range ev.Attributes {
			attrs[attr.Key] = attr.Value
		}
		out = append(out, Event{Type: ev.Type, Attributes: attrs})
	}
	return out
}

func (a *App) storeReceipt(ctx context.Context, r Receipt) error {
	bz, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return a.receipts.Set(ctx, r.TxHash.Hex(), string(bz))
}

// GetReceipt looks up a committed transaction.
func (a *App) GetReceipt(ctx context.Context, hash ethcommon.Hash) (Receipt, error) {
	var r Receipt
	err := a.View(ctx, func(ctx sdk.Context) error {
		raw, err := a.receipts.Get(ctx, hash.Hex())
		if err != nil {
			if errors.Is(err, collections.ErrNotFound) {
				return ErrReceiptNotFound
			}
			return err
		}
		return json.Unmarshal([]byte(raw), &r)
	})
	return r, err
}
