package signature

import (
	"math/big"
	"strconv"
	"strings"

	"cosmossdk.io/math"
	ethcommon "github.com/ethereum/go-ethereum/common"
)

// Action names embedded in canonical service messages.
const (
	ActionRegister = "register"
	ActionRenew    = "renew"
	ActionTransfer = "transfer"
	ActionPay      = "pay"
	ActionRelay    = "relay"
)

// Build joins the instance ID, the action name and the ordered parameters into
// the canonical message. Parameters must already be in canonical form; use the
// Format* helpers.
func Build(instanceID uint64, action string, params ...string) string {
	parts := make([]string, 0, len(params)+2)
	parts = append(parts, strconv.FormatUint(instanceID, 10), action)
	parts = append(parts, params...)
	return strings.Join(parts, ",")
}

// FormatAddress renders an address as lowercase 0x-prefixed hex.
func FormatAddress(addr ethcommon.Address) string {
	return strings.ToLower(addr.Hex())
}

// FormatHash renders a 32-byte hash as lowercase 0x-prefixed hex.
func FormatHash(h ethcommon.Hash) string {
	return h.Hex() // Hash.Hex is already lowercase
}

// FormatUint renders an unsigned integer in decimal.
func FormatUint(v uint64) string {
	return strconv.FormatUint(v, 10)
}

// FormatInt renders a math.Int in decimal.
func FormatInt(v math.Int) string {
	if v.IsNil() {
		return "0"
	}
	return v.String()
}

// FormatBig renders a big.Int in decimal.
func FormatBig(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

// FormatBool renders a boolean as "true" or "false".
func FormatBool(v bool) string {
	return strconv.FormatBool(v)
}

// RegisterParams are the ordered parameters of a gasless registration.
func RegisterParams(name string, duration uint64, amount math.Int, nonce uint64) []string {
	return []string{name, FormatUint(duration), FormatInt(amount), FormatUint(nonce)}
}

// RenewParams are the ordered parameters of a gasless renewal.
func RenewParams(nameHash ethcommon.Hash, duration uint64, amount math.Int, nonce uint64) []string {
	return []string{FormatHash(nameHash), FormatUint(duration), FormatInt(amount), FormatUint(nonce)}
}

// TransferParams are the ordered parameters of a gasless transfer.
func TransferParams(nameHash ethcommon.Hash, newOwner ethcommon.Address, nonce uint64) []string {
	return []string{FormatHash(nameHash), FormatAddress(newOwner), FormatUint(nonce)}
}

// RegisterMessage is the service message for a gasless registration.
func RegisterMessage(instanceID uint64, name string, duration uint64, amount math.Int, nonce uint64) string {
	return Build(instanceID, ActionRegister, RegisterParams(name, duration, amount, nonce)...)
}

// RenewMessage is the service message for a gasless renewal.
func RenewMessage(instanceID uint64, nameHash ethcommon.Hash, duration uint64, amount math.Int, nonce uint64) string {
	return Build(instanceID, ActionRenew, RenewParams(nameHash, duration, amount, nonce)...)
}

// TransferMessage is the service message for a gasless transfer.
func TransferMessage(instanceID uint64, nameHash ethcommon.Hash, newOwner ethcommon.Address, nonce uint64) string {
	return Build(instanceID, ActionTransfer, TransferParams(nameHash, newOwner, nonce)...)
}

// PaymentMessage is the message the settlement engine verifies for its pay leg.
func PaymentMessage(
	instanceID uint64,
	to ethcommon.Address,
	token ethcommon.Address,
	amount math.Int,
	priorityFee math.Int,
	nonce uint64,
	async bool,
	executor ethcommon.Address,
) string {
	return Build(instanceID, ActionPay,
		FormatAddress(to),
		FormatAddress(token),
		FormatInt(amount),
		FormatInt(priorityFee),
		FormatUint(nonce),
		FormatBool(async),
		FormatAddress(executor),
	)
}

// RelayMessage is what a user signs to let a relayer submit one exact call on
// their behalf. The relayer is not bound to a protocol instance, so the
// instance slot is always zero.
func RelayMessage(contract ethcommon.Address, function string, argsHash ethcommon.Hash, nonce uint64) string {
	return Build(0, ActionRelay, FormatAddress(contract), function, FormatHash(argsHash), FormatUint(nonce))
}
