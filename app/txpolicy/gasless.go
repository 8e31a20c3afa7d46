package txpolicy

import (
	"slices"

	nstypes "github.com/motus-labs/motus-name-service/x/nameservice/types"
)

// GaslessFunctions are the registry functions a relayer may submit on a
// user's behalf.
var GaslessFunctions = []string{
	nstypes.FnRegisterGasless,
	nstypes.FnRenewGasless,
	nstypes.FnTransferGasless,
}

// IsGaslessFunction checks if name is one of the allowed gasless functions.
func IsGaslessFunction(name string) bool {
	return slices.Contains(GaslessFunctions, name)
}
