// Package stake encodes and decodes stake program instructions and account state.
//
// Both the restake program (building cross-program calls), the client side builders
// and the local runtime's stake program use these codecs, so the bytes that leave a
// wallet are exactly the bytes the runtime executes.
package stake

import (
	"math"

	"github.com/gagliardetto/solana-go"
)

var (
	ProgramID = solana.StakeProgramID
	// Legacy stake config account, still passed to DelegateStake.
	ConfigID = solana.MustPublicKeyFromBase58("StakeConfig11111111111111111111111111111111")
)

const (
	StateSize = 200
	// Minimum delegation in lamports, on top of the rent exempt reserve.
	MinimumDelegation = 1
	// Delegations never deactivated carry this epoch.
	MaxEpoch uint64 = math.MaxUint64

	DefaultWarmupCooldownRate = 0.25
)
