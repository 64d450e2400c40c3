package builder

import (
	"github.com/cordialsys/restake"
	stakeix "github.com/cordialsys/restake/instructions/stake"
	"github.com/gagliardetto/solana-go"
)

// Default cap on the compute unit price, in micro-lamports. At 200k compute units
// this spends at most 1 SOL on priority fees.
const DefaultMaxPrioritizationFee = 5_000_000_000

// TxInput is the chain state a transaction is built against.
type TxInput struct {
	RecentBlockHash   solana.Hash              `json:"recent_block_hash,omitempty"`
	PrioritizationFee restake.AmountBlockchain `json:"prioritization_fee,omitempty"`
	// Defaults to DefaultMaxPrioritizationFee
	MaxPrioritizationFee uint64 `json:"max_prioritization_fee,omitempty"`
}

// GetLimitedPrioritizationFee returns the micro-lamports to set as compute unit
// price, never more than the configured maximum.
func (input *TxInput) GetLimitedPrioritizationFee() uint64 {
	fee := input.PrioritizationFee.Uint64()
	max := input.MaxPrioritizationFee
	if max == 0 {
		max = DefaultMaxPrioritizationFee
	}
	if fee > max {
		fee = max
	}
	return fee
}

// RestakeInput describes a stake account and whether the restake program can act on it.
type RestakeInput struct {
	TxInput
	StakeAccount       solana.PublicKey `json:"stake_account"`
	VoteAccount        solana.PublicKey `json:"vote_account"`
	TargetAuthority    solana.PublicKey `json:"target_authority"`
	ControllingAddress solana.PublicKey `json:"controlling_address"`
	Bump               uint8            `json:"bump"`

	Staker          solana.PublicKey         `json:"staker"`
	Withdrawer      solana.PublicKey         `json:"withdrawer"`
	Voter           solana.PublicKey         `json:"voter,omitempty"`
	ActivationState stakeix.ActivationState  `json:"activation_state"`
	Epoch           uint64                   `json:"epoch"`
	Balance         restake.AmountBlockchain `json:"balance"`
}

// Reasons a stake account cannot be restaked yet
const (
	NotHandedOff   = "staker authority has not been handed to the controlling address"
	StillDelegated = "stake is still delegated, deactivate it and wait for the cooldown"
)

// Blockers lists why the restake instruction would fail now. An empty list means it
// is expected to succeed.
func (input *RestakeInput) Blockers() []string {
	blockers := []string{}
	if input.Staker != input.ControllingAddress {
		blockers = append(blockers, NotHandedOff)
	}
	switch input.ActivationState {
	case stakeix.Active, stakeix.Deactivating:
		blockers = append(blockers, StillDelegated)
	}
	return blockers
}

func (input *RestakeInput) Ready() bool {
	return len(input.Blockers()) == 0
}
