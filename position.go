package restake

import (
	stakeix "github.com/cordialsys/restake/instructions/stake"
	"github.com/gagliardetto/solana-go"
)

// Position is a printable summary of a stake account at an epoch.
type Position struct {
	StakeAccount    string              `json:"stake_account" yaml:"stake_account" toml:"stake_account"`
	Kind            string              `json:"kind" yaml:"kind" toml:"kind"`
	Staker          string              `json:"staker,omitempty" yaml:"staker,omitempty" toml:"staker,omitempty"`
	Withdrawer      string              `json:"withdrawer,omitempty" yaml:"withdrawer,omitempty" toml:"withdrawer,omitempty"`
	Voter           string              `json:"voter,omitempty" yaml:"voter,omitempty" toml:"voter,omitempty"`
	ActivationState string              `json:"activation_state" yaml:"activation_state" toml:"activation_state"`
	Epoch           uint64              `json:"epoch" yaml:"epoch" toml:"epoch"`
	Balance         AmountHumanReadable `json:"balance" yaml:"balance" toml:"balance"`
	Delegated       AmountHumanReadable `json:"delegated" yaml:"delegated" toml:"delegated"`
}

func NewPosition(address solana.PublicKey, lamports uint64, state *stakeix.State, epoch uint64) Position {
	balance := NewAmountBlockchainFromUint64(lamports)
	delegated := NewAmountBlockchainFromUint64(0)
	position := Position{
		StakeAccount:    address.String(),
		Kind:            state.Kind.String(),
		ActivationState: string(state.ActivationState(epoch)),
		Epoch:           epoch,
		Balance:         balance.ToSol(),
	}
	if state.Kind == stakeix.StateInitialized || state.Kind == stakeix.StateStake {
		position.Staker = state.Meta.Authorized.Staker.String()
		position.Withdrawer = state.Meta.Authorized.Withdrawer.String()
	}
	if state.Kind == stakeix.StateStake {
		position.Voter = state.Stake.Delegation.VoterPubkey.String()
		delegated = NewAmountBlockchainFromUint64(state.Stake.Delegation.Stake)
	}
	position.Delegated = delegated.ToSol()
	return position
}
