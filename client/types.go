package client

import (
	"fmt"

	"github.com/cordialsys/restake"
	stakeix "github.com/cordialsys/restake/instructions/stake"
	"github.com/gagliardetto/solana-go"
)

// StakeAccount is the jsonParsed rendering of a stake account.
type StakeAccount struct {
	Parsed  Parsed `json:"parsed"`
	Program string `json:"program"`
	Space   int    `json:"space"`
}

type Parsed struct {
	Info Info   `json:"info"`
	Type string `json:"type"`
}

type Info struct {
	Meta  Meta  `json:"meta"`
	Stake Stake `json:"stake"`
}

type Meta struct {
	Authorized        Authorized `json:"authorized"`
	Lockup            Lockup     `json:"lockup"`
	RentExemptReserve string     `json:"rentExemptReserve"`
}

type Authorized struct {
	Staker     string `json:"staker"`
	Withdrawer string `json:"withdrawer"`
}

type Lockup struct {
	Custodian     string `json:"custodian"`
	Epoch         uint64 `json:"epoch"`
	UnixTimestamp int64  `json:"unixTimestamp"`
}

type Stake struct {
	CreditsObserved uint64     `json:"creditsObserved"`
	Delegation      Delegation `json:"delegation"`
}

type Delegation struct {
	ActivationEpoch    string  `json:"activationEpoch"`
	DeactivationEpoch  string  `json:"deactivationEpoch"`
	Stake              string  `json:"stake"`
	Voter              string  `json:"voter"`
	WarmupCooldownRate float64 `json:"warmupCooldownRate"`
}

func parseKey(field string, value string) (solana.PublicKey, error) {
	if value == "" {
		return solana.PublicKey{}, nil
	}
	key, err := solana.PublicKeyFromBase58(value)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("invalid %s '%s': %v", field, value, err)
	}
	return key, nil
}

// State converts the parsed account into the stake program's own state type.
func (stake *StakeAccount) State() (*stakeix.State, error) {
	state := &stakeix.State{}
	switch stake.Parsed.Type {
	case "uninitialized":
		state.Kind = stakeix.StateUninitialized
		return state, nil
	case "initialized":
		state.Kind = stakeix.StateInitialized
	case "delegated":
		state.Kind = stakeix.StateStake
	case "rewardsPool":
		state.Kind = stakeix.StateRewardsPool
		return state, nil
	default:
		return nil, fmt.Errorf("unknown stake account type '%s'", stake.Parsed.Type)
	}

	var err error
	meta := &stake.Parsed.Info.Meta
	state.Meta.RentExemptReserve = restake.NewAmountBlockchainFromStr(meta.RentExemptReserve).Uint64()
	if state.Meta.Authorized.Staker, err = parseKey("staker", meta.Authorized.Staker); err != nil {
		return nil, err
	}
	if state.Meta.Authorized.Withdrawer, err = parseKey("withdrawer", meta.Authorized.Withdrawer); err != nil {
		return nil, err
	}
	if state.Meta.Lockup.Custodian, err = parseKey("custodian", meta.Lockup.Custodian); err != nil {
		return nil, err
	}
	state.Meta.Lockup.Epoch = meta.Lockup.Epoch
	state.Meta.Lockup.UnixTimestamp = meta.Lockup.UnixTimestamp

	if state.Kind == stakeix.StateStake {
		delegation := &stake.Parsed.Info.Stake.Delegation
		if state.Stake.Delegation.VoterPubkey, err = parseKey("voter", delegation.Voter); err != nil {
			return nil, err
		}
		state.Stake.Delegation.Stake = restake.NewAmountBlockchainFromStr(delegation.Stake).Uint64()
		state.Stake.Delegation.ActivationEpoch = restake.NewAmountBlockchainFromStr(delegation.ActivationEpoch).Uint64()
		state.Stake.Delegation.DeactivationEpoch = restake.NewAmountBlockchainFromStr(delegation.DeactivationEpoch).Uint64()
		state.Stake.Delegation.WarmupCooldownRate = delegation.WarmupCooldownRate
		state.Stake.CreditsObserved = stake.Parsed.Info.Stake.CreditsObserved
	}
	return state, nil
}
