package stake

import (
	"bytes"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

type StateKind uint32

const (
	StateUninitialized StateKind = iota
	StateInitialized
	StateStake
	StateRewardsPool
)

func (kind StateKind) String() string {
	switch kind {
	case StateUninitialized:
		return "uninitialized"
	case StateInitialized:
		return "initialized"
	case StateStake:
		return "delegated"
	case StateRewardsPool:
		return "rewardsPool"
	}
	return fmt.Sprintf("unknown(%d)", uint32(kind))
}

// ActivationState is the phase of a delegation relative to an epoch.
type ActivationState string

const (
	Activating   ActivationState = "activating"
	Active       ActivationState = "active"
	Deactivating ActivationState = "deactivating"
	Inactive     ActivationState = "inactive"
)

type Authorized struct {
	Staker     solana.PublicKey `json:"staker"`
	Withdrawer solana.PublicKey `json:"withdrawer"`
}

type Lockup struct {
	UnixTimestamp int64            `json:"unix_timestamp"`
	Epoch         uint64           `json:"epoch"`
	Custodian     solana.PublicKey `json:"custodian"`
}

type Meta struct {
	RentExemptReserve uint64     `json:"rent_exempt_reserve"`
	Authorized        Authorized `json:"authorized"`
	Lockup            Lockup     `json:"lockup"`
}

type Delegation struct {
	VoterPubkey        solana.PublicKey `json:"voter"`
	Stake              uint64           `json:"stake"`
	ActivationEpoch    uint64           `json:"activation_epoch"`
	DeactivationEpoch  uint64           `json:"deactivation_epoch"`
	WarmupCooldownRate float64          `json:"warmup_cooldown_rate"`
}

type Stake struct {
	Delegation      Delegation `json:"delegation"`
	CreditsObserved uint64     `json:"credits_observed"`
}

// State mirrors the on-chain StakeStateV2 enum. Meta is set for the initialized and
// delegated variants, Stake only for the delegated one.
type State struct {
	Kind       StateKind `json:"kind"`
	Meta       Meta      `json:"meta"`
	Stake      Stake     `json:"stake"`
	StakeFlags uint8     `json:"stake_flags"`
}

func (authorized *Authorized) UnmarshalWithDecoder(decoder *bin.Decoder) error {
	pk, err := decoder.ReadBytes(solana.PublicKeyLength)
	if err != nil {
		return err
	}
	authorized.Staker = solana.PublicKeyFromBytes(pk)

	pk, err = decoder.ReadBytes(solana.PublicKeyLength)
	if err != nil {
		return err
	}
	authorized.Withdrawer = solana.PublicKeyFromBytes(pk)
	return nil
}

func (authorized *Authorized) MarshalWithEncoder(encoder *bin.Encoder) error {
	if err := encoder.WriteBytes(authorized.Staker[:], false); err != nil {
		return err
	}
	return encoder.WriteBytes(authorized.Withdrawer[:], false)
}

func (lockup *Lockup) UnmarshalWithDecoder(decoder *bin.Decoder) error {
	var err error
	lockup.UnixTimestamp, err = decoder.ReadInt64(bin.LE)
	if err != nil {
		return err
	}
	lockup.Epoch, err = decoder.ReadUint64(bin.LE)
	if err != nil {
		return err
	}
	pk, err := decoder.ReadBytes(solana.PublicKeyLength)
	if err != nil {
		return err
	}
	lockup.Custodian = solana.PublicKeyFromBytes(pk)
	return nil
}

func (lockup *Lockup) MarshalWithEncoder(encoder *bin.Encoder) error {
	if err := encoder.WriteInt64(lockup.UnixTimestamp, bin.LE); err != nil {
		return err
	}
	if err := encoder.WriteUint64(lockup.Epoch, bin.LE); err != nil {
		return err
	}
	return encoder.WriteBytes(lockup.Custodian[:], false)
}

// IsInForce reports whether the lockup still applies. A signing custodian lifts it.
func (lockup *Lockup) IsInForce(epoch uint64, unixTimestamp int64, custodian *solana.PublicKey) bool {
	if custodian != nil && *custodian == lockup.Custodian {
		return false
	}
	return lockup.UnixTimestamp > unixTimestamp || lockup.Epoch > epoch
}

func (meta *Meta) UnmarshalWithDecoder(decoder *bin.Decoder) error {
	var err error
	meta.RentExemptReserve, err = decoder.ReadUint64(bin.LE)
	if err != nil {
		return err
	}
	if err = meta.Authorized.UnmarshalWithDecoder(decoder); err != nil {
		return err
	}
	return meta.Lockup.UnmarshalWithDecoder(decoder)
}

func (meta *Meta) MarshalWithEncoder(encoder *bin.Encoder) error {
	if err := encoder.WriteUint64(meta.RentExemptReserve, bin.LE); err != nil {
		return err
	}
	if err := meta.Authorized.MarshalWithEncoder(encoder); err != nil {
		return err
	}
	return meta.Lockup.MarshalWithEncoder(encoder)
}

func (delegation *Delegation) UnmarshalWithDecoder(decoder *bin.Decoder) error {
	pk, err := decoder.ReadBytes(solana.PublicKeyLength)
	if err != nil {
		return err
	}
	delegation.VoterPubkey = solana.PublicKeyFromBytes(pk)

	if delegation.Stake, err = decoder.ReadUint64(bin.LE); err != nil {
		return err
	}
	if delegation.ActivationEpoch, err = decoder.ReadUint64(bin.LE); err != nil {
		return err
	}
	if delegation.DeactivationEpoch, err = decoder.ReadUint64(bin.LE); err != nil {
		return err
	}
	delegation.WarmupCooldownRate, err = decoder.ReadFloat64(bin.LE)
	return err
}

func (delegation *Delegation) MarshalWithEncoder(encoder *bin.Encoder) error {
	if err := encoder.WriteBytes(delegation.VoterPubkey[:], false); err != nil {
		return err
	}
	if err := encoder.WriteUint64(delegation.Stake, bin.LE); err != nil {
		return err
	}
	if err := encoder.WriteUint64(delegation.ActivationEpoch, bin.LE); err != nil {
		return err
	}
	if err := encoder.WriteUint64(delegation.DeactivationEpoch, bin.LE); err != nil {
		return err
	}
	return encoder.WriteFloat64(delegation.WarmupCooldownRate, bin.LE)
}

// ActivationState places the delegation in its lifecycle at currentEpoch. Warmup and
// cooldown both complete at the next epoch boundary.
func (delegation *Delegation) ActivationState(currentEpoch uint64) ActivationState {
	activationEpoch := delegation.ActivationEpoch
	deactivationEpoch := delegation.DeactivationEpoch
	if activationEpoch == deactivationEpoch {
		// accounts may be deactivated instantly if in the same epoch as activation
		return Inactive
	}

	if deactivationEpoch == currentEpoch {
		return Deactivating
	} else if deactivationEpoch < currentEpoch {
		return Inactive
	} else if activationEpoch < currentEpoch {
		return Active
	} else {
		return Activating
	}
}

// EffectiveStake is the stake counted toward the validator at currentEpoch.
func (delegation *Delegation) EffectiveStake(currentEpoch uint64) uint64 {
	switch delegation.ActivationState(currentEpoch) {
	case Active, Deactivating:
		return delegation.Stake
	}
	return 0
}

func (stake *Stake) UnmarshalWithDecoder(decoder *bin.Decoder) error {
	if err := stake.Delegation.UnmarshalWithDecoder(decoder); err != nil {
		return err
	}
	var err error
	stake.CreditsObserved, err = decoder.ReadUint64(bin.LE)
	return err
}

func (stake *Stake) MarshalWithEncoder(encoder *bin.Encoder) error {
	if err := stake.Delegation.MarshalWithEncoder(encoder); err != nil {
		return err
	}
	return encoder.WriteUint64(stake.CreditsObserved, bin.LE)
}

func (state *State) UnmarshalWithDecoder(decoder *bin.Decoder) error {
	kind, err := decoder.ReadUint32(bin.LE)
	if err != nil {
		return err
	}
	state.Kind = StateKind(kind)

	switch state.Kind {
	case StateUninitialized, StateRewardsPool:
		return nil
	case StateInitialized:
		return state.Meta.UnmarshalWithDecoder(decoder)
	case StateStake:
		if err := state.Meta.UnmarshalWithDecoder(decoder); err != nil {
			return err
		}
		if err := state.Stake.UnmarshalWithDecoder(decoder); err != nil {
			return err
		}
		state.StakeFlags, err = decoder.ReadUint8()
		return err
	default:
		return fmt.Errorf("invalid stake state %d", kind)
	}
}

func (state *State) MarshalWithEncoder(encoder *bin.Encoder) error {
	if err := encoder.WriteUint32(uint32(state.Kind), bin.LE); err != nil {
		return err
	}

	switch state.Kind {
	case StateUninitialized, StateRewardsPool:
		return nil
	case StateInitialized:
		return state.Meta.MarshalWithEncoder(encoder)
	case StateStake:
		if err := state.Meta.MarshalWithEncoder(encoder); err != nil {
			return err
		}
		if err := state.Stake.MarshalWithEncoder(encoder); err != nil {
			return err
		}
		return encoder.WriteUint8(state.StakeFlags)
	default:
		return fmt.Errorf("invalid stake state %d", state.Kind)
	}
}

// ActivationState of the account at currentEpoch. Accounts without a delegation are
// always inactive.
func (state *State) ActivationState(currentEpoch uint64) ActivationState {
	if state.Kind != StateStake {
		return Inactive
	}
	return state.Stake.Delegation.ActivationState(currentEpoch)
}

// DecodeState parses stake account data.
func DecodeState(data []byte) (*State, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("stake account data too short: %d bytes", len(data))
	}
	state := &State{}
	if err := state.UnmarshalWithDecoder(bin.NewBinDecoder(data)); err != nil {
		return nil, err
	}
	return state, nil
}

// Encode serializes the state into a zero padded buffer of StateSize bytes.
func (state *State) Encode() ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := state.MarshalWithEncoder(bin.NewBinEncoder(buf)); err != nil {
		return nil, err
	}
	if buf.Len() > StateSize {
		return nil, fmt.Errorf("stake state encodes to %d bytes, more than %d", buf.Len(), StateSize)
	}
	data := make([]byte, StateSize)
	copy(data, buf.Bytes())
	return data, nil
}
