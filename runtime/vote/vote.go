// Package vote models the part of a vote account the stake program inspects.
package vote

import (
	"bytes"
	"fmt"

	"github.com/cordialsys/restake/program"
	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

var ProgramID = solana.VoteProgramID

const (
	// Size of a current vote account
	StateSize = 3762
	// Tag of the current VoteState version
	CurrentVersion uint32 = 2
)

// State is the prefix of a vote account: version tag, identity, withdrawer and
// commission. Votes, credits and the authorized voter history are not modelled.
type State struct {
	NodePubkey           solana.PublicKey `json:"node_pubkey"`
	AuthorizedWithdrawer solana.PublicKey `json:"authorized_withdrawer"`
	Commission           uint8            `json:"commission"`
}

func (state *State) UnmarshalWithDecoder(decoder *bin.Decoder) error {
	version, err := decoder.ReadUint32(bin.LE)
	if err != nil {
		return err
	}
	if version == 0 || version > CurrentVersion {
		return fmt.Errorf("unsupported vote state version %d", version)
	}
	pk, err := decoder.ReadBytes(solana.PublicKeyLength)
	if err != nil {
		return err
	}
	state.NodePubkey = solana.PublicKeyFromBytes(pk)
	pk, err = decoder.ReadBytes(solana.PublicKeyLength)
	if err != nil {
		return err
	}
	state.AuthorizedWithdrawer = solana.PublicKeyFromBytes(pk)
	state.Commission, err = decoder.ReadUint8()
	return err
}

func (state *State) MarshalWithEncoder(encoder *bin.Encoder) error {
	if err := encoder.WriteUint32(CurrentVersion, bin.LE); err != nil {
		return err
	}
	if err := encoder.WriteBytes(state.NodePubkey[:], false); err != nil {
		return err
	}
	if err := encoder.WriteBytes(state.AuthorizedWithdrawer[:], false); err != nil {
		return err
	}
	return encoder.WriteUint8(state.Commission)
}

func Decode(data []byte) (*State, error) {
	state := &State{}
	if err := state.UnmarshalWithDecoder(bin.NewBinDecoder(data)); err != nil {
		return nil, err
	}
	if state.NodePubkey.IsZero() {
		return nil, fmt.Errorf("vote account is not initialized")
	}
	return state, nil
}

func (state *State) Encode() ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := state.MarshalWithEncoder(bin.NewBinEncoder(buf)); err != nil {
		return nil, err
	}
	data := make([]byte, StateSize)
	copy(data, buf.Bytes())
	return data, nil
}

// NewAccount returns a funded vote account for the validator identified by node.
func NewAccount(node solana.PublicKey, withdrawer solana.PublicKey, commission uint8, lamports uint64) (*program.Account, error) {
	state := &State{
		NodePubkey:           node,
		AuthorizedWithdrawer: withdrawer,
		Commission:           commission,
	}
	data, err := state.Encode()
	if err != nil {
		return nil, err
	}
	return &program.Account{
		Lamports: lamports,
		Owner:    ProgramID,
		Data:     data,
	}, nil
}
