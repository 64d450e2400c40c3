package program

import (
	"bytes"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// Request discriminator values (borsh enum tag, one byte)
const (
	Request_Stake uint8 = iota
)

// Stake hands the stake account over to a new validator and returns staker
// authority to TargetStakeAuthority.
type Stake struct {
	TargetStakeAuthority solana.PublicKey
}

func (req *Stake) UnmarshalWithDecoder(decoder *bin.Decoder) error {
	pk, err := decoder.ReadBytes(solana.PublicKeyLength)
	if err != nil {
		return err
	}
	req.TargetStakeAuthority = solana.PublicKeyFromBytes(pk)
	return nil
}

func (req *Stake) MarshalWithEncoder(encoder *bin.Encoder) error {
	return encoder.WriteBytes(req.TargetStakeAuthority[:], false)
}

// Request is the instruction payload understood by the restake program. Only one
// variant exists today but the payload is an enum so more can be appended.
type Request struct {
	bin.BaseVariant
}

func NewStakeRequest(target solana.PublicKey) *Request {
	return &Request{
		BaseVariant: bin.BaseVariant{
			TypeID: bin.TypeIDFromUint8(Request_Stake),
			Impl:   &Stake{TargetStakeAuthority: target},
		},
	}
}

func (req *Request) Obtain(def *bin.VariantDefinition) (typeID bin.TypeID, typeName string, impl interface{}) {
	return req.BaseVariant.Obtain(def)
}

func (req *Request) UnmarshalWithDecoder(decoder *bin.Decoder) error {
	tag, err := decoder.ReadUint8()
	if err != nil {
		return err
	}
	switch tag {
	case Request_Stake:
		stake := &Stake{}
		if err := stake.UnmarshalWithDecoder(decoder); err != nil {
			return err
		}
		req.BaseVariant = bin.BaseVariant{
			TypeID: bin.TypeIDFromUint8(tag),
			Impl:   stake,
		}
		return nil
	default:
		return fmt.Errorf("unknown request tag %d", tag)
	}
}

func (req *Request) MarshalWithEncoder(encoder *bin.Encoder) error {
	switch impl := req.Impl.(type) {
	case *Stake:
		if err := encoder.WriteUint8(Request_Stake); err != nil {
			return err
		}
		return impl.MarshalWithEncoder(encoder)
	default:
		return fmt.Errorf("unknown request type %T", req.Impl)
	}
}

// Encode serializes the request as instruction data.
func (req *Request) Encode() ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := req.MarshalWithEncoder(bin.NewBorshEncoder(buf)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeRequest parses instruction data. The whole payload must be consumed; any
// failure is reported as ErrInvalidInstructionData.
func DecodeRequest(data []byte) (*Request, error) {
	decoder := bin.NewBorshDecoder(data)
	req := &Request{}
	if err := req.UnmarshalWithDecoder(decoder); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInstructionData, err)
	}
	if decoder.Remaining() > 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrInvalidInstructionData, decoder.Remaining())
	}
	return req, nil
}
