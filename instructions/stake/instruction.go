package stake

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/cordialsys/restake/sysvar"
	ag_binary "github.com/gagliardetto/binary"
	ag_solanago "github.com/gagliardetto/solana-go"
	solstake "github.com/gagliardetto/solana-go/programs/stake"
)

// Instruction discriminator values (uint32 little-endian)
const (
	Instruction_Initialize uint32 = iota
	Instruction_Authorize
	Instruction_DelegateStake
	Instruction_Split
	Instruction_Withdraw
	Instruction_Deactivate
)

type AuthorizeKind uint32

const (
	AuthorizeStaker AuthorizeKind = iota
	AuthorizeWithdrawer
)

func (kind AuthorizeKind) String() string {
	switch kind {
	case AuthorizeStaker:
		return "staker"
	case AuthorizeWithdrawer:
		return "withdrawer"
	}
	return fmt.Sprintf("unknown(%d)", uint32(kind))
}

// NewInitializeInstruction sets the authorities and lockup of a freshly allocated stake
// account. solana-go's own constructor has no lockup parameters.
func NewInitializeInstruction(stakeAccount ag_solanago.PublicKey, authorized Authorized, lockup Lockup) *solstake.Instruction {
	staker := authorized.Staker
	withdrawer := authorized.Withdrawer
	timestamp := lockup.UnixTimestamp
	epoch := lockup.Epoch
	custodian := lockup.Custodian
	return (&solstake.Initialize{
		Authorized: &solstake.Authorized{
			Staker:     &staker,
			Withdrawer: &withdrawer,
		},
		Lockup: &solstake.Lockup{
			UnixTimestamp: &timestamp,
			Epoch:         &epoch,
			Custodian:     &custodian,
		},
		AccountMetaSlice: ag_solanago.AccountMetaSlice{
			ag_solanago.Meta(stakeAccount).WRITE(),
			ag_solanago.Meta(sysvar.RentID),
		},
	}).Build()
}

// InitializeParams reads the authorities and lockup out of a decoded Initialize.
func InitializeParams(ix *solstake.Initialize) (Authorized, Lockup) {
	authorized := Authorized{}
	lockup := Lockup{}
	if ix.Authorized != nil {
		authorized.Staker = deref(ix.Authorized.Staker)
		authorized.Withdrawer = deref(ix.Authorized.Withdrawer)
	}
	if ix.Lockup != nil {
		lockup.UnixTimestamp = deref(ix.Lockup.UnixTimestamp)
		lockup.Epoch = deref(ix.Lockup.Epoch)
		lockup.Custodian = deref(ix.Lockup.Custodian)
	}
	return authorized, lockup
}

func deref[T any](v *T) T {
	if v == nil {
		var zero T
		return zero
	}
	return *v
}

// Authorize replaces the staker or withdrawer authority. solana-go's stake package does
// not ship this instruction.
type Authorize struct {
	NewAuthority ag_solanago.PublicKey
	Kind         AuthorizeKind

	// [0] = [WRITE] stake account
	// [1] = [] clock sysvar
	// [2] = [SIGNER] current staker or withdrawer authority
	// [3] = [SIGNER] lockup custodian (optional)
	ag_solanago.AccountMetaSlice `bin:"-"`
}

func NewAuthorizeInstruction(
	stakeAccount ag_solanago.PublicKey,
	authority ag_solanago.PublicKey,
	newAuthority ag_solanago.PublicKey,
	kind AuthorizeKind,
) *Authorize {
	return NewAuthorizeInstructionWithClock(stakeAccount, sysvar.ClockID, authority, newAuthority, kind)
}

func NewAuthorizeInstructionWithClock(
	stakeAccount ag_solanago.PublicKey,
	clock ag_solanago.PublicKey,
	authority ag_solanago.PublicKey,
	newAuthority ag_solanago.PublicKey,
	kind AuthorizeKind,
) *Authorize {
	return &Authorize{
		NewAuthority: newAuthority,
		Kind:         kind,
		AccountMetaSlice: ag_solanago.AccountMetaSlice{
			ag_solanago.Meta(stakeAccount).WRITE(),
			ag_solanago.Meta(clock),
			ag_solanago.Meta(authority).SIGNER(),
		},
	}
}

// WithCustodian appends the lockup custodian as an additional signer.
func (inst *Authorize) WithCustodian(custodian ag_solanago.PublicKey) *Authorize {
	inst.AccountMetaSlice = append(inst.AccountMetaSlice, ag_solanago.Meta(custodian).SIGNER())
	return inst
}

func (inst *Authorize) ProgramID() ag_solanago.PublicKey {
	return ProgramID
}

func (inst *Authorize) Accounts() []*ag_solanago.AccountMeta {
	return inst.AccountMetaSlice
}

func (inst *Authorize) Data() ([]byte, error) {
	return encode(Instruction_Authorize, inst)
}

func (inst *Authorize) UnmarshalWithDecoder(decoder *ag_binary.Decoder) error {
	pk, err := decoder.ReadBytes(ag_solanago.PublicKeyLength)
	if err != nil {
		return err
	}
	inst.NewAuthority = ag_solanago.PublicKeyFromBytes(pk)
	kind, err := decoder.ReadUint32(ag_binary.LE)
	if err != nil {
		return err
	}
	if kind > uint32(AuthorizeWithdrawer) {
		return fmt.Errorf("invalid stake authorize kind %d", kind)
	}
	inst.Kind = AuthorizeKind(kind)
	return nil
}

func (inst *Authorize) MarshalWithEncoder(encoder *ag_binary.Encoder) error {
	if err := encoder.WriteBytes(inst.NewAuthority[:], false); err != nil {
		return err
	}
	return encoder.WriteUint32(uint32(inst.Kind), ag_binary.LE)
}

func NewDelegateStakeInstruction(
	stakeAccount ag_solanago.PublicKey,
	voteAccount ag_solanago.PublicKey,
	authority ag_solanago.PublicKey,
) *solstake.Instruction {
	return NewDelegateStakeInstructionWithAccounts(stakeAccount, voteAccount, sysvar.ClockID, sysvar.StakeHistoryID, ConfigID, authority)
}

// NewDelegateStakeInstructionWithAccounts builds a delegation where the sysvar and config
// addresses are supplied by the caller, as a program does from its own account list.
func NewDelegateStakeInstructionWithAccounts(
	stakeAccount ag_solanago.PublicKey,
	voteAccount ag_solanago.PublicKey,
	clock ag_solanago.PublicKey,
	stakeHistory ag_solanago.PublicKey,
	config ag_solanago.PublicKey,
	authority ag_solanago.PublicKey,
) *solstake.Instruction {
	return (&solstake.DelegateStake{
		AccountMetaSlice: ag_solanago.AccountMetaSlice{
			ag_solanago.Meta(stakeAccount).WRITE(),
			ag_solanago.Meta(voteAccount),
			ag_solanago.Meta(clock),
			ag_solanago.Meta(stakeHistory),
			ag_solanago.Meta(config),
			ag_solanago.Meta(authority).SIGNER(),
		},
	}).Build()
}

func NewDeactivateInstruction(stakeAccount ag_solanago.PublicKey, authority ag_solanago.PublicKey) *solstake.Instruction {
	return (&solstake.Deactivate{
		AccountMetaSlice: ag_solanago.AccountMetaSlice{
			ag_solanago.Meta(stakeAccount).WRITE(),
			ag_solanago.Meta(sysvar.ClockID),
			ag_solanago.Meta(authority).SIGNER(),
		},
	}).Build()
}

type marshaler interface {
	MarshalWithEncoder(encoder *ag_binary.Encoder) error
}

func encode(discriminator uint32, inst marshaler) ([]byte, error) {
	buf := new(bytes.Buffer)
	encoder := ag_binary.NewBinEncoder(buf)
	if err := encoder.WriteUint32(discriminator, ag_binary.LE); err != nil {
		return nil, err
	}
	if err := inst.MarshalWithEncoder(encoder); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type Instruction struct {
	ag_binary.BaseVariant
}

func (inst *Instruction) Obtain(def *ag_binary.VariantDefinition) (typeID ag_binary.TypeID, typeName string, impl interface{}) {
	return inst.BaseVariant.Obtain(def)
}

// Fixed data lengths, discriminator included.
const (
	initializeLen = 4 + 64 + 48
	delegateLen   = 4
	deactivateLen = 4
)

// DecodeInstruction parses stake program instruction data. Only the instructions the
// local runtime executes are recognized. Authorize decodes to *Authorize, the others to
// their solana-go types.
func DecodeInstruction(accounts []*ag_solanago.AccountMeta, data []byte) (*Instruction, error) {
	if len(data) < 4 {
		return nil, errors.New("instruction data too short")
	}
	discriminator := ag_binary.LE.Uint32(data[:4])

	switch discriminator {
	case Instruction_Authorize:
		decoder := ag_binary.NewBinDecoder(data[4:])
		impl := &Authorize{AccountMetaSlice: accounts}
		if err := impl.UnmarshalWithDecoder(decoder); err != nil {
			return nil, err
		}
		if decoder.Remaining() > 0 {
			return nil, fmt.Errorf("stake instruction %d has %d trailing bytes", discriminator, decoder.Remaining())
		}
		return &Instruction{
			BaseVariant: ag_binary.BaseVariant{
				TypeID: ag_binary.TypeIDFromUint32(discriminator, ag_binary.LE),
				Impl:   impl,
			},
		}, nil
	case Instruction_Initialize:
		if len(data) != initializeLen {
			return nil, fmt.Errorf("initialize expects %d bytes, got %d", initializeLen, len(data))
		}
	case Instruction_DelegateStake:
		if len(data) != delegateLen {
			return nil, fmt.Errorf("delegate stake expects %d bytes, got %d", delegateLen, len(data))
		}
	case Instruction_Deactivate:
		if len(data) != deactivateLen {
			return nil, fmt.Errorf("deactivate expects %d bytes, got %d", deactivateLen, len(data))
		}
	default:
		return nil, fmt.Errorf("unsupported stake instruction discriminator %d", discriminator)
	}

	decoded, err := solstake.DecodeInstruction(accounts, data)
	if err != nil {
		return nil, err
	}
	return &Instruction{BaseVariant: decoded.BaseVariant}, nil
}
