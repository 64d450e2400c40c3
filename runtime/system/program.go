// Package system executes the system program instructions needed to fund and
// allocate accounts.
package system

import (
	"errors"
	"fmt"

	"github.com/cordialsys/restake/program"
	"github.com/gagliardetto/solana-go"
	solsystem "github.com/gagliardetto/solana-go/programs/system"
	"github.com/sirupsen/logrus"
)

var ProgramID = solana.SystemProgramID

// Largest allocation CreateAccount accepts
const MaxPermittedDataLength = 10 * 1024 * 1024

var ErrResultWithNegativeLamports = errors.New("account does not have enough lamports for the transfer")

type Program struct{}

var _ program.Entrypoint = &Program{}

func NewProgram() *Program {
	return &Program{}
}

func (p *Program) Process(host program.Host, accounts []*program.AccountInfo, data []byte) error {
	metas := make([]*solana.AccountMeta, len(accounts))
	for i, acc := range accounts {
		metas[i] = acc.Meta()
	}
	ix, err := solsystem.DecodeInstruction(metas, data)
	if err != nil {
		return fmt.Errorf("%w: %v", program.ErrInvalidInstructionData, err)
	}
	switch impl := ix.Impl.(type) {
	case *solsystem.CreateAccount:
		if impl.Lamports == nil || impl.Space == nil || impl.Owner == nil {
			return program.ErrInvalidInstructionData
		}
		return p.createAccount(accounts, *impl.Lamports, *impl.Space, *impl.Owner)
	case *solsystem.Transfer:
		if impl.Lamports == nil {
			return program.ErrInvalidInstructionData
		}
		return p.transfer(accounts, *impl.Lamports)
	default:
		return fmt.Errorf("%w: unsupported system instruction %T", program.ErrInvalidInstructionData, impl)
	}
}

func (p *Program) createAccount(accounts []*program.AccountInfo, lamports uint64, space uint64, owner solana.PublicKey) error {
	if len(accounts) < 2 {
		return program.ErrNotEnoughAccountKeys
	}
	from := accounts[0]
	to := accounts[1]
	if !to.IsSigner {
		return fmt.Errorf("%w: new account %s", program.ErrMissingRequiredSignature, to.Key)
	}
	if to.Lamports > 0 || len(to.Data) > 0 || to.Owner != ProgramID {
		return fmt.Errorf("%w: %s", program.ErrAccountAlreadyInUse, to.Key)
	}
	if space > MaxPermittedDataLength {
		return fmt.Errorf("%w: requested %d bytes", program.ErrInvalidArgument, space)
	}
	if err := p.move(from, to, lamports); err != nil {
		return err
	}
	to.Data = make([]byte, space)
	to.Owner = owner
	logrus.WithFields(logrus.Fields{
		"address":  to.Key.String(),
		"owner":    owner.String(),
		"space":    space,
		"lamports": lamports,
	}).Debug("account created")
	return nil
}

func (p *Program) transfer(accounts []*program.AccountInfo, lamports uint64) error {
	if len(accounts) < 2 {
		return program.ErrNotEnoughAccountKeys
	}
	from := accounts[0]
	if len(from.Data) > 0 {
		return fmt.Errorf("%w: transfer from an account carrying data", program.ErrInvalidArgument)
	}
	return p.move(from, accounts[1], lamports)
}

func (p *Program) move(from *program.AccountInfo, to *program.AccountInfo, lamports uint64) error {
	if !from.IsSigner {
		return fmt.Errorf("%w: funding account %s", program.ErrMissingRequiredSignature, from.Key)
	}
	if from.Owner != ProgramID {
		return fmt.Errorf("%w: funding account must be owned by the system program", program.ErrInvalidAccountOwner)
	}
	if from.Lamports < lamports {
		return fmt.Errorf("%w: has %d, needs %d", ErrResultWithNegativeLamports, from.Lamports, lamports)
	}
	from.Lamports -= lamports
	to.Lamports += lamports
	return nil
}
