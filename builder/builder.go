// Package builder assembles the transactions of the restake flow: handing staker
// authority to the controlling address, and calling the restake program.
package builder

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	compute_budget "github.com/gagliardetto/solana-go/programs/compute-budget"
	"github.com/sirupsen/logrus"
)

type TxBuilder struct {
	ProgramID solana.PublicKey
}

func NewTxBuilder(programID solana.PublicKey) TxBuilder {
	return TxBuilder{
		ProgramID: programID,
	}
}

type HandoffArgs struct {
	// Current staker, also pays the fee
	Owner        solana.PublicKey
	StakeAccount solana.PublicKey
	VoteAccount  solana.PublicKey
	// Receives staker authority back after the restake. Defaults to Owner.
	Target     solana.PublicKey
	Deactivate bool
}

type RestakeArgs struct {
	FeePayer     solana.PublicKey
	StakeAccount solana.PublicKey
	VoteAccount  solana.PublicKey
	Target       solana.PublicKey
}

// Handoff builds the transaction an owner signs to schedule a restake.
func (txBuilder TxBuilder) Handoff(args HandoffArgs, input *TxInput) (*Tx, error) {
	target := args.Target
	if target.IsZero() {
		target = args.Owner
	}
	instructions, err := HandoffInstructions(txBuilder.ProgramID, args.StakeAccount, args.Owner, args.VoteAccount, target, args.Deactivate)
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"stake":      args.StakeAccount.String(),
		"vote":       args.VoteAccount.String(),
		"target":     target.String(),
		"deactivate": args.Deactivate,
	}).Debug("building handoff")
	return txBuilder.buildTx(instructions, args.Owner, input)
}

// Restake builds the transaction anyone may submit once the handoff is complete.
func (txBuilder TxBuilder) Restake(args RestakeArgs, input *TxInput) (*Tx, error) {
	if args.FeePayer.IsZero() {
		return nil, fmt.Errorf("fee payer is required")
	}
	ix, err := NewRestakeInstruction(txBuilder.ProgramID, args.StakeAccount, args.VoteAccount, args.Target)
	if err != nil {
		return nil, err
	}
	return txBuilder.buildTx([]solana.Instruction{ix}, args.FeePayer, input)
}

func (txBuilder TxBuilder) buildTx(instructions []solana.Instruction, feePayer solana.PublicKey, input *TxInput) (*Tx, error) {
	priorityFee := input.GetLimitedPrioritizationFee()
	if priorityFee > 0 {
		instructions = append(instructions,
			compute_budget.NewSetComputeUnitPriceInstruction(priorityFee).Build(),
		)
	}
	solTx, err := solana.NewTransaction(
		instructions,
		input.RecentBlockHash,
		solana.TransactionPayer(feePayer),
	)
	if err != nil {
		return nil, err
	}
	return &Tx{
		SolTx: solTx,
	}, nil
}
