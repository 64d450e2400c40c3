// Package simulation replays the restake lifecycle on the in-process runtime: delegate
// to one validator, hand the staker authority to the controlling address, cool down and
// restake to another validator.
package simulation

import (
	"fmt"

	"github.com/cordialsys/restake"
	"github.com/cordialsys/restake/builder"
	stakeix "github.com/cordialsys/restake/instructions/stake"
	"github.com/cordialsys/restake/program"
	"github.com/cordialsys/restake/runtime"
	"github.com/cordialsys/restake/runtime/vote"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/sirupsen/logrus"
)

const lamportsPerSol = 1_000_000_000

type Options struct {
	SlotsPerEpoch uint64
	// Lamports delegated on top of the rent exempt reserve.
	StakeLamports uint64
}

type Step struct {
	Name     string           `json:"name" yaml:"name" toml:"name"`
	Slot     uint64           `json:"slot" yaml:"slot" toml:"slot"`
	Position restake.Position `json:"position" yaml:"position" toml:"position"`
	Logs     []string         `json:"logs,omitempty" yaml:"logs,omitempty" toml:"logs,omitempty"`
}

type Report struct {
	ProgramID          string `json:"program_id" yaml:"program_id" toml:"program_id"`
	Owner              string `json:"owner" yaml:"owner" toml:"owner"`
	FromVoteAccount    string `json:"from_vote_account" yaml:"from_vote_account" toml:"from_vote_account"`
	ToVoteAccount      string `json:"to_vote_account" yaml:"to_vote_account" toml:"to_vote_account"`
	ControllingAddress string `json:"controlling_address" yaml:"controlling_address" toml:"controlling_address"`
	Steps              []Step `json:"steps" yaml:"steps" toml:"steps"`
}

func (report *Report) Before() restake.Position {
	return report.Steps[0].Position
}

func (report *Report) After() restake.Position {
	return report.Steps[len(report.Steps)-1].Position
}

type simulation struct {
	bank      *runtime.Bank
	programID solana.PublicKey
	owner     solana.PrivateKey
	payer     solana.PrivateKey
	stake     solana.PrivateKey
	report    *Report
}

func newKey() (solana.PrivateKey, error) {
	return solana.NewRandomPrivateKey()
}

// Run executes the lifecycle and records the stake position after each step.
func Run(opts Options) (*Report, error) {
	if opts.StakeLamports == 0 {
		opts.StakeLamports = lamportsPerSol
	}
	keys := make([]solana.PrivateKey, 6)
	for i := range keys {
		key, err := newKey()
		if err != nil {
			return nil, err
		}
		keys[i] = key
	}
	programID := keys[0].PublicKey()
	voteA := keys[4].PublicKey()
	voteB := keys[5].PublicKey()
	sim := &simulation{
		bank:      runtime.NewBank(runtime.Options{SlotsPerEpoch: opts.SlotsPerEpoch}),
		programID: programID,
		owner:     keys[1],
		payer:     keys[2],
		stake:     keys[3],
	}
	owner := sim.owner.PublicKey()
	controlling, _, err := program.ControllingAddress(programID, voteB, owner)
	if err != nil {
		return nil, err
	}
	sim.report = &Report{
		ProgramID:          programID.String(),
		Owner:              owner.String(),
		FromVoteAccount:    voteA.String(),
		ToVoteAccount:      voteB.String(),
		ControllingAddress: controlling.String(),
	}

	sim.bank.RegisterProgram(programID, program.NewProcessor(programID))
	sim.bank.Airdrop(owner, opts.StakeLamports+lamportsPerSol)
	sim.bank.Airdrop(sim.payer.PublicKey(), lamportsPerSol)
	for _, address := range []solana.PublicKey{voteA, voteB} {
		identity, err := newKey()
		if err != nil {
			return nil, err
		}
		account, err := vote.NewAccount(identity.PublicKey(), owner, 5, sim.bank.MinimumBalanceForRentExemption(vote.StateSize))
		if err != nil {
			return nil, err
		}
		sim.bank.SetAccount(address, account)
	}

	stakeAddress := sim.stake.PublicKey()
	reserve := sim.bank.MinimumBalanceForRentExemption(stakeix.StateSize)
	createIxs := []solana.Instruction{
		system.NewCreateAccountInstruction(reserve+opts.StakeLamports, stakeix.StateSize, stakeix.ProgramID, owner, stakeAddress).Build(),
		stakeix.NewInitializeInstruction(stakeAddress, stakeix.Authorized{Staker: owner, Withdrawer: owner}, stakeix.Lockup{}),
		stakeix.NewDelegateStakeInstruction(stakeAddress, voteA, owner),
	}
	if err := sim.send("delegate to "+voteA.String(), createIxs, sim.owner, sim.stake); err != nil {
		return nil, err
	}
	if err := sim.warp(1, "stake active"); err != nil {
		return nil, err
	}

	txBuilder := builder.NewTxBuilder(programID)
	handoff, err := txBuilder.Handoff(builder.HandoffArgs{
		Owner:        owner,
		StakeAccount: stakeAddress,
		VoteAccount:  voteB,
		Deactivate:   true,
	}, &builder.TxInput{RecentBlockHash: sim.bank.LatestBlockhash()})
	if err != nil {
		return nil, err
	}
	if err := sim.sendTx("deactivate and hand off to "+controlling.String(), handoff, sim.owner); err != nil {
		return nil, err
	}
	if err := sim.warp(2, "cooled down"); err != nil {
		return nil, err
	}

	restakeTx, err := txBuilder.Restake(builder.RestakeArgs{
		FeePayer:     sim.payer.PublicKey(),
		StakeAccount: stakeAddress,
		VoteAccount:  voteB,
		Target:       owner,
	}, &builder.TxInput{RecentBlockHash: sim.bank.LatestBlockhash()})
	if err != nil {
		return nil, err
	}
	if err := sim.sendTx("restake to "+voteB.String(), restakeTx, sim.payer); err != nil {
		return nil, err
	}
	if err := sim.warp(3, "stake active"); err != nil {
		return nil, err
	}
	return sim.report, nil
}

func (sim *simulation) send(name string, instructions []solana.Instruction, signers ...solana.PrivateKey) error {
	solTx, err := solana.NewTransaction(
		instructions,
		sim.bank.LatestBlockhash(),
		solana.TransactionPayer(signers[0].PublicKey()),
	)
	if err != nil {
		return err
	}
	return sim.sendTx(name, &builder.Tx{SolTx: solTx}, signers...)
}

func (sim *simulation) sendTx(name string, tx *builder.Tx, signers ...solana.PrivateKey) error {
	if err := tx.Sign(signers...); err != nil {
		return err
	}
	result, err := sim.bank.ProcessTransaction(tx.SolTx)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	logrus.WithFields(logrus.Fields{
		"step":      name,
		"signature": result.Signature.String(),
	}).Debug("processed")
	if err := sim.record(name, result.Logs); err != nil {
		return err
	}
	// a new slot gives the next transaction a fresh blockhash
	return sim.bank.AdvanceSlot()
}

func (sim *simulation) warp(epoch uint64, name string) error {
	// with very short epochs advancing a slot may already have crossed the boundary
	if sim.bank.Clock().Epoch < epoch {
		if err := sim.bank.WarpToEpoch(epoch); err != nil {
			return err
		}
	}
	return sim.record(fmt.Sprintf("epoch %d: %s", epoch, name), nil)
}

func (sim *simulation) record(name string, logs []string) error {
	address := sim.stake.PublicKey()
	state, err := sim.bank.StakeState(address)
	if err != nil {
		return err
	}
	clock := sim.bank.Clock()
	sim.report.Steps = append(sim.report.Steps, Step{
		Name:     name,
		Slot:     clock.Slot,
		Position: restake.NewPosition(address, sim.bank.Balance(address), state, clock.Epoch),
		Logs:     logs,
	})
	return nil
}
