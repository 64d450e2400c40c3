package stake_test

import (
	"fmt"
	"testing"

	stakeix "github.com/cordialsys/restake/instructions/stake"
	"github.com/cordialsys/restake/program"
	"github.com/cordialsys/restake/runtime/stake"
	"github.com/cordialsys/restake/runtime/vote"
	"github.com/cordialsys/restake/sysvar"
	"github.com/cordialsys/restake/testutil"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"
)

type logHost struct {
	logs []string
}

func (h *logHost) InvokeSigned(ix solana.Instruction, accounts []*program.AccountInfo, signers ...program.SignerSeeds) error {
	return fmt.Errorf("no cross-program calls expected")
}

func (h *logHost) Log(format string, args ...interface{}) {
	h.logs = append(h.logs, fmt.Sprintf(format, args...))
}

const reserve = 2282880

type harness struct {
	t        *testing.T
	clock    *sysvar.Clock
	accounts map[solana.PublicKey]*program.Account
	staker   solana.PublicKey
	stake    solana.PublicKey
	vote     solana.PublicKey
}

func newHarness(t *testing.T) *harness {
	h := &harness{
		t:        t,
		clock:    &sysvar.Clock{Epoch: 10, Slot: 320},
		accounts: map[solana.PublicKey]*program.Account{},
		staker:   testutil.NewPublicKey(),
		stake:    testutil.NewPublicKey(),
		vote:     testutil.NewPublicKey(),
	}
	h.accounts[h.stake] = &program.Account{
		Lamports: reserve + 1_000_000_000,
		Owner:    stakeix.ProgramID,
		Data:     make([]byte, stakeix.StateSize),
	}
	voteAccount, err := vote.NewAccount(testutil.NewPublicKey(), testutil.NewPublicKey(), 0, 1)
	require.NoError(t, err)
	h.accounts[h.vote] = voteAccount
	rent, err := sysvar.DefaultRent().Encode()
	require.NoError(t, err)
	h.accounts[sysvar.RentID] = &program.Account{Owner: sysvar.OwnerID, Data: rent}
	history, err := sysvar.StakeHistory{}.Encode()
	require.NoError(t, err)
	h.accounts[sysvar.StakeHistoryID] = &program.Account{Owner: sysvar.OwnerID, Data: history}
	h.accounts[stakeix.ConfigID] = &program.Account{}
	h.setEpoch(10)
	return h
}

func (h *harness) setEpoch(epoch uint64) {
	h.clock.Epoch = epoch
	data, err := h.clock.Encode()
	require.NoError(h.t, err)
	h.accounts[sysvar.ClockID] = &program.Account{Owner: sysvar.OwnerID, Data: data}
}

func (h *harness) account(key solana.PublicKey) *program.Account {
	acc, ok := h.accounts[key]
	if !ok {
		acc = &program.Account{Owner: solana.SystemProgramID}
		h.accounts[key] = acc
	}
	return acc
}

// run executes ix with the account flags its metas declare.
func (h *harness) run(ix solana.Instruction) error {
	data, err := ix.Data()
	require.NoError(h.t, err)
	infos := []*program.AccountInfo{}
	for _, meta := range ix.Accounts() {
		infos = append(infos, &program.AccountInfo{
			Key:        meta.PublicKey,
			IsSigner:   meta.IsSigner,
			IsWritable: meta.IsWritable,
			Account:    h.account(meta.PublicKey),
		})
	}
	return stake.NewProgram().Process(&logHost{}, infos, data)
}

func (h *harness) state() *stakeix.State {
	state, err := stakeix.DecodeState(h.accounts[h.stake].Data)
	require.NoError(h.t, err)
	return state
}

func (h *harness) initialize() {
	authorized := stakeix.Authorized{Staker: h.staker, Withdrawer: h.staker}
	require.NoError(h.t, h.run(stakeix.NewInitializeInstruction(h.stake, authorized, stakeix.Lockup{})))
}

func (h *harness) delegate() {
	h.initialize()
	require.NoError(h.t, h.run(stakeix.NewDelegateStakeInstruction(h.stake, h.vote, h.staker)))
}

func TestInitialize(t *testing.T) {
	h := newHarness(t)
	h.initialize()
	state := h.state()
	require.Equal(t, stakeix.StateInitialized, state.Kind)
	require.EqualValues(t, reserve, state.Meta.RentExemptReserve)
	require.Equal(t, h.staker, state.Meta.Authorized.Staker)

	// only once
	err := h.run(stakeix.NewInitializeInstruction(h.stake, stakeix.Authorized{}, stakeix.Lockup{}))
	require.ErrorIs(t, err, program.ErrInvalidAccountData)
}

func TestInitializeRejects(t *testing.T) {
	h := newHarness(t)
	h.accounts[h.stake].Lamports = reserve - 1
	err := h.run(stakeix.NewInitializeInstruction(h.stake, stakeix.Authorized{}, stakeix.Lockup{}))
	require.ErrorIs(t, err, program.ErrInsufficientFunds)

	h.accounts[h.stake].Owner = solana.SystemProgramID
	err = h.run(stakeix.NewInitializeInstruction(h.stake, stakeix.Authorized{}, stakeix.Lockup{}))
	require.ErrorIs(t, err, program.ErrInvalidAccountOwner)
}

func TestDelegate(t *testing.T) {
	h := newHarness(t)
	h.delegate()
	state := h.state()
	require.Equal(t, stakeix.StateStake, state.Kind)
	delegation := state.Stake.Delegation
	require.Equal(t, h.vote, delegation.VoterPubkey)
	require.EqualValues(t, 1_000_000_000, delegation.Stake)
	require.EqualValues(t, 10, delegation.ActivationEpoch)
	require.Equal(t, stakeix.MaxEpoch, delegation.DeactivationEpoch)
	require.Equal(t, stakeix.Activating, state.ActivationState(10))
	require.Equal(t, stakeix.Active, state.ActivationState(11))
}

func TestDelegateRejects(t *testing.T) {
	notVote := testutil.NewPublicKey()
	vectors := []struct {
		description string
		ix          func(h *harness) solana.Instruction
		err         error
	}{
		{
			"wrong signer",
			func(h *harness) solana.Instruction {
				return stakeix.NewDelegateStakeInstruction(h.stake, h.vote, testutil.NewPublicKey())
			},
			program.ErrMissingRequiredSignature,
		},
		{
			"not a vote account",
			func(h *harness) solana.Instruction {
				return stakeix.NewDelegateStakeInstruction(h.stake, notVote, h.staker)
			},
			program.ErrInvalidAccountOwner,
		},
		{
			"clock is not the clock sysvar",
			func(h *harness) solana.Instruction {
				return stakeix.NewDelegateStakeInstructionWithAccounts(h.stake, h.vote, sysvar.RentID, sysvar.StakeHistoryID, stakeix.ConfigID, h.staker)
			},
			program.ErrInvalidArgument,
		},
		{
			"history is not the stake history sysvar",
			func(h *harness) solana.Instruction {
				return stakeix.NewDelegateStakeInstructionWithAccounts(h.stake, h.vote, sysvar.ClockID, sysvar.RentID, stakeix.ConfigID, h.staker)
			},
			program.ErrInvalidArgument,
		},
	}
	for i, v := range vectors {
		t.Run(fmt.Sprintf("%d - %s", i, v.description), func(t *testing.T) {
			h := newHarness(t)
			h.initialize()
			before := h.accounts[h.stake].Clone()
			err := h.run(v.ix(h))
			require.ErrorIs(t, err, v.err)
			require.True(t, before.Equal(h.accounts[h.stake]))
		})
	}
}

func TestRedelegate(t *testing.T) {
	h := newHarness(t)
	h.delegate()
	other := testutil.NewPublicKey()
	h.accounts[other] = h.accounts[h.vote].Clone()

	// active stake cannot move
	h.setEpoch(11)
	err := h.run(stakeix.NewDelegateStakeInstruction(h.stake, other, h.staker))
	require.ErrorIs(t, err, stake.ErrTooSoonToRedelegate)

	// still too soon while deactivating
	require.NoError(t, h.run(stakeix.NewDeactivateInstruction(h.stake, h.staker)))
	err = h.run(stakeix.NewDelegateStakeInstruction(h.stake, other, h.staker))
	require.ErrorIs(t, err, stake.ErrTooSoonToRedelegate)

	// after the cooldown it may move
	h.setEpoch(12)
	require.NoError(t, h.run(stakeix.NewDelegateStakeInstruction(h.stake, other, h.staker)))
	delegation := h.state().Stake.Delegation
	require.Equal(t, other, delegation.VoterPubkey)
	require.EqualValues(t, 12, delegation.ActivationEpoch)
	require.Equal(t, stakeix.MaxEpoch, delegation.DeactivationEpoch)
}

func TestRedelegateSameVoterRescindsDeactivation(t *testing.T) {
	h := newHarness(t)
	h.delegate()
	h.setEpoch(11)
	require.NoError(t, h.run(stakeix.NewDeactivateInstruction(h.stake, h.staker)))
	require.Equal(t, stakeix.Deactivating, h.state().ActivationState(11))

	require.NoError(t, h.run(stakeix.NewDelegateStakeInstruction(h.stake, h.vote, h.staker)))
	delegation := h.state().Stake.Delegation
	require.EqualValues(t, 10, delegation.ActivationEpoch)
	require.Equal(t, stakeix.MaxEpoch, delegation.DeactivationEpoch)
}

func TestDeactivateInActivationEpoch(t *testing.T) {
	h := newHarness(t)
	h.delegate()
	require.NoError(t, h.run(stakeix.NewDeactivateInstruction(h.stake, h.staker)))
	require.Equal(t, stakeix.Inactive, h.state().ActivationState(10))

	err := h.run(stakeix.NewDeactivateInstruction(h.stake, h.staker))
	require.ErrorIs(t, err, stake.ErrAlreadyDeactivated)

	// inactive stake can be delegated again right away
	require.NoError(t, h.run(stakeix.NewDelegateStakeInstruction(h.stake, h.vote, h.staker)))
	require.Equal(t, stakeix.Activating, h.state().ActivationState(10))
}

func TestDeactivateRejects(t *testing.T) {
	h := newHarness(t)
	h.initialize()
	err := h.run(stakeix.NewDeactivateInstruction(h.stake, h.staker))
	require.ErrorIs(t, err, stake.ErrNotDelegated)

	require.NoError(t, h.run(stakeix.NewDelegateStakeInstruction(h.stake, h.vote, h.staker)))
	err = h.run(stakeix.NewDeactivateInstruction(h.stake, testutil.NewPublicKey()))
	require.ErrorIs(t, err, program.ErrMissingRequiredSignature)
}

func TestAuthorizeStaker(t *testing.T) {
	h := newHarness(t)
	withdrawer := testutil.NewPublicKey()
	authorized := stakeix.Authorized{Staker: h.staker, Withdrawer: withdrawer}
	require.NoError(t, h.run(stakeix.NewInitializeInstruction(h.stake, authorized, stakeix.Lockup{})))

	next := testutil.NewPublicKey()
	require.NoError(t, h.run(stakeix.NewAuthorizeInstruction(h.stake, h.staker, next, stakeix.AuthorizeStaker)))
	require.Equal(t, next, h.state().Meta.Authorized.Staker)

	// the old staker lost its power
	err := h.run(stakeix.NewAuthorizeInstruction(h.stake, h.staker, h.staker, stakeix.AuthorizeStaker))
	require.ErrorIs(t, err, program.ErrMissingRequiredSignature)

	// the withdrawer may always reset the staker
	require.NoError(t, h.run(stakeix.NewAuthorizeInstruction(h.stake, withdrawer, h.staker, stakeix.AuthorizeStaker)))
	require.Equal(t, h.staker, h.state().Meta.Authorized.Staker)
	require.Equal(t, withdrawer, h.state().Meta.Authorized.Withdrawer)

	// the staker cannot replace the withdrawer
	err = h.run(stakeix.NewAuthorizeInstruction(h.stake, h.staker, h.staker, stakeix.AuthorizeWithdrawer))
	require.ErrorIs(t, err, program.ErrMissingRequiredSignature)
}

func TestAuthorizeWithdrawerLockup(t *testing.T) {
	h := newHarness(t)
	custodian := testutil.NewPublicKey()
	authorized := stakeix.Authorized{Staker: h.staker, Withdrawer: h.staker}
	lockup := stakeix.Lockup{Epoch: 20, Custodian: custodian}
	require.NoError(t, h.run(stakeix.NewInitializeInstruction(h.stake, authorized, lockup)))
	next := testutil.NewPublicKey()

	err := h.run(stakeix.NewAuthorizeInstruction(h.stake, h.staker, next, stakeix.AuthorizeWithdrawer))
	require.ErrorIs(t, err, stake.ErrCustodianMissing)

	err = h.run(stakeix.NewAuthorizeInstruction(h.stake, h.staker, next, stakeix.AuthorizeWithdrawer).WithCustodian(testutil.NewPublicKey()))
	require.ErrorIs(t, err, stake.ErrLockupInForce)

	require.NoError(t, h.run(stakeix.NewAuthorizeInstruction(h.stake, h.staker, next, stakeix.AuthorizeWithdrawer).WithCustodian(custodian)))
	require.Equal(t, next, h.state().Meta.Authorized.Withdrawer)

	// staker changes are not subject to the lockup
	require.NoError(t, h.run(stakeix.NewAuthorizeInstruction(h.stake, h.staker, next, stakeix.AuthorizeStaker)))
}

func TestRejectsUnknownInstruction(t *testing.T) {
	err := stake.NewProgram().Process(&logHost{}, nil, []byte{3, 0, 0, 0})
	require.ErrorIs(t, err, program.ErrInvalidInstructionData)
}
