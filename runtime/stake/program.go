// Package stake executes the stake program instructions the restake flow depends on.
package stake

import (
	"fmt"

	stakeix "github.com/cordialsys/restake/instructions/stake"
	"github.com/cordialsys/restake/program"
	"github.com/cordialsys/restake/runtime/vote"
	"github.com/cordialsys/restake/sysvar"
	"github.com/gagliardetto/solana-go"
	solstake "github.com/gagliardetto/solana-go/programs/stake"
	"github.com/sirupsen/logrus"
)

type Program struct{}

var _ program.Entrypoint = &Program{}

func NewProgram() *Program {
	return &Program{}
}

func (p *Program) Process(host program.Host, accounts []*program.AccountInfo, data []byte) error {
	metas := make([]*solana.AccountMeta, len(accounts))
	for i, info := range accounts {
		metas[i] = info.Meta()
	}
	ix, err := stakeix.DecodeInstruction(metas, data)
	if err != nil {
		return fmt.Errorf("%w: %v", program.ErrInvalidInstructionData, err)
	}
	switch impl := ix.Impl.(type) {
	case *solstake.Initialize:
		return p.initialize(accounts, impl)
	case *stakeix.Authorize:
		return p.authorize(accounts, impl)
	case *solstake.DelegateStake:
		return p.delegate(host, accounts)
	case *solstake.Deactivate:
		return p.deactivate(host, accounts)
	default:
		return fmt.Errorf("%w: unsupported stake instruction %T", program.ErrInvalidInstructionData, impl)
	}
}

func (p *Program) initialize(accounts []*program.AccountInfo, ix *solstake.Initialize) error {
	if len(accounts) < 2 {
		return program.ErrNotEnoughAccountKeys
	}
	stakeAcc := accounts[0]
	state, err := loadState(stakeAcc)
	if err != nil {
		return err
	}
	if state.Kind != stakeix.StateUninitialized {
		return fmt.Errorf("%w: stake account is %s", program.ErrInvalidAccountData, state.Kind)
	}
	if accounts[1].Key != sysvar.RentID {
		return fmt.Errorf("%w: expected rent sysvar", program.ErrInvalidArgument)
	}
	rent, err := sysvar.DecodeRent(accounts[1].Data)
	if err != nil {
		return fmt.Errorf("%w: %v", program.ErrInvalidAccountData, err)
	}
	reserve := rent.MinimumBalance(len(stakeAcc.Data))
	if stakeAcc.Lamports < reserve {
		return fmt.Errorf("%w: %d lamports, rent exempt reserve is %d", program.ErrInsufficientFunds, stakeAcc.Lamports, reserve)
	}
	authorized, lockup := stakeix.InitializeParams(ix)
	return storeState(stakeAcc, &stakeix.State{
		Kind: stakeix.StateInitialized,
		Meta: stakeix.Meta{
			RentExemptReserve: reserve,
			Authorized:        authorized,
			Lockup:            lockup,
		},
	})
}

func (p *Program) authorize(accounts []*program.AccountInfo, ix *stakeix.Authorize) error {
	if len(accounts) < 3 {
		return program.ErrNotEnoughAccountKeys
	}
	stakeAcc := accounts[0]
	clock, err := loadClock(accounts[1])
	if err != nil {
		return err
	}
	state, err := loadState(stakeAcc)
	if err != nil {
		return err
	}
	if state.Kind != stakeix.StateInitialized && state.Kind != stakeix.StateStake {
		return fmt.Errorf("%w: stake account is %s", program.ErrInvalidAccountData, state.Kind)
	}
	signers := program.Signers(accounts)
	authorized := &state.Meta.Authorized

	switch ix.Kind {
	case stakeix.AuthorizeStaker:
		// either authority may replace the staker
		if !contains(signers, authorized.Staker) && !contains(signers, authorized.Withdrawer) {
			return fmt.Errorf("%w: staker %s", program.ErrMissingRequiredSignature, authorized.Staker)
		}
		authorized.Staker = ix.NewAuthority
	case stakeix.AuthorizeWithdrawer:
		if state.Meta.Lockup.IsInForce(clock.Epoch, clock.UnixTimestamp, nil) {
			if len(accounts) < 4 {
				return ErrCustodianMissing
			}
			custodian := accounts[3]
			if !custodian.IsSigner {
				return ErrCustodianSignatureMissing
			}
			if state.Meta.Lockup.IsInForce(clock.Epoch, clock.UnixTimestamp, &custodian.Key) {
				return ErrLockupInForce
			}
		}
		if !contains(signers, authorized.Withdrawer) {
			return fmt.Errorf("%w: withdrawer %s", program.ErrMissingRequiredSignature, authorized.Withdrawer)
		}
		authorized.Withdrawer = ix.NewAuthority
	default:
		return fmt.Errorf("%w: authorize kind %s", program.ErrInvalidInstructionData, ix.Kind)
	}

	logrus.WithFields(logrus.Fields{
		"stake":     stakeAcc.Key.String(),
		"kind":      ix.Kind.String(),
		"authority": ix.NewAuthority.String(),
	}).Debug("stake authorized")
	return storeState(stakeAcc, state)
}

func (p *Program) delegate(host program.Host, accounts []*program.AccountInfo) error {
	if len(accounts) < 6 {
		return program.ErrNotEnoughAccountKeys
	}
	stakeAcc := accounts[0]
	voteAcc := accounts[1]
	clock, err := loadClock(accounts[2])
	if err != nil {
		return err
	}
	if accounts[3].Key != sysvar.StakeHistoryID {
		return fmt.Errorf("%w: expected stake history sysvar", program.ErrInvalidArgument)
	}
	if voteAcc.Owner != vote.ProgramID {
		return fmt.Errorf("%w: %s is not a vote account", program.ErrInvalidAccountOwner, voteAcc.Key)
	}
	if _, err := vote.Decode(voteAcc.Data); err != nil {
		return fmt.Errorf("%w: %v", program.ErrInvalidAccountData, err)
	}

	state, err := loadState(stakeAcc)
	if err != nil {
		return err
	}
	if state.Kind != stakeix.StateInitialized && state.Kind != stakeix.StateStake {
		return fmt.Errorf("%w: stake account is %s", program.ErrInvalidAccountData, state.Kind)
	}
	if !contains(program.Signers(accounts), state.Meta.Authorized.Staker) {
		return fmt.Errorf("%w: staker %s", program.ErrMissingRequiredSignature, state.Meta.Authorized.Staker)
	}
	if stakeAcc.Lamports < state.Meta.RentExemptReserve {
		return fmt.Errorf("%w: balance below the rent exempt reserve", program.ErrInsufficientFunds)
	}
	amount := stakeAcc.Lamports - state.Meta.RentExemptReserve
	if amount < stakeix.MinimumDelegation {
		return ErrInsufficientDelegation
	}

	log := logrus.WithFields(logrus.Fields{
		"stake": stakeAcc.Key.String(),
		"vote":  voteAcc.Key.String(),
		"epoch": clock.Epoch,
	})
	delegation := &state.Stake.Delegation
	if state.Kind == stakeix.StateStake && delegation.EffectiveStake(clock.Epoch) != 0 {
		// only a deactivation from this same epoch towards the same voter can be undone
		if delegation.VoterPubkey != voteAcc.Key || delegation.DeactivationEpoch != clock.Epoch {
			return ErrTooSoonToRedelegate
		}
		delegation.DeactivationEpoch = stakeix.MaxEpoch
		log.Debug("stake deactivation rescinded")
		host.Log("Rescinded deactivation of %s", stakeAcc.Key)
	} else {
		state.Kind = stakeix.StateStake
		state.Stake = stakeix.Stake{
			Delegation: stakeix.Delegation{
				VoterPubkey:        voteAcc.Key,
				Stake:              amount,
				ActivationEpoch:    clock.Epoch,
				DeactivationEpoch:  stakeix.MaxEpoch,
				WarmupCooldownRate: stakeix.DefaultWarmupCooldownRate,
			},
		}
		log.WithField("amount", amount).Debug("stake delegated")
	}
	return storeState(stakeAcc, state)
}

func (p *Program) deactivate(host program.Host, accounts []*program.AccountInfo) error {
	if len(accounts) < 3 {
		return program.ErrNotEnoughAccountKeys
	}
	stakeAcc := accounts[0]
	clock, err := loadClock(accounts[1])
	if err != nil {
		return err
	}
	state, err := loadState(stakeAcc)
	if err != nil {
		return err
	}
	if state.Kind != stakeix.StateStake {
		return ErrNotDelegated
	}
	if !contains(program.Signers(accounts), state.Meta.Authorized.Staker) {
		return fmt.Errorf("%w: staker %s", program.ErrMissingRequiredSignature, state.Meta.Authorized.Staker)
	}
	if state.Stake.Delegation.DeactivationEpoch != stakeix.MaxEpoch {
		return ErrAlreadyDeactivated
	}
	state.Stake.Delegation.DeactivationEpoch = clock.Epoch
	logrus.WithFields(logrus.Fields{
		"stake": stakeAcc.Key.String(),
		"epoch": clock.Epoch,
	}).Debug("stake deactivated")
	return storeState(stakeAcc, state)
}

func loadState(info *program.AccountInfo) (*stakeix.State, error) {
	if info.Owner != stakeix.ProgramID {
		return nil, fmt.Errorf("%w: %s is owned by %s", program.ErrInvalidAccountOwner, info.Key, info.Owner)
	}
	if len(info.Data) != stakeix.StateSize {
		return nil, fmt.Errorf("%w: stake account has %d bytes", program.ErrInvalidAccountData, len(info.Data))
	}
	state, err := stakeix.DecodeState(info.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", program.ErrInvalidAccountData, err)
	}
	return state, nil
}

func storeState(info *program.AccountInfo, state *stakeix.State) error {
	if !info.IsWritable {
		return fmt.Errorf("%w: %s", program.ErrReadonlyDataModified, info.Key)
	}
	data, err := state.Encode()
	if err != nil {
		return fmt.Errorf("%w: %v", program.ErrInvalidAccountData, err)
	}
	info.Data = data
	return nil
}

func loadClock(info *program.AccountInfo) (*sysvar.Clock, error) {
	if info.Key != sysvar.ClockID {
		return nil, fmt.Errorf("%w: expected clock sysvar, got %s", program.ErrInvalidArgument, info.Key)
	}
	clock, err := sysvar.DecodeClock(info.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", program.ErrInvalidAccountData, err)
	}
	return clock, nil
}

func contains(keys []solana.PublicKey, key solana.PublicKey) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}
