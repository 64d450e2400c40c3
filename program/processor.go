// Package program implements the restake program.
//
// A stake account whose staker authority has been handed to the controlling address
// derived from ("stake", vote account, target authority) can be delegated to that vote
// account by anyone. The program signs for the controlling address, delegates, and
// returns staker authority to the target within the same instruction.
package program

import (
	"fmt"

	"github.com/cordialsys/restake/instructions/stake"
	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"
)

// Positions in the account list of a Stake request
const (
	AccountStake = iota
	AccountVote
	AccountClock
	AccountStakeHistory
	AccountStakeConfig
	AccountStakeAuthority
	AccountStakeProgram

	StakeAccountsLen
)

type Processor struct {
	ProgramID solana.PublicKey
}

var _ Entrypoint = &Processor{}

func NewProcessor(programID solana.PublicKey) *Processor {
	return &Processor{ProgramID: programID}
}

func (p *Processor) Process(host Host, accounts []*AccountInfo, data []byte) error {
	req, err := DecodeRequest(data)
	if err != nil {
		return err
	}
	switch impl := req.Impl.(type) {
	case *Stake:
		return p.processStake(host, accounts, impl)
	default:
		return fmt.Errorf("%w: unsupported request %T", ErrInvalidInstructionData, impl)
	}
}

func (p *Processor) processStake(host Host, accounts []*AccountInfo, req *Stake) error {
	if len(accounts) != StakeAccountsLen {
		return fmt.Errorf("%w: expected %d accounts, got %d", ErrNotEnoughAccountKeys, StakeAccountsLen, len(accounts))
	}
	stakeAcc := accounts[AccountStake]
	voteAcc := accounts[AccountVote]
	clockAcc := accounts[AccountClock]
	historyAcc := accounts[AccountStakeHistory]
	configAcc := accounts[AccountStakeConfig]
	authorityAcc := accounts[AccountStakeAuthority]

	controlling, signer, err := ControllingAddress(p.ProgramID, voteAcc.Key, req.TargetStakeAuthority)
	if err != nil {
		return err
	}
	log := logrus.WithFields(logrus.Fields{
		"stake":       stakeAcc.Key.String(),
		"vote":        voteAcc.Key.String(),
		"authority":   authorityAcc.Key.String(),
		"controlling": controlling.String(),
		"bump":        signer.Bump,
		"target":      req.TargetStakeAuthority.String(),
	})
	log.Debug("restaking")

	delegate := stake.NewDelegateStakeInstructionWithAccounts(
		stakeAcc.Key,
		voteAcc.Key,
		clockAcc.Key,
		historyAcc.Key,
		configAcc.Key,
		authorityAcc.Key,
	)
	err = host.InvokeSigned(delegate, []*AccountInfo{
		stakeAcc,
		voteAcc,
		clockAcc,
		historyAcc,
		configAcc,
		authorityAcc,
	}, signer)
	if err != nil {
		log.WithError(err).Debug("delegate failed")
		return err
	}

	host.Log("Authorize the target stake authority")
	authorize := stake.NewAuthorizeInstructionWithClock(
		stakeAcc.Key,
		clockAcc.Key,
		authorityAcc.Key,
		req.TargetStakeAuthority,
		stake.AuthorizeStaker,
	)
	err = host.InvokeSigned(authorize, []*AccountInfo{
		stakeAcc,
		clockAcc,
		authorityAcc,
	}, signer)
	if err != nil {
		log.WithError(err).Debug("authorize failed")
		return err
	}
	return nil
}
