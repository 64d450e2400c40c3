package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cordialsys/restake"
	"github.com/cordialsys/restake/builder"
	xcerrors "github.com/cordialsys/restake/client/errors"
	stakeix "github.com/cordialsys/restake/instructions/stake"
	"github.com/cordialsys/restake/program"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/sirupsen/logrus"
)

// Offset of the staker authority in stake account data: 4 byte tag, 8 byte reserve.
const stakerOffset = 12

// ParsedStakeAccount pairs the decoded state of a stake account with its address and balance.
type ParsedStakeAccount struct {
	Address  solana.PublicKey
	Lamports uint64
	State    *stakeix.State
}

func parseStakeAccount(address solana.PublicKey, account *rpc.Account) (*ParsedStakeAccount, error) {
	if account.Owner != stakeix.ProgramID {
		return nil, fmt.Errorf("account %s is owned by %s, not the stake program", address, account.Owner)
	}
	if account.Data == nil {
		return nil, fmt.Errorf("account %s has no data", address)
	}
	var stakeAccount StakeAccount
	if err := json.Unmarshal(account.Data.GetRawJSON(), &stakeAccount); err != nil {
		return nil, fmt.Errorf("could not parse stake account %s: %v", address, err)
	}
	state, err := stakeAccount.State()
	if err != nil {
		return nil, err
	}
	return &ParsedStakeAccount{
		Address:  address,
		Lamports: account.Lamports,
		State:    state,
	}, nil
}

// FetchStakeAccount looks up and parses a single stake account.
func (client *Client) FetchStakeAccount(ctx context.Context, address solana.PublicKey) (*ParsedStakeAccount, error) {
	info, err := client.SolClient.GetAccountInfoWithOpts(ctx, address, &rpc.GetAccountInfoOpts{
		Commitment: client.Commitment,
		Encoding:   solana.EncodingJSONParsed,
	})
	if err != nil {
		if errors.Is(err, rpc.ErrNotFound) {
			return nil, fmt.Errorf("stake account %s not found", address)
		}
		return nil, err
	}
	if info == nil || info.Value == nil {
		return nil, fmt.Errorf("stake account %s not found", address)
	}
	return parseStakeAccount(address, info.Value)
}

// FetchStakeAccountsByStaker lists the stake accounts whose staker authority is staker,
// such as every position currently handed to a controlling address.
func (client *Client) FetchStakeAccountsByStaker(ctx context.Context, staker solana.PublicKey) ([]*ParsedStakeAccount, error) {
	res, err := client.SolClient.GetProgramAccountsWithOpts(ctx, stakeix.ProgramID, &rpc.GetProgramAccountsOpts{
		Commitment: client.Commitment,
		Encoding:   solana.EncodingJSONParsed,
		Filters: []rpc.RPCFilter{
			{
				Memcmp: &rpc.RPCFilterMemcmp{
					Offset: stakerOffset,
					Bytes:  staker[:],
				},
			},
		},
	})
	if err != nil {
		return nil, err
	}
	stakeAccounts := []*ParsedStakeAccount{}
	for _, acc := range res {
		parsed, err := parseStakeAccount(acc.Pubkey, acc.Account)
		if err != nil {
			return nil, err
		}
		stakeAccounts = append(stakeAccounts, parsed)
	}
	return stakeAccounts, nil
}

// ResolveVoteAccount accepts either a vote account or a validator identity and returns
// the vote account.
func (client *Client) ResolveVoteAccount(ctx context.Context, validator solana.PublicKey) (solana.PublicKey, error) {
	voteAccounts, err := client.SolClient.GetVoteAccounts(ctx, &rpc.GetVoteAccountsOpts{
		Commitment: client.Commitment,
	})
	if err != nil {
		return solana.PublicKey{}, err
	}
	all := []rpc.VoteAccountsResult{}
	all = append(all, voteAccounts.Current...)
	all = append(all, voteAccounts.Delinquent...)
	for _, voteAccount := range all {
		if voteAccount.VotePubkey == validator {
			return voteAccount.VotePubkey, nil
		}
	}
	for _, voteAccount := range all {
		if voteAccount.NodePubkey == validator {
			logrus.WithFields(logrus.Fields{
				"identity": voteAccount.NodePubkey.String(),
				"vote":     voteAccount.VotePubkey.String(),
			}).Warn("validator identity pubkey was input, using the vote pubkey instead")
			return voteAccount.VotePubkey, nil
		}
	}
	return solana.PublicKey{}, fmt.Errorf("validator vote account not found: %s", validator)
}

type RestakeArgs struct {
	StakeAccount solana.PublicKey
	// Vote account or validator identity
	Validator solana.PublicKey
	Target    solana.PublicKey
}

// FetchRestakeInput gathers everything needed to build a restake transaction and to
// judge whether it would succeed at the current epoch.
func (client *Client) FetchRestakeInput(ctx context.Context, args RestakeArgs) (*builder.RestakeInput, error) {
	voteAccount, err := client.ResolveVoteAccount(ctx, args.Validator)
	if err != nil {
		return nil, err
	}
	controlling, recipe, err := program.ControllingAddress(client.ProgramID, voteAccount, args.Target)
	if err != nil {
		return nil, err
	}
	stakeAccount, err := client.FetchStakeAccount(ctx, args.StakeAccount)
	if err != nil {
		return nil, err
	}
	if stakeAccount.State.Kind != stakeix.StateInitialized && stakeAccount.State.Kind != stakeix.StateStake {
		return nil, fmt.Errorf("stake account %s is %s", args.StakeAccount, stakeAccount.State.Kind)
	}
	epoch, err := client.FetchEpoch(ctx)
	if err != nil {
		return nil, err
	}
	txInput, err := client.FetchBaseInput(ctx, args.StakeAccount)
	if err != nil {
		return nil, err
	}

	input := &builder.RestakeInput{
		TxInput:            *txInput,
		StakeAccount:       args.StakeAccount,
		VoteAccount:        voteAccount,
		TargetAuthority:    args.Target,
		ControllingAddress: controlling,
		Bump:               recipe.Bump,
		Staker:             stakeAccount.State.Meta.Authorized.Staker,
		Withdrawer:         stakeAccount.State.Meta.Authorized.Withdrawer,
		ActivationState:    stakeAccount.State.ActivationState(epoch),
		Epoch:              epoch,
		Balance:            restake.NewAmountBlockchainFromUint64(stakeAccount.Lamports),
	}
	if stakeAccount.State.Kind == stakeix.StateStake {
		input.Voter = stakeAccount.State.Stake.Delegation.VoterPubkey
	}
	return input, nil
}

// CheckReady returns a FailedPrecondition error listing why the restake would fail.
func CheckReady(input *builder.RestakeInput) error {
	blockers := input.Blockers()
	if len(blockers) == 0 {
		return nil
	}
	return xcerrors.FailedPreconditionf("stake account %s cannot be restaked: %v", input.StakeAccount, blockers)
}
