package program_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/cordialsys/restake/instructions/stake"
	"github.com/cordialsys/restake/program"
	"github.com/cordialsys/restake/sysvar"
	"github.com/cordialsys/restake/testutil"
	"github.com/gagliardetto/solana-go"
	solstake "github.com/gagliardetto/solana-go/programs/stake"
	"github.com/stretchr/testify/require"
)

type invocation struct {
	programID solana.PublicKey
	metas     []*solana.AccountMeta
	data      []byte
	accounts  []solana.PublicKey
	signers   []program.SignerSeeds
}

// recordingHost records cross-program calls and fails the call at index failAt.
type recordingHost struct {
	calls  []invocation
	logs   []string
	failAt int
	err    error
}

var _ program.Host = &recordingHost{}

func newRecordingHost() *recordingHost {
	return &recordingHost{failAt: -1}
}

func (h *recordingHost) InvokeSigned(ix solana.Instruction, accounts []*program.AccountInfo, signers ...program.SignerSeeds) error {
	data, err := ix.Data()
	if err != nil {
		return err
	}
	keys := []solana.PublicKey{}
	for _, acc := range accounts {
		keys = append(keys, acc.Key)
	}
	h.calls = append(h.calls, invocation{
		programID: ix.ProgramID(),
		metas:     ix.Accounts(),
		data:      data,
		accounts:  keys,
		signers:   signers,
	})
	if len(h.calls)-1 == h.failAt {
		return h.err
	}
	return nil
}

func (h *recordingHost) Log(format string, args ...interface{}) {
	h.logs = append(h.logs, fmt.Sprintf(format, args...))
}

type stakeFixture struct {
	programID solana.PublicKey
	target    solana.PublicKey
	vote      solana.PublicKey
	stake     solana.PublicKey
	pda       solana.PublicKey
	accounts  []*program.AccountInfo
}

func newStakeFixture(t *testing.T) *stakeFixture {
	f := &stakeFixture{
		programID: testutil.NewPublicKey(),
		target:    testutil.NewPublicKey(),
		vote:      testutil.NewPublicKey(),
		stake:     testutil.NewPublicKey(),
	}
	pda, _, err := program.ControllingAddress(f.programID, f.vote, f.target)
	require.NoError(t, err)
	f.pda = pda
	info := func(key solana.PublicKey, writable bool) *program.AccountInfo {
		return &program.AccountInfo{Key: key, IsWritable: writable, Account: &program.Account{}}
	}
	f.accounts = []*program.AccountInfo{
		info(f.stake, true),
		info(f.vote, false),
		info(sysvar.ClockID, false),
		info(sysvar.StakeHistoryID, false),
		info(stake.ConfigID, false),
		info(f.pda, false),
		info(stake.ProgramID, false),
	}
	return f
}

func (f *stakeFixture) data(t *testing.T) []byte {
	data, err := program.NewStakeRequest(f.target).Encode()
	require.NoError(t, err)
	return data
}

func TestProcessStake(t *testing.T) {
	f := newStakeFixture(t)
	host := newRecordingHost()
	processor := program.NewProcessor(f.programID)

	err := processor.Process(host, f.accounts, f.data(t))
	require.NoError(t, err)
	require.Len(t, host.calls, 2)

	_, bump, err := solana.FindProgramAddress([][]byte{[]byte("stake"), f.vote[:], f.target[:]}, f.programID)
	require.NoError(t, err)
	for _, call := range host.calls {
		require.Equal(t, stake.ProgramID, call.programID)
		require.Len(t, call.signers, 1)
		require.Equal(t, f.programID, call.signers[0].ProgramID)
		require.Equal(t, bump, call.signers[0].Bump)
		address, err := call.signers[0].Address()
		require.NoError(t, err)
		require.Equal(t, f.pda, address)
	}

	// delegate first
	delegate := host.calls[0]
	ix, err := stake.DecodeInstruction(delegate.metas, delegate.data)
	require.NoError(t, err)
	require.IsType(t, &solstake.DelegateStake{}, ix.Impl)
	require.Equal(t, []solana.PublicKey{
		f.stake, f.vote, sysvar.ClockID, sysvar.StakeHistoryID, stake.ConfigID, f.pda,
	}, delegate.accounts)
	require.Len(t, delegate.metas, 6)
	require.True(t, delegate.metas[0].IsWritable)
	require.True(t, delegate.metas[5].IsSigner)
	require.Equal(t, f.pda, delegate.metas[5].PublicKey)

	// then give authority to the target
	authorize := host.calls[1]
	ix, err = stake.DecodeInstruction(authorize.metas, authorize.data)
	require.NoError(t, err)
	auth, ok := ix.Impl.(*stake.Authorize)
	require.True(t, ok)
	require.Equal(t, f.target, auth.NewAuthority)
	require.Equal(t, stake.AuthorizeStaker, auth.Kind)
	require.Equal(t, []solana.PublicKey{f.stake, sysvar.ClockID, f.pda}, authorize.accounts)
	require.True(t, authorize.metas[2].IsSigner)

	require.Equal(t, []string{"Authorize the target stake authority"}, host.logs)
}

func TestProcessStakeAccountArity(t *testing.T) {
	f := newStakeFixture(t)
	extra := &program.AccountInfo{Key: testutil.NewPublicKey(), Account: &program.Account{}}
	vectors := []struct {
		description string
		accounts    []*program.AccountInfo
	}{
		{"none", nil},
		{"six", f.accounts[:6]},
		{"eight", append(append([]*program.AccountInfo{}, f.accounts...), extra)},
	}
	for i, v := range vectors {
		t.Run(fmt.Sprintf("%d - %s", i, v.description), func(t *testing.T) {
			host := newRecordingHost()
			err := program.NewProcessor(f.programID).Process(host, v.accounts, f.data(t))
			require.ErrorIs(t, err, program.ErrNotEnoughAccountKeys)
			require.Empty(t, host.calls)
		})
	}
}

func TestProcessInvalidData(t *testing.T) {
	f := newStakeFixture(t)
	host := newRecordingHost()
	data := append(f.data(t), 0xff)
	err := program.NewProcessor(f.programID).Process(host, f.accounts, data)
	require.ErrorIs(t, err, program.ErrInvalidInstructionData)
	require.Empty(t, host.calls)

	// decoding happens before the account check
	err = program.NewProcessor(f.programID).Process(host, f.accounts[:3], []byte{7})
	require.ErrorIs(t, err, program.ErrInvalidInstructionData)
	require.Empty(t, host.calls)
}

func TestProcessSubRequestFailure(t *testing.T) {
	failure := errors.New("stake program rejected the call")
	vectors := []struct {
		description string
		failAt      int
		calls       int
	}{
		{"delegate fails", 0, 1},
		{"authorize fails", 1, 2},
	}
	for i, v := range vectors {
		t.Run(fmt.Sprintf("%d - %s", i, v.description), func(t *testing.T) {
			f := newStakeFixture(t)
			host := newRecordingHost()
			host.failAt = v.failAt
			host.err = failure

			err := program.NewProcessor(f.programID).Process(host, f.accounts, f.data(t))
			require.Equal(t, failure, err)
			require.Len(t, host.calls, v.calls)
		})
	}
}
