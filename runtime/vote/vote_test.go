package vote_test

import (
	"testing"

	"github.com/cordialsys/restake/runtime/vote"
	"github.com/cordialsys/restake/testutil"
	"github.com/stretchr/testify/require"
)

func TestNewAccount(t *testing.T) {
	node := testutil.NewPublicKey()
	withdrawer := testutil.NewPublicKey()
	account, err := vote.NewAccount(node, withdrawer, 10, 27074400)
	require.NoError(t, err)
	require.Equal(t, vote.ProgramID, account.Owner)
	require.Len(t, account.Data, vote.StateSize)
	require.EqualValues(t, 27074400, account.Lamports)

	state, err := vote.Decode(account.Data)
	require.NoError(t, err)
	require.Equal(t, node, state.NodePubkey)
	require.Equal(t, withdrawer, state.AuthorizedWithdrawer)
	require.EqualValues(t, 10, state.Commission)
}

func TestDecodeRejects(t *testing.T) {
	_, err := vote.Decode(nil)
	require.Error(t, err)

	// uninitialized
	_, err = vote.Decode(make([]byte, vote.StateSize))
	require.Error(t, err)

	data := make([]byte, vote.StateSize)
	data[0] = 9
	_, err = vote.Decode(data)
	require.Error(t, err)
}
