package restake_test

import (
	"encoding/json"

	"github.com/cordialsys/restake"
	stakeix "github.com/cordialsys/restake/instructions/stake"
	"github.com/gagliardetto/solana-go"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

func (s *RestakeTestSuite) TestPosition() {
	require := s.Require()
	address := solana.NewWallet().PublicKey()
	owner := solana.NewWallet().PublicKey()
	voter := solana.NewWallet().PublicKey()
	state := &stakeix.State{
		Kind: stakeix.StateStake,
		Meta: stakeix.Meta{
			RentExemptReserve: 2282880,
			Authorized:        stakeix.Authorized{Staker: owner, Withdrawer: owner},
		},
		Stake: stakeix.Stake{
			Delegation: stakeix.Delegation{
				VoterPubkey:       voter,
				Stake:             1_000_000_000,
				ActivationEpoch:   4,
				DeactivationEpoch: stakeix.MaxEpoch,
			},
		},
	}

	position := restake.NewPosition(address, 1_002_282_880, state, 5)
	require.Equal(address.String(), position.StakeAccount)
	require.Equal("delegated", position.Kind)
	require.Equal(owner.String(), position.Staker)
	require.Equal(voter.String(), position.Voter)
	require.Equal(string(stakeix.Active), position.ActivationState)
	require.Equal("1.00228288", position.Balance.String())
	require.Equal("1", position.Delegated.String())

	bz, err := json.Marshal(position)
	require.NoError(err)
	require.Contains(string(bz), `"balance":"1.00228288"`)
	bz, err = yaml.Marshal(position)
	require.NoError(err)
	require.Contains(string(bz), "activation_state: active")
	bz, err = toml.Marshal(position)
	require.NoError(err)
	require.Contains(string(bz), "balance = ")
	require.Contains(string(bz), "1.00228288")

	empty := restake.NewPosition(address, 0, &stakeix.State{Kind: stakeix.StateUninitialized}, 5)
	require.Equal("uninitialized", empty.Kind)
	require.Equal("", empty.Staker)
	require.Equal(string(stakeix.Inactive), empty.ActivationState)
	require.Equal("0", empty.Delegated.String())
}
