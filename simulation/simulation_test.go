package simulation_test

import (
	"testing"

	stakeix "github.com/cordialsys/restake/instructions/stake"
	"github.com/cordialsys/restake/simulation"
	"github.com/stretchr/testify/require"
)

func TestRun(t *testing.T) {
	for _, slotsPerEpoch := range []uint64{0, 2, 32} {
		report, err := simulation.Run(simulation.Options{SlotsPerEpoch: slotsPerEpoch})
		require.NoError(t, err)
		require.Len(t, report.Steps, 6)

		before := report.Before()
		require.Equal(t, report.FromVoteAccount, before.Voter)
		require.Equal(t, string(stakeix.Activating), before.ActivationState)
		require.Equal(t, report.Owner, before.Staker)

		handoff := report.Steps[2]
		require.Equal(t, report.ControllingAddress, handoff.Position.Staker)
		require.Equal(t, report.Owner, handoff.Position.Withdrawer)
		require.Equal(t, string(stakeix.Deactivating), handoff.Position.ActivationState)

		require.Equal(t, string(stakeix.Inactive), report.Steps[3].Position.ActivationState)

		restaked := report.Steps[4]
		require.Equal(t, report.ToVoteAccount, restaked.Position.Voter)
		require.Equal(t, report.Owner, restaked.Position.Staker)
		require.Contains(t, restaked.Logs, "Program "+report.ProgramID+" success")

		after := report.After()
		require.Equal(t, report.ToVoteAccount, after.Voter)
		require.Equal(t, string(stakeix.Active), after.ActivationState)
		require.EqualValues(t, 3, after.Epoch)
		require.Equal(t, "1", after.Delegated.String())
		// the restake fee was not taken from the stake account
		require.Equal(t, before.Balance.String(), after.Balance.String())
	}
}

func TestRunCustomAmount(t *testing.T) {
	report, err := simulation.Run(simulation.Options{SlotsPerEpoch: 8, StakeLamports: 2_500_000_000})
	require.NoError(t, err)
	require.Equal(t, "2.5", report.After().Delegated.String())
	require.Equal(t, "2.50228288", report.After().Balance.String())
}
