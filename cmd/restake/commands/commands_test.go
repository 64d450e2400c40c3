package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/cordialsys/restake/cmd/restake/setup"
	"github.com/cordialsys/restake/config"
	"github.com/cordialsys/restake/program"
	"github.com/cordialsys/restake/simulation"
	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, cfg *config.Config, cmd *cobra.Command, args ...string) (string, error) {
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(setup.WrapConfig(context.Background(), cfg))
	return out.String(), err
}

func TestAddressCommand(t *testing.T) {
	programID := solana.NewWallet().PublicKey()
	voteAccount := solana.NewWallet().PublicKey()
	target := solana.NewWallet().PublicKey()
	cfg := config.Defaults()
	cfg.ProgramID = programID.String()

	out, err := run(t, cfg, CmdAddress(), "--vote", voteAccount.String(), "--target", target.String())
	require.NoError(t, err)
	var result controllingAddress
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	expected, recipe, err := program.ControllingAddress(programID, voteAccount, target)
	require.NoError(t, err)
	require.Equal(t, expected.String(), result.Address)
	require.Equal(t, recipe.Bump, result.Bump)

	out, err = run(t, cfg, CmdAddress(), "--vote", voteAccount.String(), "--target", target.String(), "--format", "yaml")
	require.NoError(t, err)
	require.Contains(t, out, "address: "+expected.String())

	_, err = run(t, cfg, CmdAddress(), "--vote", voteAccount.String())
	require.ErrorContains(t, err, "--target is required")
	_, err = run(t, cfg, CmdAddress(), "--vote", "bad", "--target", target.String())
	require.ErrorContains(t, err, "invalid --vote")

	_, err = run(t, config.Defaults(), CmdAddress(), "--vote", voteAccount.String(), "--target", target.String())
	require.ErrorContains(t, err, "program_id is not configured")
}

func TestSimulateCommand(t *testing.T) {
	cfg := config.Defaults()
	cfg.SlotsPerEpoch = 4
	out, err := run(t, cfg, CmdSimulate(), "--amount", "2")
	require.NoError(t, err)
	var report simulation.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	require.Equal(t, report.ToVoteAccount, report.After().Voter)
	require.Equal(t, "2", report.After().Delegated.String())
	for _, step := range report.Steps {
		require.Empty(t, step.Logs)
	}

	out, err = run(t, cfg, CmdSimulate(), "--format", "toml", "--logs")
	require.NoError(t, err)
	require.Contains(t, out, "controlling_address = ")
	require.Contains(t, out, "Program log: ")

	_, err = run(t, cfg, CmdSimulate(), "--amount=-1")
	require.ErrorContains(t, err, "amount must be positive")
}

func TestPrintAs(t *testing.T) {
	data := map[string]string{"a": "b"}
	for _, format := range formats {
		buf := &bytes.Buffer{}
		require.NoError(t, printAs(buf, format, data))
		require.Contains(t, buf.String(), "a")
	}
	require.ErrorContains(t, printAs(&bytes.Buffer{}, "xml", data), "unsupported format")
}

func TestParseSol(t *testing.T) {
	lamports, err := parseSol("1.5")
	require.NoError(t, err)
	require.EqualValues(t, 1_500_000_000, lamports)
	_, err = parseSol("0")
	require.Error(t, err)
	_, err = parseSol("abc")
	require.Error(t, err)
	_, err = parseSol("100000000000")
	require.ErrorContains(t, err, "too large")
}
