package commands

import (
	"github.com/cordialsys/restake/cmd/restake/setup"
	"github.com/cordialsys/restake/program"
	"github.com/spf13/cobra"
)

type controllingAddress struct {
	Address     string `json:"address" yaml:"address" toml:"address"`
	Bump        uint8  `json:"bump" yaml:"bump" toml:"bump"`
	ProgramID   string `json:"program_id" yaml:"program_id" toml:"program_id"`
	VoteAccount string `json:"vote_account" yaml:"vote_account" toml:"vote_account"`
	Target      string `json:"target" yaml:"target" toml:"target"`
}

func CmdAddress() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "address",
		Short: "Derive the controlling address for a vote account and target authority.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := setup.UnwrapConfig(cmd.Context())
			programID, err := cfg.GetProgramID()
			if err != nil {
				return err
			}
			voteAccount, err := requireKey(cmd, "vote")
			if err != nil {
				return err
			}
			target, err := requireKey(cmd, "target")
			if err != nil {
				return err
			}
			address, recipe, err := program.ControllingAddress(programID, voteAccount, target)
			if err != nil {
				return err
			}
			return printAs(cmd.OutOrStdout(), format, &controllingAddress{
				Address:     address.String(),
				Bump:        recipe.Bump,
				ProgramID:   programID.String(),
				VoteAccount: voteAccount.String(),
				Target:      target.String(),
			})
		},
	}
	cmd.Flags().String("vote", "", "Vote account the stake will be delegated to.")
	cmd.Flags().String("target", "", "Authority that receives the staker role after the restake.")
	addFormatFlag(cmd, &format)
	return cmd
}
