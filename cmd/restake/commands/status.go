package commands

import (
	"github.com/cordialsys/restake"
	"github.com/cordialsys/restake/client"
	"github.com/cordialsys/restake/cmd/restake/setup"
	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"
)

type status struct {
	Position           restake.Position `json:"position" yaml:"position" toml:"position"`
	VoteAccount        string           `json:"vote_account,omitempty" yaml:"vote_account,omitempty" toml:"vote_account,omitempty"`
	ControllingAddress string           `json:"controlling_address,omitempty" yaml:"controlling_address,omitempty" toml:"controlling_address,omitempty"`
	Ready              *bool            `json:"ready,omitempty" yaml:"ready,omitempty" toml:"ready,omitempty"`
	Blockers           []string         `json:"blockers,omitempty" yaml:"blockers,omitempty" toml:"blockers,omitempty"`
}

func CmdStatus() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show a stake account, and whether it can be restaked when --vote and --target are given.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := setup.UnwrapConfig(cmd.Context())
			rpcClient, err := setup.NewClient(cfg)
			if err != nil {
				return err
			}
			stakeAccount, err := requireKey(cmd, "stake")
			if err != nil {
				return err
			}
			validator, err := optionalKey(cmd, "vote", solana.PublicKey{})
			if err != nil {
				return err
			}
			target, err := optionalKey(cmd, "target", solana.PublicKey{})
			if err != nil {
				return err
			}

			parsed, err := rpcClient.FetchStakeAccount(cmd.Context(), stakeAccount)
			if err != nil {
				return err
			}
			epoch, err := rpcClient.FetchEpoch(cmd.Context())
			if err != nil {
				return err
			}
			out := &status{
				Position: restake.NewPosition(parsed.Address, parsed.Lamports, parsed.State, epoch),
			}
			if !validator.IsZero() && !target.IsZero() {
				input, err := rpcClient.FetchRestakeInput(cmd.Context(), client.RestakeArgs{
					StakeAccount: stakeAccount,
					Validator:    validator,
					Target:       target,
				})
				if err != nil {
					return err
				}
				ready := input.Ready()
				out.VoteAccount = input.VoteAccount.String()
				out.ControllingAddress = input.ControllingAddress.String()
				out.Ready = &ready
				out.Blockers = input.Blockers()
			}
			return printAs(cmd.OutOrStdout(), format, out)
		},
	}
	cmd.Flags().String("stake", "", "Stake account to inspect.")
	cmd.Flags().String("vote", "", "Vote account (or validator identity) to check readiness against.")
	cmd.Flags().String("target", "", "Target authority to check readiness against.")
	addFormatFlag(cmd, &format)
	return cmd
}
