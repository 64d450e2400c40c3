package commands

import (
	"encoding/base64"
	"fmt"

	"github.com/cordialsys/restake/builder"
	"github.com/cordialsys/restake/cmd/restake/setup"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func CmdHandoff() *cobra.Command {
	var deactivate, dryRun bool
	cmd := &cobra.Command{
		Use:   "handoff",
		Short: "Hand the staker authority of a stake account to the controlling address.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := setup.UnwrapConfig(cmd.Context())
			rpcClient, err := setup.NewClient(cfg)
			if err != nil {
				return err
			}
			owner, err := cfg.LoadKeypair()
			if err != nil {
				return err
			}
			stakeAccount, err := requireKey(cmd, "stake")
			if err != nil {
				return err
			}
			validator, err := requireKey(cmd, "vote")
			if err != nil {
				return err
			}
			target, err := optionalKey(cmd, "target", owner.PublicKey())
			if err != nil {
				return err
			}
			voteAccount, err := rpcClient.ResolveVoteAccount(cmd.Context(), validator)
			if err != nil {
				return err
			}
			input, err := rpcClient.FetchBaseInput(cmd.Context(), stakeAccount)
			if err != nil {
				return err
			}

			tx, err := builder.NewTxBuilder(rpcClient.ProgramID).Handoff(builder.HandoffArgs{
				Owner:        owner.PublicKey(),
				StakeAccount: stakeAccount,
				VoteAccount:  voteAccount,
				Target:       target,
				Deactivate:   deactivate,
			}, input)
			if err != nil {
				return err
			}
			if err := tx.Sign(owner); err != nil {
				return err
			}
			logrus.WithFields(logrus.Fields{
				"stake":      stakeAccount.String(),
				"vote":       voteAccount.String(),
				"target":     target.String(),
				"deactivate": deactivate,
			}).Info("handoff")

			if dryRun {
				bz, err := tx.Serialize()
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), base64.StdEncoding.EncodeToString(bz))
				return nil
			}
			sig, err := rpcClient.SubmitTx(cmd.Context(), tx)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), sig.String())
			return nil
		},
	}
	cmd.Flags().String("stake", "", "Stake account to hand off.")
	cmd.Flags().String("vote", "", "Vote account (or validator identity) the stake will move to.")
	cmd.Flags().String("target", "", "Authority that receives the staker role after the restake. Defaults to the keypair.")
	cmd.Flags().BoolVar(&deactivate, "deactivate", false, "Deactivate the current delegation in the same transaction.")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the signed transaction instead of broadcasting it.")
	return cmd
}
