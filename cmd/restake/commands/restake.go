package commands

import (
	"encoding/base64"
	"fmt"

	"github.com/cordialsys/restake/builder"
	"github.com/cordialsys/restake/client"
	"github.com/cordialsys/restake/cmd/restake/setup"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func CmdRestake() *cobra.Command {
	var force, dryRun bool
	cmd := &cobra.Command{
		Use:   "restake",
		Short: "Delegate a handed off stake account and return its staker authority to the target.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := setup.UnwrapConfig(cmd.Context())
			rpcClient, err := setup.NewClient(cfg)
			if err != nil {
				return err
			}
			feePayer, err := cfg.LoadFeePayer()
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
			target, err := requireKey(cmd, "target")
			if err != nil {
				return err
			}

			input, err := rpcClient.FetchRestakeInput(cmd.Context(), client.RestakeArgs{
				StakeAccount: stakeAccount,
				Validator:    validator,
				Target:       target,
			})
			if err != nil {
				return err
			}
			if err := client.CheckReady(input); err != nil {
				if !force {
					return err
				}
				logrus.WithError(err).Warn("submitting anyway")
			}

			tx, err := builder.NewTxBuilder(rpcClient.ProgramID).Restake(builder.RestakeArgs{
				FeePayer:     feePayer.PublicKey(),
				StakeAccount: input.StakeAccount,
				VoteAccount:  input.VoteAccount,
				Target:       input.TargetAuthority,
			}, &input.TxInput)
			if err != nil {
				return err
			}
			if err := tx.Sign(feePayer); err != nil {
				return err
			}
			logrus.WithFields(logrus.Fields{
				"stake":       input.StakeAccount.String(),
				"vote":        input.VoteAccount.String(),
				"controlling": input.ControllingAddress.String(),
				"fee_payer":   feePayer.PublicKey().String(),
			}).Info("restake")

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
				return fmt.Errorf("%s: %w", client.CheckError(err), err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), sig.String())
			return nil
		},
	}
	cmd.Flags().String("stake", "", "Stake account to restake.")
	cmd.Flags().String("vote", "", "Vote account (or validator identity) to delegate to.")
	cmd.Flags().String("target", "", "Authority that receives the staker role.")
	cmd.Flags().BoolVar(&force, "force", false, "Submit even if the stake account does not look ready.")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the signed transaction instead of broadcasting it.")
	return cmd
}
