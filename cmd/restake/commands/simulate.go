package commands

import (
	"github.com/cordialsys/restake/cmd/restake/setup"
	"github.com/cordialsys/restake/simulation"
	"github.com/spf13/cobra"
)

func CmdSimulate() *cobra.Command {
	var format string
	var amount string
	var verbose bool
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run the delegate, hand off, cool down and restake lifecycle on an in-process runtime.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := setup.UnwrapConfig(cmd.Context())
			lamports, err := parseSol(amount)
			if err != nil {
				return err
			}
			report, err := simulation.Run(simulation.Options{
				SlotsPerEpoch: uint64(cfg.SlotsPerEpoch),
				StakeLamports: lamports,
			})
			if err != nil {
				return err
			}
			if !verbose {
				for i := range report.Steps {
					report.Steps[i].Logs = nil
				}
			}
			return printAs(cmd.OutOrStdout(), format, report)
		},
	}
	cmd.Flags().StringVar(&amount, "amount", "1", "SOL to delegate.")
	cmd.Flags().BoolVar(&verbose, "logs", false, "Include program logs of each transaction.")
	addFormatFlag(cmd, &format)
	return cmd
}
