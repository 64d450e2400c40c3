package main

import (
	"context"
	"os"

	"github.com/cordialsys/restake/cmd/restake/commands"
	"github.com/cordialsys/restake/cmd/restake/setup"
	"github.com/cordialsys/restake/config"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func CmdRestake() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "restake",
		Short:        "Move Solana stake between validators through the restake program",
		Args:         cobra.ExactArgs(0),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			args, err := setup.RpcArgsFromCmd(cmd)
			if err != nil {
				return err
			}
			config.ConfigureLogger(setup.VerbosityLevel(args.VerbosityCount))

			cfg, err := setup.LoadConfig(args)
			if err != nil {
				return err
			}
			logrus.WithFields(logrus.Fields{
				"rpc":     cfg.RPC,
				"program": cfg.ProgramID,
			}).Debug("config")

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cmd.SetContext(setup.WrapConfig(ctx, cfg))
			return nil
		},
	}
	setup.AddRpcArgs(cmd)

	cmd.AddCommand(commands.CmdAddress())
	cmd.AddCommand(commands.CmdHandoff())
	cmd.AddCommand(commands.CmdRestake())
	cmd.AddCommand(commands.CmdStatus())
	cmd.AddCommand(commands.CmdSimulate())

	return cmd
}

func main() {
	rootCmd := CmdRestake()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
