package setup

import (
	"context"
	"fmt"
	"os"

	"github.com/cordialsys/restake/client"
	"github.com/cordialsys/restake/config"
	"github.com/cordialsys/restake/config/constants"
	"github.com/spf13/cobra"
)

type ContextKey string

const ContextConfig ContextKey = "config"

func WrapConfig(ctx context.Context, cfg *config.Config) context.Context {
	return context.WithValue(ctx, ContextConfig, cfg)
}

func UnwrapConfig(ctx context.Context) *config.Config {
	return ctx.Value(ContextConfig).(*config.Config)
}

type RpcArgs struct {
	Rpc            string
	ConfigPath     string
	ProgramID      string
	Commitment     string
	Priority       string
	Keypair        string
	FeePayer       string
	VerbosityCount int
}

func AddRpcArgs(cmd *cobra.Command) {
	cmd.PersistentFlags().String("rpc", "", "RPC url to use. Overrides the config file.")
	cmd.PersistentFlags().String("config", "", fmt.Sprintf("Path to restake.yaml (may set %s).", constants.ConfigEnv))
	cmd.PersistentFlags().String("program", "", "Restake program id. Overrides the config file.")
	cmd.PersistentFlags().String("commitment", "", "Commitment to query with (processed, confirmed, finalized).")
	cmd.PersistentFlags().String("priority", "", "Compute unit price level (low, market, aggressive, very-aggressive or a multiplier).")
	cmd.PersistentFlags().String("keypair", "", "Keypair file or secret reference (env:, file:, raw:, vault:) of the stake owner.")
	cmd.PersistentFlags().String("fee-payer", "", "Keypair file or secret reference paying for restake transactions.")
	cmd.PersistentFlags().CountP("verbose", "v", "Set verbosity.")
}

func RpcArgsFromCmd(cmd *cobra.Command) (*RpcArgs, error) {
	rpc, err := cmd.Flags().GetString("rpc")
	if err != nil {
		return nil, err
	}
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	programID, err := cmd.Flags().GetString("program")
	if err != nil {
		return nil, err
	}
	commitment, err := cmd.Flags().GetString("commitment")
	if err != nil {
		return nil, err
	}
	priority, err := cmd.Flags().GetString("priority")
	if err != nil {
		return nil, err
	}
	keypair, err := cmd.Flags().GetString("keypair")
	if err != nil {
		return nil, err
	}
	feePayer, err := cmd.Flags().GetString("fee-payer")
	if err != nil {
		return nil, err
	}
	count, _ := cmd.Flags().GetCount("verbose")
	return &RpcArgs{
		Rpc:            rpc,
		ConfigPath:     configPath,
		ProgramID:      programID,
		Commitment:     commitment,
		Priority:       priority,
		Keypair:        keypair,
		FeePayer:       feePayer,
		VerbosityCount: count,
	}, nil
}

// VerbosityLevel maps -v flags to a log level. Without flags the environment decides.
func VerbosityLevel(count int) string {
	switch {
	case count <= 0:
		return ""
	case count == 1:
		return "info"
	case count == 2:
		return "debug"
	default:
		return "trace"
	}
}

// LoadConfig reads the config file and applies the command line overrides.
func LoadConfig(args *RpcArgs) (*config.Config, error) {
	if args.ConfigPath != "" {
		// the config package only looks at the env
		if err := os.Setenv(constants.ConfigEnv, args.ConfigPath); err != nil {
			return nil, err
		}
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return cfg.Overlay(&config.Config{
		RPC:        args.Rpc,
		ProgramID:  args.ProgramID,
		Commitment: args.Commitment,
		Priority:   args.Priority,
		Keypair:    config.SecretFromFlag(args.Keypair),
		FeePayer:   config.SecretFromFlag(args.FeePayer),
	}), nil
}

func NewClient(cfg *config.Config) (*client.Client, error) {
	programID, err := cfg.GetProgramID()
	if err != nil {
		return nil, err
	}
	commitment, err := cfg.GetCommitment()
	if err != nil {
		return nil, err
	}
	priority, err := cfg.GetPriority()
	if err != nil {
		return nil, err
	}
	return client.NewClient(cfg.RPC, programID).WithCommitment(commitment).WithPriority(priority), nil
}
