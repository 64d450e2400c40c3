package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/cordialsys/restake"
	"github.com/gagliardetto/solana-go"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var formats = []string{"json", "yaml", "toml"}

func addFormatFlag(cmd *cobra.Command, format *string) {
	cmd.Flags().StringVar(format, "format", "json", fmt.Sprintf("Output format (options: %v).", formats))
}

func printAs(w io.Writer, format string, data any) error {
	var bz []byte
	var err error
	switch strings.ToLower(format) {
	case "", "json":
		bz, err = json.MarshalIndent(data, "", "  ")
		bz = append(bz, '\n')
	case "yaml":
		bz, err = yaml.Marshal(data)
	case "toml":
		bz, err = toml.Marshal(data)
	default:
		return fmt.Errorf("unsupported format '%s' (options: %v)", format, formats)
	}
	if err != nil {
		return err
	}
	_, err = w.Write(bz)
	return err
}

func requireKey(cmd *cobra.Command, flag string) (solana.PublicKey, error) {
	value, err := cmd.Flags().GetString(flag)
	if err != nil {
		return solana.PublicKey{}, err
	}
	if value == "" {
		return solana.PublicKey{}, fmt.Errorf("--%s is required", flag)
	}
	key, err := restake.Address(value).PublicKey()
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("invalid --%s '%s': %v", flag, value, err)
	}
	return key, nil
}

// optionalKey returns the fallback when the flag is not set.
func optionalKey(cmd *cobra.Command, flag string, fallback solana.PublicKey) (solana.PublicKey, error) {
	value, err := cmd.Flags().GetString(flag)
	if err != nil {
		return solana.PublicKey{}, err
	}
	if value == "" {
		return fallback, nil
	}
	return requireKey(cmd, flag)
}

func parseSol(amount string) (uint64, error) {
	human, err := restake.NewAmountHumanReadableFromStr(amount)
	if err != nil {
		return 0, fmt.Errorf("invalid amount '%s': %v", amount, err)
	}
	if human.Decimal().IsNegative() || human.IsZero() {
		return 0, fmt.Errorf("amount must be positive")
	}
	lamports := human.ToLamports()
	if !lamports.Int().IsUint64() {
		return 0, fmt.Errorf("amount %s is too large", amount)
	}
	return lamports.Uint64(), nil
}
