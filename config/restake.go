package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/cordialsys/restake"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/sirupsen/logrus"
)

const Section = "restake"

const DefaultRPC = "https://api.mainnet-beta.solana.com"

// Config of the restake CLI, read from the "restake" section of restake.yaml.
//
//	restake:
//	  rpc: https://api.devnet.solana.com
//	  program_id: <base58>
//	  keypair: file:~/.config/solana/id.json
//	  fee_payer: env:RESTAKE_FEE_PAYER
type Config struct {
	RPC        string `yaml:"rpc,omitempty"`
	ProgramID  string `yaml:"program_id,omitempty"`
	Commitment string `yaml:"commitment,omitempty"`
	// Owner of the stake accounts, signs the handoff.
	Keypair Secret `yaml:"keypair,omitempty"`
	// Pays for restake transactions. Falls back to the keypair.
	FeePayer Secret `yaml:"fee_payer,omitempty"`
	// Compute unit price level: low, market, aggressive, very-aggressive or a multiplier.
	Priority string `yaml:"priority,omitempty"`
	// Epoch length of the in-process runtime used by `simulate`.
	SlotsPerEpoch int `yaml:"slots_per_epoch,omitempty"`
}

func Defaults() *Config {
	return &Config{
		RPC:           DefaultRPC,
		Commitment:    string(rpc.CommitmentFinalized),
		Priority:      string(restake.Market),
		Keypair:       Secret("file:~/.config/solana/id.json"),
		SlotsPerEpoch: 32,
	}
}

// Load reads the config file over the defaults. Without a file the defaults are used.
func Load() (*Config, error) {
	cfg := Defaults()
	if err := ReadFile(cfg); err != nil {
		if errors.Is(err, ErrNoConfigFile) {
			logrus.WithError(err).Debug("using default config")
			return cfg, nil
		}
		return nil, err
	}
	return cfg, nil
}

// Overlay replaces every field that is set in overrides.
func (cfg *Config) Overlay(overrides *Config) *Config {
	if overrides == nil {
		return cfg
	}
	overlay(&cfg.RPC, overrides.RPC)
	overlay(&cfg.ProgramID, overrides.ProgramID)
	overlay(&cfg.Commitment, overrides.Commitment)
	overlay(&cfg.Keypair, overrides.Keypair)
	overlay(&cfg.FeePayer, overrides.FeePayer)
	overlay(&cfg.Priority, overrides.Priority)
	overlay(&cfg.SlotsPerEpoch, overrides.SlotsPerEpoch)
	return cfg
}

func overlay[T comparable](dst *T, value T) {
	var zero T
	if value != zero {
		*dst = value
	}
}

func (cfg *Config) GetProgramID() (solana.PublicKey, error) {
	if cfg.ProgramID == "" {
		return solana.PublicKey{}, fmt.Errorf("program_id is not configured")
	}
	programID, err := solana.PublicKeyFromBase58(cfg.ProgramID)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("invalid program_id '%s': %v", cfg.ProgramID, err)
	}
	return programID, nil
}

func (cfg *Config) GetCommitment() (rpc.CommitmentType, error) {
	switch commitment := rpc.CommitmentType(cfg.Commitment); commitment {
	case "":
		return rpc.CommitmentFinalized, nil
	case rpc.CommitmentFinalized, rpc.CommitmentConfirmed, rpc.CommitmentProcessed:
		return commitment, nil
	default:
		return "", fmt.Errorf("unsupported commitment '%s'", cfg.Commitment)
	}
}

func (cfg *Config) GetPriority() (restake.Priority, error) {
	return restake.NewPriority(cfg.Priority)
}

func (cfg *Config) LoadKeypair() (solana.PrivateKey, error) {
	if !cfg.Keypair.IsSet() {
		return nil, fmt.Errorf("keypair is not configured")
	}
	return LoadPrivateKey(cfg.Keypair)
}

func (cfg *Config) LoadFeePayer() (solana.PrivateKey, error) {
	if !cfg.FeePayer.IsSet() {
		return cfg.LoadKeypair()
	}
	return LoadPrivateKey(cfg.FeePayer)
}

// LoadPrivateKey dereferences a secret holding either a base58 private key or the
// JSON byte array written by solana-keygen.
func LoadPrivateKey(secret Secret) (solana.PrivateKey, error) {
	if err := secret.Validate(); err != nil {
		return nil, err
	}
	value, err := secret.Load()
	if err != nil {
		return nil, err
	}
	return ParsePrivateKey(value)
}

func ParsePrivateKey(value string) (solana.PrivateKey, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, fmt.Errorf("private key is empty")
	}
	if strings.HasPrefix(value, "[") {
		var bz []byte
		var ints []int
		if err := json.Unmarshal([]byte(value), &ints); err != nil {
			return nil, fmt.Errorf("invalid keypair file: %v", err)
		}
		for _, i := range ints {
			if i < 0 || i > 255 {
				return nil, fmt.Errorf("invalid keypair file: byte out of range %d", i)
			}
			bz = append(bz, byte(i))
		}
		return checkPrivateKey(solana.PrivateKey(bz))
	}
	key, err := solana.PrivateKeyFromBase58(value)
	if err != nil {
		return nil, fmt.Errorf("invalid base58 private key: %v", err)
	}
	return checkPrivateKey(key)
}

func checkPrivateKey(key solana.PrivateKey) (solana.PrivateKey, error) {
	if len(key) != 64 {
		return nil, fmt.Errorf("private key must be 64 bytes, got %d", len(key))
	}
	return key, nil
}
