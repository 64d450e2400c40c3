package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/cordialsys/restake"
	"github.com/cordialsys/restake/config/constants"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	vault "github.com/hashicorp/vault/api"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/suite"
)

type ConfigTestSuite struct {
	suite.Suite
	dir string
}

func (s *ConfigTestSuite) SetupTest() {
	s.dir = s.T().TempDir()
}

func TestConfigTestSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}

func (s *ConfigTestSuite) writeConfig(contents string) string {
	require := s.Require()
	path := filepath.Join(s.dir, "restake.yaml")
	require.NoError(os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func (s *ConfigTestSuite) TestLoadSection() {
	require := s.Require()
	programID := solana.NewWallet().PublicKey()
	s.T().Setenv(constants.ConfigEnv, s.writeConfig(fmt.Sprintf(`
restake:
  rpc: http://localhost:8899
  program_id: %s
  commitment: confirmed
  priority: aggressive
  fee_payer: env:RESTAKE_TEST_FEE_PAYER
other:
  rpc: ignored
`, programID)))

	cfg, err := Load()
	require.NoError(err)
	require.Equal("http://localhost:8899", cfg.RPC)
	require.Equal(programID.String(), cfg.ProgramID)
	require.Equal(Secret("env:RESTAKE_TEST_FEE_PAYER"), cfg.FeePayer)
	// defaults fill what the file leaves out
	require.Equal(Defaults().Keypair, cfg.Keypair)
	require.Equal(32, cfg.SlotsPerEpoch)

	id, err := cfg.GetProgramID()
	require.NoError(err)
	require.Equal(programID, id)
	commitment, err := cfg.GetCommitment()
	require.NoError(err)
	require.Equal(rpc.CommitmentConfirmed, commitment)
	priority, err := cfg.GetPriority()
	require.NoError(err)
	require.Equal(restake.Aggressive, priority)
}

func (s *ConfigTestSuite) TestLoadMissingFileUsesDefaults() {
	require := s.Require()
	s.T().Setenv(constants.ConfigEnv, filepath.Join(s.dir, "missing.yaml"))

	cfg, err := Load()
	require.NoError(err)
	require.Equal(Defaults(), cfg)

	_, err = cfg.GetProgramID()
	require.ErrorContains(err, "program_id is not configured")
}

func (s *ConfigTestSuite) TestReadFileMissing() {
	require := s.Require()
	s.T().Setenv(constants.ConfigEnv, filepath.Join(s.dir, "missing.yaml"))
	cfg := &Config{RPC: "http://localhost:8899"}
	err := ReadFile(cfg)
	require.ErrorIs(err, ErrNoConfigFile)
	require.Equal("http://localhost:8899", cfg.RPC)
}

func (s *ConfigTestSuite) TestReadFileMalformed() {
	require := s.Require()
	s.T().Setenv(constants.ConfigEnv, s.writeConfig("restake: [rpc"))
	_, err := Load()
	require.Error(err)
	require.NotErrorIs(err, ErrNoConfigFile)

	s.T().Setenv(constants.ConfigEnv, s.writeConfig("restake:\n  slots_per_epoch: many\n"))
	_, err = Load()
	require.ErrorContains(err, "decoding restake section")
}

func (s *ConfigTestSuite) TestReadFileWithoutSection() {
	require := s.Require()
	s.T().Setenv(constants.ConfigEnv, s.writeConfig("other:\n  rpc: ignored\n"))
	cfg, err := Load()
	require.NoError(err)
	require.Equal(Defaults(), cfg)
}

func (s *ConfigTestSuite) TestInvalidFields() {
	require := s.Require()
	cfg := &Config{ProgramID: "not-base58!", Commitment: "eventually"}
	_, err := cfg.GetProgramID()
	require.ErrorContains(err, "invalid program_id")
	_, err = cfg.GetCommitment()
	require.ErrorContains(err, "unsupported commitment")
	cfg.Priority = "fast"
	_, err = cfg.GetPriority()
	require.ErrorContains(err, "invalid decimal")
}

func (s *ConfigTestSuite) TestOverlay() {
	require := s.Require()
	merged := Defaults().Overlay(&Config{RPC: "http://localhost:8899", SlotsPerEpoch: 8, FeePayer: "env:PAYER"})
	require.Equal("http://localhost:8899", merged.RPC)
	require.Equal(8, merged.SlotsPerEpoch)
	require.Equal(Secret("env:PAYER"), merged.FeePayer)
	// unset fields keep their value
	require.Equal(string(rpc.CommitmentFinalized), merged.Commitment)
	require.Equal(Defaults().Keypair, merged.Keypair)

	require.Equal(Defaults(), Defaults().Overlay(nil))
	require.Equal(Defaults(), Defaults().Overlay(&Config{}))
}

func (s *ConfigTestSuite) TestLoadKeypair() {
	require := s.Require()
	key := solana.NewWallet().PrivateKey

	// solana-keygen format
	ints := make([]int, len(key))
	for i, b := range key {
		ints[i] = int(b)
	}
	bz, err := json.Marshal(ints)
	require.NoError(err)
	path := filepath.Join(s.dir, "id.json")
	require.NoError(os.WriteFile(path, bz, 0o600))

	cfg := &Config{Keypair: Secret("file:" + path)}
	loaded, err := cfg.LoadKeypair()
	require.NoError(err)
	require.Equal(key, loaded)

	// fee payer falls back to the keypair
	payer, err := cfg.LoadFeePayer()
	require.NoError(err)
	require.Equal(key, payer)

	other := solana.NewWallet().PrivateKey
	cfg.FeePayer = NewSecret(Raw, other.String())
	payer, err = cfg.LoadFeePayer()
	require.NoError(err)
	require.Equal(other, payer)

	_, err = (&Config{}).LoadKeypair()
	require.ErrorContains(err, "keypair is not configured")

	// a bare value is not a reference and is never loaded
	cfg.FeePayer = Secret(other.String())
	_, err = cfg.LoadFeePayer()
	require.ErrorContains(err, "invalid secret source")
}

func (s *ConfigTestSuite) TestParsePrivateKeyRejects() {
	require := s.Require()
	for _, value := range []string{"", "[1,2,3]", "[1,2,300]", "[oops", "0OIl"} {
		_, err := ParsePrivateKey(value)
		require.Error(err, value)
	}
}

func (s *ConfigTestSuite) TestConfigureLogger() {
	require := s.Require()
	s.T().Setenv(LogLevelEnv, "debug")
	ConfigureLogger()
	require.Equal(logrus.DebugLevel, logrus.GetLevel())
	ConfigureLogger("warn")
	require.Equal(logrus.WarnLevel, logrus.GetLevel())
	ConfigureLogger("")
	require.Equal(logrus.DebugLevel, logrus.GetLevel())
	logrus.SetLevel(logrus.InfoLevel)
}

func (s *ConfigTestSuite) TestSecretPrefixes() {
	require := s.Require()
	require.True(HasTypePrefix("env:A"))
	require.True(HasTypePrefix("raw:A"))
	require.True(HasTypePrefix("file:A"))
	require.True(HasTypePrefix("vault:A"))
	require.False(HasTypePrefix("gsm:A"))
	require.False(HasTypePrefix("file"))
	require.False(Secret(" ").IsSet())
	require.NoError(Secret("env:A").Validate())
	require.Error(Secret("/home/me/id.json").Validate())

	secret, err := NewSecret(Raw, "with:colon").Load()
	require.NoError(err)
	require.Equal("with:colon", secret)
}

func (s *ConfigTestSuite) TestSecretFromFlag() {
	require := s.Require()
	require.Equal(Secret(""), SecretFromFlag(" "))
	require.Equal(Secret("file:/home/me/id.json"), SecretFromFlag("/home/me/id.json"))
	require.Equal(Secret("env:RESTAKE_KEY"), SecretFromFlag("env:RESTAKE_KEY"))
	require.Equal(Secret("vault:https://vault,kv/data/key"), SecretFromFlag("vault:https://vault,kv/data/key"))
}

func (s *ConfigTestSuite) TestGetSecretEnv() {
	require := s.Require()
	s.T().Setenv("RESTAKE_TEST", "mysecret")
	secret, err := GetSecret("env:RESTAKE_TEST")
	require.Equal("mysecret", secret)
	require.Nil(err)
}

func (s *ConfigTestSuite) TestGetSecretFileHomeErrFileNotFound() {
	require := s.Require()
	secret, err := GetSecret("file:~/config-in-home-restake-missing")
	require.Equal("", secret)
	require.Error(err)
}

func (s *ConfigTestSuite) TestGetSecretErrNoColon() {
	require := s.Require()
	secret, err := GetSecret("invalid")
	require.Equal("", secret)
	require.EqualError(err, "invalid secret source for: ***")
}

func (s *ConfigTestSuite) TestGetSecretErrInvalidType() {
	require := s.Require()
	secret, err := GetSecret("invalid:value")
	require.Equal("", secret)
	require.EqualError(err, "invalid secret source for: ***")
}

type MockedVaultLoaded struct {
	data map[string]interface{}
}

var _ VaultLoader = &MockedVaultLoaded{}

func (l *MockedVaultLoaded) LoadSecretData(path string) (*vault.Secret, error) {
	data, ok := l.data[path]
	if !ok {
		return &vault.Secret{}, errors.New("path not found")
	}
	return &vault.Secret{
		Data: data.(map[string]interface{}),
	}, nil
}

func (s *ConfigTestSuite) TestGetSecretVault() {
	require := s.Require()
	original := NewVaultClient
	defer func() {
		NewVaultClient = original
	}()
	NewVaultClient = func(cfg *vault.Config) (VaultLoader, error) {
		vaultRes := `{
			"path1/to": {
				"data": {
					"secret": "mysecret"
				}
			},
			"path2/to": {
				"data": {
					"secret2": "mysecret2"
				}
			}
		}`
		data := make(map[string]interface{})
		err := json.Unmarshal([]byte(vaultRes), &data)
		require.NoError(err)

		return &MockedVaultLoaded{
			data: data,
		}, nil
	}

	_, err := GetSecret("vault:wrong_args")
	require.ErrorContains(err, "vault secret has 2 comma separated arguments")
	_, err = GetSecret("vault:wrong_args,aaa,bbb")
	require.ErrorContains(err, "vault secret has 2 comma separated arguments")

	_, err = GetSecret("vault:url,aaa")
	require.ErrorContains(err, "malformed vault secret")

	_, err = GetSecret("vault:url,aaa/secret")
	require.EqualError(err, "path not found")

	secret, err := GetSecret("vault:https://example.com,path1/to/secret")
	require.NoError(err)
	require.Equal("mysecret", secret)

	secret, err = GetSecret("vault:https://example.com,path2/to/secret2")
	require.NoError(err)
	require.Equal("mysecret2", secret)

	secret, err = GetSecret("vault:https://example.com,path2/to/secret_none")
	require.NoError(err)
	require.Equal("", secret)
}

func (s *ConfigTestSuite) TestGetSecretFileTrimmed() {
	require := s.Require()

	path := filepath.Join(s.dir, "secret")
	require.NoError(os.WriteFile(path, []byte(" MY SECRET \n"), 0o600))

	sec, err := GetSecret("file:" + path)
	require.NoError(err)
	require.Equal("MY SECRET", sec)
}
