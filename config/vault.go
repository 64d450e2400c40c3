package config

import (
	"errors"
	"strings"

	vault "github.com/hashicorp/vault/api"
)

type VaultLoader interface {
	LoadSecretData(path string) (*vault.Secret, error)
}

type DefaultVaultLoader struct {
	*vault.Client
}

var _ VaultLoader = &DefaultVaultLoader{}

func newVaultClient(cfg *vault.Config) (VaultLoader, error) {
	cli, err := vault.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	return &DefaultVaultLoader{Client: cli}, nil
}

// Replaced in tests.
var NewVaultClient = newVaultClient

func (v *DefaultVaultLoader) LoadSecretData(vaultPath string) (*vault.Secret, error) {
	secret, err := v.Logical().Read(vaultPath)
	if err != nil {
		return nil, err
	}
	if secret == nil {
		// a missing path is not an error for vault
		return &vault.Secret{}, nil
	}
	return secret, nil
}

// loadVault resolves "URL,PATH/KEY" against a KV v2 mount. VAULT_TOKEN is read from the
// environment by the vault client.
func loadVault(ref string) (string, error) {
	url, fullPath, ok := strings.Cut(ref, ",")
	if !ok || strings.Contains(fullPath, ",") {
		return "", errors.New("vault secret has 2 comma separated arguments (url,path)")
	}
	idx := strings.LastIndex(fullPath, "/")
	if idx <= 0 || idx == len(fullPath)-1 {
		return "", errors.New("malformed vault secret, expected url,path/key")
	}
	client, err := NewVaultClient(&vault.Config{Address: url})
	if err != nil {
		return "", err
	}
	secret, err := client.LoadSecretData(fullPath[:idx])
	if err != nil {
		return "", err
	}
	data, _ := secret.Data["data"].(map[string]interface{})
	value, _ := data[fullPath[idx+1:]].(string)
	return strings.TrimSpace(value), nil
}
