package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// Secret is a reference to a secret value, e.g. "env:RESTAKE_KEYPAIR" or
// "file:~/.config/solana/id.json". The value itself never sits in the config.
type Secret string

type SecretType string

var Env SecretType = "env"
var Vault SecretType = "vault"
var Raw SecretType = "raw"
var File SecretType = "file"

var errInvalidSource = errors.New("invalid secret source for: ***")

func NewSecret(kind SecretType, value string) Secret {
	return Secret(string(kind) + ":" + value)
}

// SecretFromFlag accepts either a full secret reference or a bare path to a keypair file.
func SecretFromFlag(value string) Secret {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if HasTypePrefix(value) {
		return Secret(value)
	}
	return NewSecret(File, value)
}

func HasTypePrefix(secretRef string) bool {
	kind, _, ok := strings.Cut(secretRef, ":")
	if !ok {
		return false
	}
	switch SecretType(kind) {
	case Env, Vault, Raw, File:
		return true
	}
	return false
}

func (s Secret) IsSet() bool {
	return strings.TrimSpace(string(s)) != ""
}

// Validate checks the reference names a known source without loading it.
func (s Secret) Validate() error {
	if !HasTypePrefix(string(s)) {
		return fmt.Errorf("%w (expected one of %s:, %s:, %s:, %s:)", errInvalidSource, Env, File, Raw, Vault)
	}
	return nil
}

func (s Secret) Load() (string, error) {
	return GetSecret(string(s))
}

// GetSecret dereferences a secret reference: env:NAME, file:PATH, raw:VALUE or
// vault:URL,PATH/KEY.
func GetSecret(uri string) (string, error) {
	kind, ref, ok := strings.Cut(uri, ":")
	if !ok {
		return "", errInvalidSource
	}
	switch SecretType(kind) {
	case Raw:
		return ref, nil
	case Env:
		return strings.TrimSpace(os.Getenv(ref)), nil
	case File:
		return loadFile(ref)
	case Vault:
		return loadVault(ref)
	}
	return "", errInvalidSource
}

func loadFile(path string) (string, error) {
	if strings.HasPrefix(path, "~/") {
		path = os.Getenv("HOME") + path[1:]
	}
	bz, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(bz)), nil
}
