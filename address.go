// Package restake holds the value types shared by the restake builders, client and
// command line: addresses and amounts.
package restake

import (
	"fmt"

	"github.com/btcsuite/btcutil/base58"
	"github.com/gagliardetto/solana-go"
)

// Address is a base58 encoded account address
type Address string

// AddressFromPublicKey returns an Address given raw public key bytes
func AddressFromPublicKey(publicKeyBytes []byte) (Address, error) {
	if len(publicKeyBytes) != solana.PublicKeyLength {
		return Address(""), fmt.Errorf("expected address length %d, got address length %v", solana.PublicKeyLength, len(publicKeyBytes))
	}
	return Address(base58.Encode(publicKeyBytes)), nil
}

// ValidateAddress checks the address decodes to exactly one public key.
func ValidateAddress(address Address) error {
	if address == "" {
		return fmt.Errorf("empty address")
	}
	decoded := base58.Decode(string(address))
	if len(decoded) == 0 {
		return fmt.Errorf("invalid base58 address %q", address)
	}
	if len(decoded) != solana.PublicKeyLength {
		return fmt.Errorf("invalid address %q: decodes to %d bytes, expected %d", address, len(decoded), solana.PublicKeyLength)
	}
	return nil
}

func (address Address) PublicKey() (solana.PublicKey, error) {
	if err := ValidateAddress(address); err != nil {
		return solana.PublicKey{}, err
	}
	return solana.PublicKeyFromBytes(base58.Decode(string(address))), nil
}

func (address Address) String() string {
	return string(address)
}
