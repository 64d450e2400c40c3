package builder

import (
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// Tx wraps a solana transaction awaiting signatures.
type Tx struct {
	SolTx *solana.Transaction
}

// Hash returns the tx id, which for Solana is the first signature
func (tx *Tx) Hash() string {
	if tx.SolTx != nil && len(tx.SolTx.Signatures) > 0 {
		return tx.SolTx.Signatures[0].String()
	}
	return ""
}

// Signers returns the accounts that must sign, fee payer first.
func (tx *Tx) Signers() []solana.PublicKey {
	if tx.SolTx == nil {
		return nil
	}
	required := int(tx.SolTx.Message.Header.NumRequiredSignatures)
	return tx.SolTx.Message.AccountKeys[:required]
}

// Sighashes returns the payload each signer signs. On Solana every signer signs the
// same serialized message.
func (tx *Tx) Sighashes() ([][]byte, error) {
	if tx.SolTx == nil {
		return nil, errors.New("transaction not initialized")
	}
	messageContent, err := tx.SolTx.Message.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("unable to encode message for signing: %w", err)
	}
	sighashes := [][]byte{}
	for range tx.Signers() {
		sighashes = append(sighashes, messageContent)
	}
	return sighashes, nil
}

// AddSignatures sets the signatures, in the order of Signers.
func (tx *Tx) AddSignatures(signatures ...[]byte) error {
	if tx.SolTx == nil {
		return errors.New("transaction not initialized")
	}
	if len(signatures) != len(tx.Signers()) {
		return fmt.Errorf("expected %d signatures, got %d", len(tx.Signers()), len(signatures))
	}
	solSignatures := make([]solana.Signature, len(signatures))
	for i, signature := range signatures {
		if len(signature) != solana.SignatureLength {
			return fmt.Errorf("invalid signature (%d): %x", len(signature), signature)
		}
		copy(solSignatures[i][:], signature)
	}
	tx.SolTx.Signatures = solSignatures
	return nil
}

// Sign signs with whichever of keys match the required signers. Every required
// signer must be covered.
func (tx *Tx) Sign(keys ...solana.PrivateKey) error {
	sighashes, err := tx.Sighashes()
	if err != nil {
		return err
	}
	signatures := [][]byte{}
	for i, signer := range tx.Signers() {
		var found bool
		for _, key := range keys {
			if key.PublicKey() != signer {
				continue
			}
			sig, err := key.Sign(sighashes[i])
			if err != nil {
				return fmt.Errorf("unable to sign for %s: %v", signer, err)
			}
			signatures = append(signatures, sig[:])
			found = true
			break
		}
		if !found {
			return fmt.Errorf("missing private key for signer %s", signer)
		}
	}
	return tx.AddSignatures(signatures...)
}

// Serialize returns the wire encoding of the signed transaction
func (tx *Tx) Serialize() ([]byte, error) {
	if tx.SolTx == nil {
		return nil, errors.New("transaction not initialized")
	}
	return tx.SolTx.MarshalBinary()
}
