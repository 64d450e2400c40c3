package runtime

import (
	"crypto/ed25519"
	"fmt"

	"github.com/cordialsys/restake/program"
	"github.com/gagliardetto/solana-go"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/btree"
)

type TransactionResult struct {
	Signature solana.Signature `json:"signature"`
	Slot      uint64           `json:"slot"`
	Fee       uint64           `json:"fee"`
	Logs      []string         `json:"logs"`
	Err       error            `json:"-"`
}

// ProcessTransaction verifies, charges and executes tx. Either every instruction
// succeeds and all account changes are committed, or none are and only the fee is
// kept. The returned error is also recorded on the result when tx was executed.
func (b *Bank) ProcessTransaction(tx *solana.Transaction) (*TransactionResult, error) {
	b.lock.Lock()
	defer b.lock.Unlock()

	msg := &tx.Message
	if err := verifySignatures(tx); err != nil {
		return nil, err
	}
	signature := tx.Signatures[0]
	if _, ok := b.processed[signature]; ok {
		return nil, ErrAlreadyProcessed
	}
	if !b.isRecentBlockhash(msg.RecentBlockhash) {
		return nil, fmt.Errorf("%w: %s", ErrBlockhashNotFound, msg.RecentBlockhash)
	}

	fee := uint64(msg.Header.NumRequiredSignatures) * b.opts.SignatureFee
	payer := msg.AccountKeys[0]
	payerAccount, ok := b.accounts.Get(key(payer))
	if !ok {
		return nil, fmt.Errorf("%w: fee payer %s", ErrAccountNotFound, payer)
	}
	if payerAccount.Lamports < fee {
		return nil, fmt.Errorf("%w: %s has %d, fee is %d", ErrInsufficientFundsForFee, payer, payerAccount.Lamports, fee)
	}
	charged := payerAccount.Clone()
	charged.Lamports -= fee
	b.accounts.Set(key(payer), charged)

	result := &TransactionResult{
		Signature: signature,
		Slot:      b.slot,
		Fee:       fee,
	}
	working := b.accounts.Copy()
	ctx := &invokeContext{bank: b}
	err := b.execute(working, msg, ctx)
	result.Logs = ctx.logs
	result.Err = err
	b.processed[signature] = result

	log := logrus.WithFields(logrus.Fields{
		"signature": signature.String(),
		"slot":      b.slot,
		"fee":       fee,
	})
	if err != nil {
		log.WithError(err).Debug("transaction failed")
		return result, err
	}
	b.accounts = working
	log.Debug("transaction committed")
	return result, nil
}

// Transaction returns the result of a previously processed transaction.
func (b *Bank) Transaction(signature solana.Signature) (*TransactionResult, bool) {
	b.lock.Lock()
	defer b.lock.Unlock()
	result, ok := b.processed[signature]
	return result, ok
}

func (b *Bank) execute(working *btree.Map[string, *program.Account], msg *solana.Message, ctx *invokeContext) error {
	keys := msg.AccountKeys
	loaded := make([]*program.Account, len(keys))
	for i, address := range keys {
		if acc, ok := working.Get(key(address)); ok {
			loaded[i] = acc.Clone()
		} else {
			loaded[i] = &program.Account{Owner: solana.SystemProgramID}
		}
	}

	for i, inst := range msg.Instructions {
		if int(inst.ProgramIDIndex) >= len(keys) {
			return errors.Wrapf(ErrInvalidAccountIndex, "instruction %d", i)
		}
		programID := keys[inst.ProgramIDIndex]
		infos := make([]*program.AccountInfo, 0, len(inst.Accounts))
		for _, index := range inst.Accounts {
			if int(index) >= len(keys) {
				return errors.Wrapf(ErrInvalidAccountIndex, "instruction %d", i)
			}
			infos = append(infos, &program.AccountInfo{
				Key:        keys[index],
				IsSigner:   isSigner(msg, int(index)),
				IsWritable: isWritable(msg, int(index)),
				Account:    loaded[index],
			})
		}
		if err := ctx.process(programID, infos, inst.Data); err != nil {
			return errors.Wrapf(err, "instruction %d", i)
		}
	}

	for i, address := range keys {
		if !isWritable(msg, i) {
			continue
		}
		if loaded[i].Lamports == 0 && !loaded[i].Executable {
			working.Delete(key(address))
			continue
		}
		working.Set(key(address), loaded[i])
	}
	return nil
}

func verifySignatures(tx *solana.Transaction) error {
	msg := &tx.Message
	required := int(msg.Header.NumRequiredSignatures)
	if required == 0 || len(tx.Signatures) != required || len(msg.AccountKeys) < required {
		return fmt.Errorf("%w: %d signatures for %d required signers", ErrSignatureFailure, len(tx.Signatures), required)
	}
	payload, err := msg.MarshalBinary()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSignatureFailure, err)
	}
	for i := 0; i < required; i++ {
		signer := msg.AccountKeys[i]
		if !ed25519.Verify(ed25519.PublicKey(signer[:]), payload, tx.Signatures[i][:]) {
			return fmt.Errorf("%w: bad signature for %s", ErrSignatureFailure, signer)
		}
	}
	return nil
}

func isSigner(msg *solana.Message, index int) bool {
	return index < int(msg.Header.NumRequiredSignatures)
}

func isWritable(msg *solana.Message, index int) bool {
	header := msg.Header
	if index < int(header.NumRequiredSignatures) {
		return index < int(header.NumRequiredSignatures)-int(header.NumReadonlySignedAccounts)
	}
	return index < len(msg.AccountKeys)-int(header.NumReadonlyUnsignedAccounts)
}
