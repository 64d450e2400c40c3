package program

import (
	"bytes"

	"github.com/gagliardetto/solana-go"
)

// Account is the stored state of an address.
type Account struct {
	Lamports   uint64           `json:"lamports"`
	Owner      solana.PublicKey `json:"owner"`
	Data       []byte           `json:"data"`
	Executable bool             `json:"executable"`
}

func (a *Account) Clone() *Account {
	return &Account{
		Lamports:   a.Lamports,
		Owner:      a.Owner,
		Data:       bytes.Clone(a.Data),
		Executable: a.Executable,
	}
}

func (a *Account) Equal(other *Account) bool {
	return a.Lamports == other.Lamports &&
		a.Owner == other.Owner &&
		a.Executable == other.Executable &&
		bytes.Equal(a.Data, other.Data)
}

// AccountInfo is the view of an account handed to a program for a single instruction.
// The underlying Account is shared between a caller and the programs it invokes, so
// mutations made by a callee are observed by the caller.
type AccountInfo struct {
	Key        solana.PublicKey
	IsSigner   bool
	IsWritable bool
	*Account
}

// Meta returns the account meta describing this account with the same privileges.
func (info *AccountInfo) Meta() *solana.AccountMeta {
	return solana.NewAccountMeta(info.Key, info.IsWritable, info.IsSigner)
}

// Signers returns the keys of all accounts flagged as signers.
func Signers(accounts []*AccountInfo) []solana.PublicKey {
	signers := []solana.PublicKey{}
	for _, acc := range accounts {
		if acc.IsSigner {
			signers = append(signers, acc.Key)
		}
	}
	return signers
}
