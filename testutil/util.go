package testutil

import (
	"github.com/gagliardetto/solana-go"
)

func Ref[T any](s T) *T {
	return &s
}

func NewPrivateKey() solana.PrivateKey {
	key, err := solana.NewRandomPrivateKey()
	if err != nil {
		panic(err)
	}
	return key
}

func NewPublicKey() solana.PublicKey {
	return NewPrivateKey().PublicKey()
}
