package program

import "github.com/gagliardetto/solana-go"

// Host is the environment a program runs in.
type Host interface {
	// InvokeSigned executes ix in the program it targets. Each account referenced by ix
	// must be present in accounts. Signer privilege is granted either by the caller's
	// own signers or by addresses reproduced from signers under the calling program's id.
	InvokeSigned(ix solana.Instruction, accounts []*AccountInfo, signers ...SignerSeeds) error
	// Log appends a line to the transaction's program log.
	Log(format string, args ...interface{})
}

// Entrypoint is implemented by every program a Host can dispatch instructions to.
type Entrypoint interface {
	Process(host Host, accounts []*AccountInfo, data []byte) error
}
