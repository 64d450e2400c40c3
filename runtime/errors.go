package runtime

import "errors"

// Errors raised by the bank itself rather than by the programs it runs.
var (
	ErrSignatureFailure        = errors.New("transaction did not pass signature verification")
	ErrBlockhashNotFound       = errors.New("blockhash not found")
	ErrAlreadyProcessed        = errors.New("this transaction has already been processed")
	ErrAccountNotFound         = errors.New("attempt to debit an account but found no record of a prior credit")
	ErrInsufficientFundsForFee = errors.New("insufficient funds for fee")
	ErrInvalidAccountIndex     = errors.New("transaction contains an invalid account reference")
	ErrUnbalancedInstruction   = errors.New("sum of account balances before and after instruction do not match")
	ErrExternalDataModified    = errors.New("instruction modified data of an account it does not own")
	ErrExternalLamportSpend    = errors.New("instruction spent from the balance of an account it does not own")
	ErrModifiedProgramID       = errors.New("instruction illegally modified the program id of an account")
	ErrExecutableModified      = errors.New("instruction changed executable accounts")
	ErrInvalidWarp             = errors.New("can only warp forward")
)
