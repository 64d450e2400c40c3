package program

import "errors"

// Instruction errors shared by every program the host can run. Programs return
// these (possibly wrapped) and the host aborts the whole transaction on any of them.
var (
	ErrInvalidInstructionData   = errors.New("invalid instruction data")
	ErrNotEnoughAccountKeys     = errors.New("insufficient account keys for instruction")
	ErrMissingRequiredSignature = errors.New("missing required signature for instruction")
	ErrInvalidAccountData       = errors.New("invalid account data for instruction")
	ErrInvalidAccountOwner      = errors.New("invalid account owner")
	ErrInvalidArgument          = errors.New("invalid program argument")
	ErrInsufficientFunds        = errors.New("insufficient funds for instruction")
	ErrAccountAlreadyInUse      = errors.New("account already in use")
	ErrReadonlyDataModified     = errors.New("instruction modified data of a read-only account")
	ErrPrivilegeEscalation      = errors.New("cross-program invocation with unauthorized signer or writable account")
	ErrInvalidSeeds             = errors.New("provided seeds do not result in a valid address")
	ErrUnsupportedProgramID     = errors.New("unsupported program id")
	ErrMissingAccount           = errors.New("an account required by the instruction is missing")
	ErrCallDepth                = errors.New("cross-program invocation call depth too deep")
)
