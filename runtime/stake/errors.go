package stake

import "errors"

var (
	ErrTooSoonToRedelegate       = errors.New("stake already has an active delegation, deactivate it and wait for the cooldown")
	ErrAlreadyDeactivated        = errors.New("stake already deactivated")
	ErrLockupInForce             = errors.New("lockup has not yet expired")
	ErrCustodianMissing          = errors.New("custodian address not present")
	ErrCustodianSignatureMissing = errors.New("custodian signature not present")
	ErrInsufficientDelegation    = errors.New("delegation amount is less than the minimum")
	ErrNotDelegated              = errors.New("stake account is not delegated")
)
