package errors

import (
	"fmt"
)

type Status string

// A transaction terminally failed due to no balance
const NoBalance Status = "NoBalance"

// A transaction terminally failed due to no balance after accounting for fees
const NoBalanceForGas Status = "NoBalanceForGas"

// A transaction terminally failed due to another reason
const TransactionFailure Status = "TransactionFailure"

// A transaction failed to submit because it already exists
const TransactionExists Status = "TransactionExists"

// The transaction could not be found on chain
const TransactionNotFound Status = "TransactionNotFound"

// The blockhash expired and the transaction can no longer be accepted
const TransactionTimedOut Status = "TransactionTimedOut"

// A network error occured -- there may be nothing wrong with the transaction
const NetworkError Status = "NetworkError"

// No outcome for this error known
const UnknownError Status = "UnknownError"

// Failed due to an on-chain condition that could resolve in time, like a stake
// account still cooling down.
const FailedPrecondition Status = "FailedPrecondition"

type Error struct {
	Status  Status
	Message string
}

var _ error = &Error{}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Status, e.Message)
}

func Errorf(status Status, format string, args ...interface{}) error {
	return &Error{
		Status:  status,
		Message: fmt.Sprintf(format, args...),
	}
}

// Used when the stake account is not ready to be restaked yet.
func FailedPreconditionf(format string, args ...interface{}) error {
	return &Error{
		Status:  FailedPrecondition,
		Message: fmt.Sprintf(format, args...),
	}
}
