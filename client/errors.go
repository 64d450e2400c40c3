package client

import (
	"regexp"
	"strings"

	"github.com/cordialsys/restake/client/errors"
)

// stake program error 3, TooSoonToRedelegate
var tooSoonCode = regexp.MustCompile(`custom program error: 0x3\b`)

// CheckError classifies an RPC or preflight error.
func CheckError(err error) errors.Status {
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "too soon to redelegate") ||
		strings.Contains(msg, "already has an active delegation") ||
		tooSoonCode.MatchString(msg) {
		return errors.FailedPrecondition
	}
	if strings.Contains(msg, "insufficient funds for fee") ||
		strings.Contains(msg, "insufficient funds for rent") {
		return errors.NoBalanceForGas
	}
	if strings.Contains(msg, "insufficient funds") {
		return errors.NoBalance
	}
	if strings.Contains(msg, "blockhash not found") {
		return errors.TransactionTimedOut
	}
	if strings.Contains(msg, "transaction already in block chain") ||
		strings.Contains(msg, "transaction has already been processed") {
		return errors.TransactionExists
	}
	if strings.Contains(msg, "missing required signature") ||
		strings.Contains(msg, "invalid instruction data") ||
		strings.Contains(msg, "not enough account keys") ||
		strings.Contains(msg, "insufficient account keys") {
		return errors.TransactionFailure
	}
	if strings.Contains(msg, "response body closed") ||
		strings.Contains(msg, "not found") ||
		strings.Contains(msg, "eof") {
		return errors.NetworkError
	}

	return errors.UnknownError
}
