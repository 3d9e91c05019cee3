package errno

import (
	"errors"
	"net/http"
)

// Errno carries a stable business code, a human-readable reason and the
// HTTP status the API answers with.
type Errno struct {
	Code    int
	Message string
	Status  int
}

func (e Errno) Error() string {
	return e.Message
}

// Decode tries to convert an error to Errno
func Decode(err error) (int, string) {
	e := Lookup(err)
	return e.Code, e.Message
}

// Lookup unwraps err down to its Errno. Unknown errors become
// InternalServerError carrying the original message.
func Lookup(err error) Errno {
	if err == nil {
		return OK
	}

	var typed Errno
	if errors.As(err, &typed) {
		return typed
	}
	var ptr *Errno
	if errors.As(err, &ptr) && ptr != nil {
		return *ptr
	}
	return Errno{Code: InternalServerError.Code, Message: err.Error(), Status: InternalServerError.Status}
}

// IsNotFound reports whether err belongs to the not-found family (20x01 codes).
func IsNotFound(err error) bool {
	e := Lookup(err)
	return e.Code >= 20000 && e.Code%100 == 1
}

// Common Errors
var (
	OK                  = Errno{Code: 0, Message: "Success", Status: http.StatusOK}
	InternalServerError = Errno{Code: 10001, Message: "Internal server error", Status: http.StatusInternalServerError}
	ErrBind             = Errno{Code: 10002, Message: "Error occurred while binding the request body to the struct", Status: http.StatusBadRequest}
	ErrUnauthenticated  = Errno{Code: 10003, Message: "Missing caller identity", Status: http.StatusUnauthorized}
	ErrDatabase         = Errno{Code: 10004, Message: "Database error", Status: http.StatusInternalServerError}
	ErrInvalidAmount    = Errno{Code: 10005, Message: "amount must be positive", Status: http.StatusBadRequest}
)

// Business Errors (20000+). Codes ending in 01 are "not found".
var (
	ErrUserNotFound = Errno{Code: 20101, Message: "user not found", Status: http.StatusNotFound}

	ErrInsufficientCredits = Errno{Code: 20202, Message: "insufficient credits", Status: http.StatusPaymentRequired}

	ErrPackageNotFound     = Errno{Code: 20301, Message: "credit package not found", Status: http.StatusNotFound}
	ErrAlreadyProcessed    = Errno{Code: 20302, Message: "payment already processed", Status: http.StatusConflict}
	ErrPaymentNotVerified  = Errno{Code: 20303, Message: "payment not verified by provider", Status: http.StatusPaymentRequired}
	ErrGatewayUnavailable  = Errno{Code: 20304, Message: "payment provider unavailable, retry later", Status: http.StatusBadGateway}
	ErrUnsupportedProvider = Errno{Code: 20305, Message: "unsupported payment provider", Status: http.StatusBadRequest}
	ErrPackageImmutable    = Errno{Code: 20306, Message: "credit package is referenced by purchases", Status: http.StatusConflict}

	ErrChapterNotFound  = Errno{Code: 20401, Message: "chapter not found", Status: http.StatusNotFound}
	ErrAlreadyUnlocked  = Errno{Code: 20402, Message: "already unlocked", Status: http.StatusConflict}
	ErrChapterNotLocked = Errno{Code: 20403, Message: "chapter is not locked", Status: http.StatusBadRequest}

	ErrPayoutNotFound       = Errno{Code: 20501, Message: "payout not found", Status: http.StatusNotFound}
	ErrPayoutNotEligible    = Errno{Code: 20502, Message: "payout not available: set a payout destination and reach the minimum", Status: http.StatusUnprocessableEntity}
	ErrPayoutBelowMinimum   = Errno{Code: 20503, Message: "payout below minimum", Status: http.StatusUnprocessableEntity}
	ErrPayoutExceedsBalance = Errno{Code: 20504, Message: "payout exceeds unpaid earnings", Status: http.StatusUnprocessableEntity}
	ErrPayoutNotRetryable   = Errno{Code: 20505, Message: "only failed or abandoned payouts can be resubmitted", Status: http.StatusConflict}
	ErrInvalidSettings      = Errno{Code: 20506, Message: "invalid payout settings", Status: http.StatusBadRequest}
)
