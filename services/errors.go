package services

import (
	"github.com/pkg/errors"
)

type ErrorKind string

const (
	KindValidation ErrorKind = "validation"
	KindNotFound   ErrorKind = "not_found"
	KindConflict   ErrorKind = "conflict"
	KindAborted    ErrorKind = "transaction_aborted"
)

// Error is the typed failure every core operation reports. Code is stable and
// machine-readable; Message is meant for people.
type Error struct {
	Kind    ErrorKind `json:"kind"`
	Code    string    `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on Code so wrapped copies compare equal to the sentinels.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

var (
	ErrSponsorNotFound         = &Error{Kind: KindNotFound, Code: "SPONSOR_NOT_FOUND", Message: "sponsor not found"}
	ErrSponsorCapacityExceeded = &Error{Kind: KindConflict, Code: "SPONSOR_CAPACITY_EXCEEDED", Message: "sponsor already has the maximum number of direct referrals"}
	ErrDuplicateContact        = &Error{Kind: KindValidation, Code: "DUPLICATE_CONTACT", Message: "email or mobile already registered"}
	ErrMatrixFull              = &Error{Kind: KindConflict, Code: "MATRIX_FULL", Message: "no open placement slot under sponsor"}
	ErrMemberNotFound          = &Error{Kind: KindNotFound, Code: "MEMBER_NOT_FOUND", Message: "member not found"}
	ErrAlreadyActive           = &Error{Kind: KindConflict, Code: "ALREADY_ACTIVE", Message: "member is already active"}
	ErrInsufficientBalance     = &Error{Kind: KindConflict, Code: "INSUFFICIENT_BALANCE", Message: "insufficient wallet balance"}
	ErrInvalidAmount           = &Error{Kind: KindValidation, Code: "INVALID_AMOUNT", Message: "amount must be greater than zero"}
	ErrWithdrawalNotFound      = &Error{Kind: KindNotFound, Code: "WITHDRAWAL_NOT_FOUND", Message: "withdrawal request not found"}
	ErrAlreadyProcessed        = &Error{Kind: KindConflict, Code: "ALREADY_PROCESSED", Message: "withdrawal request was already processed"}
	ErrBelowMinimumWithdrawal  = &Error{Kind: KindValidation, Code: "BELOW_MINIMUM_WITHDRAWAL", Message: "amount is below the minimum withdrawal"}
	ErrKYCNotVerified          = &Error{Kind: KindConflict, Code: "KYC_NOT_VERIFIED", Message: "bank details are missing or not verified"}
	ErrInvalidDecision         = &Error{Kind: KindValidation, Code: "INVALID_DECISION", Message: "decision must be approved or rejected"}
	ErrInvalidRange            = &Error{Kind: KindValidation, Code: "INVALID_RANGE", Message: "range must be one of 7d, 30d, 12m"}
	ErrUnauthenticated         = &Error{Kind: KindValidation, Code: "UNAUTHENTICATED", Message: "invalid email or password"}
	ErrCorruptGraph            = &Error{Kind: KindConflict, Code: "CORRUPT_GRAPH", Message: "referral chain contains a cycle"}
	ErrPaymentNotFound         = &Error{Kind: KindNotFound, Code: "PAYMENT_NOT_FOUND", Message: "activation payment not found"}
	ErrTransactionAborted      = &Error{Kind: KindAborted, Code: "TRANSACTION_ABORTED", Message: "transaction aborted"}
)

// aborted wraps a store failure. Typed errors pass through untouched so a
// failure raised inside a transaction callback keeps its kind.
func aborted(err error, msg string) error {
	if err == nil {
		return nil
	}
	var typed *Error
	if errors.As(err, &typed) {
		return err
	}
	return &Error{
		Kind:    KindAborted,
		Code:    ErrTransactionAborted.Code,
		Message: ErrTransactionAborted.Message,
		Err:     errors.Wrap(err, msg),
	}
}
