package ledger

import (
	"errors"
	"fmt"
)

// ErrorKind classifies ledger failures.
type ErrorKind string

const (
	KindInvalidAmount       ErrorKind = "InvalidAmount"
	KindAccountNotFound     ErrorKind = "AccountNotFound"
	KindInsufficientFunds   ErrorKind = "InsufficientFunds"
	KindInvalidParticipants ErrorKind = "InvalidParticipants"
	KindApplicationFailure  ErrorKind = "ApplicationFailure"
)

// Error is the typed failure returned by ledger operations. Field names the
// offending input and Value carries it as text.
type Error struct {
	Kind  ErrorKind
	Field string
	Value string
	Err   error
}

func (e *Error) Error() string {
	msg := string(e.Kind)
	if e.Field != "" {
		msg += " (" + e.Field
		if e.Value != "" {
			msg += "=" + e.Value
		}
		msg += ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so the sentinels below work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrInvalidAmount       = &Error{Kind: KindInvalidAmount}
	ErrAccountNotFound     = &Error{Kind: KindAccountNotFound}
	ErrInsufficientFunds   = &Error{Kind: KindInsufficientFunds}
	ErrInvalidParticipants = &Error{Kind: KindInvalidParticipants}
	ErrApplicationFailure  = &Error{Kind: KindApplicationFailure}
)

func newError(kind ErrorKind, field, value string, cause error) *Error {
	return &Error{Kind: kind, Field: field, Value: value, Err: cause}
}

func InvalidAmount(value string, cause error) *Error {
	return newError(KindInvalidAmount, "amount", value, cause)
}

func AccountNotFound(field, accountID string) *Error {
	return newError(KindAccountNotFound, field, accountID, nil)
}

func InsufficientFunds(accountID string, balance, amount fmt.Stringer) *Error {
	return newError(KindInsufficientFunds, "amount", amount.String(),
		fmt.Errorf("account %s has %s", accountID, balance))
}

func InvalidParticipants(field, value, reason string) *Error {
	return newError(KindInvalidParticipants, field, value, errors.New(reason))
}

func ApplicationFailure(transactionID string, cause error) *Error {
	return newError(KindApplicationFailure, "transactionId", transactionID, cause)
}

// KindOf returns the kind of a ledger error, or "" for anything else.
func KindOf(err error) ErrorKind {
	var le *Error
	if errors.As(err, &le) {
		return le.Kind
	}
	return ""
}

// IsRetryable reports whether a caller may retry the request. Validation
// failures are deterministic and never retryable.
func IsRetryable(err error) bool {
	return KindOf(err) == KindApplicationFailure
}
