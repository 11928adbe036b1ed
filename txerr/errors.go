// Package txerr implements the tagged error-kind taxonomy used across the
// transaction engine. Every failure that a caller might need to branch on
// programmatically (rather than just log) is reported as a *txerr.Error
// with a stable Kind, so callers can use errors.Is/errors.As instead of
// string-matching messages.
package txerr

import (
	"errors"
	"fmt"
)

// Kind tags the category of a transaction-engine error.
type Kind int

const (
	InvalidArgument Kind = iota
	NoData
	InvalidSatoshis
	InvalidOutputAmountSum
	FeeDifferent
	FeeTooLarge
	FeeTooSmall
	ChangeAddressMissing
	DustOutputs
	MissingSignatures
	MissingUtxoInfo
	UnsupportedScript
	InvalidIndex
	InvalidSorting
	LockTimeTooEarly
	BlockHeightTooHigh
	NLockTimeOutOfRange
	UnableToVerifySignature
)

var kindNames = map[Kind]string{
	InvalidArgument:         "InvalidArgument",
	NoData:                  "NoData",
	InvalidSatoshis:         "InvalidSatoshis",
	InvalidOutputAmountSum:  "InvalidOutputAmountSum",
	FeeDifferent:            "FeeError.Different",
	FeeTooLarge:             "FeeError.TooLarge",
	FeeTooSmall:             "FeeError.TooSmall",
	ChangeAddressMissing:    "ChangeAddressMissing",
	DustOutputs:             "DustOutputs",
	MissingSignatures:       "MissingSignatures",
	MissingUtxoInfo:         "MissingUtxoInfo",
	UnsupportedScript:       "UnsupportedScript",
	InvalidIndex:            "InvalidIndex",
	InvalidSorting:          "InvalidSorting",
	LockTimeTooEarly:        "LockTimeTooEarly",
	BlockHeightTooHigh:      "BlockHeightTooHigh",
	NLockTimeOutOfRange:     "NLockTimeOutOfRange",
	UnableToVerifySignature: "UnableToVerifySignature",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "Unknown"
}

// Error is the concrete error type for every tagged failure raised by the
// transaction engine. Detail carries enough context (indices, expected vs
// actual values) to diagnose the failure without reading the source.
type Error struct {
	Kind    Kind
	Message string
	Detail  map[string]any
	Wrapped error
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %s", e.Kind.String(), e.Message)
}

// Unwrap lets errors.Is/errors.As traverse into a wrapped cause.
func (e *Error) Unwrap() error {
	return e.Wrapped
}

// Is reports whether target is a *txerr.Error of the same Kind, so callers
// can write errors.Is(err, txerr.New(txerr.DustOutputs, "")).
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return other.Kind == e.Kind
	}
	return false
}

// New creates a tagged error with a formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates a tagged error that wraps an underlying cause.
func Wrap(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Wrapped: cause}
}

// WithDetail attaches structured context to the error and returns it for
// chaining, e.g. txerr.New(...).WithDetail("index", i).
func (e *Error) WithDetail(key string, value any) *Error {
	if e.Detail == nil {
		e.Detail = make(map[string]any)
	}
	e.Detail[key] = value
	return e
}

// Is reports whether err is a tagged error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
