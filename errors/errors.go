package errors

import (
	e "errors"
	"fmt"
)

// Code classifies a failure of the routing/validation/composition layer.
// Every failure is detected synchronously and aborts the whole call.
type Code string

// The request envelope is malformed.
const InvalidConfig Code = "InvalidConfig"

// The custody step cannot proceed.
const InsufficientBalance Code = "InsufficientBalance"
const InsufficientAllowance Code = "InsufficientAllowance"

// Swap engine failures.
const SwapStepFailed Code = "SwapStepFailed"
const InsufficientOutput Code = "InsufficientOutput"

// Signature module failures.
const InvalidSignature Code = "InvalidSignature"
const QuoteExpired Code = "QuoteExpired"
const ReceiverMismatch Code = "ReceiverMismatch"

// The adapter's dispatch to the external protocol reverted or returned
// failure.
const ExternalBridgeCallFailed Code = "ExternalBridgeCallFailed"

// No outcome for this error known.
const UnknownError Code = "UnknownError"

type Error struct {
	Code    Code
	Message string
	// Adapter is set when the failure originated inside a specific
	// adapter's protocol mapping.
	Adapter string
	Err     error
}

var _ error = &Error{}

func (err *Error) Error() string {
	if err.Adapter != "" {
		return fmt.Sprintf("%s: %s: %s", err.Adapter, err.Code, err.Message)
	}
	return fmt.Sprintf("%s: %s", err.Code, err.Message)
}

func (err *Error) Unwrap() error {
	return err.Err
}

func Errorf(code Code, format string, args ...interface{}) error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

func InvalidConfigf(format string, args ...interface{}) error {
	return Errorf(InvalidConfig, format, args...)
}

func InsufficientBalancef(format string, args ...interface{}) error {
	return Errorf(InsufficientBalance, format, args...)
}

func InsufficientAllowancef(format string, args ...interface{}) error {
	return Errorf(InsufficientAllowance, format, args...)
}

func InsufficientOutputf(format string, args ...interface{}) error {
	return Errorf(InsufficientOutput, format, args...)
}

func InvalidSignaturef(format string, args ...interface{}) error {
	return Errorf(InvalidSignature, format, args...)
}

func QuoteExpiredf(format string, args ...interface{}) error {
	return Errorf(QuoteExpired, format, args...)
}

func ReceiverMismatchf(format string, args ...interface{}) error {
	return Errorf(ReceiverMismatch, format, args...)
}

// SwapStepFailedf wraps the revert from a swap step's external call.
func SwapStepFailedf(cause error, format string, args ...interface{}) error {
	return &Error{
		Code:    SwapStepFailed,
		Message: fmt.Sprintf(format, args...),
		Err:     cause,
	}
}

// AdapterErrorf wraps a failure from a specific adapter's dispatch under
// ExternalBridgeCallFailed.
func AdapterErrorf(adapter string, cause error, format string, args ...interface{}) error {
	return &Error{
		Code:    ExternalBridgeCallFailed,
		Message: fmt.Sprintf(format, args...),
		Adapter: adapter,
		Err:     cause,
	}
}

// CodeOf extracts the failure code from an error chain, or UnknownError.
func CodeOf(err error) Code {
	var xbErr *Error
	if e.As(err, &xbErr) {
		return xbErr.Code
	}
	return UnknownError
}
