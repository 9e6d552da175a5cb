package dispatcher

import (
	"errors"
	"fmt"
)

// Kind classifies why an action did not succeed.
type Kind int

const (
	// KindValidation: required input missing or malformed; nothing was sent.
	KindValidation Kind = iota + 1
	// KindRequest: transport failure or a non-2xx answer.
	KindRequest
	// KindEmptyResult: the call succeeded but matched nothing.
	KindEmptyResult
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindRequest:
		return "request"
	case KindEmptyResult:
		return "empty_result"
	default:
		return "unknown"
	}
}

// Failure is the error returned by every dispatcher operation. Message is
// always non-empty and fit for the flash banner. Status is the HTTP status
// for KindRequest failures that got an answer, zero otherwise.
type Failure struct {
	Kind    Kind
	Message string
	Status  int
	Err     error
}

func (f *Failure) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("%s: %s: %v", f.Kind, f.Message, f.Err)
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.Message)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// AsFailure extracts the *Failure from err.
func AsFailure(err error) (*Failure, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}

// IsKind reports whether err is a Failure of kind k.
func IsKind(err error, k Kind) bool {
	f, ok := AsFailure(err)
	return ok && f.Kind == k
}

func validationFailure(message string, err error) *Failure {
	return &Failure{Kind: KindValidation, Message: message, Err: err}
}

func emptyResult(message string) *Failure {
	return &Failure{Kind: KindEmptyResult, Message: message}
}
