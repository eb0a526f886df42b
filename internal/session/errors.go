package session

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes session errors.
type ErrorCode string

const (
	ErrCodeEmptyCatalog        ErrorCode = "EMPTY_CATALOG"
	ErrCodeNoSession           ErrorCode = "NO_SESSION"
	ErrCodeCorruptRecord       ErrorCode = "CORRUPT_RECORD"
	ErrCodeParticipantRequired ErrorCode = "PARTICIPANT_REQUIRED"
	ErrCodeParticipantEmpty    ErrorCode = "PARTICIPANT_EMPTY"
	ErrCodeWrongView           ErrorCode = "WRONG_VIEW"
	ErrCodeIndexOutOfRange     ErrorCode = "INDEX_OUT_OF_RANGE"
	ErrCodeUnknownFraming      ErrorCode = "UNKNOWN_FRAMING"
	ErrCodeInvalidChoice       ErrorCode = "INVALID_CHOICE"
	ErrCodeNoChoice            ErrorCode = "NO_CHOICE"
	ErrCodeNoFeedbackPending   ErrorCode = "NO_FEEDBACK_PENDING"
	ErrCodeMissingContent      ErrorCode = "MISSING_CONTENT"
)

// Error is a recoverable session error. Presentation layers show Message to
// the participant and keep running.
type Error struct {
	Code    ErrorCode
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is matches any *Error with the same code, so wrapped errors with specific
// messages still satisfy errors.Is against the sentinels below.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// Sentinels for errors.Is.
var (
	ErrEmptyCatalog        = &Error{Code: ErrCodeEmptyCatalog, Message: "catalog has no questions"}
	ErrNoSession           = &Error{Code: ErrCodeNoSession, Message: "no session loaded"}
	ErrCorruptRecord       = &Error{Code: ErrCodeCorruptRecord, Message: "stored session record is unreadable"}
	ErrParticipantRequired = &Error{Code: ErrCodeParticipantRequired, Message: "a participant id is required before starting"}
	ErrParticipantEmpty    = &Error{Code: ErrCodeParticipantEmpty, Message: "participant id must not be empty"}
	ErrWrongView           = &Error{Code: ErrCodeWrongView, Message: "action not available in this view"}
	ErrIndexOutOfRange     = &Error{Code: ErrCodeIndexOutOfRange, Message: "question index out of range"}
	ErrUnknownFraming      = &Error{Code: ErrCodeUnknownFraming, Message: "unknown framing"}
	ErrInvalidChoice       = &Error{Code: ErrCodeInvalidChoice, Message: "not an option of the current question"}
	ErrNoChoice            = &Error{Code: ErrCodeNoChoice, Message: "choose an option before continuing"}
	ErrNoFeedbackPending   = &Error{Code: ErrCodeNoFeedbackPending, Message: "no feedback is being shown"}
	ErrMissingContent      = &Error{Code: ErrCodeMissingContent, Message: "question content missing"}
)

func newError(code ErrorCode, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// CodeOf returns the ErrorCode of err, or "" if err is not a session error.
func CodeOf(err error) ErrorCode {
	var se *Error
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}
