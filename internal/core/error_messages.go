package core

// error_messages.go maps technical errors to user-facing messages.
//
// When users encounter errors, they can quote the code to support staff
// for faster diagnosis. Codes by category:
//
//	VAL001  - Record failed validation (ValidationErrors)
//	REQ001  - Request body is not valid JSON for a person
//	REQ002  - Request body too large
//	REQ003  - Request cancelled by the client
//	REQ004  - Request timed out
//	STO001  - Storage backend failed (ErrStorage)
//	STO002  - Dataset changed concurrently, retries exhausted (ErrConflict)
//	APP001  - Too many appends in flight (ErrTooManyAppends)
//	CSV001  - Stored dataset is malformed (ErrMalformedData)
//	RATE001 - Rate limited
//	ERR000  - Anything else; check the server log for the technical error
//
// Sentinel errors are matched first with errors.Is/As; storage errors never
// fall through to the text patterns. Remaining errors are matched
// case-insensitively against errorPatterns; the first match wins.

import (
	"context"
	"errors"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

var (
	msgValidation = UserMessage{
		Message: "The record has invalid fields",
		Action:  "Correct the listed fields and submit again",
		Code:    "VAL001",
	}
	msgStorage = UserMessage{
		Message: "The dataset could not be read or saved",
		Action:  "Please try again in a few moments",
		Code:    "STO001",
	}
	msgConflict = UserMessage{
		Message: "The dataset was changed by another request while saving",
		Action:  "Please submit the record again",
		Code:    "STO002",
	}
	msgBusy = UserMessage{
		Message: "Too many records are being saved right now",
		Action:  "Please wait a moment and try again",
		Code:    "APP001",
	}
	msgMalformed = UserMessage{
		Message: "The stored dataset is not a valid person CSV",
		Action:  "Check the header and rows of the stored file",
		Code:    "CSV001",
	}
	msgCanceled = UserMessage{
		Message: "Request was cancelled",
		Action:  "Please try again",
		Code:    "REQ003",
	}
	msgTimeout = UserMessage{
		Message: "Request timed out",
		Action:  "Please try again later",
		Code:    "REQ004",
	}
)

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error text (case-insensitive) to user messages.
// More specific patterns must come before general ones.
var errorPatterns = []errorPattern{
	{
		pattern: "request body too large",
		msg: UserMessage{
			Message: "Request body too large",
			Action:  "Send a single person record",
			Code:    "REQ002",
		},
	},
	{
		pattern: "invalid request body",
		msg: UserMessage{
			Message: "The request body is not a valid person record",
			Action:  `Send JSON like {"name": "Ana", "age": 30, "height": 1.65}`,
			Code:    "REQ001",
		},
	},
	{pattern: "context canceled", msg: msgCanceled},
	{pattern: "context deadline exceeded", msg: msgTimeout},
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when nothing matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
//
//	msg := MapError(fmt.Errorf("%w: put: timeout", ErrStorage))
//	// msg.Code == "STO001"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var verrs ValidationErrors
	switch {
	case errors.As(err, &verrs):
		return msgValidation
	case errors.Is(err, ErrConflict):
		return msgConflict
	case errors.Is(err, ErrMalformedData):
		return msgMalformed
	case errors.Is(err, ErrTooManyAppends):
		return msgBusy
	case errors.Is(err, ErrStorage):
		return storageMessage(err)
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// storageMessage reports an expired or cancelled request context as such
// and every other store failure, including backend throttling, as STO001.
func storageMessage(err error) UserMessage {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return msgTimeout
	case errors.Is(err, context.Canceled):
		return msgCanceled
	default:
		return msgStorage
	}
}
