package core

// error_messages.go maps registry errors to user-facing messages with codes
// for support reference.
//
//	REG001  - No employer matches the search term
//	SRC001  - Dataset could not be fetched or opened
//	SRC002  - Dataset exceeds the configured size limit
//	SCH001  - Dataset columns do not match the expected layout
//	DAT001  - A numeric cell could not be parsed
//	DEC001  - Dataset is not valid CSV in the configured encoding
//	VAL001  - Search input failed validation
//	RATE001 - Too many requests
//	REQ001  - Request was cancelled
//	REQ002  - Request timed out
//	ERR000  - Fallback for anything else
//
// Sentinel errors are matched with errors.Is first. Errors that cross a
// library boundary without a sentinel are matched case-insensitively by
// substring; the first matching pattern wins.

import (
	"errors"
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

var (
	msgNotFound = UserMessage{
		Message: "No employer matches that name",
		Action:  "Check the spelling or search for a shorter part of the name",
		Code:    "REG001",
	}
	msgSource = UserMessage{
		Message: "The enrollment dataset could not be loaded",
		Action:  "Check DATASET_SOURCE and network access, then restart",
		Code:    "SRC001",
	}
	msgTooLarge = UserMessage{
		Message: "The enrollment dataset exceeds the size limit",
		Action:  "Raise DATASET_MAX_SIZE or use a smaller extract",
		Code:    "SRC002",
	}
	msgSchema = UserMessage{
		Message: "The dataset columns do not match the expected layout",
		Action:  "Make sure the file is the unmodified 22-column enrollment export",
		Code:    "SCH001",
	}
	msgMalformed = UserMessage{
		Message: "The dataset contains a value that is not a number",
		Action:  "Check the reported line in the source file",
		Code:    "DAT001",
	}
	msgDecode = UserMessage{
		Message: "The dataset is not valid CSV",
		Action:  "Check DATASET_ENCODING matches the file (usually cp949)",
		Code:    "DEC001",
	}
	msgRateLimited = UserMessage{
		Message: "Too many requests",
		Action:  "Please wait a moment before trying again",
		Code:    "RATE001",
	}
	msgValidation = UserMessage{
		Message: "Search input is invalid",
		Action:  "Enter a company name of at most 100 characters",
		Code:    "VAL001",
	}

	defaultMessage = UserMessage{
		Message: "An unexpected error occurred",
		Action:  "Please try again or contact support",
		Code:    "ERR000",
	}
)

// sentinelMessages is checked in order; more specific sentinels come first.
var sentinelMessages = []struct {
	err error
	msg UserMessage
}{
	{ErrNotFound, msgNotFound},
	{ErrTooLarge, msgTooLarge},
	{ErrSource, msgSource},
	{ErrSchemaMismatch, msgSchema},
	{ErrMalformed, msgMalformed},
	{ErrDecode, msgDecode},
	{ErrInvalidQuery, msgValidation},
	{ErrRateLimited, msgRateLimited},
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "REQ001",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try a more specific search or check your connection",
			Code:    "REQ002",
		},
	},
}

// MapError converts a technical error into a user-friendly message.
// Returns an empty UserMessage if err is nil.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	for _, sm := range sentinelMessages {
		if errors.Is(err, sm.err) {
			return sm.msg
		}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific message rather than the
// ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
