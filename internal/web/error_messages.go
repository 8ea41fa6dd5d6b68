package web

// # Error Codes Reference
//
// User-facing errors carry a code that can be quoted to support staff.
//
//	VIEW001 - View expired: the page's table state is no longer held
//	          Action: Reload the page
//	          Matches: ErrViewNotFound, "view not found"
//
//	VIEW002 - Unknown column: the sort target is not a table column
//	          Action: Reload the page
//	          Matches: itemlist.ErrUnknownColumn, "unknown column"
//
//	VIEW003 - Invalid width: the reported width is not a number
//	          Action: Resize the window to report it again
//	          Matches: ErrInvalidWidth, "invalid width"
//
//	ROW001  - Row not found: the clicked row is no longer in the table
//	          Action: Refresh the table and try again
//	          Matches: itemlist.ErrRowNotFound, "row not found"
//
//	SRC001  - Source unavailable: items could not be loaded
//	          Action: Please try again in a few moments
//	          Matches: ErrSourceUnavailable, "connection refused",
//	          "context deadline exceeded", "no such file"
//
//	SRC002  - Source busy: every load slot stayed occupied
//	          Action: Please try again in a few moments
//	          Matches: store.ErrTooManyLoads, "too many concurrent"
//
//	RATE001 - Rate limited: too many requests
//	          Action: Please wait a moment before trying again
//	          Matches: "rate limit"
//
//	ERR000  - Unknown error: anything else
//	          Action: Please try again or contact support
//
// Sentinel errors are checked with errors.Is first; message patterns are a
// case-insensitive fallback for errors that lost their chain.

import (
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/itemlist/internal/itemlist"
	"github.com/JonMunkholm/itemlist/internal/store"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

var (
	msgViewExpired = UserMessage{
		Message: "This table has expired",
		Action:  "Reload the page",
		Code:    "VIEW001",
	}
	msgUnknownColumn = UserMessage{
		Message: "That column cannot be sorted",
		Action:  "Reload the page",
		Code:    "VIEW002",
	}
	msgInvalidWidth = UserMessage{
		Message: "The reported table width was not understood",
		Action:  "Resize the window to report it again",
		Code:    "VIEW003",
	}
	msgRowNotFound = UserMessage{
		Message: "That row is no longer in the table",
		Action:  "Refresh the table and try again",
		Code:    "ROW001",
	}
	msgSourceUnavailable = UserMessage{
		Message: "Items could not be loaded",
		Action:  "Please try again in a few moments",
		Code:    "SRC001",
	}
	msgSourceBusy = UserMessage{
		Message: "The item source is busy",
		Action:  "Please try again in a few moments",
		Code:    "SRC002",
	}
	msgRateLimited = UserMessage{
		Message: "Too many requests",
		Action:  "Please wait a moment before trying again",
		Code:    "RATE001",
	}
)

// defaultMessage is returned when nothing matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

var errorSentinels = []struct {
	target error
	msg    UserMessage
}{
	{ErrViewNotFound, msgViewExpired},
	{itemlist.ErrUnknownColumn, msgUnknownColumn},
	{ErrInvalidWidth, msgInvalidWidth},
	{itemlist.ErrRowNotFound, msgRowNotFound},
	{store.ErrTooManyLoads, msgSourceBusy},
	{ErrSourceUnavailable, msgSourceUnavailable},
}

// errorPatterns is matched in order; the first hit wins.
var errorPatterns = []struct {
	pattern string
	msg     UserMessage
}{
	{"view not found", msgViewExpired},
	{"unknown column", msgUnknownColumn},
	{"invalid width", msgInvalidWidth},
	{"row not found", msgRowNotFound},
	{"too many concurrent", msgSourceBusy},
	{"connection refused", msgSourceUnavailable},
	{"context deadline exceeded", msgSourceUnavailable},
	{"no such file", msgSourceUnavailable},
	{"rate limit", msgRateLimited},
}

// MapError converts a technical error to a user-friendly message. A nil
// error maps to the zero UserMessage.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	for _, s := range errorSentinels {
		if errors.Is(err, s.target) {
			return s.msg
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

// FormatUserError formats err as "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to something more specific than ERR000.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
