// Package core provides the session service behind the DataSweeper UI.
//
// # Error Codes Reference
//
// This file defines user-friendly error messages with codes for support reference.
// When users encounter errors, they can quote the error code to support staff
// for faster diagnosis.
//
// Error codes are grouped by category:
//
// # File Errors (FILE001-FILE099)
//
// Errors related to uploaded files and parsing:
//
//	FILE001 - File too large: Upload exceeds the maximum request size
//	          Action: Split the file or upload fewer files at once
//	          Patterns: "file too large", "request body too large"
//
//	FILE002 - Parse failure: File could not be read as a table
//	          Action: Check that the file is a valid CSV or .xlsx workbook
//	          Sentinel: codec.ErrParse; Patterns: "invalid csv", "invalid spreadsheet"
//
//	FILE004 - No file: No file was selected
//	          Action: Please select a CSV or Excel file to upload
//	          Sentinel: ErrNoFiles; Patterns: "no file provided"
//
//	FILE005 - Empty file: The uploaded file has no header row
//	          Action: Please upload a file with a header row
//	          Sentinel: table.ErrNoHeader; Patterns: "empty file"
//
//	FILE006 - Unsupported type: Only .csv and .xlsx files are accepted
//	          Action: Save the file as CSV or Excel workbook and upload again
//	          Sentinel: codec.ErrUnsupportedFormat
//
//	FILE007 - Too many files: Batch exceeds the per-request file limit
//	          Action: Upload fewer files at once
//	          Sentinel: ErrTooManyFiles
//
// # Pipeline Errors (PIPE001-PIPE099)
//
// Errors raised by cleaning, projection and export:
//
//	PIPE001 - Empty mean: A numeric column has no values to average
//	          Action: Remove the empty column before filling missing values
//	          Sentinel: table.ErrEmptyMean
//
//	PIPE002 - Unknown column: A selected column does not exist
//	          Action: Refresh the page and choose columns again
//	          Sentinel: table.ErrUnknownColumn
//
//	PIPE003 - Duplicate column: A column was selected more than once
//	          Action: Select each column only once
//	          Sentinel: table.ErrDuplicateColumn
//
//	PIPE004 - Unknown export format: Export format is not csv or excel
//	          Action: Choose CSV or Excel
//	          Sentinel: codec.ErrUnknownFormat
//
// # Session Errors (SES001-SES099)
//
//	SES001 - Session not found: The file is no longer loaded
//	         Action: The session may have expired. Please upload the file again
//	         Sentinel: ErrSessionNotFound
//
//	SES002 - Too many sessions: The server holds too many files
//	         Action: Please wait a few minutes and try again
//	         Sentinel: ErrTooManySessions
//
// # Upload Errors (UPL001-UPL099)
//
//	UPL002 - System busy: Too many files are being parsed
//	         Action: Please wait a moment and try again
//	         Sentinel: ErrTooManyUploads
//
//	UPL004 - Request cancelled: Request was cancelled
//	         Action: Please try again
//	         Sentinel: context.Canceled
//
//	UPL005 - Request timeout: Request timed out
//	         Action: Try a smaller file or check your connection
//	         Sentinel: context.DeadlineExceeded
//
// # Request Errors (REQ001-REQ099)
//
//	REQ001 - Invalid request: The request is missing fields or has invalid values
//	         Action: Check the request and try again
//	         Sentinel: ErrInvalidRequest
//
// # Rate Limiting (RATE001-RATE099)
//
//	RATE001 - Rate limited: Too many requests
//	          Action: Please wait a moment before trying again
//	          Patterns: "rate limit"
//
// # Default Error (ERR000)
//
// Fallback when nothing matches:
//
//	ERR000 - Unknown error: An unexpected error occurred
//	         Action: Please try again or contact support
//
// # Matching
//
// Sentinels are checked first with errors.Is, in declaration order, so wrapped
// errors keep their code. Errors that only carry text (from net/http or third
// party parsers) fall through to case-insensitive strings.Contains patterns.
// The first match wins, so more specific entries come first.
//
// # For Support Staff
//
// When a user reports an error code:
//  1. Look up the code in this reference
//  2. Check the associated sentinel or pattern to understand what triggered it
//  3. Review the suggested action to guide the user
//  4. If ERR000, check application logs for the original technical error
package core

import (
	"context"
	"errors"
	"strings"

	"github.com/JonMunkholm/DataSweeper/internal/codec"
	"github.com/JonMunkholm/DataSweeper/internal/table"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string `json:"message"` // What happened (user-friendly)
	Action  string `json:"action"`  // What to do about it
	Code    string `json:"code"`    // Error code for support reference
}

var (
	msgTooLarge = UserMessage{
		Message: "Upload exceeds the maximum request size",
		Action:  "Split the file or upload fewer files at once",
		Code:    "FILE001",
	}
	msgParse = UserMessage{
		Message: "File could not be read as a table",
		Action:  "Check that the file is a valid CSV or .xlsx workbook",
		Code:    "FILE002",
	}
	msgNoFile = UserMessage{
		Message: "No file was selected",
		Action:  "Please select a CSV or Excel file to upload",
		Code:    "FILE004",
	}
	msgEmpty = UserMessage{
		Message: "The uploaded file has no header row",
		Action:  "Please upload a file with a header row",
		Code:    "FILE005",
	}
	msgRateLimited = UserMessage{
		Message: "Too many requests",
		Action:  "Please wait a moment before trying again",
		Code:    "RATE001",
	}
)

// sentinelMessages maps sentinel errors to user messages, checked with errors.Is.
// table.ErrNoHeader is wrapped in codec.ErrParse, so it must come first.
var sentinelMessages = []struct {
	target error
	msg    UserMessage
}{
	{table.ErrNoHeader, msgEmpty},
	{codec.ErrUnsupportedFormat, UserMessage{
		Message: "Only .csv and .xlsx files are accepted",
		Action:  "Save the file as CSV or Excel workbook and upload again",
		Code:    "FILE006",
	}},
	{codec.ErrParse, msgParse},
	{ErrNoFiles, msgNoFile},
	{ErrTooManyFiles, UserMessage{
		Message: "Too many files in one upload",
		Action:  "Upload fewer files at once",
		Code:    "FILE007",
	}},

	{table.ErrEmptyMean, UserMessage{
		Message: "A numeric column has no values to average",
		Action:  "Remove the empty column before filling missing values",
		Code:    "PIPE001",
	}},
	{table.ErrUnknownColumn, UserMessage{
		Message: "A selected column does not exist",
		Action:  "Refresh the page and choose columns again",
		Code:    "PIPE002",
	}},
	{table.ErrDuplicateColumn, UserMessage{
		Message: "A column was selected more than once",
		Action:  "Select each column only once",
		Code:    "PIPE003",
	}},
	{codec.ErrUnknownFormat, UserMessage{
		Message: "Unknown export format",
		Action:  "Choose CSV or Excel",
		Code:    "PIPE004",
	}},

	{ErrSessionNotFound, UserMessage{
		Message: "This file is no longer loaded",
		Action:  "The session may have expired. Please upload the file again",
		Code:    "SES001",
	}},
	{ErrTooManySessions, UserMessage{
		Message: "The server is holding too many files",
		Action:  "Please wait a few minutes and try again",
		Code:    "SES002",
	}},

	{ErrTooManyUploads, UserMessage{
		Message: "System is busy processing other files",
		Action:  "Please wait a moment and try again",
		Code:    "UPL002",
	}},
	{ErrInvalidRequest, UserMessage{
		Message: "The request is missing fields or has invalid values",
		Action:  "Check the request and try again",
		Code:    "REQ001",
	}},
	{context.Canceled, UserMessage{
		Message: "Request was cancelled",
		Action:  "Please try again",
		Code:    "UPL004",
	}},
	{context.DeadlineExceeded, UserMessage{
		Message: "Request timed out",
		Action:  "Try a smaller file or check your connection",
		Code:    "UPL005",
	}},
}

// errorPatterns maps technical error text (case-insensitive) to user messages
// for errors that do not wrap a known sentinel.
var errorPatterns = []struct {
	pattern string
	msg     UserMessage
}{
	{"request body too large", msgTooLarge},
	{"file too large", msgTooLarge},
	{"invalid csv", msgParse},
	{"invalid spreadsheet", msgParse},
	{"no file provided", msgNoFile},
	{"empty file", msgEmpty},
	{"rate limit", msgRateLimited},
}

// defaultMessage is returned when nothing matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// Known sentinels win over text patterns; if neither matches, a generic
// fallback message with code ERR000 is returned.
//
// Example:
//
//	_, err := svc.FillMissing(ctx, id)
//	msg := MapError(err)
//	// msg.Code == "PIPE001" when a numeric column is empty under the error policy
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var ue *UserError
	if errors.As(err, &ue) {
		return ue.User
	}

	for _, sm := range sentinelMessages {
		if errors.Is(err, sm.target) {
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

// IsUserFacing reports whether err maps to a specific message rather than
// the ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with its user-friendly message.
// The original error is preserved for logging via Unwrap.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError creates a UserError by mapping a technical error to a
// user-friendly message. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
