// Error Codes Reference
//
// This file defines user-friendly error messages with codes for support reference.
// When users encounter errors, they can quote the error code to support staff
// for faster diagnosis.
//
// # Schema Errors (SCH001-SCH099)
//
// A source table lacks a required column. The run stops before any row is read.
//
//	SCH001 - Ledger schema: "Bitwave Balance File must contain 'Qty' and 'Inventory' columns."
//	         Action: Export the balance report again with the default columns
//	SCH002 - Statement schema: "Anchorage Balance Statement must contain 'Date', 'Wallet Name', and 'Quantity' columns."
//	         Action: Download the statement again with the default columns
//
// The messages are built from the active profile, so renamed columns show up
// in the text.
//
// # Input Errors (INP001-INP099)
//
//	INP001 - Missing input: Please upload both CSV files to proceed.
//	         Patterns: "missing input"
//	INP002 - Invalid date: The analysis date is not a valid date
//	         Patterns: "invalid analysis date"
//	INP003 - Unknown source: only ledger and statement exist
//	         Patterns: "unknown source"
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large        Patterns: "file too large", "request body too large"
//	FILE002 - Invalid CSV           Patterns: "invalid csv"
//	FILE005 - Empty file            Patterns: "empty file"
//
// # Run Errors (REC001-REC099)
//
//	REC001 - System busy            Patterns: "too many concurrent reconciliations"
//	REC002 - Request cancelled      Patterns: "context canceled"
//	REC003 - Request timeout        Patterns: "context deadline exceeded"
//
// # Access (RATE001, AUTH001-AUTH002)
//
//	RATE001 - Rate limited          Patterns: "rate limit"
//	AUTH001 - Missing API key       Patterns: "missing api key"
//	AUTH002 - Invalid API key       Patterns: "invalid api key"
//
// # Default Error (ERR000)
//
// Fallback when no specific pattern matches. Check application logs for the
// original technical error.
//
// Pattern Matching
//
// Typed errors (*SchemaError) are matched first with errors.As. Remaining
// patterns are matched case-insensitively using strings.Contains; the first
// matching pattern wins.

package core

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingInput is returned when either source file is absent.
	ErrMissingInput = errors.New("missing input: both ledger and statement files are required")

	// ErrInvalidAnalysisDate is returned when the analysis date cannot be parsed.
	ErrInvalidAnalysisDate = errors.New("invalid analysis date: use YYYY-MM-DD")

	// ErrEmptyFile is returned when an uploaded file has no content.
	ErrEmptyFile = errors.New("empty file")

	// ErrUnknownSource is returned for a source key other than ledger or statement.
	ErrUnknownSource = errors.New("unknown source")
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error patterns (case-insensitive) to user messages.
// Order matters: more specific patterns come before general ones.
var errorPatterns = []errorPattern{
	// =========================================================================
	// Input Errors
	// =========================================================================
	{
		pattern: "missing input",
		msg: UserMessage{
			Message: "Please upload both CSV files to proceed.",
			Action:  "Select the balance file and the statement, then submit again",
			Code:    "INP001",
		},
	},
	{
		pattern: "invalid analysis date",
		msg: UserMessage{
			Message: "The analysis date is not a valid date",
			Action:  "Use the YYYY-MM-DD format, for example 2025-04-30",
			Code:    "INP002",
		},
	},
	{
		pattern: "unknown source",
		msg: UserMessage{
			Message: "Unknown source table",
			Action:  "Use ledger or statement",
			Code:    "INP003",
		},
	},

	// =========================================================================
	// File Errors
	// =========================================================================
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds the maximum upload size",
			Action:  "Export a smaller date range and try again",
			Code:    "FILE001",
		},
	},
	{
		pattern: "request body too large",
		msg: UserMessage{
			Message: "File exceeds the maximum upload size",
			Action:  "Export a smaller date range and try again",
			Code:    "FILE001",
		},
	},
	{
		pattern: "invalid csv",
		msg: UserMessage{
			Message: "File is not a valid CSV",
			Action:  "Ensure file is comma-separated with consistent quoting",
			Code:    "FILE002",
		},
	},
	{
		pattern: "empty file",
		msg: UserMessage{
			Message: "The uploaded file is empty",
			Action:  "Please upload a CSV file with a header and data rows",
			Code:    "FILE005",
		},
	},

	// =========================================================================
	// Run Errors
	// =========================================================================
	{
		pattern: "too many concurrent reconciliations",
		msg: UserMessage{
			Message: "System is busy processing other comparisons",
			Action:  "Please wait a moment and try again",
			Code:    "REC001",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "REC002",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try smaller files or check your connection",
			Code:    "REC003",
		},
	},

	// =========================================================================
	// Access
	// =========================================================================
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
	{
		pattern: "missing api key",
		msg: UserMessage{
			Message: "This endpoint requires an API key",
			Action:  "Send the key in the X-API-Key header",
			Code:    "AUTH001",
		},
	},
	{
		pattern: "invalid api key",
		msg: UserMessage{
			Message: "The API key was not accepted",
			Action:  "Check the key with your administrator",
			Code:    "AUTH002",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
//
// Example:
//
//	err := ValidateHeaders(profile.LedgerSource(), table)
//	msg := MapError(err)
//	// msg.Code == "SCH001"
//	// msg.Message == "Bitwave Balance File must contain 'Qty' and 'Inventory' columns."
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var schemaErr *SchemaError
	if errors.As(err, &schemaErr) {
		return schemaMessage(schemaErr)
	}

	errStr := strings.ToLower(err.Error())

	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// schemaMessage builds the per-table message for a missing column.
func schemaMessage(e *SchemaError) UserMessage {
	msg := UserMessage{
		Message: e.UserText(),
		Code:    "SCH001",
		Action:  "Export the balance report again with the default columns",
	}
	if e.Source == SourceStatement {
		msg.Code = "SCH002"
		msg.Action = "Download the statement again with the default columns"
	}
	if len(e.Missing) > 0 {
		msg.Action = fmt.Sprintf("Missing: %s. %s", strings.Join(e.Missing, ", "), msg.Action)
	}
	return msg
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

// IsUserFacing checks if an error matches a known pattern and should be shown to users.
// Returns true if the error matches a specific pattern (not the generic ERR000 fallback).
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
