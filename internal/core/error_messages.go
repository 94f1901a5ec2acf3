// # Error Codes Reference
//
// This file defines user-friendly error messages with codes for support reference.
// When users encounter errors, they can quote the error code to support staff
// for faster diagnosis.
//
// Error codes are grouped by category:
//
// # Store Errors (DB001-DB099)
//
// Errors raised by the task store during a bulk write or CRUD call:
//
//	DB001 - Duplicate key: A record with this name already exists
//	        Patterns: "duplicate key", "unique constraint"
//
//	DB003 - Foreign key: Referenced record does not exist
//	        Patterns: "foreign key"
//
//	DB004 - Connection refused: Unable to reach the task store
//	        Patterns: "connection refused", "no such host"
//
//	DB005 - Connection reset: Task store connection was interrupted
//	        Patterns: "connection reset", "broken pipe"
//
//	DB006 - Timeout: Operation timed out
//	        Patterns: "timeout"
//
//	DB007 - Busy: Store was busy with conflicting operations
//	        Patterns: "deadlock", "database is locked"
//
//	DB008 - Not found: Record not found
//	        Patterns: "record not found"
//
// # Validation Errors (VAL001-VAL099)
//
//	VAL001 - Invalid input: A required field is empty or malformed
//	         Patterns: "invalid input"
//
//	VAL004 - Missing column: Required column is missing from the file
//	         Patterns: "missing required column"
//
//	VAL007 - No valid rows: Every row was skipped
//	         Patterns: "no valid rows"
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large          Patterns: "file too large"
//	FILE002 - Invalid spreadsheet     Patterns: "invalid spreadsheet", "unsupported file type"
//	FILE004 - No file                 Patterns: "no file provided"
//	FILE005 - Empty file              Patterns: "empty file"
//
// # Import Errors (IMP001-IMP099)
//
//	IMP001 - Unknown import kind      Patterns: "unknown import"
//	IMP002 - System busy              Patterns: "too many imports"
//	IMP003 - Request cancelled        Patterns: "context canceled"
//	IMP004 - Request timeout          Patterns: "context deadline exceeded"
//
// # Authorization and Rate Limiting
//
//	AUTH001 - Not authorized          Patterns: "api key", "unauthorized", "permission denied"
//	RATE001 - Too many requests       Patterns: "rate limit"
//
// # Default Error (ERR000)
//
// Fallback when no specific pattern matches. Support staff should check the
// server log, keyed by request ID, for the original technical error.
//
// Patterns are matched case-insensitively with strings.Contains and the first
// match wins, so specific patterns come before general ones.

package core

import (
	"fmt"
	"strings"
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
// Patterns are matched using strings.Contains, so partial matches work.
// The first matching pattern wins, so order matters:
//   - More specific patterns should come before general ones
//   - Multiple patterns can map to the same error code
//
// To add a new error pattern:
//  1. Choose the appropriate category and code range
//  2. Add the pattern in the correct position (specific before general)
//  3. Update the package documentation at the top of this file
var errorPatterns = []errorPattern{
	// =========================================================================
	// Store constraint errors
	// =========================================================================
	{
		pattern: "duplicate key",
		msg: UserMessage{
			Message: "A record with this name already exists",
			Action:  "Remove the duplicate entry and try again",
			Code:    "DB001",
		},
	},
	{
		pattern: "unique constraint",
		msg: UserMessage{
			Message: "A record with this name already exists",
			Action:  "Remove the duplicate entry and try again",
			Code:    "DB001",
		},
	},
	{
		pattern: "foreign key",
		msg: UserMessage{
			Message: "Referenced record does not exist",
			Action:  "Create the category or assignee first",
			Code:    "DB003",
		},
	},

	// =========================================================================
	// Store connectivity errors
	// =========================================================================
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to reach the task store",
			Action:  "Please try again in a few moments",
			Code:    "DB004",
		},
	},
	{
		pattern: "no such host",
		msg: UserMessage{
			Message: "Unable to reach the task store",
			Action:  "Please try again in a few moments",
			Code:    "DB004",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "Task store connection was interrupted",
			Action:  "Please try again",
			Code:    "DB005",
		},
	},
	{
		pattern: "broken pipe",
		msg: UserMessage{
			Message: "Task store connection was interrupted",
			Action:  "Please try again",
			Code:    "DB005",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try a smaller file or try again later",
			Code:    "IMP004",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Try a smaller file or try again later",
			Code:    "DB006",
		},
	},
	{
		pattern: "deadlock",
		msg: UserMessage{
			Message: "The task store was busy",
			Action:  "Please try again",
			Code:    "DB007",
		},
	},
	{
		pattern: "database is locked",
		msg: UserMessage{
			Message: "The task store was busy",
			Action:  "Please try again",
			Code:    "DB007",
		},
	},
	{
		pattern: "record not found",
		msg: UserMessage{
			Message: "Record not found",
			Action:  "Refresh the page and try again",
			Code:    "DB008",
		},
	},

	// =========================================================================
	// Validation errors
	// =========================================================================
	{
		pattern: "invalid input",
		msg: UserMessage{
			Message: "Some fields are missing or invalid",
			Action:  "Fill in the required fields and try again",
			Code:    "VAL001",
		},
	},
	{
		pattern: "missing required column",
		msg: UserMessage{
			Message: "Required column is missing from the file",
			Action:  "Download the template and compare the header row",
			Code:    "VAL004",
		},
	},
	{
		pattern: "no valid rows",
		msg: UserMessage{
			Message: "No valid rows found in the file",
			Action:  "Check that Client Name, Task Category and Sub Category have values",
			Code:    "VAL007",
		},
	},

	// =========================================================================
	// File errors
	// =========================================================================
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds the maximum upload size",
			Action:  "Split the file into smaller chunks",
			Code:    "FILE001",
		},
	},
	{
		pattern: "unsupported file type",
		msg: UserMessage{
			Message: "Only CSV and Excel (.xlsx) files are supported",
			Action:  "Save the file as CSV and upload it again",
			Code:    "FILE002",
		},
	},
	{
		pattern: "invalid spreadsheet",
		msg: UserMessage{
			Message: "The spreadsheet could not be read",
			Action:  "Save the file as CSV and upload it again",
			Code:    "FILE002",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Please select a CSV file to upload",
			Code:    "FILE004",
		},
	},
	{
		pattern: "empty file",
		msg: UserMessage{
			Message: "The uploaded file is empty",
			Action:  "The file must contain a header row and at least one data row",
			Code:    "FILE005",
		},
	},

	// =========================================================================
	// Import errors
	// =========================================================================
	{
		pattern: "unknown import",
		msg: UserMessage{
			Message: "Unknown import type",
			Action:  "Use the tasks or assignees import",
			Code:    "IMP001",
		},
	},
	{
		pattern: "too many imports",
		msg: UserMessage{
			Message: "System is busy processing other imports",
			Action:  "Please wait a moment and try again",
			Code:    "IMP002",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "IMP003",
		},
	},

	// =========================================================================
	// Authorization and rate limiting
	// =========================================================================
	{
		pattern: "api key",
		msg: UserMessage{
			Message: "You are not authorized to perform this action",
			Action:  "Provide a valid admin API key",
			Code:    "AUTH001",
		},
	},
	{
		pattern: "unauthorized",
		msg: UserMessage{
			Message: "You are not authorized to perform this action",
			Action:  "Provide a valid admin API key",
			Code:    "AUTH001",
		},
	},
	{
		pattern: "permission denied",
		msg: UserMessage{
			Message: "You are not authorized to perform this action",
			Action:  "Provide a valid admin API key",
			Code:    "AUTH001",
		},
	},
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
// This is the fallback for unexpected errors. Support staff should check
// application logs for the original technical error when users report ERR000.
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// It searches through known error patterns (case-insensitive) and returns
// the first match. If no pattern matches, a generic fallback message with
// code ERR000 is returned.
//
// Example:
//
//	err := errors.New("duplicate key violation")
//	msg := MapError(err)
//	// msg.Code == "DB001"
//	// msg.Message == "A record with this name already exists"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
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
//
// Example output: "A record with this name already exists (Code: DB001). Remove the duplicate entry and try again"
//
// This is the primary function for displaying errors to end users.
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing checks if an error matches a known pattern and should be shown to users.
// Returns true if the error matches a specific pattern (not the generic ERR000 fallback).
// Use this to decide whether to show the raw error or the mapped user message.
//
// Example:
//
//	if IsUserFacing(err) {
//	    showToUser(FormatUserError(err))
//	} else {
//	    log.Error(err) // Log technical error
//	    showToUser("An error occurred. Please try again.")
//	}
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	msg := MapError(err)
	return msg.Code != defaultMessage.Code
}

// WrapWithUserMessage wraps a technical error with a user-friendly message.
// The original error is preserved for logging while providing a clean message for users.
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

// NewUserError creates a UserError by mapping a technical error to a user-friendly message.
// The returned UserError preserves the original technical error for logging via Unwrap(),
// while providing a clean user message via Error().
//
// Returns nil if err is nil.
//
// Example:
//
//	ue := NewUserError(dbErr)
//	log.Error(ue.Technical)          // Log original error
//	fmt.Println(ue.Error())           // Show "A record with this name already exists"
//	fmt.Println(ue.User.Code)         // Show "DB001"
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
