package errors

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ErrorInfo 에러 정보 구조
type ErrorInfo struct {
	Code    string
	Message string
}

// ParseError converts a database or service error into a user-facing code and
// message. Sensitive detail stays out of the response; enough context remains
// for the caller to act on the failure.
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{
			Code:    InternalServerError,
			Message: "An internal error occurred",
		}
	}

	errStr := err.Error()
	errStrLower := strings.ToLower(errStr)

	// 1. GORM record lookup
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{
			Code:    ResourceNotFound,
			Message: getNotFoundMessage(context),
		}
	}

	// 2. Constraint violations (PostgreSQL wording, SQLite wording for tests)

	if strings.Contains(errStrLower, "duplicate key") ||
		strings.Contains(errStrLower, "unique constraint") {
		return parseDuplicateKeyError(errStr)
	}

	if strings.Contains(errStrLower, "foreign key constraint") {
		return parseForeignKeyError(errStr)
	}

	if strings.Contains(errStrLower, "null value") && strings.Contains(errStrLower, "violates not-null constraint") {
		return ErrorInfo{
			Code:    ValidationRequired,
			Message: "A required field is missing",
		}
	}

	// 3. Connectivity failures are reported as retryable
	if strings.Contains(errStrLower, "connection refused") ||
		strings.Contains(errStrLower, "no such host") ||
		strings.Contains(errStrLower, "timeout") {
		return ErrorInfo{
			Code:    InternalExternalAPI,
			Message: "An upstream service is unavailable. Please try again shortly",
		}
	}

	// 4. Default
	return ErrorInfo{
		Code:    InternalServerError,
		Message: getDefaultErrorMessage(context),
	}
}

func parseDuplicateKeyError(errStr string) ErrorInfo {
	errLower := strings.ToLower(errStr)

	if strings.Contains(errLower, "case_number") || strings.Contains(errLower, "idx_cases_case_number") {
		return ErrorInfo{
			Code:    CaseNumberExists,
			Message: "A case with this case number already exists",
		}
	}

	if strings.Contains(errLower, "idx_documents_case_storage_ref") || strings.Contains(errLower, "storage_ref") {
		return ErrorInfo{
			Code:    ResourceAlreadyExists,
			Message: "This document is already attached to the case",
		}
	}

	if strings.Contains(errLower, "email") || strings.Contains(errLower, "idx_users_email") {
		return ErrorInfo{
			Code:    AuthEmailAlreadyExists,
			Message: "This email address is already registered",
		}
	}

	if strings.Contains(errLower, "dedup_key") {
		// retried side-effect dispatch; the row already exists
		return ErrorInfo{
			Code:    ResourceAlreadyExists,
			Message: "This operation has already been recorded",
		}
	}

	return ErrorInfo{
		Code:    ResourceAlreadyExists,
		Message: "This record already exists",
	}
}

func parseForeignKeyError(errStr string) ErrorInfo {
	errLower := strings.ToLower(errStr)

	if strings.Contains(errLower, "still referenced") {
		return ErrorInfo{
			Code:    ResourceConflict,
			Message: "Related records exist, the operation cannot proceed",
		}
	}

	if strings.Contains(errLower, "user_id") || strings.Contains(errLower, "fk_users") {
		return ErrorInfo{
			Code:    ResourceNotFound,
			Message: "The referenced user does not exist",
		}
	}
	if strings.Contains(errLower, "case_id") || strings.Contains(errLower, "fk_cases") {
		return ErrorInfo{
			Code:    CaseNotFound,
			Message: "The referenced case does not exist",
		}
	}

	return ErrorInfo{
		Code:    ResourceNotFound,
		Message: "A referenced record could not be found",
	}
}

func getNotFoundMessage(context string) string {
	contextLower := strings.ToLower(context)

	switch {
	case strings.Contains(contextLower, "case"):
		return "Case not found"
	case strings.Contains(contextLower, "verification"):
		return "Verification request not found"
	case strings.Contains(contextLower, "document"):
		return "Document not found"
	case strings.Contains(contextLower, "notification"):
		return "Notification not found"
	case strings.Contains(contextLower, "user"):
		return "User not found"
	}

	return "The requested record could not be found"
}

func getDefaultErrorMessage(context string) string {
	contextLower := strings.ToLower(context)

	switch {
	case strings.Contains(contextLower, "create"), strings.Contains(contextLower, "register"), strings.Contains(contextLower, "submit"):
		return "The record could not be created. Please try again"
	case strings.Contains(contextLower, "update"), strings.Contains(contextLower, "decide"), strings.Contains(contextLower, "review"):
		return "The update could not be applied. Please try again"
	}

	return "An internal error occurred. Please try again later"
}

// ParseAndRespond parses err and writes a standard error response
func ParseAndRespond(c interface{ JSON(int, interface{}) }, statusCode int, err error, context string) {
	errorInfo := ParseError(err, context)
	c.JSON(statusCode, ErrorResponse{
		Error:   errorInfo.Code,
		Message: errorInfo.Message,
	})
}
