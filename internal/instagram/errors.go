package instagram

import (
	"context"
	"errors"
	"strings"
)

// ErrNoPosts is returned when no post link could be clicked on the profile.
var ErrNoPosts = errors.New("could not locate any posts on the profile page")

// ErrorCode classifies automation failures for the report and exit status.
type ErrorCode string

const (
	ErrCodeNone             ErrorCode = ""
	ErrCodeTimeoutError     ErrorCode = "TIMEOUT_ERROR"
	ErrCodeElementNotFound  ErrorCode = "ELEMENT_NOT_FOUND"
	ErrCodeNavigationError  ErrorCode = "NAVIGATION_ERROR"
	ErrCodeExecutionFailure ErrorCode = "EXECUTION_FAILURE"
)

// Classify maps an automation error to an ErrorCode.
func Classify(err error) ErrorCode {
	if err == nil {
		return ErrCodeNone
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrCodeTimeoutError
	}
	if errors.Is(err, ErrNoPosts) {
		return ErrCodeElementNotFound
	}

	errStr := err.Error()
	if strings.Contains(errStr, "no element found") || strings.Contains(errStr, "could not find node") {
		return ErrCodeElementNotFound
	}
	if strings.Contains(errStr, "timeout") || strings.Contains(errStr, "timed out") {
		return ErrCodeTimeoutError
	}
	if strings.Contains(errStr, "net::ERR") || strings.Contains(errStr, "page load error") {
		return ErrCodeNavigationError
	}
	return ErrCodeExecutionFailure
}

// ExitCode is the process status for a finished automation run: 0 on
// success, 2 for timeouts and 3 otherwise.
func ExitCode(err error) int {
	switch Classify(err) {
	case ErrCodeNone:
		return 0
	case ErrCodeTimeoutError:
		return 2
	default:
		return 3
	}
}
