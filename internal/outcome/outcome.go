// Package outcome turns operation results into the code and message shown
// to the person at the keyboard.
package outcome

import (
	"errors"

	"github.com/mcoot/clubdesk/internal/model"
)

// Result is what a front end displays after an operation
type Result struct {
	OK      bool   `json:"ok"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Result codes
const (
	CodeOK                  = "OK"
	CodeInvalidInput        = "INVALID_INPUT"
	CodeInvalidRole         = "INVALID_ROLE"
	CodeInvalidCredentials  = "INVALID_CREDENTIALS"
	CodeAuthRequired        = "AUTH_REQUIRED"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeUsernameExists      = "USERNAME_EXISTS"
	CodeProfileRequired     = "PROFILE_REQUIRED"
	CodeUserNotFound        = "USER_NOT_FOUND"
	CodePlayerNotFound      = "PLAYER_NOT_FOUND"
	CodeTrainingNotFound    = "TRAINING_NOT_FOUND"
	CodeMatchNotFound       = "MATCH_NOT_FOUND"
	CodeNotFound            = "NOT_FOUND"
	CodeMatchHasStats       = "MATCH_HAS_STATS"
	CodeConstraintViolation = "CONSTRAINT_VIOLATION"
	CodeStoreUnavailable    = "STORE_UNAVAILABLE"
	CodeInternalError       = "INTERNAL_ERROR"
)

// resultError lets callers return a ready-made Result as an error
type resultError struct {
	result Result
}

func (e *resultError) Error() string {
	return e.result.Message
}

// Success builds an OK result
func Success(message string) Result {
	return Result{OK: true, Code: CodeOK, Message: message}
}

// New creates an error that FromError reports with exactly this code and
// message
func New(code, message string) error {
	return &resultError{Result{Code: code, Message: message}}
}

// NewAuthRequired reports a command run without credentials
func NewAuthRequired() error {
	return New(CodeAuthRequired, "Log in first: pass --user and --pass or a session token")
}

// FromError maps err to a Result. A nil error is a bare success.
func FromError(err error) Result {
	if err == nil {
		return Success("")
	}

	var re *resultError
	if errors.As(err, &re) {
		return re.result
	}

	var verr *model.ValidationError
	if errors.As(err, &verr) {
		return failure(CodeInvalidInput, "Invalid input: "+verr.Error())
	}

	// Credentials come before not-found: an unknown username matches both
	switch {
	case errors.Is(err, model.ErrInvalidCredentials):
		return failure(CodeInvalidCredentials, "Invalid username or password")
	case errors.Is(err, model.ErrUnauthorized):
		return failure(CodeUnauthorized, "You are not allowed to do that")
	case errors.Is(err, model.ErrDuplicateUsername):
		return failure(CodeUsernameExists, "Username already exists")
	case errors.Is(err, model.ErrInvalidRole):
		return failure(CodeInvalidRole, "Role must be coach or player")
	case errors.Is(err, model.ErrProfileRequired):
		return failure(CodeProfileRequired, "Create your player profile first")

	case errors.Is(err, model.ErrUserNotFound):
		return failure(CodeUserNotFound, "User not found")
	case errors.Is(err, model.ErrPlayerNotFound):
		return failure(CodePlayerNotFound, "Player not found")
	case errors.Is(err, model.ErrTrainingNotFound):
		return failure(CodeTrainingNotFound, "Training not found")
	case errors.Is(err, model.ErrMatchNotFound):
		return failure(CodeMatchNotFound, "Match not found")
	case errors.Is(err, model.ErrNotFound):
		return failure(CodeNotFound, "Not found")

	case errors.Is(err, model.ErrMatchHasStats):
		return failure(CodeMatchHasStats, "Match has recorded statistics and cannot be deleted")
	case errors.Is(err, model.ErrConstraintViolation):
		return failure(CodeConstraintViolation, "The change conflicts with existing records")
	case errors.Is(err, model.ErrStoreUnavailable):
		return failure(CodeStoreUnavailable, "The club database is unavailable")

	default:
		return failure(CodeInternalError, "Internal error")
	}
}

func failure(code, message string) Result {
	return Result{Code: code, Message: message}
}

// ExitCode is the process exit status for r
func (r Result) ExitCode() int {
	switch {
	case r.OK:
		return 0
	case r.Code == CodeInvalidInput || r.Code == CodeInvalidRole:
		return 2
	case r.Code == CodeInvalidCredentials || r.Code == CodeAuthRequired || r.Code == CodeUnauthorized:
		return 3
	case r.Code == CodeStoreUnavailable || r.Code == CodeInternalError:
		return 4
	default:
		return 1
	}
}
