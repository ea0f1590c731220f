package domain

import "fmt"

// AppError is the base domain error type.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Cause   error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Cause }

// Standard domain error constructors.

func ErrNotFound(entity, id string) *AppError {
	return &AppError{Code: "NOT_FOUND", Message: fmt.Sprintf("%s %s not found", entity, id), Status: 404}
}

func ErrConflict(msg string) *AppError {
	return &AppError{Code: "CONFLICT", Message: msg, Status: 409}
}

func ErrValidation(msg string) *AppError {
	return &AppError{Code: "VALIDATION_ERROR", Message: msg, Status: 400}
}

func ErrUnauthorized(msg string) *AppError {
	return &AppError{Code: "UNAUTHORIZED", Message: msg, Status: 401}
}

func ErrForbidden(msg string) *AppError {
	return &AppError{Code: "FORBIDDEN", Message: msg, Status: 403}
}

func ErrInternal(msg string, cause error) *AppError {
	return &AppError{Code: "INTERNAL_ERROR", Message: msg, Status: 500, Cause: cause}
}

func ErrRateLimited(msg string) *AppError {
	return &AppError{Code: "RATE_LIMITED", Message: msg, Status: 429}
}

func ErrAccountLocked(msg string) *AppError {
	return &AppError{Code: "ACCOUNT_LOCKED", Message: msg, Status: 423}
}

// Entry validation errors, in the order the builder checks them.

func ErrInvalidStake() *AppError {
	return &AppError{Code: "INVALID_STAKE", Message: "stake must be positive", Status: 400}
}

func ErrLegCountMismatch(rule PayoutRule, got int) *AppError {
	return &AppError{
		Code:    "LEG_COUNT_MISMATCH",
		Message: fmt.Sprintf("%s requires exactly %d legs, got %d", rule, rule.LegCount(), got),
		Status:  400,
	}
}

func ErrDuplicateLeg(lineID string) *AppError {
	return &AppError{Code: "DUPLICATE_LEG", Message: fmt.Sprintf("line %s referenced twice", lineID), Status: 400}
}

func ErrLineUnavailable(lineID string) *AppError {
	return &AppError{Code: "LINE_UNAVAILABLE", Message: fmt.Sprintf("line %s is missing or not open", lineID), Status: 400}
}

func ErrEntryLocked(matchID string) *AppError {
	return &AppError{Code: "ENTRY_LOCKED", Message: fmt.Sprintf("entries are locked for match %s", matchID), Status: 400}
}

func ErrInsufficientFunds() *AppError {
	return &AppError{Code: "INSUFFICIENT_FUNDS", Message: "insufficient credits", Status: 400}
}

func ErrStakeLimit(breached string, limit int64) *AppError {
	return &AppError{
		Code:    "STAKE_LIMIT_EXCEEDED",
		Message: fmt.Sprintf("%s limit of %d credits exceeded", breached, limit),
		Status:  400,
	}
}

// ErrAlreadySettled reports a benign repeat settlement. Status 200 because the
// caller treats it as success-with-no-effect, which keeps sweeps re-runnable,
// while the code stays distinguishable for auditing.
func ErrAlreadySettled(entity, id string) *AppError {
	return &AppError{Code: "ALREADY_SETTLED", Message: fmt.Sprintf("%s %s already settled", entity, id), Status: 200}
}

// IsAlreadySettled reports whether err is the benign repeat-settlement case.
func IsAlreadySettled(err error) bool {
	appErr, ok := err.(*AppError)
	return ok && appErr.Code == "ALREADY_SETTLED"
}
