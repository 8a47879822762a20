// Package apperrors defines the categorized failures returned by the friend
// request services. Callers match them with errors.Is or inspect the Kind
// through errors.As.
package apperrors

import "errors"

// Kind is the category of a domain failure.
type Kind string

const (
	KindValidation Kind = "validation"
	KindConflict   Kind = "conflict"
	KindNotFound   Kind = "not_found"
	KindPolicy     Kind = "policy"
	KindRateLimit  Kind = "rate_limit"
)

// Error is a user-visible failure with a category and a stable code.
type Error struct {
	Kind    Kind
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Is reports whether target carries the same code, so wrapped copies of a
// sentinel still match it.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

func newError(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

var (
	// validation
	ErrMissingStatus         = newError(KindValidation, "missing_status", "Status not provided")
	ErrInvalidStatus         = newError(KindValidation, "invalid_status", "Wrong status request!")
	ErrMissingSearchCriteria = newError(KindValidation, "missing_search_criteria", "Please enter the email or the name field.")
	ErrInvalidFriendID       = newError(KindValidation, "invalid_friend_id", "Invalid friend id")

	// conflict
	ErrDuplicateRequest = newError(KindConflict, "duplicate_request", "Friend request already exists.")
	ErrAlreadyAccepted  = newError(KindConflict, "already_accepted", "Request is already accepted and can't be deleted")

	// not found
	ErrRequestNotFound = newError(KindNotFound, "request_not_found", "Friend request does not exist.")
	ErrUserNotFound    = newError(KindNotFound, "user_not_found", "User does not exist.")
	ErrInvalidPage     = newError(KindNotFound, "invalid_page", "Invalid page.")

	// policy
	ErrSelfAcceptNotAllowed = newError(KindPolicy, "self_accept_not_allowed", "You cannot accept your own friend request. You must wait for the other person.")
	ErrInvalidTarget        = newError(KindPolicy, "invalid_target", "User and friend are the same")

	ErrRateLimited = newError(KindRateLimit, "rate_limited", "Request was throttled. Try again later.")
)

// KindOf returns the category of err, or "" when err is not a domain error.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}
