// Package common defines shared constants and sentinel errors used across
// the server and client layers of GoTodo. Callers should use errors.Is to
// match these values.
package common

import "errors"

// subError is a sentinel with its own message that still matches its parent
// through errors.Is.
type subError struct {
	msg    string
	parent error
}

func (e *subError) Error() string { return e.msg }
func (e *subError) Unwrap() error { return e.parent }

func newSubError(parent error, msg string) error {
	return &subError{msg: msg, parent: parent}
}

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")
	ErrConflict   = errors.New("already exists")

	// Service-level errors.
	ErrorInternal      = errors.New("internal error")
	ErrInvalidInput    = errors.New("invalid input")
	ErrUnauthenticated = errors.New("wrong credentials")
	ErrUserNotFound    = newSubError(ErrUnauthenticated, "user does not exist")

	// Token errors. All of them are reported to clients as unauthorized.
	ErrorUnauthorized  = errors.New("unauthorized")
	ErrMissingToken    = newSubError(ErrorUnauthorized, "missing authorization header")
	ErrInvalidAuthHdr  = newSubError(ErrorUnauthorized, "invalid authorization header format")
	ErrInvalidToken    = newSubError(ErrorUnauthorized, "invalid token")
	ErrTokenExpired    = newSubError(ErrorUnauthorized, "token expired")
	ErrTokenRevoked    = newSubError(ErrorUnauthorized, "token has been revoked")
	ErrWrongTokenType  = newSubError(ErrorUnauthorized, "wrong token type")
	ErrUnknownIdentity = newSubError(ErrorUnauthorized, "token subject does not exist")
)
