package claims

import "errors"

var (
	ErrNotFound       = errors.New("claims: not found")
	ErrDuplicateClaim = errors.New("claims: duplicate claim number")
	ErrAccessDenied   = errors.New("claims: access denied")
	ErrInvalidInput   = errors.New("claims: invalid input")
)
