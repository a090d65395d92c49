package adapter

import "errors"

var (
	ErrBadRequest          = errors.New("bad request")
	ErrUnauthorized        = errors.New("client unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrNotFound            = errors.New("not found")
	ErrConflict            = errors.New("conflict")
	ErrInternalServerError = errors.New("internal server error")
	ErrServerUnavailable   = errors.New("server unavailable")
	ErrNetwork             = errors.New("network error")
	ErrInvalidAddress      = errors.New("invalid server address")
)
