package principal

import "errors"

var (
	ErrNotFound           = errors.New("principal not found")
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrInvalidPrincipal   = errors.New("invalid principal")
)
