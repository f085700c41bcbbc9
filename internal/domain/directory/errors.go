package directory

import "errors"

var (
	ErrNotFound      = errors.New("employee not found")
	ErrValidation    = errors.New("validation failed")
	ErrAlreadyExists = errors.New("employee already exists")
)
