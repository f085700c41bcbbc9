package goal

import "errors"

var (
	ErrNotFound     = errors.New("goal not found")
	ErrUnauthorized = errors.New("actor may not perform this action")
	ErrInvalidState = errors.New("goal approval state does not allow this action")
	ErrValidation   = errors.New("validation failed")
)
