package appraisal

import "errors"

var (
	ErrNotFound          = errors.New("appraisal not found")
	ErrUnauthorized      = errors.New("actor may not perform this action")
	ErrInvalidTransition = errors.New("status transition not allowed")
	ErrValidation        = errors.New("validation failed")
	ErrNotReady          = errors.New("goals not ready")
	ErrCycleNotActive    = errors.New("cycle is not active")
	ErrNotEligible       = errors.New("employee not eligible for cycle")
	ErrAlreadyExists     = errors.New("appraisal already exists for cycle")
)
