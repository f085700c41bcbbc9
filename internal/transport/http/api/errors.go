package api

import (
	"errors"
	"net/http"

	"epms/internal/domain/appraisal"
	"epms/internal/domain/directory"
	"epms/internal/domain/goal"
	"epms/internal/domain/reports"
)

// FailFromError maps domain errors onto the wire taxonomy. Anything
// unmapped is reported as a 500 without leaking the internal message.
func FailFromError(w http.ResponseWriter, err error, requestID string) {
	switch {
	case errors.Is(err, appraisal.ErrUnauthorized), errors.Is(err, goal.ErrUnauthorized):
		Fail(w, http.StatusForbidden, "forbidden", "not allowed to perform this action", requestID)
	case errors.Is(err, appraisal.ErrNotReady):
		Fail(w, http.StatusConflict, "goals_not_ready", err.Error(), requestID)
	case errors.Is(err, appraisal.ErrInvalidTransition):
		Fail(w, http.StatusConflict, "invalid_transition", err.Error(), requestID)
	case errors.Is(err, goal.ErrInvalidState):
		Fail(w, http.StatusConflict, "invalid_state", err.Error(), requestID)
	case errors.Is(err, reports.ErrNotFinal):
		Fail(w, http.StatusConflict, "invalid_transition", err.Error(), requestID)
	case errors.Is(err, appraisal.ErrCycleNotActive):
		Fail(w, http.StatusConflict, "cycle_not_active", "no active appraisal cycle", requestID)
	case errors.Is(err, appraisal.ErrNotEligible):
		Fail(w, http.StatusConflict, "not_eligible", err.Error(), requestID)
	case errors.Is(err, appraisal.ErrAlreadyExists):
		Fail(w, http.StatusConflict, "already_exists", err.Error(), requestID)
	case errors.Is(err, appraisal.ErrValidation), errors.Is(err, goal.ErrValidation),
		errors.Is(err, directory.ErrValidation):
		Fail(w, http.StatusBadRequest, "validation_error", err.Error(), requestID)
	case errors.Is(err, appraisal.ErrNotFound), errors.Is(err, goal.ErrNotFound),
		errors.Is(err, directory.ErrNotFound), errors.Is(err, reports.ErrNotFound):
		Fail(w, http.StatusNotFound, "not_found", err.Error(), requestID)
	default:
		Fail(w, http.StatusInternalServerError, "internal_error", "internal error", requestID)
	}
}
