package appraisal

import (
	"fmt"
	"strings"
	"time"
)

func ValidateSubmissionText(field, text string) error {
	if len(strings.TrimSpace(text)) < MinSubmissionLength {
		return fmt.Errorf("%w: %s must be at least %d characters", ErrValidation, field, MinSubmissionLength)
	}
	return nil
}

func ValidateRating(rating int) error {
	if rating < RatingMin || rating > RatingMax {
		return fmt.Errorf("%w: rating must be between %d and %d", ErrValidation, RatingMin, RatingMax)
	}
	return nil
}

// ValidateDeadline rejects submissions after the configured deadline.
// Deadlines are informational until the submission moment; they never drive
// automatic transitions.
func ValidateDeadline(name string, deadline *time.Time, now time.Time) error {
	if deadline == nil {
		return nil
	}
	// The deadline day itself still counts.
	cutoff := deadline.AddDate(0, 0, 1)
	if !now.Before(cutoff) {
		return fmt.Errorf("%w: %s deadline passed (%s)", ErrValidation, name, deadline.Format("2006-01-02"))
	}
	return nil
}

func ValidateCycle(c Cycle) error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	validType := false
	for _, t := range CycleTypes {
		if c.Type == t {
			validType = true
			break
		}
	}
	if !validType {
		return fmt.Errorf("%w: unknown cycle type %q", ErrValidation, c.Type)
	}
	if c.ReviewTrack != ReviewTrackStandard && c.ReviewTrack != ReviewTrackMeeting {
		return fmt.Errorf("%w: unknown review track %q", ErrValidation, c.ReviewTrack)
	}
	if c.StartDate.IsZero() || c.EndDate.IsZero() || c.EndDate.Before(c.StartDate) {
		return fmt.Errorf("%w: start and end dates must form a valid period", ErrValidation)
	}
	if c.MinimumServiceMonths < 0 {
		return fmt.Errorf("%w: minimum service months must not be negative", ErrValidation)
	}
	validPolicy := false
	for _, p := range NewJoinerPolicies {
		if c.NewJoinerPolicy == p {
			validPolicy = true
			break
		}
	}
	if !validPolicy {
		return fmt.Errorf("%w: unknown new joiner policy %q", ErrValidation, c.NewJoinerPolicy)
	}
	return nil
}
