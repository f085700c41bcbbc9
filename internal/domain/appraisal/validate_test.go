package appraisal

import (
	"errors"
	"testing"
	"time"
)

func TestValidateSubmissionText(t *testing.T) {
	if err := ValidateSubmissionText("selfAssessment", "too short"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for 9 chars, got %v", err)
	}
	if err := ValidateSubmissionText("selfAssessment", "   padded    "); !errors.Is(err, ErrValidation) {
		t.Fatalf("whitespace must not count toward the minimum, got %v", err)
	}
	if err := ValidateSubmissionText("selfAssessment", "exactly10!"); err != nil {
		t.Fatalf("expected 10 chars to pass, got %v", err)
	}
}

func TestValidateRatingBounds(t *testing.T) {
	for _, rating := range []int{0, 6, -1, 100} {
		if err := ValidateRating(rating); !errors.Is(err, ErrValidation) {
			t.Errorf("rating %d should fail validation, got %v", rating, err)
		}
	}
	for _, rating := range []int{1, 3, 5} {
		if err := ValidateRating(rating); err != nil {
			t.Errorf("rating %d should pass, got %v", rating, err)
		}
	}
}

func TestValidateDeadline(t *testing.T) {
	deadline := time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)

	if err := ValidateDeadline("self-assessment", nil, time.Now()); err != nil {
		t.Fatalf("missing deadline should pass, got %v", err)
	}
	onTheDay := time.Date(2026, 6, 30, 23, 0, 0, 0, time.UTC)
	if err := ValidateDeadline("self-assessment", &deadline, onTheDay); err != nil {
		t.Fatalf("deadline day should still be accepted, got %v", err)
	}
	dayAfter := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	if err := ValidateDeadline("self-assessment", &deadline, dayAfter); !errors.Is(err, ErrValidation) {
		t.Fatalf("day after deadline should fail, got %v", err)
	}
}

func TestValidateCycle(t *testing.T) {
	valid := Cycle{
		Name:            "FY26 Annual Review",
		Type:            CycleTypeAnnual,
		ReviewTrack:     ReviewTrackStandard,
		StartDate:       time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:         time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC),
		NewJoinerPolicy: NewJoinerAutoInclude,
	}
	if err := ValidateCycle(valid); err != nil {
		t.Fatalf("expected valid cycle, got %v", err)
	}

	broken := valid
	broken.Name = "  "
	if err := ValidateCycle(broken); !errors.Is(err, ErrValidation) {
		t.Fatalf("blank name should fail, got %v", err)
	}

	broken = valid
	broken.Type = "quarterly"
	if err := ValidateCycle(broken); !errors.Is(err, ErrValidation) {
		t.Fatalf("unknown type should fail, got %v", err)
	}

	broken = valid
	broken.EndDate = broken.StartDate.AddDate(0, -1, 0)
	if err := ValidateCycle(broken); !errors.Is(err, ErrValidation) {
		t.Fatalf("inverted period should fail, got %v", err)
	}

	broken = valid
	broken.NewJoinerPolicy = "ask_ceo"
	if err := ValidateCycle(broken); !errors.Is(err, ErrValidation) {
		t.Fatalf("unknown policy should fail, got %v", err)
	}
}
