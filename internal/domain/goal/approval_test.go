package goal

import (
	"errors"
	"testing"
)

func TestCanSubmitForApproval(t *testing.T) {
	if !CanSubmitForApproval(ApprovalDraft) {
		t.Error("draft goals should be submittable")
	}
	if !CanSubmitForApproval(ApprovalRejected) {
		t.Error("rejected goals should be resubmittable as a new version")
	}
	for _, status := range []string{ApprovalPending, ApprovalApproved, ApprovalClosed} {
		if CanSubmitForApproval(status) {
			t.Errorf("%s goals should not be submittable", status)
		}
	}
}

func TestApproveAndRejectRequirePending(t *testing.T) {
	if !CanApprove(ApprovalPending) || !CanReject(ApprovalPending) {
		t.Fatal("pending goals should be approvable and rejectable")
	}
	for _, status := range []string{ApprovalDraft, ApprovalRejected, ApprovalClosed} {
		if CanApprove(status) {
			t.Errorf("%s goals should not be approvable", status)
		}
		if CanReject(status) {
			t.Errorf("%s goals should not be rejectable", status)
		}
	}
}

func TestCountsTowardReadiness(t *testing.T) {
	counted := []string{ApprovalPending, ApprovalApproved, ApprovalRejected}
	for _, status := range counted {
		if !CountsTowardReadiness(status) {
			t.Errorf("%s should count toward readiness", status)
		}
	}
	for _, status := range []string{ApprovalDraft, ApprovalClosed} {
		if CountsTowardReadiness(status) {
			t.Errorf("%s should not count toward readiness", status)
		}
	}
}

func TestValidateTitle(t *testing.T) {
	if err := ValidateTitle("ab"); !errors.Is(err, ErrValidation) {
		t.Fatalf("two characters should fail, got %v", err)
	}
	if err := ValidateTitle("  a  "); !errors.Is(err, ErrValidation) {
		t.Fatalf("whitespace padding should not count, got %v", err)
	}
	if err := ValidateTitle("Ship v2"); err != nil {
		t.Fatalf("expected valid title, got %v", err)
	}
}

func TestValidateRejectionReason(t *testing.T) {
	if err := ValidateRejectionReason(""); !errors.Is(err, ErrValidation) {
		t.Fatalf("empty reason should fail, got %v", err)
	}
	if err := ValidateRejectionReason("   "); !errors.Is(err, ErrValidation) {
		t.Fatalf("blank reason should fail, got %v", err)
	}
	if err := ValidateRejectionReason("target is unrealistic for Q3"); err != nil {
		t.Fatalf("expected valid reason, got %v", err)
	}
}

func TestValidateEnums(t *testing.T) {
	if err := ValidateCategory("personal"); !errors.Is(err, ErrValidation) {
		t.Fatalf("unknown category should fail, got %v", err)
	}
	if err := ValidateCategory(CategoryMissionAligned); err != nil {
		t.Fatalf("known category should pass, got %v", err)
	}
	if err := ValidatePriority("urgent"); !errors.Is(err, ErrValidation) {
		t.Fatalf("unknown priority should fail, got %v", err)
	}
	if err := ValidateCommentType("rant"); !errors.Is(err, ErrValidation) {
		t.Fatalf("unknown comment type should fail, got %v", err)
	}
}
