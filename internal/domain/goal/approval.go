package goal

import (
	"fmt"
	"strings"
)

// CanSubmitForApproval reports whether the goal's current approval status
// allows (re)submission. Rejected goals re-enter approval as a new version.
func CanSubmitForApproval(approvalStatus string) bool {
	return approvalStatus == ApprovalDraft || approvalStatus == ApprovalRejected
}

// CanApprove: pending goals can be approved; approving an approved goal is
// an idempotent no-op handled by the caller.
func CanApprove(approvalStatus string) bool {
	return approvalStatus == ApprovalPending
}

func CanReject(approvalStatus string) bool {
	return approvalStatus == ApprovalPending
}

// CountsTowardReadiness excludes drafts and closed goals from the readiness
// aggregate: they are not part of the active approval round.
func CountsTowardReadiness(approvalStatus string) bool {
	switch approvalStatus {
	case ApprovalPending, ApprovalApproved, ApprovalRejected:
		return true
	}
	return false
}

func ValidateTitle(title string) error {
	if len(strings.TrimSpace(title)) < MinTitleLength {
		return fmt.Errorf("%w: title must be at least %d characters", ErrValidation, MinTitleLength)
	}
	return nil
}

func ValidateCategory(category string) error {
	for _, c := range Categories {
		if c == category {
			return nil
		}
	}
	return fmt.Errorf("%w: unknown category %q", ErrValidation, category)
}

func ValidatePriority(priority string) error {
	for _, p := range Priorities {
		if p == priority {
			return nil
		}
	}
	return fmt.Errorf("%w: unknown priority %q", ErrValidation, priority)
}

func ValidateRejectionReason(reason string) error {
	if strings.TrimSpace(reason) == "" {
		return fmt.Errorf("%w: rejection reason is required", ErrValidation)
	}
	return nil
}

func ValidateCommentType(commentType string) error {
	for _, c := range CommentTypes {
		if c == commentType {
			return nil
		}
	}
	return fmt.Errorf("%w: unknown comment type %q", ErrValidation, commentType)
}
