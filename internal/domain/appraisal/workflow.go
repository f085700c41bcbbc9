package appraisal

import "fmt"

// transitions is the authoritative edge list for appraisal statuses. The
// backward edge from goals_pending_approval covers goal removal, the one
// from goals_approved covers a revised goal re-entering approval.
var transitions = map[string][]string{
	StatusNotStarted:               {StatusGoalsPendingApproval},
	StatusGoalsPendingApproval:     {StatusGoalsApproved, StatusNotStarted},
	StatusGoalsApproved:            {StatusSelfAssessmentInProgress, StatusGoalsPendingApproval},
	StatusSelfAssessmentInProgress: {StatusManagerReview},
	StatusManagerReview:            {StatusCompleted, StatusMeetingScheduled},
	StatusMeetingScheduled:         {StatusMeetingCompleted},
	StatusMeetingCompleted:         {StatusAcknowledged},
	StatusCompleted:                {},
	StatusAcknowledged:             {},
}

// NormalizeStatus maps legacy client vocabulary onto the canonical enum.
// Unrecognized values pass through untouched so they stay display-only.
func NormalizeStatus(status string) string {
	if status == legacyStatusSelfAssessment {
		return StatusSelfAssessmentInProgress
	}
	return status
}

func KnownStatus(status string) bool {
	_, ok := transitions[NormalizeStatus(status)]
	return ok
}

// CanTransition reports whether from → to is a legal edge. Unknown statuses
// never permit a transition in either direction.
func CanTransition(from, to string) bool {
	allowed, ok := transitions[NormalizeStatus(from)]
	if !ok {
		return false
	}
	to = NormalizeStatus(to)
	if _, ok := transitions[to]; !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

func IsTerminal(status string) bool {
	allowed, ok := transitions[NormalizeStatus(status)]
	return ok && len(allowed) == 0
}

// ReviewOutcome is the status a manager review submission moves to, which
// depends on the cycle's review track.
func ReviewOutcome(track string) string {
	if track == ReviewTrackMeeting {
		return StatusMeetingScheduled
	}
	return StatusCompleted
}

// StatusForReadiness derives the goal-approval leg status from the readiness
// counts. It returns empty when the current status is past that leg and must
// not move.
func StatusForReadiness(current string, total, pending int) string {
	current = NormalizeStatus(current)
	switch current {
	case StatusNotStarted, StatusGoalsPendingApproval, StatusGoalsApproved:
	default:
		return ""
	}
	switch {
	case total == 0:
		return StatusNotStarted
	case pending > 0:
		return StatusGoalsPendingApproval
	default:
		return StatusGoalsApproved
	}
}

func transitionError(from, to string) error {
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
}
