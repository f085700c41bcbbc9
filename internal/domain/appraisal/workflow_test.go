package appraisal

import "testing"

func TestCanTransitionHappyPath(t *testing.T) {
	path := []string{
		StatusNotStarted,
		StatusGoalsPendingApproval,
		StatusGoalsApproved,
		StatusSelfAssessmentInProgress,
		StatusManagerReview,
		StatusCompleted,
	}
	for i := 0; i < len(path)-1; i++ {
		if !CanTransition(path[i], path[i+1]) {
			t.Errorf("expected %s -> %s to be allowed", path[i], path[i+1])
		}
	}
}

func TestCanTransitionMeetingTrack(t *testing.T) {
	path := []string{
		StatusManagerReview,
		StatusMeetingScheduled,
		StatusMeetingCompleted,
		StatusAcknowledged,
	}
	for i := 0; i < len(path)-1; i++ {
		if !CanTransition(path[i], path[i+1]) {
			t.Errorf("expected %s -> %s to be allowed", path[i], path[i+1])
		}
	}
}

func TestCanTransitionBackwardEdges(t *testing.T) {
	if !CanTransition(StatusGoalsPendingApproval, StatusNotStarted) {
		t.Error("goals_pending_approval should step back when all goals are removed")
	}
	if !CanTransition(StatusGoalsApproved, StatusGoalsPendingApproval) {
		t.Error("goals_approved should step back when a revision re-enters approval")
	}
	if CanTransition(StatusManagerReview, StatusSelfAssessmentInProgress) {
		t.Error("review statuses must not move backward")
	}
}

func TestCanTransitionRejectsSkips(t *testing.T) {
	cases := [][2]string{
		{StatusNotStarted, StatusGoalsApproved},
		{StatusNotStarted, StatusCompleted},
		{StatusGoalsPendingApproval, StatusSelfAssessmentInProgress},
		{StatusGoalsApproved, StatusManagerReview},
		{StatusSelfAssessmentInProgress, StatusCompleted},
	}
	for _, c := range cases {
		if CanTransition(c[0], c[1]) {
			t.Errorf("expected %s -> %s to be rejected", c[0], c[1])
		}
	}
}

func TestTerminalStatusesHaveNoExits(t *testing.T) {
	for _, terminal := range []string{StatusCompleted, StatusAcknowledged} {
		if !IsTerminal(terminal) {
			t.Errorf("%s should be terminal", terminal)
		}
		for status := range transitions {
			if CanTransition(terminal, status) {
				t.Errorf("terminal %s must not transition to %s", terminal, status)
			}
		}
	}
}

func TestUnknownStatusIsDisplayOnly(t *testing.T) {
	if KnownStatus("on_hold") {
		t.Fatal("on_hold is not part of the enum")
	}
	for status := range transitions {
		if CanTransition("on_hold", status) {
			t.Errorf("unknown status must not transition to %s", status)
		}
		if CanTransition(status, "on_hold") {
			t.Errorf("%s must not transition to an unknown status", status)
		}
	}
}

func TestNormalizeStatusLegacyAlias(t *testing.T) {
	if NormalizeStatus("self_assessment") != StatusSelfAssessmentInProgress {
		t.Fatal("self_assessment should normalize to self_assessment_in_progress")
	}
	if NormalizeStatus("mystery") != "mystery" {
		t.Fatal("unrecognized statuses must pass through unchanged")
	}
	if !CanTransition("self_assessment", StatusManagerReview) {
		t.Fatal("legacy alias should transition like its canonical status")
	}
}

func TestReviewOutcomePerTrack(t *testing.T) {
	if ReviewOutcome(ReviewTrackStandard) != StatusCompleted {
		t.Fatal("standard track should complete after manager review")
	}
	if ReviewOutcome(ReviewTrackMeeting) != StatusMeetingScheduled {
		t.Fatal("meeting track should schedule a meeting after manager review")
	}
	if ReviewOutcome("") != StatusCompleted {
		t.Fatal("missing track should default to the standard outcome")
	}
}

func TestStatusForReadiness(t *testing.T) {
	cases := []struct {
		current string
		total   int
		pending int
		want    string
	}{
		{StatusNotStarted, 0, 0, StatusNotStarted},
		{StatusNotStarted, 2, 2, StatusGoalsPendingApproval},
		{StatusGoalsPendingApproval, 2, 1, StatusGoalsPendingApproval},
		{StatusGoalsPendingApproval, 2, 0, StatusGoalsApproved},
		{StatusGoalsApproved, 3, 1, StatusGoalsPendingApproval},
		{StatusGoalsApproved, 0, 0, StatusNotStarted},
		// Past the goal leg the readiness sync must not touch status.
		{StatusSelfAssessmentInProgress, 2, 1, ""},
		{StatusManagerReview, 2, 0, ""},
		{StatusCompleted, 2, 0, ""},
	}
	for _, c := range cases {
		if got := StatusForReadiness(c.current, c.total, c.pending); got != c.want {
			t.Errorf("StatusForReadiness(%s, %d, %d) = %q, want %q", c.current, c.total, c.pending, got, c.want)
		}
	}
}
