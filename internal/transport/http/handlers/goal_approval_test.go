package handlers_test

import (
	"net/http"
	"testing"
)

func TestGoalRejectionRequiresReason(t *testing.T) {
	w := setupWorld(t, "standard")
	submitGoal(t, w.ts, w.managerToken, w.goal1.ID)

	status, env := doJSON(t, w.ts, http.MethodPost, "/api/v1/goals/"+w.goal1.ID+"/reject", w.employeeToken, map[string]any{
		"reason": "   ",
	}, nil)
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400 rejecting without a reason, got %d", status)
	}
	if env.Error == nil || env.Error.Code != "validation_error" {
		t.Fatalf("expected validation_error, got %+v", env.Error)
	}

	status, env = doJSON(t, w.ts, http.MethodPost, "/api/v1/goals/"+w.goal1.ID+"/reject", w.employeeToken, map[string]any{
		"reason": "Target date is unrealistic for Q4.",
	}, nil)
	if status != http.StatusOK {
		t.Fatalf("reject with reason failed with %d: %+v", status, env.Error)
	}
	var rejected goalRow
	decodeData(t, env, &rejected)
	if rejected.ApprovalStatus != "rejected" {
		t.Fatalf("expected rejected, got %s", rejected.ApprovalStatus)
	}
	if rejected.RejectedReason != "Target date is unrealistic for Q4." {
		t.Fatalf("expected rejection reason stored, got %q", rejected.RejectedReason)
	}

	// A rejected goal goes back through submission with a fresh version.
	resubmitted := submitGoal(t, w.ts, w.managerToken, w.goal1.ID)
	if resubmitted.ApprovalStatus != "pending_approval" {
		t.Fatalf("expected pending_approval after resubmit, got %s", resubmitted.ApprovalStatus)
	}
	if resubmitted.VersionNumber != rejected.VersionNumber+1 {
		t.Fatalf("expected version %d after resubmit, got %d", rejected.VersionNumber+1, resubmitted.VersionNumber)
	}
	if resubmitted.RejectedReason != "" {
		t.Fatalf("expected rejection reason cleared on resubmit, got %q", resubmitted.RejectedReason)
	}
}

func TestGoalApproveIsIdempotent(t *testing.T) {
	w := setupWorld(t, "standard")
	submitGoal(t, w.ts, w.managerToken, w.goal1.ID)

	first := approveGoal(t, w.ts, w.employeeToken, w.goal1.ID)
	second := approveGoal(t, w.ts, w.employeeToken, w.goal1.ID)
	if second.ApprovalStatus != "approved" {
		t.Fatalf("expected approved on repeat approval, got %s", second.ApprovalStatus)
	}
	if second.VersionNumber != first.VersionNumber {
		t.Fatalf("expected version unchanged on repeat approval, got %d then %d", first.VersionNumber, second.VersionNumber)
	}
}

func TestManagerCannotDecideOwnProposal(t *testing.T) {
	w := setupWorld(t, "standard")
	submitGoal(t, w.ts, w.managerToken, w.goal1.ID)

	status, env := doJSON(t, w.ts, http.MethodPost, "/api/v1/goals/"+w.goal1.ID+"/approve", w.managerToken, nil, nil)
	if status != http.StatusForbidden {
		t.Fatalf("expected 403 for manager approving own proposal, got %d", status)
	}
	if env.Error == nil || env.Error.Code != "forbidden" {
		t.Fatalf("expected forbidden, got %+v", env.Error)
	}

	status, env = doJSON(t, w.ts, http.MethodPost, "/api/v1/goals/"+w.goal1.ID+"/reject", w.managerToken, map[string]any{
		"reason": "Changed my mind about this one.",
	}, nil)
	if status != http.StatusForbidden {
		t.Fatalf("expected 403 for manager rejecting own proposal, got %d", status)
	}

	// HR can still decide on the employee's behalf.
	approved := approveGoal(t, w.ts, w.adminToken, w.goal1.ID)
	if approved.ApprovalStatus != "approved" {
		t.Fatalf("expected admin approval to land, got %s", approved.ApprovalStatus)
	}
}

func TestManagerReviewRatingBounds(t *testing.T) {
	w := setupWorld(t, "standard")

	for _, rating := range []int{0, 6} {
		status, env := doJSON(t, w.ts, http.MethodPost, "/api/v1/appraisals/"+w.appraisalID+"/review", w.managerToken, map[string]any{
			"rating":   rating,
			"comments": "Plenty of words but an impossible rating.",
		}, nil)
		if status != http.StatusBadRequest {
			t.Fatalf("expected 400 for rating %d, got %d", rating, status)
		}
		if env.Error == nil || env.Error.Code != "validation_error" {
			t.Fatalf("expected validation_error for rating %d, got %+v", rating, env.Error)
		}
	}
}

func TestEmployeeCannotProposeGoals(t *testing.T) {
	w := setupWorld(t, "standard")

	status, env := doJSON(t, w.ts, http.MethodPost, "/api/v1/goals", w.employeeToken, map[string]any{
		"employeeId":  w.employee.ID,
		"appraisalId": w.appraisalID,
		"title":       "Pick my own goal",
	}, nil)
	if status != http.StatusForbidden {
		t.Fatalf("expected 403 for employee creating a goal, got %d", status)
	}
	if env.Error == nil || env.Error.Code != "forbidden" {
		t.Fatalf("expected forbidden, got %+v", env.Error)
	}
}

func TestEmployeeCannotSeeOtherAppraisal(t *testing.T) {
	w := setupWorld(t, "standard")
	other := createEmployee(t, w.ts, w.adminToken, "employee", w.manager.ID)
	otherToken := login(t, w.ts, other.Email, testPassword)

	status, env := doJSON(t, w.ts, http.MethodGet, "/api/v1/appraisals/"+w.appraisalID, otherToken, nil, nil)
	if status != http.StatusForbidden {
		t.Fatalf("expected 403 reading a colleague's appraisal, got %d", status)
	}
	if env.Error == nil || env.Error.Code != "forbidden" {
		t.Fatalf("expected forbidden, got %+v", env.Error)
	}
}

func TestUnknownAppraisalReturnsNotFound(t *testing.T) {
	w := setupWorld(t, "standard")

	status, env := doJSON(t, w.ts, http.MethodGet, "/api/v1/appraisals/00000000-0000-0000-0000-000000000000", w.adminToken, nil, nil)
	if status != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown appraisal, got %d", status)
	}
	if env.Error == nil || env.Error.Code != "not_found" {
		t.Fatalf("expected not_found, got %+v", env.Error)
	}
}
