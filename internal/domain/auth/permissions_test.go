package auth

import "testing"

func TestCanDeniesUnknownRoleAndAction(t *testing.T) {
	if Can("contractor", ActionAppraisalsReadOwn) {
		t.Fatal("unknown role must be denied")
	}
	if Can(RoleEmployee, "appraisals.delete") {
		t.Fatal("unknown action must be denied")
	}
	if Can("", "") {
		t.Fatal("empty role and action must be denied")
	}
}

func TestEmployeeCapabilities(t *testing.T) {
	allowed := []string{
		ActionAppraisalsReadOwn,
		ActionSelfAssessmentSubmit,
		ActionGoalsApprove,
		ActionGoalsReject,
		ActionAcknowledge,
		ActionKeyResultsUpdate,
	}
	for _, action := range allowed {
		if !Can(RoleEmployee, action) {
			t.Errorf("employee should be allowed %s", action)
		}
	}

	denied := []string{
		ActionManagerReviewSubmit,
		ActionGoalsAssign,
		ActionCyclesManage,
		ActionCyclesActivate,
		ActionAppraisalsReadTeam,
		ActionAppraisalsReadAll,
		ActionAuditRead,
	}
	for _, action := range denied {
		if Can(RoleEmployee, action) {
			t.Errorf("employee should be denied %s", action)
		}
	}
}

func TestManagerDoesNotInheritAdminActions(t *testing.T) {
	denied := []string{
		ActionCyclesManage,
		ActionCyclesActivate,
		ActionEmployeesWrite,
		ActionAppraisalsReadAll,
		ActionReportsExport,
		ActionAuditRead,
	}
	for _, action := range denied {
		if Can(RoleManager, action) {
			t.Errorf("manager should be denied %s", action)
		}
	}
	if !Can(RoleManager, ActionManagerReviewSubmit) {
		t.Fatal("manager should be allowed to submit reviews")
	}
	if !Can(RoleManager, ActionGoalsAssign) {
		t.Fatal("manager should be allowed to assign goals")
	}
}

func TestHRAdminCannotSubmitAssessments(t *testing.T) {
	// hr_admin administers the process but is not a participant in other
	// people's reviews.
	if Can(RoleHRAdmin, ActionSelfAssessmentSubmit) {
		t.Fatal("hr_admin should not submit self-assessments")
	}
	if Can(RoleHRAdmin, ActionManagerReviewSubmit) {
		t.Fatal("hr_admin should not submit manager reviews")
	}
	if !Can(RoleHRAdmin, ActionCyclesActivate) {
		t.Fatal("hr_admin should activate cycles")
	}
	if !Can(RoleHRAdmin, ActionGoalsApprove) {
		t.Fatal("hr_admin should hold the goal approval override")
	}
}

func TestIsAdmin(t *testing.T) {
	if IsAdmin(RoleEmployee) || IsAdmin(RoleManager) {
		t.Fatal("employee and manager are not admin roles")
	}
	if !IsAdmin(RoleHRAdmin) || !IsAdmin(RoleSuperAdmin) {
		t.Fatal("hr_admin and super_admin are admin roles")
	}
}
