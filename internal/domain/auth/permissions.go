package auth

// Actions are gated by explicit per-action allow-lists. Roles are flat:
// nothing is inherited, a role can do exactly what its lists say. Ownership
// checks (own appraisal, direct report) are layered on top in the domain
// services.
const (
	ActionEmployeesRead        = "employees.read"
	ActionEmployeesWrite       = "employees.write"
	ActionCyclesRead           = "cycles.read"
	ActionCyclesManage         = "cycles.manage"
	ActionCyclesActivate       = "cycles.activate"
	ActionAppraisalsReadOwn    = "appraisals.read_own"
	ActionAppraisalsReadTeam   = "appraisals.read_team"
	ActionAppraisalsReadAll    = "appraisals.read_all"
	ActionSelfAssessmentSubmit = "appraisals.submit_self_assessment"
	ActionManagerReviewSubmit  = "appraisals.submit_manager_review"
	ActionMeetingSchedule      = "appraisals.schedule_meeting"
	ActionMeetingComplete      = "appraisals.complete_meeting"
	ActionAcknowledge          = "appraisals.acknowledge"
	ActionGoalsAssign          = "goals.assign"
	ActionGoalsEdit            = "goals.edit"
	ActionGoalsSubmit          = "goals.submit_for_approval"
	ActionGoalsApprove         = "goals.approve"
	ActionGoalsReject          = "goals.reject"
	ActionGoalRevisionRequest  = "goals.request_revision"
	ActionKeyResultsUpdate     = "key_results.update"
	ActionGoalCommentsWrite    = "goal_comments.write"
	ActionNotificationsRead    = "notifications.read"
	ActionReportsRead          = "reports.read"
	ActionReportsExport        = "reports.export"
	ActionAuditRead            = "audit.read"
)

var roleActions = map[string]map[string]bool{
	RoleEmployee: allow(
		ActionAppraisalsReadOwn,
		ActionSelfAssessmentSubmit,
		ActionAcknowledge,
		ActionGoalsApprove,
		ActionGoalsReject,
		ActionKeyResultsUpdate,
		ActionGoalCommentsWrite,
		ActionNotificationsRead,
	),
	RoleManager: allow(
		ActionEmployeesRead,
		ActionCyclesRead,
		ActionAppraisalsReadOwn,
		ActionAppraisalsReadTeam,
		ActionSelfAssessmentSubmit,
		ActionManagerReviewSubmit,
		ActionMeetingSchedule,
		ActionMeetingComplete,
		ActionAcknowledge,
		ActionGoalsAssign,
		ActionGoalsEdit,
		ActionGoalsSubmit,
		ActionGoalsApprove,
		ActionGoalsReject,
		ActionGoalRevisionRequest,
		ActionKeyResultsUpdate,
		ActionGoalCommentsWrite,
		ActionNotificationsRead,
		ActionReportsRead,
	),
	RoleHRAdmin: allow(
		ActionEmployeesRead,
		ActionEmployeesWrite,
		ActionCyclesRead,
		ActionCyclesManage,
		ActionCyclesActivate,
		ActionAppraisalsReadOwn,
		ActionAppraisalsReadTeam,
		ActionAppraisalsReadAll,
		ActionMeetingSchedule,
		ActionMeetingComplete,
		ActionGoalsAssign,
		ActionGoalsEdit,
		ActionGoalsSubmit,
		ActionGoalsApprove,
		ActionGoalsReject,
		ActionGoalRevisionRequest,
		ActionGoalCommentsWrite,
		ActionNotificationsRead,
		ActionReportsRead,
		ActionReportsExport,
		ActionAuditRead,
	),
	RoleSuperAdmin: allow(
		ActionEmployeesRead,
		ActionEmployeesWrite,
		ActionCyclesRead,
		ActionCyclesManage,
		ActionCyclesActivate,
		ActionAppraisalsReadOwn,
		ActionAppraisalsReadTeam,
		ActionAppraisalsReadAll,
		ActionSelfAssessmentSubmit,
		ActionManagerReviewSubmit,
		ActionMeetingSchedule,
		ActionMeetingComplete,
		ActionAcknowledge,
		ActionGoalsAssign,
		ActionGoalsEdit,
		ActionGoalsSubmit,
		ActionGoalsApprove,
		ActionGoalsReject,
		ActionGoalRevisionRequest,
		ActionKeyResultsUpdate,
		ActionGoalCommentsWrite,
		ActionNotificationsRead,
		ActionReportsRead,
		ActionReportsExport,
		ActionAuditRead,
	),
}

func allow(actions ...string) map[string]bool {
	set := make(map[string]bool, len(actions))
	for _, a := range actions {
		set[a] = true
	}
	return set
}

// Can reports whether the role may perform the action. Unknown roles and
// unknown actions are both denied.
func Can(role, action string) bool {
	actions, ok := roleActions[role]
	if !ok {
		return false
	}
	return actions[action]
}

// IsAdmin reports whether the role can override ownership checks.
func IsAdmin(role string) bool {
	return role == RoleHRAdmin || role == RoleSuperAdmin
}
