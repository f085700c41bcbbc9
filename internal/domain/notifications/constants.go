package notifications

const (
	TypeCycleActivated          = "cycle_activated"
	TypeGoalAssigned            = "goal_assigned"
	TypeGoalSubmitted           = "goal_submitted"
	TypeGoalApproved            = "goal_approved"
	TypeGoalRejected            = "goal_rejected"
	TypeSelfAssessmentSubmitted = "self_assessment_submitted"
	TypeReviewSubmitted         = "review_submitted"
	TypeMeetingScheduled        = "meeting_scheduled"
	TypeAppraisalCompleted      = "appraisal_completed"
	TypeDeadlineReminder        = "deadline_reminder"
)
