package appraisal

const (
	CycleStatusDraft     = "draft"
	CycleStatusActive    = "active"
	CycleStatusCompleted = "completed"

	CycleTypeAnnual    = "annual"
	CycleTypeMidYear   = "mid_year"
	CycleTypeProbation = "probation"

	// ReviewTrackStandard closes an appraisal directly after the manager
	// review; ReviewTrackMeeting routes it through a review meeting and an
	// explicit employee acknowledgement.
	ReviewTrackStandard = "standard"
	ReviewTrackMeeting  = "meeting"

	StatusNotStarted               = "not_started"
	StatusGoalsPendingApproval     = "goals_pending_approval"
	StatusGoalsApproved            = "goals_approved"
	StatusSelfAssessmentInProgress = "self_assessment_in_progress"
	StatusManagerReview            = "manager_review"
	StatusCompleted                = "completed"
	StatusMeetingScheduled         = "meeting_scheduled"
	StatusMeetingCompleted         = "meeting_completed"
	StatusAcknowledged             = "acknowledged"

	// Accepted on input for backward compatibility with older clients.
	legacyStatusSelfAssessment = "self_assessment"

	NewJoinerAutoInclude = "auto_include_if_eligible"
	NewJoinerManualHR    = "manual_hr_decision"
	NewJoinerAlwaysDefer = "always_defer"

	MinSubmissionLength = 10
	RatingMin           = 1
	RatingMax           = 5
)

var CycleTypes = []string{CycleTypeAnnual, CycleTypeMidYear, CycleTypeProbation}

var NewJoinerPolicies = []string{NewJoinerAutoInclude, NewJoinerManualHR, NewJoinerAlwaysDefer}
