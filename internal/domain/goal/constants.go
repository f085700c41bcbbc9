package goal

const (
	CategoryPerformance    = "performance"
	CategoryDevelopment    = "development"
	CategoryProject        = "project"
	CategoryMissionAligned = "mission_aligned"

	PriorityLow      = "low"
	PriorityMedium   = "medium"
	PriorityHigh     = "high"
	PriorityCritical = "critical"

	StatusDraft      = "draft"
	StatusActive     = "active"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
	StatusDeferred   = "deferred"

	ApprovalDraft    = "draft"
	ApprovalPending  = "pending_approval"
	ApprovalApproved = "approved"
	ApprovalRejected = "rejected"
	ApprovalClosed   = "closed"

	KeyResultStatusActive    = "active"
	KeyResultStatusCompleted = "completed"

	CommentUpdate      = "update"
	CommentFeedback    = "feedback"
	CommentBlocker     = "blocker"
	CommentAchievement = "achievement"

	MinTitleLength = 3
)

var Categories = []string{CategoryPerformance, CategoryDevelopment, CategoryProject, CategoryMissionAligned}

var Priorities = []string{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical}

var CommentTypes = []string{CommentUpdate, CommentFeedback, CommentBlocker, CommentAchievement}
