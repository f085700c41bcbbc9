package goal

import "time"

type Goal struct {
	ID             string     `json:"id"`
	EmployeeID     string     `json:"employeeId"`
	AppraisalID    string     `json:"appraisalId,omitempty"`
	CycleID        string     `json:"cycleId,omitempty"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Category       string     `json:"category"`
	Priority       string     `json:"priority"`
	Status         string     `json:"status"`
	ApprovalStatus string     `json:"approvalStatus"`
	Progress       float64    `json:"progress"`
	StartDate      *time.Time `json:"startDate,omitempty"`
	TargetDate     *time.Time `json:"targetDate,omitempty"`
	CompletedDate  *time.Time `json:"completedDate,omitempty"`
	VersionNumber  int        `json:"versionNumber"`
	CreatedBy      string     `json:"createdBy"`
	ApprovedBy     string     `json:"approvedBy,omitempty"`
	ApprovedAt     *time.Time `json:"approvedAt,omitempty"`
	RejectedReason string     `json:"rejectedReason,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// Version is the snapshot taken every time a goal is submitted for
// approval; together they form the goal's revision history.
type Version struct {
	ID             string     `json:"id"`
	GoalID         string     `json:"goalId"`
	VersionNumber  int        `json:"versionNumber"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Category       string     `json:"category"`
	Priority       string     `json:"priority"`
	StartDate      *time.Time `json:"startDate,omitempty"`
	TargetDate     *time.Time `json:"targetDate,omitempty"`
	ApprovalStatus string     `json:"approvalStatus"`
	RejectedReason string     `json:"rejectedReason,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
}

type ApprovalAudit struct {
	ID            string    `json:"id"`
	GoalID        string    `json:"goalId"`
	OldStatus     string    `json:"oldStatus"`
	NewStatus     string    `json:"newStatus"`
	ChangedBy     string    `json:"changedBy"`
	ChangedByRole string    `json:"changedByRole"`
	Comments      string    `json:"comments,omitempty"`
	VersionNumber int       `json:"versionNumber"`
	CreatedAt     time.Time `json:"createdAt"`
}

type KeyResult struct {
	ID           string     `json:"id"`
	GoalID       string     `json:"goalId"`
	Title        string     `json:"title"`
	TargetValue  float64    `json:"targetValue"`
	CurrentValue float64    `json:"currentValue"`
	Unit         string     `json:"unit"`
	Status       string     `json:"status"`
	DueDate      *time.Time `json:"dueDate,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

type Comment struct {
	ID        string    `json:"id"`
	GoalID    string    `json:"goalId"`
	AuthorID  string    `json:"authorId"`
	Content   string    `json:"content"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"createdAt"`
}
