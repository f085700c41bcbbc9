package appraisal

import (
	"encoding/json"
	"time"
)

type Cycle struct {
	ID                     string     `json:"id"`
	Name                   string     `json:"name"`
	Description            string     `json:"description"`
	Type                   string     `json:"type"`
	Status                 string     `json:"status"`
	ReviewTrack            string     `json:"reviewTrack"`
	StartDate              time.Time  `json:"startDate"`
	EndDate                time.Time  `json:"endDate"`
	SelfAssessmentDeadline *time.Time `json:"selfAssessmentDeadline,omitempty"`
	ManagerReviewDeadline  *time.Time `json:"managerReviewDeadline,omitempty"`
	MinimumServiceMonths   int        `json:"minimumServiceMonths"`
	EligibilityCutoffDate  *time.Time `json:"eligibilityCutoffDate,omitempty"`
	IncludeProbation       bool       `json:"includeProbation"`
	ProratedAllowed        bool       `json:"proratedAllowed"`
	NewJoinerPolicy        string     `json:"newJoinerPolicy"`
	CreatedBy              string     `json:"createdBy"`
	CreatedAt              time.Time  `json:"createdAt"`
}

type Appraisal struct {
	ID                  string          `json:"id"`
	CycleID             string          `json:"cycleId"`
	EmployeeID          string          `json:"employeeId"`
	ManagerID           string          `json:"managerId,omitempty"`
	Status              string          `json:"status"`
	SelfAssessment      json.RawMessage `json:"selfAssessment,omitempty"`
	ManagerAssessment   json.RawMessage `json:"managerAssessment,omitempty"`
	GoalRatings         json.RawMessage `json:"goalRatings,omitempty"`
	OverallRating       *int            `json:"overallRating,omitempty"`
	SelfSubmitted       bool            `json:"selfSubmitted"`
	SelfSubmittedAt     *time.Time      `json:"selfSubmittedAt,omitempty"`
	ManagerSubmitted    bool            `json:"managerSubmitted"`
	ManagerSubmittedAt  *time.Time      `json:"managerSubmittedAt,omitempty"`
	MeetingDate         *time.Time      `json:"meetingDate,omitempty"`
	Acknowledged        bool            `json:"acknowledged"`
	AcknowledgedAt      *time.Time      `json:"acknowledgedAt,omitempty"`
	AcknowledgeComments string          `json:"acknowledgeComments,omitempty"`
	CreatedAt           time.Time       `json:"createdAt"`
	UpdatedAt           time.Time       `json:"updatedAt"`
}

// AppraisalView is what the read operations return: the row plus the
// readiness aggregate computed in the same request.
type AppraisalView struct {
	Appraisal
	GoalReadiness Readiness `json:"goalReadiness"`
}

// Readiness summarizes the approval state of an appraisal's goals. Ready
// requires at least one goal and none still pending; rejected goals do not
// block, a revision re-enters as pending.
type Readiness struct {
	Total    int  `json:"total"`
	Approved int  `json:"approved"`
	Pending  int  `json:"pending"`
	Rejected int  `json:"rejected"`
	Ready    bool `json:"ready"`
}

func NewReadiness(total, approved, pending, rejected int) Readiness {
	return Readiness{
		Total:    total,
		Approved: approved,
		Pending:  pending,
		Rejected: rejected,
		Ready:    pending == 0 && total > 0,
	}
}

// ActivationCriteria narrows which employees an activation considers.
// Empty or "all" fields match everyone.
type ActivationCriteria struct {
	Department     string `json:"department"`
	EmploymentType string `json:"employmentType"`
}

type ActivationResult struct {
	Created  int                `json:"created"`
	Skipped  int                `json:"skipped"`
	Deferred []DeferredEmployee `json:"deferred,omitempty"`
}

type DeferredEmployee struct {
	EmployeeID string `json:"employeeId"`
	Status     string `json:"status"`
	Reason     string `json:"reason"`
}
