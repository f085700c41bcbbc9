package appraisal

import (
	"context"
	"encoding/json"
	"time"
)

type StoreAPI interface {
	EmployeeIDByUserID(ctx context.Context, userID string) (string, error)
	EmployeeProfile(ctx context.Context, employeeID string) (EmployeeProfile, error)
	IsManagerOfEmployee(ctx context.Context, employeeID, managerID string) (bool, error)
	ListActiveEmployees(ctx context.Context) ([]EmployeeProfile, error)

	CreateCycle(ctx context.Context, c Cycle) (string, error)
	UpdateCycle(ctx context.Context, c Cycle) error
	GetCycle(ctx context.Context, cycleID string) (Cycle, error)
	ListCycles(ctx context.Context) ([]Cycle, error)
	ActiveCycle(ctx context.Context) (Cycle, error)
	SetCycleStatus(ctx context.Context, cycleID, from, to string) error
	CompleteExpiredCycles(ctx context.Context, asOf time.Time) (int, error)

	CreateAppraisalIfAbsent(ctx context.Context, cycleID, employeeID, managerID string) (string, bool, error)
	GetAppraisal(ctx context.Context, appraisalID string) (Appraisal, error)
	AppraisalForEmployee(ctx context.Context, cycleID, employeeID string) (Appraisal, error)
	ListAppraisals(ctx context.Context, cycleID, employeeID, managerID string) ([]Appraisal, error)
	Readiness(ctx context.Context, appraisalID string) (Readiness, error)

	TransitionStatus(ctx context.Context, appraisalID, from, to string) error
	SyncStatusWithReadiness(ctx context.Context, appraisalID string) (string, Readiness, error)
	SubmitSelfAssessment(ctx context.Context, appraisalID string, content json.RawMessage) (string, error)
	SubmitManagerReview(ctx context.Context, appraisalID string, assessment, goalRatings json.RawMessage, rating int, toStatus string) error
	SetMeetingDate(ctx context.Context, appraisalID string, when time.Time) error
	CompleteMeeting(ctx context.Context, appraisalID string) error
	Acknowledge(ctx context.Context, appraisalID, comments string) (string, error)

	ListPendingDeadlines(ctx context.Context, within time.Duration) ([]DeadlineReminder, error)
}

// DeadlineReminder is one upcoming deadline the reminder job notifies about.
type DeadlineReminder struct {
	AppraisalID string
	CycleName   string
	EmployeeID  string
	ManagerID   string
	Status      string
	Kind        string
	Due         time.Time
}
