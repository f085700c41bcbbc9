package goal

import "context"

type StoreAPI interface {
	CreateGoal(ctx context.Context, g Goal) (string, error)
	GetGoal(ctx context.Context, goalID string) (Goal, error)
	UpdateGoalDetails(ctx context.Context, g Goal) error
	DeleteGoal(ctx context.Context, goalID string) error
	ListGoalsByAppraisal(ctx context.Context, appraisalID string) ([]Goal, error)
	ListGoalsByEmployee(ctx context.Context, employeeID, cycleID string) ([]Goal, error)

	SubmitForApproval(ctx context.Context, goalID, actorID, actorRole string) (Goal, error)
	Approve(ctx context.Context, goalID, actorID, actorRole string) (Goal, bool, error)
	Reject(ctx context.Context, goalID, actorID, actorRole, reason string) (Goal, error)
	ListVersions(ctx context.Context, goalID string) ([]Version, error)
	ListApprovalAudit(ctx context.Context, goalID string) ([]ApprovalAudit, error)

	AddKeyResult(ctx context.Context, kr KeyResult) (KeyResult, error)
	UpdateKeyResultValue(ctx context.Context, goalID, keyResultID string, current float64) (Goal, error)
	ListKeyResults(ctx context.Context, goalID string) ([]KeyResult, error)

	AddComment(ctx context.Context, c Comment) (Comment, error)
	ListComments(ctx context.Context, goalID string) ([]Comment, error)
}
