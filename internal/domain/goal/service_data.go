package goal

import (
	"context"
	"fmt"
	"strings"
	"time"
)

type CreateGoalInput struct {
	EmployeeID  string     `json:"employeeId"`
	AppraisalID string     `json:"appraisalId"`
	CycleID     string     `json:"cycleId"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	Priority    string     `json:"priority"`
	StartDate   *time.Time `json:"startDate"`
	TargetDate  *time.Time `json:"targetDate"`
}

func (s *Service) CreateGoal(ctx context.Context, actor Actor, in CreateGoalInput) (Goal, error) {
	if in.Category == "" {
		in.Category = CategoryPerformance
	}
	if in.Priority == "" {
		in.Priority = PriorityMedium
	}
	if err := ValidateTitle(in.Title); err != nil {
		return Goal{}, err
	}
	if err := ValidateCategory(in.Category); err != nil {
		return Goal{}, err
	}
	if err := ValidatePriority(in.Priority); err != nil {
		return Goal{}, err
	}
	if in.EmployeeID == "" {
		return Goal{}, fmt.Errorf("%w: employeeId is required", ErrValidation)
	}

	id, err := s.store.CreateGoal(ctx, Goal{
		EmployeeID:     in.EmployeeID,
		AppraisalID:    in.AppraisalID,
		CycleID:        in.CycleID,
		Title:          strings.TrimSpace(in.Title),
		Description:    in.Description,
		Category:       in.Category,
		Priority:       in.Priority,
		Status:         StatusDraft,
		ApprovalStatus: ApprovalDraft,
		StartDate:      in.StartDate,
		TargetDate:     in.TargetDate,
		CreatedBy:      actor.UserID,
	})
	if err != nil {
		return Goal{}, err
	}
	return s.store.GetGoal(ctx, id)
}

func (s *Service) GetGoal(ctx context.Context, goalID string) (Goal, error) {
	return s.store.GetGoal(ctx, goalID)
}

func (s *Service) ListGoalsByAppraisal(ctx context.Context, appraisalID string) ([]Goal, error) {
	return s.store.ListGoalsByAppraisal(ctx, appraisalID)
}

func (s *Service) ListGoalsByEmployee(ctx context.Context, employeeID, cycleID string) ([]Goal, error) {
	return s.store.ListGoalsByEmployee(ctx, employeeID, cycleID)
}

type UpdateGoalInput struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	Priority    string     `json:"priority"`
	StartDate   *time.Time `json:"startDate"`
	TargetDate  *time.Time `json:"targetDate"`
}

// UpdateGoal edits a goal's content. Only draft and rejected goals are
// editable; a pending or approved goal must go through a new revision.
func (s *Service) UpdateGoal(ctx context.Context, actor Actor, goalID string, in UpdateGoalInput) (Goal, error) {
	g, err := s.store.GetGoal(ctx, goalID)
	if err != nil {
		return Goal{}, err
	}
	if !s.canManage(actor, g) {
		return Goal{}, ErrUnauthorized
	}
	if !CanSubmitForApproval(g.ApprovalStatus) {
		return Goal{}, fmt.Errorf("%w: goal is %s and cannot be edited", ErrInvalidState, g.ApprovalStatus)
	}

	if in.Title != "" {
		if err := ValidateTitle(in.Title); err != nil {
			return Goal{}, err
		}
		g.Title = strings.TrimSpace(in.Title)
	}
	if in.Description != "" {
		g.Description = in.Description
	}
	if in.Category != "" {
		if err := ValidateCategory(in.Category); err != nil {
			return Goal{}, err
		}
		g.Category = in.Category
	}
	if in.Priority != "" {
		if err := ValidatePriority(in.Priority); err != nil {
			return Goal{}, err
		}
		g.Priority = in.Priority
	}
	if in.StartDate != nil {
		g.StartDate = in.StartDate
	}
	if in.TargetDate != nil {
		g.TargetDate = in.TargetDate
	}

	if err := s.store.UpdateGoalDetails(ctx, g); err != nil {
		return Goal{}, err
	}
	return s.store.GetGoal(ctx, goalID)
}

// DeleteGoal removes a goal that never entered the approval workflow.
func (s *Service) DeleteGoal(ctx context.Context, actor Actor, goalID string) error {
	g, err := s.store.GetGoal(ctx, goalID)
	if err != nil {
		return err
	}
	if !s.canManage(actor, g) {
		return ErrUnauthorized
	}
	if g.ApprovalStatus != ApprovalDraft && !actor.isAdmin() {
		return fmt.Errorf("%w: only draft goals can be deleted", ErrInvalidState)
	}
	if err := s.store.DeleteGoal(ctx, goalID); err != nil {
		return err
	}
	return s.syncAppraisal(ctx, g.AppraisalID)
}

// SubmitForApproval moves a draft or rejected goal into the approval queue.
// Each submission records a version snapshot and bumps the version number.
func (s *Service) SubmitForApproval(ctx context.Context, actor Actor, goalID string) (Goal, error) {
	g, err := s.store.GetGoal(ctx, goalID)
	if err != nil {
		return Goal{}, err
	}
	if !s.canManage(actor, g) {
		return Goal{}, ErrUnauthorized
	}

	updated, err := s.store.SubmitForApproval(ctx, goalID, actor.UserID, actor.Role)
	if err != nil {
		return Goal{}, err
	}
	return updated, s.syncAppraisal(ctx, updated.AppraisalID)
}

// Approve accepts a pending goal. Only the employee the goal is assigned to
// (or an admin) can approve; the manager who assigned it cannot approve on
// their behalf.
func (s *Service) Approve(ctx context.Context, actor Actor, goalID string) (Goal, error) {
	g, err := s.store.GetGoal(ctx, goalID)
	if err != nil {
		return Goal{}, err
	}
	if !s.canDecide(actor, g) {
		return Goal{}, ErrUnauthorized
	}

	updated, changed, err := s.store.Approve(ctx, goalID, actor.UserID, actor.Role)
	if err != nil {
		return Goal{}, err
	}
	if !changed {
		return updated, nil
	}
	return updated, s.syncAppraisal(ctx, updated.AppraisalID)
}

// Reject sends a pending goal back with a mandatory reason.
func (s *Service) Reject(ctx context.Context, actor Actor, goalID, reason string) (Goal, error) {
	if err := ValidateRejectionReason(reason); err != nil {
		return Goal{}, err
	}
	g, err := s.store.GetGoal(ctx, goalID)
	if err != nil {
		return Goal{}, err
	}
	if !s.canDecide(actor, g) {
		return Goal{}, ErrUnauthorized
	}

	updated, err := s.store.Reject(ctx, goalID, actor.UserID, actor.Role, strings.TrimSpace(reason))
	if err != nil {
		return Goal{}, err
	}
	return updated, s.syncAppraisal(ctx, updated.AppraisalID)
}

// RequestRevision leaves structured feedback asking for changes without
// rejecting the goal outright.
func (s *Service) RequestRevision(ctx context.Context, actor Actor, goalID, note string) (Comment, error) {
	if strings.TrimSpace(note) == "" {
		return Comment{}, fmt.Errorf("%w: a revision request needs a note", ErrValidation)
	}
	if _, err := s.store.GetGoal(ctx, goalID); err != nil {
		return Comment{}, err
	}
	return s.store.AddComment(ctx, Comment{
		GoalID:   goalID,
		AuthorID: actor.UserID,
		Content:  strings.TrimSpace(note),
		Type:     CommentFeedback,
	})
}

func (s *Service) ListVersions(ctx context.Context, goalID string) ([]Version, error) {
	return s.store.ListVersions(ctx, goalID)
}

func (s *Service) ListApprovalAudit(ctx context.Context, goalID string) ([]ApprovalAudit, error) {
	return s.store.ListApprovalAudit(ctx, goalID)
}

type KeyResultInput struct {
	Title       string     `json:"title"`
	TargetValue float64    `json:"targetValue"`
	Unit        string     `json:"unit"`
	DueDate     *time.Time `json:"dueDate"`
}

func (s *Service) AddKeyResult(ctx context.Context, actor Actor, goalID string, in KeyResultInput) (KeyResult, error) {
	if err := ValidateTitle(in.Title); err != nil {
		return KeyResult{}, err
	}
	if in.TargetValue <= 0 {
		return KeyResult{}, fmt.Errorf("%w: targetValue must be positive", ErrValidation)
	}
	g, err := s.store.GetGoal(ctx, goalID)
	if err != nil {
		return KeyResult{}, err
	}
	if !s.canManage(actor, g) {
		return KeyResult{}, ErrUnauthorized
	}
	return s.store.AddKeyResult(ctx, KeyResult{
		GoalID:      goalID,
		Title:       strings.TrimSpace(in.Title),
		TargetValue: in.TargetValue,
		Unit:        in.Unit,
		DueDate:     in.DueDate,
	})
}

// UpdateKeyResultProgress records a new measurement and returns the goal
// with its recomputed progress.
func (s *Service) UpdateKeyResultProgress(ctx context.Context, actor Actor, goalID, keyResultID string, current float64) (Goal, error) {
	if current < 0 {
		return Goal{}, fmt.Errorf("%w: currentValue cannot be negative", ErrValidation)
	}
	g, err := s.store.GetGoal(ctx, goalID)
	if err != nil {
		return Goal{}, err
	}
	if !s.canManage(actor, g) {
		return Goal{}, ErrUnauthorized
	}
	return s.store.UpdateKeyResultValue(ctx, goalID, keyResultID, current)
}

func (s *Service) ListKeyResults(ctx context.Context, goalID string) ([]KeyResult, error) {
	return s.store.ListKeyResults(ctx, goalID)
}

func (s *Service) AddComment(ctx context.Context, actor Actor, goalID, content, commentType string) (Comment, error) {
	if commentType == "" {
		commentType = CommentUpdate
	}
	if err := ValidateCommentType(commentType); err != nil {
		return Comment{}, err
	}
	if strings.TrimSpace(content) == "" {
		return Comment{}, fmt.Errorf("%w: comment content is required", ErrValidation)
	}
	if _, err := s.store.GetGoal(ctx, goalID); err != nil {
		return Comment{}, err
	}
	return s.store.AddComment(ctx, Comment{
		GoalID:   goalID,
		AuthorID: actor.UserID,
		Content:  strings.TrimSpace(content),
		Type:     commentType,
	})
}

func (s *Service) ListComments(ctx context.Context, goalID string) ([]Comment, error) {
	return s.store.ListComments(ctx, goalID)
}

// canManage covers content edits: the goal's owner, its creator, or an
// admin.
func (s *Service) canManage(actor Actor, g Goal) bool {
	if actor.isAdmin() {
		return true
	}
	if actor.EmployeeID != "" && actor.EmployeeID == g.EmployeeID {
		return true
	}
	return actor.UserID != "" && actor.UserID == g.CreatedBy
}

// canDecide covers approval decisions: only the assigned employee or an
// admin. The assigning manager does not get to approve their own proposal.
func (s *Service) canDecide(actor Actor, g Goal) bool {
	if actor.isAdmin() {
		return true
	}
	return actor.EmployeeID != "" && actor.EmployeeID == g.EmployeeID
}
