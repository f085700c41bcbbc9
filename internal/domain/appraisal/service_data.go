package appraisal

import (
	"context"
	"encoding/json"
	"time"
)

func (s *Service) EmployeeIDByUserID(ctx context.Context, userID string) (string, error) {
	return s.store.EmployeeIDByUserID(ctx, userID)
}

func (s *Service) EmployeeProfile(ctx context.Context, employeeID string) (EmployeeProfile, error) {
	return s.store.EmployeeProfile(ctx, employeeID)
}

func (s *Service) IsManagerOfEmployee(ctx context.Context, employeeID, managerID string) (bool, error) {
	return s.store.IsManagerOfEmployee(ctx, employeeID, managerID)
}

// GetAppraisal syncs the goal-approval leg with current readiness before
// returning, so reads never show a stale status relative to the embedded
// counts.
func (s *Service) GetAppraisal(ctx context.Context, appraisalID string) (AppraisalView, error) {
	if _, _, err := s.store.SyncStatusWithReadiness(ctx, appraisalID); err != nil {
		return AppraisalView{}, err
	}
	a, err := s.store.GetAppraisal(ctx, appraisalID)
	if err != nil {
		return AppraisalView{}, err
	}
	readiness, err := s.store.Readiness(ctx, appraisalID)
	if err != nil {
		return AppraisalView{}, err
	}
	a.Status = NormalizeStatus(a.Status)
	return AppraisalView{Appraisal: a, GoalReadiness: readiness}, nil
}

func (s *Service) AppraisalForEmployee(ctx context.Context, cycleID, employeeID string) (AppraisalView, error) {
	a, err := s.store.AppraisalForEmployee(ctx, cycleID, employeeID)
	if err != nil {
		return AppraisalView{}, err
	}
	return s.GetAppraisal(ctx, a.ID)
}

func (s *Service) ListAppraisals(ctx context.Context, cycleID, employeeID, managerID string) ([]Appraisal, error) {
	list, err := s.store.ListAppraisals(ctx, cycleID, employeeID, managerID)
	if err != nil {
		return nil, err
	}
	for i := range list {
		list[i].Status = NormalizeStatus(list[i].Status)
	}
	return list, nil
}

func (s *Service) Readiness(ctx context.Context, appraisalID string) (Readiness, error) {
	return s.store.Readiness(ctx, appraisalID)
}

// SyncGoalStatus is called by the goal workflow whenever a goal's approval
// state changes.
func (s *Service) SyncGoalStatus(ctx context.Context, appraisalID string) error {
	_, _, err := s.store.SyncStatusWithReadiness(ctx, appraisalID)
	return err
}

func (s *Service) StartSelfAssessment(ctx context.Context, appraisalID string) (string, error) {
	a, err := s.store.GetAppraisal(ctx, appraisalID)
	if err != nil {
		return "", err
	}
	if NormalizeStatus(a.Status) == StatusSelfAssessmentInProgress {
		return a.Status, nil
	}
	if err := s.store.TransitionStatus(ctx, appraisalID, a.Status, StatusSelfAssessmentInProgress); err != nil {
		return "", err
	}
	return StatusSelfAssessmentInProgress, nil
}

type selfAssessmentPayload struct {
	Content string          `json:"content"`
	Answers json.RawMessage `json:"answers,omitempty"`
}

func (s *Service) SubmitSelfAssessment(ctx context.Context, appraisalID, content string, answers json.RawMessage) (string, error) {
	if err := ValidateSubmissionText("selfAssessment", content); err != nil {
		return "", err
	}
	a, err := s.store.GetAppraisal(ctx, appraisalID)
	if err != nil {
		return "", err
	}
	cycle, err := s.store.GetCycle(ctx, a.CycleID)
	if err != nil {
		return "", err
	}
	if err := ValidateDeadline("self-assessment", cycle.SelfAssessmentDeadline, time.Now()); err != nil {
		return "", err
	}
	payload, err := json.Marshal(selfAssessmentPayload{Content: content, Answers: answers})
	if err != nil {
		return "", err
	}
	return s.store.SubmitSelfAssessment(ctx, appraisalID, payload)
}

type managerReviewPayload struct {
	Comments string          `json:"comments"`
	Answers  json.RawMessage `json:"answers,omitempty"`
}

func (s *Service) SubmitManagerReview(ctx context.Context, appraisalID string, rating int, comments string, answers, goalRatings json.RawMessage) (string, error) {
	if err := ValidateRating(rating); err != nil {
		return "", err
	}
	if err := ValidateSubmissionText("comments", comments); err != nil {
		return "", err
	}
	a, err := s.store.GetAppraisal(ctx, appraisalID)
	if err != nil {
		return "", err
	}
	cycle, err := s.store.GetCycle(ctx, a.CycleID)
	if err != nil {
		return "", err
	}
	if err := ValidateDeadline("manager review", cycle.ManagerReviewDeadline, time.Now()); err != nil {
		return "", err
	}
	payload, err := json.Marshal(managerReviewPayload{Comments: comments, Answers: answers})
	if err != nil {
		return "", err
	}
	toStatus := ReviewOutcome(cycle.ReviewTrack)
	if err := s.store.SubmitManagerReview(ctx, appraisalID, payload, goalRatings, rating, toStatus); err != nil {
		return "", err
	}
	return toStatus, nil
}

func (s *Service) ScheduleMeeting(ctx context.Context, appraisalID string, when time.Time) error {
	if when.IsZero() {
		return ErrValidation
	}
	return s.store.SetMeetingDate(ctx, appraisalID, when)
}

func (s *Service) CompleteMeeting(ctx context.Context, appraisalID string) error {
	return s.store.CompleteMeeting(ctx, appraisalID)
}

func (s *Service) Acknowledge(ctx context.Context, appraisalID, comments string) (string, error) {
	return s.store.Acknowledge(ctx, appraisalID, comments)
}

func (s *Service) ListPendingDeadlines(ctx context.Context, within time.Duration) ([]DeadlineReminder, error) {
	return s.store.ListPendingDeadlines(ctx, within)
}
