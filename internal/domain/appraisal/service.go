package appraisal

import (
	"context"
	"errors"
	"fmt"
	"time"
)

type Service struct {
	store StoreAPI
}

func NewService(store StoreAPI) *Service {
	return &Service{store: store}
}

func (s *Service) CreateCycle(ctx context.Context, c Cycle) (Cycle, error) {
	if c.Type == "" {
		c.Type = CycleTypeAnnual
	}
	if c.ReviewTrack == "" {
		c.ReviewTrack = ReviewTrackStandard
	}
	if c.NewJoinerPolicy == "" {
		c.NewJoinerPolicy = NewJoinerAutoInclude
	}
	if c.MinimumServiceMonths == 0 {
		c.MinimumServiceMonths = 3
	}
	if err := ValidateCycle(c); err != nil {
		return Cycle{}, err
	}
	id, err := s.store.CreateCycle(ctx, c)
	if err != nil {
		return Cycle{}, err
	}
	return s.store.GetCycle(ctx, id)
}

func (s *Service) UpdateCycle(ctx context.Context, c Cycle) (Cycle, error) {
	if err := ValidateCycle(c); err != nil {
		return Cycle{}, err
	}
	if err := s.store.UpdateCycle(ctx, c); err != nil {
		return Cycle{}, err
	}
	return s.store.GetCycle(ctx, c.ID)
}

func (s *Service) GetCycle(ctx context.Context, cycleID string) (Cycle, error) {
	return s.store.GetCycle(ctx, cycleID)
}

// ListCycles sweeps expired active cycles first so callers never see an
// active cycle past its end date.
func (s *Service) ListCycles(ctx context.Context) ([]Cycle, error) {
	if _, err := s.store.CompleteExpiredCycles(ctx, time.Now()); err != nil {
		return nil, err
	}
	return s.store.ListCycles(ctx)
}

func (s *Service) ActiveCycle(ctx context.Context) (Cycle, error) {
	return s.store.ActiveCycle(ctx)
}

func (s *Service) CompleteExpiredCycles(ctx context.Context, asOf time.Time) (int, error) {
	return s.store.CompleteExpiredCycles(ctx, asOf)
}

// ActivateCycle moves a draft cycle to active and generates appraisals for
// every eligible employee matching the criteria. Re-activating an already
// active cycle only syncs missing appraisals, mirroring how new joiners get
// pulled in mid-cycle.
func (s *Service) ActivateCycle(ctx context.Context, cycleID string, criteria ActivationCriteria) (Cycle, ActivationResult, error) {
	cycle, err := s.store.GetCycle(ctx, cycleID)
	if err != nil {
		return Cycle{}, ActivationResult{}, err
	}
	switch cycle.Status {
	case CycleStatusDraft:
		if err := s.store.SetCycleStatus(ctx, cycleID, CycleStatusDraft, CycleStatusActive); err != nil {
			return Cycle{}, ActivationResult{}, err
		}
		cycle.Status = CycleStatusActive
	case CycleStatusActive:
	default:
		return Cycle{}, ActivationResult{}, fmt.Errorf("%w: cannot activate a %s cycle", ErrInvalidTransition, cycle.Status)
	}

	employees, err := s.store.ListActiveEmployees(ctx)
	if err != nil {
		return Cycle{}, ActivationResult{}, err
	}

	var result ActivationResult
	for _, emp := range employees {
		if !MatchesCriteria(emp, criteria) {
			result.Skipped++
			continue
		}
		decision := CheckEligibility(emp, cycle)
		if !decision.Eligible {
			result.Skipped++
			if decision.Status == EligibilityDeferred || decision.Status == EligibilityPendingHRReview {
				result.Deferred = append(result.Deferred, DeferredEmployee{
					EmployeeID: emp.EmployeeID,
					Status:     decision.Status,
					Reason:     decision.Reason,
				})
			}
			continue
		}
		_, created, err := s.store.CreateAppraisalIfAbsent(ctx, cycleID, emp.EmployeeID, emp.ManagerID)
		if err != nil {
			return Cycle{}, ActivationResult{}, err
		}
		if created {
			result.Created++
		}
	}
	return cycle, result, nil
}

func (s *Service) StopCycle(ctx context.Context, cycleID string) (Cycle, error) {
	if err := s.store.SetCycleStatus(ctx, cycleID, CycleStatusActive, CycleStatusDraft); err != nil {
		return Cycle{}, err
	}
	return s.store.GetCycle(ctx, cycleID)
}

// EnsureAppraisal creates the employee's appraisal for the active cycle on
// demand, subject to the same eligibility rules as activation.
func (s *Service) EnsureAppraisal(ctx context.Context, employeeID string) (AppraisalView, bool, error) {
	cycle, err := s.store.ActiveCycle(ctx)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return AppraisalView{}, false, ErrCycleNotActive
		}
		return AppraisalView{}, false, err
	}
	profile, err := s.store.EmployeeProfile(ctx, employeeID)
	if err != nil {
		return AppraisalView{}, false, err
	}
	decision := CheckEligibility(profile, cycle)
	if !decision.Eligible {
		return AppraisalView{}, false, fmt.Errorf("%w: %s", ErrNotEligible, decision.Reason)
	}
	id, created, err := s.store.CreateAppraisalIfAbsent(ctx, cycle.ID, employeeID, profile.ManagerID)
	if err != nil {
		return AppraisalView{}, false, err
	}
	view, err := s.GetAppraisal(ctx, id)
	return view, created, err
}
