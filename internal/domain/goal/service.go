package goal

import (
	"context"

	"epms/internal/domain/auth"
)

// StatusSyncer recomputes an appraisal's goal-leg status after the goal set
// under it changes.
type StatusSyncer interface {
	SyncGoalStatus(ctx context.Context, appraisalID string) error
}

// Actor is the authenticated principal a service call runs as.
type Actor struct {
	UserID     string
	EmployeeID string
	Role       string
}

func (a Actor) isAdmin() bool {
	return auth.IsAdmin(a.Role)
}

type Service struct {
	store  StoreAPI
	syncer StatusSyncer
}

func NewService(store StoreAPI, syncer StatusSyncer) *Service {
	return &Service{store: store, syncer: syncer}
}

func (s *Service) syncAppraisal(ctx context.Context, appraisalID string) error {
	if appraisalID == "" || s.syncer == nil {
		return nil
	}
	return s.syncer.SyncGoalStatus(ctx, appraisalID)
}
