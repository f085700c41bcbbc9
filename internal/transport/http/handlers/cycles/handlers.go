package cycleshandler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"epms/internal/domain/appraisal"
	"epms/internal/domain/audit"
	"epms/internal/domain/auth"
	"epms/internal/domain/notifications"
	"epms/internal/transport/http/api"
	"epms/internal/transport/http/middleware"
	"epms/internal/transport/http/shared"
)

type Handler struct {
	Service *appraisal.Service
	Notify  *notifications.Service
	Audit   *audit.Service
	Idem    *middleware.IdempotencyStore
}

func NewHandler(service *appraisal.Service, notify *notifications.Service, auditSvc *audit.Service, idem *middleware.IdempotencyStore) *Handler {
	return &Handler{Service: service, Notify: notify, Audit: auditSvc, Idem: idem}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/cycles", func(r chi.Router) {
		r.With(middleware.RequireAction(auth.ActionCyclesRead)).Get("/", h.handleListCycles)
		r.With(middleware.RequireAction(auth.ActionCyclesRead)).Get("/{cycleID}", h.handleGetCycle)
		r.With(middleware.RequireAction(auth.ActionCyclesManage)).Post("/", h.handleCreateCycle)
		r.With(middleware.RequireAction(auth.ActionCyclesManage)).Put("/{cycleID}", h.handleUpdateCycle)
		r.With(middleware.RequireAction(auth.ActionCyclesActivate)).Post("/{cycleID}/activate", h.handleActivateCycle)
		r.With(middleware.RequireAction(auth.ActionCyclesManage)).Post("/{cycleID}/stop", h.handleStopCycle)
	})
}

type cyclePayload struct {
	Name                   string `json:"name"`
	Description            string `json:"description"`
	Type                   string `json:"type"`
	ReviewTrack            string `json:"reviewTrack"`
	StartDate              string `json:"startDate"`
	EndDate                string `json:"endDate"`
	SelfAssessmentDeadline string `json:"selfAssessmentDeadline"`
	ManagerReviewDeadline  string `json:"managerReviewDeadline"`
	MinimumServiceMonths   int    `json:"minimumServiceMonths"`
	EligibilityCutoffDate  string `json:"eligibilityCutoffDate"`
	IncludeProbation       bool   `json:"includeProbation"`
	ProratedAllowed        bool   `json:"proratedAllowed"`
	NewJoinerPolicy        string `json:"newJoinerPolicy"`
}

func (p cyclePayload) toCycle(w http.ResponseWriter, requestID string) (appraisal.Cycle, bool) {
	v := shared.NewValidator()
	v.Required("name", p.Name, "cycle name is required")
	start, okStart := v.Date("startDate", p.StartDate)
	end, okEnd := v.Date("endDate", p.EndDate)
	if okStart && okEnd {
		v.DateOrder("startDate", start, "endDate", end)
	}
	if v.Reject(w, requestID) {
		return appraisal.Cycle{}, false
	}

	c := appraisal.Cycle{
		Name:                 p.Name,
		Description:          p.Description,
		Type:                 p.Type,
		ReviewTrack:          p.ReviewTrack,
		StartDate:            start,
		EndDate:              end,
		MinimumServiceMonths: p.MinimumServiceMonths,
		IncludeProbation:     p.IncludeProbation,
		ProratedAllowed:      p.ProratedAllowed,
		NewJoinerPolicy:      p.NewJoinerPolicy,
	}
	return c, true
}

func (h *Handler) handleListCycles(w http.ResponseWriter, r *http.Request) {
	cycles, err := h.Service.ListCycles(r.Context())
	if err != nil {
		api.FailFromError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, cycles, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetCycle(w http.ResponseWriter, r *http.Request) {
	cycle, err := h.Service.GetCycle(r.Context(), chi.URLParam(r, "cycleID"))
	if err != nil {
		api.FailFromError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, cycle, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreateCycle(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload cyclePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	cycle, ok := payload.toCycle(w, middleware.GetRequestID(r.Context()))
	if !ok {
		return
	}
	if !h.applyOptionalDates(w, r, payload, &cycle) {
		return
	}
	cycle.CreatedBy = user.UserID

	created, err := h.Service.CreateCycle(r.Context(), cycle)
	if err != nil {
		api.FailFromError(w, err, middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Audit.Record(r.Context(), user.UserID, "cycles.create", "appraisal_cycle", created.ID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, payload); err != nil {
		slog.Warn("audit cycles.create failed", "err", err)
	}
	api.Created(w, created, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdateCycle(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload cyclePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	cycle, ok := payload.toCycle(w, middleware.GetRequestID(r.Context()))
	if !ok {
		return
	}
	if !h.applyOptionalDates(w, r, payload, &cycle) {
		return
	}
	cycle.ID = chi.URLParam(r, "cycleID")

	updated, err := h.Service.UpdateCycle(r.Context(), cycle)
	if err != nil {
		api.FailFromError(w, err, middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Audit.Record(r.Context(), user.UserID, "cycles.update", "appraisal_cycle", updated.ID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, payload); err != nil {
		slog.Warn("audit cycles.update failed", "err", err)
	}
	api.Success(w, updated, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleActivateCycle(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	cycleID := chi.URLParam(r, "cycleID")
	var criteria appraisal.ActivationCriteria
	if r.Body != nil {
		if err := json.NewDecoder(r.Body).Decode(&criteria); err != nil && !errors.Is(err, io.EOF) {
			api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
			return
		}
	}

	idempotencyKey := r.Header.Get("Idempotency-Key")
	requestHash := middleware.RequestHash([]byte(cycleID + "|" + criteria.Department + "|" + criteria.EmploymentType))
	if idempotencyKey != "" && h.Idem != nil {
		stored, found, err := h.Idem.Check(r.Context(), user.UserID, "cycles.activate", idempotencyKey, requestHash)
		if err != nil {
			slog.Warn("idempotency check failed", "err", err)
		}
		if found {
			api.Success(w, json.RawMessage(stored), middleware.GetRequestID(r.Context()))
			return
		}
	}

	cycle, result, err := h.Service.ActivateCycle(r.Context(), cycleID, criteria)
	if err != nil {
		api.FailFromError(w, err, middleware.GetRequestID(r.Context()))
		return
	}

	h.notifyActivated(r, cycle)

	if err := h.Audit.Record(r.Context(), user.UserID, "cycles.activate", "appraisal_cycle", cycleID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, result); err != nil {
		slog.Warn("audit cycles.activate failed", "err", err)
	}

	response := map[string]any{"cycle": cycle, "activation": result}
	if idempotencyKey != "" && h.Idem != nil {
		encoded, err := json.Marshal(response)
		if err != nil {
			slog.Warn("activation response marshal failed", "err", err)
		} else if err := h.Idem.Save(r.Context(), user.UserID, "cycles.activate", idempotencyKey, requestHash, encoded); err != nil {
			slog.Warn("idempotency save failed", "err", err)
		}
	}
	api.Success(w, response, middleware.GetRequestID(r.Context()))
}

func (h *Handler) notifyActivated(r *http.Request, cycle appraisal.Cycle) {
	if h.Notify == nil {
		return
	}
	rows, err := h.Service.ListAppraisals(r.Context(), cycle.ID, "", "")
	if err != nil {
		slog.Warn("activation appraisal list failed", "cycleId", cycle.ID, "err", err)
		return
	}
	for _, row := range rows {
		if err := h.Notify.NotifyEmployee(r.Context(), row.EmployeeID, notifications.TypeCycleActivated, "Appraisal cycle started", "The "+cycle.Name+" appraisal cycle is now active. Set your goals to get started."); err != nil {
			slog.Warn("cycle activation notification failed", "employeeId", row.EmployeeID, "err", err)
		}
	}
}

func (h *Handler) handleStopCycle(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	cycleID := chi.URLParam(r, "cycleID")
	cycle, err := h.Service.StopCycle(r.Context(), cycleID)
	if err != nil {
		api.FailFromError(w, err, middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Audit.Record(r.Context(), user.UserID, "cycles.stop", "appraisal_cycle", cycleID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, map[string]string{"status": cycle.Status}); err != nil {
		slog.Warn("audit cycles.stop failed", "err", err)
	}
	api.Success(w, cycle, middleware.GetRequestID(r.Context()))
}

func (h *Handler) applyOptionalDates(w http.ResponseWriter, r *http.Request, payload cyclePayload, cycle *appraisal.Cycle) bool {
	fields := []struct {
		name string
		raw  string
		dst  **time.Time
	}{
		{"selfAssessmentDeadline", payload.SelfAssessmentDeadline, &cycle.SelfAssessmentDeadline},
		{"managerReviewDeadline", payload.ManagerReviewDeadline, &cycle.ManagerReviewDeadline},
		{"eligibilityCutoffDate", payload.EligibilityCutoffDate, &cycle.EligibilityCutoffDate},
	}
	for _, f := range fields {
		if f.raw == "" {
			continue
		}
		parsed, err := shared.ParseDate(f.raw)
		if err != nil {
			api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid "+f.name, middleware.GetRequestID(r.Context()))
			return false
		}
		value := parsed
		*f.dst = &value
	}
	return true
}
