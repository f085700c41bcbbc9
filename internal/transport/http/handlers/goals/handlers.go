package goalshandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"epms/internal/domain/audit"
	"epms/internal/domain/auth"
	"epms/internal/domain/directory"
	"epms/internal/domain/goal"
	"epms/internal/domain/notifications"
	"epms/internal/transport/http/api"
	"epms/internal/transport/http/middleware"
	"epms/internal/transport/http/shared"
)

type Handler struct {
	Service   *goal.Service
	Directory *directory.Service
	Notify    *notifications.Service
	Audit     *audit.Service
}

func NewHandler(service *goal.Service, dir *directory.Service, notify *notifications.Service, auditSvc *audit.Service) *Handler {
	return &Handler{Service: service, Directory: dir, Notify: notify, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/goals", func(r chi.Router) {
		r.Get("/", h.handleListGoals)
		r.Get("/{goalID}", h.handleGetGoal)
		r.With(middleware.RequireAction(auth.ActionGoalsAssign)).Post("/", h.handleCreateGoal)
		r.With(middleware.RequireAction(auth.ActionGoalsAssign)).Get("/bulk/template", h.handleBulkTemplate)
		r.With(middleware.RequireAction(auth.ActionGoalsAssign)).Post("/bulk/upload", h.handleBulkUpload)
		r.With(middleware.RequireAction(auth.ActionGoalsEdit)).Put("/{goalID}", h.handleUpdateGoal)
		r.With(middleware.RequireAction(auth.ActionGoalsEdit)).Delete("/{goalID}", h.handleDeleteGoal)
		r.With(middleware.RequireAction(auth.ActionGoalsSubmit)).Post("/{goalID}/submit", h.handleSubmitForApproval)
		r.With(middleware.RequireAction(auth.ActionGoalsApprove)).Post("/{goalID}/approve", h.handleApproveGoal)
		r.With(middleware.RequireAction(auth.ActionGoalsReject)).Post("/{goalID}/reject", h.handleRejectGoal)
		r.With(middleware.RequireAction(auth.ActionGoalRevisionRequest)).Post("/{goalID}/revision", h.handleRequestRevision)
		r.Get("/{goalID}/versions", h.handleListVersions)
		r.Get("/{goalID}/audit", h.handleListApprovalAudit)
		r.Get("/{goalID}/key-results", h.handleListKeyResults)
		r.With(middleware.RequireAction(auth.ActionGoalsEdit)).Post("/{goalID}/key-results", h.handleAddKeyResult)
		r.With(middleware.RequireAction(auth.ActionKeyResultsUpdate)).Put("/{goalID}/key-results/{keyResultID}", h.handleUpdateKeyResult)
		r.Get("/{goalID}/comments", h.handleListComments)
		r.With(middleware.RequireAction(auth.ActionGoalCommentsWrite)).Post("/{goalID}/comments", h.handleAddComment)
	})
}

func (h *Handler) actor(r *http.Request) (goal.Actor, bool) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		return goal.Actor{}, false
	}
	employeeID, err := h.Directory.EmployeeIDByUserID(r.Context(), user.UserID)
	if err != nil {
		slog.Warn("goal actor employee lookup failed", "userId", user.UserID, "err", err)
	}
	return goal.Actor{UserID: user.UserID, EmployeeID: employeeID, Role: user.Role}, true
}

func (h *Handler) canViewGoal(r *http.Request, actor goal.Actor, g goal.Goal) bool {
	if auth.IsAdmin(actor.Role) {
		return true
	}
	if actor.EmployeeID != "" && g.EmployeeID == actor.EmployeeID {
		return true
	}
	if actor.UserID != "" && g.CreatedBy == actor.UserID {
		return true
	}
	if actor.EmployeeID != "" && auth.Can(actor.Role, auth.ActionAppraisalsReadTeam) {
		managed, err := h.Directory.IsManagerOf(r.Context(), actor.EmployeeID, g.EmployeeID)
		if err != nil {
			slog.Warn("goal view manager scope failed", "err", err)
			return false
		}
		return managed
	}
	return false
}

func (h *Handler) loadGoal(w http.ResponseWriter, r *http.Request, actor goal.Actor) (goal.Goal, bool) {
	g, err := h.Service.GetGoal(r.Context(), chi.URLParam(r, "goalID"))
	if err != nil {
		api.FailFromError(w, err, middleware.GetRequestID(r.Context()))
		return goal.Goal{}, false
	}
	if !h.canViewGoal(r, actor, g) {
		api.Fail(w, http.StatusForbidden, "forbidden", "not allowed", middleware.GetRequestID(r.Context()))
		return goal.Goal{}, false
	}
	return g, true
}

func (h *Handler) handleListGoals(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(r)
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	if appraisalID := r.URL.Query().Get("appraisalId"); appraisalID != "" {
		goals, err := h.Service.ListGoalsByAppraisal(r.Context(), appraisalID)
		if err != nil {
			api.FailFromError(w, err, middleware.GetRequestID(r.Context()))
			return
		}
		if len(goals) > 0 && !h.canViewGoal(r, actor, goals[0]) {
			api.Fail(w, http.StatusForbidden, "forbidden", "not allowed", middleware.GetRequestID(r.Context()))
			return
		}
		api.Success(w, goals, middleware.GetRequestID(r.Context()))
		return
	}

	employeeID := r.URL.Query().Get("employeeId")
	switch {
	case auth.IsAdmin(actor.Role):
		if employeeID == "" {
			employeeID = actor.EmployeeID
		}
	case employeeID == "" || employeeID == actor.EmployeeID:
		employeeID = actor.EmployeeID
	default:
		managed, err := h.Directory.IsManagerOf(r.Context(), actor.EmployeeID, employeeID)
		if err != nil || !managed {
			api.Fail(w, http.StatusForbidden, "forbidden", "not allowed", middleware.GetRequestID(r.Context()))
			return
		}
	}
	if employeeID == "" {
		api.Success(w, []goal.Goal{}, middleware.GetRequestID(r.Context()))
		return
	}

	goals, err := h.Service.ListGoalsByEmployee(r.Context(), employeeID, r.URL.Query().Get("cycleId"))
	if err != nil {
		api.FailFromError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, goals, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetGoal(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(r)
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	g, ok := h.loadGoal(w, r, actor)
	if !ok {
		return
	}
	api.Success(w, g, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(r)
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var in goal.CreateGoalInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if in.EmployeeID == "" {
		in.EmployeeID = actor.EmployeeID
	}
	if !auth.IsAdmin(actor.Role) && in.EmployeeID != actor.EmployeeID {
		managed, err := h.Directory.IsManagerOf(r.Context(), actor.EmployeeID, in.EmployeeID)
		if err != nil || !managed {
			api.Fail(w, http.StatusForbidden, "forbidden", "not allowed", middleware.GetRequestID(r.Context()))
			return
		}
	}

	created, err := h.Service.CreateGoal(r.Context(), actor, in)
	if err != nil {
		api.FailFromError(w, err, middleware.GetRequestID(r.Context()))
		return
	}

	if h.Notify != nil && created.EmployeeID != actor.EmployeeID {
		if err := h.Notify.NotifyEmployee(r.Context(), created.EmployeeID, notifications.TypeGoalAssigned, "Goal assigned", "A new goal has been proposed for your appraisal."); err != nil {
			slog.Warn("goal assigned notification failed", "err", err)
		}
	}
	if err := h.Audit.Record(r.Context(), actor.UserID, "goals.create", "goal", created.ID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, in); err != nil {
		slog.Warn("audit goals.create failed", "err", err)
	}
	api.Created(w, created, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleBulkTemplate(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="goal_upload_template.xlsx"`)
	if err := goal.BuildBulkTemplate(w); err != nil {
		slog.Error("bulk template write failed", "err", err)
	}
}

// handleBulkUpload imports goals from an .xlsx workbook. Rows are processed
// independently: one bad row is reported and skipped, the rest import.
func (h *Handler) handleBulkUpload(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(r)
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", `upload an .xlsx file in the "file" form field`, middleware.GetRequestID(r.Context()))
		return
	}
	defer file.Close()
	if !strings.HasSuffix(strings.ToLower(header.Filename), ".xlsx") {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "only .xlsx files are supported", middleware.GetRequestID(r.Context()))
		return
	}

	rows, skipped, rowErrs, err := goal.ParseBulkWorkbook(file)
	if err != nil {
		api.FailFromError(w, err, middleware.GetRequestID(r.Context()))
		return
	}

	created := 0
	emailCache := map[string]string{}
	for _, row := range rows {
		employeeID, cached := emailCache[row.EmployeeEmail]
		if !cached {
			id, err := h.Directory.EmployeeIDByEmail(r.Context(), row.EmployeeEmail)
			if err != nil && !errors.Is(err, directory.ErrNotFound) {
				api.FailFromError(w, err, middleware.GetRequestID(r.Context()))
				return
			}
			employeeID = id
			emailCache[row.EmployeeEmail] = id
		}
		if employeeID == "" {
			rowErrs = append(rowErrs, goal.BulkRowError{Row: row.RowNumber, Message: "employee not found: " + row.EmployeeEmail})
			continue
		}
		if !auth.IsAdmin(actor.Role) && employeeID != actor.EmployeeID {
			managed, err := h.Directory.IsManagerOf(r.Context(), actor.EmployeeID, employeeID)
			if err != nil || !managed {
				rowErrs = append(rowErrs, goal.BulkRowError{Row: row.RowNumber, Message: "not allowed to assign goals to " + row.EmployeeEmail})
				continue
			}
		}

		startDate, targetDate := row.StartDate, row.TargetDate
		createdGoal, err := h.Service.CreateGoal(r.Context(), actor, goal.CreateGoalInput{
			EmployeeID:  employeeID,
			Title:       row.Title,
			Description: row.Description,
			Category:    row.Category,
			Priority:    row.Priority,
			StartDate:   &startDate,
			TargetDate:  &targetDate,
		})
		if err != nil {
			rowErrs = append(rowErrs, goal.BulkRowError{Row: row.RowNumber, Message: err.Error()})
			continue
		}
		for _, krTitle := range row.KeyResults {
			if _, err := h.Service.AddKeyResult(r.Context(), actor, createdGoal.ID, goal.KeyResultInput{
				Title:       krTitle,
				TargetValue: 100,
				Unit:        "percentage",
				DueDate:     &targetDate,
			}); err != nil {
				rowErrs = append(rowErrs, goal.BulkRowError{Row: row.RowNumber, Message: "key result " + krTitle + ": " + err.Error()})
			}
		}
		if h.Notify != nil && employeeID != actor.EmployeeID {
			if err := h.Notify.NotifyEmployee(r.Context(), employeeID, notifications.TypeGoalAssigned, "Goal assigned", "A new goal has been proposed for your appraisal."); err != nil {
				slog.Warn("bulk goal notification failed", "err", err)
			}
		}
		created++
	}

	if rowErrs == nil {
		rowErrs = []goal.BulkRowError{}
	}
	result := map[string]any{
		"created": created,
		"skipped": skipped,
		"errors":  rowErrs,
	}
	if err := h.Audit.Record(r.Context(), actor.UserID, "goals.bulk_upload", "goal", "", middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, result); err != nil {
		slog.Warn("audit goals.bulk_upload failed", "err", err)
	}
	if created > 0 {
		api.Created(w, result, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, result, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdateGoal(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(r)
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var in goal.UpdateGoalInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	updated, err := h.Service.UpdateGoal(r.Context(), actor, chi.URLParam(r, "goalID"), in)
	if err != nil {
		api.FailFromError(w, err, middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Audit.Record(r.Context(), actor.UserID, "goals.update", "goal", updated.ID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, in); err != nil {
		slog.Warn("audit goals.update failed", "err", err)
	}
	api.Success(w, updated, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(r)
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	goalID := chi.URLParam(r, "goalID")
	if err := h.Service.DeleteGoal(r.Context(), actor, goalID); err != nil {
		api.FailFromError(w, err, middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Audit.Record(r.Context(), actor.UserID, "goals.delete", "goal", goalID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, nil); err != nil {
		slog.Warn("audit goals.delete failed", "err", err)
	}
	api.Success(w, map[string]string{"status": "deleted"}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleSubmitForApproval(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(r)
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	submitted, err := h.Service.SubmitForApproval(r.Context(), actor, chi.URLParam(r, "goalID"))
	if err != nil {
		api.FailFromError(w, err, middleware.GetRequestID(r.Context()))
		return
	}

	if h.Notify != nil {
		if err := h.Notify.NotifyEmployee(r.Context(), submitted.EmployeeID, notifications.TypeGoalSubmitted, "Goal awaiting your approval", "A goal has been submitted and needs your approval."); err != nil {
			slog.Warn("goal submitted notification failed", "err", err)
		}
	}
	if err := h.Audit.Record(r.Context(), actor.UserID, "goals.submit", "goal", submitted.ID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, map[string]any{"version": submitted.VersionNumber}); err != nil {
		slog.Warn("audit goals.submit failed", "err", err)
	}
	api.Success(w, submitted, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleApproveGoal(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(r)
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	approved, err := h.Service.Approve(r.Context(), actor, chi.URLParam(r, "goalID"))
	if err != nil {
		api.FailFromError(w, err, middleware.GetRequestID(r.Context()))
		return
	}

	if h.Notify != nil && approved.CreatedBy != "" && approved.CreatedBy != actor.UserID {
		if err := h.Notify.Notify(r.Context(), approved.CreatedBy, notifications.TypeGoalApproved, "Goal approved", "A goal you proposed has been approved."); err != nil {
			slog.Warn("goal approved notification failed", "err", err)
		}
	}
	if err := h.Audit.Record(r.Context(), actor.UserID, "goals.approve", "goal", approved.ID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, map[string]string{"approvalStatus": approved.ApprovalStatus}); err != nil {
		slog.Warn("audit goals.approve failed", "err", err)
	}
	api.Success(w, approved, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleRejectGoal(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(r)
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload struct {
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	rejected, err := h.Service.Reject(r.Context(), actor, chi.URLParam(r, "goalID"), payload.Reason)
	if err != nil {
		api.FailFromError(w, err, middleware.GetRequestID(r.Context()))
		return
	}

	if h.Notify != nil && rejected.CreatedBy != "" && rejected.CreatedBy != actor.UserID {
		if err := h.Notify.Notify(r.Context(), rejected.CreatedBy, notifications.TypeGoalRejected, "Goal rejected", "A goal you proposed was rejected: "+rejected.RejectedReason); err != nil {
			slog.Warn("goal rejected notification failed", "err", err)
		}
	}
	if err := h.Audit.Record(r.Context(), actor.UserID, "goals.reject", "goal", rejected.ID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, payload); err != nil {
		slog.Warn("audit goals.reject failed", "err", err)
	}
	api.Success(w, rejected, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleRequestRevision(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(r)
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload struct {
		Note string `json:"note"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	comment, err := h.Service.RequestRevision(r.Context(), actor, chi.URLParam(r, "goalID"), payload.Note)
	if err != nil {
		api.FailFromError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Created(w, comment, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListVersions(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(r)
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	g, ok := h.loadGoal(w, r, actor)
	if !ok {
		return
	}

	versions, err := h.Service.ListVersions(r.Context(), g.ID)
	if err != nil {
		api.FailFromError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, versions, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListApprovalAudit(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(r)
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	g, ok := h.loadGoal(w, r, actor)
	if !ok {
		return
	}

	entries, err := h.Service.ListApprovalAudit(r.Context(), g.ID)
	if err != nil {
		api.FailFromError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, entries, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListKeyResults(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(r)
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	g, ok := h.loadGoal(w, r, actor)
	if !ok {
		return
	}

	results, err := h.Service.ListKeyResults(r.Context(), g.ID)
	if err != nil {
		api.FailFromError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, results, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleAddKeyResult(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(r)
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var in goal.KeyResultInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	created, err := h.Service.AddKeyResult(r.Context(), actor, chi.URLParam(r, "goalID"), in)
	if err != nil {
		api.FailFromError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Created(w, created, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdateKeyResult(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(r)
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload struct {
		CurrentValue float64 `json:"currentValue"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	updated, err := h.Service.UpdateKeyResultProgress(r.Context(), actor, chi.URLParam(r, "goalID"), chi.URLParam(r, "keyResultID"), payload.CurrentValue)
	if err != nil {
		api.FailFromError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, updated, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListComments(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(r)
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	g, ok := h.loadGoal(w, r, actor)
	if !ok {
		return
	}

	comments, err := h.Service.ListComments(r.Context(), g.ID)
	if err != nil {
		api.FailFromError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, comments, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleAddComment(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(r)
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload struct {
		Content string `json:"content"`
		Type    string `json:"type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	comment, err := h.Service.AddComment(r.Context(), actor, chi.URLParam(r, "goalID"), payload.Content, payload.Type)
	if err != nil {
		api.FailFromError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Created(w, comment, middleware.GetRequestID(r.Context()))
}
