package appraisalshandler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

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
}

func NewHandler(service *appraisal.Service, notify *notifications.Service, auditSvc *audit.Service) *Handler {
	return &Handler{Service: service, Notify: notify, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/appraisals", func(r chi.Router) {
		readAny := middleware.RequireAnyAction(auth.ActionAppraisalsReadOwn, auth.ActionAppraisalsReadTeam, auth.ActionAppraisalsReadAll)
		r.With(readAny).Get("/", h.handleListAppraisals)
		r.With(readAny).Get("/{appraisalID}", h.handleGetAppraisal)
		r.With(middleware.RequireAction(auth.ActionAppraisalsReadOwn)).Post("/me", h.handleEnsureOwnAppraisal)
		r.With(middleware.RequireAction(auth.ActionSelfAssessmentSubmit)).Post("/{appraisalID}/self-assessment/start", h.handleStartSelfAssessment)
		r.With(middleware.RequireAction(auth.ActionSelfAssessmentSubmit)).Post("/{appraisalID}/self-assessment", h.handleSubmitSelfAssessment)
		r.With(middleware.RequireAction(auth.ActionManagerReviewSubmit)).Post("/{appraisalID}/review", h.handleSubmitManagerReview)
		r.With(middleware.RequireAction(auth.ActionMeetingSchedule)).Post("/{appraisalID}/meeting", h.handleScheduleMeeting)
		r.With(middleware.RequireAction(auth.ActionMeetingComplete)).Post("/{appraisalID}/meeting/complete", h.handleCompleteMeeting)
		r.With(middleware.RequireAction(auth.ActionAcknowledge)).Post("/{appraisalID}/acknowledge", h.handleAcknowledge)
	})
}

// selfEmployeeID resolves the caller's employee row. A user without an
// employee profile gets an empty id, which never matches.
func (h *Handler) selfEmployeeID(r *http.Request, user auth.UserContext) string {
	id, err := h.Service.EmployeeIDByUserID(r.Context(), user.UserID)
	if err != nil {
		slog.Warn("employee lookup failed", "userId", user.UserID, "err", err)
		return ""
	}
	return id
}

func (h *Handler) canView(r *http.Request, user auth.UserContext, view appraisal.AppraisalView) bool {
	if auth.Can(user.Role, auth.ActionAppraisalsReadAll) {
		return true
	}
	self := h.selfEmployeeID(r, user)
	if self == "" {
		return false
	}
	if view.EmployeeID == self {
		return true
	}
	return auth.Can(user.Role, auth.ActionAppraisalsReadTeam) && view.ManagerID == self
}

func (h *Handler) handleEnsureOwnAppraisal(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	self := h.selfEmployeeID(r, user)
	if self == "" {
		api.Fail(w, http.StatusNotFound, "not_found", "no employee profile for user", middleware.GetRequestID(r.Context()))
		return
	}

	view, created, err := h.Service.EnsureAppraisal(r.Context(), self)
	if err != nil {
		api.FailFromError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	if created {
		if err := h.Audit.Record(r.Context(), user.UserID, "appraisals.create", "appraisal", view.ID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, nil); err != nil {
			slog.Warn("audit appraisals.create failed", "err", err)
		}
		api.Created(w, view, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, view, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListAppraisals(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	cycleID := r.URL.Query().Get("cycleId")
	employeeID := ""
	managerID := ""
	switch {
	case auth.Can(user.Role, auth.ActionAppraisalsReadAll):
		employeeID = r.URL.Query().Get("employeeId")
	case auth.Can(user.Role, auth.ActionAppraisalsReadTeam):
		managerID = h.selfEmployeeID(r, user)
		if managerID == "" {
			api.Success(w, []appraisal.Appraisal{}, middleware.GetRequestID(r.Context()))
			return
		}
	default:
		employeeID = h.selfEmployeeID(r, user)
		if employeeID == "" {
			api.Success(w, []appraisal.Appraisal{}, middleware.GetRequestID(r.Context()))
			return
		}
	}

	rows, err := h.Service.ListAppraisals(r.Context(), cycleID, employeeID, managerID)
	if err != nil {
		api.FailFromError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, rows, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetAppraisal(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	view, err := h.Service.GetAppraisal(r.Context(), chi.URLParam(r, "appraisalID"))
	if err != nil {
		api.FailFromError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	if !h.canView(r, user, view) {
		api.Fail(w, http.StatusForbidden, "forbidden", "not allowed", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, view, middleware.GetRequestID(r.Context()))
}

// ownAppraisal loads the appraisal and requires the caller to be its
// employee. Admin roles pass so HR can unblock a stuck record.
func (h *Handler) ownAppraisal(w http.ResponseWriter, r *http.Request, user auth.UserContext) (appraisal.AppraisalView, bool) {
	view, err := h.Service.GetAppraisal(r.Context(), chi.URLParam(r, "appraisalID"))
	if err != nil {
		api.FailFromError(w, err, middleware.GetRequestID(r.Context()))
		return appraisal.AppraisalView{}, false
	}
	if auth.IsAdmin(user.Role) {
		return view, true
	}
	self := h.selfEmployeeID(r, user)
	if self == "" || view.EmployeeID != self {
		api.Fail(w, http.StatusForbidden, "forbidden", "not allowed", middleware.GetRequestID(r.Context()))
		return appraisal.AppraisalView{}, false
	}
	return view, true
}

// managedAppraisal loads the appraisal and requires the caller to be the
// assigned manager, or an admin.
func (h *Handler) managedAppraisal(w http.ResponseWriter, r *http.Request, user auth.UserContext) (appraisal.AppraisalView, bool) {
	view, err := h.Service.GetAppraisal(r.Context(), chi.URLParam(r, "appraisalID"))
	if err != nil {
		api.FailFromError(w, err, middleware.GetRequestID(r.Context()))
		return appraisal.AppraisalView{}, false
	}
	if auth.IsAdmin(user.Role) {
		return view, true
	}
	self := h.selfEmployeeID(r, user)
	if self == "" || view.ManagerID != self {
		api.Fail(w, http.StatusForbidden, "forbidden", "not allowed", middleware.GetRequestID(r.Context()))
		return appraisal.AppraisalView{}, false
	}
	return view, true
}

func (h *Handler) handleStartSelfAssessment(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	view, ok := h.ownAppraisal(w, r, user)
	if !ok {
		return
	}

	status, err := h.Service.StartSelfAssessment(r.Context(), view.ID)
	if err != nil {
		api.FailFromError(w, err, middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Audit.Record(r.Context(), user.UserID, "appraisals.self_assessment.start", "appraisal", view.ID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), map[string]string{"status": view.Status}, map[string]string{"status": status}); err != nil {
		slog.Warn("audit self_assessment.start failed", "err", err)
	}
	api.Success(w, map[string]string{"id": view.ID, "status": status}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleSubmitSelfAssessment(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	view, ok := h.ownAppraisal(w, r, user)
	if !ok {
		return
	}

	var payload struct {
		Content string          `json:"content"`
		Answers json.RawMessage `json:"answers"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	status, err := h.Service.SubmitSelfAssessment(r.Context(), view.ID, payload.Content, payload.Answers)
	if err != nil {
		api.FailFromError(w, err, middleware.GetRequestID(r.Context()))
		return
	}

	if h.Notify != nil && view.ManagerID != "" {
		if err := h.Notify.NotifyEmployee(r.Context(), view.ManagerID, notifications.TypeSelfAssessmentSubmitted, "Self-assessment submitted", "A report has submitted their self-assessment and is ready for review."); err != nil {
			slog.Warn("self-assessment notification failed", "err", err)
		}
	}
	if err := h.Audit.Record(r.Context(), user.UserID, "appraisals.self_assessment.submit", "appraisal", view.ID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), map[string]string{"status": view.Status}, map[string]string{"status": status}); err != nil {
		slog.Warn("audit self_assessment.submit failed", "err", err)
	}
	api.Success(w, map[string]string{"id": view.ID, "status": status}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleSubmitManagerReview(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	view, ok := h.managedAppraisal(w, r, user)
	if !ok {
		return
	}

	var payload struct {
		Rating      int             `json:"rating"`
		Comments    string          `json:"comments"`
		Answers     json.RawMessage `json:"answers"`
		GoalRatings json.RawMessage `json:"goalRatings"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	status, err := h.Service.SubmitManagerReview(r.Context(), view.ID, payload.Rating, payload.Comments, payload.Answers, payload.GoalRatings)
	if err != nil {
		api.FailFromError(w, err, middleware.GetRequestID(r.Context()))
		return
	}

	if h.Notify != nil {
		if err := h.Notify.NotifyEmployee(r.Context(), view.EmployeeID, notifications.TypeReviewSubmitted, "Manager review submitted", "Your manager has completed your review."); err != nil {
			slog.Warn("manager review notification failed", "err", err)
		}
	}
	if err := h.Audit.Record(r.Context(), user.UserID, "appraisals.review.submit", "appraisal", view.ID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), map[string]string{"status": view.Status}, map[string]any{"status": status, "rating": payload.Rating}); err != nil {
		slog.Warn("audit review.submit failed", "err", err)
	}
	api.Success(w, map[string]string{"id": view.ID, "status": status}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleScheduleMeeting(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	view, ok := h.managedAppraisal(w, r, user)
	if !ok {
		return
	}

	var payload struct {
		MeetingDate string `json:"meetingDate"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	when, err := shared.ParseDate(payload.MeetingDate)
	if err != nil || when.IsZero() {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid meeting date", middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Service.ScheduleMeeting(r.Context(), view.ID, when); err != nil {
		api.FailFromError(w, err, middleware.GetRequestID(r.Context()))
		return
	}

	if h.Notify != nil {
		if err := h.Notify.NotifyEmployee(r.Context(), view.EmployeeID, notifications.TypeMeetingScheduled, "Appraisal meeting scheduled", "Your appraisal discussion has been scheduled for "+when.Format("2006-01-02")+"."); err != nil {
			slog.Warn("meeting notification failed", "err", err)
		}
	}
	if err := h.Audit.Record(r.Context(), user.UserID, "appraisals.meeting.schedule", "appraisal", view.ID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, payload); err != nil {
		slog.Warn("audit meeting.schedule failed", "err", err)
	}
	api.Success(w, map[string]string{"id": view.ID, "meetingDate": when.Format("2006-01-02")}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCompleteMeeting(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	view, ok := h.managedAppraisal(w, r, user)
	if !ok {
		return
	}

	if err := h.Service.CompleteMeeting(r.Context(), view.ID); err != nil {
		api.FailFromError(w, err, middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Audit.Record(r.Context(), user.UserID, "appraisals.meeting.complete", "appraisal", view.ID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, nil); err != nil {
		slog.Warn("audit meeting.complete failed", "err", err)
	}
	api.Success(w, map[string]string{"id": view.ID, "status": appraisal.StatusMeetingCompleted}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleAcknowledge(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	view, ok := h.ownAppraisal(w, r, user)
	if !ok {
		return
	}

	// Comments are optional; an empty body is a plain acknowledgement.
	var payload struct {
		Comments string `json:"comments"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil && !errors.Is(err, io.EOF) {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	status, err := h.Service.Acknowledge(r.Context(), view.ID, payload.Comments)
	if err != nil {
		api.FailFromError(w, err, middleware.GetRequestID(r.Context()))
		return
	}

	if h.Notify != nil && view.ManagerID != "" {
		if err := h.Notify.NotifyEmployee(r.Context(), view.ManagerID, notifications.TypeAppraisalCompleted, "Appraisal acknowledged", "A report has acknowledged their completed appraisal."); err != nil {
			slog.Warn("acknowledge notification failed", "err", err)
		}
	}
	if err := h.Audit.Record(r.Context(), user.UserID, "appraisals.acknowledge", "appraisal", view.ID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), map[string]string{"status": view.Status}, map[string]string{"status": status}); err != nil {
		slog.Warn("audit appraisals.acknowledge failed", "err", err)
	}
	api.Success(w, map[string]string{"id": view.ID, "status": status}, middleware.GetRequestID(r.Context()))
}
