package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"epms/internal/app/server"
	"epms/internal/platform/config"
)

var uniqueCounter atomic.Int64

func uniqueSuffix() string {
	return fmt.Sprintf("%d-%d", time.Now().UnixNano(), uniqueCounter.Add(1))
}

type envelope struct {
	Success   bool            `json:"success"`
	Data      json.RawMessage `json:"data"`
	Error     *apiError       `json:"error"`
	RequestID string          `json:"requestId"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type testEmployee struct {
	ID     string `json:"id"`
	UserID string `json:"userId"`
	Email  string `json:"email"`
}

type appraisalRow struct {
	ID           string `json:"id"`
	CycleID      string `json:"cycleId"`
	EmployeeID   string `json:"employeeId"`
	ManagerID    string `json:"managerId"`
	Status       string `json:"status"`
	Acknowledged bool   `json:"acknowledged"`
}

type goalRow struct {
	ID             string `json:"id"`
	EmployeeID     string `json:"employeeId"`
	AppraisalID    string `json:"appraisalId"`
	ApprovalStatus string `json:"approvalStatus"`
	VersionNumber  int    `json:"versionNumber"`
	RejectedReason string `json:"rejectedReason"`
}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if strings.TrimSpace(dbURL) == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	return config.Config{
		DatabaseURL:              dbURL,
		JWTSecret:                "test-secret",
		Environment:              "test",
		SeedAdminEmail:           "admin@test.local",
		SeedAdminPassword:        "ChangeMe123!",
		SeedAdminName:            "Test Admin",
		EmailFrom:                "no-reply@test.local",
		RunMigrations:            true,
		RunSeed:                  true,
		MigrationsDir:            "../../../../migrations",
		MaxBodyBytes:             1048576,
		RateLimitPerMinute:       1000,
		DeadlineReminderInterval: time.Hour,
		CycleSweepInterval:       time.Hour,
	}
}

func newTestServer(t *testing.T) (*server.App, *httptest.Server) {
	t.Helper()
	cfg := testConfig(t)
	app, err := server.New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("failed to start app: %v", err)
	}
	ts := httptest.NewServer(app.Router)
	t.Cleanup(func() {
		ts.Close()
		app.Close()
	})
	return app, ts
}

func doJSON(t *testing.T, ts *httptest.Server, method, path, token string, body any, headers map[string]string) (int, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, ts.URL+path, reader)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatalf("request %s %s failed: %v", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("failed to decode response for %s %s: %v", method, path, err)
	}
	return resp.StatusCode, env
}

func decodeData(t *testing.T, env envelope, out any) {
	t.Helper()
	if err := json.Unmarshal(env.Data, out); err != nil {
		t.Fatalf("failed to decode data %s: %v", string(env.Data), err)
	}
}

func login(t *testing.T, ts *httptest.Server, email, password string) string {
	t.Helper()
	status, env := doJSON(t, ts, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    email,
		"password": password,
	}, nil)
	if status != http.StatusOK {
		t.Fatalf("login as %s failed with %d: %+v", email, status, env.Error)
	}
	var data struct {
		Token string `json:"token"`
	}
	decodeData(t, env, &data)
	if data.Token == "" {
		t.Fatalf("expected login token for %s", email)
	}
	return data.Token
}

const testPassword = "Passw0rd123!"

func createEmployee(t *testing.T, ts *httptest.Server, adminToken, role, managerID string) testEmployee {
	t.Helper()
	email := fmt.Sprintf("%s-%s@example.com", role, uniqueSuffix())
	payload := map[string]any{
		"firstName":      "Test",
		"lastName":       "Example",
		"email":          email,
		"department":     "engineering",
		"position":       role,
		"employmentType": "full_time",
		"startDate":      "2023-01-15T00:00:00Z",
		"role":           role,
		"password":       testPassword,
	}
	if managerID != "" {
		payload["managerId"] = managerID
	}

	status, env := doJSON(t, ts, http.MethodPost, "/api/v1/employees", adminToken, payload, nil)
	if status != http.StatusCreated {
		t.Fatalf("create %s employee failed with %d: %+v", role, status, env.Error)
	}
	var emp testEmployee
	decodeData(t, env, &emp)
	if emp.ID == "" || emp.UserID == "" {
		t.Fatalf("expected created employee ids, got %s", string(env.Data))
	}
	emp.Email = email
	return emp
}

func createCycle(t *testing.T, ts *httptest.Server, adminToken, reviewTrack string) string {
	t.Helper()
	status, env := doJSON(t, ts, http.MethodPost, "/api/v1/cycles", adminToken, map[string]any{
		"name":                 "Cycle " + uniqueSuffix(),
		"type":                 "annual",
		"reviewTrack":          reviewTrack,
		"startDate":            "2026-01-01",
		"endDate":              "2026-12-31",
		"minimumServiceMonths": 1,
	}, nil)
	if status != http.StatusCreated {
		t.Fatalf("create cycle failed with %d: %+v", status, env.Error)
	}
	var cycle struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	decodeData(t, env, &cycle)
	if cycle.Status != "draft" {
		t.Fatalf("expected draft cycle, got %s", cycle.Status)
	}
	return cycle.ID
}

func activateCycle(t *testing.T, ts *httptest.Server, adminToken, cycleID string) {
	t.Helper()
	status, env := doJSON(t, ts, http.MethodPost, "/api/v1/cycles/"+cycleID+"/activate", adminToken, map[string]any{}, nil)
	if status != http.StatusOK {
		t.Fatalf("activate cycle failed with %d: %+v", status, env.Error)
	}
}

func findAppraisal(t *testing.T, ts *httptest.Server, adminToken, cycleID, employeeID string) appraisalRow {
	t.Helper()
	status, env := doJSON(t, ts, http.MethodGet, "/api/v1/appraisals?cycleId="+cycleID+"&employeeId="+employeeID, adminToken, nil, nil)
	if status != http.StatusOK {
		t.Fatalf("list appraisals failed with %d: %+v", status, env.Error)
	}
	var rows []appraisalRow
	decodeData(t, env, &rows)
	if len(rows) != 1 {
		t.Fatalf("expected one appraisal for employee %s, got %d", employeeID, len(rows))
	}
	return rows[0]
}

func getAppraisal(t *testing.T, ts *httptest.Server, token, appraisalID string) appraisalRow {
	t.Helper()
	status, env := doJSON(t, ts, http.MethodGet, "/api/v1/appraisals/"+appraisalID, token, nil, nil)
	if status != http.StatusOK {
		t.Fatalf("get appraisal failed with %d: %+v", status, env.Error)
	}
	var row appraisalRow
	decodeData(t, env, &row)
	return row
}

func createGoal(t *testing.T, ts *httptest.Server, token, employeeID, appraisalID, title string) goalRow {
	t.Helper()
	status, env := doJSON(t, ts, http.MethodPost, "/api/v1/goals", token, map[string]any{
		"employeeId":  employeeID,
		"appraisalId": appraisalID,
		"title":       title,
		"description": "Agreed during planning",
		"category":    "performance",
		"priority":    "high",
	}, nil)
	if status != http.StatusCreated {
		t.Fatalf("create goal failed with %d: %+v", status, env.Error)
	}
	var g goalRow
	decodeData(t, env, &g)
	if g.ApprovalStatus != "draft" {
		t.Fatalf("expected new goal in draft, got %s", g.ApprovalStatus)
	}
	return g
}

func submitGoal(t *testing.T, ts *httptest.Server, token, goalID string) goalRow {
	t.Helper()
	status, env := doJSON(t, ts, http.MethodPost, "/api/v1/goals/"+goalID+"/submit", token, nil, nil)
	if status != http.StatusOK {
		t.Fatalf("submit goal failed with %d: %+v", status, env.Error)
	}
	var g goalRow
	decodeData(t, env, &g)
	return g
}

func approveGoal(t *testing.T, ts *httptest.Server, token, goalID string) goalRow {
	t.Helper()
	status, env := doJSON(t, ts, http.MethodPost, "/api/v1/goals/"+goalID+"/approve", token, nil, nil)
	if status != http.StatusOK {
		t.Fatalf("approve goal failed with %d: %+v", status, env.Error)
	}
	var g goalRow
	decodeData(t, env, &g)
	return g
}

// world is one fully provisioned appraisal: an activated cycle, a manager
// with one direct report, and two goals proposed by the manager.
type world struct {
	ts            *httptest.Server
	adminToken    string
	managerToken  string
	employeeToken string
	manager       testEmployee
	employee      testEmployee
	cycleID       string
	appraisalID   string
	goal1         goalRow
	goal2         goalRow
}

func setupWorld(t *testing.T, reviewTrack string) *world {
	t.Helper()
	_, ts := newTestServer(t)
	adminToken := login(t, ts, "admin@test.local", "ChangeMe123!")

	manager := createEmployee(t, ts, adminToken, "manager", "")
	employee := createEmployee(t, ts, adminToken, "employee", manager.ID)
	managerToken := login(t, ts, manager.Email, testPassword)
	employeeToken := login(t, ts, employee.Email, testPassword)

	cycleID := createCycle(t, ts, adminToken, reviewTrack)
	activateCycle(t, ts, adminToken, cycleID)

	row := findAppraisal(t, ts, adminToken, cycleID, employee.ID)
	if row.Status != "not_started" {
		t.Fatalf("expected not_started appraisal after activation, got %s", row.Status)
	}
	if row.ManagerID != manager.ID {
		t.Fatalf("expected appraisal assigned to manager %s, got %s", manager.ID, row.ManagerID)
	}

	goal1 := createGoal(t, ts, managerToken, employee.ID, row.ID, "Ship the reporting migration")
	goal2 := createGoal(t, ts, managerToken, employee.ID, row.ID, "Mentor two junior engineers")

	return &world{
		ts:            ts,
		adminToken:    adminToken,
		managerToken:  managerToken,
		employeeToken: employeeToken,
		manager:       manager,
		employee:      employee,
		cycleID:       cycleID,
		appraisalID:   row.ID,
		goal1:         goal1,
		goal2:         goal2,
	}
}

func TestStandardTrackJourney(t *testing.T) {
	w := setupWorld(t, "standard")

	submitted := submitGoal(t, w.ts, w.managerToken, w.goal1.ID)
	if submitted.ApprovalStatus != "pending_approval" {
		t.Fatalf("expected pending_approval after submit, got %s", submitted.ApprovalStatus)
	}
	if submitted.VersionNumber != 2 {
		t.Fatalf("expected version bump to 2 on first submit, got %d", submitted.VersionNumber)
	}
	submitGoal(t, w.ts, w.managerToken, w.goal2.ID)

	if got := getAppraisal(t, w.ts, w.adminToken, w.appraisalID).Status; got != "goals_pending_approval" {
		t.Fatalf("expected goals_pending_approval after submissions, got %s", got)
	}

	// Self-assessment is blocked until every goal leaves pending.
	status, env := doJSON(t, w.ts, http.MethodPost, "/api/v1/appraisals/"+w.appraisalID+"/self-assessment", w.employeeToken, map[string]any{
		"content": "Everything went fine this year.",
	}, nil)
	if status != http.StatusConflict {
		t.Fatalf("expected 409 submitting self-assessment with pending goals, got %d", status)
	}
	if env.Error == nil || env.Error.Code != "invalid_transition" {
		t.Fatalf("expected invalid_transition error, got %+v", env.Error)
	}

	approved := approveGoal(t, w.ts, w.employeeToken, w.goal1.ID)
	if approved.ApprovalStatus != "approved" {
		t.Fatalf("expected approved, got %s", approved.ApprovalStatus)
	}
	if got := getAppraisal(t, w.ts, w.adminToken, w.appraisalID).Status; got != "goals_pending_approval" {
		t.Fatalf("expected goals_pending_approval with one goal still pending, got %s", got)
	}

	approveGoal(t, w.ts, w.employeeToken, w.goal2.ID)
	if got := getAppraisal(t, w.ts, w.adminToken, w.appraisalID).Status; got != "goals_approved" {
		t.Fatalf("expected goals_approved once all goals approved, got %s", got)
	}

	status, env = doJSON(t, w.ts, http.MethodPost, "/api/v1/appraisals/"+w.appraisalID+"/self-assessment/start", w.employeeToken, nil, nil)
	if status != http.StatusOK {
		t.Fatalf("start self-assessment failed with %d: %+v", status, env.Error)
	}
	var started map[string]string
	decodeData(t, env, &started)
	if started["status"] != "self_assessment_in_progress" {
		t.Fatalf("expected self_assessment_in_progress, got %s", started["status"])
	}

	status, env = doJSON(t, w.ts, http.MethodPost, "/api/v1/appraisals/"+w.appraisalID+"/self-assessment", w.employeeToken, map[string]any{
		"content": "Delivered the reporting migration ahead of schedule and mentored two juniors.",
	}, nil)
	if status != http.StatusOK {
		t.Fatalf("submit self-assessment failed with %d: %+v", status, env.Error)
	}
	var selfResult map[string]string
	decodeData(t, env, &selfResult)
	if selfResult["status"] != "manager_review" {
		t.Fatalf("expected manager_review after self submission, got %s", selfResult["status"])
	}

	status, env = doJSON(t, w.ts, http.MethodPost, "/api/v1/appraisals/"+w.appraisalID+"/review", w.managerToken, map[string]any{
		"rating":   4,
		"comments": "Strong delivery throughout the year, consistently dependable.",
	}, nil)
	if status != http.StatusOK {
		t.Fatalf("manager review failed with %d: %+v", status, env.Error)
	}
	var reviewResult map[string]string
	decodeData(t, env, &reviewResult)
	if reviewResult["status"] != "completed" {
		t.Fatalf("expected completed on the standard track, got %s", reviewResult["status"])
	}

	status, env = doJSON(t, w.ts, http.MethodPost, "/api/v1/appraisals/"+w.appraisalID+"/acknowledge", w.employeeToken, map[string]any{
		"comments": "Reviewed and agreed.",
	}, nil)
	if status != http.StatusOK {
		t.Fatalf("acknowledge failed with %d: %+v", status, env.Error)
	}

	final := getAppraisal(t, w.ts, w.adminToken, w.appraisalID)
	if final.Status != "completed" {
		t.Fatalf("expected completed after acknowledgement on standard track, got %s", final.Status)
	}
	if !final.Acknowledged {
		t.Fatal("expected appraisal marked acknowledged")
	}

	req, err := http.NewRequest(http.MethodGet, w.ts.URL+"/api/v1/reports/appraisals/"+w.appraisalID+"/export", nil)
	if err != nil {
		t.Fatalf("failed to build export request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+w.adminToken)
	resp, err := w.ts.Client().Do(req)
	if err != nil {
		t.Fatalf("export request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 exporting a completed appraisal, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/pdf" {
		t.Fatalf("expected a PDF response, got %s", ct)
	}
}

func TestMeetingTrackJourney(t *testing.T) {
	w := setupWorld(t, "meeting")

	submitGoal(t, w.ts, w.managerToken, w.goal1.ID)
	submitGoal(t, w.ts, w.managerToken, w.goal2.ID)
	approveGoal(t, w.ts, w.employeeToken, w.goal1.ID)
	approveGoal(t, w.ts, w.employeeToken, w.goal2.ID)

	status, env := doJSON(t, w.ts, http.MethodPost, "/api/v1/appraisals/"+w.appraisalID+"/self-assessment", w.employeeToken, map[string]any{
		"content": "Hit every key result and picked up the on-call rotation.",
	}, nil)
	if status != http.StatusOK {
		t.Fatalf("submit self-assessment failed with %d: %+v", status, env.Error)
	}

	status, env = doJSON(t, w.ts, http.MethodPost, "/api/v1/appraisals/"+w.appraisalID+"/review", w.managerToken, map[string]any{
		"rating":   5,
		"comments": "Outstanding year, exceeded every agreed target.",
	}, nil)
	if status != http.StatusOK {
		t.Fatalf("manager review failed with %d: %+v", status, env.Error)
	}
	var reviewResult map[string]string
	decodeData(t, env, &reviewResult)
	if reviewResult["status"] != "meeting_scheduled" {
		t.Fatalf("expected meeting_scheduled on the meeting track, got %s", reviewResult["status"])
	}

	status, env = doJSON(t, w.ts, http.MethodPost, "/api/v1/appraisals/"+w.appraisalID+"/meeting", w.managerToken, map[string]any{
		"meetingDate": "2026-09-15",
	}, nil)
	if status != http.StatusOK {
		t.Fatalf("schedule meeting failed with %d: %+v", status, env.Error)
	}

	status, env = doJSON(t, w.ts, http.MethodPost, "/api/v1/appraisals/"+w.appraisalID+"/meeting/complete", w.managerToken, nil, nil)
	if status != http.StatusOK {
		t.Fatalf("complete meeting failed with %d: %+v", status, env.Error)
	}
	if got := getAppraisal(t, w.ts, w.adminToken, w.appraisalID).Status; got != "meeting_completed" {
		t.Fatalf("expected meeting_completed, got %s", got)
	}

	// Acknowledging without a body must work; comments are optional.
	status, env = doJSON(t, w.ts, http.MethodPost, "/api/v1/appraisals/"+w.appraisalID+"/acknowledge", w.employeeToken, nil, nil)
	if status != http.StatusOK {
		t.Fatalf("acknowledge without comments failed with %d: %+v", status, env.Error)
	}
	var ackResult map[string]string
	decodeData(t, env, &ackResult)
	if ackResult["status"] != "acknowledged" {
		t.Fatalf("expected acknowledged as the meeting-track terminal status, got %s", ackResult["status"])
	}

	final := getAppraisal(t, w.ts, w.adminToken, w.appraisalID)
	if final.Status != "acknowledged" || !final.Acknowledged {
		t.Fatalf("expected acknowledged appraisal, got status %s acknowledged %v", final.Status, final.Acknowledged)
	}
}
