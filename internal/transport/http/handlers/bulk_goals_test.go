package handlers_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/xuri/excelize/v2"
)

func bulkWorkbook(t *testing.T, rows ...[]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	header := []any{
		"employee_email", "title", "description", "category", "priority",
		"start_date", "target_date", "key_result_1", "key_result_2", "key_result_3",
	}
	if err := f.SetSheetRow("Sheet1", "A1", &header); err != nil {
		t.Fatalf("failed to write header: %v", err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			t.Fatalf("failed to name cell: %v", err)
		}
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatalf("failed to write row: %v", err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("failed to serialize workbook: %v", err)
	}
	return buf.Bytes()
}

func uploadWorkbook(t *testing.T, ts *httptest.Server, token string, workbook []byte) (int, envelope) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "goals.xlsx")
	if err != nil {
		t.Fatalf("failed to build form file: %v", err)
	}
	if _, err := part.Write(workbook); err != nil {
		t.Fatalf("failed to write form file: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("failed to close form: %v", err)
	}

	req, err := http.NewRequest(http.MethodPost, ts.URL+"/api/v1/goals/bulk/upload", &body)
	if err != nil {
		t.Fatalf("failed to build upload request: %v", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatalf("upload request failed: %v", err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("failed to decode upload response: %v", err)
	}
	return resp.StatusCode, env
}

func TestBulkGoalUpload(t *testing.T) {
	w := setupWorld(t, "standard")

	workbook := bulkWorkbook(t,
		[]any{w.employee.Email, "Quarterly platform reliability push", "Cut pager load", "project", "high", "2026-02-01", "2026-11-30", "Reduce incidents by half", "Automate the runbook", ""},
		[]any{"nobody@example.com", "Goal for a ghost", "", "", "", "2026-02-01", "2026-11-30", "", "", ""},
	)

	status, env := uploadWorkbook(t, w.ts, w.managerToken, workbook)
	if status != http.StatusCreated {
		t.Fatalf("expected 201 for a partially successful upload, got %d: %+v", status, env.Error)
	}
	var result struct {
		Created int `json:"created"`
		Skipped int `json:"skipped"`
		Errors  []struct {
			Row     int    `json:"row"`
			Message string `json:"message"`
		} `json:"errors"`
	}
	decodeData(t, env, &result)
	if result.Created != 1 {
		t.Fatalf("expected one goal created, got %d", result.Created)
	}
	if len(result.Errors) != 1 || result.Errors[0].Row != 3 {
		t.Fatalf("expected the unknown-email row reported, got %+v", result.Errors)
	}

	status, env = doJSON(t, w.ts, http.MethodGet, "/api/v1/goals?employeeId="+w.employee.ID, w.managerToken, nil, nil)
	if status != http.StatusOK {
		t.Fatalf("goal listing failed with %d: %+v", status, env.Error)
	}
	var goals []struct {
		ID    string `json:"id"`
		Title string `json:"title"`
	}
	decodeData(t, env, &goals)
	imported := ""
	for _, g := range goals {
		if g.Title == "Quarterly platform reliability push" {
			imported = g.ID
		}
	}
	if imported == "" {
		t.Fatal("expected the imported goal in the employee's listing")
	}

	status, env = doJSON(t, w.ts, http.MethodGet, "/api/v1/goals/"+imported+"/key-results", w.managerToken, nil, nil)
	if status != http.StatusOK {
		t.Fatalf("key result listing failed with %d: %+v", status, env.Error)
	}
	var keyResults []struct {
		Title string `json:"title"`
	}
	decodeData(t, env, &keyResults)
	if len(keyResults) != 2 {
		t.Fatalf("expected two seeded key results, got %d", len(keyResults))
	}
}

func TestBulkGoalUploadScopedToOwnTeam(t *testing.T) {
	w := setupWorld(t, "standard")

	// A second manager with no reports cannot assign into another team.
	outsider := createEmployee(t, w.ts, w.adminToken, "manager", "")
	outsiderToken := login(t, w.ts, outsider.Email, testPassword)

	workbook := bulkWorkbook(t,
		[]any{w.employee.Email, "Goal from the wrong manager", "", "", "", "2026-02-01", "2026-11-30", "", "", ""},
	)
	status, env := uploadWorkbook(t, w.ts, outsiderToken, workbook)
	if status != http.StatusOK {
		t.Fatalf("expected 200 with zero imports, got %d: %+v", status, env.Error)
	}
	var result struct {
		Created int `json:"created"`
		Errors  []struct {
			Row     int    `json:"row"`
			Message string `json:"message"`
		} `json:"errors"`
	}
	decodeData(t, env, &result)
	if result.Created != 0 || len(result.Errors) != 1 {
		t.Fatalf("expected the row rejected, got %+v", result)
	}
}

func TestBulkGoalTemplate(t *testing.T) {
	w := setupWorld(t, "standard")

	req, err := http.NewRequest(http.MethodGet, w.ts.URL+"/api/v1/goals/bulk/template", nil)
	if err != nil {
		t.Fatalf("failed to build template request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+w.managerToken)
	resp, err := w.ts.Client().Do(req)
	if err != nil {
		t.Fatalf("template request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 template download, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" {
		t.Fatalf("expected an xlsx response, got %s", ct)
	}

	// Employees cannot assign goals, so no template either.
	status, env := doJSON(t, w.ts, http.MethodGet, "/api/v1/goals/bulk/template", w.employeeToken, nil, nil)
	if status != http.StatusForbidden {
		t.Fatalf("expected 403 for employee template download, got %d", status)
	}
	if env.Error == nil || env.Error.Code != "forbidden" {
		t.Fatalf("expected forbidden, got %+v", env.Error)
	}
}
