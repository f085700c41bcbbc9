package handlers_test

import (
	"bytes"
	"net/http"
	"testing"
)

func TestCycleActivationIdempotencyReplay(t *testing.T) {
	_, ts := newTestServer(t)
	adminToken := login(t, ts, "admin@test.local", "ChangeMe123!")

	manager := createEmployee(t, ts, adminToken, "manager", "")
	createEmployee(t, ts, adminToken, "employee", manager.ID)

	cycleID := createCycle(t, ts, adminToken, "standard")
	key := "activate-" + uniqueSuffix()

	status, first := doJSON(t, ts, http.MethodPost, "/api/v1/cycles/"+cycleID+"/activate", adminToken, map[string]any{}, map[string]string{
		"Idempotency-Key": key,
	})
	if status != http.StatusOK {
		t.Fatalf("activation failed with %d: %+v", status, first.Error)
	}
	var result struct {
		Activation struct {
			Created int `json:"created"`
		} `json:"activation"`
	}
	decodeData(t, first, &result)
	if result.Activation.Created < 2 {
		t.Fatalf("expected at least two appraisals created, got %d", result.Activation.Created)
	}

	status, second := doJSON(t, ts, http.MethodPost, "/api/v1/cycles/"+cycleID+"/activate", adminToken, map[string]any{}, map[string]string{
		"Idempotency-Key": key,
	})
	if status != http.StatusOK {
		t.Fatalf("replayed activation failed with %d: %+v", status, second.Error)
	}
	if !bytes.Equal(first.Data, second.Data) {
		t.Fatalf("expected replay to return the stored response\nfirst:  %s\nsecond: %s", first.Data, second.Data)
	}

	// A fresh key re-runs the sync; everyone already has an appraisal.
	status, third := doJSON(t, ts, http.MethodPost, "/api/v1/cycles/"+cycleID+"/activate", adminToken, map[string]any{}, map[string]string{
		"Idempotency-Key": "activate-" + uniqueSuffix(),
	})
	if status != http.StatusOK {
		t.Fatalf("second activation failed with %d: %+v", status, third.Error)
	}
	decodeData(t, third, &result)
	if result.Activation.Created != 0 {
		t.Fatalf("expected no new appraisals on re-activation, got %d", result.Activation.Created)
	}
}

func TestActivationSkipsOtherDepartments(t *testing.T) {
	_, ts := newTestServer(t)
	adminToken := login(t, ts, "admin@test.local", "ChangeMe123!")

	manager := createEmployee(t, ts, adminToken, "manager", "")
	employee := createEmployee(t, ts, adminToken, "employee", manager.ID)

	cycleID := createCycle(t, ts, adminToken, "standard")
	status, env := doJSON(t, ts, http.MethodPost, "/api/v1/cycles/"+cycleID+"/activate", adminToken, map[string]any{
		"department": "finance",
	}, nil)
	if status != http.StatusOK {
		t.Fatalf("activation failed with %d: %+v", status, env.Error)
	}

	status, env = doJSON(t, ts, http.MethodGet, "/api/v1/appraisals?cycleId="+cycleID+"&employeeId="+employee.ID, adminToken, nil, nil)
	if status != http.StatusOK {
		t.Fatalf("list appraisals failed with %d: %+v", status, env.Error)
	}
	var rows []appraisalRow
	decodeData(t, env, &rows)
	if len(rows) != 0 {
		t.Fatalf("expected no appraisal for an engineering employee in a finance-only activation, got %d", len(rows))
	}
}
