package handlers_test

import (
	"net/http"
	"testing"
)

func TestKeyResultUpdateScopedToParentGoal(t *testing.T) {
	w := setupWorld(t, "standard")

	status, env := doJSON(t, w.ts, http.MethodPost, "/api/v1/goals/"+w.goal2.ID+"/key-results", w.managerToken, map[string]any{
		"title":       "Close five enterprise deals",
		"targetValue": 5.0,
		"unit":        "deals",
	}, nil)
	if status != http.StatusCreated {
		t.Fatalf("add key result failed with %d: %+v", status, env.Error)
	}
	var kr struct {
		ID string `json:"id"`
	}
	decodeData(t, env, &kr)

	// A key result addressed through the wrong parent goal must not resolve,
	// even when the caller is allowed to manage the goal in the path.
	status, env = doJSON(t, w.ts, http.MethodPut, "/api/v1/goals/"+w.goal1.ID+"/key-results/"+kr.ID, w.employeeToken, map[string]any{
		"currentValue": 5.0,
	}, nil)
	if status != http.StatusNotFound {
		t.Fatalf("expected 404 for a key result outside the goal, got %d: %+v", status, env.Error)
	}
	if env.Error == nil || env.Error.Code != "not_found" {
		t.Fatalf("expected not_found, got %+v", env.Error)
	}

	var untouched struct {
		Progress float64 `json:"progress"`
	}
	status, env = doJSON(t, w.ts, http.MethodGet, "/api/v1/goals/"+w.goal2.ID, w.employeeToken, nil, nil)
	if status != http.StatusOK {
		t.Fatalf("get goal failed with %d: %+v", status, env.Error)
	}
	decodeData(t, env, &untouched)
	if untouched.Progress != 0 {
		t.Fatalf("expected mismatched update to leave progress at 0, got %v", untouched.Progress)
	}

	var updated struct {
		ID       string  `json:"id"`
		Progress float64 `json:"progress"`
	}
	status, env = doJSON(t, w.ts, http.MethodPut, "/api/v1/goals/"+w.goal2.ID+"/key-results/"+kr.ID, w.employeeToken, map[string]any{
		"currentValue": 5.0,
	}, nil)
	if status != http.StatusOK {
		t.Fatalf("update via the owning goal failed with %d: %+v", status, env.Error)
	}
	decodeData(t, env, &updated)
	if updated.ID != w.goal2.ID || updated.Progress != 100 {
		t.Fatalf("expected goal %s at 100%% progress, got %s at %v", w.goal2.ID, updated.ID, updated.Progress)
	}
}
