package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/wricardo/mcp-training/deliverysim/sim/config"
	"github.com/wricardo/mcp-training/deliverysim/sim/planner"
	"github.com/wricardo/mcp-training/deliverysim/sim/service"
	"github.com/wricardo/mcp-training/deliverysim/sim/session"
)

func createTestServer(t *testing.T) *Server {
	t.Helper()
	maps, err := config.NewManager(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create map manager: %v", err)
	}
	tuning := planner.DefaultTuning()
	sessions := session.NewManager(maps, tuning)
	svc := service.NewSimulationService(sessions, maps, tuning)
	return NewServer(svc, nil)
}

func doRequest(t *testing.T, server *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("Failed to encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)
	return rec
}

func createSessionViaAPI(t *testing.T, server *Server) service.SessionInfo {
	t.Helper()
	rec := doRequest(t, server, "POST", "/api/sessions", map[string]interface{}{
		"map_name": "small",
		"strategy": "BFS",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var info service.SessionInfo
	if err := json.Unmarshal(rec.Body.Bytes(), &info); err != nil {
		t.Fatalf("Failed to parse session response: %v", err)
	}
	return info
}

func TestHealthEndpoint(t *testing.T) {
	server := createTestServer(t)

	rec := doRequest(t, server, "GET", "/api/health", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", rec.Code)
	}
}

func TestSessionLifecycle(t *testing.T) {
	server := createTestServer(t)

	info := createSessionViaAPI(t, server)
	if info.MapName != "small" {
		t.Errorf("Expected small map, got %s", info.MapName)
	}
	if info.Strategy != planner.NameBFS {
		t.Errorf("Expected BFS strategy, got %s", info.Strategy)
	}

	rec := doRequest(t, server, "GET", "/api/sessions/"+info.ID, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200 getting session, got %d", rec.Code)
	}

	rec = doRequest(t, server, "GET", "/api/sessions", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200 listing sessions, got %d", rec.Code)
	}
	var list struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("Failed to parse list response: %v", err)
	}
	if list.Count != 1 {
		t.Errorf("Expected 1 session, got %d", list.Count)
	}

	rec = doRequest(t, server, "DELETE", "/api/sessions/"+info.ID, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200 deleting session, got %d", rec.Code)
	}
	rec = doRequest(t, server, "GET", "/api/sessions/"+info.ID, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 after delete, got %d", rec.Code)
	}
}

func TestCreateSessionUnknownMap(t *testing.T) {
	server := createTestServer(t)

	rec := doRequest(t, server, "POST", "/api/sessions", map[string]string{"map_name": "mars"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for unknown map, got %d", rec.Code)
	}
}

func TestTaskAndRunEndpoints(t *testing.T) {
	server := createTestServer(t)
	info := createSessionViaAPI(t, server)

	rec := doRequest(t, server, "POST", "/api/sessions/"+info.ID+"/tasks", map[string]interface{}{
		"package_id":        "P1",
		"pickup_location":   map[string]int{"x": 1, "y": 1},
		"delivery_location": map[string]int{"x": 8, "y": 8},
		"priority":          1,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201 adding task, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, server, "POST", "/api/sessions/"+info.ID+"/step", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200 stepping, got %d", rec.Code)
	}
	var step service.StepResult
	if err := json.Unmarshal(rec.Body.Bytes(), &step); err != nil {
		t.Fatalf("Failed to parse step response: %v", err)
	}
	if !step.Moved {
		t.Error("Expected step to move")
	}

	rec = doRequest(t, server, "POST", "/api/sessions/"+info.ID+"/run", map[string]int{"max_steps": 200})
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200 running, got %d", rec.Code)
	}
	var run service.RunResult
	if err := json.Unmarshal(rec.Body.Bytes(), &run); err != nil {
		t.Fatalf("Failed to parse run response: %v", err)
	}
	if run.Stats.DeliveriesCompleted != 1 {
		t.Errorf("Expected 1 delivery, got %d", run.Stats.DeliveriesCompleted)
	}
}

func TestAddTaskValidationError(t *testing.T) {
	server := createTestServer(t)
	info := createSessionViaAPI(t, server)

	rec := doRequest(t, server, "POST", "/api/sessions/"+info.ID+"/tasks", map[string]interface{}{
		"package_id":        "P1",
		"pickup_location":   map[string]int{"x": 99, "y": 99},
		"delivery_location": map[string]int{"x": 8, "y": 8},
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for out-of-bounds task, got %d", rec.Code)
	}
}

func TestMapsEndpoints(t *testing.T) {
	server := createTestServer(t)

	rec := doRequest(t, server, "GET", "/api/maps", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200 listing maps, got %d", rec.Code)
	}
	var list struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("Failed to parse maps response: %v", err)
	}
	if list.Count != 4 {
		t.Errorf("Expected 4 builtin maps, got %d", list.Count)
	}

	rec = doRequest(t, server, "POST", "/api/maps", nil)
	if rec.Code != http.StatusCreated {
		t.Errorf("Expected 201 creating maps, got %d", rec.Code)
	}
}

func TestCompareEndpoint(t *testing.T) {
	server := createTestServer(t)

	rec := doRequest(t, server, "POST", "/api/compare", map[string]interface{}{
		"map_name": "small",
		"start":    map[string]int{"x": 0, "y": 0},
		"goal":     map[string]int{"x": 9, "y": 9},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200 comparing, got %d: %s", rec.Code, rec.Body.String())
	}
	var result service.CompareResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("Failed to parse compare response: %v", err)
	}
	if len(result.Results) != 4 {
		t.Errorf("Expected 4 algorithm results, got %d", len(result.Results))
	}

	rec = doRequest(t, server, "POST", "/api/compare", map[string]interface{}{})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 without map_name, got %d", rec.Code)
	}
}

func TestRenderEndpoint(t *testing.T) {
	server := createTestServer(t)
	info := createSessionViaAPI(t, server)

	rec := doRequest(t, server, "GET", "/api/sessions/"+info.ID+"/render", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200 rendering, got %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to parse render response: %v", err)
	}
	if body["grid"] == "" {
		t.Error("Expected a non-empty grid rendering")
	}
}

func TestAnalysisEndpointMissingFile(t *testing.T) {
	server := createTestServer(t)

	rec := doRequest(t, server, "GET", "/api/analysis?path=/nonexistent/results.json", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for missing results, got %d", rec.Code)
	}
}
