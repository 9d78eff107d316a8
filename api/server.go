package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/wricardo/mcp-training/deliverysim/sim/agent"
	"github.com/wricardo/mcp-training/deliverysim/sim/engine"
	"github.com/wricardo/mcp-training/deliverysim/sim/service"
	"github.com/wricardo/mcp-training/deliverysim/transport/websocket"
)

// DefaultResultsPath is where experiment runs are persisted unless the
// request says otherwise.
const DefaultResultsPath = "experiment_results.json"

// Server represents the REST API server
type Server struct {
	service service.SimulationService
	hub     *websocket.Hub
	router  *mux.Router
}

// NewServer creates a new API server
func NewServer(simService service.SimulationService, hub *websocket.Hub) *Server {
	s := &Server{
		service: simService,
		hub:     hub,
		router:  mux.NewRouter(),
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	// Session management
	api.HandleFunc("/sessions", s.handleCreateSession).Methods("POST")
	api.HandleFunc("/sessions", s.handleListSessions).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleGetSession).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleDeleteSession).Methods("DELETE")

	// Simulation operations
	api.HandleFunc("/sessions/{id}/tasks", s.handleAddTask).Methods("POST")
	api.HandleFunc("/sessions/{id}/step", s.handleStep).Methods("POST")
	api.HandleFunc("/sessions/{id}/run", s.handleRun).Methods("POST")
	api.HandleFunc("/sessions/{id}/render", s.handleRender).Methods("GET")

	// Maps
	api.HandleFunc("/maps", s.handleListMaps).Methods("GET")
	api.HandleFunc("/maps", s.handleCreateMaps).Methods("POST")

	// Benchmarks
	api.HandleFunc("/compare", s.handleCompare).Methods("POST")
	api.HandleFunc("/experiment", s.handleExperiment).Methods("POST")
	api.HandleFunc("/analysis", s.handleAnalysis).Methods("GET")

	// Health
	api.HandleFunc("/health", s.handleHealth).Methods("GET")

	// WebSocket
	s.router.HandleFunc("/ws", s.handleWebSocket)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// Session Handlers

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req service.CreateSessionRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	info, err := s.service.CreateSession(r.Context(), req)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	log.Printf("[API] session=%s created map=%s strategy=%s", info.ID, info.MapName, info.Strategy)
	respondJSON(w, http.StatusCreated, info)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	infos, err := s.service.ListSessions(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"sessions": infos,
		"count":    len(infos),
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	info, err := s.service.GetSession(r.Context(), sessionID)
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, info)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	if err := s.service.DeleteSession(r.Context(), sessionID); err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "Session deleted",
		"id":      sessionID,
	})
}

// Simulation Handlers

func (s *Server) handleAddTask(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var task agent.DeliveryTask
	if err := json.NewDecoder(r.Body).Decode(&task); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	info, err := s.service.AddTask(r.Context(), sessionID, task)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if s.hub != nil {
		s.hub.BroadcastToSession(sessionID, info)
	}

	log.Printf("[API] session=%s task=%s pickup=(%d,%d) delivery=(%d,%d) priority=%d",
		sessionID, task.PackageID, task.PickupLocation.X, task.PickupLocation.Y,
		task.DeliveryLocation.X, task.DeliveryLocation.Y, task.Priority)
	respondJSON(w, http.StatusCreated, info)
}

func (s *Server) handleStep(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	result, err := s.service.Step(r.Context(), sessionID)
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	if s.hub != nil {
		s.hub.BroadcastToSession(sessionID, result)
	}

	log.Printf("[STEP] session=%s pos=(%d,%d) status=%s fuel=%.1f clock=%d",
		sessionID, result.AgentState.Position.X, result.AgentState.Position.Y,
		result.Status, result.AgentState.Fuel, result.Clock)
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req struct {
		MaxSteps int `json:"max_steps,omitempty"`
	}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	result, err := s.service.Run(r.Context(), sessionID, req.MaxSteps)
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	if s.hub != nil {
		s.hub.BroadcastToSession(sessionID, result)
	}

	log.Printf("[RUN] session=%s steps=%d deliveries=%d replans=%d status=%s",
		sessionID, result.Stats.SimulationSteps, result.Stats.DeliveriesCompleted,
		result.Stats.ReplanningEvents, result.Status)
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	view, err := s.service.RenderSession(r.Context(), sessionID)
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"id":   sessionID,
		"grid": view,
	})
}

// Map Handlers

func (s *Server) handleListMaps(w http.ResponseWriter, r *http.Request) {
	maps, err := s.service.ListMaps(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"maps":  maps,
		"count": len(maps),
	})
}

func (s *Server) handleCreateMaps(w http.ResponseWriter, r *http.Request) {
	paths, err := s.service.CreateMaps(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Maps created",
		"files":   paths,
	})
}

// Benchmark Handlers

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MapName string          `json:"map_name"`
		Start   engine.Position `json:"start"`
		Goal    engine.Position `json:"goal"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.MapName == "" {
		respondError(w, http.StatusBadRequest, "map_name is required")
		return
	}

	result, err := s.service.Compare(r.Context(), req.MapName, req.Start, req.Goal)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	log.Printf("[COMPARE] map=%s (%d,%d)->(%d,%d) best=%s",
		req.MapName, req.Start.X, req.Start.Y, req.Goal.X, req.Goal.Y, result.Best)
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleExperiment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ResultsPath string `json:"results_path,omitempty"`
	}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}
	if req.ResultsPath == "" {
		req.ResultsPath = DefaultResultsPath
	}

	result, err := s.service.RunExperiment(r.Context(), req.ResultsPath)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	resultsPath := r.URL.Query().Get("path")
	if resultsPath == "" {
		resultsPath = DefaultResultsPath
	}

	report, err := s.service.Analyze(r.Context(), resultsPath)
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, report)
}

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

// WebSocket Handler

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		http.Error(w, "session parameter required", http.StatusBadRequest)
		return
	}

	// Verify session exists
	if _, err := s.service.GetSession(context.Background(), sessionID); err != nil {
		http.Error(w, "Invalid session", http.StatusNotFound)
		return
	}

	s.hub.ServeWS(w, r, sessionID)
}
