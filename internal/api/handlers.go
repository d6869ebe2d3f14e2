// Package api exposes HTTP handlers for the routine engine.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"example.com/routine/internal/domain"
	"example.com/routine/internal/engine"
)

// Handler coordinates HTTP requests with the engine.
type Handler struct {
	engine *engine.Engine
	tasks  domain.TaskRepository
}

// NewHandler builds a Handler.
func NewHandler(eng *engine.Engine, tasks domain.TaskRepository) *Handler {
	return &Handler{engine: eng, tasks: tasks}
}

// RegisterRoutes wires endpoints to the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/routines/recalculate", h.recalculate)
	mux.HandleFunc("/v1/routines/", h.routineSubresource)
	mux.HandleFunc("/v1/cycles/scan-eligibility", h.scanEligibility)
	mux.HandleFunc("/v1/cycles/routine-eligibility", h.routineEligibility)
	mux.HandleFunc("/v1/cycles/complete", h.completeCycle)
	mux.HandleFunc("/healthz", healthz)
}

// healthz reports a simple OK status for container health checks.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) routineSubresource(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/routines/")
	parts := strings.Split(rest, "/")
	if parts[0] == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "missing routine id")
		return
	}
	routineID := parts[0]

	switch {
	case len(parts) == 2 && parts[1] == "reschedule" && r.Method == http.MethodPost:
		h.reschedule(w, r, routineID)
	case len(parts) == 2 && parts[1] == "extend" && r.Method == http.MethodPost:
		h.extend(w, r, routineID)
	case len(parts) == 2 && parts[1] == "schedule" && r.Method == http.MethodGet:
		h.schedule(w, r, routineID)
	case len(parts) == 3 && parts[1] == "occurrences" && r.Method == http.MethodDelete:
		h.deleteOccurrence(w, r, routineID, parts[2])
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

func (h *Handler) reschedule(w http.ResponseWriter, r *http.Request, routineID string) {
	var req RescheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}

	if err := h.engine.Reschedule(r.Context(), routineID, req.DaysOffset); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, RescheduleResponse{RoutineID: routineID, DaysOffset: req.DaysOffset})
}

func (h *Handler) extend(w http.ResponseWriter, r *http.Request, routineID string) {
	var req ExtendRoutineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}

	priorities := make([]engine.ConcernPriority, 0, len(req.Priorities))
	for _, p := range req.Priorities {
		priorities = append(priorities, engine.ConcernPriority{Concern: p.Concern, Priority: p.Priority})
	}

	err := h.engine.ExtendRoutine(r.Context(), routineID, req.Allocations, req.Start, req.End, req.EarliestStarts, priorities)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ExtendRoutineResponse{RoutineID: routineID, Activities: len(req.Allocations)})
}

func (h *Handler) recalculate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	var req RecalculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	if len(req.RoutineIDs) == 0 {
		writeError(w, http.StatusBadRequest, "validation_failed", "routine_ids is required")
		return
	}

	if err := h.engine.Recalculate(r.Context(), req.RoutineIDs...); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, RecalculateResponse{Recalculated: len(req.RoutineIDs)})
}

func (h *Handler) deleteOccurrence(w http.ResponseWriter, r *http.Request, routineID, taskID string) {
	if taskID == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "missing occurrence id")
		return
	}

	if err := h.engine.DeleteOccurrence(r.Context(), routineID, taskID); err != nil {
		writeEngineError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) schedule(w http.ResponseWriter, r *http.Request, routineID string) {
	tasks, err := h.tasks.ListByRoutine(r.Context(), routineID)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	schedule := engine.ScheduleFromTasks(tasks)
	days := make([]ScheduleDayView, 0, len(schedule))
	for _, day := range schedule.Days() {
		entries := make([]ScheduleEntryView, 0, len(schedule[day]))
		for _, entry := range schedule[day] {
			entries = append(entries, ScheduleEntryView{
				Key:          entry.Key,
				Concern:      entry.Concern,
				OccurrenceID: entry.OccurrenceID,
			})
		}
		days = append(days, ScheduleDayView{Day: day, Entries: entries})
	}
	writeJSON(w, http.StatusOK, ScheduleResponse{RoutineID: routineID, Days: days})
}

func (h *Handler) scanEligibility(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	userID := r.URL.Query().Get("user_id")
	if strings.TrimSpace(userID) == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "missing user_id parameter")
		return
	}
	analyzed := splitParts(r.URL.Query().Get("analyzed_parts"))

	gate, err := h.engine.CanStartScan(r.Context(), userID, analyzed)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toGateView(gate))
}

func (h *Handler) routineEligibility(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	userID := r.URL.Query().Get("user_id")
	if strings.TrimSpace(userID) == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "missing user_id parameter")
		return
	}
	part := r.URL.Query().Get("part")
	scanned := splitParts(r.URL.Query().Get("scanned_parts"))

	gate, err := h.engine.CanStartRoutine(r.Context(), userID, part, scanned)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toGateView(gate))
}

func (h *Handler) completeCycle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	var req CompleteCycleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	cycleType := domain.CycleType(req.CycleType)
	if err := h.engine.AdvanceCadence(r.Context(), req.UserID, cycleType, req.Parts); err != nil {
		writeEngineError(w, err)
		return
	}

	// Streaks only advance on completed routine cycles, in the user's local day.
	if cycleType == domain.CycleRoutine {
		loc, err := time.LoadLocation(req.Timezone)
		if err != nil {
			writeError(w, http.StatusBadRequest, "validation_failed", "unknown timezone")
			return
		}
		for _, part := range req.Parts {
			if err := h.engine.AdvanceStreak(r.Context(), req.UserID, part, loc); err != nil {
				writeEngineError(w, err)
				return
			}
		}
	}
	writeJSON(w, http.StatusOK, CompleteCycleResponse{UserID: req.UserID, Parts: req.Parts})
}

// CompleteCycleRequest is the payload for POST /v1/cycles/complete.
type CompleteCycleRequest struct {
	UserID    string   `json:"user_id"`
	CycleType string   `json:"cycle_type"`
	Parts     []string `json:"parts"`
	Timezone  string   `json:"timezone"`
}

// Validate ensures request correctness.
func (r CompleteCycleRequest) Validate() error {
	if strings.TrimSpace(r.UserID) == "" {
		return errors.New("user_id is required")
	}
	switch domain.CycleType(r.CycleType) {
	case domain.CycleScan, domain.CycleRoutine:
	default:
		return errors.New("cycle_type must be scan or routine")
	}
	if len(r.Parts) == 0 {
		return errors.New("parts is required")
	}
	return nil
}

// CompleteCycleResponse acknowledges an advanced cadence.
type CompleteCycleResponse struct {
	UserID string   `json:"user_id"`
	Parts  []string `json:"parts"`
}

// RescheduleRequest is the payload for POST /v1/routines/{id}/reschedule.
type RescheduleRequest struct {
	DaysOffset int `json:"days_offset"`
}

// RescheduleResponse acknowledges a shift.
type RescheduleResponse struct {
	RoutineID  string `json:"routine_id"`
	DaysOffset int    `json:"days_offset"`
}

// ConcernPriorityView ranks a concern for schedule trimming.
type ConcernPriorityView struct {
	Concern  string `json:"concern"`
	Priority int    `json:"priority"`
}

// ExtendRoutineRequest is the payload for POST /v1/routines/{id}/extend.
type ExtendRoutineRequest struct {
	Allocations    []domain.Allocation   `json:"allocations"`
	Start          time.Time             `json:"start"`
	End            time.Time             `json:"end"`
	EarliestStarts map[string]time.Time  `json:"earliest_starts,omitempty"`
	Priorities     []ConcernPriorityView `json:"priorities,omitempty"`
}

// ExtendRoutineResponse acknowledges an extension.
type ExtendRoutineResponse struct {
	RoutineID  string `json:"routine_id"`
	Activities int    `json:"activities"`
}

// RecalculateRequest is the payload for POST /v1/routines/recalculate.
type RecalculateRequest struct {
	RoutineIDs []string `json:"routine_ids"`
}

// RecalculateResponse reports how many routines were submitted.
type RecalculateResponse struct {
	Recalculated int `json:"recalculated"`
}

// GateView is the response body for eligibility checks.
type GateView struct {
	Allowed  bool       `json:"allowed"`
	NextDate *time.Time `json:"next_date,omitempty"`
}

// ScheduleEntryView is one occurrence within a day.
type ScheduleEntryView struct {
	Key          string `json:"key"`
	Concern      string `json:"concern"`
	OccurrenceID string `json:"occurrence_id"`
}

// ScheduleDayView groups a day's occurrences.
type ScheduleDayView struct {
	Day     string              `json:"day"`
	Entries []ScheduleEntryView `json:"entries"`
}

// ScheduleResponse is the derived day-keyed view of a routine.
type ScheduleResponse struct {
	RoutineID string            `json:"routine_id"`
	Days      []ScheduleDayView `json:"days"`
}

func toGateView(gate engine.Gate) GateView {
	return GateView{Allowed: gate.Allowed, NextDate: gate.NextDate}
}

func splitParts(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func writeEngineError(w http.ResponseWriter, err error) {
	switch domain.KindOf(err) {
	case domain.KindValidation:
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
	case domain.KindNotFound:
		writeError(w, http.StatusNotFound, "not_found", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
	}
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	payload := map[string]string{
		"type":   code,
		"detail": detail,
	}
	writeJSON(w, status, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
