// Package server hosts the story engine over a JSON API. Each run lives in
// its own session, keyed by a generated ID; sessions share nothing, so
// concurrent players never touch the same run state.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tatianab/cosmic-tales/internal/engine"
	"github.com/tatianab/cosmic-tales/internal/report"
	"github.com/tatianab/cosmic-tales/internal/story"
)

// App holds the host's state: the controller and the live sessions.
type App struct {
	ctrl       *engine.Controller
	mu         sync.Mutex
	sessions   map[string]*session
	sessionTTL time.Duration
}

// session serializes access to its run. engine.Run is single-caller state,
// so every read or mutation of run goes through mu; lastSeen stays under the
// App lock with the session table.
type session struct {
	mu       sync.Mutex
	module   *story.Module
	run      *engine.Run
	lastSeen time.Time
}

// NewApp creates the host.
func NewApp(ctrl *engine.Controller, sessionTTL time.Duration) *App {
	return &App{
		ctrl:       ctrl,
		sessions:   make(map[string]*session),
		sessionTTL: sessionTTL,
	}
}

// Routes registers the API on a fresh mux.
func (a *App) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/stories", a.ListStories)
	mux.HandleFunc("POST /api/runs", a.NewRun)
	mux.HandleFunc("GET /api/runs/{id}", a.GetRun)
	mux.HandleFunc("POST /api/runs/{id}/choices", a.ApplyChoice)
	mux.HandleFunc("GET /api/runs/{id}/report", a.GetReport)
	mux.HandleFunc("POST /api/runs/{id}/restart", a.Restart)
	return mux
}

// StartEviction starts a background goroutine that drops idle sessions.
func (a *App) StartEviction(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				a.evictSessions(time.Now())
			}
		}
	}()
}

func (a *App) evictSessions(now time.Time) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for id, s := range a.sessions {
		if now.Sub(s.lastSeen) > a.sessionTTL {
			delete(a.sessions, id)
			slog.Info("evicted idle session", "session", id)
		}
	}
}

type storyInfo struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Scoring string `json:"scoring"`
	Nodes   int    `json:"nodes"`
}

// ListStories returns the bundled story modules.
func (a *App) ListStories(w http.ResponseWriter, r *http.Request) {
	modules := story.Modules()
	out := make([]storyInfo, 0, len(modules))
	for _, m := range modules {
		out = append(out, storyInfo{
			ID:      m.ID,
			Title:   m.Title,
			Scoring: m.Scoring.String(),
			Nodes:   len(m.Graph.Nodes),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

type newRunRequest struct {
	Story string `json:"story"`
}

type choiceRequest struct {
	Choice int `json:"choice"`
}

type nodeView struct {
	Key         string            `json:"key"`
	Text        string            `json:"text"`
	Choices     []choiceView      `json:"choices"`
	VisualState map[string]string `json:"visualState,omitempty"`
}

type choiceView struct {
	Text        string `json:"text"`
	Description string `json:"description,omitempty"`
}

type runView struct {
	ID            string   `json:"id"`
	Story         string   `json:"story"`
	Ended         bool     `json:"ended"`
	DecisionCount int      `json:"decisionCount"`
	Node          nodeView `json:"node"`
}

// NewRun starts a run of the requested story in a fresh session.
func (a *App) NewRun(w http.ResponseWriter, r *http.Request) {
	var req newRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	m, err := story.Load(req.Story)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	run, err := a.ctrl.StartRun(m)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	id := uuid.New().String()
	a.mu.Lock()
	a.sessions[id] = &session{module: m, run: run, lastSeen: time.Now()}
	a.mu.Unlock()

	slog.Info("run started", "session", id, "story", m.ID)
	a.respondRun(w, http.StatusCreated, id)
}

// GetRun returns the current node and run status.
func (a *App) GetRun(w http.ResponseWriter, r *http.Request) {
	a.respondRun(w, http.StatusOK, r.PathValue("id"))
}

// ApplyChoice applies a choice index to the session's run.
func (a *App) ApplyChoice(w http.ResponseWriter, r *http.Request) {
	var req choiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id := r.PathValue("id")
	s, ok := a.touch(id)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown session")
		return
	}

	s.mu.Lock()
	err := a.ctrl.ApplyChoice(s.module, s.run, req.Choice)
	s.mu.Unlock()
	if err != nil {
		switch {
		case errors.Is(err, engine.ErrRunEnded):
			writeError(w, http.StatusConflict, err.Error())
		case errors.Is(err, engine.ErrChoiceOutOfRange):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	a.respondRun(w, http.StatusOK, id)
}

// GetReport returns the end-of-run report; 409 while the run is still in
// progress.
func (a *App) GetReport(w http.ResponseWriter, r *http.Request) {
	s, ok := a.touch(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown session")
		return
	}
	s.mu.Lock()
	if !engine.IsEnded(s.run) {
		s.mu.Unlock()
		writeError(w, http.StatusConflict, "run still in progress")
		return
	}
	rep := report.Compute(s.module, s.run)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, rep)
}

// Restart replaces the session's run with a fresh one of the same story.
func (a *App) Restart(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	s, ok := a.touch(id)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown session")
		return
	}

	run, err := a.ctrl.Restart(s.module)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.mu.Lock()
	s.run = run
	s.mu.Unlock()

	a.respondRun(w, http.StatusOK, id)
}

func (a *App) touch(id string) (*session, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	s, ok := a.sessions[id]
	if ok {
		s.lastSeen = time.Now()
	}
	return s, ok
}

func (a *App) respondRun(w http.ResponseWriter, status int, id string) {
	s, ok := a.touch(id)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown session")
		return
	}

	s.mu.Lock()
	node, err := a.ctrl.CurrentNode(s.module, s.run)
	if err != nil {
		s.mu.Unlock()
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	choices := make([]choiceView, 0, len(node.Choices))
	for _, c := range node.Choices {
		choices = append(choices, choiceView{Text: c.Text, Description: c.Description})
	}
	view := runView{
		ID:            id,
		Story:         s.run.Story,
		Ended:         s.run.Ended,
		DecisionCount: len(s.run.Decisions),
		Node: nodeView{
			Key:         s.run.CurrentKey,
			Text:        node.Text,
			Choices:     choices,
			VisualState: node.VisualState,
		},
	}
	s.mu.Unlock()

	writeJSON(w, status, view)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
