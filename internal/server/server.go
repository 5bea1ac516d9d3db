package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/knah1d/gomokuAI/internal/config"
	"github.com/knah1d/gomokuAI/internal/engine"
	"github.com/knah1d/gomokuAI/internal/game"
)

type Server struct {
	session *game.Session
	eng     *engine.Engine
	cfg     *config.Config
	log     *zap.SugaredLogger
	hub     *Hub
}

func New(session *game.Session, eng *engine.Engine, cfg *config.Config, log *zap.SugaredLogger) *Server {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Server{
		session: session,
		eng:     eng,
		cfg:     cfg,
		log:     log,
		hub:     NewHub(),
	}
}

func (s *Server) Hub() *Hub {
	return s.hub
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/api/ping", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})
	r.Get("/api/status", s.handleStatus)
	r.Post("/api/move", s.handleMove)
	r.Post("/api/reset", s.handleReset)
	r.Get("/api/settings", s.handleGetSettings)
	r.Post("/api/settings", s.handleUpdateSettings)
	r.Get("/api/cache/tt", s.handleTTStatus)
	r.Delete("/api/cache/tt", s.handleTTClear)
	r.Get("/ws", s.serveWS)

	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Infow("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"elapsed", time.Since(start),
			"requestId", middleware.GetReqID(r.Context()),
		)
	})
}

func (s *Server) status() StatusResponse {
	return statusFromSnapshot(s.session.Snapshot())
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.status())
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	var payload moveRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	move := engine.Move{X: payload.X, Y: payload.Y}
	if err := s.session.ApplyHumanMove(move); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	// The AI answers within the same request so the caller always sees
	// the position it has to play from.
	if s.session.CurrentPlayerIsAI() {
		if _, err := s.session.PlayAITurn(); err != nil {
			s.log.Errorw("ai turn failed", "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "ai move failed"})
			return
		}
	}
	status := s.status()
	s.broadcastStatus(status)
	writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	settings := s.session.Settings()
	if r.Body != nil && r.ContentLength != 0 {
		var payload resetRequest
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
			return
		}
		settings = settingsForMode(payload, settings)
	}
	s.session.Reset(settings)
	status := s.status()
	s.broadcastReset(status)
	writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.settingsResponse())
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var payload settingsRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	if payload.Weights != nil {
		s.eng.SetWeights(*payload.Weights)
	}
	if payload.TimeBudgetMs != nil {
		if *payload.TimeBudgetMs <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "time_budget_ms must be positive"})
			return
		}
		s.session.UpdateTimeBudget(time.Duration(*payload.TimeBudgetMs) * time.Millisecond)
	}
	writeJSON(w, http.StatusOK, s.settingsResponse())
}

func (s *Server) handleTTStatus(w http.ResponseWriter, r *http.Request) {
	tt := s.eng.TT()
	resp := ttCacheStatusResponse{}
	if tt != nil {
		resp.Count = tt.Count()
		resp.Capacity = tt.Capacity()
		if resp.Capacity > 0 {
			resp.Usage = float64(resp.Count) / float64(resp.Capacity)
			resp.Full = resp.Count >= resp.Capacity
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTTClear(w http.ResponseWriter, r *http.Request) {
	if tt := s.eng.TT(); tt != nil {
		tt.Clear()
	}
	writeJSON(w, http.StatusOK, map[string]any{"cleared": true})
}

func (s *Server) settingsResponse() settingsResponse {
	settings := s.session.Settings()
	return settingsResponse{
		Mode:         modeForSettings(settings),
		TimeBudgetMs: int(settings.AITimeBudget / time.Millisecond),
		Weights:      s.eng.Weights(),
	}
}

func (s *Server) broadcastStatus(status StatusResponse) {
	select {
	case s.hub.broadcastStatus <- status:
	default:
	}
}

func (s *Server) broadcastReset(status StatusResponse) {
	select {
	case s.hub.broadcastReset <- status:
	default:
	}
}

func settingsForMode(req resetRequest, base game.Settings) game.Settings {
	settings := base
	switch req.Mode {
	case "ai_vs_ai":
		settings.BlackType = game.PlayerAI
		settings.WhiteType = game.PlayerAI
	case "human_vs_human":
		settings.BlackType = game.PlayerHuman
		settings.WhiteType = game.PlayerHuman
	case "human_vs_ai":
		if req.HumanPlayer == 2 {
			settings.BlackType = game.PlayerAI
			settings.WhiteType = game.PlayerHuman
		} else {
			settings.BlackType = game.PlayerHuman
			settings.WhiteType = game.PlayerAI
		}
	}
	return settings
}

func modeForSettings(settings game.Settings) string {
	switch {
	case settings.BlackType == game.PlayerAI && settings.WhiteType == game.PlayerAI:
		return "ai_vs_ai"
	case settings.BlackType == game.PlayerHuman && settings.WhiteType == game.PlayerHuman:
		return "human_vs_human"
	default:
		return "human_vs_ai"
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
