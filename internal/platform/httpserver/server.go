package httpserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"voteboard/vote"
	domainerrors "voteboard/vote/domain/errors"
	votehttp "voteboard/vote/transport/http"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const greeting = "Hello, I am the api service"

type Server struct {
	mux    *http.ServeMux
	logger *slog.Logger
	addr   string
	votes  vote.Module
}

func New(votes vote.Module, logger *slog.Logger, addr string) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:    http.NewServeMux(),
		logger: logger,
		addr:   addr,
		votes:  votes,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.Handler())
}

// Handler wraps the mux with request-id tagging so every access log line can
// be correlated.
func (s *Server) Handler() http.Handler {
	return s.withRequestID(s.mux)
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /api", s.handleGreeting)
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.Handle("GET /metrics", promhttp.Handler())

	// /api/vote dispatches on method itself so anything that is neither a
	// submission nor a tally read gets the 404 + empty-object fallback.
	s.mux.HandleFunc("/api/vote", s.handleVote)
}

func (s *Server) handleGreeting(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(greeting))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleVote(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleSubmitVote(w, r)
	case http.MethodGet:
		s.handleTally(w, r)
	default:
		writeJSON(w, http.StatusNotFound, map[string]any{})
	}
}

func (s *Server) handleSubmitVote(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_form", "request body must be form-encoded")
		return
	}
	values, fieldSet := r.PostForm["vote"]
	choice := ""
	if fieldSet && len(values) > 0 {
		choice = values[0]
	}

	resp, err := s.votes.Handler.SubmitVoteHandler(r.Context(), choice, fieldSet)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTally(w http.ResponseWriter, r *http.Request) {
	rows, err := s.votes.Handler.TallyHandler(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := strings.TrimSpace(r.Header.Get("X-Request-Id"))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", requestID)
		s.logger.Info("request received",
			"event", "http_request_received",
			"module", "internal/platform/httpserver",
			"layer", "platform",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", requestID,
		)
		next.ServeHTTP(w, r)
	})
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domainerrors.ErrMissingVote):
		writeError(w, http.StatusBadRequest, "missing_vote_field", err.Error())
	case errors.Is(err, domainerrors.ErrStorageUnavailable):
		writeError(w, http.StatusServiceUnavailable, "storage_unavailable", err.Error())
	case errors.Is(err, domainerrors.ErrDuplicateVoter):
		writeError(w, http.StatusInternalServerError, "duplicate_voter", err.Error())
	case errors.Is(err, domainerrors.ErrTallyUnsupported):
		writeError(w, http.StatusNotImplemented, "tally_unsupported", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, votehttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
