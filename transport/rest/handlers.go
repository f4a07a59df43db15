package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rocketscienceinc/hotseat-tictactoe/internal/apperror"
	"github.com/rocketscienceinc/hotseat-tictactoe/internal/entity"
)

type sessionUseCase interface {
	CreateSession(ctx context.Context) (*entity.Session, error)
	GetSession(ctx context.Context, id string) (*entity.Session, error)
	MakeMove(ctx context.Context, id string, row, column int) (entity.MoveResult, *entity.Session, error)
	ResetRound(ctx context.Context, id string) (*entity.Session, error)
	CloseSession(ctx context.Context, id string) error
}

type eventStream interface {
	ServeSession(writer http.ResponseWriter, req *http.Request, sessionID string)
	Close(sessionID string)
}

// MoveRequest is the body of POST /sessions/{id}/moves.
type MoveRequest struct {
	Row    *int `json:"row"`
	Column *int `json:"column"`
}

// MoveResponse carries the result for applied and rejected moves alike.
type MoveResponse struct {
	Result  entity.MoveResult `json:"result"`
	Session *entity.Session   `json:"session"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type Handlers struct {
	logger   *slog.Logger
	sessions sessionUseCase
	events   eventStream
}

func NewHandlers(logger *slog.Logger, sessions sessionUseCase, events eventStream) *Handlers {
	return &Handlers{
		logger:   logger.With("component", "rest"),
		sessions: sessions,
		events:   events,
	}
}

func (that *Handlers) CreateSession(w http.ResponseWriter, r *http.Request) {
	session, err := that.sessions.CreateSession(r.Context())
	if err != nil {
		that.writeError(w, "CreateSession", err)
		return
	}

	that.writeJSON(w, http.StatusCreated, session)
}

func (that *Handlers) GetSession(w http.ResponseWriter, r *http.Request) {
	session, err := that.sessions.GetSession(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		that.writeError(w, "GetSession", err)
		return
	}

	that.writeJSON(w, http.StatusOK, session)
}

func (that *Handlers) MakeMove(w http.ResponseWriter, r *http.Request) {
	var req MoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		that.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	if req.Row == nil || req.Column == nil {
		that.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "row and column are required"})
		return
	}

	result, session, err := that.sessions.MakeMove(r.Context(), chi.URLParam(r, "id"), *req.Row, *req.Column)
	if err != nil {
		that.writeError(w, "MakeMove", err)
		return
	}

	that.writeJSON(w, http.StatusOK, MoveResponse{Result: result, Session: session})
}

func (that *Handlers) ResetRound(w http.ResponseWriter, r *http.Request) {
	session, err := that.sessions.ResetRound(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		that.writeError(w, "ResetRound", err)
		return
	}

	that.writeJSON(w, http.StatusOK, session)
}

func (that *Handlers) CloseSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := that.sessions.CloseSession(r.Context(), id); err != nil {
		that.writeError(w, "CloseSession", err)
		return
	}

	that.events.Close(id)

	w.WriteHeader(http.StatusNoContent)
}

// Events - upgrades to a WebSocket that streams the session's engine events.
func (that *Handlers) Events(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if _, err := that.sessions.GetSession(r.Context(), id); err != nil {
		that.writeError(w, "Events", err)
		return
	}

	that.events.ServeSession(w, r, id)
}

func (that *Handlers) writeError(w http.ResponseWriter, method string, err error) {
	if errors.Is(err, apperror.ErrSessionNotFound) {
		that.writeJSON(w, http.StatusNotFound, errorResponse{Error: apperror.ErrSessionNotFound.Error()})
		return
	}

	that.logger.Error("request failed", "method", method, "error", err)
	that.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
}

func (that *Handlers) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		that.logger.Error("failed to write response", "error", err)
	}
}
