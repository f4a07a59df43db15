package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gorilla "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/hotseat-tictactoe/internal/entity"
	"github.com/rocketscienceinc/hotseat-tictactoe/internal/repository"
	"github.com/rocketscienceinc/hotseat-tictactoe/internal/usecase"
	"github.com/rocketscienceinc/hotseat-tictactoe/transport/websocket"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	server, _ := newTestServerWithHub(t)
	return server
}

func newTestServerWithHub(t *testing.T) (*httptest.Server, *websocket.Hub) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	hub := websocket.NewHub(logger, []string{"*"})
	manager := usecase.NewSessionManager(logger, repository.NewMemorySessionRepository(time.Hour), hub)

	server := httptest.NewServer(NewRouter(NewHandlers(logger, manager, hub), []string{"*"}))
	t.Cleanup(server.Close)

	return server, hub
}

func doRequest(t *testing.T, method, url, body string) *http.Response {
	t.Helper()

	req, err := http.NewRequestWithContext(context.Background(), method, url, strings.NewReader(body))
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()

	var value T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&value))
	return value
}

func createSession(t *testing.T, server *httptest.Server) *entity.Session {
	t.Helper()

	resp := doRequest(t, http.MethodPost, server.URL+"/sessions", "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	return decode[*entity.Session](t, resp)
}

func move(t *testing.T, server *httptest.Server, id string, row, column int) MoveResponse {
	t.Helper()

	body, err := json.Marshal(map[string]int{"row": row, "column": column})
	require.NoError(t, err)

	resp := doRequest(t, http.MethodPost, server.URL+"/sessions/"+id+"/moves", string(body))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	return decode[MoveResponse](t, resp)
}

func TestPing(t *testing.T) {
	server := newTestServer(t)

	resp := doRequest(t, http.MethodGet, server.URL+"/ping", "")

	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "pong", string(body))
}

func TestHandlers_Sessions(t *testing.T) {
	t.Run("Created session can be fetched", func(t *testing.T) {
		// Given: a created session
		server := newTestServer(t)
		session := createSession(t, server)

		// When: it is fetched by ID
		resp := doRequest(t, http.MethodGet, server.URL+"/sessions/"+session.ID, "")

		// Then: a fresh round is returned
		require.Equal(t, http.StatusOK, resp.StatusCode)
		fetched := decode[*entity.Session](t, resp)
		assert.Equal(t, session.ID, fetched.ID)
		assert.Equal(t, 1, fetched.State.Turn)
		assert.Equal(t, entity.PlayerA, fetched.State.Player)
		assert.Equal(t, entity.OutcomeNone, fetched.State.Outcome.Kind)
	})

	t.Run("Unknown session is 404", func(t *testing.T) {
		server := newTestServer(t)

		resp := doRequest(t, http.MethodGet, server.URL+"/sessions/missing", "")

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("Closed session is gone", func(t *testing.T) {
		// Given: a created session
		server := newTestServer(t)
		session := createSession(t, server)

		// When: it is deleted
		resp := doRequest(t, http.MethodDelete, server.URL+"/sessions/"+session.ID, "")

		// Then: later reads are 404
		require.Equal(t, http.StatusNoContent, resp.StatusCode)
		resp = doRequest(t, http.MethodGet, server.URL+"/sessions/"+session.ID, "")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestHandlers_MakeMove(t *testing.T) {
	t.Run("Applied move", func(t *testing.T) {
		// Given: a fresh session
		server := newTestServer(t)
		session := createSession(t, server)

		// When: PlayerA plays the centre
		response := move(t, server, session.ID, 1, 1)

		// Then: the result is applied and the session advanced
		assert.Equal(t, entity.MoveApplied, response.Result.Status)
		assert.Equal(t, entity.PlayerA, response.Result.Player)
		assert.Equal(t, 4, response.Result.Cell)
		assert.Equal(t, 2, response.Session.State.Turn)
	})

	t.Run("Rejected move is still 200", func(t *testing.T) {
		// Given: a session where the centre is taken
		server := newTestServer(t)
		session := createSession(t, server)
		move(t, server, session.ID, 1, 1)

		// When: the centre is played again
		response := move(t, server, session.ID, 1, 1)

		// Then: the result says rejected and the turn did not move
		assert.Equal(t, entity.MoveRejected, response.Result.Status)
		assert.Equal(t, entity.ReasonCellOccupied, response.Result.Reason)
		assert.Equal(t, 2, response.Session.State.Turn)
	})

	t.Run("Win then round finished", func(t *testing.T) {
		// Given: a fresh session
		server := newTestServer(t)
		session := createSession(t, server)

		// When: PlayerA completes the top row
		var last MoveResponse
		for _, m := range [][2]int{{0, 0}, {1, 1}, {0, 1}, {2, 2}, {0, 2}} {
			last = move(t, server, session.ID, m[0], m[1])
		}
		after := move(t, server, session.ID, 2, 0)

		// Then: PlayerA wins and further moves are rejected
		assert.Equal(t, entity.OutcomeWin, last.Result.Outcome.Kind)
		assert.Equal(t, entity.PlayerA, last.Result.Outcome.Winner)
		assert.Equal(t, 1, last.Session.State.Scores.PlayerA)
		assert.Equal(t, entity.ReasonRoundFinished, after.Result.Reason)
	})

	t.Run("Malformed body is 400", func(t *testing.T) {
		server := newTestServer(t)
		session := createSession(t, server)

		resp := doRequest(t, http.MethodPost, server.URL+"/sessions/"+session.ID+"/moves", "{")

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("Missing column is 400", func(t *testing.T) {
		server := newTestServer(t)
		session := createSession(t, server)

		resp := doRequest(t, http.MethodPost, server.URL+"/sessions/"+session.ID+"/moves", `{"row":1}`)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("Unknown session is 404", func(t *testing.T) {
		server := newTestServer(t)

		resp := doRequest(t, http.MethodPost, server.URL+"/sessions/missing/moves", `{"row":0,"column":0}`)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestHandlers_ResetRound(t *testing.T) {
	// Given: a session where PlayerA has won
	server := newTestServer(t)
	session := createSession(t, server)
	for _, m := range [][2]int{{0, 0}, {1, 1}, {0, 1}, {2, 2}, {0, 2}} {
		move(t, server, session.ID, m[0], m[1])
	}

	// When: the round is reset
	resp := doRequest(t, http.MethodPost, server.URL+"/sessions/"+session.ID+"/reset", "")

	// Then: the board is empty and the score survives
	require.Equal(t, http.StatusOK, resp.StatusCode)
	reset := decode[*entity.Session](t, resp)
	assert.Equal(t, entity.Board{}, reset.State.Board)
	assert.Equal(t, 1, reset.State.Turn)
	assert.Equal(t, entity.Scoreboard{PlayerA: 1}, reset.State.Scores)
}

func TestHandlers_Events(t *testing.T) {
	t.Run("Streams engine events of the session", func(t *testing.T) {
		// Given: a view connected to the session's event stream
		server, hub := newTestServerWithHub(t)
		session := createSession(t, server)

		url := "ws" + strings.TrimPrefix(server.URL, "http") + "/sessions/" + session.ID + "/events"
		conn, _, err := gorilla.DefaultDialer.Dial(url, nil)
		require.NoError(t, err)
		defer conn.Close()

		require.Eventually(t, func() bool {
			return hub.Subscribers(session.ID) == 1
		}, time.Second, 10*time.Millisecond)

		// When: PlayerA plays the centre
		move(t, server, session.ID, 1, 1)

		// Then: the view received a game:move message
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))

		var message websocket.Message
		require.NoError(t, conn.ReadJSON(&message))
		assert.Equal(t, "game:move", message.Action)
	})

	t.Run("Unknown session is 404", func(t *testing.T) {
		server := newTestServer(t)

		resp := doRequest(t, http.MethodGet, server.URL+"/sessions/missing/events", "")

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

type failingSessions struct {
	mock.Mock
}

func (that *failingSessions) CreateSession(ctx context.Context) (*entity.Session, error) {
	args := that.Called(ctx)
	session, _ := args.Get(0).(*entity.Session)
	return session, args.Error(1)
}

func (that *failingSessions) GetSession(ctx context.Context, id string) (*entity.Session, error) {
	args := that.Called(ctx, id)
	session, _ := args.Get(0).(*entity.Session)
	return session, args.Error(1)
}

func (that *failingSessions) MakeMove(ctx context.Context, id string, row, column int) (entity.MoveResult, *entity.Session, error) {
	args := that.Called(ctx, id, row, column)
	session, _ := args.Get(1).(*entity.Session)
	return args.Get(0).(entity.MoveResult), session, args.Error(2)
}

func (that *failingSessions) ResetRound(ctx context.Context, id string) (*entity.Session, error) {
	args := that.Called(ctx, id)
	session, _ := args.Get(0).(*entity.Session)
	return session, args.Error(1)
}

func (that *failingSessions) CloseSession(ctx context.Context, id string) error {
	return that.Called(ctx, id).Error(0)
}

func TestHandlers_InternalError(t *testing.T) {
	// Given: a use case whose storage is down
	sessions := &failingSessions{}
	sessions.On("CreateSession", mock.Anything).Return(nil, errors.New("redis down")).Once()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handlers := NewHandlers(logger, sessions, websocket.NewHub(logger, nil))

	// When: a session is created
	recorder := httptest.NewRecorder()
	handlers.CreateSession(recorder, httptest.NewRequest(http.MethodPost, "/sessions", bytes.NewReader(nil)))

	// Then: the client gets a 500 without internal details
	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	assert.NotContains(t, recorder.Body.String(), "redis")
	sessions.AssertExpectations(t)
}
