package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rocketscienceinc/hotseat-tictactoe/internal/entity"
	"github.com/rocketscienceinc/hotseat-tictactoe/internal/pkg"
	"github.com/rocketscienceinc/hotseat-tictactoe/internal/tictactoe"
)

type sessionRepo interface {
	Save(ctx context.Context, session *entity.Session) error
	GetByID(ctx context.Context, id string) (*entity.Session, error)
	DeleteByID(ctx context.Context, id string) error
}

type eventPublisher interface {
	Publish(sessionID string, event tictactoe.Event)
}

// SessionManager hosts one engine per hot-seat session. Engines are rebuilt
// from the stored snapshot on every call, so the manager itself keeps no game state.
type SessionManager struct {
	logger      *slog.Logger
	sessionRepo sessionRepo
	publisher   eventPublisher

	locksMutex sync.Mutex
	locks      map[string]*sessionLock

	now func() time.Time
}

func NewSessionManager(logger *slog.Logger, sessionRepo sessionRepo, publisher eventPublisher) *SessionManager {
	return &SessionManager{
		logger:      logger.With("component", "session_manager"),
		sessionRepo: sessionRepo,
		publisher:   publisher,
		locks:       make(map[string]*sessionLock),
		now:         time.Now,
	}
}

// CreateSession - opens a new table with an empty board and zero scores.
func (that *SessionManager) CreateSession(ctx context.Context) (*entity.Session, error) {
	now := that.now()

	session := &entity.Session{
		ID:        pkg.GenerateSessionID(),
		State:     tictactoe.NewEngine(nil).State(),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := that.sessionRepo.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	that.logger.Info("session created", "session", session.ID)

	return session, nil
}

func (that *SessionManager) GetSession(ctx context.Context, id string) (*entity.Session, error) {
	session, err := that.sessionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return session, nil
}

// MakeMove - applies (row, column) to the session's round. A rejected move is
// a normal result: it comes back with a nil error and the session is not saved.
func (that *SessionManager) MakeMove(ctx context.Context, id string, row, column int) (entity.MoveResult, *entity.Session, error) {
	log := that.logger.With("method", "MakeMove", "session", id)

	unlock := that.lock(id)
	defer unlock()

	session, err := that.sessionRepo.GetByID(ctx, id)
	if err != nil {
		return entity.MoveResult{}, nil, fmt.Errorf("failed to get session: %w", err)
	}

	var events []tictactoe.Event
	engine := tictactoe.Restore(session.State, collect(&events))

	result := engine.ApplyMove(row, column)
	if !result.IsApplied() {
		log.Debug("move rejected", "row", row, "column", column, "reason", result.Reason)
		return result, session, nil
	}

	if err = that.save(ctx, session, engine); err != nil {
		return entity.MoveResult{}, nil, err
	}

	that.publish(id, events)

	if result.Outcome.IsFinished() {
		log.Info("round finished", "outcome", result.Outcome.Kind, "winner", result.Outcome.Winner)
	}

	return result, session, nil
}

// ResetRound - clears the board for another round; scores are kept.
func (that *SessionManager) ResetRound(ctx context.Context, id string) (*entity.Session, error) {
	unlock := that.lock(id)
	defer unlock()

	session, err := that.sessionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var events []tictactoe.Event
	engine := tictactoe.Restore(session.State, collect(&events))
	engine.Reset()

	if err = that.save(ctx, session, engine); err != nil {
		return nil, err
	}

	that.publish(id, events)

	return session, nil
}

func (that *SessionManager) CloseSession(ctx context.Context, id string) error {
	unlock := that.lock(id)
	defer unlock()

	if err := that.sessionRepo.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	that.logger.Info("session closed", "session", id)

	return nil
}

// sessionLock is dropped from the map once no caller holds or waits for it.
type sessionLock struct {
	mu   sync.Mutex
	refs int
}

// lock serializes moves and resets of one session.
func (that *SessionManager) lock(id string) func() {
	that.locksMutex.Lock()
	l, ok := that.locks[id]
	if !ok {
		l = &sessionLock{}
		that.locks[id] = l
	}
	l.refs++
	that.locksMutex.Unlock()

	l.mu.Lock()

	return func() {
		l.mu.Unlock()

		that.locksMutex.Lock()
		l.refs--
		if l.refs == 0 {
			delete(that.locks, id)
		}
		that.locksMutex.Unlock()
	}
}

func (that *SessionManager) save(ctx context.Context, session *entity.Session, engine *tictactoe.Engine) error {
	session.State = engine.State()
	session.UpdatedAt = that.now()

	if err := that.sessionRepo.Save(ctx, session); err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}

	return nil
}

// publish runs after the snapshot is stored, so views never see a state that was not saved.
func (that *SessionManager) publish(id string, events []tictactoe.Event) {
	if that.publisher == nil {
		return
	}

	for _, event := range events {
		that.publisher.Publish(id, event)
	}
}

func collect(events *[]tictactoe.Event) tictactoe.Notifier {
	return tictactoe.NotifierFunc(func(event tictactoe.Event) {
		*events = append(*events, event)
	})
}
