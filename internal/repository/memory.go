package repository

import (
	"context"
	"sync"
	"time"

	"github.com/rocketscienceinc/hotseat-tictactoe/internal/apperror"
	"github.com/rocketscienceinc/hotseat-tictactoe/internal/entity"
)

type memorySession struct {
	session   entity.Session
	expiresAt time.Time
}

type memSession struct {
	mu       sync.Mutex
	sessions map[string]memorySession
	ttl      time.Duration
	now      func() time.Time
}

// NewMemorySessionRepository - process-local store with the same expiry rules as the Redis one.
func NewMemorySessionRepository(ttl time.Duration) SessionRepository {
	return &memSession{
		sessions: make(map[string]memorySession),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Save - stores the session and drops every entry whose TTL has run out.
func (that *memSession) Save(_ context.Context, session *entity.Session) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	now := that.now()
	that.sweep(now)

	that.sessions[session.ID] = memorySession{
		session:   copySession(session),
		expiresAt: now.Add(that.ttl),
	}

	return nil
}

func (that *memSession) GetByID(_ context.Context, id string) (*entity.Session, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	stored, ok := that.lookup(id)
	if !ok {
		return nil, apperror.ErrSessionNotFound
	}

	session := copySession(&stored.session)
	return &session, nil
}

func (that *memSession) DeleteByID(_ context.Context, id string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if _, ok := that.lookup(id); !ok {
		return apperror.ErrSessionNotFound
	}

	delete(that.sessions, id)

	return nil
}

// lookup drops the entry when it has expired. The caller holds mu.
func (that *memSession) lookup(id string) (memorySession, bool) {
	stored, ok := that.sessions[id]
	if !ok {
		return memorySession{}, false
	}

	if that.expired(stored, that.now()) {
		delete(that.sessions, id)
		return memorySession{}, false
	}

	return stored, true
}

// sweep removes abandoned sessions. The caller holds mu.
func (that *memSession) sweep(now time.Time) {
	if that.ttl <= 0 {
		return
	}

	for id, stored := range that.sessions {
		if that.expired(stored, now) {
			delete(that.sessions, id)
		}
	}
}

func (that *memSession) expired(stored memorySession, now time.Time) bool {
	return that.ttl > 0 && !now.Before(stored.expiresAt)
}

func copySession(session *entity.Session) entity.Session {
	cp := *session
	if session.State.Outcome.Line != nil {
		cp.State.Outcome.Line = append([]int(nil), session.State.Outcome.Line...)
	}
	return cp
}
