package auth

import (
	"sync"
	"time"

	"github.com/google/uuid"

	types "github.com/yungbote/recipebook-backend/internal/domain"
	"github.com/yungbote/recipebook-backend/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/recipebook-backend/internal/pkg/errors"
	"github.com/yungbote/recipebook-backend/internal/platform/logger"
)

type memorySessionRepo struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]types.Session
	now      func() time.Time
	log      *logger.Logger
}

// NewMemorySessionRepo keeps sessions in process. Sessions are lost on restart.
func NewMemorySessionRepo(baseLog *logger.Logger) SessionRepo {
	return &memorySessionRepo{
		sessions: map[uuid.UUID]types.Session{},
		now:      time.Now,
		log:      baseLog.With("repo", "MemorySessionRepo"),
	}
}

func (m *memorySessionRepo) Save(_ dbctx.Context, s *types.Session) error {
	if s == nil || s.ID == uuid.Nil {
		return pkgerrors.ErrInvalidArgument
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[s.ID]; ok {
		return pkgerrors.ErrConflict
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = m.now().UTC()
	}
	m.sessions[s.ID] = *s
	return nil
}

func (m *memorySessionRepo) Get(_ dbctx.Context, id uuid.UUID) (*types.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, pkgerrors.ErrNotFound
	}
	if s.Expired(m.now()) {
		delete(m.sessions, id)
		return nil, pkgerrors.ErrNotFound
	}
	return &s, nil
}

func (m *memorySessionRepo) Consume(_ dbctx.Context, id uuid.UUID) (*types.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, pkgerrors.ErrNotFound
	}
	delete(m.sessions, id)
	if s.Expired(m.now()) {
		return nil, pkgerrors.ErrNotFound
	}
	return &s, nil
}

func (m *memorySessionRepo) Delete(_ dbctx.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	now := m.now()
	for k, s := range m.sessions {
		if s.Expired(now) {
			delete(m.sessions, k)
		}
	}
	return nil
}
