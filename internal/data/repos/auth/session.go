package auth

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/recipebook-backend/internal/data/db"
	types "github.com/yungbote/recipebook-backend/internal/domain"
	"github.com/yungbote/recipebook-backend/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/recipebook-backend/internal/pkg/errors"
	"github.com/yungbote/recipebook-backend/internal/platform/logger"
)

// SessionRepo tracks live refresh tokens by jti. Get and Consume return
// ErrNotFound for missing and expired sessions alike.
type SessionRepo interface {
	Save(dbc dbctx.Context, s *types.Session) error
	Get(dbc dbctx.Context, id uuid.UUID) (*types.Session, error)
	// Consume removes a live session and returns it. Of several concurrent
	// calls for one id, exactly one succeeds.
	Consume(dbc dbctx.Context, id uuid.UUID) (*types.Session, error)
	Delete(dbc dbctx.Context, id uuid.UUID) error
}

type sessionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSessionRepo(db *gorm.DB, baseLog *logger.Logger) SessionRepo {
	repoLog := baseLog.With("repo", "SessionRepo")
	return &sessionRepo{db: db, log: repoLog}
}

func (sr *sessionRepo) Save(dbc dbctx.Context, s *types.Session) error {
	if s == nil || s.ID == uuid.Nil {
		return pkgerrors.ErrInvalidArgument
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	return db.TranslateError(dbc.DB(sr.db).Create(s).Error)
}

func (sr *sessionRepo) Get(dbc dbctx.Context, id uuid.UUID) (*types.Session, error) {
	var results []*types.Session
	if err := dbc.DB(sr.db).
		Where("id = ? AND expires_at > ?", id, time.Now().UTC()).
		Limit(1).
		Find(&results).Error; err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, pkgerrors.ErrNotFound
	}
	return results[0], nil
}

func (sr *sessionRepo) Consume(dbc dbctx.Context, id uuid.UUID) (*types.Session, error) {
	s, err := sr.Get(dbc, id)
	if err != nil {
		return nil, err
	}
	res := dbc.DB(sr.db).
		Where("id = ? AND expires_at > ?", id, time.Now().UTC()).
		Delete(&types.Session{})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected != 1 {
		return nil, pkgerrors.ErrNotFound
	}
	return s, nil
}

func (sr *sessionRepo) Delete(dbc dbctx.Context, id uuid.UUID) error {
	transaction := dbc.DB(sr.db)
	if err := transaction.Where("id = ?", id).Delete(&types.Session{}).Error; err != nil {
		return err
	}
	// Opportunistic sweep so the table does not grow without bound.
	return transaction.Where("expires_at <= ?", time.Now().UTC()).Delete(&types.Session{}).Error
}
