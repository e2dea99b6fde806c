package user

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

type UserRepo interface {
	Create(dbc dbctx.Context, users []*types.User) ([]*types.User, error)
	GetByIDs(dbc dbctx.Context, userIDs []uuid.UUID) ([]*types.User, error)
	GetByEmails(dbc dbctx.Context, userEmails []string) ([]*types.User, error)
	List(dbc dbctx.Context) ([]*types.User, error)
	EmailExists(dbc dbctx.Context, userEmail string) (bool, error)
	Update(dbc dbctx.Context, u *types.User) error
	DeleteByIDs(dbc dbctx.Context, userIDs []uuid.UUID) error
}

type userRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	repoLog := baseLog.With("repo", "UserRepo")
	return &userRepo{db: db, log: repoLog}
}

func (ur *userRepo) Create(dbc dbctx.Context, users []*types.User) ([]*types.User, error) {
	if len(users) == 0 {
		return []*types.User{}, nil
	}

	now := time.Now().UTC()
	for _, u := range users {
		if u.ID == uuid.Nil {
			u.ID = uuid.New()
		}
		u.Email = types.NormalizeEmail(u.Email)
		if u.CreatedAt.IsZero() {
			u.CreatedAt = now
		}
		u.UpdatedAt = now
	}

	if err := dbc.DB(ur.db).Create(&users).Error; err != nil {
		return nil, db.TranslateError(err)
	}
	return users, nil
}

func (ur *userRepo) GetByIDs(dbc dbctx.Context, userIDs []uuid.UUID) ([]*types.User, error) {
	var results []*types.User
	if len(userIDs) == 0 {
		return results, nil
	}

	if err := dbc.DB(ur.db).
		Where("id IN ?", userIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (ur *userRepo) GetByEmails(dbc dbctx.Context, userEmails []string) ([]*types.User, error) {
	var results []*types.User
	if len(userEmails) == 0 {
		return results, nil
	}

	normalized := make([]string, 0, len(userEmails))
	for _, e := range userEmails {
		normalized = append(normalized, types.NormalizeEmail(e))
	}

	if err := dbc.DB(ur.db).
		Where("email IN ?", normalized).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (ur *userRepo) List(dbc dbctx.Context) ([]*types.User, error) {
	var results []*types.User
	if err := dbc.DB(ur.db).
		Order("created_at ASC").
		Order("username ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (ur *userRepo) EmailExists(dbc dbctx.Context, userEmail string) (bool, error) {
	var count int64
	if err := dbc.DB(ur.db).
		Model(&types.User{}).
		Where("email = ?", types.NormalizeEmail(userEmail)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Update writes username, email and password hash for u.ID.
func (ur *userRepo) Update(dbc dbctx.Context, u *types.User) error {
	if u == nil || u.ID == uuid.Nil {
		return pkgerrors.ErrInvalidArgument
	}
	u.Email = types.NormalizeEmail(u.Email)
	u.UpdatedAt = time.Now().UTC()

	res := dbc.DB(ur.db).
		Model(&types.User{}).
		Where("id = ?", u.ID).
		Updates(map[string]any{
			"username":   u.Username,
			"email":      u.Email,
			"password":   u.Password,
			"updated_at": u.UpdatedAt,
		})
	if res.Error != nil {
		return db.TranslateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return pkgerrors.ErrNotFound
	}
	return nil
}

func (ur *userRepo) DeleteByIDs(dbc dbctx.Context, userIDs []uuid.UUID) error {
	if len(userIDs) == 0 {
		return nil
	}
	return dbc.DB(ur.db).Where("id IN ?", userIDs).Delete(&types.User{}).Error
}
