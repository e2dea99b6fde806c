package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/yungbote/recipebook-backend/internal/data/repos"
	types "github.com/yungbote/recipebook-backend/internal/domain"
	"github.com/yungbote/recipebook-backend/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/recipebook-backend/internal/pkg/errors"
	"github.com/yungbote/recipebook-backend/internal/pkg/validation"
	"github.com/yungbote/recipebook-backend/internal/platform/apierr"
	"github.com/yungbote/recipebook-backend/internal/platform/ctxutil"
	"github.com/yungbote/recipebook-backend/internal/platform/logger"
)

// UpdateUserInput is a partial update; nil fields are left unchanged.
type UpdateUserInput struct {
	Username *string `json:"username" validate:"omitempty,min=1,max=100"`
	Email    *string `json:"email" validate:"omitempty,email,max=254"`
	Password *string `json:"password" validate:"omitempty,min=6,max=72"`
}

type UserService interface {
	ListUsers(dbc dbctx.Context) ([]*types.User, error)
	GetUser(dbc dbctx.Context, userID uuid.UUID) (*types.User, error)
	GetMe(dbc dbctx.Context) (*types.User, error)
	UpdateUser(dbc dbctx.Context, userID uuid.UUID, in UpdateUserInput) (*types.User, error)
}

type userService struct {
	log        *logger.Logger
	userRepo   repos.UserRepo
	bcryptCost int
}

func NewUserService(log *logger.Logger, userRepo repos.UserRepo, bcryptCost int) UserService {
	serviceLog := log.With("service", "UserService")
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &userService{log: serviceLog, userRepo: userRepo, bcryptCost: bcryptCost}
}

func (us *userService) ListUsers(dbc dbctx.Context) ([]*types.User, error) {
	users, err := us.userRepo.List(dbc)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (us *userService) GetUser(dbc dbctx.Context, userID uuid.UUID) (*types.User, error) {
	found, err := us.userRepo.GetByIDs(dbc, []uuid.UUID{userID})
	if err != nil {
		return nil, fmt.Errorf("error fetching user: %w", err)
	}
	if len(found) == 0 || found[0] == nil {
		return nil, apierr.NotFound("user_not_found", errors.New("user does not exist"))
	}
	return found[0], nil
}

func (us *userService) GetMe(dbc dbctx.Context) (*types.User, error) {
	callerID, err := requireCaller(dbc)
	if err != nil {
		us.log.Warn("User id not set in request data")
		return nil, err
	}
	return us.GetUser(dbc, callerID)
}

func (us *userService) UpdateUser(dbc dbctx.Context, userID uuid.UUID, in UpdateUserInput) (*types.User, error) {
	callerID, err := requireCaller(dbc)
	if err != nil {
		return nil, err
	}
	if callerID != userID {
		return nil, apierr.Forbidden("forbidden", errors.New("users can only update themselves"))
	}

	if in.Username != nil {
		trimmed := strings.TrimSpace(*in.Username)
		in.Username = &trimmed
	}
	if in.Email != nil {
		normalized := types.NormalizeEmail(*in.Email)
		in.Email = &normalized
	}
	if vErr := validation.Struct(in); vErr != nil {
		return nil, apierr.BadRequest("invalid_request", vErr)
	}

	user, err := us.GetUser(dbc, userID)
	if err != nil {
		return nil, err
	}

	if in.Username != nil {
		user.Username = *in.Username
	}
	if in.Email != nil && *in.Email != user.Email {
		taken, err := us.userRepo.EmailExists(dbc, *in.Email)
		if err != nil {
			return nil, fmt.Errorf("check email: %w", err)
		}
		if taken {
			return nil, apierr.Conflict("email_taken", errors.New("email already registered"))
		}
		user.Email = *in.Email
	}
	if in.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*in.Password), us.bcryptCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.Password = string(hash)
	}

	if err := us.userRepo.Update(dbc, user); err != nil {
		switch {
		case errors.Is(err, pkgerrors.ErrConflict):
			return nil, apierr.Conflict("email_taken", errors.New("email already registered"))
		case errors.Is(err, pkgerrors.ErrNotFound):
			return nil, apierr.NotFound("user_not_found", errors.New("user does not exist"))
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	us.log.Info("User updated", "user_id", user.ID)
	return user, nil
}

// requireCaller returns the authenticated user id or a 401.
func requireCaller(dbc dbctx.Context) (uuid.UUID, error) {
	rd := ctxutil.GetRequestData(dbc.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		return uuid.Nil, apierr.Unauthorized("unauthorized", errors.New("authentication required"))
	}
	return rd.UserID, nil
}
