package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/yungbote/recipebook-backend/internal/data/repos"
	types "github.com/yungbote/recipebook-backend/internal/domain"
	"github.com/yungbote/recipebook-backend/internal/observability"
	"github.com/yungbote/recipebook-backend/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/recipebook-backend/internal/pkg/errors"
	"github.com/yungbote/recipebook-backend/internal/pkg/validation"
	"github.com/yungbote/recipebook-backend/internal/platform/apierr"
	"github.com/yungbote/recipebook-backend/internal/platform/ctxutil"
	"github.com/yungbote/recipebook-backend/internal/platform/logger"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

type AuthConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	BcryptCost    int
}

type RegisterInput struct {
	Username string `json:"username" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type AuthResult struct {
	User         *types.User `json:"user"`
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
	ExpiresAt    time.Time   `json:"expiresAt"`
}

type JWTClaims struct {
	Email string `json:"email,omitempty"`
	Type  string `json:"typ"`
	jwt.RegisteredClaims
}

type AuthService interface {
	Register(dbc dbctx.Context, in RegisterInput) (*AuthResult, error)
	Login(dbc dbctx.Context, in LoginInput) (*AuthResult, error)
	Refresh(dbc dbctx.Context, refreshToken string) (*AuthResult, error)
	Logout(dbc dbctx.Context, refreshToken string) error
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	RefreshTTL() time.Duration
}

type authService struct {
	log         *logger.Logger
	userRepo    repos.UserRepo
	sessionRepo repos.SessionRepo
	metrics     *observability.Metrics
	cfg         AuthConfig
	now         func() time.Time
}

func NewAuthService(
	log *logger.Logger,
	userRepo repos.UserRepo,
	sessionRepo repos.SessionRepo,
	metrics *observability.Metrics,
	cfg AuthConfig,
) AuthService {
	serviceLog := log.With("service", "AuthService")
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = 24 * time.Hour
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = 7 * 24 * time.Hour
	}
	return &authService{
		log:         serviceLog,
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		metrics:     metrics,
		cfg:         cfg,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (as *authService) RefreshTTL() time.Duration { return as.cfg.RefreshTTL }

func (as *authService) Register(dbc dbctx.Context, in RegisterInput) (res *AuthResult, err error) {
	defer func() { as.metrics.IncAuthEvent("register", err) }()

	in.Username = strings.TrimSpace(in.Username)
	in.Email = types.NormalizeEmail(in.Email)
	if vErr := validation.Struct(in); vErr != nil {
		return nil, apierr.BadRequest("invalid_request", vErr)
	}

	exists, err := as.userRepo.EmailExists(dbc, in.Email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return nil, apierr.Conflict("email_taken", errors.New("email already registered"))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), as.cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	created, err := as.userRepo.Create(dbc, []*types.User{{
		Username: in.Username,
		Email:    in.Email,
		Password: string(hash),
	}})
	if err != nil {
		if errors.Is(err, pkgerrors.ErrConflict) {
			return nil, apierr.Conflict("email_taken", errors.New("email already registered"))
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	user := created[0]

	res, err = as.issueTokens(dbc, user)
	if err != nil {
		// Undo the account so the email can be registered again.
		if delErr := as.userRepo.DeleteByIDs(dbc, []uuid.UUID{user.ID}); delErr != nil {
			as.log.Error("Rollback of registered user failed", "user_id", user.ID, "error", delErr)
		}
		return nil, err
	}
	as.log.Info("User registered", "user_id", user.ID)
	return res, nil
}

func (as *authService) Login(dbc dbctx.Context, in LoginInput) (res *AuthResult, err error) {
	defer func() { as.metrics.IncAuthEvent("login", err) }()

	in.Email = types.NormalizeEmail(in.Email)
	if vErr := validation.Struct(in); vErr != nil {
		return nil, apierr.BadRequest("invalid_request", vErr)
	}

	invalid := apierr.Unauthorized("invalid_credentials", errors.New("invalid email or password"))
	users, err := as.userRepo.GetByEmails(dbc, []string{in.Email})
	if err != nil {
		return nil, fmt.Errorf("load user by email: %w", err)
	}
	if len(users) == 0 || users[0] == nil {
		return nil, invalid
	}
	user := users[0]
	if cmpErr := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)); cmpErr != nil {
		return nil, invalid
	}
	return as.issueTokens(dbc, user)
}

// Refresh rotates a refresh token: the presented jti is consumed and a new pair issued.
func (as *authService) Refresh(dbc dbctx.Context, refreshToken string) (res *AuthResult, err error) {
	defer func() { as.metrics.IncAuthEvent("refresh", err) }()

	invalid := apierr.Unauthorized("invalid_refresh_token", errors.New("refresh token is invalid or expired"))
	claims, err := as.parseToken(refreshToken, as.cfg.RefreshSecret, tokenTypeRefresh)
	if err != nil {
		return nil, invalid
	}
	jti, err := uuid.Parse(claims.ID)
	if err != nil {
		return nil, invalid
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, invalid
	}

	// Only the request that removes the jti may mint the next pair.
	session, err := as.sessionRepo.Consume(dbc, jti)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrNotFound) {
			return nil, invalid
		}
		return nil, fmt.Errorf("consume session: %w", err)
	}
	if session.UserID != userID {
		as.log.Warn("Refresh token subject does not match session", "user_id", userID)
		return nil, invalid
	}

	users, err := as.userRepo.GetByIDs(dbc, []uuid.UUID{userID})
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if len(users) == 0 || users[0] == nil {
		return nil, invalid
	}
	return as.issueTokens(dbc, users[0])
}

// Logout revokes the refresh token's session if it still parses. Unknown or
// expired tokens are not an error.
func (as *authService) Logout(dbc dbctx.Context, refreshToken string) (err error) {
	defer func() { as.metrics.IncAuthEvent("logout", err) }()

	if strings.TrimSpace(refreshToken) == "" {
		return nil
	}
	claims, pErr := as.parseToken(refreshToken, as.cfg.RefreshSecret, tokenTypeRefresh)
	if pErr != nil {
		as.log.Debug("Logout with unparseable refresh token", "error", pErr)
		return nil
	}
	jti, pErr := uuid.Parse(claims.ID)
	if pErr != nil {
		return nil
	}
	if callerID := ctxutil.UserID(dbc.Context()); callerID != uuid.Nil && claims.Subject != callerID.String() {
		return apierr.Forbidden("forbidden", errors.New("refresh token belongs to another user"))
	}
	if err := as.sessionRepo.Delete(dbc, jti); err != nil && !errors.Is(err, pkgerrors.ErrNotFound) {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

// SetContextFromToken validates an access token and stores the caller in the
// returned context's RequestData.
func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	claims, err := as.parseToken(tokenString, as.cfg.AccessSecret, tokenTypeAccess)
	if err != nil {
		return ctx, apierr.Unauthorized("invalid_token", err)
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ctx, apierr.Unauthorized("invalid_token", fmt.Errorf("invalid subject: %w", err))
	}
	rd := &ctxutil.RequestData{
		UserID:      userID,
		Email:       claims.Email,
		AccessToken: tokenString,
	}
	return ctxutil.WithRequestData(ctx, rd), nil
}

func (as *authService) issueTokens(dbc dbctx.Context, user *types.User) (*AuthResult, error) {
	now := as.now()
	accessExp := now.Add(as.cfg.AccessTTL)
	accessToken, err := as.sign(as.cfg.AccessSecret, &JWTClaims{
		Email: user.Email,
		Type:  tokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(accessExp),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	session := &types.Session{
		ID:        uuid.New(),
		UserID:    user.ID,
		ExpiresAt: now.Add(as.cfg.RefreshTTL),
		CreatedAt: now,
	}
	refreshToken, err := as.sign(as.cfg.RefreshSecret, &JWTClaims{
		Type: tokenTypeRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        session.ID.String(),
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}
	if err := as.sessionRepo.Save(dbc, session); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	return &AuthResult{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    accessExp,
	}, nil
}

func (as *authService) sign(secret string, claims *JWTClaims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func (as *authService) parseToken(tokenString, secret, wantType string) (*JWTClaims, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return nil, errors.New("missing token")
	}
	claims := &JWTClaims{}
	token, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(t *jwt.Token) (interface{}, error) { return []byte(secret), nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(as.now),
	)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.Type != wantType {
		return nil, fmt.Errorf("unexpected token type %q", claims.Type)
	}
	return claims, nil
}
