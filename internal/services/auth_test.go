package services

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/recipebook-backend/internal/data/repos"
	types "github.com/yungbote/recipebook-backend/internal/domain"
	"github.com/yungbote/recipebook-backend/internal/pkg/dbctx"
	"github.com/yungbote/recipebook-backend/internal/platform/apierr"
	"github.com/yungbote/recipebook-backend/internal/platform/ctxutil"
)

func requireAPIError(t *testing.T, err error, status int, code string) {
	t.Helper()
	require.Error(t, err)
	ae, ok := apierr.As(err)
	require.True(t, ok, "expected *apierr.Error, got %T: %v", err, err)
	assert.Equal(t, status, ae.Status)
	assert.Equal(t, code, ae.Code)
}

func TestRegisterAndLogin(t *testing.T) {
	f := newFixture(t)

	res := f.register(t, "alice", "  Alice@Example.com ")
	require.NotNil(t, res.User)
	assert.Equal(t, "alice@example.com", res.User.Email)
	assert.NotEqual(t, "secret1", res.User.Password)
	assert.NotEmpty(t, res.AccessToken)
	assert.NotEmpty(t, res.RefreshToken)

	login, err := f.auth.Login(anon(), LoginInput{Email: "ALICE@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, login.User.ID)

	_, err = f.auth.Login(anon(), LoginInput{Email: "alice@example.com", Password: "wrong-password"})
	requireAPIError(t, err, http.StatusUnauthorized, "invalid_credentials")

	_, err = f.auth.Login(anon(), LoginInput{Email: "nobody@example.com", Password: "secret1"})
	requireAPIError(t, err, http.StatusUnauthorized, "invalid_credentials")

	_, err = f.auth.Login(anon(), LoginInput{Email: "alice@example.com"})
	requireAPIError(t, err, http.StatusBadRequest, "invalid_request")
}

func TestRegisterValidation(t *testing.T) {
	f := newFixture(t)

	_, err := f.auth.Register(anon(), RegisterInput{Username: "bob", Email: "bob@example.com", Password: "123"})
	requireAPIError(t, err, http.StatusBadRequest, "invalid_request")

	_, err = f.auth.Register(anon(), RegisterInput{Email: "bob@example.com", Password: "secret1"})
	requireAPIError(t, err, http.StatusBadRequest, "invalid_request")

	_, err = f.auth.Register(anon(), RegisterInput{Username: "bob", Email: "not-an-email", Password: "secret1"})
	requireAPIError(t, err, http.StatusBadRequest, "invalid_request")

	f.register(t, "bob", "bob@example.com")
	_, err = f.auth.Register(anon(), RegisterInput{Username: "bob2", Email: "BOB@example.com", Password: "secret1"})
	requireAPIError(t, err, http.StatusConflict, "email_taken")
}

func TestSetContextFromToken(t *testing.T) {
	f := newFixture(t)
	res := f.register(t, "carol", "carol@example.com")

	ctx, err := f.auth.SetContextFromToken(context.Background(), res.AccessToken)
	require.NoError(t, err)
	rd := ctxutil.GetRequestData(ctx)
	require.NotNil(t, rd)
	assert.Equal(t, res.User.ID, rd.UserID)
	assert.Equal(t, "carol@example.com", rd.Email)

	_, err = f.auth.SetContextFromToken(context.Background(), res.RefreshToken)
	requireAPIError(t, err, http.StatusUnauthorized, "invalid_token")

	_, err = f.auth.SetContextFromToken(context.Background(), "garbage")
	requireAPIError(t, err, http.StatusUnauthorized, "invalid_token")
}

func TestRefreshRotatesSession(t *testing.T) {
	f := newFixture(t)
	res := f.register(t, "dave", "dave@example.com")

	rotated, err := f.auth.Refresh(anon(), res.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, rotated.User.ID)
	assert.NotEqual(t, res.RefreshToken, rotated.RefreshToken)

	_, err = f.auth.Refresh(anon(), res.RefreshToken)
	requireAPIError(t, err, http.StatusUnauthorized, "invalid_refresh_token")

	_, err = f.auth.Refresh(anon(), res.AccessToken)
	requireAPIError(t, err, http.StatusUnauthorized, "invalid_refresh_token")

	_, err = f.auth.Refresh(anon(), rotated.RefreshToken)
	require.NoError(t, err)
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	f := newFixture(t)
	res := f.register(t, "erin", "erin@example.com")
	other := f.register(t, "frank", "frank@example.com")

	err := f.auth.Logout(callerCtx(other.User.ID), res.RefreshToken)
	requireAPIError(t, err, http.StatusForbidden, "forbidden")

	require.NoError(t, f.auth.Logout(callerCtx(res.User.ID), res.RefreshToken))
	_, err = f.auth.Refresh(anon(), res.RefreshToken)
	requireAPIError(t, err, http.StatusUnauthorized, "invalid_refresh_token")

	// Repeated logout and missing tokens are no-ops.
	require.NoError(t, f.auth.Logout(callerCtx(res.User.ID), res.RefreshToken))
	require.NoError(t, f.auth.Logout(callerCtx(uuid.New()), ""))
}

func TestRefreshConcurrentRotationHasOneWinner(t *testing.T) {
	f := newFixture(t)
	res := f.register(t, "gina", "gina@example.com")

	const racers = 6
	var (
		wg     sync.WaitGroup
		start  = make(chan struct{})
		mu     sync.Mutex
		issued []*AuthResult
		errs   []error
	)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			out, err := f.auth.Refresh(anon(), res.RefreshToken)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			issued = append(issued, out)
		}()
	}
	close(start)
	wg.Wait()

	require.Len(t, issued, 1)
	require.Len(t, errs, racers-1)
	for _, err := range errs {
		requireAPIError(t, err, http.StatusUnauthorized, "invalid_refresh_token")
	}

	_, err := f.auth.Refresh(anon(), issued[0].RefreshToken)
	require.NoError(t, err)
}

// flakySessions fails Save while broken is set.
type flakySessions struct {
	repos.SessionRepo
	mu     sync.Mutex
	broken bool
}

func (fs *flakySessions) setBroken(v bool) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.broken = v
}

func (fs *flakySessions) Save(dbc dbctx.Context, s *types.Session) error {
	fs.mu.Lock()
	broken := fs.broken
	fs.mu.Unlock()
	if broken {
		return errors.New("session store unavailable")
	}
	return fs.SessionRepo.Save(dbc, s)
}

func TestRegisterRollsBackUserWhenSessionSaveFails(t *testing.T) {
	flaky := &flakySessions{broken: true}
	f := newFixtureWithSessions(t, func(inner repos.SessionRepo) repos.SessionRepo {
		flaky.SessionRepo = inner
		return flaky
	})

	in := RegisterInput{Username: "hank", Email: "hank@example.com", Password: "secret1"}
	_, err := f.auth.Register(anon(), in)
	require.Error(t, err)
	_, isAPIErr := apierr.As(err)
	assert.False(t, isAPIErr, "store failures surface as internal errors")

	users, err := f.users.ListUsers(anon())
	require.NoError(t, err)
	assert.Empty(t, users)

	flaky.setBroken(false)
	res, err := f.auth.Register(anon(), in)
	require.NoError(t, err)
	assert.Equal(t, "hank@example.com", res.User.Email)
}
