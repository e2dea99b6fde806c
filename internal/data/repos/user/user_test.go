package user

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/recipebook-backend/internal/data/repos/testutil"
	types "github.com/yungbote/recipebook-backend/internal/domain"
	"github.com/yungbote/recipebook-backend/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/recipebook-backend/internal/pkg/errors"
)

func TestUserRepo(t *testing.T) {
	db := testutil.DB(t)
	repo := NewUserRepo(db, testutil.Logger(t))
	dbc := dbctx.New(context.Background())

	created, err := repo.Create(dbc, []*types.User{
		{
			Username: "alice",
			Email:    "  Alice@Example.com ",
			Password: "pw",
		},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(created) != 1 || created[0].ID == uuid.Nil {
		t.Fatalf("Create: unexpected result: %+v", created)
	}
	if created[0].Email != "alice@example.com" {
		t.Fatalf("Create: email not normalized: %q", created[0].Email)
	}

	gotByIDs, err := repo.GetByIDs(dbc, []uuid.UUID{created[0].ID})
	if err != nil {
		t.Fatalf("GetByIDs: %v", err)
	}
	if len(gotByIDs) != 1 || gotByIDs[0].ID != created[0].ID {
		t.Fatalf("GetByIDs: unexpected result: %+v", gotByIDs)
	}

	gotByEmails, err := repo.GetByEmails(dbc, []string{"ALICE@example.com"})
	if err != nil {
		t.Fatalf("GetByEmails: %v", err)
	}
	if len(gotByEmails) != 1 || gotByEmails[0].ID != created[0].ID {
		t.Fatalf("GetByEmails: unexpected result: %+v", gotByEmails)
	}

	exists, err := repo.EmailExists(dbc, created[0].Email)
	if err != nil {
		t.Fatalf("EmailExists: %v", err)
	}
	if !exists {
		t.Fatalf("EmailExists: expected true")
	}

	exists, err = repo.EmailExists(dbc, "does-not-exist@example.com")
	if err != nil {
		t.Fatalf("EmailExists (missing): %v", err)
	}
	if exists {
		t.Fatalf("EmailExists (missing): expected false")
	}

	all, err := repo.List(dbc)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("List: expected 1 user, got %d", len(all))
	}
}

func TestUserRepoDuplicateEmail(t *testing.T) {
	db := testutil.DB(t)
	repo := NewUserRepo(db, testutil.Logger(t))
	dbc := dbctx.New(context.Background())

	if _, err := repo.Create(dbc, []*types.User{{Username: "a", Email: "dup@example.com", Password: "pw"}}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	_, err := repo.Create(dbc, []*types.User{{Username: "b", Email: "DUP@example.com", Password: "pw"}})
	if !errors.Is(err, pkgerrors.ErrConflict) {
		t.Fatalf("Create duplicate: expected ErrConflict, got %v", err)
	}
}

func TestUserRepoUpdate(t *testing.T) {
	db := testutil.DB(t)
	repo := NewUserRepo(db, testutil.Logger(t))
	ctx := context.Background()
	dbc := dbctx.New(ctx)

	u := testutil.SeedUser(t, ctx, db, "bob@example.com")
	other := testutil.SeedUser(t, ctx, db, "carol@example.com")

	u.Username = "bobby"
	u.Email = "Bobby@Example.com"
	if err := repo.Update(dbc, u); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, err := repo.GetByIDs(dbc, []uuid.UUID{u.ID})
	if err != nil || len(got) != 1 {
		t.Fatalf("GetByIDs after update: %v %+v", err, got)
	}
	if got[0].Username != "bobby" || got[0].Email != "bobby@example.com" {
		t.Fatalf("Update: unexpected row: %+v", got[0])
	}

	u.Email = other.Email
	if err := repo.Update(dbc, u); !errors.Is(err, pkgerrors.ErrConflict) {
		t.Fatalf("Update to taken email: expected ErrConflict, got %v", err)
	}

	missing := &types.User{ID: uuid.New(), Username: "x", Email: "x@example.com"}
	if err := repo.Update(dbc, missing); !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("Update missing: expected ErrNotFound, got %v", err)
	}
}

func TestUserRepoDeleteByIDs(t *testing.T) {
	db := testutil.DB(t)
	repo := NewUserRepo(db, testutil.Logger(t))
	dbc := dbctx.New(context.Background())

	created, err := repo.Create(dbc, []*types.User{
		{Username: "keep", Email: "keep@example.com", Password: "pw"},
		{Username: "drop", Email: "drop@example.com", Password: "pw"},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.DeleteByIDs(dbc, []uuid.UUID{created[1].ID}); err != nil {
		t.Fatalf("DeleteByIDs: %v", err)
	}

	exists, err := repo.EmailExists(dbc, "drop@example.com")
	if err != nil {
		t.Fatalf("EmailExists: %v", err)
	}
	if exists {
		t.Fatalf("EmailExists: deleted user still present")
	}
	all, err := repo.List(dbc)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 1 || all[0].ID != created[0].ID {
		t.Fatalf("List: unexpected result: %+v", all)
	}
	if err := repo.DeleteByIDs(dbc, nil); err != nil {
		t.Fatalf("DeleteByIDs(nil): %v", err)
	}
}
