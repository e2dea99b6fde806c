package graph

import (
	"time"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/yungbote/recipebook-backend/internal/data/repos"
	types "github.com/yungbote/recipebook-backend/internal/domain"
	"github.com/yungbote/recipebook-backend/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/recipebook-backend/internal/pkg/errors"
	"github.com/yungbote/recipebook-backend/internal/platform/logger"
	"github.com/yungbote/recipebook-backend/internal/platform/neo4jdb"
)

type userStore struct {
	client *neo4jdb.Client
	log    *logger.Logger
}

// NewUserStore keeps users as (:User) nodes. It ignores dbc.Tx.
func NewUserStore(client *neo4jdb.Client, baseLog *logger.Logger) repos.UserRepo {
	return &userStore{client: client, log: baseLog.With("repo", "Neo4jUserStore")}
}

func (s *userStore) Create(dbc dbctx.Context, users []*types.User) ([]*types.User, error) {
	if len(users) == 0 {
		return []*types.User{}, nil
	}
	ctx := dbc.Context()
	now := time.Now().UTC()
	rows := make([]map[string]any, 0, len(users))
	for _, u := range users {
		if u.ID == uuid.Nil {
			u.ID = uuid.New()
		}
		u.Email = types.NormalizeEmail(u.Email)
		if u.CreatedAt.IsZero() {
			u.CreatedAt = now
		}
		u.UpdatedAt = now
		rows = append(rows, userParams(u))
	}

	_, err := runWrite(ctx, s.client, func(tx neo4j.ManagedTransaction) (any, error) {
		return nil, exec(ctx, tx, `
UNWIND $users AS u
CREATE (n:User)
SET n = u
`, map[string]any{"users": rows})
	})
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (s *userStore) queryUsers(dbc dbctx.Context, cypher string, params map[string]any) ([]*types.User, error) {
	ctx := dbc.Context()
	out, err := runRead(ctx, s.client, func(tx neo4j.ManagedTransaction) (any, error) {
		records, err := collect(ctx, tx, cypher, params)
		if err != nil {
			return nil, err
		}
		users := make([]*types.User, 0, len(records))
		for _, rec := range records {
			raw, _ := rec.Get("user")
			u, err := userFromMap(asMap(raw))
			if err != nil {
				return nil, err
			}
			users = append(users, u)
		}
		return users, nil
	})
	if err != nil {
		return nil, err
	}
	return out.([]*types.User), nil
}

func (s *userStore) GetByIDs(dbc dbctx.Context, userIDs []uuid.UUID) ([]*types.User, error) {
	if len(userIDs) == 0 {
		return []*types.User{}, nil
	}
	ids := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		ids = append(ids, id.String())
	}
	return s.queryUsers(dbc, `
MATCH (u:User) WHERE u.id IN $ids
RETURN u {.*} AS user
`, map[string]any{"ids": ids})
}

func (s *userStore) GetByEmails(dbc dbctx.Context, userEmails []string) ([]*types.User, error) {
	if len(userEmails) == 0 {
		return []*types.User{}, nil
	}
	emails := make([]string, 0, len(userEmails))
	for _, e := range userEmails {
		emails = append(emails, types.NormalizeEmail(e))
	}
	return s.queryUsers(dbc, `
MATCH (u:User) WHERE u.email IN $emails
RETURN u {.*} AS user
`, map[string]any{"emails": emails})
}

func (s *userStore) List(dbc dbctx.Context) ([]*types.User, error) {
	return s.queryUsers(dbc, `
MATCH (u:User)
RETURN u {.*} AS user
ORDER BY u.created_at ASC, u.username ASC
`, nil)
}

func (s *userStore) EmailExists(dbc dbctx.Context, userEmail string) (bool, error) {
	found, err := s.GetByEmails(dbc, []string{userEmail})
	if err != nil {
		return false, err
	}
	return len(found) > 0, nil
}

func (s *userStore) Update(dbc dbctx.Context, u *types.User) error {
	if u == nil || u.ID == uuid.Nil {
		return pkgerrors.ErrInvalidArgument
	}
	ctx := dbc.Context()
	u.Email = types.NormalizeEmail(u.Email)
	u.UpdatedAt = time.Now().UTC()

	out, err := runWrite(ctx, s.client, func(tx neo4j.ManagedTransaction) (any, error) {
		records, err := collect(ctx, tx, `
MATCH (u:User {id: $id})
SET u.username = $username,
    u.email = $email,
    u.password = $password,
    u.updated_at = $updated_at
RETURN u.id AS id
`, map[string]any{
			"id":         u.ID.String(),
			"username":   u.Username,
			"email":      u.Email,
			"password":   u.Password,
			"updated_at": u.UpdatedAt,
		})
		if err != nil {
			return nil, err
		}
		return len(records), nil
	})
	if err != nil {
		return err
	}
	if out.(int) == 0 {
		return pkgerrors.ErrNotFound
	}
	return nil
}

// DeleteByIDs removes the users and every edge attached to them.
func (s *userStore) DeleteByIDs(dbc dbctx.Context, userIDs []uuid.UUID) error {
	if len(userIDs) == 0 {
		return nil
	}
	ctx := dbc.Context()
	ids := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		ids = append(ids, id.String())
	}
	_, err := runWrite(ctx, s.client, func(tx neo4j.ManagedTransaction) (any, error) {
		return nil, exec(ctx, tx, `
MATCH (u:User) WHERE u.id IN $ids
DETACH DELETE u
`, map[string]any{"ids": ids})
	})
	return err
}
