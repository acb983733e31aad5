package repository

import (
	"context"

	"github.com/Shivanand-hulikatti/cinebook/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UserRepository handles persistence for accounts.
type UserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository constructs a UserRepository.
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, name, email, password_hash, role, created_at`

func userDest(u *model.User) []any {
	return []any{&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt}
}

// Create inserts a new account. A duplicate email yields ErrConflict.
func (r *UserRepository) Create(ctx context.Context, u *model.User) error {
	_, err := conn(ctx, r.db).Exec(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES ($1, $2, $3, $4, $5, $6)`,
		u.ID, u.Name, u.Email, u.PasswordHash, u.Role, u.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return model.ErrConflict
		}
		return storeErr("insert user", err)
	}
	return nil
}

// GetByEmail returns the account registered under email or ErrNotFound.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	err := conn(ctx, r.db).QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email,
	).Scan(userDest(&u)...)
	if err != nil {
		return nil, lookupErr("get user", err)
	}
	return &u, nil
}

// GetByID returns an account or ErrNotFound.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	err := conn(ctx, r.db).QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id,
	).Scan(userDest(&u)...)
	if err != nil {
		return nil, lookupErr("get user", err)
	}
	return &u, nil
}

// List returns every account ordered by name.
func (r *UserRepository) List(ctx context.Context) ([]model.User, error) {
	rows, err := conn(ctx, r.db).Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY name ASC`)
	if err != nil {
		return nil, storeErr("list users", err)
	}
	users, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.User, error) {
		var u model.User
		err := row.Scan(userDest(&u)...)
		return u, err
	})
	if err != nil {
		return nil, storeErr("scan users", err)
	}
	return users, nil
}

// UpdateRole changes an account's role.
func (r *UserRepository) UpdateRole(ctx context.Context, id string, role model.Role) error {
	tag, err := conn(ctx, r.db).Exec(ctx, `UPDATE users SET role = $1 WHERE id = $2`, role, id)
	if err != nil {
		if isInvalidUUID(err) {
			return model.ErrNotFound
		}
		return storeErr("update role", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}

// Delete removes an account and its bookings. Events it organised become
// administrator-owned.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	tag, err := conn(ctx, r.db).Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		if isInvalidUUID(err) {
			return model.ErrNotFound
		}
		return storeErr("delete user", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}
