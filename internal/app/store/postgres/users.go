package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"dmchat/internal/app/store"
	"dmchat/internal/app/user"
)

const userColumns = `id, full_name, email, password_hash, profile_pic, created_at, updated_at`

type usersRepo struct {
	pool *pgxpool.Pool
}

func scanUser(row pgx.Row) (user.User, error) {
	var u user.User
	err := row.Scan(&u.ID, &u.FullName, &u.Email, &u.PasswordHash, &u.ProfilePic, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

func (r *usersRepo) Create(ctx context.Context, u user.User) (user.User, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+userColumns,
		u.ID, u.FullName, u.Email, u.PasswordHash, u.ProfilePic, u.CreatedAt, u.UpdatedAt,
	)

	created, err := scanUser(row)
	if err != nil {
		if isUniqueViolation(err) {
			return user.User{}, store.ErrDuplicate
		}
		return user.User{}, fmt.Errorf("insert user: %w", err)
	}
	return created, nil
}

func (r *usersRepo) Update(ctx context.Context, u user.User) (user.User, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE users
		SET full_name = $2, profile_pic = $3, updated_at = $4
		WHERE id = $1
		RETURNING `+userColumns,
		u.ID, u.FullName, u.ProfilePic, u.UpdatedAt,
	)

	updated, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, store.ErrNotFound
		}
		return user.User{}, fmt.Errorf("update user: %w", err)
	}
	return updated, nil
}

func (r *usersRepo) FindByID(ctx context.Context, id string) (user.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *usersRepo) FindByEmail(ctx context.Context, email string) (user.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *usersRepo) findOne(ctx context.Context, query string, arg string) (user.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, store.ErrNotFound
		}
		return user.User{}, fmt.Errorf("select user: %w", err)
	}
	return u, nil
}

func (r *usersRepo) ListExcept(ctx context.Context, id string) ([]user.User, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+userColumns+` FROM users WHERE id <> $1 ORDER BY full_name, id`, id)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	users, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (user.User, error) {
		return scanUser(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scan users: %w", err)
	}
	return users, nil
}
