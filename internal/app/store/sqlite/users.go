package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"dmchat/internal/app/store"
	"dmchat/internal/app/user"
)

const userColumns = `id, full_name, email, password_hash, profile_pic, created_at, updated_at`

type usersRepo struct {
	db *sql.DB
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (user.User, error) {
	var (
		u                    user.User
		createdAt, updatedAt int64
	)
	if err := row.Scan(&u.ID, &u.FullName, &u.Email, &u.PasswordHash, &u.ProfilePic, &createdAt, &updatedAt); err != nil {
		return user.User{}, err
	}
	u.CreatedAt = fromNanos(createdAt)
	u.UpdatedAt = fromNanos(updatedAt)
	return u, nil
}

func (r *usersRepo) Create(ctx context.Context, u user.User) (user.User, error) {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.FullName, u.Email, u.PasswordHash, u.ProfilePic, toNanos(u.CreatedAt), toNanos(u.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return user.User{}, store.ErrDuplicate
		}
		return user.User{}, fmt.Errorf("insert user: %w", err)
	}
	return r.FindByID(ctx, u.ID)
}

func (r *usersRepo) Update(ctx context.Context, u user.User) (user.User, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET full_name = ?, profile_pic = ?, updated_at = ? WHERE id = ?`,
		u.FullName, u.ProfilePic, toNanos(u.UpdatedAt), u.ID,
	)
	if err != nil {
		return user.User{}, fmt.Errorf("update user: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return user.User{}, fmt.Errorf("update user: %w", err)
	}
	if n == 0 {
		return user.User{}, store.ErrNotFound
	}
	return r.FindByID(ctx, u.ID)
}

func (r *usersRepo) FindByID(ctx context.Context, id string) (user.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

func (r *usersRepo) FindByEmail(ctx context.Context, email string) (user.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
}

func (r *usersRepo) findOne(ctx context.Context, query string, arg string) (user.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return user.User{}, store.ErrNotFound
		}
		return user.User{}, fmt.Errorf("select user: %w", err)
	}
	return u, nil
}

func (r *usersRepo) ListExcept(ctx context.Context, id string) ([]user.User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id <> ? ORDER BY full_name, id`, id)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := []user.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
