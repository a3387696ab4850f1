/*
Package store declares the persistence contracts for users and messages.

Drivers live in sub-packages (postgres, sqlite) and translate their native errors into
ErrNotFound and ErrDuplicate so callers never inspect driver types.
*/
package store

import (
	"context"
	"errors"

	"dmchat/internal/app/message"
	"dmchat/internal/app/user"
)

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("store: not found")

	// ErrDuplicate is returned when a unique field (such as email) is already taken.
	ErrDuplicate = errors.New("store: duplicate")
)

// Users persists accounts.
type Users interface {
	// Create inserts u. ID and timestamps are provided by the caller.
	Create(ctx context.Context, u user.User) (user.User, error)

	// Update overwrites full name, profile picture and UpdatedAt of an existing user.
	Update(ctx context.Context, u user.User) (user.User, error)

	FindByID(ctx context.Context, id string) (user.User, error)
	FindByEmail(ctx context.Context, email string) (user.User, error)

	// ListExcept returns every user but id, ordered by full name.
	ListExcept(ctx context.Context, id string) ([]user.User, error)
}

// Messages persists direct messages.
type Messages interface {
	// Create inserts m. ID and CreatedAt are provided by the caller.
	Create(ctx context.Context, m message.Message) (message.Message, error)

	// ListBetween returns the messages exchanged by a and b in either direction,
	// ascending by creation time.
	ListBetween(ctx context.Context, a, b string) ([]message.Message, error)
}

// Store bundles the repositories of one database.
type Store interface {
	Users() Users
	Messages() Messages
	Ping(ctx context.Context) error
	Close() error
}
