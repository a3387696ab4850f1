// Package storetest holds a conformance suite every store driver must pass.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dmchat/internal/app/message"
	"dmchat/internal/app/store"
	"dmchat/internal/app/user"
)

// Run exercises s. Emails are suffixed per run so a shared database can be reused.
func Run(t *testing.T, s store.Store) {
	t.Helper()
	ctx := context.Background()
	run = uuid.NewString()[:8]

	t.Run("ping", func(t *testing.T) {
		require.NoError(t, s.Ping(ctx))
	})

	t.Run("users", func(t *testing.T) { testUsers(t, s.Users()) })
	t.Run("messages", func(t *testing.T) { testMessages(t, s.Users(), s.Messages()) })
}

var run string

func email(local string) string { return local + "+" + run + "@dmchat.test" }

// NewUser returns a user record with fresh id and timestamps.
func NewUser(name, email string) user.User {
	now := time.Now().UTC()
	return user.User{
		ID:           uuid.NewString(),
		FullName:     name,
		Email:        email,
		PasswordHash: "$2a$10$placeholderplaceholderplaceholderplaceholderplace",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func testUsers(t *testing.T, users store.Users) {
	ctx := context.Background()

	alice, err := users.Create(ctx, NewUser("Alice", email("alice")))
	require.NoError(t, err)
	assert.Equal(t, "Alice", alice.FullName)

	t.Run("duplicate email", func(t *testing.T) {
		_, err := users.Create(ctx, NewUser("Other Alice", email("alice")))
		require.ErrorIs(t, err, store.ErrDuplicate)
	})

	t.Run("find by id and email", func(t *testing.T) {
		byID, err := users.FindByID(ctx, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, alice.Email, byID.Email)
		assert.Equal(t, alice.PasswordHash, byID.PasswordHash)

		byEmail, err := users.FindByEmail(ctx, email("alice"))
		require.NoError(t, err)
		assert.Equal(t, alice.ID, byEmail.ID)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := users.FindByID(ctx, uuid.NewString())
		require.ErrorIs(t, err, store.ErrNotFound)

		_, err = users.FindByEmail(ctx, email("nobody"))
		require.ErrorIs(t, err, store.ErrNotFound)

		ghost := NewUser("Ghost", email("ghost"))
		_, err = users.Update(ctx, ghost)
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("update", func(t *testing.T) {
		changed := alice
		changed.ProfilePic = "https://cdn.test/pic.png"
		changed.UpdatedAt = time.Now().UTC().Add(time.Minute)

		updated, err := users.Update(ctx, changed)
		require.NoError(t, err)
		assert.Equal(t, "https://cdn.test/pic.png", updated.ProfilePic)
		assert.Equal(t, alice.Email, updated.Email)
	})

	t.Run("list except", func(t *testing.T) {
		bob, err := users.Create(ctx, NewUser("Bob", email("bob")))
		require.NoError(t, err)

		listed, err := users.ListExcept(ctx, alice.ID)
		require.NoError(t, err)

		ids := make([]string, 0, len(listed))
		for _, u := range listed {
			ids = append(ids, u.ID)
		}
		assert.Contains(t, ids, bob.ID)
		assert.NotContains(t, ids, alice.ID)
	})
}

func testMessages(t *testing.T, users store.Users, messages store.Messages) {
	ctx := context.Background()

	a, err := users.Create(ctx, NewUser("Ann", email("ann")))
	require.NoError(t, err)
	b, err := users.Create(ctx, NewUser("Ben", email("ben")))
	require.NoError(t, err)
	c, err := users.Create(ctx, NewUser("Cal", email("cal")))
	require.NoError(t, err)

	text := func(s string) *string { return &s }
	base := time.Now().UTC()

	send := func(from, to user.User, body string, at time.Time) message.Message {
		m, err := messages.Create(ctx, message.Message{
			ID:         uuid.NewString(),
			SenderID:   from.ID,
			ReceiverID: to.ID,
			Text:       text(body),
			CreatedAt:  at,
		})
		require.NoError(t, err)
		return m
	}

	first := send(a, b, "hi", base)
	second := send(b, a, "hello", base.Add(time.Millisecond))
	third := send(a, b, "how are you", base.Add(2*time.Millisecond))
	send(a, c, "unrelated", base.Add(time.Millisecond))

	image := "https://cdn.test/img.png"
	withImage, err := messages.Create(ctx, message.Message{
		ID:         uuid.NewString(),
		SenderID:   b.ID,
		ReceiverID: a.ID,
		Image:      &image,
		CreatedAt:  base.Add(3 * time.Millisecond),
	})
	require.NoError(t, err)
	assert.Nil(t, withImage.Text)

	listed, err := messages.ListBetween(ctx, a.ID, b.ID)
	require.NoError(t, err)
	require.Len(t, listed, 4)

	assert.Equal(t, first.ID, listed[0].ID)
	assert.Equal(t, second.ID, listed[1].ID)
	assert.Equal(t, third.ID, listed[2].ID)
	assert.Equal(t, withImage.ID, listed[3].ID)

	require.NotNil(t, listed[0].Text)
	assert.Equal(t, "hi", *listed[0].Text)
	assert.Nil(t, listed[0].Image)
	require.NotNil(t, listed[3].Image)
	assert.Equal(t, image, *listed[3].Image)
	assert.WithinDuration(t, base, listed[0].CreatedAt, time.Millisecond)

	reversed, err := messages.ListBetween(ctx, b.ID, a.ID)
	require.NoError(t, err)
	assert.Len(t, reversed, 4)

	none, err := messages.ListBetween(ctx, b.ID, c.ID)
	require.NoError(t, err)
	assert.Empty(t, none)
}
