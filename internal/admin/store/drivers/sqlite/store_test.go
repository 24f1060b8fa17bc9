package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/wardenhq/warden/internal/admin/domain"
	"github.com/wardenhq/warden/internal/admin/store"
	"github.com/wardenhq/warden/pkg/idx"
)

func newStore(t *testing.T) *Store {
	t.Helper()

	st, err := NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

func mustSeed(t *testing.T, st *Store) (domain.Role, domain.User) {
	t.Helper()
	ctx := context.Background()

	role := domain.Role{ID: idx.New().String(), Name: "user", Level: 2}
	require.NoError(t, st.Roles().CreateRole(ctx, role))

	user := domain.User{
		ID:         idx.New().String(),
		ExternalID: "ext-1",
		Email:      "alice@example.com",
		RoleID:     role.ID,
	}
	require.NoError(t, st.Users().CreateUser(ctx, user))
	return role, user
}

func TestConstraintMapping(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)
	role, user := mustSeed(t, st)

	t.Run("duplicate role name", func(t *testing.T) {
		err := st.Roles().CreateRole(ctx, domain.Role{ID: idx.New().String(), Name: "user", Level: 9})
		require.ErrorIs(t, err, store.ErrAlreadyExists)
	})

	t.Run("duplicate role level", func(t *testing.T) {
		err := st.Roles().CreateRole(ctx, domain.Role{ID: idx.New().String(), Name: "other", Level: role.Level})
		require.ErrorIs(t, err, store.ErrAlreadyExists)
	})

	t.Run("duplicate user email", func(t *testing.T) {
		err := st.Users().CreateUser(ctx, domain.User{
			ID:         idx.New().String(),
			ExternalID: "ext-2",
			Email:      user.Email,
			RoleID:     role.ID,
		})
		require.ErrorIs(t, err, store.ErrAlreadyExists)
	})

	t.Run("duplicate external id", func(t *testing.T) {
		err := st.Users().CreateUser(ctx, domain.User{
			ID:         idx.New().String(),
			ExternalID: user.ExternalID,
			Email:      "bob@example.com",
			RoleID:     role.ID,
		})
		require.ErrorIs(t, err, store.ErrAlreadyExists)
	})

	t.Run("referenced role cannot be deleted", func(t *testing.T) {
		err := st.Roles().DeleteRole(ctx, role.ID)
		require.ErrorIs(t, err, store.ErrInUse)
	})

	t.Run("missing rows map to not found", func(t *testing.T) {
		_, err := st.Users().GetUserByID(ctx, "missing")
		require.ErrorIs(t, err, store.ErrNotFound)

		_, err = st.Roles().GetRoleByID(ctx, "missing")
		require.ErrorIs(t, err, store.ErrNotFound)

		err = st.Users().SetUserRole(ctx, "missing", role.ID)
		require.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestLockTransitions(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)
	_, user := mustSeed(t, st)

	t.Run("increment returns the post-increment row", func(t *testing.T) {
		u, err := st.Users().IncrementFailedAttempts(ctx, user.ID)
		require.NoError(t, err)
		require.Equal(t, 1, u.FailedAttempts)

		u, err = st.Users().IncrementFailedAttempts(ctx, user.ID)
		require.NoError(t, err)
		require.Equal(t, 2, u.FailedAttempts)
	})

	t.Run("timed lock resets the counter and counts the episode", func(t *testing.T) {
		until := time.Now().Add(time.Minute).UTC()
		u, err := st.Users().ApplyTimedLock(ctx, user.ID, until, 3)
		require.NoError(t, err)
		require.True(t, u.IsLocked)
		require.Zero(t, u.FailedAttempts)
		require.Equal(t, 1, u.LockoutCount)
		require.False(t, u.AdminUnlockRequired)
		require.NotNil(t, u.LockUntil)
	})

	t.Run("reaching the episode cap escalates in the same statement", func(t *testing.T) {
		until := time.Now().Add(time.Minute).UTC()
		u, err := st.Users().ApplyTimedLock(ctx, user.ID, until, 3)
		require.NoError(t, err)
		require.Equal(t, 2, u.LockoutCount)
		require.False(t, u.AdminUnlockRequired)

		u, err = st.Users().ApplyTimedLock(ctx, user.ID, until, 3)
		require.NoError(t, err)
		require.Equal(t, 3, u.LockoutCount)
		require.True(t, u.AdminUnlockRequired)
	})

	t.Run("clear is guarded against admin locks", func(t *testing.T) {
		cleared, err := st.Users().ClearExpiredLock(ctx, user.ID)
		require.NoError(t, err)
		require.False(t, cleared)

		require.NoError(t, st.Users().AdminUnlock(ctx, user.ID))

		u, err := st.Users().GetUserByID(ctx, user.ID)
		require.NoError(t, err)
		require.Equal(t, domain.LockStateActive, u.Lock())
		require.Zero(t, u.LockoutCount)
	})
}

func TestSoftDeleteVisibility(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)
	_, user := mustSeed(t, st)

	require.NoError(t, st.Users().SoftDeleteUser(ctx, user.ID))

	// Deleted users stay readable by id but fall out of the auth paths.
	u, err := st.Users().GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	require.True(t, u.IsDeleted)

	_, err = st.Users().GetUserByExternalID(ctx, user.ExternalID)
	require.ErrorIs(t, err, store.ErrNotFound)

	_, err = st.Users().GetUserByEmail(ctx, user.Email)
	require.ErrorIs(t, err, store.ErrNotFound)

	users, err := st.Users().ListUsersBelowLevel(ctx, -1)
	require.NoError(t, err)
	require.Empty(t, users)

	// A second delete is not found; the row is already gone from the
	// active set.
	require.ErrorIs(t, st.Users().SoftDeleteUser(ctx, user.ID), store.ErrNotFound)
}

func TestWithTxRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)
	role, _ := mustSeed(t, st)

	sentinel := store.ErrInUse
	err := st.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().CreateUser(ctx, domain.User{
			ID:         idx.New().String(),
			ExternalID: "ext-tx",
			Email:      "tx@example.com",
			RoleID:     role.ID,
		}); err != nil {
			return err
		}
		return sentinel
	})
	require.ErrorIs(t, err, sentinel)

	_, err = st.Users().GetUserByEmail(ctx, "tx@example.com")
	require.ErrorIs(t, err, store.ErrNotFound)
}
