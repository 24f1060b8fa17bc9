package service

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/wardenhq/warden/internal/admin/domain"
	"github.com/wardenhq/warden/internal/admin/store"
)

func TestHousekeepingSweep(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.DiscardHandler)

	t.Run("clears expired timed locks only", func(t *testing.T) {
		st := newTestStore(t)
		role := seedRole(t, st, "user", 2, domain.Permissions{})
		expired := seedUser(t, st, "expired@example.com", role.ID)
		pending := seedUser(t, st, "pending@example.com", role.ID)
		adminLocked := seedUser(t, st, "frozen@example.com", role.ID)

		_, err := st.Users().ApplyTimedLock(ctx, expired.ID, time.Now().Add(-time.Minute), 3)
		require.NoError(t, err)
		_, err = st.Users().ApplyTimedLock(ctx, pending.ID, time.Now().Add(time.Hour), 3)
		require.NoError(t, err)
		require.NoError(t, st.Users().AdminLock(ctx, adminLocked.ID))

		svc := NewHousekeepingService(st, logger, time.Minute, 0)
		svc.Sweep(ctx)

		u, err := st.Users().GetUserByID(ctx, expired.ID)
		require.NoError(t, err)
		require.Equal(t, domain.LockStateActive, u.Lock())

		u, err = st.Users().GetUserByID(ctx, pending.ID)
		require.NoError(t, err)
		require.Equal(t, domain.LockStateTimed, u.Lock())

		u, err = st.Users().GetUserByID(ctx, adminLocked.ID)
		require.NoError(t, err)
		require.Equal(t, domain.LockStateAdmin, u.Lock())
	})

	t.Run("purges soft-deleted users past retention", func(t *testing.T) {
		st := newTestStore(t)
		role := seedRole(t, st, "user", 2, domain.Permissions{})
		gone := seedUser(t, st, "gone@example.com", role.ID)
		kept := seedUser(t, st, "kept@example.com", role.ID)

		require.NoError(t, st.Users().SoftDeleteUser(ctx, gone.ID))

		svc := NewHousekeepingService(st, logger, time.Minute, 24*time.Hour)
		// A clock two days ahead puts the fresh soft-delete past retention.
		svc.Now = func() time.Time { return time.Now().Add(48 * time.Hour) }
		svc.Sweep(ctx)

		_, err := st.Users().GetUserByID(ctx, gone.ID)
		require.ErrorIs(t, err, store.ErrNotFound)

		_, err = st.Users().GetUserByID(ctx, kept.ID)
		require.NoError(t, err)
	})

	t.Run("zero retention disables purging", func(t *testing.T) {
		st := newTestStore(t)
		role := seedRole(t, st, "user", 2, domain.Permissions{})
		gone := seedUser(t, st, "gone@example.com", role.ID)

		require.NoError(t, st.Users().SoftDeleteUser(ctx, gone.ID))

		svc := NewHousekeepingService(st, logger, time.Minute, 0)
		svc.Now = func() time.Time { return time.Now().Add(48 * time.Hour) }
		svc.Sweep(ctx)

		u, err := st.Users().GetUserByID(ctx, gone.ID)
		require.NoError(t, err)
		require.True(t, u.IsDeleted)
	})
}

func TestHousekeepingStartStop(t *testing.T) {
	st := newTestStore(t)
	svc := NewHousekeepingService(st, slog.New(slog.DiscardHandler), time.Hour, 0)

	svc.Start()

	done := make(chan struct{})
	go func() {
		svc.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("housekeeping did not stop in time")
	}
}

func TestHousekeepingDefaultInterval(t *testing.T) {
	svc := NewHousekeepingService(newTestStore(t), slog.New(slog.DiscardHandler), 0, 0)
	require.Equal(t, time.Minute, svc.Interval)
}
