package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wardenhq/warden/internal/admin/domain"
	"github.com/wardenhq/warden/internal/admin/store"
	"github.com/wardenhq/warden/pkg/slogx"
)

// LockoutPolicy holds the injected thresholds of the lockout machine.
// Constants from the reference policy: 2 failures lock for a minute,
// the third lock episode requires an administrator.
type LockoutPolicy struct {
	MaxFailedAttempts int
	LockDuration      time.Duration
	MaxLockoutsPerDay int
}

// DefaultLockoutPolicy matches the reference policy.
func DefaultLockoutPolicy() LockoutPolicy {
	return LockoutPolicy{
		MaxFailedAttempts: 2,
		LockDuration:      time.Minute,
		MaxLockoutsPerDay: 3,
	}
}

// LockDecision is the lockout machine's answer to "may this account
// attempt a login right now".
type LockDecision struct {
	State   domain.LockState
	Allowed bool
	// RetryAt is set for timed locks: the moment the lock expires.
	RetryAt *time.Time
}

// LockoutService owns every transition of the per-user lockout fields.
// All writes go through atomic store statements inside a transaction so
// concurrent failures against one account cannot under-count.
type LockoutService struct {
	Store  store.Store
	Policy LockoutPolicy

	// Now is the clock; tests override it. Nil means time.Now.
	Now func() time.Time
}

func (s *LockoutService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Check gates a login attempt before any credential verification. An
// expired timed lock is cleared here (auto-transition back to Active);
// an admin-required lock never is. Unknown or deleted accounts report
// Active so the login flow leaks nothing about account existence.
func (s *LockoutService) Check(ctx context.Context, email string) (LockDecision, error) {
	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return LockDecision{State: domain.LockStateActive, Allowed: true}, nil
		}
		return LockDecision{}, err
	}

	return s.decide(ctx, s.Store.Users(), user)
}

func (s *LockoutService) decide(ctx context.Context, users store.Users, user domain.User) (LockDecision, error) {
	log := slogx.FromContext(ctx)

	switch user.Lock() {
	case domain.LockStateAdmin:
		return LockDecision{State: domain.LockStateAdmin}, nil

	case domain.LockStateTimed:
		if user.LockUntil != nil && s.now().After(*user.LockUntil) {
			// The guarded update loses the race gracefully: if an admin
			// lock landed in between, no row changes and the account
			// stays locked.
			cleared, err := users.ClearExpiredLock(ctx, user.ID)
			if err != nil {
				return LockDecision{}, err
			}
			if cleared {
				log.Info("timed lock expired", "user_id", user.ID)
				return LockDecision{State: domain.LockStateActive, Allowed: true}, nil
			}
			return LockDecision{State: domain.LockStateAdmin}, nil
		}
		retry := user.LockUntil
		return LockDecision{State: domain.LockStateTimed, RetryAt: retry}, nil

	default:
		return LockDecision{State: domain.LockStateActive, Allowed: true}, nil
	}
}

// RecordFailure registers one failed credential verification for the
// account and applies the threshold transitions. The whole
// read-increment-lock sequence runs in a single transaction; the
// increment itself is one atomic statement.
func (s *LockoutService) RecordFailure(ctx context.Context, email string) (LockDecision, error) {
	log := slogx.FromContext(ctx)

	var decision LockDecision
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		user, err := tx.Users().GetUserByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("%w: unknown account", domain.ErrNotFound)
			}
			return err
		}

		// Failures against a still-locked account change nothing; the
		// gate rejected the attempt before credentials were checked. An
		// expired timed lock is cleared here and the triggering failure
		// counts against the fresh window.
		if user.Lock() != domain.LockStateActive {
			d, err := s.decide(ctx, tx.Users(), user)
			if err != nil {
				return err
			}
			if !d.Allowed {
				decision = d
				return nil
			}
		}

		user, err = tx.Users().IncrementFailedAttempts(ctx, user.ID)
		if err != nil {
			return err
		}

		if user.FailedAttempts < s.Policy.MaxFailedAttempts {
			decision = LockDecision{State: domain.LockStateActive, Allowed: true}
			return nil
		}

		lockUntil := s.now().Add(s.Policy.LockDuration)
		user, err = tx.Users().ApplyTimedLock(ctx, user.ID, lockUntil, s.Policy.MaxLockoutsPerDay)
		if err != nil {
			return err
		}

		state := user.Lock()
		log.Warn("account locked",
			"user_id", user.ID,
			"lockout_count", user.LockoutCount,
			"admin_unlock_required", user.AdminUnlockRequired,
		)

		retry := user.LockUntil
		decision = LockDecision{State: state, RetryAt: retry}
		return nil
	})
	if err != nil {
		return LockDecision{}, err
	}
	return decision, nil
}

// RecordSuccess resets the failure counter after a verified login.
// Idempotent; the SPA also calls it explicitly to clear stale counters.
func (s *LockoutService) RecordSuccess(ctx context.Context, email string) error {
	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: unknown account", domain.ErrNotFound)
		}
		return err
	}
	return s.Store.Users().ResetFailedAttempts(ctx, user.ID)
}

// Unlock is the administrative unlock: every lockout field back to its
// initial value, unconditionally, including the episode counter.
func (s *LockoutService) Unlock(ctx context.Context, actor Actor, userID string) error {
	if err := requireManageUsers(actor); err != nil {
		return err
	}

	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		user, err := tx.Users().GetUserByID(ctx, userID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("%w: unknown user", domain.ErrNotFound)
			}
			return err
		}

		role, err := tx.Roles().GetRoleByID(ctx, user.RoleID)
		if err != nil {
			return err
		}
		if err := requireDominates(actor, role.Level); err != nil {
			return err
		}

		slogx.FromContext(ctx).Info("administrative unlock",
			"user_id", userID, "actor_id", actor.User.ID)
		return tx.Users().AdminUnlock(ctx, userID)
	})
}

// Lock is the administrative lock: straight to Locked-Admin, bypassing
// the counter path.
func (s *LockoutService) Lock(ctx context.Context, actor Actor, userID string) error {
	if err := requireManageUsers(actor); err != nil {
		return err
	}

	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		user, err := tx.Users().GetUserByID(ctx, userID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("%w: unknown user", domain.ErrNotFound)
			}
			return err
		}

		role, err := tx.Roles().GetRoleByID(ctx, user.RoleID)
		if err != nil {
			return err
		}
		if err := requireDominates(actor, role.Level); err != nil {
			return err
		}

		slogx.FromContext(ctx).Warn("administrative lock",
			"user_id", userID, "actor_id", actor.User.ID)
		return tx.Users().AdminLock(ctx, userID)
	})
}

// ResetAttempts clears the failure counter and any timed lock for a
// user, the explicit success transition the SPA fires after a login.
// Callers may always reset their own counter; resetting anyone else's
// is an admin op. Unlike Unlock it leaves the episode counter alone,
// and the guarded lock clear never releases an admin lock.
func (s *LockoutService) ResetAttempts(ctx context.Context, actor Actor, userID string) error {
	self := actor.User.ID == userID
	if !self {
		if err := requireManageUsers(actor); err != nil {
			return err
		}
	}

	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		user, err := tx.Users().GetUserByID(ctx, userID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("%w: unknown user", domain.ErrNotFound)
			}
			return err
		}

		if !self {
			role, err := tx.Roles().GetRoleByID(ctx, user.RoleID)
			if err != nil {
				return err
			}
			if err := requireDominates(actor, role.Level); err != nil {
				return err
			}
		}

		if _, err := tx.Users().ClearExpiredLock(ctx, user.ID); err != nil {
			return err
		}
		return tx.Users().ResetFailedAttempts(ctx, user.ID)
	})
}
