package service

import (
	"fmt"

	"github.com/wardenhq/warden/internal/admin/domain"
)

// Actor is a resolved identity: the local user plus their role, as
// produced by SessionService.ResolveIdentity. Every policy decision in
// this package reads levels off the actor, never off request input.
type Actor struct {
	User domain.User
	Role domain.Role
}

// CanAct is the whole role-level policy: an actor may mutate a target
// only when the actor's level is strictly smaller (more privileged)
// than the target's. Peers and superiors are out of reach, and a role
// may only ever be assigned strictly below the assigner.
func CanAct(actorLevel, targetLevel int) bool {
	return actorLevel < targetLevel
}

// Dominates reports whether the actor may act on a target at targetLevel.
func (a Actor) Dominates(targetLevel int) bool {
	return CanAct(a.Role.Level, targetLevel)
}

// VisibleLevelFloor is the level bound for listings: actors see only
// strictly less privileged users. Root sees everyone.
func (a Actor) VisibleLevelFloor() int {
	if a.Role.IsRoot() {
		return -1
	}
	return a.Role.Level
}

func requireManageUsers(actor Actor) error {
	if !actor.Role.Permissions.ManageUsers {
		return fmt.Errorf("%w: missing manageUsers permission", domain.ErrForbidden)
	}
	return nil
}

func requireManageRoles(actor Actor) error {
	if !actor.Role.Permissions.ManageRoles {
		return fmt.Errorf("%w: missing manageRoles permission", domain.ErrForbidden)
	}
	return nil
}

func requireDominates(actor Actor, targetLevel int) error {
	if !actor.Dominates(targetLevel) {
		return fmt.Errorf("%w: target level %d is not below actor level %d",
			domain.ErrForbidden, targetLevel, actor.Role.Level)
	}
	return nil
}
