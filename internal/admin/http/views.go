package http

import (
	"github.com/wardenhq/warden/internal/admin/domain"
	"github.com/wardenhq/warden/internal/admin/service"
	"github.com/wardenhq/warden/pkg/adminsdk"
)

func roleInfo(r domain.Role) adminsdk.RoleInfo {
	return adminsdk.RoleInfo{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Level:       r.Level,
		Permissions: adminsdk.PermissionsInfo{
			ManageUsers: r.Permissions.ManageUsers,
			ManageRoles: r.Permissions.ManageRoles,
		},
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func userInfo(v service.UserView) adminsdk.UserInfo {
	return adminsdk.UserInfo{
		ID:             v.User.ID,
		Email:          v.User.Email,
		FirstName:      v.User.FirstName,
		LastName:       v.User.LastName,
		Phone:          v.User.Phone,
		ProfilePic:     v.User.ProfilePic,
		Role:           roleInfo(v.Role),
		LockState:      v.User.Lock().String(),
		FailedAttempts: v.User.FailedAttempts,
		LockUntil:      v.User.LockUntil,
		CreatedAt:      v.User.CreatedAt,
		UpdatedAt:      v.User.UpdatedAt,
	}
}

func lockDecision(d service.LockDecision) adminsdk.LockDecisionResponse {
	return adminsdk.LockDecisionResponse{
		LockState: d.State.String(),
		Allowed:   d.Allowed,
		RetryAt:   d.RetryAt,
	}
}
