package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wardenhq/warden/internal/admin/domain"
	"github.com/wardenhq/warden/internal/admin/identity"
	"github.com/wardenhq/warden/internal/admin/identity/dev"
)

// flakyProvider wraps a real provider and fails selected operations,
// for exercising the transient-error paths.
type flakyProvider struct {
	identity.Provider
	deleteErr error
}

func (p *flakyProvider) DeleteIdentity(ctx context.Context, subjectID string) error {
	if p.deleteErr != nil {
		return p.deleteErr
	}
	return p.Provider.DeleteIdentity(ctx, subjectID)
}

type usersFixture struct {
	svc      *UserService
	provider *dev.Provider
	root     Actor
	admin    Actor
	member   domain.User
}

func newUsersFixture(t *testing.T) *usersFixture {
	t.Helper()

	st := newTestStore(t)
	rootRole := seedRole(t, st, domain.RootRoleName, 0, domain.Permissions{ManageUsers: true, ManageRoles: true})
	adminRole := seedRole(t, st, "admin", 1, domain.Permissions{ManageUsers: true, ManageRoles: true})
	userRole := seedRole(t, st, "user", 2, domain.Permissions{})

	rootUser := seedUser(t, st, "root@example.com", rootRole.ID)
	adminUser := seedUser(t, st, "admin@example.com", adminRole.ID)
	member := seedUser(t, st, "member@example.com", userRole.ID)

	provider := dev.New("test-secret")
	sessions := &SessionService{Store: st, Provider: provider}
	roles := &RolesService{Store: st}
	svc := &UserService{
		Store:           st,
		Sessions:        sessions,
		Roles:           roles,
		DefaultRoleName: "user",
	}

	return &usersFixture{
		svc:      svc,
		provider: provider,
		root:     Actor{User: rootUser, Role: rootRole},
		admin:    Actor{User: adminUser, Role: adminRole},
		member:   member,
	}
}

func (f *usersFixture) signIn(t *testing.T, email, password string) string {
	t.Helper()
	token, err := f.provider.SignIn(context.Background(), email, password)
	require.NoError(t, err)
	return token
}

func TestUsersSignup(t *testing.T) {
	ctx := context.Background()

	t.Run("registers the token holder with the default role", func(t *testing.T) {
		f := newUsersFixture(t)

		_, err := f.provider.CreateIdentity(ctx, identity.NewIdentity{
			Email:    "carol@example.com",
			Password: "hunter2hunter2",
		})
		require.NoError(t, err)
		token := f.signIn(t, "carol@example.com", "hunter2hunter2")

		view, err := f.svc.Signup(ctx, token, SignupParams{FirstName: "Carol", LastName: "Jones"})
		require.NoError(t, err)
		require.Equal(t, "carol@example.com", view.User.Email)
		require.Equal(t, "Carol", view.User.FirstName)
		require.Equal(t, "user", view.Role.Name)
		require.NotEmpty(t, view.User.ExternalID)

		// The fresh token now resolves to the new account.
		actor, err := f.svc.Sessions.ResolveIdentity(ctx, token)
		require.NoError(t, err)
		require.Equal(t, view.User.ID, actor.User.ID)
	})

	t.Run("garbage token is unauthenticated", func(t *testing.T) {
		f := newUsersFixture(t)

		_, err := f.svc.Signup(ctx, "not-a-jwt", SignupParams{})
		require.ErrorIs(t, err, domain.ErrUnauthenticated)
	})

	t.Run("second signup for the same identity conflicts", func(t *testing.T) {
		f := newUsersFixture(t)

		_, err := f.provider.CreateIdentity(ctx, identity.NewIdentity{
			Email:    "carol@example.com",
			Password: "hunter2hunter2",
		})
		require.NoError(t, err)
		token := f.signIn(t, "carol@example.com", "hunter2hunter2")

		_, err = f.svc.Signup(ctx, token, SignupParams{})
		require.NoError(t, err)

		_, err = f.svc.Signup(ctx, token, SignupParams{})
		require.ErrorIs(t, err, domain.ErrConflict)
	})
}

func TestUsersCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("provisions a provider identity when none is supplied", func(t *testing.T) {
		f := newUsersFixture(t)

		view, err := f.svc.Create(ctx, f.admin, CreateUserParams{
			Email:     "Dave@Example.com",
			FirstName: "Dave",
			RoleName:  "user",
		})
		require.NoError(t, err)
		require.Equal(t, "dave@example.com", view.User.Email)
		require.Equal(t, "user", view.Role.Name)

		id, err := f.provider.GetIdentityByEmail(ctx, "dave@example.com")
		require.NoError(t, err)
		require.Equal(t, id.SubjectID, view.User.ExternalID)
	})

	t.Run("binds a supplied identity with a matching email", func(t *testing.T) {
		f := newUsersFixture(t)

		subjectID, err := f.provider.CreateIdentity(ctx, identity.NewIdentity{
			Email:    "dave@example.com",
			Password: "hunter2hunter2",
		})
		require.NoError(t, err)

		view, err := f.svc.Create(ctx, f.admin, CreateUserParams{
			Email:      "dave@example.com",
			RoleName:   "user",
			ExternalID: subjectID,
		})
		require.NoError(t, err)
		require.Equal(t, subjectID, view.User.ExternalID)
	})

	t.Run("binds a supplied identity regardless of email casing", func(t *testing.T) {
		f := newUsersFixture(t)

		subjectID, err := f.provider.CreateIdentity(ctx, identity.NewIdentity{
			Email:    "Dave@Example.com",
			Password: "hunter2hunter2",
		})
		require.NoError(t, err)

		view, err := f.svc.Create(ctx, f.admin, CreateUserParams{
			Email:      "dave@example.com",
			RoleName:   "user",
			ExternalID: subjectID,
		})
		require.NoError(t, err)
		require.Equal(t, subjectID, view.User.ExternalID)
		require.Equal(t, "dave@example.com", view.User.Email)
	})

	t.Run("supplied identity with a different email conflicts", func(t *testing.T) {
		f := newUsersFixture(t)

		subjectID, err := f.provider.CreateIdentity(ctx, identity.NewIdentity{
			Email:    "someone-else@example.com",
			Password: "hunter2hunter2",
		})
		require.NoError(t, err)

		_, err = f.svc.Create(ctx, f.admin, CreateUserParams{
			Email:      "dave@example.com",
			RoleName:   "user",
			ExternalID: subjectID,
		})
		require.ErrorIs(t, err, domain.ErrConflict)
	})

	t.Run("policy is checked before any provider side effect", func(t *testing.T) {
		f := newUsersFixture(t)

		_, err := f.svc.Create(ctx, f.admin, CreateUserParams{
			Email:    "eve@example.com",
			RoleName: "admin", // peer of the actor
		})
		require.ErrorIs(t, err, domain.ErrForbidden)

		_, err = f.provider.GetIdentityByEmail(ctx, "eve@example.com")
		require.ErrorIs(t, err, identity.ErrNotFound)
	})

	t.Run("unknown role fails validation without provisioning", func(t *testing.T) {
		f := newUsersFixture(t)

		_, err := f.svc.Create(ctx, f.admin, CreateUserParams{
			Email:    "eve@example.com",
			RoleName: "ghost",
		})
		require.ErrorIs(t, err, domain.ErrValidation)

		_, err = f.provider.GetIdentityByEmail(ctx, "eve@example.com")
		require.ErrorIs(t, err, identity.ErrNotFound)
	})

	t.Run("failed local insert deletes the provisioned identity", func(t *testing.T) {
		f := newUsersFixture(t)

		// member@example.com already exists locally but not at the
		// provider, so provisioning succeeds and the insert conflicts.
		_, err := f.svc.Create(ctx, f.admin, CreateUserParams{
			Email:    "member@example.com",
			RoleName: "user",
		})
		require.ErrorIs(t, err, domain.ErrConflict)

		_, err = f.provider.GetIdentityByEmail(ctx, "member@example.com")
		require.ErrorIs(t, err, identity.ErrNotFound)
	})
}

func TestUsersGetVisibility(t *testing.T) {
	ctx := context.Background()

	t.Run("admin sees lower-privileged users", func(t *testing.T) {
		f := newUsersFixture(t)

		view, err := f.svc.Get(ctx, f.admin, f.member.ID)
		require.NoError(t, err)
		require.Equal(t, "member@example.com", view.User.Email)
		require.Equal(t, "user", view.Role.Name)
	})

	t.Run("superiors read as absent", func(t *testing.T) {
		f := newUsersFixture(t)

		_, err := f.svc.Get(ctx, f.admin, f.root.User.ID)
		require.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("self is always visible", func(t *testing.T) {
		f := newUsersFixture(t)

		view, err := f.svc.Get(ctx, f.admin, f.admin.User.ID)
		require.NoError(t, err)
		require.Equal(t, f.admin.User.ID, view.User.ID)
	})

	t.Run("soft-deleted users read as absent", func(t *testing.T) {
		f := newUsersFixture(t)

		require.NoError(t, f.svc.Store.Users().SoftDeleteUser(ctx, f.member.ID))

		_, err := f.svc.Get(ctx, f.root, f.member.ID)
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestUsersList(t *testing.T) {
	ctx := context.Background()
	f := newUsersFixture(t)

	emails := func(views []UserView) []string {
		out := make([]string, 0, len(views))
		for _, v := range views {
			out = append(out, v.User.Email)
		}
		return out
	}

	rootViews, err := f.svc.List(ctx, f.root)
	require.NoError(t, err)
	require.ElementsMatch(t,
		[]string{"root@example.com", "admin@example.com", "member@example.com"},
		emails(rootViews))

	adminViews, err := f.svc.List(ctx, f.admin)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"member@example.com"}, emails(adminViews))
}

func TestUsersUpdate(t *testing.T) {
	ctx := context.Background()

	strp := func(s string) *string { return &s }

	t.Run("profile patch syncs the provider display name", func(t *testing.T) {
		f := newUsersFixture(t)

		created, err := f.svc.Create(ctx, f.admin, CreateUserParams{
			Email:    "dave@example.com",
			RoleName: "user",
		})
		require.NoError(t, err)

		view, err := f.svc.Update(ctx, f.admin, created.User.ID, domain.UserProfilePatch{
			FirstName: strp("David"),
			LastName:  strp("Smith"),
		}, "")
		require.NoError(t, err)
		require.Equal(t, "David", view.User.FirstName)
		require.Equal(t, "Smith", view.User.LastName)

		id, err := f.provider.GetIdentity(ctx, view.User.ExternalID)
		require.NoError(t, err)
		require.Equal(t, "David Smith", id.DisplayName)
	})

	t.Run("reassigns to a dominated role", func(t *testing.T) {
		f := newUsersFixture(t)
		staff := seedRole(t, f.svc.Store, "staff", 3, domain.Permissions{})

		view, err := f.svc.Update(ctx, f.admin, f.member.ID, domain.UserProfilePatch{}, "staff")
		require.NoError(t, err)
		require.Equal(t, staff.ID, view.User.RoleID)
	})

	t.Run("the root role cannot be assigned", func(t *testing.T) {
		f := newUsersFixture(t)

		_, err := f.svc.Update(ctx, f.root, f.member.ID, domain.UserProfilePatch{}, domain.RootRoleName)
		require.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("non-dominated targets are forbidden", func(t *testing.T) {
		f := newUsersFixture(t)

		_, err := f.svc.Update(ctx, f.admin, f.root.User.ID, domain.UserProfilePatch{
			FirstName: strp("x"),
		}, "")
		require.ErrorIs(t, err, domain.ErrForbidden)
	})
}

func TestUsersDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("removes the provider identity and soft-deletes locally", func(t *testing.T) {
		f := newUsersFixture(t)

		created, err := f.svc.Create(ctx, f.admin, CreateUserParams{
			Email:    "dave@example.com",
			RoleName: "user",
		})
		require.NoError(t, err)

		require.NoError(t, f.svc.Delete(ctx, f.admin, created.User.ID))

		_, err = f.provider.GetIdentity(ctx, created.User.ExternalID)
		require.ErrorIs(t, err, identity.ErrNotFound)

		_, err = f.svc.Get(ctx, f.root, created.User.ID)
		require.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("a missing provider identity is tolerated", func(t *testing.T) {
		f := newUsersFixture(t)

		// Seeded users have no provider-side account at all.
		require.NoError(t, f.svc.Delete(ctx, f.admin, f.member.ID))
	})

	t.Run("root-role holders cannot be deleted", func(t *testing.T) {
		f := newUsersFixture(t)

		err := f.svc.Delete(ctx, f.root, f.root.User.ID)
		require.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("unreachable provider leaves local state untouched", func(t *testing.T) {
		f := newUsersFixture(t)
		f.svc.Sessions.Provider = &flakyProvider{
			Provider:  f.provider,
			deleteErr: identity.ErrUnavailable,
		}

		err := f.svc.Delete(ctx, f.admin, f.member.ID)
		require.ErrorIs(t, err, domain.ErrTransient)

		user, err := f.svc.Store.Users().GetUserByID(ctx, f.member.ID)
		require.NoError(t, err)
		require.False(t, user.IsDeleted)
	})
}

func TestUsersGetLockStatus(t *testing.T) {
	ctx := context.Background()
	f := newUsersFixture(t)

	status, err := f.svc.GetLockStatus(ctx, " Member@Example.com ")
	require.NoError(t, err)
	require.Equal(t, "member@example.com", status.Email)
	require.Equal(t, domain.LockStateActive, status.State)
	require.Zero(t, status.FailedAttempts)
	require.False(t, status.AdminUnlockRequired)

	_, err = f.svc.GetLockStatus(ctx, "ghost@example.com")
	require.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.svc.GetLockStatus(ctx, "not an email")
	require.ErrorIs(t, err, domain.ErrValidation)
}
