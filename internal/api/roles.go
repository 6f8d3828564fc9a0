package api

import (
	"net/http"

	"github.com/rpattn/fleetreg/internal/auth"
	"github.com/rpattn/fleetreg/internal/domain"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type roleView struct {
	domain.Role
	PermissionsCount int `json:"permissions_count"`
}

func newRoleView(r domain.Role) roleView {
	if r.Permissions == nil {
		r.Permissions = []domain.Permission{}
	}
	return roleView{Role: r, PermissionsCount: len(r.Permissions)}
}

type roleInput struct {
	Name          string       `json:"name" validate:"required,max=100"`
	Description   string       `json:"description"`
	IsActive      *bool        `json:"is_active"`
	PermissionIDs *[]uuid.UUID `json:"permission_ids"`
}

func (in roleInput) active() bool {
	return in.IsActive == nil || *in.IsActive
}

func (h *handlers) listRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.Roles.List(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	out := make([]roleView, len(roles))
	for i, role := range roles {
		out[i] = newRoleView(role)
	}
	respond(w, r, http.StatusOK, out)
}

func (h *handlers) getRole(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	role, err := h.Roles.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, newRoleView(role))
}

func (h *handlers) createRole(w http.ResponseWriter, r *http.Request) {
	var in roleInput
	if err := h.decode(r, &in); err != nil {
		respondError(w, r, err)
		return
	}
	ctx := r.Context()
	role, err := h.Roles.Create(ctx, domain.NewRole(in.Name, in.Description, in.active()))
	if err != nil {
		respondError(w, r, err)
		return
	}
	if in.PermissionIDs != nil && len(*in.PermissionIDs) > 0 {
		if err := h.Roles.SetPermissions(ctx, role.ID, *in.PermissionIDs); err != nil {
			respondError(w, r, err)
			return
		}
		if role, err = h.Roles.GetByID(ctx, role.ID); err != nil {
			respondError(w, r, err)
			return
		}
	}
	respond(w, r, http.StatusCreated, newRoleView(role))
}

// updateRole replaces the permission set only when permission_ids is sent.
func (h *handlers) updateRole(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	var in roleInput
	if err := h.decode(r, &in); err != nil {
		respondError(w, r, err)
		return
	}
	ctx := r.Context()
	current, err := h.Roles.GetByID(ctx, id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	isActive := current.IsActive
	if in.IsActive != nil {
		isActive = *in.IsActive
	}
	if _, err := h.Roles.Update(ctx, current.WithFields(in.Name, in.Description, isActive)); err != nil {
		respondError(w, r, err)
		return
	}
	if in.PermissionIDs != nil {
		if err := h.Roles.SetPermissions(ctx, id, *in.PermissionIDs); err != nil {
			respondError(w, r, err)
			return
		}
	}
	role, err := h.Roles.GetByID(ctx, id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, newRoleView(role))
}

func (h *handlers) deleteRole(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	if err := h.Roles.Delete(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) listPermissions(w http.ResponseWriter, r *http.Request) {
	perms, err := h.Permissions.List(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, perms)
}

type userSummary struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
}

type userRoleView struct {
	ID         uuid.UUID    `json:"id"`
	User       *userSummary `json:"user"`
	Role       *roleView    `json:"role"`
	AssignedAt string       `json:"assigned_at"`
	AssignedBy *uuid.UUID   `json:"assigned_by"`
}

type userRoleInput struct {
	User uuid.UUID `json:"user" validate:"required"`
	Role uuid.UUID `json:"role" validate:"required"`
}

func (h *handlers) listUserRoles(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	assignments, err := h.UserRoles.List(ctx)
	if err != nil {
		respondError(w, r, err)
		return
	}
	users, err := h.Users.List(ctx)
	if err != nil {
		respondError(w, r, err)
		return
	}
	roles, err := h.Roles.List(ctx)
	if err != nil {
		respondError(w, r, err)
		return
	}

	usersByID := make(map[uuid.UUID]domain.User, len(users))
	for _, u := range users {
		usersByID[u.ID] = u
	}
	rolesByID := make(map[uuid.UUID]domain.Role, len(roles))
	for _, role := range roles {
		rolesByID[role.ID] = role
	}

	out := make([]userRoleView, len(assignments))
	for i, a := range assignments {
		var user *domain.User
		if u, ok := usersByID[a.UserID]; ok {
			user = &u
		}
		var role *domain.Role
		if rl, ok := rolesByID[a.RoleID]; ok {
			role = &rl
		}
		out[i] = newUserRoleView(a, user, role)
	}
	respond(w, r, http.StatusOK, out)
}

func (h *handlers) createUserRole(w http.ResponseWriter, r *http.Request) {
	var in userRoleInput
	if err := h.decode(r, &in); err != nil {
		respondError(w, r, err)
		return
	}
	ctx := r.Context()

	user, err := h.Users.GetByID(ctx, in.User)
	if err != nil {
		respondError(w, r, invalidPK(err, "user", in.User))
		return
	}
	role, err := h.Roles.GetByID(ctx, in.Role)
	if err != nil {
		respondError(w, r, invalidPK(err, "role", in.Role))
		return
	}
	exists, err := h.UserRoles.Exists(ctx, in.User, in.Role)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if exists {
		respondError(w, r, errFields(map[string][]string{"non_field_errors": {"This user already has this role."}}))
		return
	}

	created, err := h.UserRoles.Create(ctx, domain.NewUserRole(in.User, in.Role, auth.ActingUser(ctx)))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, newUserRoleView(created, &user, &role))
}

func (h *handlers) deleteUserRole(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	if err := h.UserRoles.Delete(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) listRolesForUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "user_id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	roles, err := h.UserRoles.ListRolesForUser(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	out := make([]roleView, len(roles))
	for i, role := range roles {
		out[i] = newRoleView(role)
	}
	respond(w, r, http.StatusOK, out)
}

func newUserRoleView(a domain.UserRole, user *domain.User, role *domain.Role) userRoleView {
	v := userRoleView{
		ID:         a.ID,
		AssignedAt: a.AssignedAt.Format(timeLayout),
		AssignedBy: a.AssignedBy,
	}
	if user != nil {
		v.User = &userSummary{ID: user.ID, Username: user.Username, Email: user.Email}
	}
	if role != nil {
		rv := newRoleView(*role)
		v.Role = &rv
	}
	return v
}

type roleGroupView struct {
	domain.RoleGroup
	RolesCount int `json:"roles_count"`
}

func newRoleGroupView(g domain.RoleGroup) roleGroupView {
	if g.Roles == nil {
		g.Roles = []domain.Role{}
	}
	return roleGroupView{RoleGroup: g, RolesCount: len(g.Roles)}
}

type roleGroupInput struct {
	Name        string       `json:"name" validate:"required,max=100"`
	Description string       `json:"description"`
	IsActive    *bool        `json:"is_active"`
	RoleIDs     *[]uuid.UUID `json:"role_ids"`
}

func (h *handlers) listRoleGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := h.RoleGroups.List(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	out := make([]roleGroupView, len(groups))
	for i, g := range groups {
		out[i] = newRoleGroupView(g)
	}
	respond(w, r, http.StatusOK, out)
}

func (h *handlers) getRoleGroup(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	group, err := h.RoleGroups.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, newRoleGroupView(group))
}

func (h *handlers) createRoleGroup(w http.ResponseWriter, r *http.Request) {
	var in roleGroupInput
	if err := h.decode(r, &in); err != nil {
		respondError(w, r, err)
		return
	}
	ctx := r.Context()
	isActive := in.IsActive == nil || *in.IsActive
	group, err := h.RoleGroups.Create(ctx, domain.NewRoleGroup(in.Name, in.Description, isActive))
	if err != nil {
		respondError(w, r, err)
		return
	}
	if in.RoleIDs != nil && len(*in.RoleIDs) > 0 {
		if err := h.RoleGroups.SetRoles(ctx, group.ID, *in.RoleIDs); err != nil {
			respondError(w, r, err)
			return
		}
		if group, err = h.RoleGroups.GetByID(ctx, group.ID); err != nil {
			respondError(w, r, err)
			return
		}
	}
	respond(w, r, http.StatusCreated, newRoleGroupView(group))
}

func (h *handlers) updateRoleGroup(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	var in roleGroupInput
	if err := h.decode(r, &in); err != nil {
		respondError(w, r, err)
		return
	}
	ctx := r.Context()
	current, err := h.RoleGroups.GetByID(ctx, id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	isActive := current.IsActive
	if in.IsActive != nil {
		isActive = *in.IsActive
	}
	if _, err := h.RoleGroups.Update(ctx, current.WithFields(in.Name, in.Description, isActive)); err != nil {
		respondError(w, r, err)
		return
	}
	if in.RoleIDs != nil {
		if err := h.RoleGroups.SetRoles(ctx, id, *in.RoleIDs); err != nil {
			respondError(w, r, err)
			return
		}
	}
	group, err := h.RoleGroups.GetByID(ctx, id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, newRoleGroupView(group))
}

func (h *handlers) deleteRoleGroup(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	if err := h.RoleGroups.Delete(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// pathID parses a UUID route parameter. Malformed ids are reported as 404
// since no record can match them.
func pathID(r *http.Request, param string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		return uuid.Nil, errNotFound()
	}
	return id, nil
}
