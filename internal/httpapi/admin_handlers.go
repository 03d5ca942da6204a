package httpapi

import (
	"net/http"
	"strings"

	"denialdesk.org/internal/audit"
	"denialdesk.org/internal/auth"
)

func (a *API) handleAdminUsers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	principal, ok := principalOrFail(w, r)
	if !ok {
		return
	}
	users, err := a.users.ListUsers(r.Context(), principal)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	if users == nil {
		users = []*auth.User{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": users})
}

func (a *API) handleAdminUserResource(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/v1/admin/users/")
	id := strings.TrimSuffix(path, "/toggle-active")
	if id == path || id == "" || strings.Contains(id, "/") {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	principal, ok := principalOrFail(w, r)
	if !ok {
		return
	}
	user, err := a.users.ToggleActive(r.Context(), principal, id)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "admin.user.toggle_active", map[string]any{
		"target_user_id": user.ID,
		"active":         user.Active,
	})
	writeJSON(w, http.StatusOK, user)
}
