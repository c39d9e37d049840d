package handlers

import (
	"net/http"

	"lessonplanner-ai/internal/contextutil"
	"lessonplanner-ai/internal/storage"
)

// RoleHandler assigns user roles.
type RoleHandler struct {
	roles storage.RoleStore
}

// NewRoleHandler creates a new RoleHandler.
func NewRoleHandler(roles storage.RoleStore) *RoleHandler {
	return &RoleHandler{roles: roles}
}

// SetRoleRequest is the payload of PUT /api/admin/users/{id}/role.
type SetRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=admin client"`
}

// SetRoleResponse echoes the assigned role.
type SetRoleResponse struct {
	UserID int64  `json:"user_id"`
	Role   string `json:"role"`
}

// SetRole handles PUT /api/admin/users/{id}/role.
func (h *RoleHandler) SetRole(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := int64Param(w, r, "id")
	if !ok {
		return
	}

	var req SetRoleRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.roles.SetRole(ctx, userID, storage.Role(req.Role)); err != nil {
		handleServiceError(w, ctx, err)
		return
	}

	if caller, ok := contextutil.UserFromContext(ctx); ok {
		contextutil.LoggerFromContext(ctx).InfoContext(ctx, "role assigned", "user_id", userID, "role", req.Role, "by", caller.ID)
	}
	writeJSON(w, ctx, http.StatusOK, SetRoleResponse{UserID: userID, Role: req.Role})
}
