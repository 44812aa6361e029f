package api

import (
	"net/http"

	"pharmacare/p/domain"
)

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, roleAdmin) {
		return
	}
	users := []domain.User{}
	if err := h.db.Select(&users, `SELECT id, username, email, role, created_at FROM users ORDER BY id`); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to list users")
		return
	}
	respondJSON(w, http.StatusOK, users)
}

func (h *Handler) updateUserRole(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, roleAdmin) {
		return
	}
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	var req struct {
		Role string `json:"role"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Role != roleAdmin && req.Role != roleSalesman {
		respondError(w, http.StatusBadRequest, "role must be admin or salesman")
		return
	}
	res, err := h.db.Exec(`UPDATE users SET role = ? WHERE id = ?`, req.Role, id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to update role")
		return
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		respondError(w, http.StatusNotFound, "user not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "role updated"})
}

func (h *Handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, roleAdmin) {
		return
	}
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	if uid := r.Context().Value(ctxUserID).(int64); uid == id {
		respondError(w, http.StatusBadRequest, "cannot delete your own account")
		return
	}
	res, err := h.db.Exec(`DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to delete user")
		return
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		respondError(w, http.StatusNotFound, "user not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
