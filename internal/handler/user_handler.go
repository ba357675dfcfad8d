package handlers

import (
	"encoding/json"
	"net/http"

	"postfeed/internal/models"
)

// UpdateUserRequest is the whole users/{id} document; the id comes from the path.
type UpdateUserRequest struct {
	Name   string `json:"name" validate:"required,max=100"`
	Email  string `json:"email" validate:"omitempty,email"`
	Avatar string `json:"avatar" validate:"omitempty,url"`
	About  string `json:"about" validate:"max=1000"`
	City   string `json:"city" validate:"max=100"`
	Gender string `json:"gender" validate:"max=50"`
}

func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	user := caller(r)
	if user.ID == "" {
		WriteError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	identity, err := h.UserService.GetIdentity(r.Context(), user.ID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	WriteSuccess(w, identity, http.StatusOK)
}

func (h *Handlers) GetUser(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	identity, err := h.UserService.GetIdentity(r.Context(), pathVar(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	WriteSuccess(w, identity, http.StatusOK)
}

func (h *Handlers) UpdateUser(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		WriteError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.Validate.Struct(req); err != nil {
		WriteError(w, err.Error(), http.StatusBadRequest)
		return
	}

	identity, err := h.UserService.SaveIdentity(r.Context(), caller(r), pathVar(r, "id"), models.Identity{
		Name:   req.Name,
		Email:  req.Email,
		Avatar: req.Avatar,
		About:  req.About,
		City:   req.City,
		Gender: req.Gender,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	WriteSuccess(w, identity, http.StatusOK)
}

func (h *Handlers) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	fileName, data, ok := h.readUpload(w, r, "file")
	if !ok {
		return
	}

	identity, err := h.UserService.SetAvatar(r.Context(), caller(r), pathVar(r, "id"), fileName, data)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	WriteSuccess(w, identity, http.StatusOK)
}
