package http

import (
	"net/http"

	"gomate-backend/internal/service"
)

type UserHandler struct {
	userSvc service.UserService
}

func NewUserHandler(userSvc service.UserService) *UserHandler {
	return &UserHandler{userSvc: userSvc}
}

type updateProfileRequest struct {
	Name string `json:"name"`
	Bio  string `json:"bio"`
}

type avatarUploadRequest struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
}

type avatarConfirmRequest struct {
	Key string `json:"key"`
}

func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	user, err := h.userSvc.GetProfile(r.Context(), userIDFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, user)
}

func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req updateProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.userSvc.UpdateProfile(r.Context(), userIDFrom(r), req.Name, req.Bio)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, user)
}

func (h *UserHandler) AvatarUploadURL(w http.ResponseWriter, r *http.Request) {
	var req avatarUploadRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	uploadURL, key, err := h.userSvc.GetAvatarUploadURL(r.Context(), userIDFrom(r), req.Filename, req.ContentType)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, map[string]string{"upload_url": uploadURL, "key": key})
}

func (h *UserHandler) ConfirmAvatar(w http.ResponseWriter, r *http.Request) {
	var req avatarConfirmRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.userSvc.ConfirmAvatar(r.Context(), userIDFrom(r), req.Key)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, user)
}
