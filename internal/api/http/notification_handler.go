package http

import (
	"net/http"
	"strconv"

	"gomate-backend/internal/domain"
	"gomate-backend/internal/service"

	"github.com/gorilla/mux"
)

type NotificationHandler struct {
	noteSvc service.NotificationService
}

func NewNotificationHandler(noteSvc service.NotificationService) *NotificationHandler {
	return &NotificationHandler{noteSvc: noteSvc}
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := parseIntDefault(q.Get("page"), 1)
	pageSize := parseIntDefault(q.Get("page_size"), 20)

	notes, total, err := h.noteSvc.GetNotifications(r.Context(), userIDFrom(r), page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{"notifications": notes, "total": total})
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 32)
	if err != nil {
		writeError(w, domain.Validationf("invalid notification id"))
		return
	}

	if err := h.noteSvc.MarkAsRead(r.Context(), userIDFrom(r), int32(id)); err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, nil)
}
