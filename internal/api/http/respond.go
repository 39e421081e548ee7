package http

import (
	"encoding/json"
	"net/http"

	"gomate-backend/internal/domain"
	"gomate-backend/internal/logger"
)

// All endpoints answer with the same envelope: a success flag plus either a
// data payload or an error string.
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func writeData(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Success: true, Data: data})
}

func writeErrorMessage(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Success: false, Error: msg})
}

// writeError maps the domain error taxonomy onto HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	switch domain.KindOf(err) {
	case domain.KindValidation:
		writeErrorMessage(w, http.StatusBadRequest, err.Error())
	case domain.KindNotFound:
		writeErrorMessage(w, http.StatusNotFound, err.Error())
	case domain.KindAuthorization:
		writeErrorMessage(w, http.StatusForbidden, err.Error())
	case domain.KindConflict:
		writeErrorMessage(w, http.StatusConflict, err.Error())
	default:
		logger.Error("Unexpected error", "error", err)
		writeErrorMessage(w, http.StatusInternalServerError, "internal server error")
	}
}

func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return domain.Validationf("invalid request body")
	}
	return nil
}
