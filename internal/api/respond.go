package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"gemwall/internal/store"

	"go.uber.org/zap"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

// respondStoreError maps storage sentinels onto the error taxonomy:
// not-found -> 404, business-rule violations -> 400, the rest -> 500.
func (s *Server) respondStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, store.ErrEmailTaken),
		errors.Is(err, store.ErrDuplicateResponse),
		errors.Is(err, store.ErrSurveyInactive),
		errors.Is(err, store.ErrInsufficientBalance),
		errors.Is(err, store.ErrPendingWithdrawalExists),
		errors.Is(err, store.ErrAlreadyProcessed):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.logger.Error("storage error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
