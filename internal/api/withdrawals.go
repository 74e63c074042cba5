package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"gemwall/internal/middleware"
	"gemwall/internal/models"

	"go.uber.org/zap"
)

func (s *Server) createWithdrawal(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())

	var req models.CreateWithdrawalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Amount < models.MinWithdrawalGems {
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("minimum withdrawal is %d gems", models.MinWithdrawalGems))
		return
	}
	if strings.TrimSpace(req.WalletAddress) == "" {
		writeError(w, http.StatusBadRequest, "wallet address is required")
		return
	}

	withdrawal, err := s.storage.CreateWithdrawal(r.Context(), claims.UserID, req.Amount, req.WalletAddress, audit(r))
	if err != nil {
		s.respondStoreError(w, err)
		return
	}
	s.logger.Info("withdrawal requested",
		zap.Int64("user_id", claims.UserID),
		zap.Int64("withdrawal_id", withdrawal.ID),
		zap.Int64("amount", withdrawal.Amount),
	)

	writeJSON(w, http.StatusCreated, withdrawal)
}

func (s *Server) getPendingWithdrawal(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())

	withdrawal, err := s.storage.GetUserPendingWithdrawal(r.Context(), claims.UserID)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, withdrawal)
}
