package api

import (
	"encoding/json"
	"net/http"

	"gemwall/internal/middleware"
	"gemwall/internal/models"
	"gemwall/internal/utils"

	"go.uber.org/zap"
)

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.storage.GetAllUsers(r.Context())
	if err != nil {
		s.respondStoreError(w, err)
		return
	}
	if users == nil {
		users = []models.User{}
	}
	writeJSON(w, http.StatusOK, users)
}

func (s *Server) listPendingWithdrawals(w http.ResponseWriter, r *http.Request) {
	withdrawals, err := s.storage.GetPendingWithdrawals(r.Context())
	if err != nil {
		s.respondStoreError(w, err)
		return
	}
	if withdrawals == nil {
		withdrawals = []models.WithdrawalRequest{}
	}
	writeJSON(w, http.StatusOK, withdrawals)
}

func (s *Server) getStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.storage.GetUserStats(r.Context())
	if err != nil {
		s.respondStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) processWithdrawal(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())

	id, err := utils.GetIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid withdrawal id")
		return
	}

	var req models.ProcessWithdrawalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Status != models.WithdrawalStatusApproved && req.Status != models.WithdrawalStatusRejected {
		writeError(w, http.StatusBadRequest, "status must be approved or rejected")
		return
	}

	withdrawal, err := s.storage.ProcessWithdrawal(r.Context(), id, req.Status, req.AdminNotes, claims.UserID, audit(r))
	if err != nil {
		s.respondStoreError(w, err)
		return
	}
	s.logger.Info("withdrawal processed",
		zap.Int64("withdrawal_id", withdrawal.ID),
		zap.Int64("user_id", withdrawal.UserID),
		zap.String("status", string(withdrawal.Status)),
		zap.Int64("processed_by", claims.UserID),
	)

	writeJSON(w, http.StatusOK, withdrawal)
}

func (s *Server) updateUserStatus(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())

	id, err := utils.GetIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	var req models.UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !models.ValidUserStatus(req.Status) {
		writeError(w, http.StatusBadRequest, "status must be active, banned or suspended")
		return
	}

	user, err := s.storage.UpdateUserStatus(r.Context(), id, req.Status)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}
	s.logger.Info("user status updated",
		zap.Int64("user_id", user.ID),
		zap.String("status", string(user.Status)),
		zap.Int64("updated_by", claims.UserID),
	)

	a := audit(r)
	details, _ := json.Marshal(map[string]any{"status": user.Status, "updated_by": claims.UserID})
	if err := s.storage.CreateSecurityLog(r.Context(), &models.SecurityLog{
		UserID:    &user.ID,
		Action:    "user_status_updated",
		Details:   details,
		IPAddress: a.IPAddress,
		UserAgent: a.UserAgent,
	}); err != nil {
		s.logger.Warn("writing security log", zap.Error(err))
	}

	writeJSON(w, http.StatusOK, user)
}
