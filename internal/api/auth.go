package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"gemwall/internal/middleware"
	"gemwall/internal/models"
	"gemwall/internal/store"
	"gemwall/internal/utils"

	"go.uber.org/zap"
)

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	if _, err := s.storage.GetUserByEmail(r.Context(), req.Email); err == nil {
		writeError(w, http.StatusBadRequest, store.ErrEmailTaken.Error())
		return
	} else if !errors.Is(err, store.ErrNotFound) {
		s.respondStoreError(w, err)
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		s.logger.Error("hashing password", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to create account")
		return
	}

	// Admin rights come from configuration, not from a hardcoded address.
	isAdmin := s.cfg.IsAdminEmail(req.Email)

	user, err := s.storage.UpsertUser(r.Context(), req.Email, hash, req.FirstName, req.LastName, isAdmin)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}
	s.logger.Info("user registered",
		zap.Int64("user_id", user.ID),
		zap.Bool("is_admin", user.IsAdmin),
	)

	a := audit(r)
	if err := s.storage.CreateSecurityLog(r.Context(), &models.SecurityLog{
		UserID:    &user.ID,
		Action:    "user_registered",
		IPAddress: a.IPAddress,
		UserAgent: a.UserAgent,
	}); err != nil {
		s.logger.Warn("writing security log", zap.Error(err))
	}

	token, err := s.auth.GenerateToken(user.ID, user.IsAdmin)
	if err != nil {
		s.logger.Error("generating token", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to create account")
		return
	}

	writeJSON(w, http.StatusCreated, models.LoginResponse{Token: token, User: user})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	user, err := s.storage.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	if !utils.CheckPasswordHash(req.Password, user.PasswordHash) {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	if user.Status != models.UserStatusActive {
		writeError(w, http.StatusForbidden, "account is "+string(user.Status))
		return
	}

	a := audit(r)
	if err := s.storage.CreateSecurityLog(r.Context(), &models.SecurityLog{
		UserID:    &user.ID,
		Action:    "user_login",
		IPAddress: a.IPAddress,
		UserAgent: a.UserAgent,
	}); err != nil {
		s.logger.Warn("writing security log", zap.Error(err))
	}

	token, err := s.auth.GenerateToken(user.ID, user.IsAdmin)
	if err != nil {
		s.logger.Error("generating token", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to log in")
		return
	}

	writeJSON(w, http.StatusOK, models.LoginResponse{Token: token, User: user})
}

func (s *Server) getCurrentUser(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	user, err := s.storage.GetUser(r.Context(), claims.UserID)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}
