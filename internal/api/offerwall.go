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

// Offerwall completions are reported by the client and credited at face
// value; there is no provider-side verification. Shape checks (positive,
// capped) are the only gate, and every credit lands in the security log
// with its provider metadata.

func (s *Server) completeOffer(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())

	var req models.OfferwallCompleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validateOfferAmount(req.Amount); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Provider) == "" {
		writeError(w, http.StatusBadRequest, "provider is required")
		return
	}

	description := "Offerwall reward"
	if req.Title != "" {
		description = "Completed offer: " + req.Title
	}

	entry, err := s.storage.CreditOfferwall(r.Context(), claims.UserID, req.Amount, description, req.Provider, req.OfferID, audit(r))
	if err != nil {
		s.respondStoreError(w, err)
		return
	}
	s.logger.Info("offerwall reward credited",
		zap.Int64("user_id", claims.UserID),
		zap.String("provider", req.Provider),
		zap.String("offer_id", req.OfferID),
		zap.Int64("amount", req.Amount),
	)

	writeJSON(w, http.StatusCreated, entry)
}

func (s *Server) reportEarnings(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())

	var req models.OfferwallEarningsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validateOfferAmount(req.Amount); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Provider) == "" {
		writeError(w, http.StatusBadRequest, "provider is required")
		return
	}

	description := "Offerwall earnings from " + req.Provider
	entry, err := s.storage.CreditOfferwall(r.Context(), claims.UserID, req.Amount, description, req.Provider, req.TransactionID, audit(r))
	if err != nil {
		s.respondStoreError(w, err)
		return
	}
	s.logger.Info("offerwall earnings credited",
		zap.Int64("user_id", claims.UserID),
		zap.String("provider", req.Provider),
		zap.Int64("amount", req.Amount),
	)

	writeJSON(w, http.StatusCreated, entry)
}

func validateOfferAmount(amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("amount must be positive")
	}
	if amount > models.MaxOfferwallReward {
		return fmt.Errorf("amount exceeds the maximum of %d gems", models.MaxOfferwallReward)
	}
	return nil
}
