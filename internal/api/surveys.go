package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"gemwall/internal/middleware"
	"gemwall/internal/models"
	"gemwall/internal/utils"

	"go.uber.org/zap"
)

func (s *Server) listSurveys(w http.ResponseWriter, r *http.Request) {
	surveys, err := s.storage.GetActiveSurveys(r.Context())
	if err != nil {
		s.respondStoreError(w, err)
		return
	}
	if surveys == nil {
		surveys = []models.Survey{}
	}
	writeJSON(w, http.StatusOK, surveys)
}

func (s *Server) getSurvey(w http.ResponseWriter, r *http.Request) {
	id, err := utils.GetIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid survey id")
		return
	}

	survey, err := s.storage.GetSurvey(r.Context(), id)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, survey)
}

func (s *Server) completeSurvey(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())

	id, err := utils.GetIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid survey id")
		return
	}

	var req models.CompleteSurveyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	response, err := s.storage.CompleteSurvey(r.Context(), claims.UserID, id, req.Answers, audit(r))
	if err != nil {
		s.respondStoreError(w, err)
		return
	}
	s.logger.Info("survey completed",
		zap.Int64("user_id", claims.UserID),
		zap.Int64("survey_id", id),
		zap.Int64("gems_awarded", response.GemsAwarded),
	)

	writeJSON(w, http.StatusCreated, response)
}

func (s *Server) listSurveyResponses(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())

	responses, err := s.storage.GetUserSurveyResponses(r.Context(), claims.UserID)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}
	if responses == nil {
		responses = []models.SurveyResponse{}
	}
	writeJSON(w, http.StatusOK, responses)
}

func (s *Server) listTransactions(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())

	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 100 {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and 100")
			return
		}
		limit = n
	}

	transactions, err := s.storage.GetUserTransactions(r.Context(), claims.UserID, limit)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}
	if transactions == nil {
		transactions = []models.Transaction{}
	}
	writeJSON(w, http.StatusOK, transactions)
}
