package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"gemwall/internal/config"
	"gemwall/internal/middleware"
	"gemwall/internal/models"
	"gemwall/internal/store"

	"go.uber.org/zap"
)

// Storage is everything the handlers need from the persistence layer. The
// multi-write operations are atomic on the real store; tests substitute an
// in-memory implementation.
type Storage interface {
	Ping(ctx context.Context) error

	GetUser(ctx context.Context, id int64) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpsertUser(ctx context.Context, email, passwordHash, firstName, lastName string, isAdmin bool) (*models.User, error)
	UpdateUserStatus(ctx context.Context, id int64, status models.UserStatus) (*models.User, error)
	GetAllUsers(ctx context.Context) ([]models.User, error)

	GetActiveSurveys(ctx context.Context) ([]models.Survey, error)
	GetSurvey(ctx context.Context, id int64) (*models.Survey, error)
	GetUserSurveyResponses(ctx context.Context, userID int64) ([]models.SurveyResponse, error)
	GetUserTransactions(ctx context.Context, userID int64, limit int) ([]models.Transaction, error)

	GetPendingWithdrawals(ctx context.Context) ([]models.WithdrawalRequest, error)
	GetUserPendingWithdrawal(ctx context.Context, userID int64) (*models.WithdrawalRequest, error)
	GetUserStats(ctx context.Context) (*models.UserStats, error)
	CreateSecurityLog(ctx context.Context, entry *models.SecurityLog) error

	CompleteSurvey(ctx context.Context, userID, surveyID int64, answers json.RawMessage, audit store.Audit) (*models.SurveyResponse, error)
	CreateWithdrawal(ctx context.Context, userID, amount int64, walletAddress string, audit store.Audit) (*models.WithdrawalRequest, error)
	ProcessWithdrawal(ctx context.Context, withdrawalID int64, status models.WithdrawalStatus, adminNotes string, adminID int64, audit store.Audit) (*models.WithdrawalRequest, error)
	CreditOfferwall(ctx context.Context, userID, amount int64, description, provider, offerID string, audit store.Audit) (*models.Transaction, error)
}

type Server struct {
	storage Storage
	auth    *middleware.Auth
	cfg     *config.Config
	logger  *zap.Logger
}

func NewServer(storage Storage, cfg *config.Config, logger *zap.Logger) *Server {
	return &Server{
		storage: storage,
		auth:    middleware.NewAuth(cfg.JWTSecret),
		cfg:     cfg,
		logger:  logger,
	}
}

func (s *Server) Start(addr string) error {
	server := http.Server{
		Addr:         addr,
		Handler:      s.RegisterRoutes(),
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return server.ListenAndServe()
}

// audit collects the requester context recorded with security log rows.
func audit(r *http.Request) store.Audit {
	return store.Audit{
		IPAddress: r.RemoteAddr,
		UserAgent: r.UserAgent(),
	}
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	if err := s.storage.Ping(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
