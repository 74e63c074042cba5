package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"gemwall/internal/models"

	"github.com/google/uuid"
)

// Store is the single access point to all persisted entities. Simple lookups
// are single statements; every multi-write operation runs inside one database
// transaction so the ledger and the balance cannot drift apart.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Audit carries the requester context recorded with every security log row.
type Audit struct {
	IPAddress string
	UserAgent string
}

const userColumns = `id, email, password_hash, first_name, last_name, gem_balance, status, is_admin, email_verified, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName,
		&u.GemBalance, &u.Status, &u.IsAdmin, &u.EmailVerified,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Store) GetUser(ctx context.Context, id int64) (*models.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	user, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return user, err
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	user, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return user, err
}

// UpsertUser inserts a user or, if the email is already registered, refreshes
// the mutable display fields. The stored password hash is never overwritten
// on conflict.
func (s *Store) UpsertUser(ctx context.Context, email, passwordHash, firstName, lastName string, isAdmin bool) (*models.User, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO users (email, password_hash, first_name, last_name, is_admin)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (email) DO UPDATE
		SET first_name = EXCLUDED.first_name,
		    last_name = EXCLUDED.last_name,
		    updated_at = NOW()
		RETURNING `+userColumns,
		email, passwordHash, firstName, lastName, isAdmin)
	return scanUser(row)
}

func (s *Store) UpdateUserStatus(ctx context.Context, id int64, status models.UserStatus) (*models.User, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE users SET status = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING `+userColumns,
		status, id)
	user, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return user, err
}

func (s *Store) GetAllUsers(ctx context.Context) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

const surveyColumns = `id, title, description, duration_minutes, reward, questions, is_active, participant_count, created_at`

func scanSurvey(row rowScanner) (*models.Survey, error) {
	var sv models.Survey
	err := row.Scan(
		&sv.ID, &sv.Title, &sv.Description, &sv.DurationMinutes, &sv.Reward,
		&sv.Questions, &sv.IsActive, &sv.ParticipantCount, &sv.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &sv, nil
}

func (s *Store) GetActiveSurveys(ctx context.Context) ([]models.Survey, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+surveyColumns+` FROM surveys WHERE is_active = TRUE ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var surveys []models.Survey
	for rows.Next() {
		sv, err := scanSurvey(rows)
		if err != nil {
			return nil, err
		}
		surveys = append(surveys, *sv)
	}
	return surveys, rows.Err()
}

func (s *Store) GetSurvey(ctx context.Context, id int64) (*models.Survey, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+surveyColumns+` FROM surveys WHERE id = $1`, id)
	survey, err := scanSurvey(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return survey, err
}

func (s *Store) GetUserSurveyResponses(ctx context.Context, userID int64) ([]models.SurveyResponse, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, survey_id, answers, gems_awarded, completed_at
		FROM survey_responses
		WHERE user_id = $1
		ORDER BY completed_at DESC`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var responses []models.SurveyResponse
	for rows.Next() {
		var r models.SurveyResponse
		if err := rows.Scan(&r.ID, &r.UserID, &r.SurveyID, &r.Answers, &r.GemsAwarded, &r.CompletedAt); err != nil {
			return nil, err
		}
		responses = append(responses, r)
	}
	return responses, rows.Err()
}

const transactionColumns = `id, user_id, type, amount, description, survey_id, withdrawal_id, provider, offer_id, created_at`

func scanTransaction(row rowScanner) (*models.Transaction, error) {
	var t models.Transaction
	var surveyID, withdrawalID sql.NullInt64
	err := row.Scan(
		&t.ID, &t.UserID, &t.Type, &t.Amount, &t.Description,
		&surveyID, &withdrawalID, &t.Provider, &t.OfferID, &t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if surveyID.Valid {
		t.SurveyID = &surveyID.Int64
	}
	if withdrawalID.Valid {
		t.WithdrawalID = &withdrawalID.Int64
	}
	return &t, nil
}

func (s *Store) GetUserTransactions(ctx context.Context, userID int64, limit int) ([]models.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`,
		userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transactions []models.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, *t)
	}
	return transactions, rows.Err()
}

const withdrawalColumns = `id, user_id, amount, wallet_address, status, admin_notes, requested_at, processed_at, processed_by`

func scanWithdrawal(row rowScanner) (*models.WithdrawalRequest, error) {
	var w models.WithdrawalRequest
	var processedAt sql.NullTime
	var processedBy sql.NullInt64
	err := row.Scan(
		&w.ID, &w.UserID, &w.Amount, &w.WalletAddress, &w.Status,
		&w.AdminNotes, &w.RequestedAt, &processedAt, &processedBy,
	)
	if err != nil {
		return nil, err
	}
	if processedAt.Valid {
		w.ProcessedAt = &processedAt.Time
	}
	if processedBy.Valid {
		w.ProcessedBy = &processedBy.Int64
	}
	return &w, nil
}

// GetPendingWithdrawals returns the admin review queue, oldest request first.
func (s *Store) GetPendingWithdrawals(ctx context.Context) ([]models.WithdrawalRequest, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+withdrawalColumns+`
		FROM withdrawal_requests
		WHERE status = 'pending'
		ORDER BY requested_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var withdrawals []models.WithdrawalRequest
	for rows.Next() {
		w, err := scanWithdrawal(rows)
		if err != nil {
			return nil, err
		}
		withdrawals = append(withdrawals, *w)
	}
	return withdrawals, rows.Err()
}

func (s *Store) GetUserPendingWithdrawal(ctx context.Context, userID int64) (*models.WithdrawalRequest, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+withdrawalColumns+`
		FROM withdrawal_requests
		WHERE user_id = $1 AND status = 'pending'`,
		userID)
	withdrawal, err := scanWithdrawal(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return withdrawal, err
}

func (s *Store) GetUserStats(ctx context.Context) (*models.UserStats, error) {
	var stats models.UserStats
	var approvedGems int64
	err := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM withdrawal_requests WHERE status = 'pending'),
			(SELECT COALESCE(SUM(amount), 0) FROM withdrawal_requests WHERE status = 'approved')`,
	).Scan(&stats.TotalUsers, &stats.PendingWithdrawals, &approvedGems)
	if err != nil {
		return nil, err
	}
	stats.TotalPayouts = float64(approvedGems) * models.GemToUSD
	return &stats, nil
}

func (s *Store) CreateSecurityLog(ctx context.Context, entry *models.SecurityLog) error {
	return insertSecurityLog(ctx, s.db, entry)
}

type execQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertSecurityLog(ctx context.Context, db execQuerier, entry *models.SecurityLog) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	details := entry.Details
	if details == nil {
		details = json.RawMessage(`{}`)
	}
	_, err := db.ExecContext(ctx, `
		INSERT INTO security_logs (id, user_id, action, details, ip_address, user_agent)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		entry.ID, entry.UserID, entry.Action, []byte(details), entry.IPAddress, entry.UserAgent)
	return err
}

func insertTransaction(ctx context.Context, tx *sql.Tx, t *models.Transaction) error {
	return tx.QueryRowContext(ctx, `
		INSERT INTO transactions (user_id, type, amount, description, survey_id, withdrawal_id, provider, offer_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`,
		t.UserID, t.Type, t.Amount, t.Description, t.SurveyID, t.WithdrawalID, t.Provider, t.OfferID,
	).Scan(&t.ID, &t.CreatedAt)
}

// adjustBalance applies a relative balance change and refuses to take the
// balance negative. Returns the new balance; sql.ErrNoRows means the guard
// (or the user lookup) failed.
func adjustBalance(ctx context.Context, tx *sql.Tx, userID, delta int64) (int64, error) {
	var balance int64
	err := tx.QueryRowContext(ctx, `
		UPDATE users SET gem_balance = gem_balance + $1, updated_at = NOW()
		WHERE id = $2 AND gem_balance + $1 >= 0
		RETURNING gem_balance`,
		delta, userID,
	).Scan(&balance)
	return balance, err
}

// CompleteSurvey records a survey response, credits the reward, bumps the
// participant counter, appends the ledger entry and the audit row — all in
// one transaction.
func (s *Store) CompleteSurvey(ctx context.Context, userID, surveyID int64, answers json.RawMessage, audit Audit) (*models.SurveyResponse, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var reward int64
	var title string
	var isActive bool
	err = tx.QueryRowContext(ctx,
		`SELECT reward, title, is_active FROM surveys WHERE id = $1`, surveyID,
	).Scan(&reward, &title, &isActive)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if !isActive {
		return nil, ErrSurveyInactive
	}

	var alreadyCompleted bool
	err = tx.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM survey_responses WHERE user_id = $1 AND survey_id = $2)`,
		userID, surveyID,
	).Scan(&alreadyCompleted)
	if err != nil {
		return nil, err
	}
	if alreadyCompleted {
		return nil, ErrDuplicateResponse
	}

	if answers == nil {
		answers = json.RawMessage(`{}`)
	}
	response := &models.SurveyResponse{
		UserID:      userID,
		SurveyID:    surveyID,
		Answers:     answers,
		GemsAwarded: reward,
	}
	err = tx.QueryRowContext(ctx, `
		INSERT INTO survey_responses (user_id, survey_id, answers, gems_awarded)
		VALUES ($1, $2, $3, $4)
		RETURNING id, completed_at`,
		userID, surveyID, []byte(answers), reward,
	).Scan(&response.ID, &response.CompletedAt)
	if isUniqueViolation(err) {
		return nil, ErrDuplicateResponse
	}
	if err != nil {
		return nil, err
	}

	if _, err = adjustBalance(ctx, tx, userID, reward); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if _, err = tx.ExecContext(ctx,
		`UPDATE surveys SET participant_count = participant_count + 1 WHERE id = $1`,
		surveyID); err != nil {
		return nil, err
	}

	if err = insertTransaction(ctx, tx, &models.Transaction{
		UserID:      userID,
		Type:        models.TxTypeSurveyReward,
		Amount:      reward,
		Description: fmt.Sprintf("Completed survey: %s", title),
		SurveyID:    &surveyID,
	}); err != nil {
		return nil, err
	}

	details, _ := json.Marshal(map[string]any{"survey_id": surveyID, "gems_awarded": reward})
	if err = insertSecurityLog(ctx, tx, &models.SecurityLog{
		UserID:    &userID,
		Action:    "survey_completed",
		Details:   details,
		IPAddress: audit.IPAddress,
		UserAgent: audit.UserAgent,
	}); err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return response, nil
}

// CreateWithdrawal deducts the amount up front and opens a pending request.
// The partial unique index keeps concurrent submissions down to one pending
// request even when both pass the pre-check.
func (s *Store) CreateWithdrawal(ctx context.Context, userID, amount int64, walletAddress string, audit Audit) (*models.WithdrawalRequest, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var hasPending bool
	err = tx.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM withdrawal_requests WHERE user_id = $1 AND status = 'pending')`,
		userID,
	).Scan(&hasPending)
	if err != nil {
		return nil, err
	}
	if hasPending {
		return nil, ErrPendingWithdrawalExists
	}

	if _, err = adjustBalance(ctx, tx, userID, -amount); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrInsufficientBalance
		}
		return nil, err
	}

	withdrawal := &models.WithdrawalRequest{
		UserID:        userID,
		Amount:        amount,
		WalletAddress: walletAddress,
		Status:        models.WithdrawalStatusPending,
	}
	err = tx.QueryRowContext(ctx, `
		INSERT INTO withdrawal_requests (user_id, amount, wallet_address)
		VALUES ($1, $2, $3)
		RETURNING id, requested_at`,
		userID, amount, walletAddress,
	).Scan(&withdrawal.ID, &withdrawal.RequestedAt)
	if isUniqueViolation(err) {
		return nil, ErrPendingWithdrawalExists
	}
	if err != nil {
		return nil, err
	}

	if err = insertTransaction(ctx, tx, &models.Transaction{
		UserID:       userID,
		Type:         models.TxTypeWithdrawalRequest,
		Amount:       -amount,
		Description:  fmt.Sprintf("Requested withdrawal of %d gems", amount),
		WithdrawalID: &withdrawal.ID,
	}); err != nil {
		return nil, err
	}

	details, _ := json.Marshal(map[string]any{"withdrawal_id": withdrawal.ID, "amount": amount})
	if err = insertSecurityLog(ctx, tx, &models.SecurityLog{
		UserID:    &userID,
		Action:    "withdrawal_requested",
		Details:   details,
		IPAddress: audit.IPAddress,
		UserAgent: audit.UserAgent,
	}); err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return withdrawal, nil
}

// ProcessWithdrawal moves a pending request to approved or rejected. Approval
// appends a zero-amount ledger entry (the gems left the balance at request
// time); rejection returns the gems and records the refund.
func (s *Store) ProcessWithdrawal(ctx context.Context, withdrawalID int64, status models.WithdrawalStatus, adminNotes string, adminID int64, audit Audit) (*models.WithdrawalRequest, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `
		UPDATE withdrawal_requests
		SET status = $1, admin_notes = $2, processed_by = $3, processed_at = NOW()
		WHERE id = $4 AND status = 'pending'
		RETURNING `+withdrawalColumns,
		status, adminNotes, adminID, withdrawalID)
	withdrawal, err := scanWithdrawal(row)
	if err == sql.ErrNoRows {
		// pending is the only non-terminal state; figure out which way we lost
		var current string
		err = tx.QueryRowContext(ctx,
			`SELECT status FROM withdrawal_requests WHERE id = $1`, withdrawalID,
		).Scan(&current)
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		if err != nil {
			return nil, err
		}
		return nil, ErrAlreadyProcessed
	}
	if err != nil {
		return nil, err
	}

	entry := &models.Transaction{
		UserID:       withdrawal.UserID,
		Type:         models.TxTypeWithdrawalApproved,
		Amount:       0,
		Description:  fmt.Sprintf("Withdrawal of %d gems approved", withdrawal.Amount),
		WithdrawalID: &withdrawal.ID,
	}
	if status == models.WithdrawalStatusRejected {
		if _, err = adjustBalance(ctx, tx, withdrawal.UserID, withdrawal.Amount); err != nil {
			if err == sql.ErrNoRows {
				return nil, ErrNotFound
			}
			return nil, err
		}
		entry.Type = models.TxTypeWithdrawalRejected
		entry.Amount = withdrawal.Amount
		entry.Description = fmt.Sprintf("Withdrawal of %d gems rejected, gems returned", withdrawal.Amount)
	}
	if err = insertTransaction(ctx, tx, entry); err != nil {
		return nil, err
	}

	details, _ := json.Marshal(map[string]any{
		"withdrawal_id": withdrawal.ID,
		"amount":        withdrawal.Amount,
		"status":        status,
		"processed_by":  adminID,
	})
	if err = insertSecurityLog(ctx, tx, &models.SecurityLog{
		UserID:    &withdrawal.UserID,
		Action:    "withdrawal_" + string(status),
		Details:   details,
		IPAddress: audit.IPAddress,
		UserAgent: audit.UserAgent,
	}); err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return withdrawal, nil
}

// CreditOfferwall credits a client-reported offerwall reward. The amount is
// validated for shape by the handler but not verified against the provider.
func (s *Store) CreditOfferwall(ctx context.Context, userID, amount int64, description, provider, offerID string, audit Audit) (*models.Transaction, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if _, err = adjustBalance(ctx, tx, userID, amount); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}

	entry := &models.Transaction{
		UserID:      userID,
		Type:        models.TxTypeOfferwallReward,
		Amount:      amount,
		Description: description,
		Provider:    provider,
		OfferID:     offerID,
	}
	if err = insertTransaction(ctx, tx, entry); err != nil {
		return nil, err
	}

	details, _ := json.Marshal(map[string]any{
		"provider": provider,
		"offer_id": offerID,
		"amount":   amount,
	})
	if err = insertSecurityLog(ctx, tx, &models.SecurityLog{
		UserID:    &userID,
		Action:    "offerwall_reward",
		Details:   details,
		IPAddress: audit.IPAddress,
		UserAgent: audit.UserAgent,
	}); err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return entry, nil
}
