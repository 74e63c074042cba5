package api

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"gemwall/internal/models"
	"gemwall/internal/store"
)

// fakeStore is an in-memory Storage used by the handler tests. It mirrors the
// business semantics of the real store (duplicate checks, balance guards,
// the withdrawal state machine) without a database.
type fakeStore struct {
	users        map[int64]*models.User
	surveys      map[int64]*models.Survey
	responses    []models.SurveyResponse
	transactions []models.Transaction
	withdrawals  map[int64]*models.WithdrawalRequest
	logs         []models.SecurityLog
	nextID       int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:       make(map[int64]*models.User),
		surveys:     make(map[int64]*models.Survey),
		withdrawals: make(map[int64]*models.WithdrawalRequest),
	}
}

func (f *fakeStore) id() int64 {
	f.nextID++
	return f.nextID
}

func (f *fakeStore) addSurvey(title string, reward int64, active bool) *models.Survey {
	sv := &models.Survey{
		ID:        f.id(),
		Title:     title,
		Reward:    reward,
		Questions: json.RawMessage(`[]`),
		IsActive:  active,
		CreatedAt: time.Now(),
	}
	f.surveys[sv.ID] = sv
	return sv
}

func (f *fakeStore) Ping(ctx context.Context) error { return nil }

func (f *fakeStore) GetUser(ctx context.Context, id int64) (*models.User, error) {
	if u, ok := f.users[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) UpsertUser(ctx context.Context, email, passwordHash, firstName, lastName string, isAdmin bool) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			u.FirstName = firstName
			u.LastName = lastName
			u.UpdatedAt = time.Now()
			copied := *u
			return &copied, nil
		}
	}
	u := &models.User{
		ID:           f.id(),
		Email:        email,
		PasswordHash: passwordHash,
		FirstName:    firstName,
		LastName:     lastName,
		Status:       models.UserStatusActive,
		IsAdmin:      isAdmin,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	f.users[u.ID] = u
	copied := *u
	return &copied, nil
}

func (f *fakeStore) UpdateUserStatus(ctx context.Context, id int64, status models.UserStatus) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	u.Status = status
	u.UpdatedAt = time.Now()
	copied := *u
	return &copied, nil
}

func (f *fakeStore) GetAllUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	for _, u := range f.users {
		users = append(users, *u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID > users[j].ID })
	return users, nil
}

func (f *fakeStore) GetActiveSurveys(ctx context.Context) ([]models.Survey, error) {
	var surveys []models.Survey
	for _, sv := range f.surveys {
		if sv.IsActive {
			surveys = append(surveys, *sv)
		}
	}
	sort.Slice(surveys, func(i, j int) bool { return surveys[i].ID > surveys[j].ID })
	return surveys, nil
}

func (f *fakeStore) GetSurvey(ctx context.Context, id int64) (*models.Survey, error) {
	if sv, ok := f.surveys[id]; ok {
		copied := *sv
		return &copied, nil
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) GetUserSurveyResponses(ctx context.Context, userID int64) ([]models.SurveyResponse, error) {
	var responses []models.SurveyResponse
	for _, r := range f.responses {
		if r.UserID == userID {
			responses = append(responses, r)
		}
	}
	sort.Slice(responses, func(i, j int) bool { return responses[i].ID > responses[j].ID })
	return responses, nil
}

func (f *fakeStore) GetUserTransactions(ctx context.Context, userID int64, limit int) ([]models.Transaction, error) {
	var transactions []models.Transaction
	for _, t := range f.transactions {
		if t.UserID == userID {
			transactions = append(transactions, t)
		}
	}
	sort.Slice(transactions, func(i, j int) bool { return transactions[i].ID > transactions[j].ID })
	if len(transactions) > limit {
		transactions = transactions[:limit]
	}
	return transactions, nil
}

func (f *fakeStore) GetPendingWithdrawals(ctx context.Context) ([]models.WithdrawalRequest, error) {
	var withdrawals []models.WithdrawalRequest
	for _, w := range f.withdrawals {
		if w.Status == models.WithdrawalStatusPending {
			withdrawals = append(withdrawals, *w)
		}
	}
	sort.Slice(withdrawals, func(i, j int) bool { return withdrawals[i].ID < withdrawals[j].ID })
	return withdrawals, nil
}

func (f *fakeStore) GetUserPendingWithdrawal(ctx context.Context, userID int64) (*models.WithdrawalRequest, error) {
	for _, w := range f.withdrawals {
		if w.UserID == userID && w.Status == models.WithdrawalStatusPending {
			copied := *w
			return &copied, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) GetUserStats(ctx context.Context) (*models.UserStats, error) {
	stats := &models.UserStats{TotalUsers: int64(len(f.users))}
	var approvedGems int64
	for _, w := range f.withdrawals {
		switch w.Status {
		case models.WithdrawalStatusPending:
			stats.PendingWithdrawals++
		case models.WithdrawalStatusApproved:
			approvedGems += w.Amount
		}
	}
	stats.TotalPayouts = float64(approvedGems) * models.GemToUSD
	return stats, nil
}

func (f *fakeStore) CreateSecurityLog(ctx context.Context, entry *models.SecurityLog) error {
	entry.CreatedAt = time.Now()
	f.logs = append(f.logs, *entry)
	return nil
}

func (f *fakeStore) CompleteSurvey(ctx context.Context, userID, surveyID int64, answers json.RawMessage, audit store.Audit) (*models.SurveyResponse, error) {
	sv, ok := f.surveys[surveyID]
	if !ok {
		return nil, store.ErrNotFound
	}
	if !sv.IsActive {
		return nil, store.ErrSurveyInactive
	}
	for _, r := range f.responses {
		if r.UserID == userID && r.SurveyID == surveyID {
			return nil, store.ErrDuplicateResponse
		}
	}
	u, ok := f.users[userID]
	if !ok {
		return nil, store.ErrNotFound
	}

	response := models.SurveyResponse{
		ID:          f.id(),
		UserID:      userID,
		SurveyID:    surveyID,
		Answers:     answers,
		GemsAwarded: sv.Reward,
		CompletedAt: time.Now(),
	}
	f.responses = append(f.responses, response)
	u.GemBalance += sv.Reward
	sv.ParticipantCount++
	f.transactions = append(f.transactions, models.Transaction{
		ID:          f.id(),
		UserID:      userID,
		Type:        models.TxTypeSurveyReward,
		Amount:      sv.Reward,
		Description: fmt.Sprintf("Completed survey: %s", sv.Title),
		SurveyID:    &surveyID,
		CreatedAt:   time.Now(),
	})
	return &response, nil
}

func (f *fakeStore) CreateWithdrawal(ctx context.Context, userID, amount int64, walletAddress string, audit store.Audit) (*models.WithdrawalRequest, error) {
	for _, w := range f.withdrawals {
		if w.UserID == userID && w.Status == models.WithdrawalStatusPending {
			return nil, store.ErrPendingWithdrawalExists
		}
	}
	u, ok := f.users[userID]
	if !ok || u.GemBalance < amount {
		return nil, store.ErrInsufficientBalance
	}
	u.GemBalance -= amount

	w := &models.WithdrawalRequest{
		ID:            f.id(),
		UserID:        userID,
		Amount:        amount,
		WalletAddress: walletAddress,
		Status:        models.WithdrawalStatusPending,
		RequestedAt:   time.Now(),
	}
	f.withdrawals[w.ID] = w
	f.transactions = append(f.transactions, models.Transaction{
		ID:           f.id(),
		UserID:       userID,
		Type:         models.TxTypeWithdrawalRequest,
		Amount:       -amount,
		Description:  fmt.Sprintf("Requested withdrawal of %d gems", amount),
		WithdrawalID: &w.ID,
		CreatedAt:    time.Now(),
	})
	copied := *w
	return &copied, nil
}

func (f *fakeStore) ProcessWithdrawal(ctx context.Context, withdrawalID int64, status models.WithdrawalStatus, adminNotes string, adminID int64, audit store.Audit) (*models.WithdrawalRequest, error) {
	w, ok := f.withdrawals[withdrawalID]
	if !ok {
		return nil, store.ErrNotFound
	}
	if w.Status != models.WithdrawalStatusPending {
		return nil, store.ErrAlreadyProcessed
	}
	now := time.Now()
	w.Status = status
	w.AdminNotes = adminNotes
	w.ProcessedAt = &now
	w.ProcessedBy = &adminID

	entry := models.Transaction{
		ID:           f.id(),
		UserID:       w.UserID,
		Type:         models.TxTypeWithdrawalApproved,
		Amount:       0,
		WithdrawalID: &w.ID,
		CreatedAt:    now,
	}
	if status == models.WithdrawalStatusRejected {
		if u, ok := f.users[w.UserID]; ok {
			u.GemBalance += w.Amount
		}
		entry.Type = models.TxTypeWithdrawalRejected
		entry.Amount = w.Amount
	}
	f.transactions = append(f.transactions, entry)
	copied := *w
	return &copied, nil
}

func (f *fakeStore) CreditOfferwall(ctx context.Context, userID, amount int64, description, provider, offerID string, audit store.Audit) (*models.Transaction, error) {
	u, ok := f.users[userID]
	if !ok {
		return nil, store.ErrNotFound
	}
	u.GemBalance += amount
	entry := models.Transaction{
		ID:          f.id(),
		UserID:      userID,
		Type:        models.TxTypeOfferwallReward,
		Amount:      amount,
		Description: description,
		Provider:    provider,
		OfferID:     offerID,
		CreatedAt:   time.Now(),
	}
	f.transactions = append(f.transactions, entry)
	copied := entry
	return &copied, nil
}
