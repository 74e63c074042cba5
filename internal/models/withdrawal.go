package models

import "time"

type WithdrawalStatus string

const (
	WithdrawalStatusPending  WithdrawalStatus = "pending"
	WithdrawalStatusApproved WithdrawalStatus = "approved"
	WithdrawalStatusRejected WithdrawalStatus = "rejected"
)

// MinWithdrawalGems is the smallest amount a user may request.
const MinWithdrawalGems int64 = 100

// GemToUSD converts gem amounts to the display currency for payout totals.
const GemToUSD = 0.01

// WithdrawalRequest moves pending -> approved|rejected exactly once;
// both end states are terminal.
type WithdrawalRequest struct {
	ID            int64            `json:"id"`
	UserID        int64            `json:"user_id"`
	Amount        int64            `json:"amount"`
	WalletAddress string           `json:"wallet_address"`
	Status        WithdrawalStatus `json:"status"`
	AdminNotes    string           `json:"admin_notes,omitempty"`
	RequestedAt   time.Time        `json:"requested_at"`
	ProcessedAt   *time.Time       `json:"processed_at,omitempty"`
	ProcessedBy   *int64           `json:"processed_by,omitempty"`
}

type CreateWithdrawalRequest struct {
	Amount        int64  `json:"amount"`
	WalletAddress string `json:"wallet_address"`
}

type ProcessWithdrawalRequest struct {
	Status     WithdrawalStatus `json:"status"`
	AdminNotes string           `json:"admin_notes"`
}
