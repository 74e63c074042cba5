package models

import "time"

type TransactionType string

const (
	TxTypeSurveyReward       TransactionType = "survey_reward"
	TxTypeOfferwallReward    TransactionType = "offerwall_reward"
	TxTypeWithdrawalRequest  TransactionType = "withdrawal_request"
	TxTypeWithdrawalApproved TransactionType = "withdrawal_approved"
	TxTypeWithdrawalRejected TransactionType = "withdrawal_rejected"
)

// Transaction is one append-only ledger entry. The sum of a user's amounts
// equals their gem balance; both are written inside the same DB transaction.
type Transaction struct {
	ID           int64           `json:"id"`
	UserID       int64           `json:"user_id"`
	Type         TransactionType `json:"type"`
	Amount       int64           `json:"amount"`
	Description  string          `json:"description"`
	SurveyID     *int64          `json:"survey_id,omitempty"`
	WithdrawalID *int64          `json:"withdrawal_id,omitempty"`
	Provider     string          `json:"provider,omitempty"`
	OfferID      string          `json:"offer_id,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}
