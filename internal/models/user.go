package models

import "time"

type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusBanned    UserStatus = "banned"
	UserStatusSuspended UserStatus = "suspended"
)

// ValidUserStatus reports whether s is one of the statuses the schema accepts.
func ValidUserStatus(s UserStatus) bool {
	switch s {
	case UserStatusActive, UserStatusBanned, UserStatusSuspended:
		return true
	}
	return false
}

type User struct {
	ID            int64      `json:"id"`
	Email         string     `json:"email"`
	PasswordHash  string     `json:"-"`
	FirstName     string     `json:"first_name"`
	LastName      string     `json:"last_name"`
	GemBalance    int64      `json:"gem_balance"`
	Status        UserStatus `json:"status"`
	IsAdmin       bool       `json:"is_admin"`
	EmailVerified bool       `json:"email_verified"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type UpdateStatusRequest struct {
	Status UserStatus `json:"status"`
}

// UserStats is the aggregate returned to the admin dashboard.
type UserStats struct {
	TotalUsers         int64   `json:"total_users"`
	PendingWithdrawals int64   `json:"pending_withdrawals"`
	TotalPayouts       float64 `json:"total_payouts"`
}
