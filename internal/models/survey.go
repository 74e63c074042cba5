package models

import (
	"encoding/json"
	"time"
)

type Survey struct {
	ID               int64           `json:"id"`
	Title            string          `json:"title"`
	Description      string          `json:"description"`
	DurationMinutes  int             `json:"duration_minutes"`
	Reward           int64           `json:"reward"`
	Questions        json.RawMessage `json:"questions"`
	IsActive         bool            `json:"is_active"`
	ParticipantCount int64           `json:"participant_count"`
	CreatedAt        time.Time       `json:"created_at"`
}

// SurveyResponse is immutable once written; gems_awarded is copied from the
// survey's reward at completion time so later reward edits don't rewrite history.
type SurveyResponse struct {
	ID          int64           `json:"id"`
	UserID      int64           `json:"user_id"`
	SurveyID    int64           `json:"survey_id"`
	Answers     json.RawMessage `json:"answers"`
	GemsAwarded int64           `json:"gems_awarded"`
	CompletedAt time.Time       `json:"completed_at"`
}

type CompleteSurveyRequest struct {
	Answers json.RawMessage `json:"answers"`
}
