package models

import "time"

type VerifiedUser struct {
	UserID            int64      `json:"user_id" db:"user_id"`
	Username          string     `json:"username" db:"username"`
	VerifiedBy        int64      `json:"verified_by" db:"verified_by"`
	VerifiedAt        time.Time  `json:"verified_at" db:"verified_at"`
	LastActive        *time.Time `json:"last_active,omitempty" db:"last_active"`
	TotalBids         int        `json:"total_bids" db:"total_bids"`
	TotalSubmissions  int        `json:"total_submissions" db:"total_submissions"`
	IsActive          bool       `json:"is_active" db:"is_active"`
	VerificationNotes string     `json:"verification_notes,omitempty" db:"verification_notes"`
}

type VerificationRequest struct {
	ID          int64      `json:"request_id" db:"request_id"`
	UserID      int64      `json:"user_id" db:"user_id"`
	Username    string     `json:"username" db:"username"`
	RequestedAt time.Time  `json:"requested_at" db:"requested_at"`
	Status      string     `json:"status" db:"status"`
	ProcessedBy *int64     `json:"processed_by,omitempty" db:"processed_by"`
	ProcessedAt *time.Time `json:"processed_at,omitempty" db:"processed_at"`
	Notes       string     `json:"notes,omitempty" db:"notes"`
}

type ActivityEntry struct {
	ID        int64     `json:"activity_id" db:"activity_id"`
	UserID    int64     `json:"user_id" db:"user_id"`
	Action    string    `json:"action" db:"action"`
	Details   string    `json:"details" db:"details"`
	Timestamp time.Time `json:"timestamp" db:"timestamp"`
}
