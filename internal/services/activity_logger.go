package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
)

type AuditEvent struct {
	EventID   string    `json:"event_id"`
	Timestamp time.Time `json:"timestamp"`
	EventType string    `json:"event_type"`
	UserID    int64     `json:"user_id,omitempty"`
	AuctionID int64     `json:"auction_id,omitempty"`
	Amount    int64     `json:"amount,omitempty"`
	Status    string    `json:"status"`
	Details   any       `json:"details,omitempty"`
}

// ActivityStore persists user attributable events.
type ActivityStore interface {
	LogActivity(ctx context.Context, userID int64, action, details string) error
}

// ActivityLogger writes AUDIT lines and mirrors user events into the
// identity store when one is configured.
type ActivityLogger struct {
	store ActivityStore
}

func NewActivityLogger(store ActivityStore) *ActivityLogger {
	return &ActivityLogger{store: store}
}

func (a *ActivityLogger) LogBid(ctx context.Context, userID, auctionID, amount int64) {
	a.record(ctx, AuditEvent{
		EventType: "BID_PLACED",
		UserID:    userID,
		AuctionID: auctionID,
		Amount:    amount,
		Status:    "SUCCESS",
	}, fmt.Sprintf("auction %d amount %d", auctionID, amount))
}

func (a *ActivityLogger) LogRetract(ctx context.Context, adminID, auctionID int64, removed string, amount int64) {
	a.record(ctx, AuditEvent{
		EventType: "BID_RETRACTED",
		UserID:    adminID,
		AuctionID: auctionID,
		Amount:    amount,
		Status:    "SUCCESS",
		Details:   map[string]string{"removed_bidder": removed},
	}, fmt.Sprintf("auction %d removed %s %d", auctionID, removed, amount))
}

func (a *ActivityLogger) LogSubmission(ctx context.Context, userID, submissionID int64) {
	a.record(ctx, AuditEvent{
		EventType: "SUBMISSION_CREATED",
		UserID:    userID,
		Status:    "PENDING",
		Details:   map[string]int64{"submission_id": submissionID},
	}, fmt.Sprintf("submission %d", submissionID))
}

func (a *ActivityLogger) LogDecision(ctx context.Context, adminID, submissionID int64, status string) {
	a.record(ctx, AuditEvent{
		EventType: "SUBMISSION_DECIDED",
		UserID:    adminID,
		Status:    status,
		Details:   map[string]int64{"submission_id": submissionID},
	}, fmt.Sprintf("submission %d %s", submissionID, status))
}

func (a *ActivityLogger) LogVerification(ctx context.Context, adminID, userID int64, action string) {
	a.record(ctx, AuditEvent{
		EventType: action,
		UserID:    adminID,
		Status:    "SUCCESS",
		Details:   map[string]int64{"target_user": userID},
	}, fmt.Sprintf("%s user %d", action, userID))
}

// LogError is log-only; errors are not user activity.
func (a *ActivityLogger) LogError(operation string, userID int64, err error) {
	a.log(AuditEvent{
		EventType: "ERROR",
		UserID:    userID,
		Status:    "FAILED",
		Details:   map[string]string{"operation": operation, "error": err.Error()},
	})
}

func (a *ActivityLogger) record(ctx context.Context, event AuditEvent, details string) {
	a.log(event)
	if a.store == nil || event.UserID == 0 {
		return
	}
	if err := a.store.LogActivity(ctx, event.UserID, event.EventType, details); err != nil {
		log.Printf("[AUDIT] failed to persist %s for user %d: %v", event.EventType, event.UserID, err)
	}
}

func (a *ActivityLogger) log(event AuditEvent) {
	event.EventID = uuid.New().String()
	event.Timestamp = time.Now().UTC()
	data, _ := json.Marshal(event)
	log.Printf("AUDIT: %s", string(data))
}
