package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/legendauc/auctionbot/internal/models"
	"github.com/legendauc/auctionbot/internal/render"
)

// AuctionCreator is the part of the ledger the approval handoff needs.
type AuctionCreator interface {
	CreateAuction(ctx context.Context, in NewAuction) (int64, error)
	AttachMessage(ctx context.Context, auctionID, channelMessageID int64) error
}

// ChannelPoster publishes a new auction and returns the channel message id.
type ChannelPoster interface {
	PostAuction(ctx context.Context, auction models.Auction) (int64, error)
}

type ApprovalResult struct {
	Submission       models.Submission
	AuctionID        int64
	ChannelMessageID int64
}

type SubmissionService struct {
	db        *sql.DB
	builder   sq.StatementBuilderType
	ledger    AuctionCreator
	validator *ValidationHelper
}

func NewSubmissionService(db *sql.DB, ledger AuctionCreator) *SubmissionService {
	return &SubmissionService{
		db:        db,
		builder:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
		ledger:    ledger,
		validator: NewValidationHelper(),
	}
}

func (s *SubmissionService) Create(ctx context.Context, userID int64, payload models.SubmissionPayload) (int64, error) {
	if err := s.validator.ValidatePayload(payload); err != nil {
		return 0, err
	}

	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO submissions (user_id, data, status)
		VALUES ($1, $2, $3)
		RETURNING submission_id`,
		userID, payload, models.SubmissionPending).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to save submission: %w", err)
	}

	log.Printf("[SUBMISSION] user %d created submission %d (%s)", userID, id, payload.Category)
	return id, nil
}

func (s *SubmissionService) Get(ctx context.Context, id int64) (*models.Submission, error) {
	var sub models.Submission
	err := s.db.QueryRowContext(ctx, `
		SELECT submission_id, user_id, data, status, channel_message_id, created_at
		FROM submissions
		WHERE submission_id = $1`, id).
		Scan(&sub.ID, &sub.UserID, &sub.Data, &sub.Status, &sub.ChannelMessageID, &sub.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSubmissionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load submission: %w", err)
	}
	return &sub, nil
}

// ListApprovedByUser returns a seller's approved items, newest first.
func (s *SubmissionService) ListApprovedByUser(ctx context.Context, userID int64) ([]models.Submission, error) {
	query, args, err := s.builder.
		Select("submission_id", "user_id", "data", "status", "channel_message_id", "created_at").
		From("submissions").
		Where(sq.Eq{"user_id": userID, "status": models.SubmissionApproved}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	defer rows.Close()

	var subs []models.Submission
	for rows.Next() {
		var sub models.Submission
		if err := rows.Scan(&sub.ID, &sub.UserID, &sub.Data, &sub.Status, &sub.ChannelMessageID, &sub.CreatedAt); err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

// Approve turns a pending submission into a posted auction. Only one admin
// decision can claim a submission; any failure after the claim leaves it
// failed for manual follow-up.
func (s *SubmissionService) Approve(ctx context.Context, id int64, poster ChannelPoster) (*ApprovalResult, error) {
	sub, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.transition(ctx, id, models.SubmissionPending, models.SubmissionProcessing); err != nil {
		return nil, err
	}

	result, err := s.publish(ctx, sub, poster)
	if err != nil {
		log.Printf("[SUBMISSION] approval of %d failed: %v", id, err)
		if markErr := s.setStatus(ctx, id, models.SubmissionFailed); markErr != nil {
			log.Printf("[SUBMISSION] failed to mark %d as failed: %v", id, markErr)
		}
		return nil, err
	}

	log.Printf("[SUBMISSION] approved %d as auction %d", id, result.AuctionID)
	return result, nil
}

func (s *SubmissionService) publish(ctx context.Context, sub *models.Submission, poster ChannelPoster) (*ApprovalResult, error) {
	itemText := render.ItemText(sub.Data)
	photo := render.PrimaryPhoto(sub.Data)

	auctionID, err := s.ledger.CreateAuction(ctx, NewAuction{
		ItemText:     itemText,
		PhotoID:      photo,
		BasePrice:    sub.Data.BasePrice,
		SubmissionID: &sub.ID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create auction: %w", err)
	}

	auction := models.Auction{
		ID:           auctionID,
		ItemText:     itemText,
		BasePrice:    sub.Data.BasePrice,
		IsActive:     true,
		SubmissionID: &sub.ID,
	}
	if photo != "" {
		auction.PhotoID = &photo
	}

	messageID, err := poster.PostAuction(ctx, auction)
	if err != nil {
		return nil, fmt.Errorf("failed to post auction %d: %w", auctionID, err)
	}

	if err := s.ledger.AttachMessage(ctx, auctionID, messageID); err != nil {
		return nil, err
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE submissions SET status = $1, channel_message_id = $2
		WHERE submission_id = $3`,
		models.SubmissionApproved, messageID, sub.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to mark submission approved: %w", err)
	}

	sub.Status = models.SubmissionApproved
	sub.ChannelMessageID = &messageID
	return &ApprovalResult{Submission: *sub, AuctionID: auctionID, ChannelMessageID: messageID}, nil
}

// Reject moves a pending submission straight to rejected.
func (s *SubmissionService) Reject(ctx context.Context, id int64) (*models.Submission, error) {
	sub, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.transition(ctx, id, models.SubmissionPending, models.SubmissionRejected); err != nil {
		return nil, err
	}
	sub.Status = models.SubmissionRejected
	log.Printf("[SUBMISSION] rejected %d", id)
	return sub, nil
}

// CleanupRejected deletes rejected submissions older than the retention.
func (s *SubmissionService) CleanupRejected(ctx context.Context, olderThan time.Duration) (int64, error) {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM submissions WHERE status = $1 AND created_at < $2`,
		models.SubmissionRejected, time.Now().Add(-olderThan))
	if err != nil {
		return 0, fmt.Errorf("failed to clean up submissions: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	log.Printf("[SUBMISSION] removed %d rejected submissions", n)
	return n, nil
}

func (s *SubmissionService) transition(ctx context.Context, id int64, from, to models.SubmissionStatus) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE submissions SET status = $1
		WHERE submission_id = $2 AND status = $3`,
		to, id, from)
	if err != nil {
		return fmt.Errorf("failed to update submission: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrSubmissionNotPending
	}
	return nil
}

func (s *SubmissionService) setStatus(ctx context.Context, id int64, status models.SubmissionStatus) error {
	_, err := s.db.ExecContext(ctx, `UPDATE submissions SET status = $1 WHERE submission_id = $2`, status, id)
	return err
}
