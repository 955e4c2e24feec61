package services

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/legendauc/auctionbot/internal/models"
)

const (
	requestPending  = "pending"
	requestApproved = "approved"
)

// VerificationService owns the identity store: verified users, their
// verification requests and the activity trail.
type VerificationService struct {
	db      *sql.DB
	builder sq.StatementBuilderType
}

func NewVerificationService(db *sql.DB) *VerificationService {
	return &VerificationService{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (s *VerificationService) IsVerified(ctx context.Context, userID int64) (bool, error) {
	var ok bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM verified_users WHERE user_id = $1 AND is_active)`, userID).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("failed to check verification: %w", err)
	}
	return ok, nil
}

// Verify activates a user and settles any pending request they had open.
// A previously unverified user is reactivated with their counters intact.
// With no username given, the one from the pending request is kept.
func (s *VerificationService) Verify(ctx context.Context, userID int64, username string, verifiedBy int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		INSERT INTO verified_users (user_id, username, verified_by)
		VALUES ($1, COALESCE(NULLIF($2, ''), (
			SELECT username FROM verification_requests
			WHERE user_id = $1 AND status = $4
			ORDER BY requested_at DESC LIMIT 1), ''), $3)
		ON CONFLICT (user_id) DO UPDATE
		SET username = COALESCE(NULLIF(EXCLUDED.username, ''), verified_users.username),
		    verified_by = EXCLUDED.verified_by, verified_at = NOW(), is_active = TRUE
		WHERE NOT verified_users.is_active`,
		userID, username, verifiedBy, requestPending)
	if err != nil {
		return fmt.Errorf("failed to verify user: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrAlreadyVerified
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE verification_requests
		SET status = $1, processed_by = $2, processed_at = NOW()
		WHERE user_id = $3 AND status = $4`,
		requestApproved, verifiedBy, userID, requestPending)
	if err != nil {
		return fmt.Errorf("failed to settle verification request: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	log.Printf("[VERIFY] user %d verified by %d", userID, verifiedBy)
	return nil
}

func (s *VerificationService) Unverify(ctx context.Context, userID int64) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE verified_users SET is_active = FALSE WHERE user_id = $1 AND is_active`, userID)
	if err != nil {
		return fmt.Errorf("failed to unverify user: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotVerified
	}
	log.Printf("[VERIFY] user %d unverified", userID)
	return nil
}

// List returns active verified users, most recently verified first.
func (s *VerificationService) List(ctx context.Context) ([]models.VerifiedUser, error) {
	query, args, err := s.builder.
		Select("user_id", "username", "verified_by", "verified_at", "last_active",
			"total_bids", "total_submissions", "is_active", "verification_notes").
		From("verified_users").
		Where(sq.Eq{"is_active": true}).
		OrderBy("verified_at DESC").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list verified users: %w", err)
	}
	defer rows.Close()

	var users []models.VerifiedUser
	for rows.Next() {
		var u models.VerifiedUser
		if err := rows.Scan(&u.UserID, &u.Username, &u.VerifiedBy, &u.VerifiedAt, &u.LastActive,
			&u.TotalBids, &u.TotalSubmissions, &u.IsActive, &u.VerificationNotes); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// RequestVerification files a pending request. At most one request per user
// can be pending; the partial unique index enforces it.
func (s *VerificationService) RequestVerification(ctx context.Context, userID int64, username string) (int64, error) {
	verified, err := s.IsVerified(ctx, userID)
	if err != nil {
		return 0, err
	}
	if verified {
		return 0, ErrAlreadyVerified
	}

	var id int64
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO verification_requests (user_id, username)
		VALUES ($1, $2)
		RETURNING request_id`, userID, username).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, ErrRequestPending
		}
		return 0, fmt.Errorf("failed to file verification request: %w", err)
	}
	log.Printf("[VERIFY] request %d filed by user %d", id, userID)
	return id, nil
}

func (s *VerificationService) PendingRequests(ctx context.Context) ([]models.VerificationRequest, error) {
	query, args, err := s.builder.
		Select("request_id", "user_id", "username", "requested_at", "status").
		From("verification_requests").
		Where(sq.Eq{"status": requestPending}).
		OrderBy("requested_at").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list verification requests: %w", err)
	}
	defer rows.Close()

	var reqs []models.VerificationRequest
	for rows.Next() {
		var r models.VerificationRequest
		if err := rows.Scan(&r.ID, &r.UserID, &r.Username, &r.RequestedAt, &r.Status); err != nil {
			return nil, err
		}
		reqs = append(reqs, r)
	}
	return reqs, rows.Err()
}

// Touch records that a verified user was seen and refreshes their name.
func (s *VerificationService) Touch(ctx context.Context, userID int64, username string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE verified_users SET last_active = NOW(), username = $1 WHERE user_id = $2`,
		username, userID)
	return err
}

func (s *VerificationService) IncrementBids(ctx context.Context, userID int64) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE verified_users SET total_bids = total_bids + 1 WHERE user_id = $1`, userID)
	return err
}

func (s *VerificationService) IncrementSubmissions(ctx context.Context, userID int64) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE verified_users SET total_submissions = total_submissions + 1 WHERE user_id = $1`, userID)
	return err
}

func (s *VerificationService) CleanupRequests(ctx context.Context, olderThan time.Duration) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM verification_requests WHERE requested_at < $1`, time.Now().Add(-olderThan))
	if err != nil {
		return 0, fmt.Errorf("failed to clean up verification requests: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	log.Printf("[VERIFY] removed %d old verification requests", n)
	return n, nil
}

// LogActivity appends to the user's activity trail.
func (s *VerificationService) LogActivity(ctx context.Context, userID int64, action, details string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO user_activity (user_id, action, details) VALUES ($1, $2, $3)`,
		userID, action, details)
	return err
}
