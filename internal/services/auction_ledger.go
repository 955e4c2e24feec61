package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/samber/lo"

	"github.com/legendauc/auctionbot/internal/models"
)

// NoBidder is written to previous_bidder when the superseded leader was empty.
const NoBidder = "None"

const auctionColumns = `auction_id, item_text, photo_id, base_price, current_bid, current_bidder,
	previous_bidder, is_active, channel_message_id, discussion_message_id, submission_id, created_at`

type NewAuction struct {
	ItemText         string
	PhotoID          string
	BasePrice        int64
	ChannelMessageID *int64
	SubmissionID     *int64
}

type RetractResult struct {
	Removed   models.Bid
	NewLeader *models.Leader // nil when no active bids remain
}

type ListedAuction struct {
	models.Auction
	Category models.Category `json:"category"`
}

// CategorizedAuctions always carries one bucket per category.
type CategorizedAuctions map[models.Category][]ListedAuction

func (c CategorizedAuctions) Total() int {
	total := 0
	for _, items := range c {
		total += len(items)
	}
	return total
}

// AuctionLedger owns the auction and bid tables. Every write runs in its own
// transaction and locks the auction row before reading the standing bid.
type AuctionLedger struct {
	db      *sql.DB
	builder sq.StatementBuilderType
	events  EventPublisher
}

func NewAuctionLedger(db *sql.DB, events EventPublisher) *AuctionLedger {
	if events == nil {
		events = NopPublisher{}
	}
	return &AuctionLedger{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
		events:  events,
	}
}

func (l *AuctionLedger) CreateAuction(ctx context.Context, in NewAuction) (int64, error) {
	if strings.TrimSpace(in.ItemText) == "" {
		return 0, fmt.Errorf("%w: item text", ErrMissingField)
	}
	if in.BasePrice < 0 {
		return 0, ErrInvalidAmount
	}

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if in.ChannelMessageID != nil {
		var exists bool
		err := tx.QueryRowContext(ctx, `
			SELECT EXISTS (SELECT 1 FROM auctions WHERE channel_message_id = $1 AND is_active)`,
			*in.ChannelMessageID).Scan(&exists)
		if err != nil {
			return 0, fmt.Errorf("failed to check for existing auction: %w", err)
		}
		if exists {
			log.Printf("[LEDGER] auction for message %d already exists, skipping", *in.ChannelMessageID)
			return 0, ErrDuplicateAuction
		}
	}

	var photo *string
	if in.PhotoID != "" {
		photo = lo.ToPtr(in.PhotoID)
	}

	var auctionID int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO auctions (item_text, photo_id, base_price, channel_message_id, submission_id, is_active)
		VALUES ($1, $2, $3, $4, $5, TRUE)
		RETURNING auction_id`,
		in.ItemText, photo, in.BasePrice, in.ChannelMessageID, in.SubmissionID).Scan(&auctionID)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, ErrDuplicateAuction
		}
		return 0, fmt.Errorf("failed to insert auction: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}

	log.Printf("[LEDGER] created auction %d with base price %d", auctionID, in.BasePrice)
	l.events.Publish(ctx, AuctionEvent{Type: EventAuctionCreated, AuctionID: auctionID, Amount: in.BasePrice})
	return auctionID, nil
}

// RecordBid places a bid and returns the leader it displaced, if any.
func (l *AuctionLedger) RecordBid(ctx context.Context, auctionID, bidderID int64, bidderName string, amount int64) (*models.Leader, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if strings.TrimSpace(bidderName) == "" {
		return nil, fmt.Errorf("%w: bidder name", ErrMissingField)
	}

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	auction, err := l.lockAuction(ctx, tx, auctionID)
	if err != nil {
		return nil, err
	}
	if !auction.IsActive {
		return nil, ErrAuctionClosed
	}

	if minimum := MinimumBid(auction.CurrentAmount()); amount < minimum {
		return nil, fmt.Errorf("%w: minimum is %d", ErrBidTooLow, minimum)
	}

	previous, err := l.topBid(ctx, tx, auctionID)
	if err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO bids (auction_id, bidder_id, bidder_name, amount, is_active)
		VALUES ($1, $2, $3, $4, TRUE)`,
		auctionID, bidderID, bidderName, amount); err != nil {
		return nil, fmt.Errorf("failed to insert bid: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE auctions
		SET previous_bidder = COALESCE(current_bidder, $1), current_bidder = $2, current_bid = $3
		WHERE auction_id = $4`,
		NoBidder, bidderName, amount, auctionID); err != nil {
		return nil, fmt.Errorf("failed to update auction: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	log.Printf("[LEDGER] auction %d: bid %d by %d", auctionID, amount, bidderID)
	l.events.Publish(ctx, AuctionEvent{
		Type:       EventBidPlaced,
		AuctionID:  auctionID,
		BidderID:   bidderID,
		BidderName: bidderName,
		Amount:     amount,
	})
	return previous, nil
}

// RetractLastBid deactivates the most recently placed active bid and
// recomputes the standing leader from what remains.
func (l *AuctionLedger) RetractLastBid(ctx context.Context, auctionID int64) (*RetractResult, error) {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if _, err := l.lockAuction(ctx, tx, auctionID); err != nil {
		return nil, err
	}

	var last models.Bid
	err = tx.QueryRowContext(ctx, `
		SELECT bid_id, auction_id, bidder_id, bidder_name, amount, timestamp
		FROM bids
		WHERE auction_id = $1 AND is_active
		ORDER BY timestamp DESC, bid_id DESC
		LIMIT 1`, auctionID).
		Scan(&last.ID, &last.AuctionID, &last.BidderID, &last.BidderName, &last.Amount, &last.Timestamp)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoActiveBids
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find last bid: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `UPDATE bids SET is_active = FALSE WHERE bid_id = $1`, last.ID); err != nil {
		return nil, fmt.Errorf("failed to deactivate bid: %w", err)
	}

	leader, err := l.topBid(ctx, tx, auctionID)
	if err != nil {
		return nil, err
	}

	if leader != nil {
		_, err = tx.ExecContext(ctx, `
			UPDATE auctions SET current_bid = $1, current_bidder = $2, previous_bidder = $3
			WHERE auction_id = $4`,
			leader.Amount, leader.BidderName, last.BidderName, auctionID)
	} else {
		_, err = tx.ExecContext(ctx, `
			UPDATE auctions SET current_bid = NULL, current_bidder = NULL, previous_bidder = $1
			WHERE auction_id = $2`,
			last.BidderName, auctionID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update auction: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	log.Printf("[LEDGER] auction %d: retracted bid %d (%d by %s)", auctionID, last.ID, last.Amount, last.BidderName)
	l.events.Publish(ctx, AuctionEvent{
		Type:       EventBidRetracted,
		AuctionID:  auctionID,
		BidderID:   last.BidderID,
		BidderName: last.BidderName,
		Amount:     last.Amount,
	})
	return &RetractResult{Removed: last, NewLeader: leader}, nil
}

func (l *AuctionLedger) GetAuction(ctx context.Context, auctionID int64) (*models.Auction, error) {
	row := l.db.QueryRowContext(ctx, `SELECT `+auctionColumns+` FROM auctions WHERE auction_id = $1`, auctionID)
	return scanAuction(row)
}

// GetAuctionByMessageID resolves a channel post to its active auction.
func (l *AuctionLedger) GetAuctionByMessageID(ctx context.Context, channelMessageID int64) (*models.Auction, error) {
	row := l.db.QueryRowContext(ctx, `SELECT `+auctionColumns+` FROM auctions
		WHERE channel_message_id = $1 AND is_active`, channelMessageID)
	return scanAuction(row)
}

// ListActiveByCategory buckets every active auction by the category of the
// submission it came from. Auctions without a recognizable category land in
// the non-legendary bucket.
func (l *AuctionLedger) ListActiveByCategory(ctx context.Context) (CategorizedAuctions, error) {
	query, args, err := l.builder.
		Select(prefixColumns("a", auctionColumns)...).
		Column("s.data").
		From("auctions a").
		LeftJoin("submissions s ON s.submission_id = a.submission_id").
		Where(sq.Eq{"a.is_active": true}).
		OrderBy("a.created_at DESC", "a.auction_id DESC").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list auctions: %w", err)
	}
	defer rows.Close()

	var listed []ListedAuction
	for rows.Next() {
		var a models.Auction
		var raw []byte
		if err := rows.Scan(auctionDest(&a, &raw)...); err != nil {
			return nil, err
		}
		listed = append(listed, ListedAuction{Auction: a, Category: categoryOf(raw)})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	grouped := lo.GroupBy(listed, func(item ListedAuction) models.Category { return item.Category })
	result := make(CategorizedAuctions, len(models.Categories))
	for _, c := range models.Categories {
		result[c] = grouped[c]
	}
	return result, nil
}

func categoryOf(raw []byte) models.Category {
	if len(raw) == 0 {
		return models.CategoryNonLegendary
	}
	var payload struct {
		Category string `json:"category"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return models.CategoryNonLegendary
	}
	if c, ok := models.ParseCategory(payload.Category); ok {
		return c
	}
	return models.CategoryNonLegendary
}

// AttachMessage records where the auction was posted in the channel.
func (l *AuctionLedger) AttachMessage(ctx context.Context, auctionID, channelMessageID int64) error {
	result, err := l.db.ExecContext(ctx, `UPDATE auctions SET channel_message_id = $1 WHERE auction_id = $2`,
		channelMessageID, auctionID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateAuction
		}
		return fmt.Errorf("failed to attach message: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrAuctionNotFound
	}
	return nil
}

// BidHistory returns the active bids on an auction, highest first.
func (l *AuctionLedger) BidHistory(ctx context.Context, auctionID int64) ([]models.Bid, error) {
	query, args, err := l.builder.
		Select("bid_id", "auction_id", "bidder_id", "bidder_name", "amount", "timestamp", "is_active").
		From("bids").
		Where(sq.Eq{"auction_id": auctionID, "is_active": true}).
		OrderBy("amount DESC", "bid_id DESC").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load bid history: %w", err)
	}
	defer rows.Close()

	var bids []models.Bid
	for rows.Next() {
		var b models.Bid
		if err := rows.Scan(&b.ID, &b.AuctionID, &b.BidderID, &b.BidderName, &b.Amount, &b.Timestamp, &b.IsActive); err != nil {
			return nil, err
		}
		bids = append(bids, b)
	}
	return bids, rows.Err()
}

// LeadingBids lists the active auctions where userID holds the top bid.
func (l *AuctionLedger) LeadingBids(ctx context.Context, userID int64) ([]models.LeadingBid, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT a.auction_id, a.item_text, b.amount
		FROM auctions a
		JOIN bids b ON b.auction_id = a.auction_id
		WHERE a.is_active AND b.is_active AND b.bidder_id = $1
		AND b.amount = (SELECT MAX(amount) FROM bids WHERE auction_id = a.auction_id AND is_active)
		ORDER BY a.auction_id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load leading bids: %w", err)
	}
	defer rows.Close()

	var leading []models.LeadingBid
	for rows.Next() {
		var lb models.LeadingBid
		if err := rows.Scan(&lb.AuctionID, &lb.ItemText, &lb.Amount); err != nil {
			return nil, err
		}
		leading = append(leading, lb)
	}
	return lo.UniqBy(leading, func(lb models.LeadingBid) int64 { return lb.AuctionID }), rows.Err()
}

func (l *AuctionLedger) CloseAuction(ctx context.Context, auctionID int64) error {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	auction, err := l.lockAuction(ctx, tx, auctionID)
	if err != nil {
		return err
	}
	if !auction.IsActive {
		return ErrAuctionClosed
	}

	if _, err := tx.ExecContext(ctx, `UPDATE auctions SET is_active = FALSE WHERE auction_id = $1`, auctionID); err != nil {
		return fmt.Errorf("failed to close auction: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	log.Printf("[LEDGER] closed auction %d", auctionID)
	l.events.Publish(ctx, AuctionEvent{Type: EventAuctionClosed, AuctionID: auctionID, Amount: auction.CurrentAmount()})
	return nil
}

// CheckIntegrity counts approved submissions that never produced an auction
// and auctions that lost their submission.
func (l *AuctionLedger) CheckIntegrity(ctx context.Context) (*models.IntegrityReport, error) {
	var report models.IntegrityReport

	err := l.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM submissions s
		LEFT JOIN auctions a ON a.submission_id = s.submission_id
		WHERE s.status = 'approved' AND a.auction_id IS NULL`).Scan(&report.OrphanedSubmissions)
	if err != nil {
		return nil, fmt.Errorf("failed to count orphaned submissions: %w", err)
	}

	err = l.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM auctions a
		LEFT JOIN submissions s ON s.submission_id = a.submission_id
		WHERE a.submission_id IS NOT NULL AND s.submission_id IS NULL`).Scan(&report.OrphanedAuctions)
	if err != nil {
		return nil, fmt.Errorf("failed to count orphaned auctions: %w", err)
	}

	err = l.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM auctions a
		WHERE a.current_bid IS DISTINCT FROM
			(SELECT MAX(amount) FROM bids b WHERE b.auction_id = a.auction_id AND b.is_active)`).
		Scan(&report.MismatchedLeaders)
	if err != nil {
		return nil, fmt.Errorf("failed to count mismatched leaders: %w", err)
	}

	return &report, nil
}

func (l *AuctionLedger) lockAuction(ctx context.Context, tx *sql.Tx, auctionID int64) (*models.Auction, error) {
	var a models.Auction
	err := tx.QueryRowContext(ctx, `
		SELECT auction_id, base_price, current_bid, current_bidder, is_active
		FROM auctions
		WHERE auction_id = $1
		FOR UPDATE`, auctionID).
		Scan(&a.ID, &a.BasePrice, &a.CurrentBid, &a.CurrentBidder, &a.IsActive)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAuctionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock auction %d: %w", auctionID, err)
	}
	return &a, nil
}

func (l *AuctionLedger) topBid(ctx context.Context, tx *sql.Tx, auctionID int64) (*models.Leader, error) {
	var leader models.Leader
	err := tx.QueryRowContext(ctx, `
		SELECT bid_id, bidder_id, bidder_name, amount
		FROM bids
		WHERE auction_id = $1 AND is_active
		ORDER BY amount DESC, bid_id DESC
		LIMIT 1`, auctionID).
		Scan(&leader.BidID, &leader.BidderID, &leader.BidderName, &leader.Amount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read leading bid: %w", err)
	}
	return &leader, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAuction(row rowScanner) (*models.Auction, error) {
	var a models.Auction
	err := row.Scan(auctionDest(&a)...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAuctionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load auction: %w", err)
	}
	return &a, nil
}

func auctionDest(a *models.Auction, extra ...any) []any {
	dest := []any{
		&a.ID, &a.ItemText, &a.PhotoID, &a.BasePrice, &a.CurrentBid, &a.CurrentBidder,
		&a.PreviousBidder, &a.IsActive, &a.ChannelMessageID, &a.DiscussionMessageID, &a.SubmissionID, &a.CreatedAt,
	}
	return append(dest, extra...)
}

func prefixColumns(alias, columns string) []string {
	return lo.Map(strings.Split(columns, ","), func(c string, _ int) string {
		return alias + "." + strings.TrimSpace(c)
	})
}
