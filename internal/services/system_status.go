package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/legendauc/auctionbot/internal/models"
)

// SystemStatusService reads and flips the two admin gates stored in the
// single system_status row.
type SystemStatusService struct {
	db *sql.DB
}

func NewSystemStatusService(db *sql.DB) *SystemStatusService {
	return &SystemStatusService{db: db}
}

// Get returns the current gates. A missing row means both are closed.
func (s *SystemStatusService) Get(ctx context.Context) (models.SystemStatus, error) {
	var status models.SystemStatus
	err := s.db.QueryRowContext(ctx,
		`SELECT submissions_open, auctions_open FROM system_status WHERE id = 1`).
		Scan(&status.SubmissionsOpen, &status.AuctionsOpen)
	if errors.Is(err, sql.ErrNoRows) {
		return models.SystemStatus{}, nil
	}
	if err != nil {
		return models.SystemStatus{}, fmt.Errorf("failed to read system status: %w", err)
	}
	return status, nil
}

func (s *SystemStatusService) SetSubmissionsOpen(ctx context.Context, open bool) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO system_status (id, submissions_open) VALUES (1, $1)
		ON CONFLICT (id) DO UPDATE SET submissions_open = EXCLUDED.submissions_open`, open)
	if err != nil {
		return fmt.Errorf("failed to update submissions gate: %w", err)
	}
	log.Printf("[STATUS] submissions open=%t", open)
	return nil
}

func (s *SystemStatusService) SetAuctionsOpen(ctx context.Context, open bool) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO system_status (id, auctions_open) VALUES (1, $1)
		ON CONFLICT (id) DO UPDATE SET auctions_open = EXCLUDED.auctions_open`, open)
	if err != nil {
		return fmt.Errorf("failed to update auctions gate: %w", err)
	}
	log.Printf("[STATUS] auctions open=%t", open)
	return nil
}

// SetGate dispatches to the setter for g.
func (s *SystemStatusService) SetGate(ctx context.Context, g models.Gate, open bool) error {
	switch g {
	case models.GateSubmissions:
		return s.SetSubmissionsOpen(ctx, open)
	case models.GateAuctions:
		return s.SetAuctionsOpen(ctx, open)
	}
	return fmt.Errorf("unknown gate %q", g)
}
