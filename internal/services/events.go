package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

type AuctionEventType string

const (
	EventAuctionCreated AuctionEventType = "auction_created"
	EventBidPlaced      AuctionEventType = "bid_placed"
	EventBidRetracted   AuctionEventType = "bid_retracted"
	EventAuctionClosed  AuctionEventType = "auction_closed"
)

type AuctionEvent struct {
	EventID    string           `json:"event_id"`
	Type       AuctionEventType `json:"type"`
	AuctionID  int64            `json:"auction_id"`
	BidderID   int64            `json:"bidder_id,omitempty"`
	BidderName string           `json:"bidder_name,omitempty"`
	Amount     int64            `json:"amount,omitempty"`
	Timestamp  time.Time        `json:"timestamp"`
}

// EventPublisher receives ledger changes after they are committed. Publishing
// is best effort and never fails the ledger operation.
type EventPublisher interface {
	Publish(ctx context.Context, event AuctionEvent)
}

type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, AuctionEvent) {}

const auctionSubjectPrefix = "auction.events"

type NATSPublisher struct {
	conn *nats.Conn
}

func NewNATSPublisher(url string) (*NATSPublisher, error) {
	conn, err := nats.Connect(url, nats.Name("auctionbot"), nats.MaxReconnects(-1))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats: %w", err)
	}
	log.Printf("[EVENTS] connected to NATS at %s", url)
	return &NATSPublisher{conn: conn}, nil
}

func auctionSubject(auctionID int64) string {
	return fmt.Sprintf("%s.%d", auctionSubjectPrefix, auctionID)
}

func (p *NATSPublisher) Publish(_ context.Context, event AuctionEvent) {
	stampEvent(&event)
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("[EVENTS] failed to marshal %s event: %v", event.Type, err)
		return
	}
	subject := auctionSubject(event.AuctionID)
	if err := p.conn.Publish(subject, data); err != nil {
		log.Printf("[EVENTS] failed to publish to %s: %v", subject, err)
	}
}

func (p *NATSPublisher) Close() error {
	return p.conn.Drain()
}

func stampEvent(event *AuctionEvent) {
	if event.EventID == "" {
		event.EventID = uuid.New().String()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
}
