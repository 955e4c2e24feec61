package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/legendauc/auctionbot/internal/models"
)

// jsonStore keeps one JSON value per user under prefix:<user> with a TTL.
type jsonStore[T any] struct {
	redis   *redis.Client
	prefix  string
	ttl     time.Duration
	missing error
}

func (s jsonStore[T]) key(userID int64) string {
	return fmt.Sprintf("%s:%d", s.prefix, userID)
}

func (s jsonStore[T]) load(ctx context.Context, userID int64) (T, error) {
	var v T
	data, err := s.redis.Get(ctx, s.key(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return v, s.missing
	}
	if err != nil {
		return v, err
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return v, fmt.Errorf("corrupt %s entry for user %d: %w", s.prefix, userID, err)
	}
	return v, nil
}

func (s jsonStore[T]) save(ctx context.Context, userID int64, v T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.redis.Set(ctx, s.key(userID), data, s.ttl).Err()
}

func (s jsonStore[T]) delete(ctx context.Context, userID int64) error {
	return s.redis.Del(ctx, s.key(userID)).Err()
}

// WizardStore persists in-progress /add drafts.
type WizardStore struct {
	store jsonStore[WizardDraft]
}

func NewWizardStore(client *redis.Client, ttl time.Duration) *WizardStore {
	return &WizardStore{store: jsonStore[WizardDraft]{redis: client, prefix: "wizard", ttl: ttl, missing: ErrNoDraft}}
}

func (s *WizardStore) Load(ctx context.Context, userID int64) (WizardDraft, error) {
	return s.store.load(ctx, userID)
}

func (s *WizardStore) Save(ctx context.Context, d WizardDraft) error {
	return s.store.save(ctx, d.UserID, d)
}

func (s *WizardStore) Delete(ctx context.Context, userID int64) error {
	return s.store.delete(ctx, userID)
}

// BidSessionStore remembers which auction a user is bidding on between the
// button press and their amount reply.
type BidSessionStore struct {
	store jsonStore[models.BidSession]
}

func NewBidSessionStore(client *redis.Client, ttl time.Duration) *BidSessionStore {
	return &BidSessionStore{store: jsonStore[models.BidSession]{redis: client, prefix: "bidsession", ttl: ttl, missing: ErrNoBidSession}}
}

func (s *BidSessionStore) Load(ctx context.Context, userID int64) (models.BidSession, error) {
	return s.store.load(ctx, userID)
}

func (s *BidSessionStore) Save(ctx context.Context, userID int64, session models.BidSession) error {
	return s.store.save(ctx, userID, session)
}

func (s *BidSessionStore) Delete(ctx context.Context, userID int64) error {
	return s.store.delete(ctx, userID)
}
