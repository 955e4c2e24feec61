package services

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/legendauc/auctionbot/internal/models"
)

type MockChannelPoster struct {
	mock.Mock
}

func (m *MockChannelPoster) PostAuction(ctx context.Context, auction models.Auction) (int64, error) {
	args := m.Called(ctx, auction)
	return args.Get(0).(int64), args.Error(1)
}
