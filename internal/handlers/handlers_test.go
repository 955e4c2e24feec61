package handlers

import (
	"context"
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/legendauc/auctionbot/internal/middleware"
	"github.com/legendauc/auctionbot/internal/models"
	"github.com/legendauc/auctionbot/internal/services"
)

const secret = "handler-secret"

type MockAuctions struct {
	mock.Mock
}

func (m *MockAuctions) GetAuction(ctx context.Context, auctionID int64) (*models.Auction, error) {
	args := m.Called(ctx, auctionID)
	a, _ := args.Get(0).(*models.Auction)
	return a, args.Error(1)
}

func (m *MockAuctions) ListActiveByCategory(ctx context.Context) (services.CategorizedAuctions, error) {
	args := m.Called(ctx)
	c, _ := args.Get(0).(services.CategorizedAuctions)
	return c, args.Error(1)
}

func (m *MockAuctions) BidHistory(ctx context.Context, auctionID int64) ([]models.Bid, error) {
	args := m.Called(ctx, auctionID)
	b, _ := args.Get(0).([]models.Bid)
	return b, args.Error(1)
}

type MockRemover struct {
	mock.Mock
}

func (m *MockRemover) RemoveLastBid(ctx context.Context, adminID, auctionID int64) (*services.RetractResult, error) {
	args := m.Called(ctx, adminID, auctionID)
	r, _ := args.Get(0).(*services.RetractResult)
	return r, args.Error(1)
}

func newAPI(t *testing.T) (http.Handler, *MockAuctions, *MockRemover) {
	auctions, remover := &MockAuctions{}, &MockRemover{}
	t.Cleanup(func() {
		auctions.AssertExpectations(t)
		remover.AssertExpectations(t)
	})

	r := chi.NewRouter()
	Mount(r,
		NewAuctionHandler(auctions, remover),
		NewQRHandler(services.NewDeepLinkService("LegendAucBot"), auctions),
		middleware.AdminAuth(secret, func(id int64) bool { return id == 1 }))
	return r, auctions, remover
}

func do(t *testing.T, h http.Handler, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestListAuctions(t *testing.T) {
	h, auctions, _ := newAPI(t)
	auctions.On("ListActiveByCategory", mock.Anything).Return(services.CategorizedAuctions{
		models.CategoryShiny: {{Auction: models.Auction{ID: 4, BasePrice: 1000, IsActive: true}, Category: models.CategoryShiny}},
		models.CategoryTMs:   {{Auction: models.Auction{ID: 5, BasePrice: 0, IsActive: true}, Category: models.CategoryTMs}},
	}, nil).Once()

	rec := do(t, h, http.MethodGet, "/auctions", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var body AuctionList
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, 2, body.Total)
	require.Len(t, body.Categories, 4)
	assert.Equal(t, models.CategoryLegendary, body.Categories[0].Category)
	assert.Empty(t, body.Categories[0].Auctions)
	assert.Equal(t, int64(4), body.Categories[1].Auctions[0].ID)
	assert.Equal(t, models.CategoryTMs, body.Categories[3].Category)
}

func TestGetAuction(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		h, auctions, _ := newAPI(t)
		auctions.On("GetAuction", mock.Anything, int64(3)).
			Return(&models.Auction{ID: 3, BasePrice: 5000, CurrentBid: lo.ToPtr(int64(7000)), IsActive: true}, nil).Once()

		rec := do(t, h, http.MethodGet, "/auctions/3", "")

		require.Equal(t, http.StatusOK, rec.Code)
		var a models.Auction
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&a))
		assert.Equal(t, int64(7000), a.CurrentAmount())
	})

	t.Run("missing", func(t *testing.T) {
		h, auctions, _ := newAPI(t)
		auctions.On("GetAuction", mock.Anything, int64(9)).Return(nil, services.ErrAuctionNotFound).Once()

		rec := do(t, h, http.MethodGet, "/auctions/9", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("bad id", func(t *testing.T) {
		h, _, _ := newAPI(t)
		rec := do(t, h, http.MethodGet, "/auctions/abc", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestListBids(t *testing.T) {
	h, auctions, _ := newAPI(t)
	auctions.On("BidHistory", mock.Anything, int64(3)).Return([]models.Bid{
		{ID: 2, AuctionID: 3, BidderName: "@misty", Amount: 7000, Timestamp: time.Now(), IsActive: true},
		{ID: 1, AuctionID: 3, BidderName: "@ash", Amount: 6000, Timestamp: time.Now(), IsActive: true},
	}, nil).Once()

	rec := do(t, h, http.MethodGet, "/auctions/3/bids", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var body BidHistoryResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Len(t, body.Bids, 2)
	assert.Equal(t, "@misty", body.Bids[0].BidderName)
}

func TestAuctionQR(t *testing.T) {
	t.Run("renders png", func(t *testing.T) {
		h, auctions, _ := newAPI(t)
		auctions.On("GetAuction", mock.Anything, int64(3)).Return(&models.Auction{ID: 3, IsActive: true}, nil).Once()

		rec := do(t, h, http.MethodGet, "/auctions/3/qr?size=128", "")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
		img, err := png.Decode(rec.Body)
		require.NoError(t, err)
		assert.Equal(t, 128, img.Bounds().Dx())
	})

	t.Run("size out of range", func(t *testing.T) {
		h, _, _ := newAPI(t)
		rec := do(t, h, http.MethodGet, "/auctions/3/qr?size=4096", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestRemoveLastBid(t *testing.T) {
	token, err := middleware.IssueAdminToken(secret, 1, time.Hour)
	require.NoError(t, err)

	t.Run("retracts", func(t *testing.T) {
		h, _, remover := newAPI(t)
		remover.On("RemoveLastBid", mock.Anything, int64(1), int64(3)).Return(&services.RetractResult{
			Removed:   models.Bid{ID: 2, BidderName: "@misty", Amount: 7000},
			NewLeader: &models.Leader{BidID: 1, BidderName: "@ash", Amount: 6000},
		}, nil).Once()

		rec := do(t, h, http.MethodDelete, "/admin/auctions/3/bids/last", token)

		require.Equal(t, http.StatusOK, rec.Code)
		var body RetractResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.True(t, body.Success)
		assert.Equal(t, int64(7000), body.Removed.Amount)
		assert.Equal(t, "@ash", body.NewLeader.BidderName)
	})

	t.Run("no bids", func(t *testing.T) {
		h, _, remover := newAPI(t)
		remover.On("RemoveLastBid", mock.Anything, int64(1), int64(3)).Return(nil, services.ErrNoActiveBids).Once()

		rec := do(t, h, http.MethodDelete, "/admin/auctions/3/bids/last", token)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("requires token", func(t *testing.T) {
		h, _, _ := newAPI(t)
		rec := do(t, h, http.MethodDelete, "/admin/auctions/3/bids/last", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
