package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/legendauc/auctionbot/internal/middleware"
	"github.com/legendauc/auctionbot/internal/models"
	"github.com/legendauc/auctionbot/internal/services"
)

type AuctionReader interface {
	GetAuction(ctx context.Context, auctionID int64) (*models.Auction, error)
	ListActiveByCategory(ctx context.Context) (services.CategorizedAuctions, error)
	BidHistory(ctx context.Context, auctionID int64) ([]models.Bid, error)
}

// BidRemover retracts a bid and refreshes the channel post.
type BidRemover interface {
	RemoveLastBid(ctx context.Context, adminID, auctionID int64) (*services.RetractResult, error)
}

type CategoryListing struct {
	Category models.Category          `json:"category"`
	Label    string                   `json:"label"`
	Auctions []services.ListedAuction `json:"auctions"`
}

type AuctionList struct {
	Total      int               `json:"total"`
	Categories []CategoryListing `json:"categories"`
}

type BidHistoryResponse struct {
	AuctionID int64        `json:"auction_id"`
	Bids      []models.Bid `json:"bids"`
}

type RetractResponse struct {
	Success   bool           `json:"success"`
	Removed   models.Bid     `json:"removed"`
	NewLeader *models.Leader `json:"new_leader"`
}

type AuctionHandler struct {
	auctions AuctionReader
	remover  BidRemover
}

func NewAuctionHandler(auctions AuctionReader, remover BidRemover) *AuctionHandler {
	return &AuctionHandler{auctions: auctions, remover: remover}
}

// ListAuctions lists active auctions grouped by category
// @Summary List active auctions
// @Description Active auctions grouped by category, in display order
// @Tags Auctions
// @Produce json
// @Success 200 {object} AuctionList
// @Failure 500 {object} services.ErrorResponse
// @Router /auctions [get]
func (h *AuctionHandler) ListAuctions(w http.ResponseWriter, r *http.Request) {
	categorized, err := h.auctions.ListActiveByCategory(r.Context())
	if err != nil {
		log.Printf("[HTTP] failed to list auctions: %v", err)
		services.SendErrorResponse(w, "Failed to list auctions", http.StatusInternalServerError, nil)
		return
	}

	resp := AuctionList{Total: categorized.Total(), Categories: make([]CategoryListing, 0, len(models.Categories))}
	for _, c := range models.Categories {
		auctions := categorized[c]
		if auctions == nil {
			auctions = []services.ListedAuction{}
		}
		resp.Categories = append(resp.Categories, CategoryListing{Category: c, Label: c.Label(), Auctions: auctions})
	}
	services.SendJSON(w, resp)
}

// GetAuction returns one auction
// @Summary Get auction
// @Tags Auctions
// @Produce json
// @Param id path int true "Auction ID"
// @Success 200 {object} models.Auction
// @Failure 400 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Router /auctions/{id} [get]
func (h *AuctionHandler) GetAuction(w http.ResponseWriter, r *http.Request) {
	id, ok := auctionID(w, r)
	if !ok {
		return
	}

	a, err := h.auctions.GetAuction(r.Context(), id)
	if err != nil {
		sendLedgerError(w, err)
		return
	}
	services.SendJSON(w, a)
}

// ListBids returns the active bids on an auction, highest first
// @Description Active bids on an auction, highest amount first
// @Summary Bid history
// @Tags Auctions
// @Produce json
// @Param id path int true "Auction ID"
// @Success 200 {object} BidHistoryResponse
// @Failure 400 {object} services.ErrorResponse
// @Router /auctions/{id}/bids [get]
func (h *AuctionHandler) ListBids(w http.ResponseWriter, r *http.Request) {
	id, ok := auctionID(w, r)
	if !ok {
		return
	}

	bids, err := h.auctions.BidHistory(r.Context(), id)
	if err != nil {
		sendLedgerError(w, err)
		return
	}
	if bids == nil {
		bids = []models.Bid{}
	}
	services.SendJSON(w, BidHistoryResponse{AuctionID: id, Bids: bids})
}

// RemoveLastBid retracts the newest active bid
// @Summary Remove last bid
// @Description Retracts the newest active bid and restores the previous leader
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Auction ID"
// @Success 200 {object} RetractResponse
// @Failure 401 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Failure 409 {object} services.ErrorResponse
// @Router /admin/auctions/{id}/bids/last [delete]
func (h *AuctionHandler) RemoveLastBid(w http.ResponseWriter, r *http.Request) {
	adminID, ok := middleware.AdminID(r.Context())
	if !ok {
		services.SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}
	id, ok := auctionID(w, r)
	if !ok {
		return
	}

	result, err := h.remover.RemoveLastBid(r.Context(), adminID, id)
	if err != nil {
		sendLedgerError(w, err)
		return
	}
	log.Printf("[HTTP] admin %d removed last bid on auction %d", adminID, id)
	services.SendJSON(w, RetractResponse{Success: true, Removed: result.Removed, NewLeader: result.NewLeader})
}

func auctionID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		services.SendErrorResponse(w, "Invalid auction id", http.StatusBadRequest, nil)
		return 0, false
	}
	return id, true
}

func sendLedgerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrAuctionNotFound):
		services.SendErrorResponse(w, "Auction not found", http.StatusNotFound, nil)
	case errors.Is(err, services.ErrNoActiveBids):
		services.SendErrorResponse(w, "No active bids to remove", http.StatusConflict, nil)
	default:
		log.Printf("[HTTP] ledger error: %v", err)
		services.SendErrorResponse(w, "Internal server error", http.StatusInternalServerError, nil)
	}
}
