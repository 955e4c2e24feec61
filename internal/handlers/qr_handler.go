package handlers

import (
	"net/http"
	"strconv"

	"github.com/legendauc/auctionbot/internal/services"
)

const defaultQRSize = 256

type QRHandler struct {
	links     *services.DeepLinkService
	auctions  AuctionReader
	validator *services.ValidationHelper
}

func NewQRHandler(links *services.DeepLinkService, auctions AuctionReader) *QRHandler {
	return &QRHandler{
		links:     links,
		auctions:  auctions,
		validator: services.NewValidationHelper(),
	}
}

// AuctionQR renders the bid deep link of an auction as a PNG
// @Summary Auction QR code
// @Description PNG QR code that opens the bot's bid prompt for the auction
// @Tags QR
// @Produce png
// @Param id path int true "Auction ID"
// @Param size query int false "Image size in pixels (64-1024)"
// @Success 200 {file} binary
// @Failure 400 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Router /auctions/{id}/qr [get]
func (h *QRHandler) AuctionQR(w http.ResponseWriter, r *http.Request) {
	id, ok := auctionID(w, r)
	if !ok {
		return
	}

	req := struct {
		Size int `validate:"gte=64,lte=1024"`
	}{Size: defaultQRSize}
	if raw := r.URL.Query().Get("size"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil {
			services.SendErrorResponse(w, "Invalid size", http.StatusBadRequest, nil)
			return
		}
		req.Size = size
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		services.SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	if _, err := h.auctions.GetAuction(r.Context(), id); err != nil {
		sendLedgerError(w, err)
		return
	}

	png, err := h.links.QRCodePNG(id, req.Size)
	if err != nil {
		services.SendErrorResponse(w, "Failed to render QR code", http.StatusInternalServerError, nil)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.Write(png)
}
