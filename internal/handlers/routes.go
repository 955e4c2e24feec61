package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Mount registers the public read API and, behind adminAuth, the admin
// endpoints.
func Mount(r chi.Router, auctions *AuctionHandler, qr *QRHandler, adminAuth func(http.Handler) http.Handler) {
	r.Get("/auctions", auctions.ListAuctions)
	r.Get("/auctions/{id}", auctions.GetAuction)
	r.Get("/auctions/{id}/bids", auctions.ListBids)
	r.Get("/auctions/{id}/qr", qr.AuctionQR)

	r.Group(func(r chi.Router) {
		r.Use(adminAuth)
		r.Delete("/admin/auctions/{id}/bids/last", auctions.RemoveLastBid)
	})
}
