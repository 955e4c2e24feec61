package services

import (
	"bytes"
	"fmt"
	"image/png"
	"strconv"
	"strings"

	"github.com/skip2/go-qrcode"
)

const bidLinkPrefix = "bid_"

// DeepLinkService builds the t.me links that open a bid session for an
// auction, and QR codes for them.
type DeepLinkService struct {
	botUsername string
}

func NewDeepLinkService(botUsername string) *DeepLinkService {
	return &DeepLinkService{botUsername: strings.TrimPrefix(botUsername, "@")}
}

func (s *DeepLinkService) BidLink(auctionID int64) string {
	return fmt.Sprintf("https://t.me/%s?start=%s%d", s.botUsername, bidLinkPrefix, auctionID)
}

// QRCodePNG renders the bid link for auctionID as a size x size PNG.
func (s *DeepLinkService) QRCodePNG(auctionID int64, size int) ([]byte, error) {
	qr, err := qrcode.New(s.BidLink(auctionID), qrcode.Medium)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, qr.Image(size)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ParseBidPayload extracts the auction id from a /start payload such as
// "bid_42".
func ParseBidPayload(payload string) (int64, bool) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(payload), bidLinkPrefix)
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
