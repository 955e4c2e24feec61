package render

import (
	"fmt"

	"github.com/legendauc/auctionbot/internal/models"
)

// AuctionCaption is the channel post for an open auction.
func AuctionCaption(a models.Auction) string {
	return auctionBody(a) + "\n\n💬 Click the button below to bid"
}

// ClosedCaption replaces the post once bidding has ended.
func ClosedCaption(a models.Auction) string {
	winner := "🔒 Bidding closed with no bids"
	if a.CurrentBid != nil && a.CurrentBidder != nil {
		winner = fmt.Sprintf("🔒 Bidding closed. Winner: %s with %s", *a.CurrentBidder, FormatAmount(*a.CurrentBid))
	}
	return auctionBody(a) + "\n\n" + winner
}

func auctionBody(a models.Auction) string {
	bid, bidder := "None", "None"
	if a.CurrentBid != nil {
		bid = FormatAmount(*a.CurrentBid)
	}
	if a.CurrentBidder != nil && *a.CurrentBidder != "" {
		bidder = *a.CurrentBidder
	}

	return fmt.Sprintf("🏆 Auction #%d\n\n%s\n\n🔼 Current Bid: %s\n👤 Bidder: %s\n💰 Base Price: %s",
		a.ID, a.ItemText, bid, bidder, FormatAmount(a.BasePrice))
}

func OutbidNotice(itemName string, amount int64) string {
	return fmt.Sprintf("⚠️ You've been outbid on %s!\nNew bid: %s", itemName, FormatAmount(amount))
}

func BidPrompt(a models.Auction, minBid int64) string {
	return fmt.Sprintf("🏆 Auction #%d\n\nCurrent Bid: %s\nMinimum Bid: %s\n\nPlease enter your bid amount:",
		a.ID, FormatAmount(a.CurrentAmount()), FormatAmount(minBid))
}
