package models

import (
	"time"
)

type Auction struct {
	ID                  int64     `json:"auction_id" db:"auction_id"`
	ItemText            string    `json:"item_text" db:"item_text"`
	PhotoID             *string   `json:"photo_id,omitempty" db:"photo_id"`
	BasePrice           int64     `json:"base_price" db:"base_price"` // whole pokédollars
	CurrentBid          *int64    `json:"current_bid,omitempty" db:"current_bid"`
	CurrentBidder       *string   `json:"current_bidder,omitempty" db:"current_bidder"`
	PreviousBidder      *string   `json:"previous_bidder,omitempty" db:"previous_bidder"`
	IsActive            bool      `json:"is_active" db:"is_active"`
	ChannelMessageID    *int64    `json:"channel_message_id,omitempty" db:"channel_message_id"`
	DiscussionMessageID *int64    `json:"discussion_message_id,omitempty" db:"discussion_message_id"`
	SubmissionID        *int64    `json:"submission_id,omitempty" db:"submission_id"`
	CreatedAt           time.Time `json:"created_at" db:"created_at"`
}

// CurrentAmount is the standing bid, or the base price while nobody has bid.
func (a Auction) CurrentAmount() int64 {
	if a.CurrentBid != nil {
		return *a.CurrentBid
	}
	return a.BasePrice
}

func (a Auction) HasBids() bool {
	return a.CurrentBid != nil
}

type Bid struct {
	ID         int64     `json:"bid_id" db:"bid_id"`
	AuctionID  int64     `json:"auction_id" db:"auction_id"`
	BidderID   int64     `json:"bidder_id" db:"bidder_id"`
	BidderName string    `json:"bidder_name" db:"bidder_name"`
	Amount     int64     `json:"amount" db:"amount"`
	Timestamp  time.Time `json:"timestamp" db:"timestamp"`
	IsActive   bool      `json:"is_active" db:"is_active"`
}

// Leader is the highest active bid on an auction.
type Leader struct {
	BidID      int64  `json:"bid_id"`
	BidderID   int64  `json:"bidder_id"`
	BidderName string `json:"bidder_name"`
	Amount     int64  `json:"amount"`
}

// LeadingBid is an auction where a given user holds the top active bid.
type LeadingBid struct {
	AuctionID int64  `json:"auction_id"`
	ItemText  string `json:"item_text"`
	Amount    int64  `json:"amount"`
}

type IntegrityReport struct {
	OrphanedSubmissions int `json:"orphaned_submissions"` // approved but no auction
	OrphanedAuctions    int `json:"orphaned_auctions"`    // submission row missing
	MismatchedLeaders   int `json:"mismatched_leaders"`   // current_bid differs from max active bid
}

func (r IntegrityReport) Healthy() bool {
	return r.OrphanedSubmissions == 0 && r.OrphanedAuctions == 0 && r.MismatchedLeaders == 0
}
