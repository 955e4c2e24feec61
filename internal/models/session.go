package models

// BidSession remembers which auction a user opened from the channel button
// until they reply with an amount.
type BidSession struct {
	AuctionID        int64  `json:"auction_id"`
	ChannelMessageID int64  `json:"channel_message_id"`
	MinBid           int64  `json:"min_bid"`
	ItemName         string `json:"item_name"`
	PromptMessageID  int64  `json:"prompt_message_id"`
}
