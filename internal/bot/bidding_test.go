package bot

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/legendauc/auctionbot/internal/models"
	"github.com/legendauc/auctionbot/internal/services"
)

var errTelegram = errors.New("Bad Request: can't parse entities")

func openAuction(bid int64, bidder string) *models.Auction {
	return &models.Auction{
		ID:               3,
		ItemText:         "🆕 Legendary Pokémon\n\n🔤 Pokémon: Mewtwo\n",
		PhotoID:          lo.ToPtr("nature-photo"),
		BasePrice:        5000,
		CurrentBid:       lo.ToPtr(bid),
		CurrentBidder:    lo.ToPtr(bidder),
		IsActive:         true,
		ChannelMessageID: lo.ToPtr(int64(900)),
	}
}

func bidSession() models.BidSession {
	return models.BidSession{AuctionID: 3, ChannelMessageID: 900, MinBid: 7000, ItemName: "Mewtwo", PromptMessageID: 50}
}

// bidReply is misty answering the bid prompt.
func bidReply(amount string) Update {
	return Update{Message: &Message{
		ID: 12, ChatID: misty.ID, Private: true, From: misty, Text: amount,
		ReplyTo: &Message{ID: 50},
	}}
}

func (f *fixture) expectBidGuards() {
	f.sessions.On("Load", mock.Anything, misty.ID).Return(bidSession(), nil).Once()
	f.expectVerified(misty)
	f.expectStatus(models.SystemStatus{AuctionsOpen: true})
}

func channelEdit(m Edit) bool {
	return m.ChatID == channelID && m.MessageID == 900 && m.Caption
}

func TestBidAmount_PlacesBidAndNotifiesOutbidUser(t *testing.T) {
	f := newFixture(t)
	f.expectBidGuards()

	f.ledger.On("GetAuction", mock.Anything, int64(3)).Return(openAuction(6000, "@ash"), nil).Once()
	f.ledger.On("RecordBid", mock.Anything, int64(3), misty.ID, "@misty", int64(7000)).
		Return(&models.Leader{BidID: 1, BidderID: ash.ID, BidderName: "@ash", Amount: 6000}, nil).Once()
	f.sessions.On("Delete", mock.Anything, misty.ID).Return(nil).Once()
	f.verifier.On("IncrementBids", mock.Anything, misty.ID).Return(nil).Once()
	f.ledger.On("GetAuction", mock.Anything, int64(3)).Return(openAuction(7000, "@misty"), nil).Once()

	f.msg.On("Edit", mock.Anything, mock.MatchedBy(func(e Edit) bool {
		return channelEdit(e) && e.ParseMode == "MarkdownV2" &&
			strings.Contains(e.Text, "Current Bid: 7,000") &&
			assert.ObjectsAreEqual(bidButton(3), e.Buttons)
	})).Return(nil).Once()
	f.msg.On("Send", mock.Anything, mock.MatchedBy(func(m OutgoingMessage) bool {
		return m.ChatID == ash.ID && m.ParseMode == "MarkdownV2" && strings.Contains(m.Text, "outbid on Mewtwo")
	})).Return(101, nil).Once()
	f.msg.On("Send", mock.Anything, OutgoingMessage{ChatID: misty.ID, Text: msgBidPlaced}).Return(102, nil).Once()

	f.router.Handle(context.Background(), bidReply("7000"))
}

func TestBidAmount_DisplayFailureKeepsBid(t *testing.T) {
	f := newFixture(t)
	f.expectBidGuards()

	f.ledger.On("GetAuction", mock.Anything, int64(3)).Return(openAuction(6000, "@misty"), nil).Twice()
	f.ledger.On("RecordBid", mock.Anything, int64(3), misty.ID, "@misty", int64(8000)).
		Return(&models.Leader{BidderID: misty.ID, BidderName: "@misty", Amount: 6000}, nil).Once()
	f.sessions.On("Delete", mock.Anything, misty.ID).Return(nil).Once()
	f.verifier.On("IncrementBids", mock.Anything, misty.ID).Return(nil).Once()

	// One attempt per render strategy.
	f.msg.On("Edit", mock.Anything, mock.MatchedBy(channelEdit)).Return(errTelegram).Times(3)
	f.msg.On("Send", mock.Anything, OutgoingMessage{ChatID: misty.ID, Text: msgBidPlaced + "\n" + msgBidDisplayStale}).
		Return(102, nil).Once()

	f.router.Handle(context.Background(), bidReply("8k"))
}

func TestBidAmount_OutbidNoticeFailureIsSwallowed(t *testing.T) {
	f := newFixture(t)
	f.expectBidGuards()

	f.ledger.On("GetAuction", mock.Anything, int64(3)).Return(openAuction(6000, "@ash"), nil).Once()
	f.ledger.On("RecordBid", mock.Anything, int64(3), misty.ID, "@misty", int64(7000)).
		Return(&models.Leader{BidderID: ash.ID, BidderName: "@ash", Amount: 6000}, nil).Once()
	f.sessions.On("Delete", mock.Anything, misty.ID).Return(nil).Once()
	f.verifier.On("IncrementBids", mock.Anything, misty.ID).Return(errors.New("identity store down")).Once()
	f.ledger.On("GetAuction", mock.Anything, int64(3)).Return(openAuction(7000, "@misty"), nil).Once()
	f.msg.On("Edit", mock.Anything, mock.MatchedBy(channelEdit)).Return(nil).Once()

	f.msg.On("Send", mock.Anything, mock.MatchedBy(func(m OutgoingMessage) bool {
		return m.ChatID == ash.ID
	})).Return(0, errors.New("Forbidden: bot was blocked by the user")).Times(3)
	f.msg.On("Send", mock.Anything, OutgoingMessage{ChatID: misty.ID, Text: msgBidPlaced}).Return(102, nil).Once()

	f.router.Handle(context.Background(), bidReply("7,000"))
}

func TestBidAmount_Rejections(t *testing.T) {
	t.Run("below minimum", func(t *testing.T) {
		f := newFixture(t)
		f.expectBidGuards()
		f.ledger.On("GetAuction", mock.Anything, int64(3)).Return(openAuction(6000, "@ash"), nil).Once()
		f.expectReply(misty.ID, "❌ Bid must be at least 7,000\nCurrent bid: 6,000\nMinimum increment: 1,000")

		f.router.Handle(context.Background(), bidReply("6500"))
		f.ledger.AssertNotCalled(t, "RecordBid", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("not a number", func(t *testing.T) {
		f := newFixture(t)
		f.expectBidGuards()
		f.expectReply(misty.ID, msgInvalidAmount)

		f.router.Handle(context.Background(), bidReply("lots"))
	})

	t.Run("auctions closed", func(t *testing.T) {
		f := newFixture(t)
		f.sessions.On("Load", mock.Anything, misty.ID).Return(bidSession(), nil).Once()
		f.expectVerified(misty)
		f.expectStatus(models.SystemStatus{SubmissionsOpen: true})
		f.expectReply(misty.ID, reasonGateClosed)

		f.router.Handle(context.Background(), bidReply("7000"))
	})

	t.Run("auction ended while prompting", func(t *testing.T) {
		f := newFixture(t)
		f.expectBidGuards()
		closed := openAuction(6000, "@ash")
		closed.IsActive = false
		f.ledger.On("GetAuction", mock.Anything, int64(3)).Return(closed, nil).Once()
		f.sessions.On("Delete", mock.Anything, misty.ID).Return(nil).Once()
		f.expectReply(misty.ID, msgAuctionInactive)

		f.router.Handle(context.Background(), bidReply("7000"))
	})

	t.Run("outbid between check and write", func(t *testing.T) {
		f := newFixture(t)
		f.expectBidGuards()
		f.ledger.On("GetAuction", mock.Anything, int64(3)).Return(openAuction(6000, "@ash"), nil).Once()
		f.ledger.On("RecordBid", mock.Anything, int64(3), misty.ID, "@misty", int64(7000)).
			Return(nil, services.ErrBidTooLow).Once()
		f.ledger.On("GetAuction", mock.Anything, int64(3)).Return(openAuction(7000, "@brock"), nil).Once()
		f.expectReply(misty.ID, "❌ Someone bid first.\n❌ Bid must be at least 8,000")

		f.router.Handle(context.Background(), bidReply("7000"))
	})
}

func TestStartBid_DeepLinkOpensSession(t *testing.T) {
	f := newFixture(t)
	f.expectVerified(misty)
	f.expectStatus(models.SystemStatus{AuctionsOpen: true})
	f.ledger.On("GetAuction", mock.Anything, int64(3)).Return(openAuction(6000, "@ash"), nil).Once()
	f.msg.On("Send", mock.Anything, mock.MatchedBy(func(m OutgoingMessage) bool {
		return m.ChatID == misty.ID && m.ForceReply && strings.Contains(m.Text, "Minimum Bid: 7,000")
	})).Return(77, nil).Once()
	f.sessions.On("Save", mock.Anything, misty.ID, models.BidSession{
		AuctionID:        3,
		ChannelMessageID: 900,
		MinBid:           7000,
		ItemName:         "Mewtwo",
		PromptMessageID:  77,
	}).Return(nil).Once()

	f.router.Handle(context.Background(), command(misty, "start", "bid_3"))
}

func TestStartBid_UnknownAuction(t *testing.T) {
	f := newFixture(t)
	f.expectVerified(misty)
	f.expectStatus(models.SystemStatus{AuctionsOpen: true})
	f.ledger.On("GetAuction", mock.Anything, int64(404)).Return(nil, services.ErrAuctionNotFound).Once()
	f.expectReply(misty.ID, "❌ Auction not found!")

	f.router.Handle(context.Background(), command(misty, "start", "bid_404"))
}

func TestBidButton(t *testing.T) {
	t.Run("answers with deep link", func(t *testing.T) {
		f := newFixture(t)
		f.ledger.On("GetAuction", mock.Anything, int64(3)).Return(openAuction(6000, "@ash"), nil).Once()
		f.msg.On("AnswerCallback", mock.Anything, "cb-1", "", "https://t.me/LegendAucBot?start=bid_3").Return(nil).Once()

		f.router.Handle(context.Background(), Update{Callback: &Callback{
			ID: "cb-1", From: misty, ChatID: channelID, MessageID: 900, Data: "bid_3",
		}})
	})

	t.Run("closed auction", func(t *testing.T) {
		f := newFixture(t)
		closed := openAuction(6000, "@ash")
		closed.IsActive = false
		f.ledger.On("GetAuctionByMessageID", mock.Anything, int64(900)).Return(closed, nil).Once()
		f.msg.On("AnswerCallback", mock.Anything, "cb-2", msgAuctionNotFound, "").Return(nil).Once()

		f.router.Handle(context.Background(), Update{Callback: &Callback{
			ID: "cb-2", From: misty, ChatID: channelID, MessageID: 900, Data: "bid_",
		}})
	})
}

func TestPostAuction(t *testing.T) {
	f := newFixture(t)
	a := models.Auction{ID: 3, ItemText: "🆕 Legendary Pokémon\n\n🔤 Pokémon: Mewtwo\n", PhotoID: lo.ToPtr("nature-photo"), BasePrice: 5000, IsActive: true}

	// MarkdownV2 rejected, legacy Markdown accepted.
	f.msg.On("Send", mock.Anything, mock.MatchedBy(func(m OutgoingMessage) bool {
		return m.ParseMode == "MarkdownV2"
	})).Return(0, errTelegram).Once()
	f.msg.On("Send", mock.Anything, mock.MatchedBy(func(m OutgoingMessage) bool {
		return m.ChatID == channelID && m.ParseMode == "Markdown" && m.PhotoID == "nature-photo" &&
			strings.Contains(m.Text, "Click the button below to bid") &&
			assert.ObjectsAreEqual(bidButton(3), m.Buttons)
	})).Return(900, nil).Once()

	id, err := f.router.PostAuction(context.Background(), a)
	require.NoError(t, err)
	assert.Equal(t, int64(900), id)
}
