package bot

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/legendauc/auctionbot/internal/models"
	"github.com/legendauc/auctionbot/internal/render"
	"github.com/legendauc/auctionbot/internal/services"
)

const (
	msgBidPlaced       = "✅ Your bid has been placed!"
	msgBidDisplayStale = "⚠️ The channel post could not be updated, but your bid is recorded."
	msgAuctionInactive = "❌ This auction is no longer active."
	msgAuctionNotFound = "❌ Auction not found. It may have expired or been closed."
	msgInvalidAmount   = "❌ Please enter a valid number"
)

var errNoChannelMessage = errors.New("auction has no channel message")

// startBid opens a bid session for the deep link /start bid_<id>.
func (r *Router) startBid(ctx context.Context, m *Message, auctionID int64) error {
	if d := Check(ctx, m.From, r.RequireVerified(), r.RequireGate(models.GateAuctions)); !d.Allowed {
		r.send(ctx, m.ChatID, d.Reason)
		return nil
	}

	a, err := r.ledger.GetAuction(ctx, auctionID)
	if errors.Is(err, services.ErrAuctionNotFound) {
		r.send(ctx, m.ChatID, "❌ Auction not found!")
		return nil
	}
	if err != nil {
		return err
	}
	if !a.IsActive {
		r.send(ctx, m.ChatID, msgAuctionInactive)
		return nil
	}

	minBid := services.MinimumBid(a.CurrentAmount())
	promptID, err := r.msg.Send(ctx, OutgoingMessage{
		ChatID:     m.ChatID,
		Text:       render.BidPrompt(*a, minBid),
		ForceReply: true,
	})
	if err != nil {
		return fmt.Errorf("failed to send bid prompt: %w", err)
	}

	session := models.BidSession{
		AuctionID:       a.ID,
		MinBid:          minBid,
		ItemName:        render.ItemNameFromText(a.ItemText),
		PromptMessageID: int64(promptID),
	}
	if a.ChannelMessageID != nil {
		session.ChannelMessageID = *a.ChannelMessageID
	}
	return r.sessions.Save(ctx, m.From.ID, session)
}

// handleBidButton answers the channel button with a deep link into the
// bot's private chat, where the amount is collected.
func (r *Router) handleBidButton(ctx context.Context, cb *Callback) error {
	id, ok := parseCallbackID(cb.Data, prefixBid)
	var a *models.Auction
	var err error
	if ok {
		a, err = r.ledger.GetAuction(ctx, id)
	} else {
		a, err = r.ledger.GetAuctionByMessageID(ctx, int64(cb.MessageID))
	}
	if errors.Is(err, services.ErrAuctionNotFound) || (err == nil && !a.IsActive) {
		r.answer(ctx, cb.ID, msgAuctionNotFound)
		return nil
	}
	if err != nil {
		r.answer(ctx, cb.ID, "")
		return err
	}

	if err := r.msg.AnswerCallback(ctx, cb.ID, "", r.links.BidLink(a.ID)); err != nil {
		log.Printf("[BOT] failed to answer bid button for auction %d: %v", a.ID, err)
	}
	return nil
}

// handleBidAmount places the bid typed in reply to a bid prompt. The ledger
// write comes first; display and notification failures never undo it.
func (r *Router) handleBidAmount(ctx context.Context, m *Message, session models.BidSession) error {
	if d := Check(ctx, m.From, r.RequireVerified(), r.RequireGate(models.GateAuctions)); !d.Allowed {
		r.send(ctx, m.ChatID, d.Reason)
		return nil
	}

	amount, err := services.ParseAmount(m.Text)
	if err != nil || amount <= 0 {
		r.send(ctx, m.ChatID, msgInvalidAmount)
		return nil
	}

	a, err := r.ledger.GetAuction(ctx, session.AuctionID)
	if errors.Is(err, services.ErrAuctionNotFound) || (err == nil && !a.IsActive) {
		r.dropSession(ctx, m.From.ID)
		r.send(ctx, m.ChatID, msgAuctionInactive)
		return nil
	}
	if err != nil {
		return err
	}

	current := a.CurrentAmount()
	if minBid := services.MinimumBid(current); amount < minBid {
		r.send(ctx, m.ChatID, tooLowMessage(current))
		return nil
	}

	prev, err := r.ledger.RecordBid(ctx, a.ID, m.From.ID, m.From.DisplayName(), amount)
	switch {
	case errors.Is(err, services.ErrBidTooLow):
		fresh, ferr := r.ledger.GetAuction(ctx, a.ID)
		if ferr != nil {
			return ferr
		}
		r.send(ctx, m.ChatID, "❌ Someone bid first.\n"+tooLowMessage(fresh.CurrentAmount()))
		return nil
	case errors.Is(err, services.ErrAuctionClosed), errors.Is(err, services.ErrAuctionNotFound):
		r.dropSession(ctx, m.From.ID)
		r.send(ctx, m.ChatID, msgAuctionInactive)
		return nil
	case err != nil:
		return err
	}

	r.dropSession(ctx, m.From.ID)
	r.audit.LogBid(ctx, m.From.ID, a.ID, amount)
	if err := r.verifier.IncrementBids(ctx, m.From.ID); err != nil {
		log.Printf("[BOT] failed to count bid for %d: %v", m.From.ID, err)
	}

	reply := msgBidPlaced
	if err := r.refreshAuction(ctx, a.ID); err != nil {
		log.Printf("[BOT] channel update for auction %d failed: %v", a.ID, err)
		reply += "\n" + msgBidDisplayStale
	}

	if prev != nil && prev.BidderID != m.From.ID {
		itemName := session.ItemName
		if itemName == "" {
			itemName = render.ItemNameFromText(a.ItemText)
		}
		r.notifyOutbid(ctx, prev.BidderID, itemName, amount)
	}

	r.send(ctx, m.ChatID, reply)
	return nil
}

func tooLowMessage(current int64) string {
	return fmt.Sprintf("❌ Bid must be at least %s\nCurrent bid: %s\nMinimum increment: %s",
		render.FormatAmount(services.MinimumBid(current)),
		render.FormatAmount(current),
		render.FormatAmount(services.MinIncrement(current)))
}

func (r *Router) notifyOutbid(ctx context.Context, bidderID int64, itemName string, amount int64) {
	_, err := render.SendWithFallback(render.OutbidNotice(itemName, amount), func(text, mode string) error {
		_, err := r.msg.Send(ctx, OutgoingMessage{ChatID: bidderID, Text: text, ParseMode: mode})
		return err
	})
	if err != nil {
		log.Printf("[BOT] couldn't notify outbid user %d: %v", bidderID, err)
	}
}

func (r *Router) dropSession(ctx context.Context, userID int64) {
	if err := r.sessions.Delete(ctx, userID); err != nil {
		log.Printf("[BOT] failed to clear bid session for %d: %v", userID, err)
	}
}

// refreshAuction re-reads the auction and redraws its channel post.
func (r *Router) refreshAuction(ctx context.Context, auctionID int64) error {
	a, err := r.ledger.GetAuction(ctx, auctionID)
	if err != nil {
		return err
	}
	if !a.IsActive {
		return r.editChannelPost(ctx, *a, render.ClosedCaption(*a), nil)
	}
	return r.editChannelPost(ctx, *a, render.AuctionCaption(*a), bidButton(a.ID))
}

func (r *Router) editChannelPost(ctx context.Context, a models.Auction, text string, buttons [][]Button) error {
	if a.ChannelMessageID == nil {
		return errNoChannelMessage
	}
	_, err := render.SendWithFallback(text, func(body, mode string) error {
		return r.msg.Edit(ctx, Edit{
			ChatID:    r.cfg.ChannelID,
			MessageID: int(*a.ChannelMessageID),
			Text:      body,
			ParseMode: mode,
			Caption:   a.PhotoID != nil,
			Buttons:   buttons,
		})
	})
	return err
}

// PostAuction publishes a freshly created auction to the channel.
func (r *Router) PostAuction(ctx context.Context, a models.Auction) (int64, error) {
	msg := OutgoingMessage{ChatID: r.cfg.ChannelID, Buttons: bidButton(a.ID)}
	if a.PhotoID != nil {
		msg.PhotoID = *a.PhotoID
	}

	var messageID int
	_, err := render.SendWithFallback(render.AuctionCaption(a), func(text, mode string) error {
		msg.Text, msg.ParseMode = text, mode
		id, err := r.msg.Send(ctx, msg)
		messageID = id
		return err
	})
	if err != nil {
		return 0, err
	}
	return int64(messageID), nil
}

// RemoveLastBid retracts the newest bid on an auction and redraws the post.
func (r *Router) RemoveLastBid(ctx context.Context, adminID, auctionID int64) (*services.RetractResult, error) {
	result, _, err := r.retract(ctx, adminID, auctionID)
	return result, err
}

func (r *Router) retract(ctx context.Context, adminID, auctionID int64) (*services.RetractResult, bool, error) {
	result, err := r.ledger.RetractLastBid(ctx, auctionID)
	if err != nil {
		return nil, false, err
	}
	r.audit.LogRetract(ctx, adminID, auctionID, result.Removed.BidderName, result.Removed.Amount)

	displayed := true
	if err := r.refreshAuction(ctx, auctionID); err != nil {
		log.Printf("[BOT] channel update after retraction on %d failed: %v", auctionID, err)
		displayed = false
	}
	return result, displayed, nil
}
