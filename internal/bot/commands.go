package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/legendauc/auctionbot/internal/models"
	"github.com/legendauc/auctionbot/internal/render"
	"github.com/legendauc/auctionbot/internal/services"
)

var categoryHeaders = map[models.Category]string{
	models.CategoryLegendary:    "🌟 Legendary Pokémon:",
	models.CategoryShiny:        "✨ Shiny Pokémon:",
	models.CategoryNonLegendary: "🔹 Non-Legendary Pokémon:",
	models.CategoryTMs:          "💿 Technical Machines:",
}

func (r *Router) handleStart(ctx context.Context, m *Message) error {
	if id, ok := services.ParseBidPayload(m.Args); ok {
		return r.startBid(ctx, m, id)
	}

	if d := r.RequireVerified()(ctx, m.From); !d.Allowed {
		r.send(ctx, m.ChatID, d.Reason+r.joinFooter())
		return nil
	}

	status, err := r.status.Get(ctx)
	if err != nil {
		return err
	}

	lines := []string{
		"🏆 Legend Auction Bot 🏆",
		"",
		"📝 Item Submissions: " + openLabel(status.SubmissionsOpen),
		"💰 Auctions: " + openLabel(status.AuctionsOpen),
		"",
		"Welcome to the 🐉Legend Auction Bot🐉" + r.joinFooter(),
		"",
		"Use /help to see commands",
	}
	r.send(ctx, m.ChatID, strings.Join(lines, "\n"))
	return nil
}

func (r *Router) joinFooter() string {
	if r.cfg.ChannelUsername == "" {
		return ""
	}
	return "\n\nMake sure to join the auction channel @" + strings.TrimPrefix(r.cfg.ChannelUsername, "@")
}

func openLabel(open bool) string {
	if open {
		return "🟢 OPEN"
	}
	return "🔴 CLOSED"
}

func (r *Router) handleHelp(ctx context.Context, m *Message) error {
	lines := []string{
		"🤖 Bot Commands 🤖",
		"",
		"🛠 General Commands:",
		"/start - Start the bot",
		"/help - Show this help message",
		"/items - View active auctions",
		"/myitems - View your approved items",
		"/mybids - View your winning bids",
		"/history <auction_id> - Bid history",
		"/add - Submit new item",
		"/cancel - Cancel the current submission",
		"/verify - Request verification",
	}
	if r.isAdmin(m.From.ID) {
		lines = append(lines,
			"",
			"🔐 Admin Commands:",
			"/verify - Reply to a user's message to verify them",
			"/unverify <user_id> - Remove verification",
			"/verified - List verified users",
			"/requests - Pending verification requests",
			"/startsubmission - Open submissions",
			"/endsubmission - Close submissions",
			"/startauction - Start auctions",
			"/endauction - End auctions",
			"/removebid <auction_id> - Remove last bid",
			"/closeauction <auction_id> - Close an auction",
			"/cleanup - Cleanup database",
			"/integrity - Check ledger consistency",
			"/apitoken - Get a token for the admin API",
		)
	}
	r.send(ctx, m.ChatID, strings.Join(lines, "\n"))
	return nil
}

func (r *Router) handleItems(ctx context.Context, m *Message) error {
	categorized, err := r.ledger.ListActiveByCategory(ctx)
	if err != nil {
		return err
	}
	if categorized.Total() == 0 {
		r.send(ctx, m.ChatID, "ℹ️ No active auctions currently.")
		return nil
	}

	lines := []string{"🏆 Active Auctions 🏆"}
	for _, c := range models.Categories {
		auctions := categorized[c]
		if len(auctions) == 0 {
			continue
		}
		lines = append(lines, "", categoryHeaders[c])
		for i, a := range auctions {
			lines = append(lines, fmt.Sprintf("  %d. %s (Auction #%d) - Current: %s",
				i+1, render.ItemNameFromText(a.ItemText), a.ID, render.FormatAmount(a.CurrentAmount())))
		}
	}
	if r.cfg.ChannelUsername != "" {
		lines = append(lines, "", "💡 Join the channel @"+strings.TrimPrefix(r.cfg.ChannelUsername, "@"))
	}
	r.send(ctx, m.ChatID, strings.Join(lines, "\n"))
	return nil
}

func (r *Router) handleMyItems(ctx context.Context, m *Message) error {
	items, err := r.submissions.ListApprovedByUser(ctx, m.From.ID)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		r.send(ctx, m.ChatID, "📭 You don't have any approved items in auctions yet.")
		return nil
	}

	lines := []string{
		fmt.Sprintf("📋 Your Approved Auction Items (%d total)", len(items)),
		"--------------------------------",
	}
	for i, item := range items {
		auctionRef := "Not listed yet"
		if item.ChannelMessageID != nil {
			a, err := r.ledger.GetAuctionByMessageID(ctx, *item.ChannelMessageID)
			switch {
			case err == nil:
				auctionRef = fmt.Sprintf("#%d", a.ID)
			case errors.Is(err, services.ErrAuctionNotFound):
				auctionRef = "Closed"
			default:
				return err
			}
		}
		lines = append(lines, fmt.Sprintf("\n%d. [%s] %s\n   Auction ID: %s\n   Submitted: %s",
			i+1, item.Data.Category.Label(), render.ItemName(item.Data), auctionRef,
			item.CreatedAt.Format("2006-01-02 15:04")))
	}
	lines = append(lines, "\nℹ️ Items without Auction ID haven't been posted yet")
	r.send(ctx, m.ChatID, strings.Join(lines, "\n"))
	return nil
}

func (r *Router) handleMyBids(ctx context.Context, m *Message) error {
	leading, err := r.ledger.LeadingBids(ctx, m.From.ID)
	if err != nil {
		return err
	}
	if len(leading) == 0 {
		r.send(ctx, m.ChatID, "You're not currently the highest bidder on any active auctions.")
		return nil
	}

	lines := []string{"🏆 Your Current Winning Bids:"}
	for _, b := range leading {
		lines = append(lines, fmt.Sprintf("\n🔹 Auction #%d: %s\n   Your Bid: %s",
			b.AuctionID, render.ItemNameFromText(b.ItemText), render.FormatAmount(b.Amount)))
	}
	r.send(ctx, m.ChatID, strings.Join(lines, "\n"))
	return nil
}

func (r *Router) handleHistory(ctx context.Context, m *Message) error {
	id, ok := parseIDArg(m.Args)
	if !ok {
		r.send(ctx, m.ChatID, usage("history", "<auction_id>"))
		return nil
	}

	bids, err := r.ledger.BidHistory(ctx, id)
	if err != nil {
		return err
	}
	if len(bids) == 0 {
		r.send(ctx, m.ChatID, fmt.Sprintf("No bid history found for Auction #%d", id))
		return nil
	}

	lines := []string{fmt.Sprintf("📊 Bid History for Auction #%d", id)}
	for _, b := range bids {
		lines = append(lines, fmt.Sprintf("🏷️ Bid #%d: %s - %s at %s",
			b.ID, b.BidderName, render.FormatAmount(b.Amount), b.Timestamp.Format("2006-01-02 15:04")))
	}
	r.send(ctx, m.ChatID, strings.Join(lines, "\n"))
	return nil
}

// handleVerify is a request from a regular user and an approval from an
// admin, who either replies to the user's message or passes their id.
func (r *Router) handleVerify(ctx context.Context, m *Message) error {
	if r.isAdmin(m.From.ID) {
		return r.verifyUser(ctx, m)
	}

	_, err := r.verifier.RequestVerification(ctx, m.From.ID, m.From.Handle())
	switch {
	case errors.Is(err, services.ErrAlreadyVerified):
		r.send(ctx, m.ChatID, "✅ You're already verified!")
		return nil
	case errors.Is(err, services.ErrRequestPending):
		r.send(ctx, m.ChatID, "⏳ Your verification request is pending. Please wait for admin approval.")
		return nil
	case err != nil:
		return err
	}

	notice := fmt.Sprintf("🆕 Verification Request\n\nUser: %s (ID: %d)\n\nUse /verify %d to approve",
		m.From.DisplayName(), m.From.ID, m.From.ID)
	for _, admin := range r.cfg.Admins {
		r.send(ctx, admin, notice)
	}
	r.send(ctx, m.ChatID, "📨 Verification request sent to admins!\nYou'll be notified once approved.")
	return nil
}
