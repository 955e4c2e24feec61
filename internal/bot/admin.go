package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/legendauc/auctionbot/internal/models"
	"github.com/legendauc/auctionbot/internal/render"
	"github.com/legendauc/auctionbot/internal/services"
)

func (r *Router) verifyUser(ctx context.Context, m *Message) error {
	var targetID int64
	var username string
	// An explicit id wins over the reply target; an empty username is
	// filled from the user's pending request.
	if id, ok := parseIDArg(m.Args); ok {
		targetID = id
	} else if m.ReplyTo != nil && m.ReplyTo.From.ID != 0 && !m.ReplyTo.From.IsBot {
		targetID, username = m.ReplyTo.From.ID, m.ReplyTo.From.Handle()
	} else {
		r.send(ctx, m.ChatID, "❌ Please reply to a user's message with /verify or use /verify <user_id>")
		return nil
	}

	err := r.verifier.Verify(ctx, targetID, username, m.From.ID)
	if errors.Is(err, services.ErrAlreadyVerified) {
		r.send(ctx, m.ChatID, "⚠️ User is already verified")
		return nil
	}
	if err != nil {
		return err
	}

	r.audit.LogVerification(ctx, m.From.ID, targetID, "USER_VERIFIED")
	r.send(ctx, targetID, "✅ Verification Approved!\n\nYou can now access all bot features.\nPlease /start the bot again to refresh your status.")
	r.send(ctx, m.ChatID, fmt.Sprintf("✅ Verified user %d", targetID))
	return nil
}

func (r *Router) handleUnverify(ctx context.Context, m *Message) error {
	id, ok := parseIDArg(m.Args)
	if !ok {
		r.send(ctx, m.ChatID, usage("unverify", "<user_id>"))
		return nil
	}

	err := r.verifier.Unverify(ctx, id)
	if errors.Is(err, services.ErrNotVerified) {
		r.send(ctx, m.ChatID, fmt.Sprintf("⚠️ User %d is not verified", id))
		return nil
	}
	if err != nil {
		return err
	}

	r.audit.LogVerification(ctx, m.From.ID, id, "USER_UNVERIFIED")
	r.send(ctx, id, "⚠️ Your verification status has been removed by admin.\nYou'll need to get verified again to use bot features.")
	r.send(ctx, m.ChatID, fmt.Sprintf("✅ User %d verification removed", id))
	return nil
}

func (r *Router) handleListVerified(ctx context.Context, m *Message) error {
	users, err := r.verifier.List(ctx)
	if err != nil {
		return err
	}
	if len(users) == 0 {
		r.send(ctx, m.ChatID, "No verified users yet.")
		return nil
	}

	lines := []string{"✅ Verified Users:"}
	for _, u := range users {
		lastActive := "Never"
		if u.LastActive != nil {
			lastActive = u.LastActive.Format("2006-01-02 15:04")
		}
		lines = append(lines, fmt.Sprintf("\n👤 %s (ID: %d)\n   Verified: %s\n   Last Active: %s\n   Bids: %d, Submissions: %d",
			u.Username, u.UserID, u.VerifiedAt.Format("2006-01-02 15:04"), lastActive, u.TotalBids, u.TotalSubmissions))
	}
	r.send(ctx, m.ChatID, strings.Join(lines, "\n"))
	return nil
}

func (r *Router) handlePendingRequests(ctx context.Context, m *Message) error {
	requests, err := r.verifier.PendingRequests(ctx)
	if err != nil {
		return err
	}
	if len(requests) == 0 {
		r.send(ctx, m.ChatID, "No pending verification requests.")
		return nil
	}

	lines := []string{"🆕 Pending Verification Requests:"}
	for _, req := range requests {
		lines = append(lines, fmt.Sprintf("\n👤 %s (ID: %d)\n   Requested: %s\n   /verify %d",
			req.Username, req.UserID, req.RequestedAt.Format("2006-01-02 15:04"), req.UserID))
	}
	r.send(ctx, m.ChatID, strings.Join(lines, "\n"))
	return nil
}

func (r *Router) gateSetter(g models.Gate, open bool) commandHandler {
	return func(ctx context.Context, m *Message) error {
		if err := r.status.SetGate(ctx, g, open); err != nil {
			return err
		}
		label := "Item submissions are"
		if g == models.GateAuctions {
			label = "Auctions are"
		}
		state := "CLOSED"
		if open {
			state = "OPEN"
		}
		r.send(ctx, m.ChatID, fmt.Sprintf("✅ %s now %s", label, state))
		return nil
	}
}

func (r *Router) handleRemoveBid(ctx context.Context, m *Message) error {
	id, ok := parseIDArg(m.Args)
	if !ok {
		r.send(ctx, m.ChatID, usage("removebid", "<auction_id>"))
		return nil
	}

	result, displayed, err := r.retract(ctx, m.From.ID, id)
	switch {
	case errors.Is(err, services.ErrAuctionNotFound):
		r.send(ctx, m.ChatID, fmt.Sprintf("❌ Auction #%d not found!", id))
		return nil
	case errors.Is(err, services.ErrNoActiveBids):
		r.send(ctx, m.ChatID, fmt.Sprintf("❌ No active bids to remove for Auction #%d", id))
		return nil
	case err != nil:
		return err
	}

	top := "None"
	if result.NewLeader != nil {
		top = fmt.Sprintf("%s with %s", result.NewLeader.BidderName, render.FormatAmount(result.NewLeader.Amount))
	}
	reply := fmt.Sprintf("✅ Last bid removed from Auction #%d\nRemoved: %s with %s\nNew top bid: %s",
		id, result.Removed.BidderName, render.FormatAmount(result.Removed.Amount), top)
	if !displayed {
		reply += "\n\n⚠️ Note: Couldn't update auction message"
	}
	r.send(ctx, m.ChatID, reply)
	return nil
}

func (r *Router) handleCloseAuction(ctx context.Context, m *Message) error {
	id, ok := parseIDArg(m.Args)
	if !ok {
		r.send(ctx, m.ChatID, usage("closeauction", "<auction_id>"))
		return nil
	}

	err := r.ledger.CloseAuction(ctx, id)
	switch {
	case errors.Is(err, services.ErrAuctionNotFound):
		r.send(ctx, m.ChatID, fmt.Sprintf("❌ Auction #%d not found!", id))
		return nil
	case errors.Is(err, services.ErrAuctionClosed):
		r.send(ctx, m.ChatID, fmt.Sprintf("⚠️ Auction #%d is already closed", id))
		return nil
	case err != nil:
		return err
	}

	reply := fmt.Sprintf("🔒 Auction #%d closed", id)
	if err := r.refreshAuction(ctx, id); err != nil {
		log.Printf("[BOT] channel update after closing %d failed: %v", id, err)
		reply += "\n\n⚠️ Note: Couldn't update auction message"
	}
	r.send(ctx, m.ChatID, reply)
	return nil
}

func (r *Router) handleCleanup(ctx context.Context, m *Message) error {
	subs, err := r.submissions.CleanupRejected(ctx, r.cfg.RejectedRetention)
	if err != nil {
		return err
	}
	reqs, err := r.verifier.CleanupRequests(ctx, r.cfg.RequestRetention)
	if err != nil {
		return err
	}
	r.send(ctx, m.ChatID, fmt.Sprintf("✅ Database cleanup completed\nRemoved %d rejected submissions and %d old verification requests", subs, reqs))
	return nil
}

func (r *Router) handleIntegrity(ctx context.Context, m *Message) error {
	report, err := r.ledger.CheckIntegrity(ctx)
	if err != nil {
		return err
	}
	if report.Healthy() {
		r.send(ctx, m.ChatID, "✅ Ledger is consistent")
		return nil
	}
	r.send(ctx, m.ChatID, fmt.Sprintf("⚠️ Integrity issues found\nApproved submissions without auction: %d\nAuctions without submission: %d\nAuctions with a stale leader: %d",
		report.OrphanedSubmissions, report.OrphanedAuctions, report.MismatchedLeaders))
	return nil
}

// handleDecision applies an admin's approve or reject button.
func (r *Router) handleDecision(ctx context.Context, cb *Callback) error {
	if d := r.RequireAdmin()(ctx, cb.From); !d.Allowed {
		r.answer(ctx, cb.ID, d.Reason)
		return nil
	}
	r.answer(ctx, cb.ID, "")

	approve := strings.HasPrefix(cb.Data, prefixApprove)
	prefix := prefixReject
	if approve {
		prefix = prefixApprove
	}
	id, ok := parseCallbackID(cb.Data, prefix)
	if !ok {
		return fmt.Errorf("malformed decision callback %q", cb.Data)
	}

	var (
		sub     *models.Submission
		outcome string
		err     error
	)
	if approve {
		var result *services.ApprovalResult
		result, err = r.submissions.Approve(ctx, id, r)
		if err == nil {
			sub = &result.Submission
			outcome = fmt.Sprintf("✅ Approved by admin (Auction #%d)", result.AuctionID)
		}
	} else {
		sub, err = r.submissions.Reject(ctx, id)
		outcome = "❌ Rejected by admin"
	}

	switch {
	case errors.Is(err, services.ErrSubmissionNotFound):
		r.edit(ctx, cb, "❌ Submission not found in database!")
		return nil
	case errors.Is(err, services.ErrSubmissionNotPending):
		r.edit(ctx, cb, "⚠️ This submission was already processed!")
		return nil
	case err != nil:
		log.Printf("[BOT] decision on submission %d failed: %v", id, err)
		r.edit(ctx, cb, "❌ Processing failed. Check logs.")
		return nil
	}

	r.audit.LogDecision(ctx, cb.From.ID, id, string(sub.Status))
	r.edit(ctx, cb, outcome)

	if approve {
		r.send(ctx, sub.UserID, "🎉 Your item has been approved and listed!")
	} else {
		r.send(ctx, sub.UserID, "❌ Your submission was not approved.")
	}
	for _, admin := range r.cfg.Admins {
		if admin != cb.From.ID {
			r.send(ctx, admin, fmt.Sprintf("Submission %d: %s", id, outcome))
		}
	}
	return nil
}

func (r *Router) handleAPIToken(ctx context.Context, m *Message) error {
	if !m.Private {
		r.send(ctx, m.ChatID, "❌ Please DM me to get an API token!")
		return nil
	}
	if r.tokens == nil {
		r.send(ctx, m.ChatID, "❌ The admin API is not configured")
		return nil
	}

	token, err := r.tokens(m.From.ID)
	if err != nil {
		return fmt.Errorf("failed to issue api token: %w", err)
	}
	r.audit.LogVerification(ctx, m.From.ID, m.From.ID, "API_TOKEN_ISSUED")
	r.send(ctx, m.ChatID, "🔑 Admin API token:\n\n"+token+"\n\nSend it as 'Authorization: Bearer <token>'.")
	return nil
}
