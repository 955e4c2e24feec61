package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/legendauc/auctionbot/internal/models"
	"github.com/legendauc/auctionbot/internal/services"
)

const (
	prefixCategory = "cat_"
	prefixBoosted  = "boosted_"
	prefixApprove  = "verify_"
	prefixReject   = "reject_"
	prefixBid      = "bid_"
)

const msgUnexpected = "❌ An unexpected error occurred. Please try again."

type Ledger interface {
	RecordBid(ctx context.Context, auctionID, bidderID int64, bidderName string, amount int64) (*models.Leader, error)
	RetractLastBid(ctx context.Context, auctionID int64) (*services.RetractResult, error)
	GetAuction(ctx context.Context, auctionID int64) (*models.Auction, error)
	GetAuctionByMessageID(ctx context.Context, channelMessageID int64) (*models.Auction, error)
	ListActiveByCategory(ctx context.Context) (services.CategorizedAuctions, error)
	BidHistory(ctx context.Context, auctionID int64) ([]models.Bid, error)
	LeadingBids(ctx context.Context, userID int64) ([]models.LeadingBid, error)
	CloseAuction(ctx context.Context, auctionID int64) error
	CheckIntegrity(ctx context.Context) (*models.IntegrityReport, error)
}

type Submissions interface {
	Create(ctx context.Context, userID int64, payload models.SubmissionPayload) (int64, error)
	Approve(ctx context.Context, id int64, poster services.ChannelPoster) (*services.ApprovalResult, error)
	Reject(ctx context.Context, id int64) (*models.Submission, error)
	ListApprovedByUser(ctx context.Context, userID int64) ([]models.Submission, error)
	CleanupRejected(ctx context.Context, olderThan time.Duration) (int64, error)
}

type StatusStore interface {
	Get(ctx context.Context) (models.SystemStatus, error)
	SetGate(ctx context.Context, g models.Gate, open bool) error
}

type Verifier interface {
	IsVerified(ctx context.Context, userID int64) (bool, error)
	Verify(ctx context.Context, userID int64, username string, verifiedBy int64) error
	Unverify(ctx context.Context, userID int64) error
	List(ctx context.Context) ([]models.VerifiedUser, error)
	RequestVerification(ctx context.Context, userID int64, username string) (int64, error)
	PendingRequests(ctx context.Context) ([]models.VerificationRequest, error)
	Touch(ctx context.Context, userID int64, username string) error
	IncrementBids(ctx context.Context, userID int64) error
	IncrementSubmissions(ctx context.Context, userID int64) error
	CleanupRequests(ctx context.Context, olderThan time.Duration) (int64, error)
}

type DraftStore interface {
	Load(ctx context.Context, userID int64) (services.WizardDraft, error)
	Save(ctx context.Context, d services.WizardDraft) error
	Delete(ctx context.Context, userID int64) error
}

type BidSessions interface {
	Load(ctx context.Context, userID int64) (models.BidSession, error)
	Save(ctx context.Context, userID int64, session models.BidSession) error
	Delete(ctx context.Context, userID int64) error
}

type Config struct {
	Admins            []int64
	ChannelID         int64
	ChannelUsername   string
	RejectedRetention time.Duration
	RequestRetention  time.Duration
}

type Deps struct {
	Messenger   Messenger
	Ledger      Ledger
	Submissions Submissions
	Status      StatusStore
	Verifier    Verifier
	Drafts      DraftStore
	Sessions    BidSessions
	Wizard      *services.Wizard
	Links       *services.DeepLinkService
	Audit       *services.ActivityLogger
	// Tokens signs admin API tokens; nil disables /apitoken.
	Tokens TokenIssuer
}

type TokenIssuer func(userID int64) (string, error)

// Router turns chat updates into ledger, submission and identity operations.
type Router struct {
	cfg         Config
	msg         Messenger
	ledger      Ledger
	submissions Submissions
	status      StatusStore
	verifier    Verifier
	drafts      DraftStore
	sessions    BidSessions
	wizard      *services.Wizard
	links       *services.DeepLinkService
	audit       *services.ActivityLogger
	tokens      TokenIssuer
	commands    map[string]commandHandler
}

type commandHandler func(ctx context.Context, m *Message) error

func NewRouter(cfg Config, deps Deps) *Router {
	audit := deps.Audit
	if audit == nil {
		audit = services.NewActivityLogger(nil)
	}
	r := &Router{
		cfg:         cfg,
		msg:         deps.Messenger,
		ledger:      deps.Ledger,
		submissions: deps.Submissions,
		status:      deps.Status,
		verifier:    deps.Verifier,
		drafts:      deps.Drafts,
		sessions:    deps.Sessions,
		wizard:      deps.Wizard,
		links:       deps.Links,
		audit:       audit,
		tokens:      deps.Tokens,
	}

	r.commands = map[string]commandHandler{
		"start":   r.handleStart,
		"help":    r.handleHelp,
		"items":   r.guarded(r.handleItems, r.RequireVerified()),
		"myitems": r.guarded(r.handleMyItems, r.RequireVerified()),
		"mybids":  r.guarded(r.handleMyBids, r.RequireVerified()),
		"history": r.guarded(r.handleHistory, r.RequireVerified()),
		"add":     r.guarded(r.handleAdd, r.RequireVerified(), r.RequireGate(models.GateSubmissions)),
		"cancel":  r.handleCancel,
		"verify":  r.handleVerify,

		"unverify":        r.guarded(r.handleUnverify, r.RequireAdmin()),
		"verified":        r.guarded(r.handleListVerified, r.RequireAdmin()),
		"requests":        r.guarded(r.handlePendingRequests, r.RequireAdmin()),
		"startsubmission": r.guarded(r.gateSetter(models.GateSubmissions, true), r.RequireAdmin()),
		"endsubmission":   r.guarded(r.gateSetter(models.GateSubmissions, false), r.RequireAdmin()),
		"startauction":    r.guarded(r.gateSetter(models.GateAuctions, true), r.RequireAdmin()),
		"endauction":      r.guarded(r.gateSetter(models.GateAuctions, false), r.RequireAdmin()),
		"removebid":       r.guarded(r.handleRemoveBid, r.RequireAdmin()),
		"closeauction":    r.guarded(r.handleCloseAuction, r.RequireAdmin()),
		"cleanup":         r.guarded(r.handleCleanup, r.RequireAdmin()),
		"integrity":       r.guarded(r.handleIntegrity, r.RequireAdmin()),
		"apitoken":        r.guarded(r.handleAPIToken, r.RequireAdmin()),
	}
	return r
}

// Handle processes one update. Errors are logged and answered with a
// generic reply; they never stop the update loop.
func (r *Router) Handle(ctx context.Context, u Update) {
	var err error
	var chatID int64

	switch {
	case u.Callback != nil:
		chatID = u.Callback.ChatID
		err = r.handleCallback(ctx, u.Callback)
	case u.Message != nil:
		chatID = u.Message.ChatID
		err = r.handleMessage(ctx, u.Message)
	default:
		return
	}

	if err != nil {
		log.Printf("[BOT] update failed: %v", err)
		if chatID != 0 {
			r.send(ctx, chatID, msgUnexpected)
		}
	}
}

func (r *Router) handleMessage(ctx context.Context, m *Message) error {
	if m.Command != "" {
		h, ok := r.commands[strings.ToLower(m.Command)]
		if !ok {
			return nil
		}
		return h(ctx, m)
	}
	if !m.Private {
		return nil
	}
	return r.handlePlain(ctx, m)
}

// handlePlain routes a non-command private message. A reply to the bid
// prompt always counts as a bid; otherwise an open wizard draft wins over a
// pending bid session.
func (r *Router) handlePlain(ctx context.Context, m *Message) error {
	session, err := r.sessions.Load(ctx, m.From.ID)
	hasSession := err == nil
	if err != nil && !errors.Is(err, services.ErrNoBidSession) {
		return err
	}
	if hasSession && m.ReplyTo != nil && session.PromptMessageID != 0 && m.ReplyTo.ID == int(session.PromptMessageID) {
		return r.handleBidAmount(ctx, m, session)
	}

	draft, err := r.drafts.Load(ctx, m.From.ID)
	switch {
	case err == nil:
		return r.advanceDraft(ctx, m.ChatID, draft, services.WizardInput{
			Text:          m.Text,
			PhotoID:       m.PhotoID,
			ForwardedFrom: m.ForwardedFrom,
		})
	case !errors.Is(err, services.ErrNoDraft):
		return err
	}

	if hasSession {
		return r.handleBidAmount(ctx, m, session)
	}
	r.send(ctx, m.ChatID, "ℹ️ Use /help to see commands")
	return nil
}

func (r *Router) handleCallback(ctx context.Context, cb *Callback) error {
	switch {
	case strings.HasPrefix(cb.Data, prefixBid):
		return r.handleBidButton(ctx, cb)
	case strings.HasPrefix(cb.Data, prefixCategory):
		return r.handleWizardChoice(ctx, cb, strings.TrimPrefix(cb.Data, prefixCategory))
	case strings.HasPrefix(cb.Data, prefixBoosted):
		return r.handleWizardChoice(ctx, cb, strings.TrimPrefix(cb.Data, prefixBoosted))
	case strings.HasPrefix(cb.Data, prefixApprove), strings.HasPrefix(cb.Data, prefixReject):
		return r.handleDecision(ctx, cb)
	}
	r.answer(ctx, cb.ID, "")
	return nil
}

// guarded wraps h so it only runs when every guard allows the sender.
func (r *Router) guarded(h commandHandler, guards ...Guard) commandHandler {
	return func(ctx context.Context, m *Message) error {
		if d := Check(ctx, m.From, guards...); !d.Allowed {
			r.send(ctx, m.ChatID, d.Reason)
			return nil
		}
		return h(ctx, m)
	}
}

func (r *Router) isAdmin(userID int64) bool {
	return lo.Contains(r.cfg.Admins, userID)
}

func (r *Router) send(ctx context.Context, chatID int64, text string) {
	if _, err := r.msg.Send(ctx, OutgoingMessage{ChatID: chatID, Text: text}); err != nil {
		log.Printf("[BOT] failed to message %d: %v", chatID, err)
	}
}

func (r *Router) answer(ctx context.Context, callbackID, text string) {
	if err := r.msg.AnswerCallback(ctx, callbackID, text, ""); err != nil {
		log.Printf("[BOT] failed to answer callback: %v", err)
	}
}

func (r *Router) edit(ctx context.Context, cb *Callback, text string) {
	err := r.msg.Edit(ctx, Edit{ChatID: cb.ChatID, MessageID: cb.MessageID, Text: text})
	if err != nil {
		log.Printf("[BOT] failed to edit message %d: %v", cb.MessageID, err)
		r.send(ctx, cb.ChatID, text)
	}
}

func callbackData(prefix string, id int64) string {
	return prefix + strconv.FormatInt(id, 10)
}

func parseCallbackID(data, prefix string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimPrefix(data, prefix), 10, 64)
	return id, err == nil && id > 0
}

// parseIDArg reads the first argument of a command as a positive id.
func parseIDArg(args string) (int64, bool) {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		return 0, false
	}
	id, err := strconv.ParseInt(strings.TrimPrefix(fields[0], "#"), 10, 64)
	return id, err == nil && id > 0
}

func usage(cmd, args string) string {
	return fmt.Sprintf("❌ Usage: /%s %s", cmd, args)
}
