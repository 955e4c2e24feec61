package bot

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/samber/lo"

	"github.com/legendauc/auctionbot/internal/models"
	"github.com/legendauc/auctionbot/internal/render"
	"github.com/legendauc/auctionbot/internal/services"
)

const msgDraftExpired = "❌ Session expired. Please start over with /add"

func (r *Router) handleAdd(ctx context.Context, m *Message) error {
	if !m.Private {
		r.send(ctx, m.ChatID, "❌ Please DM me to add items!")
		return nil
	}

	draft := r.wizard.Start(m.From.ID, m.From.DisplayName())
	if err := r.drafts.Save(ctx, draft); err != nil {
		return err
	}
	return r.prompt(ctx, m.ChatID, draft)
}

func (r *Router) handleCancel(ctx context.Context, m *Message) error {
	if err := r.drafts.Delete(ctx, m.From.ID); err != nil {
		return err
	}
	r.dropSession(ctx, m.From.ID)
	r.send(ctx, m.ChatID, "🗑 Posting cancelled.\nYou can start over with /add")
	return nil
}

// handleWizardChoice feeds a category or boosted button into the draft.
func (r *Router) handleWizardChoice(ctx context.Context, cb *Callback, choice string) error {
	draft, err := r.drafts.Load(ctx, cb.From.ID)
	if errors.Is(err, services.ErrNoDraft) {
		r.answer(ctx, cb.ID, msgDraftExpired)
		return nil
	}
	if err != nil {
		r.answer(ctx, cb.ID, "")
		return err
	}
	if draft.State != services.StateSelectCategory && draft.State != services.StateBoosted {
		r.answer(ctx, cb.ID, "This button is no longer active")
		return nil
	}
	r.answer(ctx, cb.ID, "")

	next, err := r.wizard.Advance(draft, services.WizardInput{Choice: choice})
	if err != nil {
		return r.rejectInput(ctx, cb.ChatID, draft, err)
	}
	if err := r.drafts.Save(ctx, next); err != nil {
		return err
	}
	r.edit(ctx, cb, r.wizard.Prompt(next))
	return nil
}

func (r *Router) advanceDraft(ctx context.Context, chatID int64, draft services.WizardDraft, in services.WizardInput) error {
	next, err := r.wizard.Advance(draft, in)
	if err != nil {
		return r.rejectInput(ctx, chatID, draft, err)
	}

	if next.State == services.StateComplete {
		return r.submitDraft(ctx, chatID, next)
	}
	if err := r.drafts.Save(ctx, next); err != nil {
		return err
	}
	return r.prompt(ctx, chatID, next)
}

func (r *Router) rejectInput(ctx context.Context, chatID int64, draft services.WizardDraft, err error) error {
	if services.IsInputError(err) {
		r.send(ctx, chatID, err.Error())
		return nil
	}
	if errors.Is(err, services.ErrMissingField) {
		if derr := r.drafts.Delete(ctx, draft.UserID); derr != nil {
			log.Printf("[BOT] failed to drop draft for %d: %v", draft.UserID, derr)
		}
		r.send(ctx, chatID, fmt.Sprintf("❌ %v\nPlease restart with /add", err))
		return nil
	}
	return err
}

// submitDraft stores a finished draft and fans it out to the admins for
// approval.
func (r *Router) submitDraft(ctx context.Context, chatID int64, draft services.WizardDraft) error {
	id, err := r.submissions.Create(ctx, draft.UserID, draft.Payload)
	if err != nil {
		return err
	}
	if err := r.drafts.Delete(ctx, draft.UserID); err != nil {
		log.Printf("[BOT] failed to drop draft for %d: %v", draft.UserID, err)
	}

	r.audit.LogSubmission(ctx, draft.UserID, id)
	if err := r.verifier.IncrementSubmissions(ctx, draft.UserID); err != nil {
		log.Printf("[BOT] failed to count submission for %d: %v", draft.UserID, err)
	}

	preview := OutgoingMessage{Text: render.ItemText(draft.Payload), PhotoID: render.PrimaryPhoto(draft.Payload)}
	decision := OutgoingMessage{
		Text: "Verify this submission?",
		Buttons: [][]Button{{
			{Text: "✅ Approve", Data: callbackData(prefixApprove, id)},
			{Text: "❌ Reject", Data: callbackData(prefixReject, id)},
		}},
	}
	for _, admin := range r.cfg.Admins {
		preview.ChatID, decision.ChatID = admin, admin
		if _, err := r.msg.Send(ctx, preview); err != nil {
			log.Printf("[BOT] failed to send submission %d to admin %d: %v", id, admin, err)
		}
		if _, err := r.msg.Send(ctx, decision); err != nil {
			log.Printf("[BOT] failed to send approval buttons for %d to admin %d: %v", id, admin, err)
		}
	}

	r.send(ctx, chatID, r.wizard.Prompt(draft))
	return nil
}

func (r *Router) prompt(ctx context.Context, chatID int64, draft services.WizardDraft) error {
	msg := OutgoingMessage{ChatID: chatID, Text: r.wizard.Prompt(draft)}
	switch draft.State {
	case services.StateSelectCategory:
		msg.Buttons = lo.Map(models.Categories, func(c models.Category, _ int) []Button {
			return []Button{{Text: c.Label(), Data: prefixCategory + string(c)}}
		})
	case services.StateBoosted:
		msg.Buttons = [][]Button{
			{{Text: "✅ Boosted", Data: prefixBoosted + "yes"}},
			{{Text: "❌ Unboosted", Data: prefixBoosted + "no"}},
		}
	case services.StateBasePrice:
		msg.ForceReply = true
	}
	_, err := r.msg.Send(ctx, msg)
	return err
}
