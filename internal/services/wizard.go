package services

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/legendauc/auctionbot/internal/models"
)

// WizardState is a step of the /add conversation.
type WizardState string

const (
	StateSelectCategory WizardState = "select_category"
	StatePokemonName    WizardState = "pokemon_name"
	StateNature         WizardState = "nature"
	StateIVs            WizardState = "ivs"
	StateMoveset        WizardState = "moveset"
	StateBoosted        WizardState = "boosted"
	StateBasePrice      WizardState = "base_price"
	StateTMDetails      WizardState = "tm_details"
	StateComplete       WizardState = "complete"
)

const maxPokemonName = 30

// WizardInput is one user action fed into the wizard. Choice carries the
// suffix of a button callback; the other fields come from a message.
type WizardInput struct {
	Text          string
	PhotoID       string
	ForwardedFrom string
	Choice        string
}

type WizardDraft struct {
	UserID  int64                    `json:"user_id"`
	State   WizardState              `json:"state"`
	Payload models.SubmissionPayload `json:"payload"`
}

// InputError rejects a single input. The draft stays where it was and the
// message is shown to the user as is.
type InputError struct {
	Message string
}

func (e *InputError) Error() string {
	return e.Message
}

// IsInputError reports whether err should be relayed to the user verbatim.
func IsInputError(err error) bool {
	var ie *InputError
	return errors.As(err, &ie)
}

type Wizard struct {
	sourceBot string
	validator *ValidationHelper
}

func NewWizard(sourceBot string) *Wizard {
	return &Wizard{
		sourceBot: strings.ToLower(strings.TrimPrefix(sourceBot, "@")),
		validator: NewValidationHelper(),
	}
}

func (w *Wizard) Start(userID int64, seller string) WizardDraft {
	return WizardDraft{
		UserID: userID,
		State:  StateSelectCategory,
		Payload: models.SubmissionPayload{
			SellerID: userID,
			Seller:   seller,
		},
	}
}

// Advance applies one input to the draft and returns the next draft. It does
// no I/O.
func (w *Wizard) Advance(d WizardDraft, in WizardInput) (WizardDraft, error) {
	p := &d.Payload

	switch d.State {
	case StateSelectCategory:
		c, ok := models.ParseCategory(in.Choice)
		if !ok {
			return d, &InputError{"❌ Please pick a category using the buttons."}
		}
		p.Category = c
		if c == models.CategoryTMs {
			d.State = StateTMDetails
		} else {
			d.State = StatePokemonName
		}

	case StatePokemonName:
		name := w.validator.Sanitize(in.Text)
		if name == "" || utf8.RuneCountInString(name) > maxPokemonName {
			return d, &InputError{"❌ Invalid name! Please enter a valid Pokémon name (max 30 chars)"}
		}
		p.PokemonName = name
		d.State = StateNature

	case StateNature:
		page, err := w.page(in, "nature", "Nature details not available")
		if err != nil {
			return d, err
		}
		p.Nature = page
		d.State = StateIVs

	case StateIVs:
		page, err := w.page(in, "IV/EV", "No IV/EV details provided")
		if err != nil {
			return d, err
		}
		p.IVs = page
		d.State = StateMoveset

	case StateMoveset:
		page, err := w.page(in, "moveset", "No moveset details provided")
		if err != nil {
			return d, err
		}
		p.Moveset = page
		d.State = StateBoosted

	case StateBoosted:
		switch in.Choice {
		case "yes":
			p.Boosted = true
		case "no":
			p.Boosted = false
		default:
			return d, &InputError{"❌ Please answer using the buttons."}
		}
		d.State = StateBasePrice

	case StateTMDetails:
		if !w.fromSource(in) {
			return d, &InputError{fmt.Sprintf("❌ Please forward directly from @%s", w.sourceBot)}
		}
		text := strings.TrimSpace(in.Text)
		if text == "" {
			return d, &InputError{"❌ No TM details found in the message"}
		}
		p.TMDetails = &models.ForwardedPage{Text: text}
		d.State = StateBasePrice

	case StateBasePrice:
		price, err := ParseAmount(in.Text)
		if err != nil {
			return d, &InputError{"❌ Please enter a valid price (e.g., '0', '5000' or 'Base: 5k')"}
		}
		p.BasePrice = price
		if err := w.validator.ValidatePayload(*p); err != nil {
			return d, err
		}
		d.State = StateComplete

	case StateComplete:
		return d, &InputError{"✅ This item was already submitted. Use /add to start another."}

	default:
		return d, fmt.Errorf("unknown wizard state %q", d.State)
	}

	return d, nil
}

// Prompt is what the user is asked for in the draft's current state.
func (w *Wizard) Prompt(d WizardDraft) string {
	switch d.State {
	case StateSelectCategory:
		return "📝 Select category for your item:"
	case StatePokemonName:
		return "🔤 Please enter the Pokémon's name:"
	case StateNature:
		return fmt.Sprintf("🌿 Now forward %s's Nature page from @%s", d.Payload.PokemonName, w.sourceBot)
	case StateIVs:
		return fmt.Sprintf("📊 Now forward IVs/EVs page from @%s", w.sourceBot)
	case StateMoveset:
		return fmt.Sprintf("⚔️ Now forward the Moveset page from @%s", w.sourceBot)
	case StateBoosted:
		return "🔮 Is this Pokémon boosted?"
	case StateTMDetails:
		return fmt.Sprintf("📝 Please forward the TM details from @%s\n(This should include all TM information)", w.sourceBot)
	case StateBasePrice:
		if d.Payload.IsTM() {
			return "💰 Please enter the starting price for this TM\nExamples:\n- 0\n- 5000\n- 10k\n- Base: 5k"
		}
		return "💰 Now enter the base price (e.g. 'Base: 5k'):"
	case StateComplete:
		if d.Payload.IsTM() {
			return "✅ TM submitted for approval!"
		}
		return "✅ Submission sent to admins for verification!"
	}
	return ""
}

func (w *Wizard) page(in WizardInput, what, fallback string) (*models.ForwardedPage, error) {
	if !w.fromSource(in) {
		return nil, &InputError{fmt.Sprintf("❌ Invalid %s page! Please forward the original message directly from @%s", what, w.sourceBot)}
	}
	if in.PhotoID == "" {
		return nil, &InputError{fmt.Sprintf("❌ No %s photo detected!", what)}
	}
	text := strings.TrimSpace(in.Text)
	if text == "" {
		text = fallback
	}
	return &models.ForwardedPage{PhotoID: in.PhotoID, Text: text}, nil
}

func (w *Wizard) fromSource(in WizardInput) bool {
	from := strings.ToLower(strings.ReplaceAll(in.ForwardedFrom, " ", ""))
	return from != "" && from == w.sourceBot
}
