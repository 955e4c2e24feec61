package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

type SubmissionStatus string

const (
	SubmissionPending    SubmissionStatus = "pending"
	SubmissionProcessing SubmissionStatus = "processing"
	SubmissionApproved   SubmissionStatus = "approved"
	SubmissionRejected   SubmissionStatus = "rejected"
	SubmissionFailed     SubmissionStatus = "failed"
)

type Category string

const (
	CategoryLegendary    Category = "legendary"
	CategoryShiny        Category = "shiny"
	CategoryNonLegendary Category = "nonlegendary"
	CategoryTMs          Category = "tms"
)

// Categories lists the categories in display order.
var Categories = []Category{CategoryLegendary, CategoryShiny, CategoryNonLegendary, CategoryTMs}

func ParseCategory(s string) (Category, bool) {
	for _, c := range Categories {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

func (c Category) Label() string {
	switch c {
	case CategoryLegendary:
		return "Legendary"
	case CategoryShiny:
		return "Shiny"
	case CategoryTMs:
		return "TMs"
	default:
		return "Non-Legendary"
	}
}

func (c Category) Emoji() string {
	switch c {
	case CategoryLegendary:
		return "🌟"
	case CategoryShiny:
		return "✨"
	case CategoryTMs:
		return "💿"
	default:
		return "🐾"
	}
}

// ForwardedPage is one screen forwarded from the game bot: an optional photo
// plus its caption or text.
type ForwardedPage struct {
	PhotoID string `json:"photo_id,omitempty"`
	Text    string `json:"text"`
}

// SubmissionPayload is the wizard output stored as JSONB on the submission row.
type SubmissionPayload struct {
	Category    Category       `json:"category" validate:"required,oneof=legendary shiny nonlegendary tms"`
	PokemonName string         `json:"pokemon_name,omitempty" validate:"required_unless=Category tms,max=30"`
	Nature      *ForwardedPage `json:"nature,omitempty" validate:"required_unless=Category tms"`
	IVs         *ForwardedPage `json:"ivs,omitempty" validate:"required_unless=Category tms"`
	Moveset     *ForwardedPage `json:"moveset,omitempty" validate:"required_unless=Category tms"`
	Boosted     bool           `json:"boosted"`
	TMDetails   *ForwardedPage `json:"tm_details,omitempty" validate:"required_if=Category tms"`
	BasePrice   int64          `json:"base_price" validate:"gte=0"`
	SellerID    int64          `json:"seller_id"`
	Seller      string         `json:"seller,omitempty"` // "@username" or first name
}

func (p SubmissionPayload) IsTM() bool {
	return p.Category == CategoryTMs
}

// Value implements driver.Valuer for SubmissionPayload
func (p SubmissionPayload) Value() (driver.Value, error) {
	return json.Marshal(p)
}

// Scan implements sql.Scanner for SubmissionPayload
func (p *SubmissionPayload) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		*p = SubmissionPayload{}
		return nil
	case []byte:
		return json.Unmarshal(v, p)
	case string:
		return json.Unmarshal([]byte(v), p)
	default:
		return errors.New("type assertion to []byte failed")
	}
}

type Submission struct {
	ID               int64             `json:"submission_id" db:"submission_id"`
	UserID           int64             `json:"user_id" db:"user_id"`
	Data             SubmissionPayload `json:"data" db:"data"`
	Status           SubmissionStatus  `json:"status" db:"status"`
	ChannelMessageID *int64            `json:"channel_message_id,omitempty" db:"channel_message_id"`
	CreatedAt        time.Time         `json:"created_at" db:"created_at"`
}
