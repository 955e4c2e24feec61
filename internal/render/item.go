package render

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/legendauc/auctionbot/internal/models"
)

var printer = message.NewPrinter(language.English)

// FormatAmount groups thousands: 12500 -> "12,500".
func FormatAmount(amount int64) string {
	return printer.Sprintf("%d", amount)
}

func seller(p models.SubmissionPayload) string {
	if p.Seller == "" {
		return "Unknown"
	}
	return p.Seller
}

func pageText(page *models.ForwardedPage, fallback string) string {
	if page == nil || strings.TrimSpace(page.Text) == "" {
		return fallback
	}
	return page.Text
}

func PokemonItemText(p models.SubmissionPayload) string {
	boost := "Unboosted"
	if p.Boosted {
		boost = "Boosted"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🆕 %s Pokémon\n\n", p.Category.Label())
	fmt.Fprintf(&b, "🔤 Pokémon: %s\n", p.PokemonName)
	fmt.Fprintf(&b, "🌿 Info:\n%s\n\n", pageText(p.Nature, "Nature details not available"))
	fmt.Fprintf(&b, "📊 IVs/EVs:\n%s\n\n", pageText(p.IVs, "No IV/EV details provided"))
	fmt.Fprintf(&b, "⚔️ Moveset:\n%s\n\n", pageText(p.Moveset, "No moveset details provided"))
	fmt.Fprintf(&b, "🔮 Boost Info: %s\n\n", boost)
	fmt.Fprintf(&b, "👤 Seller: %s\n\n", seller(p))
	fmt.Fprintf(&b, "💰 Base Price: %s", FormatAmount(p.BasePrice))
	return b.String()
}

func TMItemText(p models.SubmissionPayload) string {
	return fmt.Sprintf("🆕 New TM Auction\n\n%s\n\n💰 Base Price: %s\n👤 Seller: %s",
		pageText(p.TMDetails, "TM details not available"), FormatAmount(p.BasePrice), seller(p))
}

// ItemText is the listing body stored on the auction.
func ItemText(p models.SubmissionPayload) string {
	if p.IsTM() {
		return TMItemText(p)
	}
	return PokemonItemText(p)
}

// PrimaryPhoto is the image posted with the listing; TMs are text only.
func PrimaryPhoto(p models.SubmissionPayload) string {
	if p.IsTM() || p.Nature == nil {
		return ""
	}
	return p.Nature.PhotoID
}

func ItemName(p models.SubmissionPayload) string {
	if p.IsTM() {
		return "TM " + firstLine(pageText(p.TMDetails, "Unknown"))
	}
	if p.PokemonName == "" {
		return "Unknown Pokémon"
	}
	return p.PokemonName
}

var (
	pokemonLine = regexp.MustCompile(`(?i)pokémon:\s*(.*?)\n`)
	tmHeader    = "🆕 New TM Auction\n\n"
)

// ItemNameFromText recovers a short name from a stored listing body.
func ItemNameFromText(itemText string) string {
	if rest, ok := strings.CutPrefix(itemText, tmHeader); ok {
		return "TM " + firstLine(rest)
	}
	if m := pokemonLine.FindStringSubmatch(itemText); m != nil {
		return strings.TrimSpace(m[1])
	}
	return firstLine(itemText)
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(line)
}
