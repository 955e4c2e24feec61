package render

import (
	"errors"
	"log"
)

// Strategy is one way of rendering a plain message for the chat API.
type Strategy struct {
	Name      string
	ParseMode string
	Escape    func(string) string
}

func (s Strategy) Render(text string) string {
	if s.Escape == nil {
		return text
	}
	return s.Escape(text)
}

var (
	MarkdownV2 = Strategy{Name: "markdown_v2", ParseMode: "MarkdownV2", Escape: EscapeMarkdownV2}
	Markdown   = Strategy{Name: "markdown", ParseMode: "Markdown", Escape: EscapeMarkdown}
	Plain      = Strategy{Name: "plain"}
)

// Strategies is the default fallback order.
var Strategies = []Strategy{MarkdownV2, Markdown, Plain}

// SendFunc delivers one rendering of a message.
type SendFunc func(text, parseMode string) error

var errNoStrategies = errors.New("no render strategies")

// SendWithFallback tries each strategy in order until a send succeeds and
// returns the one that did. Each attempt renders from the same plain text.
func SendWithFallback(text string, send SendFunc, strategies ...Strategy) (Strategy, error) {
	if len(strategies) == 0 {
		strategies = Strategies
	}
	lastErr := errNoStrategies
	for _, s := range strategies {
		err := send(s.Render(text), s.ParseMode)
		if err == nil {
			return s, nil
		}
		log.Printf("[RENDER] %s send failed: %v", s.Name, err)
		lastErr = err
	}
	return Strategy{}, lastErr
}
