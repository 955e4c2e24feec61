package bot

import (
	"context"
	"fmt"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

var userCommands = []tgbotapi.BotCommand{
	{Command: "start", Description: "Start the bot"},
	{Command: "help", Description: "Show all commands"},
	{Command: "items", Description: "View active auctions"},
	{Command: "myitems", Description: "View your approved items"},
	{Command: "mybids", Description: "View your winning bids"},
	{Command: "history", Description: "Bid history of an auction"},
	{Command: "add", Description: "Submit new item"},
	{Command: "cancel", Description: "Cancel the current submission"},
	{Command: "verify", Description: "Request verification"},
}

var adminCommands = []tgbotapi.BotCommand{
	{Command: "unverify", Description: "Remove a user's verification"},
	{Command: "verified", Description: "List verified users"},
	{Command: "requests", Description: "Pending verification requests"},
	{Command: "startsubmission", Description: "Open submissions"},
	{Command: "endsubmission", Description: "Close submissions"},
	{Command: "startauction", Description: "Start auctions"},
	{Command: "endauction", Description: "End auctions"},
	{Command: "removebid", Description: "Remove last bid"},
	{Command: "closeauction", Description: "Close an auction"},
	{Command: "cleanup", Description: "Cleanup database"},
	{Command: "integrity", Description: "Check ledger consistency"},
	{Command: "apitoken", Description: "Get a token for the admin API"},
}

// Telegram adapts the Bot API client to Messenger and UpdateSource.
type Telegram struct {
	api *tgbotapi.BotAPI
}

func NewTelegram(token string) (*Telegram, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to telegram: %w", err)
	}
	log.Printf("[TELEGRAM] authorized as @%s", api.Self.UserName)
	return &Telegram{api: api}, nil
}

func (t *Telegram) Username() string {
	return t.api.Self.UserName
}

func (t *Telegram) Send(_ context.Context, msg OutgoingMessage) (int, error) {
	var cfg tgbotapi.Chattable
	if msg.PhotoID != "" {
		photo := tgbotapi.NewPhoto(msg.ChatID, tgbotapi.FileID(msg.PhotoID))
		photo.Caption = msg.Text
		photo.ParseMode = msg.ParseMode
		photo.ReplyToMessageID = msg.ReplyTo
		photo.ReplyMarkup = replyMarkup(msg)
		cfg = photo
	} else {
		text := tgbotapi.NewMessage(msg.ChatID, msg.Text)
		text.ParseMode = msg.ParseMode
		text.ReplyToMessageID = msg.ReplyTo
		text.ReplyMarkup = replyMarkup(msg)
		cfg = text
	}

	sent, err := t.api.Send(cfg)
	if err != nil {
		return 0, err
	}
	return sent.MessageID, nil
}

func (t *Telegram) Edit(_ context.Context, e Edit) error {
	var markup *tgbotapi.InlineKeyboardMarkup
	if len(e.Buttons) > 0 {
		kb := keyboard(e.Buttons)
		markup = &kb
	}

	var cfg tgbotapi.Chattable
	if e.Caption {
		c := tgbotapi.NewEditMessageCaption(e.ChatID, e.MessageID, e.Text)
		c.ParseMode = e.ParseMode
		c.ReplyMarkup = markup
		cfg = c
	} else {
		c := tgbotapi.NewEditMessageText(e.ChatID, e.MessageID, e.Text)
		c.ParseMode = e.ParseMode
		c.ReplyMarkup = markup
		cfg = c
	}

	_, err := t.api.Request(cfg)
	return err
}

func (t *Telegram) AnswerCallback(_ context.Context, callbackID, text, url string) error {
	cfg := tgbotapi.NewCallback(callbackID, text)
	cfg.URL = url
	_, err := t.api.Request(cfg)
	return err
}

// RegisterCommands publishes the command menu, with the admin commands
// scoped to each admin's private chat.
func (t *Telegram) RegisterCommands(admins []int64) error {
	if _, err := t.api.Request(tgbotapi.NewSetMyCommands(userCommands...)); err != nil {
		return fmt.Errorf("failed to set bot commands: %w", err)
	}
	all := append(append([]tgbotapi.BotCommand{}, userCommands...), adminCommands...)
	for _, id := range admins {
		scope := tgbotapi.NewBotCommandScopeChat(id)
		if _, err := t.api.Request(tgbotapi.NewSetMyCommandsWithScope(scope, all...)); err != nil {
			log.Printf("[TELEGRAM] failed to set admin commands for %d: %v", id, err)
		}
	}
	return nil
}

func (t *Telegram) Updates(ctx context.Context) <-chan Update {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 60
	in := t.api.GetUpdatesChan(cfg)

	out := make(chan Update)
	go func() {
		defer close(out)
		for u := range in {
			update, ok := convertUpdate(u)
			if !ok {
				continue
			}
			select {
			case out <- update:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

func (t *Telegram) Stop() {
	t.api.StopReceivingUpdates()
}

func replyMarkup(msg OutgoingMessage) any {
	switch {
	case len(msg.Buttons) > 0:
		return keyboard(msg.Buttons)
	case msg.ForceReply:
		return tgbotapi.ForceReply{ForceReply: true, Selective: true}
	}
	return nil
}

func keyboard(rows [][]Button) tgbotapi.InlineKeyboardMarkup {
	out := make([][]tgbotapi.InlineKeyboardButton, 0, len(rows))
	for _, row := range rows {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			if b.URL != "" {
				buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonURL(b.Text, b.URL))
			} else {
				buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(b.Text, b.Data))
			}
		}
		out = append(out, tgbotapi.NewInlineKeyboardRow(buttons...))
	}
	return tgbotapi.NewInlineKeyboardMarkup(out...)
}

func convertUpdate(u tgbotapi.Update) (Update, bool) {
	switch {
	case u.CallbackQuery != nil:
		q := u.CallbackQuery
		cb := &Callback{ID: q.ID, From: convertUser(q.From), Data: q.Data}
		if q.Message != nil {
			cb.MessageID = q.Message.MessageID
			if q.Message.Chat != nil {
				cb.ChatID = q.Message.Chat.ID
			}
		}
		return Update{Callback: cb}, true
	case u.Message != nil:
		return Update{Message: convertMessage(u.Message)}, true
	}
	return Update{}, false
}

func convertMessage(m *tgbotapi.Message) *Message {
	msg := &Message{
		ID:      m.MessageID,
		From:    convertUser(m.From),
		Text:    m.Text,
		Command: m.Command(),
		Args:    m.CommandArguments(),
	}
	if msg.Text == "" {
		msg.Text = m.Caption
	}
	if m.Chat != nil {
		msg.ChatID = m.Chat.ID
		msg.Private = m.Chat.IsPrivate()
	}
	if n := len(m.Photo); n > 0 {
		msg.PhotoID = m.Photo[n-1].FileID
	}
	if m.ForwardFrom != nil {
		msg.ForwardedFrom = m.ForwardFrom.UserName
	}
	if m.ReplyToMessage != nil {
		msg.ReplyTo = &Message{
			ID:   m.ReplyToMessage.MessageID,
			From: convertUser(m.ReplyToMessage.From),
			Text: m.ReplyToMessage.Text,
		}
	}
	return msg
}

func convertUser(u *tgbotapi.User) User {
	if u == nil {
		return User{}
	}
	return User{ID: u.ID, Username: u.UserName, FirstName: u.FirstName, IsBot: u.IsBot}
}
