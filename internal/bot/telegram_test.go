package bot

import (
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertUpdate_Command(t *testing.T) {
	u, ok := convertUpdate(tgbotapi.Update{Message: &tgbotapi.Message{
		MessageID: 5,
		From:      &tgbotapi.User{ID: 9, UserName: "misty", FirstName: "Misty"},
		Chat:      &tgbotapi.Chat{ID: 9, Type: "private"},
		Text:      "/history 42",
		Entities:  []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: 8}},
	}})
	require.True(t, ok)
	require.NotNil(t, u.Message)

	m := u.Message
	assert.Equal(t, "history", m.Command)
	assert.Equal(t, "42", m.Args)
	assert.True(t, m.Private)
	assert.Equal(t, int64(9), m.ChatID)
	assert.Equal(t, "@misty", m.From.DisplayName())
}

func TestConvertUpdate_ForwardedPhotoReply(t *testing.T) {
	u, ok := convertUpdate(tgbotapi.Update{Message: &tgbotapi.Message{
		MessageID:   6,
		From:        &tgbotapi.User{ID: 9, FirstName: "Misty"},
		Chat:        &tgbotapi.Chat{ID: -300, Type: "supergroup"},
		Caption:     "Adamant nature",
		Photo:       []tgbotapi.PhotoSize{{FileID: "small"}, {FileID: "large"}},
		ForwardFrom: &tgbotapi.User{ID: 77, UserName: "HexamonBot", IsBot: true},
		ReplyToMessage: &tgbotapi.Message{
			MessageID: 4,
			From:      &tgbotapi.User{ID: 5, UserName: "auctionbot", IsBot: true},
			Text:      "please verify",
		},
	}})
	require.True(t, ok)

	m := u.Message
	assert.False(t, m.Private)
	assert.Empty(t, m.Command)
	assert.Equal(t, "Adamant nature", m.Text)
	assert.Equal(t, "large", m.PhotoID)
	assert.Equal(t, "HexamonBot", m.ForwardedFrom)
	require.NotNil(t, m.ReplyTo)
	assert.Equal(t, 4, m.ReplyTo.ID)
	assert.Equal(t, int64(5), m.ReplyTo.From.ID)
	assert.True(t, m.ReplyTo.From.IsBot)
	assert.False(t, m.From.IsBot)
	assert.Equal(t, "Misty", m.From.DisplayName())
}

func TestConvertUpdate_Callback(t *testing.T) {
	u, ok := convertUpdate(tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb-1",
		From:    &tgbotapi.User{ID: 9, UserName: "misty"},
		Data:    "bid_3",
		Message: &tgbotapi.Message{MessageID: 900, Chat: &tgbotapi.Chat{ID: -100, Type: "channel"}},
	}})
	require.True(t, ok)
	assert.Nil(t, u.Message)
	assert.Equal(t, &Callback{ID: "cb-1", From: User{ID: 9, Username: "misty"}, ChatID: -100, MessageID: 900, Data: "bid_3"}, u.Callback)
}

func TestConvertUpdate_Ignored(t *testing.T) {
	_, ok := convertUpdate(tgbotapi.Update{ChannelPost: &tgbotapi.Message{Text: "post"}})
	assert.False(t, ok)
}

func TestKeyboard(t *testing.T) {
	kb := keyboard([][]Button{
		{{Text: "💰 Place Bid", Data: "bid_3"}},
		{{Text: "Channel", URL: "https://t.me/legend_auc"}},
	})
	require.Len(t, kb.InlineKeyboard, 2)

	bid := kb.InlineKeyboard[0][0]
	require.NotNil(t, bid.CallbackData)
	assert.Equal(t, "bid_3", *bid.CallbackData)
	assert.Nil(t, bid.URL)

	link := kb.InlineKeyboard[1][0]
	require.NotNil(t, link.URL)
	assert.Equal(t, "https://t.me/legend_auc", *link.URL)
}

func TestReplyMarkup(t *testing.T) {
	assert.Nil(t, replyMarkup(OutgoingMessage{Text: "hi"}))
	assert.Equal(t, tgbotapi.ForceReply{ForceReply: true, Selective: true}, replyMarkup(OutgoingMessage{ForceReply: true}))
	assert.IsType(t, tgbotapi.InlineKeyboardMarkup{}, replyMarkup(OutgoingMessage{Buttons: bidButton(3), ForceReply: true}))
}

func TestUserNames(t *testing.T) {
	assert.Equal(t, "Unknown", User{ID: 1}.DisplayName())
	assert.Equal(t, "Brock", User{FirstName: "Brock"}.Handle())
	assert.Equal(t, "brock", User{Username: "brock", FirstName: "Brock"}.Handle())
}
