package bot

import "context"

type User struct {
	ID        int64
	Username  string
	FirstName string
	IsBot     bool
}

// DisplayName is how a user is shown to others: "@username" when they have
// one, otherwise their first name.
func (u User) DisplayName() string {
	if u.Username != "" {
		return "@" + u.Username
	}
	if u.FirstName != "" {
		return u.FirstName
	}
	return "Unknown"
}

// Handle is the bare username, or the first name as a fallback.
func (u User) Handle() string {
	if u.Username != "" {
		return u.Username
	}
	return u.FirstName
}

type Message struct {
	ID      int
	ChatID  int64
	Private bool
	From    User
	// Text holds the message text, or the caption for media.
	Text          string
	PhotoID       string
	ForwardedFrom string
	Command       string
	Args          string
	ReplyTo       *Message
}

type Callback struct {
	ID        string
	From      User
	ChatID    int64
	MessageID int
	Data      string
}

// Update is a chat event with the transport stripped off. Exactly one field
// is set.
type Update struct {
	Message  *Message
	Callback *Callback
}

type Button struct {
	Text string
	Data string
	URL  string
}

type OutgoingMessage struct {
	ChatID    int64
	Text      string
	ParseMode string
	// PhotoID sends the message as a photo with Text as its caption.
	PhotoID    string
	Buttons    [][]Button
	ForceReply bool
	ReplyTo    int
}

type Edit struct {
	ChatID    int64
	MessageID int
	Text      string
	ParseMode string
	// Caption edits a media caption instead of message text.
	Caption bool
	Buttons [][]Button
}

// Messenger is the outbound side of the chat platform.
type Messenger interface {
	Send(ctx context.Context, msg OutgoingMessage) (int, error)
	Edit(ctx context.Context, edit Edit) error
	AnswerCallback(ctx context.Context, callbackID, text, url string) error
}

// UpdateSource is the inbound side of the chat platform.
type UpdateSource interface {
	Updates(ctx context.Context) <-chan Update
	Stop()
}

func bidButton(auctionID int64) [][]Button {
	return [][]Button{{{Text: "💰 Place Bid", Data: callbackData(prefixBid, auctionID)}}}
}
