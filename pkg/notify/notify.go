// Package notify delivers booking outcomes to an operator through a
// Telegram bot: a text summary, the confirmation screenshot as a photo,
// and optionally a document attachment. It is fully decoupled from the
// browser lifecycle; a notification failure never affects cleanup.
package notify

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// sender is the slice of the bot API the notifier uses, separated so tests
// can capture outgoing requests without the network.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Notifier sends messages to one configured chat.
type Notifier struct {
	bot    sender
	chatID int64
}

// New connects the bot and validates the token against the API.
func New(token string, chatID int64) (*Notifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to connect telegram bot: %w", err)
	}
	return &Notifier{bot: bot, chatID: chatID}, nil
}

// SendMessage sends a plain text message.
func (n *Notifier) SendMessage(text string) error {
	if _, err := n.bot.Send(tgbotapi.NewMessage(n.chatID, text)); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

// SendPhoto sends an in-memory image with a caption. Used for the booking
// confirmation screenshot.
func (n *Notifier) SendPhoto(caption string, image []byte) error {
	photo := tgbotapi.NewPhoto(n.chatID, tgbotapi.FileBytes{
		Name:  "confirmation.png",
		Bytes: image,
	})
	photo.Caption = caption
	if _, err := n.bot.Send(photo); err != nil {
		return fmt.Errorf("failed to send photo: %w", err)
	}
	return nil
}

// SendDocument sends an in-memory file under the given name.
func (n *Notifier) SendDocument(name string, data []byte) error {
	doc := tgbotapi.NewDocument(n.chatID, tgbotapi.FileBytes{
		Name:  name,
		Bytes: data,
	})
	if _, err := n.bot.Send(doc); err != nil {
		return fmt.Errorf("failed to send document: %w", err)
	}
	return nil
}
