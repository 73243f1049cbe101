package telegram

import (
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/ykvlv/etymology-bot/internal/domain"
)

// Telegram caps callback answer texts at 200 characters.
const maxCallbackText = 200

// BotAPI is the subset of *tgbotapi.BotAPI the bot uses.
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Client sends bot messages. It implements delivery.Messenger.
type Client struct {
	bot BotAPI
}

func NewClient(bot BotAPI) *Client {
	return &Client{bot: bot}
}

// SendText sends text with an optional reply markup.
func (c *Client) SendText(chatID int64, text string, markup any) error {
	msg := tgbotapi.NewMessage(chatID, text)
	if markup != nil {
		msg.ReplyMarkup = markup
	}
	if _, err := c.bot.Send(msg); err != nil {
		return &domain.DeliveryError{ChatID: chatID, Op: "send message", Err: err}
	}
	return nil
}

// EditText replaces the text of a bot message. markup may be nil.
func (c *Client) EditText(chatID int64, messageID int, text string, markup *tgbotapi.InlineKeyboardMarkup) error {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ReplyMarkup = markup
	if _, err := c.bot.Send(edit); err != nil {
		return &domain.DeliveryError{ChatID: chatID, Op: "edit message", Err: err}
	}
	return nil
}

// SendContent sends an etymology with the localized "More" button.
func (c *Client) SendContent(chatID int64, text string, lang domain.Language) error {
	return c.SendText(chatID, text, moreKeyboard(lang))
}

// EditContent replaces an etymology in place, keeping the "More" button.
func (c *Client) EditContent(chatID int64, messageID int, text string, lang domain.Language) error {
	kb := moreKeyboard(lang)
	return c.EditText(chatID, messageID, text, &kb)
}

// NotifyTyping shows the typing indicator.
func (c *Client) NotifyTyping(chatID int64) error {
	if _, err := c.bot.Request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)); err != nil {
		return &domain.DeliveryError{ChatID: chatID, Op: "chat action", Err: err}
	}
	return nil
}

// AnswerCallback acknowledges a button press, optionally with a toast text.
func (c *Client) AnswerCallback(id, text string) error {
	if utf8.RuneCountInString(text) > maxCallbackText {
		text = string([]rune(text)[:maxCallbackText-1]) + "…"
	}
	if _, err := c.bot.Request(tgbotapi.NewCallback(id, text)); err != nil {
		return &domain.DeliveryError{Op: "answer callback", Err: err}
	}
	return nil
}

// SetCommands registers the command list shown by Telegram clients.
func (c *Client) SetCommands() error {
	if _, err := c.bot.Request(tgbotapi.NewSetMyCommands(botCommands...)); err != nil {
		return &domain.DeliveryError{Op: "set commands", Err: err}
	}
	return nil
}
