package telegram

import (
	"context"
	"errors"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/ykvlv/etymology-bot/internal/delivery"
	"github.com/ykvlv/etymology-bot/internal/domain"
	"github.com/ykvlv/etymology-bot/internal/onboarding"
)

// ProfileReader loads a profile; domain.ErrNotFound when absent.
type ProfileReader interface {
	GetUser(ctx context.Context, chatID int64) (*domain.Profile, error)
}

// Deliverer runs on-demand deliveries. *delivery.Service implements it.
type Deliverer interface {
	Deliver(ctx context.Context, req delivery.Request) error
}

// Router wires Telegram updates to handlers. Wizard progress lives in the
// onboarding dialog.
type Router struct {
	client *Client
	log    *zap.Logger
	repo   ProfileReader
	dialog *onboarding.Dialog
	svc    Deliverer
}

// NewRouter creates a new Telegram router.
func NewRouter(client *Client, log *zap.Logger, repo ProfileReader, dialog *onboarding.Dialog, svc Deliverer) *Router {
	return &Router{
		client: client,
		log:    log,
		repo:   repo,
		dialog: dialog,
		svc:    svc,
	}
}

// HandleUpdate routes a single update to appropriate handler. A panicking
// handler is logged and never takes the update loop down.
func (r *Router) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error("update handler panicked", zap.Int("update_id", upd.UpdateID), zap.Any("panic", rec))
		}
	}()

	// Text messages
	if upd.Message != nil {
		msg := upd.Message
		chatID := msg.Chat.ID

		if msg.IsCommand() {
			switch msg.Command() {
			case "start", "settings":
				r.handleStart(chatID)
			case "menu":
				r.handleMenu(ctx, chatID)
			case "etymology":
				r.handleEtymology(ctx, chatID)
			case "help":
				r.handleHelp(ctx, chatID)
			default:
				// Unknown command: ignore
			}
			return
		}
		if msg.Text == "" {
			// stickers, photos and other non-text messages
			return
		}
		r.handleText(ctx, chatID, strings.TrimSpace(msg.Text))
		return
	}

	// Callback queries (inline buttons)
	if upd.CallbackQuery != nil {
		cb := upd.CallbackQuery
		if cb.Message == nil {
			_ = r.client.AnswerCallback(cb.ID, "")
			return
		}
		chatID := cb.Message.Chat.ID
		msgID := cb.Message.MessageID

		switch cb.Data {
		case cbGetEtymology:
			r.handleEtymologyCallback(ctx, chatID, 0, cb.ID)
		case cbMoreEtymology:
			r.handleEtymologyCallback(ctx, chatID, msgID, cb.ID)
		case cbMainMenu:
			r.showMenu(ctx, chatID, msgID, cb.ID, menuMain)
		case cbSettingsMenu:
			r.showMenu(ctx, chatID, msgID, cb.ID, menuSettings)
		case cbInfo:
			r.showMenu(ctx, chatID, msgID, cb.ID, menuInfo)
		case cbChangeLanguage:
			r.handleChangeLanguage(chatID, cb.ID)
		case cbChangeInterests:
			r.handleReenter(ctx, chatID, msgID, cb.ID, onboarding.StepAwaitingInterests)
		case cbChangeInterval:
			r.handleReenter(ctx, chatID, msgID, cb.ID, onboarding.StepAwaitingInterval)
		default:
			// Unknown callback: acknowledge silently
			_ = r.client.AnswerCallback(cb.ID, "")
		}
	}
}

// profile returns the stored profile or nil when the chat has none.
func (r *Router) profile(ctx context.Context, chatID int64) *domain.Profile {
	p, err := r.repo.GetUser(ctx, chatID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			r.log.Error("load profile failed", zap.Int64("chat_id", chatID), zap.Error(err))
		}
		return nil
	}
	return p
}

// language returns the chat's language, English when unknown.
func (r *Router) language(ctx context.Context, chatID int64) domain.Language {
	if p := r.profile(ctx, chatID); p != nil && p.Language.Valid() {
		return p.Language
	}
	return domain.LangEnglish
}

// reply sends a message and logs transport failures.
func (r *Router) reply(chatID int64, text string, markup any) {
	if err := r.client.SendText(chatID, text, markup); err != nil {
		r.log.Warn("reply failed", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (r *Router) edit(chatID int64, msgID int, text string, markup *tgbotapi.InlineKeyboardMarkup) {
	if err := r.client.EditText(chatID, msgID, text, markup); err != nil {
		r.log.Warn("edit failed", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (r *Router) answer(cbID, text string) {
	if err := r.client.AnswerCallback(cbID, text); err != nil {
		r.log.Debug("answer callback failed", zap.Error(err))
	}
}
