package telegram

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/ykvlv/etymology-bot/internal/delivery"
	"github.com/ykvlv/etymology-bot/internal/domain"
	"github.com/ykvlv/etymology-bot/internal/generator"
	"github.com/ykvlv/etymology-bot/internal/onboarding"
)

type menuKind int

const (
	menuMain menuKind = iota
	menuSettings
	menuInfo
)

// --- Core commands ---

// handleStart begins (or restarts) the setup wizard.
func (r *Router) handleStart(chatID int64) {
	r.dialog.Begin(chatID)
	r.reply(chatID, textsFor(domain.LangEnglish).welcome, languageKeyboard())
}

func (r *Router) handleMenu(ctx context.Context, chatID int64) {
	p := r.profile(ctx, chatID)
	if p == nil || !p.Language.Valid() {
		r.reply(chatID, setupRequiredText, nil)
		return
	}
	r.reply(chatID, textsFor(p.Language).mainMenu, mainMenuKeyboard(p.Language))
}

func (r *Router) handleHelp(ctx context.Context, chatID int64) {
	p := r.profile(ctx, chatID)
	if p == nil || !p.Language.Valid() {
		r.reply(chatID, textsFor(domain.LangEnglish).info, nil)
		return
	}
	r.reply(chatID, textsFor(p.Language).info, mainMenuKeyboard(p.Language))
}

// handleEtymology delivers on demand and reports failures with their cause.
func (r *Router) handleEtymology(ctx context.Context, chatID int64) {
	p := r.profile(ctx, chatID)
	if p == nil || !p.Eligible() {
		r.reply(chatID, setupRequiredText, nil)
		return
	}
	err := r.svc.Deliver(ctx, delivery.Request{Profile: *p, Trigger: delivery.TriggerOnDemand})
	if err == nil {
		return
	}
	r.log.Warn("on-demand delivery failed", zap.Int64("chat_id", chatID), zap.Error(err))
	var dErr *domain.DeliveryError
	if errors.As(err, &dErr) {
		// no acknowledgement channel for commands
		return
	}
	t := textsFor(p.Language)
	r.reply(chatID, fmt.Sprintf("%s\n\n%s: %s", t.errorText, t.details, cause(err)), nil)
}

// --- Wizard input ---

func (r *Router) handleText(ctx context.Context, chatID int64, text string) {
	res, err := r.dialog.Handle(ctx, chatID, text)
	if err != nil {
		r.log.Error("save setup step failed",
			zap.Int64("chat_id", chatID),
			zap.String("step", string(r.dialog.Step(chatID))),
			zap.Error(err),
		)
		r.reply(chatID, textsFor(r.language(ctx, chatID)).errorText, nil)
		return
	}

	switch res.Outcome {
	case onboarding.OutcomeAdvanced:
		lang := res.Language
		if !lang.Valid() {
			lang = r.language(ctx, chatID)
		}
		r.promptStep(chatID, res.Step, lang)
	case onboarding.OutcomeRejected:
		r.reply(chatID, textsFor(r.language(ctx, chatID)).invalidInterval, nil)
	case onboarding.OutcomeCompleted:
		lang := r.language(ctx, chatID)
		r.reply(chatID, textsFor(lang).setupComplete, mainMenuKeyboard(lang))
	default:
		// Ignored or not in the wizard
	}
}

// promptStep asks for the input of step in a new message.
func (r *Router) promptStep(chatID int64, step onboarding.Step, lang domain.Language) {
	t := textsFor(lang)
	switch step {
	case onboarding.StepAwaitingInterests:
		r.reply(chatID, fmt.Sprintf(t.interests, generator.InterestExamples(lang)), tgbotapi.NewRemoveKeyboard(true))
	case onboarding.StepAwaitingInterval:
		r.reply(chatID, t.interval, nil)
	}
}

// --- Callbacks ---

// handleEtymologyCallback delivers on demand; editID != 0 replaces that message.
func (r *Router) handleEtymologyCallback(ctx context.Context, chatID int64, editID int, cbID string) {
	p := r.profile(ctx, chatID)
	if p == nil || !p.Eligible() {
		r.answer(cbID, setupRequiredText)
		return
	}
	err := r.svc.Deliver(ctx, delivery.Request{
		Profile:       *p,
		Trigger:       delivery.TriggerOnDemand,
		EditMessageID: editID,
	})
	if err != nil {
		r.log.Warn("on-demand delivery failed", zap.Int64("chat_id", chatID), zap.Error(err))
		r.answer(cbID, fmt.Sprintf("%s: %s", textsFor(p.Language).errorText, cause(err)))
		return
	}
	r.answer(cbID, "")
}

func (r *Router) showMenu(ctx context.Context, chatID int64, msgID int, cbID string, kind menuKind) {
	p := r.profile(ctx, chatID)
	if p == nil || !p.Language.Valid() {
		r.answer(cbID, setupRequiredText)
		return
	}
	t := textsFor(p.Language)
	switch kind {
	case menuSettings:
		kb := settingsKeyboard(p.Language)
		r.edit(chatID, msgID, t.settings, &kb)
	case menuInfo:
		kb := mainMenuKeyboard(p.Language)
		r.edit(chatID, msgID, t.info, &kb)
	default:
		kb := mainMenuKeyboard(p.Language)
		r.edit(chatID, msgID, t.mainMenu, &kb)
	}
	r.answer(cbID, "")
}

// handleChangeLanguage restarts at the language step. Reply keyboards cannot
// be attached by editing, so the prompt is a new message.
func (r *Router) handleChangeLanguage(chatID int64, cbID string) {
	r.dialog.Begin(chatID)
	r.reply(chatID, textsFor(domain.LangEnglish).welcome, languageKeyboard())
	r.answer(cbID, "")
}

// handleReenter jumps into the wizard at step, keeping the other fields.
func (r *Router) handleReenter(ctx context.Context, chatID int64, msgID int, cbID string, step onboarding.Step) {
	p := r.profile(ctx, chatID)
	if p == nil || !p.Language.Valid() {
		r.answer(cbID, setupRequiredText)
		return
	}
	r.dialog.Reenter(chatID, step)

	t := textsFor(p.Language)
	text := t.interval
	if step == onboarding.StepAwaitingInterests {
		text = fmt.Sprintf(t.interests, generator.InterestExamples(p.Language))
	}
	r.edit(chatID, msgID, text, nil)
	r.answer(cbID, "")
}

// cause extracts the user-facing reason of a failed delivery.
func cause(err error) string {
	var gErr *domain.GenerationError
	if errors.As(err, &gErr) {
		return gErr.Cause()
	}
	return err.Error()
}
