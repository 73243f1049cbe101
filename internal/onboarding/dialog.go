// Package onboarding implements the setup wizard: language, then interests,
// then interval. Progress is kept in memory only; a restart forgets it.
package onboarding

import (
	"context"
	"sync"

	"github.com/ykvlv/etymology-bot/internal/domain"
)

// Step is the wizard position of one chat.
type Step string

const (
	StepNone              Step = "none"
	StepAwaitingLanguage  Step = "awaiting_language"
	StepAwaitingInterests Step = "awaiting_interests"
	StepAwaitingInterval  Step = "awaiting_interval"
)

// Outcome tells the caller how the input was handled.
type Outcome int

const (
	// OutcomeIdle: the chat is not in the wizard, input was not consumed.
	OutcomeIdle Outcome = iota
	// OutcomeIgnored: input did not match the step; nothing changed.
	OutcomeIgnored
	// OutcomeAdvanced: the value was stored and the wizard moved on.
	OutcomeAdvanced
	// OutcomeRejected: invalid value, step unchanged, caller should re-prompt.
	OutcomeRejected
	// OutcomeCompleted: the last step was stored and the wizard state cleared.
	OutcomeCompleted
)

// Result describes one handled input.
type Result struct {
	Outcome   Outcome
	Step      Step // step after handling
	Language  domain.Language
	Interests []string
	Interval  int
	Err       error // validation error for OutcomeRejected
}

// Writer persists profile fields.
type Writer interface {
	Merge(ctx context.Context, chatID int64, patch domain.Patch) error
}

// Dialog tracks the wizard step per chat. Safe for concurrent use; inputs of a
// single chat are expected to arrive in order.
type Dialog struct {
	repo  Writer
	mu    sync.RWMutex
	steps map[int64]Step
}

func NewDialog(repo Writer) *Dialog {
	return &Dialog{repo: repo, steps: make(map[int64]Step)}
}

// Begin starts (or restarts) the wizard at the language step.
func (d *Dialog) Begin(chatID int64) {
	d.Reenter(chatID, StepAwaitingLanguage)
}

// Reenter forces the wizard to step regardless of the current one.
// StepNone abandons the wizard.
func (d *Dialog) Reenter(chatID int64, step Step) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if step == StepNone {
		delete(d.steps, chatID)
		return
	}
	d.steps[chatID] = step
}

// Abandon drops any wizard progress for the chat.
func (d *Dialog) Abandon(chatID int64) {
	d.Reenter(chatID, StepNone)
}

// Step returns the current step of the chat.
func (d *Dialog) Step(chatID int64) Step {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if s, ok := d.steps[chatID]; ok {
		return s
	}
	return StepNone
}

// Handle feeds free text into the wizard. A non-nil error means the value was
// valid but could not be stored; the step is left unchanged so the user can
// retry.
func (d *Dialog) Handle(ctx context.Context, chatID int64, text string) (Result, error) {
	step := d.Step(chatID)

	switch step {
	case StepAwaitingLanguage:
		lang, err := domain.ParseLanguage(text)
		if err != nil {
			return Result{Outcome: OutcomeIgnored, Step: step}, nil
		}
		if err := d.repo.Merge(ctx, chatID, domain.LanguagePatch(lang)); err != nil {
			return Result{Step: step}, err
		}
		d.advance(chatID, step, StepAwaitingInterests)
		return Result{Outcome: OutcomeAdvanced, Step: StepAwaitingInterests, Language: lang}, nil

	case StepAwaitingInterests:
		interests := domain.ParseInterests(text)
		if err := d.repo.Merge(ctx, chatID, domain.InterestsPatch(interests)); err != nil {
			return Result{Step: step}, err
		}
		d.advance(chatID, step, StepAwaitingInterval)
		return Result{Outcome: OutcomeAdvanced, Step: StepAwaitingInterval, Interests: interests}, nil

	case StepAwaitingInterval:
		hours, err := domain.ParseInterval(text)
		if err != nil {
			return Result{Outcome: OutcomeRejected, Step: step, Err: err}, nil
		}
		if err := d.repo.Merge(ctx, chatID, domain.IntervalPatch(hours)); err != nil {
			return Result{Step: step}, err
		}
		d.advance(chatID, step, StepNone)
		return Result{Outcome: OutcomeCompleted, Step: StepNone, Interval: hours}, nil

	default:
		return Result{Outcome: OutcomeIdle, Step: StepNone}, nil
	}
}

// advance moves from one step to the next unless a re-entry happened meanwhile.
func (d *Dialog) advance(chatID int64, from, to Step) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.steps[chatID] != from {
		return
	}
	if to == StepNone {
		delete(d.steps, chatID)
		return
	}
	d.steps[chatID] = to
}
