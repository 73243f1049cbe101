package domain

import (
	"strings"
	"time"
)

// Interval bounds in hours.
const (
	MinIntervalHours = 1
	MaxIntervalHours = 24
)

// Language is a supported display language.
type Language string

const (
	LangKyrgyz  Language = "kyrgyz"
	LangRussian Language = "russian"
	LangEnglish Language = "english"
)

// Languages lists supported languages in menu order.
var Languages = []Language{LangKyrgyz, LangRussian, LangEnglish}

var languageLabels = map[Language]string{
	LangKyrgyz:  "🇰🇬 Кыргызча",
	LangRussian: "🇷🇺 Русский",
	LangEnglish: "🇬🇧 English",
}

// Valid reports whether l is one of the supported languages.
func (l Language) Valid() bool {
	_, ok := languageLabels[l]
	return ok
}

// Label returns the keyboard label of the language.
func (l Language) Label() string {
	return languageLabels[l]
}

// ParseLanguage accepts a keyboard label ("🇬🇧 English") or a bare code ("english").
func ParseLanguage(s string) (Language, error) {
	s = strings.TrimSpace(s)
	for lang, label := range languageLabels {
		if s == label || strings.EqualFold(s, string(lang)) {
			return lang, nil
		}
	}
	return "", &InputError{Field: "language", Input: s, Err: ErrUnknownLanguage}
}

// Profile is a subscriber's settings and delivery state.
type Profile struct {
	ChatID        int64
	Language      Language   // empty until chosen
	Interests     []string   // meaningful only when HasInterests
	HasInterests  bool       // interests step completed, list may be empty
	IntervalHours int        // 0 until chosen
	LastSentAt    *time.Time // UTC, nil = never sent
	UpdatedAt     time.Time  // UTC, audit only
}

// Eligible reports whether the profile can receive scheduled deliveries.
func (p Profile) Eligible() bool {
	return p.Language.Valid() && p.HasInterests && ValidInterval(p.IntervalHours)
}

// Ready reports whether content can be produced for the profile at all.
func (p Profile) Ready() bool {
	return p.Language.Valid() && p.HasInterests
}

// Patch is a partial profile update. Nil fields are left untouched.
type Patch struct {
	Language      *Language
	Interests     *[]string
	IntervalHours *int
	LastSentAt    *time.Time
}

// Empty reports whether the patch changes nothing but updated_at.
func (p Patch) Empty() bool {
	return p.Language == nil && p.Interests == nil && p.IntervalHours == nil && p.LastSentAt == nil
}

// Apply merges the patch into p. LastSentAt never moves backwards.
func (p *Profile) Apply(patch Patch, now time.Time) {
	if patch.Language != nil {
		p.Language = *patch.Language
	}
	if patch.Interests != nil {
		p.Interests = append([]string{}, (*patch.Interests)...)
		p.HasInterests = true
	}
	if patch.IntervalHours != nil {
		p.IntervalHours = *patch.IntervalHours
	}
	if patch.LastSentAt != nil {
		t := patch.LastSentAt.UTC()
		if p.LastSentAt == nil || t.After(*p.LastSentAt) {
			p.LastSentAt = &t
		}
	}
	p.UpdatedAt = now.UTC()
}

// LanguagePatch, InterestsPatch, IntervalPatch and SentPatch build single-field patches.
func LanguagePatch(l Language) Patch { return Patch{Language: &l} }

func InterestsPatch(interests []string) Patch {
	if interests == nil {
		interests = []string{}
	}
	return Patch{Interests: &interests}
}

func IntervalPatch(hours int) Patch { return Patch{IntervalHours: &hours} }

func SentPatch(at time.Time) Patch {
	at = at.UTC()
	return Patch{LastSentAt: &at}
}
