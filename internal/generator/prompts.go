package generator

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/ykvlv/etymology-bot/assets"
	"github.com/ykvlv/etymology-bot/internal/domain"
)

var instructions = map[domain.Language]string{
	domain.LangEnglish: "Create a detailed scientific etymology with phonetic transformations in English",
	domain.LangRussian: "Создай детальную научную этимологию с фонетическими трансформациями на русском",
	domain.LangKyrgyz:  "Кыргыз тилинде толук илимий этимология жана үн өзгөрүүлөрү менен түзүңүз",
}

var languageNames = map[domain.Language]string{
	domain.LangEnglish: "English",
	domain.LangRussian: "Russian",
	domain.LangKyrgyz:  "Kyrgyz",
}

var interestExamples = map[domain.Language]string{
	domain.LangEnglish: "technology, cooking, medicine, music, sports, history, mythology, astronomy, literature, architecture",
	domain.LangRussian: "технологии, кулинария, медицина, музыка, спорт, история, мифология, астрономия, литература, архитектура",
	domain.LangKyrgyz:  "технология, тамак-аш, медицина, музыка, спорт, тарых, мифология, астрономия, адабият, архитектура",
}

// InterestExamples returns sample topics shown when asking for interests.
func InterestExamples(lang domain.Language) string {
	if s, ok := interestExamples[lang]; ok {
		return s
	}
	return interestExamples[domain.LangEnglish]
}

// variantParams holds the per-variant request shape.
type variantParams struct {
	template    string
	system      string
	temperature float64
	maxTokens   int64
}

var variants = map[domain.Variant]variantParams{
	domain.VariantStandard: {
		template: "standard.tmpl",
		system: "You are a historical linguist specializing in comprehensive etymological analysis. " +
			"Provide detailed scientific explanations with visual trees, phonetic laws, morphological changes, " +
			"and cultural transmission context. Be thorough and precise.",
		temperature: 0.7,
		maxTokens:   800,
	},
	domain.VariantEnhanced: {
		template: "enhanced.tmpl",
		system: "You are a specialist in Central Asian historical linguistics with expertise in phonetic laws, " +
			"morphological reconstruction, and contact linguistics. Provide detailed scientific analysis of word " +
			"transformations including IPA transcriptions, proto-form reconstructions, regular sound changes, and " +
			"precise semantic development. Focus on Turkic-Persian-Arabic-Russian language contact.",
		temperature: 0.6,
		maxTokens:   1000,
	},
}

type promptData struct {
	Instruction  string
	LanguageName string
	Interests    []string
}

func parsePrompts() (*template.Template, error) {
	return template.New("prompts").
		Funcs(template.FuncMap{"join": strings.Join}).
		ParseFS(assets.PromptFS, assets.PromptPattern)
}

// renderPrompt builds the user prompt. Unknown languages fall back to English.
func renderPrompt(t *template.Template, lang domain.Language, interests []string, v domain.Variant) (string, error) {
	params, ok := variants[v]
	if !ok {
		return "", fmt.Errorf("unknown variant %q", v)
	}
	if !lang.Valid() {
		lang = domain.LangEnglish
	}
	var buf bytes.Buffer
	err := t.ExecuteTemplate(&buf, params.template, promptData{
		Instruction:  instructions[lang],
		LanguageName: languageNames[lang],
		Interests:    interests,
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
