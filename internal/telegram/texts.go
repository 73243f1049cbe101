package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/ykvlv/etymology-bot/internal/domain"
)

// Callback data of inline buttons.
const (
	cbGetEtymology    = "get_etymology"
	cbMoreEtymology   = "more_etymology"
	cbMainMenu        = "main_menu"
	cbSettingsMenu    = "settings_menu"
	cbChangeLanguage  = "change_language"
	cbChangeInterests = "change_interests"
	cbChangeInterval  = "change_interval"
	cbInfo            = "info"
)

// setupRequiredText is shown before a language is known, so it stays English.
const setupRequiredText = "Please setup the bot first with /start"

// texts is the UI copy of one language.
type texts struct {
	welcome         string
	interests       string // "%s" receives the interest examples
	interval        string
	setupComplete   string
	invalidInterval string
	errorText       string
	details         string
	mainMenu        string
	settings        string
	info            string
	more            string

	// button labels
	menuGet      string
	menuSettings string
	menuInfo     string
	setLanguage  string
	setInterests string
	setInterval  string
	settingsBack string
}

var copyByLanguage = map[domain.Language]texts{
	domain.LangKyrgyz: {
		welcome:         "Саламатсызбы! Этимология ботуна кош келиңиз! 🌟\nТилди тандаңыз:",
		interests:       "Кызыгуучу тармактарыңызды жазыңыз (үлгү: %s)",
		interval:        "Канча саатта бир этимология алгыңыз келет? (1-24 саат)",
		setupComplete:   "Жөндөө аяктады! Этимология алуу үчүн /etymology колдонуңуз",
		invalidInterval: "Сураныч, 1дөн 24кө чейинки сан жазыңыз",
		errorText:       "Ката кетти. Кайрадан аракет кылыңыз.",
		details:         "Толук маалымат",
		mainMenu:        "Башкы меню:",
		settings:        "Жөндөөлөр:",
		info: "🤖 Этимология бот\n\nБул бот сөздөрдүн келип чыгышын изилдейт жана кызыктуу маалыматтарды бөлүшөт.\n\n" +
			"📊 Командалар:\n/start - Баштоо\n/etymology - Этимология алуу\n/menu - Башкы меню\n/settings - Жөндөөлөр",
		more:         "Дагы 📚",
		menuGet:      "📚 Этимология алуу",
		menuSettings: "⚙️ Жөндөөлөр",
		menuInfo:     "ℹ️ Маалымат",
		setLanguage:  "🌐 Тил өзгөртүү",
		setInterests: "🎯 Кызыкчылыктар",
		setInterval:  "⏰ Интервал",
		settingsBack: "🔙 Артка",
	},
	domain.LangRussian: {
		welcome:         "Привет! Добро пожаловать в бот этимологии! 🌟\nВыберите язык:",
		interests:       "Напишите ваши сферы интересов (например: %s)",
		interval:        "Как часто отправлять этимологии? (1-24 часа)",
		setupComplete:   "Настройка завершена! Используйте /etymology для получения этимологии",
		invalidInterval: "Пожалуйста, введите число от 1 до 24",
		errorText:       "Произошла ошибка. Попробуйте еще раз.",
		details:         "Подробности",
		mainMenu:        "Главное меню:",
		settings:        "Настройки:",
		info: "🤖 Бот этимологии\n\nЭтот бот исследует происхождение слов и делится интересными фактами.\n\n" +
			"📊 Команды:\n/start - Начать\n/etymology - Получить этимологию\n/menu - Главное меню\n/settings - Настройки",
		more:         "Ещё 📚",
		menuGet:      "📚 Получить этимологию",
		menuSettings: "⚙️ Настройки",
		menuInfo:     "ℹ️ Информация",
		setLanguage:  "🌐 Изменить язык",
		setInterests: "🎯 Интересы",
		setInterval:  "⏰ Интервал",
		settingsBack: "🔙 Назад",
	},
	domain.LangEnglish: {
		welcome:         "Hello! Welcome to the Etymology Bot! 🌟\nSelect your language:",
		interests:       "Write your spheres of interest (example: %s)",
		interval:        "How often should I send etymologies? (1-24 hours)",
		setupComplete:   "Setup complete! Use /etymology to get an etymology",
		invalidInterval: "Please enter a number between 1 and 24",
		errorText:       "An error occurred. Please try again.",
		details:         "Details",
		mainMenu:        "Main menu:",
		settings:        "Settings:",
		info: "🤖 Etymology Bot\n\nThis bot explores word origins and shares fascinating etymological facts.\n\n" +
			"📊 Commands:\n/start - Get started\n/etymology - Get etymology\n/menu - Main menu\n/settings - Settings",
		more:         "More 📚",
		menuGet:      "📚 Get Etymology",
		menuSettings: "⚙️ Settings",
		menuInfo:     "ℹ️ Info",
		setLanguage:  "🌐 Change Language",
		setInterests: "🎯 Interests",
		setInterval:  "⏰ Interval",
		settingsBack: "🔙 Back",
	},
}

// textsFor falls back to English for unknown or unset languages.
func textsFor(lang domain.Language) texts {
	if t, ok := copyByLanguage[lang]; ok {
		return t
	}
	return copyByLanguage[domain.LangEnglish]
}

// botCommands is registered with setMyCommands on start.
var botCommands = []tgbotapi.BotCommand{
	{Command: "start", Description: "Start the bot and set preferences"},
	{Command: "etymology", Description: "Get a random etymology"},
	{Command: "menu", Description: "Open main menu"},
	{Command: "settings", Description: "Change bot settings"},
	{Command: "help", Description: "About this bot"},
}

// languageKeyboard is a one-button-per-row reply keyboard of language labels.
func languageKeyboard() tgbotapi.ReplyKeyboardMarkup {
	rows := make([][]tgbotapi.KeyboardButton, 0, len(domain.Languages))
	for _, l := range domain.Languages {
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(l.Label())))
	}
	kb := tgbotapi.NewReplyKeyboard(rows...)
	kb.ResizeKeyboard = true
	return kb
}

func moreKeyboard(lang domain.Language) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(textsFor(lang).more, cbMoreEtymology),
		),
	)
}

func mainMenuKeyboard(lang domain.Language) tgbotapi.InlineKeyboardMarkup {
	t := textsFor(lang)
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(t.menuGet, cbGetEtymology)),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(t.menuSettings, cbSettingsMenu)),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(t.menuInfo, cbInfo)),
	)
}

func settingsKeyboard(lang domain.Language) tgbotapi.InlineKeyboardMarkup {
	t := textsFor(lang)
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(t.setLanguage, cbChangeLanguage)),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(t.setInterests, cbChangeInterests)),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(t.setInterval, cbChangeInterval)),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(t.settingsBack, cbMainMenu)),
	)
}
