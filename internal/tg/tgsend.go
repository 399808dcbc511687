package tg

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Spok95/school-dashboard/internal/observability"
)

// Notifier шлёт служебные уведомления в телеграм-чаты (учителя/завучи).
// Без токена уведомления просто выключены.
type Notifier struct {
	bot     *tgbotapi.BotAPI
	chatIDs []int64
}

// NewNotifier возвращает nil, nil при пустом токене.
func NewNotifier(token string, chatIDs []int64) (*Notifier, error) {
	if token == "" || len(chatIDs) == 0 {
		return nil, nil
	}
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return &Notifier{bot: bot, chatIDs: chatIDs}, nil
}

// Broadcast рассылает текст по всем чатам. Ошибки не фатальны: системные
// уходят в Sentry, остальные игнорируем.
func (n *Notifier) Broadcast(text string) {
	for _, chatID := range n.chatIDs {
		_, err := n.bot.Send(tgbotapi.NewMessage(chatID, text))
		if isSystemErr(err) {
			observability.CaptureErr(err)
		}
	}
}

// Считаем системными: 5xx, 429, timeout. 400-ки и типичные телеграм-валидации в Sentry не шлём.
func isSystemErr(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	if strings.Contains(s, "429") || strings.Contains(s, "502") || strings.Contains(s, "503") || strings.Contains(s, "timeout") {
		return true
	}
	return false
}
