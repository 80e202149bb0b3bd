package telegram_api

import (
	"fmt"
	"log"

	tgbotapi "github.com/OvyFlash/telegram-bot-api"

	"github.com/toppo2000-ai/Taxi-Navigator-sub002/internal/models"
	"github.com/toppo2000-ai/Taxi-Navigator-sub002/internal/utils"
)

// Notifier - обертка над Telegram Bot API для уведомлений водителя.
// Необязательная подсистема: при отсутствии токена все методы - no-op.
type Notifier struct {
	api *tgbotapi.BotAPI
}

// NewNotifier инициализирует Telegram бота. Пустой токен дает nil-нотификатор,
// с которым безопасно работать.
func NewNotifier(token string, debug bool) (*Notifier, error) {
	if token == "" {
		return nil, nil
	}

	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("ошибка инициализации Telegram Bot API: %w", err)
	}
	api.Debug = debug
	log.Printf("NewNotifier: авторизован как аккаунт %s.", api.Self.UserName)

	return &Notifier{api: api}, nil
}

// SendShiftSummary отправляет водителю итог закрытой смены.
// Ошибки отправки логируются и не влияют на закрытие смены.
func (n *Notifier) SendShiftSummary(chatID int64, summary models.ShiftSummary) {
	if n == nil || chatID == 0 {
		return
	}

	text := fmt.Sprintf(
		"Смена за %s закрыта.\nПоездок: %d\nВыручка: %s",
		summary.BusinessDate, summary.RideCount, utils.FormatYen(summary.TotalSales),
	)
	if summary.DailyGoal > 0 {
		text += fmt.Sprintf("\nЦель дня: %s", utils.FormatYen(summary.DailyGoal))
	}
	if summary.RestMinutes > 0 {
		text += fmt.Sprintf("\nОтдых: %d мин", summary.RestMinutes)
	}

	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := n.api.Send(msg); err != nil {
		log.Printf("SendShiftSummary: не удалось отправить сообщение в чат %d: %v", chatID, err)
	}
}
