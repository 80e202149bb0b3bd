package models

import "github.com/toppo2000-ai/Taxi-Navigator-sub002/internal/constants"

// MonthlyStats - настройки водителя уровня аккаунта.
// ShimebiDay: день закрытия расчетного периода, 1..28, либо 0 = конец месяца.
// BusinessStartHour: час, с которого начинается деловая дата (0..23).
type MonthlyStats struct {
	ShimebiDay        int      `json:"shimebiDay"`
	BusinessStartHour int      `json:"businessStartHour"`
	MonthlyGoal       int      `json:"monthlyGoal"`
	DefaultDailyGoal  int      `json:"defaultDailyGoal"`
	PaymentMethods    []string `json:"paymentMethods"` // Разрешенные способы оплаты, в порядке отображения
	RideTypes         []string `json:"rideTypes"`      // Разрешенные типы посадки
	ShowPassengers    bool     `json:"showPassengers"`
	ShowLocations     bool     `json:"showLocations"`
	TelegramChatID    int64    `json:"telegramChatId,omitempty"` // Чат для уведомлений о закрытии смены
}

// DefaultMonthlyStats возвращает настройки по умолчанию для нового водителя.
func DefaultMonthlyStats() MonthlyStats {
	return MonthlyStats{
		ShimebiDay:        constants.DEFAULT_SHIMEBI_DAY,
		BusinessStartHour: constants.DEFAULT_BUSINESS_START_HOUR,
		MonthlyGoal:       0,
		DefaultDailyGoal:  0,
		PaymentMethods:    append([]string{}, constants.DefaultPaymentMethods...),
		RideTypes:         append([]string{}, constants.DefaultRideTypes...),
		ShowPassengers:    true,
		ShowLocations:     true,
	}
}

// Normalize приводит некорректные значения настроек к допустимым.
func (s *MonthlyStats) Normalize() {
	if s.ShimebiDay < constants.MIN_SHIMEBI_DAY || s.ShimebiDay > constants.MAX_SHIMEBI_DAY {
		s.ShimebiDay = constants.DEFAULT_SHIMEBI_DAY
	}
	if s.BusinessStartHour < 0 || s.BusinessStartHour > 23 {
		s.BusinessStartHour = constants.DEFAULT_BUSINESS_START_HOUR
	}
	if len(s.PaymentMethods) == 0 {
		s.PaymentMethods = append([]string{}, constants.DefaultPaymentMethods...)
	}
	if len(s.RideTypes) == 0 {
		s.RideTypes = append([]string{}, constants.DefaultRideTypes...)
	}
}
