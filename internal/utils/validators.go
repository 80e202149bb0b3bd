package utils

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/toppo2000-ai/Taxi-Navigator-sub002/internal/constants"
	"github.com/toppo2000-ai/Taxi-Navigator-sub002/internal/models"
)

var nonNumericRe = regexp.MustCompile(`[^\d-]`)

// SanitizeAmount выдергивает целое число из «грязного» поля таксометра:
// убирает иероглиф иены, запятые, пробелы и прочий мусор.
// Неразборчивое значение дает 0, а не ошибку (испорченная ячейка не должна
// ронять всю строку импорта).
func SanitizeAmount(raw string) int {
	cleaned := nonNumericRe.ReplaceAllString(strings.TrimSpace(raw), "")
	if cleaned == "" || cleaned == "-" {
		return 0
	}
	n, err := strconv.Atoi(cleaned)
	if err != nil {
		return 0
	}
	return n
}

// ValidateRecord проверяет инварианты записи о поездке перед сохранением.
func ValidateRecord(rec models.SalesRecord) error {
	if rec.ID == "" {
		return fmt.Errorf("запись без идентификатора")
	}
	if rec.Timestamp.IsZero() {
		return fmt.Errorf("запись без отметки времени")
	}
	if rec.Amount < 0 || rec.Toll < 0 {
		return fmt.Errorf("отрицательная сумма: amount=%d toll=%d", rec.Amount, rec.Toll)
	}
	if !constants.IsValidPaymentMethod(rec.PaymentMethod) {
		return fmt.Errorf("неизвестный способ оплаты: %s", rec.PaymentMethod)
	}
	if !constants.IsValidRideType(rec.RideType) {
		return fmt.Errorf("неизвестный тип посадки: %s", rec.RideType)
	}
	if rec.NonCashAmount < 0 || rec.NonCashAmount > rec.Amount+rec.Toll {
		return fmt.Errorf("безналичная часть %d вне диапазона 0..%d", rec.NonCashAmount, rec.Amount+rec.Toll)
	}
	if rec.PaymentMethod == constants.PAYMENT_CASH && rec.NonCashAmount != 0 {
		return fmt.Errorf("безналичная часть при оплате наличными должна быть 0")
	}
	if rec.PassengersMale < 0 || rec.PassengersFemale < 0 {
		return fmt.Errorf("отрицательное число пассажиров")
	}
	return nil
}
