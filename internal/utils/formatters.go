package utils

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// GenerateID возвращает новый уникальный идентификатор записи.
func GenerateID() string {
	return uuid.New().String()
}

// ToCommaSeparated форматирует неотрицательную сумму в иенах с разделителями
// тысяч: 12345 -> "12,345".
func ToCommaSeparated(amount int) string {
	s := strconv.Itoa(amount)
	if amount < 0 {
		return s
	}
	var parts []string
	for i := len(s); i > 0; i -= 3 {
		start := i - 3
		if start < 0 {
			start = 0
		}
		parts = append([]string{s[start:i]}, parts...)
	}
	return strings.Join(parts, ",")
}

// FromCommaSeparated разбирает сумму, отформатированную ToCommaSeparated.
// Обратная операция: FromCommaSeparated(ToCommaSeparated(n)) == n.
func FromCommaSeparated(s string) (int, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if cleaned == "" {
		return 0, fmt.Errorf("пустая строка суммы")
	}
	n, err := strconv.Atoi(cleaned)
	if err != nil {
		return 0, fmt.Errorf("не удалось разобрать сумму '%s': %w", s, err)
	}
	return n, nil
}

// FormatYen возвращает сумму для отображения: "¥12,345".
func FormatYen(amount int) string {
	return "¥" + ToCommaSeparated(amount)
}
