package session

import (
	"encoding/json"
	"fmt"

	"github.com/toppo2000-ai/Taxi-Navigator-sub002/internal/models"
)

// sessionDocument - раскладка полей документа users/{uid} в хранилище.
type sessionDocument struct {
	Shift       *models.Shift                 `json:"currentShift,omitempty"`
	History     []models.SalesRecord          `json:"sales"`
	DayMetadata map[string]models.DayMetadata `json:"dayMetadata"`
	Break       models.BreakState             `json:"breakState"`
	Stats       models.MonthlyStats           `json:"monthlyStats"`
}

// ToDocument сериализует сессию в поля документа хранилища.
// Прогон через JSON дает одинаковое представление для Firestore и Postgres.
func (s *DriverSession) ToDocument() (map[string]interface{}, error) {
	doc := sessionDocument{
		Shift:       s.Shift,
		History:     s.History,
		DayMetadata: s.DayMetadata,
		Break:       s.Break,
		Stats:       s.Stats,
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("сериализация сессии %s: %w", s.UID, err)
	}
	var fields map[string]interface{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("десериализация полей сессии %s: %w", s.UID, err)
	}
	return fields, nil
}

// ApplySnapshot полностью замещает локальное состояние снимком из хранилища
// (last-writer-wins на уровне документа, не отдельных записей).
func (s *DriverSession) ApplySnapshot(fields map[string]interface{}) error {
	raw, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("снимок сессии %s: %w", s.UID, err)
	}
	var doc sessionDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("разбор снимка сессии %s: %w", s.UID, err)
	}

	s.Shift = doc.Shift
	s.History = doc.History
	s.Break = doc.Break
	s.Stats = doc.Stats
	s.Stats.Normalize()
	s.DayMetadata = doc.DayMetadata
	if s.DayMetadata == nil {
		s.DayMetadata = make(map[string]models.DayMetadata)
	}
	return nil
}
