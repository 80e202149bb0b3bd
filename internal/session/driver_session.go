package session

import (
	"fmt"
	"log"
	"time"

	"github.com/toppo2000-ai/Taxi-Navigator-sub002/internal/calendar"
	"github.com/toppo2000-ai/Taxi-Navigator-sub002/internal/models"
	"github.com/toppo2000-ai/Taxi-Navigator-sub002/internal/reconcile"
	"github.com/toppo2000-ai/Taxi-Navigator-sub002/internal/utils"
)

// DriverSession - полное состояние одного водителя, явно передаваемое во все
// операции ядра (глобального состояния нет). Разделы: открытая смена (Shift,
// может отсутствовать) и история (History). Любая запись присутствует не
// более чем в одном разделе; принадлежность пересчитывается пакетом
// reconcile при каждой мутации.
type DriverSession struct {
	UID         string
	Shift       *models.Shift
	History     []models.SalesRecord
	DayMetadata map[string]models.DayMetadata
	Break       models.BreakState
	Stats       models.MonthlyStats
}

// NewDriverSession создает пустую сессию с настройками по умолчанию.
func NewDriverSession(uid string) *DriverSession {
	return &DriverSession{
		UID:         uid,
		DayMetadata: make(map[string]models.DayMetadata),
		Stats:       models.DefaultMonthlyStats(),
	}
}

// StartHour возвращает час начала деловых суток из настроек.
func (s *DriverSession) StartHour() int {
	return s.Stats.BusinessStartHour
}

// --- RecordStore ---

// AllRecords возвращает объединение записей смены и истории.
func (s *DriverSession) AllRecords() []models.SalesRecord {
	var all []models.SalesRecord
	if s.Shift != nil {
		all = append(all, s.Shift.Records...)
	}
	all = append(all, s.History...)
	return all
}

// RecordsInBusinessDate возвращает записи, чья деловая дата равна date.
func (s *DriverSession) RecordsInBusinessDate(date string) []models.SalesRecord {
	var out []models.SalesRecord
	for _, rec := range s.AllRecords() {
		if calendar.BusinessDate(rec.Timestamp, s.StartHour()) == date {
			out = append(out, rec)
		}
	}
	return out
}

// RecordsInPeriod возвращает записи, чья деловая дата попадает в диапазон
// [start..end] включительно. Сравнение строковое: формат YYYY/MM/DD
// упорядочен лексикографически.
func (s *DriverSession) RecordsInPeriod(start, end time.Time) []models.SalesRecord {
	startDate := calendar.BusinessDate(start, s.StartHour())
	endDate := calendar.BusinessDate(end, s.StartHour())

	var out []models.SalesRecord
	for _, rec := range s.AllRecords() {
		d := calendar.BusinessDate(rec.Timestamp, s.StartHour())
		if d >= startDate && d <= endDate {
			out = append(out, rec)
		}
	}
	reconcile.SortByTimestamp(out)
	return out
}

// RecordsInBillingPeriod возвращает записи расчетного периода [start..end]
// с учетом переопределения расчетного месяца в DayMetadata: дата с
// BillingMonth, равным месяцу периода, включается даже вне диапазона,
// дата с другим BillingMonth исключается. Месяц периода - месяц его
// конечной даты.
func (s *DriverSession) RecordsInBillingPeriod(start, end time.Time) []models.SalesRecord {
	label := end.Format("2006/01")
	startDate := calendar.BusinessDate(start, s.StartHour())
	endDate := calendar.BusinessDate(end, s.StartHour())

	var out []models.SalesRecord
	for _, rec := range s.AllRecords() {
		d := calendar.BusinessDate(rec.Timestamp, s.StartHour())
		if month := s.DayMetadata[d].BillingMonth; month != "" {
			if month == label {
				out = append(out, rec)
			}
			continue
		}
		if d >= startDate && d <= endDate {
			out = append(out, rec)
		}
	}
	reconcile.SortByTimestamp(out)
	return out
}

// SaveRecord сохраняет запись (вставка либо полная замена по ID), прогоняя ее
// через reconcile: при правке даты/времени через границу смены запись
// молча переезжает между разделами.
func (s *DriverSession) SaveRecord(rec models.SalesRecord) error {
	if rec.ID == "" {
		rec.ID = utils.GenerateID()
	}
	if err := utils.ValidateRecord(rec); err != nil {
		return fmt.Errorf("некорректная запись: %w", err)
	}

	shiftRecords, history := reconcile.Place(rec, s.Shift, s.History, s.StartHour())
	if s.Shift != nil {
		s.Shift.Records = shiftRecords
	}
	s.History = history
	return nil
}

// DeleteRecord удаляет запись по ID из любого раздела. Идемпотентна.
func (s *DriverSession) DeleteRecord(id string) {
	shiftRecords, history := reconcile.Remove(id, s.Shift, s.History)
	if s.Shift != nil {
		s.Shift.Records = shiftRecords
	}
	s.History = history
}

// --- ShiftLifecycle ---

// StartShift открывает смену. Повторный вызов при открытой смене - молчаливый
// no-op (поведение исходной системы). Записи истории за сегодняшнюю деловую
// дату втягиваются в новую смену: водитель, отметивший утренние поездки до
// "официального" старта, не теряет непрерывность. StartTime смены - время
// самой ранней такой записи, либо now. Накопленные за дату минуты отдыха
// восстанавливаются из DayMetadata.
func (s *DriverSession) StartShift(dailyGoal int, plannedHours float64, now time.Time) {
	if s.Shift != nil {
		log.Printf("StartShift: смена уже открыта для водителя %s, запрос проигнорирован.", s.UID)
		return
	}

	today := calendar.BusinessDate(now, s.StartHour())

	var seeded, remaining []models.SalesRecord
	for _, rec := range s.History {
		if calendar.BusinessDate(rec.Timestamp, s.StartHour()) == today {
			seeded = append(seeded, rec)
		} else {
			remaining = append(remaining, rec)
		}
	}
	reconcile.SortByTimestamp(seeded)

	startTime := now
	if len(seeded) > 0 {
		startTime = seeded[0].Timestamp
	}

	restMinutes := 0
	if meta, ok := s.DayMetadata[today]; ok {
		restMinutes = meta.RestMinutes
	}

	s.Shift = &models.Shift{
		ID:               utils.GenerateID(),
		StartTime:        startTime,
		DailyGoal:        dailyGoal,
		PlannedHours:     plannedHours,
		TotalRestMinutes: restMinutes,
		Records:          seeded,
	}
	s.History = remaining
	s.Break = models.BreakState{}
	log.Printf("StartShift: открыта смена %s за %s, втянуто записей из истории: %d.", s.Shift.ID, today, len(seeded))
}

// FinalizeShift закрывает смену: записи сливаются в историю с сортировкой по
// времени, DayMetadata деловой даты обновляется (минуты отдыха, памятка
// сохраняется), перерыв сбрасывается. Возвращает итоговую сводку для
// трансляции. Ошибка только при отсутствии открытой смены.
func (s *DriverSession) FinalizeShift(now time.Time) (models.ShiftSummary, error) {
	if s.Shift == nil {
		return models.ShiftSummary{}, fmt.Errorf("нет открытой смены")
	}

	// Незакрытый перерыв доучитывается на момент закрытия смены
	if s.Break.IsActive {
		s.Shift.TotalRestMinutes += elapsedMinutes(s.Break.StartTime, now)
	}

	shiftDate := calendar.BusinessDate(s.Shift.StartTime, s.StartHour())
	summary := models.ShiftSummary{
		BusinessDate: shiftDate,
		RideCount:    len(s.Shift.Records),
		TotalSales:   sumAmounts(s.Shift.Records),
		DailyGoal:    s.Shift.DailyGoal,
		RestMinutes:  s.Shift.TotalRestMinutes,
	}

	s.History = append(s.History, s.Shift.Records...)
	reconcile.SortByTimestamp(s.History)

	meta := s.DayMetadata[shiftDate]
	meta.RestMinutes = s.Shift.TotalRestMinutes
	s.DayMetadata[shiftDate] = meta

	s.Shift = nil
	s.Break = models.BreakState{}
	log.Printf("FinalizeShift: смена за %s закрыта, поездок: %d, выручка: %d.", shiftDate, summary.RideCount, summary.TotalSales)
	return summary, nil
}

// StartBreak включает перерыв. Повторное включение - no-op.
func (s *DriverSession) StartBreak(now time.Time) {
	if s.Shift == nil || s.Break.IsActive {
		return
	}
	s.Break = models.BreakState{IsActive: true, StartTime: now}
}

// StopBreak выключает перерыв и доучитывает прошедшие минуты в смену.
func (s *DriverSession) StopBreak(now time.Time) {
	if s.Shift == nil || !s.Break.IsActive {
		return
	}
	s.Shift.TotalRestMinutes += elapsedMinutes(s.Break.StartTime, now)
	s.Break = models.BreakState{}
}

// --- Импорт ---

// ImportRecords применяет пачку кандидатов импорта: дедупликация против всего
// существующего набора, затем массовое перераспределение разделов.
// Возвращает число обновленных и вставленных записей.
func (s *DriverSession) ImportRecords(candidates []models.SalesRecord) (updated, inserted int) {
	existing := s.AllRecords()
	decisions := reconcile.MatchBatch(candidates, existing)

	merged := make(map[string]models.SalesRecord, len(existing)+len(decisions))
	for _, rec := range existing {
		merged[rec.ID] = rec
	}
	for _, d := range decisions {
		if d.Kind == reconcile.DecisionUpdate {
			updated++
		} else {
			inserted++
		}
		merged[d.Record.ID] = d.Record
	}

	all := make([]models.SalesRecord, 0, len(merged))
	for _, rec := range merged {
		all = append(all, rec)
	}

	// При отсутствии открытой смены Repartition отправляет все в историю
	shiftRecords, history := reconcile.Repartition(all, s.Shift, s.StartHour())
	if s.Shift != nil {
		s.Shift.Records = shiftRecords
	}
	s.History = history
	log.Printf("ImportRecords: водитель %s, обновлено %d, добавлено %d.", s.UID, updated, inserted)
	return updated, inserted
}

// --- DayMetadata ---

// SetDayMetadata записывает аннотации деловой даты.
func (s *DriverSession) SetDayMetadata(date string, meta models.DayMetadata) {
	s.DayMetadata[date] = meta
}

func sumAmounts(records []models.SalesRecord) int {
	total := 0
	for _, r := range records {
		total += r.Amount
	}
	return total
}

func elapsedMinutes(from, to time.Time) int {
	if to.Before(from) {
		return 0
	}
	return int(to.Sub(from) / time.Minute)
}
