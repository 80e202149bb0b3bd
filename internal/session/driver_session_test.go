package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toppo2000-ai/Taxi-Navigator-sub002/internal/constants"
	"github.com/toppo2000-ai/Taxi-Navigator-sub002/internal/models"
)

func newRecord(id string, ts time.Time, amount int) models.SalesRecord {
	return models.SalesRecord{
		ID:            id,
		Timestamp:     ts,
		Amount:        amount,
		PaymentMethod: constants.PAYMENT_CASH,
		RideType:      constants.RIDE_FLOW,
	}
}

func newSession() *DriverSession {
	return NewDriverSession("driver-1")
}

func TestSaveRecordWithoutShiftGoesToHistory(t *testing.T) {
	s := newSession()
	ts := time.Date(2024, time.March, 25, 14, 0, 0, 0, time.Local)

	require.NoError(t, s.SaveRecord(newRecord("r1", ts, 2800)))

	assert.Nil(t, s.Shift)
	require.Len(t, s.History, 1)
}

func TestSaveRecordValidation(t *testing.T) {
	s := newSession()
	ts := time.Date(2024, time.March, 25, 14, 0, 0, 0, time.Local)

	bad := newRecord("r1", ts, 2800)
	bad.PaymentMethod = "BARTER"
	assert.Error(t, s.SaveRecord(bad))

	bad = newRecord("r2", ts, 2800)
	bad.NonCashAmount = 5000 // больше amount+toll
	assert.Error(t, s.SaveRecord(bad))
}

func TestStartShiftSeedsFromHistory(t *testing.T) {
	s := newSession()
	now := time.Date(2024, time.March, 25, 10, 0, 0, 0, time.Local)

	// Утренние поездки до официального старта смены
	early := newRecord("early", time.Date(2024, time.March, 25, 9, 15, 0, 0, time.Local), 1500)
	old := newRecord("old", time.Date(2024, time.March, 24, 15, 0, 0, 0, time.Local), 900)
	require.NoError(t, s.SaveRecord(early))
	require.NoError(t, s.SaveRecord(old))

	s.StartShift(30000, 12, now)

	require.NotNil(t, s.Shift)
	require.Len(t, s.Shift.Records, 1)
	assert.Equal(t, "early", s.Shift.Records[0].ID)
	// StartTime смены - время самой ранней втянутой записи
	assert.Equal(t, early.Timestamp, s.Shift.StartTime)
	require.Len(t, s.History, 1)
	assert.Equal(t, "old", s.History[0].ID)
	assert.Equal(t, 30000, s.Shift.DailyGoal)
}

func TestStartShiftNoopWhenOpen(t *testing.T) {
	s := newSession()
	now := time.Date(2024, time.March, 25, 10, 0, 0, 0, time.Local)

	s.StartShift(30000, 12, now)
	first := s.Shift.ID
	s.StartShift(50000, 8, now.Add(time.Hour))

	assert.Equal(t, first, s.Shift.ID)
	assert.Equal(t, 30000, s.Shift.DailyGoal)
}

func TestStartShiftRestoresRestMinutes(t *testing.T) {
	s := newSession()
	now := time.Date(2024, time.March, 25, 10, 0, 0, 0, time.Local)
	s.SetDayMetadata("2024/03/25", models.DayMetadata{RestMinutes: 45})

	s.StartShift(0, 0, now)

	require.NotNil(t, s.Shift)
	assert.Equal(t, 45, s.Shift.TotalRestMinutes)
}

func TestFinalizeShiftMergesIntoHistory(t *testing.T) {
	s := newSession()
	now := time.Date(2024, time.March, 25, 10, 0, 0, 0, time.Local)
	s.StartShift(30000, 12, now)

	for i, amount := range []int{1200, 2800, 900} {
		rec := newRecord("", now.Add(time.Duration(i+1)*time.Hour), amount)
		require.NoError(t, s.SaveRecord(rec))
	}
	require.Len(t, s.Shift.Records, 3)
	before := len(s.History)

	summary, err := s.FinalizeShift(now.Add(10 * time.Hour))
	require.NoError(t, err)

	assert.Nil(t, s.Shift)
	assert.Len(t, s.History, before+3)
	assert.Equal(t, 3, summary.RideCount)
	assert.Equal(t, 4900, summary.TotalSales)
	assert.Equal(t, "2024/03/25", summary.BusinessDate)

	// Метаданные дня созданы
	_, ok := s.DayMetadata["2024/03/25"]
	assert.True(t, ok)

	_, err = s.FinalizeShift(now.Add(11 * time.Hour))
	assert.Error(t, err)
}

func TestFinalizePreservesMemo(t *testing.T) {
	s := newSession()
	now := time.Date(2024, time.March, 25, 10, 0, 0, 0, time.Local)
	s.SetDayMetadata("2024/03/25", models.DayMetadata{Memo: "дождь весь день"})

	s.StartShift(0, 0, now)
	s.StartBreak(now.Add(time.Hour))
	s.StopBreak(now.Add(90 * time.Minute))
	_, err := s.FinalizeShift(now.Add(10 * time.Hour))
	require.NoError(t, err)

	meta := s.DayMetadata["2024/03/25"]
	assert.Equal(t, "дождь весь день", meta.Memo)
	assert.Equal(t, 30, meta.RestMinutes)
}

func TestBreakAccumulation(t *testing.T) {
	s := newSession()
	now := time.Date(2024, time.March, 25, 10, 0, 0, 0, time.Local)
	s.StartShift(0, 0, now)

	s.StartBreak(now.Add(time.Hour))
	assert.True(t, s.Break.IsActive)
	// Повторный старт перерыва не сдвигает начало
	s.StartBreak(now.Add(2 * time.Hour))
	s.StopBreak(now.Add(time.Hour + 25*time.Minute))

	assert.False(t, s.Break.IsActive)
	assert.Equal(t, 25, s.Shift.TotalRestMinutes)

	// Стоп без старта - no-op
	s.StopBreak(now.Add(3 * time.Hour))
	assert.Equal(t, 25, s.Shift.TotalRestMinutes)
}

func TestFinalizeClosesActiveBreak(t *testing.T) {
	s := newSession()
	now := time.Date(2024, time.March, 25, 10, 0, 0, 0, time.Local)
	s.StartShift(0, 0, now)
	s.StartBreak(now.Add(time.Hour))

	summary, err := s.FinalizeShift(now.Add(time.Hour + 40*time.Minute))
	require.NoError(t, err)

	assert.Equal(t, 40, summary.RestMinutes)
	assert.False(t, s.Break.IsActive)
}

func TestRecordsInPeriodStringRange(t *testing.T) {
	s := newSession()
	mk := func(id string, day, hour int) models.SalesRecord {
		return newRecord(id, time.Date(2024, time.March, day, hour, 0, 0, 0, time.Local), 1000)
	}
	require.NoError(t, s.SaveRecord(mk("in-1", 21, 12)))
	require.NoError(t, s.SaveRecord(mk("in-2", 25, 23)))
	require.NoError(t, s.SaveRecord(mk("edge", 26, 2))) // деловая дата 2024/03/25
	require.NoError(t, s.SaveRecord(mk("out", 20, 12)))

	start := time.Date(2024, time.March, 21, 9, 0, 0, 0, time.Local)
	end := time.Date(2024, time.April, 20, 23, 59, 59, 0, time.Local)
	got := s.RecordsInPeriod(start, end)

	require.Len(t, got, 3)
	ids := []string{got[0].ID, got[1].ID, got[2].ID}
	assert.Equal(t, []string{"in-1", "in-2", "edge"}, ids)
}

func TestRecordsInBillingPeriodHonorsOverride(t *testing.T) {
	s := newSession()
	mk := func(id string, month time.Month, day int) models.SalesRecord {
		return newRecord(id, time.Date(2024, month, day, 14, 0, 0, 0, time.Local), 1000)
	}
	require.NoError(t, s.SaveRecord(mk("plain", time.March, 25)))
	require.NoError(t, s.SaveRecord(mk("pushed-out", time.March, 26)))
	require.NoError(t, s.SaveRecord(mk("pulled-in", time.April, 25)))

	// 2024/03/26 переатрибутирован в май, 2024/04/25 - в апрель
	s.SetDayMetadata("2024/03/26", models.DayMetadata{BillingMonth: "2024/05"})
	s.SetDayMetadata("2024/04/25", models.DayMetadata{BillingMonth: "2024/04"})

	start := time.Date(2024, time.March, 21, 9, 0, 0, 0, time.Local)
	end := time.Date(2024, time.April, 20, 23, 59, 59, 0, time.Local)
	got := s.RecordsInBillingPeriod(start, end)

	require.Len(t, got, 2)
	assert.Equal(t, "plain", got[0].ID)
	assert.Equal(t, "pulled-in", got[1].ID)
}

func TestImportRecordsRepartitions(t *testing.T) {
	s := newSession()
	now := time.Date(2024, time.March, 25, 10, 0, 0, 0, time.Local)
	s.StartShift(0, 0, now)

	existing := newRecord("", now.Add(time.Hour), 2800)
	require.NoError(t, s.SaveRecord(existing))
	existingID := s.Shift.Records[0].ID

	candidates := []models.SalesRecord{
		// Дубликат существующей записи смены (30 секунд, та же сумма)
		newRecord("", now.Add(time.Hour+30*time.Second), 2800),
		// Новая запись за вчера - уйдет в историю
		newRecord("", time.Date(2024, time.March, 24, 20, 0, 0, 0, time.Local), 1500),
		// Новая запись за сегодня - попадет в смену
		newRecord("", now.Add(3*time.Hour), 700),
	}

	updated, inserted := s.ImportRecords(candidates)

	assert.Equal(t, 1, updated)
	assert.Equal(t, 2, inserted)
	require.Len(t, s.Shift.Records, 2)
	assert.Equal(t, existingID, s.Shift.Records[0].ID) // ID сохранен после UPDATE
	require.Len(t, s.History, 1)
	assert.Equal(t, 1500, s.History[0].Amount)
}

func TestDocumentRoundTrip(t *testing.T) {
	s := newSession()
	now := time.Date(2024, time.March, 25, 10, 0, 0, 0, time.Local)
	s.StartShift(25000, 10, now)
	require.NoError(t, s.SaveRecord(newRecord("", now.Add(time.Hour), 2800)))
	require.NoError(t, s.SaveRecord(newRecord("", time.Date(2024, time.March, 20, 12, 0, 0, 0, time.Local), 900)))
	s.SetDayMetadata("2024/03/20", models.DayMetadata{Memo: "тест", RestMinutes: 15})

	fields, err := s.ToDocument()
	require.NoError(t, err)

	restored := NewDriverSession("driver-1")
	require.NoError(t, restored.ApplySnapshot(fields))

	require.NotNil(t, restored.Shift)
	assert.Equal(t, s.Shift.ID, restored.Shift.ID)
	assert.Len(t, restored.History, 1)
	assert.Len(t, restored.Shift.Records, 1)
	assert.Equal(t, 15, restored.DayMetadata["2024/03/20"].RestMinutes)
	assert.Equal(t, s.Stats.BusinessStartHour, restored.Stats.BusinessStartHour)
}
