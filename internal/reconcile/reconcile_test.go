package reconcile

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toppo2000-ai/Taxi-Navigator-sub002/internal/constants"
	"github.com/toppo2000-ai/Taxi-Navigator-sub002/internal/models"
)

const startHour = 9

func makeRecord(id string, ts time.Time, amount int) models.SalesRecord {
	return models.SalesRecord{
		ID:            id,
		Timestamp:     ts,
		Amount:        amount,
		PaymentMethod: constants.PAYMENT_CASH,
		RideType:      constants.RIDE_FLOW,
	}
}

func openShift(start time.Time, records ...models.SalesRecord) *models.Shift {
	return &models.Shift{ID: "shift-1", StartTime: start, Records: records}
}

func TestTargetPartition(t *testing.T) {
	shiftStart := time.Date(2024, time.March, 25, 10, 0, 0, 0, time.Local)
	shift := openShift(shiftStart)

	// Та же деловая дата - в смену, в том числе после полуночи
	sameDay := makeRecord("a", time.Date(2024, time.March, 26, 1, 0, 0, 0, time.Local), 2800)
	assert.Equal(t, PartitionShift, Target(sameDay, shift, startHour))

	// Прошлая деловая дата - в историю
	yesterday := makeRecord("b", time.Date(2024, time.March, 24, 20, 0, 0, 0, time.Local), 2800)
	assert.Equal(t, PartitionHistory, Target(yesterday, shift, startHour))

	// Без открытой смены все уходит в историю
	assert.Equal(t, PartitionHistory, Target(sameDay, nil, startHour))
}

func TestPlaceInsertIntoShift(t *testing.T) {
	shiftStart := time.Date(2024, time.March, 25, 10, 0, 0, 0, time.Local)
	shift := openShift(shiftStart)

	rec := makeRecord("r1", shiftStart.Add(time.Hour), 1200)
	shiftRecords, history := Place(rec, shift, nil, startHour)

	require.Len(t, shiftRecords, 1)
	assert.Empty(t, history)
	assert.Equal(t, "r1", shiftRecords[0].ID)
}

func TestPlaceRelocatesEditedRecordToHistory(t *testing.T) {
	// Правка времени записи смены на вчерашнюю деловую дату
	// перемещает ее в историю
	shiftStart := time.Date(2024, time.March, 25, 10, 0, 0, 0, time.Local)
	existing := makeRecord("r1", shiftStart.Add(time.Hour), 1200)
	shift := openShift(shiftStart, existing)

	edited := existing
	edited.Timestamp = time.Date(2024, time.March, 24, 22, 0, 0, 0, time.Local)

	shiftRecords, history := Place(edited, shift, nil, startHour)

	assert.Empty(t, shiftRecords)
	require.Len(t, history, 1)
	assert.Equal(t, "r1", history[0].ID)
}

func TestPlaceRelocatesHistoryRecordIntoShift(t *testing.T) {
	shiftStart := time.Date(2024, time.March, 25, 10, 0, 0, 0, time.Local)
	shift := openShift(shiftStart)

	old := makeRecord("h1", time.Date(2024, time.March, 24, 22, 0, 0, 0, time.Local), 3000)
	history := []models.SalesRecord{old}

	edited := old
	edited.Timestamp = shiftStart.Add(2 * time.Hour)

	shiftRecords, newHistory := Place(edited, shift, history, startHour)

	assert.Empty(t, newHistory)
	require.Len(t, shiftRecords, 1)
	assert.Equal(t, "h1", shiftRecords[0].ID)
}

func TestPlaceKeepsTimestampOrder(t *testing.T) {
	shiftStart := time.Date(2024, time.March, 25, 10, 0, 0, 0, time.Local)
	r1 := makeRecord("r1", shiftStart.Add(3*time.Hour), 100)
	r2 := makeRecord("r2", shiftStart.Add(time.Hour), 200)
	shift := openShift(shiftStart, r1)

	shiftRecords, _ := Place(r2, shift, nil, startHour)

	require.Len(t, shiftRecords, 2)
	assert.Equal(t, "r2", shiftRecords[0].ID)
	assert.Equal(t, "r1", shiftRecords[1].ID)
}

func TestPartitionInvariantAfterMutationSequence(t *testing.T) {
	// Произвольная последовательность сохранений и правок: в каждый момент
	// ID присутствует не более чем в одном разделе
	shiftStart := time.Date(2024, time.March, 25, 10, 0, 0, 0, time.Local)
	shift := openShift(shiftStart)
	var history []models.SalesRecord

	check := func() {
		seen := map[string]int{}
		for _, r := range shift.Records {
			seen[r.ID]++
		}
		for _, r := range history {
			seen[r.ID]++
		}
		for id, n := range seen {
			require.Equal(t, 1, n, "запись %s продублирована между разделами", id)
		}
	}

	steps := []models.SalesRecord{
		makeRecord("a", shiftStart.Add(time.Hour), 100),
		makeRecord("b", time.Date(2024, time.March, 24, 20, 0, 0, 0, time.Local), 200),
		makeRecord("a", time.Date(2024, time.March, 24, 21, 0, 0, 0, time.Local), 100), // правка: a уезжает в историю
		makeRecord("b", shiftStart.Add(2*time.Hour), 200),                              // правка: b возвращается в смену
	}
	for _, rec := range steps {
		shift.Records, history = Place(rec, shift, history, startHour)
		check()
	}

	require.Len(t, shift.Records, 1)
	assert.Equal(t, "b", shift.Records[0].ID)
	require.Len(t, history, 1)
	assert.Equal(t, "a", history[0].ID)
}

func TestRemoveIdempotent(t *testing.T) {
	shiftStart := time.Date(2024, time.March, 25, 10, 0, 0, 0, time.Local)
	rec := makeRecord("r1", shiftStart.Add(time.Hour), 500)
	shift := openShift(shiftStart, rec)

	shiftRecords, history := Remove("r1", shift, nil)
	assert.Empty(t, shiftRecords)
	assert.Empty(t, history)

	// Повторное удаление отсутствующей записи - не ошибка
	shift.Records = shiftRecords
	shiftRecords, history = Remove("r1", shift, history)
	assert.Empty(t, shiftRecords)
	assert.Empty(t, history)
}

func TestRepartitionBulk(t *testing.T) {
	shiftStart := time.Date(2024, time.March, 25, 10, 0, 0, 0, time.Local)
	shift := openShift(shiftStart)

	all := []models.SalesRecord{
		makeRecord("old", time.Date(2024, time.March, 20, 15, 0, 0, 0, time.Local), 100),
		makeRecord("today", shiftStart.Add(time.Hour), 200),
		makeRecord("late", time.Date(2024, time.March, 26, 2, 0, 0, 0, time.Local), 300), // после полуночи, та же деловая дата
	}

	shiftRecords, history := Repartition(all, shift, startHour)

	require.Len(t, shiftRecords, 2)
	assert.Equal(t, "today", shiftRecords[0].ID)
	assert.Equal(t, "late", shiftRecords[1].ID)
	require.Len(t, history, 1)
	assert.Equal(t, "old", history[0].ID)
}
