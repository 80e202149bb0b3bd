package reconcile

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toppo2000-ai/Taxi-Navigator-sub002/internal/models"
)

func TestMatchBatchUpdateOnTimeAndAmount(t *testing.T) {
	base := time.Date(2024, time.March, 25, 14, 0, 0, 0, time.Local)
	existing := []models.SalesRecord{makeRecord("ex-1", base, 2800)}

	// 30 секунд разницы, та же сумма - UPDATE под существующим ID
	cand := makeRecord("", base.Add(30*time.Second), 2800)
	decisions := MatchBatch([]models.SalesRecord{cand}, existing)

	require.Len(t, decisions, 1)
	assert.Equal(t, DecisionUpdate, decisions[0].Kind)
	assert.Equal(t, "ex-1", decisions[0].Record.ID)
}

func TestMatchBatchInsertWhenFarApart(t *testing.T) {
	base := time.Date(2024, time.March, 25, 14, 0, 0, 0, time.Local)
	existing := []models.SalesRecord{makeRecord("ex-1", base, 2800)}

	// 5 минут разницы, другая сумма, мест нет - INSERT с новым ID
	cand := makeRecord("", base.Add(5*time.Minute), 1900)
	decisions := MatchBatch([]models.SalesRecord{cand}, existing)

	require.Len(t, decisions, 1)
	assert.Equal(t, DecisionInsert, decisions[0].Kind)
	assert.NotEmpty(t, decisions[0].Record.ID)
	assert.NotEqual(t, "ex-1", decisions[0].Record.ID)
}

func TestMatchBatchLocationFallback(t *testing.T) {
	base := time.Date(2024, time.March, 25, 14, 0, 0, 0, time.Local)
	ex := makeRecord("ex-1", base, 2800)
	ex.PickupLocation = "新宿駅"

	// Сумма не совпала, но место посадки совпало и время близко
	cand := makeRecord("", base.Add(20*time.Second), 3100)
	cand.PickupLocation = "新宿駅"

	decisions := MatchBatch([]models.SalesRecord{cand}, []models.SalesRecord{ex})

	require.Len(t, decisions, 1)
	assert.Equal(t, DecisionUpdate, decisions[0].Kind)
	assert.Equal(t, "ex-1", decisions[0].Record.ID)
	// Поля кандидата замещают существующие
	assert.Equal(t, 3100, decisions[0].Record.Amount)
}

func TestMatchBatchEmptyLocationNeverMatches(t *testing.T) {
	base := time.Date(2024, time.March, 25, 14, 0, 0, 0, time.Local)
	ex := makeRecord("ex-1", base, 2800) // место посадки пустое

	cand := makeRecord("", base.Add(20*time.Second), 3100) // сумма другая, место пустое
	decisions := MatchBatch([]models.SalesRecord{cand}, []models.SalesRecord{ex})

	require.Len(t, decisions, 1)
	assert.Equal(t, DecisionInsert, decisions[0].Kind)
}

func TestMatchBatchExactWindowBoundary(t *testing.T) {
	base := time.Date(2024, time.March, 25, 14, 0, 0, 0, time.Local)
	existing := []models.SalesRecord{makeRecord("ex-1", base, 2800)}

	// Ровно 60 секунд - уже не совпадение (строгое "меньше минуты")
	cand := makeRecord("", base.Add(time.Minute), 2800)
	decisions := MatchBatch([]models.SalesRecord{cand}, existing)

	require.Len(t, decisions, 1)
	assert.Equal(t, DecisionInsert, decisions[0].Kind)
}

func TestMatchBatchFirstMatchWins(t *testing.T) {
	base := time.Date(2024, time.March, 25, 14, 0, 0, 0, time.Local)
	existing := []models.SalesRecord{
		makeRecord("ex-1", base, 2800),
		makeRecord("ex-2", base.Add(10*time.Second), 2800),
	}

	cand := makeRecord("", base.Add(5*time.Second), 2800)
	decisions := MatchBatch([]models.SalesRecord{cand}, existing)

	require.Len(t, decisions, 1)
	assert.Equal(t, "ex-1", decisions[0].Record.ID)
}

func TestMatchBatchInternalDuplicatesNotDeduped(t *testing.T) {
	// Два почти одинаковых кандидата в одной пачке не дедуплицируются
	// друг против друга - сохраненное поведение исходной системы
	base := time.Date(2024, time.March, 25, 14, 0, 0, 0, time.Local)

	c1 := makeRecord("", base, 2800)
	c2 := makeRecord("", base.Add(10*time.Second), 2800)
	decisions := MatchBatch([]models.SalesRecord{c1, c2}, nil)

	require.Len(t, decisions, 2)
	assert.Equal(t, DecisionInsert, decisions[0].Kind)
	assert.Equal(t, DecisionInsert, decisions[1].Kind)
	assert.NotEqual(t, decisions[0].Record.ID, decisions[1].Record.ID)
}
