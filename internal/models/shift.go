package models

import "time"

// Shift - открытая рабочая смена водителя.
// На одного водителя существует не более одной смены одновременно.
// Инвариант: деловая дата каждой записи в Records совпадает с деловой датой StartTime.
type Shift struct {
	ID               string        `json:"id"`
	StartTime        time.Time     `json:"startTime"`
	DailyGoal        int           `json:"dailyGoal"`    // Дневная цель выручки, иены
	PlannedHours     float64       `json:"plannedHours"` // Плановая длительность смены
	TotalRestMinutes int           `json:"totalRestMinutes"`
	Records          []SalesRecord `json:"records"` // Упорядочены по Timestamp
}

// BreakState - боковой канал состояния перерыва; не затрагивает Records.
type BreakState struct {
	IsActive  bool      `json:"isActive"`
	StartTime time.Time `json:"startTime"`
}

// ShiftSummary - итог закрытой смены для трансляции наружу.
type ShiftSummary struct {
	BusinessDate string `json:"businessDate"`
	RideCount    int    `json:"rideCount"`
	TotalSales   int    `json:"totalSales"`
	DailyGoal    int    `json:"dailyGoal"`
	RestMinutes  int    `json:"restMinutes"`
}
