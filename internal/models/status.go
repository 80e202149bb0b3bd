package models

import "time"

// StatusSummary - компактная публичная сводка, производная от текущего
// состояния водителя. Пересчитывается после каждой мутации и пишется
// в public_status/{uid}.
type StatusSummary struct {
	State          string    `json:"state"` // riding | active | break | completed | offline
	BusinessDate   string    `json:"businessDate,omitempty"`
	ShiftSales     int       `json:"shiftSales"`
	ShiftRideCount int       `json:"shiftRideCount"`
	DispatchCount  int       `json:"dispatchCount"` // Поездки не с улицы и не со стоянки
	PeriodSales    int       `json:"periodSales"`   // Выручка за текущий расчетный период
	DailyGoal      int       `json:"dailyGoal"`
	MonthlyGoal    int       `json:"monthlyGoal"`
	UpdatedAt      time.Time `json:"updatedAt"`
}
