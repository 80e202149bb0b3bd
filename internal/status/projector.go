// Пакет status - чистая проекция состояния водителя в компактную публичную
// сводку. Пересчитывается после каждой мутации, способной изменить итоги,
// и транслируется в public_status/{uid} через best-effort синхронизацию.
package status

import (
	"encoding/json"
	"time"

	"github.com/toppo2000-ai/Taxi-Navigator-sub002/internal/calendar"
	"github.com/toppo2000-ai/Taxi-Navigator-sub002/internal/constants"
	"github.com/toppo2000-ai/Taxi-Navigator-sub002/internal/models"
	"github.com/toppo2000-ai/Taxi-Navigator-sub002/internal/session"
)

// Project строит сводку по текущему состоянию сессии.
// Грань между riding и active принадлежит вызывающему (UI), поэтому при
// открытой смене без перерыва проекция отдает active; completed и offline
// выставляются ядром.
func Project(s *session.DriverSession, now time.Time) models.StatusSummary {
	summary := models.StatusSummary{
		State:       constants.STATUS_OFFLINE,
		MonthlyGoal: s.Stats.MonthlyGoal,
		UpdatedAt:   now,
	}

	start, end := calendar.BillingPeriod(now, s.Stats.ShimebiDay, s.StartHour())
	for _, rec := range s.RecordsInBillingPeriod(start, end) {
		summary.PeriodSales += rec.Amount
	}

	if s.Shift == nil {
		return summary
	}

	summary.State = constants.STATUS_ACTIVE
	if s.Break.IsActive {
		summary.State = constants.STATUS_BREAK
	}
	summary.BusinessDate = calendar.BusinessDate(s.Shift.StartTime, s.StartHour())
	summary.DailyGoal = s.Shift.DailyGoal

	for _, rec := range s.Shift.Records {
		summary.ShiftSales += rec.Amount
		summary.ShiftRideCount++
		if rec.RideType != constants.RIDE_FLOW && rec.RideType != constants.RIDE_WAIT {
			summary.DispatchCount++
		}
	}
	return summary
}

// Completed строит терминальную сводку закрытой смены.
func Completed(s *session.DriverSession, summary models.ShiftSummary, now time.Time) models.StatusSummary {
	out := Project(s, now)
	out.State = constants.STATUS_COMPLETED
	out.BusinessDate = summary.BusinessDate
	out.ShiftSales = summary.TotalSales
	out.ShiftRideCount = summary.RideCount
	out.DailyGoal = summary.DailyGoal
	return out
}

// Fields сериализует сводку в поля документа public_status/{uid}.
func Fields(summary models.StatusSummary) map[string]interface{} {
	raw, err := json.Marshal(summary)
	if err != nil {
		return map[string]interface{}{"state": summary.State}
	}
	var fields map[string]interface{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return map[string]interface{}{"state": summary.State}
	}
	return fields
}
