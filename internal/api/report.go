package api

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/toppo2000-ai/Taxi-Navigator-sub002/internal/calendar"
	"github.com/toppo2000-ai/Taxi-Navigator-sub002/internal/constants"
	"github.com/toppo2000-ai/Taxi-Navigator-sub002/internal/models"
	"github.com/toppo2000-ai/Taxi-Navigator-sub002/internal/session"
)

var errInvalidDate = errors.New("некорректная дата")

// ExportPeriodReport отдает XLSX с записями расчетного периода,
// содержащего ?date=YYYY/MM/DD (по умолчанию - текущий период).
func (h *Handlers) ExportPeriodReport(w http.ResponseWriter, r *http.Request) {
	uid := DriverUID(r)

	dateParam := r.URL.Query().Get("date")

	var (
		records     []models.SalesRecord
		periodStart time.Time
		periodEnd   time.Time
		stats       models.MonthlyStats
	)
	err := h.deps.Sessions.With(r.Context(), uid, func(s *session.DriverSession) error {
		ref := time.Now()
		if dateParam != "" {
			parsed, errD := parseBusinessDate(dateParam, s.StartHour())
			if errD != nil {
				return errInvalidDate
			}
			ref = parsed
		}
		periodStart, periodEnd = calendar.BillingPeriod(ref, s.Stats.ShimebiDay, s.StartHour())
		records = s.RecordsInBillingPeriod(periodStart, periodEnd)
		stats = s.Stats
		return nil
	})
	if err != nil {
		if err == errInvalidDate {
			http.Error(w, "Bad Request: invalid date", http.StatusBadRequest)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	buf, err := buildPeriodReport(records, stats)
	if err != nil {
		log.Printf("ExportPeriodReport: формирование отчета не удалось: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	filename := fmt.Sprintf("sales_%s_%s.xlsx",
		periodStart.Format("20060102"), periodEnd.Format("20060102"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		log.Printf("ExportPeriodReport: ошибка записи ответа: %v", err)
	}
}

// buildPeriodReport формирует книгу: лист с записями периода плюс
// итоговая строка по выручке.
func buildPeriodReport(records []models.SalesRecord, stats models.MonthlyStats) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	sheetName := "Sales"
	index, _ := f.NewSheet(sheetName) // Игнорируем ошибку, если лист уже существует (NewFile создает Sheet1)
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headers := []string{
		constants.CSV_HEADER_BUSINESS_DATE, "時刻", constants.CSV_HEADER_FARE,
		"高速代", "支払方法", "非現金額", "乗車区分",
		"乗車地", "降車地", "備考",
	}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, header)
	}

	total := 0
	rowIndex := 2
	for _, rec := range records {
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", rowIndex), calendar.BusinessDate(rec.Timestamp, stats.BusinessStartHour))
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", rowIndex), calendar.BusinessTime(rec.Timestamp, stats.BusinessStartHour))
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", rowIndex), rec.Amount)
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", rowIndex), rec.Toll)
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", rowIndex), constants.PaymentMethodDisplayMap[rec.PaymentMethod])
		f.SetCellValue(sheetName, fmt.Sprintf("F%d", rowIndex), rec.NonCashAmount)
		f.SetCellValue(sheetName, fmt.Sprintf("G%d", rowIndex), constants.RideTypeDisplayMap[rec.RideType])
		f.SetCellValue(sheetName, fmt.Sprintf("H%d", rowIndex), rec.PickupLocation)
		f.SetCellValue(sheetName, fmt.Sprintf("I%d", rowIndex), rec.DropoffLocation)
		f.SetCellValue(sheetName, fmt.Sprintf("J%d", rowIndex), rec.Remarks)
		total += rec.Total()
		rowIndex++
	}

	f.SetCellValue(sheetName, fmt.Sprintf("A%d", rowIndex), "合計")
	f.SetCellValue(sheetName, fmt.Sprintf("C%d", rowIndex), total)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return &buf, nil
}
