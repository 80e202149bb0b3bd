// Пакет importer разбирает CSV-выгрузки таксометра в записи о поездках.
// Раскладка колонок определяется по именам в строке заголовка; текст
// декодируется как UTF-8, при неудаче - повторно как Shift-JIS.
package importer

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"

	"github.com/toppo2000-ai/Taxi-Navigator-sub002/internal/calendar"
	"github.com/toppo2000-ai/Taxi-Navigator-sub002/internal/constants"
	"github.com/toppo2000-ai/Taxi-Navigator-sub002/internal/models"
	"github.com/toppo2000-ai/Taxi-Navigator-sub002/internal/utils"
)

// ErrUnrecognizedFormat - ни одна из кодировок не дала пригодных записей.
// Вызывающий сообщает о неопознанном формате и не меняет состояние.
var ErrUnrecognizedFormat = errors.New("неопознанный формат CSV")

// vendorVocab - подстроки для определения вендора оплаты через приложение.
var vendorVocab = []string{"GO", "S.RIDE", "Uber", "DiDi"}

// Parse разбирает сырые байты CSV в кандидатов импорта (без итоговых ID -
// их назначит сопоставление с существующими записями). Сначала пробуем
// UTF-8, затем Shift-JIS; если обе кодировки не дали ни одной пригодной
// записи, возвращается ErrUnrecognizedFormat.
func Parse(raw []byte, stats models.MonthlyStats) ([]models.SalesRecord, error) {
	records, err := parseDecoded(bytes.NewReader(raw), stats)
	if err == nil && len(records) > 0 {
		return records, nil
	}

	sjis := transform.NewReader(bytes.NewReader(raw), japanese.ShiftJIS.NewDecoder())
	records, err = parseDecoded(sjis, stats)
	if err == nil && len(records) > 0 {
		log.Println("Parse: CSV разобран в кодировке Shift-JIS.")
		return records, nil
	}

	return nil, ErrUnrecognizedFormat
}

// columnIndex - раскладка найденных колонок: внутренний ключ -> номер колонки.
type columnIndex map[string]int

func parseDecoded(r io.Reader, stats models.MonthlyStats) ([]models.SalesRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // Строки с неполным числом полей пропускаем сами

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("чтение заголовка: %w", err)
	}

	cols, err := mapHeader(header)
	if err != nil {
		return nil, err
	}

	var out []models.SalesRecord
	rowNum := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		rowNum++
		if err != nil {
			log.Printf("parseDecoded: строка %d пропущена (ошибка CSV): %v", rowNum, err)
			continue
		}

		rec, ok := parseRow(row, cols, stats)
		if !ok {
			log.Printf("parseDecoded: строка %d пропущена (не хватает обязательных полей).", rowNum)
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

// mapHeader строит раскладку колонок по именам заголовков.
// Обязательны деловая дата и одна из колонок тарифа/итога.
func mapHeader(header []string) (columnIndex, error) {
	cols := make(columnIndex)
	for i, name := range header {
		name = strings.TrimSpace(name)
		switch name {
		case constants.CSV_HEADER_BUSINESS_DATE:
			cols["businessDate"] = i
		case constants.CSV_HEADER_FARE:
			cols["fare"] = i
		case constants.CSV_HEADER_TOTAL_FARE:
			cols["totalFare"] = i
		default:
			if key, ok := constants.CSVOptionalHeaderMap[name]; ok {
				cols[key] = i
			}
		}
	}

	if _, ok := cols["businessDate"]; !ok {
		return nil, fmt.Errorf("нет колонки деловой даты (%s)", constants.CSV_HEADER_BUSINESS_DATE)
	}
	_, hasFare := cols["fare"]
	_, hasTotal := cols["totalFare"]
	if !hasFare && !hasTotal {
		return nil, fmt.Errorf("нет колонки тарифа (%s) или итога (%s)", constants.CSV_HEADER_FARE, constants.CSV_HEADER_TOTAL_FARE)
	}
	return cols, nil
}

func parseRow(row []string, cols columnIndex, stats models.MonthlyStats) (models.SalesRecord, bool) {
	get := func(key string) string {
		idx, ok := cols[key]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	dateStr := get("businessDate")
	if dateStr == "" {
		return models.SalesRecord{}, false
	}

	ts, err := resolveTimestamp(dateStr, get("pickupTime"), stats.BusinessStartHour)
	if err != nil {
		return models.SalesRecord{}, false
	}

	toll := utils.SanitizeAmount(get("tollOutbound")) + utils.SanitizeAmount(get("tollReturn"))

	var amount int
	if fare := get("fare"); fare != "" {
		amount = utils.SanitizeAmount(fare)
	} else {
		// Из итога вычитаем платные дороги, чтобы получить чистый тариф
		amount = utils.SanitizeAmount(get("totalFare")) - toll
		if amount < 0 {
			amount = 0
		}
	}

	remarks := get("remarks")
	category := get("category")
	vocabText := remarks + " " + category

	nonCash := utils.SanitizeAmount(get("nonCashAmount"))
	method := inferPaymentMethod(vocabText, nonCash)
	if method == constants.PAYMENT_CASH {
		nonCash = 0
	} else if nonCash > amount+toll {
		nonCash = amount + toll
	}

	rec := models.SalesRecord{
		Timestamp:        ts,
		Amount:           amount,
		Toll:             toll,
		PaymentMethod:    method,
		NonCashAmount:    nonCash,
		RideType:         inferRideType(vocabText),
		PickupLocation:   get("pickupLocation"),
		DropoffLocation:  get("dropoffLocation"),
		PassengersMale:   utils.SanitizeAmount(get("passengersMale")),
		PassengersFemale: utils.SanitizeAmount(get("passengersFemale")),
		Remarks:          remarks,
		Tags:             parseTags(remarks),
	}

	if lat, lon := get("lat"), get("lon"); lat != "" && lon != "" {
		rec.PickupCoords = lat + "," + lon
	}
	return rec, true
}

// resolveTimestamp восстанавливает абсолютный момент поездки из деловой даты
// и времени посадки. Время может быть по 30-часовой шкале ("25:30");
// обычное время раньше часа начала суток тоже означает следующий
// календарный день. Без колонки времени берется начало деловых суток.
func resolveTimestamp(dateStr, timeStr string, startHour int) (time.Time, error) {
	dateStr = strings.ReplaceAll(dateStr, "-", "/")
	date, err := time.ParseInLocation(calendar.BusinessDateFormat, dateStr, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("разбор даты '%s': %w", dateStr, err)
	}

	hour, minute := startHour, 0
	if timeStr != "" {
		parts := strings.SplitN(timeStr, ":", 2)
		if len(parts) == 2 {
			h, errH := strconv.Atoi(parts[0])
			m, errM := strconv.Atoi(parts[1])
			if errH == nil && errM == nil {
				hour, minute = h, m
			}
		}
	}

	dayOffset := 0
	if hour >= 24 {
		hour -= 24
		dayOffset = 1
	} else if hour < startHour {
		dayOffset = 1
	}

	return time.Date(date.Year(), date.Month(), date.Day()+dayOffset, hour, minute, 0, 0, time.Local), nil
}

func inferPaymentMethod(text string, nonCash int) string {
	for _, v := range constants.RemarksPaymentVocab {
		if strings.Contains(text, v.Substring) {
			return v.Method
		}
	}
	if nonCash > 0 {
		return constants.PAYMENT_CARD
	}
	return constants.PAYMENT_CASH
}

func inferRideType(text string) string {
	for _, v := range constants.RemarksRideTypeVocab {
		if strings.Contains(text, v.Substring) {
			return v.RideType
		}
	}
	return constants.RIDE_FLOW
}

// parseTags выделяет структурированные пометки из свободного текста:
// цепочку остановок вида "経由:A→B→C" и вендора оплаты через приложение.
func parseTags(remarks string) models.RemarkTags {
	var tags models.RemarkTags

	if idx := strings.Index(remarks, "経由:"); idx >= 0 {
		chain := remarks[idx+len("経由:"):]
		if cut := strings.IndexAny(chain, " 　;"); cut >= 0 {
			chain = chain[:cut]
		}
		for _, stop := range strings.Split(chain, "→") {
			if stop = strings.TrimSpace(stop); stop != "" {
				tags.Stopovers = append(tags.Stopovers, stop)
			}
		}
	}

	for _, vendor := range vendorVocab {
		if strings.Contains(remarks, vendor) {
			tags.PaymentVendor = vendor
			break
		}
	}
	return tags
}
