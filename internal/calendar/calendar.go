// Деловой календарь: деловые даты со сдвигом начала суток и расчетные
// периоды с настраиваемым днем закрытия. Все функции чистые и работают
// в локальной временной зоне устройства.
package calendar

import (
	"fmt"
	"time"
)

// BusinessDateFormat - формат деловой даты. Строки в этом формате
// упорядочены лексикографически, чем пользуется выборка по периоду.
const BusinessDateFormat = "2006/01/02"

// BusinessDate возвращает деловую дату момента t в формате YYYY/MM/DD.
// Сутки водителя идут от startHour:00 до startHour:00 следующего календарного
// дня: поездка в 01:00 при startHour=9 относится к предыдущей деловой дате.
func BusinessDate(t time.Time, startHour int) string {
	lt := t.Local()
	if lt.Hour() < startHour {
		lt = lt.AddDate(0, 0, -1)
	}
	return lt.Format(BusinessDateFormat)
}

// BusinessTime возвращает время момента t по 30-часовой шкале "HH:MM":
// часы до startHour отображаются как hour+24 (01:30 -> "25:30"), чтобы
// внутри одной деловой даты ось времени была монотонной через полночь.
func BusinessTime(t time.Time, startHour int) string {
	lt := t.Local()
	hour := lt.Hour()
	if hour < startHour {
		hour += 24
	}
	return fmt.Sprintf("%02d:%02d", hour, lt.Minute())
}

// BillingPeriod возвращает границы расчетного периода, охватывающего ref.
// closingDay: день закрытия 1..28 либо 0 = конец календарного месяца.
// Перед выбором периода ref сдвигается назад на startHour часов, чтобы момент
// сразу после полуночи (но до начала деловых суток) относился к предыдущему
// календарному дню.
//
// Начало периода получает время startHour:00:00, конец - 23:59:59.999.
// Конечная дата клампится к closingDay внутри самой функции: при переходе
// через короткий месяц день конца иначе "уезжал" бы вперед за счет
// нормализации time.Date, и каждому вызывающему приходилось бы клампить
// вручную. Начало периода сохраняет нормализацию time.Date (closingDay+1,
// не существующий в коротком месяце, перетекает в следующий).
func BillingPeriod(ref time.Time, closingDay, startHour int) (start, end time.Time) {
	shifted := ref.Local().Add(-time.Duration(startHour) * time.Hour)
	year, month, day := shifted.Date()
	loc := shifted.Location()

	if closingDay == 0 {
		start = time.Date(year, month, 1, startHour, 0, 0, 0, loc)
		end = endOfDay(year, month+1, 0, loc) // День 0 следующего месяца = последний день текущего
		return start, end
	}

	if day > closingDay {
		start = time.Date(year, month, closingDay+1, startHour, 0, 0, 0, loc)
		end = closingEndOfMonth(year, month+1, closingDay, loc)
	} else {
		start = time.Date(year, month-1, closingDay+1, startHour, 0, 0, 0, loc)
		end = closingEndOfMonth(year, month, closingDay, loc)
	}
	return start, end
}

// DaysIn возвращает число дней в месяце.
func DaysIn(year int, month time.Month, loc *time.Location) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}

// closingEndOfMonth возвращает конец дня закрытия в указанном месяце,
// клампя день к длине месяца.
func closingEndOfMonth(year int, month time.Month, closingDay int, loc *time.Location) time.Time {
	// Нормализуем месяц (month может быть 13)
	norm := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	y, m, _ := norm.Date()
	day := closingDay
	if last := DaysIn(y, m, loc); day > last {
		day = last
	}
	return endOfDay(y, m, day, loc)
}

func endOfDay(year int, month time.Month, day int, loc *time.Location) time.Time {
	return time.Date(year, month, day, 23, 59, 59, 999_000_000, loc)
}
