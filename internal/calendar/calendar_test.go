package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func localTime(year int, month time.Month, day, hour, min int) time.Time {
	return time.Date(year, month, day, hour, min, 0, 0, time.Local)
}

func TestBusinessDateRollover(t *testing.T) {
	// До начала деловых суток - предыдущая календарная дата
	assert.Equal(t, "2024/03/24", BusinessDate(localTime(2024, time.March, 25, 8, 59), 9))
	// Ровно в час начала - текущая календарная дата
	assert.Equal(t, "2024/03/25", BusinessDate(localTime(2024, time.March, 25, 9, 0), 9))
	// Поздний вечер остается в своей дате
	assert.Equal(t, "2024/03/25", BusinessDate(localTime(2024, time.March, 25, 23, 30), 9))
}

func TestBusinessDateMidnightCrossing(t *testing.T) {
	// Поездка в 01:00 относится к предыдущим деловым суткам
	assert.Equal(t, "2024/03/25", BusinessDate(localTime(2024, time.March, 26, 1, 0), 9))
	// Переход через границу месяца
	assert.Equal(t, "2024/03/31", BusinessDate(localTime(2024, time.April, 1, 2, 15), 9))
	// Переход через границу года
	assert.Equal(t, "2023/12/31", BusinessDate(localTime(2024, time.January, 1, 3, 0), 9))
}

func TestBusinessDateDeterminism(t *testing.T) {
	ts := localTime(2024, time.July, 14, 4, 42)
	assert.Equal(t, BusinessDate(ts, 9), BusinessDate(ts, 9))
}

func TestBusinessTimeThirtyHourClock(t *testing.T) {
	assert.Equal(t, "25:30", BusinessTime(localTime(2024, time.March, 26, 1, 30), 9))
	assert.Equal(t, "10:05", BusinessTime(localTime(2024, time.March, 25, 10, 5), 9))
	assert.Equal(t, "24:00", BusinessTime(localTime(2024, time.March, 26, 0, 0), 9))
	// startHour=0: сдвига нет вовсе
	assert.Equal(t, "01:30", BusinessTime(localTime(2024, time.March, 26, 1, 30), 0))
}

func TestBillingPeriodAfterClosingDay(t *testing.T) {
	// 25 марта при дне закрытия 20: период 21 марта .. 20 апреля
	start, end := BillingPeriod(localTime(2024, time.March, 25, 12, 0), 20, 9)

	assert.Equal(t, localTime(2024, time.March, 21, 9, 0), start)
	assert.Equal(t, 2024, end.Year())
	assert.Equal(t, time.April, end.Month())
	assert.Equal(t, 20, end.Day())
	assert.Equal(t, 23, end.Hour())
	assert.Equal(t, 59, end.Minute())
}

func TestBillingPeriodBeforeClosingDay(t *testing.T) {
	// 15 марта при дне закрытия 20: период 21 февраля .. 20 марта
	start, end := BillingPeriod(localTime(2024, time.March, 15, 12, 0), 20, 9)

	assert.Equal(t, localTime(2024, time.February, 21, 9, 0), start)
	assert.Equal(t, time.March, end.Month())
	assert.Equal(t, 20, end.Day())
}

func TestBillingPeriodStartHourShift(t *testing.T) {
	// 21 марта 05:00 - еще до начала деловых суток, поэтому точка отсчета
	// сдвигается в 20 марта и период остается февральским
	start, end := BillingPeriod(localTime(2024, time.March, 21, 5, 0), 20, 9)

	assert.Equal(t, localTime(2024, time.February, 21, 9, 0), start)
	assert.Equal(t, 20, end.Day())
	assert.Equal(t, time.March, end.Month())
}

func TestBillingPeriodEndOfMonth(t *testing.T) {
	// closingDay=0: календарный месяц целиком
	start, end := BillingPeriod(localTime(2024, time.February, 10, 12, 0), 0, 9)

	assert.Equal(t, localTime(2024, time.February, 1, 9, 0), start)
	assert.Equal(t, time.February, end.Month())
	assert.Equal(t, 29, end.Day()) // 2024 - високосный
}

func TestBillingPeriodEndClampShortMonth(t *testing.T) {
	// День закрытия, которого нет в феврале: конец клампится к последнему дню
	_, end := BillingPeriod(localTime(2023, time.February, 10, 12, 0), 28, 9)
	require.Equal(t, time.February, end.Month())
	assert.Equal(t, 28, end.Day())

	_, end = BillingPeriod(localTime(2023, time.February, 10, 12, 0), 30, 9)
	require.Equal(t, time.February, end.Month())
	assert.Equal(t, 28, end.Day())
}

func TestBillingPeriodYearBoundary(t *testing.T) {
	// 5 января при дне закрытия 20: период 21 декабря .. 20 января
	start, end := BillingPeriod(localTime(2024, time.January, 5, 12, 0), 20, 9)

	assert.Equal(t, localTime(2023, time.December, 21, 9, 0), start)
	assert.Equal(t, 2024, end.Year())
	assert.Equal(t, time.January, end.Month())
	assert.Equal(t, 20, end.Day())
}

func TestBillingPeriodContainsReference(t *testing.T) {
	for day := 1; day <= 28; day++ {
		ref := localTime(2024, time.May, day, 15, 0)
		start, end := BillingPeriod(ref, 20, 9)
		assert.True(t, !ref.Before(start), "ref %v раньше начала периода %v", ref, start)
		assert.True(t, !ref.After(end), "ref %v позже конца периода %v", ref, end)
	}
}

func TestDaysIn(t *testing.T) {
	assert.Equal(t, 29, DaysIn(2024, time.February, time.Local))
	assert.Equal(t, 28, DaysIn(2023, time.February, time.Local))
	assert.Equal(t, 31, DaysIn(2024, time.December, time.Local))
}
