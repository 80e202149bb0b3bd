// Пакет reconcile - единственная точка принятия решения о том, в какой
// раздел (открытая смена или история) попадает запись о поездке.
// Все вызывающие (ручное сохранение, правка, импорт) проходят через него,
// поэтому инвариант "ID записи присутствует не более чем в одном разделе"
// держится после каждой мутации.
package reconcile

import (
	"sort"

	"github.com/toppo2000-ai/Taxi-Navigator-sub002/internal/calendar"
	"github.com/toppo2000-ai/Taxi-Navigator-sub002/internal/models"
)

// Partition - раздел, которому принадлежит запись.
type Partition int

const (
	PartitionHistory Partition = iota
	PartitionShift
)

// Target возвращает целевой раздел для записи: открытая смена, если ее
// деловая дата совпадает с деловой датой смены, иначе история.
func Target(rec models.SalesRecord, shift *models.Shift, startHour int) Partition {
	if shift == nil {
		return PartitionHistory
	}
	recDate := calendar.BusinessDate(rec.Timestamp, startHour)
	shiftDate := calendar.BusinessDate(shift.StartTime, startHour)
	if recDate == shiftDate {
		return PartitionShift
	}
	return PartitionHistory
}

// Place вставляет либо обновляет запись, перемещая ее между разделами,
// если правка изменила деловую дату. Запись с уже существующим ID заменяется
// целиком; оба раздела после мутации отсортированы по времени.
// Возвращает новые срезы смены и истории.
func Place(rec models.SalesRecord, shift *models.Shift, history []models.SalesRecord, startHour int) (shiftRecords, newHistory []models.SalesRecord) {
	shiftRecords = nil
	if shift != nil {
		shiftRecords = shift.Records
	}

	// Сначала убираем прежнюю версию записи, где бы она ни была
	shiftRecords = removeByID(shiftRecords, rec.ID)
	newHistory = removeByID(history, rec.ID)

	if Target(rec, shift, startHour) == PartitionShift {
		shiftRecords = append(shiftRecords, rec)
	} else {
		newHistory = append(newHistory, rec)
	}

	SortByTimestamp(shiftRecords)
	SortByTimestamp(newHistory)
	return shiftRecords, newHistory
}

// Remove удаляет запись по ID из любого раздела, где она находится.
// Отсутствие записи не считается ошибкой (операция идемпотентна).
func Remove(id string, shift *models.Shift, history []models.SalesRecord) (shiftRecords, newHistory []models.SalesRecord) {
	shiftRecords = nil
	if shift != nil {
		shiftRecords = removeByID(shift.Records, id)
	}
	return shiftRecords, removeByID(history, id)
}

// Repartition массово пересобирает разделы: записи с деловой датой смены
// идут в смену, остальные - в историю. Применяется после пакетного импорта.
func Repartition(all []models.SalesRecord, shift *models.Shift, startHour int) (shiftRecords, history []models.SalesRecord) {
	for _, rec := range all {
		if Target(rec, shift, startHour) == PartitionShift {
			shiftRecords = append(shiftRecords, rec)
		} else {
			history = append(history, rec)
		}
	}
	SortByTimestamp(shiftRecords)
	SortByTimestamp(history)
	return shiftRecords, history
}

// SortByTimestamp сортирует записи по возрастанию времени поездки.
func SortByTimestamp(records []models.SalesRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp.Before(records[j].Timestamp)
	})
}

func removeByID(records []models.SalesRecord, id string) []models.SalesRecord {
	out := records[:0:0]
	for _, r := range records {
		if r.ID != id {
			out = append(out, r)
		}
	}
	return out
}
