package models

import "time"

// SalesRecord - одна завершенная поездка.
// Запись изменяется только целиком (повторное сохранение всех полей под тем же ID),
// частичных обновлений нет.
type SalesRecord struct {
	ID               string     `json:"id"`
	Timestamp        time.Time  `json:"timestamp"` // Момент поездки, а не деловая дата
	Amount           int        `json:"amount"`    // Тариф, иены
	Toll             int        `json:"toll"`      // Платные дороги, иены
	PaymentMethod    string     `json:"paymentMethod"`
	NonCashAmount    int        `json:"nonCashAmount"` // Безналичная часть суммы (amount+toll)
	RideType         string     `json:"rideType"`
	PickupLocation   string     `json:"pickupLocation,omitempty"`
	DropoffLocation  string     `json:"dropoffLocation,omitempty"`
	PickupCoords     string     `json:"pickupCoords,omitempty"`
	DropoffCoords    string     `json:"dropoffCoords,omitempty"`
	PassengersMale   int        `json:"passengersMale"`
	PassengersFemale int        `json:"passengersFemale"`
	Remarks          string     `json:"remarks,omitempty"` // Свободный текст
	Tags             RemarkTags `json:"tags"`
	IsBadCustomer    bool       `json:"isBadCustomer"`
}

// RemarkTags - структурированные пометки, которые раньше кодировались
// подстроками внутри свободного текста Remarks.
type RemarkTags struct {
	Stopovers     []string `json:"stopovers,omitempty"`     // Цепочка промежуточных остановок
	PaymentVendor string   `json:"paymentVendor,omitempty"` // Вендор оплаты через приложение
}

// Total возвращает полную стоимость поездки (тариф + платные дороги).
func (r SalesRecord) Total() int {
	return r.Amount + r.Toll
}
