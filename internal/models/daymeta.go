package models

// DayMetadata - аннотации одной деловой даты.
// Создается при первом закрытии смены за эту дату или при явном редактировании;
// автоматически никогда не удаляется.
type DayMetadata struct {
	Memo         string `json:"memo,omitempty"`
	BillingMonth string `json:"billingMonth,omitempty"` // Переопределение расчетного месяца, "YYYY/MM"
	RestMinutes  int    `json:"restMinutes"`
}
