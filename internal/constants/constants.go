package constants

// Payment methods
// Способы оплаты поездки
const (
	PAYMENT_CASH      = "CASH"
	PAYMENT_CARD      = "CARD"
	PAYMENT_NET       = "NET"
	PAYMENT_E_MONEY   = "E_MONEY"
	PAYMENT_TRANSPORT = "TRANSPORT"
	PAYMENT_DIDI      = "DIDI"
	PAYMENT_QR        = "QR"
	PAYMENT_TICKET    = "TICKET"
)

// Ride types
// Типы посадки
const (
	RIDE_FLOW     = "FLOW"     // Посадка с улицы ("нагон")
	RIDE_WAIT     = "WAIT"     // Ожидание на стоянке
	RIDE_APP      = "APP"      // Заказ через приложение
	RIDE_HIRE     = "HIRE"     // Почасовая аренда
	RIDE_RESERVE  = "RESERVE"  // Предварительный заказ
	RIDE_WIRELESS = "WIRELESS" // Диспетчерская рация
)

// Driver statuses for the public projection
// Статусы водителя для публичной проекции
const (
	STATUS_RIDING    = "riding"
	STATUS_ACTIVE    = "active"
	STATUS_BREAK     = "break"
	STATUS_COMPLETED = "completed"
	STATUS_OFFLINE   = "offline"
)

// Коллекции документного хранилища.
const (
	COLLECTION_USERS         = "users"
	COLLECTION_PUBLIC_STATUS = "public_status"
)

// Границы конфигурации. ShimebiDay == 0 означает "конец месяца".
const (
	MIN_SHIMEBI_DAY = 0
	MAX_SHIMEBI_DAY = 28

	DEFAULT_BUSINESS_START_HOUR = 9
	DEFAULT_SHIMEBI_DAY         = 0

	// Окно совпадения по времени при дедупликации импорта.
	IMPORT_TIME_MATCH_WINDOW_MS = 60_000
)

// PaymentMethodDisplayMap - отображаемые (японские) названия способов оплаты.
// Порядок по умолчанию задается DefaultPaymentMethods.
var PaymentMethodDisplayMap = map[string]string{
	PAYMENT_CASH:      "現金",
	PAYMENT_CARD:      "クレジット",
	PAYMENT_NET:       "ネット決済",
	PAYMENT_E_MONEY:   "電子マネー",
	PAYMENT_TRANSPORT: "交通系IC",
	PAYMENT_DIDI:      "DiDi",
	PAYMENT_QR:        "QR決済",
	PAYMENT_TICKET:    "チケット",
}

// RideTypeDisplayMap - отображаемые названия типов посадки.
var RideTypeDisplayMap = map[string]string{
	RIDE_FLOW:     "流し",
	RIDE_WAIT:     "付け待ち",
	RIDE_APP:      "アプリ",
	RIDE_HIRE:     "貸切",
	RIDE_RESERVE:  "予約",
	RIDE_WIRELESS: "無線",
}

// DefaultPaymentMethods - порядок способов оплаты по умолчанию.
var DefaultPaymentMethods = []string{
	PAYMENT_CASH, PAYMENT_CARD, PAYMENT_NET, PAYMENT_E_MONEY,
	PAYMENT_TRANSPORT, PAYMENT_DIDI, PAYMENT_QR, PAYMENT_TICKET,
}

// DefaultRideTypes - порядок типов посадки по умолчанию.
var DefaultRideTypes = []string{
	RIDE_FLOW, RIDE_WAIT, RIDE_APP, RIDE_HIRE, RIDE_RESERVE, RIDE_WIRELESS,
}

// --- Словари CSV-импорта ---

// Имена обязательных колонок CSV-выгрузки таксометра.
// Раскладка колонок определяется по заголовку, а не по фиксированным смещениям.
const (
	CSV_HEADER_BUSINESS_DATE = "営業日付"
	CSV_HEADER_FARE          = "運賃"
	CSV_HEADER_TOTAL_FARE    = "合計金額"
)

// CSVOptionalHeaderMap - необязательные колонки: имя заголовка -> внутренний ключ.
var CSVOptionalHeaderMap = map[string]string{
	"乗車時間":  "pickupTime",
	"降車時間":  "dropoffTime",
	"乗車地":   "pickupLocation",
	"降車地":   "dropoffLocation",
	"緯度":    "lat",
	"経度":    "lon",
	"男性":    "passengersMale",
	"女性":    "passengersFemale",
	"高速(往)": "tollOutbound",
	"高速(復)": "tollReturn",
	"非現金額":  "nonCashAmount",
	"備考":    "remarks",
	"種別":    "category",
}

// RemarksPaymentVocab - подстроки в колонках "備考"/"種別", по которым
// определяется способ оплаты. Первое совпадение выигрывает.
var RemarksPaymentVocab = []struct {
	Substring string
	Method    string
}{
	{"クレジット", PAYMENT_CARD},
	{"カード", PAYMENT_CARD},
	{"ネット", PAYMENT_NET},
	{"電子マネー", PAYMENT_E_MONEY},
	{"交通系", PAYMENT_TRANSPORT},
	{"DiDi", PAYMENT_DIDI},
	{"didi", PAYMENT_DIDI},
	{"QR", PAYMENT_QR},
	{"チケット", PAYMENT_TICKET},
}

// RemarksRideTypeVocab - подстроки для определения типа посадки.
var RemarksRideTypeVocab = []struct {
	Substring string
	RideType  string
}{
	{"アプリ", RIDE_APP},
	{"配車", RIDE_APP},
	{"貸切", RIDE_HIRE},
	{"予約", RIDE_RESERVE},
	{"無線", RIDE_WIRELESS},
	{"付け待ち", RIDE_WAIT},
}

// IsValidPaymentMethod проверяет принадлежность значения к перечислению способов оплаты.
func IsValidPaymentMethod(method string) bool {
	_, ok := PaymentMethodDisplayMap[method]
	return ok
}

// IsValidRideType проверяет принадлежность значения к перечислению типов посадки.
func IsValidRideType(rideType string) bool {
	_, ok := RideTypeDisplayMap[rideType]
	return ok
}
