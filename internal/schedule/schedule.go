// internal/schedule/schedule.go
package schedule

import (
	"fmt"
	"time"
)

// PaymentType определяет, какой вид взноса закрывает платеж.
type PaymentType string

const (
	PaymentTypeInitial PaymentType = "initial"
	PaymentTypeMonthly PaymentType = "monthly"
)

// PaymentStatus — статус записи платежа со стороны бэкенда (кассы).
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentPaid      PaymentStatus = "PAID"
	PaymentUnderpaid PaymentStatus = "UNDERPAID"
	PaymentOverpaid  PaymentStatus = "OVERPAID"
	PaymentRejected  PaymentStatus = "REJECTED"
)

// ItemStatus — производный статус строки графика для отображения.
type ItemStatus string

const (
	ItemPaid      ItemStatus = "PAID"
	ItemOverpaid  ItemStatus = "OVERPAID"
	ItemUnderpaid ItemStatus = "UNDERPAID"
	ItemPending   ItemStatus = "PENDING"
	ItemOverdue   ItemStatus = "OVERDUE"
	ItemUpcoming  ItemStatus = "UPCOMING"
)

// Epsilon — допуск при сравнении денежных сумм (1 тийин/цент),
// чтобы погрешность float64 не превращала точный платеж в недоплату.
const Epsilon = 0.01

// ContractTerms — неизменяемые условия рассрочки.
// Срок первого ежемесячного взноса = StartDate + 1 месяц.
type ContractTerms struct {
	StartDate      time.Time  `json:"startDate"`
	MonthlyAmount  float64    `json:"monthlyAmount"`
	PeriodMonths   int        `json:"periodMonths"`
	InitialAmount  float64    `json:"initialAmount"`
	InitialDueDate *time.Time `json:"initialDueDate,omitempty"`
}

// PaymentRecord — зафиксированное бэкендом событие оплаты.
// ConfirmedAt заполняется кассой при подтверждении и является
// авторитетным для хронологического порядка; до подтверждения nil.
// SettledAmount — указатель: у старых записей поля не было вовсе,
// и «нет поля» нельзя путать с «зачтено ноль».
type PaymentRecord struct {
	ID              string        `json:"id"`
	Type            PaymentType   `json:"type"`
	TargetMonth     int           `json:"targetMonth,omitempty"`
	RequestedAmount float64       `json:"requestedAmount"`
	SettledAmount   *float64      `json:"settledAmount,omitempty"`
	ExpectedAmount  float64       `json:"expectedAmount"`
	Shortfall       float64       `json:"shortfall"`
	Surplus         float64       `json:"surplus"`
	Status          PaymentStatus `json:"status"`
	RecordedAt      time.Time     `json:"recordedAt"`
	ConfirmedAt     *time.Time    `json:"confirmedAt,omitempty"`
}

// Committed сообщает, учитывается ли запись как состоявшийся платеж.
// PENDING блокирует повторную отправку, но слот графика не закрывает;
// REJECTED для сопоставления не существует вовсе.
func (p PaymentRecord) Committed() bool {
	return p.Status != PaymentPending && p.Status != PaymentRejected
}

// Paid возвращает сумму, зачтенную в счет взноса. У старых записей
// поля settledAmount еще не было — тогда берем requestedAmount.
func (p PaymentRecord) Paid() float64 {
	if p.SettledAmount != nil {
		return *p.SettledAmount
	}
	return p.RequestedAmount
}

// ScheduleItem — одна строка графика платежей. Не хранится нигде:
// пересчитывается из условий договора и списка платежей при каждом запросе.
type ScheduleItem struct {
	MonthIndex     int            `json:"monthIndex"` // 0 — первоначальный взнос
	DueDate        time.Time      `json:"dueDate"`
	NominalAmount  float64        `json:"nominalAmount"`
	RequiredAmount float64        `json:"requiredAmount"`
	MatchedPayment *PaymentRecord `json:"matchedPayment,omitempty"`
	IsSettled      bool           `json:"isSettled"`
	CarryForward   float64        `json:"carryForward"`
	Shortfall      float64        `json:"shortfall"`
	Surplus        float64        `json:"surplus"`
	Status         ItemStatus     `json:"status"`
}

// InvalidTermsError возвращается генератором при некорректных условиях
// договора. Отрицательные суммы и сроки не приводятся к нулю молча.
type InvalidTermsError struct {
	Field  string
	Reason string
}

func (e *InvalidTermsError) Error() string {
	return fmt.Sprintf("недопустимые условия договора: %s — %s", e.Field, e.Reason)
}
