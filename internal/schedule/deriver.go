// internal/schedule/deriver.go
package schedule

import "time"

// Derivation — итог одного прохода по графику: строки с финальными
// статусами и сводные суммы по договору.
type Derivation struct {
	Items         []ScheduleItem
	RemainingDebt float64
	TotalPaid     float64
	PaidCount     int
}

// Derive финализирует график одним прямым проходом с переносом
// переплаты. Переплата месяца уменьшает required следующего;
// неоплаченный или PENDING месяц обнуляет перенос — нельзя быть
// «впереди графика», пока более ранний месяц открыт. Недоплата
// закрепляется за конкретной записью платежа и вперед не переносится:
// месяц считается закрытым, долг гасится отдельным действием по id записи.
func Derive(items []ScheduleItem, now time.Time) Derivation {
	out := make([]ScheduleItem, len(items))
	copy(out, items)

	var d Derivation
	carry := 0.0

	for i := range out {
		it := &out[i]

		it.RequiredAmount = it.NominalAmount - carry
		if it.RequiredAmount < 0 {
			it.RequiredAmount = 0
		}
		it.CarryForward = 0
		it.Shortfall = 0
		it.Surplus = 0

		p := it.MatchedPayment
		switch {
		case p == nil:
			it.IsSettled = false
			it.Status = ItemUpcoming
			if it.DueDate.Before(now) {
				it.Status = ItemOverdue
			}
			d.RemainingDebt += it.RequiredAmount

		case p.Status == PaymentPending:
			it.IsSettled = false
			it.Status = ItemPending
			d.RemainingDebt += it.RequiredAmount

		default:
			paid := p.Paid()
			d.TotalPaid += paid
			diff := paid - it.RequiredAmount

			switch {
			case diff > Epsilon:
				it.IsSettled = true
				it.Surplus = diff
				it.CarryForward = diff
				it.Status = ItemOverpaid
			case diff < -Epsilon:
				// Месяц закрыт, но недоплата остается долгом
				// по этой записи; повторно месяц не открывается.
				it.IsSettled = true
				it.Shortfall = -diff
				it.Status = ItemUnderpaid
				d.RemainingDebt += it.Shortfall
			default:
				it.IsSettled = true
				it.Status = ItemPaid
			}
		}

		if it.IsSettled {
			d.PaidCount++
		}
		carry = it.CarryForward
	}

	d.Items = out
	return d
}

// NextDue возвращает первую незакрытую строку графика, если она есть.
func NextDue(items []ScheduleItem) (ScheduleItem, bool) {
	for _, it := range items {
		if !it.IsSettled {
			return it, true
		}
	}
	return ScheduleItem{}, false
}

// DelayDays — просрочка по договору в днях: возраст самой старой
// незакрытой строки с истекшим сроком. 0, если просрочки нет.
func DelayDays(items []ScheduleItem, now time.Time) int {
	for _, it := range items {
		if it.IsSettled {
			continue
		}
		if it.DueDate.Before(now) {
			return int(now.Sub(it.DueDate).Hours() / 24)
		}
		return 0
	}
	return 0
}

// Build прогоняет весь конвейер: генерация графика, привязка платежей,
// вывод статусов. Единственная точка входа для обработчиков.
func Build(terms ContractTerms, payments []PaymentRecord, now time.Time) (Derivation, []PaymentRecord, error) {
	items, err := Generate(terms)
	if err != nil {
		return Derivation{}, nil, err
	}
	matched := Match(items, payments)
	return Derive(matched.Items, now), matched.Anomalies, nil
}
