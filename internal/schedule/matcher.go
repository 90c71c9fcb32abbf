// internal/schedule/matcher.go
package schedule

import "sort"

// MatchResult — график с привязанными платежами плюс записи,
// которым не нашлось слота. Лишние платежи — признак рассинхрона
// данных на бэкенде, их нельзя молча отбрасывать.
type MatchResult struct {
	Items     []ScheduleItem
	Anomalies []PaymentRecord
}

// settleTime — момент, по которому упорядочиваются платежи:
// подтверждение кассы, а для еще не подтвержденных — момент подачи.
func settleTime(p PaymentRecord) int64 {
	if p.ConfirmedAt != nil {
		return p.ConfirmedAt.UnixNano()
	}
	return p.RecordedAt.UnixNano()
}

// Match привязывает записи платежей к строкам графика. Сопоставление
// позиционное: k-й по хронологии подтверждения ежемесячный платеж
// закрывает k-й месяц, независимо от targetMonth — платежи всегда
// гасят самый старый открытый месяц. targetMonth остается
// справочным полем (блокировка повторной подачи за тот же месяц).
// Функция чистая: входные срезы не изменяются.
func Match(items []ScheduleItem, payments []PaymentRecord) MatchResult {
	out := make([]ScheduleItem, len(items))
	copy(out, items)

	var initials, monthlies []PaymentRecord
	var anomalies []PaymentRecord

	for _, p := range payments {
		// REJECTED считается несуществующим: слот остается открытым.
		if p.Status == PaymentRejected {
			continue
		}
		switch p.Type {
		case PaymentTypeInitial:
			initials = append(initials, p)
		default:
			monthlies = append(monthlies, p)
		}
	}

	sort.SliceStable(monthlies, func(i, j int) bool {
		ti, tj := settleTime(monthlies[i]), settleTime(monthlies[j])
		if ti == tj {
			return monthlies[i].RecordedAt.Before(monthlies[j].RecordedAt)
		}
		return ti < tj
	})

	// Индексы строк по номеру месяца: в графике без первоначального
	// взноса позиция в срезе не совпадает с MonthIndex.
	byMonth := make(map[int]int, len(out))
	for i := range out {
		byMonth[out[i].MonthIndex] = i
	}

	// Первоначальный взнос один; дубликаты и взнос без слота — аномалия.
	for i, p := range initials {
		idx, ok := byMonth[0]
		if !ok || i > 0 {
			anomalies = append(anomalies, p)
			continue
		}
		rec := p
		out[idx].MatchedPayment = &rec
	}

	for k, p := range monthlies {
		idx, ok := byMonth[k+1]
		if !ok {
			anomalies = append(anomalies, p)
			continue
		}
		rec := p
		out[idx].MatchedPayment = &rec
	}

	return MatchResult{Items: out, Anomalies: anomalies}
}

// HasPendingForMonth сообщает, есть ли неподтвержденный платеж,
// поданный за указанный месяц. Используется блокировкой повторной
// подачи — здесь работает именно targetMonth, а не позиция.
func HasPendingForMonth(payments []PaymentRecord, month int) bool {
	for _, p := range payments {
		if p.Status == PaymentPending && p.TargetMonth == month {
			return true
		}
	}
	return false
}

// HasPending сообщает, есть ли хоть один неподтвержденный платеж по договору.
func HasPending(payments []PaymentRecord) bool {
	for _, p := range payments {
		if p.Status == PaymentPending {
			return true
		}
	}
	return false
}
