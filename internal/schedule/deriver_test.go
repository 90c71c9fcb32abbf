package schedule

import (
	"math"
	"testing"
	"time"
)

func derived(t *testing.T, terms ContractTerms, payments []PaymentRecord, now time.Time) Derivation {
	t.Helper()
	d, _, err := Build(terms, payments, now)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	return d
}

func almostEqual(a, b float64) bool { return math.Abs(a-b) <= Epsilon }

// Переплата 148 при required 100 дает surplus 48, и required
// следующего месяца опускается до 52.
func TestDerive_OverpayCascades(t *testing.T) {
	terms := ContractTerms{StartDate: date(2024, 1, 1), MonthlyAmount: 100, PeriodMonths: 2}
	d := derived(t, terms, []PaymentRecord{
		monthly("p1", 148, PaymentPaid, date(2024, 2, 1), 1),
	}, date(2024, 2, 15))

	first := d.Items[0]
	if !first.IsSettled || first.Status != ItemOverpaid || !almostEqual(first.Surplus, 48) || !almostEqual(first.CarryForward, 48) {
		t.Errorf("первый месяц: %+v", first)
	}
	second := d.Items[1]
	if !almostEqual(second.RequiredAmount, 52) {
		t.Errorf("required второго месяца = %v, want 52", second.RequiredAmount)
	}
}

// Недоплата закрепляется за записью и вперед не переносится:
// следующий месяц требует полный номинал.
func TestDerive_ShortfallDoesNotCascade(t *testing.T) {
	terms := ContractTerms{StartDate: date(2024, 1, 1), MonthlyAmount: 100, PeriodMonths: 2}
	d := derived(t, terms, []PaymentRecord{
		monthly("p1", 60, PaymentUnderpaid, date(2024, 2, 1), 1),
	}, date(2024, 2, 15))

	first := d.Items[0]
	if !first.IsSettled || first.Status != ItemUnderpaid || !almostEqual(first.Shortfall, 40) || first.CarryForward != 0 {
		t.Errorf("первый месяц: %+v", first)
	}
	if !almostEqual(d.Items[1].RequiredAmount, 100) {
		t.Errorf("required второго месяца = %v, want 100", d.Items[1].RequiredAmount)
	}
	// Недоплата входит в общий остаток долга.
	if !almostEqual(d.RemainingDebt, 40+100) {
		t.Errorf("remainingDebt = %v, want 140", d.RemainingDebt)
	}
}

// Незакрытый месяц обрывает каскад: перенос в следующий месяц
// равен нулю, какой бы ни была переплата ранее.
func TestDerive_NoCascadeThroughGap(t *testing.T) {
	terms := ContractTerms{StartDate: date(2024, 1, 1), MonthlyAmount: 100, PeriodMonths: 3}
	d := derived(t, terms, []PaymentRecord{
		monthly("p1", 180, PaymentOverpaid, date(2024, 2, 1), 1),
		{
			ID: "p2", Type: PaymentTypeMonthly, TargetMonth: 2,
			SettledAmount: settled(20), Status: PaymentPending, RecordedAt: date(2024, 3, 1),
		},
	}, date(2024, 3, 15))

	if !almostEqual(d.Items[0].CarryForward, 80) {
		t.Fatalf("carryForward первого месяца = %v, want 80", d.Items[0].CarryForward)
	}
	// PENDING потребляет перенос в required, но сам переноса не дает.
	if !almostEqual(d.Items[1].RequiredAmount, 20) || d.Items[1].IsSettled {
		t.Errorf("второй месяц: %+v", d.Items[1])
	}
	if d.Items[1].Status != ItemPending {
		t.Errorf("status второго месяца = %s, want PENDING", d.Items[1].Status)
	}
	if !almostEqual(d.Items[2].RequiredAmount, 100) {
		t.Errorf("required третьего месяца = %v, want 100: каскад через открытый месяц", d.Items[2].RequiredAmount)
	}
}

// Кредит не создается и не исчезает: по закрытому префиксу
// sum(required) + sum(carryForward) - finalCarry == sum(nominal).
func TestDerive_CarryConservation(t *testing.T) {
	terms := ContractTerms{StartDate: date(2024, 1, 1), MonthlyAmount: 100, PeriodMonths: 4}
	d := derived(t, terms, []PaymentRecord{
		monthly("p1", 130, PaymentOverpaid, date(2024, 2, 1), 1),
		monthly("p2", 95, PaymentOverpaid, date(2024, 3, 1), 2),
		monthly("p3", 75, PaymentPaid, date(2024, 4, 1), 3),
	}, date(2024, 4, 15))

	var required, nominal, carries float64
	var finalCarry float64
	for _, it := range d.Items[:3] {
		if !it.IsSettled {
			t.Fatalf("префикс должен быть закрыт: %+v", it)
		}
		required += it.RequiredAmount
		nominal += it.NominalAmount
		carries += it.CarryForward
		finalCarry = it.CarryForward
	}
	if !almostEqual(required+carries-finalCarry, nominal) {
		t.Errorf("required=%v carries=%v final=%v nominal=%v", required, carries, finalCarry, nominal)
	}
}

func TestDerive_RejectedNeverSettles(t *testing.T) {
	terms := ContractTerms{StartDate: date(2024, 1, 1), MonthlyAmount: 100, PeriodMonths: 1}
	now := date(2024, 3, 1)

	withRejected := derived(t, terms, []PaymentRecord{
		monthly("r", 100, PaymentRejected, date(2024, 2, 1), 1),
	}, now)
	without := derived(t, terms, nil, now)

	if withRejected.Items[0].IsSettled {
		t.Error("REJECTED не может закрыть слот")
	}
	if withRejected.Items[0].Status != without.Items[0].Status ||
		!almostEqual(withRejected.RemainingDebt, without.RemainingDebt) {
		t.Errorf("результат с REJECTED отличается от результата без него: %+v vs %+v",
			withRejected.Items[0], without.Items[0])
	}
}

func TestDerive_DisplayStatuses(t *testing.T) {
	now := date(2024, 4, 10)
	terms := ContractTerms{StartDate: date(2024, 1, 1), MonthlyAmount: 100, PeriodMonths: 4}
	d := derived(t, terms, []PaymentRecord{
		monthly("p1", 100, PaymentPaid, date(2024, 2, 1), 1),
		{
			ID: "p2", Type: PaymentTypeMonthly, TargetMonth: 2,
			SettledAmount: settled(100), Status: PaymentPending, RecordedAt: date(2024, 3, 2),
		},
	}, now)

	want := []ItemStatus{ItemPaid, ItemPending, ItemOverdue, ItemUpcoming}
	for i, st := range want {
		if d.Items[i].Status != st {
			t.Errorf("monthIndex=%d: status=%s, want %s", d.Items[i].MonthIndex, d.Items[i].Status, st)
		}
	}
}

// Сквозной сценарий из практики: переплата первого месяца ровно
// покрывает остаток второго — долг по договору нулевой.
func TestDerive_EndToEnd(t *testing.T) {
	terms := ContractTerms{StartDate: date(2024, 1, 1), MonthlyAmount: 100, PeriodMonths: 2}
	d := derived(t, terms, []PaymentRecord{
		monthly("p1", 148, PaymentPaid, date(2024, 2, 1), 1),
		monthly("p2", 52, PaymentPaid, date(2024, 3, 5), 2),
	}, date(2024, 3, 10))

	for _, it := range d.Items {
		if !it.IsSettled {
			t.Errorf("monthIndex=%d должен быть закрыт", it.MonthIndex)
		}
		if it.Shortfall != 0 {
			t.Errorf("monthIndex=%d: shortfall=%v, want 0", it.MonthIndex, it.Shortfall)
		}
	}
	if !almostEqual(d.RemainingDebt, 0) {
		t.Errorf("remainingDebt = %v, want 0", d.RemainingDebt)
	}
	if d.PaidCount != 2 {
		t.Errorf("paidCount = %d, want 2", d.PaidCount)
	}
}

func TestDerive_FallbackToRequestedAmount(t *testing.T) {
	// Старые записи без settledAmount: в зачет идет requestedAmount.
	terms := ContractTerms{StartDate: date(2024, 1, 1), MonthlyAmount: 100, PeriodMonths: 1}
	c := date(2024, 2, 1)
	d := derived(t, terms, []PaymentRecord{{
		ID: "legacy", Type: PaymentTypeMonthly, TargetMonth: 1,
		RequestedAmount: 100, Status: PaymentPaid,
		RecordedAt: c, ConfirmedAt: &c,
	}}, date(2024, 2, 15))

	if !d.Items[0].IsSettled || d.Items[0].Status != ItemPaid {
		t.Errorf("legacy запись должна закрыть месяц: %+v", d.Items[0])
	}
}

func TestDerive_ZeroSettledIsNotLegacy(t *testing.T) {
	// Явный ноль в settledAmount — это зачтенный ноль, а не старая
	// запись: requestedAmount подставлять нельзя.
	terms := ContractTerms{StartDate: date(2024, 1, 1), MonthlyAmount: 100, PeriodMonths: 1}
	c := date(2024, 2, 1)
	d := derived(t, terms, []PaymentRecord{{
		ID: "zero", Type: PaymentTypeMonthly, TargetMonth: 1,
		RequestedAmount: 100, SettledAmount: settled(0),
		Status: PaymentUnderpaid, RecordedAt: c, ConfirmedAt: &c,
	}}, date(2024, 2, 15))

	first := d.Items[0]
	if first.Status != ItemUnderpaid || !almostEqual(first.Shortfall, 100) {
		t.Errorf("нулевой зачет должен дать недоплату на весь номинал: %+v", first)
	}
	if !almostEqual(d.TotalPaid, 0) {
		t.Errorf("totalPaid = %v, want 0", d.TotalPaid)
	}
}

func TestDelayDays(t *testing.T) {
	terms := ContractTerms{StartDate: date(2024, 1, 1), MonthlyAmount: 100, PeriodMonths: 2}
	d := derived(t, terms, nil, date(2024, 2, 11))

	if got := DelayDays(d.Items, date(2024, 2, 11)); got != 10 {
		t.Errorf("delayDays = %d, want 10", got)
	}
	if got := DelayDays(d.Items, date(2024, 1, 15)); got != 0 {
		t.Errorf("delayDays до срока = %d, want 0", got)
	}

	next, ok := NextDue(d.Items)
	if !ok || next.MonthIndex != 1 {
		t.Errorf("nextDue = %+v, want monthIndex=1", next)
	}
}
