package actions

import (
	"context"
	"testing"
	"time"

	"github.com/firdavsdev07/bot/internal/backend"
	"github.com/firdavsdev07/bot/internal/schedule"
)

func settled(v float64) *float64 { return &v }

type fakeBackend struct {
	snap *backend.ContractSnapshot

	monthlyCalls   []backend.MonthlyPaymentRequest
	payAllCalls    []backend.PayAllRequest
	remainingCalls []backend.PayRemainingRequest

	// Сколько чтений договора выдержать до появления новой записи.
	appearAfter int
	reads       int

	// Обрыв контекста после указанного числа чтений.
	cancelAfter int
	cancel      context.CancelFunc
}

func (f *fakeBackend) Contract(_ context.Context, _ string) (*backend.ContractSnapshot, error) {
	f.reads++
	if f.cancel != nil && f.reads >= f.cancelAfter {
		f.cancel()
	}
	snap := *f.snap
	if f.appearAfter > 0 && f.reads > f.appearAfter {
		snap.Payments = append(append([]schedule.PaymentRecord{}, snap.Payments...), schedule.PaymentRecord{
			ID:     "new",
			Type:   schedule.PaymentTypeMonthly,
			Status: schedule.PaymentPending,
		})
	}
	return &snap, nil
}

func (f *fakeBackend) PayMonthly(_ context.Context, req backend.MonthlyPaymentRequest) error {
	f.monthlyCalls = append(f.monthlyCalls, req)
	return nil
}

func (f *fakeBackend) PayAll(_ context.Context, req backend.PayAllRequest) error {
	f.payAllCalls = append(f.payAllCalls, req)
	return nil
}

func (f *fakeBackend) PayRemaining(_ context.Context, req backend.PayRemainingRequest) error {
	f.remainingCalls = append(f.remainingCalls, req)
	return nil
}

type fakeReminders struct {
	upserts int
	month   int
}

func (f *fakeReminders) Upsert(_ context.Context, _ string, targetMonth int, _ time.Time, _ string) error {
	f.upserts++
	f.month = targetMonth
	return nil
}

func newService(fb *fakeBackend, fr *fakeReminders) *Service {
	s := New(fb, fr)
	s.pollInterval = time.Millisecond
	return s
}

func snapWith(payments ...schedule.PaymentRecord) *backend.ContractSnapshot {
	return &backend.ContractSnapshot{
		ContractID: "c1",
		Terms: schedule.ContractTerms{
			StartDate:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			MonthlyAmount: 100,
			PeriodMonths:  3,
		},
		Payments: payments,
	}
}

func TestPayInstallment_BlockedByPendingMonth(t *testing.T) {
	fb := &fakeBackend{snap: snapWith(schedule.PaymentRecord{
		ID: "p1", Type: schedule.PaymentTypeMonthly, TargetMonth: 2,
		Status: schedule.PaymentPending,
	})}
	s := newService(fb, &fakeReminders{})

	_, err := s.PayInstallment(context.Background(), "c1", 2, 100, "")
	if !IsBlocked(err) {
		t.Fatalf("ожидалась блокировка, err = %v", err)
	}
	if len(fb.monthlyCalls) != 0 {
		t.Error("запрос не должен был уйти на бэкенд")
	}

	// Другой месяц не заблокирован.
	if _, err := s.PayInstallment(context.Background(), "c1", 1, 100, ""); err != nil {
		t.Errorf("месяц без PENDING: err = %v", err)
	}
}

func TestPayAll_BlockedByAnyPending(t *testing.T) {
	fb := &fakeBackend{snap: snapWith(schedule.PaymentRecord{
		ID: "p1", Type: schedule.PaymentTypeMonthly, TargetMonth: 1,
		Status: schedule.PaymentPending,
	})}
	s := newService(fb, &fakeReminders{})

	_, err := s.PayAllRemaining(context.Background(), "c1", 300)
	if !IsBlocked(err) {
		t.Fatalf("ожидалась блокировка, err = %v", err)
	}
	if len(fb.payAllCalls) != 0 {
		t.Error("запрос не должен был уйти на бэкенд")
	}
}

func TestPayInstallment_PollsUntilRecordAppears(t *testing.T) {
	fb := &fakeBackend{snap: snapWith(), appearAfter: 2}
	s := newService(fb, &fakeReminders{})

	snap, err := s.PayInstallment(context.Background(), "c1", 1, 100, "oylik")
	if err != nil {
		t.Fatalf("err = %v", err)
	}
	if len(fb.monthlyCalls) != 1 {
		t.Fatalf("monthlyCalls = %d, want 1", len(fb.monthlyCalls))
	}
	if fb.monthlyCalls[0].IdempotencyKey == "" {
		t.Error("нет ключа идемпотентности")
	}
	if len(snap.Payments) != 1 {
		t.Errorf("после опроса ожидалась новая запись, payments = %d", len(snap.Payments))
	}
}

func TestPayInstallment_CancelledPollReturnsLastSnapshot(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Запись так и не появляется, а контекст обрывается после первого
	// чтения опроса. Платеж уже отправлен, поэтому это не ошибка:
	// возвращается последний удачный срез.
	fb := &fakeBackend{snap: snapWith(), cancelAfter: 2, cancel: cancel}
	s := newService(fb, &fakeReminders{})

	snap, err := s.PayInstallment(ctx, "c1", 1, 100, "")
	if err != nil {
		t.Fatalf("обрыв опроса после отправки: err = %v", err)
	}
	if snap == nil {
		t.Fatal("ожидался последний удачный срез договора")
	}
	if len(fb.monthlyCalls) != 1 {
		t.Errorf("monthlyCalls = %d, want 1", len(fb.monthlyCalls))
	}
}

func TestPayShortfall_RequiresCommittedRecord(t *testing.T) {
	confirmed := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	fb := &fakeBackend{snap: snapWith(
		schedule.PaymentRecord{
			ID: "under", Type: schedule.PaymentTypeMonthly, TargetMonth: 1,
			SettledAmount: settled(60), Shortfall: 40,
			Status: schedule.PaymentUnderpaid, ConfirmedAt: &confirmed,
		},
		schedule.PaymentRecord{
			ID: "rej", Type: schedule.PaymentTypeMonthly, TargetMonth: 2,
			Status: schedule.PaymentRejected,
		},
	)}
	s := newService(fb, &fakeReminders{})

	if _, err := s.PayShortfall(context.Background(), "c1", "under", 40); err != nil {
		t.Errorf("гашение недоплаты: err = %v", err)
	}
	if len(fb.remainingCalls) != 1 || fb.remainingCalls[0].PaymentID != "under" {
		t.Errorf("remainingCalls = %+v", fb.remainingCalls)
	}

	if _, err := s.PayShortfall(context.Background(), "c1", "rej", 40); !IsBlocked(err) {
		t.Errorf("REJECTED запись должна блокироваться, err = %v", err)
	}
	if _, err := s.PayShortfall(context.Background(), "c1", "missing", 40); !IsBlocked(err) {
		t.Errorf("отсутствующая запись должна блокироваться, err = %v", err)
	}
}

func TestPostponeReminder(t *testing.T) {
	confirmed := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	fb := &fakeBackend{snap: snapWith(schedule.PaymentRecord{
		ID: "p1", Type: schedule.PaymentTypeMonthly, TargetMonth: 1,
		SettledAmount: settled(100), Status: schedule.PaymentPaid, ConfirmedAt: &confirmed,
	})}
	fr := &fakeReminders{}
	s := newService(fb, fr)

	remindAt := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	if err := s.PostponeReminder(context.Background(), "c1", 2, remindAt, "qo'ng'iroq"); err != nil {
		t.Fatalf("err = %v", err)
	}
	if fr.upserts != 1 || fr.month != 2 {
		t.Errorf("reminder upsert: %+v", fr)
	}

	// Закрытый месяц и несуществующий месяц — блокировка.
	if err := s.PostponeReminder(context.Background(), "c1", 1, remindAt, ""); !IsBlocked(err) {
		t.Errorf("закрытый месяц: err = %v", err)
	}
	if err := s.PostponeReminder(context.Background(), "c1", 9, remindAt, ""); !IsBlocked(err) {
		t.Errorf("несуществующий месяц: err = %v", err)
	}
}

func TestPay_InvalidAmount(t *testing.T) {
	s := newService(&fakeBackend{snap: snapWith()}, &fakeReminders{})
	if _, err := s.PayInstallment(context.Background(), "c1", 1, 0, ""); !IsBlocked(err) {
		t.Errorf("нулевая сумма: err = %v", err)
	}
	if _, err := s.PayAllRemaining(context.Background(), "c1", -5); !IsBlocked(err) {
		t.Errorf("отрицательная сумма: err = %v", err)
	}
}
