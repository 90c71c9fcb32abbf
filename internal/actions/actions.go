// internal/actions/actions.go
package actions

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/firdavsdev07/bot/internal/backend"
	"github.com/firdavsdev07/bot/internal/schedule"
)

// API — часть клиента бэкенда, нужная слою действий.
type API interface {
	Contract(ctx context.Context, id string) (*backend.ContractSnapshot, error)
	PayMonthly(ctx context.Context, req backend.MonthlyPaymentRequest) error
	PayAll(ctx context.Context, req backend.PayAllRequest) error
	PayRemaining(ctx context.Context, req backend.PayRemainingRequest) error
}

// ReminderStore — отдельный контекст напоминаний. Напоминание
// информационно: срок платежа и расчет долга оно не меняет.
type ReminderStore interface {
	Upsert(ctx context.Context, contractID string, targetMonth int, remindAt time.Time, comment string) error
}

// BlockedError — нарушение клиентской предпроверки. Сообщение
// показывается плательщику как есть, на его языке.
type BlockedError struct {
	Message string
}

func (e *BlockedError) Error() string { return e.Message }

// Тексты совпадают с сообщениями мини-приложения.
var (
	errPendingForMonth = &BlockedError{Message: "Bu oy uchun to'lov allaqachon kutilmoqda. Kassa tasdiqini kuting."}
	errPendingAnywhere = &BlockedError{Message: "To'lovlar kutilmoqda. Kassa tasdiqini kuting."}
	errBadAmount       = &BlockedError{Message: "To'lov summasi noto'g'ri kiritildi."}
	errNoPayment       = &BlockedError{Message: "To'lov yozuvi topilmadi."}
	errNoMonth         = &BlockedError{Message: "Bunday oy jadvalda yo'q."}
	errMonthSettled    = &BlockedError{Message: "Bu oy allaqachon yopilgan."}
)

// Service переводит намерения пользователя в вызовы бэкенда.
// Локального состояния графика нет: после каждого действия состояние
// перечитывается с бэкенда целиком.
type Service struct {
	api       API
	reminders ReminderStore

	pollAttempts int
	pollInterval time.Duration
}

func New(backendAPI API, reminders ReminderStore) *Service {
	return &Service{
		api:          backendAPI,
		reminders:    reminders,
		pollAttempts: 5,
		pollInterval: 300 * time.Millisecond,
	}
}

// PayInstallment отправляет оплату ежемесячного взноса (или
// первоначального при month = 0). Блокируется, если за этот месяц
// уже есть неподтвержденный платеж.
func (s *Service) PayInstallment(ctx context.Context, contractID string, month int, amount float64, notes string) (*backend.ContractSnapshot, error) {
	if amount <= 0 {
		return nil, errBadAmount
	}

	snap, err := s.api.Contract(ctx, contractID)
	if err != nil {
		return nil, err
	}
	if schedule.HasPendingForMonth(snap.Payments, month) {
		return nil, errPendingForMonth
	}

	err = s.api.PayMonthly(ctx, backend.MonthlyPaymentRequest{
		ContractID:     contractID,
		TargetMonth:    month,
		Amount:         amount,
		Notes:          notes,
		IdempotencyKey: uuid.NewString(),
	})
	if err != nil {
		return nil, err
	}

	return s.refetch(ctx, contractID, len(snap.Payments))
}

// PayAllRemaining закрывает весь остаток долга одним платежом.
// Блокируется, пока по договору есть хоть один неподтвержденный платеж.
func (s *Service) PayAllRemaining(ctx context.Context, contractID string, amount float64) (*backend.ContractSnapshot, error) {
	if amount <= 0 {
		return nil, errBadAmount
	}

	snap, err := s.api.Contract(ctx, contractID)
	if err != nil {
		return nil, err
	}
	if schedule.HasPending(snap.Payments) {
		return nil, errPendingAnywhere
	}

	err = s.api.PayAll(ctx, backend.PayAllRequest{
		ContractID:     contractID,
		Amount:         amount,
		IdempotencyKey: uuid.NewString(),
	})
	if err != nil {
		return nil, err
	}

	return s.refetch(ctx, contractID, len(snap.Payments))
}

// PayShortfall гасит недоплату по конкретной записи платежа.
// Адресация по id записи: недоплата — долг плательщика именно по ней,
// на позиции месяцев она не влияет.
func (s *Service) PayShortfall(ctx context.Context, contractID, paymentID string, amount float64) (*backend.ContractSnapshot, error) {
	if amount <= 0 {
		return nil, errBadAmount
	}
	if paymentID == "" {
		return nil, errNoPayment
	}

	snap, err := s.api.Contract(ctx, contractID)
	if err != nil {
		return nil, err
	}

	var target *schedule.PaymentRecord
	for i := range snap.Payments {
		if snap.Payments[i].ID == paymentID {
			target = &snap.Payments[i]
			break
		}
	}
	if target == nil || !target.Committed() {
		return nil, errNoPayment
	}

	err = s.api.PayRemaining(ctx, backend.PayRemainingRequest{
		PaymentID:      paymentID,
		Amount:         amount,
		IdempotencyKey: uuid.NewString(),
	})
	if err != nil {
		return nil, err
	}

	return s.refetch(ctx, contractID, len(snap.Payments))
}

// PostponeReminder ставит напоминание по месяцу графика. Дата платежа
// и расчет долга не меняются.
func (s *Service) PostponeReminder(ctx context.Context, contractID string, month int, remindAt time.Time, comment string) error {
	snap, err := s.api.Contract(ctx, contractID)
	if err != nil {
		return err
	}

	d, _, err := schedule.Build(snap.Terms, snap.Payments, time.Now())
	if err != nil {
		return err
	}

	found := false
	for _, it := range d.Items {
		if it.MonthIndex == month {
			if it.IsSettled {
				return errMonthSettled
			}
			found = true
			break
		}
	}
	if !found {
		return errNoMonth
	}

	return s.reminders.Upsert(ctx, contractID, month, remindAt, comment)
}

// refetch перечитывает договор после отправки платежа. Вместо слепой
// задержки, как в старом клиенте, ждем появления новой записи
// ограниченным опросом; если бэкенд не успел — возвращаем то, что есть.
func (s *Service) refetch(ctx context.Context, contractID string, prevCount int) (*backend.ContractSnapshot, error) {
	var last *backend.ContractSnapshot
	for attempt := 0; attempt < s.pollAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				// Платеж уже отправлен: обрыв ожидания — не ошибка
				// действия, отдаем последний удачный срез.
				if last != nil {
					return last, nil
				}
				return nil, ctx.Err()
			case <-time.After(s.pollInterval):
			}
		}

		snap, err := s.api.Contract(ctx, contractID)
		if err != nil {
			// Платеж уже отправлен: ошибку чтения не превращаем
			// в ошибку действия, отдаем последний удачный срез.
			if last != nil {
				return last, nil
			}
			return nil, err
		}
		last = snap
		if len(snap.Payments) > prevCount {
			return snap, nil
		}
	}

	slog.Warn("платеж отправлен, но запись не появилась в срезе договора",
		"contractId", contractID, "attempts", s.pollAttempts)
	return last, nil
}

// IsBlocked сообщает, является ли ошибка клиентской блокировкой действия.
func IsBlocked(err error) bool {
	var b *BlockedError
	return errors.As(err, &b)
}
