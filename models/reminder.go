// models/reminder.go
package models

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PaymentReminder — напоминание о платеже, отдельный контекст от
// расчетного состояния: дату платежа и суммы оно не трогает.
// Ключ — пара (договор, месяц), повторная установка перезаписывает.
type PaymentReminder struct {
	gorm.Model
	ContractID  string    `json:"contractId" gorm:"uniqueIndex:idx_reminder_contract_month"`
	TargetMonth int       `json:"targetMonth" gorm:"uniqueIndex:idx_reminder_contract_month"`
	RemindAt    time.Time `json:"remindAt"`
	Comment     string    `json:"comment"`
	ManagerID   string    `json:"managerId"`
}

func (PaymentReminder) TableName() string { return "payment_reminders" }

// ReminderStore — доступ к напоминаниям поверх GORM.
type ReminderStore struct {
	DB *gorm.DB
}

// Upsert ставит или переносит напоминание по месяцу договора.
func (s ReminderStore) Upsert(ctx context.Context, contractID string, targetMonth int, remindAt time.Time, comment string) error {
	rec := PaymentReminder{
		ContractID:  contractID,
		TargetMonth: targetMonth,
		RemindAt:    remindAt,
		Comment:     comment,
	}
	return s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "contract_id"}, {Name: "target_month"}},
		DoUpdates: clause.AssignmentColumns([]string{"remind_at", "comment", "updated_at"}),
	}).Create(&rec).Error
}

// ForMonth возвращает напоминание по месяцу договора, если оно есть.
func (s ReminderStore) ForMonth(ctx context.Context, contractID string, targetMonth int) (*PaymentReminder, error) {
	var rec PaymentReminder
	err := s.DB.WithContext(ctx).
		Where("contract_id = ? AND target_month = ?", contractID, targetMonth).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// DueBefore возвращает напоминания, срок которых наступил.
func (s ReminderStore) DueBefore(ctx context.Context, moment time.Time) ([]PaymentReminder, error) {
	var list []PaymentReminder
	err := s.DB.WithContext(ctx).
		Where("remind_at <= ?", moment).
		Order("remind_at ASC").
		Find(&list).Error
	return list, err
}
