// models/expense.go
package models

import (
	"time"

	"gorm.io/gorm"
)

// Expense — расход офиса, записанный менеджером: купюры в долларах
// и сумах плюс комментарий. Расход не удаляется, а деактивируется —
// вкладка неактивных остается историей, итоги считаются по активным.
type Expense struct {
	gorm.Model
	ManagerID     string     `json:"managerId"`
	ManagerName   string     `json:"managerName"`
	CashDollar    float64    `json:"cashDollar" gorm:"type:numeric(12,2)"`
	CashSum       float64    `json:"cashSum" gorm:"type:numeric(14,2)"`
	Notes         string     `json:"notes"`
	Active        bool       `json:"active" gorm:"index"`
	DeactivatedAt *time.Time `json:"deactivatedAt,omitempty"`
}

func (Expense) TableName() string { return "expenses" }
