// models/payment_fact.go
package models

import (
	"time"

	"gorm.io/gorm"
)

// PaymentFact — строка кассового журнала мини-приложения: что менеджер
// отправил на кассу и в каких купюрах принял. Расчетное состояние
// договора живет на бэкенде; журнал нужен дневной сводке и отчету.
type PaymentFact struct {
	gorm.Model
	ContractID  string    `json:"contractId" gorm:"index"`
	CustomerID  string    `json:"customerId" gorm:"index"`
	ManagerID   string    `json:"managerId"`
	ManagerName string    `json:"managerName"`
	Kind        string    `json:"kind"` // monthly | payAll | shortfall
	TargetMonth int       `json:"targetMonth"`
	Amount      float64   `json:"amount" gorm:"type:numeric(12,2)"` // итог в расчетной валюте (доллар)
	CashDollar  float64   `json:"cashDollar" gorm:"type:numeric(12,2)"`
	CashSum     float64   `json:"cashSum" gorm:"type:numeric(14,2)"`
	Course      float64   `json:"course" gorm:"type:numeric(12,2)"`
	PaymentDate time.Time `json:"paymentDate" gorm:"index"`
	Comment     string    `json:"comment"`
}

func (PaymentFact) TableName() string { return "payment_facts" }
