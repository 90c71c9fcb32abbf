// internal/handlers/expense_handler.go
package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/firdavsdev07/bot/config"
	"github.com/firdavsdev07/bot/models"
)

// expenseView — расход в формате мини-приложения: купюры сгруппированы
// в currencyDetails, как и в запросах оплаты.
type expenseView struct {
	ID              uint            `json:"id"`
	CurrencyDetails currencyDetails `json:"currencyDetails"`
	Notes           string          `json:"notes"`
	ManagerName     string          `json:"managerName"`
	CreatedAt       time.Time       `json:"createdAt"`
	Active          bool            `json:"active"`
}

func toExpenseViews(list []models.Expense) []expenseView {
	views := make([]expenseView, 0, len(list))
	for _, e := range list {
		views = append(views, expenseView{
			ID:              e.ID,
			CurrencyDetails: currencyDetails{Dollar: e.CashDollar, Sum: e.CashSum},
			Notes:           e.Notes,
			ManagerName:     e.ManagerName,
			CreatedAt:       e.CreatedAt,
			Active:          e.Active,
		})
	}
	return views
}

// expenseTotals — итоги по списку расходов, по валютам раздельно.
// Расходы не сводятся к расчетной валюте: курс на день расхода
// нигде не фиксируется.
func expenseTotals(list []models.Expense) (dollar, sum float64) {
	for _, e := range list {
		dollar += e.CashDollar
		sum += e.CashSum
	}
	return dollar, sum
}

type expenseRequest struct {
	CurrencyDetails currencyDetails `json:"currencyDetails"`
	Notes           string          `json:"notes"`
}

var errExpenseAmount = errors.New("Harajat summasi noto'g'ri kiritildi.")

func (r expenseRequest) validate() error {
	if r.CurrencyDetails.Dollar < 0 || r.CurrencyDetails.Sum < 0 {
		return errExpenseAmount
	}
	if r.CurrencyDetails.Dollar == 0 && r.CurrencyDetails.Sum == 0 {
		return errExpenseAmount
	}
	return nil
}

func listExpenses(c *gin.Context, active bool) {
	var list []models.Expense
	if err := config.DB.
		Where("active = ?", active).
		Order("created_at DESC").
		Find(&list).Error; err != nil {
		respondError(c, err)
		return
	}

	dollar, sum := expenseTotals(list)
	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"expenses":    toExpenseViews(list),
		"totalDollar": dollar,
		"totalSum":    sum,
	}})
}

// GetActiveExpensesHandler — текущие расходы с итогами по валютам.
func GetActiveExpensesHandler(c *gin.Context) {
	listExpenses(c, true)
}

// GetInactiveExpensesHandler — деактивированные расходы (история).
func GetInactiveExpensesHandler(c *gin.Context) {
	listExpenses(c, false)
}

// CreateExpenseHandler записывает новый расход.
func CreateExpenseHandler(c *gin.Context) {
	var req expenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "So'rov ma'lumotlari noto'g'ri: " + err.Error()})
		return
	}
	if err := req.validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	managerID, managerName := managerFrom(c)
	exp := models.Expense{
		ManagerID:   managerID,
		ManagerName: managerName,
		CashDollar:  req.CurrencyDetails.Dollar,
		CashSum:     req.CurrencyDetails.Sum,
		Notes:       req.Notes,
		Active:      true,
	}
	if err := config.DB.Create(&exp).Error; err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": toExpenseViews([]models.Expense{exp})[0]})
}

type updateExpenseRequest struct {
	ID uint `json:"id" binding:"required"`
	expenseRequest
}

// UpdateExpenseHandler правит суммы и комментарий активного расхода.
func UpdateExpenseHandler(c *gin.Context) {
	var req updateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "So'rov ma'lumotlari noto'g'ri: " + err.Error()})
		return
	}
	if err := req.validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var exp models.Expense
	if err := config.DB.First(&exp, req.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Harajat topilmadi"})
			return
		}
		respondError(c, err)
		return
	}
	if !exp.Active {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Deaktiv harajatni o'zgartirib bo'lmaydi"})
		return
	}

	exp.CashDollar = req.CurrencyDetails.Dollar
	exp.CashSum = req.CurrencyDetails.Sum
	exp.Notes = req.Notes
	if err := config.DB.Save(&exp).Error; err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": toExpenseViews([]models.Expense{exp})[0]})
}

type deactivateExpenseRequest struct {
	ID uint `json:"id" binding:"required"`
}

// DeactivateExpenseHandler переводит расход в историю.
func DeactivateExpenseHandler(c *gin.Context) {
	var req deactivateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "So'rov ma'lumotlari noto'g'ri: " + err.Error()})
		return
	}

	var exp models.Expense
	if err := config.DB.First(&exp, req.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Harajat topilmadi"})
			return
		}
		respondError(c, err)
		return
	}

	now := time.Now()
	exp.Active = false
	exp.DeactivatedAt = &now
	if err := config.DB.Save(&exp).Error; err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"message": "Harajat deaktivlashtirildi"}})
}
