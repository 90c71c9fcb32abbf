// internal/handlers/payment_handler.go
package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/firdavsdev07/bot/config"
	"github.com/firdavsdev07/bot/internal/backend"
	"github.com/firdavsdev07/bot/models"
)

// currencyDetails — купюры, принятые менеджером: доллары и сумы.
type currencyDetails struct {
	Dollar float64 `json:"dollar"`
	Sum    float64 `json:"sum"`
}

// payDebtRequest — запрос оплаты из мини-приложения. Если указан
// paymentId — гасится недоплата по конкретной записи, иначе
// оплачивается месяц targetMonth.
type payDebtRequest struct {
	ContractID      string          `json:"contractId" binding:"required"`
	CustomerID      string          `json:"customerId"`
	TargetMonth     int             `json:"targetMonth"`
	PaymentID       string          `json:"paymentId"`
	CurrencyDetails currencyDetails `json:"currencyDetails"`
	CurrencyCourse  float64         `json:"currencyCourse"`
	Notes           string          `json:"notes"`
}

// settlementAmount сводит купюры к единой расчетной валюте.
// График и статусы никогда не считаются в двух валютах сразу.
func (r payDebtRequest) settlementAmount() float64 {
	amount := r.CurrencyDetails.Dollar
	if r.CurrencyDetails.Sum > 0 && r.CurrencyCourse > 0 {
		amount += r.CurrencyDetails.Sum / r.CurrencyCourse
	}
	return amount
}

const payLockTTL = 30 * time.Second

// PayDebtHandler — оплата ежемесячного взноса или гашение недоплаты.
// Двойная подача отсекается замком в Redis на время запроса и
// PENDING-статусом после него.
func PayDebtHandler(c *gin.Context) {
	var req payDebtRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "So'rov ma'lumotlari noto'g'ri: " + err.Error()})
		return
	}

	lockKey := "paylock:" + req.ContractID
	if !config.AcquireLock(lockKey, payLockTTL) {
		c.JSON(http.StatusConflict, gin.H{"error": "To'lov yuborilmoqda. Biroz kuting."})
		return
	}
	defer config.ReleaseLock(lockKey)

	amount := req.settlementAmount()
	ctx := c.Request.Context()

	var snap *backend.ContractSnapshot
	var err error
	kind := "monthly"
	if req.PaymentID != "" {
		kind = "shortfall"
		snap, err = Actions.PayShortfall(ctx, req.ContractID, req.PaymentID, amount)
	} else {
		snap, err = Actions.PayInstallment(ctx, req.ContractID, req.TargetMonth, amount, req.Notes)
	}
	if err != nil {
		respondError(c, err)
		return
	}

	recordFact(c, req, kind, amount)
	invalidateContractCache(req.CustomerID)

	view, err := buildContractView(*snap, time.Now())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": view})
}

// payAllRequest — запрос закрытия всего остатка долга.
type payAllRequest struct {
	ContractID      string          `json:"contractId" binding:"required"`
	CustomerID      string          `json:"customerId"`
	CurrencyDetails currencyDetails `json:"currencyDetails"`
	CurrencyCourse  float64         `json:"currencyCourse"`
}

// PayAllHandler закрывает весь остаток долга одним платежом.
func PayAllHandler(c *gin.Context) {
	var req payAllRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "So'rov ma'lumotlari noto'g'ri: " + err.Error()})
		return
	}

	lockKey := "paylock:" + req.ContractID
	if !config.AcquireLock(lockKey, payLockTTL) {
		c.JSON(http.StatusConflict, gin.H{"error": "To'lov yuborilmoqda. Biroz kuting."})
		return
	}
	defer config.ReleaseLock(lockKey)

	amount := payDebtRequest{CurrencyDetails: req.CurrencyDetails, CurrencyCourse: req.CurrencyCourse}.settlementAmount()

	snap, err := Actions.PayAllRemaining(c.Request.Context(), req.ContractID, amount)
	if err != nil {
		respondError(c, err)
		return
	}

	recordFact(c, payDebtRequest{
		ContractID:      req.ContractID,
		CustomerID:      req.CustomerID,
		CurrencyDetails: req.CurrencyDetails,
		CurrencyCourse:  req.CurrencyCourse,
	}, "payAll", amount)
	invalidateContractCache(req.CustomerID)

	view, err := buildContractView(*snap, time.Now())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": view})
}

// postponeRequest — установка напоминания по месяцу графика.
type postponeRequest struct {
	ContractID   string `json:"contractId" binding:"required"`
	TargetMonth  int    `json:"targetMonth" binding:"required"`
	PostponeDate string `json:"postponeDate" binding:"required"` // RFC3339
	Reason       string `json:"reason"`
}

// PostponePaymentHandler ставит напоминание. Срок платежа и расчет
// долга не меняются — это чисто информационный канал.
func PostponePaymentHandler(c *gin.Context) {
	var req postponeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "So'rov ma'lumotlari noto'g'ri: " + err.Error()})
		return
	}

	remindAt, err := time.Parse(time.RFC3339, req.PostponeDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Sana formati noto'g'ri"})
		return
	}

	if err := Actions.PostponeReminder(c.Request.Context(), req.ContractID, req.TargetMonth, remindAt, req.Reason); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"message": "Eslatma vaqti muvaffaqiyatli belgilandi"}})
}

// recordFact пишет строку кассового журнала. Сбой журнала не валит
// платеж: запись на бэкенде уже создана.
func recordFact(c *gin.Context, req payDebtRequest, kind string, amount float64) {
	managerID, managerName := managerFrom(c)
	fact := models.PaymentFact{
		ContractID:  req.ContractID,
		CustomerID:  req.CustomerID,
		ManagerID:   managerID,
		ManagerName: managerName,
		Kind:        kind,
		TargetMonth: req.TargetMonth,
		Amount:      amount,
		CashDollar:  req.CurrencyDetails.Dollar,
		CashSum:     req.CurrencyDetails.Sum,
		Course:      req.CurrencyCourse,
		PaymentDate: time.Now(),
		Comment:     req.Notes,
	}
	if err := config.DB.Create(&fact).Error; err != nil {
		slog.Error("не удалось записать кассовый журнал", "contractId", req.ContractID, "error", err)
	}
}
