// internal/handlers/customer_handler.go
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/firdavsdev07/bot/config"
	"github.com/firdavsdev07/bot/internal/backend"
	"github.com/firdavsdev07/bot/internal/schedule"
)

// ContractView — договор, обогащенный производным графиком.
// Строится заново на каждый запрос: график нигде не хранится.
type ContractView struct {
	ContractID    string                     `json:"contractId"`
	CustomerID    string                     `json:"customerId"`
	ProductName   string                     `json:"productName"`
	Terms         schedule.ContractTerms     `json:"terms"`
	Schedule      []schedule.ScheduleItem    `json:"schedule"`
	RemainingDebt float64                    `json:"remainingDebt"`
	TotalPaid     float64                    `json:"totalPaid"`
	PaidCount     int                        `json:"paidMonthsCount"`
	DelayDays     int                        `json:"delayDays"`
	NextDueDate   *time.Time                 `json:"nextPaymentDate,omitempty"`
	IsPending     bool                       `json:"isPending"`
	Anomalies     []schedule.PaymentRecord   `json:"anomalies,omitempty"`
	Payments      []schedule.PaymentRecord   `json:"payments"`
}

// buildContractView прогоняет срез договора через конвейер графика.
func buildContractView(snap backend.ContractSnapshot, now time.Time) (ContractView, error) {
	d, anomalies, err := schedule.Build(snap.Terms, snap.Payments, now)
	if err != nil {
		return ContractView{}, err
	}
	if len(anomalies) > 0 {
		// Платежей больше, чем слотов графика, — рассинхрон данных
		// на бэкенде. Показываем, а не прячем.
		slog.Warn("платежи сверх графика", "contractId", snap.ContractID, "count", len(anomalies))
	}

	view := ContractView{
		ContractID:    snap.ContractID,
		CustomerID:    snap.CustomerID,
		ProductName:   snap.ProductName,
		Terms:         snap.Terms,
		Schedule:      d.Items,
		RemainingDebt: d.RemainingDebt,
		TotalPaid:     d.TotalPaid,
		PaidCount:     d.PaidCount,
		DelayDays:     schedule.DelayDays(d.Items, now),
		IsPending:     schedule.HasPending(snap.Payments),
		Anomalies:     anomalies,
		Payments:      snap.Payments,
	}
	if next, ok := schedule.NextDue(d.Items); ok {
		due := next.DueDate
		view.NextDueDate = &due
	}
	return view, nil
}

// GetCustomersHandler — список всех клиентов менеджера.
func GetCustomersHandler(c *gin.Context) {
	customers, err := Backend.Customers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": customers})
}

// GetDebtorsHandler — договоры с просрочкой, по строке на договор.
// Дни просрочки и остаток считаются заново из графика, а не берутся
// из полей бэкенда: отображение должно совпадать с экраном договора.
func GetDebtorsHandler(c *gin.Context) {
	snaps, err := Backend.Debtors(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	now := time.Now()
	views := make([]ContractView, 0, len(snaps))
	for _, snap := range snaps {
		view, err := buildContractView(snap, now)
		if err != nil {
			// Договор с битыми условиями не должен прятать остальных.
			slog.Error("не удалось построить график должника", "contractId", snap.ContractID, "error", err)
			continue
		}
		if view.DelayDays > 0 {
			views = append(views, view)
		}
	}
	c.JSON(http.StatusOK, gin.H{"data": views})
}

// GetPaymentDueHandler — договоры, у которых срок очередного взноса
// наступает сегодня.
func GetPaymentDueHandler(c *gin.Context) {
	snaps, err := Backend.ActiveContracts(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	now := time.Now()
	today := now.Format("2006-01-02")
	views := make([]ContractView, 0)
	for _, snap := range snaps {
		view, err := buildContractView(snap, now)
		if err != nil {
			continue
		}
		if view.NextDueDate != nil && view.NextDueDate.Format("2006-01-02") == today {
			views = append(views, view)
		}
	}
	c.JSON(http.StatusOK, gin.H{"data": views})
}

// GetCustomerHandler — карточка клиента.
func GetCustomerHandler(c *gin.Context) {
	details, err := Backend.Customer(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": details})
}

const contractCacheTTL = 30 * time.Second

// GetCustomerContractsHandler — договоры клиента с построенными
// графиками. Срезы коротко кэшируются в Redis; после платежа кэш
// сбрасывается (см. payment_handler).
func GetCustomerContractsHandler(c *gin.Context) {
	customerID := c.Param("id")
	cacheKey := "contracts:" + customerID

	if config.RDB != nil {
		if raw, err := config.RDB.Get(config.Ctx, cacheKey).Bytes(); err == nil {
			var cached []backend.ContractSnapshot
			if json.Unmarshal(raw, &cached) == nil {
				renderContracts(c, cached)
				return
			}
		}
	}

	snaps, err := Backend.CustomerContracts(c.Request.Context(), customerID)
	if err != nil {
		respondError(c, err)
		return
	}

	if config.RDB != nil {
		if raw, err := json.Marshal(snaps); err == nil {
			config.RDB.Set(config.Ctx, cacheKey, raw, contractCacheTTL)
		}
	}

	renderContracts(c, snaps)
}

func renderContracts(c *gin.Context, snaps []backend.ContractSnapshot) {
	now := time.Now()
	views := make([]ContractView, 0, len(snaps))
	for _, snap := range snaps {
		view, err := buildContractView(snap, now)
		if err != nil {
			respondError(c, err)
			return
		}
		views = append(views, view)
	}
	c.JSON(http.StatusOK, gin.H{"data": views})
}

// invalidateContractCache сбрасывает кэш срезов после действия.
func invalidateContractCache(customerID string) {
	if config.RDB == nil || customerID == "" {
		return
	}
	config.RDB.Del(config.Ctx, "contracts:"+customerID)
}
