// internal/handlers/dashboard_handler.go
package handlers

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/divan/num2words"
	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"github.com/firdavsdev07/bot/config"
	"github.com/firdavsdev07/bot/models"
)

// DailySummary — дневная сводка кассы по журналу мини-приложения.
type DailySummary struct {
	Date          string  `json:"date"`
	Dollar        float64 `json:"dollar"` // купюры в долларах
	Sum           float64 `json:"sum"`    // купюры в сумах
	Total         float64 `json:"total"`  // итог в расчетной валюте
	PaymentsCount int64   `json:"paymentsCount"`
}

const summaryCacheTTL = time.Minute

func dayBounds(day time.Time) (time.Time, time.Time) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	return start, start.AddDate(0, 0, 1)
}

func buildDailySummary(day time.Time) (DailySummary, error) {
	start, end := dayBounds(day)
	summary := DailySummary{Date: start.Format("2006-01-02")}

	row := config.DB.Model(&models.PaymentFact{}).
		Where("payment_date >= ? AND payment_date < ?", start, end).
		Select("coalesce(sum(cash_dollar), 0), coalesce(sum(cash_sum), 0), coalesce(sum(amount), 0), count(*)").
		Row()
	if err := row.Scan(&summary.Dollar, &summary.Sum, &summary.Total, &summary.PaymentsCount); err != nil {
		return summary, err
	}
	return summary, nil
}

// DashboardHandler — сводка за сегодня. Кэшируется на минуту:
// экран сводки открывают чаще, чем проводят платежи.
func DashboardHandler(c *gin.Context) {
	cacheKey := "summary:" + time.Now().Format("2006-01-02")
	if config.RDB != nil {
		if raw, err := config.RDB.Get(config.Ctx, cacheKey).Bytes(); err == nil {
			var cached DailySummary
			if json.Unmarshal(raw, &cached) == nil {
				c.JSON(http.StatusOK, gin.H{"data": cached})
				return
			}
		}
	}

	summary, err := buildDailySummary(time.Now())
	if err != nil {
		respondError(c, err)
		return
	}

	if config.RDB != nil {
		if raw, err := json.Marshal(summary); err == nil {
			config.RDB.Set(config.Ctx, cacheKey, raw, summaryCacheTTL)
		}
	}
	c.JSON(http.StatusOK, gin.H{"data": summary})
}

// CurrencyCourseHandler — актуальный курс для пересчета сумов в
// расчетную валюту. Курс задает офис: ключ в Redis, запасной
// вариант — переменная окружения.
func CurrencyCourseHandler(c *gin.Context) {
	if config.RDB != nil {
		if raw, err := config.RDB.Get(config.Ctx, "currency:course").Result(); err == nil {
			if course, err := strconv.ParseFloat(raw, 64); err == nil && course > 0 {
				c.JSON(http.StatusOK, gin.H{"data": gin.H{"course": course}})
				return
			}
		}
	}

	course, err := strconv.ParseFloat(os.Getenv("CURRENCY_COURSE"), 64)
	if err != nil || course <= 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Valyuta kursi belgilanmagan"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"course": course}})
}

// ListFactsHandler — постраничный кассовый журнал за день.
func ListFactsHandler(c *gin.Context) {
	day := time.Now()
	if q := c.Query("date"); q != "" {
		parsed, err := time.Parse("2006-01-02", q)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Sana formati noto'g'ri (YYYY-MM-DD)"})
			return
		}
		day = parsed
	}
	start, end := dayBounds(day)

	query := config.DB.Model(&models.PaymentFact{}).
		Where("payment_date >= ? AND payment_date < ?", start, end)

	var totalRows int64
	if err := query.Count(&totalRows).Error; err != nil {
		respondError(c, err)
		return
	}

	var facts []models.PaymentFact
	if err := query.Scopes(Paginate(c)).Order("payment_date DESC").Find(&facts).Error; err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, CreatePaginatedResponse(c, facts, totalRows))
}

// amountInWords — сумма прописью для итоговой строки отчета.
// Центы считаются от округленного итога: погрешность float64 не должна
// съедать цент (10.29 — это 29 центов, а не 28).
func amountInWords(total float64) string {
	cents := int(math.Round(total * 100))
	return fmt.Sprintf("%s долларов %02d центов", num2words.Convert(cents/100), cents%100)
}

// ExportDailySummaryHandler выгружает кассовый журнал дня в Excel
// с итоговой строкой и суммой прописью для бухгалтерии.
func ExportDailySummaryHandler(c *gin.Context) {
	day := time.Now()
	if q := c.Query("date"); q != "" {
		parsed, err := time.Parse("2006-01-02", q)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Sana formati noto'g'ri (YYYY-MM-DD)"})
			return
		}
		day = parsed
	}
	start, end := dayBounds(day)

	var facts []models.PaymentFact
	if err := config.DB.
		Where("payment_date >= ? AND payment_date < ?", start, end).
		Order("payment_date ASC").
		Find(&facts).Error; err != nil {
		respondError(c, err)
		return
	}

	f := excelize.NewFile()
	sheetName := "Касса за день"
	index, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{"Время", "Договор", "Клиент", "Менеджер", "Тип", "Месяц", "Доллары", "Сумы", "Курс", "Итог ($)", "Комментарий"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, header)
	}

	var total float64
	for i, p := range facts {
		row := i + 2
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), p.PaymentDate.Format("15:04"))
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), p.ContractID)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), p.CustomerID)
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), p.ManagerName)
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), p.Kind)
		if p.TargetMonth > 0 {
			f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), p.TargetMonth)
		}
		f.SetCellValue(sheetName, fmt.Sprintf("G%d", row), p.CashDollar)
		f.SetCellValue(sheetName, fmt.Sprintf("H%d", row), p.CashSum)
		f.SetCellValue(sheetName, fmt.Sprintf("I%d", row), p.Course)
		f.SetCellValue(sheetName, fmt.Sprintf("J%d", row), p.Amount)
		f.SetCellValue(sheetName, fmt.Sprintf("K%d", row), p.Comment)
		total += p.Amount
	}

	totalRow := len(facts) + 3
	f.SetCellValue(sheetName, fmt.Sprintf("A%d", totalRow), "Итого:")
	f.SetCellValue(sheetName, fmt.Sprintf("J%d", totalRow), total)
	f.SetCellValue(sheetName, fmt.Sprintf("A%d", totalRow+1), "Сумма прописью:")
	f.SetCellValue(sheetName, fmt.Sprintf("B%d", totalRow+1), amountInWords(total))

	fileName := fmt.Sprintf("daily_summary_%s.xlsx", start.Format("20060102"))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename="+fileName)
	if err := f.Write(c.Writer); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Excel faylni yozib bo'lmadi"})
	}
}
