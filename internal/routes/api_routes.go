// internal/routes/api_routes.go
package routes

import (
	"github.com/firdavsdev07/bot/internal/handlers"

	"github.com/gin-gonic/gin"
)

// RegisterAPIRoutes регистрирует маршруты мини-приложения.
// Пути повторяют контракт фронтенда один в один.
func RegisterAPIRoutes(rg *gin.RouterGroup) {
	customer := rg.Group("/customer")
	{
		customer.GET("/get-all", handlers.GetCustomersHandler)
		customer.GET("/get-debtor", handlers.GetDebtorsHandler)
		customer.GET("/get-payment", handlers.GetPaymentDueHandler)
		customer.GET("/get-by-id/:id", handlers.GetCustomerHandler)
		customer.GET("/get-contract-by-id/:id", handlers.GetCustomerContractsHandler)
	}

	payment := rg.Group("/payment")
	{
		payment.POST("/pay-debt", handlers.PayDebtHandler)
		payment.POST("/pay-new-debt", handlers.PayAllHandler)
		payment.POST("/postpone-payment", handlers.PostponePaymentHandler)
	}

	expenses := rg.Group("/expenses")
	{
		expenses.GET("/get-active", handlers.GetActiveExpensesHandler)
		expenses.GET("/get-inactive", handlers.GetInactiveExpensesHandler)
		expenses.POST("/create", handlers.CreateExpenseHandler)
		expenses.POST("/update", handlers.UpdateExpenseHandler)
		expenses.POST("/deactivate", handlers.DeactivateExpenseHandler)
	}

	reminder := rg.Group("/reminder")
	{
		reminder.GET("/check-month", handlers.CheckMonthReminderHandler)
		reminder.GET("/due", handlers.DueRemindersHandler)
	}

	dashboard := rg.Group("/dashboard")
	{
		dashboard.GET("", handlers.DashboardHandler)
		dashboard.GET("/currency-course", handlers.CurrencyCourseHandler)
		dashboard.GET("/facts", handlers.ListFactsHandler)
		dashboard.GET("/export", handlers.ExportDailySummaryHandler)
	}
}
