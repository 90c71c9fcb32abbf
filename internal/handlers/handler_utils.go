// internal/handlers/handler_utils.go
package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/firdavsdev07/bot/internal/actions"
	"github.com/firdavsdev07/bot/internal/backend"
	"github.com/firdavsdev07/bot/internal/schedule"
	"github.com/firdavsdev07/bot/models"
)

// Зависимости обработчиков. Заполняются один раз при старте.
var (
	Backend   *backend.Client
	Actions   *actions.Service
	Reminders models.ReminderStore
)

// Setup связывает обработчики с клиентом бэкенда и слоем действий.
func Setup(client *backend.Client, svc *actions.Service, reminders models.ReminderStore) {
	Backend = client
	Actions = svc
	Reminders = reminders
}

// respondError переводит ошибки ядра и бэкенда в HTTP-ответы.
// Блокировки показываются плательщику как сообщение, а не как сбой;
// ошибки бэкенда отдаются как 502 с возможностью повторить.
func respondError(c *gin.Context, err error) {
	var blocked *actions.BlockedError
	if errors.As(err, &blocked) {
		c.JSON(http.StatusBadRequest, gin.H{"error": blocked.Message})
		return
	}

	var terms *schedule.InvalidTermsError
	if errors.As(err, &terms) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": terms.Error()})
		return
	}

	var req *backend.RequestError
	if errors.As(err, &req) {
		slog.Error("ошибка платежного бэкенда", "op", req.Op, "status", req.StatusCode, "error", err)
		if req.StatusCode == http.StatusNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Ma'lumot topilmadi"})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "Server bilan bog'lanishda xatolik. Qaytadan urinib ko'ring."})
		return
	}

	slog.Error("внутренняя ошибка обработчика", "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Xatolik yuz berdi. Qaytadan urinib ko'ring."})
}

// managerFrom достает менеджера, положенного в контекст middleware.
func managerFrom(c *gin.Context) (id, name string) {
	id = c.GetString("manager_id")
	name = c.GetString("manager_name")
	return id, name
}
