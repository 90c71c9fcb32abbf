// internal/handlers/reminder_handler.go
package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// CheckMonthReminderHandler возвращает напоминание по месяцу договора,
// если менеджер его ставил. Пустой ответ — напоминания нет.
func CheckMonthReminderHandler(c *gin.Context) {
	contractID := c.Query("contractId")
	if contractID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "contractId ko'rsatilmagan"})
		return
	}
	targetMonth, err := strconv.Atoi(c.Query("targetMonth"))
	if err != nil || targetMonth < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "targetMonth noto'g'ri"})
		return
	}

	rec, err := Reminders.ForMonth(c.Request.Context(), contractID, targetMonth)
	if err != nil {
		respondError(c, err)
		return
	}
	if rec == nil {
		c.JSON(http.StatusOK, gin.H{"data": gin.H{"reminderDate": nil}})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"reminderDate":    rec.RemindAt.Format(time.RFC3339),
		"reminderComment": rec.Comment,
	}})
}

// DueRemindersHandler — напоминания, срок которых уже наступил.
func DueRemindersHandler(c *gin.Context) {
	list, err := Reminders.DueBefore(c.Request.Context(), time.Now())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": list})
}
