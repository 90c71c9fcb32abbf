// internal/handlers/auth_handler.go
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/firdavsdev07/bot/config"
	"github.com/firdavsdev07/bot/internal/backend"
	"github.com/firdavsdev07/bot/internal/middleware"
)

// Возраст initData ограничен: старую строку можно переиспользовать
// только в пределах этого окна.
const initDataMaxAge = 24 * time.Hour

const sessionTTL = 24 * time.Hour

type telegramAuthRequest struct {
	InitData string `json:"initData" binding:"required"`
}

// TelegramAuthHandler проверяет подпись initData мини-приложения,
// ищет менеджера в реестре бэкенда и выдает сессионный токен.
func TelegramAuthHandler(c *gin.Context) {
	var req telegramAuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "initData yuborilmadi"})
		return
	}

	user, err := middleware.VerifyInitData(req.InitData, config.BotToken(), initDataMaxAge, time.Now())
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Telegram ma'lumotlari tasdiqlanmadi"})
		return
	}

	manager, err := Backend.ManagerByTelegramID(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	claims := jwt.MapClaims{
		"manager_id":  manager.ID,
		"telegram_id": user.ID,
		"name":        manager.FirstName + " " + manager.LastName,
		"exp":         time.Now().Add(sessionTTL).Unix(),
		"iat":         time.Now().Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(config.JwtKey)
	if err != nil {
		respondError(c, fmt.Errorf("подпись токена: %w", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"accessToken": token,
		"user": gin.H{
			"id":        manager.ID,
			"firstname": manager.FirstName,
			"lastname":  manager.LastName,
		},
	}})
}

// CheckRegistrationHandler сообщает, зарегистрирован ли Telegram-аккаунт
// как менеджер. Используется экраном входа до запроса initData.
func CheckRegistrationHandler(c *gin.Context) {
	telegramID, err := strconv.ParseInt(c.Query("telegramId"), 10, 64)
	if err != nil || telegramID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "telegramId noto'g'ri"})
		return
	}

	_, err = Backend.ManagerByTelegramID(c.Request.Context(), telegramID)
	if err != nil {
		var reqErr *backend.RequestError
		if errors.As(err, &reqErr) && reqErr.StatusCode == http.StatusNotFound {
			// Не найден — штатный ответ, а не ошибка.
			c.JSON(http.StatusOK, gin.H{"data": gin.H{"registered": false}})
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"registered": true}})
}
