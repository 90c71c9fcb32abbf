// internal/routes/router.go
package routes

import (
	"github.com/firdavsdev07/bot/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupRoutes инициализирует все маршруты приложения.
func SetupRoutes(r *gin.Engine) {
	// --- Публичные маршруты ---
	// Вход через Telegram и проверка регистрации токена не требуют.
	RegisterAuthRoutes(r)

	// --- Защищенная группа маршрутов ---
	// Все остальное доступно только с сессионным токеном мини-приложения.
	authRequired := r.Group("/")
	authRequired.Use(middleware.AuthMiddleware())
	{
		RegisterAPIRoutes(authRequired)
	}
}
