// internal/routes/auth_routes.go
package routes

import (
	"github.com/firdavsdev07/bot/internal/handlers"

	"github.com/gin-gonic/gin"
)

// RegisterAuthRoutes регистрирует маршруты входа мини-приложения.
func RegisterAuthRoutes(r *gin.Engine) {
	auth := r.Group("/auth")
	{
		auth.POST("/telegram", handlers.TelegramAuthHandler)
		auth.GET("/check-registration", handlers.CheckRegistrationHandler)
	}
}
