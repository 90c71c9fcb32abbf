// main.go
package main

import (
	"log/slog"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/firdavsdev07/bot/config"
	"github.com/firdavsdev07/bot/internal/actions"
	"github.com/firdavsdev07/bot/internal/backend"
	"github.com/firdavsdev07/bot/internal/handlers"
	"github.com/firdavsdev07/bot/internal/routes"
	"github.com/firdavsdev07/bot/models"
)

func main() {
	// .env нужен только локально; в контейнере переменные уже заданы.
	if err := godotenv.Load(); err != nil {
		slog.Info("Файл .env не найден, используем переменные окружения")
	}

	config.LoadEnv()
	config.ConnectDB(&models.PaymentReminder{}, &models.PaymentFact{}, &models.Expense{})
	config.ConnectRedis()

	client := backend.New(config.BackendURL(), config.BackendToken())
	reminders := models.ReminderStore{DB: config.DB}
	handlers.Setup(client, actions.New(client, reminders), reminders)

	r := gin.Default()
	routes.SetupRoutes(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	slog.Info("Сервер мини-приложения запущен", "port", port)
	if err := r.Run(":" + port); err != nil {
		slog.Error("Сервер остановлен с ошибкой", "error", err)
		os.Exit(1)
	}
}
