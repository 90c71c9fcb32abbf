// config/env.go
package config

import (
	"log/slog"
	"os"
)

// JwtKey — ключ подписи сессионных токенов мини-приложения.
var JwtKey []byte

// LoadEnv валидирует обязательные переменные окружения при старте,
// чтобы упасть сразу, а не на первом запросе.
func LoadEnv() {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		slog.Error("Критическая ошибка: переменная окружения JWT_SECRET не установлена.")
		os.Exit(1)
	}
	JwtKey = []byte(secret)

	if os.Getenv("BOT_TOKEN") == "" {
		slog.Error("Критическая ошибка: переменная окружения BOT_TOKEN не установлена.")
		os.Exit(1)
	}
	if os.Getenv("BACKEND_URL") == "" {
		slog.Error("Критическая ошибка: переменная окружения BACKEND_URL не установлена.")
		os.Exit(1)
	}
}

// BotToken — токен Telegram-бота, владеющего мини-приложением.
func BotToken() string { return os.Getenv("BOT_TOKEN") }

// BackendURL — адрес платежного бэкенда.
func BackendURL() string { return os.Getenv("BACKEND_URL") }

// BackendToken — сервисный токен для запросов к бэкенду (опционален).
func BackendToken() string { return os.Getenv("BACKEND_TOKEN") }
