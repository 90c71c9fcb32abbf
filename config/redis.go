// config/redis.go
package config

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

var RDB *redis.Client
var Ctx = context.Background()

// Redis опционален: без него отключаются кэш срезов договоров и
// межпроцессная защита от двойной подачи платежа.
func ConnectRedis() {
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		slog.Warn("Переменная окружения REDIS_ADDR не установлена, кэширование будет отключено.")
		return
	}

	RDB = redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})

	// Проверяем соединение
	if _, err := RDB.Ping(Ctx).Result(); err != nil {
		slog.Error("Не удалось подключиться к Redis", "error", err)
		RDB = nil // Обнуляем клиент, чтобы приложение не пыталось его использовать
		return
	}

	slog.Info("Успешное подключение к Redis!")
}

// AcquireLock ставит короткий замок на действие (SET NX). Возвращает
// true, если замок наш. Без Redis всегда true — остается только
// блокировка на уровне PENDING-статуса.
func AcquireLock(key string, ttl time.Duration) bool {
	if RDB == nil {
		return true
	}
	ok, err := RDB.SetNX(Ctx, key, 1, ttl).Result()
	if err != nil {
		slog.Warn("Redis недоступен при взятии замка", "key", key, "error", err)
		return true
	}
	return ok
}

// ReleaseLock снимает замок, поставленный AcquireLock.
func ReleaseLock(key string) {
	if RDB == nil {
		return
	}
	RDB.Del(Ctx, key)
}
