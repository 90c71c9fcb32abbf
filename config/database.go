// config/database.go

package config

import (
	"log/slog"
	"os"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

// ConnectDB подключается к Postgres и прогоняет миграции локальных
// таблиц. Расчетное состояние договоров здесь не хранится — только
// напоминания и кассовый журнал мини-приложения.
func ConnectDB(migrations ...any) {
	dsn := os.Getenv("DB_URL")
	if dsn == "" {
		slog.Error("Критическая ошибка: переменная окружения DB_URL не установлена.")
		os.Exit(1) // Завершаем работу приложения
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		slog.Error("Ошибка подключения к БД", "error", err)
		os.Exit(1)
	}

	if len(migrations) > 0 {
		if err := db.AutoMigrate(migrations...); err != nil {
			slog.Error("Ошибка миграции схемы", "error", err)
			os.Exit(1)
		}
	}

	DB = db
	slog.Info("Успешное подключение к базе данных!")
}
