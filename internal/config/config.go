// internal/config/config.go
package config

import (
	"log"
	"os"
	"strconv"

	"github.com/toppo2000-ai/Taxi-Navigator-sub002/internal/constants"
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	AppEnv        string
	Port          string
	AuthSecret    string
	PublicBaseURL string

	// Хранилище: "firestore" либо "postgres"
	StoreBackend       string
	DatabaseURL        string
	FirestoreProjectID string
	FirestoreCredsFile string

	TelegramToken    string
	GeocoderEndpoint string

	DefaultBusinessStartHour int
	DefaultShimebiDay        int
	SyncQueueSize            int
}

// LoadConfig загружает конфигурацию из переменных окружения.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:             os.Getenv("ENV"),
		Port:               os.Getenv("PORT"),
		AuthSecret:         os.Getenv("AUTH_SECRET"),
		PublicBaseURL:      os.Getenv("PUBLIC_BASE_URL"),
		StoreBackend:       os.Getenv("STORE_BACKEND"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		FirestoreProjectID: os.Getenv("FIRESTORE_PROJECT_ID"),
		FirestoreCredsFile: os.Getenv("FIRESTORE_CREDENTIALS_FILE"),
		TelegramToken:      os.Getenv("TELEGRAM_APITOKEN"),
		GeocoderEndpoint:   os.Getenv("GEOCODER_ENDPOINT"),
	}

	if cfg.Port == "" {
		cfg.Port = "8080"
	}

	if cfg.StoreBackend == "" {
		log.Println("Предупреждение: STORE_BACKEND не установлен, используется firestore.")
		cfg.StoreBackend = "firestore"
	}

	cfg.DefaultBusinessStartHour = intEnv("DEFAULT_BUSINESS_START_HOUR", constants.DEFAULT_BUSINESS_START_HOUR)
	if cfg.DefaultBusinessStartHour < 0 || cfg.DefaultBusinessStartHour > 23 {
		log.Printf("Предупреждение: некорректный DEFAULT_BUSINESS_START_HOUR (%d). Установлено %d.", cfg.DefaultBusinessStartHour, constants.DEFAULT_BUSINESS_START_HOUR)
		cfg.DefaultBusinessStartHour = constants.DEFAULT_BUSINESS_START_HOUR
	}

	cfg.DefaultShimebiDay = intEnv("DEFAULT_SHIMEBI_DAY", constants.DEFAULT_SHIMEBI_DAY)
	if cfg.DefaultShimebiDay < constants.MIN_SHIMEBI_DAY || cfg.DefaultShimebiDay > constants.MAX_SHIMEBI_DAY {
		log.Printf("Предупреждение: некорректный DEFAULT_SHIMEBI_DAY (%d). Установлено %d.", cfg.DefaultShimebiDay, constants.DEFAULT_SHIMEBI_DAY)
		cfg.DefaultShimebiDay = constants.DEFAULT_SHIMEBI_DAY
	}

	cfg.SyncQueueSize = intEnv("SYNC_QUEUE_SIZE", 64)

	if cfg.AuthSecret == "" {
		log.Println("Критическая ошибка: AUTH_SECRET не установлен. Аутентификация API работать не будет.")
	}
	if cfg.StoreBackend == "postgres" && cfg.DatabaseURL == "" {
		log.Println("Критическая ошибка: выбран backend postgres, но DATABASE_URL не установлена.")
	}
	if cfg.StoreBackend == "firestore" && cfg.FirestoreProjectID == "" {
		log.Println("Критическая ошибка: выбран backend firestore, но FIRESTORE_PROJECT_ID не установлен.")
	}
	if cfg.TelegramToken == "" {
		log.Println("Предупреждение: TELEGRAM_APITOKEN не установлен. Уведомления в Telegram отключены.")
	}
	if cfg.GeocoderEndpoint == "" {
		log.Println("Предупреждение: GEOCODER_ENDPOINT не установлен. Геокодирование отключено.")
	}

	log.Println("Конфигурация загружена.")
	return cfg, nil
}

func intEnv(name string, fallback int) int {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("Предупреждение: не удалось прочитать %s: %v. Установлено %d.", name, err, fallback)
		return fallback
	}
	return n
}
