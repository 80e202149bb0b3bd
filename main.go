package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"github.com/toppo2000-ai/Taxi-Navigator-sub002/internal/api"
	"github.com/toppo2000-ai/Taxi-Navigator-sub002/internal/config"
	"github.com/toppo2000-ai/Taxi-Navigator-sub002/internal/geocode"
	"github.com/toppo2000-ai/Taxi-Navigator-sub002/internal/session"
	"github.com/toppo2000-ai/Taxi-Navigator-sub002/internal/store"
	"github.com/toppo2000-ai/Taxi-Navigator-sub002/internal/telegram_api"
)

func main() {
	// --- Блок инициализации ---
	err := godotenv.Load()
	if err != nil {
		log.Println("Предупреждение: не удалось загрузить файл .env. Переменные окружения должны быть установлены иным способом.")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Критическая ошибка: не удалось загрузить конфигурацию: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	docStore, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatalf("Критическая ошибка: не удалось инициализировать хранилище: %v", err)
	}
	defer docStore.Close()

	syncer := store.NewSyncer(docStore, cfg.SyncQueueSize)
	go syncer.Run(ctx)

	sessionManager := session.NewSessionManager(docStore)
	defer sessionManager.Close()

	notifier, err := telegram_api.NewNotifier(cfg.TelegramToken, cfg.AppEnv == "dev")
	if err != nil {
		log.Fatalf("Критическая ошибка: не удалось инициализировать Telegram бота: %v", err)
	}

	geocoder := geocode.NewGeocoder(cfg.GeocoderEndpoint)

	// --- Настройка роутера и Middleware ---
	apiRouter := chi.NewRouter()

	// ГЛОБАЛЬНЫЕ MIDDLEWARES ДОЛЖНЫ ИДТИ ПЕРЕД api.SetupRoutes
	apiRouter.Use(middleware.Logger)
	apiRouter.Use(middleware.Recoverer)
	apiRouter.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Driver-Auth"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	apiDeps := api.ApiDependencies{
		Config:   cfg,
		Sessions: sessionManager,
		Syncer:   syncer,
		Store:    docStore,
		Geocoder: geocoder,
		Notifier: notifier,
	}

	api.SetupRoutes(apiRouter, apiDeps)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: apiRouter,
	}

	go func() {
		log.Printf("Запуск HTTP-сервера API на порту %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("КРИТИЧЕСКАЯ ОШИБКА: не удалось запустить HTTP-сервер: %v", err)
		}
	}()

	log.Println("API-сервер запущен и готов к работе...")

	<-ctx.Done()
	log.Println("Остановка: завершение работы сервера...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Ошибка остановки HTTP-сервера: %v", err)
	}
	syncer.Wait()
}

// openStore выбирает backend хранилища по конфигурации.
func openStore(ctx context.Context, cfg *config.Config) (store.DocumentStore, error) {
	switch cfg.StoreBackend {
	case "postgres":
		return store.NewPostgresStore(cfg.DatabaseURL)
	default:
		return store.NewFirestoreStore(ctx, cfg.FirestoreProjectID, cfg.FirestoreCredsFile)
	}
}
