package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// SetupRoutes настраивает все маршруты для API.
func SetupRoutes(r *chi.Mux, deps ApiDependencies) {
	h := NewHandlers(deps)

	// Публичная проекция статуса - без аутентификации
	r.Get("/public/status/{uid}", h.PublicStatus)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(deps.Config.AuthSecret))

		// --- Записи о поездках ---
		r.Post("/api/records", h.SaveRecord)
		r.Get("/api/records", h.GetRecords)
		r.Delete("/api/records/{id}", h.DeleteRecord)

		// --- Жизненный цикл смены ---
		r.Route("/api/shift", func(r chi.Router) {
			r.Post("/start", h.StartShift)
			r.Post("/finalize", h.FinalizeShift)
			r.Post("/break/start", h.StartBreak)
			r.Post("/break/stop", h.StopBreak)
		})

		// --- Импорт выгрузки таксометра ---
		r.Post("/api/import", h.ImportCSV)

		// --- Статус и отчеты ---
		r.Get("/api/status", h.GetStatus)
		r.Get("/api/status/qr", h.GetStatusQR)
		r.Get("/api/report/export", h.ExportPeriodReport)

		// --- Настройки и метаданные дня ---
		r.Get("/api/settings", h.GetSettings)
		r.Post("/api/settings", h.UpdateSettings)
		r.Put("/api/days/{date}", h.SetDayMetadata)
	})
}
