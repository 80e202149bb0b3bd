package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/toppo2000-ai/Taxi-Navigator-sub002/internal/calendar"
	"github.com/toppo2000-ai/Taxi-Navigator-sub002/internal/config"
	"github.com/toppo2000-ai/Taxi-Navigator-sub002/internal/constants"
	"github.com/toppo2000-ai/Taxi-Navigator-sub002/internal/geocode"
	"github.com/toppo2000-ai/Taxi-Navigator-sub002/internal/importer"
	"github.com/toppo2000-ai/Taxi-Navigator-sub002/internal/models"
	"github.com/toppo2000-ai/Taxi-Navigator-sub002/internal/session"
	"github.com/toppo2000-ai/Taxi-Navigator-sub002/internal/status"
	"github.com/toppo2000-ai/Taxi-Navigator-sub002/internal/store"
	"github.com/toppo2000-ai/Taxi-Navigator-sub002/internal/telegram_api"
	"github.com/toppo2000-ai/Taxi-Navigator-sub002/internal/utils"
)

// maxImportSize - предел размера загружаемого CSV.
const maxImportSize = 8 << 20

// ApiDependencies содержит зависимости для обработчиков API.
type ApiDependencies struct {
	Config   *config.Config
	Sessions *session.SessionManager
	Syncer   *store.Syncer
	Store    store.DocumentStore
	Geocoder *geocode.Geocoder
	Notifier *telegram_api.Notifier
}

// Handlers - обработчики HTTP API.
type Handlers struct {
	deps ApiDependencies
}

// NewHandlers создает набор обработчиков.
func NewHandlers(deps ApiDependencies) *Handlers {
	return &Handlers{deps: deps}
}

// persist ставит в очередь синхронизации свежий документ водителя и его
// публичную проекцию. Вызывается после каждой мутации; локальное состояние
// уже применено и авторитетно.
func (h *Handlers) persist(s *session.DriverSession, now time.Time, summary models.StatusSummary) {
	fields, err := s.ToDocument()
	if err != nil {
		log.Printf("persist: сериализация сессии %s не удалась: %v", s.UID, err)
		return
	}
	h.deps.Syncer.Enqueue(constants.COLLECTION_USERS, s.UID, fields, true)
	h.deps.Syncer.Enqueue(constants.COLLECTION_PUBLIC_STATUS, s.UID, status.Fields(summary), true)
}

// --- Записи о поездках ---

// SaveRecord сохраняет запись (вставка либо полная замена по ID).
func (h *Handlers) SaveRecord(w http.ResponseWriter, r *http.Request) {
	uid := DriverUID(r)

	var rec models.SalesRecord
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		http.Error(w, "Bad Request: invalid record JSON", http.StatusBadRequest)
		return
	}

	h.fillLocations(r.Context(), &rec)
	if rec.ID == "" {
		rec.ID = utils.GenerateID()
	}

	now := time.Now()
	err := h.deps.Sessions.With(r.Context(), uid, func(s *session.DriverSession) error {
		if err := s.SaveRecord(rec); err != nil {
			return err
		}
		h.persist(s, now, status.Project(s, now))
		return nil
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// DeleteRecord удаляет запись по ID. Идемпотентен.
func (h *Handlers) DeleteRecord(w http.ResponseWriter, r *http.Request) {
	uid := DriverUID(r)
	id := chi.URLParam(r, "id")

	now := time.Now()
	err := h.deps.Sessions.With(r.Context(), uid, func(s *session.DriverSession) error {
		s.DeleteRecord(id)
		h.persist(s, now, status.Project(s, now))
		return nil
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// GetRecords возвращает записи: ?date=YYYY/MM/DD - за деловую дату,
// ?from=&to= (YYYY/MM/DD) - за диапазон, без параметров - все.
func (h *Handlers) GetRecords(w http.ResponseWriter, r *http.Request) {
	uid := DriverUID(r)
	q := r.URL.Query()

	var out []models.SalesRecord
	err := h.deps.Sessions.With(r.Context(), uid, func(s *session.DriverSession) error {
		switch {
		case q.Get("date") != "":
			out = s.RecordsInBusinessDate(q.Get("date"))
		case q.Get("from") != "" && q.Get("to") != "":
			from, errF := parseBusinessDate(q.Get("from"), s.StartHour())
			to, errT := parseBusinessDate(q.Get("to"), s.StartHour())
			if errF != nil || errT != nil {
				return fmt.Errorf("некорректный диапазон дат")
			}
			out = s.RecordsInPeriod(from, to)
		default:
			out = s.AllRecords()
		}
		return nil
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if out == nil {
		out = []models.SalesRecord{}
	}
	writeJSON(w, http.StatusOK, out)
}

// --- Смена ---

type startShiftRequest struct {
	DailyGoal    int     `json:"dailyGoal"`
	PlannedHours float64 `json:"plannedHours"`
}

// StartShift открывает смену. Повторный вызов при открытой смене - no-op.
func (h *Handlers) StartShift(w http.ResponseWriter, r *http.Request) {
	uid := DriverUID(r)

	var req startShiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		http.Error(w, "Bad Request: invalid JSON", http.StatusBadRequest)
		return
	}

	now := time.Now()
	var shift models.Shift
	err := h.deps.Sessions.With(r.Context(), uid, func(s *session.DriverSession) error {
		goal := req.DailyGoal
		if goal == 0 {
			goal = s.Stats.DefaultDailyGoal
		}
		s.StartShift(goal, req.PlannedHours, now)
		// Копия под мьютексом: снимок из хранилища может заместить
		// сессию сразу после выхода из With
		shift = *s.Shift
		h.persist(s, now, status.Project(s, now))
		return nil
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, shift)
}

// FinalizeShift закрывает смену и транслирует итоговую сводку.
func (h *Handlers) FinalizeShift(w http.ResponseWriter, r *http.Request) {
	uid := DriverUID(r)

	now := time.Now()
	var summary models.ShiftSummary
	err := h.deps.Sessions.With(r.Context(), uid, func(s *session.DriverSession) error {
		var errF error
		summary, errF = s.FinalizeShift(now)
		if errF != nil {
			return errF
		}
		h.persist(s, now, status.Completed(s, summary, now))
		h.deps.Notifier.SendShiftSummary(s.Stats.TelegramChatID, summary)
		return nil
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// StartBreak включает перерыв.
func (h *Handlers) StartBreak(w http.ResponseWriter, r *http.Request) {
	h.toggleBreak(w, r, true)
}

// StopBreak выключает перерыв.
func (h *Handlers) StopBreak(w http.ResponseWriter, r *http.Request) {
	h.toggleBreak(w, r, false)
}

func (h *Handlers) toggleBreak(w http.ResponseWriter, r *http.Request, start bool) {
	uid := DriverUID(r)

	now := time.Now()
	var breakState models.BreakState
	err := h.deps.Sessions.With(r.Context(), uid, func(s *session.DriverSession) error {
		if start {
			s.StartBreak(now)
		} else {
			s.StopBreak(now)
		}
		breakState = s.Break
		h.persist(s, now, status.Project(s, now))
		return nil
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, breakState)
}

// --- Импорт CSV ---

type importResponse struct {
	Updated  int `json:"updated"`
	Inserted int `json:"inserted"`
}

// ImportCSV принимает multipart-файл "file" с выгрузкой таксометра.
// Пачка без единой пригодной записи отклоняется целиком, состояние
// не меняется.
func (h *Handlers) ImportCSV(w http.ResponseWriter, r *http.Request) {
	uid := DriverUID(r)

	if err := r.ParseMultipartForm(maxImportSize); err != nil {
		http.Error(w, "Bad Request: invalid multipart form", http.StatusBadRequest)
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "Bad Request: missing file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	raw, err := io.ReadAll(io.LimitReader(file, maxImportSize))
	if err != nil {
		http.Error(w, "Bad Request: cannot read file", http.StatusBadRequest)
		return
	}

	now := time.Now()
	var resp importResponse
	err = h.deps.Sessions.With(r.Context(), uid, func(s *session.DriverSession) error {
		candidates, errP := importer.Parse(raw, s.Stats)
		if errP != nil {
			return errP
		}
		resp.Updated, resp.Inserted = s.ImportRecords(candidates)
		h.persist(s, now, status.Project(s, now))
		return nil
	})
	if err != nil {
		if err == importer.ErrUnrecognizedFormat {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": "unrecognized format"})
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- Статус ---

// GetStatus возвращает текущую проекцию статуса.
func (h *Handlers) GetStatus(w http.ResponseWriter, r *http.Request) {
	uid := DriverUID(r)

	now := time.Now()
	var summary models.StatusSummary
	err := h.deps.Sessions.With(r.Context(), uid, func(s *session.DriverSession) error {
		summary = status.Project(s, now)
		return nil
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// GetStatusQR отдает PNG с QR-кодом публичной ссылки на статус.
func (h *Handlers) GetStatusQR(w http.ResponseWriter, r *http.Request) {
	uid := DriverUID(r)

	png, err := utils.GenerateStatusQRCode(h.deps.Config.PublicBaseURL, uid)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(png); err != nil {
		log.Printf("GetStatusQR: ошибка записи ответа: %v", err)
	}
}

// PublicStatus отдает публичную проекцию без аутентификации.
func (h *Handlers) PublicStatus(w http.ResponseWriter, r *http.Request) {
	uid := chi.URLParam(r, "uid")

	fields, found, err := h.deps.Store.Get(r.Context(), constants.COLLECTION_PUBLIC_STATUS, uid)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if !found {
		writeJSON(w, http.StatusOK, map[string]string{"state": constants.STATUS_OFFLINE})
		return
	}
	writeJSON(w, http.StatusOK, fields)
}

// --- Настройки ---

// GetSettings возвращает настройки водителя.
func (h *Handlers) GetSettings(w http.ResponseWriter, r *http.Request) {
	uid := DriverUID(r)

	var stats models.MonthlyStats
	err := h.deps.Sessions.With(r.Context(), uid, func(s *session.DriverSession) error {
		stats = s.Stats
		return nil
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// UpdateSettings замещает настройки водителя (некорректные значения
// приводятся к допустимым).
func (h *Handlers) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	uid := DriverUID(r)

	var stats models.MonthlyStats
	if err := json.NewDecoder(r.Body).Decode(&stats); err != nil {
		http.Error(w, "Bad Request: invalid settings JSON", http.StatusBadRequest)
		return
	}
	stats.Normalize()

	now := time.Now()
	err := h.deps.Sessions.With(r.Context(), uid, func(s *session.DriverSession) error {
		s.Stats = stats
		h.persist(s, now, status.Project(s, now))
		return nil
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// --- Метаданные дня ---

// SetDayMetadata записывает памятку/минуты отдыха деловой даты.
func (h *Handlers) SetDayMetadata(w http.ResponseWriter, r *http.Request) {
	uid := DriverUID(r)
	date := chi.URLParam(r, "date")
	date = strings.ReplaceAll(date, "-", "/")

	var meta models.DayMetadata
	if err := json.NewDecoder(r.Body).Decode(&meta); err != nil {
		http.Error(w, "Bad Request: invalid metadata JSON", http.StatusBadRequest)
		return
	}

	now := time.Now()
	err := h.deps.Sessions.With(r.Context(), uid, func(s *session.DriverSession) error {
		s.SetDayMetadata(date, meta)
		h.persist(s, now, status.Project(s, now))
		return nil
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, meta)
}

// --- Вспомогательные ---

// fillLocations best-effort подставляет текст адресов по координатам.
// Ошибки геокодера никогда не блокируют сохранение.
func (h *Handlers) fillLocations(ctx context.Context, rec *models.SalesRecord) {
	if h.deps.Geocoder == nil {
		return
	}
	geoCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if rec.PickupLocation == "" && rec.PickupCoords != "" {
		if lat, lon, ok := strings.Cut(rec.PickupCoords, ","); ok {
			addr, err := h.deps.Geocoder.ReverseGeocode(geoCtx, lat, lon)
			if err != nil {
				log.Printf("fillLocations: геокодирование посадки не удалось: %v", err)
			} else {
				rec.PickupLocation = addr
			}
		}
	}
	if rec.DropoffLocation == "" && rec.DropoffCoords != "" {
		if lat, lon, ok := strings.Cut(rec.DropoffCoords, ","); ok {
			addr, err := h.deps.Geocoder.ReverseGeocode(geoCtx, lat, lon)
			if err != nil {
				log.Printf("fillLocations: геокодирование высадки не удалось: %v", err)
			} else {
				rec.DropoffLocation = addr
			}
		}
	}
}

func parseBusinessDate(s string, startHour int) (time.Time, error) {
	s = strings.ReplaceAll(s, "-", "/")
	d, err := time.ParseInLocation(calendar.BusinessDateFormat, s, time.Local)
	if err != nil {
		return time.Time{}, err
	}
	// Якорь - startHour:00 этой календарной даты: деловая дата такого
	// момента при любом часе ролловера равна самой дате
	return time.Date(d.Year(), d.Month(), d.Day(), startHour, 0, 0, 0, time.Local), nil
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("writeJSON: ошибка кодирования ответа: %v", err)
	}
}
