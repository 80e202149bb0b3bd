// Пакет geocode - best-effort обратное геокодирование для подстановки
// текста адреса посадки/высадки. Ошибки геокодера никогда не блокируют
// сохранение записи.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"
)

// Geocoder - клиент Nominatim-совместимого сервиса обратного геокодирования.
type Geocoder struct {
	endpoint string
	client   *http.Client
}

// reverseResponse - интересующая нас часть ответа сервиса.
type reverseResponse struct {
	DisplayName string `json:"display_name"`
	Address     struct {
		Road          string `json:"road"`
		Neighbourhood string `json:"neighbourhood"`
		Suburb        string `json:"suburb"`
		City          string `json:"city"`
	} `json:"address"`
}

// NewGeocoder создает клиент. Пустой endpoint дает nil - геокодирование
// выключено, вызывающие обязаны это переживать.
func NewGeocoder(endpoint string) *Geocoder {
	if endpoint == "" {
		log.Println("NewGeocoder: endpoint не настроен, геокодирование отключено.")
		return nil
	}
	return &Geocoder{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

// ReverseGeocode возвращает человекочитаемый адрес точки.
// Любая ошибка - это пустая строка и err для логирования у вызывающего.
func (g *Geocoder) ReverseGeocode(ctx context.Context, lat, lon string) (string, error) {
	if g == nil {
		return "", nil
	}

	q := url.Values{}
	q.Set("lat", lat)
	q.Set("lon", lon)
	q.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("создание запроса геокодера: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("запрос геокодера: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("геокодер ответил статусом %d: %s", resp.StatusCode, string(body))
	}

	var parsed reverseResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("разбор ответа геокодера: %w", err)
	}

	// Предпочитаем короткий адрес, полное имя - запасной вариант
	addr := parsed.Address
	for _, candidate := range []string{addr.Road, addr.Neighbourhood, addr.Suburb, addr.City} {
		if candidate != "" {
			return candidate, nil
		}
	}
	return parsed.DisplayName, nil
}
