package utils

import (
	"fmt"
	"log"

	"github.com/skip2/go-qrcode"
)

// GeneratePublicStatusLink генерирует публичную ссылку на статус водителя.
// baseURL передается из конфигурации.
func GeneratePublicStatusLink(baseURL, uid string) (string, error) {
	if baseURL == "" {
		log.Println("GeneratePublicStatusLink: базовый URL не настроен.")
		return "", fmt.Errorf("публичный базовый URL не настроен")
	}
	if uid == "" {
		return "", fmt.Errorf("пустой идентификатор водителя")
	}
	return fmt.Sprintf("%s/public/status/%s", baseURL, uid), nil
}

// GenerateStatusQRCode генерирует QR-код публичной ссылки на статус.
func GenerateStatusQRCode(baseURL, uid string) ([]byte, error) {
	link, err := GeneratePublicStatusLink(baseURL, uid)
	if err != nil {
		return nil, err
	}

	// qrcode.Medium - уровень коррекции ошибок, 256 - размер QR-кода в пикселях.
	qrBytes, err := qrcode.Encode(link, qrcode.Medium, 256)
	if err != nil {
		log.Printf("GenerateStatusQRCode: ошибка кодирования QR-кода для ссылки '%s': %v", link, err)
		return nil, err
	}
	return qrBytes, nil
}
