// Пакет store - документное хранилище с семантикой "ключ-значение" поверх
// Firestore либо Postgres. Наружу отдается узкий интерфейс: чтение документа,
// запись с merge и подписка на изменения. Консистентность - last-writer-wins
// на уровне целого документа.
package store

import "context"

// DocumentStore - документное хранилище.
type DocumentStore interface {
	// Get возвращает поля документа. found == false, если документа нет.
	Get(ctx context.Context, collection, id string) (fields map[string]interface{}, found bool, err error)
	// Set записывает поля документа. При merge существующие поля, не
	// упомянутые в fields, сохраняются; иначе документ замещается целиком.
	Set(ctx context.Context, collection, id string, fields map[string]interface{}, merge bool) error
	// Subscribe вызывает onChange на каждый новый снимок документа.
	// Возвращенная функция останавливает подписку.
	Subscribe(ctx context.Context, collection, id string, onChange func(map[string]interface{})) (stop func(), err error)
	// Close освобождает ресурсы хранилища.
	Close() error
}
