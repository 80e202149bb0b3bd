package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/lib/pq"
)

const notifyChannel = "documents_changed"

// PostgresStore - self-hosted реализация DocumentStore: одна таблица
// documents с JSONB-полем, merge через конкатенацию jsonb, подписка через
// LISTEN/NOTIFY.
type PostgresStore struct {
	db       *sql.DB
	listener *pq.Listener

	mu   sync.Mutex
	subs map[string][]func(map[string]interface{}) // Ключ: collection/id
}

// NewPostgresStore открывает соединение и выполняет миграцию.
func NewPostgresStore(databaseURL string) (*PostgresStore, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL не установлена")
	}

	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к базе данных: %w", err)
	}

	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ошибка проверки соединения с базой данных: %w", err)
	}

	createSQL := `
        CREATE TABLE IF NOT EXISTS documents (
            collection TEXT NOT NULL,
            doc_id     TEXT NOT NULL,
            data       JSONB NOT NULL DEFAULT '{}'::jsonb,
            updated_at TIMESTAMP NOT NULL DEFAULT now(),
            PRIMARY KEY (collection, doc_id)
        );`
	if _, err := db.Exec(createSQL); err != nil {
		return nil, fmt.Errorf("ошибка миграции таблицы documents: %w", err)
	}
	log.Println("NewPostgresStore: успешное подключение к базе данных, миграция выполнена.")

	ps := &PostgresStore{
		db:   db,
		subs: make(map[string][]func(map[string]interface{})),
	}

	ps.listener = pq.NewListener(databaseURL, 10*time.Second, time.Minute, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			log.Printf("PostgresStore: событие слушателя %d: %v", ev, err)
		}
	})
	if err := ps.listener.Listen(notifyChannel); err != nil {
		return nil, fmt.Errorf("ошибка LISTEN %s: %w", notifyChannel, err)
	}
	go ps.dispatchNotifications()

	return ps, nil
}

func (ps *PostgresStore) Get(ctx context.Context, collection, id string) (map[string]interface{}, bool, error) {
	var raw []byte
	err := ps.db.QueryRowContext(ctx,
		`SELECT data FROM documents WHERE collection = $1 AND doc_id = $2`,
		collection, id).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("чтение %s/%s: %w", collection, id, err)
	}

	var fields map[string]interface{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, false, fmt.Errorf("разбор JSONB %s/%s: %w", collection, id, err)
	}
	return fields, true, nil
}

func (ps *PostgresStore) Set(ctx context.Context, collection, id string, fields map[string]interface{}, merge bool) error {
	raw, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("сериализация %s/%s: %w", collection, id, err)
	}

	// При merge новые поля накладываются поверх существующих (конкатенация
	// jsonb затирает только упомянутые верхнеуровневые ключи)
	assign := "EXCLUDED.data"
	if merge {
		assign = "documents.data || EXCLUDED.data"
	}
	query := fmt.Sprintf(`
        INSERT INTO documents (collection, doc_id, data, updated_at)
        VALUES ($1, $2, $3::jsonb, now())
        ON CONFLICT (collection, doc_id)
        DO UPDATE SET data = %s, updated_at = now()`, assign)

	if _, err := ps.db.ExecContext(ctx, query, collection, id, string(raw)); err != nil {
		return fmt.Errorf("запись %s/%s: %w", collection, id, err)
	}

	if _, err := ps.db.ExecContext(ctx, `SELECT pg_notify($1, $2)`, notifyChannel, collection+"/"+id); err != nil {
		// Уведомление best-effort: запись уже состоялась
		log.Printf("PostgresStore.Set: pg_notify для %s/%s не отправлен: %v", collection, id, err)
	}
	return nil
}

func (ps *PostgresStore) Subscribe(ctx context.Context, collection, id string, onChange func(map[string]interface{})) (func(), error) {
	key := collection + "/" + id

	ps.mu.Lock()
	ps.subs[key] = append(ps.subs[key], onChange)
	idx := len(ps.subs[key]) - 1
	ps.mu.Unlock()

	stop := func() {
		ps.mu.Lock()
		defer ps.mu.Unlock()
		if cbs, ok := ps.subs[key]; ok && idx < len(cbs) {
			cbs[idx] = nil
		}
	}
	return stop, nil
}

// dispatchNotifications раздает уведомления LISTEN/NOTIFY подписчикам,
// перечитывая документ на каждое событие.
func (ps *PostgresStore) dispatchNotifications() {
	for n := range ps.listener.Notify {
		if n == nil {
			// Переподключение слушателя; состояние могло быть пропущено
			continue
		}
		key := n.Extra

		ps.mu.Lock()
		callbacks := append([]func(map[string]interface{}){}, ps.subs[key]...)
		ps.mu.Unlock()

		if len(callbacks) == 0 {
			continue
		}

		parts := strings.SplitN(key, "/", 2)
		if len(parts) != 2 {
			continue
		}
		fields, found, err := ps.Get(context.Background(), parts[0], parts[1])
		if err != nil || !found {
			if err != nil {
				log.Printf("PostgresStore: перечитывание %s после NOTIFY не удалось: %v", key, err)
			}
			continue
		}
		for _, cb := range callbacks {
			if cb != nil {
				cb(fields)
			}
		}
	}
}

func (ps *PostgresStore) Close() error {
	if err := ps.listener.Close(); err != nil {
		log.Printf("PostgresStore.Close: ошибка закрытия слушателя: %v", err)
	}
	return ps.db.Close()
}
