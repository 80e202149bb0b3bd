package session

import (
	"context"
	"log"
	"sync"

	"github.com/toppo2000-ai/Taxi-Navigator-sub002/internal/constants"
)

// SnapshotStore - узкий интерфейс документного хранилища, который нужен
// менеджеру сессий: чтение снимка и подписка на изменения.
type SnapshotStore interface {
	Get(ctx context.Context, collection, id string) (map[string]interface{}, bool, error)
	Subscribe(ctx context.Context, collection, id string, onChange func(map[string]interface{})) (func(), error)
}

// SessionManager хранит по одной DriverSession на водителя и сериализует
// мутации поверх нее: на каждого водителя один логический писатель.
// Подписка на документ хранилища заводится при первом обращении; приходящий
// снимок считается авторитетным и полностью замещает локальное состояние.
type SessionManager struct {
	mu       sync.Mutex
	sessions map[string]*managedSession
	store    SnapshotStore
}

type managedSession struct {
	mu      sync.Mutex
	session *DriverSession
	stop    func()
}

// NewSessionManager создает менеджер поверх хранилища снимков.
// store может быть nil (режим без подписки, используется в тестах).
func NewSessionManager(store SnapshotStore) *SessionManager {
	return &SessionManager{
		sessions: make(map[string]*managedSession),
		store:    store,
	}
}

// With выполняет fn поверх сессии водителя под ее мьютексом.
// Сессия лениво загружается из хранилища при первом обращении.
func (sm *SessionManager) With(ctx context.Context, uid string, fn func(*DriverSession) error) error {
	ms, err := sm.acquire(ctx, uid)
	if err != nil {
		return err
	}
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return fn(ms.session)
}

// Close отписывает все сессии от хранилища.
func (sm *SessionManager) Close() {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	for uid, ms := range sm.sessions {
		if ms.stop != nil {
			ms.stop()
		}
		delete(sm.sessions, uid)
	}
}

func (sm *SessionManager) acquire(ctx context.Context, uid string) (*managedSession, error) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if ms, ok := sm.sessions[uid]; ok {
		return ms, nil
	}

	ms := &managedSession{session: NewDriverSession(uid)}

	if sm.store != nil {
		fields, found, err := sm.store.Get(ctx, constants.COLLECTION_USERS, uid)
		if err != nil {
			return nil, err
		}
		if found {
			if err := ms.session.ApplySnapshot(fields); err != nil {
				log.Printf("SessionManager.acquire: поврежденный снимок для %s, начинаем с пустого состояния: %v", uid, err)
			}
		}

		stop, err := sm.store.Subscribe(ctx, constants.COLLECTION_USERS, uid, func(fields map[string]interface{}) {
			ms.mu.Lock()
			defer ms.mu.Unlock()
			if err := ms.session.ApplySnapshot(fields); err != nil {
				log.Printf("SessionManager: снимок из подписки для %s не применен: %v", uid, err)
			}
		})
		if err != nil {
			// Подписка - best-effort: без нее работаем только с локальным состоянием
			log.Printf("SessionManager.acquire: подписка для %s не установлена: %v", uid, err)
		} else {
			ms.stop = stop
		}
	}

	sm.sessions[uid] = ms
	return ms, nil
}
