package store

import (
	"context"
	"log"
	"time"
)

// pendingWrite - одна отложенная запись в хранилище.
type pendingWrite struct {
	collection string
	id         string
	fields     map[string]interface{}
	merge      bool
}

// Syncer - исходящий канал best-effort синхронизации. Локальное состояние
// обновляется синхронно и сразу считается авторитетным; запись в хранилище
// идет из фоновой горутины и может потеряться. Каждая запись несет полный
// актуальный документ, поэтому при переполнении очереди старейшая запись
// просто выбрасывается: более поздняя ее перекрывает. Ошибки записи
// логируются и не ретраятся - следующая успешная мутация унесет свежее
// состояние.
type Syncer struct {
	store   DocumentStore
	queue   chan pendingWrite
	timeout time.Duration
	done    chan struct{}
}

// NewSyncer создает синхронизатор с ограниченной очередью.
func NewSyncer(store DocumentStore, queueSize int) *Syncer {
	if queueSize <= 0 {
		queueSize = 64
	}
	return &Syncer{
		store:   store,
		queue:   make(chan pendingWrite, queueSize),
		timeout: 15 * time.Second,
		done:    make(chan struct{}),
	}
}

// Enqueue ставит запись в очередь, не блокируя вызывающего.
// При переполненной очереди выбрасывается старейшая отложенная запись.
func (s *Syncer) Enqueue(collection, id string, fields map[string]interface{}, merge bool) {
	w := pendingWrite{collection: collection, id: id, fields: fields, merge: merge}
	for {
		select {
		case s.queue <- w:
			return
		default:
		}
		select {
		case dropped := <-s.queue:
			log.Printf("Syncer.Enqueue: очередь переполнена, запись %s/%s выброшена.", dropped.collection, dropped.id)
		default:
		}
	}
}

// Run крутит цикл записи до отмены контекста.
func (s *Syncer) Run(ctx context.Context) {
	defer close(s.done)
	for {
		select {
		case <-ctx.Done():
			return
		case w := <-s.queue:
			writeCtx, cancel := context.WithTimeout(context.Background(), s.timeout)
			if err := s.store.Set(writeCtx, w.collection, w.id, w.fields, w.merge); err != nil {
				// Локальная мутация уже применена и не откатывается
				log.Printf("Syncer: запись %s/%s не удалась (будет перекрыта следующей): %v", w.collection, w.id, err)
			}
			cancel()
		}
	}
}

// Wait блокируется до завершения цикла Run.
func (s *Syncer) Wait() {
	<-s.done
}
