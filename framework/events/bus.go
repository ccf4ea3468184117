// Package events предоставляет реализацию NotificationBus.
package events

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Subscription непрозрачный дескриптор подписки
type Subscription string

// EventMiddleware middleware для событий
type EventMiddleware func(ctx context.Context, event OrderEvent, next func(ctx context.Context, event OrderEvent) error) error

// FailureHandler получает изолированные ошибки наблюдателей
type FailureHandler func(observer string, event OrderEvent, err error)

// subscriberEntry запись подписки в порядке регистрации
type subscriberEntry struct {
	id       Subscription
	observer Observer
}

// NotificationBus шина уведомлений "один ко многим". Доставка идет в порядке
// регистрации по срезу-снимку, взятому в начале публикации: отписка,
// конкурентная с уже идущей публикацией, может не успеть на текущую доставку
// (семантика "снимок на момент публикации").
type NotificationBus struct {
	subscribers []subscriberEntry
	middleware  []EventMiddleware
	onFailure   FailureHandler
	mu          sync.RWMutex
	wg          sync.WaitGroup // для отслеживания активных публикаций
	shutdownMu  sync.Mutex
	stopped     bool
}

// NewNotificationBus создает новую шину уведомлений
func NewNotificationBus() *NotificationBus {
	return &NotificationBus{
		subscribers: make([]subscriberEntry, 0),
		middleware:  make([]EventMiddleware, 0),
	}
}

// WithMiddleware добавляет middleware к шине
func (b *NotificationBus) WithMiddleware(middleware EventMiddleware) *NotificationBus {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.middleware = append(b.middleware, middleware)
	return b
}

// WithFailureHandler устанавливает обработчик ошибок наблюдателей
func (b *NotificationBus) WithFailureHandler(handler FailureHandler) *NotificationBus {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onFailure = handler
	return b
}

// Subscribe регистрирует наблюдателя и возвращает дескриптор подписки
func (b *NotificationBus) Subscribe(observer Observer) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := Subscription(uuid.New().String())
	b.subscribers = append(b.subscribers, subscriberEntry{id: id, observer: observer})
	return id
}

// Unsubscribe удаляет подписку; будущие публикации наблюдателя не достигнут
func (b *NotificationBus) Unsubscribe(id Subscription) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, entry := range b.subscribers {
		if entry.id == id {
			b.subscribers = append(b.subscribers[:i], b.subscribers[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("subscription not found: %s", id)
}

// Publish доставляет событие всем зарегистрированным наблюдателям в порядке
// регистрации. Ошибка или паника одного наблюдателя фиксируется через
// FailureHandler и не прерывает доставку последующим.
func (b *NotificationBus) Publish(ctx context.Context, event OrderEvent) error {
	b.shutdownMu.Lock()
	if b.stopped {
		b.shutdownMu.Unlock()
		return fmt.Errorf("notification bus is stopped")
	}
	b.wg.Add(1)
	b.shutdownMu.Unlock()
	defer b.wg.Done()

	// Применяем middleware
	next := func(ctx context.Context, event OrderEvent) error {
		b.fanOut(ctx, event)
		return nil
	}

	for i := len(b.middleware) - 1; i >= 0; i-- {
		mw := b.middleware[i]
		prevNext := next
		next = func(ctx context.Context, event OrderEvent) error {
			return mw(ctx, event, prevNext)
		}
	}

	return next(ctx, event)
}

// fanOut разносит событие по снимку подписчиков
func (b *NotificationBus) fanOut(ctx context.Context, event OrderEvent) {
	b.mu.RLock()
	snapshot := make([]subscriberEntry, len(b.subscribers))
	copy(snapshot, b.subscribers)
	b.mu.RUnlock()

	for _, entry := range snapshot {
		if err := b.deliver(ctx, entry.observer, event); err != nil {
			b.reportFailure(entry.observer.Name(), event, err)
		}
	}
}

// deliver вызывает наблюдателя, превращая панику в ошибку
func (b *NotificationBus) deliver(ctx context.Context, observer Observer, event OrderEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic recovered: %v", r)
		}
	}()
	return observer.OnEvent(ctx, event)
}

// reportFailure передает ошибку наблюдателя обработчику, если он установлен
func (b *NotificationBus) reportFailure(observer string, event OrderEvent, err error) {
	b.mu.RLock()
	handler := b.onFailure
	b.mu.RUnlock()

	if handler != nil {
		handler(observer, event, err)
	}
}

// SubscriberCount возвращает число активных подписок
func (b *NotificationBus) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

// Shutdown корректно завершает работу шины
func (b *NotificationBus) Shutdown(ctx context.Context) error {
	b.shutdownMu.Lock()
	if b.stopped {
		b.shutdownMu.Unlock()
		return nil // Идемпотентный вызов
	}
	b.stopped = true
	b.shutdownMu.Unlock()

	// Ждем завершения всех активных публикаций
	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(30 * time.Second):
		return fmt.Errorf("shutdown timeout after waiting for active publications")
	}
}
