// Package events предоставляет события жизненного цикла заказа
// и шину уведомлений для их доставки наблюдателям.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/orderkit/orderkit/framework/money"
)

// EventType тип события заказа
type EventType string

const (
	EventOrderCreated     EventType = "order.created"
	EventOrderPriced      EventType = "order.priced"
	EventPaymentSucceeded EventType = "order.payment_succeeded"
	EventPaymentFailed    EventType = "order.payment_failed"
	EventOrderCancelled   EventType = "order.cancelled"
)

// OrderEvent событие перехода заказа. Неизменяемое значение: ссылается на
// заказ только по идентификатору, никогда по живой ссылке.
type OrderEvent struct {
	eventID    string
	eventType  EventType
	orderID    string
	occurredAt time.Time
	total      money.Money
	reason     string
}

// NewOrderEvent создает новое событие заказа
func NewOrderEvent(eventType EventType, orderID string) OrderEvent {
	return OrderEvent{
		eventID:    uuid.New().String(),
		eventType:  eventType,
		orderID:    orderID,
		occurredAt: time.Now(),
	}
}

// WithTotal устанавливает итоговую сумму в полезной нагрузке события
func (e OrderEvent) WithTotal(total money.Money) OrderEvent {
	e.total = total
	return e
}

// WithReason устанавливает причину (отказ оплаты, отмена)
func (e OrderEvent) WithReason(reason string) OrderEvent {
	e.reason = reason
	return e
}

// EventID возвращает уникальный идентификатор события
func (e OrderEvent) EventID() string {
	return e.eventID
}

// Type возвращает тип события
func (e OrderEvent) Type() EventType {
	return e.eventType
}

// OrderID возвращает идентификатор заказа
func (e OrderEvent) OrderID() string {
	return e.orderID
}

// OccurredAt возвращает время возникновения события
func (e OrderEvent) OccurredAt() time.Time {
	return e.occurredAt
}

// Total возвращает итоговую сумму (для priced / payment_succeeded)
func (e OrderEvent) Total() money.Money {
	return e.total
}

// Reason возвращает причину (для payment_failed / cancelled)
func (e OrderEvent) Reason() string {
	return e.reason
}

// Observer наблюдатель событий заказа
type Observer interface {
	// OnEvent обрабатывает событие
	OnEvent(ctx context.Context, event OrderEvent) error
	// Name возвращает имя наблюдателя
	Name() string
}

// ObserverFunc функция, реализующая Observer
type ObserverFunc struct {
	name string
	fn   func(ctx context.Context, event OrderEvent) error
}

// NewObserverFunc создает наблюдателя из функции
func NewObserverFunc(name string, fn func(ctx context.Context, event OrderEvent) error) *ObserverFunc {
	return &ObserverFunc{name: name, fn: fn}
}

func (o *ObserverFunc) Name() string {
	return o.name
}

func (o *ObserverFunc) OnEvent(ctx context.Context, event OrderEvent) error {
	return o.fn(ctx, event)
}

// FilteredObserver наблюдатель, получающий только события указанных типов
type FilteredObserver struct {
	inner Observer
	types map[EventType]struct{}
}

// NewFilteredObserver оборачивает наблюдателя фильтром по типам событий
func NewFilteredObserver(inner Observer, types ...EventType) *FilteredObserver {
	set := make(map[EventType]struct{}, len(types))
	for _, t := range types {
		set[t] = struct{}{}
	}
	return &FilteredObserver{inner: inner, types: set}
}

func (o *FilteredObserver) Name() string {
	return o.inner.Name()
}

func (o *FilteredObserver) OnEvent(ctx context.Context, event OrderEvent) error {
	if _, ok := o.types[event.Type()]; !ok {
		return nil
	}
	return o.inner.OnEvent(ctx, event)
}
