// Package processor предоставляет синхронный фасад над процессором.
package processor

import (
	"context"
	"sync"

	"github.com/orderkit/orderkit/framework/events"
	"github.com/orderkit/orderkit/framework/order"
)

// Service синхронный фасад библиотеки. Удерживает живые ссылки на заказы
// только до терминального статуса: библиотека ничего не персистит, после
// Paid или Cancelled ссылка отпускается и заказ доступен сборщику мусора.
type Service struct {
	processor *Processor
	bus       *events.NotificationBus
	mu        sync.Mutex
	active    map[string]*order.Order
}

// NewService создает фасад над процессором и шиной
func NewService(p *Processor, bus *events.NotificationBus) *Service {
	return &Service{
		processor: p,
		bus:       bus,
		active:    make(map[string]*order.Order),
	}
}

// SubmitOrder подает заказ на обработку и возвращает терминальное для этой
// подачи событие. Заказ в Failed можно подать повторно.
func (s *Service) SubmitOrder(ctx context.Context, o *order.Order) (events.OrderEvent, error) {
	s.track(o)

	event, err := s.processor.Submit(ctx, o)
	if o.Status().IsTerminal() {
		s.release(o.ID())
	}
	return event, err
}

// CancelOrder отменяет заказ по идентификатору. Возвращает false, если заказ
// неизвестен фасаду или уже терминален.
func (s *Service) CancelOrder(ctx context.Context, orderID string) bool {
	s.mu.Lock()
	o, ok := s.active[orderID]
	s.mu.Unlock()

	if !ok || o.Status().IsTerminal() {
		return false
	}

	if _, err := s.processor.Cancel(ctx, o, "cancelled by caller"); err != nil {
		return false
	}
	s.release(orderID)
	return true
}

// Subscribe регистрирует наблюдателя событий заказа
func (s *Service) Subscribe(observer events.Observer) events.Subscription {
	return s.bus.Subscribe(observer)
}

// Unsubscribe удаляет подписку
func (s *Service) Unsubscribe(sub events.Subscription) error {
	return s.bus.Unsubscribe(sub)
}

// ActiveOrders возвращает число удерживаемых нетерминальных заказов
func (s *Service) ActiveOrders() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.active)
}

// track удерживает ссылку на нетерминальный заказ
func (s *Service) track(o *order.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !o.Status().IsTerminal() {
		s.active[o.ID()] = o
	}
}

// release отпускает ссылку на заказ
func (s *Service) release(orderID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.active, orderID)
}
