// Package testing предоставляет утилиты для тестирования приложений на базе библиотеки.
package testing

import (
	"context"
	"sync"
	"testing"

	"github.com/orderkit/orderkit/framework/events"
	"github.com/orderkit/orderkit/framework/payment"
	"github.com/orderkit/orderkit/framework/pricing"
	"github.com/orderkit/orderkit/framework/processor"
	"github.com/orderkit/orderkit/framework/registry"
)

// CaptureObserver наблюдатель, накапливающий события для проверок
type CaptureObserver struct {
	mu     sync.Mutex
	events []events.OrderEvent
}

// NewCaptureObserver создает накапливающего наблюдателя
func NewCaptureObserver() *CaptureObserver {
	return &CaptureObserver{}
}

func (o *CaptureObserver) Name() string {
	return "capture"
}

func (o *CaptureObserver) OnEvent(ctx context.Context, event events.OrderEvent) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, event)
	return nil
}

// Events возвращает копию накопленных событий в порядке публикации
func (o *CaptureObserver) Events() []events.OrderEvent {
	o.mu.Lock()
	defer o.mu.Unlock()
	result := make([]events.OrderEvent, len(o.events))
	copy(result, o.events)
	return result
}

// Types возвращает типы накопленных событий в порядке публикации
func (o *CaptureObserver) Types() []events.EventType {
	o.mu.Lock()
	defer o.mu.Unlock()
	result := make([]events.EventType, len(o.events))
	for i, e := range o.events {
		result[i] = e.Type()
	}
	return result
}

// Reset очищает накопленные события
func (o *CaptureObserver) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = nil
}

// InMemoryTestEnvironment тестовая среда с готовыми in-memory компонентами:
// шина, реестр со встроенными стратегиями и декораторами, процессор, фасад
// и накапливающий наблюдатель
type InMemoryTestEnvironment struct {
	Bus       *events.NotificationBus
	Registry  *registry.Registry
	Processor *processor.Processor
	Service   *processor.Service
	Capture   *CaptureObserver
}

// NewInMemoryTestEnvironment создает новую тестовую среду. Реестр заполнен
// карточной стратегией и налогом 8% (конфигурация сценариев из примеров).
// Если регистрация завершается с ошибкой, тест завершается с t.Fatalf.
func NewInMemoryTestEnvironment(t *testing.T) *InMemoryTestEnvironment {
	bus := events.NewNotificationBus()
	reg := registry.NewRegistry()

	if err := reg.RegisterStrategy("creditcard", payment.NewCreditCardStrategy()); err != nil {
		t.Fatalf("failed to register strategy: %v", err)
	}
	if err := reg.RegisterDecorator(registry.DecoratorEntry{
		Name:      "tax",
		Decorator: pricing.NewTaxDecorator("tax", 800),
		Priority:  pricing.PriorityTax,
	}); err != nil {
		t.Fatalf("failed to register decorator: %v", err)
	}

	capture := NewCaptureObserver()
	bus.Subscribe(capture)

	proc := processor.NewProcessor(reg, bus)

	return &InMemoryTestEnvironment{
		Bus:       bus,
		Registry:  reg,
		Processor: proc,
		Service:   processor.NewService(proc, bus),
		Capture:   capture,
	}
}

// Shutdown корректно завершает работу тестовой среды
func (e *InMemoryTestEnvironment) Shutdown(ctx context.Context) error {
	return e.Bus.Shutdown(ctx)
}
