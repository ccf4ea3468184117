// Package events предоставляет примеры наблюдателей.
package events

import (
	"context"
	"fmt"
	"log"
	"sync"
)

// LogSink приемник журналирования, потребляемый наблюдателями
type LogSink interface {
	Log(level string, message string)
}

// defaultLogSink простая реализация LogSink поверх стандартного log
type defaultLogSink struct{}

func (l *defaultLogSink) Log(level string, message string) {
	log.Printf("[%s] %s", level, message)
}

// NewDefaultLogSink возвращает приемник на основе стандартного log
func NewDefaultLogSink() LogSink {
	return &defaultLogSink{}
}

// LoggingObserver наблюдатель, журналирующий события заказа
type LoggingObserver struct {
	sink LogSink
}

// NewLoggingObserver создает журналирующий наблюдатель
func NewLoggingObserver(sink LogSink) *LoggingObserver {
	if sink == nil {
		sink = NewDefaultLogSink()
	}
	return &LoggingObserver{sink: sink}
}

func (o *LoggingObserver) Name() string {
	return "logging"
}

func (o *LoggingObserver) OnEvent(ctx context.Context, event OrderEvent) error {
	switch event.Type() {
	case EventPaymentFailed:
		o.sink.Log("WARN", fmt.Sprintf("order %s: %s (%s)", event.OrderID(), event.Type(), event.Reason()))
	case EventOrderCancelled:
		o.sink.Log("INFO", fmt.Sprintf("order %s: cancelled", event.OrderID()))
	default:
		o.sink.Log("INFO", fmt.Sprintf("order %s: %s %s", event.OrderID(), event.Type(), event.Total()))
	}
	return nil
}

// InventoryObserver наблюдатель, списывающий остатки по оплаченным заказам.
// Таблица остатков хранится в памяти и защищена мьютексом.
type InventoryObserver struct {
	mu       sync.Mutex
	reserved map[string]int // orderID -> учтено
	adjusted int
}

// NewInventoryObserver создает наблюдателя остатков
func NewInventoryObserver() *InventoryObserver {
	return &InventoryObserver{
		reserved: make(map[string]int),
	}
}

func (o *InventoryObserver) Name() string {
	return "inventory"
}

func (o *InventoryObserver) OnEvent(ctx context.Context, event OrderEvent) error {
	if event.Type() != EventPaymentSucceeded {
		return nil
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if _, seen := o.reserved[event.OrderID()]; seen {
		return fmt.Errorf("order %s already adjusted", event.OrderID())
	}
	o.reserved[event.OrderID()] = 1
	o.adjusted++
	return nil
}

// Adjusted возвращает число заказов, по которым списаны остатки
func (o *InventoryObserver) Adjusted() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.adjusted
}

// Receipt квитанция об оплате
type Receipt struct {
	OrderID string
	Total   string
	EventID string
}

// ReceiptObserver наблюдатель, выпускающий квитанции по успешным оплатам
type ReceiptObserver struct {
	mu       sync.Mutex
	receipts []Receipt
}

// NewReceiptObserver создает наблюдателя квитанций
func NewReceiptObserver() *ReceiptObserver {
	return &ReceiptObserver{}
}

func (o *ReceiptObserver) Name() string {
	return "receipt"
}

func (o *ReceiptObserver) OnEvent(ctx context.Context, event OrderEvent) error {
	if event.Type() != EventPaymentSucceeded {
		return nil
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	o.receipts = append(o.receipts, Receipt{
		OrderID: event.OrderID(),
		Total:   event.Total().String(),
		EventID: event.EventID(),
	})
	return nil
}

// Receipts возвращает копию выпущенных квитанций
func (o *ReceiptObserver) Receipts() []Receipt {
	o.mu.Lock()
	defer o.mu.Unlock()
	result := make([]Receipt, len(o.receipts))
	copy(result, o.receipts)
	return result
}

// LoggingEventMiddleware журналирует публикации событий
func LoggingEventMiddleware(sink LogSink) EventMiddleware {
	if sink == nil {
		sink = NewDefaultLogSink()
	}
	return func(ctx context.Context, event OrderEvent, next func(ctx context.Context, event OrderEvent) error) error {
		sink.Log("DEBUG", fmt.Sprintf("publishing %s for order %s", event.Type(), event.OrderID()))
		return next(ctx, event)
	}
}
