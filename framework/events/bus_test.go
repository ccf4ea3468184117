package events

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/orderkit/orderkit/framework/money"
)

// recordingObserver для тестирования
type recordingObserver struct {
	name   string
	mu     sync.Mutex
	events []OrderEvent
	fail   error
	panics bool
}

func (o *recordingObserver) Name() string {
	return o.name
}

func (o *recordingObserver) OnEvent(ctx context.Context, event OrderEvent) error {
	if o.panics {
		panic("observer panic")
	}
	o.mu.Lock()
	o.events = append(o.events, event)
	o.mu.Unlock()
	return o.fail
}

func (o *recordingObserver) Events() []OrderEvent {
	o.mu.Lock()
	defer o.mu.Unlock()
	result := make([]OrderEvent, len(o.events))
	copy(result, o.events)
	return result
}

func TestNotificationBus_PublishDeliversInRegistrationOrder(t *testing.T) {
	bus := NewNotificationBus()

	var order []string
	var mu sync.Mutex
	for _, name := range []string{"first", "second", "third"} {
		n := name
		bus.Subscribe(NewObserverFunc(n, func(ctx context.Context, event OrderEvent) error {
			mu.Lock()
			order = append(order, n)
			mu.Unlock()
			return nil
		}))
	}

	event := NewOrderEvent(EventOrderPriced, "order-1").WithTotal(money.New(1080, "USD"))
	if err := bus.Publish(context.Background(), event); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	expected := []string{"first", "second", "third"}
	if len(order) != len(expected) {
		t.Fatalf("Expected %d deliveries, got %d", len(expected), len(order))
	}
	for i, name := range expected {
		if order[i] != name {
			t.Errorf("Position %d: expected %s, got %s", i, name, order[i])
		}
	}
}

func TestNotificationBus_ObserverFailureDoesNotBlockOthers(t *testing.T) {
	bus := NewNotificationBus()

	failing := &recordingObserver{name: "failing", fail: fmt.Errorf("observer error")}
	after := &recordingObserver{name: "after"}

	bus.Subscribe(failing)
	bus.Subscribe(after)

	var failures []string
	bus.WithFailureHandler(func(observer string, event OrderEvent, err error) {
		failures = append(failures, observer)
	})

	event := NewOrderEvent(EventOrderCreated, "order-1")
	if err := bus.Publish(context.Background(), event); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	if len(after.Events()) != 1 {
		t.Error("Observer registered after the failing one did not receive the event")
	}
	if len(failures) != 1 || failures[0] != "failing" {
		t.Errorf("Expected one recorded failure for 'failing', got %v", failures)
	}
}

func TestNotificationBus_ObserverPanicIsIsolated(t *testing.T) {
	bus := NewNotificationBus()

	panicking := &recordingObserver{name: "panicking", panics: true}
	after := &recordingObserver{name: "after"}

	bus.Subscribe(panicking)
	bus.Subscribe(after)

	var captured error
	bus.WithFailureHandler(func(observer string, event OrderEvent, err error) {
		captured = err
	})

	if err := bus.Publish(context.Background(), NewOrderEvent(EventOrderCreated, "order-1")); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	if len(after.Events()) != 1 {
		t.Error("Delivery aborted by panicking observer")
	}
	if captured == nil {
		t.Error("Panic was not reported to failure handler")
	}
}

func TestNotificationBus_Unsubscribe(t *testing.T) {
	bus := NewNotificationBus()

	observer := &recordingObserver{name: "transient"}
	sub := bus.Subscribe(observer)

	if err := bus.Publish(context.Background(), NewOrderEvent(EventOrderCreated, "order-1")); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if err := bus.Unsubscribe(sub); err != nil {
		t.Fatalf("Unsubscribe failed: %v", err)
	}
	if err := bus.Publish(context.Background(), NewOrderEvent(EventOrderPriced, "order-1")); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	if len(observer.Events()) != 1 {
		t.Errorf("Expected 1 event after unsubscribe, got %d", len(observer.Events()))
	}
	if bus.SubscriberCount() != 0 {
		t.Errorf("Expected 0 subscribers, got %d", bus.SubscriberCount())
	}
}

func TestNotificationBus_Unsubscribe_Unknown(t *testing.T) {
	bus := NewNotificationBus()
	if err := bus.Unsubscribe(Subscription("missing")); err == nil {
		t.Error("Expected error for unknown subscription")
	}
}

func TestNotificationBus_PublishAfterShutdown(t *testing.T) {
	bus := NewNotificationBus()
	if err := bus.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}
	if err := bus.Publish(context.Background(), NewOrderEvent(EventOrderCreated, "order-1")); err == nil {
		t.Error("Expected error publishing to a stopped bus")
	}

	// Повторный Shutdown идемпотентен
	if err := bus.Shutdown(context.Background()); err != nil {
		t.Errorf("Repeated shutdown must be idempotent, got %v", err)
	}
}

func TestFilteredObserver(t *testing.T) {
	inner := &recordingObserver{name: "filtered"}
	filtered := NewFilteredObserver(inner, EventPaymentSucceeded)

	bus := NewNotificationBus()
	bus.Subscribe(filtered)

	ctx := context.Background()
	if err := bus.Publish(ctx, NewOrderEvent(EventOrderCreated, "order-1")); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if err := bus.Publish(ctx, NewOrderEvent(EventPaymentSucceeded, "order-1")); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	got := inner.Events()
	if len(got) != 1 {
		t.Fatalf("Expected 1 filtered event, got %d", len(got))
	}
	if got[0].Type() != EventPaymentSucceeded {
		t.Errorf("Expected payment_succeeded, got %s", got[0].Type())
	}
}

func TestInventoryObserver_AdjustsOnceOnPayment(t *testing.T) {
	observer := NewInventoryObserver()
	ctx := context.Background()

	paid := NewOrderEvent(EventPaymentSucceeded, "order-1").WithTotal(money.New(1080, "USD"))
	if err := observer.OnEvent(ctx, paid); err != nil {
		t.Fatalf("OnEvent failed: %v", err)
	}
	if err := observer.OnEvent(ctx, paid); err == nil {
		t.Error("Expected error on duplicate adjustment")
	}
	if observer.Adjusted() != 1 {
		t.Errorf("Expected 1 adjustment, got %d", observer.Adjusted())
	}

	// Прочие события не влияют на остатки
	if err := observer.OnEvent(ctx, NewOrderEvent(EventOrderPriced, "order-2")); err != nil {
		t.Fatalf("OnEvent failed: %v", err)
	}
	if observer.Adjusted() != 1 {
		t.Errorf("Expected 1 adjustment, got %d", observer.Adjusted())
	}
}

func TestReceiptObserver(t *testing.T) {
	observer := NewReceiptObserver()
	ctx := context.Background()

	event := NewOrderEvent(EventPaymentSucceeded, "order-1").WithTotal(money.New(1080, "USD"))
	if err := observer.OnEvent(ctx, event); err != nil {
		t.Fatalf("OnEvent failed: %v", err)
	}

	receipts := observer.Receipts()
	if len(receipts) != 1 {
		t.Fatalf("Expected 1 receipt, got %d", len(receipts))
	}
	if receipts[0].Total != "1080 USD" {
		t.Errorf("Expected total '1080 USD', got '%s'", receipts[0].Total)
	}
}
