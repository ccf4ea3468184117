package registry

import (
	"testing"

	"github.com/orderkit/orderkit/framework/core"
	"github.com/orderkit/orderkit/framework/money"
	"github.com/orderkit/orderkit/framework/order"
	"github.com/orderkit/orderkit/framework/payment"
	"github.com/orderkit/orderkit/framework/pricing"
)

func newRegistryWithDefaults(t *testing.T) *Registry {
	t.Helper()
	r := NewRegistry()

	if err := r.RegisterStrategy("creditcard", payment.NewCreditCardStrategy()); err != nil {
		t.Fatalf("RegisterStrategy failed: %v", err)
	}
	// Регистрация вне порядка приоритетов: Freeze обязан отсортировать
	if err := r.RegisterDecorator(DecoratorEntry{
		Name:         "shipping",
		Decorator:    pricing.NewShippingSurchargeDecorator("shipping", 250),
		Priority:     pricing.PrioritySurcharge,
		PhysicalOnly: true,
	}); err != nil {
		t.Fatalf("RegisterDecorator failed: %v", err)
	}
	if err := r.RegisterDecorator(DecoratorEntry{
		Name:      "tax",
		Decorator: pricing.NewTaxDecorator("tax", 800),
		Priority:  pricing.PriorityTax,
	}); err != nil {
		t.Fatalf("RegisterDecorator failed: %v", err)
	}
	if err := r.RegisterDecorator(DecoratorEntry{
		Name:      "promo",
		Decorator: pricing.NewPercentDiscountDecorator("promo", "SAVE10", 1000),
		Priority:  pricing.PriorityDiscount,
	}); err != nil {
		t.Fatalf("RegisterDecorator failed: %v", err)
	}
	return r
}

func physicalOrder() *order.Order {
	return order.New("customer-1", "creditcard", []order.LineItem{
		{SKU: "A", Quantity: 2, UnitPrice: money.New(500, "USD")},
	})
}

func digitalOrder() *order.Order {
	return order.New("customer-1", "creditcard", []order.LineItem{
		{SKU: "E1", Quantity: 1, UnitPrice: money.New(900, "USD"), Digital: true},
	})
}

func TestRegistry_Resolve(t *testing.T) {
	r := newRegistryWithDefaults(t)

	strategy, chain, err := r.Resolve(physicalOrder())
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if strategy.Name() != "creditcard" {
		t.Errorf("Expected creditcard strategy, got %s", strategy.Name())
	}

	// Фиксированный порядок: скидка, налог, надбавка
	names := chain.Names()
	expected := []string{"promo", "tax", "shipping"}
	if len(names) != len(expected) {
		t.Fatalf("Expected %d decorators, got %d", len(expected), len(names))
	}
	for i, name := range expected {
		if names[i] != name {
			t.Errorf("Position %d: expected %s, got %s", i, name, names[i])
		}
	}
}

func TestRegistry_Resolve_DigitalSkipsShipping(t *testing.T) {
	r := newRegistryWithDefaults(t)

	_, chain, err := r.Resolve(digitalOrder())
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	for _, name := range chain.Names() {
		if name == "shipping" {
			t.Error("Digital-only order must skip shipping surcharge")
		}
	}
	if chain.Len() != 2 {
		t.Errorf("Expected 2 decorators, got %d", chain.Len())
	}
}

func TestRegistry_Resolve_UnsupportedMethod(t *testing.T) {
	r := newRegistryWithDefaults(t)

	o := order.New("customer-1", "cheque", []order.LineItem{
		{SKU: "A", Quantity: 1, UnitPrice: money.New(500, "USD")},
	})
	_, _, err := r.Resolve(o)
	if !core.HasCode(err, core.ErrUnsupportedPayment) {
		t.Errorf("Expected UNSUPPORTED_PAYMENT_METHOD, got %v", err)
	}
}

func TestRegistry_Resolve_NoStrategies(t *testing.T) {
	r := NewRegistry()

	_, _, err := r.Resolve(physicalOrder())
	if !core.HasCode(err, core.ErrInvalidConfig) {
		t.Errorf("Expected INVALID_CONFIG, got %v", err)
	}
}

func TestRegistry_DuplicateRegistration(t *testing.T) {
	r := NewRegistry()
	if err := r.RegisterStrategy("creditcard", payment.NewCreditCardStrategy()); err != nil {
		t.Fatalf("RegisterStrategy failed: %v", err)
	}
	err := r.RegisterStrategy("creditcard", payment.NewCreditCardStrategy())
	if !core.HasCode(err, core.ErrAlreadyExists) {
		t.Errorf("Expected ALREADY_EXISTS, got %v", err)
	}

	if err := r.RegisterDecorator(DecoratorEntry{
		Name:      "tax",
		Decorator: pricing.NewTaxDecorator("tax", 800),
		Priority:  pricing.PriorityTax,
	}); err != nil {
		t.Fatalf("RegisterDecorator failed: %v", err)
	}
	err = r.RegisterDecorator(DecoratorEntry{
		Name:      "tax",
		Decorator: pricing.NewTaxDecorator("tax", 900),
		Priority:  pricing.PriorityTax,
	})
	if !core.HasCode(err, core.ErrAlreadyExists) {
		t.Errorf("Expected ALREADY_EXISTS, got %v", err)
	}
}

func TestRegistry_LateRegistrationRejected(t *testing.T) {
	r := newRegistryWithDefaults(t)

	// Первый Resolve неявно замораживает реестр
	if _, _, err := r.Resolve(physicalOrder()); err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if !r.IsFrozen() {
		t.Error("Registry must be frozen after first resolve")
	}

	err := r.RegisterStrategy("banktransfer", payment.NewBankTransferStrategy(4))
	if !core.HasCode(err, core.ErrAlreadyFrozen) {
		t.Errorf("Expected ALREADY_FROZEN, got %v", err)
	}
	err = r.RegisterDecorator(DecoratorEntry{
		Name:      "late",
		Decorator: pricing.NewTaxDecorator("late", 100),
		Priority:  pricing.PriorityTax,
	})
	if !core.HasCode(err, core.ErrAlreadyFrozen) {
		t.Errorf("Expected ALREADY_FROZEN, got %v", err)
	}
}

func TestRegistry_ResolveIsDeterministic(t *testing.T) {
	r := newRegistryWithDefaults(t)
	o := physicalOrder()

	_, first, err := r.Resolve(o)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	_, second, err := r.Resolve(o)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	firstNames := first.Names()
	secondNames := second.Names()
	if len(firstNames) != len(secondNames) {
		t.Fatal("Resolve is not deterministic")
	}
	for i := range firstNames {
		if firstNames[i] != secondNames[i] {
			t.Errorf("Chain order differs at %d: %s vs %s", i, firstNames[i], secondNames[i])
		}
	}
}

func TestRegistry_GetStats(t *testing.T) {
	r := newRegistryWithDefaults(t)

	stats := r.GetStats()
	if len(stats) != 4 {
		t.Fatalf("Expected 4 entries, got %d", len(stats))
	}
	if stats["creditcard"].Type != "strategy" {
		t.Errorf("Expected strategy entry, got %s", stats["creditcard"].Type)
	}
	if stats["tax"].Type != "decorator" {
		t.Errorf("Expected decorator entry, got %s", stats["tax"].Type)
	}
}
