package pricing

import (
	"testing"

	"github.com/orderkit/orderkit/framework/money"
	"github.com/orderkit/orderkit/framework/order"
)

func newTestContext(subtotal int64) *Context {
	o := order.New("customer-1", "creditcard", []order.LineItem{
		{SKU: "A", Quantity: 2, UnitPrice: money.New(subtotal/2, "USD")},
	})
	return NewContext(o, money.New(subtotal, "USD"))
}

func TestTaxDecorator(t *testing.T) {
	tax := NewTaxDecorator("tax", 800)
	ctx := newTestContext(1000)

	total, err := tax.Apply(money.New(1000, "USD"), ctx)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if total.Amount() != 1080 {
		t.Errorf("Expected 1080, got %d", total.Amount())
	}
}

func TestPercentDiscountDecorator_CodeGated(t *testing.T) {
	discount := NewPercentDiscountDecorator("promo", "SAVE10", 1000)
	base := money.New(1000, "USD")

	// Без кода скидка не применяется
	ctx := newTestContext(1000)
	total, err := discount.Apply(base, ctx)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if total.Amount() != 1000 {
		t.Errorf("Expected 1000 without code, got %d", total.Amount())
	}

	// С кодом снимает 10%
	ctx.Set(AttrDiscountCode, "SAVE10")
	total, err = discount.Apply(base, ctx)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if total.Amount() != 900 {
		t.Errorf("Expected 900 with code, got %d", total.Amount())
	}

	// Чужой код игнорируется
	ctx.Set(AttrDiscountCode, "OTHER")
	total, err = discount.Apply(base, ctx)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if total.Amount() != 1000 {
		t.Errorf("Expected 1000 with foreign code, got %d", total.Amount())
	}
}

func TestShippingSurchargeDecorator(t *testing.T) {
	surcharge := NewShippingSurchargeDecorator("shipping", 250)
	ctx := newTestContext(1000)

	total, err := surcharge.Apply(money.New(1000, "USD"), ctx)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if total.Amount() != 1250 {
		t.Errorf("Expected 1250, got %d", total.Amount())
	}
}

func TestChain_AppliesInOrder(t *testing.T) {
	discount := NewPercentDiscountDecorator("promo", "SAVE10", 1000)
	tax := NewTaxDecorator("tax", 800)
	surcharge := NewShippingSurchargeDecorator("shipping", 100)

	ctx := newTestContext(1000).WithAttr(AttrDiscountCode, "SAVE10")
	chain := NewChain(discount, tax, surcharge)

	// 1000 -> скидка 10% -> 900 -> налог 8% -> 972 -> надбавка -> 1072
	total, err := chain.Apply(money.New(1000, "USD"), ctx)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if total.Amount() != 1072 {
		t.Errorf("Expected 1072, got %d", total.Amount())
	}
}

func TestChain_AssociativeUnderFixedOrder(t *testing.T) {
	discount := NewPercentDiscountDecorator("promo", "SAVE10", 1000)
	tax := NewTaxDecorator("tax", 800)
	surcharge := NewShippingSurchargeDecorator("shipping", 100)

	base := money.New(1000, "USD")
	ctx := newTestContext(1000).WithAttr(AttrDiscountCode, "SAVE10")

	flat, err := NewChain(discount, tax, surcharge).Apply(base, ctx)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	// Та же последовательность, сгруппированная иначе
	partial, err := NewChain(discount, tax).Apply(base, ctx)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	grouped, err := NewChain(surcharge).Apply(partial, ctx)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	if !flat.Equal(grouped) {
		t.Errorf("Chain is not associative: %s vs %s", flat, grouped)
	}
}

func TestChain_Deterministic(t *testing.T) {
	tax := NewTaxDecorator("tax", 800)
	chain := NewChain(tax)
	ctx := newTestContext(1000)
	base := money.New(1000, "USD")

	first, err := chain.Apply(base, ctx)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	second, err := chain.Apply(base, ctx)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if !first.Equal(second) {
		t.Errorf("Pricing is not deterministic: %s vs %s", first, second)
	}
}

func TestChain_DoesNotMutateBase(t *testing.T) {
	tax := NewTaxDecorator("tax", 800)
	base := money.New(1000, "USD")
	ctx := newTestContext(1000)

	if _, err := NewChain(tax).Apply(base, ctx); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if base.Amount() != 1000 {
		t.Errorf("Base mutated: expected 1000, got %d", base.Amount())
	}
}

func TestChain_Empty(t *testing.T) {
	chain := NewChain()
	base := money.New(1000, "USD")

	total, err := chain.Apply(base, newTestContext(1000))
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if !total.Equal(base) {
		t.Errorf("Empty chain must be identity, got %s", total)
	}
}

func TestContext_SnapshotsOrder(t *testing.T) {
	o := order.New("customer-1", "creditcard", []order.LineItem{
		{SKU: "E1", Quantity: 1, UnitPrice: money.New(900, "USD"), Digital: true},
	})
	ctx := NewContext(o, money.New(900, "USD"))

	if ctx.OrderID() != o.ID() {
		t.Error("Context must reference order by identifier")
	}
	if !ctx.DigitalOnly() {
		t.Error("Expected digital-only context")
	}
	if len(ctx.Items()) != 1 {
		t.Errorf("Expected 1 item, got %d", len(ctx.Items()))
	}
	if ctx.Subtotal().Amount() != 900 {
		t.Errorf("Expected subtotal 900, got %d", ctx.Subtotal().Amount())
	}
}
