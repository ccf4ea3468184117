// Package pricing предоставляет встроенные декораторы.
package pricing

import (
	"github.com/orderkit/orderkit/framework/money"
)

// Ключи атрибутов контекста тарификации
const (
	AttrDiscountCode = "discount_code"
)

// Приоритетные полосы фиксированного порядка применения
const (
	PriorityDiscount  = 10
	PriorityTax       = 20
	PrioritySurcharge = 30
)

// PercentDiscountDecorator процентная скидка, активируемая кодом в контексте
type PercentDiscountDecorator struct {
	name        string
	code        string
	basisPoints int64
}

// NewPercentDiscountDecorator создает скидку в базисных пунктах,
// применяемую только при совпадении кода скидки в контексте
func NewPercentDiscountDecorator(name, code string, basisPoints int64) *PercentDiscountDecorator {
	return &PercentDiscountDecorator{name: name, code: code, basisPoints: basisPoints}
}

func (d *PercentDiscountDecorator) Name() string {
	return d.name
}

func (d *PercentDiscountDecorator) Apply(base money.Money, ctx *Context) (money.Money, error) {
	code, ok := ctx.GetString(AttrDiscountCode)
	if !ok || code != d.code {
		return base, nil
	}
	discount := base.MulPercent(d.basisPoints)
	return base.Sub(discount)
}

// TaxDecorator налог по ставке в базисных пунктах
type TaxDecorator struct {
	name        string
	basisPoints int64
}

// NewTaxDecorator создает налоговый декоратор (800 bp = 8%)
func NewTaxDecorator(name string, basisPoints int64) *TaxDecorator {
	return &TaxDecorator{name: name, basisPoints: basisPoints}
}

func (d *TaxDecorator) Name() string {
	return d.name
}

func (d *TaxDecorator) Apply(base money.Money, ctx *Context) (money.Money, error) {
	tax := base.MulPercent(d.basisPoints)
	return base.Add(tax)
}

// ShippingSurchargeDecorator фиксированная надбавка за физическую доставку.
// Фабрика не включает его в цепочку для полностью цифровых заказов: это
// решение времени разрешения, а не времени выполнения.
type ShippingSurchargeDecorator struct {
	name   string
	amount int64
}

// NewShippingSurchargeDecorator создает надбавку в минорных единицах
func NewShippingSurchargeDecorator(name string, amount int64) *ShippingSurchargeDecorator {
	return &ShippingSurchargeDecorator{name: name, amount: amount}
}

func (d *ShippingSurchargeDecorator) Name() string {
	return d.name
}

func (d *ShippingSurchargeDecorator) Apply(base money.Money, ctx *Context) (money.Money, error) {
	return base.Add(money.New(d.amount, base.Currency()))
}
