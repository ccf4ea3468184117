// Package order предоставляет доменную сущность заказа.
package order

import (
	"time"

	"github.com/google/uuid"

	"github.com/orderkit/orderkit/framework/core"
	"github.com/orderkit/orderkit/framework/money"
)

// LineItem позиция заказа
type LineItem struct {
	SKU       string
	Quantity  int
	UnitPrice money.Money
	Digital   bool
}

// Order доменная сущность заказа. Заказ создается вызывающей стороной,
// мутируется только процессором; позиции принадлежат заказу эксклюзивно.
// Операции над одним экземпляром не сериализуются внутри: конкурентные
// переходы одного заказа должна исключать вызывающая сторона.
type Order struct {
	id            string
	customerID    string
	paymentMethod string
	items         []LineItem
	status        Status
	total         money.Money
	failureReason string
	createdAt     time.Time
	updatedAt     time.Time
}

// New создает новый заказ в статусе Created
func New(customerID, paymentMethod string, items []LineItem) *Order {
	owned := make([]LineItem, len(items))
	copy(owned, items)

	return &Order{
		id:            uuid.New().String(),
		customerID:    customerID,
		paymentMethod: paymentMethod,
		items:         owned,
		status:        StatusCreated,
		createdAt:     time.Now(),
		updatedAt:     time.Now(),
	}
}

// ID возвращает идентификатор заказа
func (o *Order) ID() string {
	return o.id
}

// CustomerID возвращает ссылку на клиента
func (o *Order) CustomerID() string {
	return o.customerID
}

// PaymentMethod возвращает тег способа оплаты
func (o *Order) PaymentMethod() string {
	return o.paymentMethod
}

// Items возвращает копию позиций заказа
func (o *Order) Items() []LineItem {
	result := make([]LineItem, len(o.items))
	copy(result, o.items)
	return result
}

// Status возвращает статус заказа
func (o *Order) Status() Status {
	return o.status
}

// Total возвращает итоговую сумму (значима после Priced)
func (o *Order) Total() money.Money {
	return o.total
}

// FailureReason возвращает причину последнего отказа оплаты
func (o *Order) FailureReason() string {
	return o.failureReason
}

// CreatedAt возвращает время создания заказа
func (o *Order) CreatedAt() time.Time {
	return o.createdAt
}

// UpdatedAt возвращает время последнего перехода
func (o *Order) UpdatedAt() time.Time {
	return o.updatedAt
}

// DigitalOnly проверяет, что все позиции цифровые
func (o *Order) DigitalOnly() bool {
	if len(o.items) == 0 {
		return false
	}
	for _, item := range o.items {
		if !item.Digital {
			return false
		}
	}
	return true
}

// Subtotal возвращает сумму позиций без декораторов
func (o *Order) Subtotal() (money.Money, error) {
	if len(o.items) == 0 {
		return money.Money{}, core.NewError(core.ErrValidation, "order has no line items")
	}

	total := money.Zero(o.items[0].UnitPrice.Currency())
	for _, item := range o.items {
		line := item.UnitPrice.Mul(int64(item.Quantity))
		sum, err := total.Add(line)
		if err != nil {
			return money.Money{}, err
		}
		total = sum
	}
	return total, nil
}

// Validate проверяет форму заказа перед тарификацией
func (o *Order) Validate() error {
	if len(o.items) == 0 {
		return core.NewError(core.ErrValidation, "order has no line items")
	}
	if o.paymentMethod == "" {
		return core.NewError(core.ErrValidation, "order has no payment method")
	}

	currency := o.items[0].UnitPrice.Currency()
	for _, item := range o.items {
		if item.SKU == "" {
			return core.NewError(core.ErrValidation, "line item has empty sku")
		}
		if item.Quantity < 1 {
			return core.Newf(core.ErrValidation,
				"line item %s has quantity %d, minimum is 1", item.SKU, item.Quantity)
		}
		if !item.UnitPrice.IsPositive() {
			return core.Newf(core.ErrValidation,
				"line item %s has non-positive unit price", item.SKU)
		}
		if item.UnitPrice.Currency() != currency {
			return core.Newf(core.ErrValidation,
				"line item %s has currency %s, order currency is %s",
				item.SKU, item.UnitPrice.Currency(), currency)
		}
	}
	return nil
}

// MarkPriced переводит заказ Created -> Priced с вычисленной суммой
func (o *Order) MarkPriced(total money.Money) error {
	if err := checkTransition(o.status, StatusPriced); err != nil {
		return err
	}
	o.status = StatusPriced
	o.total = total
	o.failureReason = ""
	o.updatedAt = time.Now()
	return nil
}

// Reprice пересчитывает сумму при повторной подаче: Failed -> Priced.
// Сумма вычисляется заново, так как скидки могли истечь.
func (o *Order) Reprice(total money.Money) error {
	if o.status != StatusFailed {
		return core.Newf(core.ErrInvalidTransition,
			"reprice is allowed only from %s, order is %s", StatusFailed, o.status)
	}
	return o.MarkPriced(total)
}

// MarkPaid переводит заказ Priced -> Paid
func (o *Order) MarkPaid() error {
	if err := checkTransition(o.status, StatusPaid); err != nil {
		return err
	}
	o.status = StatusPaid
	o.updatedAt = time.Now()
	return nil
}

// MarkFailed переводит заказ Priced -> Failed с причиной отказа
func (o *Order) MarkFailed(reason string) error {
	if err := checkTransition(o.status, StatusFailed); err != nil {
		return err
	}
	o.status = StatusFailed
	o.failureReason = reason
	o.updatedAt = time.Now()
	return nil
}

// Cancel переводит любой нетерминальный статус в Cancelled
func (o *Order) Cancel() error {
	if err := checkTransition(o.status, StatusCancelled); err != nil {
		return err
	}
	o.status = StatusCancelled
	o.updatedAt = time.Now()
	return nil
}
