// Package pricing предоставляет контекст тарификации заказа.
package pricing

import (
	"github.com/orderkit/orderkit/framework/money"
	"github.com/orderkit/orderkit/framework/order"
)

// Context снимок заказа для одного прохода тарификации. Строится процессором,
// потребляется один раз и не удерживается после вычисления итога.
type Context struct {
	orderID     string
	items       []order.LineItem
	subtotal    money.Money
	digitalOnly bool
	attrs       map[string]interface{}
}

// NewContext создает контекст тарификации из снимка заказа
func NewContext(o *order.Order, subtotal money.Money) *Context {
	return &Context{
		orderID:     o.ID(),
		items:       o.Items(),
		subtotal:    subtotal,
		digitalOnly: o.DigitalOnly(),
		attrs:       make(map[string]interface{}),
	}
}

// OrderID возвращает идентификатор тарифицируемого заказа
func (c *Context) OrderID() string {
	return c.orderID
}

// Items возвращает снимок позиций
func (c *Context) Items() []order.LineItem {
	return c.items
}

// Subtotal возвращает сумму позиций до декораторов
func (c *Context) Subtotal() money.Money {
	return c.subtotal
}

// DigitalOnly проверяет, что все позиции снимка цифровые
func (c *Context) DigitalOnly() bool {
	return c.digitalOnly
}

// Get получает значение атрибута по ключу
func (c *Context) Get(key string) (interface{}, bool) {
	val, ok := c.attrs[key]
	return val, ok
}

// GetString получает строковый атрибут
func (c *Context) GetString(key string) (string, bool) {
	val, ok := c.Get(key)
	if !ok {
		return "", false
	}
	str, ok := val.(string)
	return str, ok
}

// Set устанавливает атрибут (код скидки, ставка налога)
func (c *Context) Set(key string, value interface{}) {
	c.attrs[key] = value
}

// WithAttr устанавливает атрибут и возвращает контекст
func (c *Context) WithAttr(key string, value interface{}) *Context {
	c.Set(key, value)
	return c
}
