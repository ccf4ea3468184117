// Package pricing предоставляет композируемые декораторы итоговой суммы.
package pricing

import (
	"github.com/orderkit/orderkit/framework/money"
)

// Decorator преобразует вычисленный итог, не изменяя базовое вычисление.
// Apply никогда не мутирует base: каждый вызов возвращает новое значение.
type Decorator interface {
	// Apply применяет корректировку к базовой сумме
	Apply(base money.Money, ctx *Context) (money.Money, error)
	// Name возвращает имя декоратора
	Name() string
}

// DecoratorFunc функция, реализующая Decorator
type DecoratorFunc struct {
	name string
	fn   func(base money.Money, ctx *Context) (money.Money, error)
}

// NewDecoratorFunc создает декоратор из функции
func NewDecoratorFunc(name string, fn func(base money.Money, ctx *Context) (money.Money, error)) *DecoratorFunc {
	return &DecoratorFunc{name: name, fn: fn}
}

func (d *DecoratorFunc) Name() string {
	return d.name
}

func (d *DecoratorFunc) Apply(base money.Money, ctx *Context) (money.Money, error) {
	return d.fn(base, ctx)
}

// Chain упорядоченная цепочка декораторов. Порядок фиксируется фабрикой при
// разрешении (скидки, затем налог, затем надбавки) и значим: цепочка
// ассоциативна при фиксированном порядке, но не коммутативна.
type Chain struct {
	decorators []Decorator
}

// NewChain создает цепочку из декораторов в порядке применения
func NewChain(decorators ...Decorator) Chain {
	return Chain{decorators: decorators}
}

// Apply последовательно применяет декораторы: D2.Apply(D1.Apply(base))
func (c Chain) Apply(base money.Money, ctx *Context) (money.Money, error) {
	total := base
	for _, d := range c.decorators {
		next, err := d.Apply(total, ctx)
		if err != nil {
			return money.Money{}, err
		}
		total = next
	}
	return total, nil
}

// Names возвращает имена декораторов в порядке применения
func (c Chain) Names() []string {
	names := make([]string, len(c.decorators))
	for i, d := range c.decorators {
		names[i] = d.Name()
	}
	return names
}

// Len возвращает длину цепочки
func (c Chain) Len() int {
	return len(c.decorators)
}
