// Package money предоставляет неизменяемый денежный тип с валютно-безопасной
// арифметикой в минорных единицах.
package money

import (
	"fmt"

	"github.com/orderkit/orderkit/framework/core"
)

// Money денежная величина: знаковая сумма в минорных единицах + код валюты.
// Значение неизменяемо, все операции возвращают новое значение.
type Money struct {
	amount   int64
	currency string
}

// New создает новое денежное значение
func New(amount int64, currency string) Money {
	return Money{amount: amount, currency: currency}
}

// Zero создает нулевое значение в указанной валюте
func Zero(currency string) Money {
	return Money{amount: 0, currency: currency}
}

// Amount возвращает сумму в минорных единицах
func (m Money) Amount() int64 {
	return m.amount
}

// Currency возвращает код валюты
func (m Money) Currency() string {
	return m.currency
}

// IsPositive проверяет, что сумма строго больше нуля
func (m Money) IsPositive() bool {
	return m.amount > 0
}

// IsZero проверяет, что сумма равна нулю
func (m Money) IsZero() bool {
	return m.amount == 0
}

// Equal сравнивает два значения; значения разных валют не равны
func (m Money) Equal(other Money) bool {
	return m.currency == other.currency && m.amount == other.amount
}

// Add складывает два значения одной валюты
func (m Money) Add(other Money) (Money, error) {
	if err := m.checkCurrency(other); err != nil {
		return Money{}, err
	}
	return Money{amount: m.amount + other.amount, currency: m.currency}, nil
}

// Sub вычитает значение той же валюты
func (m Money) Sub(other Money) (Money, error) {
	if err := m.checkCurrency(other); err != nil {
		return Money{}, err
	}
	return Money{amount: m.amount - other.amount, currency: m.currency}, nil
}

// Mul умножает сумму на целочисленный множитель
func (m Money) Mul(factor int64) Money {
	return Money{amount: m.amount * factor, currency: m.currency}
}

// MulPercent умножает сумму на долю, заданную в базисных пунктах
// (10000 bp = 100%). Округление половины вверх от нуля.
func (m Money) MulPercent(basisPoints int64) Money {
	product := m.amount * basisPoints
	quotient := product / 10000
	remainder := product % 10000
	if remainder >= 5000 {
		quotient++
	} else if remainder <= -5000 {
		quotient--
	}
	return Money{amount: quotient, currency: m.currency}
}

// String возвращает строковое представление вида "1080 USD"
func (m Money) String() string {
	return fmt.Sprintf("%d %s", m.amount, m.currency)
}

// checkCurrency проверяет совпадение валют операндов
func (m Money) checkCurrency(other Money) error {
	if m.currency != other.currency {
		return core.Newf(core.ErrCurrencyMismatch,
			"cannot operate on %s and %s", m.currency, other.currency)
	}
	return nil
}
