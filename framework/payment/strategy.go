// Package payment предоставляет взаимозаменяемые стратегии авторизации оплаты.
package payment

import (
	"context"

	"github.com/orderkit/orderkit/framework/money"
	"github.com/orderkit/orderkit/framework/order"
)

// Status исход авторизации
type Status string

const (
	StatusAuthorized Status = "authorized"
	StatusDeclined   Status = "declined"
	StatusError      Status = "error"
)

// Result результат авторизации. Неизменяем после создания.
type Result struct {
	status    Status
	reference string
	reason    string
}

// Authorized создает успешный результат со ссылкой на транзакцию
func Authorized(reference string) Result {
	return Result{status: StatusAuthorized, reference: reference}
}

// Declined создает отказ с причиной
func Declined(reason string) Result {
	return Result{status: StatusDeclined, reason: reason}
}

// Errored создает сбой шлюза с причиной
func Errored(reason string) Result {
	return Result{status: StatusError, reason: reason}
}

// Status возвращает исход авторизации
func (r Result) Status() Status {
	return r.status
}

// Reference возвращает ссылку на транзакцию (только для Authorized)
func (r Result) Reference() string {
	return r.reference
}

// Reason возвращает человекочитаемую причину отказа или сбоя
func (r Result) Reason() string {
	return r.reason
}

// IsAuthorized проверяет успешность авторизации
func (r Result) IsAuthorized() bool {
	return r.status == StatusAuthorized
}

// Strategy стратегия авторизации оплаты. Предусловия: amount > 0, заказ в
// статусе Priced (проверяет процессор). Стратегия не хранит состояние
// заказа; любое внутреннее состояние безопасно для конкурентного
// использования, поскольку процессор авторизует разные заказы параллельно.
// Authorize - единственная блокирующая операция библиотеки и обязана
// уважать отмену контекста.
type Strategy interface {
	// Authorize авторизует оплату заказа на указанную сумму
	Authorize(ctx context.Context, o *order.Order, amount money.Money) (Result, error)
	// Name возвращает имя стратегии
	Name() string
}
