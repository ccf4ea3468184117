// Package order предоставляет конечный автомат статусов заказа.
package order

import (
	"github.com/orderkit/orderkit/framework/core"
)

// Status статус заказа
type Status string

const (
	StatusCreated   Status = "created"
	StatusPriced    Status = "priced"
	StatusPaid      Status = "paid"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// transitions таблица разрешенных переходов. Cancelled достижим из любого
// нетерминального состояния; Paid терминален и неизменяем.
var transitions = map[Status][]Status{
	StatusCreated: {StatusPriced, StatusCancelled},
	StatusPriced:  {StatusPaid, StatusFailed, StatusCancelled},
	StatusFailed:  {StatusPriced, StatusCancelled},
}

// IsTerminal проверяет, что из статуса нет переходов
func (s Status) IsTerminal() bool {
	return s == StatusPaid || s == StatusCancelled
}

// CanTransition проверяет, разрешен ли переход в целевой статус
func (s Status) CanTransition(to Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == to {
			return true
		}
	}
	return false
}

// checkTransition возвращает ошибку для запрещенного перехода
func checkTransition(from, to Status) error {
	if !from.CanTransition(to) {
		return core.Newf(core.ErrInvalidTransition,
			"transition %s -> %s is not allowed", from, to)
	}
	return nil
}
