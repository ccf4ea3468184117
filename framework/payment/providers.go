// Package payment предоставляет встроенные стратегии.
package payment

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/orderkit/orderkit/framework/money"
	"github.com/orderkit/orderkit/framework/order"
)

// CreditCardStrategy стратегия оплаты картой с имитацией задержки шлюза
type CreditCardStrategy struct {
	latency         time.Duration
	declinePrefixes []string
}

// NewCreditCardStrategy создает карточную стратегию
func NewCreditCardStrategy() *CreditCardStrategy {
	return &CreditCardStrategy{}
}

// WithLatency устанавливает имитируемую задержку шлюза
func (s *CreditCardStrategy) WithLatency(latency time.Duration) *CreditCardStrategy {
	s.latency = latency
	return s
}

// WithDeclinePrefixes отклоняет клиентов с указанными префиксами
// (детерминированная имитация недостатка средств в примерах и тестах)
func (s *CreditCardStrategy) WithDeclinePrefixes(prefixes ...string) *CreditCardStrategy {
	s.declinePrefixes = append(s.declinePrefixes, prefixes...)
	return s
}

func (s *CreditCardStrategy) Name() string {
	return "creditcard"
}

func (s *CreditCardStrategy) Authorize(ctx context.Context, o *order.Order, amount money.Money) (Result, error) {
	if !amount.IsPositive() {
		return Errored("amount must be positive"), nil
	}

	// Имитация задержки внешнего шлюза с уважением отмены
	if s.latency > 0 {
		select {
		case <-time.After(s.latency):
		case <-ctx.Done():
			return Errored(fmt.Sprintf("gateway call cancelled: %v", ctx.Err())), nil
		}
	}

	for _, prefix := range s.declinePrefixes {
		if strings.HasPrefix(o.CustomerID(), prefix) {
			return Declined("insufficient funds"), nil
		}
	}

	return Authorized("cc-" + uuid.New().String()), nil
}

// BankTransferStrategy стратегия банковского перевода с ограничением
// числа одновременных авторизаций (семафор)
type BankTransferStrategy struct {
	semaphore chan struct{}
	latency   time.Duration
}

// NewBankTransferStrategy создает стратегию с лимитом одновременных вызовов
func NewBankTransferStrategy(maxConcurrent int) *BankTransferStrategy {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &BankTransferStrategy{
		semaphore: make(chan struct{}, maxConcurrent),
	}
}

// WithLatency устанавливает имитируемую задержку перевода
func (s *BankTransferStrategy) WithLatency(latency time.Duration) *BankTransferStrategy {
	s.latency = latency
	return s
}

func (s *BankTransferStrategy) Name() string {
	return "banktransfer"
}

func (s *BankTransferStrategy) Authorize(ctx context.Context, o *order.Order, amount money.Money) (Result, error) {
	if !amount.IsPositive() {
		return Errored("amount must be positive"), nil
	}

	select {
	case s.semaphore <- struct{}{}:
		defer func() { <-s.semaphore }()
	case <-ctx.Done():
		return Errored(fmt.Sprintf("transfer slot wait cancelled: %v", ctx.Err())), nil
	}

	if s.latency > 0 {
		select {
		case <-time.After(s.latency):
		case <-ctx.Done():
			return Errored(fmt.Sprintf("transfer cancelled: %v", ctx.Err())), nil
		}
	}

	return Authorized("bt-" + uuid.New().String()), nil
}

// StoredCreditStrategy оплата с внутреннего счета клиента. Баланс хранится
// в памяти под мьютексом и безопасен для конкурентных авторизаций.
type StoredCreditStrategy struct {
	mu       sync.Mutex
	balances map[string]money.Money
}

// NewStoredCreditStrategy создает стратегию внутренних счетов
func NewStoredCreditStrategy() *StoredCreditStrategy {
	return &StoredCreditStrategy{
		balances: make(map[string]money.Money),
	}
}

// Deposit пополняет счет клиента
func (s *StoredCreditStrategy) Deposit(customerID string, amount money.Money) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.balances[customerID]
	if !ok {
		s.balances[customerID] = amount
		return nil
	}
	updated, err := current.Add(amount)
	if err != nil {
		return err
	}
	s.balances[customerID] = updated
	return nil
}

// Balance возвращает текущий баланс клиента
func (s *StoredCreditStrategy) Balance(customerID string) (money.Money, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	balance, ok := s.balances[customerID]
	return balance, ok
}

func (s *StoredCreditStrategy) Name() string {
	return "storedcredit"
}

func (s *StoredCreditStrategy) Authorize(ctx context.Context, o *order.Order, amount money.Money) (Result, error) {
	if !amount.IsPositive() {
		return Errored("amount must be positive"), nil
	}
	if err := ctx.Err(); err != nil {
		return Errored(fmt.Sprintf("authorization cancelled: %v", err)), nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	balance, ok := s.balances[o.CustomerID()]
	if !ok {
		return Declined("no stored credit account"), nil
	}

	remaining, err := balance.Sub(amount)
	if err != nil {
		return Errored(err.Error()), nil
	}
	if remaining.Amount() < 0 {
		return Declined("insufficient stored credit"), nil
	}

	s.balances[o.CustomerID()] = remaining
	return Authorized("sc-" + uuid.New().String()), nil
}
