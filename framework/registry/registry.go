// Package registry предоставляет реестр стратегий оплаты и декораторов цены
// с разрешением цепочки обработки по атрибутам заказа.
package registry

import (
	"sort"
	"sync"
	"time"

	"github.com/orderkit/orderkit/framework/core"
	"github.com/orderkit/orderkit/framework/order"
	"github.com/orderkit/orderkit/framework/payment"
	"github.com/orderkit/orderkit/framework/pricing"
)

// DecoratorEntry регистрационная запись декоратора. Приоритет задает
// фиксированный порядок применения (скидки 10, налог 20, надбавки 30);
// PhysicalOnly исключает декоратор из цепочки полностью цифровых заказов
// на этапе разрешения.
type DecoratorEntry struct {
	Name         string
	Decorator    pricing.Decorator
	Priority     int
	PhysicalOnly bool
}

// EntryStats статистика по регистрационной записи
type EntryStats struct {
	RegisteredAt time.Time
	Type         string
}

// Registry таблица регистрации процесса. Заполняется один раз на старте и
// неизменяема после Freeze: поздняя регистрация отклоняется, а не молча
// переупорядочивает уже разрешенные цепочки.
type Registry struct {
	mu         sync.RWMutex
	strategies map[string]payment.Strategy
	decorators []DecoratorEntry
	stats      map[string]*EntryStats
	frozen     bool
}

// NewRegistry создает новый реестр
func NewRegistry() *Registry {
	return &Registry{
		strategies: make(map[string]payment.Strategy),
		decorators: make([]DecoratorEntry, 0),
		stats:      make(map[string]*EntryStats),
	}
}

// RegisterStrategy регистрирует стратегию оплаты под тегом способа оплаты
func (r *Registry) RegisterStrategy(tag string, strategy payment.Strategy) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return core.Newf(core.ErrAlreadyFrozen,
			"cannot register strategy %s after freeze", tag)
	}
	if _, exists := r.strategies[tag]; exists {
		return core.Newf(core.ErrAlreadyExists,
			"strategy already registered: %s", tag)
	}

	r.strategies[tag] = strategy
	r.stats[tag] = &EntryStats{
		RegisteredAt: time.Now(),
		Type:         "strategy",
	}
	return nil
}

// RegisterDecorator регистрирует декоратор с приоритетом
func (r *Registry) RegisterDecorator(entry DecoratorEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return core.Newf(core.ErrAlreadyFrozen,
			"cannot register decorator %s after freeze", entry.Name)
	}
	for _, existing := range r.decorators {
		if existing.Name == entry.Name {
			return core.Newf(core.ErrAlreadyExists,
				"decorator already registered: %s", entry.Name)
		}
	}

	r.decorators = append(r.decorators, entry)
	r.stats[entry.Name] = &EntryStats{
		RegisteredAt: time.Now(),
		Type:         "decorator",
	}
	return nil
}

// Freeze завершает фазу инициализации: дальнейшие регистрации отклоняются,
// чтение после заморозки безопасно для конкурентного доступа
func (r *Registry) Freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return
	}
	// Стабильная сортировка фиксирует порядок: приоритет, затем порядок регистрации
	sort.SliceStable(r.decorators, func(i, j int) bool {
		return r.decorators[i].Priority < r.decorators[j].Priority
	})
	r.frozen = true
}

// IsFrozen проверяет, завершена ли фаза инициализации
func (r *Registry) IsFrozen() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.frozen
}

// StrategyCount возвращает число зарегистрированных стратегий
func (r *Registry) StrategyCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.strategies)
}

// GetStats возвращает статистику по регистрационным записям
func (r *Registry) GetStats() map[string]*EntryStats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[string]*EntryStats)
	for k, v := range r.stats {
		result[k] = v
	}
	return result
}

// Resolve разрешает стратегию и цепочку декораторов для заказа. Чистая
// функция тега способа оплаты и атрибутов позиций. Первый вызов неявно
// замораживает реестр.
func (r *Registry) Resolve(o *order.Order) (payment.Strategy, pricing.Chain, error) {
	if !r.IsFrozen() {
		r.Freeze()
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.strategies) == 0 {
		return nil, pricing.Chain{}, core.NewError(core.ErrInvalidConfig,
			"no payment strategies registered")
	}

	strategy, ok := r.strategies[o.PaymentMethod()]
	if !ok {
		return nil, pricing.Chain{}, core.Newf(core.ErrUnsupportedPayment,
			"no strategy registered for payment method %q", o.PaymentMethod())
	}

	digitalOnly := o.DigitalOnly()
	selected := make([]pricing.Decorator, 0, len(r.decorators))
	for _, entry := range r.decorators {
		if entry.PhysicalOnly && digitalOnly {
			continue
		}
		selected = append(selected, entry.Decorator)
	}

	return strategy, pricing.NewChain(selected...), nil
}
