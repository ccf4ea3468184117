// Package processor предоставляет оркестратор жизненного цикла заказа:
// валидация, тарификация, оплата и переходы статуса с публикацией событий.
package processor

import (
	"context"
	"fmt"
	"time"

	"github.com/orderkit/orderkit/framework/core"
	"github.com/orderkit/orderkit/framework/events"
	"github.com/orderkit/orderkit/framework/metrics"
	"github.com/orderkit/orderkit/framework/money"
	"github.com/orderkit/orderkit/framework/order"
	"github.com/orderkit/orderkit/framework/payment"
	"github.com/orderkit/orderkit/framework/pricing"
	"github.com/orderkit/orderkit/framework/registry"
)

// DefaultAuthorizeTimeout таймаут авторизации по умолчанию
const DefaultAuthorizeTimeout = 5 * time.Second

// ContextEnricher дополняет контекст тарификации атрибутами (код скидки).
// Настраивается на этапе инициализации: пропуск декораторов для конкретного
// заказа - решение фабрики при разрешении, а не процессора при выполнении.
type ContextEnricher func(o *order.Order, ctx *pricing.Context)

// Processor оркестратор обработки заказа. Разные заказы обрабатываются
// конкурентно; операции над одним заказом процессор не сериализует -
// это обязанность вызывающей стороны.
type Processor struct {
	registry         *registry.Registry
	bus              *events.NotificationBus
	metrics          *metrics.Metrics
	sink             events.LogSink
	enricher         ContextEnricher
	authorizeTimeout time.Duration
}

// NewProcessor создает новый процессор заказов
func NewProcessor(reg *registry.Registry, bus *events.NotificationBus) *Processor {
	return &Processor{
		registry:         reg,
		bus:              bus,
		authorizeTimeout: DefaultAuthorizeTimeout,
	}
}

// WithMetrics подключает сборщик метрик
func (p *Processor) WithMetrics(m *metrics.Metrics) *Processor {
	p.metrics = m
	return p
}

// WithLogSink подключает приемник журналирования
func (p *Processor) WithLogSink(sink events.LogSink) *Processor {
	p.sink = sink
	return p
}

// WithContextEnricher устанавливает обогащение контекста тарификации
func (p *Processor) WithContextEnricher(enricher ContextEnricher) *Processor {
	p.enricher = enricher
	return p
}

// WithAuthorizeTimeout ограничивает длительность авторизации; таймаут
// трактуется как PaymentResult со статусом Error
func (p *Processor) WithAuthorizeTimeout(timeout time.Duration) *Processor {
	p.authorizeTimeout = timeout
	return p
}

// Submit проводит заказ через жизненный цикл и возвращает терминальное для
// этой подачи событие. Заказ в статусе Created валидируется и тарифицируется;
// заказ в статусе Failed подается повторно: сумма пересчитывается, так как
// конфигурация скидок и налогов могла измениться между попытками.
func (p *Processor) Submit(ctx context.Context, o *order.Order) (events.OrderEvent, error) {
	p.metrics.SubmissionStarted(ctx)
	defer p.metrics.SubmissionFinished(ctx)
	p.metrics.RecordSubmission(ctx, o.PaymentMethod())

	firstSubmission := false
	switch o.Status() {
	case order.StatusCreated:
		if err := o.Validate(); err != nil {
			// Заказ остается в Created, ни одно событие не публикуется
			return events.OrderEvent{}, err
		}
		firstSubmission = true
	case order.StatusFailed:
		// повторная подача
	default:
		return events.OrderEvent{}, core.Newf(core.ErrInvalidTransition,
			"order %s cannot be submitted from status %s", o.ID(), o.Status())
	}

	strategy, chain, err := p.registry.Resolve(o)
	if err != nil {
		return events.OrderEvent{}, err
	}

	// Принятие первой подачи: заказ вошел в конвейер обработки
	if firstSubmission {
		p.publish(ctx, events.NewOrderEvent(events.EventOrderCreated, o.ID()))
	}

	total, err := p.price(ctx, o, chain)
	if err != nil {
		return events.OrderEvent{}, err
	}

	if o.Status() == order.StatusFailed {
		if err := o.Reprice(total); err != nil {
			return events.OrderEvent{}, err
		}
	} else {
		if err := o.MarkPriced(total); err != nil {
			return events.OrderEvent{}, err
		}
	}
	priced := events.NewOrderEvent(events.EventOrderPriced, o.ID()).WithTotal(total)
	p.publish(ctx, priced)

	result := p.authorize(ctx, strategy, o)
	p.metrics.RecordPayment(ctx, string(result.Status()))

	if result.IsAuthorized() {
		if err := o.MarkPaid(); err != nil {
			return events.OrderEvent{}, err
		}
		succeeded := events.NewOrderEvent(events.EventPaymentSucceeded, o.ID()).WithTotal(o.Total())
		p.publish(ctx, succeeded)
		return succeeded, nil
	}

	if err := o.MarkFailed(result.Reason()); err != nil {
		return events.OrderEvent{}, err
	}
	failed := events.NewOrderEvent(events.EventPaymentFailed, o.ID()).WithReason(result.Reason())
	p.publish(ctx, failed)
	return failed, nil
}

// Cancel переводит нетерминальный заказ в Cancelled и публикует событие
func (p *Processor) Cancel(ctx context.Context, o *order.Order, reason string) (events.OrderEvent, error) {
	if err := o.Cancel(); err != nil {
		return events.OrderEvent{}, err
	}
	cancelled := events.NewOrderEvent(events.EventOrderCancelled, o.ID()).WithReason(reason)
	p.publish(ctx, cancelled)
	return cancelled, nil
}

// price вычисляет итог через разрешенную цепочку декораторов
func (p *Processor) price(ctx context.Context, o *order.Order, chain pricing.Chain) (total money.Money, err error) {
	start := time.Now()
	defer func() {
		p.metrics.RecordPricingDuration(ctx, time.Since(start))
	}()

	subtotal, err := o.Subtotal()
	if err != nil {
		return total, err
	}

	// Контекст тарификации потребляется один раз и не удерживается
	priceCtx := pricing.NewContext(o, subtotal)
	if p.enricher != nil {
		p.enricher(o, priceCtx)
	}

	return chain.Apply(subtotal, priceCtx)
}

// authorize вызывает стратегию под таймаутом; таймаут и нарушение контракта
// стратегии сворачиваются в результат со статусом Error
func (p *Processor) authorize(ctx context.Context, strategy payment.Strategy, o *order.Order) payment.Result {
	if p.authorizeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.authorizeTimeout)
		defer cancel()
	}

	result, err := strategy.Authorize(ctx, o, o.Total())
	if err != nil {
		return payment.Errored(err.Error())
	}
	return result
}

// publish публикует событие после обновления статуса. Ошибка публикации не
// откатывает переход: наблюдатели изолированы от машины состояний.
func (p *Processor) publish(ctx context.Context, event events.OrderEvent) {
	p.metrics.RecordEvent(ctx, string(event.Type()))
	if err := p.bus.Publish(ctx, event); err != nil {
		p.log("WARN", fmt.Sprintf("failed to publish %s for order %s: %v",
			event.Type(), event.OrderID(), err))
	}
}

// log пишет в приемник журналирования, если он подключен
func (p *Processor) log(level, message string) {
	if p.sink != nil {
		p.sink.Log(level, message)
	}
}
