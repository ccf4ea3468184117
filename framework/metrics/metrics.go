// Package metrics предоставляет систему метрик на основе OpenTelemetry.
package metrics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics сборщик метрик обработки заказов. Методы безопасны при nil
// получателе: библиотека работает и без подключенных метрик.
type Metrics struct {
	meter             metric.Meter
	ordersSubmitted   metric.Int64Counter
	paymentsTotal     metric.Int64Counter
	eventsPublished   metric.Int64Counter
	observerFailures  metric.Int64Counter
	pricingDuration   metric.Float64Histogram
	activeSubmissions metric.Int64UpDownCounter
}

// NewMetrics создает новый сборщик метрик
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter("orderkit")

	ordersSubmitted, err := meter.Int64Counter(
		"orders_submitted_total",
		metric.WithDescription("Total number of order submissions"),
	)
	if err != nil {
		return nil, err
	}

	paymentsTotal, err := meter.Int64Counter(
		"payments_total",
		metric.WithDescription("Total number of payment authorizations by outcome"),
	)
	if err != nil {
		return nil, err
	}

	eventsPublished, err := meter.Int64Counter(
		"events_published_total",
		metric.WithDescription("Total number of order events published"),
	)
	if err != nil {
		return nil, err
	}

	observerFailures, err := meter.Int64Counter(
		"observer_failures_total",
		metric.WithDescription("Total number of isolated observer failures"),
	)
	if err != nil {
		return nil, err
	}

	pricingDuration, err := meter.Float64Histogram(
		"pricing_duration_seconds",
		metric.WithDescription("Order pricing duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	activeSubmissions, err := meter.Int64UpDownCounter(
		"active_submissions",
		metric.WithDescription("Number of submissions currently in flight"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		meter:             meter,
		ordersSubmitted:   ordersSubmitted,
		paymentsTotal:     paymentsTotal,
		eventsPublished:   eventsPublished,
		observerFailures:  observerFailures,
		pricingDuration:   pricingDuration,
		activeSubmissions: activeSubmissions,
	}, nil
}

// RecordSubmission учитывает подачу заказа
func (m *Metrics) RecordSubmission(ctx context.Context, paymentMethod string) {
	if m == nil {
		return
	}
	m.ordersSubmitted.Add(ctx, 1, metric.WithAttributes(
		attribute.String("payment_method", paymentMethod),
	))
}

// RecordPayment учитывает исход авторизации
func (m *Metrics) RecordPayment(ctx context.Context, status string) {
	if m == nil {
		return
	}
	m.paymentsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("status", status),
	))
}

// RecordEvent учитывает публикацию события
func (m *Metrics) RecordEvent(ctx context.Context, eventType string) {
	if m == nil {
		return
	}
	m.eventsPublished.Add(ctx, 1, metric.WithAttributes(
		attribute.String("type", eventType),
	))
}

// RecordObserverFailure учитывает изолированную ошибку наблюдателя
func (m *Metrics) RecordObserverFailure(ctx context.Context, observer string) {
	if m == nil {
		return
	}
	m.observerFailures.Add(ctx, 1, metric.WithAttributes(
		attribute.String("observer", observer),
	))
}

// RecordPricingDuration учитывает длительность тарификации
func (m *Metrics) RecordPricingDuration(ctx context.Context, duration time.Duration) {
	if m == nil {
		return
	}
	m.pricingDuration.Record(ctx, duration.Seconds())
}

// SubmissionStarted увеличивает счетчик активных подач
func (m *Metrics) SubmissionStarted(ctx context.Context) {
	if m == nil {
		return
	}
	m.activeSubmissions.Add(ctx, 1)
}

// SubmissionFinished уменьшает счетчик активных подач
func (m *Metrics) SubmissionFinished(ctx context.Context) {
	if m == nil {
		return
	}
	m.activeSubmissions.Add(ctx, -1)
}
