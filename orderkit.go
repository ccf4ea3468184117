// Package orderkit предоставляет расширяемую in-process библиотеку обработки
// заказов: стратегии авторизации оплаты, композируемые декораторы цены,
// фабрику разрешения и шину уведомлений о событиях заказа.
//
// Основные возможности:
//   - Взаимозаменяемые стратегии оплаты, выбираемые по тегу способа оплаты
//   - Декораторы итоговой суммы (скидка, налог, надбавка) с фиксированным
//     порядком применения
//   - Реестр с фазой инициализации и контрактом неизменяемости после заморозки
//   - Шина уведомлений с изоляцией ошибок наблюдателей
//   - Метрики на основе OpenTelemetry
//
// Пример использования:
//
//	kit, err := orderkit.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer kit.Shutdown(ctx)
//	event, err := kit.Service().SubmitOrder(ctx, o)
package orderkit

import (
	"context"

	"github.com/orderkit/orderkit/framework/config"
	"github.com/orderkit/orderkit/framework/events"
	"github.com/orderkit/orderkit/framework/metrics"
	"github.com/orderkit/orderkit/framework/processor"
	"github.com/orderkit/orderkit/framework/registry"
)

// Version представляет версию библиотеки
const (
	Version = "1.0.0"
	Major   = 1
	Minor   = 0
	Patch   = 0
)

// Kit собранный экземпляр библиотеки: реестр заполнен из конфигурации и
// заморожен, процессор и шина готовы к приему подач
type Kit struct {
	registry *registry.Registry
	bus      *events.NotificationBus
	service  *processor.Service
}

// Option настройка сборки Kit
type Option func(*options)

type options struct {
	metrics  *metrics.Metrics
	sink     events.LogSink
	enricher processor.ContextEnricher
}

// WithMetrics подключает сборщик метрик
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithLogSink подключает приемник журналирования
func WithLogSink(sink events.LogSink) Option {
	return func(o *options) { o.sink = sink }
}

// WithContextEnricher устанавливает обогащение контекста тарификации
func WithContextEnricher(enricher processor.ContextEnricher) Option {
	return func(o *options) { o.enricher = enricher }
}

// New собирает библиотеку из конфигурации. Таблица регистрации загружается
// один раз до приема подач; пустая таблица стратегий - фатальная ошибка.
func New(cfg *config.Config, opts ...Option) (*Kit, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	reg := registry.NewRegistry()
	if err := config.Apply(cfg, reg); err != nil {
		return nil, err
	}
	reg.Freeze()

	bus := events.NewNotificationBus()
	if o.metrics != nil {
		m := o.metrics
		bus.WithFailureHandler(func(observer string, event events.OrderEvent, err error) {
			m.RecordObserverFailure(context.Background(), observer)
		})
	}

	proc := processor.NewProcessor(reg, bus).
		WithMetrics(o.metrics).
		WithLogSink(o.sink)
	if o.enricher != nil {
		proc = proc.WithContextEnricher(o.enricher)
	}
	if timeout := cfg.AuthorizeTimeout(); timeout > 0 {
		proc = proc.WithAuthorizeTimeout(timeout)
	}

	return &Kit{
		registry: reg,
		bus:      bus,
		service:  processor.NewService(proc, bus),
	}, nil
}

// Service возвращает синхронный фасад обработки заказов
func (k *Kit) Service() *processor.Service {
	return k.service
}

// Bus возвращает шину уведомлений
func (k *Kit) Bus() *events.NotificationBus {
	return k.bus
}

// Registry возвращает замороженный реестр
func (k *Kit) Registry() *registry.Registry {
	return k.registry
}

// Shutdown корректно завершает работу библиотеки
func (k *Kit) Shutdown(ctx context.Context) error {
	return k.bus.Shutdown(ctx)
}
