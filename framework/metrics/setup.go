// Package metrics предоставляет функции для настройки системы метрик.
package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.opentelemetry.io/otel/sdk/resource"
)

// SetupConfig конфигурация метрик
type SetupConfig struct {
	ServiceName   string
	ResourceAttrs map[string]string
}

// SetupManualReader настраивает провайдер метрик с ручным считывателем.
// Библиотека не имеет сетевой поверхности, поэтому вместо экспортера
// используется ManualReader: накопленные метрики забираются вызовом Collect.
func SetupManualReader(config *SetupConfig) (*sdkmetric.ManualReader, *sdkmetric.MeterProvider, error) {
	if config == nil {
		config = &SetupConfig{ServiceName: "orderkit"}
	}

	res, err := resource.New(context.Background(),
		resource.WithAttributes(buildResourceAttributes(config)...),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create resource: %w", err)
	}

	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(reader),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(provider)

	return reader, provider, nil
}

// Collect собирает накопленные метрики из ручного считывателя
func Collect(ctx context.Context, reader *sdkmetric.ManualReader) (*metricdata.ResourceMetrics, error) {
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		return nil, fmt.Errorf("failed to collect metrics: %w", err)
	}
	return &rm, nil
}

// buildResourceAttributes строит атрибуты ресурса
func buildResourceAttributes(config *SetupConfig) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String("service.name", config.ServiceName),
	}
	for k, v := range config.ResourceAttrs {
		attrs = append(attrs, attribute.String(k, v))
	}
	return attrs
}
