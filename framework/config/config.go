// Package config предоставляет загрузку таблицы регистрации стратегий и
// декораторов из YAML. Конфигурация загружается один раз до приема подач.
package config

import (
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/orderkit/orderkit/framework/core"
	"github.com/orderkit/orderkit/framework/payment"
	"github.com/orderkit/orderkit/framework/pricing"
	"github.com/orderkit/orderkit/framework/registry"
)

// Имена встроенных реализаций стратегий
const (
	ImplCreditCard   = "creditcard"
	ImplBankTransfer = "banktransfer"
	ImplStoredCredit = "storedcredit"
)

// Имена встроенных реализаций декораторов
const (
	ImplPercentDiscount   = "percent_discount"
	ImplTax               = "tax"
	ImplShippingSurcharge = "shipping_surcharge"
)

// Config корневая конфигурация библиотеки
type Config struct {
	Payment PaymentConfig `yaml:"payment"`
	Pricing PricingConfig `yaml:"pricing"`
}

// PaymentConfig конфигурация стратегий оплаты
type PaymentConfig struct {
	// Methods отображает тег способа оплаты на имя реализации
	Methods            map[string]string  `yaml:"methods"`
	AuthorizeTimeoutMS int                `yaml:"authorize_timeout_ms"`
	CreditCard         CreditCardConfig   `yaml:"creditcard"`
	BankTransfer       BankTransferConfig `yaml:"banktransfer"`
}

// CreditCardConfig параметры карточной стратегии
type CreditCardConfig struct {
	LatencyMS       int      `yaml:"latency_ms"`
	DeclinePrefixes []string `yaml:"decline_prefixes"`
}

// BankTransferConfig параметры стратегии банковского перевода
type BankTransferConfig struct {
	MaxConcurrent int `yaml:"max_concurrent"`
	LatencyMS     int `yaml:"latency_ms"`
}

// PricingConfig конфигурация декораторов цены
type PricingConfig struct {
	Decorators []DecoratorConfig `yaml:"decorators"`
}

// DecoratorConfig регистрационная запись декоратора
type DecoratorConfig struct {
	Name         string `yaml:"name"`
	Impl         string `yaml:"impl"`
	Priority     int    `yaml:"priority"`
	BasisPoints  int64  `yaml:"basis_points"`
	Amount       int64  `yaml:"amount"`
	Code         string `yaml:"code"`
	PhysicalOnly bool   `yaml:"physical_only"`
}

// AuthorizeTimeout возвращает таймаут авторизации
func (c *Config) AuthorizeTimeout() time.Duration {
	return time.Duration(c.Payment.AuthorizeTimeoutMS) * time.Millisecond
}

// Load читает конфигурацию из потока; неизвестные поля отклоняются
func Load(r io.Reader) (*Config, error) {
	var cfg Config
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, core.Wrap(err, core.ErrInvalidConfig, "failed to decode config")
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFile читает конфигурацию из файла
func LoadFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, core.Wrap(err, core.ErrInvalidConfig, "failed to open config file")
	}
	defer f.Close()
	return Load(f)
}

// validate проверяет минимальную корректность конфигурации. Пустая таблица
// способов оплаты - единственное фатальное для старта условие.
func (c *Config) validate() error {
	if len(c.Payment.Methods) == 0 {
		return core.NewError(core.ErrInvalidConfig, "no payment methods configured")
	}
	for tag, impl := range c.Payment.Methods {
		if tag == "" || impl == "" {
			return core.NewError(core.ErrInvalidConfig, "payment method mapping has empty tag or impl")
		}
	}
	for _, d := range c.Pricing.Decorators {
		if d.Name == "" || d.Impl == "" {
			return core.NewError(core.ErrInvalidConfig, "decorator entry has empty name or impl")
		}
	}
	return nil
}

// Apply заполняет реестр по таблице регистрации. Вызывается один раз на
// старте процесса, до первого Resolve.
func Apply(cfg *Config, reg *registry.Registry) error {
	for tag, impl := range cfg.Payment.Methods {
		strategy, err := buildStrategy(impl, cfg)
		if err != nil {
			return err
		}
		if err := reg.RegisterStrategy(tag, strategy); err != nil {
			return err
		}
	}

	for _, d := range cfg.Pricing.Decorators {
		decorator, err := buildDecorator(d)
		if err != nil {
			return err
		}
		if err := reg.RegisterDecorator(registry.DecoratorEntry{
			Name:         d.Name,
			Decorator:    decorator,
			Priority:     d.Priority,
			PhysicalOnly: d.PhysicalOnly,
		}); err != nil {
			return err
		}
	}

	return nil
}

// buildStrategy создает встроенную стратегию по имени реализации
func buildStrategy(impl string, cfg *Config) (payment.Strategy, error) {
	switch impl {
	case ImplCreditCard:
		s := payment.NewCreditCardStrategy().
			WithLatency(time.Duration(cfg.Payment.CreditCard.LatencyMS) * time.Millisecond)
		if len(cfg.Payment.CreditCard.DeclinePrefixes) > 0 {
			s = s.WithDeclinePrefixes(cfg.Payment.CreditCard.DeclinePrefixes...)
		}
		return s, nil
	case ImplBankTransfer:
		return payment.NewBankTransferStrategy(cfg.Payment.BankTransfer.MaxConcurrent).
			WithLatency(time.Duration(cfg.Payment.BankTransfer.LatencyMS) * time.Millisecond), nil
	case ImplStoredCredit:
		return payment.NewStoredCreditStrategy(), nil
	default:
		return nil, core.Newf(core.ErrInvalidConfig, "unknown strategy impl: %s", impl)
	}
}

// buildDecorator создает встроенный декоратор по имени реализации
func buildDecorator(d DecoratorConfig) (pricing.Decorator, error) {
	switch d.Impl {
	case ImplPercentDiscount:
		return pricing.NewPercentDiscountDecorator(d.Name, d.Code, d.BasisPoints), nil
	case ImplTax:
		return pricing.NewTaxDecorator(d.Name, d.BasisPoints), nil
	case ImplShippingSurcharge:
		return pricing.NewShippingSurchargeDecorator(d.Name, d.Amount), nil
	default:
		return nil, core.Newf(core.ErrInvalidConfig, "unknown decorator impl: %s", d.Impl)
	}
}
