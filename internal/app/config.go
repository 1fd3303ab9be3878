package app

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

const (
	// StorageDriverMemory - хранилище в памяти процесса.
	StorageDriverMemory = "memory"
	// StorageDriverPostgres - хранилище в PostgreSQL.
	StorageDriverPostgres = "postgres"

	PaymentProviderGRPC   = "grpc"
	PaymentProviderStripe = "stripe"
	PaymentProviderMock   = "mock"
)

// Переменные окружения.
const (
	envGRPCAddr            = "ORDERS_GRPC_ADDR"
	envMetricsAddr         = "ORDERS_METRICS_ADDR"
	envStorageDriver       = "ORDERS_STORAGE_DRIVER"
	envPostgresDSN         = "ORDERS_POSTGRES_DSN"
	envPostgresAutoMigrate = "ORDERS_POSTGRES_AUTO_MIGRATE"
	envCatalogAddr         = "ORDERS_CATALOG_ADDR"
	envPaymentProvider     = "ORDERS_PAYMENT_PROVIDER"
	envPaymentsAddr        = "ORDERS_PAYMENTS_ADDR"
	envStripeSecretKey     = "STRIPE_SECRET_KEY"
	envStripeSuccessURL    = "ORDERS_STRIPE_SUCCESS_URL"
	envStripeCancelURL     = "ORDERS_STRIPE_CANCEL_URL"
	envRemoteTimeout       = "ORDERS_REMOTE_TIMEOUT"
	envShutdownTimeout     = "ORDERS_SHUTDOWN_TIMEOUT"
	envKafkaBrokers        = "KAFKA_BROKERS"
	envKafkaGroupID        = "ORDERS_KAFKA_GROUP_ID"
	envKafkaMaxRetries     = "ORDERS_KAFKA_MAX_RETRIES"
	envLogLevel            = "ORDERS_LOG_LEVEL"
)

// Config описывает настройки запуска сервиса заказов.
type Config struct {
	GRPCAddr    string
	MetricsAddr string

	StorageDriver       string
	PostgresDSN         string
	PostgresAutoMigrate bool

	// CatalogAddr пустой - используется встроенный демо-каталог.
	CatalogAddr string

	PaymentProvider  string
	PaymentsAddr     string
	StripeSecretKey  string
	StripeSuccessURL string
	StripeCancelURL  string

	RemoteTimeout   time.Duration
	ShutdownTimeout time.Duration

	// KafkaBrokers пустой - события не публикуются, оплаты принимаются только через RPC.
	KafkaBrokers    []string
	KafkaGroupID    string
	KafkaMaxRetries int

	LogLevel string
}

// DefaultConfig возвращает конфигурацию для локального запуска без внешних зависимостей.
func DefaultConfig() Config {
	return Config{
		GRPCAddr:            ":50051",
		MetricsAddr:         ":9090",
		StorageDriver:       StorageDriverMemory,
		PostgresAutoMigrate: true,
		PaymentProvider:     PaymentProviderMock,
		StripeSuccessURL:    "http://localhost:3000/payments/success",
		StripeCancelURL:     "http://localhost:3000/payments/cancel",
		RemoteTimeout:       5 * time.Second,
		ShutdownTimeout:     5 * time.Second,
		KafkaGroupID:        "order-service",
		KafkaMaxRetries:     3,
		LogLevel:            "info",
	}
}

// LoadConfigFromEnv накладывает переменные окружения на DefaultConfig.
func LoadConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	setString(&cfg.GRPCAddr, envGRPCAddr)
	setString(&cfg.MetricsAddr, envMetricsAddr)
	setString(&cfg.StorageDriver, envStorageDriver)
	setString(&cfg.PostgresDSN, envPostgresDSN)
	setString(&cfg.CatalogAddr, envCatalogAddr)
	setString(&cfg.PaymentProvider, envPaymentProvider)
	setString(&cfg.PaymentsAddr, envPaymentsAddr)
	setString(&cfg.StripeSecretKey, envStripeSecretKey)
	setString(&cfg.StripeSuccessURL, envStripeSuccessURL)
	setString(&cfg.StripeCancelURL, envStripeCancelURL)
	setString(&cfg.KafkaGroupID, envKafkaGroupID)
	setString(&cfg.LogLevel, envLogLevel)

	cfg.StorageDriver = strings.ToLower(cfg.StorageDriver)
	cfg.PaymentProvider = strings.ToLower(cfg.PaymentProvider)

	if v := strings.TrimSpace(os.Getenv(envKafkaBrokers)); v != "" {
		cfg.KafkaBrokers = splitList(v)
	}

	var errs []error
	if v, ok := lookup(envPostgresAutoMigrate); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", envPostgresAutoMigrate, err))
		}
		cfg.PostgresAutoMigrate = b
	}
	if v, ok := lookup(envRemoteTimeout); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", envRemoteTimeout, err))
		}
		cfg.RemoteTimeout = d
	}
	if v, ok := lookup(envShutdownTimeout); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", envShutdownTimeout, err))
		}
		cfg.ShutdownTimeout = d
	}
	if v, ok := lookup(envKafkaMaxRetries); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", envKafkaMaxRetries, err))
		}
		cfg.KafkaMaxRetries = n
	}
	if err := errors.Join(errs...); err != nil {
		return Config{}, err
	}

	return cfg, cfg.Validate()
}

// Validate проверяет согласованность настроек.
func (c Config) Validate() error {
	var errs []error

	if c.GRPCAddr == "" {
		errs = append(errs, errors.New("grpc address is required"))
	}

	switch c.StorageDriver {
	case StorageDriverMemory:
	case StorageDriverPostgres:
		if c.PostgresDSN == "" {
			errs = append(errs, fmt.Errorf("%s is required for postgres storage", envPostgresDSN))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported storage driver %q", c.StorageDriver))
	}

	switch c.PaymentProvider {
	case PaymentProviderMock:
	case PaymentProviderGRPC:
		if c.PaymentsAddr == "" {
			errs = append(errs, fmt.Errorf("%s is required for grpc payment provider", envPaymentsAddr))
		}
	case PaymentProviderStripe:
		if c.StripeSecretKey == "" {
			errs = append(errs, fmt.Errorf("%s is required for stripe payment provider", envStripeSecretKey))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported payment provider %q", c.PaymentProvider))
	}

	if c.RemoteTimeout <= 0 {
		errs = append(errs, errors.New("remote timeout must be positive"))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("shutdown timeout must be positive"))
	}
	if len(c.KafkaBrokers) > 0 {
		if c.KafkaGroupID == "" {
			errs = append(errs, errors.New("kafka group id is required"))
		}
		if c.KafkaMaxRetries < 1 {
			errs = append(errs, errors.New("kafka max retries must be at least 1"))
		}
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// KafkaEnabled сообщает, настроены ли брокеры.
func (c Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

func setString(dst *string, key string) {
	if v, ok := lookup(key); ok {
		*dst = v
	}
}

func lookup(key string) (string, bool) {
	v := strings.TrimSpace(os.Getenv(key))
	return v, v != ""
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
