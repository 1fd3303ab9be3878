package app

import (
	"context"
	"errors"
	"fmt"

	promgrpc "github.com/grpc-ecosystem/go-grpc-prometheus"
	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/vladislavdragonenkov/orders/internal/domain"
	"github.com/vladislavdragonenkov/orders/internal/service/catalog"
	"github.com/vladislavdragonenkov/orders/internal/service/payment"
	"github.com/vladislavdragonenkov/orders/internal/storage/memory"
	"github.com/vladislavdragonenkov/orders/internal/storage/postgres"
)

// runtimeDependencies - хранилище и клиенты внешних сервисов, собранные по конфигурации.
type runtimeDependencies struct {
	store    domain.OrderStore
	pgStore  *postgres.Store
	catalog  domain.ProductCatalogClient
	payments domain.PaymentGatewayClient
	conns    []*grpc.ClientConn
}

// initRuntimeDependencies открывает хранилище и подключения к каталогу и платёжному сервису.
// При ошибке уже открытые ресурсы закрываются.
func initRuntimeDependencies(ctx context.Context, cfg Config, logger *log.Entry) (_ *runtimeDependencies, err error) {
	if logger == nil {
		logger = log.WithField("component", "app")
	}
	deps := &runtimeDependencies{}
	defer func() {
		if err != nil {
			deps.close(logger)
		}
	}()

	if err = deps.initStorage(ctx, cfg, logger); err != nil {
		return nil, err
	}
	if err = deps.initCatalog(cfg, logger); err != nil {
		return nil, err
	}
	if err = deps.initPayments(cfg, logger); err != nil {
		return nil, err
	}
	return deps, nil
}

func (d *runtimeDependencies) initStorage(ctx context.Context, cfg Config, logger *log.Entry) error {
	switch cfg.StorageDriver {
	case StorageDriverMemory:
		d.store = memory.NewOrderStore()
		logger.Warn("using in-memory order storage, data is lost on restart")
		return nil
	case StorageDriverPostgres:
		if cfg.PostgresDSN == "" {
			return errors.New("postgres dsn is required")
		}
		pg, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return err
		}
		d.pgStore = pg
		if cfg.PostgresAutoMigrate {
			if err := pg.MigrateUp(ctx, 0); err != nil {
				return fmt.Errorf("apply migrations: %w", err)
			}
			logger.Info("postgres migrations applied")
		}
		d.store = postgres.NewOrderStore(pg)
		return nil
	default:
		return fmt.Errorf("unsupported storage driver %q", cfg.StorageDriver)
	}
}

func (d *runtimeDependencies) initCatalog(cfg Config, logger *log.Entry) error {
	if cfg.CatalogAddr == "" {
		logger.Warn("catalog address is not set, using demo product catalog")
		d.catalog = catalog.NewMockClient(catalog.DemoProducts()...)
		return nil
	}
	conn, err := d.dial(cfg.CatalogAddr)
	if err != nil {
		return fmt.Errorf("dial catalog: %w", err)
	}
	d.catalog = catalog.NewClient(conn, cfg.RemoteTimeout, logger.WithField("component", "catalog-client"))
	logger.WithField("addr", cfg.CatalogAddr).Info("catalog client configured")
	return nil
}

func (d *runtimeDependencies) initPayments(cfg Config, logger *log.Entry) error {
	switch cfg.PaymentProvider {
	case PaymentProviderMock:
		logger.Warn("using mock payment gateway")
		d.payments = payment.NewMockGateway()
	case PaymentProviderGRPC:
		conn, err := d.dial(cfg.PaymentsAddr)
		if err != nil {
			return fmt.Errorf("dial payments: %w", err)
		}
		d.payments = payment.NewClient(conn, cfg.RemoteTimeout, logger.WithField("component", "payment-client"))
	case PaymentProviderStripe:
		gw, err := payment.NewStripeGateway(cfg.StripeSecretKey, cfg.StripeSuccessURL, cfg.StripeCancelURL,
			logger.WithField("component", "stripe-gateway"))
		if err != nil {
			return err
		}
		d.payments = gw
	default:
		return fmt.Errorf("unsupported payment provider %q", cfg.PaymentProvider)
	}
	logger.WithField("provider", cfg.PaymentProvider).Info("payment gateway configured")
	return nil
}

// dial создаёт ленивое подключение; метрики клиента собирает go-grpc-prometheus.
func (d *runtimeDependencies) dial(addr string) (*grpc.ClientConn, error) {
	conn, err := grpc.NewClient(addr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithChainUnaryInterceptor(promgrpc.UnaryClientInterceptor),
	)
	if err != nil {
		return nil, err
	}
	d.conns = append(d.conns, conn)
	return conn, nil
}

// close освобождает подключения в обратном порядке.
func (d *runtimeDependencies) close(logger *log.Entry) {
	for i := len(d.conns) - 1; i >= 0; i-- {
		if err := d.conns[i].Close(); err != nil {
			logger.WithError(err).Warn("failed to close grpc client connection")
		}
	}
	d.conns = nil
	if d.pgStore != nil {
		if err := d.pgStore.Close(); err != nil {
			logger.WithError(err).Warn("failed to close postgres store")
		}
		d.pgStore = nil
	}
}
