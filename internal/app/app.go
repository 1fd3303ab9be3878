package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	promgrpc "github.com/grpc-ecosystem/go-grpc-prometheus"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	ordersv1 "github.com/vladislavdragonenkov/orders/api/orders/v1"
	healthcheck "github.com/vladislavdragonenkov/orders/internal/health"
	"github.com/vladislavdragonenkov/orders/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/orders/internal/metrics"
	grpcsvc "github.com/vladislavdragonenkov/orders/internal/service/grpc"
	"github.com/vladislavdragonenkov/orders/internal/version"
)

// Run поднимает gRPC-сервер заказов, HTTP-сервер метрик и health-проверок
// и, если заданы брокеры, Kafka producer и consumer. Блокируется до отмены ctx
// или ошибки сервера.
func Run(ctx context.Context, cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := log.WithField("component", "app")
	logger.WithFields(version.Fields()).Info("starting order service")

	deps, err := initRuntimeDependencies(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer deps.close(logger)

	orderMetrics := metrics.NewOrderMetrics()

	producer, err := initKafkaProducer(cfg, logger)
	if err != nil {
		logger.WithError(err).Warn("failed to create kafka producer, continuing without order events")
		producer = nil
	}

	orchestrator := createOrchestrator(deps, producer, orderMetrics, logger)

	consumer, err := initPaymentConsumer(cfg, orchestrator, producer, orderMetrics, logger)
	if err != nil {
		logger.WithError(err).Warn("failed to create kafka consumer, payments are accepted via RPC only")
		consumer = nil
	}
	if consumer != nil {
		if err := consumer.Start(ctx); err != nil {
			logger.WithError(err).Warn("failed to start kafka consumer")
			consumer = nil
		}
	}

	orderService := grpcsvc.NewOrderService(orchestrator, logger.WithField("layer", "grpc"))
	grpcMetrics := serverMetrics(logger)
	grpcServer := grpc.NewServer(grpc.ChainUnaryInterceptor(grpcMetrics.UnaryServerInterceptor()))
	ordersv1.RegisterOrderServiceServer(grpcServer, orderService)
	grpcMetrics.InitializeMetrics(grpcServer)

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(ordersv1.ServiceName, healthpb.HealthCheckResponse_SERVING)

	healthHandler := newHealthHandler(deps, producer)
	metricsSrv := startMetricsServer(ctx, cfg.MetricsAddr, logger, healthHandler)

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		shutdownHTTP(metricsSrv, logger)
		closeKafka(consumer, producer, logger)
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("gRPC сервер слушает %s", lis.Addr())
		errCh <- grpcServer.Serve(lis)
	}()

	select {
	case <-ctx.Done():
		logger.Info("получен сигнал остановки, останавливаем gRPC сервер")
		healthServer.Shutdown()
		stoppedCh := make(chan struct{})
		go func() {
			grpcServer.GracefulStop()
			close(stoppedCh)
		}()
		select {
		case <-stoppedCh:
		case <-time.After(cfg.ShutdownTimeout):
			logger.Warn("graceful stop превысил таймаут, принудительно останавливаем")
			grpcServer.Stop()
		}
		shutdownHTTP(metricsSrv, logger)
		closeKafka(consumer, producer, logger)
		return ctx.Err()

	case err := <-errCh:
		shutdownHTTP(metricsSrv, logger)
		closeKafka(consumer, producer, logger)
		if errors.Is(err, grpc.ErrServerStopped) {
			return nil
		}
		return err
	}
}

// serverMetrics регистрирует метрики gRPC-сервера; при повторном Run в одном
// процессе переиспользует уже зарегистрированный коллектор.
func serverMetrics(logger *log.Entry) *promgrpc.ServerMetrics {
	grpcMetrics := promgrpc.NewServerMetrics()
	grpcMetrics.EnableHandlingTimeHistogram()
	if err := prometheus.Register(grpcMetrics); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(*promgrpc.ServerMetrics); ok {
				return existing
			}
		}
		logger.WithError(err).Warn("failed to register grpc metrics")
	}
	return grpcMetrics
}

func newHealthHandler(deps *runtimeDependencies, producer *kafka.Producer) *healthcheck.Handler {
	h := healthcheck.NewHandler(version.ServiceName, version.GetVersion())
	if deps.pgStore != nil {
		h.RegisterChecker("postgres", healthcheck.NewPingChecker("postgres", deps.pgStore))
	}
	h.RegisterChecker("storage", healthcheck.NewSimpleChecker("storage", func(context.Context) error {
		if deps.store == nil {
			return errors.New("order store is not initialized")
		}
		return nil
	}))
	h.RegisterOptional("order_events", healthcheck.NewSimpleChecker("order_events", func(context.Context) error {
		if producer == nil {
			return errors.New("kafka producer is not configured")
		}
		return nil
	}))
	return h
}

// startMetricsServer запускает HTTP-обработчик /metrics и health-эндпоинты.
func startMetricsServer(ctx context.Context, addr string, logger *log.Entry, healthHandler *healthcheck.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	healthHandler.Routes(mux)

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		logger.Infof("метрики доступны по адресу %s/metrics", addr)
		logger.Infof("health checks: %s/healthz, %s/livez, %s/readyz", addr, addr, addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Warn("metrics server failed")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownHTTP(srv, logger)
	}()

	return srv
}

// shutdownHTTP аккуратно останавливает HTTP-сервер.
func shutdownHTTP(srv *http.Server, logger *log.Entry) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Warn("metrics shutdown with error")
	}
}
