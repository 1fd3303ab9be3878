package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Значения label result.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// OrderMetrics содержит метрики операций над заказами.
// Все методы допускают nil-получатель: метрики можно не подключать.
type OrderMetrics struct {
	operations        *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec

	collaboratorCalls    *prometheus.CounterVec
	collaboratorDuration *prometheus.HistogramVec

	ordersCreated prometheus.Counter
	ordersPaid    prometheus.Counter
	statusChanges *prometheus.CounterVec

	eventsPublished *prometheus.CounterVec
	paymentEvents   *prometheus.CounterVec
}

// NewOrderMetrics регистрирует метрики в prometheus.DefaultRegisterer.
func NewOrderMetrics() *OrderMetrics {
	return NewOrderMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

// NewOrderMetricsWithRegisterer регистрирует метрики в переданном реестре.
func NewOrderMetricsWithRegisterer(registerer prometheus.Registerer) *OrderMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &OrderMetrics{
		operations: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "orders_operations_total",
			Help: "Total number of order operations by outcome",
		}, []string{"operation", "result"}),
		operationDuration: registerHistogramVec(registerer, prometheus.HistogramOpts{
			Name:    "orders_operation_duration_seconds",
			Help:    "Duration of order operations in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		collaboratorCalls: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "orders_collaborator_calls_total",
			Help: "Total number of calls to remote collaborators by outcome",
		}, []string{"collaborator", "result"}),
		collaboratorDuration: registerHistogramVec(registerer, prometheus.HistogramOpts{
			Name:    "orders_collaborator_call_duration_seconds",
			Help:    "Duration of calls to remote collaborators in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}, []string{"collaborator"}),
		ordersCreated: registerCounter(registerer, prometheus.CounterOpts{
			Name: "orders_created_total",
			Help: "Total number of orders created",
		}),
		ordersPaid: registerCounter(registerer, prometheus.CounterOpts{
			Name: "orders_paid_total",
			Help: "Total number of orders marked as paid",
		}),
		statusChanges: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "orders_status_changes_total",
			Help: "Total number of persisted status changes by target status",
		}, []string{"status"}),
		eventsPublished: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "orders_events_published_total",
			Help: "Total number of order events handed to the broker by outcome",
		}, []string{"event_type", "result"}),
		paymentEvents: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "orders_payment_events_total",
			Help: "Total number of consumed payment events by outcome",
		}, []string{"result"}),
	}
}

// ObserveOperation учитывает завершение операции. result - ResultOK или вид ошибки.
func (m *OrderMetrics) ObserveOperation(operation, result string, duration time.Duration) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(operation, result).Inc()
	m.operationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// ObserveCollaboratorCall учитывает вызов каталога или платёжного сервиса.
func (m *OrderMetrics) ObserveCollaboratorCall(collaborator string, err error, duration time.Duration) {
	if m == nil {
		return
	}
	result := ResultOK
	if err != nil {
		result = ResultError
	}
	m.collaboratorCalls.WithLabelValues(collaborator, result).Inc()
	m.collaboratorDuration.WithLabelValues(collaborator).Observe(duration.Seconds())
}

// RecordOrderCreated увеличивает счётчик созданных заказов.
func (m *OrderMetrics) RecordOrderCreated() {
	if m == nil {
		return
	}
	m.ordersCreated.Inc()
}

// RecordOrderPaid увеличивает счётчик оплаченных заказов.
func (m *OrderMetrics) RecordOrderPaid() {
	if m == nil {
		return
	}
	m.ordersPaid.Inc()
}

// RecordStatusChange учитывает сохранённую смену статуса.
func (m *OrderMetrics) RecordStatusChange(status string) {
	if m == nil {
		return
	}
	m.statusChanges.WithLabelValues(status).Inc()
}

// RecordEventPublished учитывает публикацию события заказа.
func (m *OrderMetrics) RecordEventPublished(eventType string, err error) {
	if m == nil {
		return
	}
	result := ResultOK
	if err != nil {
		result = ResultError
	}
	m.eventsPublished.WithLabelValues(eventType, result).Inc()
}

// RecordPaymentEvent учитывает обработку события об оплате.
func (m *OrderMetrics) RecordPaymentEvent(result string) {
	if m == nil {
		return
	}
	m.paymentEvents.WithLabelValues(result).Inc()
}
