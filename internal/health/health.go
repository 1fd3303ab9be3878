package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"
)

// Status представляет статус компонента
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
	StatusDegraded  Status = "degraded"
)

const defaultCheckTimeout = 2 * time.Second

// Check представляет проверку здоровья компонента
type Check struct {
	Name       string `json:"name"`
	Status     Status `json:"status"`
	Message    string `json:"message,omitempty"`
	DurationMs int64  `json:"duration_ms"`
}

// Response представляет ответ health check
type Response struct {
	Status        Status           `json:"status"`
	Service       string           `json:"service,omitempty"`
	Timestamp     time.Time        `json:"timestamp"`
	Checks        map[string]Check `json:"checks,omitempty"`
	Version       string           `json:"version,omitempty"`
	UptimeSeconds int64            `json:"uptime_seconds"`
}

// Checker проверяет один компонент. ctx ограничен таймаутом обработчика.
type Checker interface {
	Check(ctx context.Context) Check
}

type registration struct {
	checker  Checker
	optional bool
}

// Handler обрабатывает /healthz и /readyz.
type Handler struct {
	mu        sync.RWMutex
	checkers  map[string]registration
	service   string
	version   string
	timeout   time.Duration
	startTime time.Time
}

// NewHandler создаёт новый health handler
func NewHandler(service, version string) *Handler {
	return &Handler{
		checkers:  make(map[string]registration),
		service:   service,
		version:   version,
		timeout:   defaultCheckTimeout,
		startTime: time.Now(),
	}
}

// WithTimeout задаёт общий таймаут одного прогона проверок.
func (h *Handler) WithTimeout(d time.Duration) *Handler {
	if d > 0 {
		h.timeout = d
	}
	return h
}

// RegisterChecker регистрирует обязательную проверку: её отказ делает сервис неготовым.
func (h *Handler) RegisterChecker(name string, checker Checker) {
	h.register(name, checker, false)
}

// RegisterOptional регистрирует проверку, отказ которой даёт только degraded.
func (h *Handler) RegisterOptional(name string, checker Checker) {
	h.register(name, checker, true)
}

func (h *Handler) register(name string, checker Checker, optional bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checkers[name] = registration{checker: checker, optional: optional}
}

// Routes вешает liveness, readiness и полный отчёт на mux.
func (h *Handler) Routes(mux *http.ServeMux) {
	mux.Handle("/healthz", h)
	mux.HandleFunc("/livez", LivenessHandler)
	mux.HandleFunc("/readyz", h.ReadinessHandler)
}

// run выполняет проверки параллельно и сводит их в общий статус.
func (h *Handler) run(ctx context.Context) (map[string]Check, Status) {
	h.mu.RLock()
	regs := make(map[string]registration, len(h.checkers))
	for k, v := range h.checkers {
		regs[k] = v
	}
	h.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		checks = make(map[string]Check, len(regs))
	)
	for name, reg := range regs {
		wg.Add(1)
		go func(name string, reg registration) {
			defer wg.Done()
			check := reg.checker.Check(ctx)
			if check.Name == "" {
				check.Name = name
			}
			if reg.optional && check.Status == StatusUnhealthy {
				check.Status = StatusDegraded
			}
			mu.Lock()
			checks[name] = check
			mu.Unlock()
		}(name, reg)
	}
	wg.Wait()

	overall := StatusHealthy
	for _, check := range checks {
		switch {
		case check.Status == StatusUnhealthy:
			overall = StatusUnhealthy
		case check.Status == StatusDegraded && overall == StatusHealthy:
			overall = StatusDegraded
		}
	}
	return checks, overall
}

// ServeHTTP обрабатывает HTTP запрос
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	checks, overall := h.run(r.Context())

	response := Response{
		Status:        overall,
		Service:       h.service,
		Timestamp:     time.Now().UTC(),
		Checks:        checks,
		Version:       h.version,
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
	}

	statusCode := http.StatusOK
	if overall == StatusUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(response)
}

// LivenessHandler простой liveness probe (всегда возвращает 200)
func LivenessHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// ReadinessHandler отвечает 503, пока хотя бы одна обязательная проверка не проходит.
func (h *Handler) ReadinessHandler(w http.ResponseWriter, r *http.Request) {
	checks, overall := h.run(r.Context())
	if overall == StatusUnhealthy {
		names := make([]string, 0, len(checks))
		for name, check := range checks {
			if check.Status == StatusUnhealthy {
				names = append(names, name)
			}
		}
		sort.Strings(names)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("not ready: " + strings.Join(names, ",")))
		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// SimpleChecker простая проверка с функцией
type SimpleChecker struct {
	name    string
	checkFn func(ctx context.Context) error
}

// NewSimpleChecker создаёт простую проверку
func NewSimpleChecker(name string, checkFn func(ctx context.Context) error) *SimpleChecker {
	return &SimpleChecker{
		name:    name,
		checkFn: checkFn,
	}
}

// Pinger - всё, что умеет проверить соединение: *postgres.Store и подобные.
type Pinger interface {
	Ping(ctx context.Context) error
}

// NewPingChecker оборачивает Pinger в проверку.
func NewPingChecker(name string, p Pinger) *SimpleChecker {
	return NewSimpleChecker(name, p.Ping)
}

// Check выполняет проверку
func (c *SimpleChecker) Check(ctx context.Context) Check {
	start := time.Now()
	err := c.checkFn(ctx)
	duration := time.Since(start)

	if err != nil {
		return Check{
			Name:       c.name,
			Status:     StatusUnhealthy,
			Message:    err.Error(),
			DurationMs: duration.Milliseconds(),
		}
	}

	return Check{
		Name:       c.name,
		Status:     StatusHealthy,
		DurationMs: duration.Milliseconds(),
	}
}
