package api

import (
	"time"

	models "LagScalper/internal/domain/models"
	"LagScalper/internal/repository"
	"LagScalper/internal/store"
	"LagScalper/internal/strategy"
	"LagScalper/internal/usecase"
	xhttp "LagScalper/pkg/http"
	xlogger "LagScalper/pkg/logger"

	"github.com/labstack/echo/v4"
)

// StatusHandler exposes health, runtime status, and the signal history.
type StatusHandler struct {
	logger       *xlogger.Logger
	collector    *usecase.TickCollector
	orchestrator *usecase.SignalOrchestrator
	store        *store.RollingStore
	gate         *strategy.CooldownGate
	history      *repository.SignalHistory // nil when history is disabled
	startedAt    time.Time
}

func NewStatusHandler(
	logger *xlogger.Logger,
	collector *usecase.TickCollector,
	orchestrator *usecase.SignalOrchestrator,
	st *store.RollingStore,
	gate *strategy.CooldownGate,
	history *repository.SignalHistory,
) *StatusHandler {
	return &StatusHandler{
		logger:       logger,
		collector:    collector,
		orchestrator: orchestrator,
		store:        st,
		gate:         gate,
		history:      history,
		startedAt:    time.Now(),
	}
}

func (h *StatusHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.Health)
	g := e.Group("/api")
	g.GET("/status", h.Status)
	g.GET("/signals/recent", h.RecentSignals)
}

type healthResponse struct {
	Status          string `json:"status"`
	StreamConnected bool   `json:"stream_connected"`
}

func (h *StatusHandler) Health(c echo.Context) error {
	return xhttp.SuccessResponse(c, healthResponse{
		Status:          "ok",
		StreamConnected: h.collector.IsConnected(),
	})
}

type statusResponse struct {
	UptimeSeconds   int64                               `json:"uptime_seconds"`
	StreamConnected bool                                `json:"stream_connected"`
	Series          map[string]store.SymbolStatus       `json:"series"`
	Evaluations     map[string]usecase.EvaluationStatus `json:"evaluations"`
	CooldownsMS     map[string]int64                    `json:"cooldowns_ms,omitempty"`
}

func (h *StatusHandler) Status(c echo.Context) error {
	now := time.Now()
	cooldowns := make(map[string]int64)
	for sym, rem := range h.gate.Active(now) {
		cooldowns[sym] = rem.Milliseconds()
	}
	return xhttp.SuccessResponse(c, statusResponse{
		UptimeSeconds:   int64(now.Sub(h.startedAt).Seconds()),
		StreamConnected: h.collector.IsConnected(),
		Series:          h.store.Status(),
		Evaluations:     h.orchestrator.Status(),
		CooldownsMS:     cooldowns,
	})
}

func (h *StatusHandler) RecentSignals(c echo.Context) error {
	if h.history == nil {
		return xhttp.NotFoundResponse(c, "signal history is disabled")
	}
	req := &models.RecentSignalsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	since := time.Now().Add(-time.Duration(req.Hours) * time.Hour)
	signals, err := h.history.Recent(c.Request().Context(), req.Symbol, since, req.Limit)
	if err != nil {
		h.logger.Error("signal history query failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.ListResponse(c, signals, int64(len(signals)))
}
