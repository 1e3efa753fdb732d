package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/koios/api-widget/internal/metrics"
	"github.com/koios/api-widget/pkg/models"
	"go.uber.org/zap"
)

var ErrInvalidInstance = errors.New("invalid widget instance id")

// ForegroundApp is the app that owns the data shown by the widget
type ForegroundApp interface {
	Launch(ctx context.Context) error
	RequestRefresh(ctx context.Context, id models.InstanceID) error
}

// EventHandler receives fired triggers and hands them to the foreground app
type EventHandler struct {
	app    ForegroundApp
	logger *zap.Logger
}

// NewEventHandler creates a new event handler
func NewEventHandler(app ForegroundApp, logger *zap.Logger) *EventHandler {
	return &EventHandler{
		app:    app,
		logger: logger,
	}
}

// HandleRefresh asks the foreground app to refresh data for the instance.
// Events without a valid instance id are ignored.
func (h *EventHandler) HandleRefresh(ctx context.Context, event models.RefreshEvent) error {
	if event.InstanceID == models.InvalidInstanceID {
		h.logger.Debug("Ignoring refresh without a widget id")
		return nil
	}

	h.logger.Info("Relaying refresh request",
		zap.Int("instance_id", int(event.InstanceID)),
		zap.Time("fired_at", event.FiredAt))

	if err := h.app.RequestRefresh(ctx, event.InstanceID); err != nil {
		metrics.ForegroundRelays.WithLabelValues(models.IntentRefreshWidgetData, "error").Inc()
		h.logger.Error("Refresh relay failed",
			zap.Error(err),
			zap.Int("instance_id", int(event.InstanceID)))
		return fmt.Errorf("failed to relay refresh for instance %d: %w", event.InstanceID, err)
	}

	metrics.ForegroundRelays.WithLabelValues(models.IntentRefreshWidgetData, "sent").Inc()
	return nil
}

// HandleOpenApp launches the foreground app at its default entry point
func (h *EventHandler) HandleOpenApp(ctx context.Context) error {
	if err := h.app.Launch(ctx); err != nil {
		metrics.ForegroundRelays.WithLabelValues(models.IntentMain, "error").Inc()
		h.logger.Error("Launching foreground app failed", zap.Error(err))
		return fmt.Errorf("failed to launch foreground app: %w", err)
	}

	metrics.ForegroundRelays.WithLabelValues(models.IntentMain, "sent").Inc()
	return nil
}

// LogApp stands in for the foreground app when no transport is configured
type LogApp struct {
	logger *zap.Logger
}

// NewLogApp creates a foreground app that only logs intents
func NewLogApp(logger *zap.Logger) *LogApp {
	return &LogApp{logger: logger}
}

func (a *LogApp) Launch(ctx context.Context) error {
	a.logger.Info("Foreground app launch requested", zap.String("action", models.IntentMain))
	return nil
}

func (a *LogApp) RequestRefresh(ctx context.Context, id models.InstanceID) error {
	a.logger.Info("Foreground app refresh requested",
		zap.String("action", models.IntentRefreshWidgetData),
		zap.Int("widget_id", int(id)))
	return nil
}
