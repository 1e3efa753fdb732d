package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/koios/api-widget/internal/dispatch"
	"github.com/koios/api-widget/internal/host"
	"github.com/koios/api-widget/internal/metrics"
	"github.com/koios/api-widget/internal/store"
	"github.com/koios/api-widget/pkg/models"
	"go.uber.org/zap"
)

// Updater runs render passes
type Updater interface {
	Update(ctx context.Context, ids ...models.InstanceID) error
	UpdateAll(ctx context.Context) error
	Delete(ids ...models.InstanceID)
}

// ViewSource exposes what the host currently shows
type ViewSource interface {
	View(id models.InstanceID) (models.AppliedView, error)
	Preview(id models.InstanceID) ([]byte, bool)
}

// TriggerFirer fires registered trigger handles
type TriggerFirer interface {
	Fire(ctx context.Context, id string) error
}

// HealthChecker reports whether a backing connection is usable
type HealthChecker interface {
	IsHealthy(ctx context.Context) bool
}

// WidgetHandler handles HTTP requests for widget instances
type WidgetHandler struct {
	redis    HealthChecker
	updater  Updater
	views    ViewSource
	triggers TriggerFirer
	store    store.Writer
	manifest *models.ProviderManifest
	logger   *zap.Logger
}

// NewWidgetHandler creates a new widget handler
func NewWidgetHandler(
	updater Updater,
	views ViewSource,
	triggers TriggerFirer,
	writer store.Writer,
	manifest *models.ProviderManifest,
	logger *zap.Logger,
) *WidgetHandler {
	return &WidgetHandler{
		updater:  updater,
		views:    views,
		triggers: triggers,
		store:    writer,
		manifest: manifest,
		logger:   logger,
	}
}

// WithRedis reports the Redis connection in GET /health
func (h *WidgetHandler) WithRedis(checker HealthChecker) *WidgetHandler {
	h.redis = checker
	return h
}

// Routes builds the HTTP router
func (h *WidgetHandler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", h.handleHealth)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())
	r.Get("/provider", h.handleProvider)

	r.Route("/widgets", func(r chi.Router) {
		r.Post("/update", h.handleUpdate)
		r.Get("/{id}", h.handleView)
		r.Delete("/{id}", h.handleDelete)
		r.Get("/{id}/preview.webp", h.handlePreview)
	})

	r.Post("/triggers/{handle}", h.handleFire)
	r.Put("/snapshot", h.handleSaveSnapshot)

	return r
}

// handleHealth handles GET /health - returns service health status
func (h *WidgetHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	status, code := "healthy", http.StatusOK
	resp := map[string]interface{}{
		"service": "api-widget",
		"version": "1.0.0",
	}

	if h.redis != nil {
		if h.redis.IsHealthy(r.Context()) {
			resp["redis"] = "healthy"
		} else {
			resp["redis"] = "unhealthy"
			status, code = "degraded", http.StatusServiceUnavailable
		}
	}

	resp["status"] = status
	writeJSON(w, code, resp)
}

// handleProvider handles GET /provider - returns the provider manifest
func (h *WidgetHandler) handleProvider(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.manifest)
}

type updateRequest struct {
	InstanceIDs []models.InstanceID `json:"instance_ids"`
}

// handleUpdate handles POST /widgets/update - runs render passes; an empty
// list updates every placed instance
func (h *WidgetHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	// An empty body, chunked or not, means every instance
	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	for _, id := range req.InstanceIDs {
		if id == models.InvalidInstanceID {
			http.Error(w, ErrInvalidInstance.Error(), http.StatusBadRequest)
			return
		}
	}

	var err error
	if len(req.InstanceIDs) == 0 {
		err = h.updater.UpdateAll(r.Context())
	} else {
		err = h.updater.Update(r.Context(), req.InstanceIDs...)
	}
	if err != nil {
		h.logger.Error("Widget update failed", zap.Error(err))
		http.Error(w, "Widget update failed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
	})
}

// handleView handles GET /widgets/{id} - returns the applied view
func (h *WidgetHandler) handleView(w http.ResponseWriter, r *http.Request) {
	id, err := instanceIDParam(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	view, err := h.views.View(id)
	if err != nil {
		if errors.Is(err, host.ErrUnknownInstance) {
			http.Error(w, "Widget not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// handleDelete handles DELETE /widgets/{id} - removes an instance
func (h *WidgetHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := instanceIDParam(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.updater.Delete(id)
	w.WriteHeader(http.StatusNoContent)
}

// handlePreview handles GET /widgets/{id}/preview.webp
func (h *WidgetHandler) handlePreview(w http.ResponseWriter, r *http.Request) {
	id, err := instanceIDParam(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	img, ok := h.views.Preview(id)
	if !ok {
		http.Error(w, "Preview not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "image/webp")
	w.Header().Set("Content-Length", strconv.Itoa(len(img)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(img)
}

// handleFire handles POST /triggers/{handle} - simulates a tap
func (h *WidgetHandler) handleFire(w http.ResponseWriter, r *http.Request) {
	handle := chi.URLParam(r, "handle")

	if err := h.triggers.Fire(r.Context(), handle); err != nil {
		if errors.Is(err, dispatch.ErrUnknownTrigger) {
			http.Error(w, "Trigger not found", http.StatusNotFound)
			return
		}
		h.logger.Error("Trigger failed", zap.String("handle_id", handle), zap.Error(err))
		http.Error(w, "Trigger failed", http.StatusBadGateway)
		return
	}

	w.WriteHeader(http.StatusAccepted)
}

// handleSaveSnapshot handles PUT /snapshot - saves values the way the
// foreground app does, then updates every instance
func (h *WidgetHandler) handleSaveSnapshot(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		http.Error(w, "Snapshot store is read-only", http.StatusMethodNotAllowed)
		return
	}

	values, err := decodeSnapshotValues(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := store.ValidateValues(values); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.store.Write(r.Context(), values); err != nil {
		h.logger.Error("Failed to save snapshot", zap.Error(err))
		http.Error(w, "Failed to save snapshot", http.StatusInternalServerError)
		return
	}

	if err := h.updater.UpdateAll(r.Context()); err != nil {
		h.logger.Error("Widget update after save failed", zap.Error(err))
		http.Error(w, "Widget update failed", http.StatusInternalServerError)
		return
	}

	h.logger.Info("Snapshot saved", zap.Int("keys", len(values)))
	w.WriteHeader(http.StatusNoContent)
}

// decodeSnapshotValues accepts strings and numbers and stores them as text
func decodeSnapshotValues(r *http.Request) (map[string]string, error) {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()

	var raw map[string]interface{}
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("invalid JSON body: %w", err)
	}

	values := make(map[string]string, len(raw))
	for key, v := range raw {
		switch val := v.(type) {
		case string:
			values[key] = val
		case json.Number:
			values[key] = val.String()
		default:
			return nil, fmt.Errorf("value of %s must be a string or number", key)
		}
	}
	return values, nil
}

func instanceIDParam(r *http.Request) (models.InstanceID, error) {
	n, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || models.InstanceID(n) == models.InvalidInstanceID {
		return models.InvalidInstanceID, ErrInvalidInstance
	}
	return models.InstanceID(n), nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
