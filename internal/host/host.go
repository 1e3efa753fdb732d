// Package host applies render plans to the widget instances placed on the home screen.
package host

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/koios/api-widget/internal/metrics"
	"github.com/koios/api-widget/pkg/models"
)

var ErrUnknownInstance = errors.New("unknown widget instance")

// ViewHost binds a plan to the on-screen surface of one instance.
type ViewHost interface {
	Apply(ctx context.Context, id models.InstanceID, plan models.RenderPlan) error
}

// Registrar issues trigger handles for action descriptors.
type Registrar interface {
	Register(desc models.ActionDescriptor) models.TriggerHandle
	Forget(id models.InstanceID)
}

// Painter produces a preview image of a plan.
type Painter interface {
	Paint(plan models.RenderPlan) ([]byte, error)
}

type instance struct {
	view    *models.AppliedView
	preview []byte
}

// Host keeps the latest applied view of every placed instance.
type Host struct {
	mu        sync.RWMutex
	instances map[models.InstanceID]*instance
	registrar Registrar
	painter   Painter
	logger    *zap.Logger
	now       func() time.Time
}

// NewHost creates a host. painter may be nil to skip previews.
func NewHost(registrar Registrar, painter Painter, logger *zap.Logger) *Host {
	return &Host{
		instances: make(map[models.InstanceID]*instance),
		registrar: registrar,
		painter:   painter,
		logger:    logger,
		now:       time.Now,
	}
}

// Place records instances as present on the home screen.
func (h *Host) Place(ids ...models.InstanceID) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, id := range ids {
		if id == models.InvalidInstanceID {
			return fmt.Errorf("cannot place instance %d", id)
		}
		if _, ok := h.instances[id]; !ok {
			h.instances[id] = &instance{}
		}
	}
	return nil
}

// Apply wires the plan's actions to trigger handles and stores the view.
// Only placed instances accept a view; an instance removed while its pass
// was running stays removed.
func (h *Host) Apply(ctx context.Context, id models.InstanceID, plan models.RenderPlan) error {
	if id == models.InvalidInstanceID {
		return fmt.Errorf("%w: %d", ErrUnknownInstance, id)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var preview []byte
	if h.painter != nil {
		img, err := h.painter.Paint(plan)
		if err != nil {
			h.logger.Warn("Failed to paint preview",
				zap.Int("instance_id", int(id)),
				zap.Error(err))
		} else {
			preview = img
		}
	}

	h.mu.Lock()
	if _, ok := h.instances[id]; !ok {
		h.mu.Unlock()
		return fmt.Errorf("%w: %d", ErrUnknownInstance, id)
	}
	// Handles are registered under mu so Remove cannot interleave and
	// leave a stale refresh handle behind.
	view := &models.AppliedView{
		InstanceID:    id,
		Plan:          plan,
		RefreshHandle: h.registrar.Register(plan.RefreshAction),
		OpenAppHandle: h.registrar.Register(plan.OpenAppAction),
		AppliedAt:     h.now(),
		HasPreview:    len(preview) > 0,
	}
	h.instances[id] = &instance{view: view, preview: preview}
	applied := h.appliedLocked()
	h.mu.Unlock()

	metrics.AppliedInstances.Set(float64(applied))

	h.logger.Debug("Applied view",
		zap.Int("instance_id", int(id)),
		zap.String("refresh_handle", view.RefreshHandle.ID),
		zap.String("open_app_handle", view.OpenAppHandle.ID))

	return nil
}

// Remove drops instances and their instance-scoped handles.
func (h *Host) Remove(ids ...models.InstanceID) {
	h.mu.Lock()
	for _, id := range ids {
		delete(h.instances, id)
	}
	applied := h.appliedLocked()
	h.mu.Unlock()

	for _, id := range ids {
		h.registrar.Forget(id)
	}
	metrics.AppliedInstances.Set(float64(applied))
}

// View returns a copy of the applied view of id.
func (h *Host) View(id models.InstanceID) (models.AppliedView, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	inst, ok := h.instances[id]
	if !ok || inst.view == nil {
		return models.AppliedView{}, fmt.Errorf("%w: %d", ErrUnknownInstance, id)
	}
	return *inst.view, nil
}

// Preview returns the preview image of id, if one was painted.
func (h *Host) Preview(id models.InstanceID) ([]byte, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	inst, ok := h.instances[id]
	if !ok || len(inst.preview) == 0 {
		return nil, false
	}
	return inst.preview, true
}

// Instances lists placed instances in ascending order.
func (h *Host) Instances() []models.InstanceID {
	h.mu.RLock()
	defer h.mu.RUnlock()

	ids := make([]models.InstanceID, 0, len(h.instances))
	for id := range h.instances {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (h *Host) appliedLocked() int {
	n := 0
	for _, inst := range h.instances {
		if inst.view != nil {
			n++
		}
	}
	return n
}
