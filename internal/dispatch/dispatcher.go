// Package dispatch turns action descriptors into fireable trigger handles.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/koios/api-widget/internal/metrics"
	"github.com/koios/api-widget/pkg/models"
)

var (
	ErrUnknownTrigger = errors.New("unknown trigger handle")
	ErrUnknownTag     = errors.New("unknown action tag")
)

// Receiver is the update entry point that fired triggers are delivered to.
type Receiver interface {
	HandleRefresh(ctx context.Context, event models.RefreshEvent) error
	HandleOpenApp(ctx context.Context) error
}

// Dispatcher owns every registered trigger handle. Descriptors with the
// same scope key share a handle; re-registering updates it in place.
type Dispatcher struct {
	mu       sync.RWMutex
	byKey    map[string]models.TriggerHandle
	keyByID  map[string]string
	receiver Receiver
	logger   *zap.Logger
	now      func() time.Time
}

// NewDispatcher creates a dispatcher delivering to receiver.
func NewDispatcher(receiver Receiver, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		byKey:    make(map[string]models.TriggerHandle),
		keyByID:  make(map[string]string),
		receiver: receiver,
		logger:   logger,
		now:      time.Now,
	}
}

// Register returns the handle for desc, creating it on first use.
func (d *Dispatcher) Register(desc models.ActionDescriptor) models.TriggerHandle {
	key := desc.Key()

	d.mu.Lock()
	defer d.mu.Unlock()

	if h, ok := d.byKey[key]; ok {
		h.Descriptor = desc
		d.byKey[key] = h
		return h
	}

	h := models.TriggerHandle{ID: ulid.Make().String(), Descriptor: desc}
	d.byKey[key] = h
	d.keyByID[h.ID] = key

	d.logger.Debug("Registered trigger",
		zap.String("handle_id", h.ID),
		zap.String("key", key))

	return h
}

// Lookup returns the handle registered under id.
func (d *Dispatcher) Lookup(id string) (models.TriggerHandle, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	key, ok := d.keyByID[id]
	if !ok {
		return models.TriggerHandle{}, false
	}
	return d.byKey[key], true
}

// Fire delivers the action behind handle id to the receiver.
func (d *Dispatcher) Fire(ctx context.Context, id string) error {
	h, ok := d.Lookup(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTrigger, id)
	}

	desc := h.Descriptor
	metrics.TriggerFires.WithLabelValues(string(desc.Tag)).Inc()

	d.logger.Info("Trigger fired",
		zap.String("handle_id", id),
		zap.String("tag", string(desc.Tag)),
		zap.Int("widget_id", int(desc.WidgetID)))

	switch desc.Tag {
	case models.TagRefreshWidget:
		return d.receiver.HandleRefresh(ctx, models.RefreshEvent{
			InstanceID: desc.WidgetID,
			FiredAt:    d.now(),
		})
	case models.TagOpenApp:
		return d.receiver.HandleOpenApp(ctx)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownTag, desc.Tag)
	}
}

// Forget drops the handles scoped to instanceID. Global handles stay.
func (d *Dispatcher) Forget(instanceID models.InstanceID) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for key, h := range d.byKey {
		scope := h.Descriptor.Scope
		if scope.Global || scope.InstanceID != instanceID {
			continue
		}
		delete(d.byKey, key)
		delete(d.keyByID, h.ID)
	}
}

// Len reports the number of registered handles.
func (d *Dispatcher) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.byKey)
}
