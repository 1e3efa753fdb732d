// Package updater is the update entry point: it runs render passes for
// widget instances whenever the host or the foreground app asks for one.
package updater

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/koios/api-widget/internal/config"
	"github.com/koios/api-widget/internal/metrics"
	"github.com/koios/api-widget/internal/store"
	"github.com/koios/api-widget/internal/widget"
	"github.com/koios/api-widget/pkg/models"
)

// InstanceHost is the view host plus its instance bookkeeping.
type InstanceHost interface {
	Apply(ctx context.Context, id models.InstanceID, plan models.RenderPlan) error
	Place(ids ...models.InstanceID) error
	Remove(ids ...models.InstanceID)
	Instances() []models.InstanceID
}

// Updater reads the snapshot, renders and applies, once per instance.
type Updater struct {
	store  store.SnapshotStore
	host   InstanceHost
	pool   *WorkerPool
	logger *zap.Logger
	now    func() time.Time
}

// NewUpdater creates an updater and starts its worker pool.
func NewUpdater(s store.SnapshotStore, h InstanceHost, cfg config.RenderConfig, logger *zap.Logger) *Updater {
	u := &Updater{
		store:  s,
		host:   h,
		logger: logger,
		now:    time.Now,
	}
	u.pool = NewWorkerPool(cfg.Workers, logger, u.renderPass, time.Duration(cfg.Timeout)*time.Second)
	u.pool.Start()
	return u
}

// Stop shuts the worker pool down.
func (u *Updater) Stop() {
	u.pool.Stop()
}

// Update runs a render pass for each id. Instances are placed on the host
// first so later UpdateAll calls include them. Failures of individual
// instances are joined; the others still update.
func (u *Updater) Update(ctx context.Context, ids ...models.InstanceID) error {
	if len(ids) == 0 {
		return nil
	}
	if err := u.host.Place(ids...); err != nil {
		return err
	}

	var (
		mu   sync.Mutex
		errs []error
		wg   sync.WaitGroup
	)
	for _, id := range ids {
		wg.Add(1)
		go func(id models.InstanceID) {
			defer wg.Done()
			if err := u.pool.Submit(ctx, id); err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("instance %d: %w", id, err))
				mu.Unlock()
			}
		}(id)
	}
	wg.Wait()

	return errors.Join(errs...)
}

// UpdateAll updates every placed instance.
func (u *Updater) UpdateAll(ctx context.Context) error {
	return u.Update(ctx, u.host.Instances()...)
}

// Delete removes instances from the host.
func (u *Updater) Delete(ids ...models.InstanceID) {
	u.host.Remove(ids...)
	u.logger.Info("Widget instances deleted", zap.Int("count", len(ids)))
}

// renderPass is one full pass for id. A store failure leaves the previous
// view in place.
func (u *Updater) renderPass(ctx context.Context, id models.InstanceID) error {
	start := time.Now()

	snapshot, err := u.store.Read(ctx)
	if err != nil {
		metrics.RenderPasses.WithLabelValues("store_error").Inc()
		u.logger.Warn("Failed to read snapshot, keeping previous view",
			zap.Int("instance_id", int(id)),
			zap.Error(err))
		return fmt.Errorf("failed to read snapshot: %w", err)
	}

	plan := widget.Render(snapshot, id, u.now())

	if err := u.host.Apply(ctx, id, plan); err != nil {
		metrics.RenderPasses.WithLabelValues("apply_error").Inc()
		u.logger.Error("Failed to apply view",
			zap.Int("instance_id", int(id)),
			zap.Error(err))
		return fmt.Errorf("failed to apply view: %w", err)
	}

	metrics.RenderPasses.WithLabelValues("applied").Inc()
	metrics.RenderDuration.Observe(time.Since(start).Seconds())

	u.logger.Debug("Render pass completed",
		zap.Int("instance_id", int(id)),
		zap.String("title", plan.TitleText),
		zap.String("timestamp", plan.TimestampText))

	return nil
}
