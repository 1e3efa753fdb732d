package updater

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/koios/api-widget/internal/config"
	"github.com/koios/api-widget/internal/dispatch"
	"github.com/koios/api-widget/internal/host"
	"github.com/koios/api-widget/internal/store"
	"github.com/koios/api-widget/pkg/models"
)

type nopReceiver struct{}

func (nopReceiver) HandleRefresh(ctx context.Context, event models.RefreshEvent) error { return nil }
func (nopReceiver) HandleOpenApp(ctx context.Context) error                              { return nil }

type failingStore struct {
	fail atomic.Bool
	next store.SnapshotStore
}

func (s *failingStore) Read(ctx context.Context) (models.Snapshot, error) {
	if s.fail.Load() {
		return models.Snapshot{}, errors.New("store unavailable")
	}
	return s.next.Read(ctx)
}

// blockingStore holds every Read until release is closed.
type blockingStore struct {
	reading chan struct{}
	release chan struct{}
}

func (s *blockingStore) Read(ctx context.Context) (models.Snapshot, error) {
	s.reading <- struct{}{}
	select {
	case <-s.release:
		return models.Snapshot{}, nil
	case <-ctx.Done():
		return models.Snapshot{}, ctx.Err()
	}
}

func newTestUpdater(t *testing.T, s store.SnapshotStore) (*Updater, *host.Host) {
	t.Helper()
	d := dispatch.NewDispatcher(nopReceiver{}, zap.NewNop())
	h := host.NewHost(d, nil, zap.NewNop())
	u := NewUpdater(s, h, config.RenderConfig{Workers: 2, Timeout: 1}, zap.NewNop())
	u.now = func() time.Time { return time.Date(2024, 3, 9, 8, 41, 0, 0, time.UTC) }
	t.Cleanup(u.Stop)
	return u, h
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore(map[string]string{
		models.KeyTitle:       "Stocks",
		models.KeyBody:        "AAPL $190",
		models.KeyAccentColor: "#00FF00",
	})
	u, h := newTestUpdater(t, mem)

	if err := u.Update(ctx, 7, 8); err != nil {
		t.Fatalf("Update: %v", err)
	}

	for _, id := range []models.InstanceID{7, 8} {
		view, err := h.View(id)
		if err != nil {
			t.Fatalf("View(%d): %v", id, err)
		}
		if view.Plan.TitleText != "Stocks" || view.Plan.BodyText != "AAPL $190" {
			t.Errorf("instance %d shows %+v", id, view.Plan)
		}
		if view.Plan.TimestampText != "Updated: 08:41" {
			t.Errorf("instance %d timestamp %q", id, view.Plan.TimestampText)
		}
		if view.Plan.RefreshAction.WidgetID != id {
			t.Errorf("instance %d refresh payload %d", id, view.Plan.RefreshAction.WidgetID)
		}
	}
}

func TestUpdateAll_PicksUpNewData(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore(nil)
	u, h := newTestUpdater(t, mem)

	if err := u.Update(ctx, 1, 2, 3); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if v, _ := h.View(2); v.Plan.BodyText != "No data available" {
		t.Fatalf("body before save = %q", v.Plan.BodyText)
	}

	if err := mem.Write(ctx, map[string]string{models.KeyBody: "fresh"}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := u.UpdateAll(ctx); err != nil {
		t.Fatalf("UpdateAll: %v", err)
	}

	for _, id := range []models.InstanceID{1, 2, 3} {
		if v, _ := h.View(id); v.Plan.BodyText != "fresh" {
			t.Errorf("instance %d body = %q, want fresh", id, v.Plan.BodyText)
		}
	}
}

func TestUpdate_StoreErrorKeepsPreviousView(t *testing.T) {
	ctx := context.Background()
	fs := &failingStore{next: store.NewMemoryStore(map[string]string{models.KeyTitle: "Old"})}
	u, h := newTestUpdater(t, fs)

	if err := u.Update(ctx, 4); err != nil {
		t.Fatalf("Update: %v", err)
	}

	fs.fail.Store(true)
	if err := u.Update(ctx, 4); err == nil {
		t.Fatal("expected store error")
	}

	view, err := h.View(4)
	if err != nil {
		t.Fatalf("View: %v", err)
	}
	if view.Plan.TitleText != "Old" {
		t.Errorf("title = %q, want previous view", view.Plan.TitleText)
	}
}

func TestUpdate_InvalidInstance(t *testing.T) {
	u, _ := newTestUpdater(t, store.NewMemoryStore(nil))
	if err := u.Update(context.Background(), models.InvalidInstanceID); err == nil {
		t.Error("expected error for the invalid instance id")
	}
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	u, h := newTestUpdater(t, store.NewMemoryStore(nil))

	if err := u.Update(ctx, 1, 2); err != nil {
		t.Fatalf("Update: %v", err)
	}
	u.Delete(1)

	ids := h.Instances()
	if len(ids) != 1 || ids[0] != 2 {
		t.Errorf("Instances() = %v, want [2]", ids)
	}
}

func TestDelete_DuringRenderPass(t *testing.T) {
	bs := &blockingStore{reading: make(chan struct{}, 1), release: make(chan struct{})}
	u, h := newTestUpdater(t, bs)

	done := make(chan error, 1)
	go func() {
		done <- u.Update(context.Background(), 9)
	}()

	<-bs.reading
	u.Delete(9)
	close(bs.release)

	err := <-done
	if !errors.Is(err, host.ErrUnknownInstance) {
		t.Errorf("Update err = %v, want ErrUnknownInstance", err)
	}
	if ids := h.Instances(); len(ids) != 0 {
		t.Errorf("deleted instance came back: Instances() = %v", ids)
	}
	if _, err := h.View(9); !errors.Is(err, host.ErrUnknownInstance) {
		t.Errorf("View(9) err = %v, want ErrUnknownInstance", err)
	}
}

func TestWorkerPool(t *testing.T) {
	t.Run("runs passes", func(t *testing.T) {
		var calls atomic.Int32
		wp := NewWorkerPool(2, zap.NewNop(), func(ctx context.Context, id models.InstanceID) error {
			calls.Add(1)
			if id == 13 {
				return errors.New("unlucky")
			}
			return nil
		}, time.Second)
		wp.Start()
		defer wp.Stop()

		if err := wp.Submit(context.Background(), 1); err != nil {
			t.Errorf("Submit(1): %v", err)
		}
		if err := wp.Submit(context.Background(), 13); err == nil {
			t.Error("Submit(13): expected error")
		}
		if calls.Load() != 2 {
			t.Errorf("calls = %d, want 2", calls.Load())
		}
	})

	t.Run("pass timeout", func(t *testing.T) {
		wp := NewWorkerPool(1, zap.NewNop(), func(ctx context.Context, id models.InstanceID) error {
			<-ctx.Done()
			return ctx.Err()
		}, 20*time.Millisecond)
		wp.Start()
		defer wp.Stop()

		if err := wp.Submit(context.Background(), 1); !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("err = %v, want DeadlineExceeded", err)
		}
	})

	t.Run("submit after stop", func(t *testing.T) {
		wp := NewWorkerPool(1, zap.NewNop(), func(ctx context.Context, id models.InstanceID) error {
			return nil
		}, time.Second)
		wp.Start()
		wp.Stop()

		if err := wp.Submit(context.Background(), 1); !errors.Is(err, ErrPoolStopped) {
			t.Errorf("err = %v, want ErrPoolStopped", err)
		}
	})
}
