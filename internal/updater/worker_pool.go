package updater

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/koios/api-widget/pkg/models"
)

// ErrPoolStopped is returned by Submit once Stop has been called.
var ErrPoolStopped = errors.New("worker pool is shutting down")

// PassFunc runs one render pass for an instance.
type PassFunc func(ctx context.Context, id models.InstanceID) error

// UpdateJob represents a render pass to be processed by a worker
type UpdateJob struct {
	ctx        context.Context
	InstanceID models.InstanceID
	Result     chan error
}

// WorkerPool runs render passes on a fixed number of goroutines
type WorkerPool struct {
	workers  int
	jobQueue chan *UpdateJob
	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
	logger   *zap.Logger
	pass     PassFunc
	timeout  time.Duration
}

// NewWorkerPool creates a new worker pool with the specified number of workers
func NewWorkerPool(workers int, logger *zap.Logger, pass PassFunc, timeout time.Duration) *WorkerPool {
	if workers <= 0 {
		workers = 4 // default to 4 workers
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &WorkerPool{
		workers:  workers,
		jobQueue: make(chan *UpdateJob, workers*2), // buffer for 2x workers
		ctx:      ctx,
		cancel:   cancel,
		logger:   logger,
		pass:     pass,
		timeout:  timeout,
	}
}

// Start launches all worker goroutines
func (wp *WorkerPool) Start() {
	wp.logger.Info("Starting update worker pool",
		zap.Int("workers", wp.workers),
		zap.Int("queue_size", cap(wp.jobQueue)))

	for i := 0; i < wp.workers; i++ {
		wp.wg.Add(1)
		go wp.worker(i)
	}
}

// Stop cancels in-flight passes and waits for the workers to exit
func (wp *WorkerPool) Stop() {
	wp.logger.Info("Stopping update worker pool")
	wp.cancel()
	wp.wg.Wait()
	wp.logger.Info("Update worker pool stopped")
}

// Submit queues a render pass for id and waits for its result
func (wp *WorkerPool) Submit(ctx context.Context, id models.InstanceID) error {
	job := &UpdateJob{
		ctx:        ctx,
		InstanceID: id,
		Result:     make(chan error, 1),
	}

	select {
	case wp.jobQueue <- job:
	case <-ctx.Done():
		return ctx.Err()
	case <-wp.ctx.Done():
		return ErrPoolStopped
	}

	select {
	case err := <-job.Result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-wp.ctx.Done():
		return ErrPoolStopped
	}
}

func (wp *WorkerPool) worker(id int) {
	defer wp.wg.Done()

	wp.logger.Debug("Update worker started", zap.Int("worker_id", id))

	for {
		select {
		case job := <-wp.jobQueue:
			wp.processJob(id, job)
		case <-wp.ctx.Done():
			wp.logger.Debug("Update worker stopping", zap.Int("worker_id", id))
			return
		}
	}
}

func (wp *WorkerPool) processJob(workerID int, job *UpdateJob) {
	ctx, cancel := context.WithTimeout(job.ctx, wp.timeout)
	defer cancel()

	// Stop() must abort passes still running
	stop := context.AfterFunc(wp.ctx, cancel)
	defer stop()

	err := wp.pass(ctx, job.InstanceID)
	job.Result <- err

	if err != nil {
		wp.logger.Debug("Worker completed pass with error",
			zap.Int("worker_id", workerID),
			zap.Int("instance_id", int(job.InstanceID)),
			zap.Error(err))
	}
}
