package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/veranemoloko/accession-downloader/internal/config"
	"github.com/veranemoloko/accession-downloader/internal/domain"
	errpkg "github.com/veranemoloko/accession-downloader/internal/errors"
	"github.com/veranemoloko/accession-downloader/internal/fetch"
	"github.com/veranemoloko/accession-downloader/internal/metrics"
	"github.com/veranemoloko/accession-downloader/internal/processing"
	repo "github.com/veranemoloko/accession-downloader/internal/repository"
)

type downloadJob struct {
	taskID uuid.UUID
	url    string
}

// PipelineService runs the download-decompress-extract pipeline for
// accepted tasks on a bounded worker pool. Each job ends in exactly one
// terminal status write; a store failure on that write is logged and the
// task is left in its last persisted state.
type PipelineService struct {
	taskRepo repo.TaskRepo
	fetcher  *fetch.Fetcher
	cfg      *config.Config

	queue        chan downloadJob
	workers      *errgroup.Group
	shutdownChan chan struct{}
	closeOnce    sync.Once
}

// NewPipelineService creates the service and starts its worker pool.
func NewPipelineService(taskRepo repo.TaskRepo, fetcher *fetch.Fetcher, cfg *config.Config) *PipelineService {
	s := &PipelineService{
		taskRepo:     taskRepo,
		fetcher:      fetcher,
		cfg:          cfg,
		queue:        make(chan downloadJob, cfg.QueueCapacity),
		workers:      new(errgroup.Group),
		shutdownChan: make(chan struct{}),
	}

	for i := 0; i < cfg.WorkerPoolSize; i++ {
		workerID := i + 1
		s.workers.Go(func() error {
			for job := range s.queue {
				s.runJob(workerID, job)
			}
			return nil
		})
	}

	slog.Info("pipeline service started", "workers", cfg.WorkerPoolSize)
	return s
}

// Enqueue dispatches a task's pipeline execution off the request path.
// Returns ErrShuttingDown once Shutdown has begun.
func (s *PipelineService) Enqueue(taskID uuid.UUID, url string) error {
	select {
	case <-s.shutdownChan:
		return errpkg.ErrShuttingDown
	default:
	}

	select {
	case s.queue <- downloadJob{taskID: taskID, url: url}:
		return nil
	case <-s.shutdownChan:
		return errpkg.ErrShuttingDown
	}
}

func (s *PipelineService) runJob(workerID int, job downloadJob) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("panic in pipeline worker",
				"worker_id", workerID,
				"task_id", job.taskID,
				"panic", r,
			)
			s.finalize(job.taskID, domain.StatusFailedUnexpected, nil)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.DownloadTimeout)
	defer cancel()

	startTime := time.Now()
	body, err := s.fetcher.Fetch(ctx, job.url)
	metrics.DownloadDuration.Observe(time.Since(startTime).Seconds())

	if err != nil {
		var transportErr *fetch.TransportError
		if errors.As(err, &transportErr) {
			slog.Error("download failed",
				"task_id", job.taskID,
				"url", job.url,
				"kind", transportErr.Kind,
				"error", err,
			)
			s.finalize(job.taskID, domain.StatusFailedDownload, nil)
		} else {
			slog.Error("unexpected fetch error", "task_id", job.taskID, "error", err)
			s.finalize(job.taskID, domain.StatusFailedUnexpected, nil)
		}
		return
	}

	metrics.DownloadBytes.Add(float64(len(body)))

	text, err := processing.Decompress(body)
	if err != nil {
		var formatErr *processing.FormatError
		if errors.As(err, &formatErr) {
			slog.Error("decompression failed", "task_id", job.taskID, "error", err)
			s.finalize(job.taskID, domain.StatusFailedDecompress, nil)
		} else {
			slog.Error("unexpected decompress error", "task_id", job.taskID, "error", err)
			s.finalize(job.taskID, domain.StatusFailedUnexpected, nil)
		}
		return
	}

	accessions := processing.ExtractAccessions(text)

	slog.Info("task processed",
		"task_id", job.taskID,
		"url", job.url,
		"accessions", len(accessions),
		"duration", time.Since(startTime),
	)

	s.finalize(job.taskID, domain.StatusCompleted, accessions)
}

// finalize persists the terminal status. A store failure here is logged
// and swallowed; no retry is attempted.
func (s *PipelineService) finalize(taskID uuid.UUID, status domain.TaskStatus, accessions []string) {
	if err := s.taskRepo.SetStatus(context.Background(), taskID, status, accessions); err != nil {
		slog.Error("failed to persist terminal status",
			"task_id", taskID,
			"status", status,
			"error", err,
		)
		return
	}

	switch status {
	case domain.StatusCompleted:
		metrics.TasksCompleted.Inc()
		metrics.AccessionsExtracted.Add(float64(len(accessions)))
	case domain.StatusFailedDownload:
		metrics.TasksFailed.WithLabelValues("download").Inc()
	case domain.StatusFailedDecompress:
		metrics.TasksFailed.WithLabelValues("decompress").Inc()
	case domain.StatusFailedUnexpected:
		metrics.TasksFailed.WithLabelValues("unexpected").Inc()
	}
}

// ReconcileInterrupted finalizes tasks left in the downloading state by a
// previous run. Their in-flight work did not survive the restart, so they
// are marked failed_unexpected instead of dangling forever.
func (s *PipelineService) ReconcileInterrupted(ctx context.Context) error {
	stale, err := s.taskRepo.TasksByStatus(ctx, domain.StatusDownloading)
	if err != nil {
		return fmt.Errorf("failed to list downloading tasks: %w", err)
	}

	for _, task := range stale {
		if err := s.taskRepo.SetStatus(ctx, task.ID, domain.StatusFailedUnexpected, nil); err != nil {
			slog.Error("failed to reconcile interrupted task", "task_id", task.ID, "error", err)
			continue
		}
		slog.Warn("interrupted task finalized", "task_id", task.ID, "url", task.URL)
	}

	return nil
}

// Shutdown stops intake, drains the queue and waits for in-flight jobs
// until ctx expires.
func (s *PipelineService) Shutdown(ctx context.Context) error {
	slog.Info("shutting down pipeline service")

	s.closeOnce.Do(func() {
		close(s.shutdownChan)
		close(s.queue)
	})

	done := make(chan struct{})
	go func() {
		_ = s.workers.Wait()
		close(done)
	}()

	select {
	case <-done:
		slog.Info("pipeline service shutdown completed")
		return nil
	case <-ctx.Done():
		slog.Warn("pipeline service shutdown timed out")
		return ctx.Err()
	}
}
