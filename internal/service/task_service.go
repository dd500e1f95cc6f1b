package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/veranemoloko/accession-downloader/internal/domain"
	"github.com/veranemoloko/accession-downloader/internal/metrics"
	repo "github.com/veranemoloko/accession-downloader/internal/repository"
)

// URL probe failures wrap ErrURLUnreachable so the HTTP boundary can map
// them to a 400 instead of a 500.
var ErrURLUnreachable = errors.New("url is not reachable")

// Prober checks that a URL answers with a success status.
type Prober interface {
	Probe(ctx context.Context, url string) error
}

// Dispatcher accepts a task for asynchronous pipeline execution.
type Dispatcher interface {
	Enqueue(taskID uuid.UUID, url string) error
}

// TaskService owns the request-side task lifecycle: accepting downloads
// and answering status queries.
type TaskService struct {
	taskRepo   repo.TaskRepo
	prober     Prober
	dispatcher Dispatcher
}

// NewTaskService creates a TaskService.
func NewTaskService(taskRepo repo.TaskRepo, prober Prober, dispatcher Dispatcher) *TaskService {
	return &TaskService{
		taskRepo:   taskRepo,
		prober:     prober,
		dispatcher: dispatcher,
	}
}

// StartDownload probes the URL, creates a task in the downloading state
// and dispatches its pipeline execution. The returned task is already
// persisted when this method returns; every later outcome is observable
// only through Status.
func (s *TaskService) StartDownload(ctx context.Context, url string) (*domain.Task, error) {
	if err := s.prober.Probe(ctx, url); err != nil {
		slog.Warn("url validation failed", "url", url, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrURLUnreachable, err)
	}

	task := domain.NewTask(url)
	if err := s.taskRepo.CreateTask(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	metrics.TasksCreated.Inc()

	if err := s.dispatcher.Enqueue(task.ID, url); err != nil {
		return nil, fmt.Errorf("failed to dispatch task: %w", err)
	}

	slog.Info("download started", "task_id", task.ID, "url", url)
	return task, nil
}

// maxDisplayedAccessions bounds the accession list in status responses.
const maxDisplayedAccessions = 20

// truncationMarker terminates a truncated accession list.
const truncationMarker = "..."

// Status returns the task's current status and its results. The accession
// list is cut to the first 20 entries with a trailing "..." marker when
// longer; untruncated lists are returned as-is.
func (s *TaskService) Status(ctx context.Context, id uuid.UUID) (*domain.StatusResponse, error) {
	task, err := s.taskRepo.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}

	displayed := task.Accessions
	if len(displayed) > maxDisplayedAccessions {
		displayed = append(displayed[:maxDisplayedAccessions:maxDisplayedAccessions], truncationMarker)
	}

	return &domain.StatusResponse{
		Status:        task.Status,
		ResultCount:   task.ResultCount,
		AccessionList: displayed,
	}, nil
}
