package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/veranemoloko/accession-downloader/internal/domain"
)

// TaskRepo defines the interface for task storage operations.
type TaskRepo interface {
	CreateTask(ctx context.Context, task *domain.Task) error
	GetTask(ctx context.Context, id uuid.UUID) (*domain.Task, error)
	SetStatus(ctx context.Context, id uuid.UUID, status domain.TaskStatus, accessions []string) error
	TasksByStatus(ctx context.Context, status domain.TaskStatus) ([]*domain.Task, error)
}
