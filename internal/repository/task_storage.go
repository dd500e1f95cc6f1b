package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"

	"github.com/veranemoloko/accession-downloader/internal/domain"
	errpkg "github.com/veranemoloko/accession-downloader/internal/errors"
)

const tasksBucket = "tasks"

// TaskStorage persists tasks in a bbolt database. Every mutation runs
// inside a single bbolt update transaction; bbolt admits one writer at a
// time, which serializes all writes to any given task identifier.
type TaskStorage struct {
	db *bbolt.DB
}

// NewTaskStorage opens (or creates) the bbolt database at dbPath and
// ensures the tasks bucket exists.
func NewTaskStorage(dbPath string) (*TaskStorage, error) {
	db, err := bbolt.Open(filepath.Clean(dbPath), 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(tasksBucket))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tasks bucket: %w", err)
	}

	slog.Info("task storage initialized", "db_path", dbPath)
	return &TaskStorage{db: db}, nil
}

// Close closes the underlying database.
func (s *TaskStorage) Close() error {
	return s.db.Close()
}

// CreateTask inserts a new task record. Returns ErrTaskExists if a record
// with the same identifier is already present.
func (s *TaskStorage) CreateTask(ctx context.Context, task *domain.Task) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(tasksBucket))
		key := []byte(task.ID.String())

		if bucket.Get(key) != nil {
			return errpkg.ErrTaskExists
		}

		data, err := json.Marshal(task)
		if err != nil {
			return fmt.Errorf("failed to marshal task: %w", err)
		}
		return bucket.Put(key, data)
	})
	if err != nil {
		return err
	}

	slog.Debug("task created", "task_id", task.ID, "url", task.URL)
	return nil
}

// GetTask retrieves a task by ID. Returns ErrTaskNotFound if absent.
func (s *TaskStorage) GetTask(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var task domain.Task
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket([]byte(tasksBucket)).Get([]byte(id.String()))
		if data == nil {
			return errpkg.ErrTaskNotFound
		}
		return json.Unmarshal(data, &task)
	})
	if err != nil {
		return nil, err
	}

	return &task, nil
}

// SetStatus atomically transitions a task to the given status and, when
// accessions is non-nil, records the extracted identifiers and their
// count in the same transaction. Returns ErrTaskNotFound if the task is
// absent and ErrTaskFinalized if its current status is already terminal;
// in both cases the record is left unchanged.
func (s *TaskStorage) SetStatus(ctx context.Context, id uuid.UUID, status domain.TaskStatus, accessions []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(tasksBucket))
		key := []byte(id.String())

		data := bucket.Get(key)
		if data == nil {
			return errpkg.ErrTaskNotFound
		}

		var task domain.Task
		if err := json.Unmarshal(data, &task); err != nil {
			return fmt.Errorf("failed to unmarshal task: %w", err)
		}

		if task.Status.IsTerminal() {
			return errpkg.ErrTaskFinalized
		}

		task.Status = status
		if accessions != nil {
			task.Accessions = accessions
			task.ResultCount = len(accessions)
		}
		task.UpdatedAt = time.Now().UTC()

		updated, err := json.Marshal(&task)
		if err != nil {
			return fmt.Errorf("failed to marshal task: %w", err)
		}
		return bucket.Put(key, updated)
	})
	if err != nil {
		return err
	}

	slog.Debug("task status updated", "task_id", id, "status", status)
	return nil
}

// TasksByStatus returns all tasks currently in the given status.
func (s *TaskStorage) TasksByStatus(ctx context.Context, status domain.TaskStatus) ([]*domain.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var tasks []*domain.Task
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(tasksBucket)).ForEach(func(_, data []byte) error {
			var task domain.Task
			if err := json.Unmarshal(data, &task); err != nil {
				return fmt.Errorf("failed to unmarshal task: %w", err)
			}
			if task.Status == status {
				tasks = append(tasks, &task)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return tasks, nil
}
