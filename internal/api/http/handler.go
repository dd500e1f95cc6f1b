package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/veranemoloko/accession-downloader/internal/domain"
	errpkg "github.com/veranemoloko/accession-downloader/internal/errors"
	"github.com/veranemoloko/accession-downloader/internal/service"
	"github.com/veranemoloko/accession-downloader/internal/validation"
)

// TaskServiceI defines the interface for task-related business logic.
type TaskServiceI interface {
	StartDownload(ctx context.Context, url string) (*domain.Task, error)
	Status(ctx context.Context, id uuid.UUID) (*domain.StatusResponse, error)
}

// FileHandler handles HTTP requests for file download tasks.
type FileHandler struct {
	taskService TaskServiceI
	validator   *validator.Validate
	logger      *slog.Logger
}

// NewFileHandler creates a new FileHandler with the provided service and logger.
func NewFileHandler(taskService TaskServiceI, logger *slog.Logger) *FileHandler {
	v := validator.New()
	if err := validation.RegisterSafeURL(v); err != nil {
		logger.Error("failed to register safe_url validation", "error", err)
	}

	return &FileHandler{
		taskService: taskService,
		validator:   v,
		logger:      logger,
	}
}

// StartDownload handles POST /file/start-download.
func (h *FileHandler) StartDownload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req domain.StartDownloadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode request", "error", err)
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		h.logger.Warn("validation failed", "url", req.URL, "error", err)
		writeError(w, http.StatusBadRequest, "invalid URL")
		return
	}

	task, err := h.taskService.StartDownload(ctx, req.URL)
	if err != nil {
		if errors.Is(err, service.ErrURLUnreachable) {
			writeError(w, http.StatusBadRequest, "invalid URL")
			return
		}
		h.logger.Error("failed to start download", "url", req.URL, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to start download")
		return
	}

	writeJSON(w, http.StatusCreated, domain.StartDownloadResponse{
		ID:     task.ID,
		Status: task.Status,
	})
}

// Status handles GET /file/status/{taskID}.
func (h *FileHandler) Status(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	taskIDStr := chi.URLParam(r, "taskID")
	taskID, err := uuid.Parse(taskIDStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid task ID")
		return
	}

	status, err := h.taskService.Status(ctx, taskID)
	if err != nil {
		if errors.Is(err, errpkg.ErrTaskNotFound) {
			writeError(w, http.StatusNotFound, "task not found")
			return
		}
		h.logger.Error("failed to get task status", "task_id", taskID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, status)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{
		"error": message,
	})
}
