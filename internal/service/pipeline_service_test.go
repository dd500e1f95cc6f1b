package service

import (
	"bytes"
	"compress/gzip"
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veranemoloko/accession-downloader/internal/config"
	"github.com/veranemoloko/accession-downloader/internal/domain"
	errpkg "github.com/veranemoloko/accession-downloader/internal/errors"
	"github.com/veranemoloko/accession-downloader/internal/fetch"
	"github.com/veranemoloko/accession-downloader/internal/repository"
)

func testConfig() *config.Config {
	return &config.Config{
		WorkerPoolSize:  2,
		QueueCapacity:   10,
		DownloadTimeout: 5 * time.Second,
		ProbeTimeout:    time.Second,
		MaxFileSize:     1024 * 1024,
	}
}

func newPipeline(t *testing.T) (*PipelineService, *repository.TaskStorage) {
	t.Helper()

	storage, err := repository.NewTaskStorage(filepath.Join(t.TempDir(), "tasks.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = storage.Close() })

	cfg := testConfig()
	fetcher := fetch.NewFetcher(cfg.DownloadTimeout, cfg.ProbeTimeout, cfg.MaxFileSize)
	pipeline := NewPipelineService(storage, fetcher, cfg)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = pipeline.Shutdown(ctx)
	})

	return pipeline, storage
}

func gzipBody(t *testing.T, text string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte(text))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	return buf.Bytes()
}

func waitTerminal(t *testing.T, storage *repository.TaskStorage, task *domain.Task) *domain.Task {
	t.Helper()

	var got *domain.Task
	require.Eventually(t, func() bool {
		current, err := storage.GetTask(context.Background(), task.ID)
		if err != nil {
			return false
		}
		got = current
		return current.Status.IsTerminal()
	}, 5*time.Second, 10*time.Millisecond)

	return got
}

func TestPipeline_ValidGzipCompletes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(gzipBody(t, "ACCESSION A1\nIGNORE\nACCESSION A2\n"))
	}))
	defer srv.Close()

	pipeline, storage := newPipeline(t)

	task := domain.NewTask(srv.URL)
	require.NoError(t, storage.CreateTask(context.Background(), task))
	require.NoError(t, pipeline.Enqueue(task.ID, task.URL))

	got := waitTerminal(t, storage, task)
	assert.Equal(t, domain.StatusCompleted, got.Status)
	assert.Equal(t, 2, got.ResultCount)
	assert.Equal(t, []string{"A1", "A2"}, got.Accessions)
}

func TestPipeline_NotFoundFailsDownload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	pipeline, storage := newPipeline(t)

	task := domain.NewTask(srv.URL)
	require.NoError(t, storage.CreateTask(context.Background(), task))
	require.NoError(t, pipeline.Enqueue(task.ID, task.URL))

	got := waitTerminal(t, storage, task)
	assert.Equal(t, domain.StatusFailedDownload, got.Status)
	assert.Zero(t, got.ResultCount)
	assert.Empty(t, got.Accessions)
}

func TestPipeline_UnreachableHostFailsDownload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	pipeline, storage := newPipeline(t)

	task := domain.NewTask(srv.URL)
	require.NoError(t, storage.CreateTask(context.Background(), task))
	require.NoError(t, pipeline.Enqueue(task.ID, task.URL))

	got := waitTerminal(t, storage, task)
	assert.Equal(t, domain.StatusFailedDownload, got.Status)
}

func TestPipeline_NotGzipFailsDecompress(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("this is not a gzip stream"))
	}))
	defer srv.Close()

	pipeline, storage := newPipeline(t)

	task := domain.NewTask(srv.URL)
	require.NoError(t, storage.CreateTask(context.Background(), task))
	require.NoError(t, pipeline.Enqueue(task.ID, task.URL))

	got := waitTerminal(t, storage, task)
	assert.Equal(t, domain.StatusFailedDecompress, got.Status)
	assert.Empty(t, got.Accessions)
}

func TestPipeline_EmptyFileCompletesWithNoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(gzipBody(t, ""))
	}))
	defer srv.Close()

	pipeline, storage := newPipeline(t)

	task := domain.NewTask(srv.URL)
	require.NoError(t, storage.CreateTask(context.Background(), task))
	require.NoError(t, pipeline.Enqueue(task.ID, task.URL))

	got := waitTerminal(t, storage, task)
	assert.Equal(t, domain.StatusCompleted, got.Status)
	assert.Zero(t, got.ResultCount)
}

func TestPipeline_EnqueueAfterShutdown(t *testing.T) {
	pipeline, _ := newPipeline(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, pipeline.Shutdown(ctx))

	err := pipeline.Enqueue(domain.NewTask("http://example.com/a.gz").ID, "http://example.com/a.gz")
	assert.ErrorIs(t, err, errpkg.ErrShuttingDown)
}

func TestPipeline_ShutdownDrainsInFlightJobs(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		_, _ = w.Write(gzipBody(t, "ACCESSION A1\n"))
	}))
	defer srv.Close()

	pipeline, storage := newPipeline(t)

	task := domain.NewTask(srv.URL)
	require.NoError(t, storage.CreateTask(context.Background(), task))
	require.NoError(t, pipeline.Enqueue(task.ID, task.URL))

	go func() {
		time.Sleep(100 * time.Millisecond)
		close(release)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, pipeline.Shutdown(ctx))

	got, err := storage.GetTask(context.Background(), task.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, got.Status)
}

func TestPipeline_ReconcileInterrupted(t *testing.T) {
	pipeline, storage := newPipeline(t)
	ctx := context.Background()

	stale := domain.NewTask("http://example.com/stale.gz")
	finished := domain.NewTask("http://example.com/done.gz")
	require.NoError(t, storage.CreateTask(ctx, stale))
	require.NoError(t, storage.CreateTask(ctx, finished))
	require.NoError(t, storage.SetStatus(ctx, finished.ID, domain.StatusCompleted, []string{"A1"}))

	require.NoError(t, pipeline.ReconcileInterrupted(ctx))

	got, err := storage.GetTask(ctx, stale.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailedUnexpected, got.Status)

	untouched, err := storage.GetTask(ctx, finished.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, untouched.Status)
}
