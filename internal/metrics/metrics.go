package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TasksCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "accession_downloader_tasks_created_total",
		Help: "Total number of download tasks created",
	})

	TasksCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "accession_downloader_tasks_completed_total",
		Help: "Total number of tasks completed successfully",
	})

	TasksFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "accession_downloader_tasks_failed_total",
		Help: "Total number of failed tasks by pipeline stage",
	}, []string{"stage"})

	AccessionsExtracted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "accession_downloader_accessions_extracted_total",
		Help: "Total number of accession identifiers extracted",
	})

	DownloadDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "accession_downloader_download_duration_seconds",
		Help:    "Download duration in seconds",
		Buckets: prometheus.DefBuckets,
	})

	DownloadBytes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "accession_downloader_download_bytes_total",
		Help: "Total bytes downloaded",
	})
)
