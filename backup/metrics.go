package backup

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	opCreate  = "create"
	opRestore = "restore"
	opDelete  = "delete"
	opVerify  = "verify"
)

var (
	// operationsTotal counts backup lifecycle operations by result
	operationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inventory_backup_operations_total",
		Help: "Backup lifecycle operations by operation and result",
	}, []string{"operation", "result"})

	// operationDuration tracks how long each operation took
	operationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "inventory_backup_operation_duration_seconds",
		Help:    "Backup lifecycle operation duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~8s
	}, []string{"operation"})

	// backupSizeBytes tracks the size of written backup files
	backupSizeBytes = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "inventory_backup_size_bytes",
		Help:    "Size of encrypted backup files in bytes",
		Buckets: prometheus.ExponentialBuckets(4096, 4, 10), // 4KB to ~1GB
	})
)

func observe(operation string, start time.Time, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	operationsTotal.WithLabelValues(operation, result).Inc()
	operationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
