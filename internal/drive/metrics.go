package drive

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	operationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recdocs_drive_operations_total",
			Help: "Total number of drive operations by outcome",
		},
		[]string{"operation", "outcome"},
	)

	uploadedBytesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recdocs_drive_uploaded_bytes_total",
			Help: "Bytes written to the vault by successful uploads",
		},
	)

	uploadedFilesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recdocs_drive_uploaded_files_total",
			Help: "Files recorded by successful uploads",
		},
	)
)

func recordOperation(operation string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	operationsTotal.WithLabelValues(operation, outcome).Inc()
}
