package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RecordsGenerated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "student_success_records_generated_total",
		Help: "Total number of synthetic student records generated.",
	})
	GenerationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "student_success_generation_duration_seconds",
		Help:    "Duration of a full dataset generation run.",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1.0, 5.0},
	})
	RecordsLoaded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "student_success_records_loaded_total",
		Help: "Total number of synthetic records bulk loaded into Postgres.",
	})
	StudentsStored = promauto.NewCounter(prometheus.CounterOpts{
		Name: "student_success_students_stored_total",
		Help: "Total number of submitted students stored with a prediction.",
	})
	StudentsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "student_success_students_failed_total",
		Help: "Total number of submitted students rejected or failed to store.",
	})
	Predictions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "student_success_predictions_total",
		Help: "Total number of predictions, by predicted label.",
	}, []string{"label"})
	ExportsWritten = promauto.NewCounter(prometheus.CounterOpts{
		Name: "student_success_exports_written_total",
		Help: "Total number of CSV exports of the student store.",
	})
	MessagesReceived = promauto.NewCounter(prometheus.CounterOpts{
		Name: "student_success_collector_messages_received_total",
		Help: "Total number of MQTT messages received by the collector.",
	})
)
