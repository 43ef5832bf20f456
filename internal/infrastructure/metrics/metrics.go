package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ReconMetrics содержит все метрики сверки
type ReconMetrics struct {
	// Заявки
	RequestsCreatedTotal   prometheus.CounterVec
	RequestsProcessedTotal prometheus.CounterVec
	RequestsFailedTotal    prometheus.CounterVec

	// Входящие платежи
	PaymentsIngestedTotal  prometheus.CounterVec
	PaymentsProcessedTotal prometheus.Counter
	PaymentsDeletedTotal   prometheus.Counter

	// Синхронизация лимитов
	SyncRunsTotal      prometheus.Counter
	SyncCasinoTotal    prometheus.CounterVec
	LimitMismatchTotal prometheus.CounterVec
	SyncDuration       prometheus.Histogram

	// Деструктивные админские операции
	DestructiveOpsTotal prometheus.CounterVec

	// Ошибки ядра
	ReconErrorsTotal prometheus.CounterVec
}

func NewReconMetrics() *ReconMetrics {
	return &ReconMetrics{
		RequestsCreatedTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "recon_requests_created_total",
				Help: "Общее количество созданных заявок",
			},
			[]string{"request_type", "casino"},
		),

		RequestsProcessedTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "recon_requests_processed_total",
				Help: "Заявки, доведенные до статуса processed",
			},
			[]string{"request_type", "casino"},
		),

		RequestsFailedTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "recon_requests_failed_total",
				Help: "Заявки, завершенные как failed или cancelled",
			},
			[]string{"request_type", "reason"},
		),

		PaymentsIngestedTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "recon_payments_ingested_total",
				Help: "Принятые входящие платежи",
			},
			[]string{"bank", "duplicate"},
		),

		PaymentsProcessedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "recon_payments_processed_total",
				Help: "Платежи, привязанные к заявкам",
			},
		),

		PaymentsDeletedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "recon_payments_deleted_total",
				Help: "Удаленные необработанные платежи",
			},
		),

		SyncRunsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "recon_limit_sync_runs_total",
				Help: "Количество проходов синхронизации лимитов",
			},
		),

		SyncCasinoTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "recon_limit_sync_casino_total",
				Help: "Синхронизации по казино и результату",
			},
			[]string{"casino", "result"},
		),

		LimitMismatchTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "recon_limit_mismatch_total",
				Help: "Обнаруженные нестыковки лимитов",
			},
			[]string{"casino"},
		),

		SyncDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "recon_limit_sync_duration_seconds",
				Help:    "Длительность полного прохода синхронизации",
				Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
			},
		),

		DestructiveOpsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "recon_destructive_ops_total",
				Help: "Деструктивные админские операции (удаления)",
			},
			[]string{"op"},
		),

		ReconErrorsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "recon_errors_total",
				Help: "Ошибки ядра по коду",
			},
			[]string{"code"},
		),
	}
}
