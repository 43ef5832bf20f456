package usecase

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/etodastandetka/bingo-recon-service/internal/domain"
	"github.com/etodastandetka/bingo-recon-service/internal/infrastructure/logbuffer"
	"github.com/etodastandetka/bingo-recon-service/internal/infrastructure/metrics"
	"github.com/google/uuid"
)

type SyncFailure struct {
	Casino string `json:"casino"`
	Error  string `json:"error"`
}

// SyncAllResult - итог одного прохода. Отказ одного казино не прерывает
// остальных: упавшие ключи собираются в Failures, не теряются.
type SyncAllResult struct {
	SyncID     string        `json:"sync_id"`
	Synced     int           `json:"synced"`
	Mismatches int           `json:"mismatches"`
	Failures   []SyncFailure `json:"failures,omitempty"`
}

type LimitsUsecase interface {
	SyncAll(ctx context.Context) (*SyncAllResult, error)
	SyncOne(ctx context.Context, casino string) (*domain.SyncOutcome, error)
	ListLimits(ctx context.Context) ([]*domain.CasinoLimit, error)
	ListLogs(ctx context.Context, filter domain.LimitLogFilter, page, limit int64) ([]*domain.CasinoLimitLog, *PageInfo, error)
	DeleteLog(ctx context.Context, logID int64) error
	StartSyncWorker(ctx context.Context)
}

type DefaultLimitsUsecase struct {
	LimitRepo domain.CasinoLimitRepository
	Platform  domain.PlatformClient
	Publisher domain.EventPublisher
	Metrics   *metrics.ReconMetrics
	Diag      *logbuffer.Buffer

	SyncInterval time.Duration
}

func NewDefaultLimitsUsecase(
	limitRepo domain.CasinoLimitRepository,
	platformClient domain.PlatformClient,
	eventPublisher domain.EventPublisher,
	reconMetrics *metrics.ReconMetrics,
	diag *logbuffer.Buffer,
	syncInterval time.Duration) *DefaultLimitsUsecase {

	return &DefaultLimitsUsecase{
		LimitRepo:    limitRepo,
		Platform:     platformClient,
		Publisher:    eventPublisher,
		Metrics:      reconMetrics,
		Diag:         diag,
		SyncInterval: syncInterval,
	}
}

// SyncAll синхронизирует все настроенные казино параллельно.
// Каждый ключ сериализован сам с собой на уровне репозитория,
// разные ключи не упорядочены между собой.
func (uc *DefaultLimitsUsecase) SyncAll(ctx context.Context) (*SyncAllResult, error) {
	started := time.Now()
	syncID := uuid.New().String()
	casinos := uc.Platform.Casinos()

	result := &SyncAllResult{SyncID: syncID}

	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, casino := range casinos {
		wg.Add(1)
		go func(casino string) {
			defer wg.Done()

			outcome, err := uc.syncCasino(ctx, casino, syncID)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Failures = append(result.Failures, SyncFailure{Casino: casino, Error: err.Error()})
				if uc.Metrics != nil {
					uc.Metrics.SyncCasinoTotal.WithLabelValues(casino, "error").Inc()
				}
				return
			}

			result.Synced++
			if outcome.Mismatch {
				result.Mismatches++
			}
			if uc.Metrics != nil {
				uc.Metrics.SyncCasinoTotal.WithLabelValues(casino, "ok").Inc()
			}
		}(casino)
	}
	wg.Wait()

	sort.Slice(result.Failures, func(i, j int) bool {
		return result.Failures[i].Casino < result.Failures[j].Casino
	})

	if uc.Metrics != nil {
		uc.Metrics.SyncRunsTotal.Inc()
		uc.Metrics.SyncDuration.Observe(time.Since(started).Seconds())
	}
	slog.Info("limit sync pass finished",
		"sync_id", syncID, "synced", result.Synced,
		"mismatches", result.Mismatches, "failures", len(result.Failures))

	return result, nil
}

func (uc *DefaultLimitsUsecase) SyncOne(ctx context.Context, casino string) (*domain.SyncOutcome, error) {
	return uc.syncCasino(ctx, casino, uuid.New().String())
}

func (uc *DefaultLimitsUsecase) syncCasino(ctx context.Context, casino, syncID string) (*domain.SyncOutcome, error) {
	// Таймаут на разговор с платформой применяет сам клиент;
	// таймаут одного казино - отказ только этого казино.
	observed, err := uc.Platform.GetLimit(ctx, casino)
	if err != nil {
		slog.Error("failed to fetch platform limit", "casino", casino, "error", err.Error())
		return nil, err
	}

	outcome, err := uc.LimitRepo.SyncLimit(ctx, casino, observed, syncID)
	if err != nil {
		slog.Error("failed to sync casino limit", "casino", casino, "error", err.Error())
		return nil, err
	}

	if outcome.Mismatch {
		if uc.Metrics != nil {
			uc.Metrics.LimitMismatchTotal.WithLabelValues(casino).Inc()
		}
		if uc.Diag != nil {
			uc.Diag.Add("warn", "limit mismatch detected", map[string]any{
				"casino":       casino,
				"limit_before": outcome.LimitBefore.StringFixed(2),
				"limit_after":  outcome.LimitAfter.StringFixed(2),
			})
		}
		uc.publishEvent(domain.ReconEvent{
			Kind:   domain.EventLimitMismatch,
			Casino: casino,
			Amount: outcome.LimitAfter.StringFixed(2),
			Detail: "limit mismatch: " + outcome.LimitBefore.StringFixed(2) + " -> " + outcome.LimitAfter.StringFixed(2),
		})
	}

	return outcome, nil
}

func (uc *DefaultLimitsUsecase) ListLimits(ctx context.Context) ([]*domain.CasinoLimit, error) {
	return uc.LimitRepo.ListLimits(ctx)
}

func (uc *DefaultLimitsUsecase) ListLogs(ctx context.Context, filter domain.LimitLogFilter, page, limit int64) ([]*domain.CasinoLimitLog, *PageInfo, error) {
	page, limit = normalizePage(page, limit)
	logs, total, err := uc.LimitRepo.ListLogs(ctx, filter, page, limit)
	if err != nil {
		return nil, nil, err
	}
	return logs, newPageInfo(page, limit, total), nil
}

// DeleteLog - админский override поверх append-only аудита.
// Сам факт удаления оставляет след в диагностике и метриках.
func (uc *DefaultLimitsUsecase) DeleteLog(ctx context.Context, logID int64) error {
	if err := uc.LimitRepo.DeleteLog(ctx, logID); err != nil {
		return err
	}

	if uc.Metrics != nil {
		uc.Metrics.DestructiveOpsTotal.WithLabelValues("limit_log_delete").Inc()
	}
	if uc.Diag != nil {
		uc.Diag.Add("warn", "casino limit log deleted by admin override", map[string]any{"log_id": logID})
	}
	slog.Warn("casino limit log deleted", "log_id", logID)
	return nil
}

// StartSyncWorker - периодический запуск SyncAll.
func (uc *DefaultLimitsUsecase) StartSyncWorker(ctx context.Context) {
	ticker := time.NewTicker(uc.SyncInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := uc.SyncAll(ctx); err != nil {
				slog.Error("scheduled limit sync error", "error", err.Error())
			}
		}
	}
}

func (uc *DefaultLimitsUsecase) publishEvent(event domain.ReconEvent) {
	if uc.Publisher == nil {
		return
	}
	go func(event domain.ReconEvent) {
		if err := uc.Publisher.PublishRecon(event); err != nil {
			slog.Error("failed to publish ReconEvent", "kind", event.Kind, "error", err.Error())
		}
	}(event)
}
