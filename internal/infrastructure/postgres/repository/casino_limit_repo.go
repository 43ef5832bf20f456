package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/etodastandetka/bingo-recon-service/internal/domain"
	"github.com/etodastandetka/bingo-recon-service/internal/infrastructure/postgres/mappers"
	"github.com/etodastandetka/bingo-recon-service/internal/infrastructure/postgres/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type DefaultCasinoLimitRepository struct {
	DB    *gorm.DB
	locks *keyedMutex
}

func NewDefaultCasinoLimitRepository(db *gorm.DB) *DefaultCasinoLimitRepository {
	return &DefaultCasinoLimitRepository{DB: db, locks: newKeyedMutex()}
}

// SyncLimit выполняет весь read-modify-write одного казино под замком
// по ключу казино: limitBefore в логе - это честный снимок
// непосредственно перед записью limitAfter. Разные казино
// синхронизируются параллельно.
func (r *DefaultCasinoLimitRepository) SyncLimit(ctx context.Context, casino string, observed decimal.Decimal, syncID string) (*domain.SyncOutcome, error) {
	unlock := r.locks.Lock("casino:" + casino)
	defer unlock()

	var outcome *domain.SyncOutcome
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var limitModel models.CasinoLimitModel
		err := tx.First(&limitModel, "casino = ?", casino).Error

		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Первое наблюдение: нестыковки быть не может,
			// сравнивать не с чем. baseLimit фиксируется навсегда.
			limitModel = models.CasinoLimitModel{
				Casino:       casino,
				CurrentLimit: observed,
				BaseLimit:    observed,
			}
			if err := tx.Create(&limitModel).Error; err != nil {
				return fmt.Errorf("failed to create casino limit: %w", err)
			}

			logEntry := models.CasinoLimitLogModel{
				Casino:      casino,
				SyncID:      syncID,
				RequestType: "sync",
				Amount:      decimal.Zero,
				LimitBefore: observed,
				LimitAfter:  observed,
				IsMismatch:  false,
				ProcessedBy: "system",
			}
			if err := tx.Create(&logEntry).Error; err != nil {
				return fmt.Errorf("failed to append limit log: %w", err)
			}

			outcome = &domain.SyncOutcome{
				Casino:      casino,
				FirstSync:   true,
				Mismatch:    false,
				LimitBefore: observed,
				LimitAfter:  observed,
			}
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to load casino limit: %w", err)
		}

		limitBefore := limitModel.CurrentLimit
		mismatch := !limitBefore.Equal(observed)

		updates := map[string]any{"current_limit": observed}
		if err := tx.Model(&models.CasinoLimitModel{}).Where("casino = ?", casino).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update casino limit: %w", err)
		}

		logEntry := models.CasinoLimitLogModel{
			Casino:      casino,
			SyncID:      syncID,
			RequestType: "sync",
			Amount:      decimal.Zero,
			LimitBefore: limitBefore,
			LimitAfter:  observed,
			IsMismatch:  mismatch,
			ProcessedBy: "system",
		}
		if mismatch {
			logEntry.Detail = fmt.Sprintf(
				"⚠️ Нестыковка при синхронизации: наш лимит %s, лимит API %s, разница %s",
				limitBefore.StringFixed(2), observed.StringFixed(2), limitBefore.Sub(observed).StringFixed(2),
			)
		}
		if err := tx.Create(&logEntry).Error; err != nil {
			return fmt.Errorf("failed to append limit log: %w", err)
		}

		outcome = &domain.SyncOutcome{
			Casino:      casino,
			FirstSync:   false,
			Mismatch:    mismatch,
			LimitBefore: limitBefore,
			LimitAfter:  observed,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return outcome, nil
}

func (r *DefaultCasinoLimitRepository) GetLimit(ctx context.Context, casino string) (*domain.CasinoLimit, error) {
	var limitModel models.CasinoLimitModel
	if err := r.DB.WithContext(ctx).First(&limitModel, "casino = ?", casino).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	return mappers.ToDomainCasinoLimit(&limitModel), nil
}

func (r *DefaultCasinoLimitRepository) ListLimits(ctx context.Context) ([]*domain.CasinoLimit, error) {
	var limitModels []models.CasinoLimitModel
	if err := r.DB.WithContext(ctx).Order("casino ASC").Find(&limitModels).Error; err != nil {
		return nil, fmt.Errorf("failed to list casino limits: %w", err)
	}

	limits := make([]*domain.CasinoLimit, len(limitModels))
	for i := range limitModels {
		limits[i] = mappers.ToDomainCasinoLimit(&limitModels[i])
	}
	return limits, nil
}

// ListLogs - read-only проекция аудита, новые сначала.
func (r *DefaultCasinoLimitRepository) ListLogs(ctx context.Context, filter domain.LimitLogFilter, page, limit int64) ([]*domain.CasinoLimitLog, int64, error) {
	baseQuery := r.DB.WithContext(ctx).Model(&models.CasinoLimitLogModel{})

	if filter.Casino != "" {
		baseQuery = baseQuery.Where("casino = ?", filter.Casino)
	}
	if filter.MismatchOnly {
		baseQuery = baseQuery.Where("is_mismatch = ?", true)
	}
	if filter.From != nil {
		baseQuery = baseQuery.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		baseQuery = baseQuery.Where("created_at <= ?", *filter.To)
	}

	var total int64
	if err := baseQuery.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count limit logs: %w", err)
	}

	var logModels []models.CasinoLimitLogModel
	offset := (page - 1) * limit
	err := baseQuery.
		Order("created_at DESC, id DESC").
		Offset(int(offset)).
		Limit(int(limit)).
		Find(&logModels).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list limit logs: %w", err)
	}

	logs := make([]*domain.CasinoLimitLog, len(logModels))
	for i := range logModels {
		logs[i] = mappers.ToDomainCasinoLimitLog(&logModels[i])
	}
	return logs, total, nil
}

// DeleteLog ломает append-only трейл, поэтому существует только как
// админский override и логируется на вызывающей стороне.
func (r *DefaultCasinoLimitRepository) DeleteLog(ctx context.Context, logID int64) error {
	result := r.DB.WithContext(ctx).Delete(&models.CasinoLimitLogModel{}, "id = ?", logID)
	if result.Error != nil {
		return fmt.Errorf("failed to delete limit log: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
