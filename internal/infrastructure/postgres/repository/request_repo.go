package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/etodastandetka/bingo-recon-service/internal/domain"
	"github.com/etodastandetka/bingo-recon-service/internal/infrastructure/postgres/mappers"
	"github.com/etodastandetka/bingo-recon-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
)

type DefaultRequestRepository struct {
	DB    *gorm.DB
	locks *keyedMutex
}

func NewDefaultRequestRepository(db *gorm.DB) *DefaultRequestRepository {
	return &DefaultRequestRepository{DB: db, locks: newKeyedMutex()}
}

// CreateDepositRequest держит замок по user_id на время check+insert,
// чтобы два конкурентных сабмита не увидели оба "нет активного депозита".
// В postgres тот же инвариант дополнительно закрыт частичным уникальным
// индексом (migrations/000001).
func (r *DefaultRequestRepository) CreateDepositRequest(ctx context.Context, request *domain.Request) error {
	unlock := r.locks.Lock(userKey(request.UserID))
	defer unlock()

	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		err := tx.Model(&models.RequestModel{}).
			Where("user_id = ? AND request_type = ? AND status IN ?",
				request.UserID, domain.TypeDeposit, domain.ActiveStatuses).
			Count(&count).Error
		if err != nil {
			return fmt.Errorf("failed to check active deposits: %w", err)
		}
		if count > 0 {
			return domain.ErrDuplicateActiveRequest
		}

		request.Type = domain.TypeDeposit
		request.Status = domain.StatusPending
		requestModel := mappers.ToGORMRequest(request)
		if err := tx.Create(requestModel).Error; err != nil {
			return fmt.Errorf("failed to create deposit request: %w", err)
		}

		request.ID = requestModel.ID
		request.CreatedAt = requestModel.CreatedAt
		request.UpdatedAt = requestModel.UpdatedAt
		return nil
	})
}

func (r *DefaultRequestRepository) CreateWithdrawRequest(ctx context.Context, request *domain.Request) error {
	request.Type = domain.TypeWithdraw
	request.Status = domain.StatusPending
	requestModel := mappers.ToGORMRequest(request)
	if err := r.DB.WithContext(ctx).Create(requestModel).Error; err != nil {
		return fmt.Errorf("failed to create withdraw request: %w", err)
	}

	request.ID = requestModel.ID
	request.CreatedAt = requestModel.CreatedAt
	request.UpdatedAt = requestModel.UpdatedAt
	return nil
}

func (r *DefaultRequestRepository) GetRequestByID(ctx context.Context, requestID int64) (*domain.Request, error) {
	var requestModel models.RequestModel
	if err := r.DB.WithContext(ctx).First(&requestModel, "id = ?", requestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	return mappers.ToDomainRequest(&requestModel), nil
}

// UpdateRequestStatus валидирует переход внутри транзакции под замком
// заявки. Недопустимый переход - *ConflictError с текущим статусом,
// никогда не тихий no-op.
func (r *DefaultRequestRepository) UpdateRequestStatus(ctx context.Context, requestID int64, newStatus domain.RequestStatus, detail string) (*domain.Request, error) {
	unlock := r.locks.Lock(requestKey(requestID))
	defer unlock()

	var updated *domain.Request
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var requestModel models.RequestModel
		if err := tx.First(&requestModel, "id = ?", requestID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return err
		}

		if !requestModel.Status.CanTransitionTo(newStatus) {
			return &domain.ConflictError{
				RequestID: requestID,
				Current:   requestModel.Status,
				Attempted: newStatus,
			}
		}

		updates := map[string]any{
			"status":        newStatus,
			"status_detail": detail,
		}
		requestModel.Status = newStatus
		requestModel.StatusDetail = detail
		if newStatus.Terminal() {
			now := time.Now()
			updates["processed_at"] = &now
			requestModel.ProcessedAt = &now
		}

		if err := tx.Model(&models.RequestModel{}).Where("id = ?", requestID).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update request status: %w", err)
		}

		updated = mappers.ToDomainRequest(&requestModel)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// FindActiveDeposit - чистое чтение Active-Deposit Guard.
// Инвариант гарантирует максимум одну строку; больше одной -
// нарушение целостности данных, о котором надо кричать.
func (r *DefaultRequestRepository) FindActiveDeposit(ctx context.Context, userID int64) (*domain.ActiveDeposit, error) {
	var requestModels []models.RequestModel
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND request_type = ? AND status IN ?",
			userID, domain.TypeDeposit, domain.ActiveStatuses).
		Limit(2).
		Find(&requestModels).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find active deposit: %w", err)
	}

	switch len(requestModels) {
	case 0:
		return nil, nil
	case 1:
		return &domain.ActiveDeposit{
			RequestID: requestModels[0].ID,
			Status:    requestModels[0].Status,
			CreatedAt: requestModels[0].CreatedAt,
		}, nil
	default:
		return nil, &domain.ConsistencyError{
			Detail: fmt.Sprintf("user %d has more than one active deposit request", userID),
		}
	}
}

// ExpireStaleDeposits закрывает "зависшие" депозиты без чека одним UPDATE:
// фильтр по активным статусам внутри того же запроса исключает гонку
// с параллельным подтверждением.
func (r *DefaultRequestRepository) ExpireStaleDeposits(ctx context.Context, cutoff time.Time, detail string) (int64, error) {
	now := time.Now()
	result := r.DB.WithContext(ctx).
		Model(&models.RequestModel{}).
		Where("request_type = ? AND status IN ? AND created_at < ? AND (photo_file_url IS NULL OR photo_file_url = '')",
			domain.TypeDeposit, domain.ActiveStatuses, cutoff).
		Updates(map[string]any{
			"status":        domain.StatusFailed,
			"status_detail": detail,
			"processed_at":  &now,
		})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to expire stale deposits: %w", result.Error)
	}

	return result.RowsAffected, nil
}

func (r *DefaultRequestRepository) FindFreshPendingDeposits(ctx context.Context, since time.Time) ([]*domain.Request, error) {
	var requestModels []models.RequestModel
	err := r.DB.WithContext(ctx).
		Where("request_type = ? AND status = ? AND created_at >= ?",
			domain.TypeDeposit, domain.StatusPending, since).
		Order("created_at ASC").
		Find(&requestModels).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find fresh pending deposits: %w", err)
	}

	requests := make([]*domain.Request, len(requestModels))
	for i := range requestModels {
		requests[i] = mappers.ToDomainRequest(&requestModels[i])
	}
	return requests, nil
}

func (r *DefaultRequestRepository) ListRequests(ctx context.Context, filters domain.RequestFilters, page, limit int64) ([]*domain.Request, int64, error) {
	baseQuery := r.DB.WithContext(ctx).Model(&models.RequestModel{})

	if filters.UserID != 0 {
		baseQuery = baseQuery.Where("user_id = ?", filters.UserID)
	}
	if filters.Type != "" {
		baseQuery = baseQuery.Where("request_type = ?", filters.Type)
	}
	if len(filters.Statuses) > 0 {
		baseQuery = baseQuery.Where("status IN ?", filters.Statuses)
	}
	if filters.Casino != "" {
		baseQuery = baseQuery.Where("casino = ?", filters.Casino)
	}
	if !filters.DateFrom.IsZero() {
		baseQuery = baseQuery.Where("created_at >= ?", filters.DateFrom)
	}
	if !filters.DateTo.IsZero() {
		baseQuery = baseQuery.Where("created_at <= ?", filters.DateTo)
	}

	var total int64
	if err := baseQuery.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count requests: %w", err)
	}

	var requestModels []models.RequestModel
	offset := (page - 1) * limit
	err := baseQuery.
		Order("created_at DESC, id DESC").
		Offset(int(offset)).
		Limit(int(limit)).
		Find(&requestModels).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list requests: %w", err)
	}

	requests := make([]*domain.Request, len(requestModels))
	for i := range requestModels {
		requests[i] = mappers.ToDomainRequest(&requestModels[i])
	}
	return requests, total, nil
}

func userKey(userID int64) string {
	return "user:" + strconv.FormatInt(userID, 10)
}

func requestKey(requestID int64) string {
	return "request:" + strconv.FormatInt(requestID, 10)
}
