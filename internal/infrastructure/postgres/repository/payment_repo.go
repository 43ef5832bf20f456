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
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type DefaultPaymentRepository struct {
	DB    *gorm.DB
	locks *keyedMutex
}

func NewDefaultPaymentRepository(db *gorm.DB) *DefaultPaymentRepository {
	return &DefaultPaymentRepository{DB: db, locks: newKeyedMutex()}
}

func (r *DefaultPaymentRepository) SavePayment(ctx context.Context, payment *domain.IncomingPayment) error {
	paymentModel := mappers.ToGORMPayment(payment)
	if err := r.DB.WithContext(ctx).Create(paymentModel).Error; err != nil {
		return fmt.Errorf("failed to save incoming payment: %w", err)
	}

	payment.ID = paymentModel.ID
	payment.CreatedAt = paymentModel.CreatedAt
	payment.UpdatedAt = paymentModel.UpdatedAt
	return nil
}

func (r *DefaultPaymentRepository) GetPaymentByID(ctx context.Context, paymentID int64) (*domain.IncomingPayment, error) {
	var paymentModel models.IncomingPaymentModel
	if err := r.DB.WithContext(ctx).First(&paymentModel, "id = ?", paymentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	return mappers.ToDomainPayment(&paymentModel), nil
}

func (r *DefaultPaymentRepository) FindDuplicate(ctx context.Context, amount decimal.Decimal, bank string, paymentDate time.Time, window time.Duration) (*domain.IncomingPayment, error) {
	var paymentModel models.IncomingPaymentModel
	err := r.DB.WithContext(ctx).
		Where("amount = ? AND bank = ? AND payment_date BETWEEN ? AND ?",
			amount, bank, paymentDate.Add(-window), paymentDate.Add(window)).
		First(&paymentModel).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to look up duplicate payment: %w", err)
	}

	return mappers.ToDomainPayment(&paymentModel), nil
}

// ProcessPayment - атомарный и идемпотентный переход платежа.
// Повторный вызов с теми же аргументами возвращает финальное состояние
// без второй мутации; с другими аргументами - ErrInvalidState.
func (r *DefaultPaymentRepository) ProcessPayment(ctx context.Context, paymentID int64, requestID *int64) (*domain.IncomingPayment, error) {
	unlock := r.locks.Lock(paymentKey(paymentID))
	defer unlock()

	var processed *domain.IncomingPayment
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var paymentModel models.IncomingPaymentModel
		if err := tx.First(&paymentModel, "id = ?", paymentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return err
		}

		if paymentModel.IsProcessed {
			if sameRequest(paymentModel.RequestID, requestID) {
				// идемпотентный повтор
				processed = mappers.ToDomainPayment(&paymentModel)
				return nil
			}
			return fmt.Errorf("payment %d is already processed: %w", paymentID, domain.ErrInvalidState)
		}

		if requestID != nil {
			var count int64
			if err := tx.Model(&models.RequestModel{}).Where("id = ?", *requestID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return fmt.Errorf("request %d: %w", *requestID, domain.ErrNotFound)
			}
		}

		updates := map[string]any{
			"is_processed": true,
			"request_id":   requestID,
		}
		if err := tx.Model(&models.IncomingPaymentModel{}).Where("id = ?", paymentID).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to process payment: %w", err)
		}

		paymentModel.IsProcessed = true
		paymentModel.RequestID = requestID
		processed = mappers.ToDomainPayment(&paymentModel)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return processed, nil
}

// UnlinkPayment откатывает связку платеж-заявка. Деструктивный админский
// override, логируется на вызывающей стороне.
func (r *DefaultPaymentRepository) UnlinkPayment(ctx context.Context, paymentID int64) (*domain.IncomingPayment, error) {
	unlock := r.locks.Lock(paymentKey(paymentID))
	defer unlock()

	var unlinked *domain.IncomingPayment
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var paymentModel models.IncomingPaymentModel
		if err := tx.First(&paymentModel, "id = ?", paymentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return err
		}

		if !paymentModel.IsProcessed || paymentModel.RequestID == nil {
			return fmt.Errorf("payment %d is not linked to any request: %w", paymentID, domain.ErrInvalidState)
		}

		updates := map[string]any{
			"is_processed": false,
			"request_id":   nil,
		}
		if err := tx.Model(&models.IncomingPaymentModel{}).Where("id = ?", paymentID).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to unlink payment: %w", err)
		}

		paymentModel.IsProcessed = false
		paymentModel.RequestID = nil
		unlinked = mappers.ToDomainPayment(&paymentModel)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return unlinked, nil
}

// DeletePayment удаляет только необработанный платеж. Обработанные
// неизменяемы (audit safety) - ErrInvalidState.
func (r *DefaultPaymentRepository) DeletePayment(ctx context.Context, paymentID int64) error {
	unlock := r.locks.Lock(paymentKey(paymentID))
	defer unlock()

	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var paymentModel models.IncomingPaymentModel
		if err := tx.First(&paymentModel, "id = ?", paymentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return err
		}

		if paymentModel.IsProcessed {
			return fmt.Errorf("cannot delete processed payment %d: %w", paymentID, domain.ErrInvalidState)
		}

		if err := tx.Delete(&models.IncomingPaymentModel{}, "id = ?", paymentID).Error; err != nil {
			return fmt.Errorf("failed to delete payment: %w", err)
		}
		return nil
	})
}

func (r *DefaultPaymentRepository) FindUnprocessedByAmount(ctx context.Context, amount decimal.Decimal, from, to time.Time) ([]*domain.IncomingPayment, error) {
	var paymentModels []models.IncomingPaymentModel
	err := r.DB.WithContext(ctx).
		Where("is_processed = ? AND request_id IS NULL AND amount = ? AND payment_date BETWEEN ? AND ?",
			false, amount, from, to).
		Order("payment_date ASC").
		Find(&paymentModels).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find unprocessed payments: %w", err)
	}

	payments := make([]*domain.IncomingPayment, len(paymentModels))
	for i := range paymentModels {
		payments[i] = mappers.ToDomainPayment(&paymentModels[i])
	}
	return payments, nil
}

func (r *DefaultPaymentRepository) ListPayments(ctx context.Context, isProcessed *bool, page, limit int64) ([]*domain.IncomingPayment, int64, error) {
	baseQuery := r.DB.WithContext(ctx).Model(&models.IncomingPaymentModel{})
	if isProcessed != nil {
		baseQuery = baseQuery.Where("is_processed = ?", *isProcessed)
	}

	var total int64
	if err := baseQuery.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count payments: %w", err)
	}

	var paymentModels []models.IncomingPaymentModel
	offset := (page - 1) * limit
	err := baseQuery.
		Order("payment_date DESC, id DESC").
		Offset(int(offset)).
		Limit(int(limit)).
		Find(&paymentModels).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list payments: %w", err)
	}

	payments := make([]*domain.IncomingPayment, len(paymentModels))
	for i := range paymentModels {
		payments[i] = mappers.ToDomainPayment(&paymentModels[i])
	}
	return payments, total, nil
}

func sameRequest(a, b *int64) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return *a == *b
}

func paymentKey(paymentID int64) string {
	return "payment:" + strconv.FormatInt(paymentID, 10)
}
