package repository

import (
	"context"
	"testing"
	"time"

	"github.com/etodastandetka/bingo-recon-service/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func incomingPayment(amount int64) *domain.IncomingPayment {
	return &domain.IncomingPayment{
		Amount:      decimal.NewFromInt(amount),
		Bank:        "mbank",
		PaymentDate: time.Now(),
	}
}

func TestProcessPayment_Idempotent(t *testing.T) {
	db := newTestDB(t)
	payments := NewDefaultPaymentRepository(db)
	requests := NewDefaultRequestRepository(db)
	ctx := context.Background()

	request := depositRequest(1, 500)
	require.NoError(t, requests.CreateDepositRequest(ctx, request))

	payment := incomingPayment(500)
	require.NoError(t, payments.SavePayment(ctx, payment))

	first, err := payments.ProcessPayment(ctx, payment.ID, &request.ID)
	require.NoError(t, err)
	assert.True(t, first.IsProcessed)
	require.NotNil(t, first.RequestID)
	assert.Equal(t, request.ID, *first.RequestID)

	// Повтор с теми же аргументами - no-op с тем же финальным состоянием
	second, err := payments.ProcessPayment(ctx, payment.ID, &request.ID)
	require.NoError(t, err)
	assert.Equal(t, first.IsProcessed, second.IsProcessed)
	assert.Equal(t, *first.RequestID, *second.RequestID)
}

func TestProcessPayment_AlreadyProcessedDifferentRequest(t *testing.T) {
	db := newTestDB(t)
	payments := NewDefaultPaymentRepository(db)
	requests := NewDefaultRequestRepository(db)
	ctx := context.Background()

	requestA := depositRequest(1, 500)
	require.NoError(t, requests.CreateDepositRequest(ctx, requestA))
	requestB := depositRequest(2, 500)
	require.NoError(t, requests.CreateDepositRequest(ctx, requestB))

	payment := incomingPayment(500)
	require.NoError(t, payments.SavePayment(ctx, payment))

	_, err := payments.ProcessPayment(ctx, payment.ID, &requestA.ID)
	require.NoError(t, err)

	// Перепривязать обработанный платеж нельзя
	_, err = payments.ProcessPayment(ctx, payment.ID, &requestB.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestProcessPayment_WithoutRequest(t *testing.T) {
	payments := NewDefaultPaymentRepository(newTestDB(t))
	ctx := context.Background()

	payment := incomingPayment(300)
	require.NoError(t, payments.SavePayment(ctx, payment))

	// requestId опционален: платеж фиксируется без привязки
	processed, err := payments.ProcessPayment(ctx, payment.ID, nil)
	require.NoError(t, err)
	assert.True(t, processed.IsProcessed)
	assert.Nil(t, processed.RequestID)
}

func TestProcessPayment_UnknownRefs(t *testing.T) {
	payments := NewDefaultPaymentRepository(newTestDB(t))
	ctx := context.Background()

	_, err := payments.ProcessPayment(ctx, 9999, nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	payment := incomingPayment(100)
	require.NoError(t, payments.SavePayment(ctx, payment))

	missing := int64(12345)
	_, err = payments.ProcessPayment(ctx, payment.ID, &missing)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeletePayment(t *testing.T) {
	payments := NewDefaultPaymentRepository(newTestDB(t))
	ctx := context.Background()

	payment := incomingPayment(250)
	require.NoError(t, payments.SavePayment(ctx, payment))
	require.NoError(t, payments.DeletePayment(ctx, payment.ID))

	_, err := payments.GetPaymentByID(ctx, payment.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeletePayment_ProcessedIsImmutable(t *testing.T) {
	payments := NewDefaultPaymentRepository(newTestDB(t))
	ctx := context.Background()

	payment := incomingPayment(250)
	require.NoError(t, payments.SavePayment(ctx, payment))
	_, err := payments.ProcessPayment(ctx, payment.ID, nil)
	require.NoError(t, err)

	err = payments.DeletePayment(ctx, payment.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	// Запись на месте
	got, err := payments.GetPaymentByID(ctx, payment.ID)
	require.NoError(t, err)
	assert.True(t, got.IsProcessed)
}

func TestUnlinkPayment(t *testing.T) {
	db := newTestDB(t)
	payments := NewDefaultPaymentRepository(db)
	requests := NewDefaultRequestRepository(db)
	ctx := context.Background()

	request := depositRequest(1, 500)
	require.NoError(t, requests.CreateDepositRequest(ctx, request))

	payment := incomingPayment(500)
	require.NoError(t, payments.SavePayment(ctx, payment))

	// Непривязанный платеж отвязать нельзя
	_, err := payments.UnlinkPayment(ctx, payment.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	_, err = payments.ProcessPayment(ctx, payment.ID, &request.ID)
	require.NoError(t, err)

	unlinked, err := payments.UnlinkPayment(ctx, payment.ID)
	require.NoError(t, err)
	assert.False(t, unlinked.IsProcessed)
	assert.Nil(t, unlinked.RequestID)
}

func TestFindDuplicate_Window(t *testing.T) {
	payments := NewDefaultPaymentRepository(newTestDB(t))
	ctx := context.Background()

	base := time.Now()
	payment := &domain.IncomingPayment{
		Amount:      decimal.NewFromInt(900),
		Bank:        "optima",
		PaymentDate: base,
	}
	require.NoError(t, payments.SavePayment(ctx, payment))

	dup, err := payments.FindDuplicate(ctx, decimal.NewFromInt(900), "optima", base.Add(5*time.Minute), 10*time.Minute)
	require.NoError(t, err)
	require.NotNil(t, dup)
	assert.Equal(t, payment.ID, dup.ID)

	// Вне окна - не дубликат
	dup, err = payments.FindDuplicate(ctx, decimal.NewFromInt(900), "optima", base.Add(30*time.Minute), 10*time.Minute)
	require.NoError(t, err)
	assert.Nil(t, dup)

	// Другой банк - не дубликат
	dup, err = payments.FindDuplicate(ctx, decimal.NewFromInt(900), "mbank", base, 10*time.Minute)
	require.NoError(t, err)
	assert.Nil(t, dup)
}

func TestFindUnprocessedByAmount(t *testing.T) {
	db := newTestDB(t)
	payments := NewDefaultPaymentRepository(db)
	ctx := context.Background()

	now := time.Now()
	match := &domain.IncomingPayment{Amount: decimal.NewFromInt(777), Bank: "mbank", PaymentDate: now.Add(-time.Minute)}
	require.NoError(t, payments.SavePayment(ctx, match))

	other := &domain.IncomingPayment{Amount: decimal.NewFromInt(778), Bank: "mbank", PaymentDate: now.Add(-time.Minute)}
	require.NoError(t, payments.SavePayment(ctx, other))

	linked := &domain.IncomingPayment{Amount: decimal.NewFromInt(777), Bank: "mbank", PaymentDate: now.Add(-time.Minute)}
	require.NoError(t, payments.SavePayment(ctx, linked))
	_, err := payments.ProcessPayment(ctx, linked.ID, nil)
	require.NoError(t, err)

	found, err := payments.FindUnprocessedByAmount(ctx, decimal.NewFromInt(777), now.Add(-10*time.Minute), now)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, match.ID, found[0].ID)
}
