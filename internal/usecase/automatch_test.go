package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/etodastandetka/bingo-recon-service/internal/domain"
)

func newAutoMatcher(requestRepo *fakeRequestRepo, paymentRepo *fakePaymentRepo, notifier domain.Notifier) *DefaultAutoMatcher {
	requests := NewDefaultRequestUsecase(requestRepo, nil, notifier, nil, 5*time.Minute, 30*time.Second)
	payments := NewDefaultPaymentUsecase(paymentRepo, requestRepo, nil, nil)
	return NewDefaultAutoMatcher(requestRepo, paymentRepo, payments, requests,
		true, time.Second, 5*time.Minute, 10*time.Minute)
}

func TestAutoMatcher_MatchesSingleCandidate(t *testing.T) {
	requestRepo := newFakeRequestRepo()
	paymentRepo := newFakePaymentRepo()
	notifier := &fakeNotifier{}
	matcher := newAutoMatcher(requestRepo, paymentRepo, notifier)
	ctx := context.Background()

	request := &domain.Request{UserID: 42, Amount: decimal.NewFromInt(500), Casino: "bingo37"}
	require.NoError(t, requestRepo.CreateDepositRequest(ctx, request))

	payment := &domain.IncomingPayment{Amount: decimal.NewFromInt(500), Bank: "sberbank", PaymentDate: time.Now()}
	require.NoError(t, paymentRepo.SavePayment(ctx, payment))

	matched, err := matcher.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, matched)

	updated, err := requestRepo.GetRequestByID(ctx, request.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusProcessed, updated.Status)
	assert.Equal(t, "Автопополнение", updated.StatusDetail)

	linked, err := paymentRepo.GetPaymentByID(ctx, payment.ID)
	require.NoError(t, err)
	assert.True(t, linked.IsProcessed)
	require.NotNil(t, linked.RequestID)
	assert.Equal(t, request.ID, *linked.RequestID)

	// Автоподтверждение шлет то же уведомление, что и ручное
	require.Len(t, notifier.Calls(), 1)
	assert.Equal(t, int64(42), notifier.Calls()[0].UserID)
}

func TestAutoMatcher_SkipsAmbiguousAmount(t *testing.T) {
	requestRepo := newFakeRequestRepo()
	paymentRepo := newFakePaymentRepo()
	matcher := newAutoMatcher(requestRepo, paymentRepo, nil)
	ctx := context.Background()

	// Две заявки на одну сумму от разных пользователей - не угадываем
	require.NoError(t, requestRepo.CreateDepositRequest(ctx,
		&domain.Request{UserID: 1, Amount: decimal.NewFromInt(500), Casino: "bingo37"}))
	require.NoError(t, requestRepo.CreateDepositRequest(ctx,
		&domain.Request{UserID: 2, Amount: decimal.NewFromInt(500), Casino: "bingo37"}))

	payment := &domain.IncomingPayment{Amount: decimal.NewFromInt(500), Bank: "sberbank", PaymentDate: time.Now()}
	require.NoError(t, paymentRepo.SavePayment(ctx, payment))

	matched, err := matcher.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, matched)

	untouched, err := paymentRepo.GetPaymentByID(ctx, payment.ID)
	require.NoError(t, err)
	assert.False(t, untouched.IsProcessed)
}

func TestAutoMatcher_SkipsMultipleCandidatePayments(t *testing.T) {
	requestRepo := newFakeRequestRepo()
	paymentRepo := newFakePaymentRepo()
	matcher := newAutoMatcher(requestRepo, paymentRepo, nil)
	ctx := context.Background()

	request := &domain.Request{UserID: 1, Amount: decimal.NewFromInt(500), Casino: "bingo37"}
	require.NoError(t, requestRepo.CreateDepositRequest(ctx, request))

	for i := 0; i < 2; i++ {
		require.NoError(t, paymentRepo.SavePayment(ctx,
			&domain.IncomingPayment{Amount: decimal.NewFromInt(500), Bank: "sberbank", PaymentDate: time.Now()}))
	}

	matched, err := matcher.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, matched)

	pending, err := requestRepo.GetRequestByID(ctx, request.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, pending.Status)
}

func TestAutoMatcher_IgnoresExpiredDeposits(t *testing.T) {
	requestRepo := newFakeRequestRepo()
	paymentRepo := newFakePaymentRepo()
	matcher := newAutoMatcher(requestRepo, paymentRepo, nil)
	ctx := context.Background()

	old := &domain.Request{UserID: 1, Amount: decimal.NewFromInt(500), Casino: "bingo37",
		CreatedAt: time.Now().Add(-20 * time.Minute)}
	require.NoError(t, requestRepo.CreateDepositRequest(ctx, old))

	require.NoError(t, paymentRepo.SavePayment(ctx,
		&domain.IncomingPayment{Amount: decimal.NewFromInt(500), Bank: "sberbank", PaymentDate: time.Now()}))

	matched, err := matcher.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, matched)
}

func TestAutoMatcher_DisabledDoesNothing(t *testing.T) {
	requestRepo := newFakeRequestRepo()
	paymentRepo := newFakePaymentRepo()
	matcher := newAutoMatcher(requestRepo, paymentRepo, nil)
	matcher.Enabled = false
	ctx := context.Background()

	require.NoError(t, requestRepo.CreateDepositRequest(ctx,
		&domain.Request{UserID: 1, Amount: decimal.NewFromInt(500), Casino: "bingo37"}))
	require.NoError(t, paymentRepo.SavePayment(ctx,
		&domain.IncomingPayment{Amount: decimal.NewFromInt(500), Bank: "sberbank", PaymentDate: time.Now()}))

	matched, err := matcher.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, matched)
}
