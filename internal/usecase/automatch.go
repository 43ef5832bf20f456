package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/etodastandetka/bingo-recon-service/internal/domain"
)

// DefaultAutoMatcher - внешняя по отношению к ядру матчера политика
// автопополнения: сканирует свежие pending-депозиты и для однозначных
// совпадений по сумме вызывает тот же ProcessPayment, что и админ.
// Само решение о совпадении живет здесь, вне транзакционной границы.
type DefaultAutoMatcher struct {
	RequestRepo domain.RequestRepository
	PaymentRepo domain.PaymentRepository
	Payments    PaymentUsecase
	Requests    RequestUsecase

	Enabled    bool
	Every      time.Duration
	DepositTTL time.Duration
	Lookbehind time.Duration
}

func NewDefaultAutoMatcher(
	requestRepo domain.RequestRepository,
	paymentRepo domain.PaymentRepository,
	payments PaymentUsecase,
	requests RequestUsecase,
	enabled bool,
	every, depositTTL, lookbehind time.Duration) *DefaultAutoMatcher {

	return &DefaultAutoMatcher{
		RequestRepo: requestRepo,
		PaymentRepo: paymentRepo,
		Payments:    payments,
		Requests:    requests,
		Enabled:     enabled,
		Every:       every,
		DepositTTL:  depositTTL,
		Lookbehind:  lookbehind,
	}
}

// RunOnce возвращает количество заявок, закрытых автосверкой.
func (m *DefaultAutoMatcher) RunOnce(ctx context.Context) (int, error) {
	if !m.Enabled {
		return 0, nil
	}

	// Заявки старше TTL автопополнением не обрабатываются
	pending, err := m.RequestRepo.FindFreshPendingDeposits(ctx, time.Now().Add(-m.DepositTTL))
	if err != nil {
		return 0, err
	}
	if len(pending) == 0 {
		return 0, nil
	}

	// Две заявки на одну сумму - неоднозначность, не угадываем
	amountCount := make(map[string]int, len(pending))
	for _, request := range pending {
		amountCount[request.Amount.String()]++
	}

	matched := 0
	for _, request := range pending {
		if amountCount[request.Amount.String()] > 1 {
			slog.Warn("auto-match skipped: ambiguous amount",
				"request_id", request.ID, "amount", request.Amount.String())
			continue
		}

		payments, err := m.PaymentRepo.FindUnprocessedByAmount(
			ctx, request.Amount, request.CreatedAt.Add(-m.Lookbehind), time.Now())
		if err != nil {
			slog.Error("auto-match payment lookup failed", "request_id", request.ID, "error", err.Error())
			continue
		}
		if len(payments) == 0 {
			continue
		}
		if len(payments) > 1 {
			slog.Warn("auto-match skipped: more than one candidate payment",
				"request_id", request.ID, "candidates", len(payments))
			continue
		}

		if _, err := m.Payments.ProcessPayment(ctx, payments[0].ID, &request.ID); err != nil {
			slog.Error("auto-match process failed",
				"request_id", request.ID, "payment_id", payments[0].ID, "error", err.Error())
			continue
		}

		if _, err := m.Requests.ConfirmRequest(ctx, request.ID, "Автопополнение"); err != nil {
			slog.Error("auto-match confirm failed", "request_id", request.ID, "error", err.Error())
			continue
		}

		slog.Info("auto-matched payment to deposit request",
			"request_id", request.ID, "payment_id", payments[0].ID, "amount", request.Amount.String())
		matched++
	}

	return matched, nil
}

// StartWorker гоняет RunOnce по тикеру до отмены контекста.
func (m *DefaultAutoMatcher) StartWorker(ctx context.Context) {
	if !m.Enabled {
		return
	}

	ticker := time.NewTicker(m.Every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := m.RunOnce(ctx); err != nil {
				slog.Error("auto-match pass error", "error", err.Error())
			}
		}
	}
}
