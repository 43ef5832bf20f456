package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/etodastandetka/bingo-recon-service/internal/domain"
	"github.com/etodastandetka/bingo-recon-service/internal/infrastructure/logbuffer"
	"github.com/etodastandetka/bingo-recon-service/internal/infrastructure/metrics"
	"github.com/shopspring/decimal"
)

// duplicateWindow - окно поиска дубликата входящего платежа
// (повторная отправка из email watcher или Android приложения).
const duplicateWindow = 10 * time.Minute

type IngestPaymentInput struct {
	Amount           decimal.Decimal
	Bank             string
	PaymentDate      time.Time
	NotificationText string
}

type PaymentUsecase interface {
	// IngestPayment сохраняет платеж; при попадании в окно дубликата
	// возвращает существующую запись и duplicate=true.
	IngestPayment(ctx context.Context, input *IngestPaymentInput) (*domain.IncomingPayment, bool, error)
	// ProcessPayment - ядро матчера: атомарная идемпотентная привязка.
	// Решение о совпадении принимает вызывающая сторона.
	ProcessPayment(ctx context.Context, paymentID int64, requestID *int64) (*domain.IncomingPayment, error)
	UnlinkPayment(ctx context.Context, paymentID int64) (*domain.IncomingPayment, error)
	DeletePayment(ctx context.Context, paymentID int64) error
	GetPaymentByID(ctx context.Context, paymentID int64) (*domain.IncomingPayment, error)
	ListPayments(ctx context.Context, isProcessed *bool, page, limit int64) ([]*domain.IncomingPayment, *PageInfo, error)
}

type DefaultPaymentUsecase struct {
	PaymentRepo domain.PaymentRepository
	RequestRepo domain.RequestRepository
	Metrics     *metrics.ReconMetrics
	Diag        *logbuffer.Buffer
}

func NewDefaultPaymentUsecase(
	paymentRepo domain.PaymentRepository,
	requestRepo domain.RequestRepository,
	reconMetrics *metrics.ReconMetrics,
	diag *logbuffer.Buffer) *DefaultPaymentUsecase {

	return &DefaultPaymentUsecase{
		PaymentRepo: paymentRepo,
		RequestRepo: requestRepo,
		Metrics:     reconMetrics,
		Diag:        diag,
	}
}

func (uc *DefaultPaymentUsecase) IngestPayment(ctx context.Context, input *IngestPaymentInput) (*domain.IncomingPayment, bool, error) {
	paymentDate := input.PaymentDate
	if paymentDate.IsZero() {
		paymentDate = time.Now()
	}

	existing, err := uc.PaymentRepo.FindDuplicate(ctx, input.Amount, input.Bank, paymentDate, duplicateWindow)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		slog.Warn("duplicate incoming payment prevented",
			"payment_id", existing.ID, "amount", input.Amount.String(), "bank", input.Bank)
		if uc.Metrics != nil {
			uc.Metrics.PaymentsIngestedTotal.WithLabelValues(input.Bank, "true").Inc()
		}
		return existing, true, nil
	}

	payment := &domain.IncomingPayment{
		Amount:           input.Amount,
		Bank:             input.Bank,
		PaymentDate:      paymentDate,
		NotificationText: input.NotificationText,
	}
	if err := uc.PaymentRepo.SavePayment(ctx, payment); err != nil {
		return nil, false, err
	}

	if uc.Metrics != nil {
		uc.Metrics.PaymentsIngestedTotal.WithLabelValues(input.Bank, "false").Inc()
	}
	slog.Info("incoming payment saved",
		"payment_id", payment.ID, "amount", payment.Amount.String(), "bank", payment.Bank)
	return payment, false, nil
}

func (uc *DefaultPaymentUsecase) ProcessPayment(ctx context.Context, paymentID int64, requestID *int64) (*domain.IncomingPayment, error) {
	payment, err := uc.PaymentRepo.ProcessPayment(ctx, paymentID, requestID)
	if err != nil {
		uc.countError(err)
		return nil, err
	}

	// Привязанная, но еще не подтвержденная заявка переходит в
	// pending_check: guard продолжает видеть ее как активную.
	if requestID != nil {
		if err := uc.markPendingCheck(ctx, *requestID); err != nil {
			slog.Error("failed to mark request pending_check",
				"request_id", *requestID, "payment_id", paymentID, "error", err.Error())
		}
	}

	if uc.Metrics != nil {
		uc.Metrics.PaymentsProcessedTotal.Inc()
	}
	slog.Info("incoming payment processed", "payment_id", paymentID, "request_id", requestID)
	return payment, nil
}

// markPendingCheck переводит pending-заявку в pending_check. Повторная
// обработка того же платежа заявку уже не трогает.
func (uc *DefaultPaymentUsecase) markPendingCheck(ctx context.Context, requestID int64) error {
	request, err := uc.RequestRepo.GetRequestByID(ctx, requestID)
	if err != nil {
		return err
	}
	if request.Status != domain.StatusPending {
		return nil
	}

	_, err = uc.RequestRepo.UpdateRequestStatus(ctx, requestID, domain.StatusPendingCheck, "платеж привязан")
	var conflictErr *domain.ConflictError
	if errors.As(err, &conflictErr) {
		// гонка с параллельным подтверждением, заявка уже ушла дальше
		return nil
	}
	return err
}

// UnlinkPayment - деструктивный откат: платеж снова необработан,
// заявка возвращается под ручной разбор.
func (uc *DefaultPaymentUsecase) UnlinkPayment(ctx context.Context, paymentID int64) (*domain.IncomingPayment, error) {
	payment, err := uc.PaymentRepo.UnlinkPayment(ctx, paymentID)
	if err != nil {
		uc.countError(err)
		return nil, err
	}

	if uc.Metrics != nil {
		uc.Metrics.DestructiveOpsTotal.WithLabelValues("payment_unlink").Inc()
	}
	if uc.Diag != nil {
		uc.Diag.Add("warn", "payment unlinked from request", map[string]any{"payment_id": paymentID})
	}
	return payment, nil
}

// DeletePayment - единственная деструктивная операция матчера,
// разрешена только для необработанных платежей.
func (uc *DefaultPaymentUsecase) DeletePayment(ctx context.Context, paymentID int64) error {
	if err := uc.PaymentRepo.DeletePayment(ctx, paymentID); err != nil {
		uc.countError(err)
		return err
	}

	if uc.Metrics != nil {
		uc.Metrics.PaymentsDeletedTotal.Inc()
		uc.Metrics.DestructiveOpsTotal.WithLabelValues("payment_delete").Inc()
	}
	if uc.Diag != nil {
		uc.Diag.Add("warn", "unprocessed payment deleted", map[string]any{"payment_id": paymentID})
	}
	return nil
}

func (uc *DefaultPaymentUsecase) GetPaymentByID(ctx context.Context, paymentID int64) (*domain.IncomingPayment, error) {
	return uc.PaymentRepo.GetPaymentByID(ctx, paymentID)
}

func (uc *DefaultPaymentUsecase) ListPayments(ctx context.Context, isProcessed *bool, page, limit int64) ([]*domain.IncomingPayment, *PageInfo, error) {
	page, limit = normalizePage(page, limit)
	payments, total, err := uc.PaymentRepo.ListPayments(ctx, isProcessed, page, limit)
	if err != nil {
		return nil, nil, err
	}
	return payments, newPageInfo(page, limit, total), nil
}

func (uc *DefaultPaymentUsecase) countError(err error) {
	if uc.Metrics != nil && err != nil {
		uc.Metrics.ReconErrorsTotal.WithLabelValues(domain.ErrorCode(err)).Inc()
	}
}
