package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/etodastandetka/bingo-recon-service/internal/domain"
	"github.com/etodastandetka/bingo-recon-service/internal/infrastructure/metrics"
	"github.com/shopspring/decimal"
)

type CreateRequestInput struct {
	UserID        int64
	Type          domain.RequestType
	Amount        decimal.Decimal
	Casino        string
	AccountID     string
	PhotoFileURL  string
	ChatMessageID *int64
}

// ActiveDepositCheck - ответ Active-Deposit Guard. TimeAgoMinutes
// считается floor-делением и используется только для отображения.
type ActiveDepositCheck struct {
	HasActive      bool
	RequestID      int64
	Status         domain.RequestStatus
	CreatedAt      time.Time
	TimeAgoMinutes int64
}

type RequestUsecase interface {
	CreateRequest(ctx context.Context, input *CreateRequestInput) (*domain.Request, error)
	GetRequestByID(ctx context.Context, requestID int64) (*domain.Request, error)
	ListRequests(ctx context.Context, filters domain.RequestFilters, page, limit int64) ([]*domain.Request, *PageInfo, error)
	CheckActiveDeposit(ctx context.Context, userID int64) (*ActiveDepositCheck, error)
	ConfirmRequest(ctx context.Context, requestID int64, detail string) (*domain.Request, error)
	CancelRequest(ctx context.Context, requestID int64, detail string) (*domain.Request, error)
	FailRequest(ctx context.Context, requestID int64, detail string) (*domain.Request, error)
	ExpireStaleDeposits(ctx context.Context) (int64, error)
	StartAutoExpire(ctx context.Context)
}

type DefaultRequestUsecase struct {
	RequestRepo domain.RequestRepository
	Publisher   domain.EventPublisher
	Notifier    domain.Notifier
	Metrics     *metrics.ReconMetrics

	DepositTTL      time.Duration
	AutoExpireEvery time.Duration
}

func NewDefaultRequestUsecase(
	requestRepo domain.RequestRepository,
	eventPublisher domain.EventPublisher,
	notifier domain.Notifier,
	reconMetrics *metrics.ReconMetrics,
	depositTTL time.Duration,
	autoExpireEvery time.Duration) *DefaultRequestUsecase {

	return &DefaultRequestUsecase{
		RequestRepo:     requestRepo,
		Publisher:       eventPublisher,
		Notifier:        notifier,
		Metrics:         reconMetrics,
		DepositTTL:      depositTTL,
		AutoExpireEvery: autoExpireEvery,
	}
}

// CreateRequest создает заявку в статусе pending. Для депозитов guard-проверка
// и вставка выполняются в одной сериализованной секции репозитория,
// поэтому два конкурентных сабмита не проходят оба.
func (uc *DefaultRequestUsecase) CreateRequest(ctx context.Context, input *CreateRequestInput) (*domain.Request, error) {
	request := &domain.Request{
		UserID:        input.UserID,
		Type:          input.Type,
		Amount:        input.Amount,
		Casino:        input.Casino,
		AccountID:     input.AccountID,
		PhotoFileURL:  input.PhotoFileURL,
		ChatMessageID: input.ChatMessageID,
	}

	var err error
	if input.Type == domain.TypeWithdraw {
		err = uc.RequestRepo.CreateWithdrawRequest(ctx, request)
	} else {
		err = uc.RequestRepo.CreateDepositRequest(ctx, request)
	}
	if err != nil {
		uc.countError(err)
		return nil, err
	}

	if uc.Metrics != nil {
		uc.Metrics.RequestsCreatedTotal.WithLabelValues(string(request.Type), request.Casino).Inc()
	}
	slog.Info("request created",
		"request_id", request.ID, "user_id", request.UserID,
		"type", request.Type, "amount", request.Amount.String(), "casino", request.Casino)

	return request, nil
}

func (uc *DefaultRequestUsecase) GetRequestByID(ctx context.Context, requestID int64) (*domain.Request, error) {
	return uc.RequestRepo.GetRequestByID(ctx, requestID)
}

func (uc *DefaultRequestUsecase) ListRequests(ctx context.Context, filters domain.RequestFilters, page, limit int64) ([]*domain.Request, *PageInfo, error) {
	page, limit = normalizePage(page, limit)
	requests, total, err := uc.RequestRepo.ListRequests(ctx, filters, page, limit)
	if err != nil {
		return nil, nil, err
	}
	return requests, newPageInfo(page, limit, total), nil
}

func (uc *DefaultRequestUsecase) CheckActiveDeposit(ctx context.Context, userID int64) (*ActiveDepositCheck, error) {
	// Сначала закрываем истекшие заявки, чтобы guard не держал
	// пользователя из-за зависшего депозита
	if _, err := uc.ExpireStaleDeposits(ctx); err != nil {
		slog.Error("failed to expire stale deposits before guard check", "error", err.Error())
	}

	active, err := uc.RequestRepo.FindActiveDeposit(ctx, userID)
	if err != nil {
		uc.countError(err)
		return nil, err
	}

	if active == nil {
		return &ActiveDepositCheck{HasActive: false}, nil
	}

	return &ActiveDepositCheck{
		HasActive:      true,
		RequestID:      active.RequestID,
		Status:         active.Status,
		CreatedAt:      active.CreatedAt,
		TimeAgoMinutes: int64(time.Since(active.CreatedAt).Minutes()),
	}, nil
}

// ConfirmRequest - ручное или автоматическое подтверждение. Для депозита
// после перехода в processed уходит fire-and-forget уведомление
// пользователю и событие сверки.
func (uc *DefaultRequestUsecase) ConfirmRequest(ctx context.Context, requestID int64, detail string) (*domain.Request, error) {
	request, err := uc.RequestRepo.UpdateRequestStatus(ctx, requestID, domain.StatusProcessed, detail)
	if err != nil {
		uc.countError(err)
		return nil, err
	}

	if uc.Metrics != nil {
		uc.Metrics.RequestsProcessedTotal.WithLabelValues(string(request.Type), request.Casino).Inc()
	}

	if request.Type == domain.TypeDeposit && uc.Notifier != nil {
		uc.Notifier.NotifyDeposit(request.UserID, request.Amount.StringFixed(2), request.Casino, request.AccountID)
	}

	uc.publishEvent(domain.ReconEvent{
		Kind:      domain.EventRequestProcessed,
		RequestID: request.ID,
		UserID:    formatUserID(request.UserID),
		Casino:    request.Casino,
		Amount:    request.Amount.StringFixed(2),
		Detail:    detail,
	})

	slog.Info("request processed", "request_id", request.ID, "user_id", request.UserID, "detail", detail)
	return request, nil
}

func (uc *DefaultRequestUsecase) CancelRequest(ctx context.Context, requestID int64, detail string) (*domain.Request, error) {
	return uc.closeRequest(ctx, requestID, domain.StatusCancelled, detail)
}

func (uc *DefaultRequestUsecase) FailRequest(ctx context.Context, requestID int64, detail string) (*domain.Request, error) {
	return uc.closeRequest(ctx, requestID, domain.StatusFailed, detail)
}

func (uc *DefaultRequestUsecase) closeRequest(ctx context.Context, requestID int64, status domain.RequestStatus, detail string) (*domain.Request, error) {
	request, err := uc.RequestRepo.UpdateRequestStatus(ctx, requestID, status, detail)
	if err != nil {
		uc.countError(err)
		return nil, err
	}

	if uc.Metrics != nil {
		uc.Metrics.RequestsFailedTotal.WithLabelValues(string(request.Type), string(status)).Inc()
	}
	slog.Info("request closed", "request_id", request.ID, "status", status, "detail", detail)
	return request, nil
}

func (uc *DefaultRequestUsecase) ExpireStaleDeposits(ctx context.Context) (int64, error) {
	cutoff := time.Now().Add(-uc.DepositTTL)
	expired, err := uc.RequestRepo.ExpireStaleDeposits(ctx, cutoff, "Таймер истек")
	if err != nil {
		return 0, err
	}
	if expired > 0 {
		if uc.Metrics != nil {
			uc.Metrics.RequestsFailedTotal.WithLabelValues(string(domain.TypeDeposit), "expired").Add(float64(expired))
		}
		slog.Info("auto-expired stale deposit requests", "count", expired)
	}
	return expired, nil
}

// StartAutoExpire - фоновый тикер закрытия зависших депозитов.
func (uc *DefaultRequestUsecase) StartAutoExpire(ctx context.Context) {
	ticker := time.NewTicker(uc.AutoExpireEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := uc.ExpireStaleDeposits(ctx); err != nil {
				slog.Error("auto-expire error", "error", err.Error())
			}
		}
	}
}

func (uc *DefaultRequestUsecase) publishEvent(event domain.ReconEvent) {
	if uc.Publisher == nil {
		return
	}
	go func(event domain.ReconEvent) {
		if err := uc.Publisher.PublishRecon(event); err != nil {
			slog.Error("failed to publish ReconEvent", "kind", event.Kind, "error", err.Error())
		}
	}(event)
}

func (uc *DefaultRequestUsecase) countError(err error) {
	if uc.Metrics != nil && err != nil {
		uc.Metrics.ReconErrorsTotal.WithLabelValues(domain.ErrorCode(err)).Inc()
	}
}
