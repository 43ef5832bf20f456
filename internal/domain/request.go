package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type RequestStatus string

const (
	StatusPending      RequestStatus = "pending"
	StatusPendingCheck RequestStatus = "pending_check"
	StatusProcessed    RequestStatus = "processed"
	StatusFailed       RequestStatus = "failed"
	StatusCancelled    RequestStatus = "cancelled"
)

type RequestType string

const (
	TypeDeposit  RequestType = "deposit"
	TypeWithdraw RequestType = "withdraw"
)

// ActiveStatuses - статусы, при которых заявка считается незакрытой.
// Именно этот набор участвует в инварианте "один активный депозит".
var ActiveStatuses = []RequestStatus{StatusPending, StatusPendingCheck}

// transitions описывает допустимые переходы. Только вперед,
// повторный вход в статус запрещен.
var transitions = map[RequestStatus][]RequestStatus{
	StatusPending:      {StatusPendingCheck, StatusProcessed, StatusFailed, StatusCancelled},
	StatusPendingCheck: {StatusProcessed, StatusFailed, StatusCancelled},
	StatusProcessed:    {},
	StatusFailed:       {},
	StatusCancelled:    {},
}

func (s RequestStatus) Terminal() bool {
	return len(transitions[s]) == 0
}

func (s RequestStatus) CanTransitionTo(next RequestStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s RequestStatus) Active() bool {
	return s == StatusPending || s == StatusPendingCheck
}

// Request - заявка пользователя на пополнение или вывод.
// Постоянная запись ledger-а, никогда не удаляется.
type Request struct {
	ID            int64
	UserID        int64
	Type          RequestType
	Status        RequestStatus
	StatusDetail  string
	Amount        decimal.Decimal
	Casino        string
	AccountID     string
	PhotoFileURL  string
	ChatMessageID *int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
	ProcessedAt   *time.Time
}

// ActiveDeposit - проекция для Active-Deposit Guard.
type ActiveDeposit struct {
	RequestID int64
	Status    RequestStatus
	CreatedAt time.Time
}

type RequestFilters struct {
	UserID   int64
	Type     RequestType
	Statuses []RequestStatus
	Casino   string
	DateFrom time.Time
	DateTo   time.Time
}

type RequestRepository interface {
	// CreateDepositRequest атомарно проверяет инвариант "один активный депозит"
	// и вставляет заявку. При нарушении возвращает ErrDuplicateActiveRequest.
	CreateDepositRequest(ctx context.Context, request *Request) error
	CreateWithdrawRequest(ctx context.Context, request *Request) error
	GetRequestByID(ctx context.Context, requestID int64) (*Request, error)
	// UpdateRequestStatus проверяет легальность перехода внутри транзакции.
	// Недопустимый переход возвращает *ConflictError с текущим статусом.
	UpdateRequestStatus(ctx context.Context, requestID int64, newStatus RequestStatus, detail string) (*Request, error)
	// FindActiveDeposit возвращает nil, nil если активной заявки нет.
	// Больше одной строки - *ConsistencyError.
	FindActiveDeposit(ctx context.Context, userID int64) (*ActiveDeposit, error)
	// ExpireStaleDeposits переводит в failed депозиты без чека старше cutoff.
	ExpireStaleDeposits(ctx context.Context, cutoff time.Time, detail string) (int64, error)
	FindFreshPendingDeposits(ctx context.Context, since time.Time) ([]*Request, error)
	ListRequests(ctx context.Context, filters RequestFilters, page, limit int64) ([]*Request, int64, error)
}
