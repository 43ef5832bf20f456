package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// IncomingPayment - платеж, замеченный внешним каналом (банк, кошелек).
// После isProcessed=true запись неизменяема и не подлежит удалению.
type IncomingPayment struct {
	ID               int64
	Amount           decimal.Decimal
	Bank             string
	PaymentDate      time.Time
	NotificationText string
	IsProcessed      bool
	RequestID        *int64
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type PaymentRepository interface {
	SavePayment(ctx context.Context, payment *IncomingPayment) error
	GetPaymentByID(ctx context.Context, paymentID int64) (*IncomingPayment, error)
	// FindDuplicate ищет платеж с той же суммой и банком в окне ±window
	// вокруг paymentDate. Возвращает nil, nil если дубликата нет.
	FindDuplicate(ctx context.Context, amount decimal.Decimal, bank string, paymentDate time.Time, window time.Duration) (*IncomingPayment, error)
	// ProcessPayment - единственный мутирующий переход платежа: атомарно
	// ставит isProcessed=true и requestID. Повторный вызов с теми же
	// аргументами - no-op, возвращающий то же финальное состояние.
	ProcessPayment(ctx context.Context, paymentID int64, requestID *int64) (*IncomingPayment, error)
	// UnlinkPayment - админский откат связки: платеж снова не обработан.
	UnlinkPayment(ctx context.Context, paymentID int64) (*IncomingPayment, error)
	// DeletePayment отказывает с ErrInvalidState, если платеж обработан.
	DeletePayment(ctx context.Context, paymentID int64) error
	FindUnprocessedByAmount(ctx context.Context, amount decimal.Decimal, from, to time.Time) ([]*IncomingPayment, error)
	ListPayments(ctx context.Context, processed *bool, page, limit int64) ([]*IncomingPayment, int64, error)
}
