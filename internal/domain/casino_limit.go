package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// CasinoLimit - текущее представление системы о лимите казино.
// BaseLimit фиксируется при первой синхронизации и больше не меняется.
type CasinoLimit struct {
	Casino       string
	CurrentLimit decimal.Decimal
	BaseLimit    decimal.Decimal
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CasinoLimitLog - неизменяемая запись одного решения синхронизации.
// LimitBefore/LimitAfter - снимки, снятые атомарно с обновлением.
type CasinoLimitLog struct {
	ID          int64
	Casino      string
	SyncID      string
	RequestType string
	Amount      decimal.Decimal
	LimitBefore decimal.Decimal
	LimitAfter  decimal.Decimal
	IsMismatch  bool
	Detail      string
	UserID      *int64
	ProcessedBy string
	CreatedAt   time.Time
}

type SyncOutcome struct {
	Casino      string
	FirstSync   bool
	Mismatch    bool
	LimitBefore decimal.Decimal
	LimitAfter  decimal.Decimal
}

type LimitLogFilter struct {
	Casino       string
	MismatchOnly bool
	From         *time.Time
	To           *time.Time
}

type CasinoLimitRepository interface {
	// SyncLimit выполняет read-modify-write для одного казино под
	// сериализующим замком по ключу казино и пишет запись аудита
	// в той же транзакции.
	SyncLimit(ctx context.Context, casino string, observed decimal.Decimal, syncID string) (*SyncOutcome, error)
	GetLimit(ctx context.Context, casino string) (*CasinoLimit, error)
	ListLimits(ctx context.Context) ([]*CasinoLimit, error)
	ListLogs(ctx context.Context, filter LimitLogFilter, page, limit int64) ([]*CasinoLimitLog, int64, error)
	// DeleteLog - деструктивный админский override поверх append-only трейла.
	DeleteLog(ctx context.Context, logID int64) error
}

// PlatformClient - граница с API казино-платформы.
type PlatformClient interface {
	GetLimit(ctx context.Context, casino string) (decimal.Decimal, error)
	Casinos() []string
}
