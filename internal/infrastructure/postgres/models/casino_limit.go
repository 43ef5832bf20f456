package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type CasinoLimitModel struct {
	ID           int64           `gorm:"primaryKey;autoIncrement"`
	Casino       string          `gorm:"uniqueIndex"`
	CurrentLimit decimal.Decimal `gorm:"type:numeric(18,2)"`
	BaseLimit    decimal.Decimal `gorm:"type:numeric(18,2)"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type CasinoLimitLogModel struct {
	ID          int64  `gorm:"primaryKey;autoIncrement"`
	Casino      string `gorm:"index:idx_limit_log_casino"`
	SyncID      string
	RequestType string
	Amount      decimal.Decimal `gorm:"type:numeric(18,2)"`
	LimitBefore decimal.Decimal `gorm:"type:numeric(18,2)"`
	LimitAfter  decimal.Decimal `gorm:"type:numeric(18,2)"`
	IsMismatch  bool            `gorm:"index:idx_limit_log_mismatch"`
	Detail      string
	UserID      *int64
	ProcessedBy string
	CreatedAt   time.Time `gorm:"index:idx_limit_log_created_at"`
}
