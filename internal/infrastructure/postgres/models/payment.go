package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type IncomingPaymentModel struct {
	ID               int64           `gorm:"primaryKey;autoIncrement"`
	Amount           decimal.Decimal `gorm:"type:numeric(18,2);index:idx_payment_amount"`
	Bank             string
	PaymentDate      time.Time `gorm:"index:idx_payment_date"`
	NotificationText string
	IsProcessed      bool  `gorm:"index:idx_payment_processed"`
	RequestID        *int64 `gorm:"index"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
