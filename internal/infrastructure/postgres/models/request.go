package models

import (
	"time"

	"github.com/etodastandetka/bingo-recon-service/internal/domain"
	"github.com/shopspring/decimal"
)

type RequestModel struct {
	ID            int64                `gorm:"primaryKey;autoIncrement"`
	UserID        int64                `gorm:"index:idx_user_type_status"`
	RequestType   domain.RequestType   `gorm:"index:idx_user_type_status"`
	Status        domain.RequestStatus `gorm:"index:idx_user_type_status"`
	StatusDetail  string
	Amount        decimal.Decimal `gorm:"type:numeric(18,2)"`
	Casino        string          `gorm:"index"`
	AccountID     string
	PhotoFileURL  string
	ChatMessageID *int64
	CreatedAt     time.Time `gorm:"index:idx_request_created_at"`
	UpdatedAt     time.Time
	ProcessedAt   *time.Time
}
