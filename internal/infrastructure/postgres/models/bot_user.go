package models

import "time"

type BotUserModel struct {
	UserID    int64 `gorm:"primaryKey;autoIncrement:false"`
	Username  string
	Note      string
	Locale    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// All возвращает полный список моделей для AutoMigrate.
func All() []any {
	return []any{
		&RequestModel{},
		&IncomingPaymentModel{},
		&CasinoLimitModel{},
		&CasinoLimitLogModel{},
		&BotUserModel{},
	}
}
