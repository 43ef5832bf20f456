package domain

import "time"

type Message struct {
	Key   []byte
	Value []byte
}

const (
	EventRequestProcessed = "request_processed"
	EventLimitMismatch    = "limit_mismatch"
)

// ReconEvent - событие сверки для внешних потребителей (бот, дашборды).
// Доставка best-effort, ядро не ретраит.
type ReconEvent struct {
	EventID   string    `json:"event_id"`
	Kind      string    `json:"kind"`
	RequestID int64     `json:"request_id,omitempty"`
	UserID    string    `json:"user_id,omitempty"`
	Casino    string    `json:"casino,omitempty"`
	Amount    string    `json:"amount,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type EventPublisher interface {
	PublishRecon(event ReconEvent) error
}

// Notifier - fire-and-forget уведомление пользователю после успешной
// сверки депозита. Ошибки логируются, не пробрасываются.
type Notifier interface {
	NotifyDeposit(userID int64, amount, casino, accountID string)
}
