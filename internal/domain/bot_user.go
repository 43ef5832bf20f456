package domain

import (
	"context"
	"time"
)

// BotUser - легкий профиль по внешнему 64-битному идентификатору.
// Создается лениво при первой записи заметки.
type BotUser struct {
	UserID    int64
	Username  string
	Note      string
	Locale    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type BotUserRepository interface {
	// UpsertNote - insert-on-conflict-update одной транзакцией,
	// без read-then-write гонки.
	UpsertNote(ctx context.Context, userID int64, note string) (*BotUser, error)
	GetByUserID(ctx context.Context, userID int64) (*BotUser, error)
}
