package logbuffer

import (
	"log/slog"
	"sync"
	"time"
)

// Buffer - ограниченный in-memory журнал для оперативной диагностики.
// Держит последние max записей, старые вытесняются. Это не часть
// аудируемого трейла CasinoLimitLog.
type Buffer struct {
	mu      sync.Mutex
	entries []Entry
	nextID  int64
	max     int
}

type Entry struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"`
	Message   string    `json:"message"`
	Data      any       `json:"data,omitempty"`
}

func New(max int) *Buffer {
	if max <= 0 {
		max = 1000
	}
	return &Buffer{nextID: 1, max: max}
}

// Add дублирует запись в slog и кладет ее в буфер.
func (b *Buffer) Add(level, message string, data any) {
	b.mu.Lock()
	b.entries = append(b.entries, Entry{
		ID:        b.nextID,
		Timestamp: time.Now(),
		Level:     level,
		Message:   message,
		Data:      data,
	})
	b.nextID++
	if len(b.entries) > b.max {
		b.entries = b.entries[len(b.entries)-b.max:]
	}
	b.mu.Unlock()

	switch level {
	case "error":
		slog.Error(message, "data", data)
	case "warn":
		slog.Warn(message, "data", data)
	default:
		slog.Info(message, "data", data)
	}
}

// Entries возвращает записи новые-сначала, опционально по уровню.
func (b *Buffer) Entries(limit int, level string) []Entry {
	b.mu.Lock()
	defer b.mu.Unlock()

	if limit <= 0 {
		limit = 100
	}

	out := make([]Entry, 0, limit)
	for i := len(b.entries) - 1; i >= 0 && len(out) < limit; i-- {
		if level != "" && level != "all" && b.entries[i].Level != level {
			continue
		}
		out = append(out, b.entries[i])
	}
	return out
}

func (b *Buffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries = nil
	b.nextID = 1
}
