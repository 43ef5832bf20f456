package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound               = errors.New("record not found")
	ErrDuplicateActiveRequest = errors.New("user already has an active deposit request")
	ErrInvalidState           = errors.New("operation not allowed in current state")
)

// ConflictError - попытка недопустимого перехода статуса заявки.
// Caller всегда видит актуальный статус.
type ConflictError struct {
	RequestID int64
	Current   RequestStatus
	Attempted RequestStatus
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("request %d: illegal transition %s -> %s", e.RequestID, e.Current, e.Attempted)
}

// ConsistencyError - нарушен инвариант, который система обязана гарантировать.
// Сигнал о баге или порче данных, никогда не глотается.
type ConsistencyError struct {
	Detail string
}

func (e *ConsistencyError) Error() string {
	return "consistency violation: " + e.Detail
}

// UpstreamError - отказ API платформы, всегда в рамках одного казино.
type UpstreamError struct {
	Casino string
	Err    error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream %s: %v", e.Casino, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// ErrorCode maps a core error to the stable code exposed to callers.
func ErrorCode(err error) string {
	var conflictErr *ConflictError
	var consistencyErr *ConsistencyError
	var upstreamErr *UpstreamError

	switch {
	case errors.As(err, &conflictErr):
		return "CONFLICT"
	case errors.Is(err, ErrDuplicateActiveRequest):
		return "DUPLICATE_ACTIVE_REQUEST"
	case errors.Is(err, ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, ErrInvalidState):
		return "INVALID_STATE"
	case errors.As(err, &upstreamErr):
		return "UPSTREAM_ERROR"
	case errors.As(err, &consistencyErr):
		return "CONSISTENCY_ERROR"
	default:
		return "INTERNAL"
	}
}
