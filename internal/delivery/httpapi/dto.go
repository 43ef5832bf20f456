package httpapi

import (
	"errors"
	"strconv"
	"time"

	"github.com/etodastandetka/bingo-recon-service/internal/domain"
	"github.com/etodastandetka/bingo-recon-service/internal/usecase"
)

// Идентификаторы пользователей в JSON всегда строки: исходные ID -
// 64-битные числа, которые JS-клиенты теряют как number.

func parseUserID(raw string) (int64, error) {
	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || userID <= 0 {
		return 0, errors.New("userId must be a positive integer string")
	}
	return userID, nil
}

type requestDTO struct {
	ID            int64      `json:"id"`
	UserID        string     `json:"userId"`
	Type          string     `json:"type"`
	Status        string     `json:"status"`
	StatusDetail  string     `json:"statusDetail,omitempty"`
	Amount        string     `json:"amount"`
	Casino        string     `json:"casino"`
	AccountID     string     `json:"accountId,omitempty"`
	PhotoFileURL  string     `json:"photoFileUrl,omitempty"`
	ChatMessageID *int64     `json:"chatMessageId,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
	ProcessedAt   *time.Time `json:"processedAt,omitempty"`
}

func toRequestDTO(request *domain.Request) *requestDTO {
	return &requestDTO{
		ID:            request.ID,
		UserID:        strconv.FormatInt(request.UserID, 10),
		Type:          string(request.Type),
		Status:        string(request.Status),
		StatusDetail:  request.StatusDetail,
		Amount:        request.Amount.String(),
		Casino:        request.Casino,
		AccountID:     request.AccountID,
		PhotoFileURL:  request.PhotoFileURL,
		ChatMessageID: request.ChatMessageID,
		CreatedAt:     request.CreatedAt,
		UpdatedAt:     request.UpdatedAt,
		ProcessedAt:   request.ProcessedAt,
	}
}

func toRequestDTOs(requests []*domain.Request) []*requestDTO {
	dtos := make([]*requestDTO, 0, len(requests))
	for _, request := range requests {
		dtos = append(dtos, toRequestDTO(request))
	}
	return dtos
}

type paymentDTO struct {
	ID               int64     `json:"id"`
	Amount           string    `json:"amount"`
	Bank             string    `json:"bank"`
	PaymentDate      time.Time `json:"paymentDate"`
	NotificationText string    `json:"notificationText,omitempty"`
	IsProcessed      bool      `json:"isProcessed"`
	RequestID        *int64    `json:"requestId,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
}

func toPaymentDTO(payment *domain.IncomingPayment) *paymentDTO {
	return &paymentDTO{
		ID:               payment.ID,
		Amount:           payment.Amount.String(),
		Bank:             payment.Bank,
		PaymentDate:      payment.PaymentDate,
		NotificationText: payment.NotificationText,
		IsProcessed:      payment.IsProcessed,
		RequestID:        payment.RequestID,
		CreatedAt:        payment.CreatedAt,
	}
}

func toPaymentDTOs(payments []*domain.IncomingPayment) []*paymentDTO {
	dtos := make([]*paymentDTO, 0, len(payments))
	for _, payment := range payments {
		dtos = append(dtos, toPaymentDTO(payment))
	}
	return dtos
}

type limitDTO struct {
	Casino       string    `json:"casino"`
	CurrentLimit string    `json:"currentLimit"`
	BaseLimit    string    `json:"baseLimit"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func toLimitDTOs(limits []*domain.CasinoLimit) []*limitDTO {
	dtos := make([]*limitDTO, 0, len(limits))
	for _, limit := range limits {
		dtos = append(dtos, &limitDTO{
			Casino:       limit.Casino,
			CurrentLimit: limit.CurrentLimit.String(),
			BaseLimit:    limit.BaseLimit.String(),
			UpdatedAt:    limit.UpdatedAt,
		})
	}
	return dtos
}

type limitLogDTO struct {
	ID          int64     `json:"id"`
	Casino      string    `json:"casino"`
	SyncID      string    `json:"syncId,omitempty"`
	RequestType string    `json:"requestType,omitempty"`
	Amount      string    `json:"amount"`
	LimitBefore string    `json:"limitBefore"`
	LimitAfter  string    `json:"limitAfter"`
	IsMismatch  bool      `json:"isMismatch"`
	Detail      string    `json:"detail,omitempty"`
	UserID      *string   `json:"userId,omitempty"`
	ProcessedBy string    `json:"processedBy,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

func toLimitLogDTOs(logs []*domain.CasinoLimitLog) []*limitLogDTO {
	dtos := make([]*limitLogDTO, 0, len(logs))
	for _, entry := range logs {
		dto := &limitLogDTO{
			ID:          entry.ID,
			Casino:      entry.Casino,
			SyncID:      entry.SyncID,
			RequestType: entry.RequestType,
			Amount:      entry.Amount.String(),
			LimitBefore: entry.LimitBefore.String(),
			LimitAfter:  entry.LimitAfter.String(),
			IsMismatch:  entry.IsMismatch,
			Detail:      entry.Detail,
			ProcessedBy: entry.ProcessedBy,
			CreatedAt:   entry.CreatedAt,
		}
		if entry.UserID != nil {
			formatted := strconv.FormatInt(*entry.UserID, 10)
			dto.UserID = &formatted
		}
		dtos = append(dtos, dto)
	}
	return dtos
}

type pageDTO struct {
	Page       int64 `json:"page"`
	Limit      int64 `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"totalPages"`
}

func toPageDTO(info *usecase.PageInfo) *pageDTO {
	if info == nil {
		return nil
	}
	return &pageDTO{Page: info.Page, Limit: info.Limit, Total: info.Total, TotalPages: info.TotalPages}
}
