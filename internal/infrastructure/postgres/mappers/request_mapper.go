package mappers

import (
	"github.com/etodastandetka/bingo-recon-service/internal/domain"
	"github.com/etodastandetka/bingo-recon-service/internal/infrastructure/postgres/models"
)

func ToGORMRequest(request *domain.Request) *models.RequestModel {
	return &models.RequestModel{
		ID:            request.ID,
		UserID:        request.UserID,
		RequestType:   request.Type,
		Status:        request.Status,
		StatusDetail:  request.StatusDetail,
		Amount:        request.Amount,
		Casino:        request.Casino,
		AccountID:     request.AccountID,
		PhotoFileURL:  request.PhotoFileURL,
		ChatMessageID: request.ChatMessageID,
		CreatedAt:     request.CreatedAt,
		UpdatedAt:     request.UpdatedAt,
		ProcessedAt:   request.ProcessedAt,
	}
}

func ToDomainRequest(model *models.RequestModel) *domain.Request {
	return &domain.Request{
		ID:            model.ID,
		UserID:        model.UserID,
		Type:          model.RequestType,
		Status:        model.Status,
		StatusDetail:  model.StatusDetail,
		Amount:        model.Amount,
		Casino:        model.Casino,
		AccountID:     model.AccountID,
		PhotoFileURL:  model.PhotoFileURL,
		ChatMessageID: model.ChatMessageID,
		CreatedAt:     model.CreatedAt,
		UpdatedAt:     model.UpdatedAt,
		ProcessedAt:   model.ProcessedAt,
	}
}
