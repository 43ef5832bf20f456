package mappers

import (
	"github.com/etodastandetka/bingo-recon-service/internal/domain"
	"github.com/etodastandetka/bingo-recon-service/internal/infrastructure/postgres/models"
)

func ToDomainCasinoLimit(model *models.CasinoLimitModel) *domain.CasinoLimit {
	return &domain.CasinoLimit{
		Casino:       model.Casino,
		CurrentLimit: model.CurrentLimit,
		BaseLimit:    model.BaseLimit,
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
	}
}

func ToDomainCasinoLimitLog(model *models.CasinoLimitLogModel) *domain.CasinoLimitLog {
	return &domain.CasinoLimitLog{
		ID:          model.ID,
		Casino:      model.Casino,
		SyncID:      model.SyncID,
		RequestType: model.RequestType,
		Amount:      model.Amount,
		LimitBefore: model.LimitBefore,
		LimitAfter:  model.LimitAfter,
		IsMismatch:  model.IsMismatch,
		Detail:      model.Detail,
		UserID:      model.UserID,
		ProcessedBy: model.ProcessedBy,
		CreatedAt:   model.CreatedAt,
	}
}

func ToDomainBotUser(model *models.BotUserModel) *domain.BotUser {
	return &domain.BotUser{
		UserID:    model.UserID,
		Username:  model.Username,
		Note:      model.Note,
		Locale:    model.Locale,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}
