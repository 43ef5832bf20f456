package mappers

import (
	"github.com/etodastandetka/bingo-recon-service/internal/domain"
	"github.com/etodastandetka/bingo-recon-service/internal/infrastructure/postgres/models"
)

func ToGORMPayment(payment *domain.IncomingPayment) *models.IncomingPaymentModel {
	return &models.IncomingPaymentModel{
		ID:               payment.ID,
		Amount:           payment.Amount,
		Bank:             payment.Bank,
		PaymentDate:      payment.PaymentDate,
		NotificationText: payment.NotificationText,
		IsProcessed:      payment.IsProcessed,
		RequestID:        payment.RequestID,
		CreatedAt:        payment.CreatedAt,
		UpdatedAt:        payment.UpdatedAt,
	}
}

func ToDomainPayment(model *models.IncomingPaymentModel) *domain.IncomingPayment {
	return &domain.IncomingPayment{
		ID:               model.ID,
		Amount:           model.Amount,
		Bank:             model.Bank,
		PaymentDate:      model.PaymentDate,
		NotificationText: model.NotificationText,
		IsProcessed:      model.IsProcessed,
		RequestID:        model.RequestID,
		CreatedAt:        model.CreatedAt,
		UpdatedAt:        model.UpdatedAt,
	}
}
