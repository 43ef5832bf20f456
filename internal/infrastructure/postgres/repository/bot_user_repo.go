package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/etodastandetka/bingo-recon-service/internal/domain"
	"github.com/etodastandetka/bingo-recon-service/internal/infrastructure/postgres/mappers"
	"github.com/etodastandetka/bingo-recon-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DefaultBotUserRepository struct {
	DB *gorm.DB
}

func NewDefaultBotUserRepository(db *gorm.DB) *DefaultBotUserRepository {
	return &DefaultBotUserRepository{DB: db}
}

// UpsertNote - insert-on-conflict-update одним запросом, без
// read-then-write гонки. Профиль создается лениво при первой заметке.
func (r *DefaultBotUserRepository) UpsertNote(ctx context.Context, userID int64, note string) (*domain.BotUser, error) {
	userModel := models.BotUserModel{
		UserID: userID,
		Note:   note,
	}

	err := r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.Assignments(map[string]any{"note": note}),
		}).
		Create(&userModel).Error
	if err != nil {
		return nil, fmt.Errorf("failed to upsert bot user note: %w", err)
	}

	return r.GetByUserID(ctx, userID)
}

func (r *DefaultBotUserRepository) GetByUserID(ctx context.Context, userID int64) (*domain.BotUser, error) {
	var userModel models.BotUserModel
	if err := r.DB.WithContext(ctx).First(&userModel, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	return mappers.ToDomainBotUser(&userModel), nil
}
