package postgres

import (
	"log"

	"github.com/etodastandetka/bingo-recon-service/internal/config"
	"github.com/etodastandetka/bingo-recon-service/internal/infrastructure/postgres/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func MustInitDB(cfg *config.ReconConfig) *gorm.DB {
	dsn := cfg.ReconDB.Dsn
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to init db: %v\n", err.Error())
	}

	if err := db.AutoMigrate(models.All()...); err != nil {
		log.Fatalf("failed to run automigrations: %v\n", err.Error())
	}

	return db
}
