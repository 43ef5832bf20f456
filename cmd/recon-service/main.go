package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"

	"github.com/joho/godotenv"

	"github.com/etodastandetka/bingo-recon-service/internal/config"
	"github.com/etodastandetka/bingo-recon-service/internal/delivery/httpapi"
	publisher "github.com/etodastandetka/bingo-recon-service/internal/infrastructure/kafka"
	"github.com/etodastandetka/bingo-recon-service/internal/infrastructure/logbuffer"
	"github.com/etodastandetka/bingo-recon-service/internal/infrastructure/logger"
	"github.com/etodastandetka/bingo-recon-service/internal/infrastructure/metrics"
	"github.com/etodastandetka/bingo-recon-service/internal/infrastructure/migrate"
	"github.com/etodastandetka/bingo-recon-service/internal/infrastructure/notifier"
	"github.com/etodastandetka/bingo-recon-service/internal/infrastructure/platform"
	"github.com/etodastandetka/bingo-recon-service/internal/infrastructure/postgres"
	"github.com/etodastandetka/bingo-recon-service/internal/infrastructure/postgres/repository"
	"github.com/etodastandetka/bingo-recon-service/internal/usecase"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("failed to load .env")
	}
	// Reading config
	cfg := config.MustLoad()
	logger.Setup(cfg.LogConfig)

	// Init database
	db := postgres.MustInitDB(cfg)
	if cfg.ReconDB.MigrationsPath != "" {
		if err := migrate.RunMigrations(db, cfg.ReconDB.MigrationsPath); err != nil {
			log.Fatalf("failed to run migrations: %v", err)
		}
	}

	reconMetrics := metrics.NewReconMetrics()
	diag := logbuffer.New(1000)

	brokers := []string{fmt.Sprintf("%s:%s", cfg.KafkaService.Host, cfg.KafkaService.Port)}
	pub := publisher.NewDefaultKafkaPublisher(brokers, cfg.KafkaService.Topic)

	tgNotifier := notifier.NewTelegramNotifier(cfg.TelegramBot.Token)
	cashdesk := platform.NewCashdeskClient(cfg.Casinos, cfg.Sync.CasinoTimeout)

	// Init repositories
	requestRepo := repository.NewDefaultRequestRepository(db)
	paymentRepo := repository.NewDefaultPaymentRepository(db)
	limitRepo := repository.NewDefaultCasinoLimitRepository(db)
	botUserRepo := repository.NewDefaultBotUserRepository(db)

	// Init usecases
	requestUc := usecase.NewDefaultRequestUsecase(
		requestRepo,
		pub,
		tgNotifier,
		reconMetrics,
		cfg.Sync.DepositTTL,
		cfg.Sync.AutoExpireEvery,
	)
	paymentUc := usecase.NewDefaultPaymentUsecase(paymentRepo, requestRepo, reconMetrics, diag)
	limitsUc := usecase.NewDefaultLimitsUsecase(
		limitRepo,
		cashdesk,
		pub,
		reconMetrics,
		diag,
		cfg.Sync.Interval,
	)
	autoMatcher := usecase.NewDefaultAutoMatcher(
		requestRepo,
		paymentRepo,
		paymentUc,
		requestUc,
		cfg.Sync.AutoMatchEnabled,
		cfg.Sync.AutoMatchEvery,
		cfg.Sync.DepositTTL,
		cfg.Sync.PaymentLookbehind,
	)

	// Фоновые циклы: синк лимитов, закрытие зависших депозитов, автосверка
	go limitsUc.StartSyncWorker(context.Background())
	go requestUc.StartAutoExpire(context.Background())
	go autoMatcher.StartWorker(context.Background())

	handler := httpapi.NewHandler(requestUc, paymentUc, limitsUc, botUserRepo, diag)
	router := httpapi.NewRouter(handler)

	addr := fmt.Sprintf("%s:%s", cfg.HTTPServer.Host, cfg.HTTPServer.Port)
	slog.Info("recon service starting", "addr", addr, "env", cfg.Env, "casinos", len(cfg.Casinos))
	if err := http.ListenAndServe(addr, router); err != nil {
		log.Fatalf("failed to serve: %v\n", err)
	}
}
