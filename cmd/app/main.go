package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"classroom-subscription/internal/config"
	"classroom-subscription/internal/infra/db/postgres"
	"classroom-subscription/internal/infra/logging"
	"classroom-subscription/internal/infra/notify"
	"classroom-subscription/internal/infra/payment"
	red "classroom-subscription/internal/infra/redis"
	"classroom-subscription/internal/infra/sched"
	"classroom-subscription/internal/infra/storage"
	"classroom-subscription/internal/infra/web"
	"classroom-subscription/internal/usecase"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("developer mode enabled")
	}

	// ---- Postgres ----
	pool, err := postgres.NewPgxPool(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis")
	}
	defer redisClient.Close()
	rateLimiter := red.NewRateLimiter(redisClient)
	locker := red.NewLocker(redisClient)

	// ---- Repositories ----
	tm := postgres.NewTransactionManager(pool)
	emailGuard := postgres.NewEmailGuard(pool)
	planRepo := postgres.NewPostgresPlanRepo(pool)
	signupRepo := postgres.NewPostgresSignupRepo(pool)
	accountRepo := postgres.NewPostgresAccountRepo(pool)
	txRepo := postgres.NewPostgresTransactionRepo(pool)
	adminRepo := postgres.NewPostgresAdminRepo(pool)
	classRepo := postgres.NewPostgresClassRepo(pool)

	// ---- Adapters ----
	gateway := payment.NewCheckoutGateway(cfg.Payment.SecretKey, cfg.Payment.WebhookSecret)
	sink := notify.NewSMTPSink(cfg.Mail.Host, cfg.Mail.Port, cfg.Mail.Username, cfg.Mail.Password, cfg.Mail.From, logger)
	objectStore, err := storage.NewS3ObjectStore(ctx, storage.S3Config{
		Region:          cfg.Storage.Region,
		AccessKeyID:     cfg.Storage.AccessKeyID,
		SecretAccessKey: cfg.Storage.SecretAccessKey,
		Bucket:          cfg.Storage.Bucket,
		EndpointURL:     cfg.Storage.EndpointURL,
	}, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("object store")
	}
	videoStore := storage.NewRemoteVideoStore(cfg.Video.BaseURL, cfg.Video.APIKey)

	// ---- Use cases ----
	urls := usecase.CheckoutURLs{Success: cfg.Payment.SuccessURL, Cancel: cfg.Payment.CancelURL}
	signupUC := usecase.NewSignupUseCase(signupRepo, accountRepo, planRepo, txRepo, tm, emailGuard,
		gateway, sink, urls, cfg.Payment.Currency, logger)
	paymentUC := usecase.NewPaymentUseCase(signupRepo, accountRepo, planRepo, txRepo, tm,
		gateway, sink, urls, cfg.Payment.Currency, logger)
	subUC := usecase.NewSubscriptionUseCase(accountRepo, signupRepo, planRepo, txRepo, tm, emailGuard,
		cfg.Payment.Currency, logger)
	planUC := usecase.NewPlanUseCase(planRepo)
	classUC := usecase.NewClassUseCase(classRepo, tm, objectStore, videoStore, logger)
	adminUC := usecase.NewAdminUseCase(adminRepo, signupRepo, txRepo, sink, cfg.Retention.PendingSignupTTL, logger)
	authUC := usecase.NewAuthUseCase(accountRepo, adminRepo, sink,
		usecase.AuthConfig{JWTSecret: cfg.Auth.JWTSecret, FrontendURL: cfg.Server.FrontendURL}, logger)

	sweepUC := usecase.NewSweepUseCase(accountRepo, signupRepo, txRepo, classRepo, tm,
		objectStore, sink, usecase.RetentionPolicy{
			FirstWarningAfter: cfg.Retention.FirstWarningAfter,
			FinalWarningAfter: cfg.Retention.FinalWarningAfter,
			DeleteAfter:       cfg.Retention.DeleteAfter,
			PendingSignupTTL:  cfg.Retention.PendingSignupTTL,
		}, logger)

	// ---- Sweeps ----
	scheduler := sched.NewScheduler(sweepUC, locker, logger)
	if err := scheduler.Start(); err != nil {
		logger.Fatal().Err(err).Msg("scheduler")
	}
	defer scheduler.Stop()

	// ---- HTTP ----
	server := web.NewServer(signupUC, paymentUC, subUC, planUC, classUC, adminUC, authUC,
		gateway, rateLimiter, logger)
	if err := server.Run(ctx, cfg.Server.Addr); err != nil {
		logger.Error().Err(err).Msg("http server stopped")
	}
}
