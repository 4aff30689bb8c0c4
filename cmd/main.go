package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/markjakearzadon/trashmate-gobackend/internal/auth"
	"github.com/markjakearzadon/trashmate-gobackend/internal/config"
	"github.com/markjakearzadon/trashmate-gobackend/internal/db"
	"github.com/markjakearzadon/trashmate-gobackend/internal/handlers"
	"github.com/markjakearzadon/trashmate-gobackend/internal/logger"
	"github.com/markjakearzadon/trashmate-gobackend/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	lg, err := logger.New(cfg.Log.Level, cfg.Log.Format, "trashmate")
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer lg.Sync()
	zap.ReplaceGlobals(lg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := db.Connect(ctx, cfg.MongoURI)
	if err != nil {
		lg.Fatal("failed to connect to MongoDB", zap.Error(err))
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := client.Disconnect(dctx); err != nil {
			lg.Error("error disconnecting from MongoDB", zap.Error(err))
		}
	}()
	lg.Info("connected to MongoDB", zap.String("database", cfg.MongoDB))

	database := client.Database(cfg.MongoDB)
	if err := db.EnsureIndexes(ctx, database, lg); err != nil {
		lg.Fatal("failed to ensure indexes", zap.Error(err))
	}

	users := db.NewUserRepository(database)
	requests := db.NewRequestRepository(database)
	entries := db.NewLedgerRepository(database)
	invoices := db.NewInvoiceRepository(database)

	now := time.Now
	var revoker auth.Revoker = auth.NopRevoker{}
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			lg.Fatal("failed to connect to Redis", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		}
		revoker = auth.NewRedisRevoker(rdb, now)
		lg.Info("token revocation enabled", zap.String("addr", cfg.Redis.Addr))
	}

	var presigner services.Presigner
	if cfg.Photos.Bucket != "" {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Photos.Region))
		if err != nil {
			lg.Fatal("failed to load AWS config", zap.Error(err))
		}
		presigner = s3.NewPresignClient(s3.NewFromConfig(awsCfg))
		lg.Info("photo uploads enabled", zap.String("bucket", cfg.Photos.Bucket))
	}

	tokens := auth.NewTokens(cfg.JWTSecret, cfg.TokenTTL, now)
	gateway := services.NewStripeGateway(cfg.StripeBaseURL, cfg.StripeSecretKey, lg)

	authService := services.NewAuthService(users, tokens, revoker, now, lg)
	paymentService := services.NewPaymentService(gateway, cfg.Tariff, cfg.Currency, lg)
	ledgerService := services.NewLedgerService(entries, users, cfg.Tariff, now, lg)
	requestService := services.NewRequestService(requests, users, ledgerService, paymentService, cfg.Tariff, cfg.CompletionPolicy, now, lg)
	invoiceService := services.NewInvoiceService(invoices, users, ledgerService, cfg.InvoiceRates, cfg.InvoiceWindow, now, lg)

	router := handlers.NewRouter(handlers.Services{
		Auth:     authService,
		Requests: requestService,
		Ledger:   ledgerService,
		Invoices: invoiceService,
		Admin:    services.NewAdminService(users, now, lg),
		Stats:    services.NewStatsService(requests, users, now),
		Payments: paymentService,
		Photos:   services.NewPhotoService(users, presigner, cfg.Photos.Bucket, cfg.Photos.URLTTL, now, lg),
	}, lg)

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		lg.Info("server running", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	lg.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		lg.Error("graceful shutdown failed", zap.Error(err))
	}
}
