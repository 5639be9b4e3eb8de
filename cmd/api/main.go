package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"bookstore/internal/config"
	"bookstore/internal/handler"
	"bookstore/internal/infra/db"
	"bookstore/internal/infra/mail"
	infraRepo "bookstore/internal/infra/repository"
	"bookstore/internal/logger"
	"bookstore/internal/server"
	"bookstore/internal/usecase"
	"bookstore/internal/validator"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	//.envは無くてもよい（本番は環境変数）
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.GoEnv)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	//DB接続
	gormDB, err := db.Connect(cfg)
	if err != nil {
		log.Fatal("db connect failed", zap.Error(err))
	}
	if err := db.Migrate(gormDB); err != nil {
		log.Fatal("db migrate failed", zap.Error(err))
	}

	//Repository（GORM実装）生成
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	bookRepo := infraRepo.NewBookGormRepository(gormDB)
	promoRepo := infraRepo.NewPromotionGormRepository(gormDB)
	cartRepo := infraRepo.NewCartGormRepository(gormDB)
	addressRepo := infraRepo.NewAddressGormRepository(gormDB)
	cardRepo := infraRepo.NewPaymentCardGormRepository(gormDB)
	auditRepo := infraRepo.NewAuditLogGormRepository(gormDB)
	receiptRepo := infraRepo.NewCheckoutReceiptGormRepository(gormDB)
	txm := infraRepo.NewTxManagerGorm(gormDB)

	clock := usecase.SystemClock{}
	mailer := mail.NewLogMailer(log.Named("mail"), "orders@bookstore.local")

	//Usecase生成
	authUC := usecase.NewAuthUsecase(cfg, userRepo, validator.NewAuthValidator(userRepo), clock, log.Named("auth"))
	bookUC := usecase.NewBookUsecase(bookRepo, auditRepo, cfg.SalesTaxRate, clock)
	promoUC := usecase.NewPromotionUsecase(promoRepo, userRepo, mailer, auditRepo, clock, log.Named("promotion"))
	cartUC := usecase.NewCartUsecase(cartRepo, cartRepo, bookRepo, txm, clock)
	checkoutUC := usecase.NewCheckoutUsecase(userRepo, addressRepo, cardRepo, receiptRepo, mailer, log.Named("checkout"))
	orderUC := usecase.NewOrderUsecase(txm, clock)
	profileUC := usecase.NewProfileUsecase(userRepo, addressRepo, cardRepo, clock, log.Named("profile"))
	adminOrderUC := usecase.NewAdminOrderUsecase(txm, auditRepo)

	e := server.New(cfg, log, server.Handlers{
		Auth:     handler.NewAuthHandler(authUC),
		Books:    handler.NewBookHandler(bookUC, promoUC),
		Cart:     handler.NewCartHandler(cartUC),
		Checkout: handler.NewCheckoutHandler(checkoutUC),
		Orders:   handler.NewOrderHandler(orderUC),
		Profile:  handler.NewProfileHandler(profileUC),
		Admin:    handler.NewAdminHandler(bookUC, promoUC, adminOrderUC),
		Users:    userRepo,
	})

	addr := cfg.Port
	if addr[0] != ':' {
		addr = ":" + addr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx, e, addr, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}
