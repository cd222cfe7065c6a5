package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/thangabali/suitcase-market/internal/accounts"
	"github.com/thangabali/suitcase-market/internal/admin"
	"github.com/thangabali/suitcase-market/internal/auth"
	"github.com/thangabali/suitcase-market/internal/config"
	"github.com/thangabali/suitcase-market/internal/events"
	"github.com/thangabali/suitcase-market/internal/httpx"
	kafkax "github.com/thangabali/suitcase-market/internal/kafka"
	"github.com/thangabali/suitcase-market/internal/listings"
	"github.com/thangabali/suitcase-market/internal/notifier"
	"github.com/thangabali/suitcase-market/internal/ops"
	"github.com/thangabali/suitcase-market/internal/orders"
	"github.com/thangabali/suitcase-market/internal/postgres"
	"github.com/thangabali/suitcase-market/internal/redisx"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producers, one per topic
	pPlaced := kafkax.NewProducer(cfg.KafkaBrokers, events.TopicOrderPlaced, 1024)
	pCancelled := kafkax.NewProducer(cfg.KafkaBrokers, events.TopicOrderCancelled, 1024)
	pDeleted := kafkax.NewProducer(cfg.KafkaBrokers, events.TopicAccountDeleted, 256)
	pOps := kafkax.NewProducer(cfg.KafkaBrokers, events.TopicInconsistency, 256)
	producers := []*kafkax.Producer{pPlaced, pCancelled, pDeleted, pOps}
	for _, p := range producers {
		p.Start(ctx)
	}

	// Mail
	var mail notifier.Notifier = notifier.LogMail{}
	if cfg.SMTPAddr != "" {
		mail = &notifier.SMTP{Addr: cfg.SMTPAddr, User: cfg.SMTPUser, Pass: cfg.SMTPPass, From: cfg.SMTPFrom}
	}

	// Repos & services
	accountRepo := &accounts.Repo{DB: db}
	listingRepo := &listings.Repo{DB: db}
	ledger := &listings.Ledger{DB: db}
	orderRepo := &orders.Repo{DB: db}

	accountSvc := accounts.NewService(accountRepo, mail)
	orderSvc := &orders.Service{
		Store:     orderRepo,
		Inventory: ledger,
		Reporter:  &ops.KafkaReporter{Producer: pOps, Service: cfg.ServiceName},
	}
	adminSvc := &admin.Service{
		Accounts: accountRepo,
		Store:    &admin.Repo{DB: db},
	}

	tokens := &auth.Tokens{Secret: []byte(cfg.TokenSecret), TTL: 24 * time.Hour}
	authMW := &httpx.AuthMiddleware{Tokens: tokens, Accounts: accountRepo}

	// Router & handlers
	router := httpx.NewRouter()
	(&httpx.AuthHandler{Service: accountSvc, Tokens: tokens}).Register(router)
	(&httpx.SellerHandler{Repo: listingRepo, Ledger: ledger, Auth: authMW}).Register(router)
	(&httpx.OrdersHandler{
		Service:   orderSvc,
		Repo:      orderRepo,
		Placed:    pPlaced,
		Cancelled: pCancelled,
		Redis:     rdb,
		Auth:      authMW,
		Name:      cfg.ServiceName,
	}).Register(router)
	(&httpx.AdminHandler{
		Service:  adminSvc,
		Accounts: accountRepo,
		Deleted:  pDeleted,
		Auth:     authMW,
		Name:     cfg.ServiceName,
	}).Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		log.Printf("HTTP listening at %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	// wait signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	for _, p := range producers {
		p.Close() // flush & close writer
	}
	cancel()
	for _, p := range producers {
		p.WaitClosed()
	}
}
