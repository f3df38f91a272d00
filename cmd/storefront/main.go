package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/printpoint/storefront/internal/cart"
	"github.com/printpoint/storefront/internal/catalog"
	"github.com/printpoint/storefront/internal/checkout"
	"github.com/printpoint/storefront/internal/config"
	"github.com/printpoint/storefront/internal/db"
	"github.com/printpoint/storefront/internal/events"
	httpserver "github.com/printpoint/storefront/internal/http"
	"github.com/printpoint/storefront/internal/order"
)

func main() {
	cfg := config.Load()

	logger := log.New(os.Stdout, "[storefront] ", log.LstdFlags|log.Lshortfile)

	// DB
	dsn := cfg.DatabaseDSN
	if dsn == "" {
		dsn = db.GetDSN()
	}
	if err := db.RunMigrations(dsn, logger); err != nil {
		logger.Fatalf("migrations: %v", err)
	}
	database := db.MustOpen(dsn)
	defer database.Close()

	productRepo := catalog.NewRepository(database)
	orderRepo := order.NewRepository(database)

	// Redis session carts
	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	cartStore := cart.NewRedisStore(redisClient, cfg.CartTTL)

	// RabbitMQ publisher is optional; checkout works without it.
	var pub checkout.EventPublisher
	if cfg.RabbitURL != "" {
		rabbitConn := events.MustDialRabbit(cfg.RabbitURL)
		defer rabbitConn.Close()

		publisher, err := events.NewPublisher(rabbitConn)
		if err != nil {
			logger.Fatalf("events publisher: %v", err)
		}
		defer publisher.Close()
		pub = publisher
	}

	checkoutSvc := checkout.NewService(database, productRepo, orderRepo, pub, logger)

	router := httpserver.NewRouter(
		httpserver.NewCartHandler(cartStore, productRepo),
		httpserver.NewCheckoutHandler(cartStore, checkoutSvc),
		httpserver.NewOrderHandler(orderRepo),
		httpserver.NewCatalogHandler(productRepo),
	)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		logger.Printf("storefront listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	logger.Println("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)
}
