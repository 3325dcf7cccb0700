package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nontawat/roombot/config"
	"github.com/nontawat/roombot/internal/bootstrap"
	"github.com/nontawat/roombot/internal/cache"
	"github.com/nontawat/roombot/internal/catalog"
	"github.com/nontawat/roombot/internal/kafka"
	"github.com/nontawat/roombot/internal/repository"
	"github.com/nontawat/roombot/internal/service/booking"
	"github.com/nontawat/roombot/internal/service/session"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rooms := catalog.New(cfg.Rooms)

	var bookingRepo repository.BookingRepository
	if cfg.Database.Host != "" {
		pool, err := pgxpool.New(ctx, cfg.Database.DSN())
		if err != nil {
			log.Fatalf("connect postgres: %v", err)
		}
		defer pool.Close()
		bookingRepo = repository.NewBookingRepository(pool)
	} else {
		log.Printf("no database configured, bookings are in-memory")
		bookingRepo = repository.NewMemoryBookingRepository()
	}

	opts := []booking.BookingServiceOption{}
	if cfg.Redis.Addr != "" {
		redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Booking.ScheduleCacheTTL)*time.Second)
		opts = append(opts, booking.WithCache(redisCache))
	}
	if len(cfg.Kafka.Brokers) > 0 {
		producer := kafka.NewProducer(cfg.Kafka.Brokers)
		defer producer.Close()
		opts = append(opts, booking.WithProducer(producer, cfg.Kafka.BookingTopic))
		if cfg.Kafka.NotificationsTopic != "" {
			opts = append(opts, booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic))
		}
	}

	bookingService := booking.NewBookingService(
		bookingRepo,
		rooms,
		time.Duration(cfg.Booking.SlotHoldTTLMinutes)*time.Minute,
		opts...,
	)
	sessions := session.NewEngine(bookingService, rooms)

	// Abandoned sessions must not keep their slot holds alive.
	sweep := time.Duration(cfg.Worker.SessionSweepMinutes) * time.Minute
	if sweep <= 0 {
		sweep = time.Minute
	}
	sessionTTL := time.Duration(cfg.Booking.SessionTTLMinutes) * time.Minute
	if sessionTTL <= 0 {
		sessionTTL = 15 * time.Minute
	}
	go func() {
		ticker := time.NewTicker(sweep)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if n := sessions.ExpireIdle(ctx, sessionTTL); n > 0 {
					log.Printf("expired %d idle sessions", n)
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	if err := bootstrap.Run(ctx, cfg, rooms, bookingService, sessions); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
