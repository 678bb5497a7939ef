package main // Entry point package

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/adilyam/show-reservation/internal/config"
	"github.com/adilyam/show-reservation/internal/database"
	"github.com/adilyam/show-reservation/internal/engine"
	"github.com/adilyam/show-reservation/internal/handler"
	"github.com/adilyam/show-reservation/internal/hub"
	"github.com/adilyam/show-reservation/internal/ledger"
	"github.com/adilyam/show-reservation/internal/middleware"
	"github.com/adilyam/show-reservation/internal/queue"
	"github.com/adilyam/show-reservation/internal/repository"
	"github.com/adilyam/show-reservation/internal/router"
)

func main() {
	_ = godotenv.Load() // .env is optional; real deployments set the environment directly
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database connect failed: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := repository.EnsureSchema(ctx, db); err != nil {
		log.Fatalf("schema setup failed: %v", err)
	}

	showRepo := repository.NewShowRepo(db)
	bookingRepo := repository.NewBookingRepo(db)

	if cfg.Seed {
		if err := repository.Seed(ctx, showRepo); err != nil {
			log.Fatalf("seed failed: %v", err)
		}
	}

	// The catalog feeds the ledger once at startup; from here on the
	// ledger's in-memory state is authoritative and the database only
	// mirrors it.
	shows, held, err := showRepo.LoadAll(ctx)
	if err != nil {
		log.Fatalf("catalog load failed: %v", err)
	}
	states := make([]ledger.ShowState, 0, len(shows))
	for _, s := range shows {
		states = append(states, ledger.ShowState{Show: s, Held: held[s.ID]})
	}
	led := ledger.New(states)
	defer led.Close()
	log.Printf("ledger: %d shows loaded", len(shows))

	preload, err := bookingRepo.ListRecent(ctx, cfg.BookingsPreload)
	if err != nil {
		log.Fatalf("bookings preload failed: %v", err)
	}

	liveHub := hub.New()
	publisher := queue.NewPublisher(cfg.RabbitURL)

	eng := engine.New(led, shows, bookingRepo,
		engine.Notifiers{liveHub, publisher},
		engine.WithReconciler(publisher),
		engine.WithSubscriberCounter(liveHub.Count),
		engine.WithBookings(preload),
	)

	// Bookings whose write-through failed land on the reconcile queue;
	// this consumer retries them until the catalog catches up.
	go queue.StartReconcileConsumer(cfg.RabbitURL, bookingRepo)

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable, booking rate limit disabled")
	}
	bookLimiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

	e := echo.New()
	e.HideBanner = true
	router.RegisterRoutes(e,
		handler.NewReservationHandler(eng),
		handler.NewAdminHandler(eng),
		handler.NewEventsHandler(liveHub),
		bookLimiter,
	)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
