package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"campus-ticketing/internal/auth"
	"campus-ticketing/internal/certificate"
	"campus-ticketing/internal/certificate/cert_api"
	"campus-ticketing/internal/config"
	events_db "campus-ticketing/internal/events/db"
	"campus-ticketing/internal/events/event_api"
	events "campus-ticketing/internal/events/service"
	"campus-ticketing/internal/kafka"
	"campus-ticketing/internal/logger"
	"campus-ticketing/internal/stats"
	"campus-ticketing/internal/stats/stats_api"
	"campus-ticketing/internal/storage"
	ticket_db "campus-ticketing/internal/tickets/db"
	ticket_qr "campus-ticketing/internal/tickets/qr"
	rediswrap "campus-ticketing/internal/tickets/redis"
	tickets "campus-ticketing/internal/tickets/service"
	"campus-ticketing/internal/tickets/template"
	"campus-ticketing/internal/tickets/ticket_api"
	users_db "campus-ticketing/internal/users/db"
	users "campus-ticketing/internal/users/service"
	"campus-ticketing/internal/users/user_api"
)

func verifyConnections(ctx context.Context, cfg *config.Config, log *logger.Logger) (*bun.DB, *redis.Client) {
	var sqldb *sql.DB
	var err error
	maxRetries := 5

	for i := 0; i < maxRetries; i++ {
		log.Info("DATABASE", fmt.Sprintf("Attempting to connect to PostgreSQL (attempt %d/%d)", i+1, maxRetries))
		sqldb, err = sql.Open("postgres", cfg.Database.DSN)
		if err != nil {
			log.Error("DATABASE", fmt.Sprintf("Failed to open PostgreSQL: %v", err))
			time.Sleep(2 * time.Second)
			continue
		}

		err = sqldb.Ping()
		if err == nil {
			break
		}

		log.Error("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL: %v", err))
		if i < maxRetries-1 {
			time.Sleep(2 * time.Second)
		}
	}

	if err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL after %d attempts: %v", maxRetries, err))
	}

	sqldb.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqldb.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqldb.SetConnMaxLifetime(cfg.Database.MaxLifetime)

	log.Info("DATABASE", "PostgreSQL connection successful")
	bunDB := bun.NewDB(sqldb, pgdialect.New())

	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.Redis.Addr,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Redis connection error: %v", err))
	}
	log.Info("DATABASE", fmt.Sprintf("Redis connection successful to %s", cfg.Redis.Addr))

	return bunDB, redisClient
}

func main() {
	log := logger.NewLogger()
	defer log.Close()

	log.Info("APP", "Starting Ticketing Service initialization")

	if err := godotenv.Load(); err != nil {
		log.Warn("CONFIG", ".env file not found, using environment variables")
	} else {
		log.Info("CONFIG", "Loaded environment variables from .env file")
	}

	cfg := config.Load()
	if cfg.Auth.JWTSecret == "" {
		log.Fatal("CONFIG", "JWT_SECRET not set")
	}

	ctx := context.Background()

	log.Info("APP", "Verifying database connections")
	bunDB, redisClient := verifyConnections(ctx, cfg, log)
	defer bunDB.Close()
	defer redisClient.Close()

	fileStore, err := storage.NewLocalStore(cfg.Storage.BaseDir)
	if err != nil {
		log.Fatal("STORAGE", fmt.Sprintf("Failed to initialize file store: %v", err))
	}

	var producer *kafka.Producer
	if cfg.Kafka.Enabled {
		topics := kafka.Topics{
			TicketRegistered:    cfg.Kafka.Topics.TicketRegistered,
			TicketStatusChanged: cfg.Kafka.Topics.TicketStatusChanged,
			TicketAttended:      cfg.Kafka.Topics.TicketAttended,
		}
		producer = kafka.NewProducer(cfg.Kafka.Brokers, topics)
		defer producer.Close()

		if err := kafka.EnsureTopicsExist(cfg.Kafka.Brokers, topics.All()); err != nil {
			log.Warn("KAFKA", fmt.Sprintf("Topic creation might have failed: %v", err))
		} else {
			log.Info("KAFKA", "Required topics ensured successfully")
		}
	} else {
		log.Warn("KAFKA", "Kafka disabled, lifecycle events will not be published")
	}

	tokenIssuer := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	verifyLock := rediswrap.NewLock(redisClient, cfg.Redis.VerifyLockTTL)

	ticketDB := &ticket_db.DB{Bun: bunDB}
	eventDB := &events_db.DB{Bun: bunDB}
	userDB := &users_db.DB{Bun: bunDB}

	var publisher tickets.KafkaPublisher
	if producer != nil {
		publisher = producer
	}

	ticketService := tickets.NewTicketService(ticketDB, eventDB, publisher, verifyLock, log)
	eventService := events.NewEventService(eventDB, fileStore, log)
	userService := users.NewUserService(userDB)
	statsService := stats.NewService(bunDB, redisClient, cfg.Redis.StatsCacheTTL)

	renderer := certificate.NewImageRenderer(cfg.Certificate.FontPath, cfg.Certificate.FontSize, cfg.Certificate.JPEGQuality)
	certService := certificate.NewService(ticketDB, fileStore, renderer, log, cfg.Storage.ReadTimeout)

	ticketHandler := &ticket_api.Handler{
		TicketService: ticketService,
		Store:         fileStore,
		QRGenerator:   ticket_qr.NewGenerator(),
		PDFGenerator:  template.NewTicketPDFGenerator(cfg.Certificate.FontPath),
		PublicURL:     cfg.Storage.PublicURL,
		Logger:        log,
	}
	eventHandler := &event_api.Handler{EventService: eventService, Logger: log}
	userHandler := &user_api.Handler{UserService: userService, TokenIssuer: tokenIssuer, Logger: log}
	statsHandler := &stats_api.Handler{Stats: statsService, Logger: log}
	certHandler := &cert_api.Handler{Certificates: certService, Logger: log}

	log.Info("HTTP", "Setting up router and middleware")
	r := chi.NewRouter()

	// --- Public Routes ---
	r.Route("/api", func(r chi.Router) {
		r.Post("/register", userHandler.Register)
		r.Post("/login", userHandler.Login)
		r.Get("/public-stats", statsHandler.PublicStats)
		// The listing runs with optional auth so an admin token can opt
		// into seeing completed events.
		r.With(auth.OptionalMiddleware(tokenIssuer)).Get("/events", eventHandler.List)
		r.Get("/events/{eventID}", eventHandler.Show)

		// --- Protected Routes ---
		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(tokenIssuer))

			r.Get("/me", userHandler.Me)
			r.Get("/my-tickets", ticketHandler.MyTickets)
			r.Post("/tickets", ticketHandler.Register)
			r.Get("/tickets/{ticketID}", ticketHandler.ViewTicket)
			r.Get("/tickets/{ticketID}/certificate", certHandler.Download)
			r.Get("/tickets/{ticketID}/qr", ticketHandler.TicketQR)
			r.Get("/tickets/{ticketID}/pdf", ticketHandler.TicketPDF)

			// --- Admin Routes ---
			r.Group(func(r chi.Router) {
				r.Use(auth.RequireAdmin)

				r.Post("/events", eventHandler.Create)
				r.Put("/events/{eventID}", eventHandler.Update)
				r.Delete("/events/{eventID}", eventHandler.Delete)
				r.Get("/events/{eventID}/tickets", ticketHandler.EventTickets)
				r.Put("/tickets/{ticketID}/status", ticketHandler.UpdateStatus)
				r.Post("/tickets/verify", ticketHandler.Verify)
			})
		})
	})
	log.Info("ROUTER", "API routes registered under /api")

	// Stored files (payment proofs, posters) are served as static assets.
	fileServer := http.StripPrefix("/storage/", http.FileServer(http.Dir(cfg.Storage.BaseDir)))
	r.Get("/storage/*", fileServer.ServeHTTP)

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("HTTP", fmt.Sprintf("Ticketing Service running on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	log.Info("APP", "Service started successfully, waiting for shutdown signal")
	<-stop

	log.Info("APP", "Shutdown signal received, initiating graceful shutdown")
	ctxShutdown, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Error("HTTP", fmt.Sprintf("Server Shutdown Failed: %v", err))
	} else {
		log.Info("HTTP", "Ticketing Service shutdown complete")
	}
}
