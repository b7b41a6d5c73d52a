/**
 * @description
 * This is the main entry point for the GULL backend. It is responsible
 * for initializing all components of the service: configuration, the
 * database connection pool, the Redis-backed session store, the RabbitMQ
 * change-event producer, the in-process SSE broker, the session manager,
 * the ledger service, and the HTTP server. It wires everything together
 * and starts the service.
 *
 * @dependencies
 * - log, net/http: Standard Go libraries for logging and HTTP server functionality.
 * - github.com/go-chi/chi/v5: For HTTP routing.
 * - github.com/jackc/pgx/v5: PostgreSQL driver.
 * - github.com/redis/go-redis/v9: Session persistence.
 * - internal/api, internal/app, internal/config, internal/session, internal/store: Internal packages.
 * - pkg/events: Change-event publication.
 */

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/farazahmedph003/gull-backend/internal/api"
	"github.com/farazahmedph003/gull-backend/internal/app"
	"github.com/farazahmedph003/gull-backend/internal/config"
	"github.com/farazahmedph003/gull-backend/internal/session"
	"github.com/farazahmedph003/gull-backend/internal/store"
	"github.com/farazahmedph003/gull-backend/pkg/events"
)

func main() {
	// Load the optional .env file before viper reads the environment.
	if err := godotenv.Load(); err == nil {
		log.Println("level=info component=bootstrap msg=\".env file loaded\"")
	}

	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("level=fatal component=bootstrap msg=\"config load failed\" err=%v", err)
	}
	if strings.TrimSpace(cfg.JWTSecret) == "" {
		log.Fatalf("level=fatal component=bootstrap msg=\"jwt secret must be configured\" env=JWT_SECRET")
	}

	log.Printf("level=info component=bootstrap msg=\"starting gull-backend\" port=%s offline=%t", cfg.ServerPort, cfg.OfflineMode)

	databaseURL := cfg.DatabaseURL
	if strings.TrimSpace(databaseURL) == "" {
		if !cfg.OfflineMode {
			log.Fatalf("level=fatal component=bootstrap msg=\"database url must be configured\" env=DATABASE_URL")
		}
		// Offline mode tolerates a missing database; data endpoints will
		// surface backend-unavailable errors until one is configured.
		log.Println("level=warn component=bootstrap msg=\"no database url; data operations degraded\" env=DATABASE_URL")
		databaseURL = "postgres://localhost:5432/gull"
	}

	poolConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		log.Fatalf("level=fatal component=bootstrap msg=\"database url parse failed\" err=%v", err)
	}

	poolConfig.MaxConns = 50
	poolConfig.MinConns = 5
	poolConfig.MaxConnLifetime = 30 * time.Minute
	poolConfig.MaxConnIdleTime = 5 * time.Minute

	// Disable prepared statement caching to prevent conflicts behind poolers.
	poolConfig.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

	dbpool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		log.Fatalf("level=fatal component=bootstrap msg=\"database pool init failed\" err=%v", err)
	}
	defer dbpool.Close()
	log.Println("level=info component=bootstrap msg=\"database pool ready\"")

	// Session persistence: Redis when reachable, in-memory otherwise.
	sessionTTL := time.Duration(cfg.SessionTTLHours) * time.Hour
	var sessionStore session.Store
	if strings.TrimSpace(cfg.RedisURL) == "" {
		log.Println("level=warn component=bootstrap msg=\"redis url missing; sessions will not survive restarts\" env=REDIS_URL")
		sessionStore = session.NewMemoryStore()
	} else {
		redisOptions, parseErr := redis.ParseURL(cfg.RedisURL)
		if parseErr != nil {
			log.Printf("level=warn component=bootstrap msg=\"redis url parse failed; using in-memory sessions\" err=%v", parseErr)
			sessionStore = session.NewMemoryStore()
		} else {
			redisClient := redis.NewClient(redisOptions)
			pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
			pingErr := redisClient.Ping(pingCtx).Err()
			cancelPing()
			if pingErr != nil {
				log.Printf("level=warn component=bootstrap msg=\"redis ping failed; using in-memory sessions\" err=%v", pingErr)
				redisClient.Close()
				sessionStore = session.NewMemoryStore()
			} else {
				defer redisClient.Close()
				log.Println("level=info component=bootstrap msg=\"redis connected\"")
				sessionStore = session.NewRedisStore(redisClient, cfg.SessionKeyPrefix, sessionTTL)
			}
		}
	}

	// Change events go to RabbitMQ (for external consumers) and to the
	// in-process broker (for the SSE feed).
	broker := events.NewBroker()
	var producer events.Publisher
	if strings.TrimSpace(cfg.RabbitMQURL) == "" {
		log.Println("level=warn component=bootstrap msg=\"rabbitmq url missing; using fallback publisher\" env=RABBITMQ_URL")
		producer = &events.FallbackPublisher{}
	} else {
		rabbitProducer, rerr := events.NewEventProducer(cfg.RabbitMQURL)
		if rerr != nil {
			log.Printf("level=warn component=bootstrap msg=\"rabbitmq producer unavailable; using fallback\" err=%v", rerr)
			producer = &events.FallbackPublisher{}
		} else {
			log.Println("level=info component=bootstrap msg=\"rabbitmq producer connected\"")
			producer = rabbitProducer
		}
	}
	publisher := &events.Fanout{Publishers: []events.Publisher{producer, broker}}
	defer publisher.Close()

	repository := store.NewPostgresRepository(dbpool)

	sessions := app.NewSessionManager(repository, sessionStore, cfg.JWTSecret, sessionTTL)
	if cfg.OfflineMode {
		sessions.EnableOfflineMode(cfg.OfflineAdminUsername, cfg.OfflineAdminPassword)
	}

	groupWindow := time.Duration(cfg.DeductionGroupMS) * time.Millisecond
	ledgerService := app.NewService(repository, publisher, groupWindow)

	handlers := api.NewHandlers(sessions, ledgerService, broker)
	router := api.Routes(handlers, sessions.SigningKey(), cfg.CORSAllowedOrigins)

	serverAddr := fmt.Sprintf(":%s", cfg.ServerPort)
	log.Printf("level=info component=http msg=\"server listening\" addr=%s", serverAddr)

	server := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("level=fatal component=http msg=\"server stopped unexpectedly\" err=%v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Println("level=info component=http msg=\"shutdown started\"")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("level=error component=http msg=\"shutdown failed\" err=%v", err)
	}

	log.Println("level=info component=http msg=\"shutdown complete\"")
}
