// cmd/livesvc/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/httprate"
	log "github.com/sirupsen/logrus"

	config "github.com/bingovivo/live-services/configs"
	"github.com/bingovivo/live-services/internal/backend"
	"github.com/bingovivo/live-services/internal/livesvc/broker"
	"github.com/bingovivo/live-services/internal/livesvc/db"
	"github.com/bingovivo/live-services/internal/livesvc/game"
	handlers "github.com/bingovivo/live-services/internal/livesvc/handlers"
	"github.com/bingovivo/live-services/internal/livesvc/presence"
	"github.com/bingovivo/live-services/internal/livesvc/service"
	"github.com/bingovivo/live-services/internal/livesvc/store"
	natscli "github.com/bingovivo/live-services/internal/nats"
)

const SERVICE_NAME = "live"

var instanceId string

func init() {
	instanceId = config.CreateUniqueInstance(SERVICE_NAME)
	config.Logging(SERVICE_NAME + "_service_" + instanceId)
	config.LoadEnv(SERVICE_NAME)
}

func main() {
	// pg connection
	dbpool, err := db.Connect()
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer db.ClosePool()
	log.Printf("pg connection established successfully")

	callStore := store.NewCallStore(dbpool)
	callService := service.NewCallService(callStore)

	claimStore := store.NewClaimStore(dbpool)
	claimService := service.NewClaimService(claimStore)

	// presence heartbeats live in mongo with a TTL index
	var pres *presence.Store
	if os.Getenv("MONGODB_URI") != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		pres, err = presence.Connect(ctx, 45*time.Second)
		cancel()
		if err != nil {
			log.Fatalf("Failed to connect to presence store: %v", err)
		}
		log.Printf("presence store connected successfully")
	} else {
		log.Warn("MONGODB_URI not set, presence tracking disabled")
	}

	// Connect to NATS
	n, err := natscli.Connect(SERVICE_NAME)
	if err != nil {
		log.Errorf("Error: unable to connect to NATS server %v", err)
		os.Exit(0)
	}
	defer n.Conn.Close()
	log.Printf("NATS connection established successfully %s", n.Url)

	// the engine: backend-loaded sessions, pg-persisted call history
	registry := game.NewRegistry(backend.NewClient(), callService, game.DefaultCallInterval)
	defer registry.Close()

	// init player message broker
	b := broker.NewBroker(n.Conn, registry, claimService, pres)

	// subscribe to socket service
	topic := "socket.service"
	sub, err := b.SubscribeSocketService(topic)
	if err != nil {
		log.Errorf("Error: unable to subscribe to queue %v", err)
		os.Exit(0)
	}

	// Setup router
	r := chi.NewRouter()
	c := config.CORS()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(config.CustomLoggerMiddleware())
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(c.Handler)

	// to protect the service api from any over requests
	rateLimitStr := os.Getenv("RATE_LIMIT")
	rateLimit, err := strconv.Atoi(rateLimitStr)
	if err != nil {
		log.Fatalf("Invalid RATE_LIMIT value: %v", err)
	}
	r.Use(httprate.LimitByIP(rateLimit, 1*time.Minute))

	// Init handlers and routes
	h := handlers.NewHandler(registry, claimService)
	h.InitAuth()
	h.SetRoutes(r)

	// Create server with timeout settings
	server := &http.Server{
		Addr:         ":" + os.Getenv("LIVE_SERVICE_PORT"),
		Handler:      r,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe(): %v", err)
		}
	}()
	log.Infof("%s service running at port %s", SERVICE_NAME, server.Addr)

	// Wait for interrupt signal to gracefully shutdown the server
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop

	sub.Unsubscribe()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("%s service shutdown Failed:%+v", SERVICE_NAME, err)
	}
	log.Infof("%s service gracefully stopped", SERVICE_NAME)
}
