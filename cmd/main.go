package main

import (
	"context"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/evroutex/fleet-dispatch/internal/assign"
	"github.com/evroutex/fleet-dispatch/internal/auth"
	"github.com/evroutex/fleet-dispatch/internal/config"
	"github.com/evroutex/fleet-dispatch/internal/handlers"
	"github.com/evroutex/fleet-dispatch/internal/ingest"
	"github.com/evroutex/fleet-dispatch/internal/middleware"
	"github.com/evroutex/fleet-dispatch/internal/registry"
	"github.com/evroutex/fleet-dispatch/internal/store"
	"github.com/evroutex/fleet-dispatch/internal/view"
)

// main is the application composition root. It picks a store backend,
// wires the services behind it and starts the HTTP server plus the
// optional MQTT telemetry ingestor.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Info("No .env file found (using environment variables)")
	}

	cfg := config.Load()

	st, err := buildStore(cfg)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize store")
	}

	sessions := auth.NewSessionTable()
	reg := registry.New(st)
	authService := auth.NewService(cfg.JWTSecret, cfg.TokenExpiry, st, reg, sessions)
	engine := assign.NewEngine(st)
	driverView := view.New(st, sessions)

	if cfg.MQTTBroker != "" {
		ingestor := ingest.NewIngestor(cfg.MQTTBroker, "fleet-dispatch-server", cfg.MQTTTopic, sessions)
		if err := ingestor.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start telemetry ingestion")
		}
		defer ingestor.Stop()
	}

	router := handlers.NewRouter(
		handlers.NewAuthHandler(authService),
		&handlers.AssignHandler{Engine: engine, Timeout: cfg.AssignTimeout},
		&handlers.DriverHandler{View: driverView},
		&handlers.AdminHandler{View: driverView},
		middleware.NewAuthMiddleware(authService),
		middleware.NewRateLimiter(30, time.Minute),
	)

	log.WithFields(log.Fields{
		"port":  cfg.Port,
		"admin": cfg.AdminUsername,
	}).Info("Fleet dispatch starting")

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      2 * cfg.AssignTimeout,
		IdleTimeout:       60 * time.Second,
	}
	log.Fatal(srv.ListenAndServe())
}

func buildStore(cfg *config.Config) (store.Store, error) {
	bootstrap := store.Bootstrap{
		AdminUsername: cfg.AdminUsername,
		AdminPassword: cfg.AdminPassword,
	}

	if cfg.MongoURI == "" {
		log.WithField("path", cfg.DataFile).Info("Using file-backed store")
		return store.NewFileStore(cfg.DataFile, bootstrap), nil
	}

	client, err := store.ConnectMongo(context.Background(), cfg.MongoURI)
	if err != nil {
		return nil, err
	}
	log.Info("Using MongoDB-backed store")
	collection := client.Database(cfg.MongoDatabase).Collection("state")
	return store.NewMongoStore(collection, bootstrap), nil
}
