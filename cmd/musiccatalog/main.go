// cmd/musiccatalog/main.go
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"

	"musiccatalog/config"
	authhandlers "musiccatalog/internal/api/handlers/auth"
	"musiccatalog/internal/api/handlers/songs"
	"musiccatalog/internal/api/middleware"
	"musiccatalog/internal/lib/logger/utils"
	"musiccatalog/internal/mailer"
	"musiccatalog/internal/service"
	"musiccatalog/internal/storage/postgres"
	"musiccatalog/internal/token"
	_ "musiccatalog/swagger" // Import generated swagger docs

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5"
)

// @title Music Catalog API
// @version 1.0
// @description CRUD backend for a music catalog with a companion account service.

// @host localhost:8080
// @BasePath /
// @schemes http

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	if err := utils.InitLogger(); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer utils.Logger.Sync()

	utils.Logger.Info("Starting Music Catalog API")

	cfg, err := config.LoadConfig()
	if err != nil {
		utils.Logger.Fatal("Config load failed", zap.Error(err))
		return
	}
	utils.Logger.Debug("Configuration loaded", zap.Int("server_port", cfg.ServerPort))

	conn, err := pgx.Connect(context.Background(), cfg.DBURL)
	if err != nil {
		utils.Logger.Fatal("Database connection failed", zap.Error(err))
		return
	}
	defer conn.Close(context.Background())
	utils.Logger.Info("Database connected")

	if err := runMigrations(cfg.DBURL); err != nil {
		utils.Logger.Fatal("Database migration failed", zap.Error(err))
		return
	}
	utils.Logger.Info("Database migrations completed successfully")

	songStorage := postgres.NewPgSongStorage(conn)
	metadataStorage := postgres.NewPgMetadataStorage(conn)
	userStorage := postgres.NewPgUserStorage(conn)
	refreshStorage := postgres.NewPgRefreshTokenStorage(conn)

	tokens := token.NewManager(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	smtpMailer := mailer.NewMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom, cfg.BaseURL)

	metadataService := service.NewMetadataService(songStorage, metadataStorage)
	songService := service.NewSongService(songStorage, metadataService)
	authService := service.NewAuthService(userStorage, refreshStorage, tokens, smtpMailer)

	songHandlers := songs.NewSongHandlers(songService, metadataService)
	authHandlers := authhandlers.NewAuthHandlers(authService)

	router := mux.NewRouter()

	router.HandleFunc("/health", songHandlers.HealthCheckHandler).Methods("GET")
	router.HandleFunc("/songs", songHandlers.GetSongsHandler).Methods("GET")
	router.HandleFunc("/songs", songHandlers.AddSongHandler).Methods("POST")
	router.HandleFunc("/songs/{id}", songHandlers.GetSongHandler).Methods("GET")
	router.HandleFunc("/songs/{id}", songHandlers.UpdateSongHandler).Methods("PUT")
	router.HandleFunc("/songs/{id}", songHandlers.DeleteSongHandler).Methods("DELETE")
	router.HandleFunc("/filter", songHandlers.FilterSongsHandler).Methods("POST")
	router.HandleFunc("/bulk_create", songHandlers.BulkCreateHandler).Methods("POST")
	router.HandleFunc("/search", songHandlers.SearchSongsHandler).Methods("GET")
	router.HandleFunc("/metadata", songHandlers.GetMetadataHandler).Methods("GET")

	router.HandleFunc("/auth/register", authHandlers.RegisterHandler).Methods("POST")
	router.HandleFunc("/auth/login", authHandlers.LoginHandler).Methods("POST")
	router.HandleFunc("/auth/logout", authHandlers.LogoutHandler).Methods("POST")
	router.HandleFunc("/auth/verify-email", authHandlers.VerifyEmailHandler).Methods("GET")
	router.HandleFunc("/auth/verify-email-update", authHandlers.VerifyEmailUpdateHandler).Methods("GET")
	router.HandleFunc("/auth/forgot-password", authHandlers.ForgotPasswordHandler).Methods("POST")
	router.HandleFunc("/auth/reset-password", authHandlers.ResetPasswordHandler).Methods("POST")
	router.HandleFunc("/auth/verify-token", authHandlers.VerifyTokenHandler).Methods("POST")
	router.HandleFunc("/auth/refresh-token", authHandlers.RefreshTokenHandler).Methods("POST")

	profile := router.PathPrefix("/auth/profile").Subrouter()
	profile.Use(middleware.Auth(tokens))
	profile.HandleFunc("", authHandlers.GetProfileHandler).Methods("GET")
	profile.HandleFunc("", authHandlers.UpdateProfileHandler).Methods("PUT")
	profile.HandleFunc("", authHandlers.DeleteProfileHandler).Methods("DELETE")

	// Swagger documentation
	router.PathPrefix("/swagger/").Handler(httpSwagger.WrapHandler)

	serverAddr := fmt.Sprintf(":%d", cfg.ServerPort)
	utils.Logger.Info("Server starting", zap.String("address", serverAddr))
	log.Fatal(http.ListenAndServe(serverAddr, router))
}

func runMigrations(dbURL string) error {
	migrationSourceURL := "file://internal/migrations"
	m, err := migrate.New(migrationSourceURL, dbURL)
	if err != nil {
		return fmt.Errorf("failed to initialize migration: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
