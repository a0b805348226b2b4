// config/config.go
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DBURL      string
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	ServerPort int
	BaseURL    string

	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
}

func LoadConfig() (*Config, error) {
	godotenv.Load()

	serverPortStr := os.Getenv("SERVER_PORT")
	serverPort, err := strconv.Atoi(serverPortStr)
	if err != nil {
		serverPort = 8080
	}

	baseURL := os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = fmt.Sprintf("http://localhost:%d", serverPort)
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		dbHost := os.Getenv("DB_HOST")
		dbPortStr := os.Getenv("DB_PORT")
		var dbPort int
		dbPort, err = strconv.Atoi(dbPortStr)
		if err != nil {
			dbPort = 5432
		}
		dbUser := os.Getenv("DB_USER")
		dbPassword := os.Getenv("DB_PASSWORD")
		dbName := os.Getenv("DB_NAME")

		dbURL = fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable", dbUser, dbPassword, dbHost, dbPort, dbName)
	}

	parsedDBURL, err := url.Parse(dbURL)
	if err != nil {
		return nil, err
	}

	dbHost := parsedDBURL.Hostname()
	dbPortParsed, _ := strconv.Atoi(parsedDBURL.Port())
	dbUser := parsedDBURL.User.Username()
	dbPassword, _ := parsedDBURL.User.Password()
	dbName := strings.TrimPrefix(parsedDBURL.Path, "/")

	jwtSecret := os.Getenv("JWT_SECRET")

	accessTTL := durationFromEnv("ACCESS_TOKEN_TTL_MINUTES", 15*time.Minute)
	refreshTTL := durationFromEnv("REFRESH_TOKEN_TTL_MINUTES", 7*24*time.Hour)

	smtpPortStr := os.Getenv("SMTP_PORT")
	smtpPort, err := strconv.Atoi(smtpPortStr)
	if err != nil {
		smtpPort = 587
	}

	return &Config{
		DBURL:           dbURL,
		DBHost:          dbHost,
		DBPort:          dbPortParsed,
		DBUser:          dbUser,
		DBPassword:      dbPassword,
		DBName:          dbName,
		ServerPort:      serverPort,
		BaseURL:         baseURL,
		JWTSecret:       jwtSecret,
		AccessTokenTTL:  accessTTL,
		RefreshTokenTTL: refreshTTL,
		SMTPHost:        os.Getenv("SMTP_HOST"),
		SMTPPort:        smtpPort,
		SMTPUsername:    os.Getenv("SMTP_USERNAME"),
		SMTPPassword:    os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:        os.Getenv("SMTP_FROM"),
	}, nil
}

func durationFromEnv(key string, fallback time.Duration) time.Duration {
	minutes, err := strconv.Atoi(os.Getenv(key))
	if err != nil || minutes <= 0 {
		return fallback
	}
	return time.Duration(minutes) * time.Minute
}
