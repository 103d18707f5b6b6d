package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/sdegypt/diychach/internal/api"
	"github.com/sdegypt/diychach/internal/config"
	"github.com/sdegypt/diychach/internal/database"
	"github.com/sdegypt/diychach/internal/maintenance"
	"github.com/sdegypt/diychach/internal/server"
	"github.com/sdegypt/diychach/internal/stats"
)

const defaultSigningKey = "wT0phFUusHZIrDhL9bUKPUhwaxKhpi/SaI6PtgB+MgU="

type stringSliceFlag []string

func (s *stringSliceFlag) String() string {
	return strings.Join(*s, ",")
}

func (s *stringSliceFlag) Set(value string) error {
	*s = append(*s, strings.Split(value, ",")...)
	return nil
}

func envDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

var (
	addr           string
	dsn            string
	signingKey     string
	timezone       string
	adRetention    time.Duration
	allowedOrigins stringSliceFlag
)

func main() {
	// flags fall back to .env values when present
	if err := godotenv.Load(); err != nil {
		log.Println("godotenv: no .env file loaded")
	}

	flag.StringVar(&addr, "addr", envDefault("SERVER_ADDR", "localhost:8080"), "server address")
	flag.StringVar(&dsn, "dsn", envDefault("DATABASE_DSN", "host=localhost user=postgres password=postgres dbname=postgres sslmode=disable"), "database connection string")
	flag.StringVar(&signingKey, "signing-key", envDefault("SIGNING_KEY", defaultSigningKey), "base64 encoded signing key")
	flag.StringVar(&timezone, "timezone", envDefault("MAINTENANCE_TZ", "Asia/Riyadh"), "timezone for scheduled maintenance")
	flag.DurationVar(&adRetention, "ad-retention", 30*24*time.Hour, "age beyond which forum ads are purged")
	flag.Var(&allowedOrigins, "allowed-origins", "comma-separated list of allowed origins for CORS")
	flag.Parse()

	logger := log.New(os.Stderr, "[diychach] ", log.LstdFlags)

	cfg, err := config.NewConfig(addr, dsn, signingKey, allowedOrigins, adRetention, timezone)
	if err != nil {
		logger.Fatal("config:", err)
	}

	dbConn, err := database.NewPgRepository(cfg.DatabaseDSN)
	if err != nil {
		logger.Fatal("db open:", err)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Fatal("db close:", err)
		}
	}()

	if err := dbConn.Migrate(); err != nil {
		logger.Fatal("db migrate:", err)
	}

	mux := http.NewServeMux()

	statsUpdater := stats.NewStatsUpdater(mux)

	chatServer, err := server.NewChatServer(logger, dbConn, statsUpdater)
	if err != nil {
		logger.Fatal("new chat server:", err)
	}

	task, err := maintenance.NewTask(logger, dbConn, statsUpdater, cfg.AdRetention, cfg.Timezone)
	if err != nil {
		logger.Fatal("maintenance task:", err)
	}

	srv := api.NewApp(mux, logger, chatServer, dbConn, statsUpdater, cfg)

	statsUpdater.Run()
	defer statsUpdater.Stop()

	go chatServer.Run()
	task.Start()
	defer task.Stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigs:
		logger.Printf("received signal: %s\n", sig)
	case err := <-errCh:
		logger.Println("server:", err)
	}

	shutDownCtx, cancel := context.WithTimeout(
		context.Background(),
		10*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutDownCtx); err != nil {
		logger.Fatalln("HTTP server shutdown:", err)
	}

	logger.Println("shutting down chat server...")
	if err := chatServer.Shutdown(shutDownCtx); err != nil {
		logger.Fatalln("chat server shutdown:", err)
	}

	logger.Println("shutdown complete")
}
