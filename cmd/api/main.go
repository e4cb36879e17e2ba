package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"

	"github.com/fpellegrini/habitus/internal/adapters/cache"
	adapterHTTP "github.com/fpellegrini/habitus/internal/adapters/handler/http"
	"github.com/fpellegrini/habitus/internal/adapters/repository"
	"github.com/fpellegrini/habitus/internal/core/domain"
	"github.com/fpellegrini/habitus/internal/core/services"
	"github.com/fpellegrini/habitus/internal/core/timeutil"
	"github.com/fpellegrini/habitus/internal/core/workers"
)

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	startTime := time.Now()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables.")
	}

	dbUser := os.Getenv("DB_USER")
	dbPass := os.Getenv("DB_PASSWORD")
	dbName := os.Getenv("DB_NAME")
	dbHost := getenv("DB_HOST", "localhost")
	dbPort := getenv("DB_PORT", "5432")
	serverPort := getenv("PORT", "8080")

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("Critical: JWT_SECRET is not set")
	}

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		dbUser, dbPass, dbHost, dbPort, dbName)

	log.Println("Connecting to database...")

	db, err := sqlx.Connect("pgx", dsn)
	if err != nil {
		log.Fatalf("Critical: Failed to connect to database: %v", err)
	}
	defer db.Close()

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	log.Println("Database connected successfully.")

	redisDB, _ := strconv.Atoi(getenv("REDIS_DB", "0"))
	redisClient, err := cache.NewRedisClient(
		getenv("REDIS_HOST", "localhost"),
		getenv("REDIS_PORT", "6379"),
		os.Getenv("REDIS_PASSWORD"),
		redisDB,
	)
	if err != nil {
		log.Printf("Redis unavailable, running without cache and rate limiting: %v", err)
		redisClient = nil
	}

	var goalRepo domain.GoalRepository = repository.NewPostgresGoalRepository(db)
	if redisClient != nil {
		goalRepo = repository.NewCachedGoalRepository(goalRepo, redisClient)
	}
	completionRepo := repository.NewPostgresCompletionRepository(db)
	userRepo := repository.NewPostgresUserRepository(db)

	clock := timeutil.SystemClock{}

	streakWorker := workers.NewStreakWorker(goalRepo, completionRepo, clock)

	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()
	streakWorker.Start(workerCtx)

	tokenService := services.NewTokenService(jwtSecret, getenv("JWT_ISSUER", "habitus"), 24*time.Hour, userRepo)
	authService := services.NewAuthService(userRepo, tokenService)
	goalService := services.NewGoalService(goalRepo)
	completionService := services.NewCompletionService(completionRepo, goalRepo, streakWorker)
	progressService := services.NewProgressService(goalRepo, completionRepo, clock)

	router := adapterHTTP.NewRouter(adapterHTTP.RouterDependencies{
		AuthHandler:       adapterHTTP.NewAuthHandler(authService),
		GoalHandler:       adapterHTTP.NewGoalHandler(goalService),
		CompletionHandler: adapterHTTP.NewCompletionHandler(completionService),
		ProgressHandler:   adapterHTTP.NewProgressHandler(progressService),
		TokenService:      tokenService,
		DB:                db,
		Redis:             redisClient,
		StartTime:         startTime,
	})

	srv := &http.Server{
		Addr:         ":" + serverPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Habitus API running on http://localhost:%s", serverPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Critical server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Stop signal received. Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Forced shutdown error:", err)
	}

	stopWorker()
	log.Println("Server stopped gracefully.")
}
