package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"lumira/internal/app"
	"lumira/internal/config"
	"lumira/internal/identity"
	"lumira/internal/ratelimit"
	"lumira/internal/server"
	"lumira/internal/util"
	"lumira/pkg/ai"
	"lumira/pkg/events"
	"lumira/pkg/speech"
	"lumira/pkg/storage"
	"lumira/pkg/store"
)

func main() {
	cfg, err := config.Load(config.ConfigPath)
	if err != nil {
		util.Fatal("load config", "err", err)
	}
	logger := util.InitLogger(cfg.LogLevel)

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	defer redisClient.Close()

	resolver := identity.NewResolver(identity.NewClient(cfg.IdentityProviderURL), redisClient, 0)

	geminiClient, err := ai.NewGeminiClient(cfg.GeminiAPIKey)
	if err != nil {
		util.Fatal("init gemini client", "err", err)
	}
	generator := ai.NewGeminiNarrativeGenerator(geminiClient, ai.NewImageFetcher(cfg.MaxImageBytes), cfg.GenerationModel)

	var synthesizer speech.Synthesizer
	var artifacts storage.ArtifactStore
	if cfg.AudioEnabled() {
		elevenLabs, err := speech.NewElevenLabsClient(cfg.ElevenLabsAPIKey, cfg.SpeechModel)
		if err != nil {
			util.Fatal("init speech client", "err", err)
		}
		minioStore, err := storage.NewMinioStore(storage.MinioConfig{
			Endpoint:      cfg.MinioEndpoint,
			AccessKey:     cfg.MinioAccessKey,
			SecretKey:     cfg.MinioSecretKey,
			Bucket:        cfg.MinioBucket,
			UseSSL:        cfg.MinioUseSSL,
			PublicBaseURL: cfg.MinioPublicBaseURL,
		})
		if err != nil {
			util.Fatal("init object store", "err", err)
		}
		synthesizer = elevenLabs
		artifacts = minioStore
	} else {
		logger.Info("audio branch disabled, serving text-only readings")
	}

	gormStore, err := store.NewGormStore(cfg.DatabaseURL)
	if err != nil {
		util.Fatal("init database", "err", err)
	}

	var publisher events.Publisher
	if cfg.RabbitURL != "" {
		rabbit, err := events.NewRabbitPublisher(cfg.RabbitURL)
		if err != nil {
			util.Fatal("init event publisher", "err", err)
		}
		defer rabbit.Close()
		publisher = rabbit
	}

	application, err := app.New(app.Config{
		Identity:  resolver,
		Generator: generator,
		Speech:    synthesizer,
		Artifacts: artifacts,
		Store:     gormStore,
		Events:    publisher,
	})
	if err != nil {
		util.Fatal("init app", "err", err)
	}

	var limiter *ratelimit.FixedWindowLimiter
	if cfg.CreateRateLimitPerMinute > 0 {
		limiter, err = ratelimit.NewFixedWindowLimiter(redisClient, "lumira:ratelimit:create", cfg.CreateRateLimitPerMinute, time.Minute)
		if err != nil {
			util.Fatal("init rate limiter", "err", err)
		}
	}

	srv, err := server.New(server.Config{
		App:            application,
		Identity:       resolver,
		CreateLimiter:  limiter,
		TrustForwarded: cfg.TrustForwardedHeaders,
	})
	if err != nil {
		util.Fatal("init server", "err", err)
	}

	httpServer := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: srv.Router(),
		// Reading generation is slow; the write timeout must cover the
		// full pipeline.
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 180 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("reading service listening", "port", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			util.Fatal("http server", "err", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "err", err)
	}
	logger.Info("server stopped")
}
