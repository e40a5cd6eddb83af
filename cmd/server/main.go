package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"consignhub/backend/internal/cache"
	"consignhub/backend/internal/config"
	"consignhub/backend/internal/httpapi"
	"consignhub/backend/internal/lock"
	"consignhub/backend/internal/logging"
	"consignhub/backend/internal/service"
	"consignhub/backend/internal/store"
	"consignhub/backend/internal/store/memory"
	"consignhub/backend/internal/store/sqlstore"
)

func main() {
	cfg := config.Load()
	logging.Configure(cfg.LogLevel, cfg.LogFormat)
	log := logging.Component("server")

	if err := validateSecurityConfig(cfg); err != nil {
		log.WithError(err).Fatal("invalid security configuration")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	var repo store.Repository
	closers := make([]func() error, 0, 2)

	if cfg.DatabaseURL != "" {
		db, err := sqlstore.Open(ctx, sqlstore.Dialect(cfg.DatabaseDriver), cfg.DatabaseURL)
		if err != nil {
			log.WithError(err).WithField("driver", cfg.DatabaseDriver).
				Fatal("database unavailable and DATABASE_URL is set; refusing to start with in-memory fallback")
		}
		if err := db.Migrate(ctx); err != nil {
			log.WithError(err).Fatal("database migration failed")
		}
		if err := bootstrapShop(ctx, db, cfg, time.Now().UTC()); err != nil {
			log.WithError(err).Fatal("shop bootstrap failed")
		}
		repo = db
		closers = append(closers, db.Close)
		log.WithField("driver", cfg.DatabaseDriver).Info("repository: sql")
	} else {
		repo = memory.NewSeeded()
		log.Info("repository: in-memory")
	}

	var metricsCache cache.MetricsCache = cache.NewMemoryMetricsCache()
	var locker lock.Locker = lock.NewLocalLocker()
	if cfg.RedisAddr != "" {
		client := cache.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		redisCache := cache.NewRedisMetricsCache(client)
		if err := redisCache.Ping(ctx); err != nil {
			log.WithError(err).Warn("redis unavailable, using in-process cache and locks")
			_ = redisCache.Close()
		} else {
			metricsCache = redisCache
			locker = lock.NewRedisLocker(client)
			closers = append(closers, redisCache.Close)
			log.Info("cache: redis")
		}
	} else {
		log.Warn("REDIS_ADDR not set, using in-process cache and locks; run a single instance only")
	}

	svc := service.New(repo, metricsCache, locker, service.Options{
		MetricsTTL:  time.Duration(cfg.MetricsCacheTTLSeconds) * time.Second,
		PhoneRegion: cfg.DefaultPhoneRegion,
		CodeSeed:    cfg.CodeSeed,
	})
	auth := httpapi.NewAuthManager(cfg.AuthSecret, time.Duration(cfg.AccessTokenTTLMinutes)*time.Minute, cfg.ManagerPIN, repo)
	api := httpapi.New(svc, auth, cfg.AllowedOrigin)

	server := &http.Server{
		Addr:              cfg.Address(),
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.WithField("addr", cfg.Address()).Info("consignment backend listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server error")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logging.LogError("server", "main", "shutdown", nil, err)
	}

	for _, closeFn := range closers {
		if err := closeFn(); err != nil {
			logging.LogError("server", "main", "close resource", nil, err)
		}
	}

	log.Info("server stopped")
}

func validateSecurityConfig(cfg config.Config) error {
	if len(cfg.AuthSecret) < 32 {
		return fmt.Errorf("AUTH_SECRET must be set and at least 32 characters")
	}
	if len(cfg.ManagerPIN) < 6 {
		return fmt.Errorf("MANAGER_PIN must be set and at least 6 digits")
	}
	if err := validatePINStrength(cfg.ManagerPIN); err != nil {
		return fmt.Errorf("MANAGER_PIN is too weak: %w", err)
	}
	return nil
}

// validatePINStrength rejects PINs that are all one digit, run in sequence
// or appear on a short list of common choices.
func validatePINStrength(pin string) error {
	for _, r := range pin {
		if r < '0' || r > '9' {
			return fmt.Errorf("PIN must contain digits only")
		}
	}

	common := map[string]bool{
		"123456": true, "654321": true, "121212": true,
		"112233": true, "123123": true, "696969": true,
	}
	if common[pin] {
		return fmt.Errorf("common PIN not allowed")
	}

	allSame := true
	for i := 1; i < len(pin); i++ {
		if pin[i] != pin[0] {
			allSame = false
			break
		}
	}
	if allSame {
		return fmt.Errorf("all-same-digit PIN not allowed")
	}

	ascending, descending := true, true
	for i := 1; i < len(pin); i++ {
		diff := int(pin[i]) - int(pin[i-1])
		if diff != 1 {
			ascending = false
		}
		if diff != -1 {
			descending = false
		}
	}
	if ascending || descending {
		return fmt.Errorf("sequential PIN not allowed")
	}
	return nil
}
