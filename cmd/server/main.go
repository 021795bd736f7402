package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/effective-orders/internal/cache"
	"github.com/nikolayk812/effective-orders/internal/config"
	"github.com/nikolayk812/effective-orders/internal/domain"
	"github.com/nikolayk812/effective-orders/internal/gateway/moneris"
	h "github.com/nikolayk812/effective-orders/internal/http"
	"github.com/nikolayk812/effective-orders/internal/notify"
	"github.com/nikolayk812/effective-orders/internal/port"
	"github.com/nikolayk812/effective-orders/internal/repository"
	"github.com/nikolayk812/effective-orders/internal/service"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configPath := flag.String("config", "", "optional config file")
	flag.Parse()

	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", "effective-orders").Logger()

	if err := run(*configPath, &logger); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}

func run(configPath string, logger *zerolog.Logger) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	*logger = logger.Level(level)

	settings, err := cfg.Settings()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := repository.RunMigrations(cfg.MigrationsDir, cfg.DatabaseURL); err != nil {
		return err
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	carts, err := repository.NewCart(pool)
	if err != nil {
		return err
	}
	orders, err := repository.NewOrder(pool)
	if err != nil {
		return err
	}
	products, err := repository.NewProduct(pool)
	if err != nil {
		return err
	}

	registry := service.NewRegistry()
	registry.Register(domain.ProductType, service.ProductLoader(products))

	var cartCache port.CartCache
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer client.Close()

		if cartCache, err = cache.NewRedisCartCache(client); err != nil {
			return err
		}
	}

	var notifier port.Notifier = notify.Nop{}
	if brokers := cfg.Brokers(); len(brokers) > 0 {
		writer := notify.NewWriter(cfg.KafkaTopic, brokers...)
		defer writer.Close()

		if notifier, err = notify.NewKafkaNotifier(writer, settings, logger); err != nil {
			return err
		}
	} else {
		logger.Warn().Msg("no kafka brokers configured, notifications are dropped")
	}

	verifier, err := moneris.NewHTTPVerifier(moneris.Config{
		VerifyURL: cfg.MonerisVerifyURL,
		StoreID:   cfg.MonerisStoreID,
		HPPKey:    cfg.MonerisHPPKey,
		Referer:   cfg.MonerisReferer,
		Timeout:   cfg.MonerisTimeout,
	}, logger)
	if err != nil {
		return err
	}

	cartService, err := service.NewCartService(carts, registry, cartCache, logger)
	if err != nil {
		return err
	}
	orderService, err := service.NewOrderService(orders, registry, notifier, settings, logger,
		service.WithProducts(products))
	if err != nil {
		return err
	}
	postback, err := service.NewMonerisPostback(orderService, verifier, logger)
	if err != nil {
		return err
	}

	router := h.NewRouter(h.RouterConfig{
		Carts:      cartService,
		Orders:     orderService,
		Postbacks:  postback,
		AdminToken: cfg.AdminToken,
		Logger:     logger,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go reclaimOrphans(ctx, cartService, cfg.CartReclaimInterval, logger)

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

func reclaimOrphans(ctx context.Context, carts *service.CartService, interval time.Duration, logger *zerolog.Logger) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := carts.ReclaimOrphans(ctx); err != nil {
				logger.Error().Err(err).Msg("orphaned carts not reclaimed")
			}
		case <-ctx.Done():
			return
		}
	}
}
