package newsletter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/magabrotheeeer/newsletter/internal/cache"
	"github.com/magabrotheeeer/newsletter/internal/config"
	"github.com/magabrotheeeer/newsletter/internal/emailclient"
	"github.com/magabrotheeeer/newsletter/internal/lib/sl"
	"github.com/magabrotheeeer/newsletter/internal/metrics"
	"github.com/magabrotheeeer/newsletter/internal/migrations"
	"github.com/magabrotheeeer/newsletter/internal/models"
	"github.com/magabrotheeeer/newsletter/internal/rabbitmq"
	senderservice "github.com/magabrotheeeer/newsletter/internal/services/sender"
	subservice "github.com/magabrotheeeer/newsletter/internal/services/subscription"
	"github.com/magabrotheeeer/newsletter/internal/storage/repository"
	schema "github.com/magabrotheeeer/newsletter/migrations"
)

const shutdownTimeout = 15 * time.Second

// App HTTP-приложение рассылки со всеми зависимостями.
type App struct {
	server  *http.Server
	logger  *slog.Logger
	db      *repository.Storage
	closers []io.Closer
}

// New подключается к хранилищам, накатывает миграции и собирает маршруты.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.newsletter.New"

	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	app := &App{logger: logger, db: db}

	if err = migrations.Run(db.DB, schema.FS); err != nil {
		app.close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = repository.CheckDatabaseReady(ctx, db); err != nil {
		app.close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	senderEmail, err := models.ParseSubscriberEmail(cfg.SenderEmail)
	if err != nil {
		app.close()
		return nil, fmt.Errorf("%s: sender email: %w", op, err)
	}
	transport, err := newTransport(ctx, cfg.EmailClient)
	if err != nil {
		app.close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	senderService, err := senderservice.NewSenderService(transport, senderEmail, logger)
	if err != nil {
		app.close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	confirmedCache, err := app.newCache(ctx, cfg.RedisConnection)
	if err != nil {
		app.close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	publisher, err := app.newPublisher(cfg.RabbitMQ)
	if err != nil {
		app.close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	subscriptionService := subservice.NewSubscriptionService(
		db,
		senderService,
		confirmedCache,
		publisher,
		metrics.New(reg),
		cfg.Application.BaseURL,
		logger,
	)

	router := chi.NewRouter()
	RegisterRoutes(
		router,
		logger,
		subscriptionService,
		rate.NewLimiter(rate.Limit(cfg.RPS), cfg.Burst),
		promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	)

	app.server = &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return app, nil
}

func newTransport(ctx context.Context, cfg config.EmailClient) (senderservice.Transport, error) {
	switch cfg.Provider {
	case config.EmailProviderSES:
		return emailclient.NewSESClient(ctx, cfg.SESRegion, cfg.SESAccessKey, cfg.SESSecretKey, cfg.Timeout)
	default:
		return emailclient.NewHTTPClient(cfg.BaseURL, cfg.AuthorizationToken, cfg.Timeout), nil
	}
}

func (a *App) newCache(ctx context.Context, cfg config.RedisConnection) (subservice.ConfirmedCache, error) {
	if cfg.AddressRedis == "" {
		a.logger.Info("redis address is empty, confirmed token cache disabled")
		return cache.Nop{}, nil
	}
	c, err := cache.InitServer(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, c)
	return c, nil
}

func (a *App) newPublisher(cfg config.RabbitMQ) (subservice.EventPublisher, error) {
	if cfg.URL == "" {
		a.logger.Info("rabbitmq url is empty, confirmation events disabled")
		return rabbitmq.NopPublisher{}, nil
	}
	conn, err := rabbitmq.Connect(cfg.URL, cfg.Retries, cfg.RetryDelay)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, conn)
	ch, err := rabbitmq.SetupChannel(conn, cfg.Exchange)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, ch)
	return rabbitmq.NewPublisher(ch, cfg.Exchange), nil
}

// Run запускает HTTP-сервер и останавливает его при отмене ctx.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		a.close()
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.close()
		return err
	}
}

// close освобождает ресурсы в обратном порядке открытия.
func (a *App) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			a.logger.Warn("failed to close resource", sl.Err(err))
		}
	}
	a.closers = nil
	if err := a.db.DB.Close(); err != nil {
		a.logger.Warn("failed to close database", sl.Err(err))
	}
}
