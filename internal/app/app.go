package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/niksmo/spellshop/config"
	"github.com/niksmo/spellshop/internal/adapter"
	"github.com/niksmo/spellshop/internal/adapter/auth"
	"github.com/niksmo/spellshop/internal/adapter/blobstore"
	"github.com/niksmo/spellshop/internal/adapter/httphandler"
	"github.com/niksmo/spellshop/internal/adapter/kafka"
	"github.com/niksmo/spellshop/internal/adapter/storage"
	"github.com/niksmo/spellshop/internal/core/domain"
	"github.com/niksmo/spellshop/internal/core/port"
	"github.com/niksmo/spellshop/internal/core/service"
	"github.com/niksmo/spellshop/pkg/retry"
	"github.com/niksmo/spellshop/pkg/schema"
	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/pkg/sr"
)

const (
	relayRetryAttempts = 3
	relayRetryDelay    = 100 * time.Millisecond
)

type blobStore interface {
	port.BlobStore
	Close()
}

type localBlobs struct {
	*blobstore.Local
}

func (localBlobs) Close() {}

type coreService struct {
	catalog *service.Catalog
	carts   *service.Carts
	auth    *service.Auth
	relay   port.OutboxRelay
}

type App struct {
	ctx        context.Context
	cfg        config.Config
	storage    *storage.Storage
	blobs      blobStore
	localDir   string
	publisher  port.EventPublisher
	tokens     *auth.JWT
	service    coreService
	httpServer httphandler.HTTPServer
	relayDone  sync.WaitGroup
}

func New(ctx context.Context, cfg config.Config) *App {
	app := &App{ctx: ctx, cfg: cfg}

	app.initLogger()
	app.initStorage()
	app.initBlobStore()
	app.initEventPublisher()
	app.initCoreServices()
	app.initInboundAdapters()

	return app
}

func (app *App) initLogger() {
	opts := &slog.HandlerOptions{Level: app.cfg.LogLevel}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, opts))
	slog.SetDefault(logger)
}

func (app *App) initStorage() {
	const op = "App.initStorage"

	s, err := storage.New(
		app.ctx,
		app.cfg.SQLDB.DSN,
		storage.WithMaxOpenConns(app.cfg.SQLDB.MaxOpenConns),
		storage.WithConnMaxLifetime(app.cfg.SQLDB.ConnMaxLifetime),
	)
	if err != nil {
		app.fallDown(op, err)
	}

	if app.cfg.SQLDB.AutoMigrate {
		if err := s.AutoMigrate(app.ctx); err != nil {
			s.Close()
			app.fallDown(op, err)
		}
	}
	app.storage = s
}

func (app *App) initBlobStore() {
	const op = "App.initBlobStore"
	cfg := app.cfg.Blob

	switch cfg.Driver {
	case config.BlobDriverGCS:
		opts := []blobstore.GCSOpt{blobstore.GCSPublicBaseURL(cfg.PublicBaseURL)}
		if cfg.CredentialsFile != "" {
			opts = append(opts, blobstore.GCSCredentialsFile(cfg.CredentialsFile))
		}
		if cfg.Endpoint != "" {
			opts = append(opts, blobstore.GCSEndpoint(cfg.Endpoint))
		}
		gcs, err := blobstore.NewGCS(app.ctx, cfg.Bucket, opts...)
		if err != nil {
			app.fallDown(op, err)
		}
		app.blobs = gcs
	default:
		local, err := blobstore.NewLocal(cfg.LocalDir, cfg.PublicBaseURL)
		if err != nil {
			app.fallDown(op, err)
		}
		app.blobs = localBlobs{local}
		app.localDir = local.Root()
	}
}

func (app *App) initEventPublisher() {
	const op = "App.initEventPublisher"
	cfg := app.cfg.Broker

	if len(cfg.SeedBrokers) == 0 {
		slog.Warn("no seed brokers configured, catalog events go to the log")
		app.publisher = kafka.LogPublisher{}
		return
	}

	var (
		kOpts  []kgo.Opt
		srOpts = []sr.ClientOpt{sr.URLs(cfg.SchemaRegistryURLs...)}
	)
	if cfg.TLS.Enabled() {
		tlsCfg, err := adapter.MakeTLSConfig(cfg.TLS.CA, cfg.TLS.Cert, cfg.TLS.Key)
		if err != nil {
			app.fallDown(op, err)
		}
		kOpts = append(kOpts, kgo.DialTLSConfig(tlsCfg))
		srOpts = append(srOpts, sr.DialTLSConfig(tlsCfg))
	}

	srClient, err := sr.NewClient(srOpts...)
	if err != nil {
		app.fallDown(op, err)
	}

	serde, err := schema.NewSerdeCatalogEventV1(
		app.ctx,
		schema.SubjectOpt(schema.ValueSubject(cfg.CatalogEventsTopic)),
		schema.SchemaIdentifierOpt(schema.NewRegistryIdentifier(srClient)),
	)
	if err != nil {
		app.fallDown(op, err)
	}

	producer, err := kafka.NewCatalogEventsProducer(
		kafka.ProducerClientOpt(
			app.ctx, cfg.SeedBrokers, cfg.CatalogEventsTopic, kOpts...,
		),
		kafka.ProducerEncoderOpt(serde),
	)
	if err != nil {
		app.fallDown(op, err)
	}
	app.publisher = producer
}

func (app *App) initCoreServices() {
	const op = "App.initCoreServices"

	nameMatch, err := domain.ParseNameMatch(app.cfg.Catalog.NameMatch)
	if err != nil {
		app.fallDown(op, err)
	}

	tokens, err := auth.NewJWT(
		app.cfg.Auth.JWTSecret, app.cfg.Auth.Issuer, app.cfg.Auth.TokenTTL,
	)
	if err != nil {
		app.fallDown(op, err)
	}
	app.tokens = tokens

	app.service.catalog = service.NewCatalog(app.storage, app.blobs, nameMatch)
	app.service.carts = service.NewCarts(app.storage)
	app.service.auth = service.NewAuth(app.storage, tokens, app.cfg.Auth.AdminEmails)
	app.service.relay = service.NewRelay(
		app.storage, app.blobs, app.publisher,
		service.RelayConfig{
			PollInterval: app.cfg.Outbox.PollInterval,
			BatchSize:    app.cfg.Outbox.BatchSize,
			MaxAttempts:  app.cfg.Outbox.MaxAttempts,
			Retry: retry.RetryConfig{
				MaxAttempts: relayRetryAttempts,
				Backoff:     retry.ExponentialBackoff(relayRetryDelay),
			},
		},
	)
}

func (app *App) initInboundAdapters() {
	router := httphandler.NewRouter(httphandler.Services{
		Products:    app.service.catalog,
		Categories:  app.service.catalog,
		Collections: app.service.catalog,
		Spells:      app.service.catalog,
		Cart:        app.service.carts,
		Auth:        app.service.auth,
		Tokens:      app.tokens,
		Health:      app.storage,
	}, httphandler.CookieConfig{
		Days:   app.cfg.Auth.CookieDays,
		Secure: app.cfg.Auth.SecureCookie,
	})
	if app.localDir != "" {
		serveLocalBlobs(router, app.localDir)
	}

	app.httpServer = httphandler.NewHTTPServer(
		app.cfg.HTTPServerAddr, router, app.cfg.HTTPRequestTimeout,
	)
}

func serveLocalBlobs(router *gin.Engine, dir string) {
	router.Static("/uploads", dir)
}

func (app *App) Run(stopFn context.CancelFunc) {
	go app.httpServer.Run(stopFn)

	app.relayDone.Add(1)
	go func() {
		defer app.relayDone.Done()
		app.service.relay.Run(app.ctx)
	}()

	slog.Info("application is running")
}

// Close expects the context given to New to be canceled already so that
// the relay stops.
func (app *App) Close(ctx context.Context) {
	slog.Info("application is closing...")

	app.httpServer.Close(ctx)
	app.relayDone.Wait()
	app.publisher.Close()
	app.blobs.Close()
	app.storage.Close()

	slog.Info("application is closed")
}

func (app *App) fallDown(op string, err error) {
	panic(fmt.Errorf("%s: %w", op, err))
}
