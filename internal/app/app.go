package app

import (
	"context"
	"log/slog"

	httpapp "photo_commerce/internal/app/http"
	checkoutclient "photo_commerce/internal/clients/checkout"
	"photo_commerce/internal/config"
	"photo_commerce/internal/repository"
	assetservice "photo_commerce/internal/services/asset_service"
	cartservice "photo_commerce/internal/services/cart_service"
	checkoutservice "photo_commerce/internal/services/checkout_service"
	eventservice "photo_commerce/internal/services/event_service"
	galleryservice "photo_commerce/internal/services/gallery_service"
	photoservice "photo_commerce/internal/services/photo_service"
	"photo_commerce/internal/storage/objectstore"
	"photo_commerce/internal/storage/postgresql"
	redisapp "photo_commerce/internal/storage/redis"
	httprouters "photo_commerce/internal/transport/http"
)

type App struct {
	HTTPServer *httpapp.Server
	repo       *repository.Repository
}

func New(log *slog.Logger, cfg *config.Config) *App {
	pool, err := postgresql.New(context.Background(), cfg.DSN)
	if err != nil {
		panic(err)
	}

	repo := repository.NewRepository(pool)

	blob, err := objectstore.NewLocalObjectStorage(cfg.ObjectStore.BaseDir)
	if err != nil {
		panic(err)
	}

	redisClient := redisapp.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	galleryCache := repository.NewRedisGalleryCache(redisClient, cfg.Redis.CacheTTL)

	galleryService := galleryservice.NewGalleryService(log, repo.Gallery, repo.Photo, galleryCache)
	photoService := photoservice.NewPhotoService(log, repo.Photo, repo.Gallery, blob, cfg.Pipeline.MaxUploadSize, cfg.Pipeline.WatermarkText)
	assetService := assetservice.NewAssetService(log, cfg.Signing.Secret, cfg.Signing.URLTTL, cfg.HTTP.PublicBaseURL, blob)
	cartService := cartservice.NewCartService(log, repo.Photo)
	checkoutService := checkoutservice.NewCheckoutService(
		log,
		repo.Photo,
		checkoutclient.NewClient(cfg.Checkout.Endpoint, cfg.Checkout.Timeout),
		cfg.HTTP.PublicBaseURL,
	)
	eventService := eventservice.NewEventService(log, repo.Event)

	routers := httprouters.NewRouter(
		log,
		galleryService,
		photoService,
		assetService,
		cartService,
		checkoutService,
		eventService,
	)

	server := httpapp.New(
		log,
		cfg.HTTP.OperatorToken,
		cfg.HTTP.SessionSecret,
		cfg.HTTP.Host,
		cfg.HTTP.Port,
		routers,
		repo.User,
	)
	server.BuildRouters()

	return &App{
		HTTPServer: server,
		repo:       repo,
	}
}

func (a *App) Stop() error {
	if err := a.HTTPServer.Stop(); err != nil {
		return err
	}

	a.repo.Close()

	return nil
}
