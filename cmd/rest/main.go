package main

import (
	"context"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"notes-app-be/internal/auth"
	"notes-app-be/internal/config"
	"notes-app-be/internal/constant"
	"notes-app-be/internal/controller"
	"notes-app-be/internal/pkg/serverutils"
	"notes-app-be/internal/repository"
	"notes-app-be/internal/service"
	"notes-app-be/pkg/blobstore"
	"notes-app-be/pkg/database"
	"notes-app-be/pkg/logger"
	"notes-app-be/pkg/sanitizer"
)

func main() {
	cfg := config.Load()
	log := logger.New("notes-app-be")

	app := fiber.New(fiber.Config{
		// Above the attachment cap so oversized uploads reach the store and
		// get a typed rejection instead of a connection reset.
		BodyLimit: 10 * 1024 * 1024,
	})

	app.Use(cors.New())
	app.Use(serverutils.ErrorHandlerMiddleware(log))

	store := buildStore(cfg)
	if cfg.UploadDriver == "disk" {
		app.Static(cfg.PublicUploadPath, cfg.UploadDir)
	}

	db := database.ConnectDB(cfg.DatabaseURL)

	noteRepository := repository.NewNoteRepository(db)

	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermillLogger)
	publisherService := service.NewPublisherService(cfg.RetireTopicName, pubSub)
	janitorService := service.NewJanitorService(pubSub, cfg.RetireTopicName, store, log)

	noteService := service.NewNoteService(
		noteRepository,
		store,
		sanitizer.New(),
		publisherService,
		log,
	)

	authMiddleware := auth.NewMiddleware(cfg.JWTSecret)
	noteController := controller.NewNoteController(noteService, authMiddleware)

	api := app.Group("/api")
	noteController.RegisterRoutes(api)

	if err := janitorService.Consume(context.Background()); err != nil {
		panic(err)
	}

	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func buildStore(cfg *config.Config) blobstore.Store {
	limits := blobstore.Limits{
		AllowedMimeTypes: constant.AllowedAttachmentMimeTypes,
		MaxSizeBytes:     constant.MaxAttachmentSizeBytes,
	}

	if cfg.UploadDriver == "s3" {
		store, err := blobstore.NewS3Store(blobstore.S3Config{
			AccessKey:     cfg.S3AccessKey,
			SecretKey:     cfg.S3SecretKey,
			Endpoint:      cfg.S3Endpoint,
			Region:        cfg.S3Region,
			Bucket:        cfg.S3Bucket,
			PublicBaseURL: cfg.S3PublicBaseURL,
		}, limits)
		if err != nil {
			panic(err)
		}
		return store
	}

	store, err := blobstore.NewDiskStore(cfg.UploadDir, cfg.PublicUploadPath, limits)
	if err != nil {
		panic(err)
	}
	return store
}
