package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/Aashish23092/workpass-ocr/client"
	"github.com/Aashish23092/workpass-ocr/config"
	"github.com/Aashish23092/workpass-ocr/handler"
	"github.com/Aashish23092/workpass-ocr/service"
	"github.com/Aashish23092/workpass-ocr/store"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}))
	slog.SetDefault(logger)

	// Initialize OCR engine
	var recognizer service.TextRecognizer
	switch cfg.Recognizer {
	case config.RecognizerPaddle:
		recognizer = client.NewPaddleClient(cfg.PaddleURL, logger)
	default:
		recognizer = client.NewTesseractClient(cfg.TesseractDataPath, cfg.Languages()...)
	}

	// Persistence is optional
	var workerStore store.Store
	if cfg.DBPath != "" {
		bolt, err := store.NewBoltStore(cfg.DBPath)
		if err != nil {
			logger.Error("failed to open database", "path", cfg.DBPath, "error", err)
			os.Exit(1)
		}
		defer bolt.Close()
		workerStore = bolt
	}

	var imageStorage store.Storage
	if cfg.StorageDir != "" {
		local, err := store.NewLocalStorage(cfg.StorageDir)
		if err != nil {
			logger.Error("failed to prepare storage", "dir", cfg.StorageDir, "error", err)
			os.Exit(1)
		}
		imageStorage = local
	}

	extractionService := service.NewExtractionService(
		recognizer,
		service.NewPDFProcessor(),
		workerStore,
		imageStorage,
		service.Config{
			MaxParallel: cfg.MaxParallel,
			Timeout:     cfg.ExtractTimeout,
			MaxFileSize: cfg.MaxFileSize,
		},
		logger,
	)
	extractionHandler := handler.NewExtractionHandler(extractionService, logger)

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()

	// Configure max multipart memory (32 MB)
	router.MaxMultipartMemory = 32 << 20

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":     "healthy",
			"service":    "Work Pass OCR",
			"recognizer": recognizer.Name(),
			"persisted":  workerStore != nil,
		})
	})

	extractionHandler.Register(router.Group("/api/v1"))

	logger.Info("starting work pass OCR service", "port", cfg.ServerPort, "recognizer", recognizer.Name())
	if err := router.Run(":" + cfg.ServerPort); err != nil {
		logger.Error("failed to start server", "error", err)
		os.Exit(1)
	}
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
