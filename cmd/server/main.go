package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/labelprint/backend/internal/application/labeling"
	domain "github.com/labelprint/backend/internal/domain/labeling"
	"github.com/labelprint/backend/internal/infrastructure/cache"
	"github.com/labelprint/backend/internal/infrastructure/config"
	"github.com/labelprint/backend/internal/infrastructure/logger"
	"github.com/labelprint/backend/internal/infrastructure/persistence"
	"github.com/labelprint/backend/internal/infrastructure/printing"
	"github.com/labelprint/backend/internal/infrastructure/spooler"
	"github.com/labelprint/backend/internal/interfaces/http/handler"
	"github.com/labelprint/backend/internal/interfaces/http/middleware"
	"github.com/labelprint/backend/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting label print server",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("version", cfg.App.Version),
		zap.String("storage", cfg.Storage.Driver),
	)

	// Scratch directory for rendered artifacts
	store, err := printing.NewScratchStore(&printing.ScratchStoreConfig{
		Dir:    cfg.Printing.ScratchDir,
		Logger: log,
	})
	if err != nil {
		log.Fatal("Failed to prepare scratch directory", zap.Error(err))
	}
	if n, err := store.CleanupOlderThan(context.Background(), cfg.Printing.ScratchRetention); err != nil {
		log.Warn("Scratch cleanup failed", zap.Error(err))
	} else if n > 0 {
		log.Info("Removed stale scratch files", zap.Int("count", n))
	}

	// Spooler backends
	runner := spooler.NewExecRunner(log)
	factory := spooler.BackendFactory{
		Cups: spooler.CupsConfig{
			LpPath:     cfg.Printing.LpPath,
			LpstatPath: cfg.Printing.LpstatPath,
			Runner:     runner,
			Logger:     log,
		},
		WindowsRaster: spooler.WindowsRasterConfig{
			PowerShellPath: cfg.Printing.PowerShellPath,
			WmicPath:       cfg.Printing.WmicPath,
			Runner:         runner,
			Logger:         log,
		},
		WindowsVector: spooler.WindowsVectorConfig{
			PowerShellPath:  cfg.Printing.PowerShellPath,
			WmicPath:        cfg.Printing.WmicPath,
			ReaderPaths:     cfg.Printing.ReaderPaths,
			ReaderTimeout:   cfg.Printing.ReaderTimeout,
			EnablePrintTo:   cfg.Printing.EnablePrintTo,
			SwapSettle:      cfg.Printing.SwapSettle,
			SwapVerifyRetry: cfg.Printing.SwapVerifyRetry,
			SwapWait:        cfg.Printing.SwapWait,
			Runner:          runner,
			Logger:          log,
		},
	}
	labelBackend, err := factory.New(cfg.Printing.LabelBackend, spooler.RoleLabel)
	if err != nil {
		log.Fatal("Invalid label backend", zap.Error(err))
	}
	documentBackend, err := factory.New(cfg.Printing.DocumentBackend, spooler.RoleDocument)
	if err != nil {
		log.Fatal("Invalid document backend", zap.Error(err))
	}

	// Printer list cache and idempotency keys, shared through Redis when enabled
	cacheOpts := []cache.PrinterCacheFactoryOption{cache.WithLogger(log)}
	if cfg.Redis.Enabled {
		cacheOpts = append(cacheOpts, cache.WithRedis(cache.RedisConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}))
	}
	cacheFactory := cache.NewPrinterCacheFactory(cfg.Printing.PrinterCacheTTL, cacheOpts...)
	printerCache := cacheFactory.CreateCache()
	defer func() {
		if err := printerCache.Close(); err != nil {
			log.Error("Error closing printer cache", zap.Error(err))
		}
	}()
	idempotencyStore := cacheFactory.CreateIdempotencyStore()
	defer func() {
		if err := idempotencyStore.Close(); err != nil {
			log.Error("Error closing idempotency store", zap.Error(err))
		}
	}()

	dispatcher := spooler.NewDispatcher(spooler.DispatcherConfig{
		Label:    labelBackend,
		Document: documentBackend,
		Cache:    printerCache,
		Logger:   log,
	})
	log.Info("Print backends ready",
		zap.String("label_backend", dispatcher.LabelBackend()),
		zap.String("document_backend", dispatcher.DocumentBackend()))

	// Storage
	settings := config.NewLabelSizeStore(cfg.Storage.LabelSizePath(), log)
	records := persistence.NewProductionSheetFileRepository(cfg.Storage.RecordsPath(), log)

	var history domain.PrintHistoryRepository
	switch cfg.Storage.Driver {
	case config.DriverSQLite, config.DriverPostgres:
		db, err := persistence.NewDatabase(&cfg.Storage, &cfg.Database, cfg.Log.Level, log)
		if err != nil {
			log.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer func() {
			if err := db.Close(); err != nil {
				log.Error("Error closing database", zap.Error(err))
			}
		}()
		history = persistence.NewGormPrintHistoryRepository(db.DB)
		log.Info("Database connected successfully")
	default:
		history = persistence.NewPrintHistoryFileRepository(cfg.Storage.HistoryPath(), log)
	}

	// Renderers
	encoder := printing.NewCode128Encoder()
	labelRenderer := printing.NewLabelRenderer(
		printing.NewRasterLabelRenderer(printing.RasterLabelRendererConfig{
			Fonts:   printing.NewFontLoader(printing.FontLoaderConfig{Dirs: cfg.Printing.FontDirs, Logger: log}),
			Barcode: encoder,
			Logger:  log,
		}),
		printing.NewVectorLabelRenderer(printing.VectorLabelRendererConfig{Barcode: encoder, Logger: log}),
	)
	sheetRenderer := printing.NewSheetRenderer(printing.SheetRendererConfig{
		Title:  cfg.Printing.SheetTitle,
		Logger: log,
	})

	// Application services
	labelService := labeling.NewLabelService(settings, labelRenderer, store, dispatcher, history,
		labelFormat(cfg.Printing.LabelFormat, dispatcher.LabelBackend()), log)
	sheetService := labeling.NewSheetService(settings, records, sheetRenderer, store, dispatcher, log)
	systemService := labeling.NewSystemService(settings, dispatcher, cfg.App.Version, log)

	// Handlers
	labelHandler := handler.NewLabelHandler(labelService)
	sheetHandler := handler.NewSheetHandler(sheetService)
	systemHandler := handler.NewSystemHandler(systemService)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfigFrom(&cfg.HTTP)))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	engine.Use(middleware.Idempotency(idempotencyStore, cfg.HTTP.IdempotencyTTL))

	r := router.NewRouter(engine)
	r.Register(handler.LabelRoutes(labelHandler)).
		Register(handler.SheetRoutes(sheetHandler)).
		Register(handler.SystemRoutes(systemHandler))
	r.RegisterRoot(handler.RootRoutes(labelHandler, systemHandler))
	r.Setup()

	ln, err := listen(cfg.App.Ports(), log)
	if err != nil {
		log.Fatal("Failed to bind a port", zap.Error(err))
	}

	srv := &http.Server{
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// labelFormat picks the artifact sent to the label backend. The raster
// backend blits PNGs; everything else prints the vector PDF.
func labelFormat(configured, backend string) printing.ArtifactKind {
	if kind := printing.ArtifactKind(configured); kind.IsValid() {
		return kind
	}
	if backend == spooler.BackendWindowsRaster {
		return printing.ArtifactPNG
	}
	return printing.ArtifactPDF
}

// listen binds the first free port, trying the primary port first
func listen(ports []int, log *zap.Logger) (net.Listener, error) {
	var lastErr error
	for _, port := range ports {
		ln, err := net.Listen("tcp", ":"+strconv.Itoa(port))
		if err == nil {
			return ln, nil
		}
		log.Warn("Port unavailable, trying the next one", zap.Int("port", port), zap.Error(err))
		lastErr = err
	}
	return nil, fmt.Errorf("no port available among %v: %w", ports, lastErr)
}
