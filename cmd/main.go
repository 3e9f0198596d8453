package main

import (
	"context"
	"errors"
	"log"
	"os"

	"serialtag/cmd/controllers"
	"serialtag/internal/config"
	"serialtag/internal/repo"
	"serialtag/internal/services"
	"serialtag/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
)

const defaultConfigPath = "secrets.json"

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = defaultConfigPath
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	db, err := repo.Connect(cfg.DBDSN)
	if err != nil {
		log.Fatalf("connect to database: %v", err)
	}

	if err := repo.Migrate(db); err != nil {
		log.Fatalf("migrate database: %v", err)
	}

	batchStore, err := newBatchStore(cfg)
	if err != nil {
		log.Fatalf("create batch store: %v", err)
	}

	logService, err := services.NewLogService(db)
	if err != nil {
		log.Fatalf("create log service: %v", err)
	}

	var indexService *services.IndexService
	var indexer services.SerialIndexer
	if cfg.IndexEnabled {
		indexService, err = services.NewIndexService(db, batchStore, logService)
		if err != nil {
			log.Fatalf("create index service: %v", err)
		}
		indexer = indexService
	}

	lookupService, err := services.NewLookupService(batchStore, indexer, logService, cfg.LegacyExport)
	if err != nil {
		log.Fatalf("create lookup service: %v", err)
	}

	serialService, err := services.NewSerialService(lookupService)
	if err != nil {
		log.Fatalf("create serial service: %v", err)
	}

	qrService, err := services.NewQrService(0)
	if err != nil {
		log.Fatalf("create qr service: %v", err)
	}

	tableService, err := services.NewTableService()
	if err != nil {
		log.Fatalf("create table service: %v", err)
	}

	exportService, err := services.NewExportService()
	if err != nil {
		log.Fatalf("create export service: %v", err)
	}

	ingestService, err := services.NewIngestService(
		serialService,
		qrService,
		batchStore,
		indexer,
		logService,
		cfg.BaseURL,
		cfg.RequiredColumns,
		cfg.PadWidth,
	)
	if err != nil {
		log.Fatalf("create ingest service: %v", err)
	}

	uploadController, err := controllers.NewUploadController(tableService, ingestService, exportService)
	if err != nil {
		log.Fatalf("create upload controller: %v", err)
	}

	scanController, err := controllers.NewScanController(lookupService)
	if err != nil {
		log.Fatalf("create scan controller: %v", err)
	}

	batchesController, err := controllers.NewBatchesController(batchStore)
	if err != nil {
		log.Fatalf("create batches controller: %v", err)
	}

	logsController, err := controllers.NewLogsController(logService)
	if err != nil {
		log.Fatalf("create logs controller: %v", err)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	if err := controllers.RegisterHealthRoutes(router, batchStore); err != nil {
		log.Fatalf("register health routes: %v", err)
	}
	if err := uploadController.RegisterRoutes(router); err != nil {
		log.Fatalf("register upload routes: %v", err)
	}
	if err := scanController.RegisterRoutes(router); err != nil {
		log.Fatalf("register scan routes: %v", err)
	}
	if err := batchesController.RegisterRoutes(router); err != nil {
		log.Fatalf("register batches routes: %v", err)
	}
	if err := logsController.RegisterRoutes(router); err != nil {
		log.Fatalf("register logs routes: %v", err)
	}

	if cfg.Storage == config.StorageFS {
		// QR images live on disk, serve them the way the upload links
		// expect.
		router.Static("/qr_codes", cfg.DataDir)
	}

	if indexService != nil {
		if _, err := indexService.Rebuild(context.Background()); err != nil {
			log.Printf("initial index rebuild: %v", err)
		}
		if err := startCron(indexService); err != nil {
			log.Fatalf("start cron: %v", err)
		}
	}

	addr := ":8080"
	if err := router.Run(addr); err != nil {
		log.Fatalf("run server: %v", err)
	}
}

func newBatchStore(cfg config.Config) (store.BatchStore, error) {
	switch cfg.Storage {
	case config.StorageS3:
		objectStore, err := store.NewObjectStore(cfg)
		if err != nil {
			return nil, err
		}
		if err := objectStore.EnsureBucket(context.Background()); err != nil {
			return nil, err
		}
		return objectStore, nil
	default:
		return store.NewFSStore(cfg.DataDir)
	}
}

type indexRebuilder interface {
	Rebuild(ctx context.Context) (int, error)
}

func startCron(service indexRebuilder) error {
	if service == nil {
		return errors.New("index service is nil")
	}

	scheduler := cron.New()

	if _, err := scheduler.AddFunc("@every 1h", func() {
		if _, err := service.Rebuild(context.Background()); err != nil {
			log.Printf("rebuild serial index: %v", err)
		}
	}); err != nil {
		return err
	}

	scheduler.Start()
	return nil
}
