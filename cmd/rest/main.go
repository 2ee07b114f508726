package main

import (
	"context"
	"log"

	"aegis-review-be/internal/bootstrap"
	"aegis-review-be/internal/config"
	"aegis-review-be/internal/model"
	"aegis-review-be/internal/server"
	"aegis-review-be/internal/tracer"
	"aegis-review-be/pkg/database"

	"gorm.io/gorm"
)

func main() {
	// 0. Initialize Tracer (no-op unless OTEL_ENABLED=true)
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Database (optional: without it, audit records are off)
	var gormDB *gorm.DB
	if cfg.Database.Connection != "" {
		db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
		if err != nil {
			log.Panicf("Unable to connect to GORM DB: %v", err)
		}
		if err := db.AutoMigrate(&model.AuditRecord{}); err != nil {
			log.Panicf("Unable to migrate audit schema: %v", err)
		}
		gormDB = db
	} else {
		log.Println("DB_CONNECTION_STRING not set, running without audit storage")
	}

	// 3. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg)

	// 4. Start Background Services
	go func() {
		log.Println("Background: Starting Feed Consumer...")
		if err := container.FeedConsumerService.Consume(context.Background()); err != nil {
			log.Printf("Background Feed Consumer Error: %v", err)
		}
	}()

	// 5. Initialize Server
	srv := server.New(cfg, container)

	// 6. Run Server
	log.Fatal(srv.Run())
}
