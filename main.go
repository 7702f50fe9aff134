// @title Dating Scan 后端 API
// @version 1.0
// @description Dating Style Scan / Attachment Style Scan 测评评分服务。

// @host localhost:8080
// @BasePath /api
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization

package main

import (
	"dating_scan_backend/internal/app"
	"dating_scan_backend/internal/config"
	"dating_scan_backend/pkg/logger"
	"flag"
	"log"
)

func main() {
	migrateOnly := flag.Bool("migrate-only", false, "run migrations and install built-in definitions, then exit")
	flag.Parse()

	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	cfg.MigrateOnly = *migrateOnly

	application := app.NewApp(cfg)
	defer logger.Log.Sync()

	if *migrateOnly {
		log.Println("Migration finished, exiting")
		return
	}

	application.Run()
}
