package main

import (
	"fmt"
	"log"

	"github.com/hunzan/working-hours-e/internal/config"
	"github.com/hunzan/working-hours-e/internal/database"
	"github.com/hunzan/working-hours-e/internal/router"
)

func main() {
	// 載入設定；查詢碼金鑰缺失會在這裡直接失敗
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// init database
	db, err := database.Init(cfg.Database)
	if err != nil {
		log.Fatalf("init database: %v", err)
	}

	// run migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("migrate database: %v", err)
	}

	// setup router
	r := router.SetupRouter(cfg, db)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Address, cfg.Server.Port)
	log.Printf("server listening on %s", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("run server: %v", err)
	}
}
