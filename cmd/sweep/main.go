// 排程清理工具：刪除結案超過 N 天的案件、停用閒置教師帳號。
// 用 cron 之類的排程器定期執行，避開線上編輯的尖峰時段。
package main

import (
	"flag"
	"log"
	"time"

	"github.com/hunzan/working-hours-e/internal/config"
	"github.com/hunzan/working-hours-e/internal/database"
	"github.com/hunzan/working-hours-e/internal/sweep"
)

func main() {
	configPath := flag.String("config", "config.yaml", "設定檔路徑")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	db, err := database.Init(cfg.Database)
	if err != nil {
		log.Fatalf("init database: %v", err)
	}

	res, err := sweep.Run(db, cfg.Sweep, time.Now())
	if err != nil {
		log.Fatalf("sweep: %v", err)
	}

	log.Printf("cleanup done: deleted_cases=%d, disabled_teachers=%d",
		res.DeletedCases, res.DisabledTeachers)
}
