package middleware

import (
	"log"
	"time"

	"github.com/hunzan/working-hours-e/internal/sweep"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// YearlyPurgeMiddleware 每年 1/10 之後，進站順手把去年的案件刪掉。
// 沒有舊案時只是一個很便宜的查詢；刪除失敗不擋請求，只記 log。
func YearlyPurgeMiddleware(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		today := time.Now()
		if sweep.AfterJan10(today) {
			lastYear := today.Year() - 1
			if n, err := sweep.PurgeFiscalYear(db, lastYear); err != nil {
				log.Printf("yearly purge failed: %v", err)
			} else if n > 0 {
				log.Printf("yearly purge: deleted %d cases of fiscal year %d", n, lastYear)
			}
		}
		c.Next()
	}
}
