package router

import (
	"github.com/hunzan/working-hours-e/internal/config"
	"github.com/hunzan/working-hours-e/internal/handler"
	"github.com/hunzan/working-hours-e/internal/ledger"
	"github.com/hunzan/working-hours-e/internal/mailer"
	"github.com/hunzan/working-hours-e/internal/middleware"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRouter configures Gin engine and API routes.
func SetupRouter(cfg *config.Config, db *gorm.DB) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	led := ledger.New(db, cfg.Security.CodeKey)
	mailService := mailer.FromConfig(cfg.Mail.SendGridAPIKey, cfg.Mail.From)

	// ====== API ======
	api := r.Group("/api")

	// 註冊/登入/忘記密碼（不需要鑑權）
	authHandler := handler.NewAuthHandler(db, cfg.JWT.Secret, cfg.JWT.ExpireHours,
		cfg.Security.BcryptCost, mailService, cfg.App.BaseURL)
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/forgot", authHandler.Forgot)
	api.POST("/auth/reset/:token", authHandler.Reset)

	// 單位查詢：免登入
	lookupHandler := handler.NewLookupHandler(led)
	api.POST("/lookup", lookupHandler.Lookup)

	// 需要登入才能用的接口
	protected := api.Group("")
	protected.Use(
		middleware.AuthMiddleware(cfg.JWT.Secret, db),
		middleware.YearlyPurgeMiddleware(db),
	)

	protected.GET("/me", handler.GetMe)

	caseHandler := handler.NewCaseHandler(db, led)
	protected.GET("/cases", caseHandler.ListCases)
	protected.POST("/cases", caseHandler.CreateCase)
	protected.GET("/cases/:id", caseHandler.GetCase)
	protected.DELETE("/cases/:id", caseHandler.DeleteCase)

	protected.POST("/cases/:id/grants", caseHandler.AddGrant)
	protected.PUT("/cases/:id/grants/:type", caseHandler.ResizeGrant)
	protected.DELETE("/cases/:id/grants/:type", caseHandler.RemoveGrant)

	protected.POST("/cases/:id/sessions", caseHandler.LogSession)

	protected.POST("/cases/:id/toggle-close", caseHandler.ToggleClose)
	protected.POST("/cases/:id/reset-code", caseHandler.ResetCode)
	protected.POST("/cases/:id/reveal-code", caseHandler.RevealCode)

	exportHandler := handler.NewExportHandler(db)
	protected.GET("/export/csv", exportHandler.ExportCSV)
	protected.GET("/export/xlsx", exportHandler.ExportXLSX)

	return r
}
