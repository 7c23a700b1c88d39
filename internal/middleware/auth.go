package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/hunzan/working-hours-e/internal/models"
	"github.com/hunzan/working-hours-e/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AuthMiddleware 校驗 JWT，並把目前登入的教師放進 context。
func AuthMiddleware(jwtSecret string, db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var tokenStr string

		// 1) Header: Authorization: Bearer xxx
		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
				tokenStr = parts[1]
			}
		}

		// 2) URL 查詢參數 ?token=xxx（下載匯出檔這種沒辦法帶 Header 的場景）
		if tokenStr == "" {
			tokenStr = c.Query("token")
		}

		// 3) Cookie whe_token
		if tokenStr == "" {
			if cookie, err := c.Cookie("whe_token"); err == nil {
				tokenStr = cookie
			}
		}

		if tokenStr == "" {
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "請先登入用戶帳號")
			c.Abort()
			return
		}

		claims, err := util.ParseToken(jwtSecret, tokenStr)
		if err != nil || claims.Purpose != "" || claims.ExpiresAt == nil || claims.ExpiresAt.Before(time.Now()) {
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "登入已失效，請重新登入")
			c.Abort()
			return
		}

		var teacher models.Teacher
		if err := db.First(&teacher, claims.TeacherID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				util.Error(c, http.StatusUnauthorized, util.CodeAuth, "帳號不存在")
			} else {
				util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "查詢帳號失敗")
			}
			c.Abort()
			return
		}

		if !teacher.IsActive {
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "帳號已停用，請聯絡管理者")
			c.Abort()
			return
		}

		c.Set("currentTeacher", &teacher)
		c.Next()
	}
}

// CurrentTeacher 從 context 取出目前登入的教師。
func CurrentTeacher(c *gin.Context) (*models.Teacher, bool) {
	v, ok := c.Get("currentTeacher")
	if !ok {
		return nil, false
	}
	teacher, ok := v.(*models.Teacher)
	if !ok || teacher == nil {
		return nil, false
	}
	return teacher, true
}
