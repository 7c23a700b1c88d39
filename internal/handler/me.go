package handler

import (
	"net/http"

	"github.com/hunzan/working-hours-e/internal/middleware"
	"github.com/hunzan/working-hours-e/internal/util"

	"github.com/gin-gonic/gin"
)

// GetMe 回傳目前登入的教師資訊（要先過 AuthMiddleware）。
func GetMe(c *gin.Context) {
	teacher, ok := middleware.CurrentTeacher(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "請先登入用戶帳號")
		return
	}

	util.Success(c, util.Response{
		"teacher": gin.H{
			"id":            teacher.ID,
			"full_name":     teacher.FullName,
			"email":         teacher.Email,
			"created_at":    teacher.CreatedAt,
			"last_login_at": teacher.LastLoginAt,
		},
	})
}
