package util

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// 通用回傳結構裡的 data 用 map
type Response map[string]interface{}

// 業務錯誤碼
const (
	CodeOK           = 0
	CodeInvalidParam = 40001
	CodeConflict     = 40901
	CodeAuth         = 40101
	CodeNotFound     = 40401
	CodeServerErr    = 50001
)

// Success 統一成功回傳
func Success(c *gin.Context, data Response) {
	c.JSON(http.StatusOK, gin.H{
		"code": CodeOK,
		"data": data,
	})
}

// Error 統一錯誤回傳
func Error(c *gin.Context, httpStatus int, code int, msg string) {
	c.JSON(httpStatus, gin.H{
		"code":    code,
		"message": msg,
	})
}
