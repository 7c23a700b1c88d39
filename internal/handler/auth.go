package handler

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/hunzan/working-hours-e/internal/mailer"
	"github.com/hunzan/working-hours-e/internal/models"
	"github.com/hunzan/working-hours-e/internal/util"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthHandler 負責註冊/登入/忘記密碼相關接口
type AuthHandler struct {
	DB         *gorm.DB
	JWTSecret  string
	TokenTTL   time.Duration
	BcryptCost int
	Mailer     mailer.Service
	BaseURL    string // 重設密碼連結的前綴
}

func NewAuthHandler(db *gorm.DB, jwtSecret string, ttlHours, bcryptCost int, m mailer.Service, baseURL string) *AuthHandler {
	if ttlHours <= 0 {
		ttlHours = 24
	}
	if bcryptCost <= 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AuthHandler{
		DB:         db,
		JWTSecret:  jwtSecret,
		TokenTTL:   time.Duration(ttlHours) * time.Hour,
		BcryptCost: bcryptCost,
		Mailer:     m,
		BaseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// ---------- 註冊 ----------

type registerReq struct {
	FullName string `json:"full_name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "參數錯誤")
		return
	}

	req.FullName = strings.TrimSpace(req.FullName)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	if req.FullName == "" || req.Password == "" {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "請輸入用戶全名與密碼")
		return
	}
	if req.Email == "" {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "註冊需要 Email（忘記密碼用）")
		return
	}
	if len(req.Password) < 8 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "密碼至少 8 碼")
		return
	}

	// Email 不能重複
	var count int64
	if err := h.DB.Model(&models.Teacher{}).
		Where("email = ?", req.Email).Count(&count).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "查詢帳號失敗")
		return
	}
	if count > 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "此 Email 已註冊，請改用登入或忘記密碼")
		return
	}

	// 全名也不能重複
	if err := h.DB.Model(&models.Teacher{}).
		Where("full_name = ?", req.FullName).Count(&count).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "查詢帳號失敗")
		return
	}
	if count > 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "此用戶名稱已存在，請改用登入")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), h.BcryptCost)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "密碼加密失敗")
		return
	}

	teacher := models.Teacher{
		FullName:     req.FullName,
		Email:        req.Email,
		PasswordHash: string(hash),
		IsActive:     true,
	}
	if err := h.DB.Create(&teacher).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "建立帳號失敗")
		return
	}

	// 註冊成功直接發 token，省一次登入
	token, err := util.GenerateToken(h.JWTSecret, teacher.ID, h.TokenTTL)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "產生 token 失敗")
		return
	}

	util.Success(c, util.Response{
		"message": "註冊成功，已登入",
		"token":   token,
		"teacher": gin.H{
			"id":        teacher.ID,
			"full_name": teacher.FullName,
			"email":     teacher.Email,
		},
	})
}

// ---------- 登入 ----------

type loginReq struct {
	FullName string `json:"full_name" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "參數錯誤")
		return
	}

	req.FullName = strings.TrimSpace(req.FullName)

	var teacher models.Teacher
	if err := h.DB.Where("full_name = ?", req.FullName).First(&teacher).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "您尚未註冊，請先註冊再登入")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "查詢帳號失敗")
		}
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(teacher.PasswordHash), []byte(req.Password)); err != nil {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "登入失敗：密碼錯誤")
		return
	}

	if !teacher.IsActive {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "帳號已停用，請聯絡管理者")
		return
	}

	// 記錄登入時間，閒置清理靠這個欄位
	now := time.Now()
	teacher.LastLoginAt = &now
	_ = h.DB.Model(&models.Teacher{}).Where("id = ?", teacher.ID).
		Update("last_login_at", &now).Error

	token, err := util.GenerateToken(h.JWTSecret, teacher.ID, h.TokenTTL)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "產生 token 失敗")
		return
	}

	util.Success(c, util.Response{
		"message": "登入成功",
		"token":   token,
		"teacher": gin.H{
			"id":        teacher.ID,
			"full_name": teacher.FullName,
			"email":     teacher.Email,
		},
	})
}

// ---------- 忘記密碼 ----------

type forgotReq struct {
	Email string `json:"email" binding:"required"`
}

func (h *AuthHandler) Forgot(c *gin.Context) {
	var req forgotReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "參數錯誤")
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	// 不管有沒有這個 email，都回同樣訊息（避免被探測帳號）
	var teacher models.Teacher
	if err := h.DB.Where("email = ?", email).First(&teacher).Error; err == nil {
		token, err := util.GenerateResetToken(h.JWTSecret, teacher.ID)
		if err == nil {
			resetURL := fmt.Sprintf("%s/teacher/reset/%s", h.BaseURL, token)
			if err := h.Mailer.SendPasswordReset(email, resetURL); err != nil {
				// 寄信失敗只記 log，回應不能洩漏帳號存在與否
				log.Printf("mail.send FAILED: %v", err)
			}
		}
	}

	util.Success(c, util.Response{
		"message": "若此 Email 已註冊，系統會寄出重設密碼連結。請查看收件匣/垃圾郵件",
	})
}

// ---------- 重設密碼 ----------

type resetReq struct {
	Password  string `json:"password" binding:"required"`
	Password2 string `json:"password2" binding:"required"`
}

func (h *AuthHandler) Reset(c *gin.Context) {
	tokenStr := c.Param("token")

	claims, err := util.ParseResetToken(h.JWTSecret, tokenStr)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "重設連結無效或已過期，請重新申請一次")
		return
	}

	var teacher models.Teacher
	if err := h.DB.First(&teacher, claims.TeacherID).Error; err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "帳號不存在或已被刪除")
		return
	}

	var req resetReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "參數錯誤")
		return
	}

	if len(req.Password) < 8 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "密碼至少 8 碼")
		return
	}
	if req.Password != req.Password2 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "兩次輸入的密碼不一致")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), h.BcryptCost)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "密碼加密失敗")
		return
	}

	if err := h.DB.Model(&models.Teacher{}).Where("id = ?", teacher.ID).
		Update("password_hash", string(hash)).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "更新密碼失敗")
		return
	}

	util.Success(c, util.Response{
		"message": "密碼已更新，請用新密碼登入",
	})
}
