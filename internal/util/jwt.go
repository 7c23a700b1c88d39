package util

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims 自訂 JWT 內容
type Claims struct {
	TeacherID uint   `json:"teacher_id"`
	Purpose   string `json:"purpose,omitempty"` // 空值 = 登入 token；"pw-reset" = 重設密碼
	jwt.RegisteredClaims
}

const purposeReset = "pw-reset"

// GenerateToken 產生教師登入用 JWT，可指定有效期
func GenerateToken(secret string, teacherID uint, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	now := time.Now()
	claims := &Claims{
		TeacherID: teacherID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// GenerateResetToken 產生重設密碼用的一次性連結 token，30 分鐘有效。
func GenerateResetToken(secret string, teacherID uint) (string, error) {
	now := time.Now()
	claims := &Claims{
		TeacherID: teacherID,
		Purpose:   purposeReset,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(30 * time.Minute)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseToken 解析並驗證 JWT，回傳 Claims
func ParseToken(secret, tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

// ParseResetToken 驗證重設密碼 token，登入 token 不能拿來重設密碼。
func ParseResetToken(secret, tokenStr string) (*Claims, error) {
	claims, err := ParseToken(secret, tokenStr)
	if err != nil {
		return nil, err
	}
	if claims.Purpose != purposeReset {
		return nil, fmt.Errorf("not a reset token")
	}
	return claims, nil
}
