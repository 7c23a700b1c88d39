package util

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
	"math/big"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

// 查詢碼字母表：排除易混淆的 I, O, 0, 1，單位抄寫時不容易打錯
const queryCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// GenerateQueryCode 產生好輸入的英數查詢碼（預設長度由呼叫端給，系統用 8 位）。
func GenerateQueryCode(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("length must be positive")
	}
	var sb strings.Builder
	max := big.NewInt(int64(len(queryCodeAlphabet)))
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("read random: %w", err)
		}
		sb.WriteByte(queryCodeAlphabet[n.Int64()])
	}
	return sb.String(), nil
}

// HashCode 使用 PBKDF2+SHA256 產生查詢碼雜湊，回傳 "salt$hash" 形式的字串。
func HashCode(code string) (string, error) {
	if code == "" {
		return "", fmt.Errorf("code is empty")
	}

	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	hash := pbkdf2.Key([]byte(code), salt, 100_000, 32, sha256.New)
	saltStr := base64.RawStdEncoding.EncodeToString(salt)
	hashStr := base64.RawStdEncoding.EncodeToString(hash)

	return saltStr + "$" + hashStr, nil
}

// CheckCode 驗證明碼查詢碼與儲存的雜湊是否相符。
func CheckCode(code, stored string) bool {
	if code == "" || stored == "" {
		return false
	}

	parts := strings.Split(stored, "$")
	if len(parts) != 2 {
		return false
	}
	saltStr := parts[0]
	hashStr := parts[1]

	salt, err := base64.RawStdEncoding.DecodeString(saltStr)
	if err != nil {
		return false
	}
	expectedHash, err := base64.RawStdEncoding.DecodeString(hashStr)
	if err != nil {
		return false
	}

	hash := pbkdf2.Key([]byte(code), salt, 100_000, len(expectedHash), sha256.New)

	// constant time compare
	if len(hash) != len(expectedHash) {
		return false
	}
	var diff byte
	for i := range hash {
		diff |= hash[i] ^ expectedHash[i]
	}
	return diff == 0
}

// ----------------- AES-256-GCM 加密/解密（查詢碼密文用） -----------------

// deriveKey 始終產生 32 位元組 key，避免對設定長度過於敏感。
func deriveKey(keyStr string) []byte {
	sum := sha256.Sum256([]byte(keyStr))
	return sum[:]
}

// EncryptAES 使用 AES-256-GCM 加密資料，回傳 nonce+ciphertext。
func EncryptAES(keyStr string, plaintext []byte) ([]byte, error) {
	key := deriveKey(keyStr)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("new cipher: %w", err)
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("new gcm: %w", err)
	}

	nonce := make([]byte, aesgcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("nonce: %w", err)
	}

	ciphertext := aesgcm.Seal(nil, nonce, plaintext, nil)
	// 前面接上 nonce，解密時拆回來
	return append(nonce, ciphertext...), nil
}

// DecryptAES 使用 AES-256-GCM 解密資料（輸入必須是 nonce+ciphertext）。
// 金鑰不對會回傳錯誤，不會靜默給出錯的明文。
func DecryptAES(keyStr string, data []byte) ([]byte, error) {
	key := deriveKey(keyStr)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("new cipher: %w", err)
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("new gcm: %w", err)
	}

	ns := aesgcm.NonceSize()
	if len(data) < ns {
		return nil, fmt.Errorf("cipher too short")
	}
	nonce, ciphertext := data[:ns], data[ns:]

	plaintext, err := aesgcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("decrypt: %w", err)
	}
	return plaintext, nil
}

// EncryptCode 把明碼查詢碼加密成 base64 字串，存進 query_code_enc 欄位。
func EncryptCode(keyStr, code string) (string, error) {
	b, err := EncryptAES(keyStr, []byte(code))
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

// DecryptCode 解回明碼查詢碼。資料壞掉或金鑰不對都回傳錯誤。
func DecryptCode(keyStr, enc string) (string, error) {
	b, err := base64.StdEncoding.DecodeString(enc)
	if err != nil {
		return "", fmt.Errorf("decode cipher: %w", err)
	}
	plain, err := DecryptAES(keyStr, b)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}
