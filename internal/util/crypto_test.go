package util

import (
	"strings"
	"testing"
)

// ============ 查詢碼產生測試 ============

func TestGenerateQueryCode(t *testing.T) {
	code, err := GenerateQueryCode(8)
	if err != nil {
		t.Fatalf("產生失敗: %v", err)
	}
	if len(code) != 8 {
		t.Errorf("長度錯誤: 期望 8，實際 %d", len(code))
	}

	// 不可出現易混淆字元 I O 0 1
	for _, forbidden := range []string{"I", "O", "0", "1"} {
		if strings.Contains(code, forbidden) {
			t.Errorf("查詢碼不應含易混淆字元 %s: %s", forbidden, code)
		}
	}
	for _, ch := range code {
		if !strings.ContainsRune(queryCodeAlphabet, ch) {
			t.Errorf("查詢碼含字母表外字元: %c", ch)
		}
	}

	// 唯一性（機率保證，連抽兩次相同幾乎不可能）
	code2, _ := GenerateQueryCode(8)
	if code == code2 {
		t.Error("應產生不同的查詢碼")
	}

	// 無效長度
	if _, err := GenerateQueryCode(0); err == nil {
		t.Error("長度 0 應回傳錯誤")
	}
	if _, err := GenerateQueryCode(-5); err == nil {
		t.Error("負數長度應回傳錯誤")
	}
}

// ============ 查詢碼雜湊測試 ============

func TestHashCode(t *testing.T) {
	code := "AB23CD45"

	hashed, err := HashCode(code)
	if err != nil {
		t.Fatalf("雜湊失敗: %v", err)
	}
	if !strings.Contains(hashed, "$") {
		t.Error("雜湊格式錯誤，應包含 $")
	}

	if _, err := HashCode(""); err == nil {
		t.Error("空字串應回傳錯誤")
	}

	// 相同明碼要產生不同雜湊（隨機 salt）
	hashed2, _ := HashCode(code)
	if hashed == hashed2 {
		t.Error("相同明碼應產生不同雜湊（隨機 salt）")
	}
}

func TestCheckCode(t *testing.T) {
	code := "AB23CD45"
	hashed, _ := HashCode(code)

	if !CheckCode(code, hashed) {
		t.Error("正確查詢碼驗證失敗")
	}
	if CheckCode("WRONGCODE", hashed) {
		t.Error("錯誤查詢碼不應通過驗證")
	}
	if CheckCode("", hashed) {
		t.Error("空字串不應通過驗證")
	}
	if CheckCode(code, "") {
		t.Error("空雜湊不應通過驗證")
	}
	if CheckCode(code, "invalid-format") {
		t.Error("無效格式不應通過驗證")
	}
}

// ============ AES 加密測試 ============

func TestEncryptDecryptAES(t *testing.T) {
	key := "test-encryption-key"

	testCases := []string{
		"AB23CD45",
		"中文測試",
		"",
		"Special!@#$%^&*()",
		strings.Repeat("A", 1000),
	}

	for _, plaintext := range testCases {
		encrypted, err := EncryptAES(key, []byte(plaintext))
		if err != nil {
			t.Fatalf("加密失敗 '%s': %v", plaintext, err)
		}

		decrypted, err := DecryptAES(key, encrypted)
		if err != nil {
			t.Fatalf("解密失敗 '%s': %v", plaintext, err)
		}

		if string(decrypted) != plaintext {
			t.Errorf("資料不符\n期望: %s\n實際: %s", plaintext, string(decrypted))
		}
	}
}

func TestDecryptAES_WrongKey(t *testing.T) {
	encrypted, _ := EncryptAES("correct-key", []byte("AB23CD45"))

	// 金鑰不對必須大聲失敗，不能靜默回錯的明文
	if _, err := DecryptAES("wrong-key", encrypted); err == nil {
		t.Error("錯誤金鑰應解密失敗")
	}
}

func TestDecryptAES_InvalidData(t *testing.T) {
	key := "test-key"

	if _, err := DecryptAES(key, []byte{1, 2, 3}); err == nil {
		t.Error("過短資料應回傳錯誤")
	}
	if _, err := DecryptAES(key, []byte{}); err == nil {
		t.Error("空資料應回傳錯誤")
	}
}

// ============ 查詢碼完整流程 ============

func TestQueryCodeRoundTrip(t *testing.T) {
	key := "config-code-key"

	// 1. 建案時產碼
	code, err := GenerateQueryCode(8)
	if err != nil {
		t.Fatalf("產碼失敗: %v", err)
	}

	// 2. 落地三種形式：hash、密文、提示
	hashed, _ := HashCode(code)
	enc, err := EncryptCode(key, code)
	if err != nil {
		t.Fatalf("加密失敗: %v", err)
	}

	// 3. 單位查詢驗碼
	if !CheckCode(code, hashed) {
		t.Error("查詢碼驗證失敗")
	}

	// 4. 教師驗密碼後解回明碼
	plain, err := DecryptCode(key, enc)
	if err != nil {
		t.Fatalf("解密失敗: %v", err)
	}
	if plain != code {
		t.Errorf("解回的明碼不符: 期望 %s，實際 %s", code, plain)
	}

	// 金鑰不對時解不開
	if _, err := DecryptCode("other-key", enc); err == nil {
		t.Error("金鑰不符應解密失敗")
	}
}

// ============ 性能測試 ============

func BenchmarkHashCode(b *testing.B) {
	for i := 0; i < b.N; i++ {
		HashCode("AB23CD45")
	}
}

func BenchmarkCheckCode(b *testing.B) {
	hashed, _ := HashCode("AB23CD45")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		CheckCode("AB23CD45", hashed)
	}
}
