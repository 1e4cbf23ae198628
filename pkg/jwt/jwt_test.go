package jwt

import (
	"testing"
	"time"

	"github.com/kushsarora/buttons/config"
)

func newTestManager(ttl time.Duration) *Manager {
	return NewManager(&config.AuthConfig{
		JWTSecret:      "test-secret-at-least-16-chars",
		AccessTokenTTL: ttl,
	})
}

func TestGenerateAndParseAccessToken(t *testing.T) {
	mgr := newTestManager(15 * time.Minute)

	token, err := mgr.GenerateAccessToken("user-1", "stu@example.edu", "张三")
	if err != nil {
		t.Fatalf("生成 Access Token 失败: %v", err)
	}

	claims, err := mgr.ParseToken(token)
	if err != nil {
		t.Fatalf("解析 Token 失败: %v", err)
	}
	if claims.UserID != "user-1" {
		t.Errorf("UserID 期望 user-1, 实际 %s", claims.UserID)
	}
	if claims.TokenType != "access" {
		t.Errorf("TokenType 期望 access, 实际 %s", claims.TokenType)
	}
	if claims.ID == "" {
		t.Error("JTI 不应为空")
	}
}

func TestParseToken_Expired(t *testing.T) {
	mgr := newTestManager(-1 * time.Minute)

	token, err := mgr.GenerateAccessToken("user-1", "", "")
	if err != nil {
		t.Fatalf("生成 Token 失败: %v", err)
	}

	if _, err := mgr.ParseToken(token); err != ErrTokenExpired {
		t.Errorf("期望 ErrTokenExpired, 实际 %v", err)
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	mgr := newTestManager(15 * time.Minute)
	other := NewManager(&config.AuthConfig{
		JWTSecret:      "another-secret-16-chars-long",
		AccessTokenTTL: 15 * time.Minute,
	})

	token, err := mgr.GenerateAccessToken("user-1", "", "")
	if err != nil {
		t.Fatalf("生成 Token 失败: %v", err)
	}

	if _, err := other.ParseToken(token); err != ErrTokenInvalid {
		t.Errorf("期望 ErrTokenInvalid, 实际 %v", err)
	}
}

func TestParseToken_Garbage(t *testing.T) {
	mgr := newTestManager(15 * time.Minute)

	if _, err := mgr.ParseToken("not-a-jwt"); err != ErrTokenInvalid {
		t.Errorf("期望 ErrTokenInvalid, 实际 %v", err)
	}
}
