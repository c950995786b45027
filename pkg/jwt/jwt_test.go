package jwt

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	svc := NewService("test-secret", time.Minute, time.Hour)

	userID := uuid.New()
	token, err := svc.GenerateAccessToken(userID, "user@example.com", "user")
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	claims, err := svc.ValidateAccessToken(token)
	if err != nil {
		t.Fatalf("ValidateAccessToken: %v", err)
	}

	if claims.UserID != userID {
		t.Errorf("expected user id %s, got %s", userID, claims.UserID)
	}
	if claims.Email != "user@example.com" {
		t.Errorf("unexpected email: %s", claims.Email)
	}
	if claims.Username != "user" {
		t.Errorf("unexpected username: %s", claims.Username)
	}
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	svc := NewService("test-secret", time.Minute, time.Hour)

	userID := uuid.New()
	token, err := svc.GenerateRefreshToken(userID)
	if err != nil {
		t.Fatalf("GenerateRefreshToken: %v", err)
	}

	got, err := svc.ValidateRefreshToken(token)
	if err != nil {
		t.Fatalf("ValidateRefreshToken: %v", err)
	}
	if got != userID {
		t.Errorf("expected user id %s, got %s", userID, got)
	}
}

func TestValidateAccessTokenRejectsRefreshToken(t *testing.T) {
	svc := NewService("test-secret", time.Minute, time.Hour)

	token, err := svc.GenerateRefreshToken(uuid.New())
	if err != nil {
		t.Fatalf("GenerateRefreshToken: %v", err)
	}

	if _, err := svc.ValidateAccessToken(token); err == nil {
		t.Error("expected refresh token to be rejected as access token")
	}
}

func TestValidateAccessTokenWrongSecret(t *testing.T) {
	svc := NewService("test-secret", time.Minute, time.Hour)
	other := NewService("other-secret", time.Minute, time.Hour)

	token, err := svc.GenerateAccessToken(uuid.New(), "user@example.com", "user")
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	if _, err := other.ValidateAccessToken(token); err == nil {
		t.Error("expected token signed with different secret to be rejected")
	}
}
