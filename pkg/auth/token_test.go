package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/harborpoint/billing-backend/pkg/config"
)

var testJWTConfig = config.JWTConfig{
	Secret: "unit-test-secret",
	Issuer: "harborpoint-auth",
}

func TestMintAndParseRoundTrip(t *testing.T) {
	userID := uuid.New()
	token, err := MintAccessToken(testJWTConfig, time.Now(), AccessTokenPayload{
		UserID: userID,
		Email:  "user@example.com",
	})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	claims, err := ParseAccessToken(testJWTConfig, token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != userID {
		t.Fatalf("expected user id %s, got %s", userID, claims.UserID)
	}
	if claims.Email != "user@example.com" {
		t.Fatalf("unexpected email %q", claims.Email)
	}
	if claims.ID == "" {
		t.Fatalf("expected generated jti")
	}
}

func TestParseRejectsExpiredToken(t *testing.T) {
	token, err := MintAccessToken(testJWTConfig, time.Now().Add(-time.Hour), AccessTokenPayload{
		UserID: uuid.New(),
		Email:  "user@example.com",
	})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	if _, err := ParseAccessToken(testJWTConfig, token); err == nil {
		t.Fatalf("expected expiry error")
	}
}

func TestParseRejectsWrongIssuer(t *testing.T) {
	other := config.JWTConfig{Secret: testJWTConfig.Secret, Issuer: "someone-else"}
	token, err := MintAccessToken(other, time.Now(), AccessTokenPayload{
		UserID: uuid.New(),
		Email:  "user@example.com",
	})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	if _, err := ParseAccessToken(testJWTConfig, token); err == nil {
		t.Fatalf("expected issuer error")
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	token, err := MintAccessToken(testJWTConfig, time.Now(), AccessTokenPayload{
		UserID: uuid.New(),
		Email:  "user@example.com",
	})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	bad := config.JWTConfig{Secret: "other-secret", Issuer: testJWTConfig.Issuer}
	if _, err := ParseAccessToken(bad, token); err == nil {
		t.Fatalf("expected signature error")
	}
}

func TestMintValidatesPayload(t *testing.T) {
	if _, err := MintAccessToken(testJWTConfig, time.Now(), AccessTokenPayload{Email: "a@b.c"}); err == nil || !strings.Contains(err.Error(), "user id") {
		t.Fatalf("expected user id error, got %v", err)
	}
	if _, err := MintAccessToken(testJWTConfig, time.Now(), AccessTokenPayload{UserID: uuid.New()}); err == nil || !strings.Contains(err.Error(), "email") {
		t.Fatalf("expected email error, got %v", err)
	}
}
