package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var testSecret = []byte("test-signing-secret-32-bytes-ok!")

func TestMintAndResolveToken(t *testing.T) {
	token, err := MintToken(testSecret, "u-123", "student@campus.edu", "Test Student", "campus", false)
	if err != nil {
		t.Fatalf("MintToken: %v", err)
	}

	claims, err := ResolveToken(testSecret, token)
	if err != nil {
		t.Fatalf("ResolveToken: %v", err)
	}
	if claims.UserID != "u-123" {
		t.Errorf("UserID = %q, want %q", claims.UserID, "u-123")
	}
	if claims.Email != "student@campus.edu" {
		t.Errorf("Email = %q, want %q", claims.Email, "student@campus.edu")
	}
	if claims.Admin {
		t.Error("Admin = true, want false")
	}
}

func TestResolveTokenWrongSecret(t *testing.T) {
	token, err := MintToken(testSecret, "u-123", "a@b.c", "", "other", false)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ResolveToken([]byte("another-secret-entirely-32-bytes"), token); err == nil {
		t.Error("token signed with a different secret was accepted")
	}
}

func TestResolveTokenGarbage(t *testing.T) {
	for _, tok := range []string{"", "garbage", "a.b.c"} {
		if _, err := ResolveToken(testSecret, tok); err == nil {
			t.Errorf("ResolveToken accepted %q", tok)
		}
	}
}

func TestResolveTokenExpired(t *testing.T) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
		UserID: "u-123",
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ResolveToken(testSecret, signed); err == nil {
		t.Error("expired token was accepted")
	}
}

func TestResolveTokenMissingUserID(t *testing.T) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ResolveToken(testSecret, signed); err == nil {
		t.Error("token without user id was accepted")
	}
}
