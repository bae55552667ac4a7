package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/erazemk/najdeno/internal/model"
)

func TestGenerateAndValidateToken(t *testing.T) {
	secret := "test-secret-key"

	token, err := GenerateToken(secret, 1, "admin", model.RoleAdmin)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}

	claims, err := ValidateToken(secret, token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}

	if claims.UserID != 1 {
		t.Errorf("expected user_id 1, got %d", claims.UserID)
	}
	if claims.Username != "admin" {
		t.Errorf("expected username 'admin', got %q", claims.Username)
	}
	if claims.Role != model.RoleAdmin {
		t.Errorf("expected role 'admin', got %q", claims.Role)
	}
	if claims.Issuer != Issuer {
		t.Errorf("expected issuer %q, got %q", Issuer, claims.Issuer)
	}
	if claims.ID == "" {
		t.Error("expected a JTI")
	}
}

func TestValidateTokenWrongSecret(t *testing.T) {
	token, _ := GenerateToken("secret1", 1, "admin", model.RoleAdmin)

	_, err := ValidateToken("secret2", token)
	if err == nil {
		t.Error("expected error for wrong secret")
	}
}

func TestValidateTokenInvalid(t *testing.T) {
	_, err := ValidateToken("secret", "not-a-token")
	if err == nil {
		t.Error("expected error for invalid token")
	}
}

func TestTokenExpiry(t *testing.T) {
	secret := "test"
	token, _ := GenerateToken(secret, 1, "test", model.RoleUser)
	claims, _ := ValidateToken(secret, token)

	expiresAt := claims.ExpiresAt.Time
	expectedExpiry := time.Now().Add(TokenExpiry)

	// Should be within a few seconds.
	diff := expectedExpiry.Sub(expiresAt)
	if diff < -5*time.Second || diff > 5*time.Second {
		t.Errorf("token expiry too far from expected: diff=%v", diff)
	}
}

func TestUniqueJTI(t *testing.T) {
	a, _ := GenerateToken("s", 1, "u", model.RoleUser)
	b, _ := GenerateToken("s", 1, "u", model.RoleUser)
	ca, _ := ValidateToken("s", a)
	cb, _ := ValidateToken("s", b)
	if ca.ID == cb.ID {
		t.Error("expected distinct JTIs")
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header  string
		want    string
		wantErr bool
	}{
		{"Bearer abc", "abc", false},
		{"Bearer  abc ", "abc", false},
		{"Bearer ", "", true},
		{"Basic abc", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := BearerToken(tt.header)
		if (err != nil) != tt.wantErr {
			t.Errorf("BearerToken(%q) error = %v, wantErr %v", tt.header, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, ErrNoBearer) {
			t.Errorf("BearerToken(%q) error = %v, want ErrNoBearer", tt.header, err)
		}
		if got != tt.want {
			t.Errorf("BearerToken(%q) = %q, want %q", tt.header, got, tt.want)
		}
	}

	if BearerHeader("") != "" || BearerHeader("x") != "Bearer x" {
		t.Error("unexpected BearerHeader output")
	}
}
