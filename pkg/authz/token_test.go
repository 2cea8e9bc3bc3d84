package authz

import (
	"strings"
	"testing"
)

func TestTokenGenerator_GenerateToken(t *testing.T) {
	tg := NewTokenGenerator()

	token, err := tg.GenerateToken()
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	if !strings.HasPrefix(token, TokenPrefix) {
		t.Errorf("Token should start with %q, got %q", TokenPrefix, token)
	}

	// 32 random bytes base64url-encoded is 43 chars
	if len(token) != len(TokenPrefix)+43 {
		t.Errorf("Token length = %d, want %d", len(token), len(TokenPrefix)+43)
	}

	if err := tg.ValidateTokenFormat(token); err != nil {
		t.Errorf("Generated token failed its own format check: %v", err)
	}
}

func TestTokenGenerator_GenerateToken_Uniqueness(t *testing.T) {
	tg := NewTokenGenerator()

	tokens := make(map[string]bool)
	for i := 0; i < 100; i++ {
		token, err := tg.GenerateToken()
		if err != nil {
			t.Fatalf("GenerateToken() error = %v", err)
		}
		if tokens[token] {
			t.Errorf("Duplicate token generated: %s", token)
		}
		tokens[token] = true
	}
}

func TestTokenGenerator_ValidateTokenFormat(t *testing.T) {
	tg := NewTokenGenerator()

	tests := []struct {
		name    string
		token   string
		wantErr bool
	}{
		{"valid token", "fr_dGVzdC10b2tlbi1ib2R5", false},
		{"missing prefix", "dGVzdC10b2tlbi1ib2R5", true},
		{"wrong prefix", "tk_dGVzdC10b2tlbi1ib2R5", true},
		{"prefix only", "fr_", true},
		{"invalid base64url", "fr_!!!not-base64!!!", true},
		{"empty string", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tg.ValidateTokenFormat(tt.token)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateTokenFormat(%q) error = %v, wantErr %v", tt.token, err, tt.wantErr)
			}
		})
	}
}

func TestTokenGenerator_ExtractPrefix(t *testing.T) {
	tg := NewTokenGenerator()

	token, err := tg.GenerateToken()
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	prefix := tg.ExtractPrefix(token)
	if !strings.HasPrefix(token, prefix) {
		t.Errorf("ExtractPrefix(%q) = %q, not a prefix of the token", token, prefix)
	}
	if len(prefix) != len(TokenPrefix)+8 {
		t.Errorf("Prefix length = %d, want %d", len(prefix), len(TokenPrefix)+8)
	}

	if got := tg.ExtractPrefix("bogus"); got != "" {
		t.Errorf("ExtractPrefix on foreign token = %q, want empty", got)
	}
}
