package auth

import (
	"testing"
	"time"
)

func TestIssueAndParseToken(t *testing.T) {
	svc := NewService("test-secret", time.Hour)

	token, err := svc.IssueToken("B-1042", "J. Doe", true)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	claims, err := svc.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.Badge() != "B-1042" {
		t.Errorf("Badge() = %q, want B-1042", claims.Badge())
	}
	if claims.Name != "J. Doe" {
		t.Errorf("Name = %q, want J. Doe", claims.Name)
	}
	if !claims.IsAdmin {
		t.Error("IsAdmin = false, want true")
	}
}

func TestParseTokenWrongSecret(t *testing.T) {
	token, err := NewService("secret-a", time.Hour).IssueToken("B-1", "A", false)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	if _, err := NewService("secret-b", time.Hour).ParseToken(token); err == nil {
		t.Fatal("expected error for token signed with different secret")
	}
}

func TestParseExpiredToken(t *testing.T) {
	token, err := NewService("test-secret", -time.Minute).IssueToken("B-1", "A", false)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	if _, err := NewService("test-secret", -time.Minute).ParseToken(token); err == nil {
		t.Fatal("expected error for expired token")
	}
}

func TestParseGarbageToken(t *testing.T) {
	if _, err := NewService("test-secret", time.Hour).ParseToken("not.a.token"); err == nil {
		t.Fatal("expected error for malformed token")
	}
}
