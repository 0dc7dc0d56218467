package auth

import (
	"errors"
	"strings"
	"testing"
)

func TestHashPasswordSHA256MatchesStoredFormat(t *testing.T) {
	hash, err := HashPassword(SchemeSHA256, "password")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	const want = "5e884898da28047151d0e56f8dc6292773603d0d6aabbdd62a11ef721d1542d8"
	if hash != want {
		t.Fatalf("HashPassword() = %q, want %q", hash, want)
	}
	if !CheckPassword("password", hash) {
		t.Fatal("CheckPassword() rejected the right password")
	}
	if CheckPassword("Password", hash) {
		t.Fatal("CheckPassword() accepted the wrong password")
	}
}

func TestHashPasswordBcrypt(t *testing.T) {
	hash, err := HashPassword(SchemeBcrypt, "s3cret")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if hash[:2] != "$2" {
		t.Fatalf("HashPassword() = %q, want bcrypt format", hash)
	}
	if !CheckPassword("s3cret", hash) {
		t.Fatal("CheckPassword() rejected the right password")
	}
	if CheckPassword("wrong", hash) {
		t.Fatal("CheckPassword() accepted the wrong password")
	}
}

func TestHashPasswordBcryptTooLong(t *testing.T) {
	if _, err := HashPassword(SchemeBcrypt, strings.Repeat("a", 72)); err != nil {
		t.Fatalf("HashPassword(72 bytes) error = %v", err)
	}
	if _, err := HashPassword(SchemeBcrypt, strings.Repeat("a", 73)); !errors.Is(err, ErrPasswordTooLong) {
		t.Fatalf("HashPassword(73 bytes) error = %v, want ErrPasswordTooLong", err)
	}
	if _, err := HashPassword(SchemeSHA256, strings.Repeat("a", 200)); err != nil {
		t.Fatalf("HashPassword(sha256, 200 bytes) error = %v", err)
	}
}

func TestCheckPasswordRejectsGarbage(t *testing.T) {
	for _, stored := range []string{"", "not-a-hash", "$2a$broken"} {
		if CheckPassword("anything", stored) {
			t.Fatalf("CheckPassword(%q) = true", stored)
		}
	}
}

func TestParseScheme(t *testing.T) {
	tests := map[string]Scheme{"": SchemeSHA256, "SHA256": SchemeSHA256, " bcrypt ": SchemeBcrypt}
	for in, want := range tests {
		got, err := ParseScheme(in)
		if err != nil || got != want {
			t.Fatalf("ParseScheme(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseScheme("md5"); err == nil {
		t.Fatal("ParseScheme(md5) should fail")
	}
}
