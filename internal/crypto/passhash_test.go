package crypto

import (
	"bytes"
	"testing"
)

func TestRandBytes(t *testing.T) {
	t.Parallel()

	const n = 16
	a, err := RandBytes(n)
	if err != nil {
		t.Fatalf("RandBytes: %v", err)
	}
	if len(a) != n {
		t.Fatalf("len=%d, want=%d", len(a), n)
	}
	if bytes.Equal(a, make([]byte, n)) {
		t.Fatalf("RandBytes returned all zeros")
	}

	b, err := RandBytes(n)
	if err != nil {
		t.Fatalf("RandBytes(2): %v", err)
	}
	if bytes.Equal(a, b) {
		t.Fatalf("two subsequent salts are equal")
	}
}

func TestHashPassword(t *testing.T) {
	t.Parallel()

	pw := []byte("s3nha-da-escola")
	salt := []byte("0123456789abcdef")

	h := HashPassword(pw, salt)
	if len(h) != int(argonKeyLen) {
		t.Fatalf("hash len=%d, want=%d", len(h), argonKeyLen)
	}
	if !bytes.Equal(h, HashPassword(pw, salt)) {
		t.Fatalf("hash not deterministic for same password and salt")
	}
	if bytes.Equal(h, HashPassword(pw, []byte("fedcba9876543210"))) {
		t.Fatalf("same hash under different salts")
	}
	if bytes.Equal(h, HashPassword([]byte("s3nha-da-escolA"), salt)) {
		t.Fatalf("same hash for different passwords")
	}
}

func TestVerifyPassword(t *testing.T) {
	t.Parallel()

	pw := []byte("correct horse battery staple")
	salt := []byte("salty-salt-123456")
	hash := HashPassword(pw, salt)

	cases := []struct {
		name     string
		password []byte
		salt     []byte
		want     bool
	}{
		{"match", pw, salt, true},
		{"wrong password", []byte("wrong"), salt, false},
		{"wrong salt", pw, []byte("other-salt-00000"), false},
		{"empty password", []byte{}, salt, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := VerifyPassword(tc.password, tc.salt, hash); got != tc.want {
				t.Fatalf("VerifyPassword = %v, want %v", got, tc.want)
			}
		})
	}
}
