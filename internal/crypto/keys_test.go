package crypto

import (
	"bytes"
	"errors"
	"testing"
)

func TestRand_LengthUniq(t *testing.T) {
	t.Parallel()
	const n = 48
	a, err := Rand(n)
	if err != nil {
		t.Fatalf("Rand: %v", err)
	}
	if len(a) != n {
		t.Fatalf("len=%d, want=%d", len(a), n)
	}
	b, _ := Rand(n)
	if bytes.Equal(a, b) {
		t.Fatalf("Rand produced equal slices")
	}
}

func TestCookieKeys_DeterministicAndIndependent(t *testing.T) {
	t.Parallel()
	secret := []byte("a-long-enough-portal-secret")

	h1, b1, err := CookieKeys(secret)
	if err != nil {
		t.Fatalf("CookieKeys: %v", err)
	}
	if len(h1) != HashKeyLen || len(b1) != BlockKeyLen {
		t.Fatalf("key lengths: hash=%d block=%d", len(h1), len(b1))
	}
	h2, b2, _ := CookieKeys(secret)
	if !bytes.Equal(h1, h2) || !bytes.Equal(b1, b2) {
		t.Fatalf("CookieKeys not deterministic")
	}
	if bytes.Equal(h1[:BlockKeyLen], b1) {
		t.Fatalf("hash and block keys must differ")
	}
	h3, _, _ := CookieKeys([]byte("another-long-enough-secret"))
	if bytes.Equal(h1, h3) {
		t.Fatalf("keys must change with the secret")
	}
}

func TestCookieKeys_ShortSecret(t *testing.T) {
	t.Parallel()
	if _, _, err := CookieKeys([]byte("short")); !errors.Is(err, ErrShortSecret) {
		t.Fatalf("want ErrShortSecret, got %v", err)
	}
}
