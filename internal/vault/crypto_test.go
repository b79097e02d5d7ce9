package vault

import (
	"bytes"
	"encoding/hex"
	"errors"
	"strings"
	"testing"
)

func testKey() string {
	return hex.EncodeToString(bytes.Repeat([]byte{0x42}, KeySize))
}

func TestNewCipher(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		key     string
		wantErr bool
	}{
		{"valid 32-byte key", testKey(), false},
		{"too short", hex.EncodeToString([]byte("short")), true},
		{"too long", hex.EncodeToString(bytes.Repeat([]byte{1}, 48)), true},
		{"not hex", "zz" + testKey()[2:], true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := NewCipher(tt.key)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewCipher() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCipherRoundTrip(t *testing.T) {
	t.Parallel()

	c, err := NewCipher(testKey())
	if err != nil {
		t.Fatalf("NewCipher() error = %v", err)
	}

	plaintext := "IBAN DE02 1203 0000 0000 2020 51"
	sealed, err := c.Encrypt(plaintext)
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}

	if strings.Contains(string(sealed), plaintext) {
		t.Error("ciphertext contains the plaintext")
	}

	got, err := c.Decrypt(sealed)
	if err != nil {
		t.Fatalf("Decrypt() error = %v", err)
	}
	if got != plaintext {
		t.Errorf("Decrypt() = %q, want %q", got, plaintext)
	}
}

func TestCipherNonceUniqueness(t *testing.T) {
	t.Parallel()

	c, err := NewCipher(testKey())
	if err != nil {
		t.Fatalf("NewCipher() error = %v", err)
	}

	a, err := c.Encrypt("same value")
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}
	b, err := c.Encrypt("same value")
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}

	if bytes.Equal(a, b) {
		t.Error("two encryptions of the same value produced identical ciphertexts")
	}
}

func TestCipherDecryptFailures(t *testing.T) {
	t.Parallel()

	c, err := NewCipher(testKey())
	if err != nil {
		t.Fatalf("NewCipher() error = %v", err)
	}

	sealed, err := c.Encrypt("secret")
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}

	t.Run("tampered ciphertext", func(t *testing.T) {
		t.Parallel()

		tampered := append([]byte(nil), sealed...)
		tampered[len(tampered)-1] ^= 0xFF
		if _, err := c.Decrypt(tampered); !errors.Is(err, ErrDecryptFailed) {
			t.Errorf("Decrypt(tampered) error = %v, want ErrDecryptFailed", err)
		}
	})

	t.Run("wrong key", func(t *testing.T) {
		t.Parallel()

		other, err := NewCipher(hex.EncodeToString(bytes.Repeat([]byte{0x99}, KeySize)))
		if err != nil {
			t.Fatalf("NewCipher() error = %v", err)
		}
		if _, err := other.Decrypt(sealed); !errors.Is(err, ErrDecryptFailed) {
			t.Errorf("Decrypt with wrong key error = %v, want ErrDecryptFailed", err)
		}
	})

	t.Run("truncated input", func(t *testing.T) {
		t.Parallel()

		if _, err := c.Decrypt([]byte{0x01, 0x02}); !errors.Is(err, ErrDecryptFailed) {
			t.Errorf("Decrypt(short) error = %v, want ErrDecryptFailed", err)
		}
	})
}
