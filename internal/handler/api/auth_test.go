package api

import (
	"testing"
	"time"
)

func TestVerifyRoundTrip(t *testing.T) {
	a := NewAuthenticator("s3cret", "goldpredict")
	tok, err := a.Sign("u1", "0xabc", time.Minute)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	c, err := a.Verify(tok)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if c.UserID != "u1" || c.WalletAddress != "0xabc" {
		t.Fatalf("claims = %+v", c)
	}
}

func TestVerifyRejects(t *testing.T) {
	a := NewAuthenticator("s3cret", "goldpredict")

	expired, _ := a.Sign("u1", "", -time.Minute)
	otherKey, _ := NewAuthenticator("other", "goldpredict").Sign("u1", "", time.Minute)
	otherIssuer, _ := NewAuthenticator("s3cret", "someone-else").Sign("u1", "", time.Minute)

	tests := map[string]string{
		"expired":      expired,
		"wrong secret": otherKey,
		"wrong issuer": otherIssuer,
		"malformed":    "a.b.c",
	}
	for name, tok := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := a.Verify(tok); err == nil {
				t.Fatalf("token accepted")
			}
		})
	}
}
