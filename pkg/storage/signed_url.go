package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SignedURLSigner issues and validates HMAC-signed download tokens. A token
// binds a reference id (the application) to a stored filename and an expiry,
// so an archived letter can be fetched without an authenticated session.
type SignedURLSigner struct {
	secret []byte
	ttl    time.Duration
}

// NewSignedURLSigner builds a signer. A non-positive ttl defaults to 24h.
func NewSignedURLSigner(secret string, ttl time.Duration) *SignedURLSigner {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SignedURLSigner{secret: []byte(secret), ttl: ttl}
}

// Generate returns a token for refID and filename along with its expiry.
func (s *SignedURLSigner) Generate(refID, filename string) (string, time.Time, error) {
	if refID == "" || filename == "" {
		return "", time.Time{}, fmt.Errorf("refID and filename required")
	}
	if len(s.secret) == 0 {
		return "", time.Time{}, fmt.Errorf("signing secret missing")
	}

	expiresAt := time.Now().Add(s.ttl)
	encodedName := base64.RawURLEncoding.EncodeToString([]byte(filename))
	token := strings.Join([]string{
		refID,
		strconv.FormatInt(expiresAt.Unix(), 10),
		encodedName,
		s.sign(refID, expiresAt.Unix(), encodedName),
	}, ".")
	return token, expiresAt, nil
}

// Parse validates a token and returns the reference id and filename it was
// issued for. Expired or tampered tokens fail.
func (s *SignedURLSigner) Parse(token string) (refID, filename string, err error) {
	parts := strings.Split(token, ".")
	if len(parts) != 4 {
		return "", "", fmt.Errorf("invalid token format")
	}
	refID, rawExpiry, encodedName, signature := parts[0], parts[1], parts[2], parts[3]

	expUnix, err := strconv.ParseInt(rawExpiry, 10, 64)
	if err != nil {
		return "", "", fmt.Errorf("invalid token timestamp")
	}

	expected := s.sign(refID, expUnix, encodedName)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return "", "", fmt.Errorf("invalid token signature")
	}
	if time.Now().After(time.Unix(expUnix, 0)) {
		return "", "", fmt.Errorf("token expired")
	}

	rawName, err := base64.RawURLEncoding.DecodeString(encodedName)
	if err != nil {
		return "", "", fmt.Errorf("decode filename: %w", err)
	}
	return refID, string(rawName), nil
}

func (s *SignedURLSigner) sign(refID string, expUnix int64, encodedName string) string {
	mac := hmac.New(sha256.New, s.secret)
	fmt.Fprintf(mac, "%s|%d|%s", refID, expUnix, encodedName)
	return hex.EncodeToString(mac.Sum(nil))
}
