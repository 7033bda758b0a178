package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrTokenInvalid is returned when a download token is malformed or tampered with.
	ErrTokenInvalid = errors.New("invalid download token")
	// ErrTokenExpired is returned when a download token is past its expiry.
	ErrTokenExpired = errors.New("download token expired")
)

// DownloadClaims identifies the attachment a signed token grants access to.
type DownloadClaims struct {
	Owner     string
	SavedName string
	ExpiresAt time.Time
}

// SignedURLSigner issues short-lived HMAC tokens for attachment downloads.
type SignedURLSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSignedURLSigner constructs a signer with the provided secret and TTL.
func NewSignedURLSigner(secret string, ttl time.Duration) *SignedURLSigner {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &SignedURLSigner{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Generate signs a token binding owner (the teacher uuid) to a stored file name.
func (s *SignedURLSigner) Generate(owner, savedName string) (string, time.Time, error) {
	if owner == "" || savedName == "" {
		return "", time.Time{}, fmt.Errorf("owner and saved name required")
	}
	if len(s.secret) == 0 {
		return "", time.Time{}, fmt.Errorf("signing secret missing")
	}
	expiresAt := s.now().Add(s.ttl).Truncate(time.Second)
	encodedName := base64.RawURLEncoding.EncodeToString([]byte(savedName))
	exp := strconv.FormatInt(expiresAt.Unix(), 10)
	signature := s.sign(owner, exp, encodedName)
	return strings.Join([]string{exp, encodedName, signature}, "."), expiresAt, nil
}

// Verify checks the token against owner and returns the embedded claims.
func (s *SignedURLSigner) Verify(owner, token string) (DownloadClaims, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return DownloadClaims{}, ErrTokenInvalid
	}
	exp, encodedName, signature := parts[0], parts[1], parts[2]

	expected := s.sign(owner, exp, encodedName)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return DownloadClaims{}, ErrTokenInvalid
	}
	expUnix, err := strconv.ParseInt(exp, 10, 64)
	if err != nil {
		return DownloadClaims{}, ErrTokenInvalid
	}
	rawName, err := base64.RawURLEncoding.DecodeString(encodedName)
	if err != nil {
		return DownloadClaims{}, ErrTokenInvalid
	}
	claims := DownloadClaims{Owner: owner, SavedName: string(rawName), ExpiresAt: time.Unix(expUnix, 0)}
	if s.now().After(claims.ExpiresAt) {
		return DownloadClaims{}, ErrTokenExpired
	}
	return claims, nil
}

func (s *SignedURLSigner) sign(owner, exp, encodedName string) string {
	mac := hmac.New(sha256.New, s.secret)
	_, _ = mac.Write([]byte(owner + "|" + exp + "|" + encodedName))
	return hex.EncodeToString(mac.Sum(nil))
}
