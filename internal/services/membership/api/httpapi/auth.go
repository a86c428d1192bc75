package httpapi

import (
	"crypto/ed25519"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/louisbranch/memberdesk/internal/platform/errors"
	"github.com/louisbranch/memberdesk/internal/platform/requestctx"
)

// AuthConfig defines how bearer access tokens are verified.
type AuthConfig struct {
	Issuer   string
	Audience string
	Key      ed25519.PublicKey
	Now      func() time.Time
}

// ParseAuthConfig validates raw issuer, audience, and base64 Ed25519 key values.
func ParseAuthConfig(issuer, audience, publicKey string, now func() time.Time) (AuthConfig, error) {
	issuer = strings.TrimSpace(issuer)
	audience = strings.TrimSpace(audience)
	publicKey = strings.TrimSpace(publicKey)
	if issuer == "" {
		return AuthConfig{}, fmt.Errorf("MEMBERDESK_AUTH_ISSUER is required")
	}
	if audience == "" {
		return AuthConfig{}, fmt.Errorf("MEMBERDESK_AUTH_AUDIENCE is required")
	}
	if publicKey == "" {
		return AuthConfig{}, fmt.Errorf("MEMBERDESK_AUTH_PUBLIC_KEY is required")
	}
	keyBytes, err := decodeBase64(publicKey)
	if err != nil {
		return AuthConfig{}, fmt.Errorf("decode auth public key: %w", err)
	}
	if len(keyBytes) != ed25519.PublicKeySize {
		return AuthConfig{}, fmt.Errorf("auth public key must be %d bytes", ed25519.PublicKeySize)
	}
	if now == nil {
		now = time.Now
	}
	return AuthConfig{
		Issuer:   issuer,
		Audience: audience,
		Key:      ed25519.PublicKey(keyBytes),
		Now:      now,
	}, nil
}

// accessClaims is the claims type used for JWT parsing.
type accessClaims struct {
	jwt.RegisteredClaims
}

// Authenticate verifies a bearer token and returns its subject user ID.
func (cfg AuthConfig) Authenticate(token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", apperrors.New(apperrors.CodeUnauthenticated, "access token is required")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Issuer == "" || cfg.Audience == "" || len(cfg.Key) != ed25519.PublicKeySize {
		return "", errors.New("access token verifier is not configured")
	}

	var parsed accessClaims
	_, err := jwt.ParseWithClaims(token, &parsed, func(*jwt.Token) (any, error) {
		return cfg.Key, nil
	},
		jwt.WithValidMethods([]string{"EdDSA"}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return "", mapJWTError(err)
	}

	if parsed.Issuer != cfg.Issuer {
		return "", apperrors.New(apperrors.CodeUnauthenticated, "access token issuer mismatch")
	}
	if !audienceContains(parsed.Audience, cfg.Audience) {
		return "", apperrors.New(apperrors.CodeUnauthenticated, "access token audience mismatch")
	}
	if parsed.ExpiresAt == nil {
		return "", apperrors.New(apperrors.CodeUnauthenticated, "access token exp is required")
	}
	now := cfg.Now().UTC()
	if !parsed.ExpiresAt.Time.UTC().After(now) {
		return "", apperrors.New(apperrors.CodeUnauthenticated, "access token is expired")
	}
	if parsed.NotBefore != nil && now.Before(parsed.NotBefore.Time.UTC()) {
		return "", apperrors.New(apperrors.CodeUnauthenticated, "access token not active yet")
	}
	subject := strings.TrimSpace(parsed.Subject)
	if subject == "" {
		return "", apperrors.New(apperrors.CodeUnauthenticated, "access token subject is required")
	}
	return subject, nil
}

// mapJWTError translates jwt library errors to application errors.
func mapJWTError(err error) error {
	if errors.Is(err, jwt.ErrTokenSignatureInvalid) || errors.Is(err, jwt.ErrEd25519Verification) {
		return apperrors.Wrap(apperrors.CodeUnauthenticated, "access token signature is invalid", err)
	}
	if errors.Is(err, jwt.ErrTokenUnverifiable) {
		return apperrors.Wrap(apperrors.CodeUnauthenticated, "access token alg is invalid", err)
	}
	return apperrors.Wrap(apperrors.CodeUnauthenticated, "access token is invalid", err)
}

// audienceContains reports whether the audience list contains the given value.
func audienceContains(aud jwt.ClaimStrings, value string) bool {
	for _, item := range aud {
		if item == value {
			return true
		}
	}
	return false
}

func decodeBase64(value string) ([]byte, error) {
	if value == "" {
		return nil, errors.New("empty base64 value")
	}
	decoded, err := base64.RawStdEncoding.DecodeString(value)
	if err == nil {
		return decoded, nil
	}
	return base64.StdEncoding.DecodeString(value)
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// authenticated resolves the caller from the bearer token before next runs.
func (h *Handler) authenticated(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := h.auth.Authenticate(bearerToken(r))
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		next(w, r.WithContext(requestctx.WithUserID(r.Context(), userID)))
	}
}
