package auth

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	apperrors "github.com/yanqian/cogniwell/pkg/errors"
)

const testSecret = "test-secret"

func TestValidateTokenAcceptsSignedSubject(t *testing.T) {
	svc := NewService(Config{Secret: testSecret, Issuer: "https://auth.example.com", Audience: "authenticated"}, newTestLogger())
	userID := uuid.New()

	token := sign(t, testSecret, jwt.MapClaims{
		"sub":   userID.String(),
		"email": "user@example.com",
		"role":  "authenticated",
		"iss":   "https://auth.example.com",
		"aud":   "authenticated",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})

	claims, err := svc.ValidateToken(context.Background(), token)
	require.NoError(t, err)
	require.Equal(t, userID, claims.UserID)
	require.Equal(t, "user@example.com", claims.Email)
	require.Equal(t, "authenticated", claims.Role)
	require.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt, time.Minute)
}

func TestValidateTokenRejects(t *testing.T) {
	svc := NewService(Config{Secret: testSecret, Issuer: "https://auth.example.com"}, newTestLogger())
	valid := func() jwt.MapClaims {
		return jwt.MapClaims{
			"sub": uuid.NewString(),
			"iss": "https://auth.example.com",
			"exp": time.Now().Add(time.Hour).Unix(),
		}
	}

	cases := map[string]string{
		"empty":       "",
		"garbage":     "not-a-token",
		"wrongSecret": sign(t, "other-secret", valid()),
	}
	expired := valid()
	expired["exp"] = time.Now().Add(-time.Minute).Unix()
	cases["expired"] = sign(t, testSecret, expired)

	noExpiry := valid()
	delete(noExpiry, "exp")
	cases["noExpiry"] = sign(t, testSecret, noExpiry)

	badSubject := valid()
	badSubject["sub"] = "42"
	cases["badSubject"] = sign(t, testSecret, badSubject)

	wrongIssuer := valid()
	wrongIssuer["iss"] = "https://evil.example.com"
	cases["wrongIssuer"] = sign(t, testSecret, wrongIssuer)

	for name, token := range cases {
		_, err := svc.ValidateToken(context.Background(), token)
		require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidToken), name)
	}
}

func sign(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
