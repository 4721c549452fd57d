package token

import (
	"crypto/rand"
	"encoding/base64"
	"log"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomSecret() string {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		log.Fatalf("Error generating random bytes: %v", err)
	}
	return base64.URLEncoding.EncodeToString(bytes)
}

func TestJwtService(t *testing.T) {
	// Setup
	secretKey := randomSecret()
	issuer := "vinom-nav"

	svc := NewJwtService(secretKey, issuer)

	t.Run("Generate and Decode valid token", func(t *testing.T) {
		claims := map[string]interface{}{
			"operatorID": "5b0c2c3e-2d5c-4d7e-9a55-7b1c1f1e2a33",
			"username":   "nav_admin",
		}

		token, err := svc.Generate(claims, 5*time.Minute)
		require.NoError(t, err)
		assert.NotEmpty(t, token)

		decoded, err := svc.Decode(token)
		require.NoError(t, err)
		assert.Equal(t, "nav_admin", decoded["username"])
		assert.Equal(t, issuer, decoded["iss"])
	})

	t.Run("Decode invalid token", func(t *testing.T) {
		_, err := svc.Decode("invalidTokenString")
		assert.Error(t, err)
	})

	t.Run("Decode expired token", func(t *testing.T) {
		token, err := svc.Generate(map[string]interface{}{"username": "nav_admin"}, -time.Minute)
		require.NoError(t, err)

		_, err = svc.Decode(token)
		assert.Error(t, err)
	})

	t.Run("Caller cannot override issuer", func(t *testing.T) {
		token, err := svc.Generate(map[string]interface{}{"iss": "someone-else"}, time.Minute)
		require.NoError(t, err)

		decoded, err := svc.Decode(token)
		require.NoError(t, err)
		assert.Equal(t, issuer, decoded["iss"])
	})

	t.Run("Decode token from another issuer", func(t *testing.T) {
		other := NewJwtService(secretKey, "another-service")
		token, err := other.Generate(map[string]interface{}{}, time.Minute)
		require.NoError(t, err)

		_, err = svc.Decode(token)
		assert.ErrorIs(t, err, ErrIssuerMismatch)
	})

	t.Run("Decode token signed with another secret", func(t *testing.T) {
		other := NewJwtService(randomSecret(), issuer)
		token, err := other.Generate(map[string]interface{}{}, time.Minute)
		require.NoError(t, err)

		_, err = svc.Decode(token)
		assert.Error(t, err)
	})

	t.Run("Decode token with none algorithm", func(t *testing.T) {
		unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
			"iss": issuer,
			"exp": time.Now().Add(time.Minute).Unix(),
		})
		token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = svc.Decode(token)
		assert.Error(t, err)
	})
}
