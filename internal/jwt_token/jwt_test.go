package jwttoken

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "linkdeck/pkg/domain-errors"
)

func newTestService() *JWTService {
	return NewJWTService("test-signing-key", "linkdeck", "linkdeck-api")
}

func TestGenerateAndValidate(t *testing.T) {
	svc := newTestService()
	profileID := uuid.New()

	token, err := svc.GenerateAccessToken(profileID, "PRO", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, profileID.String(), claims.ProfileID)
	assert.Equal(t, "PRO", claims.Tier)
}

func TestValidateRejections(t *testing.T) {
	svc := newTestService()

	t.Run("expired token", func(t *testing.T) {
		token, err := svc.GenerateAccessToken(uuid.New(), "FREE", -time.Minute)
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)
		require.Error(t, err)
		assert.True(t, dErrors.Is(err, dErrors.CodeUnauthorized))
	})

	t.Run("wrong signing key", func(t *testing.T) {
		other := NewJWTService("another-key", "linkdeck", "linkdeck-api")
		token, err := other.GenerateAccessToken(uuid.New(), "FREE", time.Hour)
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)
		require.Error(t, err)
		assert.True(t, dErrors.Is(err, dErrors.CodeUnauthorized))
	})

	t.Run("garbage input", func(t *testing.T) {
		_, err := svc.ValidateToken("not-a-token")
		require.Error(t, err)
		assert.True(t, dErrors.Is(err, dErrors.CodeUnauthorized))
	})

	t.Run("unsigned token", func(t *testing.T) {
		unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
			ProfileID: uuid.NewString(),
			Tier:      "PRO",
		})
		token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)
		require.Error(t, err)
		assert.True(t, dErrors.Is(err, dErrors.CodeUnauthorized))
	})
}
