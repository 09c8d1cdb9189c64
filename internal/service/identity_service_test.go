package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubVerifier struct {
	userId uuid.UUID
	err    error
}

func (v *stubVerifier) Verify(ctx context.Context, token string) (uuid.UUID, error) {
	if v.err != nil {
		return uuid.Nil, v.err
	}
	return v.userId, nil
}

func TestClassify(t *testing.T) {
	userId := uuid.New()

	tests := []struct {
		name       string
		authHeader string
		sessionKey string
		verifier   *stubVerifier
		wantGuest  bool
		wantErr    error
	}{
		{
			name:       "no token with session key is guest",
			sessionKey: "session-abc",
			verifier:   &stubVerifier{},
			wantGuest:  true,
		},
		{
			name:       "valid token is authenticated",
			authHeader: "Bearer sometoken",
			sessionKey: "session-abc",
			verifier:   &stubVerifier{userId: userId},
			wantGuest:  false,
		},
		{
			name:     "no token and no session key is rejected",
			verifier: &stubVerifier{},
			wantErr:  ErrInvalidCredential,
		},
		{
			name:       "invalid token is rejected not downgraded",
			authHeader: "Bearer garbage",
			sessionKey: "session-abc",
			verifier:   &stubVerifier{err: ErrInvalidCredential},
			wantErr:    ErrInvalidCredential,
		},
		{
			name:       "provider outage surfaces as unavailable",
			authHeader: "Bearer sometoken",
			sessionKey: "session-abc",
			verifier:   &stubVerifier{err: ErrIdentityProviderUnavailable},
			wantErr:    ErrIdentityProviderUnavailable,
		},
		{
			name:       "malformed header without bearer prefix is guest",
			authHeader: "sometoken",
			sessionKey: "session-abc",
			verifier:   &stubVerifier{},
			wantGuest:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewIdentityService(tt.verifier)

			identity, err := svc.Classify(context.Background(), tt.authHeader, tt.sessionKey)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantGuest, identity.IsGuest())
			if tt.wantGuest {
				assert.Equal(t, tt.sessionKey, identity.SessionKey)
			} else {
				require.NotNil(t, identity.Auth)
				assert.Equal(t, userId, identity.Auth.UserId)
			}
		})
	}
}

func TestJWTVerifier(t *testing.T) {
	secret := "test-secret"
	userId := uuid.New()

	signToken := func(claims jwt.MapClaims, key string) string {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
		signed, err := token.SignedString([]byte(key))
		require.NoError(t, err)
		return signed
	}

	verifier := NewJWTVerifier(secret)

	t.Run("valid token resolves user id", func(t *testing.T) {
		token := signToken(jwt.MapClaims{
			"user_id": userId.String(),
			"exp":     time.Now().Add(time.Hour).Unix(),
		}, secret)

		got, err := verifier.Verify(context.Background(), token)
		require.NoError(t, err)
		assert.Equal(t, userId, got)
	})

	t.Run("wrong signature is invalid credential", func(t *testing.T) {
		token := signToken(jwt.MapClaims{
			"user_id": userId.String(),
			"exp":     time.Now().Add(time.Hour).Unix(),
		}, "wrong-secret")

		_, err := verifier.Verify(context.Background(), token)
		assert.ErrorIs(t, err, ErrInvalidCredential)
	})

	t.Run("expired token is invalid credential", func(t *testing.T) {
		token := signToken(jwt.MapClaims{
			"user_id": userId.String(),
			"exp":     time.Now().Add(-time.Hour).Unix(),
		}, secret)

		_, err := verifier.Verify(context.Background(), token)
		assert.ErrorIs(t, err, ErrInvalidCredential)
	})

	t.Run("missing user_id claim is invalid credential", func(t *testing.T) {
		token := signToken(jwt.MapClaims{
			"exp": time.Now().Add(time.Hour).Unix(),
		}, secret)

		_, err := verifier.Verify(context.Background(), token)
		assert.ErrorIs(t, err, ErrInvalidCredential)
	})
}
