package service

import (
	"context"
	"fmt"
	"strings"

	"esperit-be/internal/entity"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenVerifier checks one credential and resolves the durable user id.
// Implementations that call out to an identity provider must report network
// failures as ErrIdentityProviderUnavailable, never as an invalid credential:
// the classifier relies on that distinction to avoid downgrading a signed-in
// user to guest during a provider outage.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (uuid.UUID, error)
}

// IIdentityService is the session classifier. Classification is pure with
// respect to the request; it performs no writes.
type IIdentityService interface {
	Classify(ctx context.Context, authorizationHeader, sessionKey string) (entity.Identity, error)
}

type identityService struct {
	verifier TokenVerifier
}

func NewIdentityService(verifier TokenVerifier) IIdentityService {
	return &identityService{verifier: verifier}
}

func (s *identityService) Classify(ctx context.Context, authorizationHeader, sessionKey string) (entity.Identity, error) {
	token := ""
	if strings.HasPrefix(authorizationHeader, "Bearer ") {
		token = authorizationHeader[len("Bearer "):]
	}

	if token == "" {
		if sessionKey == "" {
			return entity.Identity{}, fmt.Errorf("%w: anonymous request without session key", ErrInvalidCredential)
		}
		return entity.Guest(sessionKey), nil
	}

	userId, err := s.verifier.Verify(ctx, token)
	if err != nil {
		// Propagate as-is; ErrIdentityProviderUnavailable must reach the
		// request layer so it can retry instead of treating the caller as
		// guest.
		return entity.Identity{}, err
	}

	return entity.Authenticated(userId), nil
}

// jwtVerifier validates the HS256 tokens this service issues at sign-in.
type jwtVerifier struct {
	secret []byte
}

func NewJWTVerifier(secret string) TokenVerifier {
	return &jwtVerifier{secret: []byte(secret)}
}

func (v *jwtVerifier) Verify(_ context.Context, tokenStr string) (uuid.UUID, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, fmt.Errorf("%w: %v", ErrInvalidCredential, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, fmt.Errorf("%w: malformed claims", ErrInvalidCredential)
	}

	userIdStr, _ := claims["user_id"].(string)
	userId, err := uuid.Parse(userIdStr)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: missing user_id claim", ErrInvalidCredential)
	}

	return userId, nil
}
