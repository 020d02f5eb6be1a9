// Package auth treats identity as an opaque external source: a signed
// bearer token whose subject is the stable user id. No sessions, devices or
// credentials live here.
package auth

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	inkchat_errors "inkchat/pkg/errors"
)

// ParseToken verifies the HMAC signature and returns the subject user id.
func ParseToken(secret, token string) (string, error) {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !parsed.Valid {
		return "", inkchat_errors.ErrUnauthorized
	}
	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", inkchat_errors.ErrUnauthorized
	}
	return claims.Subject, nil
}

type ctxKey struct{}

func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, userID)
}

func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(ctxKey{}).(string)
	return userID, ok
}
