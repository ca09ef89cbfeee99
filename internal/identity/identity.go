/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

// Package identity implements the Auth/Identity Gateway (spec.md §4.7):
// bearer-token validation on WebSocket accept, resolving a stable user id
// from the token's "id" claim. Grounded on
// SevenTeamTwo-sevenquiz-backend/internal/quiz/lobby.go's
// CheckToken/jwtKeyFunc pattern.
package identity

import (
	"fmt"
	"net/http"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Seednode/geoduel/internal/apierr"
)

// Gateway validates bearer tokens against a single HMAC secret injected at
// startup (spec.md §4.7).
type Gateway struct {
	secret []byte
}

func NewGateway(secret string) *Gateway {
	return &Gateway{secret: []byte(secret)}
}

func keyFunc(secret []byte) jwt.Keyfunc {
	return func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	}
}

// ExtractToken reads the bearer token from the "token" query parameter, as
// spec.md §6 specifies for every WebSocket endpoint.
func ExtractToken(r *http.Request) string {
	return r.URL.Query().Get("token")
}

// ValidateToken decodes and validates token, returning the resolved user
// id from its "id" claim (spec.md §4.7). It does not check the user
// against the store; callers combine this with a UserStore lookup.
func (g *Gateway) ValidateToken(token string) (string, error) {
	if token == "" {
		return "", apierr.Auth("missing token", apierr.CloseMissingToken)
	}

	parsed, err := jwt.Parse(token, keyFunc(g.secret))
	if err != nil || !parsed.Valid {
		return "", apierr.Auth("invalid token", apierr.CloseInvalidToken)
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return "", apierr.Auth("invalid token", apierr.CloseInvalidToken)
	}

	id, ok := claims["id"].(string)
	if !ok || id == "" {
		return "", apierr.Auth("invalid token", apierr.CloseInvalidToken)
	}

	return id, nil
}

// IssueToken mints an HS256 token carrying the id claim; used by the test
// harness and local tooling (the real OAuth/JWT issuance path is out of
// core, spec.md §1).
func (g *Gateway) IssueToken(userID string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id": userID,
	})
	return token.SignedString(g.secret)
}
