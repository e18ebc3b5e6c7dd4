// internal/middleware/auth.go
package middleware

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"

	"github.com/dario9661s/bundles-sub000/internal/config"
	"github.com/dario9661s/bundles-sub000/internal/utils"
)

// SessionClaims are the claims carried by an embedded-app session
// token. Dest holds the shop origin ("https://{shop}.myshopify.com");
// Aud must match our API key.
type SessionClaims struct {
	Dest string `json:"dest"`
	jwt.RegisteredClaims
}

// SessionTokenAuth verifies the session token on every request and
// stashes the shop domain in the context under "shop".
func SessionTokenAuth(cfg *config.ShopifyConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.UnauthorizedResponse(c, "Missing session token")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			utils.UnauthorizedResponse(c, "Malformed authorization header")
			c.Abort()
			return
		}

		claims, err := validateSessionToken(parts[1], cfg)
		if err != nil {
			utils.UnauthorizedResponse(c, "Invalid session token")
			c.Abort()
			return
		}

		c.Set("shop", shopFromDest(claims.Dest))
		c.Next()
	}
}

func validateSessionToken(token string, cfg *config.ShopifyConfig) (*SessionClaims, error) {
	claims := &SessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(cfg.APISecret), nil
	})
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	if cfg.APIKey != "" && !claims.VerifyAudience(cfg.APIKey, true) {
		return nil, fmt.Errorf("audience mismatch")
	}
	if claims.Dest == "" {
		return nil, fmt.Errorf("missing dest claim")
	}
	return claims, nil
}

func shopFromDest(dest string) string {
	return strings.TrimPrefix(dest, "https://")
}
