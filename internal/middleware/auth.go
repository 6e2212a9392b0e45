// internal/middleware/auth.go
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/auralis/auralis-backend/internal/common"
	"github.com/auralis/auralis-backend/internal/config"
	"github.com/auralis/auralis-backend/internal/domain/entities"
)

// IdentityMiddleware extrait l'identifiant utilisateur opaque vérifié en
// bordure et le pose dans le contexte. Le cœur n'authentifie jamais: en mode
// "header" l'identifiant vient d'une passerelle de confiance, en mode "jwt"
// de la claim sub d'un Bearer token déjà émis par la plateforme hôte.
func IdentityMiddleware(cfg config.AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := extractExternalUserID(c, cfg)
		if userID == "" || len(userID) > entities.MaxExternalUserIDLen {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "identity not established",
			})
			c.Abort()
			return
		}

		common.SetExternalUserID(c, userID)
		c.Next()
	}
}

func extractExternalUserID(c *gin.Context, cfg config.AuthConfig) string {
	if cfg.Mode == "jwt" {
		return externalUserIDFromJWT(c, cfg.JWTSecret)
	}
	return c.GetHeader(cfg.TrustedHeader)
}

func externalUserIDFromJWT(c *gin.Context, secret string) string {
	authHeader := c.GetHeader("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return ""
	}

	token, err := jwt.Parse(authHeader[7:], func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return ""
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return ""
	}
	sub, _ := claims["sub"].(string)
	return sub
}
