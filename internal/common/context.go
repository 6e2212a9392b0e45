// internal/common/context.go
package common

import (
	"github.com/gin-gonic/gin"
)

const (
	// ExternalUserIDKey clé du contexte gin portant l'identité extraite en bordure
	ExternalUserIDKey = "external_user_id"
	// RequestIDKey clé du contexte gin portant l'ID de corrélation
	RequestIDKey = "request_id"
)

// GetExternalUserID extrait l'identifiant utilisateur opaque du contexte gin
func GetExternalUserID(c *gin.Context) (string, bool) {
	value, exists := c.Get(ExternalUserIDKey)
	if !exists {
		return "", false
	}
	userID, ok := value.(string)
	if !ok || userID == "" {
		return "", false
	}
	return userID, true
}

// SetExternalUserID définit l'identifiant utilisateur dans le contexte gin
func SetExternalUserID(c *gin.Context, userID string) {
	c.Set(ExternalUserIDKey, userID)
}

// GetRequestID récupère l'ID de la requête depuis le contexte
func GetRequestID(c *gin.Context) (string, bool) {
	requestID, exists := c.Get(RequestIDKey)
	if !exists {
		return "", false
	}
	return requestID.(string), true
}

// SetRequestID définit l'ID de la requête dans le contexte
func SetRequestID(c *gin.Context, requestID string) {
	c.Set(RequestIDKey, requestID)
}
