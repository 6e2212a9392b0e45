package response

import (
	"github.com/gin-gonic/gin"

	"github.com/auralis/auralis-backend/internal/apperrors"
)

// APIResponse enveloppe JSON commune à tous les handlers
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
}

// APIError corps d'erreur lisible machine, avec ID de corrélation
type APIError struct {
	Kind      string `json:"kind"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// Success envoie une réponse JSON de succès
func Success(c *gin.Context, data interface{}) {
	c.JSON(200, APIResponse{
		Success: true,
		Data:    data,
	})
}

// Error envoie une réponse JSON d'erreur typée
func Error(c *gin.Context, err error) {
	requestID := c.GetString("request_id")
	c.JSON(apperrors.HTTPStatus(err), APIResponse{
		Success: false,
		Error: &APIError{
			Kind:      string(apperrors.KindOf(err)),
			Message:   apperrors.PublicMessage(err),
			RequestID: requestID,
		},
	})
}

// ValidationError envoie une erreur 400 avec le détail du champ fautif
func ValidationError(c *gin.Context, message string) {
	Error(c, apperrors.Validation(message))
}
