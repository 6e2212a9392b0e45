package utils

import (
	"go.uber.org/zap"
)

// NewLogger construit le logger zap du processus selon l'environnement
func NewLogger(environment string) (*zap.Logger, error) {
	if environment == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
