package validator

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator fournit une validation stricte des entrées avec règles de sécurité
type Validator struct {
	validate *validator.Validate
}

// New crée un nouveau validateur avec des règles de sécurité strictes
func New() *Validator {
	v := validator.New()

	// Enregistrer les validations personnalisées
	if err := v.RegisterValidation("safe_genre", validateSafeGenre); err != nil {
		panic("failed to register safe_genre validation: " + err.Error())
	}
	if err := v.RegisterValidation("external_user_id", validateExternalUserID); err != nil {
		panic("failed to register external_user_id validation: " + err.Error())
	}
	if err := v.RegisterValidation("no_sql_injection", validateNoSQLInjection); err != nil {
		panic("failed to register no_sql_injection validation: " + err.Error())
	}
	if err := v.RegisterValidation("no_xss", validateNoXSS); err != nil {
		panic("failed to register no_xss validation: " + err.Error())
	}

	return &Validator{
		validate: v,
	}
}

// Validate valide une structure avec les règles strictes
func (v *Validator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

// ValidateStruct alias pour Validate pour compatibilité
func (v *Validator) ValidateStruct(i interface{}) error {
	return v.Validate(i)
}

var genrePattern = regexp.MustCompile(`^[\p{L}\p{N}&' \-/]+$`)

// validateSafeGenre valide un nom de genre musical
func validateSafeGenre(fl validator.FieldLevel) bool {
	genre := fl.Field().String()

	if len(genre) == 0 || len(genre) > 100 {
		return false
	}

	return genrePattern.MatchString(genre)
}

// validateExternalUserID valide l'identifiant opaque de la plateforme hôte
func validateExternalUserID(fl validator.FieldLevel) bool {
	id := fl.Field().String()

	if len(id) == 0 || len(id) > 255 {
		return false
	}

	// Pas de caractères de contrôle ni d'espaces
	for _, r := range id {
		if r < 0x21 || r == 0x7f {
			return false
		}
	}

	return true
}

// validateNoSQLInjection détecte les tentatives d'injection SQL
func validateNoSQLInjection(fl validator.FieldLevel) bool {
	value := strings.ToLower(fl.Field().String())

	// Mots-clés SQL dangereux
	sqlKeywords := []string{
		"select ", "insert ", "update ", "delete ", "drop ", "create ", "alter ",
		"union ", "exec ", "execute ", "--", "/*", "*/", ";",
	}

	for _, keyword := range sqlKeywords {
		if strings.Contains(value, keyword) {
			return false
		}
	}

	return true
}

// validateNoXSS détecte les tentatives de cross-site scripting
func validateNoXSS(fl validator.FieldLevel) bool {
	value := strings.ToLower(fl.Field().String())

	dangerousPatterns := []string{
		"<script", "</script", "javascript:", "onerror=", "onload=", "<iframe",
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(value, pattern) {
			return false
		}
	}

	return true
}
