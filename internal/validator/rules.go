package validator

import (
	"log"
	"time"

	"gocast_backend/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

const DateLayout = "2006-01-02"

func registerCustomRules(v *validator.Validate) {
	mustRegister := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			log.Fatalf("failed to register custom validation tag '%s': %v", tag, err)
		}
	}

	mustRegister("notblank", validators.NotBlank)
	mustRegister("is-date", validateDate)
	mustRegister("is-specialite", validateSpecialite)
	mustRegister("is-genre", validateGenre)
	mustRegister("is-statut", validateStatut)
	mustRegister("is-expression", validateExpression)
}

// Empty values pass; 'required' decides whether they are allowed.

func validateDate(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	_, err := time.Parse(DateLayout, value)
	return err == nil
}

func validateSpecialite(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	return value == "" || models.Specialite(value).Valid()
}

func validateGenre(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	return value == "" || models.Genre(value).Valid()
}

func validateStatut(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	return value == "" || models.TalentStatus(value).Valid()
}

func validateExpression(fl validator.FieldLevel) bool {
	return models.Expression(fl.Field().String()).Valid()
}
