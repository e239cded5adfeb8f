// Package account carries the signup and profile forms with their validation
// rules: national id, Chadian provinces, password policy, vendor onboarding
// and the product listing form. Validation reports every failing field at
// once so a caller can surface all the messages together.
package account

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	pkgerrors "github.com/zoudousouk/souk-go/pkg/errors"
)

// Provinces are the Chadian provinces accepted in registration and profile
// forms.
var Provinces = []string{
	"Batha", "Borkou", "Chari-Baguirmi", "Ennedi-Est", "Ennedi-Ouest",
	"Guéra", "Hadjer-Lamis", "Kanem", "Lac", "Logone-Occidental",
	"Logone-Oriental", "Mandoul", "Mayo-Kebbi-Est", "Mayo-Kebbi-Ouest",
	"Moyen-Chari", "N'Djamena", "Ouaddaï", "Salamat", "Sila", "Tandjilé",
	"Tibesti", "Wadi Fira",
}

// RegisterForm is a new-account request as the user fills it in.
type RegisterForm struct {
	NNI             string `json:"nni" validate:"required,numeric,len=8"`
	FirstName       string `json:"prenom" validate:"required"`
	LastName        string `json:"nom" validate:"required"`
	Phone           string `json:"phone" validate:"required,numeric,len=9"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
	Province        string `json:"province" validate:"required,province"`
	Region          string `json:"region" validate:"omitempty"`
	City            string `json:"ville" validate:"omitempty"`
	District        string `json:"quartier" validate:"omitempty"`
}

// KYCForm references the four identity documents verification requires. The
// values are upload references, not file contents.
type KYCForm struct {
	IdentityFront string `json:"identity_front" validate:"required"`
	IdentityBack  string `json:"identity_back" validate:"required"`
	Selfie        string `json:"selfie" validate:"required"`
	ProofAddress  string `json:"proof_address" validate:"required"`
}

// VendorUpgradeForm promotes a client account to vendor.
type VendorUpgradeForm struct {
	BusinessName        string `json:"entreprise_nom" validate:"required"`
	BusinessDescription string `json:"entreprise_description" validate:"required"`
	BusinessType        string `json:"entreprise_type" validate:"required"`
	YearsExperience     int    `json:"experience_annees" validate:"omitempty,gte=0"`
	Specialties         string `json:"specialisations" validate:"omitempty"`
	Website             string `json:"website" validate:"omitempty,url"`
}

// ProductForm lists a new product for sale.
type ProductForm struct {
	Name        string   `json:"nom" validate:"required"`
	Description string   `json:"description" validate:"omitempty"`
	Price       int64    `json:"prix" validate:"required,gt=0"`
	Discount    int64    `json:"reduction" validate:"omitempty,gte=0,ltfield=Price"`
	Condition   string   `json:"etat" validate:"required,oneof=neuf occasion"`
	Category    string   `json:"categorie" validate:"required"`
	Quantity    int      `json:"quantite" validate:"required,gte=1"`
	Deliverable bool     `json:"livrable"`
	Photos      []string `json:"photos" validate:"required,min=1"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" {
			return f.Name
		}
		return tag
	})
	if err := v.RegisterValidation("province", func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		for _, p := range Provinces {
			if p == value {
				return true
			}
		}
		return false
	}); err != nil {
		panic(err)
	}
	return v
}

// Validate checks the form and reports every failing field with a French
// message under the field's wire name.
func Validate(form any) error {
	if err := validate.Struct(form); err != nil {
		return formatValidationErrors(err)
	}
	return nil
}

func formatValidationErrors(err error) *pkgerrors.Error {
	if errs, ok := err.(validator.ValidationErrors); ok {
		details := map[string]string{}
		for _, fieldErr := range errs {
			details[fieldErr.Field()] = validationMessage(fieldErr)
		}
		return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(details)
	}
	return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "validation failed")
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "est requis"
	case "numeric":
		return "doit contenir uniquement des chiffres"
	case "len":
		return "doit contenir " + fe.Param() + " chiffres"
	case "min":
		if fe.Kind() == reflect.String {
			return "doit contenir au moins " + fe.Param() + " caractères"
		}
		return "doit contenir au moins " + fe.Param() + " éléments"
	case "email":
		return "doit être une adresse email valide"
	case "eqfield":
		return "ne correspond pas"
	case "province":
		return "doit être une province du Tchad"
	case "oneof":
		return "doit être l'une des valeurs: " + fe.Param()
	case "gt":
		return "doit être supérieur à " + fe.Param()
	case "gte":
		return "doit être au moins " + fe.Param()
	case "ltfield":
		return "doit être inférieur au prix"
	case "url":
		return "doit être une URL valide"
	}
	return "est invalide"
}
