package models

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Common errors
var (
	ErrLeadNotFound       = errors.New("lead not found")
	ErrBuilderNotFound    = errors.New("builder not found")
	ErrTradeShowNotFound  = errors.New("trade show not found")
	ErrEmptyBuilderID     = errors.New("builder id cannot be empty")
	ErrEmptyCompanyName   = errors.New("company name cannot be empty")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrInvalidRating      = errors.New("rating must be between 0 and 5")
	ErrInvalidTeamSize    = errors.New("team size cannot be negative")
	ErrInvalidEstablished = errors.New("established year is out of range")
	ErrValidation         = errors.New("validation failed")
)

var validate = validator.New()

// Validate checks a lead or quote request against its struct tags.
func Validate(v interface{}) error {
	if err := validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", ErrValidation, strings.Join(fields, ", "))
		}
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return nil
}

// ValidateBuilder validates a builder row coming from an import file.
func ValidateBuilder(b *Builder) error {
	if strings.TrimSpace(b.ID) == "" {
		return ErrEmptyBuilderID
	}

	if strings.TrimSpace(b.CompanyName) == "" {
		return ErrEmptyCompanyName
	}

	if b.ContactEmail != "" && validate.Var(b.ContactEmail, "email") != nil {
		return ErrInvalidEmail
	}

	if b.Rating < 0 || b.Rating > 5 {
		return ErrInvalidRating
	}

	if b.TeamSize < 0 {
		return ErrInvalidTeamSize
	}

	if b.EstablishedYear != 0 && (b.EstablishedYear < 1800 || b.EstablishedYear > 2100) {
		return ErrInvalidEstablished
	}

	return nil
}
