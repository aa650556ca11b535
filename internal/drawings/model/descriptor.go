package model

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Descriptor holds the user-supplied fields of a new drawing.
type Descriptor struct {
	Code       string     `json:"code" validate:"required,max=64"`
	Title      string     `json:"title" validate:"required,max=256"`
	Discipline Discipline `json:"discipline" validate:"required,discipline"`
	Status     string     `json:"status,omitempty" validate:"omitempty,max=32"`
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func descriptorValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		_ = validate.RegisterValidation("discipline", func(fl validator.FieldLevel) bool {
			return Discipline(fl.Field().String()).IsValid()
		})
	})
	return validate
}

// Normalize trims surrounding whitespace from every field.
func (d Descriptor) Normalize() Descriptor {
	d.Code = strings.TrimSpace(d.Code)
	d.Title = strings.TrimSpace(d.Title)
	d.Discipline = Discipline(strings.TrimSpace(string(d.Discipline)))
	d.Status = strings.TrimSpace(d.Status)
	return d
}

// Validate checks the descriptor and reports every failing field.
func (d Descriptor) Validate() error {
	err := descriptorValidator().Struct(d)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", strings.ToLower(fe.Field())))
		case "discipline":
			msgs = append(msgs, fmt.Sprintf("discipline %q is not valid", fe.Value()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s exceeds %s characters", strings.ToLower(fe.Field()), fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", strings.ToLower(fe.Field())))
		}
	}
	return errors.New(strings.Join(msgs, "; "))
}
