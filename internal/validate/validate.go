// Package validate valida a entrada dos endpoints antes de qualquer consumo de
// quota ou chamada externa.
package validate

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"ai-tools-gateway/internal/apierr"

	"github.com/go-playground/validator/v10"
)

var std = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// mensagens usam o nome do campo no JSON/form
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name, _, _ := strings.Cut(fld.Tag.Get(tag), ",")
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})
	return v
}

// Struct valida s pelas tags `validate` e devolve um *apierr.Error 400.
//
// `max` em string conta caracteres (runes), não bytes. Com várias falhas,
// campo ausente tem prioridade sobre tamanho, que tem prioridade sobre o resto.
func Struct(s any) error {
	err := std.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apierr.Wrap(err, http.StatusBadRequest, apierr.InvalidRequest, "Invalid request.")
	}

	fe := pick(verrs)
	switch tag := fe.Tag(); {
	case strings.HasPrefix(tag, "required"):
		return apierr.Validation(apierr.MissingField, fmt.Sprintf("%s is required.", fe.Field()))
	case tag == "max":
		return apierr.Validation(apierr.InputTooLong, fmt.Sprintf("%s must be at most %s characters.", fe.Field(), fe.Param()))
	case tag == "oneof":
		return apierr.Validation(apierr.InvalidRequest, fmt.Sprintf("%s must be one of: %s.", fe.Field(), fe.Param()))
	}
	return apierr.Validation(apierr.InvalidRequest, fmt.Sprintf("%s is invalid.", fe.Field()))
}

func pick(verrs validator.ValidationErrors) validator.FieldError {
	for _, fe := range verrs {
		if strings.HasPrefix(fe.Tag(), "required") {
			return fe
		}
	}
	for _, fe := range verrs {
		if fe.Tag() == "max" {
			return fe
		}
	}
	return verrs[0]
}

// TrimSpace aplica strings.TrimSpace em cada campo informado.
func TrimSpace(fields ...*string) {
	for _, f := range fields {
		*f = strings.TrimSpace(*f)
	}
}
