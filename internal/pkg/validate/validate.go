package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/key-verify-api/internal/domain"
)

// v is the package-level singleton validator. Field names in errors are
// reported by their json tag so messages match what the client sent.
var v = newValidator()

func newValidator() *validator.Validate {
	val := validator.New(validator.WithRequiredStructEnabled())
	val.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	// dockey: value must be usable as a single document key.
	_ = val.RegisterValidation("dockey", func(fl validator.FieldLevel) bool {
		return domain.ValidKey(fl.Field().String())
	})
	return val
}

// FieldError lists the fields that failed validation.
type FieldError struct {
	Fields []string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("missing or invalid fields: %s", strings.Join(e.Fields, ", "))
}

// Struct validates the given struct using its validate tags.
// Returns a *FieldError naming the failed fields, or nil.
func Struct(s interface{}) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}
	fe := &FieldError{}
	for _, f := range ve {
		fe.Fields = append(fe.Fields, f.Field())
	}
	return fe
}
