package catalog

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"gitlab.connectwisedev.com/catalog-service/models"
)

func newValidator() *validator.Validate {
	v := validator.New()

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	// Decimals are validated through their canonical string form.
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.String()
		}
		return nil
	}, decimal.Decimal{})

	_ = v.RegisterValidation("decimal_gte0", func(fl validator.FieldLevel) bool {
		d, err := decimal.NewFromString(fl.Field().String())
		return err == nil && !d.IsNegative()
	})
	return v
}

func (s *Service) validateNewProduct(np models.NewProduct) error {
	if strings.TrimSpace(np.Name) == "" {
		return NewValidation("name is required")
	}
	err := s.validate.Struct(np)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return NewValidation("invalid product")
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return NewValidation(fmt.Sprintf("%s is required", fe.Field()))
	case "decimal_gte0":
		return NewValidation(fmt.Sprintf("%s must be a non-negative decimal", fe.Field()))
	case "gte":
		return NewValidation(fmt.Sprintf("%s must be >= %s", fe.Field(), fe.Param()))
	case "max":
		return NewValidation(fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param()))
	default:
		return NewValidation(fmt.Sprintf("%s is invalid", fe.Field()))
	}
}
