package usecase

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report json names so the errors match the request body.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// Validate runs the struct tags of input and returns one entry per failing field.
func Validate(input any) []ValidationError {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []ValidationError{{Field: "body", Message: "is invalid"}}
	}

	out := make([]ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, ValidationError{Field: fe.Field(), Message: messageFor(fe)})
	}
	return out
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "is invalid"
	case "url":
		return "must be a valid URL"
	case "min":
		return fmt.Sprintf("must have at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must not exceed %s characters", fe.Param())
	case "oneof":
		return "must be one of " + strings.ReplaceAll(fe.Param(), " ", ", ")
	default:
		return "is invalid"
	}
}

// ValidateAmount covers decimal fields, which struct tags cannot express.
func ValidateAmount(field string, amount decimal.Decimal) []ValidationError {
	if !amount.IsPositive() {
		return []ValidationError{{Field: field, Message: "must be greater than zero"}}
	}
	return nil
}

func ValidateAddTransactionInput(input AddTransactionInput) []ValidationError {
	errs := Validate(input)
	return append(errs, ValidateAmount("amount", input.Amount)...)
}

func ValidateSettleDownPaymentInput(input SettleDownPaymentInput) []ValidationError {
	errs := Validate(input)
	return append(errs, ValidateAmount("amount", input.Amount)...)
}

func ValidateImportLeadsInput(input ImportLeadsInput) []ValidationError {
	errs := Validate(input)
	if input.TotalCost.IsNegative() {
		errs = append(errs, ValidationError{"total_cost", "must not be negative"})
	}
	if input.Assignment.Strategy == "SINGLE" && strings.TrimSpace(input.Assignment.SellerID) == "" {
		errs = append(errs, ValidationError{"assignment.seller_id", "is required for SINGLE assignment"})
	}
	return errs
}

func validationFailure(errs []ValidationError) error {
	if len(errs) == 0 {
		return nil
	}
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		msgs = append(msgs, e.Error())
	}
	return &DomainError{Code: "VALIDATION_ERROR", Message: strings.Join(msgs, "; "), Fields: errs}
}
