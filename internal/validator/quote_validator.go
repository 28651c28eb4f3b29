package validator

import (
	"context"
	"errors"

	"woodify/internal/usecase"

	"github.com/go-playground/validator/v10"
)

type quoteValidator struct {
	v *validator.Validate
}

func NewQuoteValidator() usecase.QuoteValidator {
	return &quoteValidator{v: newValidate()}
}

// ValidateContact は名前・メール・電話の必須と形式を見る
func (q *quoteValidator) ValidateContact(ctx context.Context, in usecase.ContactInput) map[string]string {
	fields := map[string]string{}

	err := q.v.StructCtx(ctx, in)
	if err == nil {
		return fields
	}

	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		fields["contact"] = "invalid input"
		return fields
	}
	for _, fe := range ves {
		fields[fe.Field()] = message(fe)
	}
	return fields
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required"
	case "email":
		return "invalid email format"
	}
	return "invalid"
}
