package validator

import (
	"context"
	"errors"
	"reflect"
	"strings"

	"woodify/internal/usecase"

	"github.com/go-playground/validator/v10"
)

var (
	// 入力が不正
	ErrInvalidInput = errors.New("invalid input")
)

// validator.Validate はスレッドセーフなので1つを使い回す
func newValidate() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// エラーのフィールド名はjsonタグ名
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

type loginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,max=72"`
}

type authValidator struct {
	v *validator.Validate
}

// Usecaseは interface を依存注入
func NewAuthValidator() usecase.AuthValidator {
	return &authValidator{v: newValidate()}
}

// ログインの入力を検証
func (a *authValidator) ValidateLogin(ctx context.Context, email string, password string) error {
	in := loginInput{Email: strings.TrimSpace(email), Password: password}
	if err := a.v.StructCtx(ctx, in); err != nil {
		return ErrInvalidInput
	}
	return nil
}
