package validator

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"strings"

	"sushiramen/internal/repository"
	"sushiramen/internal/usecase"
)

const minPasswordLength = 6

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type authValidator struct {
	users repository.UserRepository
}

// Usecaseは interface を依存注入
func NewAuthValidator(users repository.UserRepository) usecase.AuthValidator {
	return &authValidator{users: users}
}

// サインアップの入力を検証
func (v *authValidator) ValidateRegister(ctx context.Context, name string, email string, password string) error {
	// 必須チェック
	if strings.TrimSpace(name) == "" || strings.TrimSpace(email) == "" || password == "" {
		return invalid("Todos los campos son obligatorios")
	}

	// email形式
	if !isEmailLike(email) {
		return invalid("El formato del email no es válido")
	}

	if err := v.ValidatePassword(password); err != nil {
		return err
	}

	// email重複チェック（DBが必要）
	_, err := v.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err == nil {
		return usecase.NewCodedError(http.StatusBadRequest, usecase.CodeEmailExists, "El email ya está registrado")
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	return nil
}

// パスワード最低文字数
func (v *authValidator) ValidatePassword(password string) error {
	if len([]rune(password)) < minPasswordLength {
		return invalid("La contraseña debe tener al menos 6 caracteres")
	}
	return nil
}

func (v *authValidator) ValidateProfile(name string, email string) error {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(email) == "" {
		return invalid("Nombre y email son requeridos")
	}
	if !isEmailLike(email) {
		return invalid("El formato del email no es válido")
	}
	return nil
}

func invalid(msg string) error {
	return usecase.NewCodedError(http.StatusBadRequest, usecase.CodeValidation, msg)
}

// 簡易メール形式をチェック
func isEmailLike(s string) bool {
	return emailPattern.MatchString(strings.TrimSpace(s))
}
