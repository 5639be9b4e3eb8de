package validator

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"strings"

	"bookstore/internal/repository"
	"bookstore/internal/usecase"
)

// 簡易メール形式
var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const minPasswordLen = usecase.MinPasswordLen

type authValidator struct {
	users repository.UserRepository
}

// Usecaseは interface を依存注入
func NewAuthValidator(users repository.UserRepository) usecase.AuthValidator {
	return &authValidator{users: users}
}

// サインアップの入力を検証
func (v *authValidator) ValidateRegister(ctx context.Context, req usecase.AuthRegisterRequest) error {
	email := strings.TrimSpace(req.Email)

	// 必須チェック
	if email == "" || req.Password == "" {
		return usecase.NewHTTPError(http.StatusBadRequest, "email and password required")
	}
	if strings.TrimSpace(req.FirstName) == "" || strings.TrimSpace(req.LastName) == "" {
		return usecase.NewHTTPError(http.StatusBadRequest, "name required")
	}

	if !isEmailLike(email) {
		return usecase.NewHTTPError(http.StatusBadRequest, "invalid email")
	}

	if len(req.Password) < minPasswordLen {
		return usecase.NewHTTPError(http.StatusBadRequest, "password too short")
	}

	// email重複チェック（DBが必要）
	u, err := v.users.FindByEmail(ctx, email)
	if err == nil && u != nil {
		return usecase.NewHTTPError(http.StatusConflict, "email already used")
	}
	if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
		return usecase.NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return nil
}

// ログインの入力を検証
func (v *authValidator) ValidateLogin(ctx context.Context, req usecase.AuthLoginRequest) error {
	email := strings.TrimSpace(req.Email)

	if email == "" || req.Password == "" {
		return usecase.NewHTTPError(http.StatusBadRequest, "email and password required")
	}

	if !isEmailLike(email) {
		return usecase.NewHTTPError(http.StatusBadRequest, "invalid email")
	}

	return nil
}

func isEmailLike(s string) bool {
	return emailRe.MatchString(s)
}
