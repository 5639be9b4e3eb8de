package usecase

import (
	"bookstore/internal/config"
	"bookstore/internal/domain/model"
	"bookstore/internal/repository"

	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// accesstokenの有効期限
const accessTokenTTL = 60 * time.Minute

// パスワード最低文字数（登録・変更共通）
const MinPasswordLen = 8

// usecaseがValidatorInterfaceに依存する約束
type AuthValidator interface {
	ValidateRegister(ctx context.Context, req AuthRegisterRequest) error
	ValidateLogin(ctx context.Context, req AuthLoginRequest) error
}

type UserDTO struct {
	ID                  int64  `json:"id"`
	Email               string `json:"email"`
	FirstName           string `json:"first_name"`
	LastName            string `json:"last_name"`
	Role                string `json:"role"`
	TokenVersion        int    `json:"token_version"`
	EnrollForPromotions bool   `json:"enroll_for_promotions"`
}

type JwtAccessTokenDTO struct {
	AccessToken  string `json:"access_token"`
	ExpiresIn    int    `json:"expires_in"`
	TokenVersion int    `json:"token_version"`
}

type AuthRegisterRequest struct {
	Email               string `json:"email"`
	Password            string `json:"password"`
	FirstName           string `json:"first_name"`
	LastName            string `json:"last_name"`
	Phone               string `json:"phone"`
	EnrollForPromotions bool   `json:"enroll_for_promotions"`
}

type AuthRegisterResponse struct {
	User UserDTO `json:"user"`
}

type AuthLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthLoginResponse struct {
	User  UserDTO           `json:"user"`
	Token JwtAccessTokenDTO `json:"token"`
}

type SuccessResponse struct {
	Message string `json:"message"`
}

type AuthUsecase struct {
	cfg       config.Config
	users     repository.UserRepository
	validator AuthValidator
	clock     Clock
	log       *zap.Logger
}

func NewAuthUsecase(
	cfg config.Config,
	users repository.UserRepository,
	validator AuthValidator,
	clock Clock,
	log *zap.Logger,
) *AuthUsecase {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthUsecase{
		cfg:       cfg,
		users:     users,
		validator: validator,
		clock:     clock,
		log:       log,
	}
}

func (u *AuthUsecase) Register(ctx context.Context, req AuthRegisterRequest) (*AuthRegisterResponse, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	//入力検証（validatorに寄せる）
	if err := u.validator.ValidateRegister(ctx, req); err != nil {
		return nil, err
	}

	//パスワードは必ずハッシュ化して保存（平文保存しない）
	pwHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	now := u.clock.Now()
	user := &model.User{
		Email:               req.Email,
		PasswordHash:        string(pwHash),
		FirstName:           strings.TrimSpace(req.FirstName),
		LastName:            strings.TrimSpace(req.LastName),
		Phone:               strings.TrimSpace(req.Phone),
		Role:                model.RoleUser,
		TokenVersion:        0,
		IsActive:            true,
		EnrollForPromotions: req.EnrollForPromotions,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	//同時登録でvalidatorをすり抜けた場合もunique違反で409
	if err := u.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, NewHTTPError(http.StatusConflict, "email already used")
		}
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return &AuthRegisterResponse{User: toUserDTO(user)}, nil
}

func (u *AuthUsecase) Login(ctx context.Context, req AuthLoginRequest) (*AuthLoginResponse, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	if err := u.validator.ValidateLogin(ctx, req); err != nil {
		return nil, err
	}

	//ユーザー取得（存在しない場合もパスワード違いと同じ401）
	user, err := u.users.FindByEmail(ctx, req.Email)
	if err != nil || user == nil {
		if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
			return nil, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		return nil, NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}

	//停止ユーザーはログイン不可
	if !user.IsActive {
		return nil, NewHTTPError(http.StatusForbidden, "user is inactive")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}

	//last_login更新。失敗してもログインは通す
	now := u.clock.Now()
	user.LastLoginAt = &now
	if err := u.users.Update(ctx, user); err != nil {
		u.log.Warn("update last login failed", zap.Int64("user_id", user.ID), zap.Error(err))
	}

	accessToken, expiresIn, err := u.issueAccessToken(user, now)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return &AuthLoginResponse{
		User: toUserDTO(user),
		Token: JwtAccessTokenDTO{
			AccessToken:  accessToken,
			ExpiresIn:    expiresIn,
			TokenVersion: user.TokenVersion,
		},
	}, nil
}

// token_versionを上げて発行済みのaccess tokenを全部無効にする
func (u *AuthUsecase) Logout(ctx context.Context, userID int64) (*SuccessResponse, error) {
	if userID <= 0 {
		return nil, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	if err := u.users.IncrementTokenVersion(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, NewHTTPError(http.StatusUnauthorized, "unauthorized")
		}
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return &SuccessResponse{Message: "logout success"}, nil
}

func (u *AuthUsecase) Me(ctx context.Context, userID int64) (*UserDTO, error) {
	if userID <= 0 {
		return nil, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	user, err := u.users.FindByID(ctx, userID)
	if err != nil || user == nil {
		return nil, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	dto := toUserDTO(user)
	return &dto, nil
}

// jwt発行
func (u *AuthUsecase) issueAccessToken(user *model.User, now time.Time) (string, int, error) {
	exp := now.Add(accessTokenTTL)

	claims := jwt.MapClaims{
		"sub":  user.ID,
		"role": string(user.Role),
		"tv":   user.TokenVersion,
		"iat":  now.Unix(),
		"exp":  exp.Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := t.SignedString([]byte(u.cfg.JWTSecret))
	if err != nil {
		return "", 0, err
	}

	return signed, int(accessTokenTTL.Seconds()), nil
}

// model.UserをAPI返却用DTOに変換。
func toUserDTO(u *model.User) UserDTO {
	return UserDTO{
		ID:                  u.ID,
		Email:               u.Email,
		FirstName:           u.FirstName,
		LastName:            u.LastName,
		Role:                string(u.Role),
		TokenVersion:        u.TokenVersion,
		EnrollForPromotions: u.EnrollForPromotions,
	}
}
