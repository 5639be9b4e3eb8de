package usecase

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"strings"

	"bookstore/internal/domain/model"
	repo "bookstore/internal/repository"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// MM/YY
var expiryRe = regexp.MustCompile(`^(0[1-9]|1[0-2])/[0-9]{2}$`)

type ProfileUsecase struct {
	users     repo.UserRepository
	addresses repo.AddressRepository
	cards     repo.PaymentCardRepository
	clock     Clock
	log       *zap.Logger
}

func NewProfileUsecase(
	users repo.UserRepository,
	addresses repo.AddressRepository,
	cards repo.PaymentCardRepository,
	clock Clock,
	log *zap.Logger,
) *ProfileUsecase {
	if log == nil {
		log = zap.NewNop()
	}
	return &ProfileUsecase{users: users, addresses: addresses, cards: cards, clock: clock, log: log}
}

// PUT /api/profile の入力。emailとroleは変えられない
type UpdateProfileInput struct {
	FirstName           string `json:"first_name"`
	LastName            string `json:"last_name"`
	Phone               string `json:"phone"`
	EnrollForPromotions bool   `json:"enroll_for_promotions"`
}

type ChangePasswordInput struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type AddressInput struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
}

type CreateAddressInput struct {
	Kind model.AddressKind `json:"kind"`
	AddressInput
}

type CreateCardInput struct {
	CardNo           string `json:"cardNo"`
	Type             string `json:"type"`
	ExpirationDate   string `json:"expirationDate"`
	BillingAddressID int64  `json:"billingAddressID"`
}

// 返却用のカード。番号は必ずマスク
type PaymentCardDTO struct {
	ID               int64  `json:"cardID"`
	CardNo           string `json:"cardNo"`
	Type             string `json:"type"`
	ExpirationDate   string `json:"expirationDate"`
	BillingAddressID int64  `json:"billingAddressID"`
}

func (in AddressInput) complete() bool {
	return strings.TrimSpace(in.Street) != "" &&
		strings.TrimSpace(in.City) != "" &&
		strings.TrimSpace(in.State) != "" &&
		strings.TrimSpace(in.ZipCode) != ""
}

func (u *ProfileUsecase) ListAddresses(ctx context.Context, userID int64, kind model.AddressKind) ([]model.Address, error) {
	if userID <= 0 {
		return nil, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if kind != "" && kind != model.AddressKindBilling && kind != model.AddressKindShipping {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid kind")
	}

	list, err := u.addresses.ListByUserID(ctx, userID, kind)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return list, nil
}

func (u *ProfileUsecase) CreateAddress(ctx context.Context, userID int64, in CreateAddressInput) (model.Address, error) {
	if userID <= 0 {
		return model.Address{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if in.Kind != model.AddressKindBilling && in.Kind != model.AddressKindShipping {
		return model.Address{}, NewHTTPError(http.StatusBadRequest, "invalid kind")
	}
	if !in.complete() {
		return model.Address{}, NewHTTPError(http.StatusBadRequest, "street, city, state and zipCode required")
	}

	created, err := u.addresses.Create(ctx, model.Address{
		UserID:  userID,
		Kind:    in.Kind,
		Street:  strings.TrimSpace(in.Street),
		City:    strings.TrimSpace(in.City),
		State:   strings.TrimSpace(in.State),
		ZipCode: strings.TrimSpace(in.ZipCode),
	})
	if err != nil {
		return model.Address{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return created, nil
}

// 他人の住所は存在しない扱い
func (u *ProfileUsecase) DeleteAddress(ctx context.Context, userID int64, addressID int64) error {
	if userID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if addressID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	owned, err := u.addresses.IsOwnedByUser(ctx, addressID, userID)
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !owned {
		return NewHTTPError(http.StatusNotFound, "not found")
	}

	if err := u.addresses.Delete(ctx, addressID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

func (u *ProfileUsecase) ListCards(ctx context.Context, userID int64) ([]PaymentCardDTO, error) {
	if userID <= 0 {
		return nil, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	list, err := u.cards.ListByUserID(ctx, userID)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	out := make([]PaymentCardDTO, 0, len(list))
	for _, c := range list {
		out = append(out, toPaymentCardDTO(c))
	}
	return out, nil
}

func (u *ProfileUsecase) CreateCard(ctx context.Context, userID int64, in CreateCardInput) (PaymentCardDTO, error) {
	if userID <= 0 {
		return PaymentCardDTO{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	cardNo := digitsOnly(in.CardNo)
	if len(cardNo) < 16 || len(cardNo) > 19 {
		return PaymentCardDTO{}, NewHTTPError(http.StatusBadRequest, "invalid card number")
	}
	if !expiryRe.MatchString(strings.TrimSpace(in.ExpirationDate)) {
		return PaymentCardDTO{}, NewHTTPError(http.StatusBadRequest, "invalid expirationDate")
	}
	if strings.TrimSpace(in.Type) == "" {
		return PaymentCardDTO{}, NewHTTPError(http.StatusBadRequest, "type required")
	}

	//請求先住所は本人のBILLINGであること
	addr, err := u.addresses.FindByID(ctx, in.BillingAddressID)
	if errors.Is(err, repo.ErrNotFound) {
		return PaymentCardDTO{}, NewHTTPError(http.StatusBadRequest, "invalid billingAddressID")
	}
	if err != nil {
		return PaymentCardDTO{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if addr.UserID != userID || addr.Kind != model.AddressKindBilling {
		return PaymentCardDTO{}, NewHTTPError(http.StatusBadRequest, "invalid billingAddressID")
	}

	created, err := u.cards.Create(ctx, model.PaymentCard{
		UserID:           userID,
		CardNo:           cardNo,
		Type:             strings.TrimSpace(in.Type),
		ExpirationDate:   strings.TrimSpace(in.ExpirationDate),
		BillingAddressID: addr.ID,
	})
	if err != nil {
		return PaymentCardDTO{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return toPaymentCardDTO(created), nil
}

func (u *ProfileUsecase) DeleteCard(ctx context.Context, userID int64, cardID int64) error {
	if userID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if cardID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	c, err := u.cards.FindByID(ctx, cardID)
	if errors.Is(err, repo.ErrNotFound) {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if c.UserID != userID {
		return NewHTTPError(http.StatusNotFound, "not found")
	}

	if err := u.cards.Delete(ctx, cardID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

func toPaymentCardDTO(c model.PaymentCard) PaymentCardDTO {
	return PaymentCardDTO{
		ID:               c.ID,
		CardNo:           model.MaskCardNo(c.CardNo),
		Type:             c.Type,
		ExpirationDate:   c.ExpirationDate,
		BillingAddressID: c.BillingAddressID,
	}
}

func digitsOnly(s string) string {
	b := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			b = append(b, s[i])
		}
	}
	return string(b)
}

func (u *ProfileUsecase) UpdateProfile(ctx context.Context, userID int64, in UpdateProfileInput) (UserDTO, error) {
	if userID <= 0 {
		return UserDTO{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	first := strings.TrimSpace(in.FirstName)
	last := strings.TrimSpace(in.LastName)
	if first == "" || last == "" {
		return UserDTO{}, NewHTTPError(http.StatusBadRequest, "first and last names cannot be empty")
	}
	if len(first) > 100 || len(last) > 100 {
		return UserDTO{}, NewHTTPError(http.StatusBadRequest, "name too long")
	}
	phone := strings.TrimSpace(in.Phone)
	if len(phone) > 30 {
		return UserDTO{}, NewHTTPError(http.StatusBadRequest, "phone too long")
	}

	user, err := u.users.FindByID(ctx, userID)
	if errors.Is(err, repo.ErrUserNotFound) {
		return UserDTO{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if err != nil {
		return UserDTO{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	user.FirstName = first
	user.LastName = last
	user.Phone = phone
	user.EnrollForPromotions = in.EnrollForPromotions
	user.UpdatedAt = u.clock.Now()
	if err := u.users.Update(ctx, user); err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			return UserDTO{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
		}
		return UserDTO{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return toUserDTO(user), nil
}

// 現在のパスワードを確認してから差し替える。
// token_versionも上がるので、発行済みのaccess tokenはすべて使えなくなる
func (u *ProfileUsecase) ChangePassword(ctx context.Context, userID int64, in ChangePasswordInput) (SuccessResponse, error) {
	if userID <= 0 {
		return SuccessResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if strings.TrimSpace(in.CurrentPassword) == "" {
		return SuccessResponse{}, NewHTTPError(http.StatusBadRequest, "current password is required")
	}
	if len(in.NewPassword) < MinPasswordLen {
		return SuccessResponse{}, NewHTTPError(http.StatusBadRequest, "password too short")
	}

	user, err := u.users.FindByID(ctx, userID)
	if errors.Is(err, repo.ErrUserNotFound) {
		return SuccessResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if err != nil {
		return SuccessResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	//401はセッション切れと区別がつかないので400
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.CurrentPassword)); err != nil {
		return SuccessResponse{}, NewHTTPError(http.StatusBadRequest, "current password is incorrect")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return SuccessResponse{}, NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	if err := u.users.UpdatePassword(ctx, userID, string(hash)); err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			return SuccessResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
		}
		return SuccessResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	u.log.Info("password changed", zap.Int64("user_id", userID))
	return SuccessResponse{Message: "password updated"}, nil
}
