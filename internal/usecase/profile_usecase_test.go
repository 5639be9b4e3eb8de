package usecase_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"bookstore/internal/domain/model"
	"bookstore/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newProfileUC(users *MockUserRepository, addrs *MockAddressRepository, cards *MockPaymentCardRepository) *usecase.ProfileUsecase {
	return usecase.NewProfileUsecase(users, addrs, cards, fixedClock{t: bookNow}, nil)
}

func TestCreateAddress(t *testing.T) {
	addrs := &MockAddressRepository{}
	uc := newProfileUC(&MockUserRepository{}, addrs, &MockPaymentCardRepository{})
	ctx := context.Background()

	addrs.On("Create", ctx, mock.MatchedBy(func(a model.Address) bool {
		return a.UserID == 5 && a.Kind == model.AddressKindShipping && a.Street == "1 Main St"
	})).Return(model.Address{ID: 9, UserID: 5}, nil)

	got, err := uc.CreateAddress(ctx, 5, usecase.CreateAddressInput{
		Kind:         model.AddressKindShipping,
		AddressInput: usecase.AddressInput{Street: " 1 Main St ", City: "c", State: "s", ZipCode: "z"},
	})

	require.NoError(t, err)
	assert.Equal(t, int64(9), got.ID)

	_, err = uc.CreateAddress(ctx, 5, usecase.CreateAddressInput{Kind: "HOME", AddressInput: testAddr})
	assert.Equal(t, http.StatusBadRequest, httpStatus(err))
}

func TestDeleteAddress_OtherUsersAddressIs404(t *testing.T) {
	addrs := &MockAddressRepository{}
	uc := newProfileUC(&MockUserRepository{}, addrs, &MockPaymentCardRepository{})
	ctx := context.Background()

	addrs.On("IsOwnedByUser", ctx, int64(9), int64(5)).Return(false, nil)

	err := uc.DeleteAddress(ctx, 5, 9)

	assert.Equal(t, http.StatusNotFound, httpStatus(err))
	addrs.AssertNotCalled(t, "Delete", ctx, int64(9))
}

func TestCreateCard_RequiresOwnBillingAddress(t *testing.T) {
	addrs := &MockAddressRepository{}
	cards := &MockPaymentCardRepository{}
	uc := newProfileUC(&MockUserRepository{}, addrs, cards)
	ctx := context.Background()

	addrs.On("FindByID", ctx, int64(2)).Return(model.Address{ID: 2, UserID: 5, Kind: model.AddressKindShipping}, nil)
	addrs.On("FindByID", ctx, int64(3)).Return(model.Address{ID: 3, UserID: 5, Kind: model.AddressKindBilling}, nil)
	cards.On("Create", ctx, mock.MatchedBy(func(c model.PaymentCard) bool {
		return c.CardNo == "4111111111111234" && c.BillingAddressID == 3
	})).Return(model.PaymentCard{ID: 1, CardNo: "4111111111111234", BillingAddressID: 3}, nil)

	in := usecase.CreateCardInput{CardNo: "4111-1111-1111-1234", Type: "VISA", ExpirationDate: "01/29", BillingAddressID: 2}
	_, err := uc.CreateCard(ctx, 5, in)
	assert.Equal(t, http.StatusBadRequest, httpStatus(err))

	in.BillingAddressID = 3
	got, err := uc.CreateCard(ctx, 5, in)
	require.NoError(t, err)
	assert.Equal(t, "**** **** **** 1234", got.CardNo)
}

func TestDeleteCard_OtherUsersCardIs404(t *testing.T) {
	cards := &MockPaymentCardRepository{}
	uc := newProfileUC(&MockUserRepository{}, &MockAddressRepository{}, cards)
	ctx := context.Background()

	cards.On("FindByID", ctx, int64(1)).Return(model.PaymentCard{ID: 1, UserID: 6}, nil)

	err := uc.DeleteCard(ctx, 5, 1)

	assert.Equal(t, http.StatusNotFound, httpStatus(err))
}

// =====================
// UpdateProfile / ChangePassword
// =====================

func TestUpdateProfile_SavesEditableFields(t *testing.T) {
	users := &MockUserRepository{}
	uc := newProfileUC(users, &MockAddressRepository{}, &MockPaymentCardRepository{})
	ctx := context.Background()

	user := &model.User{ID: 5, Email: "pat@example.com", FirstName: "Old", LastName: "Name", Role: model.RoleUser}
	users.On("FindByID", ctx, int64(5)).Return(user, nil)
	users.On("Update", ctx, mock.MatchedBy(func(u *model.User) bool {
		return u.FirstName == "Pat" && u.LastName == "Doe" && u.Phone == "555-0100" &&
			u.EnrollForPromotions && u.UpdatedAt.Equal(bookNow)
	})).Return(nil).Once()

	out, err := uc.UpdateProfile(ctx, 5, usecase.UpdateProfileInput{
		FirstName: " Pat ", LastName: "Doe", Phone: "555-0100", EnrollForPromotions: true,
	})

	require.NoError(t, err)
	assert.Equal(t, "Pat", out.FirstName)
	assert.True(t, out.EnrollForPromotions)
	assert.Equal(t, "pat@example.com", out.Email)
	users.AssertExpectations(t)
}

func TestUpdateProfile_RequiresNames(t *testing.T) {
	users := &MockUserRepository{}
	uc := newProfileUC(users, &MockAddressRepository{}, &MockPaymentCardRepository{})
	ctx := context.Background()

	_, err := uc.UpdateProfile(ctx, 5, usecase.UpdateProfileInput{FirstName: "Pat", LastName: "  "})
	assert.Equal(t, http.StatusBadRequest, httpStatus(err))

	_, err = uc.UpdateProfile(ctx, 0, usecase.UpdateProfileInput{FirstName: "Pat", LastName: "Doe"})
	assert.Equal(t, http.StatusUnauthorized, httpStatus(err))

	users.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestChangePassword_RehashesAndBumpsTokenVersion(t *testing.T) {
	users := &MockUserRepository{}
	uc := newProfileUC(users, &MockAddressRepository{}, &MockPaymentCardRepository{})
	ctx := context.Background()

	users.On("FindByID", ctx, int64(5)).Return(&model.User{ID: 5, PasswordHash: mustHash(t, "old-password")}, nil)
	users.On("UpdatePassword", ctx, int64(5), mock.MatchedBy(func(hash string) bool {
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte("new-password")) == nil
	})).Return(nil).Once()

	res, err := uc.ChangePassword(ctx, 5, usecase.ChangePasswordInput{CurrentPassword: "old-password", NewPassword: "new-password"})

	require.NoError(t, err)
	assert.Equal(t, "password updated", res.Message)
	users.AssertExpectations(t)
}

func TestChangePassword_WrongCurrentPasswordIs400(t *testing.T) {
	users := &MockUserRepository{}
	uc := newProfileUC(users, &MockAddressRepository{}, &MockPaymentCardRepository{})
	ctx := context.Background()

	users.On("FindByID", ctx, int64(5)).Return(&model.User{ID: 5, PasswordHash: mustHash(t, "old-password")}, nil)

	_, err := uc.ChangePassword(ctx, 5, usecase.ChangePasswordInput{CurrentPassword: "guess-1234", NewPassword: "new-password"})

	assert.Equal(t, http.StatusBadRequest, httpStatus(err))
	users.AssertNotCalled(t, "UpdatePassword", mock.Anything, mock.Anything, mock.Anything)
}

func TestChangePassword_Validation(t *testing.T) {
	users := &MockUserRepository{}
	uc := newProfileUC(users, &MockAddressRepository{}, &MockPaymentCardRepository{})
	ctx := context.Background()

	_, err := uc.ChangePassword(ctx, 5, usecase.ChangePasswordInput{CurrentPassword: "", NewPassword: "new-password"})
	assert.Equal(t, http.StatusBadRequest, httpStatus(err))

	_, err = uc.ChangePassword(ctx, 5, usecase.ChangePasswordInput{CurrentPassword: "old-password", NewPassword: "short"})
	assert.Equal(t, http.StatusBadRequest, httpStatus(err))

	users.On("FindByID", ctx, int64(6)).Return(&model.User{ID: 6, PasswordHash: mustHash(t, "old-password")}, nil)
	users.On("UpdatePassword", ctx, int64(6), mock.Anything).Return(errors.New("db down"))
	_, err = uc.ChangePassword(ctx, 6, usecase.ChangePasswordInput{CurrentPassword: "old-password", NewPassword: "new-password"})
	assert.Equal(t, http.StatusInternalServerError, httpStatus(err))

	users.AssertNotCalled(t, "FindByID", ctx, int64(5))
}
