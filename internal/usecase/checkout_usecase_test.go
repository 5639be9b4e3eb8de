package usecase_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"bookstore/internal/domain/model"
	repo "bookstore/internal/repository"
	"bookstore/internal/usecase"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type checkoutFixture struct {
	users    *MockUserRepository
	addrs    *MockAddressRepository
	cards    *MockPaymentCardRepository
	receipts *MockCheckoutReceiptRepository
	mailer   *MockMailer
	logs     *observer.ObservedLogs
	uc       *usecase.CheckoutUsecase
}

func newCheckoutFixture() checkoutFixture {
	core, logs := observer.New(zapcore.DebugLevel)
	f := checkoutFixture{
		users:    &MockUserRepository{},
		addrs:    &MockAddressRepository{},
		cards:    &MockPaymentCardRepository{},
		receipts: &MockCheckoutReceiptRepository{},
		mailer:   &MockMailer{},
		logs:     logs,
	}
	f.uc = usecase.NewCheckoutUsecase(f.users, f.addrs, f.cards, f.receipts, f.mailer, zap.New(core))
	return f
}

var testAddr = usecase.AddressInput{Street: "1 Main St", City: "Springfield", State: "IL", ZipCode: "62701"}

func manualCheckout(email string) usecase.ProcessCheckoutInput {
	return usecase.ProcessCheckoutInput{
		CartItems: []usecase.CheckoutCartItem{
			{ID: 1, Title: "Go", SellingPrice: decimal.NewFromInt(50), Quantity: 2},
		},
		TotalAmount: decimal.RequireFromString("80"),
		PaymentInfo: usecase.PaymentInfoInput{
			CardNumber:     "4111 1111 1111 1234",
			CardholderName: "Alice Smith",
			ExpiryDate:     "12/30",
			CVV:            "123",
		},
		BillingAddress:  testAddr,
		ShippingAddress: testAddr,
		Email:           email,
	}
}

func TestProcess_GuestSendsMailToGivenEmail(t *testing.T) {
	f := newCheckoutFixture()
	ctx := context.Background()

	f.mailer.On("SendOrderConfirmation", ctx, mock.MatchedBy(func(m usecase.OrderConfirmationMail) bool {
		return m.To == "guest@example.com" && m.Total.Equal(decimal.NewFromInt(80))
	})).Return(nil)

	got, err := f.uc.Process(ctx, 0, "", manualCheckout("guest@example.com"))

	require.NoError(t, err)
	assert.Equal(t, "**** **** **** 1234", got.MaskedCardNo)
	assert.True(t, got.EmailSent)
	assert.NotEmpty(t, got.ConfirmationID)
	f.mailer.AssertExpectations(t)
}

func TestProcess_GuestWithoutEmailIs400(t *testing.T) {
	f := newCheckoutFixture()

	_, err := f.uc.Process(context.Background(), 0, "", manualCheckout(""))

	assert.Equal(t, http.StatusBadRequest, httpStatus(err))
}

func TestProcess_MailFailureStillSucceeds(t *testing.T) {
	f := newCheckoutFixture()
	ctx := context.Background()

	f.users.On("FindByID", ctx, int64(5)).Return(&model.User{ID: 5, Email: "alice@example.com"}, nil)
	f.mailer.On("SendOrderConfirmation", ctx, mock.Anything).Return(errors.New("smtp down"))

	got, err := f.uc.Process(ctx, 5, "", manualCheckout(""))

	require.NoError(t, err)
	assert.False(t, got.EmailSent)
	assert.Equal(t, 1, f.logs.FilterMessage("order confirmation mail failed").Len())
}

func TestProcess_StoredCardMustBelongToUser(t *testing.T) {
	f := newCheckoutFixture()
	ctx := context.Background()

	in := manualCheckout("")
	in.PaymentInfo = usecase.PaymentInfoInput{CardID: 3}

	f.users.On("FindByID", ctx, int64(5)).Return(&model.User{ID: 5, Email: "alice@example.com"}, nil)
	f.cards.On("FindByID", ctx, int64(3)).Return(model.PaymentCard{ID: 3, UserID: 6, CardNo: "4111111111111111"}, nil)

	_, err := f.uc.Process(ctx, 5, "", in)

	assert.Equal(t, http.StatusBadRequest, httpStatus(err))
	f.mailer.AssertNotCalled(t, "SendOrderConfirmation", mock.Anything, mock.Anything)
}

func TestProcess_StoredCardRequiresLogin(t *testing.T) {
	f := newCheckoutFixture()

	in := manualCheckout("guest@example.com")
	in.PaymentInfo = usecase.PaymentInfoInput{CardID: 3}

	_, err := f.uc.Process(context.Background(), 0, "", in)

	assert.Equal(t, http.StatusUnauthorized, httpStatus(err))
}

func TestProcess_RejectsBadPayloads(t *testing.T) {
	f := newCheckoutFixture()
	ctx := context.Background()

	empty := manualCheckout("g@example.com")
	empty.CartItems = nil

	noShip := manualCheckout("g@example.com")
	noShip.ShippingAddress = usecase.AddressInput{Street: "x"}

	shortCard := manualCheckout("g@example.com")
	shortCard.PaymentInfo.CardNumber = "4111 1111"

	badExpiry := manualCheckout("g@example.com")
	badExpiry.PaymentInfo.ExpiryDate = "13/30"

	for _, in := range []usecase.ProcessCheckoutInput{empty, noShip, shortCard, badExpiry} {
		_, err := f.uc.Process(ctx, 0, "", in)
		assert.Equal(t, http.StatusBadRequest, httpStatus(err))
	}
}

func TestProcess_SameKeyReturnsFirstConfirmation(t *testing.T) {
	f := newCheckoutFixture()
	ctx := context.Background()

	stored := model.CheckoutReceipt{ID: 9, ConfirmationID: "conf-1", MaskedCardNo: "**** **** **** 1234", Total: decimal.NewFromInt(80), EmailSent: true}
	f.receipts.On("FindByKey", ctx, int64(0), "key-1").Return(model.CheckoutReceipt{}, false, nil).Once()
	f.receipts.On("Create", ctx, mock.MatchedBy(func(rc *model.CheckoutReceipt) bool {
		return rc.IdempotencyKey == "key-1" && rc.UserID == 0 && !rc.EmailSent
	})).Run(func(args mock.Arguments) {
		rc := args.Get(1).(*model.CheckoutReceipt)
		rc.ID = 9
		stored.ConfirmationID = rc.ConfirmationID
	}).Return(nil).Once()
	f.mailer.On("SendOrderConfirmation", ctx, mock.Anything).Return(nil).Once()
	f.receipts.On("MarkEmailSent", ctx, int64(9)).Return(nil).Once()

	first, err := f.uc.Process(ctx, 0, " key-1 ", manualCheckout("guest@example.com"))
	require.NoError(t, err)
	assert.True(t, first.EmailSent)

	//2回目は記録済みの受付を返し、メールは送らない
	f.receipts.On("FindByKey", ctx, int64(0), "key-1").Return(stored, true, nil).Once()

	second, err := f.uc.Process(ctx, 0, "key-1", manualCheckout("guest@example.com"))
	require.NoError(t, err)

	assert.Equal(t, first.ConfirmationID, second.ConfirmationID)
	assert.True(t, second.EmailSent)
	f.mailer.AssertNumberOfCalls(t, "SendOrderConfirmation", 1)
	f.receipts.AssertExpectations(t)
}

func TestProcess_ConcurrentSameKeyReturnsWinner(t *testing.T) {
	f := newCheckoutFixture()
	ctx := context.Background()

	winner := model.CheckoutReceipt{ID: 3, ConfirmationID: "conf-winner", Total: decimal.NewFromInt(80)}
	f.receipts.On("FindByKey", ctx, int64(0), "key-2").Return(model.CheckoutReceipt{}, false, nil).Once()
	f.receipts.On("Create", ctx, mock.Anything).Return(repo.ErrDuplicate).Once()
	f.receipts.On("FindByKey", ctx, int64(0), "key-2").Return(winner, true, nil).Once()

	got, err := f.uc.Process(ctx, 0, "key-2", manualCheckout("guest@example.com"))

	require.NoError(t, err)
	assert.Equal(t, "conf-winner", got.ConfirmationID)
	f.mailer.AssertNotCalled(t, "SendOrderConfirmation", mock.Anything, mock.Anything)
}

func TestProcess_WithoutKeyDoesNotRecordReceipt(t *testing.T) {
	f := newCheckoutFixture()
	ctx := context.Background()

	f.mailer.On("SendOrderConfirmation", ctx, mock.Anything).Return(nil).Twice()

	a, err := f.uc.Process(ctx, 0, "", manualCheckout("guest@example.com"))
	require.NoError(t, err)
	b, err := f.uc.Process(ctx, 0, "", manualCheckout("guest@example.com"))
	require.NoError(t, err)

	assert.NotEqual(t, a.ConfirmationID, b.ConfirmationID)
	f.receipts.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUserData_MasksCards(t *testing.T) {
	f := newCheckoutFixture()
	ctx := context.Background()

	f.cards.On("ListByUserID", ctx, int64(5)).Return([]model.PaymentCard{{ID: 1, CardNo: "4111111111115678", Type: "VISA"}}, nil)
	f.addrs.On("ListByUserID", ctx, int64(5), model.AddressKindShipping).Return([]model.Address{{ID: 2}}, nil)
	f.addrs.On("ListByUserID", ctx, int64(5), model.AddressKindBilling).Return([]model.Address{{ID: 3}}, nil)

	got, err := f.uc.UserData(ctx, 5)

	require.NoError(t, err)
	require.Len(t, got.PaymentCards, 1)
	assert.Equal(t, "**** **** **** 5678", got.PaymentCards[0].CardNo)
	assert.Len(t, got.ShippingAddresses, 1)
	assert.Len(t, got.BillingAddresses, 1)
}
