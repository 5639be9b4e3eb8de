package usecase_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"bookstore/internal/domain/model"
	repo "bookstore/internal/repository"
	"bookstore/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newPromoUC(promos *MockPromotionRepository, audits *MockAuditLogRepository) *usecase.PromotionUsecase {
	return usecase.NewPromotionUsecase(promos, &MockUserRepository{}, &MockMailer{}, audits, fixedClock{t: bookNow}, nil)
}

type pushFixture struct {
	promos *MockPromotionRepository
	users  *MockUserRepository
	mailer *MockMailer
	audits *MockAuditLogRepository
	uc     *usecase.PromotionUsecase
}

func newPushFixture() *pushFixture {
	f := &pushFixture{
		promos: &MockPromotionRepository{},
		users:  &MockUserRepository{},
		mailer: &MockMailer{},
		audits: &MockAuditLogRepository{},
	}
	f.uc = usecase.NewPromotionUsecase(f.promos, f.users, f.mailer, f.audits, fixedClock{t: bookNow}, nil)
	return f
}

// bookNowの前後1週間
var pushPromo = model.Promotion{
	ID:        5,
	PromoCode: "SUMMER",
	Discount:  15,
	StartDate: bookNow.AddDate(0, 0, -7),
	EndDate:   bookNow.AddDate(0, 0, 7),
}

var subscribers = []model.User{
	{ID: 1, Email: "a@example.com", FirstName: "Ann", IsActive: true, EnrollForPromotions: true},
	{ID: 2, Email: "b@example.com", FirstName: "Ben", IsActive: true, EnrollForPromotions: true},
}

func TestAdminCreatePromotion_NormalizesCodeAndEndDate(t *testing.T) {
	promos := &MockPromotionRepository{}
	audits := &MockAuditLogRepository{}
	uc := newPromoUC(promos, audits)
	ctx := context.Background()

	promos.On("Create", ctx, mock.MatchedBy(func(p model.Promotion) bool {
		wantEnd := time.Date(2024, 1, 31, 23, 59, 59, 0, time.Local)
		return p.PromoCode == "SAVE20" && p.Discount == 20 && p.EndDate.Equal(wantEnd)
	})).Return(model.Promotion{ID: 4, PromoCode: "SAVE20"}, nil)
	audits.On("Create", ctx, mock.Anything).Return(nil)

	got, err := uc.AdminCreatePromotion(ctx, 1, usecase.PromotionInput{
		PromoCode: " save20 ",
		Discount:  20,
		StartDate: "2024-01-01",
		EndDate:   "2024-01-31",
	})

	require.NoError(t, err)
	assert.Equal(t, int64(4), got.ID)
	promos.AssertExpectations(t)
}

func TestAdminCreatePromotion_DuplicateIs409(t *testing.T) {
	promos := &MockPromotionRepository{}
	uc := newPromoUC(promos, &MockAuditLogRepository{})
	ctx := context.Background()

	promos.On("Create", ctx, mock.Anything).Return(model.Promotion{}, repo.ErrDuplicate)

	_, err := uc.AdminCreatePromotion(ctx, 1, usecase.PromotionInput{
		PromoCode: "SAVE20", Discount: 20, StartDate: "2024-01-01", EndDate: "2024-01-31",
	})

	assert.Equal(t, http.StatusConflict, httpStatus(err))
}

func TestAdminCreatePromotion_InvalidInput(t *testing.T) {
	uc := newPromoUC(&MockPromotionRepository{}, &MockAuditLogRepository{})
	ctx := context.Background()

	cases := []usecase.PromotionInput{
		{PromoCode: "", Discount: 10, StartDate: "2024-01-01", EndDate: "2024-01-02"},
		{PromoCode: "X", Discount: 0, StartDate: "2024-01-01", EndDate: "2024-01-02"},
		{PromoCode: "X", Discount: 101, StartDate: "2024-01-01", EndDate: "2024-01-02"},
		{PromoCode: "X", Discount: 10, StartDate: "01/01/2024", EndDate: "2024-01-02"},
		{PromoCode: "X", Discount: 10, StartDate: "2024-02-01", EndDate: "2024-01-02"},
	}
	for _, in := range cases {
		_, err := uc.AdminCreatePromotion(ctx, 1, in)
		assert.Equal(t, http.StatusBadRequest, httpStatus(err), "%+v", in)
	}
}

func TestAdminUpdatePromotion_KeepsPushedFlag(t *testing.T) {
	promos := &MockPromotionRepository{}
	audits := &MockAuditLogRepository{}
	uc := newPromoUC(promos, audits)
	ctx := context.Background()

	promos.On("FindByID", ctx, int64(8)).Return(model.Promotion{ID: 8, PromoCode: "OLD", Pushed: true}, nil)
	promos.On("Update", ctx, mock.MatchedBy(func(p model.Promotion) bool {
		return p.ID == 8 && p.PromoCode == "NEW" && p.Pushed
	})).Return(nil)
	audits.On("Create", ctx, mock.MatchedBy(func(l model.AuditLog) bool {
		return l.Action == model.AuditActionUpdatePromotion && l.BeforeJSON != "" && l.AfterJSON != ""
	})).Return(nil)

	err := uc.AdminUpdatePromotion(ctx, 1, 8, usecase.PromotionInput{
		PromoCode: "new", Discount: 15, StartDate: "2024-01-01", EndDate: "2024-01-31",
	})

	require.NoError(t, err)
	promos.AssertExpectations(t)
	audits.AssertExpectations(t)
}

func TestAdminDeletePromotion_NotFound(t *testing.T) {
	promos := &MockPromotionRepository{}
	uc := newPromoUC(promos, &MockAuditLogRepository{})
	ctx := context.Background()

	promos.On("FindByID", ctx, int64(8)).Return(model.Promotion{}, repo.ErrNotFound)

	err := uc.AdminDeletePromotion(ctx, 1, 8)

	assert.Equal(t, http.StatusNotFound, httpStatus(err))
}

// =====================
// AdminPushPromotion
// =====================

func TestAdminPushPromotion_MailsSubscribersAndMarksPushed(t *testing.T) {
	f := newPushFixture()
	ctx := context.Background()

	f.promos.On("FindByID", ctx, int64(5)).Return(pushPromo, nil)
	f.users.On("ListPromotionSubscribers", ctx).Return(subscribers, nil)
	f.mailer.On("SendPromotion", ctx, mock.MatchedBy(func(m usecase.PromotionMail) bool {
		return m.PromoCode == "SUMMER" && m.Discount == 15 && m.Message == "Summer sale!" && m.EndDate.Equal(pushPromo.EndDate)
	})).Return(nil).Twice()
	f.promos.On("Update", ctx, mock.MatchedBy(func(p model.Promotion) bool {
		return p.ID == 5 && p.Pushed && p.PromoCode == "SUMMER"
	})).Return(nil).Once()
	f.audits.On("Create", ctx, mock.MatchedBy(func(l model.AuditLog) bool {
		return l.Action == model.AuditActionPushPromotion && l.ResourceID == 5
	})).Return(nil).Once()

	res, err := f.uc.AdminPushPromotion(ctx, 1, 5, usecase.PushPromotionInput{Message: "  Summer sale! "})

	require.NoError(t, err)
	assert.Equal(t, 2, res.Recipients)
	assert.Equal(t, 0, res.Failed)
	f.mailer.AssertExpectations(t)
	f.promos.AssertExpectations(t)
	f.audits.AssertExpectations(t)
}

func TestAdminPushPromotion_PartialFailureStillPushes(t *testing.T) {
	f := newPushFixture()
	ctx := context.Background()

	f.promos.On("FindByID", ctx, int64(5)).Return(pushPromo, nil)
	f.users.On("ListPromotionSubscribers", ctx).Return(subscribers, nil)
	f.mailer.On("SendPromotion", ctx, mock.MatchedBy(func(m usecase.PromotionMail) bool { return m.To == "a@example.com" })).
		Return(errors.New("smtp down"))
	f.mailer.On("SendPromotion", ctx, mock.MatchedBy(func(m usecase.PromotionMail) bool { return m.To == "b@example.com" })).
		Return(nil)
	f.promos.On("Update", ctx, mock.Anything).Return(nil)
	f.audits.On("Create", ctx, mock.Anything).Return(nil)

	res, err := f.uc.AdminPushPromotion(ctx, 1, 5, usecase.PushPromotionInput{Message: "hi"})

	require.NoError(t, err)
	assert.Equal(t, 2, res.Recipients)
	assert.Equal(t, 1, res.Failed)
	f.promos.AssertCalled(t, "Update", ctx, mock.Anything)
}

func TestAdminPushPromotion_AllSendsFailedIs500(t *testing.T) {
	f := newPushFixture()
	ctx := context.Background()

	f.promos.On("FindByID", ctx, int64(5)).Return(pushPromo, nil)
	f.users.On("ListPromotionSubscribers", ctx).Return(subscribers, nil)
	f.mailer.On("SendPromotion", ctx, mock.Anything).Return(errors.New("smtp down"))

	_, err := f.uc.AdminPushPromotion(ctx, 1, 5, usecase.PushPromotionInput{Message: "hi"})

	assert.Equal(t, http.StatusInternalServerError, httpStatus(err))
	f.promos.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	f.audits.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAdminPushPromotion_NoSubscribersStillMarksPushed(t *testing.T) {
	f := newPushFixture()
	ctx := context.Background()

	f.promos.On("FindByID", ctx, int64(5)).Return(pushPromo, nil)
	f.users.On("ListPromotionSubscribers", ctx).Return([]model.User{}, nil)
	f.promos.On("Update", ctx, mock.Anything).Return(nil).Once()
	f.audits.On("Create", ctx, mock.Anything).Return(nil).Once()

	res, err := f.uc.AdminPushPromotion(ctx, 1, 5, usecase.PushPromotionInput{Message: "hi"})

	require.NoError(t, err)
	assert.Equal(t, 0, res.Recipients)
	f.mailer.AssertNotCalled(t, "SendPromotion", mock.Anything, mock.Anything)
}

func TestAdminPushPromotion_Rejections(t *testing.T) {
	f := newPushFixture()
	ctx := context.Background()

	ended := pushPromo
	ended.ID = 6
	ended.EndDate = bookNow.Add(-time.Second)
	f.promos.On("FindByID", ctx, int64(6)).Return(ended, nil)
	f.promos.On("FindByID", ctx, int64(9)).Return(model.Promotion{}, repo.ErrNotFound)

	_, err := f.uc.AdminPushPromotion(ctx, 1, 5, usecase.PushPromotionInput{Message: "   "})
	assert.Equal(t, http.StatusBadRequest, httpStatus(err))

	_, err = f.uc.AdminPushPromotion(ctx, 1, 9, usecase.PushPromotionInput{Message: "hi"})
	assert.Equal(t, http.StatusNotFound, httpStatus(err))

	//終了済みは配信しない
	_, err = f.uc.AdminPushPromotion(ctx, 1, 6, usecase.PushPromotionInput{Message: "hi"})
	assert.Equal(t, http.StatusBadRequest, httpStatus(err))

	_, err = f.uc.AdminPushPromotion(ctx, 0, 5, usecase.PushPromotionInput{Message: "hi"})
	assert.Equal(t, http.StatusUnauthorized, httpStatus(err))

	f.users.AssertNotCalled(t, "ListPromotionSubscribers", mock.Anything)
}
