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

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var bookNow = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

func newBookUC(books *MockBookRepository, audits *MockAuditLogRepository, tax string) *usecase.BookUsecase {
	return usecase.NewBookUsecase(books, audits, decimal.RequireFromString(tax), fixedClock{t: bookNow})
}

func TestListBooks_Routing(t *testing.T) {
	books := &MockBookRepository{}
	uc := newBookUC(books, &MockAuditLogRepository{}, "0")
	ctx := context.Background()

	books.On("Search", ctx, "go").Return([]model.Book{{ID: 1}}, nil)
	books.On("ListFeatured", ctx).Return([]model.Book{{ID: 2}}, nil)
	books.On("ListComingSoon", ctx, bookNow).Return([]model.Book{{ID: 3}}, nil)
	books.On("ListAll", ctx).Return([]model.Book{{ID: 4}}, nil)

	cases := []struct {
		in   usecase.ListBooksInput
		want int64
	}{
		{usecase.ListBooksInput{Search: " go ", Display: "featured"}, 1},
		{usecase.ListBooksInput{Display: usecase.DisplayFeatured}, 2},
		{usecase.ListBooksInput{Display: usecase.DisplayComingSoon}, 3},
		{usecase.ListBooksInput{}, 4},
	}
	for _, c := range cases {
		got, err := uc.ListBooks(ctx, c.in)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, c.want, got[0].ID)
	}
}

func TestListBooks_InvalidDisplay(t *testing.T) {
	uc := newBookUC(&MockBookRepository{}, &MockAuditLogRepository{}, "0")

	_, err := uc.ListBooks(context.Background(), usecase.ListBooksInput{Display: "bestsellers"})

	assert.Equal(t, http.StatusBadRequest, httpStatus(err))
}

func TestGetBook_NotFound(t *testing.T) {
	books := &MockBookRepository{}
	uc := newBookUC(books, &MockAuditLogRepository{}, "0")
	ctx := context.Background()

	books.On("FindByID", ctx, int64(99)).Return(model.Book{}, repo.ErrNotFound)

	_, err := uc.GetBook(ctx, 99)

	assert.Equal(t, http.StatusNotFound, httpStatus(err))
}

func TestCalculate_NoTax(t *testing.T) {
	books := &MockBookRepository{}
	uc := newBookUC(books, &MockAuditLogRepository{}, "0")
	ctx := context.Background()

	books.On("FindByIDs", ctx, []int64{1, 2}).Return([]model.Book{
		{ID: 1, SellingPrice: decimal.RequireFromString("25.00")},
		{ID: 2, SellingPrice: decimal.RequireFromString("12.50")},
	}, nil)

	got, err := uc.Calculate(ctx, []usecase.PriceItem{{ID: 1, Quantity: 2}, {ID: 2, Quantity: 4}})

	require.NoError(t, err)
	assert.True(t, got.Subtotal.Equal(decimal.NewFromInt(100)))
	assert.True(t, got.SalesTax.IsZero())
	assert.True(t, got.Total.Equal(got.Subtotal))
}

func TestCalculate_WithTax(t *testing.T) {
	books := &MockBookRepository{}
	uc := newBookUC(books, &MockAuditLogRepository{}, "0.08")
	ctx := context.Background()

	books.On("FindByIDs", ctx, []int64{1}).Return([]model.Book{
		{ID: 1, SellingPrice: decimal.RequireFromString("19.99")},
	}, nil)

	got, err := uc.Calculate(ctx, []usecase.PriceItem{{ID: 1, Quantity: 1}})

	require.NoError(t, err)
	assert.Equal(t, "19.99", got.Subtotal.StringFixed(2))
	assert.Equal(t, "1.60", got.SalesTax.StringFixed(2))
	assert.Equal(t, "21.59", got.Total.StringFixed(2))
}

func TestCalculate_UnknownBookIs404(t *testing.T) {
	books := &MockBookRepository{}
	uc := newBookUC(books, &MockAuditLogRepository{}, "0")
	ctx := context.Background()

	books.On("FindByIDs", ctx, []int64{42}).Return([]model.Book{}, nil)

	_, err := uc.Calculate(ctx, []usecase.PriceItem{{ID: 42, Quantity: 1}})

	assert.Equal(t, http.StatusNotFound, httpStatus(err))
}

func TestCalculate_RejectsNonPositiveQuantity(t *testing.T) {
	uc := newBookUC(&MockBookRepository{}, &MockAuditLogRepository{}, "0")

	_, err := uc.Calculate(context.Background(), []usecase.PriceItem{{ID: 1, Quantity: 0}})

	assert.Equal(t, http.StatusBadRequest, httpStatus(err))
}

func TestAdminCreateBook_WritesAudit(t *testing.T) {
	books := &MockBookRepository{}
	audits := &MockAuditLogRepository{}
	uc := newBookUC(books, audits, "0")
	ctx := context.Background()

	in := usecase.BookInput{
		ISBN:         "978-0000000000",
		Title:        " Go in Practice ",
		Author:       "Someone",
		SellingPrice: decimal.RequireFromString("30"),
	}
	books.On("Create", ctx, mock.MatchedBy(func(b model.Book) bool {
		return b.Title == "Go in Practice"
	})).Return(model.Book{ID: 11, Title: "Go in Practice"}, nil)
	audits.On("Create", ctx, mock.MatchedBy(func(l model.AuditLog) bool {
		return l.ActorUserID == 1 &&
			l.Action == model.AuditActionCreateBook &&
			l.ResourceType == model.AuditResourceBook &&
			l.ResourceID == 11 &&
			l.BeforeJSON == "" && l.AfterJSON != "" &&
			l.CreatedAt.Equal(bookNow)
	})).Return(nil)

	got, err := uc.AdminCreateBook(ctx, 1, in)

	require.NoError(t, err)
	assert.Equal(t, int64(11), got.ID)
	audits.AssertExpectations(t)
}

func TestAdminCreateBook_Validation(t *testing.T) {
	uc := newBookUC(&MockBookRepository{}, &MockAuditLogRepository{}, "0")

	_, err := uc.AdminCreateBook(context.Background(), 1, usecase.BookInput{Title: "x", Author: "y"})
	assert.Equal(t, http.StatusBadRequest, httpStatus(err))

	_, err = uc.AdminCreateBook(context.Background(), 1, usecase.BookInput{
		Title: "x", Author: "y", ISBN: "1", SellingPrice: decimal.NewFromInt(-1),
	})
	assert.Equal(t, http.StatusBadRequest, httpStatus(err))
}

func TestAdminDeleteBook_AuditFailureIs500(t *testing.T) {
	books := &MockBookRepository{}
	audits := &MockAuditLogRepository{}
	uc := newBookUC(books, audits, "0")
	ctx := context.Background()

	books.On("FindByID", ctx, int64(3)).Return(model.Book{ID: 3}, nil)
	books.On("SoftDelete", ctx, int64(3)).Return(nil)
	audits.On("Create", ctx, mock.Anything).Return(errors.New("disk full"))

	err := uc.AdminDeleteBook(ctx, 1, 3)

	assert.Equal(t, http.StatusInternalServerError, httpStatus(err))
}
